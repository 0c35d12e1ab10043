package models

// Category is immutable reference data identifying a discipline and skill
// tier, e.g. "LIBRE R1". Looked up by the import pipeline, never mutated.
type Category struct {
	ID       int    `json:"id" db:"id"`
	Name     string `json:"name" db:"name"`
	GameType string `json:"game_type" db:"game_type"`
	Level    string `json:"level" db:"level"`
}
