package models

import "time"

// FinaleNumber is the conventional tournament_number of a category finale.
// Finale results are stored but excluded from ranking aggregation.
const FinaleNumber = 4

// Tournament is one event of a category within a season, unique on
// (category_id, tournament_number, season). Re-importing the same triple
// overwrites the date and import timestamp and fully replaces its results.
type Tournament struct {
	ID               int       `json:"id" db:"id"`
	CategoryID       int       `json:"category_id" db:"category_id"`
	TournamentNumber int       `json:"tournament_number" db:"tournament_number"`
	Season           string    `json:"season" db:"season"`
	TournamentDate   time.Time `json:"tournament_date" db:"tournament_date"`
	Location         *string   `json:"location,omitempty" db:"location"`
	ImportedAt       time.Time `json:"imported_at" db:"imported_at"`

	Category *Category `json:"category,omitempty" db:"-"`
}

// IsFinale reports whether this tournament is the category finale.
func (t Tournament) IsFinale() bool {
	return t.TournamentNumber == FinaleNumber
}

// TournamentResult is one player's line in a tournament. Rows are owned by
// their tournament and replaced wholesale on re-import.
type TournamentResult struct {
	ID           int     `json:"id" db:"id"`
	TournamentID int     `json:"tournament_id" db:"tournament_id"`
	Licence      string  `json:"licence" db:"licence"`
	PlayerName   string  `json:"player_name" db:"player_name"`
	MatchPoints  int     `json:"match_points" db:"match_points"`
	Moyenne      float64 `json:"moyenne" db:"moyenne"`
	Reprises     int     `json:"reprises" db:"reprises"`
	Serie        int     `json:"serie" db:"serie"`
	Points       int     `json:"points" db:"points"`
}
