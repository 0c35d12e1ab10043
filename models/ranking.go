package models

// Ranking is one player's derived standing within a (category, season).
// Rows are never patched in place: a recalculation replaces the whole
// partition, so the table is always consistent with the current result set.
type Ranking struct {
	ID               int     `json:"id" db:"id"`
	CategoryID       int     `json:"category_id" db:"category_id"`
	Season           string  `json:"season" db:"season"`
	Licence          string  `json:"licence" db:"licence"`
	PlayerName       string  `json:"player_name" db:"player_name"`
	TotalMatchPoints int     `json:"total_match_points" db:"total_match_points"`
	AvgMoyenne       float64 `json:"avg_moyenne" db:"avg_moyenne"`
	BestSerie        int     `json:"best_serie" db:"best_serie"`
	T1Points         int     `json:"t1_points" db:"t1_points"`
	T2Points         int     `json:"t2_points" db:"t2_points"`
	T3Points         int     `json:"t3_points" db:"t3_points"`
	RankPosition     int     `json:"rank_position" db:"rank_position"`
}
