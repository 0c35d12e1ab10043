package repositories

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/liguebillard/federation-admin/models"
)

// ResultAggregate is one player's totals across the counted tournaments of a
// (category, season), as produced by AggregateByCategorySeason. The finale
// never contributes: only tournament numbers 1-3 are aggregated.
type ResultAggregate struct {
	Licence          string
	PlayerName       string
	TotalMatchPoints int
	TotalPoints      int
	TotalReprises    int
	BestSerie        int
	T1Points         int
	T2Points         int
	T3Points         int
}

type ResultRepository interface {
	CreateBatch(ctx context.Context, exec SQLExecutor, results []*models.TournamentResult) error
	DeleteByTournament(ctx context.Context, exec SQLExecutor, tournamentID int) error
	CountByTournament(ctx context.Context, tournamentID int) (int, error)
	ListByTournament(ctx context.Context, tournamentID int) ([]models.TournamentResult, error)
	// AggregateByCategorySeason sums results per normalized licence over the
	// non-finale tournaments of the partition.
	AggregateByCategorySeason(ctx context.Context, categoryID int, season string) ([]ResultAggregate, error)
}

type postgresResultRepository struct {
	db *sql.DB
}

func NewPostgresResultRepository(db *sql.DB) ResultRepository {
	return &postgresResultRepository{db: db}
}

func (r *postgresResultRepository) getExecutor(exec SQLExecutor) SQLExecutor {
	if exec != nil {
		return exec
	}
	return r.db
}

func (r *postgresResultRepository) CreateBatch(ctx context.Context, exec SQLExecutor, results []*models.TournamentResult) error {
	executor := r.getExecutor(exec)
	query := `
		INSERT INTO tournament_results (tournament_id, licence, player_name, match_points, moyenne, reprises, serie, points)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id`

	for _, res := range results {
		err := executor.QueryRowContext(ctx, query,
			res.TournamentID, res.Licence, res.PlayerName, res.MatchPoints,
			res.Moyenne, res.Reprises, res.Serie, res.Points,
		).Scan(&res.ID)
		if err != nil {
			return fmt.Errorf("failed to insert result for licence %s: %w", res.Licence, err)
		}
	}
	return nil
}

func (r *postgresResultRepository) DeleteByTournament(ctx context.Context, exec SQLExecutor, tournamentID int) error {
	executor := r.getExecutor(exec)
	query := `DELETE FROM tournament_results WHERE tournament_id = $1`
	if _, err := executor.ExecContext(ctx, query, tournamentID); err != nil {
		return fmt.Errorf("failed to delete results of tournament %d: %w", tournamentID, err)
	}
	return nil
}

func (r *postgresResultRepository) CountByTournament(ctx context.Context, tournamentID int) (int, error) {
	query := `SELECT COUNT(*) FROM tournament_results WHERE tournament_id = $1`
	var count int
	if err := r.db.QueryRowContext(ctx, query, tournamentID).Scan(&count); err != nil {
		return 0, err
	}
	return count, nil
}

func (r *postgresResultRepository) ListByTournament(ctx context.Context, tournamentID int) ([]models.TournamentResult, error) {
	query := `
		SELECT id, tournament_id, licence, player_name, match_points, moyenne, reprises, serie, points
		FROM tournament_results
		WHERE tournament_id = $1
		ORDER BY match_points DESC, moyenne DESC`

	rows, err := r.db.QueryContext(ctx, query, tournamentID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	results := make([]models.TournamentResult, 0)
	for rows.Next() {
		var res models.TournamentResult
		if scanErr := rows.Scan(
			&res.ID, &res.TournamentID, &res.Licence, &res.PlayerName,
			&res.MatchPoints, &res.Moyenne, &res.Reprises, &res.Serie, &res.Points,
		); scanErr != nil {
			return nil, scanErr
		}
		results = append(results, res)
	}
	return results, rows.Err()
}

func (r *postgresResultRepository) AggregateByCategorySeason(ctx context.Context, categoryID int, season string) ([]ResultAggregate, error) {
	// MAX(player_name) picks a stable display name when spellings differ
	// between exports of the same licence.
	query := `
		SELECT
			REPLACE(r.licence, ' ', '') AS norm_licence,
			MAX(r.player_name),
			SUM(r.match_points),
			SUM(r.points),
			SUM(r.reprises),
			MAX(r.serie),
			SUM(CASE WHEN t.tournament_number = 1 THEN r.points ELSE 0 END),
			SUM(CASE WHEN t.tournament_number = 2 THEN r.points ELSE 0 END),
			SUM(CASE WHEN t.tournament_number = 3 THEN r.points ELSE 0 END)
		FROM tournament_results r
		JOIN tournaments t ON t.id = r.tournament_id
		WHERE t.category_id = $1 AND t.season = $2 AND t.tournament_number <= 3
		GROUP BY norm_licence
		ORDER BY norm_licence`

	rows, err := r.db.QueryContext(ctx, query, categoryID, season)
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate results for category %d season %s: %w", categoryID, season, err)
	}
	defer rows.Close()

	aggregates := make([]ResultAggregate, 0)
	for rows.Next() {
		var a ResultAggregate
		if scanErr := rows.Scan(
			&a.Licence, &a.PlayerName, &a.TotalMatchPoints, &a.TotalPoints,
			&a.TotalReprises, &a.BestSerie, &a.T1Points, &a.T2Points, &a.T3Points,
		); scanErr != nil {
			return nil, scanErr
		}
		aggregates = append(aggregates, a)
	}
	return aggregates, rows.Err()
}
