package repositories

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/liguebillard/federation-admin/models"
)

type RankingRepository interface {
	ListByCategorySeason(ctx context.Context, categoryID int, season string) ([]models.Ranking, error)
	// Replace wipes and reinserts the whole (category, season) partition.
	// Rankings are derived data: they are never patched row by row.
	Replace(ctx context.Context, exec SQLExecutor, categoryID int, season string, rankings []*models.Ranking) error
}

type postgresRankingRepository struct {
	db *sql.DB
}

func NewPostgresRankingRepository(db *sql.DB) RankingRepository {
	return &postgresRankingRepository{db: db}
}

func (r *postgresRankingRepository) getExecutor(exec SQLExecutor) SQLExecutor {
	if exec != nil {
		return exec
	}
	return r.db
}

func (r *postgresRankingRepository) ListByCategorySeason(ctx context.Context, categoryID int, season string) ([]models.Ranking, error) {
	query := `
		SELECT id, category_id, season, licence, player_name, total_match_points,
		       avg_moyenne, best_serie, t1_points, t2_points, t3_points, rank_position
		FROM rankings
		WHERE category_id = $1 AND season = $2
		ORDER BY rank_position`

	rows, err := r.db.QueryContext(ctx, query, categoryID, season)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	rankings := make([]models.Ranking, 0)
	for rows.Next() {
		var rk models.Ranking
		if scanErr := rows.Scan(
			&rk.ID, &rk.CategoryID, &rk.Season, &rk.Licence, &rk.PlayerName,
			&rk.TotalMatchPoints, &rk.AvgMoyenne, &rk.BestSerie,
			&rk.T1Points, &rk.T2Points, &rk.T3Points, &rk.RankPosition,
		); scanErr != nil {
			return nil, scanErr
		}
		rankings = append(rankings, rk)
	}
	return rankings, rows.Err()
}

func (r *postgresRankingRepository) Replace(ctx context.Context, exec SQLExecutor, categoryID int, season string, rankings []*models.Ranking) error {
	executor := r.getExecutor(exec)

	if _, err := executor.ExecContext(ctx,
		`DELETE FROM rankings WHERE category_id = $1 AND season = $2`,
		categoryID, season,
	); err != nil {
		return fmt.Errorf("failed to clear rankings for category %d season %s: %w", categoryID, season, err)
	}

	query := `
		INSERT INTO rankings (category_id, season, licence, player_name, total_match_points,
		                      avg_moyenne, best_serie, t1_points, t2_points, t3_points, rank_position)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING id`

	for _, rk := range rankings {
		err := executor.QueryRowContext(ctx, query,
			categoryID, season, rk.Licence, rk.PlayerName, rk.TotalMatchPoints,
			rk.AvgMoyenne, rk.BestSerie, rk.T1Points, rk.T2Points, rk.T3Points, rk.RankPosition,
		).Scan(&rk.ID)
		if err != nil {
			return fmt.Errorf("failed to insert ranking for licence %s: %w", rk.Licence, err)
		}
	}
	return nil
}
