package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/lib/pq"
	"github.com/liguebillard/federation-admin/models"
)

var (
	ErrTournamentNotFound        = errors.New("tournament not found")
	ErrTournamentInvalidCategory = errors.New("invalid category reference")
)

type ListTournamentsFilter struct {
	CategoryID *int
	Season     *string
}

// CategorySeason identifies one ranking partition.
type CategorySeason struct {
	CategoryID int
	Season     string
}

type TournamentRepository interface {
	// Upsert inserts the tournament or, when the (category, number, season)
	// triple already exists, refreshes its date and import timestamp. The
	// tournament ID is written back in both cases.
	Upsert(ctx context.Context, exec SQLExecutor, t *models.Tournament) error
	GetByID(ctx context.Context, id int) (*models.Tournament, error)
	FindByTriple(ctx context.Context, categoryID, tournamentNumber int, season string) (*models.Tournament, error)
	List(ctx context.Context, filter ListTournamentsFilter) ([]models.Tournament, error)
	Delete(ctx context.Context, exec SQLExecutor, id int) error
	// ListCategorySeasons returns every distinct (category, season) pair that
	// has at least one tournament, for the recalculate-all sweep.
	ListCategorySeasons(ctx context.Context) ([]CategorySeason, error)
}

type postgresTournamentRepository struct {
	db *sql.DB
}

func NewPostgresTournamentRepository(db *sql.DB) TournamentRepository {
	return &postgresTournamentRepository{db: db}
}

func (r *postgresTournamentRepository) getExecutor(exec SQLExecutor) SQLExecutor {
	if exec != nil {
		return exec
	}
	return r.db
}

func (r *postgresTournamentRepository) Upsert(ctx context.Context, exec SQLExecutor, t *models.Tournament) error {
	executor := r.getExecutor(exec)
	query := `
		INSERT INTO tournaments (category_id, tournament_number, season, tournament_date, location, imported_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (category_id, tournament_number, season)
		DO UPDATE SET tournament_date = EXCLUDED.tournament_date,
		              location = COALESCE(EXCLUDED.location, tournaments.location),
		              imported_at = EXCLUDED.imported_at
		RETURNING id, imported_at`

	if t.ImportedAt.IsZero() {
		t.ImportedAt = time.Now()
	}
	err := executor.QueryRowContext(ctx, query,
		t.CategoryID, t.TournamentNumber, t.Season, t.TournamentDate, t.Location, t.ImportedAt,
	).Scan(&t.ID, &t.ImportedAt)

	return r.handleTournamentError(err)
}

func (r *postgresTournamentRepository) GetByID(ctx context.Context, id int) (*models.Tournament, error) {
	query := `
		SELECT id, category_id, tournament_number, season, tournament_date, location, imported_at
		FROM tournaments
		WHERE id = $1`

	t := &models.Tournament{}
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&t.ID, &t.CategoryID, &t.TournamentNumber, &t.Season, &t.TournamentDate, &t.Location, &t.ImportedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrTournamentNotFound
		}
		return nil, err
	}
	return t, nil
}

func (r *postgresTournamentRepository) FindByTriple(ctx context.Context, categoryID, tournamentNumber int, season string) (*models.Tournament, error) {
	query := `
		SELECT id, category_id, tournament_number, season, tournament_date, location, imported_at
		FROM tournaments
		WHERE category_id = $1 AND tournament_number = $2 AND season = $3`

	t := &models.Tournament{}
	err := r.db.QueryRowContext(ctx, query, categoryID, tournamentNumber, season).Scan(
		&t.ID, &t.CategoryID, &t.TournamentNumber, &t.Season, &t.TournamentDate, &t.Location, &t.ImportedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrTournamentNotFound
		}
		return nil, err
	}
	return t, nil
}

func (r *postgresTournamentRepository) List(ctx context.Context, filter ListTournamentsFilter) ([]models.Tournament, error) {
	query := `
		SELECT id, category_id, tournament_number, season, tournament_date, location, imported_at
		FROM tournaments
		WHERE 1=1`

	args := []interface{}{}
	argID := 1

	if filter.CategoryID != nil {
		query += fmt.Sprintf(" AND category_id = $%d", argID)
		args = append(args, *filter.CategoryID)
		argID++
	}
	if filter.Season != nil {
		query += fmt.Sprintf(" AND season = $%d", argID)
		args = append(args, *filter.Season)
		argID++
	}

	query += " ORDER BY season DESC, category_id, tournament_number"

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	tournaments := make([]models.Tournament, 0)
	for rows.Next() {
		var t models.Tournament
		if scanErr := rows.Scan(
			&t.ID, &t.CategoryID, &t.TournamentNumber, &t.Season, &t.TournamentDate, &t.Location, &t.ImportedAt,
		); scanErr != nil {
			return nil, scanErr
		}
		tournaments = append(tournaments, t)
	}
	return tournaments, rows.Err()
}

func (r *postgresTournamentRepository) Delete(ctx context.Context, exec SQLExecutor, id int) error {
	executor := r.getExecutor(exec)
	query := `DELETE FROM tournaments WHERE id = $1`
	result, err := executor.ExecContext(ctx, query, id)
	if err != nil {
		return r.handleTournamentError(err)
	}
	return checkAffectedRows(result, ErrTournamentNotFound)
}

func (r *postgresTournamentRepository) ListCategorySeasons(ctx context.Context) ([]CategorySeason, error) {
	query := `SELECT DISTINCT category_id, season FROM tournaments ORDER BY category_id, season`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list category/season pairs: %w", err)
	}
	defer rows.Close()

	pairs := make([]CategorySeason, 0)
	for rows.Next() {
		var p CategorySeason
		if scanErr := rows.Scan(&p.CategoryID, &p.Season); scanErr != nil {
			return nil, scanErr
		}
		pairs = append(pairs, p)
	}
	return pairs, rows.Err()
}

func (r *postgresTournamentRepository) handleTournamentError(err error) error {
	if err == nil {
		return nil
	}
	if pqErr, ok := err.(*pq.Error); ok {
		if pqErr.Code == "23503" && pqErr.Constraint == "tournaments_category_id_fkey" {
			return ErrTournamentInvalidCategory
		}
	}
	return err
}
