package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"
	"github.com/liguebillard/federation-admin/models"
)

var (
	ErrPlayerNotFound        = errors.New("player not found")
	ErrPlayerLicenceConflict = errors.New("licence is already registered")
)

type ListPlayersFilter struct {
	Club   *string
	Search *string
	Limit  int
	Offset int
}

type PlayerRepository interface {
	Create(ctx context.Context, exec SQLExecutor, player *models.Player) error
	GetByID(ctx context.Context, id int) (*models.Player, error)
	// GetByLicence matches on the normalized licence (spaces stripped on both
	// sides), the way CSV exports must be compared.
	GetByLicence(ctx context.Context, exec SQLExecutor, licence string) (*models.Player, error)
	// ExistsByName reports whether a player matches the given display name,
	// case-insensitively, as either "first last" or "last first".
	ExistsByName(ctx context.Context, fullName string) (bool, error)
	List(ctx context.Context, filter ListPlayersFilter) ([]models.Player, error)
	Update(ctx context.Context, player *models.Player) error
	Delete(ctx context.Context, id int) error
	ListByLicences(ctx context.Context, licences []string) ([]models.Player, error)
}

type postgresPlayerRepository struct {
	db *sql.DB
}

func NewPostgresPlayerRepository(db *sql.DB) PlayerRepository {
	return &postgresPlayerRepository{db: db}
}

func (r *postgresPlayerRepository) getExecutor(exec SQLExecutor) SQLExecutor {
	if exec != nil {
		return exec
	}
	return r.db
}

func (r *postgresPlayerRepository) Create(ctx context.Context, exec SQLExecutor, p *models.Player) error {
	executor := r.getExecutor(exec)
	query := `
		INSERT INTO players (licence, first_name, last_name, club, email)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at`

	err := executor.QueryRowContext(ctx, query,
		models.NormalizeLicence(p.Licence), p.FirstName, p.LastName, p.Club, p.Email,
	).Scan(&p.ID, &p.CreatedAt)

	return r.handlePlayerError(err)
}

func (r *postgresPlayerRepository) GetByID(ctx context.Context, id int) (*models.Player, error) {
	query := `
		SELECT id, licence, first_name, last_name, club, email, created_at
		FROM players WHERE id = $1`

	return r.scanOne(r.db.QueryRowContext(ctx, query, id))
}

func (r *postgresPlayerRepository) GetByLicence(ctx context.Context, exec SQLExecutor, licence string) (*models.Player, error) {
	executor := r.getExecutor(exec)
	query := `
		SELECT id, licence, first_name, last_name, club, email, created_at
		FROM players
		WHERE REPLACE(licence, ' ', '') = $1`

	return r.scanOne(executor.QueryRowContext(ctx, query, models.NormalizeLicence(licence)))
}

func (r *postgresPlayerRepository) ExistsByName(ctx context.Context, fullName string) (bool, error) {
	query := `
		SELECT EXISTS (
			SELECT 1 FROM players
			WHERE LOWER(first_name || ' ' || last_name) = LOWER($1)
			   OR LOWER(last_name || ' ' || first_name) = LOWER($1)
		)`

	var exists bool
	if err := r.db.QueryRowContext(ctx, query, fullName).Scan(&exists); err != nil {
		return false, err
	}
	return exists, nil
}

func (r *postgresPlayerRepository) List(ctx context.Context, filter ListPlayersFilter) ([]models.Player, error) {
	query := `
		SELECT id, licence, first_name, last_name, club, email, created_at
		FROM players
		WHERE 1=1`

	args := []interface{}{}
	argID := 1

	if filter.Club != nil {
		query += fmt.Sprintf(" AND club = $%d", argID)
		args = append(args, *filter.Club)
		argID++
	}
	if filter.Search != nil {
		query += fmt.Sprintf(" AND (first_name ILIKE $%d OR last_name ILIKE $%d OR licence ILIKE $%d)", argID, argID, argID)
		args = append(args, "%"+*filter.Search+"%")
		argID++
	}

	query += " ORDER BY last_name, first_name"

	if filter.Limit > 0 {
		query += fmt.Sprintf(" LIMIT $%d", argID)
		args = append(args, filter.Limit)
		argID++
	}
	if filter.Offset > 0 {
		query += fmt.Sprintf(" OFFSET $%d", argID)
		args = append(args, filter.Offset)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return r.scanMany(rows)
}

func (r *postgresPlayerRepository) Update(ctx context.Context, p *models.Player) error {
	query := `
		UPDATE players SET licence = $1, first_name = $2, last_name = $3, club = $4, email = $5
		WHERE id = $6`

	result, err := r.db.ExecContext(ctx, query,
		models.NormalizeLicence(p.Licence), p.FirstName, p.LastName, p.Club, p.Email, p.ID,
	)
	if err != nil {
		return r.handlePlayerError(err)
	}
	return checkAffectedRows(result, ErrPlayerNotFound)
}

func (r *postgresPlayerRepository) Delete(ctx context.Context, id int) error {
	query := `DELETE FROM players WHERE id = $1`
	result, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return err
	}
	return checkAffectedRows(result, ErrPlayerNotFound)
}

func (r *postgresPlayerRepository) ListByLicences(ctx context.Context, licences []string) ([]models.Player, error) {
	if len(licences) == 0 {
		return []models.Player{}, nil
	}
	normalized := make([]string, 0, len(licences))
	for _, l := range licences {
		normalized = append(normalized, models.NormalizeLicence(l))
	}

	query := `
		SELECT id, licence, first_name, last_name, club, email, created_at
		FROM players
		WHERE REPLACE(licence, ' ', '') = ANY($1)
		ORDER BY last_name, first_name`

	rows, err := r.db.QueryContext(ctx, query, pq.Array(normalized))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return r.scanMany(rows)
}

func (r *postgresPlayerRepository) scanOne(row *sql.Row) (*models.Player, error) {
	p := &models.Player{}
	err := row.Scan(&p.ID, &p.Licence, &p.FirstName, &p.LastName, &p.Club, &p.Email, &p.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrPlayerNotFound
		}
		return nil, err
	}
	return p, nil
}

func (r *postgresPlayerRepository) scanMany(rows *sql.Rows) ([]models.Player, error) {
	players := make([]models.Player, 0)
	for rows.Next() {
		var p models.Player
		if scanErr := rows.Scan(&p.ID, &p.Licence, &p.FirstName, &p.LastName, &p.Club, &p.Email, &p.CreatedAt); scanErr != nil {
			return nil, scanErr
		}
		players = append(players, p)
	}
	return players, rows.Err()
}

func (r *postgresPlayerRepository) handlePlayerError(err error) error {
	if err == nil {
		return nil
	}
	if pqErr, ok := err.(*pq.Error); ok {
		if pqErr.Code == "23505" && pqErr.Constraint == "players_licence_key" {
			return ErrPlayerLicenceConflict
		}
	}
	return err
}
