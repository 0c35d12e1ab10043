package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/liguebillard/federation-admin/models"
)

var ErrSettingNotFound = errors.New("setting not found")

type SettingRepository interface {
	Get(ctx context.Context, key string) (*models.Setting, error)
	GetAll(ctx context.Context) ([]models.Setting, error)
	// UpsertMany writes every pair in one transaction-friendly pass.
	UpsertMany(ctx context.Context, exec SQLExecutor, values map[string]string) error
}

type postgresSettingRepository struct {
	db *sql.DB
}

func NewPostgresSettingRepository(db *sql.DB) SettingRepository {
	return &postgresSettingRepository{db: db}
}

func (r *postgresSettingRepository) getExecutor(exec SQLExecutor) SQLExecutor {
	if exec != nil {
		return exec
	}
	return r.db
}

func (r *postgresSettingRepository) Get(ctx context.Context, key string) (*models.Setting, error) {
	query := `SELECT key, value, updated_at FROM settings WHERE key = $1`

	s := &models.Setting{}
	err := r.db.QueryRowContext(ctx, query, key).Scan(&s.Key, &s.Value, &s.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrSettingNotFound
		}
		return nil, err
	}
	return s, nil
}

func (r *postgresSettingRepository) GetAll(ctx context.Context) ([]models.Setting, error) {
	query := `SELECT key, value, updated_at FROM settings ORDER BY key`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	settings := make([]models.Setting, 0)
	for rows.Next() {
		var s models.Setting
		if scanErr := rows.Scan(&s.Key, &s.Value, &s.UpdatedAt); scanErr != nil {
			return nil, scanErr
		}
		settings = append(settings, s)
	}
	return settings, rows.Err()
}

func (r *postgresSettingRepository) UpsertMany(ctx context.Context, exec SQLExecutor, values map[string]string) error {
	executor := r.getExecutor(exec)
	query := `
		INSERT INTO settings (key, value, updated_at)
		VALUES ($1, $2, NOW())
		ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value, updated_at = NOW()`

	for key, value := range values {
		if _, err := executor.ExecContext(ctx, query, key, value); err != nil {
			return fmt.Errorf("failed to upsert setting %s: %w", key, err)
		}
	}
	return nil
}
