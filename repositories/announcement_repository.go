package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/liguebillard/federation-admin/models"
)

var ErrAnnouncementNotFound = errors.New("announcement not found")

type ListAnnouncementsFilter struct {
	// Mode and Category filters match rows whose column equals the value OR
	// is NULL: an announcement without a mode applies to every mode.
	Mode          *string
	Category      *string
	PublishedOnly bool
}

type AnnouncementRepository interface {
	Create(ctx context.Context, a *models.Announcement) error
	GetByID(ctx context.Context, id int) (*models.Announcement, error)
	List(ctx context.Context, filter ListAnnouncementsFilter) ([]models.Announcement, error)
	Update(ctx context.Context, a *models.Announcement) error
	Delete(ctx context.Context, id int) error
}

type postgresAnnouncementRepository struct {
	db *sql.DB
}

func NewPostgresAnnouncementRepository(db *sql.DB) AnnouncementRepository {
	return &postgresAnnouncementRepository{db: db}
}

func (r *postgresAnnouncementRepository) Create(ctx context.Context, a *models.Announcement) error {
	query := `
		INSERT INTO announcements (title, content, mode, category, published)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at, updated_at`

	return r.db.QueryRowContext(ctx, query,
		a.Title, a.Content, a.Mode, a.Category, a.Published,
	).Scan(&a.ID, &a.CreatedAt, &a.UpdatedAt)
}

func (r *postgresAnnouncementRepository) GetByID(ctx context.Context, id int) (*models.Announcement, error) {
	query := `
		SELECT id, title, content, mode, category, published, created_at, updated_at
		FROM announcements WHERE id = $1`

	a := &models.Announcement{}
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&a.ID, &a.Title, &a.Content, &a.Mode, &a.Category, &a.Published, &a.CreatedAt, &a.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrAnnouncementNotFound
		}
		return nil, err
	}
	return a, nil
}

func (r *postgresAnnouncementRepository) List(ctx context.Context, filter ListAnnouncementsFilter) ([]models.Announcement, error) {
	query := `
		SELECT id, title, content, mode, category, published, created_at, updated_at
		FROM announcements
		WHERE 1=1`

	args := []interface{}{}
	argID := 1

	if filter.Mode != nil {
		query += fmt.Sprintf(" AND (mode = $%d OR mode IS NULL)", argID)
		args = append(args, *filter.Mode)
		argID++
	}
	if filter.Category != nil {
		query += fmt.Sprintf(" AND (category = $%d OR category IS NULL)", argID)
		args = append(args, *filter.Category)
		argID++
	}
	if filter.PublishedOnly {
		query += " AND published = TRUE"
	}

	query += " ORDER BY created_at DESC"

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	announcements := make([]models.Announcement, 0)
	for rows.Next() {
		var a models.Announcement
		if scanErr := rows.Scan(
			&a.ID, &a.Title, &a.Content, &a.Mode, &a.Category, &a.Published, &a.CreatedAt, &a.UpdatedAt,
		); scanErr != nil {
			return nil, scanErr
		}
		announcements = append(announcements, a)
	}
	return announcements, rows.Err()
}

func (r *postgresAnnouncementRepository) Update(ctx context.Context, a *models.Announcement) error {
	query := `
		UPDATE announcements
		SET title = $1, content = $2, mode = $3, category = $4, published = $5, updated_at = NOW()
		WHERE id = $6`

	result, err := r.db.ExecContext(ctx, query,
		a.Title, a.Content, a.Mode, a.Category, a.Published, a.ID,
	)
	if err != nil {
		return err
	}
	return checkAffectedRows(result, ErrAnnouncementNotFound)
}

func (r *postgresAnnouncementRepository) Delete(ctx context.Context, id int) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM announcements WHERE id = $1`, id)
	if err != nil {
		return err
	}
	return checkAffectedRows(result, ErrAnnouncementNotFound)
}
