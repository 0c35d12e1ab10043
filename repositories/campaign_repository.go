package repositories

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/liguebillard/federation-admin/models"
)

// CampaignTarget identifies what a campaign was sent about. CategoryID and
// Season are set for ranking-scoped campaigns (results, relance finale),
// TournamentID for convocations.
type CampaignTarget struct {
	Kind         models.CampaignKind
	CategoryID   *int
	Season       *string
	TournamentID *int
}

type CampaignRepository interface {
	// SentLicences returns the normalized licences already emailed for the
	// target, for the "already sent" dedup check.
	SentLicences(ctx context.Context, target CampaignTarget) (map[string]bool, error)
	LogSent(ctx context.Context, target CampaignTarget, licence, recipient string) error
}

type postgresCampaignRepository struct {
	db *sql.DB
}

func NewPostgresCampaignRepository(db *sql.DB) CampaignRepository {
	return &postgresCampaignRepository{db: db}
}

func (r *postgresCampaignRepository) SentLicences(ctx context.Context, target CampaignTarget) (map[string]bool, error) {
	query := `
		SELECT REPLACE(licence, ' ', '')
		FROM campaign_emails
		WHERE kind = $1
		  AND category_id IS NOT DISTINCT FROM $2
		  AND season IS NOT DISTINCT FROM $3
		  AND tournament_id IS NOT DISTINCT FROM $4`

	rows, err := r.db.QueryContext(ctx, query, target.Kind, target.CategoryID, target.Season, target.TournamentID)
	if err != nil {
		return nil, fmt.Errorf("failed to list sent licences: %w", err)
	}
	defer rows.Close()

	sent := make(map[string]bool)
	for rows.Next() {
		var licence string
		if scanErr := rows.Scan(&licence); scanErr != nil {
			return nil, scanErr
		}
		sent[licence] = true
	}
	return sent, rows.Err()
}

func (r *postgresCampaignRepository) LogSent(ctx context.Context, target CampaignTarget, licence, recipient string) error {
	query := `
		INSERT INTO campaign_emails (kind, category_id, season, tournament_id, licence, recipient)
		VALUES ($1, $2, $3, $4, $5, $6)`

	_, err := r.db.ExecContext(ctx, query,
		target.Kind, target.CategoryID, target.Season, target.TournamentID,
		models.NormalizeLicence(licence), recipient,
	)
	if err != nil {
		return fmt.Errorf("failed to log sent email for licence %s: %w", licence, err)
	}
	return nil
}
