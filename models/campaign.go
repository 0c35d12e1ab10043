package models

import "time"

// CampaignKind distinguishes the email campaigns the back office sends.
type CampaignKind string

const (
	CampaignConvocation CampaignKind = "convocation"
	CampaignResults     CampaignKind = "results"
	CampaignRelance     CampaignKind = "relance_finale"
	CampaignInvitation  CampaignKind = "invitation"
)

// CampaignEmail is the sent log of one message. It backs the "already sent"
// dedup check: a campaign never emails the same licence twice for the same
// (kind, category, season) target.
type CampaignEmail struct {
	ID           int          `json:"id" db:"id"`
	Kind         CampaignKind `json:"kind" db:"kind"`
	CategoryID   *int         `json:"category_id,omitempty" db:"category_id"`
	Season       *string      `json:"season,omitempty" db:"season"`
	TournamentID *int         `json:"tournament_id,omitempty" db:"tournament_id"`
	Licence      string       `json:"licence" db:"licence"`
	Recipient    string       `json:"recipient" db:"recipient"`
	SentAt       time.Time    `json:"sent_at" db:"sent_at"`
}
