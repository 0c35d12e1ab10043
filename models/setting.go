package models

import "time"

// Setting is one key/value pair of the federation's configuration (branding,
// qualification thresholds, email subjects...).
type Setting struct {
	Key       string    `json:"key" db:"key"`
	Value     string    `json:"value" db:"value"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// Setting keys consumed by the qualification rules. Values are integers
// stored as strings; missing or unparsable values fall back to the defaults.
const (
	SettingQualificationThreshold = "qualification_threshold"
	SettingQualificationSmall     = "qualification_small"
	SettingQualificationLarge     = "qualification_large"
	SettingLogoURL                = "logo_url"
)
