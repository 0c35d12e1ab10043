package services

import "errors"

// Sentinel errors shared across services and the HTTP error mapping.
var (
	ErrNotFound = errors.New("requested resource not found")

	// Validation and business rules
	ErrValidationFailed     = errors.New("validation failed")
	ErrEmptyUpload          = errors.New("uploaded file is empty")
	ErrNoResultRows         = errors.New("no result rows found in uploaded file")
	ErrTitleRequired        = errors.New("title is required")
	ErrContentRequired      = errors.New("content is required")
	ErrLicenceRequired      = errors.New("licence is required")
	ErrSeasonRequired       = errors.New("season is required")
	ErrInvalidTournamentNum = errors.New("tournament number must be between 1 and 4")
	ErrPasswordTooShort     = errors.New("password is too short")
	ErrNoRecipients         = errors.New("no recipients with an email address")

	// Conflicts
	ErrLicenceConflict   = errors.New("licence is already registered")
	ErrUserEmailConflict = errors.New("email address is already in use")

	// Authentication
	ErrInvalidCredentials = errors.New("invalid email or password")

	// Entity-specific not-found errors
	ErrCategoryNotFound     = errors.New("category not found")
	ErrTournamentNotFound   = errors.New("tournament not found")
	ErrPlayerNotFound       = errors.New("player not found")
	ErrAnnouncementNotFound = errors.New("announcement not found")
	ErrUserNotFound         = errors.New("user not found")
)
