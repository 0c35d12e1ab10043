package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/liguebillard/federation-admin/models"
	"github.com/liguebillard/federation-admin/repositories"
)

// Validation statuses returned by ValidateUpload.
const (
	StatusReady              = "ready"
	StatusValidationRequired = "validation_required"
)

// UnknownPlayer is a CSV line whose licence and name match no existing
// player. First/last names are split heuristically from the export's
// "LASTNAME Firstname" form and are expected to need operator correction.
type UnknownPlayer struct {
	Licence   string `json:"licence"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	FullName  string `json:"fullName"`
}

// ValidationResult is the outcome of the pre-import check. No write happens
// here: unknown players are surfaced so the operator can review and fix
// names before anything is created.
type ValidationResult struct {
	Status         string          `json:"status"`
	UnknownPlayers []UnknownPlayer `json:"unknownPlayers,omitempty"`
}

type CreatePlayerInput struct {
	Licence   string  `json:"licence"`
	FirstName string  `json:"firstName"`
	LastName  string  `json:"lastName"`
	Club      string  `json:"club"`
	Email     *string `json:"email,omitempty"`
}

type ImportInput struct {
	CategoryID       int
	TournamentNumber int
	Season           string
	TournamentDate   time.Time
	Location         *string
}

// ImportSummary reports an import: row-level failures are collected, not
// fatal, so a partially bad file still lands its good rows and the operator
// sees exactly which lines to fix.
type ImportSummary struct {
	TournamentID int      `json:"tournamentId"`
	Imported     int      `json:"imported"`
	Errors       []string `json:"errors,omitempty"`
}

// ExistsCheck answers the pre-import overwrite confirmation.
type ExistsCheck struct {
	Exists       bool `json:"exists"`
	TournamentID int  `json:"tournamentId,omitempty"`
	ResultCount  int  `json:"resultCount,omitempty"`
}

type ImportService interface {
	ValidateUpload(ctx context.Context, data []byte) (*ValidationResult, error)
	CreatePlayers(ctx context.Context, inputs []CreatePlayerInput) (int, error)
	CheckExists(ctx context.Context, categoryID, tournamentNumber int, season string) (*ExistsCheck, error)
	Import(ctx context.Context, input ImportInput, data []byte) (*ImportSummary, error)
	DeleteTournament(ctx context.Context, id int) error
}

type importService struct {
	db             *sql.DB
	tournamentRepo repositories.TournamentRepository
	resultRepo     repositories.ResultRepository
	playerRepo     repositories.PlayerRepository
	categoryRepo   repositories.CategoryRepository
	rankingService RankingService
	logger         *slog.Logger
}

func NewImportService(
	db *sql.DB,
	tournamentRepo repositories.TournamentRepository,
	resultRepo repositories.ResultRepository,
	playerRepo repositories.PlayerRepository,
	categoryRepo repositories.CategoryRepository,
	rankingService RankingService,
	logger *slog.Logger,
) ImportService {
	return &importService{
		db:             db,
		tournamentRepo: tournamentRepo,
		resultRepo:     resultRepo,
		playerRepo:     playerRepo,
		categoryRepo:   categoryRepo,
		rankingService: rankingService,
		logger:         logger,
	}
}

func (s *importService) ValidateUpload(ctx context.Context, data []byte) (*ValidationResult, error) {
	if len(data) == 0 {
		return nil, ErrEmptyUpload
	}
	rows, err := ParseResultsCSV(data)
	if err != nil {
		return nil, fmt.Errorf("failed to parse CSV: %w", err)
	}

	seen := make(map[string]bool)
	unknown := make([]UnknownPlayer, 0)
	for _, row := range rows {
		if len(row) <= colPlayerName || isHeaderRow(row) || isBlankRow(row) {
			continue
		}
		licence := models.NormalizeLicence(row[colLicence])
		fullName := strings.TrimSpace(row[colPlayerName])
		if licence == "" || fullName == "" || seen[licence] {
			continue
		}
		seen[licence] = true

		known, err := s.playerIsKnown(ctx, licence, fullName)
		if err != nil {
			return nil, err
		}
		if !known {
			firstName, lastName := models.SplitCSVName(fullName)
			unknown = append(unknown, UnknownPlayer{
				Licence:   licence,
				FirstName: firstName,
				LastName:  lastName,
				FullName:  fullName,
			})
		}
	}

	if len(unknown) > 0 {
		return &ValidationResult{Status: StatusValidationRequired, UnknownPlayers: unknown}, nil
	}
	return &ValidationResult{Status: StatusReady}, nil
}

// playerIsKnown checks by normalized licence first, then falls back to a
// case-insensitive exact match on "first last" or "last first". The name
// fallback is deliberately strict about punctuation and accents: a miss
// forces manual review, which operators rely on.
func (s *importService) playerIsKnown(ctx context.Context, licence, fullName string) (bool, error) {
	_, err := s.playerRepo.GetByLicence(ctx, nil, licence)
	if err == nil {
		return true, nil
	}
	if !errors.Is(err, repositories.ErrPlayerNotFound) {
		return false, err
	}
	return s.playerRepo.ExistsByName(ctx, fullName)
}

func (s *importService) CreatePlayers(ctx context.Context, inputs []CreatePlayerInput) (int, error) {
	created := 0
	for _, input := range inputs {
		licence := models.NormalizeLicence(input.Licence)
		if licence == "" {
			return created, ErrLicenceRequired
		}
		if _, err := s.playerRepo.GetByLicence(ctx, nil, licence); err == nil {
			continue // already present, nothing to do
		} else if !errors.Is(err, repositories.ErrPlayerNotFound) {
			return created, err
		}

		club := input.Club
		if club == "" {
			club = models.PlaceholderClub
		}
		player := &models.Player{
			Licence:   licence,
			FirstName: input.FirstName,
			LastName:  input.LastName,
			Club:      club,
			Email:     input.Email,
		}
		if err := s.playerRepo.Create(ctx, nil, player); err != nil {
			if errors.Is(err, repositories.ErrPlayerLicenceConflict) {
				continue
			}
			return created, fmt.Errorf("failed to create player %s: %w", licence, err)
		}
		created++
	}
	return created, nil
}

func (s *importService) CheckExists(ctx context.Context, categoryID, tournamentNumber int, season string) (*ExistsCheck, error) {
	tournament, err := s.tournamentRepo.FindByTriple(ctx, categoryID, tournamentNumber, season)
	if err != nil {
		if errors.Is(err, repositories.ErrTournamentNotFound) {
			return &ExistsCheck{Exists: false}, nil
		}
		return nil, err
	}

	count, err := s.resultRepo.CountByTournament(ctx, tournament.ID)
	if err != nil {
		return nil, err
	}
	return &ExistsCheck{Exists: true, TournamentID: tournament.ID, ResultCount: count}, nil
}

func (s *importService) Import(ctx context.Context, input ImportInput, data []byte) (*ImportSummary, error) {
	if err := validateImportInput(input); err != nil {
		return nil, err
	}
	if _, err := s.categoryRepo.GetByID(ctx, input.CategoryID); err != nil {
		if errors.Is(err, repositories.ErrCategoryNotFound) {
			return nil, ErrCategoryNotFound
		}
		return nil, err
	}
	if len(data) == 0 {
		return nil, ErrEmptyUpload
	}

	rows, err := ParseResultsCSV(data)
	if err != nil {
		return nil, fmt.Errorf("failed to parse CSV: %w", err)
	}

	// Rows are parsed and checked before any write. Shape errors go into the
	// summary; only clean rows enter the transaction.
	parsed := make([]*parsedRow, 0, len(rows))
	rowErrors := make([]string, 0)
	for i, row := range rows {
		if isHeaderRow(row) || isBlankRow(row) {
			continue
		}
		result, parseErr := parseResultRow(row)
		if parseErr != nil {
			rowErrors = append(rowErrors, fmt.Sprintf("line %d: %v", i+1, parseErr))
			continue
		}
		parsed = append(parsed, result)
	}
	if len(parsed) == 0 {
		return nil, ErrNoResultRows
	}

	tournament := &models.Tournament{
		CategoryID:       input.CategoryID,
		TournamentNumber: input.TournamentNumber,
		Season:           input.Season,
		TournamentDate:   input.TournamentDate,
		Location:         input.Location,
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	committed := false
	defer func() {
		if !committed {
			if rbErr := tx.Rollback(); rbErr != nil && !errors.Is(rbErr, sql.ErrTxDone) {
				s.logger.Error("import rollback failed", slog.Any("error", rbErr))
			}
		}
	}()

	if err := s.tournamentRepo.Upsert(ctx, tx, tournament); err != nil {
		return nil, fmt.Errorf("failed to upsert tournament: %w", err)
	}

	// Players must exist before their result rows. Any licence the
	// reconciliation phase created is found here; stragglers get a
	// placeholder club since the export carries no club column.
	if err := s.ensurePlayers(ctx, tx, parsed); err != nil {
		return nil, err
	}

	if err := s.resultRepo.DeleteByTournament(ctx, tx, tournament.ID); err != nil {
		return nil, err
	}

	results := make([]*models.TournamentResult, 0, len(parsed))
	for _, p := range parsed {
		results = append(results, &models.TournamentResult{
			TournamentID: tournament.ID,
			Licence:      models.NormalizeLicence(p.Licence),
			PlayerName:   p.PlayerName,
			MatchPoints:  p.MatchPoints,
			Moyenne:      p.Moyenne,
			Reprises:     p.Reprises,
			Serie:        p.Serie,
			Points:       p.Points,
		})
	}
	if err := s.resultRepo.CreateBatch(ctx, tx, results); err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit import: %w", err)
	}
	committed = true

	// The import is committed at this point. A recalculation failure must not
	// swallow the summary; it is reported alongside the row errors and the
	// partition can be rebuilt with a manual recalculate.
	if err := s.rankingService.Recalculate(ctx, input.CategoryID, input.Season); err != nil {
		s.logger.Error("ranking recalculation failed after import",
			slog.Int("category_id", input.CategoryID),
			slog.String("season", input.Season),
			slog.Any("error", err),
		)
		rowErrors = append(rowErrors, fmt.Sprintf("ranking recalculation failed: %v", err))
	}

	s.logger.Info("tournament imported",
		slog.Int("tournament_id", tournament.ID),
		slog.Int("category_id", input.CategoryID),
		slog.Int("tournament_number", input.TournamentNumber),
		slog.String("season", input.Season),
		slog.Int("imported", len(results)),
		slog.Int("row_errors", len(rowErrors)),
	)

	return &ImportSummary{
		TournamentID: tournament.ID,
		Imported:     len(results),
		Errors:       rowErrors,
	}, nil
}

func (s *importService) ensurePlayers(ctx context.Context, tx *sql.Tx, parsed []*parsedRow) error {
	seen := make(map[string]bool)
	for _, p := range parsed {
		licence := models.NormalizeLicence(p.Licence)
		if seen[licence] {
			continue
		}
		seen[licence] = true

		_, err := s.playerRepo.GetByLicence(ctx, tx, licence)
		if err == nil {
			continue
		}
		if !errors.Is(err, repositories.ErrPlayerNotFound) {
			return err
		}

		firstName, lastName := models.SplitCSVName(p.PlayerName)
		player := &models.Player{
			Licence:   licence,
			FirstName: firstName,
			LastName:  lastName,
			Club:      models.PlaceholderClub,
		}
		if createErr := s.playerRepo.Create(ctx, tx, player); createErr != nil {
			return fmt.Errorf("failed to create player %s during import: %w", licence, createErr)
		}
	}
	return nil
}

func (s *importService) DeleteTournament(ctx context.Context, id int) error {
	tournament, err := s.tournamentRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repositories.ErrTournamentNotFound) {
			return ErrTournamentNotFound
		}
		return err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	if err := s.resultRepo.DeleteByTournament(ctx, tx, id); err != nil {
		_ = tx.Rollback()
		return err
	}
	if err := s.tournamentRepo.Delete(ctx, tx, id); err != nil {
		_ = tx.Rollback()
		if errors.Is(err, repositories.ErrTournamentNotFound) {
			return ErrTournamentNotFound
		}
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit tournament deletion: %w", err)
	}

	return s.rankingService.Recalculate(ctx, tournament.CategoryID, tournament.Season)
}

func validateImportInput(input ImportInput) error {
	if input.Season == "" {
		return ErrSeasonRequired
	}
	if input.TournamentNumber < 1 || input.TournamentNumber > models.FinaleNumber {
		return ErrInvalidTournamentNum
	}
	return nil
}
