package services

import (
	"context"
	"database/sql"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/liguebillard/federation-admin/db/dbtest"
	"github.com/liguebillard/federation-admin/models"
	"github.com/liguebillard/federation-admin/repositories"
	"github.com/stretchr/testify/require"
)

type importEnv struct {
	db             *sql.DB
	importSvc      ImportService
	rankingSvc     RankingService
	playerRepo     repositories.PlayerRepository
	resultRepo     repositories.ResultRepository
	tournamentRepo repositories.TournamentRepository
	categoryID     int
}

func newImportEnv(t *testing.T) *importEnv {
	t.Helper()
	db := dbtest.Connect(t)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	tournamentRepo := repositories.NewPostgresTournamentRepository(db)
	resultRepo := repositories.NewPostgresResultRepository(db)
	playerRepo := repositories.NewPostgresPlayerRepository(db)
	categoryRepo := repositories.NewPostgresCategoryRepository(db)
	rankingRepo := repositories.NewPostgresRankingRepository(db)

	rankingSvc := NewRankingService(db, resultRepo, rankingRepo, tournamentRepo, categoryRepo, logger)
	importSvc := NewImportService(db, tournamentRepo, resultRepo, playerRepo, categoryRepo, rankingSvc, logger)

	var categoryID int
	err := db.QueryRow(
		`INSERT INTO categories (name, game_type, level) VALUES ('Libre R1', 'libre', 'regionale_1') RETURNING id`,
	).Scan(&categoryID)
	require.NoError(t, err)

	return &importEnv{
		db:             db,
		importSvc:      importSvc,
		rankingSvc:     rankingSvc,
		playerRepo:     playerRepo,
		resultRepo:     resultRepo,
		tournamentRepo: tournamentRepo,
		categoryID:     categoryID,
	}
}

func (e *importEnv) input(number int) ImportInput {
	return ImportInput{
		CategoryID:       e.categoryID,
		TournamentNumber: number,
		Season:           "2024-2025",
		TournamentDate:   time.Date(2024, time.November, 10, 0, 0, 0, 0, time.UTC),
	}
}

func TestImportCreatesMissingPlayers(t *testing.T) {
	env := newImportEnv(t)
	ctx := context.Background()

	data := []byte("1;1234567;DUPONT Jean;;24;;1,234;;50;7;;;120\n" +
		"2;7654321;MARTIN Paul;;18;;0,987;;40;5;;;95\n")

	summary, err := env.importSvc.Import(ctx, env.input(1), data)
	require.NoError(t, err)
	require.Equal(t, 2, summary.Imported)
	require.Empty(t, summary.Errors)

	player, err := env.playerRepo.GetByLicence(ctx, nil, "1234567")
	require.NoError(t, err)
	require.Equal(t, "Jean", player.FirstName)
	require.Equal(t, "DUPONT", player.LastName)
	require.Equal(t, models.PlaceholderClub, player.Club)
	require.Nil(t, player.Email)

	rankings, err := env.rankingSvc.ListRankings(ctx, env.categoryID, "2024-2025")
	require.NoError(t, err)
	require.Len(t, rankings, 2)
	require.Equal(t, "1234567", rankings[0].Licence)
	require.Equal(t, 1, rankings[0].RankPosition)
}

func TestReimportReplacesResultsAndRankings(t *testing.T) {
	env := newImportEnv(t)
	ctx := context.Background()

	first := []byte("1;1234567;DUPONT Jean;;24;;1,234;;50;7;;;120\n" +
		"2;7654321;MARTIN Paul;;18;;0,987;;40;5;;;95\n")
	_, err := env.importSvc.Import(ctx, env.input(1), first)
	require.NoError(t, err)

	corrected := []byte("1;7654321;MARTIN Paul;;22;;1,100;;44;8;;;110\n")
	summary, err := env.importSvc.Import(ctx, env.input(1), corrected)
	require.NoError(t, err)
	require.Equal(t, 1, summary.Imported)

	tournament, err := env.tournamentRepo.FindByTriple(ctx, env.categoryID, 1, "2024-2025")
	require.NoError(t, err)
	count, err := env.resultRepo.CountByTournament(ctx, tournament.ID)
	require.NoError(t, err)
	require.Equal(t, 1, count)

	rankings, err := env.rankingSvc.ListRankings(ctx, env.categoryID, "2024-2025")
	require.NoError(t, err)
	require.Len(t, rankings, 1)
	require.Equal(t, "7654321", rankings[0].Licence)
	require.Equal(t, 22, rankings[0].TotalMatchPoints)
}

func TestRecalculateIsIdempotent(t *testing.T) {
	env := newImportEnv(t)
	ctx := context.Background()

	data := []byte("1;1234567;DUPONT Jean;;24;;1,234;;50;7;;;120\n" +
		"2;7654321;MARTIN Paul;;18;;0,987;;40;5;;;95\n")
	_, err := env.importSvc.Import(ctx, env.input(1), data)
	require.NoError(t, err)

	require.NoError(t, env.rankingSvc.Recalculate(ctx, env.categoryID, "2024-2025"))
	require.NoError(t, env.rankingSvc.Recalculate(ctx, env.categoryID, "2024-2025"))

	rankings, err := env.rankingSvc.ListRankings(ctx, env.categoryID, "2024-2025")
	require.NoError(t, err)
	require.Len(t, rankings, 2)
	require.Equal(t, 1, rankings[0].RankPosition)
	require.Equal(t, 2, rankings[1].RankPosition)
	require.Equal(t, "1234567", rankings[0].Licence)
}

func TestFinaleResultsStayOutOfRankings(t *testing.T) {
	env := newImportEnv(t)
	ctx := context.Background()

	regular := []byte("1;1234567;DUPONT Jean;;24;;1,234;;50;7;;;120\n")
	_, err := env.importSvc.Import(ctx, env.input(1), regular)
	require.NoError(t, err)

	finale := []byte("1;1234567;DUPONT Jean;;90;;2,000;;10;99;;;99\n")
	_, err = env.importSvc.Import(ctx, env.input(models.FinaleNumber), finale)
	require.NoError(t, err)

	rankings, err := env.rankingSvc.ListRankings(ctx, env.categoryID, "2024-2025")
	require.NoError(t, err)
	require.Len(t, rankings, 1)
	require.Equal(t, 24, rankings[0].TotalMatchPoints)
	require.Equal(t, 7, rankings[0].BestSerie)
}

type failingRecalcService struct {
	err error
}

func (s failingRecalcService) Recalculate(ctx context.Context, categoryID int, season string) error {
	return s.err
}

func (s failingRecalcService) RecalculateAll(ctx context.Context) (*SweepSummary, error) {
	return &SweepSummary{}, nil
}

func (s failingRecalcService) ListRankings(ctx context.Context, categoryID int, season string) ([]models.Ranking, error) {
	return nil, nil
}

func TestImportReportsRecalculationFailure(t *testing.T) {
	env := newImportEnv(t)
	ctx := context.Background()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	svc := NewImportService(
		env.db,
		env.tournamentRepo,
		env.resultRepo,
		env.playerRepo,
		repositories.NewPostgresCategoryRepository(env.db),
		failingRecalcService{err: errors.New("partition rebuild failed")},
		logger,
	)

	data := []byte("1;1234567;DUPONT Jean;;24;;1,234;;50;7;;;120\n")
	summary, err := svc.Import(ctx, env.input(1), data)
	require.NoError(t, err)
	require.Equal(t, 1, summary.Imported)
	require.Len(t, summary.Errors, 1)
	require.Contains(t, summary.Errors[0], "ranking recalculation failed")

	// The import itself stays committed.
	tournament, err := env.tournamentRepo.FindByTriple(ctx, env.categoryID, 1, "2024-2025")
	require.NoError(t, err)
	count, err := env.resultRepo.CountByTournament(ctx, tournament.ID)
	require.NoError(t, err)
	require.Equal(t, 1, count)
}
