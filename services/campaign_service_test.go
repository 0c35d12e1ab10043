package services

import (
	"context"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/liguebillard/federation-admin/models"
	"github.com/stretchr/testify/require"
)

func strPtr(s string) *string { return &s }

type campaignFixture struct {
	svc          *campaignService
	mailer       *fakeMailer
	campaignRepo *fakeCampaignRepo
	playerRepo   *fakePlayerRepo
	rankingRepo  *fakeRankingRepo
	sleeps       *int
}

func newCampaignFixture(t *testing.T, rankings []models.Ranking, sentLicences ...string) *campaignFixture {
	t.Helper()

	playerRepo := newFakePlayerRepo()
	rankingRepo := &fakeRankingRepo{rankings: rankings}
	campaignRepo := newFakeCampaignRepo(sentLicences...)
	mailer := &fakeMailer{}
	settingsSvc, _ := newTestSettingsService(newFakeSettingRepo(nil), nil)

	sleeps := 0
	svc := &campaignService{
		playerRepo:  playerRepo,
		rankingRepo: rankingRepo,
		tournamentRepo: newFakeTournamentRepo(models.Tournament{
			ID:               1,
			CategoryID:       1,
			TournamentNumber: 2,
			Season:           "2024-2025",
			TournamentDate:   time.Date(2025, time.October, 12, 9, 0, 0, 0, time.UTC),
			Location:         strPtr("Salle de Lyon"),
		}),
		categoryRepo:    newFakeCategoryRepo(models.Category{ID: 1, Name: "Libre R1"}),
		campaignRepo:    campaignRepo,
		settingsService: settingsSvc,
		mailer:          mailer,
		logger:          slog.Default(),
		sleep:           func(time.Duration) { sleeps++ },
	}
	return &campaignFixture{
		svc:          svc,
		mailer:       mailer,
		campaignRepo: campaignRepo,
		playerRepo:   playerRepo,
		rankingRepo:  rankingRepo,
		sleeps:       &sleeps,
	}
}

func rankedFixture(n int) []models.Ranking {
	rankings := make([]models.Ranking, 0, n)
	for i := 1; i <= n; i++ {
		rankings = append(rankings, models.Ranking{
			CategoryID:   1,
			Season:       "2024-2025",
			Licence:      string(rune('0'+i)) + "000000",
			PlayerName:   "Player",
			RankPosition: i,
		})
	}
	return rankings
}

func (f *campaignFixture) addPlayer(licence string, email *string) {
	f.playerRepo.add(models.Player{
		Licence:   licence,
		FirstName: "Jean",
		LastName:  "DUPONT",
		Email:     email,
	})
}

func TestSendConvocations(t *testing.T) {
	fix := newCampaignFixture(t, rankedFixture(3))
	fix.addPlayer("1000000", strPtr("one@example.com"))
	fix.addPlayer("2000000", nil) // no email address
	fix.addPlayer("3000000", strPtr("three@example.com"))

	summary, err := fix.svc.SendConvocations(context.Background(), 1)
	require.NoError(t, err)
	require.Equal(t, 2, summary.Sent)
	require.Equal(t, 1, summary.Skipped)
	require.Empty(t, summary.Errors)

	require.Len(t, fix.mailer.sent, 2)
	first := fix.mailer.sent[0]
	require.Equal(t, []string{"one@example.com"}, first.to)
	require.Equal(t, "Convocation - Libre R1 T2", first.subject)
	require.Len(t, first.attachments, 1)
	require.Equal(t, "convocation.ics", first.attachments[0].Filename)
	require.Contains(t, string(first.attachments[0].Content), "DTSTART:20251012T090000Z")

	// One throttle pause between two sends.
	require.Equal(t, 1, *fix.sleeps)
	require.Len(t, fix.campaignRepo.logged, 2)
}

func TestSendConvocationsDeduplicates(t *testing.T) {
	fix := newCampaignFixture(t, rankedFixture(2), "1000000")
	fix.addPlayer("1000000", strPtr("one@example.com"))
	fix.addPlayer("2000000", strPtr("two@example.com"))

	summary, err := fix.svc.SendConvocations(context.Background(), 1)
	require.NoError(t, err)
	require.Equal(t, 1, summary.Sent)
	require.Equal(t, 1, summary.Skipped)
	require.Equal(t, []string{"two@example.com"}, fix.mailer.sent[0].to)
}

func TestSendConvocationsPartialFailure(t *testing.T) {
	fix := newCampaignFixture(t, rankedFixture(3))
	fix.addPlayer("1000000", strPtr("one@example.com"))
	fix.addPlayer("2000000", strPtr("two@example.com"))
	fix.addPlayer("3000000", strPtr("three@example.com"))
	fix.mailer.failFor = map[string]error{"two@example.com": errors.New("smtp refused")}

	summary, err := fix.svc.SendConvocations(context.Background(), 1)
	require.NoError(t, err)
	require.Equal(t, 2, summary.Sent)
	require.Len(t, summary.Errors, 1)
	require.Contains(t, summary.Errors[0], "2000000")
}

func TestSendConvocationsUnknownTournament(t *testing.T) {
	fix := newCampaignFixture(t, nil)

	_, err := fix.svc.SendConvocations(context.Background(), 99)
	require.ErrorIs(t, err, ErrTournamentNotFound)
}

func TestSendRelanceFinaleOnlyQualified(t *testing.T) {
	// 8 ranked players, default rule: the top 4 qualify.
	fix := newCampaignFixture(t, rankedFixture(8))
	for i := 1; i <= 8; i++ {
		licence := string(rune('0'+i)) + "000000"
		email := licence + "@example.com"
		fix.addPlayer(licence, &email)
	}

	summary, err := fix.svc.SendRelanceFinale(context.Background(), 1, "2024-2025")
	require.NoError(t, err)
	require.Equal(t, 4, summary.Sent)
	require.Zero(t, summary.Skipped)
	require.Len(t, fix.mailer.sent, 4)
}

func TestSendRelanceFinaleCutFromRankingSize(t *testing.T) {
	// 9 ranked players put the partition at the threshold, so the top 6
	// qualify. The last player has no record, which must not shrink the
	// field size used for the cut.
	fix := newCampaignFixture(t, rankedFixture(9))
	for i := 1; i <= 8; i++ {
		licence := string(rune('0'+i)) + "000000"
		email := licence + "@example.com"
		fix.addPlayer(licence, &email)
	}

	summary, err := fix.svc.SendRelanceFinale(context.Background(), 1, "2024-2025")
	require.NoError(t, err)
	require.Equal(t, 6, summary.Sent)
	require.Len(t, fix.mailer.sent, 6)
}

func TestSendInvitations(t *testing.T) {
	fix := newCampaignFixture(t, nil)
	fix.mailer.failFor = map[string]error{"bad@example.com": errors.New("bounce")}

	summary, err := fix.svc.SendInvitations(context.Background(), "Invitation", "<p>Venez</p>",
		[]string{"a@example.com", "bad@example.com", "b@example.com"})
	require.NoError(t, err)
	require.Equal(t, 2, summary.Sent)
	require.Len(t, summary.Errors, 1)
	// The throttle runs between every attempt, failures included.
	require.Equal(t, 2, *fix.sleeps)
}

func TestSendInvitationsValidation(t *testing.T) {
	fix := newCampaignFixture(t, nil)

	_, err := fix.svc.SendInvitations(context.Background(), "", "<p>x</p>", []string{"a@example.com"})
	require.ErrorIs(t, err, ErrValidationFailed)

	_, err = fix.svc.SendInvitations(context.Background(), "Sujet", "<p>x</p>", nil)
	require.ErrorIs(t, err, ErrNoRecipients)
}
