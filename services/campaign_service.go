package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/liguebillard/federation-admin/models"
	"github.com/liguebillard/federation-admin/repositories"
)

// emailThrottle is the pause between consecutive messages, required by the
// mail provider's rate limits. The loop is sequential on purpose.
const emailThrottle = 1500 * time.Millisecond

// Mailer renders and sends a single message. Satisfied by *EmailService.
type Mailer interface {
	EmailSender
	RenderTemplate(name string, data interface{}) (string, error)
}

// CampaignSummary reports one campaign run. A failed recipient never aborts
// the loop; it is recorded and the loop moves on.
type CampaignSummary struct {
	Sent    int      `json:"sent"`
	Skipped int      `json:"skipped"`
	Errors  []string `json:"errors,omitempty"`
}

type CampaignService interface {
	// SendConvocations emails every ranked player of the tournament's
	// category a call-up with an .ics calendar attachment.
	SendConvocations(ctx context.Context, tournamentID int) (*CampaignSummary, error)
	// SendResults emails each ranked player their standing after an import,
	// including the finale qualification message.
	SendResults(ctx context.Context, tournamentID int) (*CampaignSummary, error)
	// SendRelanceFinale reminds qualified players who have not yet been
	// relanced for this (category, season) finale.
	SendRelanceFinale(ctx context.Context, categoryID int, season string) (*CampaignSummary, error)
	SendInvitations(ctx context.Context, subject, htmlBody string, recipients []string) (*CampaignSummary, error)
}

type campaignService struct {
	playerRepo      repositories.PlayerRepository
	rankingRepo     repositories.RankingRepository
	tournamentRepo  repositories.TournamentRepository
	categoryRepo    repositories.CategoryRepository
	campaignRepo    repositories.CampaignRepository
	settingsService SettingsService
	mailer          Mailer
	logger          *slog.Logger

	// sleep is swappable in tests; production uses time.Sleep.
	sleep func(time.Duration)
}

func NewCampaignService(
	playerRepo repositories.PlayerRepository,
	rankingRepo repositories.RankingRepository,
	tournamentRepo repositories.TournamentRepository,
	categoryRepo repositories.CategoryRepository,
	campaignRepo repositories.CampaignRepository,
	settingsService SettingsService,
	mailer Mailer,
	logger *slog.Logger,
) CampaignService {
	return &campaignService{
		playerRepo:      playerRepo,
		rankingRepo:     rankingRepo,
		tournamentRepo:  tournamentRepo,
		categoryRepo:    categoryRepo,
		campaignRepo:    campaignRepo,
		settingsService: settingsService,
		mailer:          mailer,
		logger:          logger,
		sleep:           time.Sleep,
	}
}

type rankedRecipient struct {
	player  models.Player
	ranking models.Ranking
}

func (s *campaignService) SendConvocations(ctx context.Context, tournamentID int) (*CampaignSummary, error) {
	tournament, category, err := s.loadTournament(ctx, tournamentID)
	if err != nil {
		return nil, err
	}

	recipients, _, err := s.rankedRecipients(ctx, tournament.CategoryID, tournament.Season)
	if err != nil {
		return nil, err
	}

	location := ""
	if tournament.Location != nil {
		location = *tournament.Location
	}
	ics := BuildICS(CalendarEvent{
		UID:     convocationUID(tournament.ID),
		Summary: fmt.Sprintf("Tournoi %s T%d", category.Name, tournament.TournamentNumber),
		Description: fmt.Sprintf("Tournoi %d de la catégorie %s, saison %s",
			tournament.TournamentNumber, category.Name, tournament.Season),
		Location: location,
		Start:    tournament.TournamentDate,
		Duration: 8 * time.Hour,
	})
	attachment := EmailAttachment{
		Filename:    "convocation.ics",
		ContentType: "text/calendar; charset=utf-8",
		Content:     []byte(ics),
	}

	target := repositories.CampaignTarget{
		Kind:         models.CampaignConvocation,
		TournamentID: &tournament.ID,
	}
	subject := fmt.Sprintf("Convocation - %s T%d", category.Name, tournament.TournamentNumber)

	return s.sendToRanked(ctx, target, recipients, func(r rankedRecipient) (string, string, []EmailAttachment, error) {
		body, err := s.mailer.RenderTemplate("convocation.html", map[string]interface{}{
			"FirstName":        r.player.FirstName,
			"LastName":         r.player.LastName,
			"CategoryName":     category.Name,
			"TournamentNumber": tournament.TournamentNumber,
			"Season":           tournament.Season,
			"Date":             tournament.TournamentDate.Format("02/01/2006"),
			"Location":         location,
		})
		return subject, body, []EmailAttachment{attachment}, err
	})
}

func (s *campaignService) SendResults(ctx context.Context, tournamentID int) (*CampaignSummary, error) {
	tournament, category, err := s.loadTournament(ctx, tournamentID)
	if err != nil {
		return nil, err
	}

	recipients, fieldSize, err := s.rankedRecipients(ctx, tournament.CategoryID, tournament.Season)
	if err != nil {
		return nil, err
	}

	rule, err := s.settingsService.QualificationRule(ctx)
	if err != nil {
		return nil, err
	}
	qualifiedCount := rule.QualifiedCount(fieldSize)

	target := repositories.CampaignTarget{
		Kind:         models.CampaignResults,
		TournamentID: &tournament.ID,
	}
	subject := fmt.Sprintf("Résultats - %s T%d", category.Name, tournament.TournamentNumber)

	return s.sendToRanked(ctx, target, recipients, func(r rankedRecipient) (string, string, []EmailAttachment, error) {
		body, err := s.mailer.RenderTemplate("results.html", map[string]interface{}{
			"FirstName":        r.player.FirstName,
			"CategoryName":     category.Name,
			"Season":           tournament.Season,
			"RankPosition":     r.ranking.RankPosition,
			"TotalMatchPoints": r.ranking.TotalMatchPoints,
			"AvgMoyenne":       fmt.Sprintf("%.3f", r.ranking.AvgMoyenne),
			"BestSerie":        r.ranking.BestSerie,
			"Qualified":        rule.Qualifies(r.ranking.RankPosition, fieldSize),
			"QualifiedCount":   qualifiedCount,
		})
		return subject, body, nil, err
	})
}

func (s *campaignService) SendRelanceFinale(ctx context.Context, categoryID int, season string) (*CampaignSummary, error) {
	if season == "" {
		return nil, ErrSeasonRequired
	}
	category, err := s.categoryRepo.GetByID(ctx, categoryID)
	if err != nil {
		if errors.Is(err, repositories.ErrCategoryNotFound) {
			return nil, ErrCategoryNotFound
		}
		return nil, err
	}

	recipients, fieldSize, err := s.rankedRecipients(ctx, categoryID, season)
	if err != nil {
		return nil, err
	}

	rule, err := s.settingsService.QualificationRule(ctx)
	if err != nil {
		return nil, err
	}

	// Only qualified players get a relance.
	qualified := make([]rankedRecipient, 0, len(recipients))
	for _, r := range recipients {
		if rule.Qualifies(r.ranking.RankPosition, fieldSize) {
			qualified = append(qualified, r)
		}
	}

	target := repositories.CampaignTarget{
		Kind:       models.CampaignRelance,
		CategoryID: &categoryID,
		Season:     &season,
	}
	subject := fmt.Sprintf("Relance finale - %s %s", category.Name, season)

	return s.sendToRanked(ctx, target, qualified, func(r rankedRecipient) (string, string, []EmailAttachment, error) {
		body, err := s.mailer.RenderTemplate("relance_finale.html", map[string]interface{}{
			"FirstName":    r.player.FirstName,
			"CategoryName": category.Name,
			"Season":       season,
			"RankPosition": r.ranking.RankPosition,
		})
		return subject, body, nil, err
	})
}

func (s *campaignService) SendInvitations(ctx context.Context, subject, htmlBody string, recipients []string) (*CampaignSummary, error) {
	if subject == "" || htmlBody == "" {
		return nil, ErrValidationFailed
	}
	if len(recipients) == 0 {
		return nil, ErrNoRecipients
	}

	summary := &CampaignSummary{}
	target := repositories.CampaignTarget{Kind: models.CampaignInvitation}
	for i, recipient := range recipients {
		if i > 0 {
			s.sleep(emailThrottle)
		}
		if err := s.mailer.Send([]string{recipient}, subject, htmlBody, nil); err != nil {
			summary.Errors = append(summary.Errors, fmt.Sprintf("%s: %v", recipient, err))
			continue
		}
		if err := s.campaignRepo.LogSent(ctx, target, "", recipient); err != nil {
			s.logger.Error("failed to log invitation", slog.String("recipient", recipient), slog.Any("error", err))
		}
		summary.Sent++
	}
	return summary, nil
}

// sendToRanked runs the shared campaign loop: skip players without an email
// or already logged for the target, render, send, log, throttle.
func (s *campaignService) sendToRanked(
	ctx context.Context,
	target repositories.CampaignTarget,
	recipients []rankedRecipient,
	compose func(rankedRecipient) (subject, body string, attachments []EmailAttachment, err error),
) (*CampaignSummary, error) {
	sent, err := s.campaignRepo.SentLicences(ctx, target)
	if err != nil {
		return nil, err
	}

	summary := &CampaignSummary{}
	first := true
	for _, r := range recipients {
		licence := models.NormalizeLicence(r.player.Licence)
		if r.player.Email == nil || *r.player.Email == "" || sent[licence] {
			summary.Skipped++
			continue
		}

		subject, body, attachments, composeErr := compose(r)
		if composeErr != nil {
			return nil, composeErr
		}

		if !first {
			s.sleep(emailThrottle)
		}
		first = false

		if sendErr := s.mailer.Send([]string{*r.player.Email}, subject, body, attachments); sendErr != nil {
			summary.Errors = append(summary.Errors, fmt.Sprintf("%s: %v", licence, sendErr))
			continue
		}
		if logErr := s.campaignRepo.LogSent(ctx, target, licence, *r.player.Email); logErr != nil {
			s.logger.Error("failed to log campaign email",
				slog.String("licence", licence), slog.Any("error", logErr))
		}
		summary.Sent++
	}
	return summary, nil
}

func (s *campaignService) loadTournament(ctx context.Context, tournamentID int) (*models.Tournament, *models.Category, error) {
	tournament, err := s.tournamentRepo.GetByID(ctx, tournamentID)
	if err != nil {
		if errors.Is(err, repositories.ErrTournamentNotFound) {
			return nil, nil, ErrTournamentNotFound
		}
		return nil, nil, err
	}
	category, err := s.categoryRepo.GetByID(ctx, tournament.CategoryID)
	if err != nil {
		if errors.Is(err, repositories.ErrCategoryNotFound) {
			return nil, nil, ErrCategoryNotFound
		}
		return nil, nil, err
	}
	return tournament, category, nil
}

// rankedRecipients joins the ranking partition with player records by
// normalized licence, keeping ranking order. It also returns the partition
// size: the qualification cut depends on how many players are ranked, not on
// how many of them have a player record.
func (s *campaignService) rankedRecipients(ctx context.Context, categoryID int, season string) ([]rankedRecipient, int, error) {
	rankings, err := s.rankingRepo.ListByCategorySeason(ctx, categoryID, season)
	if err != nil {
		return nil, 0, err
	}
	licences := make([]string, 0, len(rankings))
	for _, rk := range rankings {
		licences = append(licences, rk.Licence)
	}
	players, err := s.playerRepo.ListByLicences(ctx, licences)
	if err != nil {
		return nil, 0, err
	}
	byLicence := make(map[string]models.Player, len(players))
	for _, p := range players {
		byLicence[models.NormalizeLicence(p.Licence)] = p
	}

	recipients := make([]rankedRecipient, 0, len(rankings))
	for _, rk := range rankings {
		player, ok := byLicence[models.NormalizeLicence(rk.Licence)]
		if !ok {
			continue
		}
		recipients = append(recipients, rankedRecipient{player: player, ranking: rk})
	}
	return recipients, len(rankings), nil
}
