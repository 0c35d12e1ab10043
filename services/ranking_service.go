package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"sync"

	"github.com/liguebillard/federation-admin/models"
	"github.com/liguebillard/federation-admin/repositories"
	"golang.org/x/sync/errgroup"
)

// sweepConcurrency bounds the recalculate-all sweep. Partitions are
// independent, each one replaced in its own transaction.
const sweepConcurrency = 4

// SweepSummary reports a recalculate-all run. Failed partitions do not stop
// the sweep; they are listed so the operator can retry them.
type SweepSummary struct {
	Recalculated int      `json:"recalculated"`
	Errors       []string `json:"errors,omitempty"`
}

type RankingService interface {
	// Recalculate rebuilds the (category, season) ranking partition from the
	// current result set. Idempotent; must run after every import or delete.
	Recalculate(ctx context.Context, categoryID int, season string) error
	RecalculateAll(ctx context.Context) (*SweepSummary, error)
	ListRankings(ctx context.Context, categoryID int, season string) ([]models.Ranking, error)
}

type rankingService struct {
	db             *sql.DB
	resultRepo     repositories.ResultRepository
	rankingRepo    repositories.RankingRepository
	tournamentRepo repositories.TournamentRepository
	categoryRepo   repositories.CategoryRepository
	logger         *slog.Logger
}

func NewRankingService(
	db *sql.DB,
	resultRepo repositories.ResultRepository,
	rankingRepo repositories.RankingRepository,
	tournamentRepo repositories.TournamentRepository,
	categoryRepo repositories.CategoryRepository,
	logger *slog.Logger,
) RankingService {
	return &rankingService{
		db:             db,
		resultRepo:     resultRepo,
		rankingRepo:    rankingRepo,
		tournamentRepo: tournamentRepo,
		categoryRepo:   categoryRepo,
		logger:         logger,
	}
}

func (s *rankingService) Recalculate(ctx context.Context, categoryID int, season string) error {
	if season == "" {
		return ErrSeasonRequired
	}
	if _, err := s.categoryRepo.GetByID(ctx, categoryID); err != nil {
		if errors.Is(err, repositories.ErrCategoryNotFound) {
			return ErrCategoryNotFound
		}
		return err
	}

	aggregates, err := s.resultRepo.AggregateByCategorySeason(ctx, categoryID, season)
	if err != nil {
		return fmt.Errorf("failed to aggregate results: %w", err)
	}

	rankings := buildRankings(categoryID, season, aggregates)

	// The delete+insert pair runs in one transaction so readers never see a
	// half-replaced partition.
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	if err := s.rankingRepo.Replace(ctx, tx, categoryID, season, rankings); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			s.logger.Error("rollback failed after ranking replace error", slog.Any("error", rbErr))
		}
		return fmt.Errorf("failed to replace rankings: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit ranking replacement: %w", err)
	}

	s.logger.Info("rankings recalculated",
		slog.Int("category_id", categoryID),
		slog.String("season", season),
		slog.Int("players", len(rankings)),
	)
	return nil
}

func (s *rankingService) RecalculateAll(ctx context.Context) (*SweepSummary, error) {
	pairs, err := s.tournamentRepo.ListCategorySeasons(ctx)
	if err != nil {
		return nil, err
	}

	summary := &SweepSummary{}
	var mu sync.Mutex

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(sweepConcurrency)
	for _, pair := range pairs {
		pair := pair
		g.Go(func() error {
			err := s.Recalculate(gctx, pair.CategoryID, pair.Season)
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				summary.Errors = append(summary.Errors,
					fmt.Sprintf("category %d season %s: %v", pair.CategoryID, pair.Season, err))
				// Failures are collected, never returned: one broken
				// partition must not stop the others.
				return nil
			}
			summary.Recalculated++
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	sort.Strings(summary.Errors)
	return summary, nil
}

func (s *rankingService) ListRankings(ctx context.Context, categoryID int, season string) ([]models.Ranking, error) {
	return s.rankingRepo.ListByCategorySeason(ctx, categoryID, season)
}

// buildRankings orders the aggregates and assigns dense 1-based positions.
// Ordering keys, in precedence: total match points, average moyenne, best
// serie, all descending. Ties beyond the third key keep the aggregation
// order (stable sort over licence-ordered input).
func buildRankings(categoryID int, season string, aggregates []repositories.ResultAggregate) []*models.Ranking {
	rankings := make([]*models.Ranking, 0, len(aggregates))
	for _, a := range aggregates {
		avg := 0.0
		if a.TotalReprises > 0 {
			avg = float64(a.TotalPoints) / float64(a.TotalReprises)
		}
		rankings = append(rankings, &models.Ranking{
			CategoryID:       categoryID,
			Season:           season,
			Licence:          models.NormalizeLicence(a.Licence),
			PlayerName:       a.PlayerName,
			TotalMatchPoints: a.TotalMatchPoints,
			AvgMoyenne:       avg,
			BestSerie:        a.BestSerie,
			T1Points:         a.T1Points,
			T2Points:         a.T2Points,
			T3Points:         a.T3Points,
		})
	}

	sort.SliceStable(rankings, func(i, j int) bool {
		a, b := rankings[i], rankings[j]
		if a.TotalMatchPoints != b.TotalMatchPoints {
			return a.TotalMatchPoints > b.TotalMatchPoints
		}
		if a.AvgMoyenne != b.AvgMoyenne {
			return a.AvgMoyenne > b.AvgMoyenne
		}
		return a.BestSerie > b.BestSerie
	})

	for i, rk := range rankings {
		rk.RankPosition = i + 1
	}
	return rankings
}
