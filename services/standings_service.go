package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/Dosada05/swiss-tournament/cache"
	"github.com/Dosada05/swiss-tournament/models"
	"github.com/Dosada05/swiss-tournament/repositories"
)

type StandingsService interface {
	// GetStandings returns players ranked by wins descending, then fewest
	// draws, then registration order.
	GetStandings(ctx context.Context, tournamentID int) ([]models.StandingsRow, error)
	Invalidate(ctx context.Context, tournamentID int)
}

type standingsService struct {
	store  SwissStore
	cache  cache.StandingsCache
	logger *slog.Logger
}

func NewStandingsService(store SwissStore, standingsCache cache.StandingsCache, logger *slog.Logger) StandingsService {
	if standingsCache == nil {
		standingsCache = cache.Nop{}
	}
	return &standingsService{
		store:  store,
		cache:  standingsCache,
		logger: logger,
	}
}

func (s *standingsService) GetStandings(ctx context.Context, tournamentID int) ([]models.StandingsRow, error) {
	rows, ok, err := s.cache.Get(ctx, tournamentID)
	if err != nil {
		s.logger.WarnContext(ctx, "standings cache read failed", slog.Int("tournament_id", tournamentID), slog.Any("error", err))
	} else if ok {
		return rows, nil
	}

	if err := ensureTournament(ctx, s.store, tournamentID); err != nil {
		return nil, err
	}

	rows, err = s.store.GetStandings(ctx, tournamentID)
	if err != nil {
		return nil, fmt.Errorf("failed to load standings of tournament %d: %w", tournamentID, err)
	}
	if rows == nil {
		rows = []models.StandingsRow{}
	}

	if err := s.cache.Set(ctx, tournamentID, rows); err != nil {
		s.logger.WarnContext(ctx, "standings cache write failed", slog.Int("tournament_id", tournamentID), slog.Any("error", err))
	}
	return rows, nil
}

func (s *standingsService) Invalidate(ctx context.Context, tournamentID int) {
	if err := s.cache.Invalidate(ctx, tournamentID); err != nil {
		s.logger.WarnContext(ctx, "standings cache invalidation failed", slog.Int("tournament_id", tournamentID), slog.Any("error", err))
	}
}

func ensureTournament(ctx context.Context, store SwissStore, tournamentID int) error {
	if _, err := store.GetTournament(ctx, tournamentID); err != nil {
		if errors.Is(err, repositories.ErrTournamentNotFound) {
			return ErrTournamentNotFound
		}
		return fmt.Errorf("failed to get tournament %d: %w", tournamentID, err)
	}
	return nil
}
