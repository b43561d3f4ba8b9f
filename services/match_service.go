package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/Dosada05/swiss-tournament/models"
	"github.com/Dosada05/swiss-tournament/realtime"
	"github.com/Dosada05/swiss-tournament/repositories"
)

type MatchService interface {
	RecordMatch(ctx context.Context, input RecordMatchInput) (*models.Match, error)
	RecordResult(ctx context.Context, input RecordResultInput) (*models.Match, error)
	ListMatches(ctx context.Context, tournamentID int, round *int) ([]*models.Match, error)
	DeleteMatches(ctx context.Context, tournamentID int) (int64, error)
}

type RecordMatchInput struct {
	TournamentID int `json:"tournament_id"`
	Player1ID    int `json:"player1_id"`
	Player2ID    int `json:"player2_id"`
	Round        int `json:"round"`
}

type RecordResultInput struct {
	MatchID  int  `json:"match_id"`
	WinnerID int  `json:"winner_id"`
	LoserID  int  `json:"loser_id"`
	IsDraw   bool `json:"is_draw"`
}

type matchService struct {
	store       SwissStore
	standings   StandingsService
	broadcaster Broadcaster
	logger      *slog.Logger
}

func NewMatchService(store SwissStore, standings StandingsService, broadcaster Broadcaster, logger *slog.Logger) MatchService {
	if broadcaster == nil {
		broadcaster = nopBroadcaster{}
	}
	return &matchService{
		store:       store,
		standings:   standings,
		broadcaster: broadcaster,
		logger:      logger,
	}
}

// RecordMatch stores a manually entered pairing.
func (s *matchService) RecordMatch(ctx context.Context, input RecordMatchInput) (*models.Match, error) {
	if input.Player1ID == input.Player2ID {
		return nil, ErrSamePlayer
	}
	if input.Round <= 0 {
		return nil, fmt.Errorf("%w: round must be positive, got %d", ErrValidationFailed, input.Round)
	}
	if err := ensureTournament(ctx, s.store, input.TournamentID); err != nil {
		return nil, err
	}

	id, err := s.store.RecordMatch(ctx, input.TournamentID, input.Player1ID, input.Player2ID, input.Round)
	if err != nil {
		switch {
		case errors.Is(err, repositories.ErrPlayerNotRegistered):
			return nil, fmt.Errorf("%w: %w", ErrPlayerNotRegistered, err)
		case errors.Is(err, repositories.ErrMatchPlayersInvalid):
			return nil, ErrSamePlayer
		case errors.Is(err, repositories.ErrRoundOutOfSequence):
			return nil, fmt.Errorf("%w: round %d", ErrRoundOutOfSequence, input.Round)
		case errors.Is(err, repositories.ErrRematch):
			return nil, fmt.Errorf("%w: %d vs %d", ErrRematch, input.Player1ID, input.Player2ID)
		case errors.Is(err, repositories.ErrPlayerAlreadyPaired):
			return nil, fmt.Errorf("%w: round %d", ErrPlayerAlreadyPaired, input.Round)
		default:
			return nil, fmt.Errorf("%w: record match: %w", ErrPersistenceFailure, err)
		}
	}

	s.standings.Invalidate(ctx, input.TournamentID)
	return s.getMatch(ctx, id)
}

// RecordResult stores the outcome of a match. Both result rows are written
// atomically and a match can only be reported once.
func (s *matchService) RecordResult(ctx context.Context, input RecordResultInput) (*models.Match, error) {
	if input.WinnerID == input.LoserID {
		return nil, ErrSamePlayer
	}

	match, err := s.getMatch(ctx, input.MatchID)
	if err != nil {
		return nil, err
	}
	if !match.HasPlayer(input.WinnerID) || !match.HasPlayer(input.LoserID) {
		return nil, fmt.Errorf("%w: match %d is %d vs %d", ErrResultPlayersMismatch, match.ID, match.Player1ID, match.Player2ID)
	}
	if len(match.Results) > 0 {
		return nil, fmt.Errorf("%w: match %d", ErrResultAlreadyRecorded, match.ID)
	}

	err = s.store.RecordResult(ctx, match.ID, input.WinnerID, input.LoserID, input.IsDraw)
	if err != nil {
		switch {
		case errors.Is(err, repositories.ErrResultConflict):
			return nil, fmt.Errorf("%w: match %d", ErrResultAlreadyRecorded, match.ID)
		case errors.Is(err, repositories.ErrResultPlayersInvalid):
			return nil, fmt.Errorf("%w: match %d", ErrResultPlayersMismatch, match.ID)
		case errors.Is(err, repositories.ErrMatchNotFound):
			return nil, ErrMatchNotFound
		}
		return nil, fmt.Errorf("%w: result of match %d: %w", ErrPersistenceFailure, match.ID, err)
	}

	rows := models.ResultRows(match.ID, input.WinnerID, input.LoserID, input.IsDraw)
	match.Results = rows[:]

	s.standings.Invalidate(ctx, match.TournamentID)
	s.broadcaster.BroadcastToRoom(realtime.TournamentRoom(match.TournamentID), realtime.Message{
		Type:    realtime.EventResultRecorded,
		Payload: match,
		RoomID:  realtime.TournamentRoom(match.TournamentID),
	})
	s.logger.InfoContext(ctx, "match result recorded",
		slog.Int("match_id", match.ID),
		slog.Int("tournament_id", match.TournamentID),
		slog.Bool("draw", input.IsDraw),
	)
	return match, nil
}

func (s *matchService) ListMatches(ctx context.Context, tournamentID int, round *int) ([]*models.Match, error) {
	if round != nil && *round <= 0 {
		return nil, fmt.Errorf("%w: round must be positive, got %d", ErrValidationFailed, *round)
	}
	if err := ensureTournament(ctx, s.store, tournamentID); err != nil {
		return nil, err
	}
	matches, err := s.store.ListMatches(ctx, tournamentID, round)
	if err != nil {
		return nil, fmt.Errorf("failed to list matches of tournament %d: %w", tournamentID, err)
	}
	if matches == nil {
		return []*models.Match{}, nil
	}
	return matches, nil
}

// DeleteMatches clears every match, result and bye of the tournament.
// Players and registrations stay.
func (s *matchService) DeleteMatches(ctx context.Context, tournamentID int) (int64, error) {
	if err := ensureTournament(ctx, s.store, tournamentID); err != nil {
		return 0, err
	}
	n, err := s.store.DeleteMatches(ctx, tournamentID)
	if err != nil {
		return 0, fmt.Errorf("%w: delete matches of tournament %d: %w", ErrPersistenceFailure, tournamentID, err)
	}

	s.standings.Invalidate(ctx, tournamentID)
	s.broadcaster.BroadcastToRoom(realtime.TournamentRoom(tournamentID), realtime.Message{
		Type:    realtime.EventMatchesReset,
		Payload: map[string]int64{"deleted": n},
		RoomID:  realtime.TournamentRoom(tournamentID),
	})
	s.logger.InfoContext(ctx, "matches deleted", slog.Int("tournament_id", tournamentID), slog.Int64("deleted", n))
	return n, nil
}

func (s *matchService) getMatch(ctx context.Context, id int) (*models.Match, error) {
	match, err := s.store.GetMatch(ctx, id)
	if err != nil {
		if errors.Is(err, repositories.ErrMatchNotFound) {
			return nil, ErrMatchNotFound
		}
		return nil, fmt.Errorf("failed to get match %d: %w", id, err)
	}
	return match, nil
}
