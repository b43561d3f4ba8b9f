package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"github.com/Dosada05/swiss-tournament/models"
	"github.com/Dosada05/swiss-tournament/pairing"
	"github.com/Dosada05/swiss-tournament/realtime"
	"github.com/Dosada05/swiss-tournament/repositories"
)

type RoundService interface {
	// PreviewPairings computes the next round without storing it.
	PreviewPairings(ctx context.Context, tournamentID int) (*models.Round, error)
	// PairNextRound computes the next round and stores its matches and bye.
	PairNextRound(ctx context.Context, tournamentID int) (*models.Round, error)
}

type roundService struct {
	store       SwissStore
	standings   StandingsService
	broadcaster Broadcaster
	logger      *slog.Logger
}

func NewRoundService(store SwissStore, standings StandingsService, broadcaster Broadcaster, logger *slog.Logger) RoundService {
	if broadcaster == nil {
		broadcaster = nopBroadcaster{}
	}
	return &roundService{
		store:       store,
		standings:   standings,
		broadcaster: broadcaster,
		logger:      logger,
	}
}

// roundPlan is the engine output together with what is needed to store it.
type roundPlan struct {
	round *models.Round
	pairs []models.PlayerPair
	byeID *int
}

func (s *roundService) PreviewPairings(ctx context.Context, tournamentID int) (*models.Round, error) {
	plan, err := s.plan(ctx, tournamentID)
	if err != nil {
		return nil, err
	}
	return plan.round, nil
}

func (s *roundService) PairNextRound(ctx context.Context, tournamentID int) (*models.Round, error) {
	plan, err := s.plan(ctx, tournamentID)
	if err != nil {
		return nil, err
	}

	created, err := s.store.RecordRound(ctx, tournamentID, plan.round.Number, plan.pairs, plan.byeID)
	if err != nil {
		if errors.Is(err, repositories.ErrRoundConflict) {
			return nil, fmt.Errorf("%w: tournament %d round %d", ErrRoundConflict, tournamentID, plan.round.Number)
		}
		return nil, fmt.Errorf("%w: round %d of tournament %d: %w", ErrPersistenceFailure, plan.round.Number, tournamentID, err)
	}

	// created follows the order of plan.pairs, which skips the bye entry
	next := 0
	for i := range plan.round.Pairings {
		if plan.round.Pairings[i].Bye {
			continue
		}
		id := created[next].ID
		plan.round.Pairings[i].MatchID = &id
		next++
	}

	s.standings.Invalidate(ctx, tournamentID)
	s.broadcaster.BroadcastToRoom(realtime.TournamentRoom(tournamentID), realtime.Message{
		Type:    realtime.EventRoundPaired,
		Payload: plan.round,
		RoomID:  realtime.TournamentRoom(tournamentID),
	})
	s.logger.InfoContext(ctx, "round paired",
		slog.Int("tournament_id", tournamentID),
		slog.Int("round", plan.round.Number),
		slog.Int("matches", len(created)),
		slog.Bool("bye", plan.byeID != nil),
	)
	return plan.round, nil
}

func (s *roundService) plan(ctx context.Context, tournamentID int) (*roundPlan, error) {
	if err := ensureTournament(ctx, s.store, tournamentID); err != nil {
		return nil, err
	}

	var (
		standings []models.StandingsRow
		prior     []models.PlayerPair
		byes      []models.Bye
		current   int
		pending   int
	)

	g, gCtx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		standings, err = s.store.GetStandings(gCtx, tournamentID)
		return err
	})
	g.Go(func() (err error) {
		prior, err = s.store.GetPriorPairings(gCtx, tournamentID)
		return err
	})
	g.Go(func() (err error) {
		byes, err = s.store.GetByes(gCtx, tournamentID)
		return err
	})
	g.Go(func() (err error) {
		current, err = s.store.CurrentRound(gCtx, tournamentID)
		return err
	})
	g.Go(func() (err error) {
		pending, err = s.store.CountPendingMatches(gCtx, tournamentID)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("failed to load state of tournament %d: %w", tournamentID, err)
	}

	if pending > 0 {
		return nil, fmt.Errorf("%w: %d match(es) in round %d", ErrRoundIncomplete, pending, current)
	}

	hadBye := make(map[int]bool, len(byes))
	for _, b := range byes {
		hadBye[b.PlayerID] = true
	}

	players := make([]pairing.Player, len(standings))
	for i, row := range standings {
		players[i] = pairing.Player{
			ID:            row.PlayerID,
			Name:          row.Name,
			Wins:          row.Wins,
			Draws:         row.Draws,
			MatchesPlayed: row.MatchesPlayed,
			HadBye:        hadBye[row.PlayerID],
		}
	}

	history := pairing.NewHistory()
	for _, p := range prior {
		history.Add(p.Player1ID, p.Player2ID)
	}

	pairings, err := pairing.Pair(players, history)
	if err != nil {
		return nil, fmt.Errorf("tournament %d round %d: %w", tournamentID, current+1, err)
	}

	plan := &roundPlan{
		round: &models.Round{
			TournamentID: tournamentID,
			Number:       current + 1,
			Pairings:     make([]models.Pairing, 0, len(pairings)),
		},
	}
	for _, p := range pairings {
		if p.IsBye() {
			id := p.Player1.ID
			plan.byeID = &id
			plan.round.Pairings = append(plan.round.Pairings, models.Pairing{
				Player1ID:   p.Player1.ID,
				Player1Name: p.Player1.Name,
				Bye:         true,
			})
			continue
		}

		p2ID, p2Name := p.Player2.ID, p.Player2.Name
		plan.pairs = append(plan.pairs, models.PlayerPair{Player1ID: p.Player1.ID, Player2ID: p2ID})
		plan.round.Pairings = append(plan.round.Pairings, models.Pairing{
			Player1ID:   p.Player1.ID,
			Player1Name: p.Player1.Name,
			Player2ID:   &p2ID,
			Player2Name: &p2Name,
		})
	}
	return plan, nil
}
