package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/Dosada05/swiss-tournament/models"
)

var (
	ErrPlayerNotRegistered  = errors.New("player is not registered for this tournament")
	ErrRoundConflict        = errors.New("round was already paired")
	ErrResultPlayersInvalid = errors.New("result players must be the two players of the match")
	ErrRoundOutOfSequence   = errors.New("match round must be an existing round or the next one")
	ErrRematch              = errors.New("players have already met in this tournament")
	ErrPlayerAlreadyPaired  = errors.New("player already has a match or bye in this round")
)

// SwissStore bundles the repositories behind the pairing and result
// workflows and owns their transactions.
type SwissStore struct {
	db            *sql.DB
	tournaments   TournamentRepository
	registrations RegistrationRepository
	matches       MatchRepository
	results       ResultRepository
	byes          ByeRepository
	standings     StandingRepository
}

func NewSwissStore(db *sql.DB) *SwissStore {
	return &SwissStore{
		db:            db,
		tournaments:   NewTournamentRepository(db),
		registrations: NewRegistrationRepository(db),
		matches:       NewMatchRepository(db),
		results:       NewResultRepository(db),
		byes:          NewByeRepository(db),
		standings:     NewStandingRepository(db),
	}
}

// withTx runs fn inside a transaction. Any error or panic rolls back; the
// commit error is returned otherwise.
func (s *SwissStore) withTx(ctx context.Context, fn func(tx *sql.Tx) error) (err error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			panic(p)
		} else if err != nil {
			if rbErr := tx.Rollback(); rbErr != nil {
				err = fmt.Errorf("%w (rollback also failed: %v)", err, rbErr)
			}
		} else if cErr := tx.Commit(); cErr != nil {
			err = fmt.Errorf("failed to commit transaction: %w", cErr)
		}
	}()
	return fn(tx)
}

func (s *SwissStore) GetTournament(ctx context.Context, id int) (*models.Tournament, error) {
	return s.tournaments.GetByID(ctx, nil, id)
}

func (s *SwissStore) GetStandings(ctx context.Context, tournamentID int) ([]models.StandingsRow, error) {
	return s.standings.ListByTournament(ctx, nil, tournamentID)
}

func (s *SwissStore) GetPriorPairings(ctx context.Context, tournamentID int) ([]models.PlayerPair, error) {
	return s.matches.ListPairs(ctx, nil, tournamentID)
}

func (s *SwissStore) GetByes(ctx context.Context, tournamentID int) ([]models.Bye, error) {
	return s.byes.ListByTournament(ctx, nil, tournamentID)
}

func (s *SwissStore) CurrentRound(ctx context.Context, tournamentID int) (int, error) {
	return s.matches.MaxRound(ctx, nil, tournamentID)
}

func (s *SwissStore) CountPendingMatches(ctx context.Context, tournamentID int) (int, error) {
	return s.matches.CountUnreported(ctx, nil, tournamentID)
}

func (s *SwissStore) GetMatch(ctx context.Context, matchID int) (*models.Match, error) {
	m, err := s.matches.GetByID(ctx, nil, matchID)
	if err != nil {
		return nil, err
	}
	m.Results, err = s.results.ListByMatch(ctx, nil, matchID)
	if err != nil {
		return nil, err
	}
	return m, nil
}

func (s *SwissStore) ListMatches(ctx context.Context, tournamentID int, round *int) ([]*models.Match, error) {
	matches, err := s.matches.ListByTournament(ctx, nil, tournamentID, round)
	if err != nil {
		return nil, err
	}
	results, err := s.results.ListByTournament(ctx, nil, tournamentID)
	if err != nil {
		return nil, err
	}
	for _, m := range matches {
		m.Results = results[m.ID]
	}
	return matches, nil
}

func (s *SwissStore) checkRegistered(ctx context.Context, exec SQLExecutor, tournamentID int, playerIDs ...int) error {
	for _, id := range playerIDs {
		ok, err := s.registrations.IsRegistered(ctx, exec, tournamentID, id)
		if err != nil {
			return err
		}
		if !ok {
			return fmt.Errorf("%w: player %d", ErrPlayerNotRegistered, id)
		}
	}
	return nil
}

// RecordMatch stores a single manually entered pairing and returns its id.
// The round must be an existing round or the one right after it, the players
// must not have met before and neither may already be scheduled that round.
func (s *SwissStore) RecordMatch(ctx context.Context, tournamentID, player1ID, player2ID, round int) (int, error) {
	match := &models.Match{
		TournamentID: tournamentID,
		Round:        round,
		Player1ID:    player1ID,
		Player2ID:    player2ID,
	}
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		if err := s.checkRegistered(ctx, tx, tournamentID, player1ID, player2ID); err != nil {
			return err
		}

		current, err := s.matches.MaxRound(ctx, tx, tournamentID)
		if err != nil {
			return err
		}
		if round < 1 || round > current+1 {
			return fmt.Errorf("%w: current round is %d, requested %d", ErrRoundOutOfSequence, current, round)
		}

		met, err := s.matches.HasMet(ctx, tx, tournamentID, player1ID, player2ID)
		if err != nil {
			return err
		}
		if met {
			return fmt.Errorf("%w: players %d and %d", ErrRematch, player1ID, player2ID)
		}

		for _, id := range []int{player1ID, player2ID} {
			busy, err := s.matches.IsScheduled(ctx, tx, tournamentID, round, id)
			if err != nil {
				return err
			}
			if busy {
				return fmt.Errorf("%w: player %d in round %d", ErrPlayerAlreadyPaired, id, round)
			}
		}

		return s.matches.Create(ctx, tx, match)
	})
	if err != nil {
		return 0, err
	}
	return match.ID, nil
}

// RecordRound stores every match of a round and its bye atomically. The
// round must directly follow the last stored one, which keeps two
// concurrent pairing requests from both committing.
func (s *SwissStore) RecordRound(ctx context.Context, tournamentID, round int, pairs []models.PlayerPair, byePlayerID *int) ([]*models.Match, error) {
	created := make([]*models.Match, 0, len(pairs))
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		current, err := s.matches.MaxRound(ctx, tx, tournamentID)
		if err != nil {
			return err
		}
		if current != round-1 {
			return fmt.Errorf("%w: stored round is %d, requested %d", ErrRoundConflict, current, round)
		}

		for _, p := range pairs {
			match := &models.Match{
				TournamentID: tournamentID,
				Round:        round,
				Player1ID:    p.Player1ID,
				Player2ID:    p.Player2ID,
			}
			if err := s.matches.Create(ctx, tx, match); err != nil {
				return err
			}
			created = append(created, match)
		}

		if byePlayerID != nil {
			bye := &models.Bye{TournamentID: tournamentID, Round: round, PlayerID: *byePlayerID}
			if err := s.byes.Create(ctx, tx, bye); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}

// RecordResult writes both result rows of a match in one transaction. Winner
// and loser must be the match's two players; the (match_id, player_id) key
// rejects a second report.
func (s *SwissStore) RecordResult(ctx context.Context, matchID, winnerID, loserID int, isDraw bool) error {
	rows := models.ResultRows(matchID, winnerID, loserID, isDraw)
	return s.withTx(ctx, func(tx *sql.Tx) error {
		match, err := s.matches.GetByID(ctx, tx, matchID)
		if err != nil {
			return err
		}
		if winnerID == loserID || !match.HasPlayer(winnerID) || !match.HasPlayer(loserID) {
			return fmt.Errorf("%w: match %d is %d vs %d, got %d and %d",
				ErrResultPlayersInvalid, matchID, match.Player1ID, match.Player2ID, winnerID, loserID)
		}

		for i := range rows {
			if err := s.results.Create(ctx, tx, &rows[i]); err != nil {
				return err
			}
		}
		return nil
	})
}

// DeleteMatches clears matches, results and byes of a tournament.
func (s *SwissStore) DeleteMatches(ctx context.Context, tournamentID int) (int64, error) {
	var deleted int64
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		if err := s.byes.DeleteByTournament(ctx, tx, tournamentID); err != nil {
			return err
		}
		n, err := s.matches.DeleteByTournament(ctx, tx, tournamentID)
		deleted = n
		return err
	})
	return deleted, err
}
