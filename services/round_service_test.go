package services

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/suite"

	"github.com/Dosada05/swiss-tournament/cache"
	"github.com/Dosada05/swiss-tournament/models"
	"github.com/Dosada05/swiss-tournament/realtime"
	"github.com/Dosada05/swiss-tournament/repositories"
	"github.com/Dosada05/swiss-tournament/testutil"
)

const tid = 1

type RoundServiceSuite struct {
	suite.Suite
	ctx       context.Context
	store     *fakeStore
	hub       *recordingBroadcaster
	standings *countingStandings
	rounds    RoundService
	matches   MatchService
}

func TestRoundServiceSuite(t *testing.T) {
	suite.Run(t, new(RoundServiceSuite))
}

func (s *RoundServiceSuite) SetupTest() {
	s.ctx = context.Background()
	s.store = newFakeStore()
	s.hub = &recordingBroadcaster{}
	logger := testutil.NopLogger()
	s.standings = newCountingStandings(NewStandingsService(s.store, cache.Nop{}, logger))
	s.rounds = NewRoundService(s.store, s.standings, s.hub, logger)
	s.matches = NewMatchService(s.store, s.standings, s.hub, logger)
}

// pairIDs flattens a round into [p1, p2] id pairs; a bye has p2 == 0.
func pairIDs(r *models.Round) [][2]int {
	out := make([][2]int, len(r.Pairings))
	for i, p := range r.Pairings {
		out[i][0] = p.Player1ID
		if p.Player2ID != nil {
			out[i][1] = *p.Player2ID
		}
	}
	return out
}

func (s *RoundServiceSuite) sixPlayerStandings() []models.StandingsRow {
	return []models.StandingsRow{
		{PlayerID: 1, Name: "A", Wins: 3, MatchesPlayed: 3},
		{PlayerID: 2, Name: "B", Wins: 3, MatchesPlayed: 3},
		{PlayerID: 3, Name: "C", Wins: 2, MatchesPlayed: 3},
		{PlayerID: 4, Name: "D", Wins: 2, MatchesPlayed: 3},
		{PlayerID: 5, Name: "E", Wins: 1, MatchesPlayed: 3},
		{PlayerID: 6, Name: "F", Wins: 0, MatchesPlayed: 3},
	}
}

func (s *RoundServiceSuite) TestPreviewAdjacentPairs() {
	s.store.addTournament(tid, 1, "A", "B", "C", "D", "E", "F")
	s.store.seedStandings(tid, s.sixPlayerStandings())

	round, err := s.rounds.PreviewPairings(s.ctx, tid)
	s.Require().NoError(err)
	s.Equal(1, round.Number)
	s.Equal([][2]int{{1, 2}, {3, 4}, {5, 6}}, pairIDs(round))
	s.Equal("A", round.Pairings[0].Player1Name)
	s.Equal("B", *round.Pairings[0].Player2Name)

	pending, _ := s.store.CountPendingMatches(s.ctx, tid)
	s.Zero(pending, "preview must not store anything")
	s.Empty(s.hub.Events())
}

func (s *RoundServiceSuite) TestPreviewAvoidsRematch() {
	s.store.addTournament(tid, 1, "A", "B", "C", "D", "E", "F")
	s.store.seedPlayed(tid, 1, 1, 2)
	s.store.seedStandings(tid, s.sixPlayerStandings())

	round, err := s.rounds.PreviewPairings(s.ctx, tid)
	s.Require().NoError(err)
	s.Equal(2, round.Number)
	s.Equal([][2]int{{1, 3}, {2, 4}, {5, 6}}, pairIDs(round))
}

func (s *RoundServiceSuite) TestOddCountGivesLowestRankedTheBye() {
	s.store.addTournament(tid, 1, "A", "B", "C", "D", "E")

	round, err := s.rounds.PairNextRound(s.ctx, tid)
	s.Require().NoError(err)
	s.Equal([][2]int{{1, 2}, {3, 4}, {5, 0}}, pairIDs(round))
	s.True(round.Pairings[2].Bye)
	s.Nil(round.Pairings[2].MatchID)

	byes, _ := s.store.GetByes(s.ctx, tid)
	s.Equal([]models.Bye{{TournamentID: tid, Round: 1, PlayerID: 5}}, byes)
}

func (s *RoundServiceSuite) TestPairNextRoundStoresMatches() {
	s.store.addTournament(tid, 1, "A", "B", "C", "D")

	round, err := s.rounds.PairNextRound(s.ctx, tid)
	s.Require().NoError(err)
	s.Require().Len(round.Pairings, 2)

	stored, _ := s.store.ListMatches(s.ctx, tid, nil)
	s.Require().Len(stored, 2)
	for i, p := range round.Pairings {
		s.Require().NotNil(p.MatchID)
		s.Equal(stored[i].ID, *p.MatchID)
		s.Equal(p.Player1ID, stored[i].Player1ID)
		s.Equal(1, stored[i].Round)
	}

	events := s.hub.Events()
	s.Require().Len(events, 1)
	s.Equal(realtime.TournamentRoom(tid), events[0].room)
	msg, ok := events[0].message.(realtime.Message)
	s.Require().True(ok)
	s.Equal(realtime.EventRoundPaired, msg.Type)
	s.Equal(1, s.standings.Invalidations(tid))
}

func (s *RoundServiceSuite) TestRoundIncompleteWhileResultsMissing() {
	s.store.addTournament(tid, 1, "A", "B", "C", "D")
	_, err := s.rounds.PairNextRound(s.ctx, tid)
	s.Require().NoError(err)

	_, err = s.rounds.PairNextRound(s.ctx, tid)
	s.ErrorIs(err, ErrRoundIncomplete)
	_, err = s.rounds.PreviewPairings(s.ctx, tid)
	s.ErrorIs(err, ErrRoundIncomplete)
}

func (s *RoundServiceSuite) TestThreeRoundsWithoutRematches() {
	s.store.addTournament(tid, 1, "A", "B", "C", "D")

	report := func(r *models.Round, winners ...int) {
		for i, p := range r.Pairings {
			loser := *p.Player2ID
			if winners[i] == loser {
				loser = p.Player1ID
			}
			_, err := s.matches.RecordResult(s.ctx, RecordResultInput{MatchID: *p.MatchID, WinnerID: winners[i], LoserID: loser})
			s.Require().NoError(err)
		}
	}

	r1, err := s.rounds.PairNextRound(s.ctx, tid)
	s.Require().NoError(err)
	s.Equal([][2]int{{1, 2}, {3, 4}}, pairIDs(r1))
	report(r1, 1, 3)

	r2, err := s.rounds.PairNextRound(s.ctx, tid)
	s.Require().NoError(err)
	s.Equal(2, r2.Number)
	s.Equal([][2]int{{1, 3}, {2, 4}}, pairIDs(r2))
	report(r2, 1, 2)

	// Standings are now 1 (2W), 2 (1W), 3 (1W), 4 (0W); 1 has met 2 and 3.
	r3, err := s.rounds.PairNextRound(s.ctx, tid)
	s.Require().NoError(err)
	s.Equal([][2]int{{1, 4}, {2, 3}}, pairIDs(r3))
}

func (s *RoundServiceSuite) TestByeRotates() {
	s.store.addTournament(tid, 1, "A", "B", "C")
	seen := map[int]bool{}
	for i := 0; i < 3; i++ {
		r, err := s.rounds.PairNextRound(s.ctx, tid)
		s.Require().NoError(err)
		var byePlayer int
		for _, p := range r.Pairings {
			if p.Bye {
				byePlayer = p.Player1ID
				continue
			}
			_, err := s.matches.RecordResult(s.ctx, RecordResultInput{MatchID: *p.MatchID, WinnerID: p.Player1ID, LoserID: *p.Player2ID})
			s.Require().NoError(err)
		}
		s.False(seen[byePlayer], "player %d got a second bye in round %d", byePlayer, r.Number)
		seen[byePlayer] = true
	}
}

func (s *RoundServiceSuite) TestInsufficientPlayers() {
	s.store.addTournament(tid, 1, "A")
	_, err := s.rounds.PreviewPairings(s.ctx, tid)
	s.ErrorIs(err, ErrInsufficientPlayers)
}

func (s *RoundServiceSuite) TestNoValidPairing() {
	s.store.addTournament(tid, 1, "A", "B")
	s.store.seedPlayed(tid, 1, 1, 2)
	_, err := s.rounds.PairNextRound(s.ctx, tid)
	s.ErrorIs(err, ErrNoValidPairing)
	s.Empty(s.hub.Events())
}

func (s *RoundServiceSuite) TestUnknownTournament() {
	_, err := s.rounds.PreviewPairings(s.ctx, 99)
	s.ErrorIs(err, ErrTournamentNotFound)
}

func (s *RoundServiceSuite) TestStoreFailureIsPersistenceFailure() {
	s.store.addTournament(tid, 1, "A", "B")
	s.store.recordRoundErr = errors.New("disk full")

	_, err := s.rounds.PairNextRound(s.ctx, tid)
	s.ErrorIs(err, ErrPersistenceFailure)
	s.Zero(s.standings.Invalidations(tid))
}

func (s *RoundServiceSuite) TestConcurrentPairingConflict() {
	s.store.addTournament(tid, 1, "A", "B")
	s.store.recordRoundErr = fmt.Errorf("%w: stored round is 1, requested 1", repositories.ErrRoundConflict)

	_, err := s.rounds.PairNextRound(s.ctx, tid)
	s.ErrorIs(err, ErrRoundConflict)
	s.NotErrorIs(err, ErrPersistenceFailure)
}
