package services

import (
	"context"
	"sort"
	"sync"

	"github.com/Dosada05/swiss-tournament/models"
	"github.com/Dosada05/swiss-tournament/repositories"
)

// fakeStore is an in-memory SwissStore that follows the SQL store's rules.
type fakeStore struct {
	mu          sync.Mutex
	tournaments map[int]*models.Tournament
	players     map[int][]models.Player
	matches     []*models.Match
	results     map[int][]models.MatchResult
	byes        []models.Bye
	standings   map[int][]models.StandingsRow

	recordRoundErr error
}

var _ SwissStore = (*fakeStore)(nil)

func newFakeStore() *fakeStore {
	return &fakeStore{
		tournaments: make(map[int]*models.Tournament),
		players:     make(map[int][]models.Player),
		results:     make(map[int][]models.MatchResult),
		standings:   make(map[int][]models.StandingsRow),
	}
}

// addTournament registers players named names with ids firstID, firstID+1, ...
func (f *fakeStore) addTournament(id, firstID int, names ...string) []int {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.tournaments[id] = &models.Tournament{ID: id, Name: "Tournament"}
	ids := make([]int, len(names))
	for i, name := range names {
		ids[i] = firstID + i
		f.players[id] = append(f.players[id], models.Player{ID: ids[i], Name: name})
	}
	return ids
}

// seedStandings replaces the computed standings of a tournament.
func (f *fakeStore) seedStandings(tournamentID int, rows []models.StandingsRow) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.standings[tournamentID] = rows
}

// seedPlayed stores a reported match between a and b.
func (f *fakeStore) seedPlayed(tournamentID, round, a, b int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	m := f.insertMatch(tournamentID, round, a, b)
	rows := models.ResultRows(m.ID, a, b, false)
	f.results[m.ID] = rows[:]
}

func (f *fakeStore) insertMatch(tournamentID, round, p1, p2 int) *models.Match {
	m := &models.Match{
		ID:           len(f.matches) + 1,
		TournamentID: tournamentID,
		Round:        round,
		Player1ID:    p1,
		Player2ID:    p2,
	}
	f.matches = append(f.matches, m)
	return m
}

func (f *fakeStore) isRegistered(tournamentID, playerID int) bool {
	for _, p := range f.players[tournamentID] {
		if p.ID == playerID {
			return true
		}
	}
	return false
}

func (f *fakeStore) withResults(m *models.Match) *models.Match {
	cp := *m
	cp.Results = append([]models.MatchResult(nil), f.results[m.ID]...)
	return &cp
}

func (f *fakeStore) GetTournament(_ context.Context, id int) (*models.Tournament, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	t, ok := f.tournaments[id]
	if !ok {
		return nil, repositories.ErrTournamentNotFound
	}
	cp := *t
	return &cp, nil
}

func (f *fakeStore) GetStandings(_ context.Context, tournamentID int) ([]models.StandingsRow, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if rows, ok := f.standings[tournamentID]; ok {
		return append([]models.StandingsRow(nil), rows...), nil
	}

	byID := make(map[int]*models.StandingsRow)
	rows := make([]models.StandingsRow, len(f.players[tournamentID]))
	for i, p := range f.players[tournamentID] {
		rows[i] = models.StandingsRow{PlayerID: p.ID, Name: p.Name}
		byID[p.ID] = &rows[i]
	}
	for _, m := range f.matches {
		if m.TournamentID != tournamentID {
			continue
		}
		for _, r := range f.results[m.ID] {
			row := byID[r.PlayerID]
			switch r.Outcome {
			case models.OutcomeWin:
				row.Wins++
			case models.OutcomeDraw:
				row.Draws++
			case models.OutcomeLose:
				row.Losses++
			}
			row.MatchesPlayed++
		}
	}
	for _, b := range f.byes {
		if b.TournamentID == tournamentID {
			row := byID[b.PlayerID]
			row.Wins++
			row.Byes++
			row.MatchesPlayed++
		}
	}

	sort.SliceStable(rows, func(i, j int) bool {
		if rows[i].Wins != rows[j].Wins {
			return rows[i].Wins > rows[j].Wins
		}
		if rows[i].Draws != rows[j].Draws {
			return rows[i].Draws < rows[j].Draws
		}
		return rows[i].PlayerID < rows[j].PlayerID
	})
	return rows, nil
}

func (f *fakeStore) GetPriorPairings(_ context.Context, tournamentID int) ([]models.PlayerPair, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var pairs []models.PlayerPair
	for _, m := range f.matches {
		if m.TournamentID == tournamentID {
			pairs = append(pairs, models.PlayerPair{Player1ID: m.Player1ID, Player2ID: m.Player2ID})
		}
	}
	return pairs, nil
}

func (f *fakeStore) GetByes(_ context.Context, tournamentID int) ([]models.Bye, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var byes []models.Bye
	for _, b := range f.byes {
		if b.TournamentID == tournamentID {
			byes = append(byes, b)
		}
	}
	return byes, nil
}

func (f *fakeStore) currentRound(tournamentID int) int {
	current := 0
	for _, m := range f.matches {
		if m.TournamentID == tournamentID && m.Round > current {
			current = m.Round
		}
	}
	for _, b := range f.byes {
		if b.TournamentID == tournamentID && b.Round > current {
			current = b.Round
		}
	}
	return current
}

func (f *fakeStore) CurrentRound(_ context.Context, tournamentID int) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.currentRound(tournamentID), nil
}

func (f *fakeStore) CountPendingMatches(_ context.Context, tournamentID int) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	pending := 0
	for _, m := range f.matches {
		if m.TournamentID == tournamentID && len(f.results[m.ID]) < 2 {
			pending++
		}
	}
	return pending, nil
}

func (f *fakeStore) GetMatch(_ context.Context, matchID int) (*models.Match, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, m := range f.matches {
		if m.ID == matchID {
			return f.withResults(m), nil
		}
	}
	return nil, repositories.ErrMatchNotFound
}

func (f *fakeStore) ListMatches(_ context.Context, tournamentID int, round *int) ([]*models.Match, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*models.Match
	for _, m := range f.matches {
		if m.TournamentID != tournamentID || (round != nil && m.Round != *round) {
			continue
		}
		out = append(out, f.withResults(m))
	}
	return out, nil
}

func (f *fakeStore) RecordMatch(_ context.Context, tournamentID, player1ID, player2ID, round int) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, id := range []int{player1ID, player2ID} {
		if !f.isRegistered(tournamentID, id) {
			return 0, repositories.ErrPlayerNotRegistered
		}
	}
	if round < 1 || round > f.currentRound(tournamentID)+1 {
		return 0, repositories.ErrRoundOutOfSequence
	}
	for _, m := range f.matches {
		if m.TournamentID != tournamentID {
			continue
		}
		if m.HasPlayer(player1ID) && m.HasPlayer(player2ID) {
			return 0, repositories.ErrRematch
		}
		if m.Round == round && (m.HasPlayer(player1ID) || m.HasPlayer(player2ID)) {
			return 0, repositories.ErrPlayerAlreadyPaired
		}
	}
	for _, b := range f.byes {
		if b.TournamentID == tournamentID && b.Round == round && (b.PlayerID == player1ID || b.PlayerID == player2ID) {
			return 0, repositories.ErrPlayerAlreadyPaired
		}
	}
	return f.insertMatch(tournamentID, round, player1ID, player2ID).ID, nil
}

func (f *fakeStore) RecordRound(_ context.Context, tournamentID, round int, pairs []models.PlayerPair, byePlayerID *int) ([]*models.Match, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.recordRoundErr != nil {
		return nil, f.recordRoundErr
	}
	if f.currentRound(tournamentID) != round-1 {
		return nil, repositories.ErrRoundConflict
	}
	created := make([]*models.Match, 0, len(pairs))
	for _, p := range pairs {
		created = append(created, f.withResults(f.insertMatch(tournamentID, round, p.Player1ID, p.Player2ID)))
	}
	if byePlayerID != nil {
		f.byes = append(f.byes, models.Bye{TournamentID: tournamentID, Round: round, PlayerID: *byePlayerID})
	}
	return created, nil
}

func (f *fakeStore) RecordResult(_ context.Context, matchID, winnerID, loserID int, isDraw bool) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	var match *models.Match
	for _, m := range f.matches {
		if m.ID == matchID {
			match = m
		}
	}
	if match == nil {
		return repositories.ErrMatchNotFound
	}
	if winnerID == loserID || !match.HasPlayer(winnerID) || !match.HasPlayer(loserID) {
		return repositories.ErrResultPlayersInvalid
	}
	if len(f.results[matchID]) > 0 {
		return repositories.ErrResultConflict
	}
	rows := models.ResultRows(matchID, winnerID, loserID, isDraw)
	f.results[matchID] = rows[:]
	return nil
}

func (f *fakeStore) DeleteMatches(_ context.Context, tournamentID int) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var kept []*models.Match
	var deleted int64
	for _, m := range f.matches {
		if m.TournamentID == tournamentID {
			delete(f.results, m.ID)
			deleted++
			continue
		}
		kept = append(kept, m)
	}
	f.matches = kept
	var byes []models.Bye
	for _, b := range f.byes {
		if b.TournamentID != tournamentID {
			byes = append(byes, b)
		}
	}
	f.byes = byes
	return deleted, nil
}

type recordedEvent struct {
	room    string
	message interface{}
}

type recordingBroadcaster struct {
	mu     sync.Mutex
	events []recordedEvent
}

func (b *recordingBroadcaster) BroadcastToRoom(roomID string, message interface{}) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.events = append(b.events, recordedEvent{room: roomID, message: message})
}

func (b *recordingBroadcaster) Events() []recordedEvent {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]recordedEvent(nil), b.events...)
}

// countingStandings wraps a StandingsService and counts invalidations.
type countingStandings struct {
	StandingsService
	mu          sync.Mutex
	invalidated map[int]int
}

func newCountingStandings(inner StandingsService) *countingStandings {
	return &countingStandings{StandingsService: inner, invalidated: make(map[int]int)}
}

func (c *countingStandings) Invalidate(ctx context.Context, tournamentID int) {
	c.mu.Lock()
	c.invalidated[tournamentID]++
	c.mu.Unlock()
	c.StandingsService.Invalidate(ctx, tournamentID)
}

func (c *countingStandings) Invalidations(tournamentID int) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.invalidated[tournamentID]
}
