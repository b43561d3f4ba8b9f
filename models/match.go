package models

import "time"

type Outcome string

const (
	OutcomeWin  Outcome = "win"
	OutcomeLose Outcome = "lose"
	OutcomeDraw Outcome = "draw"
)

func (o Outcome) Valid() bool {
	switch o {
	case OutcomeWin, OutcomeLose, OutcomeDraw:
		return true
	}
	return false
}

type Match struct {
	ID           int       `json:"id" db:"id"`
	TournamentID int       `json:"tournament_id" db:"tournament_id"`
	Round        int       `json:"round" db:"round"`
	Player1ID    int       `json:"player1_id" db:"player1_id"`
	Player2ID    int       `json:"player2_id" db:"player2_id"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`

	// Populated by the store when listing; empty until a result is reported.
	Results []MatchResult `json:"results,omitempty" db:"-"`
}

// HasPlayer reports whether playerID is one of the two participants.
func (m *Match) HasPlayer(playerID int) bool {
	return m.Player1ID == playerID || m.Player2ID == playerID
}

// Reported reports whether both result rows exist.
func (m *Match) Reported() bool {
	return len(m.Results) == 2
}

type MatchResult struct {
	MatchID  int     `json:"match_id" db:"match_id"`
	PlayerID int     `json:"player_id" db:"player_id"`
	Outcome  Outcome `json:"outcome" db:"outcome"`
}

// ResultRows builds the two symmetric result rows for a reported match.
func ResultRows(matchID, winnerID, loserID int, isDraw bool) [2]MatchResult {
	if isDraw {
		return [2]MatchResult{
			{MatchID: matchID, PlayerID: winnerID, Outcome: OutcomeDraw},
			{MatchID: matchID, PlayerID: loserID, Outcome: OutcomeDraw},
		}
	}
	return [2]MatchResult{
		{MatchID: matchID, PlayerID: winnerID, Outcome: OutcomeWin},
		{MatchID: matchID, PlayerID: loserID, Outcome: OutcomeLose},
	}
}

// Bye records that a player sat out a round without an opponent.
type Bye struct {
	TournamentID int `json:"tournament_id" db:"tournament_id"`
	Round        int `json:"round" db:"round"`
	PlayerID     int `json:"player_id" db:"player_id"`
}

// PlayerPair is an unordered pair of players who met in a match.
type PlayerPair struct {
	Player1ID int `json:"player1_id"`
	Player2ID int `json:"player2_id"`
}
