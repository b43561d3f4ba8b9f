package models

// StandingsRow is computed by the tournament_standings view and never stored.
// Wins include byes; MatchesPlayed = Wins + Draws + Losses.
type StandingsRow struct {
	PlayerID      int    `json:"player_id" db:"player_id"`
	Name          string `json:"name" db:"name"`
	Wins          int    `json:"wins" db:"wins"`
	Draws         int    `json:"draws" db:"draws"`
	Losses        int    `json:"losses" db:"losses"`
	Byes          int    `json:"byes" db:"byes"`
	MatchesPlayed int    `json:"matches_played" db:"matches_played"`
}
