package models

// Pairing is one line of a round sheet. Player2 fields are nil for a bye.
type Pairing struct {
	MatchID     *int    `json:"match_id,omitempty"`
	Player1ID   int     `json:"player1_id"`
	Player1Name string  `json:"player1_name"`
	Player2ID   *int    `json:"player2_id"`
	Player2Name *string `json:"player2_name"`
	Bye         bool    `json:"bye"`
}

type Round struct {
	TournamentID int       `json:"tournament_id"`
	Number       int       `json:"number"`
	Pairings     []Pairing `json:"pairings"`
}
