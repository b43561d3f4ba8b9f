package pairing

import "errors"

var (
	ErrInsufficientPlayers = errors.New("at least two players are required to pair a round")
	ErrNoValidPairing      = errors.New("no pairing without a rematch exists for this round")
	ErrDuplicatePlayer     = errors.New("player appears more than once in the standings")
	ErrSearchExhausted     = errors.New("pairing search gave up before finding a rematch-free pairing")
)
