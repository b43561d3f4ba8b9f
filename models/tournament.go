package models

import "time"

// Tournament представляет турнир по швейцарской системе.
type Tournament struct {
	ID        int       `json:"id" db:"id"`
	Name      string    `json:"name" db:"name"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`

	// Опциональные связанные сущности (не мапятся напрямую)
	Players []Player `json:"players,omitempty" db:"-"`
}

// Registration relates a player to a tournament. Created once, never mutated.
type Registration struct {
	TournamentID int       `json:"tournament_id" db:"tournament_id"`
	PlayerID     int       `json:"player_id" db:"player_id"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`
}
