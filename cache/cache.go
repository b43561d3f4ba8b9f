// Package cache keeps computed standings close to the API so repeated reads
// between two results do not hit the standings view.
package cache

import (
	"context"

	"github.com/Dosada05/swiss-tournament/models"
)

// StandingsCache stores the standings of a tournament until a result or a
// new round changes them.
type StandingsCache interface {
	// Get returns the cached rows and whether they were present.
	Get(ctx context.Context, tournamentID int) ([]models.StandingsRow, bool, error)
	Set(ctx context.Context, tournamentID int, rows []models.StandingsRow) error
	Invalidate(ctx context.Context, tournamentID int) error
}

// Nop is used when no Redis is configured. It never holds anything.
type Nop struct{}

var _ StandingsCache = Nop{}

func (Nop) Get(context.Context, int) ([]models.StandingsRow, bool, error) { return nil, false, nil }
func (Nop) Set(context.Context, int, []models.StandingsRow) error         { return nil }
func (Nop) Invalidate(context.Context, int) error                         { return nil }
