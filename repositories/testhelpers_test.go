package repositories

import (
	"context"
	"database/sql"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/Dosada05/swiss-tournament/models"
	"github.com/Dosada05/swiss-tournament/testutil"
)

func newTestDB(t *testing.T) *sql.DB {
	return testutil.NewSQLiteDB(t)
}

type fixture struct {
	t           *testing.T
	ctx         context.Context
	players     PlayerRepository
	tournaments TournamentRepository
	regs        RegistrationRepository
}

func newFixture(t *testing.T, conn *sql.DB) *fixture {
	return &fixture{
		t:           t,
		ctx:         context.Background(),
		players:     NewPlayerRepository(conn),
		tournaments: NewTournamentRepository(conn),
		regs:        NewRegistrationRepository(conn),
	}
}

func (f *fixture) tournament(name string) int {
	f.t.Helper()
	tour := &models.Tournament{Name: name}
	require.NoError(f.t, f.tournaments.Create(f.ctx, tour))
	return tour.ID
}

// registered creates players by name and registers them for the tournament.
func (f *fixture) registered(tournamentID int, names ...string) []int {
	f.t.Helper()
	ids := make([]int, len(names))
	for i, name := range names {
		p := &models.Player{Name: name}
		require.NoError(f.t, f.players.Create(f.ctx, p))
		require.NoError(f.t, f.regs.Create(f.ctx, &models.Registration{TournamentID: tournamentID, PlayerID: p.ID}))
		ids[i] = p.ID
	}
	return ids
}
