package main

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"path/filepath"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/Dosada05/swiss-tournament/db"
	"github.com/Dosada05/swiss-tournament/models"
	"github.com/Dosada05/swiss-tournament/repositories"
	"github.com/Dosada05/swiss-tournament/services"
)

type cli struct {
	t    *testing.T
	path string
}

func newCLI(t *testing.T) *cli {
	t.Helper()
	// Внешние бэкенды в тестах не нужны
	for _, key := range []string{"REDIS_URL", "R2_BUCKET_NAME", "R2_ACCESS_KEY_ID", "DATABASE_DRIVER", "DATABASE_URL", "STANDINGS_CACHE_TTL", "SERVER_PORT"} {
		t.Setenv(key, "")
	}
	return &cli{t: t, path: filepath.Join(t.TempDir(), "cli.db")}
}

func (c *cli) run(stdin string, args ...string) (string, error) {
	cmd := newRootCommand()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(io.Discard)
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetArgs(append([]string{"--driver", db.DriverSQLite, "--dsn", c.path}, args...))
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

// seed creates a tournament with registered players straight through the
// services, since the CLI has no commands for it.
func (c *cli) seed(name string, players ...string) int {
	c.t.Helper()
	conn, err := db.Connect(db.DriverSQLite, c.path, 5*time.Second)
	require.NoError(c.t, err)
	defer conn.Close()

	ctx := context.Background()
	playerRepo := repositories.NewPlayerRepository(conn)
	ps := services.NewPlayerService(playerRepo)
	ts := services.NewTournamentService(repositories.NewTournamentRepository(conn), repositories.NewRegistrationRepository(conn), playerRepo)

	tour, err := ts.CreateTournament(ctx, services.CreateTournamentInput{Name: name})
	require.NoError(c.t, err)
	for _, p := range players {
		player, err := ps.CreatePlayer(ctx, services.CreatePlayerInput{Name: p})
		require.NoError(c.t, err)
		_, err = ts.RegisterPlayer(ctx, tour.ID, player.ID)
		require.NoError(c.t, err)
	}
	return tour.ID
}

func TestCLIWorkflow(t *testing.T) {
	c := newCLI(t)

	out, err := c.run("", "migrate")
	require.NoError(t, err)
	assert.Contains(t, out, "schema applied")

	tid := c.seed("Club night", "Ann", "Ben", "Cid")

	// Preview against the latest tournament stores nothing.
	out, err = c.run("", "pair")
	require.NoError(t, err)
	assert.Contains(t, out, "Round 1")
	assert.Contains(t, out, "BYE")

	out, err = c.run("", "--format", "json", "pair", "--tournament", strconv.Itoa(tid), "--commit")
	require.NoError(t, err)
	var round models.Round
	require.NoError(t, json.Unmarshal([]byte(out), &round))
	assert.Equal(t, 1, round.Number)
	require.Len(t, round.Pairings, 2)
	assert.NotNil(t, round.Pairings[0].MatchID)

	out, err = c.run("", "--format", "json", "standings")
	require.NoError(t, err)
	var rows []models.StandingsRow
	require.NoError(t, json.Unmarshal([]byte(out), &rows))
	require.Len(t, rows, 3)
	assert.Equal(t, "Cid", rows[0].Name, "the bye counts as a win")
	assert.Equal(t, 1, rows[0].Byes)

	// R2 в тестах не настроен
	_, err = c.run("", "export")
	assert.ErrorIs(t, err, services.ErrExportDisabled)

	// Результаты первого тура не внесены
	_, err = c.run("", "pair", "--commit")
	assert.ErrorIs(t, err, services.ErrRoundIncomplete)

	out, err = c.run("", "reset-matches")
	require.NoError(t, err)
	assert.Contains(t, out, "deleted 1 matches")

	out, err = c.run("", "standings")
	require.NoError(t, err)
	assert.Contains(t, out, "RANK")
	assert.Contains(t, out, "Ann")
}

func TestCLIWithoutTournament(t *testing.T) {
	c := newCLI(t)
	_, err := c.run("", "migrate")
	require.NoError(t, err)

	_, err = c.run("", "standings")
	assert.Error(t, err)

	_, err = c.run("", "standings", "--tournament", "42")
	assert.ErrorIs(t, err, services.ErrTournamentNotFound)
}

func TestCLIRejectsUnknownFormat(t *testing.T) {
	c := newCLI(t)
	_, err := c.run("", "--format", "yaml", "migrate")
	assert.Error(t, err)
}

func TestHashPassword(t *testing.T) {
	c := newCLI(t)

	out, err := c.run("", "hash-password", "s3cret")
	require.NoError(t, err)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(strings.TrimSpace(out)), []byte("s3cret")))

	out, err = c.run("from-stdin\n", "hash-password")
	require.NoError(t, err)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(strings.TrimSpace(out)), []byte("from-stdin")))

	_, err = c.run("", "hash-password")
	assert.Error(t, err)
}
