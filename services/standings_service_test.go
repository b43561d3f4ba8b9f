package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Dosada05/swiss-tournament/cache"
	"github.com/Dosada05/swiss-tournament/models"
	"github.com/Dosada05/swiss-tournament/testutil"
)

func newRedisCache(t *testing.T) *cache.Redis {
	t.Helper()
	mini := miniredis.RunT(t)
	c := cache.NewRedisWithClient(redis.NewClient(&redis.Options{Addr: mini.Addr()}), time.Minute)
	t.Cleanup(func() { _ = c.Close() })
	return c
}

func TestStandingsAreCachedUntilInvalidated(t *testing.T) {
	ctx := context.Background()
	store := newFakeStore()
	ids := store.addTournament(tid, 1, "Ann", "Ben")
	svc := NewStandingsService(store, newRedisCache(t), testutil.NopLogger())

	rows, err := svc.GetStandings(ctx, tid)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Zero(t, rows[0].Wins)

	// Changes made behind the service's back stay invisible until invalidation.
	store.seedPlayed(tid, 1, ids[1], ids[0])
	rows, err = svc.GetStandings(ctx, tid)
	require.NoError(t, err)
	assert.Equal(t, ids[0], rows[0].PlayerID)

	svc.Invalidate(ctx, tid)
	rows, err = svc.GetStandings(ctx, tid)
	require.NoError(t, err)
	assert.Equal(t, ids[1], rows[0].PlayerID)
	assert.Equal(t, 1, rows[0].Wins)
}

type brokenCache struct{}

func (brokenCache) Get(context.Context, int) ([]models.StandingsRow, bool, error) {
	return nil, false, errors.New("connection refused")
}
func (brokenCache) Set(context.Context, int, []models.StandingsRow) error {
	return errors.New("connection refused")
}
func (brokenCache) Invalidate(context.Context, int) error { return errors.New("connection refused") }

func TestStandingsFallBackToStoreWhenCacheFails(t *testing.T) {
	store := newFakeStore()
	store.addTournament(tid, 1, "Ann", "Ben")
	svc := NewStandingsService(store, brokenCache{}, testutil.NopLogger())

	rows, err := svc.GetStandings(context.Background(), tid)
	require.NoError(t, err)
	assert.Len(t, rows, 2)
	svc.Invalidate(context.Background(), tid)
}

func TestStandingsUnknownTournament(t *testing.T) {
	svc := NewStandingsService(newFakeStore(), nil, testutil.NopLogger())
	_, err := svc.GetStandings(context.Background(), 5)
	assert.ErrorIs(t, err, ErrTournamentNotFound)
}

func TestStandingsEmptyTournament(t *testing.T) {
	store := newFakeStore()
	store.addTournament(tid, 1)
	svc := NewStandingsService(store, nil, testutil.NopLogger())

	rows, err := svc.GetStandings(context.Background(), tid)
	require.NoError(t, err)
	assert.NotNil(t, rows)
	assert.Empty(t, rows)
}
