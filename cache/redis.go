package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/Dosada05/swiss-tournament/models"
)

const DefaultTTL = 10 * time.Minute

// Redis is a StandingsCache backed by a Redis string key per tournament.
type Redis struct {
	client *redis.Client
	ttl    time.Duration
}

var _ StandingsCache = (*Redis)(nil)

// NewRedis connects to the Redis server at url and verifies the connection.
func NewRedis(url string, ttl time.Duration) (*Redis, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("invalid redis url: %w", err)
	}
	client := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis ping failed: %w", err)
	}
	return NewRedisWithClient(client, ttl), nil
}

// NewRedisWithClient wraps an existing client (used by tests).
func NewRedisWithClient(client *redis.Client, ttl time.Duration) *Redis {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Redis{client: client, ttl: ttl}
}

func (c *Redis) Close() error {
	return c.client.Close()
}

func standingsKey(tournamentID int) string {
	return fmt.Sprintf("swiss:standings:%d", tournamentID)
}

func (c *Redis) Get(ctx context.Context, tournamentID int) ([]models.StandingsRow, bool, error) {
	data, err := c.client.Get(ctx, standingsKey(tournamentID)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, false, nil
		}
		return nil, false, err
	}

	var rows []models.StandingsRow
	if err := json.Unmarshal(data, &rows); err != nil {
		return nil, false, fmt.Errorf("corrupt standings entry for tournament %d: %w", tournamentID, err)
	}
	return rows, true, nil
}

func (c *Redis) Set(ctx context.Context, tournamentID int, rows []models.StandingsRow) error {
	data, err := json.Marshal(rows)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, standingsKey(tournamentID), data, c.ttl).Err()
}

func (c *Redis) Invalidate(ctx context.Context, tournamentID int) error {
	return c.client.Del(ctx, standingsKey(tournamentID)).Err()
}
