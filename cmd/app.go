package main

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/Dosada05/swiss-tournament/cache"
	"github.com/Dosada05/swiss-tournament/config"
	"github.com/Dosada05/swiss-tournament/db"
	"github.com/Dosada05/swiss-tournament/realtime"
	"github.com/Dosada05/swiss-tournament/repositories"
	"github.com/Dosada05/swiss-tournament/services"
	"github.com/Dosada05/swiss-tournament/storage"
)

const dbConnectTimeout = 5 * time.Second

// app holds the wired dependencies shared by the server and CLI commands.
type app struct {
	cfg    *config.Config
	logger *slog.Logger
	db     *sql.DB
	redis  *cache.Redis

	players     services.PlayerService
	tournaments services.TournamentService
	standings   services.StandingsService
	rounds      services.RoundService
	matches     services.MatchService
	exports     services.ExportService
}

// newApp connects to the database and optional backends. A nil broadcaster
// disables realtime events, which is what the CLI wants.
func newApp(ctx context.Context, cfg *config.Config, logger *slog.Logger, hub *realtime.Hub) (*app, error) {
	conn, err := db.Connect(cfg.DatabaseDriver, cfg.DatabaseURL, dbConnectTimeout)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	logger.Info("database connection established", slog.String("driver", cfg.DatabaseDriver))

	a := &app{cfg: cfg, logger: logger, db: conn}

	var standingsCache cache.StandingsCache = cache.Nop{}
	if cfg.RedisURL != "" {
		a.redis, err = cache.NewRedis(cfg.RedisURL, cfg.StandingsCacheTTL)
		if err != nil {
			a.Close()
			return nil, fmt.Errorf("failed to connect to redis: %w", err)
		}
		standingsCache = a.redis
		logger.Info("standings cache enabled", slog.Duration("ttl", cfg.StandingsCacheTTL))
	}

	var uploader storage.FileUploader
	if r2 := cfg.R2(); r2.Enabled() {
		uploader, err = storage.NewR2Uploader(ctx, r2)
		if err != nil {
			a.Close()
			return nil, fmt.Errorf("failed to initialize R2 uploader: %w", err)
		}
		logger.Info("R2 uploader initialized", slog.String("bucket", r2.BucketName))
	} else {
		logger.Info("R2 is not configured, standings export disabled")
	}

	var broadcaster services.Broadcaster
	if hub != nil {
		broadcaster = hub
	}

	store := repositories.NewSwissStore(conn)
	playerRepo := repositories.NewPlayerRepository(conn)
	tournamentRepo := repositories.NewTournamentRepository(conn)
	registrationRepo := repositories.NewRegistrationRepository(conn)

	a.players = services.NewPlayerService(playerRepo)
	a.tournaments = services.NewTournamentService(tournamentRepo, registrationRepo, playerRepo)
	a.standings = services.NewStandingsService(store, standingsCache, logger)
	a.rounds = services.NewRoundService(store, a.standings, broadcaster, logger)
	a.matches = services.NewMatchService(store, a.standings, broadcaster, logger)
	a.exports = services.NewExportService(store, a.standings, uploader, logger)

	return a, nil
}

func (a *app) Close() {
	if a.redis != nil {
		if err := a.redis.Close(); err != nil {
			a.logger.Error("failed to close redis client", slog.Any("error", err))
		}
	}
	if err := a.db.Close(); err != nil {
		a.logger.Error("failed to close database connection", slog.Any("error", err))
	} else {
		a.logger.Info("database connection closed")
	}
}
