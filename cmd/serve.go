package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/spf13/cobra"

	"github.com/Dosada05/swiss-tournament/db"
	"github.com/Dosada05/swiss-tournament/handlers"
	"github.com/Dosada05/swiss-tournament/realtime"
	"github.com/Dosada05/swiss-tournament/routes"
	"github.com/Dosada05/swiss-tournament/services"
)

const shutdownTimeout = 15 * time.Second

func newServeCommand(opts *rootOptions) *cobra.Command {
	var migrate bool

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP and websocket server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer(cmd.Context(), opts, opts.newLogger(cmd.ErrOrStderr()), migrate)
		},
	}
	cmd.Flags().BoolVar(&migrate, "migrate", false, "apply the schema before serving")
	return cmd
}

func runServer(ctx context.Context, opts *rootOptions, logger *slog.Logger, migrate bool) error {
	slog.SetDefault(logger)

	// Загрузка конфигурации
	cfg, err := opts.loadConfig()
	if err != nil {
		logger.Error("failed to load configuration", slog.Any("error", err))
		return err
	}
	if err := cfg.ValidateServer(); err != nil {
		logger.Error("invalid server configuration", slog.Any("error", err))
		return err
	}
	logger.Info("configuration loaded", slog.Int("port", cfg.ServerPort))

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Инициализация WebSocket Hub
	wsHub := realtime.NewHub(logger)
	go wsHub.Run(ctx)
	logger.Info("WebSocket Hub started")

	a, err := newApp(ctx, cfg, logger, wsHub)
	if err != nil {
		logger.Error("failed to initialize application", slog.Any("error", err))
		return err
	}
	defer a.Close()

	if migrate {
		if err := db.Migrate(ctx, a.db, cfg.DatabaseDriver); err != nil {
			logger.Error("failed to apply schema", slog.Any("error", err))
			return err
		}
		logger.Info("schema applied")
	}

	// Инициализация обработчиков HTTP
	h := routes.Handlers{
		Auth:       handlers.NewAuthHandler(services.NewAuthService(cfg.AdminUsername, cfg.AdminPasswordHash), cfg.JWTSecretKey),
		Player:     handlers.NewPlayerHandler(a.players),
		Tournament: handlers.NewTournamentHandler(a.tournaments, a.standings, a.exports),
		Round:      handlers.NewRoundHandler(a.rounds),
		Match:      handlers.NewMatchHandler(a.matches),
		WebSocket:  handlers.NewWebSocketHandler(wsHub, a.tournaments, cfg.AllowedOrigins, logger),
		Health:     handlers.NewHealthHandler(a.db),
	}

	// Настройка маршрутизатора
	router := chi.NewRouter()
	routes.SetupRoutes(router, h, routes.Options{
		JWTSecret:      []byte(cfg.JWTSecretKey),
		AllowedOrigins: cfg.AllowedOrigins,
		RequestLogger:  true,
	})
	logger.Info("Routes configured")

	// Настройка и запуск HTTP-сервера
	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.ServerPort),
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 20 * time.Second,
		IdleTimeout:  120 * time.Second,
		ErrorLog:     slog.NewLogLogger(logger.Handler(), slog.LevelError),
	}

	serverErrors := make(chan error, 1)
	go func() {
		logger.Info("starting server", slog.String("address", server.Addr))
		serverErrors <- server.ListenAndServe()
	}()

	// Ожидание сигнала завершения
	select {
	case err := <-serverErrors:
		if !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server error", slog.Any("error", err))
			return err
		}
		logger.Info("server stopped gracefully")
	case <-ctx.Done():
		logger.Info("shutdown signal received")
		shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancelShutdown()

		logger.Info("shutting down server", slog.Duration("timeout", shutdownTimeout))
		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error("graceful shutdown failed", slog.Any("error", err))
			if closeErr := server.Close(); closeErr != nil {
				logger.Error("failed to force close server", slog.Any("error", closeErr))
			}
			return err
		}
		logger.Info("server shutdown complete")
	}
	logger.Info("application exited")
	return nil
}
