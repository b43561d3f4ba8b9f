package routes

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/Dosada05/swiss-tournament/handlers"
	"github.com/Dosada05/swiss-tournament/middleware"
	"github.com/Dosada05/swiss-tournament/services"
)

type Handlers struct {
	Auth       *handlers.AuthHandler
	Player     *handlers.PlayerHandler
	Tournament *handlers.TournamentHandler
	Round      *handlers.RoundHandler
	Match      *handlers.MatchHandler
	WebSocket  *handlers.WebSocketHandler
	Health     *handlers.HealthHandler
}

type Options struct {
	JWTSecret      []byte
	AllowedOrigins []string
	// RequestLogger включает chi Logger; в тестах выключен.
	RequestLogger bool
}

func SetupRoutes(router chi.Router, h Handlers, opts Options) {
	router.Use(chiMiddleware.RequestID)
	router.Use(chiMiddleware.RealIP)
	if opts.RequestLogger {
		router.Use(chiMiddleware.Logger)
	}
	router.Use(chiMiddleware.Recoverer)

	origins := opts.AllowedOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   origins,
		AllowedMethods:   []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	organizerOnly := []func(http.Handler) http.Handler{
		middleware.Authenticate(opts.JWTSecret),
		middleware.Authorize(services.RoleOrganizer),
	}

	router.Get("/healthz", h.Health.Healthz)

	// Websocket живёт без таймаута запросов
	router.Get("/ws/tournaments/{tournamentID}", h.WebSocket.ServeWs)

	router.Group(func(r chi.Router) {
		r.Use(chiMiddleware.Timeout(15 * time.Second))

		r.Post("/auth/login", h.Auth.Login)

		r.Route("/players", func(r chi.Router) {
			r.Get("/", h.Player.ListHandler)
			r.Get("/count", h.Player.CountHandler)

			r.Group(func(r chi.Router) {
				r.Use(organizerOnly...)
				r.Post("/", h.Player.CreateHandler)
				r.Delete("/", h.Player.DeleteAllHandler)
			})
		})

		r.Route("/tournaments", func(r chi.Router) {
			r.Get("/", h.Tournament.ListHandler)
			r.With(organizerOnly...).Post("/", h.Tournament.CreateHandler)

			r.Route("/{tournamentID}", func(r chi.Router) {
				r.Get("/", h.Tournament.GetByIDHandler)
				r.Get("/players", h.Tournament.ListPlayersHandler)
				r.Get("/standings", h.Tournament.StandingsHandler)
				r.Get("/pairings", h.Round.PreviewHandler)
				r.Get("/matches", h.Match.ListHandler)

				r.Group(func(r chi.Router) {
					r.Use(organizerOnly...)
					r.Post("/players", h.Tournament.RegisterPlayerHandler)
					r.Post("/standings/export", h.Tournament.ExportStandingsHandler)
					r.Post("/rounds", h.Round.PairHandler)
					r.Post("/matches", h.Match.CreateHandler)
					r.Delete("/matches", h.Match.DeleteAllHandler)
				})
			})
		})

		r.Group(func(r chi.Router) {
			r.Use(organizerOnly...)
			r.Post("/matches/{matchID}/result", h.Match.RecordResultHandler)
		})
	})

	router.NotFound(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"error":"the requested resource could not be found"}` + "\n"))
	})
}
