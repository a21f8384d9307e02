package routes

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/Dosada05/league-system/handlers"
	"github.com/Dosada05/league-system/middleware"
	"github.com/Dosada05/league-system/models"
)

// Options собирает все, что нужно роутеру.
type Options struct {
	Auth               *middleware.Authenticator
	Tournaments        *handlers.TournamentHandler
	Matches            *handlers.MatchHandler
	Teams              *handlers.TeamHandler
	Admin              *handlers.AdminHandler
	Metrics            prometheus.Gatherer
	CORSAllowedOrigins []string
}

func SetupRoutes(router chi.Router, opts Options) {
	router.Use(chiMiddleware.RequestID)
	router.Use(chiMiddleware.RealIP)
	router.Use(chiMiddleware.Logger)
	router.Use(chiMiddleware.Recoverer)
	router.Use(chiMiddleware.Timeout(30 * time.Second))
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   opts.CORSAllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	router.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	if opts.Metrics != nil {
		router.Handle("/metrics", promhttp.HandlerFor(opts.Metrics, promhttp.HandlerOpts{}))
	}

	auth := opts.Auth

	router.Route("/tournaments", func(r chi.Router) {
		// Публичные маршруты; приватные турниры видны только организатору
		r.Group(func(r chi.Router) {
			r.Use(auth.Optional)
			r.Get("/", opts.Tournaments.List)
			r.Get("/{tournamentID}", opts.Tournaments.GetByID)
			r.Get("/{tournamentID}/overview", opts.Tournaments.Overview)
			r.Get("/{tournamentID}/teams", opts.Tournaments.ListTeams)
			r.Get("/{tournamentID}/matches", opts.Tournaments.ListMatches)
			r.Get("/{tournamentID}/standings", opts.Tournaments.Standings)
		})

		r.Group(func(r chi.Router) {
			r.Use(auth.Authenticate)

			r.Post("/{tournamentID}/teams", opts.Tournaments.RegisterTeam)
			r.Delete("/{tournamentID}/teams/{teamID}", opts.Tournaments.WithdrawTeam)

			// Права организатора конкретного турнира проверяет сервис
			r.Group(func(r chi.Router) {
				r.Use(middleware.Authorize(models.RoleOrganizer, models.RoleAdmin))
				r.Post("/", opts.Tournaments.Create)
				r.Patch("/{tournamentID}", opts.Tournaments.Update)
				r.Delete("/{tournamentID}", opts.Tournaments.Delete)
				r.Post("/{tournamentID}/status", opts.Tournaments.ChangeStatus)
				r.Post("/{tournamentID}/teams/{teamID}/approve", opts.Tournaments.ApproveTeam)
				r.Post("/{tournamentID}/teams/{teamID}/reject", opts.Tournaments.RejectTeam)
				r.Post("/{tournamentID}/fixtures", opts.Tournaments.GenerateFixtures)
			})
		})
	})

	router.Route("/matches", func(r chi.Router) {
		r.Group(func(r chi.Router) {
			r.Use(auth.Optional)
			r.Get("/{matchID}", opts.Matches.GetByID)
			r.Get("/{matchID}/events", opts.Matches.ListEvents)
		})

		r.Group(func(r chi.Router) {
			r.Use(auth.Authenticate)
			r.Use(middleware.Authorize(models.RoleOrganizer, models.RoleAdmin))
			r.Post("/", opts.Matches.Create)
			r.Patch("/{matchID}/schedule", opts.Matches.Reschedule)
			r.Post("/{matchID}/status", opts.Matches.ChangeStatus)
			r.Delete("/{matchID}", opts.Matches.Delete)
			r.Post("/{matchID}/events", opts.Matches.CreateEvent)
		})
	})

	router.Route("/events", func(r chi.Router) {
		r.Use(auth.Authenticate)
		r.Use(middleware.Authorize(models.RoleOrganizer, models.RoleAdmin))
		r.Patch("/{eventID}", opts.Matches.UpdateEvent)
		r.Delete("/{eventID}", opts.Matches.DeleteEvent)
	})

	router.Route("/teams", func(r chi.Router) {
		r.Get("/{teamID}", opts.Teams.GetByID)
		r.Get("/{teamID}/stats", opts.Teams.TeamStats)

		r.Group(func(r chi.Router) {
			r.Use(auth.Authenticate)
			r.Get("/me", opts.Teams.ListMine)
			r.Post("/", opts.Teams.Create)
			r.Patch("/{teamID}", opts.Teams.Update)
			r.Delete("/{teamID}", opts.Teams.Delete)
			r.Post("/{teamID}/players", opts.Teams.AddPlayer)
		})
	})

	router.Route("/players", func(r chi.Router) {
		r.Get("/{playerID}/stats", opts.Teams.PlayerStats)
		r.Get("/{playerID}/events", opts.Teams.PlayerEvents)
		r.With(auth.Authenticate).Patch("/{playerID}/status", opts.Teams.UpdatePlayerStatus)
	})

	router.Route("/admin", func(r chi.Router) {
		r.Use(auth.Authenticate)
		r.Use(middleware.Authorize(models.RoleAdmin))
		r.Post("/reconcile", opts.Admin.Reconcile)
	})
}
