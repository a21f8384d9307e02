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
	"github.com/urfave/cli/v2"

	"github.com/Dosada05/league-system/config"
	"github.com/Dosada05/league-system/db"
	"github.com/Dosada05/league-system/handlers"
	"github.com/Dosada05/league-system/middleware"
	"github.com/Dosada05/league-system/routes"
	"github.com/Dosada05/league-system/scheduler"
)

const (
	dbConnectTimeout = 5 * time.Second
	shutdownTimeout  = 15 * time.Second
)

func main() {
	cliApp := &cli.App{
		Name:  "league",
		Usage: "league tournament engine",
		Commands: []*cli.Command{
			serveCommand(),
			reconcileCommand(),
			migrateCommand(),
		},
	}

	if err := cliApp.Run(os.Args); err != nil {
		slog.Error("command failed", slog.Any("error", err))
		os.Exit(1)
	}
}

// loadConfig загружает конфигурацию и настраивает логгер по умолчанию.
func loadConfig() (*config.Config, *slog.Logger, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	logger := newLogger(cfg.LogLevel)
	slog.SetDefault(logger)
	return cfg, logger, nil
}

func serveCommand() *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "run the HTTP API and the status sweep",
		Flags: []cli.Flag{
			&cli.BoolFlag{Name: "migrate", Usage: "apply database migrations before starting", Value: true},
			&cli.BoolFlag{Name: "no-sweep", Usage: "do not schedule the tournament status sweep"},
		},
		Action: func(c *cli.Context) error {
			cfg, logger, err := loadConfig()
			if err != nil {
				return err
			}
			if err := cfg.ValidateServe(); err != nil {
				return err
			}
			logger.Info("configuration loaded", slog.Int("port", cfg.ServerPort))

			app, err := newApplication(c.Context, cfg, logger)
			if err != nil {
				return err
			}
			defer app.Close()

			if c.Bool("migrate") {
				if err := db.Migrate(app.db); err != nil {
					return err
				}
				logger.Info("database migrations applied")
			}

			if !c.Bool("no-sweep") {
				sched, err := scheduler.New(logger)
				if err != nil {
					return err
				}
				if _, err := sched.AddStatusSweep(cfg.SweepInterval, cfg.SweepInterval, app.tournaments, app.deps.Clock); err != nil {
					return err
				}
				sched.Start()
				defer func() {
					if err := sched.Stop(); err != nil {
						logger.Error("failed to stop scheduler", slog.Any("error", err))
					}
				}()
			}

			return serve(app)
		},
	}
}

func serve(app *application) error {
	cfg, logger := app.cfg, app.logger

	router := chi.NewRouter()
	routes.SetupRoutes(router, routes.Options{
		Auth:               middleware.NewAuthenticator(cfg.JWTSecretKey, logger),
		Tournaments:        handlers.NewTournamentHandler(app.tournaments, app.matches),
		Matches:            handlers.NewMatchHandler(app.matches, app.events),
		Teams:              handlers.NewTeamHandler(app.teams, app.events),
		Admin:              handlers.NewAdminHandler(app.tournaments, app.deps.Clock, logger),
		Metrics:            app.registry,
		CORSAllowedOrigins: cfg.CORSAllowedOrigins,
	})
	logger.Info("routes configured")

	// Настройка и запуск HTTP-сервера
	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.ServerPort),
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,
		ErrorLog:     slog.NewLogLogger(logger.Handler(), slog.LevelError),
	}

	serverErrors := make(chan error, 1)
	go func() {
		logger.Info("starting server", slog.String("address", server.Addr))
		serverErrors <- server.ListenAndServe()
	}()

	// Ожидание сигнала завершения
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(quit)

	select {
	case err := <-serverErrors:
		if !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}
		logger.Info("server stopped gracefully")
	case sig := <-quit:
		logger.Info("shutdown signal received", slog.String("signal", sig.String()))
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

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
	return nil
}

func reconcileCommand() *cli.Command {
	return &cli.Command{
		Name:  "reconcile",
		Usage: "run one tournament status sweep and exit",
		Action: func(c *cli.Context) error {
			cfg, logger, err := loadConfig()
			if err != nil {
				return err
			}
			app, err := newApplication(c.Context, cfg, logger)
			if err != nil {
				return err
			}
			defer app.Close()

			report, err := app.tournaments.ReconcileStatuses(c.Context, app.deps.Clock.Now())
			if err != nil {
				return err
			}
			logger.Info("status sweep finished",
				slog.Int("checked", report.Checked),
				slog.Int("updated", report.Updated),
				slog.Int("skipped", report.Skipped),
				slog.Int("failed", report.Failed))
			if report.Failed > 0 {
				return fmt.Errorf("%d tournaments failed to reconcile", report.Failed)
			}
			return nil
		},
	}
}

func migrateCommand() *cli.Command {
	return &cli.Command{
		Name:  "migrate",
		Usage: "apply database migrations",
		Action: func(c *cli.Context) error {
			cfg, logger, err := loadConfig()
			if err != nil {
				return err
			}
			dbConn, err := db.Connect(c.Context, cfg.DatabaseURL, dbConnectTimeout, db.PoolOptions{MaxOpenConns: cfg.DBMaxOpenConns})
			if err != nil {
				return err
			}
			defer dbConn.Close()

			if err := db.Migrate(dbConn); err != nil {
				return err
			}
			logger.Info("database migrations applied")
			return nil
		},
	}
}
