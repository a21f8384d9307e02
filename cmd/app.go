package main

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/Dosada05/league-system/cache"
	"github.com/Dosada05/league-system/config"
	"github.com/Dosada05/league-system/db"
	"github.com/Dosada05/league-system/metrics"
	"github.com/Dosada05/league-system/notify"
	"github.com/Dosada05/league-system/repositories"
	"github.com/Dosada05/league-system/services"
)

// application держит все долгоживущие зависимости процесса.
type application struct {
	cfg      *config.Config
	logger   *slog.Logger
	db       *sql.DB
	registry *prometheus.Registry
	notifier *notify.BestEffort
	closers  []func() error

	deps        services.Deps
	tournaments services.TournamentService
	matches     services.MatchService
	events      services.MatchEventService
	teams       services.TeamService
}

func newLogger(level slog.Level) *slog.Logger {
	return slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: level}))
}

func newApplication(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*application, error) {
	app := &application{cfg: cfg, logger: logger}

	// Подключение к базе данных
	dbConn, err := db.Connect(ctx, cfg.DatabaseURL, dbConnectTimeout, db.PoolOptions{MaxOpenConns: cfg.DBMaxOpenConns})
	if err != nil {
		return nil, err
	}
	app.db = dbConn
	app.closers = append(app.closers, dbConn.Close)
	logger.Info("database connection established")

	app.registry = prometheus.NewRegistry()
	app.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	recorder := metrics.New(app.registry)

	store, err := app.cacheStore(ctx)
	if err != nil {
		app.Close()
		return nil, err
	}

	mailer, err := app.mailer(ctx)
	if err != nil {
		app.Close()
		return nil, err
	}

	users := repositories.NewPostgresUserRepository(dbConn)
	app.notifier = notify.NewBestEffort(notify.NewEmailNotifier(users, mailer, cfg.PublicURL), logger, recorder)

	app.deps = services.Deps{
		Tournaments:   repositories.NewPostgresTournamentRepository(dbConn),
		Registrations: repositories.NewPostgresTournamentTeamRepository(dbConn),
		Teams:         repositories.NewPostgresTeamRepository(dbConn),
		Players:       repositories.NewPostgresPlayerRepository(dbConn),
		Matches:       repositories.NewPostgresMatchRepository(dbConn),
		Events:        repositories.NewPostgresMatchEventRepository(dbConn),
		Tx:            db.NewTransactor(dbConn, logger),
		Cache:         cache.New(store, logger),
		Notifier:      app.notifier,
		Metrics:       recorder,
		Clock:         services.SystemClock(),
		Logger:        logger,
	}
	app.tournaments = services.NewTournamentService(app.deps)
	app.matches = services.NewMatchService(app.deps)
	app.events = services.NewMatchEventService(app.deps)
	app.teams = services.NewTeamService(app.deps)
	logger.Info("services initialized")

	return app, nil
}

func (app *application) cacheStore(ctx context.Context) (cache.Store, error) {
	if app.cfg.RedisURL == "" {
		app.logger.Warn("REDIS_URL is not set, caching disabled")
		return cache.Noop{}, nil
	}
	store, err := cache.NewRedisStore(ctx, app.cfg.RedisURL)
	if err != nil {
		return nil, err
	}
	app.closers = append(app.closers, store.Close)
	app.logger.Info("redis cache connected")
	return store, nil
}

func (app *application) mailer(ctx context.Context) (notify.Mailer, error) {
	cfg := app.cfg
	switch cfg.MailProvider {
	case config.MailProviderSES:
		m, err := notify.NewSESMailer(ctx, cfg.SES.AccessKeyID, cfg.SES.SecretAccessKey, cfg.SES.Region, cfg.MailFrom)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize ses mailer: %w", err)
		}
		return m, nil
	case config.MailProviderSMTP:
		return notify.NewSMTPMailer(notify.SMTPConfig{
			Host: cfg.SMTP.Host,
			Port: cfg.SMTP.Port,
			User: cfg.SMTP.Username,
			Pass: cfg.SMTP.Password,
			From: cfg.MailFrom,
		}), nil
	default:
		return notify.NewLogMailer(app.logger), nil
	}
}

// Close дожидается отложенных уведомлений и закрывает соединения в обратном порядке.
func (app *application) Close() {
	if app.notifier != nil {
		app.notifier.Wait()
	}
	for i := len(app.closers) - 1; i >= 0; i-- {
		if err := app.closers[i](); err != nil {
			app.logger.Error("failed to close resource", slog.Any("error", err))
		}
	}
	app.closers = nil
}
