package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/Dosada05/league-system/cache"
	"github.com/Dosada05/league-system/db"
	"github.com/Dosada05/league-system/metrics"
	"github.com/Dosada05/league-system/models"
	"github.com/Dosada05/league-system/notify"
	"github.com/Dosada05/league-system/repositories"
)

// Deps are the collaborators shared by all services.
type Deps struct {
	Tournaments   repositories.TournamentRepository
	Registrations repositories.TournamentTeamRepository
	Teams         repositories.TeamRepository
	Players       repositories.PlayerRepository
	Matches       repositories.MatchRepository
	Events        repositories.MatchEventRepository
	Tx            db.Transactor
	Cache         *cache.Cache
	Notifier      notify.Dispatcher
	Metrics       metrics.Recorder
	Clock         Clock
	Logger        *slog.Logger
}

func (d Deps) withDefaults() Deps {
	if d.Clock == nil {
		d.Clock = SystemClock()
	}
	if d.Metrics == nil {
		d.Metrics = metrics.Noop{}
	}
	if d.Logger == nil {
		d.Logger = slog.Default()
	}
	if d.Cache == nil {
		d.Cache = cache.New(cache.Noop{}, d.Logger)
	}
	if d.Notifier == nil {
		d.Notifier = notify.Discard{}
	}
	return d
}

// loadTournament reads a tournament through the cache.
func loadTournament(ctx context.Context, d Deps, id int) (*models.Tournament, error) {
	return cache.GetOrCreate(ctx, d.Cache, cache.TournamentKey(id), cache.DetailTTL, func(ctx context.Context) (*models.Tournament, error) {
		t, err := d.Tournaments.GetByID(ctx, id)
		if err != nil {
			if errors.Is(err, repositories.ErrTournamentNotFound) {
				return nil, ErrTournamentNotFound
			}
			return nil, fmt.Errorf("failed to get tournament %d: %w", id, err)
		}
		return t, nil
	})
}

// loadTournamentFresh bypasses the cache; used before writes.
func loadTournamentFresh(ctx context.Context, d Deps, id int) (*models.Tournament, error) {
	t, err := d.Tournaments.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repositories.ErrTournamentNotFound) {
			return nil, ErrTournamentNotFound
		}
		return nil, fmt.Errorf("failed to get tournament %d: %w", id, err)
	}
	return t, nil
}

func loadMatch(ctx context.Context, d Deps, id int) (*models.Match, error) {
	m, err := d.Matches.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repositories.ErrMatchNotFound) {
			return nil, ErrMatchNotFound
		}
		return nil, fmt.Errorf("failed to get match %d: %w", id, err)
	}
	return m, nil
}

func loadTeam(ctx context.Context, d Deps, id int) (*models.Team, error) {
	team, err := d.Teams.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repositories.ErrTeamNotFound) {
			return nil, ErrTeamNotFound
		}
		return nil, fmt.Errorf("failed to get team %d: %w", id, err)
	}
	return team, nil
}

// canView hides private tournaments from everyone but their organizer and admins.
func canView(actor models.Actor, t *models.Tournament) bool {
	return t.IsPublic || actor.IsAdmin() || (actor.UserID > 0 && actor.UserID == t.OrganizerID)
}
