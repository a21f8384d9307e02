package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/Dosada05/league-system/cache"
	"github.com/Dosada05/league-system/lifecycle"
	"github.com/Dosada05/league-system/models"
	"github.com/Dosada05/league-system/repositories"
)

type CreateEventInput struct {
	MatchID     int              `json:"match_id"`
	TeamID      int              `json:"team_id"`
	PlayerID    int              `json:"player_id"`
	EventType   models.EventType `json:"event_type"`
	Minute      int              `json:"minute"`
	Description *string          `json:"description"`
}

// UpdateEventInput is a partial update; nil fields are left unchanged.
type UpdateEventInput struct {
	TeamID      *int              `json:"team_id"`
	PlayerID    *int              `json:"player_id"`
	EventType   *models.EventType `json:"event_type"`
	Minute      *int              `json:"minute"`
	Description *string           `json:"description"`
}

type MatchEventService interface {
	CreateEvent(ctx context.Context, actor models.Actor, input CreateEventInput) (*models.MatchEvent, error)
	UpdateEvent(ctx context.Context, actor models.Actor, eventID int, input UpdateEventInput) (*models.MatchEvent, error)
	DeleteEvent(ctx context.Context, actor models.Actor, eventID int) error
	ListEvents(ctx context.Context, matchID int) ([]models.MatchEvent, error)
	ListPlayerEvents(ctx context.Context, playerID int) ([]models.MatchEvent, error)
	PlayerStats(ctx context.Context, playerID int, tournamentID *int) (*models.PlayerStats, error)
}

type matchEventService struct {
	Deps
	validator *MatchEventValidator
	inv       *cache.Invalidator
}

func NewMatchEventService(deps Deps) MatchEventService {
	deps = deps.withDefaults()
	return &matchEventService{
		Deps:      deps,
		validator: NewMatchEventValidator(deps.Players, deps.Events),
		inv:       cache.NewInvalidator(deps.Cache),
	}
}

func (s *matchEventService) CreateEvent(ctx context.Context, actor models.Actor, input CreateEventInput) (*models.MatchEvent, error) {
	match, err := s.authorize(ctx, actor, input.MatchID)
	if err != nil {
		return nil, err
	}

	ev := &models.MatchEvent{
		MatchID:     match.ID,
		TeamID:      input.TeamID,
		PlayerID:    input.PlayerID,
		EventType:   input.EventType,
		Minute:      input.Minute,
		Description: input.Description,
	}
	if err := s.validator.Validate(ctx, match, ev, 0); err != nil {
		return nil, err
	}

	err = s.Tx.InTx(ctx, func(exec repositories.SQLExecutor) error {
		if err := s.Events.Create(ctx, exec, ev); err != nil {
			return mapEventRepoError(err)
		}
		if lifecycle.TouchesScore("", ev.EventType) {
			return s.recomputeScore(ctx, exec, match)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.Metrics.MatchEventRecorded(string(ev.EventType))
	s.inv.MatchEvent(ctx, match, ev)
	s.Logger.InfoContext(ctx, "match event recorded",
		slog.Int("match_id", match.ID),
		slog.Int("event_id", ev.ID),
		slog.String("type", string(ev.EventType)),
		slog.Int("minute", ev.Minute))
	return ev, nil
}

func (s *matchEventService) UpdateEvent(ctx context.Context, actor models.Actor, eventID int, input UpdateEventInput) (*models.MatchEvent, error) {
	existing, err := s.loadEvent(ctx, eventID)
	if err != nil {
		return nil, err
	}
	match, err := s.authorize(ctx, actor, existing.MatchID)
	if err != nil {
		return nil, err
	}

	updated := *existing
	if input.TeamID != nil {
		updated.TeamID = *input.TeamID
	}
	if input.PlayerID != nil {
		updated.PlayerID = *input.PlayerID
	}
	if input.EventType != nil {
		updated.EventType = *input.EventType
	}
	if input.Minute != nil {
		updated.Minute = *input.Minute
	}
	if input.Description != nil {
		updated.Description = input.Description
	}
	if err := s.validator.Validate(ctx, match, &updated, existing.ID); err != nil {
		return nil, err
	}

	err = s.Tx.InTx(ctx, func(exec repositories.SQLExecutor) error {
		if err := s.Events.Update(ctx, exec, &updated); err != nil {
			return mapEventRepoError(err)
		}
		// гол мог появиться, исчезнуть или перейти к другой команде
		if lifecycle.TouchesScore(existing.EventType, updated.EventType) {
			return s.recomputeScore(ctx, exec, match)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.inv.MatchEvent(ctx, match, existing, &updated)
	return &updated, nil
}

func (s *matchEventService) DeleteEvent(ctx context.Context, actor models.Actor, eventID int) error {
	existing, err := s.loadEvent(ctx, eventID)
	if err != nil {
		return err
	}
	match, err := s.authorize(ctx, actor, existing.MatchID)
	if err != nil {
		return err
	}
	if !lifecycle.AcceptsEvents(match.Status) {
		return fmt.Errorf("%w (status %s)", ErrMatchNotLive, match.Status)
	}

	err = s.Tx.InTx(ctx, func(exec repositories.SQLExecutor) error {
		if err := s.Events.Delete(ctx, exec, existing.ID); err != nil {
			return mapEventRepoError(err)
		}
		if lifecycle.TouchesScore(existing.EventType, "") {
			return s.recomputeScore(ctx, exec, match)
		}
		return nil
	})
	if err != nil {
		return err
	}

	s.inv.MatchEvent(ctx, match, existing)
	s.Logger.InfoContext(ctx, "match event deleted", slog.Int("match_id", match.ID), slog.Int("event_id", existing.ID))
	return nil
}

func (s *matchEventService) ListEvents(ctx context.Context, matchID int) ([]models.MatchEvent, error) {
	return cache.GetOrCreate(ctx, s.Cache, cache.MatchEventsKey(matchID), cache.LiveTTL,
		func(ctx context.Context) ([]models.MatchEvent, error) {
			if _, err := loadMatch(ctx, s.Deps, matchID); err != nil {
				return nil, err
			}
			return s.Events.ListByMatch(ctx, nil, matchID)
		})
}

func (s *matchEventService) ListPlayerEvents(ctx context.Context, playerID int) ([]models.MatchEvent, error) {
	return cache.GetOrCreate(ctx, s.Cache, cache.PlayerEventsKey(playerID), cache.ListTTL,
		func(ctx context.Context) ([]models.MatchEvent, error) {
			if _, err := s.Players.GetByID(ctx, playerID); err != nil {
				return nil, mapPlayerRepoError(err)
			}
			return s.Events.ListByPlayer(ctx, playerID, nil)
		})
}

func (s *matchEventService) PlayerStats(ctx context.Context, playerID int, tournamentID *int) (*models.PlayerStats, error) {
	player, err := s.Players.GetByID(ctx, playerID)
	if err != nil {
		return nil, mapPlayerRepoError(err)
	}
	key := cache.PlayerStatsKey(playerID, player.TeamID, tournamentID)
	return cache.GetOrCreate(ctx, s.Cache, key, cache.StatsTTL, func(ctx context.Context) (*models.PlayerStats, error) {
		events, err := s.Events.ListByPlayer(ctx, playerID, tournamentID)
		if err != nil {
			return nil, fmt.Errorf("failed to load player events: %w", err)
		}
		stats := aggregatePlayerStats(events)
		stats.PlayerID = playerID
		stats.TeamID = player.TeamID
		stats.TournamentID = tournamentID
		return stats, nil
	})
}

// authorize loads the match and checks the actor organizes its tournament
// and the match is still open for edits.
func (s *matchEventService) authorize(ctx context.Context, actor models.Actor, matchID int) (*models.Match, error) {
	match, err := loadMatch(ctx, s.Deps, matchID)
	if err != nil {
		return nil, err
	}
	t, err := loadTournamentFresh(ctx, s.Deps, match.TournamentID)
	if err != nil {
		return nil, err
	}
	if err := requireOrganizer(actor, t); err != nil {
		return nil, err
	}
	if match.Status == models.MatchCompleted {
		return nil, ErrMatchCompleted
	}
	return match, nil
}

// recomputeScore rederives the score from all goal events inside the transaction.
// The match row stays locked until commit, so concurrent goal writes are serialized.
func (s *matchEventService) recomputeScore(ctx context.Context, exec repositories.SQLExecutor, match *models.Match) error {
	locked, err := s.Matches.GetForUpdate(ctx, exec, match.ID)
	if err != nil {
		return mapMatchRepoError(err)
	}
	events, err := s.Events.ListByMatch(ctx, exec, match.ID)
	if err != nil {
		return fmt.Errorf("failed to reload match events: %w", err)
	}
	score := lifecycle.ComputeScore(locked, events)
	if lifecycle.ScoreChanged(locked, score) {
		home, away := intPtr(score.Home), intPtr(score.Away)
		if err := s.Matches.UpdateScore(ctx, exec, match.ID, home, away); err != nil {
			return fmt.Errorf("failed to store match score: %w", err)
		}
		locked.HomeScore, locked.AwayScore = home, away
	}
	match.HomeScore, match.AwayScore = locked.HomeScore, locked.AwayScore
	return nil
}

func (s *matchEventService) loadEvent(ctx context.Context, id int) (*models.MatchEvent, error) {
	ev, err := s.Events.GetByID(ctx, id)
	if err != nil {
		return nil, mapEventRepoError(err)
	}
	return ev, nil
}

func mapEventRepoError(err error) error {
	switch {
	case errors.Is(err, repositories.ErrMatchEventNotFound):
		return ErrMatchEventNotFound
	case errors.Is(err, repositories.ErrMatchEventInvalidReference):
		return fmt.Errorf("%w: %w", ErrValidation, err)
	default:
		return err
	}
}

func aggregatePlayerStats(events []models.MatchEvent) *models.PlayerStats {
	stats := &models.PlayerStats{}
	matches := make(map[int]struct{})
	for _, ev := range events {
		matches[ev.MatchID] = struct{}{}
		switch ev.EventType {
		case models.EventGoal:
			stats.Goals++
		case models.EventAssist:
			stats.Assists++
		case models.EventYellowCard:
			stats.YellowCards++
		case models.EventRedCard:
			stats.RedCards++
		case models.EventFoul:
			stats.Fouls++
		}
	}
	stats.Matches = len(matches)
	return stats
}
