package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/Dosada05/league-system/cache"
	"github.com/Dosada05/league-system/lifecycle"
	"github.com/Dosada05/league-system/models"
	"github.com/Dosada05/league-system/repositories"
)

type CreateMatchInput struct {
	TournamentID int       `json:"tournament_id"`
	HomeTeamID   int       `json:"home_team_id"`
	AwayTeamID   int       `json:"away_team_id"`
	Round        *int      `json:"round"`
	MatchDate    time.Time `json:"match_date"`
	Venue        *string   `json:"venue"`
}

type MatchService interface {
	Create(ctx context.Context, actor models.Actor, input CreateMatchInput) (*models.Match, error)
	Get(ctx context.Context, actor models.Actor, id int) (*models.Match, error)
	ListByTournament(ctx context.Context, actor models.Actor, tournamentID int) ([]models.Match, error)
	Reschedule(ctx context.Context, actor models.Actor, id int, date time.Time, venue *string) (*models.Match, error)
	ChangeStatus(ctx context.Context, actor models.Actor, id int, status models.MatchStatus) (*models.Match, error)
	Delete(ctx context.Context, actor models.Actor, id int) error
}

type matchService struct {
	Deps
	validator *MatchValidator
	inv       *cache.Invalidator
}

func NewMatchService(deps Deps) MatchService {
	deps = deps.withDefaults()
	return &matchService{
		Deps:      deps,
		validator: NewMatchValidator(deps.Registrations, deps.Matches),
		inv:       cache.NewInvalidator(deps.Cache),
	}
}

func (s *matchService) Create(ctx context.Context, actor models.Actor, input CreateMatchInput) (*models.Match, error) {
	t, err := loadTournamentFresh(ctx, s.Deps, input.TournamentID)
	if err != nil {
		return nil, err
	}
	if err := requireOrganizer(actor, t); err != nil {
		return nil, err
	}
	if t.Status.IsTerminal() {
		return nil, ErrTournamentFinalized
	}

	m := &models.Match{
		TournamentID: input.TournamentID,
		HomeTeamID:   input.HomeTeamID,
		AwayTeamID:   input.AwayTeamID,
		Round:        input.Round,
		MatchDate:    input.MatchDate.UTC(),
		Status:       models.MatchScheduled,
		Venue:        input.Venue,
	}
	if err := s.validator.Validate(ctx, m, nil); err != nil {
		return nil, err
	}
	if err := s.Matches.Create(ctx, nil, m); err != nil {
		return nil, mapMatchRepoError(err)
	}

	s.inv.Match(ctx, m)
	s.Logger.InfoContext(ctx, "match created",
		slog.Int("match_id", m.ID), slog.Int("tournament_id", m.TournamentID), slog.Int("actor_id", actor.UserID))
	return m, nil
}

func (s *matchService) Get(ctx context.Context, actor models.Actor, id int) (*models.Match, error) {
	m, err := cache.GetOrCreate(ctx, s.Cache, cache.MatchKey(id), cache.LiveTTL, func(ctx context.Context) (*models.Match, error) {
		return loadMatch(ctx, s.Deps, id)
	})
	if err != nil {
		return nil, err
	}
	t, err := loadTournament(ctx, s.Deps, m.TournamentID)
	if err != nil {
		return nil, err
	}
	if !canView(actor, t) {
		return nil, ErrMatchNotFound
	}
	return m, nil
}

func (s *matchService) ListByTournament(ctx context.Context, actor models.Actor, tournamentID int) ([]models.Match, error) {
	t, err := loadTournament(ctx, s.Deps, tournamentID)
	if err != nil {
		return nil, err
	}
	if !canView(actor, t) {
		return nil, ErrTournamentNotFound
	}
	return cache.GetOrCreate(ctx, s.Cache, cache.TournamentMatchesKey(tournamentID), cache.ListTTL,
		func(ctx context.Context) ([]models.Match, error) {
			return s.Matches.ListByTournament(ctx, tournamentID, nil)
		})
}

func (s *matchService) Reschedule(ctx context.Context, actor models.Actor, id int, date time.Time, venue *string) (*models.Match, error) {
	m, _, err := s.editable(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	if m.Status != models.MatchScheduled && m.Status != models.MatchPostponed {
		return nil, fmt.Errorf("%w: only scheduled or postponed matches can be rescheduled", ErrMatchStatusChange)
	}

	m.MatchDate = date.UTC()
	if venue != nil {
		m.Venue = venue
	}
	if err := s.validator.Validate(ctx, m, &m.ID); err != nil {
		return nil, err
	}
	// перенесённый матч с новой датой снова становится запланированным
	m.Status = models.MatchScheduled

	if err := s.Matches.Update(ctx, m); err != nil {
		return nil, mapMatchRepoError(err)
	}
	s.inv.Match(ctx, m)
	return m, nil
}

func (s *matchService) ChangeStatus(ctx context.Context, actor models.Actor, id int, status models.MatchStatus) (*models.Match, error) {
	if !status.IsValid() {
		return nil, fmt.Errorf("%w: unknown match status %q", ErrValidation, status)
	}
	m, t, err := s.editable(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	if err := lifecycle.CanMatchTransition(m.Status, status); err != nil {
		return nil, wrap(ErrMatchStatusChange, err)
	}
	if status == models.MatchInProgress && t.Status != models.StatusInProgress {
		return nil, ErrTournamentNotRunning
	}

	if status == models.MatchInProgress || status == models.MatchCompleted {
		// счёт всегда выводится из голов; при старте это 0:0
		events, err := s.Events.ListByMatch(ctx, nil, m.ID)
		if err != nil {
			return nil, fmt.Errorf("failed to load match events: %w", err)
		}
		score := lifecycle.ComputeScore(m, events)
		m.HomeScore, m.AwayScore = intPtr(score.Home), intPtr(score.Away)
	}

	from := m.Status
	m.Status = status
	if err := s.Matches.Update(ctx, m); err != nil {
		return nil, mapMatchRepoError(err)
	}

	s.inv.Match(ctx, m)
	s.Logger.InfoContext(ctx, "match status changed",
		slog.Int("match_id", m.ID), slog.String("from", string(from)), slog.String("to", string(status)))
	return m, nil
}

func (s *matchService) Delete(ctx context.Context, actor models.Actor, id int) error {
	m, _, err := s.editable(ctx, actor, id)
	if err != nil {
		return err
	}
	// события удаляются каскадом, поэтому игроков нужно узнать заранее
	events, err := s.Events.ListByMatch(ctx, nil, id)
	if err != nil {
		return fmt.Errorf("failed to list match events: %w", err)
	}
	if err := s.Matches.Delete(ctx, id); err != nil {
		return mapMatchRepoError(err)
	}
	touched := make([]*models.MatchEvent, len(events))
	for i := range events {
		touched[i] = &events[i]
	}
	s.inv.MatchEvent(ctx, m, touched...)
	return nil
}

// editable loads a match the actor may modify. Completed matches are frozen.
func (s *matchService) editable(ctx context.Context, actor models.Actor, id int) (*models.Match, *models.Tournament, error) {
	m, err := loadMatch(ctx, s.Deps, id)
	if err != nil {
		return nil, nil, err
	}
	t, err := loadTournamentFresh(ctx, s.Deps, m.TournamentID)
	if err != nil {
		return nil, nil, err
	}
	if err := requireOrganizer(actor, t); err != nil {
		return nil, nil, err
	}
	if m.Status == models.MatchCompleted {
		return nil, nil, ErrMatchCompleted
	}
	return m, t, nil
}

func mapMatchRepoError(err error) error {
	switch {
	case errors.Is(err, repositories.ErrMatchNotFound):
		return ErrMatchNotFound
	case errors.Is(err, repositories.ErrMatchSameTeams):
		return ErrSameTeams
	case errors.Is(err, repositories.ErrMatchInvalidReference), errors.Is(err, repositories.ErrMatchTournamentInvalid):
		return fmt.Errorf("%w: %w", ErrValidation, err)
	default:
		return err
	}
}
