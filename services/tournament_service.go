package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/Dosada05/league-system/cache"
	"github.com/Dosada05/league-system/fixtures"
	"github.com/Dosada05/league-system/lifecycle"
	"github.com/Dosada05/league-system/models"
	"github.com/Dosada05/league-system/repositories"
)

type CreateTournamentInput struct {
	Name                 string     `json:"name"`
	Description          *string    `json:"description"`
	RegistrationStart    time.Time  `json:"registration_start"`
	RegistrationDeadline time.Time  `json:"registration_deadline"`
	StartDate            time.Time  `json:"start_date"`
	EndDate              *time.Time `json:"end_date"`
	MinTeams             int        `json:"min_teams"`
	MaxTeams             int        `json:"max_teams"`
	IsPublic             *bool      `json:"is_public"`
}

// UpdateTournamentInput is a partial update; nil fields are left unchanged.
type UpdateTournamentInput struct {
	Name                 *string    `json:"name"`
	Description          *string    `json:"description"`
	RegistrationStart    *time.Time `json:"registration_start"`
	RegistrationDeadline *time.Time `json:"registration_deadline"`
	StartDate            *time.Time `json:"start_date"`
	EndDate              *time.Time `json:"end_date"`
	MinTeams             *int       `json:"min_teams"`
	MaxTeams             *int       `json:"max_teams"`
	IsPublic             *bool      `json:"is_public"`
}

// ReconcileReport summarizes one status sweep.
type ReconcileReport struct {
	Checked int `json:"checked"`
	Updated int `json:"updated"`
	Skipped int `json:"skipped"`
	Failed  int `json:"failed"`
}

// TournamentOverview bundles everything a tournament page shows.
type TournamentOverview struct {
	Tournament *models.Tournament       `json:"tournament"`
	Teams      []*models.TournamentTeam `json:"teams"`
	Matches    []models.Match           `json:"matches"`
	Standings  []models.Standing        `json:"standings"`
}

type TournamentService interface {
	Create(ctx context.Context, actor models.Actor, input CreateTournamentInput) (*models.Tournament, error)
	Get(ctx context.Context, actor models.Actor, id int) (*models.Tournament, error)
	List(ctx context.Context, actor models.Actor, filter repositories.ListTournamentsFilter) ([]models.Tournament, error)
	Update(ctx context.Context, actor models.Actor, id int, input UpdateTournamentInput) (*models.Tournament, error)
	Delete(ctx context.Context, actor models.Actor, id int) error

	RegisterTeam(ctx context.Context, actor models.Actor, tournamentID, teamID int) (*models.TournamentTeam, error)
	ApproveTeam(ctx context.Context, actor models.Actor, tournamentID, teamID int) (*models.TournamentTeam, error)
	RejectTeam(ctx context.Context, actor models.Actor, tournamentID, teamID int) (*models.TournamentTeam, error)
	WithdrawTeam(ctx context.Context, actor models.Actor, tournamentID, teamID int) error
	ListTeams(ctx context.Context, actor models.Actor, tournamentID int, status *models.RegistrationStatus) ([]*models.TournamentTeam, error)

	GenerateFixtures(ctx context.Context, actor models.Actor, tournamentID int) (*fixtures.Schedule, error)
	ChangeStatus(ctx context.Context, actor models.Actor, id int, action lifecycle.Action) (*models.Tournament, error)
	ReconcileStatuses(ctx context.Context, now time.Time) (ReconcileReport, error)

	Standings(ctx context.Context, actor models.Actor, tournamentID int) ([]models.Standing, error)
	Overview(ctx context.Context, actor models.Actor, tournamentID int) (*TournamentOverview, error)
}

type tournamentService struct {
	Deps
	inv *cache.Invalidator
}

func NewTournamentService(deps Deps) TournamentService {
	deps = deps.withDefaults()
	return &tournamentService{Deps: deps, inv: cache.NewInvalidator(deps.Cache)}
}

func (s *tournamentService) Create(ctx context.Context, actor models.Actor, input CreateTournamentInput) (*models.Tournament, error) {
	if err := requireActor(actor); err != nil {
		return nil, err
	}
	if actor.Role != models.RoleOrganizer && !actor.IsAdmin() {
		return nil, ErrRoleNotAllowed
	}

	t := &models.Tournament{
		OrganizerID:          actor.UserID,
		Name:                 input.Name,
		Description:          input.Description,
		RegistrationStart:    input.RegistrationStart.UTC(),
		RegistrationDeadline: input.RegistrationDeadline.UTC(),
		StartDate:            input.StartDate.UTC(),
		EndDate:              utcPtr(input.EndDate),
		MinTeams:             input.MinTeams,
		MaxTeams:             input.MaxTeams,
		IsPublic:             input.IsPublic == nil || *input.IsPublic,
	}
	if t.MinTeams == 0 {
		t.MinTeams = minTeamsAllowed
	}
	if err := ValidateTournament(t); err != nil {
		return nil, err
	}

	now := s.Clock.Now()
	if !t.RegistrationDeadline.After(now) {
		return nil, fmt.Errorf("%w: registration deadline is in the past", ErrTournamentDates)
	}
	// только Draft или RegistrationOpen: дедлайн ещё впереди
	t.Status = lifecycle.DeriveStatus(t, now)

	if err := s.Tournaments.Create(ctx, t); err != nil {
		return nil, mapTournamentRepoError(err)
	}
	s.Logger.InfoContext(ctx, "tournament created",
		slog.Int("tournament_id", t.ID), slog.Int("organizer_id", t.OrganizerID), slog.String("status", string(t.Status)))
	return t, nil
}

func (s *tournamentService) Get(ctx context.Context, actor models.Actor, id int) (*models.Tournament, error) {
	t, err := loadTournament(ctx, s.Deps, id)
	if err != nil {
		return nil, err
	}
	if !canView(actor, t) {
		return nil, ErrTournamentNotFound
	}
	return t, nil
}

func (s *tournamentService) List(ctx context.Context, actor models.Actor, filter repositories.ListTournamentsFilter) ([]models.Tournament, error) {
	if !actor.IsAdmin() {
		ownList := filter.OrganizerID != nil && actor.UserID > 0 && *filter.OrganizerID == actor.UserID
		if !ownList {
			filter.PublicOnly = true
		}
	}
	if filter.Status != nil && !filter.Status.IsValid() {
		return nil, fmt.Errorf("%w: unknown status %q", ErrValidation, *filter.Status)
	}
	tournaments, err := s.Tournaments.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to list tournaments: %w", err)
	}
	return tournaments, nil
}

func (s *tournamentService) Update(ctx context.Context, actor models.Actor, id int, input UpdateTournamentInput) (*models.Tournament, error) {
	t, err := loadTournamentFresh(ctx, s.Deps, id)
	if err != nil {
		return nil, err
	}
	if err := requireOrganizer(actor, t); err != nil {
		return nil, err
	}
	if t.Status.IsTerminal() {
		return nil, ErrTournamentFinalized
	}

	started := t.Status == models.StatusInProgress
	if started && (input.RegistrationStart != nil || input.RegistrationDeadline != nil ||
		input.StartDate != nil || input.MinTeams != nil || input.MaxTeams != nil) {
		return nil, fmt.Errorf("%w: only name, description, end date and visibility can change", ErrTournamentStarted)
	}

	before := *t
	if input.Name != nil {
		t.Name = *input.Name
	}
	if input.Description != nil {
		t.Description = input.Description
	}
	if input.RegistrationStart != nil {
		t.RegistrationStart = input.RegistrationStart.UTC()
	}
	if input.RegistrationDeadline != nil {
		t.RegistrationDeadline = input.RegistrationDeadline.UTC()
	}
	if input.StartDate != nil {
		t.StartDate = input.StartDate.UTC()
	}
	if input.EndDate != nil {
		t.EndDate = utcPtr(input.EndDate)
	}
	if input.MinTeams != nil {
		t.MinTeams = *input.MinTeams
	}
	if input.MaxTeams != nil {
		t.MaxTeams = *input.MaxTeams
	}
	if input.IsPublic != nil {
		t.IsPublic = *input.IsPublic
	}
	if err := ValidateTournament(t); err != nil {
		return nil, err
	}

	if input.MaxTeams != nil {
		approved, err := s.Registrations.CountByStatus(ctx, id, models.RegistrationApproved)
		if err != nil {
			return nil, err
		}
		if approved > t.MaxTeams {
			return nil, fmt.Errorf("%w: %d teams are already approved", ErrTournamentCapacity, approved)
		}
	}

	if err := s.Tournaments.Update(ctx, t); err != nil {
		return nil, mapTournamentRepoError(err)
	}
	if input.RegistrationStart != nil || input.RegistrationDeadline != nil || input.StartDate != nil || input.EndDate != nil {
		s.followDates(ctx, t, &before)
	}
	s.inv.Tournament(ctx, id)
	return t, nil
}

// followDates realigns the status with edited dates. The dates are already
// saved, so a failed status write is only logged; the sweep retries forward moves.
func (s *tournamentService) followDates(ctx context.Context, t, before *models.Tournament) {
	now := s.Clock.Now()
	target, ok := lifecycle.AfterDateEdit(t.Status, before, t, now)
	if !ok {
		return
	}
	from := t.Status
	if err := s.Tournaments.UpdateStatus(ctx, nil, t.ID, from, target, now); err != nil {
		s.Logger.WarnContext(ctx, "failed to align tournament status with new dates",
			slog.Int("tournament_id", t.ID),
			slog.String("from", string(from)),
			slog.String("to", string(target)),
			slog.Any("error", err))
		return
	}
	t.Status = target
	s.Metrics.StatusTransition(string(from), string(target), "dates")
	s.Logger.InfoContext(ctx, "tournament status follows new dates",
		slog.Int("tournament_id", t.ID), slog.String("from", string(from)), slog.String("to", string(target)))
	s.Notifier.TournamentStatusChanged(ctx, statusChange(t, from, true))
}

func (s *tournamentService) Delete(ctx context.Context, actor models.Actor, id int) error {
	t, err := loadTournamentFresh(ctx, s.Deps, id)
	if err != nil {
		return err
	}
	if err := requireOrganizer(actor, t); err != nil {
		return err
	}

	registered, err := s.Registrations.CountByTournament(ctx, id)
	if err != nil {
		return err
	}
	if registered > 0 {
		return ErrTournamentHasRegistrations
	}

	if err := s.Tournaments.Delete(ctx, id); err != nil {
		if errors.Is(err, repositories.ErrTournamentInUse) {
			return ErrTournamentHasRegistrations
		}
		return mapTournamentRepoError(err)
	}
	s.inv.Tournament(ctx, id)
	s.Logger.InfoContext(ctx, "tournament deleted", slog.Int("tournament_id", id), slog.Int("actor_id", actor.UserID))
	return nil
}

func (s *tournamentService) ChangeStatus(ctx context.Context, actor models.Actor, id int, action lifecycle.Action) (*models.Tournament, error) {
	t, err := loadTournamentFresh(ctx, s.Deps, id)
	if err != nil {
		return nil, err
	}
	if err := requireOrganizer(actor, t); err != nil {
		return nil, err
	}

	target, err := lifecycle.ManualTransition(t.Status, action)
	if err != nil {
		if errors.Is(err, lifecycle.ErrTournamentFinalized) {
			return nil, wrap(ErrTournamentFinalized, err)
		}
		return nil, wrap(ErrInvalidStatusAction, err)
	}

	if action == lifecycle.ActionStart {
		approved, err := s.Registrations.CountByStatus(ctx, id, models.RegistrationApproved)
		if err != nil {
			return nil, err
		}
		if approved < t.MinTeams {
			return nil, fmt.Errorf("%w: %d approved, %d required", ErrNotEnoughTeams, approved, t.MinTeams)
		}
	}

	now := s.Clock.Now()
	if err := s.Tournaments.UpdateStatus(ctx, nil, id, t.Status, target, now); err != nil {
		if errors.Is(err, repositories.ErrTournamentStatusConflict) {
			return nil, ErrStatusChangedConcurrently
		}
		return nil, fmt.Errorf("failed to update tournament status: %w", err)
	}

	from := t.Status
	t.Status = target
	t.UpdatedAt = now
	s.Metrics.StatusTransition(string(from), string(target), "manual")
	s.inv.Tournament(ctx, id)
	s.Logger.InfoContext(ctx, "tournament status changed",
		slog.Int("tournament_id", id),
		slog.String("from", string(from)),
		slog.String("to", string(target)),
		slog.Int("actor_id", actor.UserID))

	// организатор сам сменил статус, письмо нужно только если это сделал администратор
	if actor.UserID != t.OrganizerID {
		s.Notifier.TournamentStatusChanged(ctx, statusChange(t, from, false))
	}
	return t, nil
}

func mapTournamentRepoError(err error) error {
	switch {
	case errors.Is(err, repositories.ErrTournamentNotFound):
		return ErrTournamentNotFound
	case errors.Is(err, repositories.ErrTournamentNameConflict):
		return ErrTournamentNameConflict
	case errors.Is(err, repositories.ErrTournamentInvalidOrg):
		return fmt.Errorf("%w: organizer does not exist", ErrValidation)
	default:
		return err
	}
}

func utcPtr(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	u := t.UTC()
	return &u
}
