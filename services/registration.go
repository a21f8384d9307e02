package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/Dosada05/league-system/cache"
	"github.com/Dosada05/league-system/models"
	"github.com/Dosada05/league-system/notify"
	"github.com/Dosada05/league-system/repositories"
)

func (s *tournamentService) RegisterTeam(ctx context.Context, actor models.Actor, tournamentID, teamID int) (*models.TournamentTeam, error) {
	team, err := loadTeam(ctx, s.Deps, teamID)
	if err != nil {
		return nil, err
	}
	if err := requireTeamOwner(actor, team); err != nil {
		return nil, err
	}
	t, err := loadTournamentFresh(ctx, s.Deps, tournamentID)
	if err != nil {
		return nil, err
	}
	if !canView(actor, t) {
		return nil, ErrTournamentNotFound
	}
	if t.Status != models.StatusRegistrationOpen {
		return nil, ErrRegistrationClosed
	}

	if err := s.checkCapacity(ctx, t); err != nil {
		return nil, err
	}

	active, err := s.Registrations.ListByTournament(ctx, tournamentID, nil, true)
	if err != nil {
		return nil, err
	}
	var previous *models.TournamentTeam
	for _, reg := range active {
		if reg.TeamID == teamID {
			previous = reg
			break
		}
	}
	if nameTaken(active, teamID, team.Name) {
		return nil, ErrTeamNameTaken
	}

	var reg *models.TournamentTeam
	switch {
	case previous == nil:
		reg = &models.TournamentTeam{TournamentID: tournamentID, TeamID: teamID, Status: models.RegistrationPending}
		if err := s.Registrations.Create(ctx, reg); err != nil {
			if errors.Is(err, repositories.ErrRegistrationConflict) {
				return nil, ErrAlreadyRegistered
			}
			return nil, err
		}
	case previous.Status == models.RegistrationWithdrawn:
		// команда, отозвавшая заявку, может подать её снова
		if err := s.Registrations.UpdateStatus(ctx, previous.ID, models.RegistrationPending, nil); err != nil {
			return nil, err
		}
		reg = previous
		reg.Status = models.RegistrationPending
		reg.AcceptedAt = nil
		reg.Team = nil
	default:
		return nil, ErrAlreadyRegistered
	}

	s.inv.TournamentTeams(ctx, tournamentID)
	s.Logger.InfoContext(ctx, "team registration requested",
		slog.Int("tournament_id", tournamentID), slog.Int("team_id", teamID))
	s.Notifier.TeamRegistrationRequested(ctx, notify.Registration{
		TournamentID:   t.ID,
		TournamentName: t.Name,
		TeamID:         team.ID,
		TeamName:       team.Name,
		RecipientID:    t.OrganizerID,
	})
	return reg, nil
}

func (s *tournamentService) ApproveTeam(ctx context.Context, actor models.Actor, tournamentID, teamID int) (*models.TournamentTeam, error) {
	t, reg, err := s.reviewable(ctx, actor, tournamentID, teamID)
	if err != nil {
		return nil, err
	}
	if err := s.checkCapacity(ctx, t); err != nil {
		return nil, err
	}

	now := s.Clock.Now()
	if err := s.Registrations.UpdateStatus(ctx, reg.ID, models.RegistrationApproved, &now); err != nil {
		return nil, mapRegistrationRepoError(err)
	}
	reg.Status = models.RegistrationApproved
	reg.AcceptedAt = &now

	s.afterReview(ctx, t, reg)
	return reg, nil
}

func (s *tournamentService) RejectTeam(ctx context.Context, actor models.Actor, tournamentID, teamID int) (*models.TournamentTeam, error) {
	t, reg, err := s.reviewable(ctx, actor, tournamentID, teamID)
	if err != nil {
		return nil, err
	}
	if err := s.Registrations.UpdateStatus(ctx, reg.ID, models.RegistrationRejected, nil); err != nil {
		return nil, mapRegistrationRepoError(err)
	}
	reg.Status = models.RegistrationRejected

	s.afterReview(ctx, t, reg)
	return reg, nil
}

func (s *tournamentService) WithdrawTeam(ctx context.Context, actor models.Actor, tournamentID, teamID int) error {
	team, err := loadTeam(ctx, s.Deps, teamID)
	if err != nil {
		return err
	}
	if err := requireTeamOwner(actor, team); err != nil {
		return err
	}
	t, err := loadTournamentFresh(ctx, s.Deps, tournamentID)
	if err != nil {
		return err
	}
	switch t.Status {
	case models.StatusInProgress, models.StatusCompleted, models.StatusCancelled:
		return fmt.Errorf("%w: tournament is %s", ErrWithdrawNotAllowed, t.Status)
	}

	reg, err := s.Registrations.Get(ctx, tournamentID, teamID)
	if err != nil {
		return mapRegistrationRepoError(err)
	}
	if reg.Status != models.RegistrationPending && reg.Status != models.RegistrationApproved {
		return fmt.Errorf("%w: registration is %s", ErrWithdrawNotAllowed, reg.Status)
	}
	if err := s.Registrations.UpdateStatus(ctx, reg.ID, models.RegistrationWithdrawn, nil); err != nil {
		return mapRegistrationRepoError(err)
	}

	s.inv.TournamentTeams(ctx, tournamentID)
	s.Logger.InfoContext(ctx, "team withdrew from tournament",
		slog.Int("tournament_id", tournamentID), slog.Int("team_id", teamID))
	return nil
}

func (s *tournamentService) ListTeams(ctx context.Context, actor models.Actor, tournamentID int, status *models.RegistrationStatus) ([]*models.TournamentTeam, error) {
	if status != nil && !status.IsValid() {
		return nil, fmt.Errorf("%w: unknown registration status %q", ErrValidation, *status)
	}
	if _, err := s.Get(ctx, actor, tournamentID); err != nil {
		return nil, err
	}
	return s.listTeams(ctx, tournamentID, status)
}

func (s *tournamentService) listTeams(ctx context.Context, tournamentID int, status *models.RegistrationStatus) ([]*models.TournamentTeam, error) {
	key := cache.TournamentTeamsKey(tournamentID, status)
	return cache.GetOrCreate(ctx, s.Cache, key, cache.ListTTL, func(ctx context.Context) ([]*models.TournamentTeam, error) {
		return s.Registrations.ListByTournament(ctx, tournamentID, status, true)
	})
}

// reviewable loads a pending registration the actor may approve or reject.
func (s *tournamentService) reviewable(ctx context.Context, actor models.Actor, tournamentID, teamID int) (*models.Tournament, *models.TournamentTeam, error) {
	t, err := loadTournamentFresh(ctx, s.Deps, tournamentID)
	if err != nil {
		return nil, nil, err
	}
	if err := requireOrganizer(actor, t); err != nil {
		return nil, nil, err
	}
	if t.Status.IsTerminal() {
		return nil, nil, ErrTournamentFinalized
	}
	if t.Status == models.StatusInProgress {
		return nil, nil, ErrTournamentStarted
	}

	reg, err := s.Registrations.Get(ctx, tournamentID, teamID)
	if err != nil {
		return nil, nil, mapRegistrationRepoError(err)
	}
	if reg.Status != models.RegistrationPending {
		return nil, nil, fmt.Errorf("%w: registration is %s", ErrRegistrationNotPending, reg.Status)
	}
	return t, reg, nil
}

func (s *tournamentService) afterReview(ctx context.Context, t *models.Tournament, reg *models.TournamentTeam) {
	s.inv.TournamentTeams(ctx, t.ID)
	s.Logger.InfoContext(ctx, "team registration reviewed",
		slog.Int("tournament_id", t.ID), slog.Int("team_id", reg.TeamID), slog.String("status", string(reg.Status)))

	team, err := loadTeam(ctx, s.Deps, reg.TeamID)
	if err != nil {
		s.Logger.WarnContext(ctx, "skipping registration notification", slog.Int("team_id", reg.TeamID), slog.Any("error", err))
		return
	}
	msg := notify.Registration{
		TournamentID:   t.ID,
		TournamentName: t.Name,
		TeamID:         team.ID,
		TeamName:       team.Name,
		RecipientID:    team.OwnerUserID,
	}
	if reg.Status == models.RegistrationApproved {
		s.Notifier.TeamApproved(ctx, msg)
	} else {
		s.Notifier.TeamRejected(ctx, msg)
	}
}

func (s *tournamentService) checkCapacity(ctx context.Context, t *models.Tournament) error {
	approved, err := s.Registrations.CountByStatus(ctx, t.ID, models.RegistrationApproved)
	if err != nil {
		return err
	}
	if approved >= t.MaxTeams {
		return fmt.Errorf("%w: %d of %d places taken", ErrTournamentFull, approved, t.MaxTeams)
	}
	return nil
}

func mapRegistrationRepoError(err error) error {
	if errors.Is(err, repositories.ErrRegistrationNotFound) {
		return ErrRegistrationNotFound
	}
	return err
}

// approvedTeamIDs returns approved teams in registration order, the seeding order for fixtures.
func approvedTeamIDs(regs []*models.TournamentTeam) []int {
	ids := make([]int, 0, len(regs))
	for _, reg := range regs {
		if reg.Status == models.RegistrationApproved {
			ids = append(ids, reg.TeamID)
		}
	}
	return ids
}

// nameTaken reports whether another pending or approved team in regs uses name.
// regs must be loaded with their teams.
func nameTaken(regs []*models.TournamentTeam, teamID int, name string) bool {
	name = strings.TrimSpace(name)
	for _, reg := range regs {
		if reg.TeamID == teamID || reg.Team == nil {
			continue
		}
		if reg.Status != models.RegistrationPending && reg.Status != models.RegistrationApproved {
			continue
		}
		if strings.EqualFold(strings.TrimSpace(reg.Team.Name), name) {
			return true
		}
	}
	return false
}
