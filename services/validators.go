package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/Dosada05/league-system/lifecycle"
	"github.com/Dosada05/league-system/models"
	"github.com/Dosada05/league-system/repositories"
)

const (
	maxNameLength   = 100
	maxShirtNumber  = 99
	minTeamsAllowed = 2
)

// ValidateTournament checks a tournament's own fields. It does not look at storage.
func ValidateTournament(t *models.Tournament) error {
	t.Name = strings.TrimSpace(t.Name)
	if t.Name == "" {
		return ErrTournamentNameRequired
	}
	if len(t.Name) > maxNameLength {
		return fmt.Errorf("%w: name longer than %d characters", ErrValidation, maxNameLength)
	}
	if t.RegistrationStart.IsZero() || t.RegistrationDeadline.IsZero() || t.StartDate.IsZero() {
		return ErrTournamentDates
	}
	if t.RegistrationDeadline.Before(t.RegistrationStart) || t.StartDate.Before(t.RegistrationDeadline) {
		return ErrTournamentDates
	}
	if t.EndDate != nil && t.EndDate.Before(t.StartDate) {
		return ErrTournamentDates
	}
	if t.MinTeams < minTeamsAllowed || t.MaxTeams < t.MinTeams {
		return ErrTournamentCapacity
	}
	return nil
}

func ValidateTeam(team *models.Team) error {
	team.Name = strings.TrimSpace(team.Name)
	if team.Name == "" {
		return ErrTeamNameRequired
	}
	if len(team.Name) > maxNameLength {
		return fmt.Errorf("%w: name longer than %d characters", ErrValidation, maxNameLength)
	}
	return nil
}

func ValidatePlayer(p *models.Player) error {
	p.Name = strings.TrimSpace(p.Name)
	if p.Name == "" {
		return fmt.Errorf("%w: name is required", ErrPlayerInvalid)
	}
	if !p.Position.IsValid() {
		return fmt.Errorf("%w: unknown position %q", ErrPlayerInvalid, p.Position)
	}
	if p.Status == "" {
		p.Status = models.PlayerActive
	}
	if !p.Status.IsValid() {
		return fmt.Errorf("%w: unknown status %q", ErrPlayerInvalid, p.Status)
	}
	if p.ShirtNumber != nil && (*p.ShirtNumber < 1 || *p.ShirtNumber > maxShirtNumber) {
		return fmt.Errorf("%w: shirt number must be between 1 and %d", ErrPlayerInvalid, maxShirtNumber)
	}
	return nil
}

// MatchValidator checks a manually created or rescheduled match.
type MatchValidator struct {
	registrations repositories.TournamentTeamRepository
	matches       repositories.MatchRepository
}

func NewMatchValidator(registrations repositories.TournamentTeamRepository, matches repositories.MatchRepository) *MatchValidator {
	return &MatchValidator{registrations: registrations, matches: matches}
}

// Validate checks team eligibility and date collisions. excludeID skips the
// match itself when rescheduling.
func (v *MatchValidator) Validate(ctx context.Context, m *models.Match, excludeID *int) error {
	if m.HomeTeamID == m.AwayTeamID {
		return ErrSameTeams
	}
	if m.MatchDate.IsZero() {
		return fmt.Errorf("%w: match date is required", ErrValidation)
	}
	for _, teamID := range []int{m.HomeTeamID, m.AwayTeamID} {
		reg, err := v.registrations.Get(ctx, m.TournamentID, teamID)
		if err != nil {
			if errors.Is(err, repositories.ErrRegistrationNotFound) {
				return fmt.Errorf("%w (team %d)", ErrTeamNotApproved, teamID)
			}
			return fmt.Errorf("failed to check registration of team %d: %w", teamID, err)
		}
		if reg.Status != models.RegistrationApproved {
			return fmt.Errorf("%w (team %d)", ErrTeamNotApproved, teamID)
		}
	}
	busy, err := v.matches.TeamsHaveMatchOnDate(ctx, m.TournamentID, m.HomeTeamID, m.AwayTeamID, m.MatchDate, excludeID)
	if err != nil {
		return err
	}
	if busy {
		return ErrMatchDateConflict
	}
	return nil
}

// MatchEventValidator applies the event rules in order: match state, minute,
// membership, player eligibility, then card limits.
type MatchEventValidator struct {
	players repositories.PlayerRepository
	events  repositories.MatchEventRepository
}

func NewMatchEventValidator(players repositories.PlayerRepository, events repositories.MatchEventRepository) *MatchEventValidator {
	return &MatchEventValidator{players: players, events: events}
}

// Validate checks ev against match. skipID is the id of the event being
// edited so it does not count against its own card limits (0 for new events).
func (v *MatchEventValidator) Validate(ctx context.Context, match *models.Match, ev *models.MatchEvent, skipID int) error {
	if match.Status == models.MatchCompleted {
		return ErrMatchCompleted
	}
	if !ev.EventType.IsValid() {
		return fmt.Errorf("%w: %q", ErrEventType, ev.EventType)
	}
	if ev.Minute < models.MinEventMinute || ev.Minute > models.MaxEventMinute {
		return ErrEventMinute
	}
	if !lifecycle.AcceptsEvents(match.Status) {
		return fmt.Errorf("%w (status %s)", ErrMatchNotLive, match.Status)
	}
	if !match.HasTeam(ev.TeamID) {
		return ErrTeamNotInMatch
	}

	player, err := v.players.GetByID(ctx, ev.PlayerID)
	if err != nil {
		if errors.Is(err, repositories.ErrPlayerNotFound) {
			return ErrPlayerNotFound
		}
		return err
	}
	if player.TeamID != ev.TeamID {
		return ErrPlayerNotInTeam
	}
	if player.Status == models.PlayerSuspended {
		return ErrPlayerSuspended
	}

	if ev.EventType.IsCard() {
		history, err := v.events.ListByPlayerInMatch(ctx, match.ID, ev.PlayerID)
		if err != nil {
			return fmt.Errorf("failed to load card history: %w", err)
		}
		if err := lifecycle.CheckCardRules(ev.EventType, lifecycle.CountCards(history, ev.PlayerID, skipID)); err != nil {
			return wrap(ErrCardRule, err)
		}
	}
	return nil
}
