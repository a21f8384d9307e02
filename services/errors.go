package services

import (
	"errors"
	"fmt"
)

// Виды ошибок. Любая ошибка сервиса оборачивает ровно один из них,
// handlers выбирают HTTP статус по Kind.
var (
	ErrNotFound     = errors.New("requested resource not found")
	ErrForbidden    = errors.New("operation not allowed for the current user")
	ErrUnauthorized = errors.New("authentication required")
	ErrValidation   = errors.New("validation failed")
	ErrConflict     = errors.New("conflict with existing data")
)

var kinds = []error{ErrNotFound, ErrForbidden, ErrUnauthorized, ErrValidation, ErrConflict}

// Kind returns the error kind err wraps, or nil for unexpected errors.
func Kind(err error) error {
	for _, k := range kinds {
		if errors.Is(err, k) {
			return k
		}
	}
	return nil
}

type kindError struct {
	kind error
	msg  string
}

func (e *kindError) Error() string { return e.msg }
func (e *kindError) Unwrap() error { return e.kind }

func newError(kind error, msg string) error {
	return &kindError{kind: kind, msg: msg}
}

// Not found
var (
	ErrTournamentNotFound   = newError(ErrNotFound, "tournament not found")
	ErrTeamNotFound         = newError(ErrNotFound, "team not found")
	ErrPlayerNotFound       = newError(ErrNotFound, "player not found")
	ErrMatchNotFound        = newError(ErrNotFound, "match not found")
	ErrMatchEventNotFound   = newError(ErrNotFound, "match event not found")
	ErrRegistrationNotFound = newError(ErrNotFound, "team registration not found")
)

// Authorization
var (
	ErrUnauthenticated = newError(ErrUnauthorized, "no authenticated user")
	ErrNotOrganizer    = newError(ErrForbidden, "only the tournament organizer can perform this action")
	ErrNotTeamOwner    = newError(ErrForbidden, "only the team owner can perform this action")
	ErrRoleNotAllowed  = newError(ErrForbidden, "your role does not allow this action")
)

// Validation and business rules
var (
	ErrTournamentNameRequired = newError(ErrValidation, "tournament name is required")
	ErrTournamentDates        = newError(ErrValidation, "tournament dates must satisfy registration start <= deadline <= start <= end")
	ErrTournamentCapacity     = newError(ErrValidation, "tournament needs min teams >= 2 and max teams >= min teams")
	ErrTournamentFinalized    = newError(ErrValidation, "tournament is already completed or cancelled")
	ErrTournamentStarted      = newError(ErrValidation, "tournament has already started")
	ErrInvalidStatusAction    = newError(ErrValidation, "status action is not allowed")
	ErrRegistrationClosed     = newError(ErrValidation, "tournament registration is not open")
	ErrTournamentFull         = newError(ErrValidation, "tournament has no free places")
	ErrRegistrationNotPending = newError(ErrValidation, "registration has already been reviewed")
	ErrWithdrawNotAllowed     = newError(ErrValidation, "registration cannot be withdrawn")
	ErrNotEnoughTeams         = newError(ErrValidation, "not enough approved teams to generate fixtures")
	ErrFixturesExist          = newError(ErrValidation, "fixtures have already been generated for this tournament")
	ErrTeamNameRequired       = newError(ErrValidation, "team name is required")
	ErrPlayerInvalid          = newError(ErrValidation, "invalid player data")
	ErrSameTeams              = newError(ErrValidation, "home and away team must differ")
	ErrTeamNotApproved        = newError(ErrValidation, "team is not approved for this tournament")
	ErrMatchCompleted         = newError(ErrValidation, "match is already completed")
	ErrMatchNotLive           = newError(ErrValidation, "events can only be recorded for a match in progress")
	ErrMatchStatusChange      = newError(ErrValidation, "match status change is not allowed")
	ErrTournamentNotRunning   = newError(ErrValidation, "matches can only start while the tournament is in progress")
	ErrEventMinute            = newError(ErrValidation, "event minute must be between 0 and 120")
	ErrEventType              = newError(ErrValidation, "unknown event type")
	ErrTeamNotInMatch         = newError(ErrValidation, "team does not play in this match")
	ErrPlayerNotInTeam        = newError(ErrValidation, "player does not belong to the team")
	ErrPlayerSuspended        = newError(ErrValidation, "player is suspended")
	ErrCardRule               = newError(ErrValidation, "card not allowed")
)

// Conflicts
var (
	ErrTournamentNameConflict     = newError(ErrConflict, "you already have a tournament with this name")
	ErrAlreadyRegistered          = newError(ErrConflict, "team is already registered for this tournament")
	ErrTeamNameTaken              = newError(ErrConflict, "a team with this name is already registered for this tournament")
	ErrMatchDateConflict          = newError(ErrConflict, "one of the teams already plays on this date")
	ErrShirtNumberTaken           = newError(ErrConflict, "shirt number is already taken in this team")
	ErrTournamentHasRegistrations = newError(ErrConflict, "tournament with registered teams cannot be deleted")
	ErrTeamInUse                  = newError(ErrConflict, "team is registered in an active tournament")
	ErrStatusChangedConcurrently  = newError(ErrConflict, "tournament status was changed by someone else, reload and retry")
)

// wrap attaches detail to a specific service error: wrap(ErrCardRule, err) keeps both in the chain.
func wrap(base error, detail error) error {
	return fmt.Errorf("%w: %w", base, detail)
}
