// Package lifecycle holds the pure state machines of the league engine:
// date-driven tournament status, manual status actions, match status moves,
// card rules and score derivation. Nothing here touches storage.
package lifecycle

import (
	"errors"
	"fmt"
	"time"

	"github.com/Dosada05/league-system/models"
)

var (
	ErrUnknownAction       = errors.New("unknown tournament status action")
	ErrInvalidTransition   = errors.New("invalid tournament status transition")
	ErrTournamentFinalized = errors.New("tournament is already completed or cancelled")
)

// statusRank orders the forward path. Cancelled is off-path and has no rank.
var statusRank = map[models.TournamentStatus]int{
	models.StatusDraft:              0,
	models.StatusRegistrationOpen:   1,
	models.StatusRegistrationClosed: 2,
	models.StatusInProgress:         3,
	models.StatusCompleted:          4,
}

// DeriveStatus computes the status a tournament should have at now from its dates alone.
func DeriveStatus(t *models.Tournament, now time.Time) models.TournamentStatus {
	switch {
	case now.Before(t.RegistrationStart):
		return models.StatusDraft
	case now.Before(t.RegistrationDeadline):
		return models.StatusRegistrationOpen
	case now.Before(t.StartDate):
		return models.StatusRegistrationClosed
	case t.EndDate == nil || now.Before(*t.EndDate):
		return models.StatusInProgress
	default:
		return models.StatusCompleted
	}
}

// IsForward reports whether moving from -> to advances along
// Draft → RegistrationOpen → RegistrationClosed → InProgress → Completed.
func IsForward(from, to models.TournamentStatus) bool {
	fr, ok := statusRank[from]
	if !ok {
		return false
	}
	tr, ok := statusRank[to]
	if !ok {
		return false
	}
	return tr > fr
}

// Reconcile returns the status the sweep should write, and whether a write is needed.
// Terminal tournaments are left alone, and the sweep never moves a tournament
// backwards (an organizer may have started it early).
func Reconcile(t *models.Tournament, now time.Time) (models.TournamentStatus, bool) {
	if t.Status.IsTerminal() {
		return t.Status, false
	}
	derived := DeriveStatus(t, now)
	if derived == t.Status || !IsForward(t.Status, derived) {
		return t.Status, false
	}
	return derived, true
}

// AfterDateEdit returns the status a tournament should have once its dates
// changed from before to after. A status that matched the old dates follows
// the new dates in either direction. A status the organizer set by hand only
// moves forward, as in the sweep.
func AfterDateEdit(current models.TournamentStatus, before, after *models.Tournament, now time.Time) (models.TournamentStatus, bool) {
	if current.IsTerminal() {
		return current, false
	}
	derived := DeriveStatus(after, now)
	if derived == current {
		return current, false
	}
	if DeriveStatus(before, now) == current || IsForward(current, derived) {
		return derived, true
	}
	return current, false
}

// Action is an explicit organizer status command.
type Action string

const (
	ActionOpenRegistration  Action = "open_registration"
	ActionCloseRegistration Action = "close_registration"
	ActionStart             Action = "start"
	ActionComplete          Action = "complete"
	ActionCancel            Action = "cancel"
)

var actionSources = map[Action][]models.TournamentStatus{
	ActionOpenRegistration:  {models.StatusDraft},
	ActionCloseRegistration: {models.StatusRegistrationOpen},
	ActionStart:             {models.StatusRegistrationOpen, models.StatusRegistrationClosed},
	ActionComplete:          {models.StatusInProgress},
	ActionCancel: {
		models.StatusDraft, models.StatusRegistrationOpen,
		models.StatusRegistrationClosed, models.StatusInProgress,
	},
}

var actionTargets = map[Action]models.TournamentStatus{
	ActionOpenRegistration:  models.StatusRegistrationOpen,
	ActionCloseRegistration: models.StatusRegistrationClosed,
	ActionStart:             models.StatusInProgress,
	ActionComplete:          models.StatusCompleted,
	ActionCancel:            models.StatusCancelled,
}

// ManualTransition validates an organizer action against the current status
// and returns the target status.
func ManualTransition(current models.TournamentStatus, action Action) (models.TournamentStatus, error) {
	target, ok := actionTargets[action]
	if !ok {
		return "", fmt.Errorf("%w: %q", ErrUnknownAction, action)
	}
	if current.IsTerminal() {
		return "", fmt.Errorf("%w: status is %s", ErrTournamentFinalized, current)
	}
	for _, src := range actionSources[action] {
		if src == current {
			return target, nil
		}
	}
	return "", fmt.Errorf("%w: cannot %s from %s", ErrInvalidTransition, action, current)
}
