// Package notify delivers tournament notifications to organizers and team owners.
package notify

import (
	"context"

	"github.com/Dosada05/league-system/models"
)

// StatusChange is sent to the organizer when a tournament changes status.
type StatusChange struct {
	TournamentID   int
	TournamentName string
	OrganizerID    int
	From           models.TournamentStatus
	To             models.TournamentStatus
	// Automatic is true when the change came from the date sweep rather than an organizer action.
	Automatic bool
}

// Registration describes a team registration event. RecipientID is the
// organizer for requests and the team owner for decisions.
type Registration struct {
	TournamentID   int
	TournamentName string
	TeamID         int
	TeamName       string
	RecipientID    int
}

// Notifier is the error-returning delivery port.
type Notifier interface {
	TournamentStatusChanged(ctx context.Context, msg StatusChange) error
	TeamRegistrationRequested(ctx context.Context, msg Registration) error
	TeamApproved(ctx context.Context, msg Registration) error
	TeamRejected(ctx context.Context, msg Registration) error
}

// Dispatcher is what the services call: fire and forget, never fails the caller.
type Dispatcher interface {
	TournamentStatusChanged(ctx context.Context, msg StatusChange)
	TeamRegistrationRequested(ctx context.Context, msg Registration)
	TeamApproved(ctx context.Context, msg Registration)
	TeamRejected(ctx context.Context, msg Registration)
}

// Discard drops every notification.
type Discard struct{}

func (Discard) TournamentStatusChanged(context.Context, StatusChange)   {}
func (Discard) TeamRegistrationRequested(context.Context, Registration) {}
func (Discard) TeamApproved(context.Context, Registration)              {}
func (Discard) TeamRejected(context.Context, Registration)              {}
