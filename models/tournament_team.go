package models

import "time"

type RegistrationStatus string

const (
	RegistrationPending   RegistrationStatus = "pending"
	RegistrationApproved  RegistrationStatus = "approved"
	RegistrationRejected  RegistrationStatus = "rejected"
	RegistrationWithdrawn RegistrationStatus = "withdrawn"
)

func (s RegistrationStatus) IsValid() bool {
	switch s {
	case RegistrationPending, RegistrationApproved, RegistrationRejected, RegistrationWithdrawn:
		return true
	}
	return false
}

// TournamentTeam is a team's registration in a tournament. One row per (tournament, team).
type TournamentTeam struct {
	ID           int                `json:"id" db:"id"`
	TournamentID int                `json:"tournament_id" db:"tournament_id"`
	TeamID       int                `json:"team_id" db:"team_id"`
	Status       RegistrationStatus `json:"status" db:"status"`
	RequestedAt  time.Time          `json:"requested_at" db:"requested_at"`
	AcceptedAt   *time.Time         `json:"accepted_at,omitempty" db:"accepted_at"`

	Team *Team `json:"team,omitempty" db:"-"`
}
