package models

import "time"

// TournamentStatus представляет статусы турнира, соответствующие ENUM в БД.
type TournamentStatus string

const (
	StatusDraft              TournamentStatus = "draft"
	StatusRegistrationOpen   TournamentStatus = "registration_open"
	StatusRegistrationClosed TournamentStatus = "registration_closed"
	StatusInProgress         TournamentStatus = "in_progress"
	StatusCompleted          TournamentStatus = "completed"
	StatusCancelled          TournamentStatus = "cancelled"
)

// IsTerminal reports whether no further transitions are possible.
func (s TournamentStatus) IsTerminal() bool {
	return s == StatusCompleted || s == StatusCancelled
}

func (s TournamentStatus) IsValid() bool {
	switch s {
	case StatusDraft, StatusRegistrationOpen, StatusRegistrationClosed,
		StatusInProgress, StatusCompleted, StatusCancelled:
		return true
	}
	return false
}

// Tournament представляет турнир.
type Tournament struct {
	ID                   int              `json:"id" db:"id"`
	OrganizerID          int              `json:"organizer_id" db:"organizer_id"`
	Name                 string           `json:"name" db:"name"`
	Description          *string          `json:"description,omitempty" db:"description"`
	RegistrationStart    time.Time        `json:"registration_start" db:"registration_start"`
	RegistrationDeadline time.Time        `json:"registration_deadline" db:"registration_deadline"`
	StartDate            time.Time        `json:"start_date" db:"start_date"`
	EndDate              *time.Time       `json:"end_date,omitempty" db:"end_date"`
	MinTeams             int              `json:"min_teams" db:"min_teams"`
	MaxTeams             int              `json:"max_teams" db:"max_teams"`
	Status               TournamentStatus `json:"status" db:"status"`
	IsPublic             bool             `json:"is_public" db:"is_public"`
	CreatedAt            time.Time        `json:"created_at" db:"created_at"`
	UpdatedAt            time.Time        `json:"updated_at" db:"updated_at"`

	// Опциональные связанные сущности (не мапятся напрямую)
	Teams   []TournamentTeam `json:"teams,omitempty" db:"-"`
	Matches []Match          `json:"matches,omitempty" db:"-"`
}
