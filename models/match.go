package models

import "time"

type MatchStatus string

const (
	MatchScheduled  MatchStatus = "scheduled"
	MatchInProgress MatchStatus = "in_progress"
	MatchCompleted  MatchStatus = "completed"
	MatchCancelled  MatchStatus = "cancelled"
	MatchPostponed  MatchStatus = "postponed"
)

func (s MatchStatus) IsValid() bool {
	switch s {
	case MatchScheduled, MatchInProgress, MatchCompleted, MatchCancelled, MatchPostponed:
		return true
	}
	return false
}

// Match is a fixture between two teams of one tournament.
// HomeScore/AwayScore are derived from goal events and never authored directly.
type Match struct {
	ID           int         `json:"id" db:"id"`
	TournamentID int         `json:"tournament_id" db:"tournament_id"`
	HomeTeamID   int         `json:"home_team_id" db:"home_team_id"`
	AwayTeamID   int         `json:"away_team_id" db:"away_team_id"`
	Round        *int        `json:"round,omitempty" db:"round"`
	MatchDate    time.Time   `json:"match_date" db:"match_date"`
	Status       MatchStatus `json:"status" db:"status"`
	HomeScore    *int        `json:"home_score,omitempty" db:"home_score"`
	AwayScore    *int        `json:"away_score,omitempty" db:"away_score"`
	Venue        *string     `json:"venue,omitempty" db:"venue"`
	CreatedAt    time.Time   `json:"created_at" db:"created_at"`
	UpdatedAt    time.Time   `json:"updated_at" db:"updated_at"`
}

// HasTeam reports whether teamID plays in the match.
func (m *Match) HasTeam(teamID int) bool {
	return m.HomeTeamID == teamID || m.AwayTeamID == teamID
}

// Bye records that a team rests for a round of an odd-sized round robin.
type Bye struct {
	Round  int `json:"round"`
	TeamID int `json:"team_id"`
}
