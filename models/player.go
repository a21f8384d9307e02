package models

import "time"

type PlayerStatus string

const (
	PlayerActive    PlayerStatus = "active"
	PlayerInjured   PlayerStatus = "injured"
	PlayerSuspended PlayerStatus = "suspended"
)

func (s PlayerStatus) IsValid() bool {
	return s == PlayerActive || s == PlayerInjured || s == PlayerSuspended
}

type PlayerPosition string

const (
	PositionGoalkeeper PlayerPosition = "goalkeeper"
	PositionDefender   PlayerPosition = "defender"
	PositionMidfielder PlayerPosition = "midfielder"
	PositionForward    PlayerPosition = "forward"
)

func (p PlayerPosition) IsValid() bool {
	switch p {
	case PositionGoalkeeper, PositionDefender, PositionMidfielder, PositionForward:
		return true
	}
	return false
}

type Player struct {
	ID          int            `json:"id" db:"id"`
	TeamID      int            `json:"team_id" db:"team_id"`
	Name        string         `json:"name" db:"name"`
	Position    PlayerPosition `json:"position" db:"position"`
	ShirtNumber *int           `json:"shirt_number,omitempty" db:"shirt_number"`
	Status      PlayerStatus   `json:"status" db:"status"`
	CreatedAt   time.Time      `json:"created_at" db:"created_at"`
}

// PlayerStats is derived from a player's match events.
type PlayerStats struct {
	PlayerID     int  `json:"player_id"`
	TeamID       int  `json:"team_id"`
	TournamentID *int `json:"tournament_id,omitempty"`
	Matches      int  `json:"matches"`
	Goals        int  `json:"goals"`
	Assists      int  `json:"assists"`
	YellowCards  int  `json:"yellow_cards"`
	RedCards     int  `json:"red_cards"`
	Fouls        int  `json:"fouls"`
}
