package models

import "time"

type Team struct {
	ID          int       `json:"id" db:"id"`
	OwnerUserID int       `json:"owner_user_id" db:"owner_user_id"`
	Name        string    `json:"name" db:"name"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`

	Players []Player `json:"players,omitempty" db:"-"`
}

// TeamStats aggregates a team's results inside one tournament.
type TeamStats struct {
	TeamID       int `json:"team_id"`
	TournamentID int `json:"tournament_id"`
	Played       int `json:"played"`
	Wins         int `json:"wins"`
	Draws        int `json:"draws"`
	Losses       int `json:"losses"`
	GoalsFor     int `json:"goals_for"`
	GoalsAgainst int `json:"goals_against"`
	YellowCards  int `json:"yellow_cards"`
	RedCards     int `json:"red_cards"`
}
