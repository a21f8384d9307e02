package models

// Standing is one row of a round-robin points table.
type Standing struct {
	Rank            int `json:"rank"`
	TeamID          int `json:"team_id"`
	Points          int `json:"points"`
	GamesPlayed     int `json:"games_played"`
	Wins            int `json:"wins"`
	Draws           int `json:"draws"`
	Losses          int `json:"losses"`
	ScoreFor        int `json:"score_for"`
	ScoreAgainst    int `json:"score_against"`
	ScoreDifference int `json:"score_difference"`

	Team *Team `json:"team,omitempty"`
}
