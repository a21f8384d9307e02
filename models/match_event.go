package models

import "time"

type EventType string

const (
	EventGoal         EventType = "goal"
	EventAssist       EventType = "assist"
	EventYellowCard   EventType = "yellow_card"
	EventRedCard      EventType = "red_card"
	EventFoul         EventType = "foul"
	EventSubstitution EventType = "substitution"
)

func (t EventType) IsValid() bool {
	switch t {
	case EventGoal, EventAssist, EventYellowCard, EventRedCard, EventFoul, EventSubstitution:
		return true
	}
	return false
}

func (t EventType) IsCard() bool {
	return t == EventYellowCard || t == EventRedCard
}

const (
	MinEventMinute = 0
	MaxEventMinute = 120
)

type MatchEvent struct {
	ID          int       `json:"id" db:"id"`
	MatchID     int       `json:"match_id" db:"match_id"`
	TeamID      int       `json:"team_id" db:"team_id"`
	PlayerID    int       `json:"player_id" db:"player_id"`
	EventType   EventType `json:"event_type" db:"event_type"`
	Minute      int       `json:"minute" db:"minute"`
	Description *string   `json:"description,omitempty" db:"description"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time `json:"updated_at" db:"updated_at"`
}
