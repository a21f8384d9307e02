package lifecycle

import (
	"errors"

	"github.com/Dosada05/league-system/models"
)

var (
	ErrPlayerSentOff       = errors.New("player already received a red card in this match")
	ErrYellowCardLimit     = errors.New("player already has two yellow cards in this match, issue a red card instead")
	ErrRedCardAfterYellows = errors.New("player already has two yellow cards in this match")
)

// CardCount is a player's disciplinary record inside one match.
type CardCount struct {
	Yellow int
	Red    int
}

// CountCards tallies card events for playerID, skipping the event with id skipID (0 skips nothing).
func CountCards(events []models.MatchEvent, playerID, skipID int) CardCount {
	var c CardCount
	for _, ev := range events {
		if ev.PlayerID != playerID || (skipID != 0 && ev.ID == skipID) {
			continue
		}
		switch ev.EventType {
		case models.EventYellowCard:
			c.Yellow++
		case models.EventRedCard:
			c.Red++
		}
	}
	return c
}

// CheckCardRules validates issuing a card of eventType given the player's existing cards.
// Non-card events always pass.
func CheckCardRules(eventType models.EventType, existing CardCount) error {
	switch eventType {
	case models.EventYellowCard:
		if existing.Red > 0 {
			return ErrPlayerSentOff
		}
		if existing.Yellow >= 2 {
			return ErrYellowCardLimit
		}
	case models.EventRedCard:
		if existing.Red > 0 {
			return ErrPlayerSentOff
		}
		if existing.Yellow >= 2 {
			return ErrRedCardAfterYellows
		}
	}
	return nil
}
