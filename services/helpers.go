package services

import (
	"time"

	"github.com/Dosada05/league-system/models"
)

// Clock lets tests pin "now".
type Clock interface {
	Now() time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now().UTC() }

func SystemClock() Clock { return systemClock{} }

func requireActor(actor models.Actor) error {
	if actor.UserID <= 0 {
		return ErrUnauthenticated
	}
	return nil
}

// requireOrganizer passes for the tournament organizer and for admins.
func requireOrganizer(actor models.Actor, t *models.Tournament) error {
	if err := requireActor(actor); err != nil {
		return err
	}
	if actor.IsAdmin() || actor.UserID == t.OrganizerID {
		return nil
	}
	return ErrNotOrganizer
}

func requireTeamOwner(actor models.Actor, team *models.Team) error {
	if err := requireActor(actor); err != nil {
		return err
	}
	if actor.IsAdmin() || actor.UserID == team.OwnerUserID {
		return nil
	}
	return ErrNotTeamOwner
}

func intPtr(v int) *int { return &v }
