package lifecycle

import (
	"errors"
	"fmt"

	"github.com/Dosada05/league-system/models"
)

var ErrInvalidMatchTransition = errors.New("invalid match status transition")

var matchTransitions = map[models.MatchStatus][]models.MatchStatus{
	models.MatchScheduled:  {models.MatchInProgress, models.MatchCancelled, models.MatchPostponed},
	models.MatchPostponed:  {models.MatchScheduled, models.MatchCancelled},
	models.MatchInProgress: {models.MatchCompleted, models.MatchCancelled},
	models.MatchCompleted:  {},
	models.MatchCancelled:  {},
}

func CanMatchTransition(current, next models.MatchStatus) error {
	for _, allowed := range matchTransitions[current] {
		if allowed == next {
			return nil
		}
	}
	return fmt.Errorf("%w: %s -> %s", ErrInvalidMatchTransition, current, next)
}

// AcceptsEvents reports whether events may be recorded against a match in this status.
func AcceptsEvents(status models.MatchStatus) bool {
	return status == models.MatchInProgress
}
