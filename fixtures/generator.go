// Package fixtures builds round-robin schedules for a tournament.
package fixtures

import (
	"errors"
	"fmt"
	"time"

	"github.com/Dosada05/league-system/models"
)

const (
	// RoundInterval is the gap between consecutive rounds.
	RoundInterval = 7 * 24 * time.Hour
	// KickoffHour is the UTC hour every fixture starts at.
	KickoffHour = 15
)

var (
	ErrNotEnoughTeams = errors.New("at least two teams are required for a round robin")
	ErrDuplicateTeam  = errors.New("team listed more than once")
)

type GenerateParams struct {
	TournamentID int
	// TeamIDs in seeding order; the order fully determines the schedule.
	TeamIDs []int
	// Now anchors the calendar: round 1 is played 7 days after Now.
	Now time.Time
}

type Schedule struct {
	Rounds  int            `json:"rounds"`
	Matches []models.Match `json:"matches"`
	Byes    []models.Bye   `json:"byes,omitempty"`
}

// Generate produces a single round robin using the circle method.
// Slot s of each round pairs idx[s] (home) with idx[n-1-s] (away); after each
// round indices 1..n-1 rotate by one so every team meets every other exactly once.
// An odd team count gets a phantom slot and whoever draws it rests that round.
func Generate(params GenerateParams) (*Schedule, error) {
	teams := params.TeamIDs
	if len(teams) < 2 {
		return nil, fmt.Errorf("%w (found %d)", ErrNotEnoughTeams, len(teams))
	}
	seen := make(map[int]struct{}, len(teams))
	for _, id := range teams {
		if _, dup := seen[id]; dup {
			return nil, fmt.Errorf("%w: %d", ErrDuplicateTeam, id)
		}
		seen[id] = struct{}{}
	}

	const phantom = -1
	idx := make([]int, 0, len(teams)+1)
	for i := range teams {
		idx = append(idx, i)
	}
	if len(idx)%2 == 1 {
		idx = append(idx, phantom)
	}

	n := len(idx)
	rounds := n - 1
	perRound := n / 2
	firstRound := kickoff(params.Now)

	schedule := &Schedule{
		Rounds:  rounds,
		Matches: make([]models.Match, 0, len(teams)*(len(teams)-1)/2),
	}
	for r := 0; r < rounds; r++ {
		roundNo := r + 1
		date := firstRound.AddDate(0, 0, 7*r)
		for s := 0; s < perRound; s++ {
			home, away := idx[s], idx[n-1-s]
			if home == phantom || away == phantom {
				rest := home
				if rest == phantom {
					rest = away
				}
				schedule.Byes = append(schedule.Byes, models.Bye{Round: roundNo, TeamID: teams[rest]})
				continue
			}
			round := roundNo
			schedule.Matches = append(schedule.Matches, models.Match{
				TournamentID: params.TournamentID,
				HomeTeamID:   teams[home],
				AwayTeamID:   teams[away],
				Round:        &round,
				MatchDate:    date,
				Status:       models.MatchScheduled,
			})
		}
		rotate(idx)
	}
	return schedule, nil
}

// rotate keeps idx[0] fixed and shifts the rest one position clockwise.
func rotate(idx []int) {
	if len(idx) <= 2 {
		return
	}
	last := idx[len(idx)-1]
	copy(idx[2:], idx[1:len(idx)-1])
	idx[1] = last
}

// kickoff returns 15:00 UTC on the day one interval after now.
func kickoff(now time.Time) time.Time {
	d := now.UTC().Add(RoundInterval)
	return time.Date(d.Year(), d.Month(), d.Day(), KickoffHour, 0, 0, 0, time.UTC)
}
