package lifecycle

import "github.com/Dosada05/league-system/models"

// Score is a match result derived from goal events.
type Score struct {
	Home int
	Away int
}

// ComputeScore counts goal events per side. It is a pure function of the events,
// so recomputing after any edit yields the same answer.
func ComputeScore(m *models.Match, events []models.MatchEvent) Score {
	var s Score
	for _, ev := range events {
		if ev.EventType != models.EventGoal {
			continue
		}
		switch ev.TeamID {
		case m.HomeTeamID:
			s.Home++
		case m.AwayTeamID:
			s.Away++
		}
	}
	return s
}

// ScoreChanged reports whether the persisted score differs from s.
func ScoreChanged(m *models.Match, s Score) bool {
	return m.HomeScore == nil || m.AwayScore == nil || *m.HomeScore != s.Home || *m.AwayScore != s.Away
}

// TouchesScore reports whether an edit from before to after can change the score.
// before is empty for creates, after is empty for deletes.
func TouchesScore(before, after models.EventType) bool {
	return before == models.EventGoal || after == models.EventGoal
}
