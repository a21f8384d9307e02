package cache

import (
	"context"

	"github.com/Dosada05/league-system/models"
)

// Invalidator knows which cached views each kind of write can make stale.
// Call it only after the write has committed.
type Invalidator struct {
	cache *Cache
}

func NewInvalidator(c *Cache) *Invalidator {
	return &Invalidator{cache: c}
}

// Tournament drops the tournament detail and every view derived from it.
func (inv *Invalidator) Tournament(ctx context.Context, tournamentID int) {
	keys := []string{
		TournamentKey(tournamentID),
		TournamentMatchesKey(tournamentID),
		TournamentStandingsKey(tournamentID),
	}
	inv.cache.Remove(ctx, append(keys, tournamentTeamsKeys(tournamentID)...)...)
}

// TournamentTeams drops registration lists after a team joins, leaves or is reviewed.
func (inv *Invalidator) TournamentTeams(ctx context.Context, tournamentID int) {
	keys := append(tournamentTeamsKeys(tournamentID), TournamentKey(tournamentID), TournamentStandingsKey(tournamentID))
	inv.cache.Remove(ctx, keys...)
}

// Match drops a match and the tournament views that list or aggregate it.
func (inv *Invalidator) Match(ctx context.Context, m *models.Match) {
	inv.cache.Remove(ctx, matchKeys(m)...)
}

// MatchEvent drops everything an event write can change: the match, its
// events, the score-derived tournament views and the player's statistics.
func (inv *Invalidator) MatchEvent(ctx context.Context, m *models.Match, events ...*models.MatchEvent) {
	keys := append(matchKeys(m), MatchEventsKey(m.ID))
	tid := m.TournamentID
	for _, ev := range events {
		if ev == nil {
			continue
		}
		keys = append(keys,
			PlayerEventsKey(ev.PlayerID),
			PlayerStatsKey(ev.PlayerID, ev.TeamID, &tid),
			PlayerStatsKey(ev.PlayerID, ev.TeamID, nil),
		)
	}
	inv.cache.Remove(ctx, keys...)
}

func (inv *Invalidator) Team(ctx context.Context, teamID int) {
	inv.cache.Remove(ctx, TeamKey(teamID))
}

func matchKeys(m *models.Match) []string {
	tid := m.TournamentID
	return []string{
		MatchKey(m.ID),
		TournamentMatchesKey(tid),
		TournamentStandingsKey(tid),
		TeamStatsKey(m.HomeTeamID, tid),
		TeamStatsKey(m.AwayTeamID, tid),
	}
}
