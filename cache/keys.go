package cache

import (
	"fmt"

	"github.com/Dosada05/league-system/models"
)

const allScope = "all"

func TournamentKey(id int) string {
	return fmt.Sprintf("tournament_%d", id)
}

// TournamentTeamsKey is the registration list of a tournament, optionally
// filtered by status (nil lists every registration).
func TournamentTeamsKey(id int, status *models.RegistrationStatus) string {
	scope := allScope
	if status != nil {
		scope = string(*status)
	}
	return fmt.Sprintf("tournament_teams_%d_%s", id, scope)
}

func TournamentMatchesKey(id int) string {
	return fmt.Sprintf("tournament_matches_%d", id)
}

func TournamentStandingsKey(id int) string {
	return fmt.Sprintf("tournament_standings_%d", id)
}

func MatchKey(id int) string {
	return fmt.Sprintf("match_%d", id)
}

func MatchEventsKey(matchID int) string {
	return fmt.Sprintf("match_events_%d", matchID)
}

func PlayerEventsKey(playerID int) string {
	return fmt.Sprintf("player_events_%d", playerID)
}

func PlayerStatsKey(playerID, teamID int, tournamentID *int) string {
	return fmt.Sprintf("player_stats_%d_%d_%s", playerID, teamID, scopeOf(tournamentID))
}

func TeamKey(id int) string {
	return fmt.Sprintf("team_%d", id)
}

func TeamStatsKey(teamID, tournamentID int) string {
	return fmt.Sprintf("team_stats_%d_%d", teamID, tournamentID)
}

func scopeOf(tournamentID *int) string {
	if tournamentID == nil {
		return allScope
	}
	return fmt.Sprint(*tournamentID)
}

// tournamentTeamsKeys lists every cached variant of a tournament's registrations.
func tournamentTeamsKeys(id int) []string {
	statuses := []models.RegistrationStatus{
		models.RegistrationPending, models.RegistrationApproved,
		models.RegistrationRejected, models.RegistrationWithdrawn,
	}
	keys := []string{TournamentTeamsKey(id, nil)}
	for i := range statuses {
		keys = append(keys, TournamentTeamsKey(id, &statuses[i]))
	}
	return keys
}
