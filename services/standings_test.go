package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Dosada05/league-system/models"
)

func completed(home, away, homeScore, awayScore int) models.Match {
	return models.Match{
		HomeTeamID: home,
		AwayTeamID: away,
		Status:     models.MatchCompleted,
		HomeScore:  intPtr(homeScore),
		AwayScore:  intPtr(awayScore),
	}
}

func approvedRegs(ids ...int) []*models.TournamentTeam {
	regs := make([]*models.TournamentTeam, 0, len(ids))
	for _, id := range ids {
		regs = append(regs, &models.TournamentTeam{TeamID: id, Status: models.RegistrationApproved})
	}
	return regs
}

func TestComputeStandings(t *testing.T) {
	regs := approvedRegs(1, 2, 3, 4)
	matches := []models.Match{
		completed(1, 2, 2, 0),
		completed(3, 4, 1, 1),
		completed(1, 3, 0, 1),
		completed(2, 4, 3, 0),
		// not finished, ignored
		{HomeTeamID: 1, AwayTeamID: 4, Status: models.MatchInProgress, HomeScore: intPtr(5), AwayScore: intPtr(0)},
	}

	table := computeStandings(regs, matches)
	require.Len(t, table, 4)

	order := make([]int, 0, len(table))
	for _, row := range table {
		order = append(order, row.TeamID)
	}
	// 3: 4 pts; 1 and 2: 3 pts, GD +1 each, GF 2 vs 3; 4: 1 pt
	assert.Equal(t, []int{3, 2, 1, 4}, order)

	top := table[0]
	assert.Equal(t, 1, top.Rank)
	assert.Equal(t, 4, top.Points)
	assert.Equal(t, 2, top.GamesPlayed)
	assert.Equal(t, 1, top.Wins)
	assert.Equal(t, 1, top.Draws)
	assert.Equal(t, 2, top.ScoreFor)
	assert.Equal(t, 1, top.ScoreAgainst)
	assert.Equal(t, 1, top.ScoreDifference)

	last := table[3]
	assert.Equal(t, 4, last.Rank)
	assert.Equal(t, 1, last.Losses)
}

func TestComputeStandings_TieBrokenByTeamID(t *testing.T) {
	table := computeStandings(approvedRegs(7, 5), nil)

	require.Len(t, table, 2)
	assert.Equal(t, 5, table[0].TeamID)
	assert.Equal(t, 7, table[1].TeamID)
	assert.Zero(t, table[0].Points)
}

func TestComputeStandings_IgnoresUnapprovedTeams(t *testing.T) {
	regs := approvedRegs(1, 2)
	regs = append(regs, &models.TournamentTeam{TeamID: 3, Status: models.RegistrationWithdrawn})

	table := computeStandings(regs, []models.Match{completed(1, 3, 4, 0), completed(1, 2, 1, 0)})

	require.Len(t, table, 2)
	assert.Equal(t, 1, table[0].TeamID)
	assert.Equal(t, 1, table[0].GamesPlayed)
}

func TestStandings_Cached(t *testing.T) {
	env := newTestEnv(t)
	tour := env.januaryTournament(models.StatusInProgress)
	teams := env.approvedTeams(tour.ID, 2)
	m := completed(teams[0].ID, teams[1].ID, 0, 1)
	m.TournamentID = tour.ID
	env.matches.add(m)
	svc := NewTournamentService(env.deps())

	table, err := svc.Standings(context.Background(), stranger, tour.ID)
	require.NoError(t, err)
	require.Len(t, table, 2)
	assert.Equal(t, teams[1].ID, table[0].TeamID)
	require.NotNil(t, table[0].Team)
	assert.Equal(t, teams[1].Name, table[0].Team.Name)
}
