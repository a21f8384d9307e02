package services

import (
	"context"
	"fmt"
	"sort"

	"github.com/Dosada05/league-system/cache"
	"github.com/Dosada05/league-system/models"
	"golang.org/x/sync/errgroup"
)

const (
	pointsWin  = 3
	pointsDraw = 1
)

func (s *tournamentService) Standings(ctx context.Context, actor models.Actor, tournamentID int) ([]models.Standing, error) {
	if _, err := s.Get(ctx, actor, tournamentID); err != nil {
		return nil, err
	}
	return cache.GetOrCreate(ctx, s.Cache, cache.TournamentStandingsKey(tournamentID), cache.StatsTTL,
		func(ctx context.Context) ([]models.Standing, error) {
			approved := models.RegistrationApproved
			regs, err := s.Registrations.ListByTournament(ctx, tournamentID, &approved, true)
			if err != nil {
				return nil, err
			}
			matches, err := s.listMatches(ctx, tournamentID)
			if err != nil {
				return nil, err
			}
			return computeStandings(regs, matches), nil
		})
}

// Overview loads the tournament, its approved teams and its matches concurrently.
func (s *tournamentService) Overview(ctx context.Context, actor models.Actor, tournamentID int) (*TournamentOverview, error) {
	var (
		overview TournamentOverview
		approved = models.RegistrationApproved
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		t, err := loadTournament(gctx, s.Deps, tournamentID)
		overview.Tournament = t
		return err
	})
	g.Go(func() error {
		teams, err := s.listTeams(gctx, tournamentID, &approved)
		overview.Teams = teams
		return err
	})
	g.Go(func() error {
		matches, err := s.listMatches(gctx, tournamentID)
		overview.Matches = matches
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}
	if !canView(actor, overview.Tournament) {
		return nil, ErrTournamentNotFound
	}
	overview.Standings = computeStandings(overview.Teams, overview.Matches)
	return &overview, nil
}

func (s *tournamentService) listMatches(ctx context.Context, tournamentID int) ([]models.Match, error) {
	return cache.GetOrCreate(ctx, s.Cache, cache.TournamentMatchesKey(tournamentID), cache.ListTTL,
		func(ctx context.Context) ([]models.Match, error) {
			matches, err := s.Matches.ListByTournament(ctx, tournamentID, nil)
			if err != nil {
				return nil, fmt.Errorf("failed to list matches: %w", err)
			}
			return matches, nil
		})
}

// computeStandings builds the points table (3 for a win, 1 for a draw) from
// completed matches. Ties are broken by goal difference, goals scored, then team id.
func computeStandings(regs []*models.TournamentTeam, matches []models.Match) []models.Standing {
	rows := make(map[int]*models.Standing, len(regs))
	for _, reg := range regs {
		if reg.Status != models.RegistrationApproved {
			continue
		}
		rows[reg.TeamID] = &models.Standing{TeamID: reg.TeamID, Team: reg.Team}
	}

	for _, m := range matches {
		if m.Status != models.MatchCompleted || m.HomeScore == nil || m.AwayScore == nil {
			continue
		}
		home, okHome := rows[m.HomeTeamID]
		away, okAway := rows[m.AwayTeamID]
		if !okHome || !okAway {
			continue
		}
		applyResult(home, *m.HomeScore, *m.AwayScore)
		applyResult(away, *m.AwayScore, *m.HomeScore)
	}

	table := make([]models.Standing, 0, len(rows))
	for _, row := range rows {
		row.ScoreDifference = row.ScoreFor - row.ScoreAgainst
		table = append(table, *row)
	}
	sort.Slice(table, func(i, j int) bool {
		a, b := table[i], table[j]
		if a.Points != b.Points {
			return a.Points > b.Points
		}
		if a.ScoreDifference != b.ScoreDifference {
			return a.ScoreDifference > b.ScoreDifference
		}
		if a.ScoreFor != b.ScoreFor {
			return a.ScoreFor > b.ScoreFor
		}
		return a.TeamID < b.TeamID
	})
	for i := range table {
		table[i].Rank = i + 1
	}
	return table
}

func applyResult(row *models.Standing, scored, conceded int) {
	row.GamesPlayed++
	row.ScoreFor += scored
	row.ScoreAgainst += conceded
	switch {
	case scored > conceded:
		row.Wins++
		row.Points += pointsWin
	case scored == conceded:
		row.Draws++
		row.Points += pointsDraw
	default:
		row.Losses++
	}
}
