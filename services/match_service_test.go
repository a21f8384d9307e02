package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Dosada05/league-system/cache"
	"github.com/Dosada05/league-system/models"
)

var kickoff = time.Date(2025, time.January, 16, 15, 0, 0, 0, time.UTC)

func TestMatchService_Create(t *testing.T) {
	env := newTestEnv(t)
	tour := env.januaryTournament(models.StatusRegistrationClosed)
	teams := env.approvedTeams(tour.ID, 3)
	svc := NewMatchService(env.deps())
	ctx := context.Background()

	m, err := svc.Create(ctx, organizer, CreateMatchInput{
		TournamentID: tour.ID, HomeTeamID: teams[0].ID, AwayTeamID: teams[1].ID, MatchDate: kickoff,
	})
	require.NoError(t, err)
	assert.Equal(t, models.MatchScheduled, m.Status)
	assert.Nil(t, m.HomeScore)

	// teams[1] already plays that day, a few hours later still collides
	_, err = svc.Create(ctx, organizer, CreateMatchInput{
		TournamentID: tour.ID, HomeTeamID: teams[1].ID, AwayTeamID: teams[2].ID, MatchDate: kickoff.Add(3 * time.Hour),
	})
	assert.ErrorIs(t, err, ErrMatchDateConflict)
	assert.Equal(t, ErrConflict, Kind(err))

	_, err = svc.Create(ctx, organizer, CreateMatchInput{
		TournamentID: tour.ID, HomeTeamID: teams[1].ID, AwayTeamID: teams[2].ID, MatchDate: kickoff.AddDate(0, 0, 1),
	})
	assert.NoError(t, err)
}

func TestMatchService_CreateRejects(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	tour := env.januaryTournament(models.StatusRegistrationClosed)
	teams := env.approvedTeams(tour.ID, 2)
	pending := env.teams.add(owner.UserID, "Waiting")
	env.registrations.add(tour.ID, pending.ID, models.RegistrationPending)
	svc := NewMatchService(env.deps())

	_, err := svc.Create(ctx, organizer, CreateMatchInput{
		TournamentID: tour.ID, HomeTeamID: teams[0].ID, AwayTeamID: teams[0].ID, MatchDate: kickoff,
	})
	assert.ErrorIs(t, err, ErrSameTeams)

	_, err = svc.Create(ctx, organizer, CreateMatchInput{
		TournamentID: tour.ID, HomeTeamID: teams[0].ID, AwayTeamID: pending.ID, MatchDate: kickoff,
	})
	assert.ErrorIs(t, err, ErrTeamNotApproved)

	_, err = svc.Create(ctx, stranger, CreateMatchInput{
		TournamentID: tour.ID, HomeTeamID: teams[0].ID, AwayTeamID: teams[1].ID, MatchDate: kickoff,
	})
	assert.ErrorIs(t, err, ErrNotOrganizer)
}

func TestMatchService_ChangeStatus(t *testing.T) {
	ctx := context.Background()

	t.Run("start initialises score", func(t *testing.T) {
		env := newTestEnv(t)
		tour := env.januaryTournament(models.StatusInProgress)
		teams := env.approvedTeams(tour.ID, 2)
		m := env.matches.add(models.Match{TournamentID: tour.ID, HomeTeamID: teams[0].ID, AwayTeamID: teams[1].ID, MatchDate: kickoff, Status: models.MatchScheduled})

		got, err := NewMatchService(env.deps()).ChangeStatus(ctx, organizer, m.ID, models.MatchInProgress)
		require.NoError(t, err)
		assert.Equal(t, models.MatchInProgress, got.Status)
		home, away := env.matches.score(m.ID)
		assert.Equal(t, 0, home)
		assert.Equal(t, 0, away)
	})

	t.Run("tournament not running", func(t *testing.T) {
		env := newTestEnv(t)
		tour := env.januaryTournament(models.StatusRegistrationClosed)
		teams := env.approvedTeams(tour.ID, 2)
		m := env.matches.add(models.Match{TournamentID: tour.ID, HomeTeamID: teams[0].ID, AwayTeamID: teams[1].ID, MatchDate: kickoff, Status: models.MatchScheduled})

		_, err := NewMatchService(env.deps()).ChangeStatus(ctx, organizer, m.ID, models.MatchInProgress)
		assert.ErrorIs(t, err, ErrTournamentNotRunning)
	})

	t.Run("illegal transition", func(t *testing.T) {
		env := newTestEnv(t)
		tour := env.januaryTournament(models.StatusInProgress)
		teams := env.approvedTeams(tour.ID, 2)
		m := env.matches.add(models.Match{TournamentID: tour.ID, HomeTeamID: teams[0].ID, AwayTeamID: teams[1].ID, MatchDate: kickoff, Status: models.MatchScheduled})

		_, err := NewMatchService(env.deps()).ChangeStatus(ctx, organizer, m.ID, models.MatchCompleted)
		assert.ErrorIs(t, err, ErrMatchStatusChange)
	})

	t.Run("completion freezes the match", func(t *testing.T) {
		env := newTestEnv(t)
		tour := env.januaryTournament(models.StatusInProgress)
		teams := env.approvedTeams(tour.ID, 2)
		m := env.matches.add(models.Match{TournamentID: tour.ID, HomeTeamID: teams[0].ID, AwayTeamID: teams[1].ID, MatchDate: kickoff, Status: models.MatchInProgress})
		p := env.players.add(teams[1].ID, "Nine", models.PlayerActive)
		require.NoError(t, env.events.Create(ctx, nil, &models.MatchEvent{MatchID: m.ID, TeamID: teams[1].ID, PlayerID: p.ID, EventType: models.EventGoal, Minute: 44}))
		svc := NewMatchService(env.deps())

		_, err := svc.ChangeStatus(ctx, organizer, m.ID, models.MatchCompleted)
		require.NoError(t, err)
		home, away := env.matches.score(m.ID)
		assert.Equal(t, 0, home)
		assert.Equal(t, 1, away)

		_, err = svc.ChangeStatus(ctx, organizer, m.ID, models.MatchCancelled)
		assert.ErrorIs(t, err, ErrMatchCompleted)
		assert.ErrorIs(t, svc.Delete(ctx, organizer, m.ID), ErrMatchCompleted)
	})
}

func TestMatchService_Reschedule(t *testing.T) {
	env := newTestEnv(t)
	tour := env.januaryTournament(models.StatusInProgress)
	teams := env.approvedTeams(tour.ID, 2)
	m := env.matches.add(models.Match{TournamentID: tour.ID, HomeTeamID: teams[0].ID, AwayTeamID: teams[1].ID, MatchDate: kickoff, Status: models.MatchPostponed})
	svc := NewMatchService(env.deps())
	ctx := context.Background()

	// the match itself does not block its own day
	sameDay := kickoff.Add(2 * time.Hour)
	got, err := svc.Reschedule(ctx, organizer, m.ID, sameDay, nil)
	require.NoError(t, err)
	assert.Equal(t, models.MatchScheduled, got.Status)
	assert.Equal(t, sameDay, got.MatchDate)

	venue := "North Field"
	got, err = svc.Reschedule(ctx, organizer, m.ID, kickoff.AddDate(0, 0, 2), &venue)
	require.NoError(t, err)
	require.NotNil(t, got.Venue)
	assert.Equal(t, venue, *got.Venue)

	env.matches.items[m.ID].Status = models.MatchInProgress
	_, err = svc.Reschedule(ctx, organizer, m.ID, kickoff.AddDate(0, 0, 3), nil)
	assert.ErrorIs(t, err, ErrMatchStatusChange)
}

func TestMatchService_GetCachesAndHidesPrivate(t *testing.T) {
	env := newTestEnv(t)
	tour := env.januaryTournament(models.StatusInProgress)
	teams := env.approvedTeams(tour.ID, 2)
	m := env.matches.add(models.Match{TournamentID: tour.ID, HomeTeamID: teams[0].ID, AwayTeamID: teams[1].ID, MatchDate: kickoff, Status: models.MatchScheduled})
	svc := NewMatchService(env.deps())
	ctx := context.Background()

	got, err := svc.Get(ctx, stranger, m.ID)
	require.NoError(t, err)
	assert.Equal(t, m.ID, got.ID)
	assert.True(t, env.store.has(cache.MatchKey(m.ID)))

	env.tournaments.items[tour.ID].IsPublic = false
	env.store.Remove(ctx, cache.TournamentKey(tour.ID))
	_, err = svc.Get(ctx, stranger, m.ID)
	assert.ErrorIs(t, err, ErrMatchNotFound)

	_, err = svc.Get(ctx, organizer, 999)
	assert.ErrorIs(t, err, ErrMatchNotFound)
}

func TestMatchService_Delete(t *testing.T) {
	env := newTestEnv(t)
	tour := env.januaryTournament(models.StatusInProgress)
	teams := env.approvedTeams(tour.ID, 2)
	m := env.matches.add(models.Match{TournamentID: tour.ID, HomeTeamID: teams[0].ID, AwayTeamID: teams[1].ID, MatchDate: kickoff, Status: models.MatchScheduled})
	svc := NewMatchService(env.deps())
	ctx := context.Background()

	scorer := env.players.add(teams[0].ID, "Nine", models.PlayerActive)
	require.NoError(t, env.events.Create(ctx, nil, &models.MatchEvent{
		MatchID: m.ID, TeamID: teams[0].ID, PlayerID: scorer.ID, EventType: models.EventGoal, Minute: 12,
	}))

	assert.ErrorIs(t, svc.Delete(ctx, stranger, m.ID), ErrNotOrganizer)
	require.NoError(t, svc.Delete(ctx, organizer, m.ID))
	assert.Contains(t, env.store.removed, cache.TournamentStandingsKey(tour.ID))
	assert.Contains(t, env.store.removed, cache.MatchEventsKey(m.ID))
	// статистика игроков, у которых были события в удалённом матче
	tid := tour.ID
	assert.Contains(t, env.store.removed, cache.PlayerEventsKey(scorer.ID))
	assert.Contains(t, env.store.removed, cache.PlayerStatsKey(scorer.ID, teams[0].ID, &tid))
	assert.Contains(t, env.store.removed, cache.PlayerStatsKey(scorer.ID, teams[0].ID, nil))

	_, err := svc.Get(ctx, organizer, m.ID)
	assert.ErrorIs(t, err, ErrMatchNotFound)
}
