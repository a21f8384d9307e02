package repositories

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/Dosada05/league-system/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var eventCols = []string{"id", "match_id", "team_id", "player_id", "event_type", "minute", "description", "created_at", "updated_at"}

func TestMatchEventRepository_ListByPlayerFiltersTournament(t *testing.T) {
	db, mock := newMock(t)
	repo := NewPostgresMatchEventRepository(db)
	now := time.Now().UTC()
	tournamentID := 4

	mock.ExpectQuery(`JOIN matches m ON m.id = e.match_id WHERE e.player_id = \$1 AND m.tournament_id = \$2`).
		WithArgs(21, tournamentID).
		WillReturnRows(sqlmock.NewRows(eventCols).
			AddRow(1, 100, 11, 21, "goal", 12, nil, now, now).
			AddRow(2, 100, 11, 21, "yellow_card", 40, "dissent", now, now))

	events, err := repo.ListByPlayer(context.Background(), 21, &tournamentID)
	require.NoError(t, err)
	require.Len(t, events, 2)
	assert.Equal(t, models.EventGoal, events[0].EventType)
	assert.Nil(t, events[0].Description)
	assert.Equal(t, "dissent", *events[1].Description)
}

func TestMatchEventRepository_ListByPlayerAllTournaments(t *testing.T) {
	db, mock := newMock(t)
	repo := NewPostgresMatchEventRepository(db)

	mock.ExpectQuery(`FROM match_events e WHERE e.player_id = \$1 ORDER BY`).
		WithArgs(21).
		WillReturnRows(sqlmock.NewRows(eventCols))

	events, err := repo.ListByPlayer(context.Background(), 21, nil)
	require.NoError(t, err)
	assert.Empty(t, events)
}

func TestMatchEventRepository_DeleteMissing(t *testing.T) {
	db, mock := newMock(t)
	repo := NewPostgresMatchEventRepository(db)

	mock.ExpectExec(`DELETE FROM match_events WHERE id = \$1`).WithArgs(9).WillReturnResult(sqlmock.NewResult(0, 0))

	assert.ErrorIs(t, repo.Delete(context.Background(), nil, 9), ErrMatchEventNotFound)
}
