package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/Dosada05/league-system/models"
	"github.com/lib/pq"
)

var (
	ErrMatchEventNotFound         = errors.New("match event not found")
	ErrMatchEventInvalidReference = errors.New("match event references an unknown match, team or player")
)

type MatchEventRepository interface {
	Create(ctx context.Context, exec SQLExecutor, event *models.MatchEvent) error
	GetByID(ctx context.Context, id int) (*models.MatchEvent, error)
	ListByMatch(ctx context.Context, exec SQLExecutor, matchID int) ([]models.MatchEvent, error)
	ListByPlayerInMatch(ctx context.Context, matchID, playerID int) ([]models.MatchEvent, error)
	// ListByPlayer returns all events of a player, optionally restricted to one tournament.
	ListByPlayer(ctx context.Context, playerID int, tournamentID *int) ([]models.MatchEvent, error)
	Update(ctx context.Context, exec SQLExecutor, event *models.MatchEvent) error
	Delete(ctx context.Context, exec SQLExecutor, id int) error
}

type postgresMatchEventRepository struct {
	db *sql.DB
}

func NewPostgresMatchEventRepository(db *sql.DB) MatchEventRepository {
	return &postgresMatchEventRepository{db: db}
}

const matchEventColumns = `
	e.id, e.match_id, e.team_id, e.player_id, e.event_type, e.minute, e.description, e.created_at, e.updated_at`

func scanMatchEvent(row rowScanner, e *models.MatchEvent) error {
	var desc sql.NullString
	err := row.Scan(&e.ID, &e.MatchID, &e.TeamID, &e.PlayerID, &e.EventType, &e.Minute, &desc, &e.CreatedAt, &e.UpdatedAt)
	if err != nil {
		return err
	}
	if desc.Valid {
		d := desc.String
		e.Description = &d
	}
	return nil
}

func collectMatchEvents(rows *sql.Rows) ([]models.MatchEvent, error) {
	defer rows.Close()
	events := make([]models.MatchEvent, 0)
	for rows.Next() {
		var e models.MatchEvent
		if err := scanMatchEvent(rows, &e); err != nil {
			return nil, fmt.Errorf("failed to scan match event row: %w", err)
		}
		events = append(events, e)
	}
	return events, rows.Err()
}

func (r *postgresMatchEventRepository) Create(ctx context.Context, exec SQLExecutor, e *models.MatchEvent) error {
	executor := pickExecutor(exec, r.db)
	query := `
		INSERT INTO match_events (match_id, team_id, player_id, event_type, minute, description)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at, updated_at`

	err := executor.QueryRowContext(ctx, query,
		e.MatchID, e.TeamID, e.PlayerID, e.EventType, e.Minute, e.Description,
	).Scan(&e.ID, &e.CreatedAt, &e.UpdatedAt)
	return r.handleMatchEventError(err)
}

func (r *postgresMatchEventRepository) GetByID(ctx context.Context, id int) (*models.MatchEvent, error) {
	query := `SELECT` + matchEventColumns + ` FROM match_events e WHERE e.id = $1`
	e := &models.MatchEvent{}
	if err := scanMatchEvent(r.db.QueryRowContext(ctx, query, id), e); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrMatchEventNotFound
		}
		return nil, fmt.Errorf("failed to get match event %d: %w", id, err)
	}
	return e, nil
}

func (r *postgresMatchEventRepository) ListByMatch(ctx context.Context, exec SQLExecutor, matchID int) ([]models.MatchEvent, error) {
	executor := pickExecutor(exec, r.db)
	query := `SELECT` + matchEventColumns + ` FROM match_events e WHERE e.match_id = $1 ORDER BY e.minute, e.id`
	rows, err := executor.QueryContext(ctx, query, matchID)
	if err != nil {
		return nil, fmt.Errorf("failed to list events of match %d: %w", matchID, err)
	}
	return collectMatchEvents(rows)
}

func (r *postgresMatchEventRepository) ListByPlayerInMatch(ctx context.Context, matchID, playerID int) ([]models.MatchEvent, error) {
	query := `SELECT` + matchEventColumns + `
		FROM match_events e
		WHERE e.match_id = $1 AND e.player_id = $2
		ORDER BY e.minute, e.id`
	rows, err := r.db.QueryContext(ctx, query, matchID, playerID)
	if err != nil {
		return nil, fmt.Errorf("failed to list events of player %d in match %d: %w", playerID, matchID, err)
	}
	return collectMatchEvents(rows)
}

func (r *postgresMatchEventRepository) ListByPlayer(ctx context.Context, playerID int, tournamentID *int) ([]models.MatchEvent, error) {
	query := `SELECT` + matchEventColumns + ` FROM match_events e`
	args := []interface{}{playerID}
	if tournamentID != nil {
		query += ` JOIN matches m ON m.id = e.match_id WHERE e.player_id = $1 AND m.tournament_id = $2`
		args = append(args, *tournamentID)
	} else {
		query += ` WHERE e.player_id = $1`
	}
	query += ` ORDER BY e.match_id, e.minute, e.id`

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list events of player %d: %w", playerID, err)
	}
	return collectMatchEvents(rows)
}

func (r *postgresMatchEventRepository) Update(ctx context.Context, exec SQLExecutor, e *models.MatchEvent) error {
	executor := pickExecutor(exec, r.db)
	query := `
		UPDATE match_events SET
			team_id = $1,
			player_id = $2,
			event_type = $3,
			minute = $4,
			description = $5,
			updated_at = NOW()
		WHERE id = $6
		RETURNING updated_at`

	err := executor.QueryRowContext(ctx, query,
		e.TeamID, e.PlayerID, e.EventType, e.Minute, e.Description, e.ID,
	).Scan(&e.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return ErrMatchEventNotFound
	}
	return r.handleMatchEventError(err)
}

func (r *postgresMatchEventRepository) Delete(ctx context.Context, exec SQLExecutor, id int) error {
	executor := pickExecutor(exec, r.db)
	result, err := executor.ExecContext(ctx, `DELETE FROM match_events WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete match event %d: %w", id, err)
	}
	return checkAffectedRows(result, ErrMatchEventNotFound)
}

func (r *postgresMatchEventRepository) handleMatchEventError(err error) error {
	if err == nil {
		return nil
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code == "23503" {
		return ErrMatchEventInvalidReference
	}
	return err
}
