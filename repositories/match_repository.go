package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/Dosada05/league-system/models"
	"github.com/lib/pq"
)

var (
	ErrMatchNotFound          = errors.New("match not found")
	ErrMatchInvalidReference  = errors.New("match references an unknown tournament or team")
	ErrMatchSameTeams         = errors.New("home and away team must differ")
	ErrMatchTournamentInvalid = errors.New("match tournament conflict or invalid")
)

type MatchRepository interface {
	Create(ctx context.Context, exec SQLExecutor, match *models.Match) error
	GetByID(ctx context.Context, id int) (*models.Match, error)
	// GetForUpdate reads the match and locks its row until the transaction ends.
	GetForUpdate(ctx context.Context, exec SQLExecutor, id int) (*models.Match, error)
	ListByTournament(ctx context.Context, tournamentID int, status *models.MatchStatus) ([]models.Match, error)
	CountByTournament(ctx context.Context, exec SQLExecutor, tournamentID int) (int, error)
	// TeamsHaveMatchOnDate reports whether either team already plays on the calendar day of date.
	TeamsHaveMatchOnDate(ctx context.Context, tournamentID, teamA, teamB int, date time.Time, excludeID *int) (bool, error)
	Update(ctx context.Context, match *models.Match) error
	UpdateScore(ctx context.Context, exec SQLExecutor, id int, home, away *int) error
	Delete(ctx context.Context, id int) error
}

type postgresMatchRepository struct {
	db *sql.DB
}

func NewPostgresMatchRepository(db *sql.DB) MatchRepository {
	return &postgresMatchRepository{db: db}
}

const matchColumns = `
	id, tournament_id, home_team_id, away_team_id, round, match_date,
	status, home_score, away_score, venue, created_at, updated_at`

func scanMatch(row rowScanner, m *models.Match) error {
	var (
		round, home, away sql.NullInt64
		venue             sql.NullString
	)
	err := row.Scan(
		&m.ID, &m.TournamentID, &m.HomeTeamID, &m.AwayTeamID, &round, &m.MatchDate,
		&m.Status, &home, &away, &venue, &m.CreatedAt, &m.UpdatedAt,
	)
	if err != nil {
		return err
	}
	m.Round = nullIntPtr(round)
	m.HomeScore = nullIntPtr(home)
	m.AwayScore = nullIntPtr(away)
	if venue.Valid {
		v := venue.String
		m.Venue = &v
	}
	return nil
}

func nullIntPtr(n sql.NullInt64) *int {
	if !n.Valid {
		return nil
	}
	v := int(n.Int64)
	return &v
}

func (r *postgresMatchRepository) Create(ctx context.Context, exec SQLExecutor, m *models.Match) error {
	executor := pickExecutor(exec, r.db)
	query := `
		INSERT INTO matches (tournament_id, home_team_id, away_team_id, round, match_date, status, venue)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, created_at, updated_at`

	err := executor.QueryRowContext(ctx, query,
		m.TournamentID, m.HomeTeamID, m.AwayTeamID, m.Round, m.MatchDate, m.Status, m.Venue,
	).Scan(&m.ID, &m.CreatedAt, &m.UpdatedAt)
	if err != nil {
		return r.handleMatchError(err)
	}
	return nil
}

func (r *postgresMatchRepository) GetByID(ctx context.Context, id int) (*models.Match, error) {
	query := `SELECT` + matchColumns + ` FROM matches WHERE id = $1`
	m := &models.Match{}
	if err := scanMatch(r.db.QueryRowContext(ctx, query, id), m); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrMatchNotFound
		}
		return nil, fmt.Errorf("failed to get match %d: %w", id, err)
	}
	return m, nil
}

func (r *postgresMatchRepository) GetForUpdate(ctx context.Context, exec SQLExecutor, id int) (*models.Match, error) {
	query := `SELECT` + matchColumns + ` FROM matches WHERE id = $1 FOR UPDATE`
	m := &models.Match{}
	if err := scanMatch(pickExecutor(exec, r.db).QueryRowContext(ctx, query, id), m); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrMatchNotFound
		}
		return nil, fmt.Errorf("failed to lock match %d: %w", id, err)
	}
	return m, nil
}

func (r *postgresMatchRepository) ListByTournament(ctx context.Context, tournamentID int, status *models.MatchStatus) ([]models.Match, error) {
	query := `SELECT` + matchColumns + ` FROM matches WHERE tournament_id = $1`
	args := []interface{}{tournamentID}
	if status != nil {
		query += " AND status = $2"
		args = append(args, *status)
	}
	query += " ORDER BY round NULLS LAST, match_date, id"

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list matches for tournament %d: %w", tournamentID, err)
	}
	defer rows.Close()

	matches := make([]models.Match, 0)
	for rows.Next() {
		var m models.Match
		if err := scanMatch(rows, &m); err != nil {
			return nil, fmt.Errorf("failed to scan match row: %w", err)
		}
		matches = append(matches, m)
	}
	return matches, rows.Err()
}

func (r *postgresMatchRepository) CountByTournament(ctx context.Context, exec SQLExecutor, tournamentID int) (int, error) {
	executor := pickExecutor(exec, r.db)
	var count int
	err := executor.QueryRowContext(ctx, `SELECT COUNT(*) FROM matches WHERE tournament_id = $1`, tournamentID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count matches for tournament %d: %w", tournamentID, err)
	}
	return count, nil
}

func (r *postgresMatchRepository) TeamsHaveMatchOnDate(ctx context.Context, tournamentID, teamA, teamB int, date time.Time, excludeID *int) (bool, error) {
	query := `
		SELECT EXISTS (
			SELECT 1 FROM matches
			WHERE tournament_id = $1
			  AND (home_team_id IN ($2, $3) OR away_team_id IN ($2, $3))
			  AND match_date >= $4 AND match_date < $5
			  AND status <> $6`
	dayStart := time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, date.Location())
	args := []interface{}{tournamentID, teamA, teamB, dayStart, dayStart.AddDate(0, 0, 1), models.MatchCancelled}
	if excludeID != nil {
		query += " AND id <> $7"
		args = append(args, *excludeID)
	}
	query += ")"

	var exists bool
	if err := r.db.QueryRowContext(ctx, query, args...).Scan(&exists); err != nil {
		return false, fmt.Errorf("failed to check match date collision: %w", err)
	}
	return exists, nil
}

func (r *postgresMatchRepository) Update(ctx context.Context, m *models.Match) error {
	query := `
		UPDATE matches SET
			home_team_id = $1,
			away_team_id = $2,
			round = $3,
			match_date = $4,
			status = $5,
			home_score = $6,
			away_score = $7,
			venue = $8,
			updated_at = NOW()
		WHERE id = $9
		RETURNING updated_at`

	err := r.db.QueryRowContext(ctx, query,
		m.HomeTeamID, m.AwayTeamID, m.Round, m.MatchDate, m.Status,
		m.HomeScore, m.AwayScore, m.Venue, m.ID,
	).Scan(&m.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return ErrMatchNotFound
	}
	return r.handleMatchError(err)
}

func (r *postgresMatchRepository) UpdateScore(ctx context.Context, exec SQLExecutor, id int, home, away *int) error {
	executor := pickExecutor(exec, r.db)
	query := `UPDATE matches SET home_score = $1, away_score = $2, updated_at = NOW() WHERE id = $3`
	result, err := executor.ExecContext(ctx, query, home, away, id)
	if err != nil {
		return fmt.Errorf("failed to update score of match %d: %w", id, err)
	}
	return checkAffectedRows(result, ErrMatchNotFound)
}

func (r *postgresMatchRepository) Delete(ctx context.Context, id int) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM matches WHERE id = $1`, id)
	if err != nil {
		return r.handleMatchError(err)
	}
	return checkAffectedRows(result, ErrMatchNotFound)
}

func (r *postgresMatchRepository) handleMatchError(err error) error {
	if err == nil {
		return nil
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		switch pqErr.Code {
		case "23503":
			if pqErr.Constraint == "matches_tournament_id_fkey" {
				return ErrMatchTournamentInvalid
			}
			return ErrMatchInvalidReference
		case "23514":
			if pqErr.Constraint == "chk_match_distinct_teams" {
				return ErrMatchSameTeams
			}
		}
	}
	return err
}
