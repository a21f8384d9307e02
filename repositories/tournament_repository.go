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
	ErrTournamentNotFound       = errors.New("tournament not found")
	ErrTournamentNameConflict   = errors.New("tournament name conflict for this organizer")
	ErrTournamentInUse          = errors.New("tournament is in use (registrations/matches exist)")
	ErrTournamentInvalidOrg     = errors.New("invalid organizer reference")
	ErrTournamentStatusConflict = errors.New("tournament status was changed concurrently")
)

type ListTournamentsFilter struct {
	OrganizerID *int
	Status      *models.TournamentStatus
	PublicOnly  bool
	Limit       int
	Offset      int
}

type TournamentRepository interface {
	Create(ctx context.Context, tournament *models.Tournament) error
	GetByID(ctx context.Context, id int) (*models.Tournament, error)
	List(ctx context.Context, filter ListTournamentsFilter) ([]models.Tournament, error)
	// ListForReconciliation returns every tournament that is neither completed nor cancelled.
	ListForReconciliation(ctx context.Context) ([]*models.Tournament, error)
	Update(ctx context.Context, tournament *models.Tournament) error
	// UpdateStatus moves the tournament from -> to only if it is still in from.
	UpdateStatus(ctx context.Context, exec SQLExecutor, id int, from, to models.TournamentStatus, at time.Time) error
	Delete(ctx context.Context, id int) error
	// LockForFixtures takes a transaction-scoped advisory lock on the tournament.
	LockForFixtures(ctx context.Context, exec SQLExecutor, id int) error
}

type postgresTournamentRepository struct {
	db *sql.DB
}

func NewPostgresTournamentRepository(db *sql.DB) TournamentRepository {
	return &postgresTournamentRepository{db: db}
}

const tournamentColumns = `
	id, organizer_id, name, description,
	registration_start, registration_deadline, start_date, end_date,
	min_teams, max_teams, status, is_public, created_at, updated_at`

func scanTournament(row rowScanner, t *models.Tournament) error {
	var end sql.NullTime
	err := row.Scan(
		&t.ID, &t.OrganizerID, &t.Name, &t.Description,
		&t.RegistrationStart, &t.RegistrationDeadline, &t.StartDate, &end,
		&t.MinTeams, &t.MaxTeams, &t.Status, &t.IsPublic, &t.CreatedAt, &t.UpdatedAt,
	)
	if err != nil {
		return err
	}
	if end.Valid {
		e := end.Time
		t.EndDate = &e
	}
	return nil
}

func (r *postgresTournamentRepository) Create(ctx context.Context, t *models.Tournament) error {
	query := `
		INSERT INTO tournaments (
			organizer_id, name, description,
			registration_start, registration_deadline, start_date, end_date,
			min_teams, max_teams, status, is_public
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING id, created_at, updated_at`

	err := r.db.QueryRowContext(ctx, query,
		t.OrganizerID, t.Name, t.Description,
		t.RegistrationStart, t.RegistrationDeadline, t.StartDate, t.EndDate,
		t.MinTeams, t.MaxTeams, t.Status, t.IsPublic,
	).Scan(&t.ID, &t.CreatedAt, &t.UpdatedAt)

	return r.handleTournamentError(err)
}

func (r *postgresTournamentRepository) GetByID(ctx context.Context, id int) (*models.Tournament, error) {
	query := `SELECT` + tournamentColumns + ` FROM tournaments WHERE id = $1`

	t := &models.Tournament{}
	if err := scanTournament(r.db.QueryRowContext(ctx, query, id), t); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrTournamentNotFound
		}
		return nil, err
	}
	return t, nil
}

func (r *postgresTournamentRepository) List(ctx context.Context, filter ListTournamentsFilter) ([]models.Tournament, error) {
	query := `SELECT` + tournamentColumns + ` FROM tournaments WHERE 1=1`

	args := []interface{}{}
	argID := 1

	if filter.OrganizerID != nil {
		query += fmt.Sprintf(" AND organizer_id = $%d", argID)
		args = append(args, *filter.OrganizerID)
		argID++
	}
	if filter.Status != nil {
		query += fmt.Sprintf(" AND status = $%d", argID)
		args = append(args, *filter.Status)
		argID++
	}
	if filter.PublicOnly {
		query += " AND is_public = TRUE"
	}

	query += " ORDER BY start_date DESC, created_at DESC"

	if filter.Limit > 0 {
		query += fmt.Sprintf(" LIMIT $%d", argID)
		args = append(args, filter.Limit)
		argID++
	}
	if filter.Offset > 0 {
		query += fmt.Sprintf(" OFFSET $%d", argID)
		args = append(args, filter.Offset)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	tournaments := make([]models.Tournament, 0)
	for rows.Next() {
		var t models.Tournament
		if scanErr := scanTournament(rows, &t); scanErr != nil {
			return nil, scanErr
		}
		tournaments = append(tournaments, t)
	}
	if err = rows.Err(); err != nil {
		return nil, err
	}
	return tournaments, nil
}

func (r *postgresTournamentRepository) ListForReconciliation(ctx context.Context) ([]*models.Tournament, error) {
	query := `SELECT` + tournamentColumns + `
		FROM tournaments
		WHERE status NOT IN ($1, $2)
		ORDER BY id`

	rows, err := r.db.QueryContext(ctx, query, models.StatusCompleted, models.StatusCancelled)
	if err != nil {
		return nil, fmt.Errorf("failed to query tournaments for status reconciliation: %w", err)
	}
	defer rows.Close()

	var tournaments []*models.Tournament
	for rows.Next() {
		var t models.Tournament
		if scanErr := scanTournament(rows, &t); scanErr != nil {
			return nil, fmt.Errorf("failed to scan tournament for status reconciliation: %w", scanErr)
		}
		tournaments = append(tournaments, &t)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error during tournament rows iteration for status reconciliation: %w", err)
	}
	return tournaments, nil
}

func (r *postgresTournamentRepository) Update(ctx context.Context, t *models.Tournament) error {
	// status is owned by UpdateStatus
	query := `
		UPDATE tournaments SET
			name = $1,
			description = $2,
			registration_start = $3,
			registration_deadline = $4,
			start_date = $5,
			end_date = $6,
			min_teams = $7,
			max_teams = $8,
			is_public = $9,
			updated_at = NOW()
		WHERE id = $10
		RETURNING updated_at`

	err := r.db.QueryRowContext(ctx, query,
		t.Name, t.Description,
		t.RegistrationStart, t.RegistrationDeadline, t.StartDate, t.EndDate,
		t.MinTeams, t.MaxTeams, t.IsPublic,
		t.ID,
	).Scan(&t.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return ErrTournamentNotFound
	}
	return r.handleTournamentError(err)
}

func (r *postgresTournamentRepository) UpdateStatus(ctx context.Context, exec SQLExecutor, id int, from, to models.TournamentStatus, at time.Time) error {
	executor := pickExecutor(exec, r.db)
	query := `UPDATE tournaments SET status = $1, updated_at = $2 WHERE id = $3 AND status = $4`
	result, err := executor.ExecContext(ctx, query, to, at, id, from)
	if err != nil {
		return r.handleTournamentError(err)
	}
	return checkAffectedRows(result, ErrTournamentStatusConflict)
}

func (r *postgresTournamentRepository) Delete(ctx context.Context, id int) error {
	query := `DELETE FROM tournaments WHERE id = $1`
	result, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return r.handleTournamentError(err)
	}
	return checkAffectedRows(result, ErrTournamentNotFound)
}

func (r *postgresTournamentRepository) LockForFixtures(ctx context.Context, exec SQLExecutor, id int) error {
	executor := pickExecutor(exec, r.db)
	if _, err := executor.ExecContext(ctx, `SELECT pg_advisory_xact_lock($1)`, int64(id)); err != nil {
		return fmt.Errorf("failed to lock tournament %d for fixture generation: %w", id, err)
	}
	return nil
}

func (r *postgresTournamentRepository) handleTournamentError(err error) error {
	if err == nil {
		return nil
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		switch pqErr.Code {
		case "23505":
			if pqErr.Constraint == "tournaments_organizer_id_name_key" {
				return ErrTournamentNameConflict
			}
		case "23503":
			if pqErr.Constraint == "tournaments_organizer_id_fkey" {
				return ErrTournamentInvalidOrg
			}
			// FK violations from tournament_teams/matches pointing at this row on delete.
			return ErrTournamentInUse
		}
	}
	return err
}
