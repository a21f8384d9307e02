package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/Dosada05/league-system/models"
	"github.com/lib/pq"
)

var (
	ErrRegistrationNotFound          = errors.New("team registration not found")
	ErrRegistrationConflict          = errors.New("team is already registered for this tournament")
	ErrRegistrationTeamInvalid       = errors.New("registration team conflict or invalid")
	ErrRegistrationTournamentInvalid = errors.New("registration tournament conflict or invalid")
)

type TournamentTeamRepository interface {
	Create(ctx context.Context, tt *models.TournamentTeam) error
	Get(ctx context.Context, tournamentID, teamID int) (*models.TournamentTeam, error)
	ListByTournament(ctx context.Context, tournamentID int, statusFilter *models.RegistrationStatus, includeTeam bool) ([]*models.TournamentTeam, error)
	CountByStatus(ctx context.Context, tournamentID int, status models.RegistrationStatus) (int, error)
	CountByTournament(ctx context.Context, tournamentID int) (int, error)
	// ListActiveByTeam returns pending/approved registrations of a team in non-terminal tournaments.
	ListActiveByTeam(ctx context.Context, teamID int) ([]*models.TournamentTeam, error)
	UpdateStatus(ctx context.Context, id int, status models.RegistrationStatus, acceptedAt *time.Time) error
}

type postgresTournamentTeamRepository struct {
	db *sql.DB
}

func NewPostgresTournamentTeamRepository(db *sql.DB) TournamentTeamRepository {
	return &postgresTournamentTeamRepository{db: db}
}

func (r *postgresTournamentTeamRepository) Create(ctx context.Context, tt *models.TournamentTeam) error {
	query := `
		INSERT INTO tournament_teams (tournament_id, team_id, status)
		VALUES ($1, $2, $3)
		RETURNING id, requested_at`

	err := r.db.QueryRowContext(ctx, query, tt.TournamentID, tt.TeamID, tt.Status).Scan(&tt.ID, &tt.RequestedAt)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) {
			switch pqErr.Code {
			case "23505": // unique_violation
				if pqErr.Constraint == "tournament_teams_tournament_id_team_id_key" {
					return ErrRegistrationConflict
				}
			case "23503": // foreign_key_violation
				switch pqErr.Constraint {
				case "tournament_teams_team_id_fkey":
					return ErrRegistrationTeamInvalid
				case "tournament_teams_tournament_id_fkey":
					return ErrRegistrationTournamentInvalid
				}
			}
		}
		return fmt.Errorf("failed to create team registration: %w", err)
	}
	return nil
}

func scanRegistration(row rowScanner, tt *models.TournamentTeam) error {
	var accepted sql.NullTime
	if err := row.Scan(&tt.ID, &tt.TournamentID, &tt.TeamID, &tt.Status, &tt.RequestedAt, &accepted); err != nil {
		return err
	}
	if accepted.Valid {
		a := accepted.Time
		tt.AcceptedAt = &a
	}
	return nil
}

func (r *postgresTournamentTeamRepository) Get(ctx context.Context, tournamentID, teamID int) (*models.TournamentTeam, error) {
	query := `
		SELECT id, tournament_id, team_id, status, requested_at, accepted_at
		FROM tournament_teams
		WHERE tournament_id = $1 AND team_id = $2`

	tt := &models.TournamentTeam{}
	if err := scanRegistration(r.db.QueryRowContext(ctx, query, tournamentID, teamID), tt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrRegistrationNotFound
		}
		return nil, fmt.Errorf("failed to find team registration: %w", err)
	}
	return tt, nil
}

func (r *postgresTournamentTeamRepository) ListByTournament(ctx context.Context, tournamentID int, statusFilter *models.RegistrationStatus, includeTeam bool) ([]*models.TournamentTeam, error) {
	var queryBuilder strings.Builder
	args := []interface{}{tournamentID}

	queryBuilder.WriteString(`
		SELECT tt.id, tt.tournament_id, tt.team_id, tt.status, tt.requested_at, tt.accepted_at`)
	if includeTeam {
		queryBuilder.WriteString(`, t.owner_user_id, t.name, t.created_at`)
	}
	queryBuilder.WriteString(`
		FROM tournament_teams tt`)
	if includeTeam {
		queryBuilder.WriteString(`
		JOIN teams t ON t.id = tt.team_id`)
	}
	queryBuilder.WriteString(" WHERE tt.tournament_id = $1")
	if statusFilter != nil {
		queryBuilder.WriteString(" AND tt.status = $2")
		args = append(args, *statusFilter)
	}
	// requested_at order is the seeding order used by fixture generation
	queryBuilder.WriteString(" ORDER BY tt.requested_at ASC, tt.id ASC")

	rows, err := r.db.QueryContext(ctx, queryBuilder.String(), args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list team registrations: %w", err)
	}
	defer rows.Close()

	registrations := make([]*models.TournamentTeam, 0)
	for rows.Next() {
		var (
			tt       models.TournamentTeam
			team     models.Team
			accepted sql.NullTime
		)
		dest := []interface{}{&tt.ID, &tt.TournamentID, &tt.TeamID, &tt.Status, &tt.RequestedAt, &accepted}
		if includeTeam {
			dest = append(dest, &team.OwnerUserID, &team.Name, &team.CreatedAt)
		}
		if err := rows.Scan(dest...); err != nil {
			return nil, fmt.Errorf("failed to scan team registration row: %w", err)
		}
		if accepted.Valid {
			a := accepted.Time
			tt.AcceptedAt = &a
		}
		if includeTeam {
			team.ID = tt.TeamID
			tt.Team = &team
		}
		registrations = append(registrations, &tt)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating team registration rows: %w", err)
	}
	return registrations, nil
}

func (r *postgresTournamentTeamRepository) CountByStatus(ctx context.Context, tournamentID int, status models.RegistrationStatus) (int, error) {
	var count int
	query := `SELECT COUNT(*) FROM tournament_teams WHERE tournament_id = $1 AND status = $2`
	if err := r.db.QueryRowContext(ctx, query, tournamentID, status).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count %s registrations: %w", status, err)
	}
	return count, nil
}

func (r *postgresTournamentTeamRepository) CountByTournament(ctx context.Context, tournamentID int) (int, error) {
	var count int
	query := `SELECT COUNT(*) FROM tournament_teams WHERE tournament_id = $1`
	if err := r.db.QueryRowContext(ctx, query, tournamentID).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count registrations: %w", err)
	}
	return count, nil
}

func (r *postgresTournamentTeamRepository) ListActiveByTeam(ctx context.Context, teamID int) ([]*models.TournamentTeam, error) {
	query := `
		SELECT tt.id, tt.tournament_id, tt.team_id, tt.status, tt.requested_at, tt.accepted_at
		FROM tournament_teams tt
		JOIN tournaments t ON t.id = tt.tournament_id
		WHERE tt.team_id = $1
		  AND tt.status IN ($2, $3)
		  AND t.status NOT IN ($4, $5)`

	rows, err := r.db.QueryContext(ctx, query, teamID,
		models.RegistrationPending, models.RegistrationApproved,
		models.StatusCompleted, models.StatusCancelled)
	if err != nil {
		return nil, fmt.Errorf("failed to list active registrations: %w", err)
	}
	defer rows.Close()

	registrations := make([]*models.TournamentTeam, 0)
	for rows.Next() {
		var tt models.TournamentTeam
		if err := scanRegistration(rows, &tt); err != nil {
			return nil, fmt.Errorf("failed to scan team registration row: %w", err)
		}
		registrations = append(registrations, &tt)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating team registration rows: %w", err)
	}
	return registrations, nil
}

func (r *postgresTournamentTeamRepository) UpdateStatus(ctx context.Context, id int, status models.RegistrationStatus, acceptedAt *time.Time) error {
	query := `UPDATE tournament_teams SET status = $1, accepted_at = $2 WHERE id = $3`
	result, err := r.db.ExecContext(ctx, query, status, acceptedAt, id)
	if err != nil {
		return fmt.Errorf("failed to update registration status: %w", err)
	}
	return checkAffectedRows(result, ErrRegistrationNotFound)
}
