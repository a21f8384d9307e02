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
	ErrPlayerNotFound      = errors.New("player not found")
	ErrPlayerShirtConflict = errors.New("shirt number already taken in this team")
	ErrPlayerTeamInvalid   = errors.New("player team conflict or invalid")
)

type PlayerRepository interface {
	Create(ctx context.Context, player *models.Player) error
	GetByID(ctx context.Context, id int) (*models.Player, error)
	ListByTeam(ctx context.Context, teamID int) ([]models.Player, error)
	UpdateStatus(ctx context.Context, id int, status models.PlayerStatus) error
}

type postgresPlayerRepository struct {
	db *sql.DB
}

func NewPostgresPlayerRepository(db *sql.DB) PlayerRepository {
	return &postgresPlayerRepository{db: db}
}

func (r *postgresPlayerRepository) Create(ctx context.Context, p *models.Player) error {
	query := `
		INSERT INTO players (team_id, name, position, shirt_number, status)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at`

	err := r.db.QueryRowContext(ctx, query, p.TeamID, p.Name, p.Position, p.ShirtNumber, p.Status).Scan(&p.ID, &p.CreatedAt)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) {
			switch pqErr.Code {
			case "23505":
				if pqErr.Constraint == "players_team_id_shirt_number_key" {
					return ErrPlayerShirtConflict
				}
			case "23503":
				return ErrPlayerTeamInvalid
			}
		}
		return fmt.Errorf("failed to create player: %w", err)
	}
	return nil
}

func scanPlayer(row rowScanner, p *models.Player) error {
	var shirt sql.NullInt64
	if err := row.Scan(&p.ID, &p.TeamID, &p.Name, &p.Position, &shirt, &p.Status, &p.CreatedAt); err != nil {
		return err
	}
	if shirt.Valid {
		n := int(shirt.Int64)
		p.ShirtNumber = &n
	}
	return nil
}

func (r *postgresPlayerRepository) GetByID(ctx context.Context, id int) (*models.Player, error) {
	query := `SELECT id, team_id, name, position, shirt_number, status, created_at FROM players WHERE id = $1`
	p := &models.Player{}
	if err := scanPlayer(r.db.QueryRowContext(ctx, query, id), p); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrPlayerNotFound
		}
		return nil, fmt.Errorf("failed to get player: %w", err)
	}
	return p, nil
}

func (r *postgresPlayerRepository) ListByTeam(ctx context.Context, teamID int) ([]models.Player, error) {
	query := `
		SELECT id, team_id, name, position, shirt_number, status, created_at
		FROM players WHERE team_id = $1
		ORDER BY shirt_number NULLS LAST, id`
	rows, err := r.db.QueryContext(ctx, query, teamID)
	if err != nil {
		return nil, fmt.Errorf("failed to list players: %w", err)
	}
	defer rows.Close()

	players := make([]models.Player, 0)
	for rows.Next() {
		var p models.Player
		if err := scanPlayer(rows, &p); err != nil {
			return nil, fmt.Errorf("failed to scan player row: %w", err)
		}
		players = append(players, p)
	}
	return players, rows.Err()
}

func (r *postgresPlayerRepository) UpdateStatus(ctx context.Context, id int, status models.PlayerStatus) error {
	result, err := r.db.ExecContext(ctx, `UPDATE players SET status = $1 WHERE id = $2`, status, id)
	if err != nil {
		return fmt.Errorf("failed to update player status: %w", err)
	}
	return checkAffectedRows(result, ErrPlayerNotFound)
}
