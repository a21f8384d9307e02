package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/Dosada05/league-system/cache"
	"github.com/Dosada05/league-system/models"
	"github.com/Dosada05/league-system/repositories"
	"golang.org/x/sync/errgroup"
)

// statsLoadLimit caps concurrent event loads while building team statistics.
const statsLoadLimit = 4

type AddPlayerInput struct {
	Name        string                `json:"name"`
	Position    models.PlayerPosition `json:"position"`
	ShirtNumber *int                  `json:"shirt_number"`
	Status      models.PlayerStatus   `json:"status"`
}

type TeamService interface {
	Create(ctx context.Context, actor models.Actor, name string) (*models.Team, error)
	Get(ctx context.Context, id int) (*models.Team, error)
	ListMine(ctx context.Context, actor models.Actor) ([]models.Team, error)
	Update(ctx context.Context, actor models.Actor, id int, name string) (*models.Team, error)
	Delete(ctx context.Context, actor models.Actor, id int) error
	AddPlayer(ctx context.Context, actor models.Actor, teamID int, input AddPlayerInput) (*models.Player, error)
	UpdatePlayerStatus(ctx context.Context, actor models.Actor, playerID int, status models.PlayerStatus) (*models.Player, error)
	TeamStats(ctx context.Context, teamID, tournamentID int) (*models.TeamStats, error)
}

type teamService struct {
	Deps
	inv *cache.Invalidator
}

func NewTeamService(deps Deps) TeamService {
	deps = deps.withDefaults()
	return &teamService{Deps: deps, inv: cache.NewInvalidator(deps.Cache)}
}

func (s *teamService) Create(ctx context.Context, actor models.Actor, name string) (*models.Team, error) {
	if err := requireActor(actor); err != nil {
		return nil, err
	}
	team := &models.Team{OwnerUserID: actor.UserID, Name: name}
	if err := ValidateTeam(team); err != nil {
		return nil, err
	}
	if err := s.Teams.Create(ctx, team); err != nil {
		return nil, mapTeamRepoError(err)
	}
	s.Logger.InfoContext(ctx, "team created", slog.Int("team_id", team.ID), slog.Int("owner_id", actor.UserID))
	return team, nil
}

func (s *teamService) Get(ctx context.Context, id int) (*models.Team, error) {
	return cache.GetOrCreate(ctx, s.Cache, cache.TeamKey(id), cache.DetailTTL, func(ctx context.Context) (*models.Team, error) {
		team, err := loadTeam(ctx, s.Deps, id)
		if err != nil {
			return nil, err
		}
		players, err := s.Players.ListByTeam(ctx, id)
		if err != nil {
			return nil, fmt.Errorf("failed to list players: %w", err)
		}
		team.Players = players
		return team, nil
	})
}

func (s *teamService) ListMine(ctx context.Context, actor models.Actor) ([]models.Team, error) {
	if err := requireActor(actor); err != nil {
		return nil, err
	}
	return s.Teams.ListByOwner(ctx, actor.UserID)
}

func (s *teamService) Update(ctx context.Context, actor models.Actor, id int, name string) (*models.Team, error) {
	team, err := loadTeam(ctx, s.Deps, id)
	if err != nil {
		return nil, err
	}
	if err := requireTeamOwner(actor, team); err != nil {
		return nil, err
	}
	team.Name = name
	if err := ValidateTeam(team); err != nil {
		return nil, err
	}

	// имя команды уникально среди активных заявок каждого турнира
	regs, err := s.Registrations.ListActiveByTeam(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to list team registrations: %w", err)
	}
	for _, reg := range regs {
		others, err := s.Registrations.ListByTournament(ctx, reg.TournamentID, nil, true)
		if err != nil {
			return nil, fmt.Errorf("failed to list tournament registrations: %w", err)
		}
		if nameTaken(others, id, team.Name) {
			return nil, ErrTeamNameTaken
		}
	}

	if err := s.Teams.Update(ctx, team); err != nil {
		return nil, mapTeamRepoError(err)
	}

	s.inv.Team(ctx, id)
	// название команды кешируется вместе со списками заявок
	for _, reg := range regs {
		s.inv.TournamentTeams(ctx, reg.TournamentID)
	}
	return team, nil
}

func (s *teamService) Delete(ctx context.Context, actor models.Actor, id int) error {
	team, err := loadTeam(ctx, s.Deps, id)
	if err != nil {
		return err
	}
	if err := requireTeamOwner(actor, team); err != nil {
		return err
	}
	regs, err := s.Registrations.ListActiveByTeam(ctx, id)
	if err != nil {
		return err
	}
	if len(regs) > 0 {
		return fmt.Errorf("%w: team is registered in %d tournament(s)", ErrTeamInUse, len(regs))
	}
	if err := s.Teams.Delete(ctx, id); err != nil {
		return mapTeamRepoError(err)
	}
	s.inv.Team(ctx, id)
	s.Logger.InfoContext(ctx, "team deleted", slog.Int("team_id", id), slog.Int("actor_id", actor.UserID))
	return nil
}

func (s *teamService) AddPlayer(ctx context.Context, actor models.Actor, teamID int, input AddPlayerInput) (*models.Player, error) {
	team, err := loadTeam(ctx, s.Deps, teamID)
	if err != nil {
		return nil, err
	}
	if err := requireTeamOwner(actor, team); err != nil {
		return nil, err
	}
	p := &models.Player{
		TeamID:      teamID,
		Name:        input.Name,
		Position:    input.Position,
		ShirtNumber: input.ShirtNumber,
		Status:      input.Status,
	}
	if err := ValidatePlayer(p); err != nil {
		return nil, err
	}
	if err := s.Players.Create(ctx, p); err != nil {
		return nil, mapPlayerRepoError(err)
	}
	s.inv.Team(ctx, teamID)
	return p, nil
}

func (s *teamService) UpdatePlayerStatus(ctx context.Context, actor models.Actor, playerID int, status models.PlayerStatus) (*models.Player, error) {
	if !status.IsValid() {
		return nil, fmt.Errorf("%w: unknown player status %q", ErrPlayerInvalid, status)
	}
	p, err := s.Players.GetByID(ctx, playerID)
	if err != nil {
		return nil, mapPlayerRepoError(err)
	}
	team, err := loadTeam(ctx, s.Deps, p.TeamID)
	if err != nil {
		return nil, err
	}
	if err := requireTeamOwner(actor, team); err != nil {
		return nil, err
	}
	if err := s.Players.UpdateStatus(ctx, playerID, status); err != nil {
		return nil, mapPlayerRepoError(err)
	}
	p.Status = status
	s.inv.Team(ctx, p.TeamID)
	s.Logger.InfoContext(ctx, "player status changed", slog.Int("player_id", playerID), slog.String("status", string(status)))
	return p, nil
}

// TeamStats aggregates the team's completed matches in a tournament.
func (s *teamService) TeamStats(ctx context.Context, teamID, tournamentID int) (*models.TeamStats, error) {
	key := cache.TeamStatsKey(teamID, tournamentID)
	return cache.GetOrCreate(ctx, s.Cache, key, cache.StatsTTL, func(ctx context.Context) (*models.TeamStats, error) {
		if _, err := loadTeam(ctx, s.Deps, teamID); err != nil {
			return nil, err
		}
		completed := models.MatchCompleted
		matches, err := s.Matches.ListByTournament(ctx, tournamentID, &completed)
		if err != nil {
			return nil, fmt.Errorf("failed to list matches: %w", err)
		}

		stats := &models.TeamStats{TeamID: teamID, TournamentID: tournamentID}
		var played []models.Match
		for _, m := range matches {
			if !m.HasTeam(teamID) || m.HomeScore == nil || m.AwayScore == nil {
				continue
			}
			played = append(played, m)
			scored, conceded := *m.HomeScore, *m.AwayScore
			if m.AwayTeamID == teamID {
				scored, conceded = conceded, scored
			}
			stats.Played++
			stats.GoalsFor += scored
			stats.GoalsAgainst += conceded
			switch {
			case scored > conceded:
				stats.Wins++
			case scored < conceded:
				stats.Losses++
			default:
				stats.Draws++
			}
		}

		cards := make([]models.TeamStats, len(played))
		g, gctx := errgroup.WithContext(ctx)
		g.SetLimit(statsLoadLimit)
		for i, m := range played {
			i, m := i, m
			g.Go(func() error {
				events, err := s.Events.ListByMatch(gctx, nil, m.ID)
				if err != nil {
					return fmt.Errorf("failed to load events of match %d: %w", m.ID, err)
				}
				for _, ev := range events {
					if ev.TeamID != teamID {
						continue
					}
					switch ev.EventType {
					case models.EventYellowCard:
						cards[i].YellowCards++
					case models.EventRedCard:
						cards[i].RedCards++
					}
				}
				return nil
			})
		}
		if err := g.Wait(); err != nil {
			return nil, err
		}
		for _, c := range cards {
			stats.YellowCards += c.YellowCards
			stats.RedCards += c.RedCards
		}
		return stats, nil
	})
}

func mapTeamRepoError(err error) error {
	switch {
	case errors.Is(err, repositories.ErrTeamNotFound):
		return ErrTeamNotFound
	case errors.Is(err, repositories.ErrTeamInUse):
		return ErrTeamInUse
	case errors.Is(err, repositories.ErrTeamOwnerInvalid):
		return fmt.Errorf("%w: owner does not exist", ErrValidation)
	default:
		return err
	}
}

func mapPlayerRepoError(err error) error {
	switch {
	case errors.Is(err, repositories.ErrPlayerNotFound):
		return ErrPlayerNotFound
	case errors.Is(err, repositories.ErrPlayerShirtConflict):
		return ErrShirtNumberTaken
	case errors.Is(err, repositories.ErrPlayerTeamInvalid):
		return ErrTeamNotFound
	default:
		return err
	}
}
