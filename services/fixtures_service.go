package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/Dosada05/league-system/fixtures"
	"github.com/Dosada05/league-system/models"
	"github.com/Dosada05/league-system/repositories"
)

// GenerateFixtures builds the round-robin calendar for the approved teams and
// stores it. It runs once per tournament: the existing-match check happens under
// a per-tournament advisory lock inside the same transaction as the inserts.
func (s *tournamentService) GenerateFixtures(ctx context.Context, actor models.Actor, tournamentID int) (*fixtures.Schedule, error) {
	t, err := loadTournamentFresh(ctx, s.Deps, tournamentID)
	if err != nil {
		return nil, err
	}
	if err := requireOrganizer(actor, t); err != nil {
		return nil, err
	}
	if t.Status.IsTerminal() {
		return nil, ErrTournamentFinalized
	}

	approved := models.RegistrationApproved
	regs, err := s.Registrations.ListByTournament(ctx, tournamentID, &approved, false)
	if err != nil {
		return nil, fmt.Errorf("failed to load approved teams: %w", err)
	}
	teamIDs := approvedTeamIDs(regs)
	if len(teamIDs) < t.MinTeams || len(teamIDs) < minTeamsAllowed {
		return nil, fmt.Errorf("%w: %d approved, %d required", ErrNotEnoughTeams, len(teamIDs), t.MinTeams)
	}

	schedule, err := fixtures.Generate(fixtures.GenerateParams{
		TournamentID: tournamentID,
		TeamIDs:      teamIDs,
		Now:          s.Clock.Now(),
	})
	if err != nil {
		return nil, wrap(ErrValidation, err)
	}

	err = s.Tx.InTx(ctx, func(exec repositories.SQLExecutor) error {
		if err := s.Tournaments.LockForFixtures(ctx, exec, tournamentID); err != nil {
			return err
		}
		existing, err := s.Matches.CountByTournament(ctx, exec, tournamentID)
		if err != nil {
			return err
		}
		if existing > 0 {
			return fmt.Errorf("%w (%d matches)", ErrFixturesExist, existing)
		}
		for i := range schedule.Matches {
			if err := s.Matches.Create(ctx, exec, &schedule.Matches[i]); err != nil {
				return fmt.Errorf("failed to save fixture %d: %w", i+1, err)
			}
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, ErrFixturesExist) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to generate fixtures: %w", err)
	}

	s.inv.Tournament(ctx, tournamentID)
	s.Logger.InfoContext(ctx, "fixtures generated",
		slog.Int("tournament_id", tournamentID),
		slog.Int("teams", len(teamIDs)),
		slog.Int("rounds", schedule.Rounds),
		slog.Int("matches", len(schedule.Matches)),
		slog.Int("byes", len(schedule.Byes)))
	return schedule, nil
}
