package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/Dosada05/league-system/lifecycle"
	"github.com/Dosada05/league-system/models"
	"github.com/Dosada05/league-system/notify"
	"github.com/Dosada05/league-system/repositories"
)

// ReconcileStatuses moves every non-terminal tournament to the status its dates
// imply at now. A failure on one tournament does not stop the others; all of
// them are joined into the returned error. Listing failures abort the sweep.
func (s *tournamentService) ReconcileStatuses(ctx context.Context, now time.Time) (ReconcileReport, error) {
	var report ReconcileReport
	started := time.Now()

	tournaments, err := s.Tournaments.ListForReconciliation(ctx)
	if err != nil {
		s.Logger.ErrorContext(ctx, "status sweep aborted", slog.Any("error", err))
		s.Metrics.SweepFinished(time.Since(started), 1)
		return report, fmt.Errorf("failed to list tournaments for reconciliation: %w", err)
	}

	var errs []error
	for _, t := range tournaments {
		if ctxErr := ctx.Err(); ctxErr != nil {
			errs = append(errs, ctxErr)
			break
		}
		report.Checked++

		target, ok := lifecycle.Reconcile(t, now)
		if !ok {
			continue
		}

		err := s.Tournaments.UpdateStatus(ctx, nil, t.ID, t.Status, target, now)
		switch {
		case errors.Is(err, repositories.ErrTournamentStatusConflict):
			// кто-то успел сменить статус вручную; следующий проход посчитает заново
			report.Skipped++
			s.Logger.InfoContext(ctx, "status changed concurrently, skipping",
				slog.Int("tournament_id", t.ID), slog.String("expected", string(t.Status)))
			continue
		case err != nil:
			report.Failed++
			s.Logger.ErrorContext(ctx, "failed to update tournament status",
				slog.Int("tournament_id", t.ID),
				slog.String("from", string(t.Status)),
				slog.String("to", string(target)),
				slog.Any("error", err))
			errs = append(errs, fmt.Errorf("tournament %d: %w", t.ID, err))
			continue
		}

		report.Updated++
		from := t.Status
		t.Status = target
		s.Metrics.StatusTransition(string(from), string(target), "sweep")
		s.inv.Tournament(ctx, t.ID)
		s.Logger.InfoContext(ctx, "tournament status reconciled",
			slog.Int("tournament_id", t.ID), slog.String("from", string(from)), slog.String("to", string(target)))
		s.Notifier.TournamentStatusChanged(ctx, statusChange(t, from, true))
	}

	s.Metrics.SweepFinished(time.Since(started), report.Failed)
	s.Logger.InfoContext(ctx, "status sweep finished",
		slog.Int("checked", report.Checked),
		slog.Int("updated", report.Updated),
		slog.Int("skipped", report.Skipped),
		slog.Int("failed", report.Failed))
	return report, errors.Join(errs...)
}

func statusChange(t *models.Tournament, from models.TournamentStatus, automatic bool) notify.StatusChange {
	return notify.StatusChange{
		TournamentID:   t.ID,
		TournamentName: t.Name,
		OrganizerID:    t.OrganizerID,
		From:           from,
		To:             t.Status,
		Automatic:      automatic,
	}
}
