package handlers

import (
	"log/slog"
	"net/http"

	"github.com/Dosada05/league-system/services"
)

type AdminHandler struct {
	tournamentService services.TournamentService
	clock             services.Clock
	logger            *slog.Logger
}

func NewAdminHandler(ts services.TournamentService, clock services.Clock, logger *slog.Logger) *AdminHandler {
	if clock == nil {
		clock = services.SystemClock()
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &AdminHandler{tournamentService: ts, clock: clock, logger: logger}
}

// Reconcile запускает проход по статусам турниров вне расписания.
func (h *AdminHandler) Reconcile(w http.ResponseWriter, r *http.Request) {
	report, err := h.tournamentService.ReconcileStatuses(r.Context(), h.clock.Now())
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	h.logger.InfoContext(r.Context(), "manual status reconciliation finished",
		slog.Int("checked", report.Checked),
		slog.Int("updated", report.Updated),
		slog.Int("failed", report.Failed))

	respond(w, r, http.StatusOK, jsonResponse{"report": report})
}
