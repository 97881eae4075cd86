package httpserver

import (
	"context"
	"net/http"

	"github.com/rs/zerolog/log"

	"campus_rentals/internal/app"
)

// BatchRunner runs one saved-search notification batch.
type BatchRunner interface {
	ProcessSavedSearches(ctx context.Context) (app.RunReport, error)
}

type CronConfig struct {
	Secret string
	Runner BatchRunner
	// SetupErr is the reason Runner could not be built (e.g. mail transport
	// misconfigured). The trigger answers 500 while it is set.
	SetupErr error
}

func (h *Handlers) processSavedSearches(w http.ResponseWriter, r *http.Request) {
	if h.Cron.Secret == "" {
		log.Error().Msg("cron trigger called but CRON_SECRET is not configured")
		writeProblem(w, http.StatusInternalServerError, "Internal Server Error", "cron trigger is not configured")
		return
	}
	if !secretMatches(r, h.Cron.Secret) {
		writeProblem(w, http.StatusUnauthorized, "Unauthorized", "")
		return
	}
	if h.Cron.SetupErr != nil || h.Cron.Runner == nil {
		log.Error().Err(h.Cron.SetupErr).Msg("cron trigger called but notifier is not available")
		writeProblem(w, http.StatusInternalServerError, "Internal Server Error", "notifier is not configured")
		return
	}

	report, err := h.Cron.Runner.ProcessSavedSearches(r.Context())
	if err != nil {
		log.Error().Err(err).Msg("saved-search batch failed")
		writeProblem(w, http.StatusInternalServerError, "Internal Server Error", "failed to process saved searches")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "report": report})
}
