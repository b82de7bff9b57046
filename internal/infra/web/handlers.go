package web

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/fortunto2/superduperai-landing-sub000/internal/domain"
	"github.com/fortunto2/superduperai-landing-sub000/internal/infra/logging"
	"github.com/fortunto2/superduperai-landing-sub000/internal/infra/metrics"
)

// maxWebhookBody bounds the raw event payload read into memory.
const maxWebhookBody = 1 << 20

// handleWebhook consumes one payment-provider delivery. The contract with
// the provider: 200 acknowledges (including ignored and duplicate events,
// so redelivery stops), 400 only for signature failures, 500 for internal
// failures the provider should retry.
func (s *Server) handleWebhook(w http.ResponseWriter, r *http.Request) {
	payload, err := io.ReadAll(io.LimitReader(r.Body, maxWebhookBody))
	if err != nil {
		http.Error(w, "Failed to read body", http.StatusBadRequest)
		return
	}

	err = s.webhookUC.ProcessEvent(r.Context(), payload, r.Header.Get("Stripe-Signature"))
	if err != nil {
		if errors.Is(err, domain.ErrInvalidSignature) {
			http.Error(w, "Invalid signature", http.StatusBadRequest)
			return
		}
		logging.With(r.Context(), s.log).Error().Err(err).Msg("webhook processing failed")
		http.Error(w, "Internal error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_ = json.NewEncoder(w).Encode(map[string]bool{"received": true})
}

// handleStatus serves the current session record. A session unknown to the
// store (webhook not yet delivered, or expired) is a plain 404; the client
// treats that as still pending.
func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionID")

	rec, err := s.statusUC.Get(r.Context(), sessionID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) || errors.Is(err, domain.ErrInvalidArgument) {
			metrics.IncStatusLookup(false)
			http.NotFound(w, r)
			return
		}
		logging.With(r.Context(), s.log).Error().Err(err).Msg("status lookup failed")
		http.Error(w, "Internal error", http.StatusInternalServerError)
		return
	}

	metrics.IncStatusLookup(true)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_ = json.NewEncoder(w).Encode(rec)
}
