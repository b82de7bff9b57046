package web

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/fortunto2/superduperai-landing-sub000/internal/infra/logging"
	"github.com/fortunto2/superduperai-landing-sub000/internal/usecase"
)

// Server wires the webhook receiver and the status API onto one router.
type Server struct {
	webhookUC usecase.WebhookUseCase
	statusUC  usecase.StatusUseCase
	log       *zerolog.Logger
}

func NewServer(webhookUC usecase.WebhookUseCase, statusUC usecase.StatusUseCase, logger *zerolog.Logger) *Server {
	return &Server{webhookUC: webhookUC, statusUC: statusUC, log: logger}
}

// Router builds the chi mux. Status reads are unauthenticated: session ids
// are high-entropy bearer capabilities.
func (s *Server) Router() *chi.Mux {
	r := chi.NewRouter()
	r.Use(s.requestID)

	r.Post("/api/webhooks/stripe", s.handleWebhook)
	r.Get("/api/webhook-status/{sessionID}", s.handleStatus)

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	})
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())
	return r
}

// requestID tags every request with an id for log correlation.
func (s *Server) requestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get("X-Request-Id")
		if id == "" {
			id = uuid.NewString()
		}
		ctx := logging.WithRequestID(r.Context(), id)
		w.Header().Set("X-Request-Id", id)

		start := time.Now()
		next.ServeHTTP(w, r.WithContext(ctx))
		logging.With(ctx, s.log).Debug().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Dur("duration", time.Since(start)).
			Msg("request")
	})
}
