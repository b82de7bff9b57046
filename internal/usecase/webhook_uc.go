// File: internal/usecase/webhook_uc.go
package usecase

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/fortunto2/superduperai-landing-sub000/internal/config"
	"github.com/fortunto2/superduperai-landing-sub000/internal/domain"
	"github.com/fortunto2/superduperai-landing-sub000/internal/domain/model"
	"github.com/fortunto2/superduperai-landing-sub000/internal/domain/ports/adapter"
	"github.com/fortunto2/superduperai-landing-sub000/internal/domain/ports/repository"
	"github.com/fortunto2/superduperai-landing-sub000/internal/infra/logging"
	"github.com/fortunto2/superduperai-landing-sub000/internal/infra/metrics"
)

// Compile-time check
var _ WebhookUseCase = (*webhookUC)(nil)

// defaultTestPrompt keeps the generation call path exercisable for
// provider simulator events that carry no metadata.
const defaultTestPrompt = "sunset over ocean"

type WebhookUseCase interface {
	// ProcessEvent turns one raw webhook delivery into a generation call
	// and status store writes. It returns domain.ErrInvalidSignature for
	// unauthenticated payloads and a non-nil error only for failures the
	// payment provider should retry; generation failures are absorbed
	// into an error status record.
	ProcessEvent(ctx context.Context, payload []byte, sigHeader string) error
}

type webhookUC struct {
	store    repository.StatusRepository
	idem     repository.IdempotencyRepository
	events   repository.EventLogRepository // optional; nil disables the audit log
	gen      adapter.VideoGenerator
	verifier adapter.EventVerifier
	defaults config.GenerationDefaults
	timeout  time.Duration
	dev      bool
	log      *zerolog.Logger
}

func NewWebhookUseCase(
	store repository.StatusRepository,
	idem repository.IdempotencyRepository,
	events repository.EventLogRepository,
	gen adapter.VideoGenerator,
	verifier adapter.EventVerifier,
	defaults config.GenerationDefaults,
	timeout time.Duration,
	dev bool,
	logger *zerolog.Logger,
) *webhookUC {
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &webhookUC{
		store:    store,
		idem:     idem,
		events:   events,
		gen:      gen,
		verifier: verifier,
		defaults: defaults,
		timeout:  timeout,
		dev:      dev,
		log:      logger,
	}
}

func (u *webhookUC) ProcessEvent(ctx context.Context, payload []byte, sigHeader string) error {
	defer logging.TraceDuration(u.log, "WebhookUC.ProcessEvent")()

	info, err := u.verifier.VerifyAndParse(payload, sigHeader)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidSignature) {
			metrics.IncWebhookEvent("unknown", "invalid")
			u.log.Warn().Err(err).Msg("webhook signature rejected")
		}
		return err
	}
	if info == nil {
		// Authentic but not a checkout completion; acknowledge and move on.
		metrics.IncWebhookEvent("other", "ignored")
		return nil
	}

	ctx = logging.WithEventID(logging.WithSessionID(ctx, info.SessionID), info.EventID)
	log := logging.With(ctx, u.log)

	if info.SessionID == "" {
		metrics.IncWebhookEvent("checkout.session.completed", "invalid")
		log.Warn().Msg("checkout event without session id")
		return nil
	}

	claimed, err := u.idem.ClaimEvent(ctx, info.EventID)
	if err != nil {
		return fmt.Errorf("claim event: %w", err)
	}
	if !claimed {
		metrics.IncWebhookEvent("checkout.session.completed", "duplicate")
		log.Info().AnErr("reason", domain.ErrDuplicateEvent).Msg("delivery skipped")
		return nil
	}

	if u.events != nil {
		ev := &model.WebhookEvent{
			EventID:    info.EventID,
			EventType:  "checkout.session.completed",
			SessionID:  info.SessionID,
			Payload:    payload,
			ReceivedAt: info.ReceivedAt,
		}
		if err := u.events.Record(ctx, ev); err != nil {
			// Audit is best-effort; it never fails the webhook.
			log.Warn().Err(err).Msg("event audit log write failed")
		}
	}

	if err := u.fillDefaults(info); err != nil {
		metrics.IncWebhookEvent("checkout.session.completed", "invalid")
		log.Warn().Err(err).Msg("provider not called")
		rec := model.SessionStatus{
			Status:    model.StatusError,
			Error:     "Missing required metadata",
			ToolSlug:  info.ToolSlug,
			ToolTitle: info.ToolTitle,
		}
		if err := u.store.Store(ctx, info.SessionID, rec); err != nil {
			u.releaseClaim(ctx, info.EventID, log)
			return fmt.Errorf("store error record: %w", err)
		}
		return nil
	}

	// Mark the session as in flight before touching the provider so
	// pollers see progress even if the call below stalls.
	rec := model.SessionStatus{
		Status:    model.StatusProcessing,
		ToolSlug:  info.ToolSlug,
		ToolTitle: info.ToolTitle,
	}
	if err := u.store.Store(ctx, info.SessionID, rec); err != nil {
		u.releaseClaim(ctx, info.EventID, log)
		return fmt.Errorf("store processing record: %w", err)
	}

	genCtx, cancel := context.WithTimeout(ctx, u.timeout)
	defer cancel()

	fileID, genErr := u.gen.GenerateVideo(genCtx, u.buildRequest(info))
	if genErr != nil {
		metrics.IncWebhookEvent("checkout.session.completed", "error")
		log.Error().Err(genErr).Msg("generation call failed")
		errMsg := genErr.Error()
		st := model.StatusError
		if err := u.store.Update(ctx, info.SessionID, model.StatusUpdate{Status: &st, Error: &errMsg}); err != nil {
			// Already claimed the event; the reconciler will finish the job
			// of surfacing a terminal status.
			log.Error().Err(err).Msg("failed to record generation error")
		}
		return nil
	}

	metrics.IncWebhookEvent("checkout.session.completed", "processed")
	log.Info().Str("file_id", fileID).
		Str("customer", logging.Redact(info.CustomerEmail, u.dev)).
		Msg("generation job accepted")

	if err := u.store.Update(ctx, info.SessionID, model.StatusUpdate{FileID: &fileID}); err != nil {
		log.Error().Err(err).Msg("failed to attach file id to session record")
	}
	return nil
}

// releaseClaim frees the event id after a failed store write. Without it
// the redelivery would be skipped as a duplicate and the event lost.
func (u *webhookUC) releaseClaim(ctx context.Context, eventID string, log *zerolog.Logger) {
	if err := u.idem.ReleaseEvent(ctx, eventID); err != nil {
		log.Error().Err(err).Msg("failed to release event claim")
	}
}

// fillDefaults patches test-channel events; a live event missing required
// metadata gets domain.ErrMissingMetadata.
func (u *webhookUC) fillDefaults(info *model.CheckoutInfo) error {
	if info.Livemode {
		if info.Prompt == "" || info.VideoCount < 1 {
			return domain.ErrMissingMetadata
		}
		return nil
	}
	if info.Prompt == "" {
		info.Prompt = defaultTestPrompt
	}
	if info.VideoCount < 1 {
		info.VideoCount = 1
	}
	return nil
}

func (u *webhookUC) buildRequest(info *model.CheckoutInfo) model.GenerationRequest {
	req := model.GenerationRequest{
		Prompt:               info.Prompt,
		Width:                u.defaults.Width,
		Height:               u.defaults.Height,
		AspectRatio:          u.defaults.AspectRatio,
		Duration:             info.Duration,
		GenerationConfigName: u.defaults.ConfigName,
		FrameRate:            u.defaults.FrameRate,
		BatchSize:            info.VideoCount,
		References:           []string{},
	}
	if w, h, ok := parseResolution(info.Resolution); ok {
		req.Width, req.Height = w, h
	}
	if info.Style != "" {
		req.GenerationConfigName = info.Style
	}
	return req
}

func parseResolution(s string) (w, h int, ok bool) {
	parts := strings.SplitN(strings.ToLower(s), "x", 2)
	if len(parts) != 2 {
		return 0, 0, false
	}
	w, errW := strconv.Atoi(strings.TrimSpace(parts[0]))
	h, errH := strconv.Atoi(strings.TrimSpace(parts[1]))
	if errW != nil || errH != nil || w <= 0 || h <= 0 {
		return 0, 0, false
	}
	return w, h, true
}
