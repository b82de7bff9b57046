package sched

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"

	"github.com/fortunto2/superduperai-landing-sub000/internal/domain"
	"github.com/fortunto2/superduperai-landing-sub000/internal/domain/model"
	"github.com/fortunto2/superduperai-landing-sub000/internal/domain/ports/adapter"
	"github.com/fortunto2/superduperai-landing-sub000/internal/domain/ports/repository"
	"github.com/fortunto2/superduperai-landing-sub000/internal/infra/logging"
	"github.com/fortunto2/superduperai-landing-sub000/internal/infra/metrics"
	"github.com/fortunto2/superduperai-landing-sub000/internal/infra/worker"
)

// StatusReconciler periodically scans the status store for sessions stuck
// in processing and finalizes them from the provider's current state. This
// covers crashes between the generate call and the follow-up update, and
// jobs whose completion no client ever polled for.
type StatusReconciler struct {
	store      repository.StatusRepository
	gen        adapter.VideoGenerator
	pool       *worker.Pool
	interval   time.Duration // how often to scan
	staleAfter time.Duration // how old a processing record must be to touch
	log        *zerolog.Logger
	now        func() time.Time
}

func NewStatusReconciler(
	store repository.StatusRepository,
	gen adapter.VideoGenerator,
	pool *worker.Pool,
	interval, staleAfter time.Duration,
	log *zerolog.Logger,
) *StatusReconciler {
	if interval <= 0 {
		interval = time.Minute
	}
	if staleAfter <= 0 {
		staleAfter = 10 * time.Minute
	}
	return &StatusReconciler{
		store:      store,
		gen:        gen,
		pool:       pool,
		interval:   interval,
		staleAfter: staleAfter,
		log:        log,
		now:        time.Now,
	}
}

func (r *StatusReconciler) Start(ctx context.Context) {
	t := time.NewTicker(r.interval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			r.tick(ctx)
		}
	}
}

func (r *StatusReconciler) tick(ctx context.Context) {
	err := r.store.ScanSessions(ctx, func(sessionID string) error {
		return r.pool.Submit(func(ctx context.Context) error {
			return r.reconcile(ctx, sessionID)
		})
	})
	if err != nil {
		r.log.Warn().Err(err).Msg("reconciler: scan failed")
	}
}

// reconcile finalizes a single session if it is stale. Records that are
// fresh, terminal, or gone by the time we look are left alone.
func (r *StatusReconciler) reconcile(ctx context.Context, sessionID string) error {
	rec, err := r.store.Get(ctx, sessionID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil
		}
		return err
	}
	if rec.Status != model.StatusProcessing {
		return nil
	}
	if r.now().Sub(rec.Timestamp) < r.staleAfter {
		return nil
	}

	ctx = logging.WithSessionID(ctx, sessionID)

	if rec.FileID == "" {
		// The generate call never produced a job id and the record is
		// long past the call timeout. Nothing can be tracked anymore.
		metrics.IncReconciled("abandoned")
		r.log.Warn().Str("session_id", sessionID).Msg("reconciler: abandoning jobless session")
		return r.finalize(ctx, sessionID, model.StatusError, "generation did not start")
	}

	f, err := r.gen.GetFile(ctx, rec.FileID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			metrics.IncReconciled("abandoned")
			r.log.Warn().Str("session_id", sessionID).Str("file_id", rec.FileID).
				Msg("reconciler: provider lost the job")
			return r.finalize(ctx, sessionID, model.StatusError, "generation job disappeared")
		}
		return err
	}

	switch {
	case f.Failed():
		metrics.IncReconciled("failed")
		return r.finalize(ctx, sessionID, model.StatusError, "video generation failed")
	case f.Done():
		metrics.IncReconciled("completed")
		r.log.Info().Str("session_id", sessionID).Str("file_id", rec.FileID).
			Msg("reconciler: completing stale session")
		return r.finalize(ctx, sessionID, model.StatusCompleted, "")
	default:
		// Still running at the provider. Refresh the timestamp so the
		// next pass does not re-check it immediately.
		metrics.IncReconciled("still_running")
		st := model.StatusProcessing
		return r.store.Update(ctx, sessionID, model.StatusUpdate{Status: &st})
	}
}

func (r *StatusReconciler) finalize(ctx context.Context, sessionID string, st model.Status, msg string) error {
	upd := model.StatusUpdate{Status: &st}
	if msg != "" {
		upd.Error = &msg
	}
	if err := r.store.Update(ctx, sessionID, upd); err != nil {
		if errors.Is(err, domain.ErrStatusRegression) {
			// Lost the race against the webhook path or another pass.
			return nil
		}
		return err
	}
	return nil
}
