// Package watcher implements the polling clients that sit on top of the
// status API and the generation provider: the session watcher a checkout
// success page runs, and the job watcher the job-status page runs.
package watcher

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/fortunto2/superduperai-landing-sub000/internal/domain"
	"github.com/fortunto2/superduperai-landing-sub000/internal/domain/model"
	"github.com/fortunto2/superduperai-landing-sub000/internal/poll"
)

type Outcome string

const (
	// OutcomeRedirect means a job exists to track; follow RedirectURL.
	OutcomeRedirect Outcome = "redirect"
	// OutcomeError carries the server-side failure message.
	OutcomeError Outcome = "error"
	// OutcomeTimeout means the client gave up waiting. The server-side job
	// may still complete later.
	OutcomeTimeout Outcome = "timeout"
)

type Result struct {
	Outcome     Outcome
	FileID      string
	RedirectURL string
	Message     string
}

// StatusFetch retrieves the current session record. It must return
// domain.ErrNotFound while the webhook has not arrived yet.
type StatusFetch func(ctx context.Context) (*model.SessionStatus, error)

// SessionWatcher polls the status API until a job id appears, the record
// turns to error, or the countdown expires.
type SessionWatcher struct {
	fetch    StatusFetch
	interval time.Duration // poll cadence
	wait     time.Duration // wall-clock countdown, independent of server state
	appBase  string

	// onRedirect fires at most once even if repeated responses carry the
	// same file id.
	onRedirect func(url string)
	redirected bool
}

type SessionOption func(*SessionWatcher)

func WithOnRedirect(fn func(url string)) SessionOption {
	return func(w *SessionWatcher) { w.onRedirect = fn }
}

func NewSessionWatcher(fetch StatusFetch, appBase string, interval, wait time.Duration, opts ...SessionOption) *SessionWatcher {
	if interval <= 0 {
		interval = 2 * time.Second
	}
	if wait <= 0 {
		wait = 60 * time.Second
	}
	w := &SessionWatcher{
		fetch:    fetch,
		interval: interval,
		wait:     wait,
		appBase:  strings.TrimRight(appBase, "/"),
	}
	for _, o := range opts {
		o(w)
	}
	return w
}

// Watch blocks until a terminal outcome. Cancelling ctx stops the poll
// loop and the countdown; no timers outlive this call.
func (w *SessionWatcher) Watch(ctx context.Context) (Result, error) {
	ctx, cancel := context.WithTimeout(ctx, w.wait)
	defer cancel()

	rec, err := poll.Until(ctx, w.interval, w.fetchPending, sessionTerminal)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			// Client-only timeout: distinct from any server status.
			return Result{
				Outcome:     OutcomeTimeout,
				RedirectURL: w.appBase + "/support",
				Message:     "generation is taking longer than expected",
			}, nil
		}
		return Result{}, err
	}

	if rec.Status == model.StatusError {
		return Result{
			Outcome:     OutcomeError,
			RedirectURL: w.retryURL(rec),
			Message:     rec.Error,
		}, nil
	}

	url := w.appBase + "/file/" + rec.FileID
	w.redirect(url)
	return Result{Outcome: OutcomeRedirect, FileID: rec.FileID, RedirectURL: url}, nil
}

// fetchPending maps a missing record to "still pending" so polling
// continues until the webhook lands.
func (w *SessionWatcher) fetchPending(ctx context.Context) (*model.SessionStatus, error) {
	rec, err := w.fetch(ctx)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return &model.SessionStatus{Status: model.StatusPending}, nil
		}
		return nil, err
	}
	return rec, nil
}

func sessionTerminal(rec *model.SessionStatus) bool {
	if rec == nil {
		return false
	}
	if rec.Status == model.StatusError {
		return true
	}
	return rec.FileID != ""
}

func (w *SessionWatcher) redirect(url string) {
	if w.redirected {
		return
	}
	w.redirected = true
	if w.onRedirect != nil {
		w.onRedirect(url)
	}
}

func (w *SessionWatcher) retryURL(rec *model.SessionStatus) string {
	if rec.ToolSlug != "" {
		return w.appBase + "/tools/" + rec.ToolSlug
	}
	return w.appBase + "/"
}
