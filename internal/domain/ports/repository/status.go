package repository

import (
	"context"

	"github.com/fortunto2/superduperai-landing-sub000/internal/domain/model"
)

// StatusRepository persists session status records keyed by checkout
// session id, with a fixed retention window.
type StatusRepository interface {
	// Store unconditionally overwrites the record and refreshes its expiry.
	Store(ctx context.Context, sessionID string, rec model.SessionStatus) error
	// Get returns domain.ErrNotFound for unknown sessions.
	Get(ctx context.Context, sessionID string) (*model.SessionStatus, error)
	// Update applies a partial mutation via read-modify-write. Missing
	// records are a no-op; regressions of a terminal status are refused.
	Update(ctx context.Context, sessionID string, upd model.StatusUpdate) error
	// FileIDForSession resolves the secondary session -> fileId mapping.
	FileIDForSession(ctx context.Context, sessionID string) (string, error)
	// ScanSessions visits every known session id. Used by the reconciler.
	ScanSessions(ctx context.Context, visit func(sessionID string) error) error
}

// IdempotencyRepository records which provider event ids were already
// processed, sharing the status store's retention window.
type IdempotencyRepository interface {
	// ClaimEvent returns true exactly once per event id.
	ClaimEvent(ctx context.Context, eventID string) (bool, error)
	// ReleaseEvent frees a claimed id so a redelivery can claim it again.
	ReleaseEvent(ctx context.Context, eventID string) error
}

// EventLogRepository is the optional durable audit trail of received events.
type EventLogRepository interface {
	// Record inserts once per event id; replays are not an error.
	Record(ctx context.Context, ev *model.WebhookEvent) error
	ListRecent(ctx context.Context, limit int) ([]*model.WebhookEvent, error)
}
