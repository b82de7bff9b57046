package redis

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"github.com/fortunto2/superduperai-landing-sub000/internal/domain"
	"github.com/fortunto2/superduperai-landing-sub000/internal/domain/model"
	"github.com/fortunto2/superduperai-landing-sub000/internal/domain/ports/repository"
)

var _ repository.StatusRepository = (*StatusRepo)(nil)
var _ repository.IdempotencyRepository = (*StatusRepo)(nil)

const (
	statusKeyPrefix  = "webhook:"
	sessionKeyPrefix = "session:"
	eventKeyPrefix   = "event:"
)

// StatusRepo bridges webhook delivery and client polling. One writer
// (the webhook receiver) then many readers; no locking needed.
type StatusRepo struct {
	client RedisClient
	ttl    time.Duration
	now    func() time.Time
}

func NewStatusRepo(client RedisClient, ttl time.Duration) *StatusRepo {
	if ttl <= 0 {
		ttl = 30 * 24 * time.Hour
	}
	return &StatusRepo{client: client, ttl: ttl, now: time.Now}
}

func statusKey(sessionID string) string  { return statusKeyPrefix + sessionID }
func sessionKey(sessionID string) string { return sessionKeyPrefix + sessionID }
func eventKey(eventID string) string     { return eventKeyPrefix + eventID }

func (r *StatusRepo) Store(ctx context.Context, sessionID string, rec model.SessionStatus) error {
	if sessionID == "" {
		return domain.ErrInvalidArgument
	}
	if rec.Timestamp.IsZero() {
		rec.Timestamp = r.now()
	}
	data, err := json.Marshal(rec)
	if err != nil {
		return err
	}
	if err := r.client.Set(ctx, statusKey(sessionID), data, r.ttl); err != nil {
		return err
	}
	// Secondary mapping is a read optimization only; primary stays the
	// source of truth if this write is lost.
	if rec.FileID != "" {
		return r.client.Set(ctx, sessionKey(sessionID), rec.FileID, r.ttl)
	}
	return nil
}

func (r *StatusRepo) Get(ctx context.Context, sessionID string) (*model.SessionStatus, error) {
	data, err := r.client.Get(ctx, statusKey(sessionID))
	if err != nil {
		if errors.Is(err, Nil) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	var rec model.SessionStatus
	if err := json.Unmarshal([]byte(data), &rec); err != nil {
		return nil, err
	}
	return &rec, nil
}

// Update is read-modify-write. A missing record is a no-op rather than a
// create, so a racing update can never resurrect an expired session.
func (r *StatusRepo) Update(ctx context.Context, sessionID string, upd model.StatusUpdate) error {
	rec, err := r.Get(ctx, sessionID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil
		}
		return err
	}
	if upd.Status != nil && !rec.Status.CanAdvance(*upd.Status) {
		return domain.ErrStatusRegression
	}
	next := upd.Apply(*rec, r.now())
	return r.Store(ctx, sessionID, next)
}

func (r *StatusRepo) FileIDForSession(ctx context.Context, sessionID string) (string, error) {
	fileID, err := r.client.Get(ctx, sessionKey(sessionID))
	if err != nil {
		if !errors.Is(err, Nil) {
			return "", err
		}
		// Fall back to the primary record.
		rec, err := r.Get(ctx, sessionID)
		if err != nil {
			return "", err
		}
		return rec.FileID, nil
	}
	return fileID, nil
}

func (r *StatusRepo) ScanSessions(ctx context.Context, visit func(sessionID string) error) error {
	var cursor uint64
	for {
		keys, next, err := r.client.Scan(ctx, cursor, statusKeyPrefix+"*", 100)
		if err != nil {
			return err
		}
		for _, k := range keys {
			if err := visit(strings.TrimPrefix(k, statusKeyPrefix)); err != nil {
				return err
			}
		}
		if next == 0 {
			return nil
		}
		cursor = next
	}
}

// ClaimEvent marks an event id as seen. The first caller wins; replays of
// the same delivery observe false and skip reprocessing.
func (r *StatusRepo) ClaimEvent(ctx context.Context, eventID string) (bool, error) {
	if eventID == "" {
		return false, domain.ErrInvalidArgument
	}
	return r.client.SetNX(ctx, eventKey(eventID), r.now().UTC().Format(time.RFC3339), r.ttl)
}

// ReleaseEvent frees a claimed event id. Called when processing failed
// before any record was durably written, so the provider's redelivery gets
// a fresh claim instead of a duplicate skip.
func (r *StatusRepo) ReleaseEvent(ctx context.Context, eventID string) error {
	if eventID == "" {
		return domain.ErrInvalidArgument
	}
	return r.client.Del(ctx, eventKey(eventID))
}
