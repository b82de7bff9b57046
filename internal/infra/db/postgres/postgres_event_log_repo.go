package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgconn"
	"github.com/jackc/pgx/v4/pgxpool"

	"github.com/fortunto2/superduperai-landing-sub000/internal/domain/model"
	"github.com/fortunto2/superduperai-landing-sub000/internal/domain/ports/repository"
)

var _ repository.EventLogRepository = (*eventLogRepo)(nil)

// eventLogRepo keeps a durable audit trail of received webhook events.
// Schema:
//
//	CREATE TABLE webhook_events (
//	  event_id    TEXT PRIMARY KEY,
//	  event_type  TEXT NOT NULL,
//	  session_id  TEXT NOT NULL,
//	  payload     JSONB,
//	  received_at TIMESTAMPTZ NOT NULL
//	);
type eventLogRepo struct{ pool *pgxpool.Pool }

func NewEventLogRepo(pool *pgxpool.Pool) *eventLogRepo {
	return &eventLogRepo{pool: pool}
}

const uniqueViolation = "23505"

// Record inserts once per event id; a replayed delivery is not an error.
func (r *eventLogRepo) Record(ctx context.Context, ev *model.WebhookEvent) error {
	const q = `
INSERT INTO webhook_events (event_id, event_type, session_id, payload, received_at)
VALUES ($1,$2,$3,$4,$5);`

	_, err := r.pool.Exec(ctx, q, ev.EventID, ev.EventType, ev.SessionID, ev.Payload, ev.ReceivedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return nil
		}
		return err
	}
	return nil
}

func (r *eventLogRepo) ListRecent(ctx context.Context, limit int) ([]*model.WebhookEvent, error) {
	if limit <= 0 {
		limit = 50
	}
	const q = `
SELECT event_id, event_type, session_id, payload, received_at
FROM webhook_events ORDER BY received_at DESC LIMIT $1;`

	rows, err := r.pool.Query(ctx, q, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*model.WebhookEvent
	for rows.Next() {
		ev := &model.WebhookEvent{}
		if err := rows.Scan(&ev.EventID, &ev.EventType, &ev.SessionID, &ev.Payload, &ev.ReceivedAt); err != nil {
			return nil, err
		}
		out = append(out, ev)
	}
	return out, rows.Err()
}
