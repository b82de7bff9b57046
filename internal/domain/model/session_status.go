package model

import "time"

type Status string

const (
	StatusPending    Status = "pending"
	StatusProcessing Status = "processing"
	StatusCompleted  Status = "completed"
	StatusError      Status = "error"
)

// rank orders statuses along the pending -> processing -> terminal lattice.
// Terminal states share the highest rank so neither can replace the other.
func (s Status) rank() int {
	switch s {
	case StatusPending:
		return 0
	case StatusProcessing:
		return 1
	case StatusCompleted, StatusError:
		return 2
	}
	return -1
}

func (s Status) Valid() bool { return s.rank() >= 0 }

func (s Status) Terminal() bool { return s == StatusCompleted || s == StatusError }

// CanAdvance reports whether a record may move from s to next.
// Transitions never regress; re-writing the same status is allowed so
// retried updates stay idempotent.
func (s Status) CanAdvance(next Status) bool {
	if !s.Valid() || !next.Valid() {
		return false
	}
	if s == next {
		return true
	}
	if s.Terminal() {
		return false
	}
	return next.rank() > s.rank()
}

// SessionStatus is the record bridging webhook delivery and client polling,
// keyed by the payment provider's checkout session id.
type SessionStatus struct {
	Status    Status    `json:"status"`
	FileID    string    `json:"fileId,omitempty"`
	Error     string    `json:"error,omitempty"`
	Timestamp time.Time `json:"timestamp"`
	ToolSlug  string    `json:"toolSlug,omitempty"`
	ToolTitle string    `json:"toolTitle,omitempty"`
}

// StatusUpdate is a partial mutation applied by read-modify-write.
// Nil fields are left untouched.
type StatusUpdate struct {
	Status *Status
	FileID *string
	Error  *string
}

// Apply merges u into a copy of rec, refreshing the timestamp.
// FileID is set at most once and never cleared.
func (u StatusUpdate) Apply(rec SessionStatus, now time.Time) SessionStatus {
	if u.Status != nil {
		rec.Status = *u.Status
	}
	if u.FileID != nil && rec.FileID == "" && *u.FileID != "" {
		rec.FileID = *u.FileID
	}
	if u.Error != nil {
		rec.Error = *u.Error
	}
	rec.Timestamp = now
	return rec
}
