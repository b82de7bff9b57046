package model

import "time"

// CheckoutInfo is the normalized view of a payment-completion event.
// Metadata fields are attached upstream when the checkout session is created;
// the webhook receiver only extracts them.
type CheckoutInfo struct {
	EventID       string
	SessionID     string
	Livemode      bool
	Prompt        string
	Duration      int
	Resolution    string
	Style         string
	CustomerEmail string
	ToolSlug      string
	ToolTitle     string
	VideoCount    int
	ReceivedAt    time.Time
}

// WebhookEvent is the audit-log row for one received provider event.
type WebhookEvent struct {
	EventID    string
	EventType  string
	SessionID  string
	Payload    []byte
	ReceivedAt time.Time
}
