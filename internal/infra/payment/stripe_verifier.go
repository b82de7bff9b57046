package payment

import (
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/stripe/stripe-go/v81"
	"github.com/stripe/stripe-go/v81/webhook"

	"github.com/fortunto2/superduperai-landing-sub000/internal/domain"
	"github.com/fortunto2/superduperai-landing-sub000/internal/domain/model"
	"github.com/fortunto2/superduperai-landing-sub000/internal/domain/ports/adapter"
)

var _ adapter.EventVerifier = (*StripeVerifier)(nil)

// StripeVerifier authenticates webhook payloads against the endpoint's
// signing secret and normalizes checkout.session.completed events.
type StripeVerifier struct {
	secret string
	// allowUnverified accepts payloads without a valid signature. This is
	// an explicit deployment flag for test channels, replacing any
	// hostname-based guessing. Never enable in production.
	allowUnverified bool
	now             func() time.Time
}

func NewStripeVerifier(secret string, allowUnverified bool) *StripeVerifier {
	return &StripeVerifier{secret: secret, allowUnverified: allowUnverified, now: time.Now}
}

func (v *StripeVerifier) VerifyAndParse(payload []byte, sigHeader string) (*model.CheckoutInfo, error) {
	event, err := webhook.ConstructEventWithOptions(payload, sigHeader, v.secret,
		webhook.ConstructEventOptions{IgnoreAPIVersionMismatch: true})
	if err != nil {
		if !v.allowUnverified {
			return nil, fmt.Errorf("%w: %v", domain.ErrInvalidSignature, err)
		}
		if jsonErr := json.Unmarshal(payload, &event); jsonErr != nil {
			return nil, fmt.Errorf("parse unverified event: %w", jsonErr)
		}
	}

	if event.Type != stripe.EventTypeCheckoutSessionCompleted {
		return nil, nil
	}

	var session stripe.CheckoutSession
	if err := json.Unmarshal(event.Data.Raw, &session); err != nil {
		return nil, fmt.Errorf("parse checkout session: %w", err)
	}

	md := session.Metadata
	info := &model.CheckoutInfo{
		EventID:       event.ID,
		SessionID:     session.ID,
		Livemode:      event.Livemode,
		Prompt:        metaStr(md, "prompt"),
		Duration:      metaInt(md, "duration"),
		Resolution:    metaStr(md, "resolution"),
		Style:         metaStr(md, "style"),
		CustomerEmail: session.CustomerEmail,
		ToolSlug:      metaStr(md, "tool_slug", "toolSlug"),
		ToolTitle:     metaStr(md, "tool_title", "toolTitle"),
		VideoCount:    metaInt(md, "video_count", "videoCount"),
		ReceivedAt:    v.now(),
	}
	if info.CustomerEmail == "" {
		info.CustomerEmail = metaStr(md, "customer_email", "customerEmail")
	}
	return info, nil
}

func metaStr(md map[string]string, keys ...string) string {
	for _, k := range keys {
		if v, ok := md[k]; ok && v != "" {
			return v
		}
	}
	return ""
}

func metaInt(md map[string]string, keys ...string) int {
	if s := metaStr(md, keys...); s != "" {
		if n, err := strconv.Atoi(s); err == nil {
			return n
		}
	}
	return 0
}
