package adapter

import "github.com/fortunto2/superduperai-landing-sub000/internal/domain/model"

// EventVerifier authenticates a raw webhook payload against the payment
// provider's signature header and normalizes the interesting events.
type EventVerifier interface {
	// VerifyAndParse returns (nil, nil) for authentic events of types the
	// pipeline deliberately ignores, domain.ErrInvalidSignature when the
	// signature does not check out, and a CheckoutInfo for completed
	// checkout sessions.
	VerifyAndParse(payload []byte, sigHeader string) (*model.CheckoutInfo, error)
}
