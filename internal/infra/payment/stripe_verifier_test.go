package payment

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/fortunto2/superduperai-landing-sub000/internal/domain"
)

const testSecret = "whsec_test_secret"

func signPayload(t *testing.T, payload []byte, secret string) string {
	t.Helper()
	ts := time.Now().Unix()
	mac := hmac.New(sha256.New, []byte(secret))
	fmt.Fprintf(mac, "%d.%s", ts, payload)
	return fmt.Sprintf("t=%d,v1=%s", ts, hex.EncodeToString(mac.Sum(nil)))
}

func checkoutPayload(metadata string) []byte {
	return []byte(`{
		"id": "evt_1",
		"type": "checkout.session.completed",
		"livemode": true,
		"data": {"object": {
			"id": "cs_test_42",
			"customer_email": "buyer@example.com",
			"metadata": ` + metadata + `
		}}
	}`)
}

func TestStripeVerifier_ValidSignature(t *testing.T) {
	v := NewStripeVerifier(testSecret, false)
	payload := checkoutPayload(`{"prompt":"sunset over ocean","duration":"8","resolution":"1280x720","style":"cinematic","tool_slug":"veo","tool_title":"Veo 3","video_count":"1"}`)

	info, err := v.VerifyAndParse(payload, signPayload(t, payload, testSecret))
	if err != nil {
		t.Fatalf("verify: %v", err)
	}
	if info == nil {
		t.Fatal("expected checkout info")
	}
	if info.SessionID != "cs_test_42" || info.EventID != "evt_1" {
		t.Fatalf("id mismatch: %+v", info)
	}
	if info.Prompt != "sunset over ocean" || info.Duration != 8 || info.VideoCount != 1 {
		t.Fatalf("metadata mismatch: %+v", info)
	}
	if info.ToolSlug != "veo" || info.ToolTitle != "Veo 3" {
		t.Fatalf("tool metadata mismatch: %+v", info)
	}
	if info.CustomerEmail != "buyer@example.com" {
		t.Fatalf("email mismatch: %+v", info)
	}
	if !info.Livemode {
		t.Fatal("livemode should carry through")
	}
}

func TestStripeVerifier_InvalidSignature(t *testing.T) {
	v := NewStripeVerifier(testSecret, false)
	payload := checkoutPayload(`{"prompt":"x"}`)

	_, err := v.VerifyAndParse(payload, signPayload(t, payload, "whsec_other"))
	if !errors.Is(err, domain.ErrInvalidSignature) {
		t.Fatalf("want ErrInvalidSignature, got %v", err)
	}

	_, err = v.VerifyAndParse(payload, "")
	if !errors.Is(err, domain.ErrInvalidSignature) {
		t.Fatalf("missing header: want ErrInvalidSignature, got %v", err)
	}
}

func TestStripeVerifier_UnverifiedBypass(t *testing.T) {
	// Explicit test-channel carve-out: bad signature but flag enabled.
	v := NewStripeVerifier(testSecret, true)
	payload := checkoutPayload(`{"prompt":"dunes at dawn"}`)

	info, err := v.VerifyAndParse(payload, "")
	if err != nil {
		t.Fatalf("bypass should parse: %v", err)
	}
	if info == nil || info.Prompt != "dunes at dawn" {
		t.Fatalf("bypass parse mismatch: %+v", info)
	}
}

func TestStripeVerifier_IgnoredEventType(t *testing.T) {
	v := NewStripeVerifier(testSecret, false)
	payload := []byte(`{"id":"evt_2","type":"invoice.paid","livemode":true,"data":{"object":{}}}`)

	info, err := v.VerifyAndParse(payload, signPayload(t, payload, testSecret))
	if err != nil {
		t.Fatalf("verify: %v", err)
	}
	if info != nil {
		t.Fatalf("ignored types should yield nil info, got %+v", info)
	}
}

func TestStripeVerifier_CamelCaseMetadata(t *testing.T) {
	v := NewStripeVerifier(testSecret, false)
	payload := checkoutPayload(`{"prompt":"p","toolSlug":"kling","toolTitle":"Kling","videoCount":"2"}`)

	info, err := v.VerifyAndParse(payload, signPayload(t, payload, testSecret))
	if err != nil {
		t.Fatalf("verify: %v", err)
	}
	if info.ToolSlug != "kling" || info.ToolTitle != "Kling" || info.VideoCount != 2 {
		t.Fatalf("camelCase keys should be accepted: %+v", info)
	}
}
