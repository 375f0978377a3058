package payment

import (
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"
)

const testSecret = "whsec_test_secret"

func TestConstructEventAcceptsValidSignature(t *testing.T) {
	body := []byte(`{"id":"evt_1","type":"checkout.session.completed","data":{"object":{"id":"cs_test_1","payment_status":"paid","metadata":{"userId":"7","addressId":"3"}}}}`)
	header := SignPayload(body, testSecret, time.Now())

	event, err := ConstructEvent(body, header, testSecret)
	if err != nil {
		t.Fatalf("ConstructEvent: %v", err)
	}
	if event.Type != EventCheckoutSessionCompleted {
		t.Errorf("type = %q", event.Type)
	}
	session, err := event.Session()
	if err != nil {
		t.Fatalf("Session: %v", err)
	}
	if session.ID != "cs_test_1" || session.PaymentStatus != PaymentStatusPaid {
		t.Errorf("session = %+v", session)
	}
}

// A signature computed over the original bytes must not validate a payload
// that was decoded and re-encoded, even when the JSON is semantically equal.
func TestVerifySignatureRejectsReserializedBody(t *testing.T) {
	original := []byte(`{"id": "evt_1",  "type": "checkout.session.completed"}`)
	header := SignPayload(original, testSecret, time.Now())

	var decoded map[string]any
	if err := json.Unmarshal(original, &decoded); err != nil {
		t.Fatal(err)
	}
	reserialized, err := json.Marshal(decoded)
	if err != nil {
		t.Fatal(err)
	}
	if string(reserialized) == string(original) {
		t.Fatal("test payload must not survive re-serialization byte-identically")
	}

	if err := VerifySignature(reserialized, header, testSecret, DefaultTolerance, time.Now()); !errors.Is(err, ErrBadSignature) {
		t.Fatalf("err = %v, want ErrBadSignature", err)
	}
	if err := VerifySignature(original, header, testSecret, DefaultTolerance, time.Now()); err != nil {
		t.Fatalf("original body should verify: %v", err)
	}
}

func TestVerifySignatureRejectsWrongSecret(t *testing.T) {
	body := []byte(`{"id":"evt_1"}`)
	header := SignPayload(body, "whsec_other", time.Now())

	if err := VerifySignature(body, header, testSecret, DefaultTolerance, time.Now()); !errors.Is(err, ErrBadSignature) {
		t.Fatalf("err = %v, want ErrBadSignature", err)
	}
}

func TestVerifySignatureRejectsStaleTimestamp(t *testing.T) {
	body := []byte(`{"id":"evt_1"}`)
	header := SignPayload(body, testSecret, time.Now().Add(-10*time.Minute))

	if err := VerifySignature(body, header, testSecret, DefaultTolerance, time.Now()); !errors.Is(err, ErrStaleTimestamp) {
		t.Fatalf("err = %v, want ErrStaleTimestamp", err)
	}
}

func TestVerifySignatureRejectsMalformedHeader(t *testing.T) {
	body := []byte(`{"id":"evt_1"}`)
	for _, header := range []string{"", "t=abc,v1=00", "v1=00", "t=123"} {
		if err := VerifySignature(body, header, testSecret, DefaultTolerance, time.Now()); !errors.Is(err, ErrInvalidSignature) {
			t.Errorf("header %q: err = %v, want ErrInvalidSignature", header, err)
		}
	}
}

func TestVerifySignatureAcceptsRotatedSecret(t *testing.T) {
	body := []byte(`{"id":"evt_1"}`)
	now := time.Now()
	// header carries two v1 entries, one per secret
	old := SignPayload(body, "whsec_old", now)
	current := SignPayload(body, testSecret, now)
	_, currentSig, _ := strings.Cut(current, ",v1=")
	header := old + ",v1=" + currentSig

	if err := VerifySignature(body, header, testSecret, DefaultTolerance, now); err != nil {
		t.Fatalf("rotated header should verify: %v", err)
	}
}

func TestParseMetadata(t *testing.T) {
	meta, err := ParseMetadata(map[string]string{"userId": "7", "addressId": "3"})
	if err != nil {
		t.Fatalf("ParseMetadata: %v", err)
	}
	if meta.UserID != 7 || meta.AddressID != 3 {
		t.Errorf("meta = %+v", meta)
	}

	bad := []map[string]string{
		{},
		{"userId": "7"},
		{"userId": "x", "addressId": "3"},
		{"userId": "0", "addressId": "3"},
		{"userId": "7", "addressId": "-1"},
	}
	for _, raw := range bad {
		if _, err := ParseMetadata(raw); err == nil {
			t.Errorf("ParseMetadata(%v) should fail", raw)
		}
	}
}
