package webhook

import (
	"testing"
)

func TestSignDeterministic(t *testing.T) {
	payload := []byte(`{"shipment_id":1,"awb":"AWB001"}`)

	first := Sign(payload, "secret-key")
	second := Sign(payload, "secret-key")

	if first == "" {
		t.Fatal("expected non-empty signature")
	}
	if first != second {
		t.Fatalf("same payload and secret produced different signatures: %s vs %s", first, second)
	}
}

func TestSignChangesWithPayload(t *testing.T) {
	base := Sign([]byte(`{"shipment_id":1}`), "secret-key")
	changed := Sign([]byte(`{"shipment_id":2}`), "secret-key")

	if base == changed {
		t.Fatal("different payloads produced identical signatures")
	}
}

func TestSignChangesWithSecret(t *testing.T) {
	payload := []byte(`{"shipment_id":1}`)

	if Sign(payload, "key-a") == Sign(payload, "key-b") {
		t.Fatal("different secrets produced identical signatures")
	}
}

func TestSignEmptySecret(t *testing.T) {
	if got := Sign([]byte(`{}`), ""); got != "" {
		t.Fatalf("expected empty signature without secret, got %s", got)
	}
}
