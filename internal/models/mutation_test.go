package models

import (
	"encoding/json"
	"testing"
	"time"
)

func TestParseKind(t *testing.T) {
	for _, valid := range []string{"message", "listing"} {
		kind, err := ParseKind(valid)
		if err != nil {
			t.Fatalf("ParseKind(%q) returned error: %v", valid, err)
		}
		if string(kind) != valid {
			t.Errorf("ParseKind(%q) = %q", valid, kind)
		}
	}

	if _, err := ParseKind("bid"); err == nil {
		t.Error("ParseKind accepted an unknown kind")
	}
	if _, err := ParseKind(""); err == nil {
		t.Error("ParseKind accepted an empty kind")
	}
}

func TestTypedDecodersRejectKindMismatch(t *testing.T) {
	payload, _ := json.Marshal(MessageMutation{SenderID: "u1", ReceiverID: "u2", Content: "hi"})
	m := PendingMutation{ID: NewPendingID(), Kind: KindMessage, Payload: payload}

	msg, err := m.Message()
	if err != nil {
		t.Fatalf("Message() failed on a message mutation: %v", err)
	}
	if msg.Content != "hi" {
		t.Errorf("unexpected content %q", msg.Content)
	}

	if _, err := m.Listing(); err == nil {
		t.Error("Listing() accepted a message mutation")
	}
}

func TestProductCreatedAtTime(t *testing.T) {
	ts := time.Date(2025, 5, 12, 9, 30, 0, 0, time.UTC)
	p := Product{ID: "p1", CreatedAt: ts.UnixMilli()}

	if got := p.CreatedAtTime().UTC(); !got.Equal(ts) {
		t.Errorf("CreatedAtTime() = %v, want %v", got, ts)
	}
}
