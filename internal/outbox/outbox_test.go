// Package outbox tests for the pending mutation queue.
package outbox

import (
	"context"
	"regexp"
	"testing"

	"github.com/pritampani/UnivMarket/internal/apperr"
	"github.com/pritampani/UnivMarket/internal/models"
	"github.com/pritampani/UnivMarket/internal/store"
)

var pendingIDPattern = regexp.MustCompile(`^pending_\d+_[0-9a-z]+$`)

func newTestQueue(t *testing.T) *Queue {
	t.Helper()

	s, err := store.Open(t.TempDir())
	if err != nil {
		t.Fatalf("store.Open() failed: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return NewQueue(s)
}

func TestEnqueueDurabilityRoundTrip(t *testing.T) {
	q := newTestQueue(t)
	ctx := context.Background()

	msg := models.MessageMutation{
		SenderID:   "u1",
		ReceiverID: "u2",
		Content:    "is the textbook still available?",
	}

	created, err := q.EnqueueMessage(ctx, msg)
	if err != nil {
		t.Fatalf("EnqueueMessage failed: %v", err)
	}

	if !pendingIDPattern.MatchString(created.ID) {
		t.Errorf("id %q does not match pending_<digits>_<alnum>", created.ID)
	}
	if created.Attempts != 0 {
		t.Errorf("expected attempts 0, got %d", created.Attempts)
	}
	if created.PendingSince.IsZero() {
		t.Error("expected pendingSince to be stamped")
	}

	pending, err := q.ListPending(ctx, models.KindMessage)
	if err != nil {
		t.Fatalf("ListPending failed: %v", err)
	}
	if len(pending) != 1 {
		t.Fatalf("expected 1 pending message, got %d", len(pending))
	}

	got, err := pending[0].Message()
	if err != nil {
		t.Fatalf("payload decode failed: %v", err)
	}
	if *got != msg {
		t.Errorf("payload round-trip mismatch: %+v != %+v", *got, msg)
	}
}

func TestEnqueueGeneratesUniqueIDs(t *testing.T) {
	q := newTestQueue(t)
	ctx := context.Background()

	seen := map[string]bool{}
	for i := 0; i < 25; i++ {
		m, err := q.EnqueueMessage(ctx, models.MessageMutation{SenderID: "u1", ReceiverID: "u2", Content: "hi"})
		if err != nil {
			t.Fatalf("enqueue %d failed: %v", i, err)
		}
		if seen[m.ID] {
			t.Fatalf("duplicate id generated: %s", m.ID)
		}
		seen[m.ID] = true
	}
}

func TestKindIsolation(t *testing.T) {
	q := newTestQueue(t)
	ctx := context.Background()

	if _, err := q.EnqueueMessage(ctx, models.MessageMutation{SenderID: "u1", ReceiverID: "u2", Content: "hi"}); err != nil {
		t.Fatalf("EnqueueMessage failed: %v", err)
	}

	listings, err := q.ListPending(ctx, models.KindListing)
	if err != nil {
		t.Fatalf("ListPending(listing) failed: %v", err)
	}
	if len(listings) != 0 {
		t.Errorf("message entry leaked into listing queue: %d entries", len(listings))
	}

	messages, err := q.ListPending(ctx, models.KindMessage)
	if err != nil {
		t.Fatalf("ListPending(message) failed: %v", err)
	}
	if len(messages) != 1 {
		t.Errorf("expected 1 message entry, got %d", len(messages))
	}
}

func TestMarkAttemptFailedIncrements(t *testing.T) {
	q := newTestQueue(t)
	ctx := context.Background()

	created, err := q.EnqueueListing(ctx, models.ListingMutation{
		Title:      "Mini fridge",
		Price:      4500,
		Condition:  "used",
		CategoryID: "furniture",
		UserID:     "u1",
	})
	if err != nil {
		t.Fatalf("EnqueueListing failed: %v", err)
	}

	for i := 1; i <= 3; i++ {
		if err := q.MarkAttemptFailed(ctx, models.KindListing, created.ID); err != nil {
			t.Fatalf("MarkAttemptFailed %d failed: %v", i, err)
		}

		pending, err := q.ListPending(ctx, models.KindListing)
		if err != nil {
			t.Fatalf("ListPending failed: %v", err)
		}
		if len(pending) != 1 {
			t.Fatalf("entry disappeared after failure %d", i)
		}
		if pending[0].Attempts != i {
			t.Errorf("expected attempts %d, got %d", i, pending[0].Attempts)
		}
	}
}

func TestMarkAttemptFailedOnAbsentEntry(t *testing.T) {
	q := newTestQueue(t)

	if err := q.MarkAttemptFailed(context.Background(), models.KindMessage, "pending_0_gone"); err != nil {
		t.Errorf("expected no-op for absent entry, got %v", err)
	}
}

func TestRemove(t *testing.T) {
	q := newTestQueue(t)
	ctx := context.Background()

	created, err := q.EnqueueMessage(ctx, models.MessageMutation{SenderID: "u1", ReceiverID: "u2", Content: "hi"})
	if err != nil {
		t.Fatalf("EnqueueMessage failed: %v", err)
	}

	if err := q.Remove(ctx, models.KindMessage, created.ID); err != nil {
		t.Fatalf("Remove failed: %v", err)
	}

	pending, err := q.ListPending(ctx, models.KindMessage)
	if err != nil {
		t.Fatalf("ListPending failed: %v", err)
	}
	if len(pending) != 0 {
		t.Errorf("expected empty queue after remove, got %d", len(pending))
	}
}

func TestListPendingPreservesInsertionOrder(t *testing.T) {
	q := newTestQueue(t)
	ctx := context.Background()

	var ids []string
	for _, content := range []string{"first", "second", "third"} {
		m, err := q.EnqueueMessage(ctx, models.MessageMutation{SenderID: "u1", ReceiverID: "u2", Content: content})
		if err != nil {
			t.Fatalf("enqueue failed: %v", err)
		}
		ids = append(ids, m.ID)
	}

	pending, err := q.ListPending(ctx, models.KindMessage)
	if err != nil {
		t.Fatalf("ListPending failed: %v", err)
	}
	for i, m := range pending {
		if m.ID != ids[i] {
			t.Errorf("position %d: expected %s, got %s", i, ids[i], m.ID)
		}
	}
}

func TestUnknownKind(t *testing.T) {
	q := newTestQueue(t)

	_, err := q.Enqueue(context.Background(), models.Kind("bid"), map[string]any{})
	if !apperr.Is(err, apperr.ErrUnknownKind) {
		t.Errorf("expected UNKNOWN_KIND, got %v", err)
	}
}

func TestStats(t *testing.T) {
	q := newTestQueue(t)
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		if _, err := q.EnqueueMessage(ctx, models.MessageMutation{SenderID: "u1", ReceiverID: "u2", Content: "hi"}); err != nil {
			t.Fatalf("enqueue failed: %v", err)
		}
	}
	if _, err := q.EnqueueListing(ctx, models.ListingMutation{Title: "Desk", CategoryID: "furniture", UserID: "u1"}); err != nil {
		t.Fatalf("enqueue failed: %v", err)
	}

	stats, err := q.Stats(ctx)
	if err != nil {
		t.Fatalf("Stats failed: %v", err)
	}
	if stats[models.KindMessage] != 2 || stats[models.KindListing] != 1 {
		t.Errorf("unexpected stats: %v", stats)
	}
}
