// Package outbox provides the durable queue of user writes awaiting replay
// against the remote service.
package outbox

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/pritampani/UnivMarket/internal/apperr"
	"github.com/pritampani/UnivMarket/internal/logging"
	"github.com/pritampani/UnivMarket/internal/models"
	"github.com/pritampani/UnivMarket/internal/store"
)

// Queue is a stateless layer over the pending-mutation partitions. Entries
// are append/remove only; the only in-place mutation is the attempt counter.
type Queue struct {
	store *store.Store
}

// NewQueue creates a pending mutation queue over the given store.
func NewQueue(s *store.Store) *Queue {
	return &Queue{store: s}
}

// PartitionFor maps a mutation kind to its backing partition.
func PartitionFor(kind models.Kind) (store.Partition, error) {
	switch kind {
	case models.KindMessage:
		return store.PendingMessages, nil
	case models.KindListing:
		return store.PendingListings, nil
	}
	return "", apperr.New(apperr.ErrUnknownKind, string(kind))
}

// Enqueue durably records a user write for later replay and returns the
// created entry. If the underlying put fails the action has no durable
// trace; the error must reach the user as "lost", never as "queued".
func (q *Queue) Enqueue(ctx context.Context, kind models.Kind, payload any) (*models.PendingMutation, error) {
	p, err := PartitionFor(kind)
	if err != nil {
		return nil, err
	}

	raw, err := json.Marshal(payload)
	if err != nil {
		return nil, apperr.Wrap(apperr.ErrEnqueueFailed, "marshal mutation payload", err)
	}

	m := &models.PendingMutation{
		ID:           models.NewPendingID(),
		Kind:         kind,
		Payload:      raw,
		PendingSince: time.Now().UTC(),
		Attempts:     0,
	}

	rec, err := store.NewRecord(m.ID, m)
	if err != nil {
		return nil, apperr.Wrap(apperr.ErrEnqueueFailed, "encode mutation", err)
	}
	if err := q.store.Put(ctx, p, rec); err != nil {
		return nil, apperr.Wrap(apperr.ErrEnqueueFailed, fmt.Sprintf("persist %s mutation", kind), err)
	}

	logging.Log.Info("mutation enqueued",
		zap.String("id", m.ID),
		zap.String("kind", string(kind)),
	)
	return m, nil
}

// EnqueueMessage records a send-message action.
func (q *Queue) EnqueueMessage(ctx context.Context, msg models.MessageMutation) (*models.PendingMutation, error) {
	return q.Enqueue(ctx, models.KindMessage, msg)
}

// EnqueueListing records a create-listing action.
func (q *Queue) EnqueueListing(ctx context.Context, l models.ListingMutation) (*models.PendingMutation, error) {
	return q.Enqueue(ctx, models.KindListing, l)
}

// ListPending returns a snapshot of all pending entries of a kind in
// insertion order. Entries enqueued after the snapshot wait for the next one.
func (q *Queue) ListPending(ctx context.Context, kind models.Kind) ([]models.PendingMutation, error) {
	p, err := PartitionFor(kind)
	if err != nil {
		return nil, err
	}

	recs, err := q.store.GetAll(ctx, p)
	if err != nil {
		return nil, err
	}

	pending := make([]models.PendingMutation, 0, len(recs))
	for _, rec := range recs {
		var m models.PendingMutation
		if err := json.Unmarshal(rec.Payload, &m); err != nil {
			return nil, fmt.Errorf("decode pending mutation %s: %w", rec.ID, err)
		}
		pending = append(pending, m)
	}
	return pending, nil
}

// MarkAttemptFailed increments the attempt counter of an entry, leaving it
// queued. The counter is monotonic until the entry is removed. Marking an
// absent entry is a no-op.
func (q *Queue) MarkAttemptFailed(ctx context.Context, kind models.Kind, id string) error {
	p, err := PartitionFor(kind)
	if err != nil {
		return err
	}

	rec, err := q.store.Get(ctx, p, id)
	if err != nil {
		return err
	}
	if rec == nil {
		return nil
	}

	var m models.PendingMutation
	if err := json.Unmarshal(rec.Payload, &m); err != nil {
		return fmt.Errorf("decode pending mutation %s: %w", id, err)
	}
	m.Attempts++

	updated, err := store.NewRecord(id, &m)
	if err != nil {
		return err
	}
	return q.store.Put(ctx, p, updated)
}

// Remove deletes an entry. Called only after the remote service confirmed
// the replay.
func (q *Queue) Remove(ctx context.Context, kind models.Kind, id string) error {
	p, err := PartitionFor(kind)
	if err != nil {
		return err
	}
	return q.store.Delete(ctx, p, id)
}

// Stats returns the pending entry count per kind.
func (q *Queue) Stats(ctx context.Context) (map[models.Kind]int, error) {
	stats := make(map[models.Kind]int, 2)
	for _, kind := range []models.Kind{models.KindMessage, models.KindListing} {
		p, _ := PartitionFor(kind)
		n, err := q.store.Count(ctx, p)
		if err != nil {
			return nil, err
		}
		stats[kind] = n
	}
	return stats, nil
}
