// Package syncer drives eventual consistency between locally queued
// mutations and the remote service once connectivity is available.
package syncer

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"github.com/pritampani/UnivMarket/internal/apperr"
	"github.com/pritampani/UnivMarket/internal/logging"
	"github.com/pritampani/UnivMarket/internal/models"
	"github.com/pritampani/UnivMarket/internal/outbox"
	"github.com/pritampani/UnivMarket/internal/remote"
)

// Background sync task names as delivered by the host platform.
const (
	TaskSyncMessages = "sync-messages"
	TaskSyncListings = "sync-listings"
)

// ReplayFunc replays one pending mutation against the remote service.
// A nil return confirms the mutation; any error leaves it queued.
type ReplayFunc func(ctx context.Context, m *models.PendingMutation) error

// Result summarizes one reconciliation pass for a kind.
type Result struct {
	Kind      models.Kind
	Attempted int
	Replayed  int
	Failed    int
}

// Reconciler drains the pending mutation queue, kind by kind. Each kind has
// its own registered replay function, so adding a mutation kind is a
// Register call rather than new trigger wiring.
type Reconciler struct {
	queue *outbox.Queue

	mu      sync.Mutex
	replays map[models.Kind]ReplayFunc
	running map[models.Kind]*sync.Mutex
}

// NewReconciler creates a reconciler with no kinds registered.
func NewReconciler(q *outbox.Queue) *Reconciler {
	return &Reconciler{
		queue:   q,
		replays: make(map[models.Kind]ReplayFunc),
		running: make(map[models.Kind]*sync.Mutex),
	}
}

// NewForService creates a reconciler with the standard message and listing
// replays wired to the remote service.
func NewForService(q *outbox.Queue, svc remote.Service) *Reconciler {
	r := NewReconciler(q)
	r.Register(models.KindMessage, func(ctx context.Context, m *models.PendingMutation) error {
		msg, err := m.Message()
		if err != nil {
			return err
		}
		_, err = svc.CreateMessage(ctx, *msg)
		return err
	})
	r.Register(models.KindListing, func(ctx context.Context, m *models.PendingMutation) error {
		l, err := m.Listing()
		if err != nil {
			return err
		}
		_, err = svc.CreateListing(ctx, *l)
		return err
	})
	return r
}

// Register binds a replay function to a mutation kind.
func (r *Reconciler) Register(kind models.Kind, fn ReplayFunc) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.replays[kind] = fn
	r.running[kind] = &sync.Mutex{}
}

// Kinds returns the registered kinds.
func (r *Reconciler) Kinds() []models.Kind {
	r.mu.Lock()
	defer r.mu.Unlock()

	kinds := make([]models.Kind, 0, len(r.replays))
	for k := range r.replays {
		kinds = append(kinds, k)
	}
	return kinds
}

// KindForTask maps a background sync task name to its mutation kind.
func KindForTask(task string) (models.Kind, bool) {
	switch task {
	case TaskSyncMessages:
		return models.KindMessage, true
	case TaskSyncListings:
		return models.KindListing, true
	}
	return "", false
}

// RunTask runs the reconciliation pass for a named background sync task.
func (r *Reconciler) RunTask(ctx context.Context, task string) (*Result, error) {
	kind, ok := KindForTask(task)
	if !ok {
		return nil, apperr.New(apperr.ErrUnknownKind, task)
	}
	return r.Run(ctx, kind)
}

// Run drains the current snapshot of pending mutations of one kind. Each
// entry is attempted exactly once: success removes it, failure increments
// its attempt counter and moves on. One entry's failure never aborts the
// batch. Entries enqueued after the snapshot wait for the next trigger.
// Only one pass per kind runs at a time; a concurrent trigger waits.
func (r *Reconciler) Run(ctx context.Context, kind models.Kind) (*Result, error) {
	r.mu.Lock()
	replay, ok := r.replays[kind]
	gate := r.running[kind]
	r.mu.Unlock()
	if !ok {
		return nil, apperr.New(apperr.ErrUnknownKind, string(kind))
	}

	gate.Lock()
	defer gate.Unlock()

	batch, err := r.queue.ListPending(ctx, kind)
	if err != nil {
		return nil, err
	}

	result := &Result{Kind: kind}
	for i := range batch {
		if err := ctx.Err(); err != nil {
			return result, err
		}

		m := &batch[i]
		result.Attempted++

		if err := replay(ctx, m); err != nil {
			result.Failed++
			logging.Log.Warn("replay failed",
				zap.String("id", m.ID),
				zap.String("kind", string(kind)),
				zap.Int("attempts", m.Attempts+1),
				zap.Error(err),
			)
			if markErr := r.queue.MarkAttemptFailed(ctx, kind, m.ID); markErr != nil {
				logging.Log.Error("could not record failed attempt",
					zap.String("id", m.ID),
					zap.Error(markErr),
				)
			}
			continue
		}

		if err := r.queue.Remove(ctx, kind, m.ID); err != nil {
			// The remote write succeeded but the entry is still queued;
			// the next pass will replay it again. Acceptable: creates may
			// duplicate, but user data is never lost.
			logging.Log.Error("could not evict replayed mutation",
				zap.String("id", m.ID),
				zap.Error(err),
			)
			result.Failed++
			continue
		}
		result.Replayed++
	}

	if result.Attempted > 0 {
		logging.Log.Info("reconciliation pass finished",
			zap.String("kind", string(kind)),
			zap.Int("attempted", result.Attempted),
			zap.Int("replayed", result.Replayed),
			zap.Int("failed", result.Failed),
		)
	}
	return result, nil
}

// RunAll runs one pass for every registered kind. Kinds are independent: a
// failure draining one never blocks another, and each pass's error is
// confined to its kind's result.
func (r *Reconciler) RunAll(ctx context.Context) map[models.Kind]*Result {
	results := make(map[models.Kind]*Result)
	for _, kind := range r.Kinds() {
		res, err := r.Run(ctx, kind)
		if err != nil {
			logging.Log.Error("reconciliation pass aborted",
				zap.String("kind", string(kind)),
				zap.Error(err),
			)
			if res == nil {
				res = &Result{Kind: kind}
			}
		}
		results[kind] = res
	}
	return results
}
