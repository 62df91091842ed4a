// Package cache maintains read-through snapshots of remote list data for
// offline display, plus the single user-preferences record.
package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/pritampani/UnivMarket/internal/logging"
	"github.com/pritampani/UnivMarket/internal/store"
)

// PreferencesID is the fixed primary key of the user-preferences record.
const PreferencesID = "userPreferences"

// Manager is a stateless layer over the cached-data partitions. It never
// initiates network calls; callers populate it after a successful live read
// and fall back to it when a live read fails.
type Manager struct {
	store *store.Store
}

// NewManager creates a cache manager over the given store.
func NewManager(s *store.Store) *Manager {
	return &Manager{store: s}
}

// CacheList atomically replaces the partition's contents with items,
// stamping each entry with a cachedAt timestamp. List endpoints return a
// complete snapshot, so replace is clear-then-put-all, never a merge.
func (m *Manager) CacheList(ctx context.Context, p store.Partition, items []store.Record) error {
	if p != store.CachedProducts && p != store.CachedCategories {
		return fmt.Errorf("partition %s is not a list cache", p)
	}

	cachedAt := time.Now().UTC().Format(time.RFC3339)
	stamped := make([]store.Record, 0, len(items))
	for _, item := range items {
		var payload map[string]any
		if err := json.Unmarshal(item.Payload, &payload); err != nil {
			return fmt.Errorf("decode item %s: %w", item.ID, err)
		}
		payload["cachedAt"] = cachedAt

		rec, err := store.NewRecord(item.ID, payload)
		if err != nil {
			return err
		}
		stamped = append(stamped, rec)
	}

	if err := m.store.ReplaceAll(ctx, p, stamped); err != nil {
		return err
	}

	logging.Log.Debug("cache refreshed",
		zap.String("partition", string(p)),
		zap.Int("items", len(stamped)),
	)
	return nil
}

// ReadList returns the current snapshot of the partition. A never-populated
// cache yields an empty slice. There is no staleness check; entries are
// valid until the next CacheList replaces them.
func (m *Manager) ReadList(ctx context.Context, p store.Partition) ([]store.Record, error) {
	if p != store.CachedProducts && p != store.CachedCategories {
		return nil, fmt.Errorf("partition %s is not a list cache", p)
	}
	return m.store.GetAll(ctx, p)
}

// SavePreferences overwrites the preferences record with the given keys and
// a fresh updatedAt stamp.
func (m *Manager) SavePreferences(ctx context.Context, prefs map[string]any) error {
	payload := map[string]any{"id": PreferencesID}
	for k, v := range prefs {
		payload[k] = v
	}
	payload["updatedAt"] = time.Now().UTC().Format(time.RFC3339)

	rec, err := store.NewRecord(PreferencesID, payload)
	if err != nil {
		return err
	}
	return m.store.Put(ctx, store.UserPreferences, rec)
}

// Preferences returns the stored preferences, or nil when never saved.
func (m *Manager) Preferences(ctx context.Context) (map[string]any, error) {
	rec, err := m.store.Get(ctx, store.UserPreferences, PreferencesID)
	if err != nil {
		return nil, err
	}
	if rec == nil {
		return nil, nil
	}

	var prefs map[string]any
	if err := json.Unmarshal(rec.Payload, &prefs); err != nil {
		return nil, fmt.Errorf("decode preferences: %w", err)
	}
	return prefs, nil
}
