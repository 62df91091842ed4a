// Package store provides the durable, partitioned local store backing the
// offline cache and the pending mutation queue.
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"

	"github.com/pritampani/UnivMarket/internal/apperr"
)

const dbFileName = "univmarket.db"

// Record is a single row in a partition: a primary key plus the entity's
// JSON payload. Secondary index lookups read fields out of the payload.
type Record struct {
	ID      string
	Payload json.RawMessage
}

// NewRecord marshals v into a Record with the given id.
func NewRecord(id string, v any) (Record, error) {
	payload, err := json.Marshal(v)
	if err != nil {
		return Record{}, fmt.Errorf("marshal record %s: %w", id, err)
	}
	return Record{ID: id, Payload: payload}, nil
}

// Store is the structured local store. All partitions live in one SQLite
// database file under the data directory.
type Store struct {
	db *sql.DB
}

// Open opens (and if necessary creates) the local store, initializing all
// partitions and their secondary indexes. It is safe to call from multiple
// components; the single-writer connection serializes the schema upgrade.
func Open(dataDir string) (*Store, error) {
	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		return nil, apperr.Wrap(apperr.ErrStorageUnavailable, "create data directory", err)
	}

	dbPath := filepath.Join(dataDir, dbFileName)

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, apperr.Wrap(apperr.ErrStorageUnavailable, "open database", err)
	}

	// SQLite allows one writer at a time; keep a single connection so
	// overlapping calls interleave instead of failing with SQLITE_BUSY.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if _, err := db.Exec("PRAGMA journal_mode=WAL;"); err != nil {
		db.Close()
		return nil, apperr.Wrap(apperr.ErrStorageUnavailable, "enable WAL mode", err)
	}
	if _, err := db.Exec("PRAGMA foreign_keys=ON;"); err != nil {
		db.Close()
		return nil, apperr.Wrap(apperr.ErrStorageUnavailable, "enable foreign keys", err)
	}

	if err := upgradeSchema(db); err != nil {
		db.Close()
		return nil, apperr.Wrap(apperr.ErrStorageUnavailable, "initialize partitions", err)
	}

	return &Store{db: db}, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

// Put inserts or overwrites a record by primary key. Last write wins.
func (s *Store) Put(ctx context.Context, p Partition, rec Record) error {
	if _, ok := specFor(p); !ok {
		return apperr.New(apperr.ErrUnknownPartition, string(p))
	}

	query := fmt.Sprintf(`INSERT INTO %s (id, payload) VALUES (?, ?)
		ON CONFLICT(id) DO UPDATE SET payload = excluded.payload`, p)
	if _, err := s.db.ExecContext(ctx, query, rec.ID, string(rec.Payload)); err != nil {
		return apperr.Wrap(apperr.ErrWriteFailed, fmt.Sprintf("put %s into %s", rec.ID, p), err)
	}
	return nil
}

// Get returns the record with the given id, or nil when absent. A missing
// key is a normal empty result, not an error.
func (s *Store) Get(ctx context.Context, p Partition, id string) (*Record, error) {
	if _, ok := specFor(p); !ok {
		return nil, apperr.New(apperr.ErrUnknownPartition, string(p))
	}

	query := fmt.Sprintf("SELECT id, payload FROM %s WHERE id = ?", p)

	var rec Record
	var payload string
	err := s.db.QueryRowContext(ctx, query, id).Scan(&rec.ID, &payload)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, apperr.Wrap(apperr.ErrReadFailed, fmt.Sprintf("get %s from %s", id, p), err)
	}
	rec.Payload = json.RawMessage(payload)
	return &rec, nil
}

// GetAll returns every record in the partition in insertion (rowid) order.
func (s *Store) GetAll(ctx context.Context, p Partition) ([]Record, error) {
	if _, ok := specFor(p); !ok {
		return nil, apperr.New(apperr.ErrUnknownPartition, string(p))
	}

	query := fmt.Sprintf("SELECT id, payload FROM %s ORDER BY rowid", p)
	return s.queryRecords(ctx, p, query)
}

// QueryByIndex returns all records whose indexed payload field equals value.
// No match is a normal empty result. The field must be one of the
// partition's declared index fields.
func (s *Store) QueryByIndex(ctx context.Context, p Partition, field string, value any) ([]Record, error) {
	spec, ok := specFor(p)
	if !ok {
		return nil, apperr.New(apperr.ErrUnknownPartition, string(p))
	}

	indexed := false
	for _, f := range spec.fields {
		if f == field {
			indexed = true
			break
		}
	}
	if !indexed {
		return nil, apperr.New(apperr.ErrUnknownIndex, fmt.Sprintf("%s.%s", p, field))
	}

	query := fmt.Sprintf(
		"SELECT id, payload FROM %s WHERE json_extract(payload, '$.%s') = ? ORDER BY rowid",
		p, field,
	)
	return s.queryRecords(ctx, p, query, indexValue(value))
}

// Delete removes a record. Deleting an absent id is a no-op.
func (s *Store) Delete(ctx context.Context, p Partition, id string) error {
	if _, ok := specFor(p); !ok {
		return apperr.New(apperr.ErrUnknownPartition, string(p))
	}

	query := fmt.Sprintf("DELETE FROM %s WHERE id = ?", p)
	if _, err := s.db.ExecContext(ctx, query, id); err != nil {
		return apperr.Wrap(apperr.ErrWriteFailed, fmt.Sprintf("delete %s from %s", id, p), err)
	}
	return nil
}

// Clear removes every record in the partition.
func (s *Store) Clear(ctx context.Context, p Partition) error {
	if _, ok := specFor(p); !ok {
		return apperr.New(apperr.ErrUnknownPartition, string(p))
	}

	query := fmt.Sprintf("DELETE FROM %s", p)
	if _, err := s.db.ExecContext(ctx, query); err != nil {
		return apperr.Wrap(apperr.ErrWriteFailed, fmt.Sprintf("clear %s", p), err)
	}
	return nil
}

// ReplaceAll atomically replaces the partition's contents with recs. Readers
// observe either the old snapshot or the new one, never a mix.
func (s *Store) ReplaceAll(ctx context.Context, p Partition, recs []Record) error {
	if _, ok := specFor(p); !ok {
		return apperr.New(apperr.ErrUnknownPartition, string(p))
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return apperr.Wrap(apperr.ErrWriteFailed, fmt.Sprintf("begin replace of %s", p), err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, fmt.Sprintf("DELETE FROM %s", p)); err != nil {
		return apperr.Wrap(apperr.ErrWriteFailed, fmt.Sprintf("clear %s", p), err)
	}

	insert := fmt.Sprintf("INSERT INTO %s (id, payload) VALUES (?, ?)", p)
	for _, rec := range recs {
		if _, err := tx.ExecContext(ctx, insert, rec.ID, string(rec.Payload)); err != nil {
			return apperr.Wrap(apperr.ErrWriteFailed, fmt.Sprintf("put %s into %s", rec.ID, p), err)
		}
	}

	if err := tx.Commit(); err != nil {
		return apperr.Wrap(apperr.ErrWriteFailed, fmt.Sprintf("commit replace of %s", p), err)
	}
	return nil
}

// Count returns the number of records in the partition.
func (s *Store) Count(ctx context.Context, p Partition) (int, error) {
	if _, ok := specFor(p); !ok {
		return 0, apperr.New(apperr.ErrUnknownPartition, string(p))
	}

	var n int
	query := fmt.Sprintf("SELECT COUNT(*) FROM %s", p)
	if err := s.db.QueryRowContext(ctx, query).Scan(&n); err != nil {
		return 0, apperr.Wrap(apperr.ErrReadFailed, fmt.Sprintf("count %s", p), err)
	}
	return n, nil
}

func (s *Store) queryRecords(ctx context.Context, p Partition, query string, args ...any) ([]Record, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, apperr.Wrap(apperr.ErrReadFailed, fmt.Sprintf("scan %s", p), err)
	}
	defer rows.Close()

	recs := []Record{}
	for rows.Next() {
		var rec Record
		var payload string
		if err := rows.Scan(&rec.ID, &payload); err != nil {
			return nil, apperr.Wrap(apperr.ErrReadFailed, fmt.Sprintf("scan %s row", p), err)
		}
		rec.Payload = json.RawMessage(payload)
		recs = append(recs, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, apperr.Wrap(apperr.ErrReadFailed, fmt.Sprintf("scan %s", p), err)
	}
	return recs, nil
}

// indexValue normalizes Go values to what json_extract yields for them.
// JSON booleans come back from SQLite as 0/1.
func indexValue(v any) any {
	if b, ok := v.(bool); ok {
		if b {
			return 1
		}
		return 0
	}
	return v
}
