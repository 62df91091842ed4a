package store

import (
	"database/sql"
	"fmt"
)

// Partition names a logical table inside the local store.
type Partition string

const (
	PendingMessages  Partition = "pending_messages"
	PendingListings  Partition = "pending_listings"
	CachedProducts   Partition = "cached_products"
	CachedCategories Partition = "cached_categories"
	UserPreferences  Partition = "user_preferences"
)

// partitionSpec declares a partition's secondary index fields. Index fields
// refer to top-level keys of the record's JSON payload.
type partitionSpec struct {
	name   Partition
	fields []string
}

// partitions is the fixed partition set. New partitions may be appended in a
// later schema version; existing ones are never renamed or migrated.
var partitions = []partitionSpec{
	{PendingMessages, []string{"receiverId", "createdAt"}},
	{PendingListings, []string{"categoryId", "createdAt"}},
	{CachedProducts, []string{"categoryId", "isFeatured", "isSold", "userId", "createdAt"}},
	{CachedCategories, nil},
	{UserPreferences, nil},
}

// schemaVersion is the current schema version, kept in PRAGMA user_version.
const schemaVersion = 1

func specFor(p Partition) (partitionSpec, bool) {
	for _, spec := range partitions {
		if spec.name == p {
			return spec, true
		}
	}
	return partitionSpec{}, false
}

// upgradeSchema applies additive schema steps until the database is at
// schemaVersion. Creating tables and indexes with IF NOT EXISTS keeps the
// upgrade idempotent when several opens race; SQLite serializes the writes.
func upgradeSchema(db *sql.DB) error {
	var current int
	if err := db.QueryRow("PRAGMA user_version").Scan(&current); err != nil {
		return fmt.Errorf("read schema version: %w", err)
	}
	if current >= schemaVersion {
		return nil
	}

	for _, spec := range partitions {
		stmt := fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
			id TEXT PRIMARY KEY,
			payload TEXT NOT NULL
		)`, spec.name)
		if _, err := db.Exec(stmt); err != nil {
			return fmt.Errorf("create partition %s: %w", spec.name, err)
		}

		for _, field := range spec.fields {
			idx := fmt.Sprintf(
				`CREATE INDEX IF NOT EXISTS idx_%s_%s ON %s (json_extract(payload, '$.%s'))`,
				spec.name, field, spec.name, field,
			)
			if _, err := db.Exec(idx); err != nil {
				return fmt.Errorf("create index on %s.%s: %w", spec.name, field, err)
			}
		}
	}

	if _, err := db.Exec(fmt.Sprintf("PRAGMA user_version = %d", schemaVersion)); err != nil {
		return fmt.Errorf("set schema version: %w", err)
	}
	return nil
}
