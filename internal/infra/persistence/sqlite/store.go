// Package sqlite persists records as JSON documents in an embedded SQLite file.
// Partial updates are applied in the database with json_patch.
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/dell121212/laberaer/pkg/domain"

	_ "modernc.org/sqlite" // pure go sqlite driver
)

// DefaultPath is used when no database path is configured.
const DefaultPath = "laberaer.db"

const schema = `CREATE TABLE IF NOT EXISTS records (
	seq INTEGER PRIMARY KEY AUTOINCREMENT,
	bucket TEXT NOT NULL,
	id TEXT NOT NULL,
	payload TEXT NOT NULL,
	UNIQUE(bucket, id)
)`

// OpenDB opens (creating when needed) the database file and applies the schema.
func OpenDB(ctx context.Context, path string) (*sql.DB, error) {
	if path == "" {
		path = DefaultPath
	}
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil && !errors.Is(err, os.ErrExist) {
			return nil, fmt.Errorf("create dirs: %w", err)
		}
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	// a single connection keeps :memory: databases shared and serializes writers
	db.SetMaxOpenConns(1)
	if _, err := db.ExecContext(ctx, schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("create records table: %w", err)
	}
	return db, nil
}

// Collection is one bucket of the records table.
type Collection[T domain.Record[T]] struct {
	db     *sql.DB
	bucket string
	entity domain.EntityType
}

// NewCollection binds a collection to bucket.
func NewCollection[T domain.Record[T]](db *sql.DB, bucket string, entity domain.EntityType) *Collection[T] {
	return &Collection[T]{db: db, bucket: bucket, entity: entity}
}

// Insert stores the record as a JSON document.
func (c *Collection[T]) Insert(ctx context.Context, record T) (T, error) {
	data, err := json.Marshal(record)
	if err != nil {
		return record, fmt.Errorf("encode %s: %w", c.entity, err)
	}
	if _, err := c.db.ExecContext(ctx, `INSERT INTO records(bucket, id, payload) VALUES(?, ?, ?)`, c.bucket, record.Key(), string(data)); err != nil {
		return record, fmt.Errorf("insert %s %s: %w", c.entity, record.Key(), err)
	}
	return record, nil
}

// Patch merges fields into the stored document.
func (c *Collection[T]) Patch(ctx context.Context, id string, fields map[string]any) error {
	data, err := json.Marshal(fields)
	if err != nil {
		return fmt.Errorf("encode patch: %w", err)
	}
	res, err := c.db.ExecContext(ctx, `UPDATE records SET payload = json_patch(payload, ?) WHERE bucket = ? AND id = ?`, string(data), c.bucket, id)
	if err != nil {
		return fmt.Errorf("patch %s %s: %w", c.entity, id, err)
	}
	return c.expectRow(res, id)
}

// Remove deletes the stored document.
func (c *Collection[T]) Remove(ctx context.Context, id string) error {
	res, err := c.db.ExecContext(ctx, `DELETE FROM records WHERE bucket = ? AND id = ?`, c.bucket, id)
	if err != nil {
		return fmt.Errorf("delete %s %s: %w", c.entity, id, err)
	}
	return c.expectRow(res, id)
}

// ListAll decodes every document of the bucket in insertion order.
func (c *Collection[T]) ListAll(ctx context.Context) ([]T, error) {
	rows, err := c.db.QueryContext(ctx, `SELECT payload FROM records WHERE bucket = ? ORDER BY seq`, c.bucket)
	if err != nil {
		return nil, fmt.Errorf("select %s: %w", c.bucket, err)
	}
	defer func() { _ = rows.Close() }()
	var out []T
	for rows.Next() {
		var payload string
		if err := rows.Scan(&payload); err != nil {
			return nil, fmt.Errorf("scan %s: %w", c.bucket, err)
		}
		var rec T
		if err := json.Unmarshal([]byte(payload), &rec); err != nil {
			return nil, fmt.Errorf("decode %s: %w", c.bucket, err)
		}
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate %s: %w", c.bucket, err)
	}
	return out, nil
}

func (c *Collection[T]) expectRow(res sql.Result, id string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return domain.NotFoundError{Entity: c.entity, ID: id}
	}
	return nil
}

// Open opens the database at path and returns backends for every bucket.
func Open(ctx context.Context, path string) (domain.Backends, error) {
	db, err := OpenDB(ctx, path)
	if err != nil {
		return domain.Backends{}, err
	}
	return NewBackends(db), nil
}

// NewBackends binds every bucket to db. Close closes db.
func NewBackends(db *sql.DB) domain.Backends {
	return domain.Backends{
		Strains: NewCollection[domain.Strain](db, domain.BucketStrains, domain.EntityStrain),
		Members: NewCollection[domain.Member](db, domain.BucketMembers, domain.EntityMember),
		Duties:  NewCollection[domain.DutySchedule](db, domain.BucketDuties, domain.EntityDuty),
		Media:   NewCollection[domain.Medium](db, domain.BucketMedia, domain.EntityMedium),
		Theses:  NewCollection[domain.Thesis](db, domain.BucketTheses, domain.EntityThesis),
		Actors:  NewCollection[domain.Actor](db, domain.BucketActors, domain.EntityActor),
		Audit:   NewCollection[domain.AuditEntry](db, domain.BucketAudit, domain.EntityAudit),
		Close:   db.Close,
	}
}
