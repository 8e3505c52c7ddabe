// Package postgres persists records as JSONB documents in PostgreSQL. Partial
// updates run as a locked read-modify-write inside a transaction.
package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"github.com/dell121212/laberaer/pkg/domain"

	_ "github.com/jackc/pgx/v5/stdlib" // register pgx as a database/sql driver
)

const (
	defaultDriver = "pgx"
	// DefaultDSN is used when no DSN is configured.
	DefaultDSN = "postgres://localhost/laberaer?sslmode=disable"
)

var (
	sqlOpen = sql.Open
	openMu  sync.Mutex
)

const schema = `CREATE TABLE IF NOT EXISTS records (
	seq BIGSERIAL UNIQUE,
	bucket TEXT NOT NULL,
	id TEXT NOT NULL,
	payload JSONB NOT NULL,
	PRIMARY KEY (bucket, id)
)`

// OpenDB connects, pings and applies the schema.
func OpenDB(ctx context.Context, dsn string) (*sql.DB, error) {
	if dsn == "" {
		dsn = DefaultDSN
	}
	openMu.Lock()
	db, err := sqlOpen(defaultDriver, dsn)
	openMu.Unlock()
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	if _, err := db.ExecContext(ctx, schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ensure records table: %w", err)
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

// Insert stores the record as a JSONB document.
func (c *Collection[T]) Insert(ctx context.Context, record T) (T, error) {
	data, err := json.Marshal(record)
	if err != nil {
		return record, fmt.Errorf("encode %s: %w", c.entity, err)
	}
	if _, err := c.db.ExecContext(ctx, `INSERT INTO records(bucket, id, payload) VALUES($1, $2, $3)`, c.bucket, record.Key(), data); err != nil {
		return record, fmt.Errorf("insert %s %s: %w", c.entity, record.Key(), err)
	}
	return record, nil
}

// Patch locks the row, merges fields into the document and writes it back.
func (c *Collection[T]) Patch(ctx context.Context, id string, fields map[string]any) error {
	tx, err := c.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()
	var payload []byte
	err = tx.QueryRowContext(ctx, `SELECT payload FROM records WHERE bucket = $1 AND id = $2 FOR UPDATE`, c.bucket, id).Scan(&payload)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.NotFoundError{Entity: c.entity, ID: id}
	}
	if err != nil {
		return fmt.Errorf("select %s %s: %w", c.entity, id, err)
	}
	doc := map[string]any{}
	if err := json.Unmarshal(payload, &doc); err != nil {
		return fmt.Errorf("decode %s %s: %w", c.entity, id, err)
	}
	merged, err := json.Marshal(domain.MergePatch(doc, fields))
	if err != nil {
		return fmt.Errorf("encode %s %s: %w", c.entity, id, err)
	}
	if _, err := tx.ExecContext(ctx, `UPDATE records SET payload = $3 WHERE bucket = $1 AND id = $2`, c.bucket, id, merged); err != nil {
		return fmt.Errorf("update %s %s: %w", c.entity, id, err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	committed = true
	return nil
}

// Remove deletes the stored document.
func (c *Collection[T]) Remove(ctx context.Context, id string) error {
	res, err := c.db.ExecContext(ctx, `DELETE FROM records WHERE bucket = $1 AND id = $2`, c.bucket, id)
	if err != nil {
		return fmt.Errorf("delete %s %s: %w", c.entity, id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return domain.NotFoundError{Entity: c.entity, ID: id}
	}
	return nil
}

// ListAll decodes every document of the bucket in insertion order.
func (c *Collection[T]) ListAll(ctx context.Context) ([]T, error) {
	rows, err := c.db.QueryContext(ctx, `SELECT payload FROM records WHERE bucket = $1 ORDER BY seq`, c.bucket)
	if err != nil {
		return nil, fmt.Errorf("select %s: %w", c.bucket, err)
	}
	defer func() { _ = rows.Close() }()
	var out []T
	for rows.Next() {
		var payload []byte
		if err := rows.Scan(&payload); err != nil {
			return nil, fmt.Errorf("scan %s: %w", c.bucket, err)
		}
		var rec T
		if err := json.Unmarshal(payload, &rec); err != nil {
			return nil, fmt.Errorf("decode %s: %w", c.bucket, err)
		}
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate %s: %w", c.bucket, err)
	}
	return out, nil
}

// Open connects to dsn and returns backends for every bucket.
func Open(ctx context.Context, dsn string) (domain.Backends, error) {
	db, err := OpenDB(ctx, dsn)
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

// OverrideSQLOpen swaps the sqlOpen function for tests and returns a restore function.
func OverrideSQLOpen(fn func(driverName, dataSourceName string) (*sql.DB, error)) func() {
	openMu.Lock()
	defer openMu.Unlock()
	prev := sqlOpen
	sqlOpen = fn
	return func() {
		openMu.Lock()
		defer openMu.Unlock()
		sqlOpen = prev
	}
}
