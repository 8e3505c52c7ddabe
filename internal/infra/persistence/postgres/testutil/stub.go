// Package testutil provides an in-memory database/sql driver that understands
// the statements issued by the postgres records store.
package testutil

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"
)

// StubRow is one stored document.
type StubRow struct {
	Bucket  string
	ID      string
	Payload []byte
}

// StubConn records executed statements and keeps rows in insertion order.
type StubConn struct {
	mu         sync.Mutex
	Execs      []string
	Rows       []StubRow
	FailExec   bool
	FailBegin  bool
	FailCommit bool
	FailQuery  bool
	RowsErr    error
}

// NewStubDB registers a sql.DB backed by an in-memory stub connection.
func NewStubDB() (*sql.DB, *StubConn) {
	conn := &StubConn{}
	name := fmt.Sprintf("stubpg%d", time.Now().UnixNano())
	sql.Register(name, &stubDriver{conn: conn})
	db, err := sql.Open(name, "stub")
	if err != nil {
		panic(err)
	}
	db.SetMaxOpenConns(1)
	return db, conn
}

type stubDriver struct {
	conn *StubConn
}

func (d *stubDriver) Open(string) (driver.Conn, error) {
	return d.conn, nil
}

// Prepare implements driver.Conn.
func (c *StubConn) Prepare(string) (driver.Stmt, error) { return nil, fmt.Errorf("not implemented") }

// Close implements driver.Conn.
func (c *StubConn) Close() error { return nil }

// Begin implements driver.Conn.
func (c *StubConn) Begin() (driver.Tx, error) {
	return c.BeginTx(context.Background(), driver.TxOptions{})
}

// Ping implements driver.Pinger.
func (c *StubConn) Ping(_ context.Context) error {
	if c.FailExec {
		return fmt.Errorf("ping fail")
	}
	return nil
}

// BeginTx implements driver.ConnBeginTx.
func (c *StubConn) BeginTx(_ context.Context, _ driver.TxOptions) (driver.Tx, error) {
	if c.FailBegin {
		return nil, fmt.Errorf("begin fail")
	}
	return &stubTx{conn: c}, nil
}

// ExecContext implements driver.ExecerContext.
func (c *StubConn) ExecContext(_ context.Context, query string, args []driver.NamedValue) (driver.Result, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.Execs = append(c.Execs, query)
	if c.FailExec {
		return nil, fmt.Errorf("exec fail")
	}
	verb := leadingVerb(query)
	switch verb {
	case "CREATE":
		return driver.RowsAffected(0), nil
	case "INSERT":
		if len(args) != 3 {
			return nil, fmt.Errorf("insert expects 3 args, got %d", len(args))
		}
		bucket, id := str(args[0]), str(args[1])
		if c.find(bucket, id) >= 0 {
			return nil, fmt.Errorf("duplicate key (%s, %s)", bucket, id)
		}
		c.Rows = append(c.Rows, StubRow{Bucket: bucket, ID: id, Payload: bytes(args[2])})
		return driver.RowsAffected(1), nil
	case "UPDATE":
		if len(args) != 3 {
			return nil, fmt.Errorf("update expects 3 args, got %d", len(args))
		}
		idx := c.find(str(args[0]), str(args[1]))
		if idx < 0 {
			return driver.RowsAffected(0), nil
		}
		c.Rows[idx].Payload = bytes(args[2])
		return driver.RowsAffected(1), nil
	case "DELETE":
		if len(args) != 2 {
			return nil, fmt.Errorf("delete expects 2 args, got %d", len(args))
		}
		idx := c.find(str(args[0]), str(args[1]))
		if idx < 0 {
			return driver.RowsAffected(0), nil
		}
		c.Rows = append(c.Rows[:idx], c.Rows[idx+1:]...)
		return driver.RowsAffected(1), nil
	default:
		return nil, fmt.Errorf("unsupported statement: %s", query)
	}
}

// QueryContext implements driver.QueryerContext. Selecting with one argument
// returns the whole bucket; with two it returns the matching row.
func (c *StubConn) QueryContext(_ context.Context, query string, args []driver.NamedValue) (driver.Rows, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.FailQuery {
		return nil, fmt.Errorf("query fail")
	}
	if leadingVerb(query) != "SELECT" || len(args) == 0 {
		return nil, fmt.Errorf("unsupported query: %s", query)
	}
	bucket := str(args[0])
	var values [][]driver.Value
	for _, row := range c.Rows {
		if row.Bucket != bucket {
			continue
		}
		if len(args) > 1 && row.ID != str(args[1]) {
			continue
		}
		values = append(values, []driver.Value{append([]byte(nil), row.Payload...)})
	}
	return &stubRows{cols: []string{"payload"}, rows: values, err: c.RowsErr}, nil
}

func (c *StubConn) find(bucket, id string) int {
	for i, row := range c.Rows {
		if row.Bucket == bucket && row.ID == id {
			return i
		}
	}
	return -1
}

func leadingVerb(query string) string {
	fields := strings.Fields(query)
	if len(fields) == 0 {
		return ""
	}
	return strings.ToUpper(fields[0])
}

func str(v driver.NamedValue) string {
	switch val := v.Value.(type) {
	case string:
		return val
	case []byte:
		return string(val)
	default:
		return fmt.Sprint(val)
	}
}

func bytes(v driver.NamedValue) []byte {
	switch val := v.Value.(type) {
	case []byte:
		return append([]byte(nil), val...)
	case string:
		return []byte(val)
	default:
		return []byte(fmt.Sprint(val))
	}
}

type stubTx struct {
	conn *StubConn
}

func (t *stubTx) Commit() error {
	if t.conn.FailCommit {
		return fmt.Errorf("commit fail")
	}
	return nil
}
func (t *stubTx) Rollback() error { return nil }

type stubRows struct {
	cols []string
	rows [][]driver.Value
	idx  int
	err  error
}

func (r *stubRows) Columns() []string { return r.cols }
func (r *stubRows) Close() error      { return nil }

func (r *stubRows) Next(dest []driver.Value) error {
	if r.idx >= len(r.rows) {
		if r.err != nil {
			return r.err
		}
		return io.EOF
	}
	copy(dest, r.rows[r.idx])
	r.idx++
	return nil
}
