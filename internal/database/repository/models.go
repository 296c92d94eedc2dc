package repository

import (
	"context"
	"database/sql"
	"time"
)

// DBTX is the execution surface the repos need; *sql.DB and *sql.Tx
// both satisfy it, so a repo can run standalone or inside a
// transaction.
type DBTX interface {
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row
}

// Now returns UTC time truncated to seconds (consistent with SQLite
// default timestamps).
func Now() time.Time {
	return time.Now().UTC().Truncate(time.Second)
}

// Machine represents a machine catalog row. Definition holds the ZFlap
// project text the zformat package produces.
type Machine struct {
	ID         string
	Name       string
	Kind       string
	Definition string
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// Run represents a recorded simulation row. Path is the rendered step
// lines for accepted PDA/TM runs, nil otherwise.
type Run struct {
	ID        string
	MachineID string
	Input     string
	Verdict   string
	Steps     int
	MaxSteps  int
	Path      *string
	CreatedAt time.Time
}
