// Package postgres opens the shared database handle and runs callbacks inside
// transactions that stores join through pkg/platform/tx.
package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/lib/pq"

	"nameledger/pkg/platform/tx"
)

// Open connects and pings so a bad URL fails at startup, not first query.
func Open(url string) (*sql.DB, error) {
	db, err := sql.Open("postgres", url)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	db.SetMaxOpenConns(20)
	db.SetConnMaxIdleTime(5 * time.Minute)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("postgres ping failed: %w", err)
	}
	return db, nil
}

// WithinTx runs fn with a transaction stored in context. Stores built on
// Queryer pick the transaction up automatically; any error rolls back.
func WithinTx(ctx context.Context, db *sql.DB, fn func(ctx context.Context) error) error {
	sqlTx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	if err := fn(tx.WithTx(ctx, sqlTx)); err != nil {
		_ = sqlTx.Rollback()
		return err
	}
	if err := sqlTx.Commit(); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}

// Queryer is the subset of *sql.DB and *sql.Tx the stores need.
type Queryer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// From returns the context transaction when one is active, else the db.
func From(ctx context.Context, db *sql.DB) Queryer {
	if sqlTx, ok := tx.From(ctx); ok {
		return sqlTx
	}
	return db
}

// Pinger adapts the database handle to the /healthz check interface.
type Pinger struct {
	DB *sql.DB
}

func (p Pinger) Health(ctx context.Context) error {
	return p.DB.PingContext(ctx)
}
