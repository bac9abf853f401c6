// Package database centralises sqlx connection and migration helpers.  The
// driver is go-sql-driver/mysql, which also works with MariaDB.
//
// Public entry points:
//
//	Open(ctx, dsn, opts)        – pool sizing plus ping with retries.
//	Migrate(ctx, db, stmts...)  – applies idempotent DDL in order.
//
// Open pings the database before returning so callers can fail fast during
// bootstrap.  Callers should Close() the returned *sqlx.DB when no longer
// needed.
package database

import (
	"context"
	"fmt"
	"time"

	_ "github.com/go-sql-driver/mysql"
	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"
)

// Options tunes the pool.  Zero values fall back to 15 open, 5 idle, a
// 30-minute lifetime, and 3 ping attempts one second apart.
type Options struct {
	MaxOpen     int
	MaxIdle     int
	MaxLifetime time.Duration
	PingRetries int
	Backoff     time.Duration
}

func (o Options) withDefaults() Options {
	if o.MaxOpen == 0 {
		o.MaxOpen = 15
	}
	if o.MaxIdle == 0 {
		o.MaxIdle = 5
	}
	if o.MaxLifetime == 0 {
		o.MaxLifetime = 30 * time.Minute
	}
	if o.PingRetries == 0 {
		o.PingRetries = 3
	}
	if o.Backoff == 0 {
		o.Backoff = time.Second
	}
	return o
}

// Open returns a pinged *sqlx.DB for the mysql driver.
func Open(ctx context.Context, dsn string, opts Options) (*sqlx.DB, error) {
	db, err := sqlx.Open("mysql", dsn)
	if err != nil {
		return nil, err
	}
	if err := Configure(ctx, db, opts); err != nil {
		_ = db.Close()
		return nil, err
	}
	return db, nil
}

// Configure applies pool options to db and pings it until it answers or
// the retries are spent.
func Configure(ctx context.Context, db *sqlx.DB, opts Options) error {
	opts = opts.withDefaults()
	db.SetMaxOpenConns(opts.MaxOpen)
	db.SetMaxIdleConns(opts.MaxIdle)
	db.SetConnMaxLifetime(opts.MaxLifetime)

	var err error
	for attempt := 1; attempt <= opts.PingRetries; attempt++ {
		if err = db.PingContext(ctx); err == nil {
			return nil
		}
		zap.S().Warnw("database ping failed", "attempt", attempt, "err", err)
		if attempt == opts.PingRetries {
			break
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(opts.Backoff):
		}
	}
	return fmt.Errorf("database ping: %w", err)
}

// Migrate executes stmts in order inside one call sequence.  Statements
// must be idempotent (CREATE TABLE IF NOT EXISTS and friends).
func Migrate(ctx context.Context, db sqlx.ExecerContext, stmts ...string) error {
	for i, s := range stmts {
		if _, err := db.ExecContext(ctx, s); err != nil {
			return fmt.Errorf("migration %d: %w", i+1, err)
		}
	}
	zap.S().Infow("migrations applied", "count", len(stmts))
	return nil
}
