// Package database owns the process-wide PostgreSQL pool.
//
// Public entry points:
//
//	Open(ctx, cfg)   – build the pgx pool from config.Database and wait until
//	                   it answers a ping (bounded by AcquireTimeout).
//	(*Pool).Close    – release every connection, bounded by DestroyTimeout.
//	(*Pool).Checker  – readiness probe for the HTTP layer, pinging via Pool.DB.
//
// Request handlers that prefer database/sql ergonomics use Pool.DB, a
// *sqlx.DB backed by the same pgx pool.
package database

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"github.com/yanizio/formapi/internal/config"
)

// ErrCloseTimeout is returned by Close when the pool did not finish
// releasing its connections within the destroy timeout.
var ErrCloseTimeout = errors.New("database: close exceeded destroy timeout")

// Pool bundles the pgx pool with its sqlx view.
type Pool struct {
	pg      *pgxpool.Pool
	DB      *sqlx.DB
	destroy time.Duration
}

// poolConfig maps config.Database onto pgxpool settings.  Parsing does not
// touch the network.
func poolConfig(cfg config.Database) (*pgxpool.Config, error) {
	pc, err := pgxpool.ParseConfig(cfg.URL())
	if err != nil {
		return nil, fmt.Errorf("failed to parse database config: %w", err)
	}

	pc.MaxConns = int32(cfg.PoolMax)
	pc.MinConns = int32(cfg.PoolMin)
	pc.MaxConnIdleTime = cfg.IdleTimeout
	pc.HealthCheckPeriod = cfg.ReapInterval
	pc.ConnConfig.ConnectTimeout = cfg.CreateTimeout
	return pc, nil
}

// Open creates the pool and pings it every CreateRetryInterval until it
// answers or AcquireTimeout elapses.
func Open(ctx context.Context, cfg config.Database) (*Pool, error) {
	pc, err := poolConfig(cfg)
	if err != nil {
		return nil, err
	}

	initCtx, cancel := context.WithTimeout(ctx, cfg.AcquireTimeout)
	defer cancel()

	pg, err := pgxpool.NewWithConfig(initCtx, pc)
	if err != nil {
		return nil, fmt.Errorf("failed to create connection pool: %w", err)
	}

	if err := pingUntil(initCtx, pg.Ping, cfg.CreateRetryInterval); err != nil {
		pg.Close()
		return nil, fmt.Errorf("failed to ping database %s: %w", cfg.Address(), err)
	}

	zap.S().Infow("connected to PostgreSQL",
		"database", cfg.Address(),
		"pool_max", cfg.PoolMax,
		"pool_min", cfg.PoolMin,
	)

	return &Pool{
		pg:      pg,
		DB:      sqlx.NewDb(stdlib.OpenDBFromPool(pg), "pgx"),
		destroy: cfg.DestroyTimeout,
	}, nil
}

// pingUntil retries ping until it succeeds or ctx ends.  The last ping
// error is returned so the operator sees the real cause.
func pingUntil(ctx context.Context, ping func(context.Context) error, every time.Duration) error {
	t := time.NewTicker(every)
	defer t.Stop()

	for {
		err := ping(ctx)
		if err == nil {
			return nil
		}
		select {
		case <-ctx.Done():
			return err
		case <-t.C:
		}
	}
}

// Close releases the sqlx view and then the pgx pool.  It waits at most
// the destroy timeout (or until ctx ends, if sooner).
func (p *Pool) Close(ctx context.Context) error {
	return closeWithin(ctx, p.destroy, func() error {
		err := p.DB.Close()
		p.pg.Close()
		return err
	})
}

// closeWithin runs fn in the background and returns its error, or
// ErrCloseTimeout once limit (or ctx) expires first.  fn keeps running
// after a timeout; the process is about to exit anyway.
func closeWithin(ctx context.Context, limit time.Duration, fn func() error) error {
	ctx, cancel := context.WithTimeout(ctx, limit)
	defer cancel()

	done := make(chan error, 1)
	go func() { done <- fn() }()

	select {
	case err := <-done:
		return err
	case <-ctx.Done():
		return ErrCloseTimeout
	}
}
