package xpgx

import (
	"context"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/cenkalti/backoff/v4"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Pool is the thin query surface the store works against. Statements are
// built with squirrel and rendered here, so store code never concatenates SQL.
type Pool interface {
	Execx(ctx context.Context, q squirrel.Sqlizer) (pgconn.CommandTag, error)
	Queryx(ctx context.Context, q squirrel.Sqlizer) (pgx.Rows, error)
	Close()
}

type pool struct {
	db *pgxpool.Pool
}

// Connect opens a pgx pool and pings it, retrying while the database
// comes up. Used at process start only.
func Connect(ctx context.Context, dsn string) (Pool, error) {
	db, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("pgxpool.New: %w", err)
	}

	err = backoff.Retry(
		func() error { return db.Ping(ctx) },
		backoff.WithContext(
			backoff.WithMaxRetries(backoff.NewConstantBackOff(500*time.Millisecond), 20),
			ctx,
		),
	)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("ping: %w", err)
	}

	return &pool{db: db}, nil
}

func (p *pool) Execx(ctx context.Context, q squirrel.Sqlizer) (pgconn.CommandTag, error) {
	sql, args, err := q.ToSql()
	if err != nil {
		return pgconn.CommandTag{}, fmt.Errorf("build sql: %w", err)
	}
	return p.db.Exec(ctx, sql, args...)
}

func (p *pool) Queryx(ctx context.Context, q squirrel.Sqlizer) (pgx.Rows, error) {
	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build sql: %w", err)
	}
	return p.db.Query(ctx, sql, args...)
}

func (p *pool) Close() {
	p.db.Close()
}

// Getx runs the query and scans the single result row into T by db tags.
func Getx[T any](ctx context.Context, p Pool, q squirrel.Sqlizer) (*T, error) {
	rows, err := p.Queryx(ctx, q)
	if err != nil {
		return nil, err
	}
	return pgx.CollectOneRow(rows, pgx.RowToAddrOfStructByNameLax[T])
}

// Selectx runs the query and scans every result row into []*T by db tags.
func Selectx[T any](ctx context.Context, p Pool, q squirrel.Sqlizer) ([]*T, error) {
	rows, err := p.Queryx(ctx, q)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, pgx.RowToAddrOfStructByNameLax[T])
}
