// Package xpgx adds squirrel-aware helpers on top of a pgx connection pool.
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
	"github.com/ougirez/iodmap/internal/pkg/logger"
)

// Querier is the part of a pool the store reads through.
type Querier interface {
	Queryx(ctx context.Context, query squirrel.Sqlizer) (pgx.Rows, error)
	Execx(ctx context.Context, query squirrel.Sqlizer) (pgconn.CommandTag, error)
}

type Pool struct {
	*pgxpool.Pool
}

// Connect opens a pool and pings it, retrying with exponential backoff for at most
// maxWait. Only start-up goes through here.
func Connect(ctx context.Context, dsn string, maxWait time.Duration) (*Pool, error) {
	cfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("pgxpool.ParseConfig: %w", err)
	}

	var pool *pgxpool.Pool
	policy := backoff.NewExponentialBackOff()
	policy.MaxElapsedTime = maxWait

	err = backoff.RetryNotify(
		func() error {
			p, err := pgxpool.NewWithConfig(ctx, cfg)
			if err != nil {
				return fmt.Errorf("pgxpool.NewWithConfig: %w", err)
			}
			if err := p.Ping(ctx); err != nil {
				p.Close()
				return fmt.Errorf("ping: %w", err)
			}
			pool = p
			return nil
		},
		backoff.WithContext(policy, ctx),
		func(err error, next time.Duration) {
			logger.Warnf(ctx, "postgres not ready, retrying in %s: %s", next, err.Error())
		},
	)
	if err != nil {
		return nil, err
	}

	return &Pool{Pool: pool}, nil
}

func (p *Pool) Queryx(ctx context.Context, query squirrel.Sqlizer) (pgx.Rows, error) {
	sql, args, err := query.ToSql()
	if err != nil {
		return nil, fmt.Errorf("query.ToSql: %w", err)
	}
	return p.Query(ctx, sql, args...)
}

func (p *Pool) Execx(ctx context.Context, query squirrel.Sqlizer) (pgconn.CommandTag, error) {
	sql, args, err := query.ToSql()
	if err != nil {
		return pgconn.CommandTag{}, fmt.Errorf("query.ToSql: %w", err)
	}
	return p.Exec(ctx, sql, args...)
}

// Selectx collects every row into T by column name.
func Selectx[T any](ctx context.Context, q Querier, query squirrel.Sqlizer) ([]T, error) {
	rows, err := q.Queryx(ctx, query)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, pgx.RowToStructByName[T])
}

// Getx collects exactly one row; pgx.ErrNoRows when there is none.
func Getx[T any](ctx context.Context, q Querier, query squirrel.Sqlizer) (T, error) {
	rows, err := q.Queryx(ctx, query)
	if err != nil {
		var zero T
		return zero, err
	}
	return pgx.CollectOneRow(rows, pgx.RowToStructByName[T])
}
