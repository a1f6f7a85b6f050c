// Package postgres implements the sales record store on PostgreSQL via pgx.
package postgres

import (
	"context"
	_ "embed"
	"errors"
	"fmt"
	"sales_explorer/internal/sales"
	"sales_explorer/internal/sqlstore"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

//go:embed schema.sql
var schema string

var _ sales.Storage = (*Store)(nil)

// Store implements sales.Storage backed by a pgx connection pool.
type Store struct {
	pool *pgxpool.Pool
}

// New connects to databaseURL, checks the connection and creates the sales
// table when missing.
func New(ctx context.Context, databaseURL string) (*Store, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("unable to connect to database: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 6*time.Second)
	defer cancel()
	if err := pool.Ping(pingCtx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("database ping failed: %w", err)
	}

	if _, err := pool.Exec(ctx, schema); err != nil {
		pool.Close()
		return nil, fmt.Errorf("apply schema: %w", err)
	}
	return &Store{pool: pool}, nil
}

// Close closes the connection pool.
func (s *Store) Close() {
	s.pool.Close()
}

// Ping verifies the database is reachable.
func (s *Store) Ping(ctx context.Context) error {
	return s.pool.Ping(ctx)
}

func (s *Store) Count(ctx context.Context, filter sales.Predicate) (int, error) {
	query, args, err := sqlstore.CountQuery(sqlstore.Postgres, filter)
	if err != nil {
		return 0, err
	}
	var n int
	if err := s.pool.QueryRow(ctx, query, args...).Scan(&n); err != nil {
		return 0, classify("count sales", err)
	}
	return n, nil
}

func (s *Store) Find(ctx context.Context, filter sales.Predicate, order sales.Sort, offset, limit int) ([]*sales.Sale, error) {
	query, args, err := sqlstore.FindQuery(sqlstore.Postgres, filter, order, offset, limit)
	if err != nil {
		return nil, err
	}
	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, classify("find sales", err)
	}
	defer rows.Close()

	out := make([]*sales.Sale, 0, limit)
	for rows.Next() {
		sale, err := scanSale(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, sale)
	}
	if err := rows.Err(); err != nil {
		return nil, classify("iterate sales", err)
	}
	return out, nil
}

func (s *Store) Read(ctx context.Context, id string) (*sales.Sale, error) {
	sale, err := scanSale(s.pool.QueryRow(ctx, sqlstore.ReadQuery(sqlstore.Postgres), id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, sales.ErrNotFound
	}
	if err != nil {
		return nil, classify("read sale", err)
	}
	return sale, nil
}

// Insert stores sales in one transaction using a single batch round trip.
func (s *Store) Insert(ctx context.Context, records []*sales.Sale) error {
	batch := &pgx.Batch{}
	query := sqlstore.InsertQuery(sqlstore.Postgres)
	for _, r := range records {
		if r.ID == "" {
			return sales.ErrEmptyID
		}
		tags := r.Tags
		if tags == nil {
			tags = []string{}
		}
		batch.Queue(query, sqlstore.InsertArgs(sqlstore.Postgres, r, r.Date, tags)...)
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return classify("begin tx", err)
	}
	defer tx.Rollback(ctx)

	if err := tx.SendBatch(ctx, batch).Close(); err != nil {
		return classify("insert sales", err)
	}
	if err := tx.Commit(ctx); err != nil {
		return classify("commit", err)
	}
	return nil
}

func (s *Store) Delete(ctx context.Context, ids []string) (int, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	query, args := sqlstore.DeleteQuery(sqlstore.Postgres, ids)
	tag, err := s.pool.Exec(ctx, query, args...)
	if err != nil {
		return 0, classify("delete sales", err)
	}
	return int(tag.RowsAffected()), nil
}

func scanSale(row sqlstore.Scanner) (*sales.Sale, error) {
	var sale sales.Sale
	if err := row.Scan(sqlstore.ScanTargets(&sale, &sale.Date, &sale.Tags)...); err != nil {
		return nil, err
	}
	sale.Date = sale.Date.UTC()
	return &sale, nil
}

// classify wraps err with op and marks failures that are safe to retry.
func classify(op string, err error) error {
	var connErr *pgconn.ConnectError
	if pgconn.SafeToRetry(err) || errors.As(err, &connErr) {
		return fmt.Errorf("%s: %w: %w", op, sales.ErrTransient, err)
	}
	return fmt.Errorf("%s: %w", op, err)
}
