// Package sqlite implements the sales record store on SQLite via the pure-Go
// modernc.org/sqlite driver.
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"sales_explorer/internal/sales"
	"sales_explorer/internal/sqlstore"
	"time"
)

// Compile-time interface guard.
var _ sales.Storage = (*Store)(nil)

// Store implements sales.Storage backed by SQLite.
type Store struct {
	db *sql.DB
}

// New opens (or creates) a SQLite database at path, applies pragmas and
// runs pending migrations.
func New(ctx context.Context, path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite %q: %w", path, err)
	}

	// SQLite performs best with a single write connection. WAL enables concurrent readers.
	db.SetMaxOpenConns(1)

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping sqlite %q: %w", path, err)
	}

	// modernc.org/sqlite requires SQL statements, not DSN params.
	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA synchronous=NORMAL",
		"PRAGMA cache_size=-20000",
	}
	for _, p := range pragmas {
		if _, err := db.ExecContext(ctx, p); err != nil {
			db.Close()
			return nil, fmt.Errorf("exec %q: %w", p, err)
		}
	}

	if err := applyMigrations(ctx, db); err != nil {
		db.Close()
		return nil, err
	}
	return &Store{db: db}, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Ping verifies the database is reachable.
func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// Count returns the number of sales matching filter.
func (s *Store) Count(ctx context.Context, filter sales.Predicate) (int, error) {
	query, args, err := sqlstore.CountQuery(sqlstore.SQLite, filter)
	if err != nil {
		return 0, err
	}
	var n int
	if err := s.db.QueryRowContext(ctx, query, args...).Scan(&n); err != nil {
		return 0, fmt.Errorf("count sales: %w", err)
	}
	return n, nil
}

// Find returns one window of sales matching filter in the given order.
func (s *Store) Find(ctx context.Context, filter sales.Predicate, order sales.Sort, offset, limit int) ([]*sales.Sale, error) {
	query, args, err := sqlstore.FindQuery(sqlstore.SQLite, filter, order, offset, limit)
	if err != nil {
		return nil, err
	}
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("find sales: %w", err)
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
		return nil, fmt.Errorf("iterate sales: %w", err)
	}
	return out, nil
}

// Read returns the sale with the given id, or sales.ErrNotFound.
func (s *Store) Read(ctx context.Context, id string) (*sales.Sale, error) {
	sale, err := scanSale(s.db.QueryRowContext(ctx, sqlstore.ReadQuery(sqlstore.SQLite), id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, sales.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return sale, nil
}

// Insert stores sales in one transaction.
func (s *Store) Insert(ctx context.Context, records []*sales.Sale) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, sqlstore.InsertQuery(sqlstore.SQLite))
	if err != nil {
		return fmt.Errorf("prepare insert: %w", err)
	}
	defer stmt.Close()

	for _, r := range records {
		if r.ID == "" {
			return sales.ErrEmptyID
		}
		tags, err := json.Marshal(nonNilTags(r.Tags))
		if err != nil {
			return fmt.Errorf("encode tags of sale %s: %w", r.ID, err)
		}
		args := sqlstore.InsertArgs(sqlstore.SQLite, r, r.Date.UnixMilli(), string(tags))
		if _, err := stmt.ExecContext(ctx, args...); err != nil {
			return fmt.Errorf("insert sale %s: %w", r.ID, err)
		}
	}
	return tx.Commit()
}

// Delete removes the sales with the given ids and reports how many existed.
func (s *Store) Delete(ctx context.Context, ids []string) (int, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	query, args := sqlstore.DeleteQuery(sqlstore.SQLite, ids)
	res, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("delete sales: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("delete sales: %w", err)
	}
	return int(n), nil
}

func scanSale(row sqlstore.Scanner) (*sales.Sale, error) {
	var (
		sale sales.Sale
		date int64
		tags string
	)
	if err := row.Scan(sqlstore.ScanTargets(&sale, &date, &tags)...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("scan sale: %w", err)
	}
	sale.Date = time.UnixMilli(date).UTC()
	if err := json.Unmarshal([]byte(tags), &sale.Tags); err != nil {
		return nil, fmt.Errorf("decode tags of sale %s: %w", sale.ID, err)
	}
	return &sale, nil
}

func nonNilTags(tags []string) []string {
	if tags == nil {
		return []string{}
	}
	return tags
}
