package sales

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sort"
	"sync"
)

// ErrNotFound is returned when a sale with the given ID is not found.
var ErrNotFound = errors.New("sale not found")

// ErrEmptyID is returned when trying to store a sale with an empty ID.
var ErrEmptyID = errors.New("empty sale ID")

// Storage is the record store behind the listing service. Any datastore that
// can filter by a predicate, sort by one field, window with skip/limit and
// count matches can implement it.
type Storage interface {
	Count(ctx context.Context, filter Predicate) (int, error)
	Find(ctx context.Context, filter Predicate, order Sort, offset, limit int) ([]*Sale, error)
	Read(ctx context.Context, id string) (*Sale, error)
	Insert(ctx context.Context, sales []*Sale) error
	Delete(ctx context.Context, ids []string) (int, error)
}

// LocalStorage provides an in-memory implementation for storing sales.
type LocalStorage struct {
	mu sync.RWMutex
	m  map[string]*Sale
}

// NewLocalStorage instantiates a new LocalStorage for sales with an empty map.
func NewLocalStorage() *LocalStorage {
	return &LocalStorage{
		m: map[string]*Sale{},
	}
}

// Insert adds or replaces sales by ID.
// Returns ErrEmptyID if any sale has an empty ID; nothing is stored then.
func (l *LocalStorage) Insert(_ context.Context, sales []*Sale) error {
	for _, s := range sales {
		if s.ID == "" {
			return ErrEmptyID
		}
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	for _, s := range sales {
		l.m[s.ID] = s
	}
	return nil
}

// Read retrieves a sale from the local storage by ID.
// Returns ErrNotFound if the sale is not found.
func (l *LocalStorage) Read(_ context.Context, id string) (*Sale, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	s, ok := l.m[id]
	if !ok {
		return nil, ErrNotFound
	}
	return s, nil
}

// Count returns the number of stored sales matching filter.
func (l *LocalStorage) Count(ctx context.Context, filter Predicate) (int, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	n := 0
	for _, s := range l.m {
		if Match(filter, s) {
			n++
		}
	}
	return n, ctx.Err()
}

// Find returns the window [offset, offset+limit) of sales matching filter in
// the given order. Ties are broken by ID.
func (l *LocalStorage) Find(ctx context.Context, filter Predicate, order Sort, offset, limit int) ([]*Sale, error) {
	if offset < 0 || limit < 0 {
		return nil, fmt.Errorf("invalid window offset=%d limit=%d", offset, limit)
	}
	l.mu.RLock()
	matched := make([]*Sale, 0)
	for _, s := range l.m {
		if Match(filter, s) {
			matched = append(matched, s)
		}
	}
	l.mu.RUnlock()

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	sort.Slice(matched, func(i, j int) bool {
		c := compareValues(matched[i].Value(order.Field), matched[j].Value(order.Field))
		if c == 0 {
			return matched[i].ID < matched[j].ID
		}
		if order.Direction == Asc {
			return c < 0
		}
		return c > 0
	})

	if offset >= len(matched) {
		return []*Sale{}, nil
	}
	end := min(offset+limit, len(matched))
	return slices.Clone(matched[offset:end]), nil
}

// Delete removes the sales with the given IDs and reports how many existed.
func (l *LocalStorage) Delete(_ context.Context, ids []string) (int, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	n := 0
	for _, id := range ids {
		if _, ok := l.m[id]; ok {
			delete(l.m, id)
			n++
		}
	}
	return n, nil
}
