package sales

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v5"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const (
	DefaultStoreTimeout = 5 * time.Second
	DefaultRetries      = 3
)

var tracer = otel.Tracer("sales_explorer/internal/sales")

// Service provides the read side of the sales records browser on a Storage
// backend.
type Service struct {
	storage Storage
	logger  *zap.Logger
	timeout time.Duration
	retries uint
}

// Option configures a Service.
type Option func(*Service)

// WithTimeout bounds every store read. Non-positive values keep the default.
func WithTimeout(d time.Duration) Option {
	return func(s *Service) {
		if d > 0 {
			s.timeout = d
		}
	}
}

// WithRetries sets how many times a transient store failure is retried.
func WithRetries(n uint) Option {
	return func(s *Service) {
		s.retries = n
	}
}

// NewService creates a new Service.
func NewService(storage Storage, logger *zap.Logger, opts ...Option) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}

	s := &Service{
		storage: storage,
		logger:  logger,
		timeout: DefaultStoreTimeout,
		retries: DefaultRetries,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// List returns the page of sales q selects. The count and the window are
// read concurrently; a page past the end yields no records but still reports
// the full total.
func (s *Service) List(ctx context.Context, q Query) (*Page, error) {
	ctx, span := tracer.Start(ctx, "sales.List", trace.WithAttributes(
		attribute.String("sales.filter", q.Filter.String()),
		attribute.String("sales.sort", q.Sort.String()),
		attribute.Int("sales.page", q.Page),
		attribute.Int("sales.limit", q.Limit),
	))
	defer span.End()

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	var (
		total   int
		records []*Sale
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		ctx, span := tracer.Start(gctx, "sales.Count")
		defer span.End()
		n, err := retry(ctx, s.retries, func(ctx context.Context) (int, error) {
			return s.storage.Count(ctx, q.Filter)
		})
		total = n
		return err
	})
	g.Go(func() error {
		ctx, span := tracer.Start(gctx, "sales.Find")
		defer span.End()
		found, err := retry(ctx, s.retries, func(ctx context.Context) ([]*Sale, error) {
			return s.storage.Find(ctx, q.Filter, q.Sort, q.Offset(), q.Limit)
		})
		records = found
		return err
	})
	if err := g.Wait(); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "list sales")
		return nil, s.storeFailure(ctx, "list sales", err,
			zap.Stringer("filter", q.Filter),
			zap.Stringer("sort", q.Sort),
			zap.Int("page", q.Page),
			zap.Int("limit", q.Limit),
		)
	}

	if records == nil {
		records = []*Sale{}
	}

	s.logger.Debug("sales listed",
		zap.Stringer("filter", q.Filter),
		zap.Stringer("sort", q.Sort),
		zap.Int("page", q.Page),
		zap.Int("limit", q.Limit),
		zap.Int("total", total),
		zap.Int("results_count", len(records)),
	)

	return &Page{
		Data:       records,
		Page:       q.Page,
		Limit:      q.Limit,
		Total:      total,
		TotalPages: TotalPages(total, q.Limit),
	}, nil
}

// Get returns the sale with the given ID without applying any filter.
// Returns ErrNotFound if no sale has that ID. An ID that is not a UUID can
// never exist and is rejected as a *ValidationError (HTTP 400) instead.
func (s *Service) Get(ctx context.Context, id string) (*Sale, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, invalid("id", "%q is not a valid sale ID", id)
	}

	ctx, span := tracer.Start(ctx, "sales.Get", trace.WithAttributes(attribute.String("sales.id", id)))
	defer span.End()

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	sale, err := retry(ctx, s.retries, func(ctx context.Context) (*Sale, error) {
		return s.storage.Read(ctx, id)
	})
	if errors.Is(err, ErrNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		span.RecordError(err)
		return nil, s.storeFailure(ctx, "read sale", err, zap.String("sale_id", id))
	}
	return sale, nil
}

// BulkDelete removes the sales with the given IDs and returns how many were
// deleted. Unknown IDs are ignored.
func (s *Service) BulkDelete(ctx context.Context, ids []string) (int, error) {
	if len(ids) == 0 {
		return 0, invalid("ids", "must not be empty")
	}
	for _, id := range ids {
		if _, err := uuid.Parse(id); err != nil {
			return 0, invalid("ids", "%q is not a valid sale ID", id)
		}
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	n, err := s.storage.Delete(ctx, ids)
	if err != nil {
		return 0, s.storeFailure(ctx, "delete sales", err, zap.Strings("sale_ids", ids))
	}

	s.logger.Info("sales deleted", zap.Int("requested", len(ids)), zap.Int("deleted", n))
	return n, nil
}

// storeFailure logs err with the request context and wraps it in a
// *StoreError. Deadline overruns additionally wrap ErrTimeout. A canceled
// caller is not a store failure: it yields context.Canceled as is.
func (s *Service) storeFailure(ctx context.Context, op string, err error, fields ...zap.Field) error {
	if errors.Is(err, context.Canceled) || errors.Is(ctx.Err(), context.Canceled) {
		s.logger.Debug("store operation canceled", append(fields, zap.String("op", op), zap.Error(err))...)
		return context.Canceled
	}
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded) {
		err = fmt.Errorf("%w after %s: %w", ErrTimeout, s.timeout, err)
	}
	s.logger.Error("store operation failed", append(fields, zap.String("op", op), zap.Error(err))...)
	return &StoreError{Op: op, Err: err}
}

// retry runs op until it succeeds, fails with a non-transient error, or has
// been retried n times.
func retry[T any](ctx context.Context, n uint, op func(context.Context) (T, error)) (T, error) {
	return backoff.Retry(ctx, func() (T, error) {
		v, err := op(ctx)
		if err != nil && !errors.Is(err, ErrTransient) {
			return v, backoff.Permanent(err)
		}
		return v, err
	},
		backoff.WithBackOff(backoff.NewExponentialBackOff()),
		backoff.WithMaxTries(n+1),
	)
}
