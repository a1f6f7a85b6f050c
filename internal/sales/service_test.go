package sales

import (
	"context"
	"errors"
	"fmt"
	"math"
	"net/url"
	"strconv"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

// flakyStorage wraps a LocalStorage and injects failures into Count.
type flakyStorage struct {
	*LocalStorage
	countErr   error
	failCounts int32
	calls      atomic.Int32
	block      bool
}

func (f *flakyStorage) Count(ctx context.Context, filter Predicate) (int, error) {
	n := f.calls.Add(1)
	if f.block {
		<-ctx.Done()
		return 0, ctx.Err()
	}
	if f.countErr != nil && n <= f.failCounts {
		return 0, f.countErr
	}
	return f.LocalStorage.Count(ctx, filter)
}

func TestNewService(t *testing.T) {
	svc := NewService(NewLocalStorage(), zaptest.NewLogger(t))

	require.NotNil(t, svc)
	assert.NotNil(t, svc.storage)
	assert.NotNil(t, svc.logger)
	assert.Equal(t, DefaultStoreTimeout, svc.timeout)
	assert.Equal(t, uint(DefaultRetries), svc.retries)

	svc = NewService(NewLocalStorage(), nil, WithTimeout(time.Second), WithRetries(0))
	assert.NotNil(t, svc.logger)
	assert.Equal(t, time.Second, svc.timeout)
	assert.Equal(t, uint(0), svc.retries)
}

func TestList_Pagination(t *testing.T) {
	svc := NewService(newTestStorage(t, testSales(57)...), zaptest.NewLogger(t))
	ctx := context.Background()

	q, err := BuildQuery(url.Values{"sortBy": {"transactionId"}, "sortOrder": {"asc"}, "limit": {"20"}, "page": {"3"}})
	require.NoError(t, err)

	page, err := svc.List(ctx, q)
	require.NoError(t, err)
	assert.Equal(t, 57, page.Total)
	assert.Equal(t, 3, page.TotalPages)
	assert.Equal(t, 3, page.Page)
	assert.Equal(t, 20, page.Limit)
	require.Len(t, page.Data, 17)
	assert.Equal(t, int64(41), page.Data[0].TransactionID)
	assert.Equal(t, int64(57), page.Data[16].TransactionID)

	q.Page = 4
	page, err = svc.List(ctx, q)
	require.NoError(t, err)
	assert.NotNil(t, page.Data)
	assert.Empty(t, page.Data)
	assert.Equal(t, 57, page.Total)
	assert.Equal(t, 3, page.TotalPages)
}

func TestList_LastAddressablePageIsEmpty(t *testing.T) {
	svc := NewService(newTestStorage(t, testSales(5)...), zaptest.NewLogger(t))

	q, err := BuildQuery(url.Values{"page": {strconv.Itoa(math.MaxInt/DefaultLimit + 1)}})
	require.NoError(t, err)
	page, err := svc.List(context.Background(), q)
	require.NoError(t, err)
	assert.Empty(t, page.Data)
	assert.Equal(t, 5, page.Total)
}

func TestList_DefaultSortNewestFirst(t *testing.T) {
	svc := NewService(newTestStorage(t, testSales(5)...), zaptest.NewLogger(t))

	q, err := BuildQuery(url.Values{})
	require.NoError(t, err)
	page, err := svc.List(context.Background(), q)
	require.NoError(t, err)

	require.Len(t, page.Data, 5)
	for i := 1; i < len(page.Data); i++ {
		assert.True(t, page.Data[i-1].Date.After(page.Data[i].Date))
	}
}

func TestList_Filtered(t *testing.T) {
	sales := testSales(10)
	for i, s := range sales {
		if i%2 == 0 {
			s.CustomerRegion = "South"
		}
	}
	svc := NewService(newTestStorage(t, sales...), zaptest.NewLogger(t))

	q, err := BuildQuery(url.Values{"regions": {"South"}, "limit": {"3"}})
	require.NoError(t, err)
	page, err := svc.List(context.Background(), q)
	require.NoError(t, err)

	assert.Equal(t, 5, page.Total)
	assert.Equal(t, 2, page.TotalPages)
	require.Len(t, page.Data, 3)
	for _, s := range page.Data {
		assert.Equal(t, "South", s.CustomerRegion)
	}
}

func TestList_StoreFailure(t *testing.T) {
	boom := errors.New("connection refused")
	st := &flakyStorage{LocalStorage: newTestStorage(t, testSales(3)...), countErr: boom, failCounts: 100}
	svc := NewService(st, zaptest.NewLogger(t))

	q, err := BuildQuery(url.Values{})
	require.NoError(t, err)
	_, err = svc.List(context.Background(), q)

	var serr *StoreError
	require.ErrorAs(t, err, &serr)
	assert.Equal(t, "list sales", serr.Op)
	assert.ErrorIs(t, err, boom)
	assert.NotErrorIs(t, err, ErrTimeout)
	assert.Equal(t, int32(1), st.calls.Load(), "permanent errors are not retried")
}

func TestList_RetriesTransientErrors(t *testing.T) {
	transient := fmt.Errorf("reset by peer: %w", ErrTransient)
	st := &flakyStorage{LocalStorage: newTestStorage(t, testSales(3)...), countErr: transient, failCounts: 2}
	svc := NewService(st, zaptest.NewLogger(t), WithRetries(3))

	q, err := BuildQuery(url.Values{})
	require.NoError(t, err)
	page, err := svc.List(context.Background(), q)
	require.NoError(t, err)
	assert.Equal(t, 3, page.Total)
	assert.Equal(t, int32(3), st.calls.Load())
}

func TestList_Timeout(t *testing.T) {
	st := &flakyStorage{LocalStorage: newTestStorage(t, testSales(3)...), block: true}
	svc := NewService(st, zaptest.NewLogger(t), WithTimeout(20*time.Millisecond))

	q, err := BuildQuery(url.Values{})
	require.NoError(t, err)
	_, err = svc.List(context.Background(), q)

	var serr *StoreError
	require.ErrorAs(t, err, &serr)
	assert.ErrorIs(t, err, ErrTimeout)
}

func TestList_CanceledCaller(t *testing.T) {
	st := &flakyStorage{LocalStorage: newTestStorage(t, testSales(3)...), block: true}
	svc := NewService(st, zaptest.NewLogger(t), WithTimeout(time.Minute))

	ctx, cancel := context.WithCancel(context.Background())
	time.AfterFunc(10*time.Millisecond, cancel)

	q, err := BuildQuery(url.Values{})
	require.NoError(t, err)
	_, err = svc.List(ctx, q)

	assert.ErrorIs(t, err, context.Canceled)
	var serr *StoreError
	assert.False(t, errors.As(err, &serr), "Expected a canceled caller not to be reported as a store failure")
	assert.NotErrorIs(t, err, ErrTimeout)
}

func TestGet(t *testing.T) {
	sale := testSale(1)
	svc := NewService(newTestStorage(t, sale), zaptest.NewLogger(t))
	ctx := context.Background()

	got, err := svc.Get(ctx, sale.ID)
	require.NoError(t, err)
	assert.Equal(t, sale, got)

	_, err = svc.Get(ctx, uuid.NewString())
	assert.ErrorIs(t, err, ErrNotFound)
	var serr *StoreError
	assert.False(t, errors.As(err, &serr), "not found is not a store failure")

	_, err = svc.Get(ctx, "not-a-uuid")
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "id", verr.Field)
}

func TestBulkDelete(t *testing.T) {
	sales := testSales(3)
	st := newTestStorage(t, sales...)
	svc := NewService(st, zaptest.NewLogger(t))
	ctx := context.Background()

	n, err := svc.BulkDelete(ctx, []string{sales[0].ID, sales[1].ID, uuid.NewString()})
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	left, err := st.Count(ctx, And{})
	require.NoError(t, err)
	assert.Equal(t, 1, left)

	_, err = svc.BulkDelete(ctx, nil)
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "ids", verr.Field)

	_, err = svc.BulkDelete(ctx, []string{"bogus"})
	require.ErrorAs(t, err, &verr)
}

func TestTotalPages(t *testing.T) {
	assert.Equal(t, 3, TotalPages(57, 20))
	assert.Equal(t, 0, TotalPages(0, 10))
	assert.Equal(t, 1, TotalPages(10, 10))
	assert.Equal(t, 2, TotalPages(11, 10))
	assert.Equal(t, 0, TotalPages(5, 0))
}
