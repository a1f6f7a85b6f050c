package sales

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

var baseDate = time.Date(2023, time.January, 1, 10, 0, 0, 0, time.UTC)

// testSale returns a fully populated sale; callers override what they test.
func testSale(n int) *Sale {
	return &Sale{
		ID:                 uuid.NewString(),
		TransactionID:      int64(n),
		Date:               baseDate.AddDate(0, 0, n),
		CustomerID:         "CUST-1",
		CustomerName:       "Neha Yadav",
		PhoneNumber:        "9720639364",
		Gender:             "Female",
		Age:                25,
		CustomerRegion:     "North",
		CustomerType:       "Returning",
		ProductID:          "PROD-1",
		ProductName:        "Wireless Earbuds",
		Brand:              "SoundWave",
		ProductCategory:    "Electronics",
		Tags:               []string{"wireless", "gadgets"},
		Quantity:           1,
		PricePerUnit:       decimal.NewFromInt(100),
		DiscountPercentage: decimal.Zero,
		TotalAmount:        decimal.NewFromInt(100),
		FinalAmount:        decimal.NewFromInt(100),
		PaymentMethod:      "UPI",
		OrderStatus:        "Completed",
		DeliveryType:       "Standard",
		StoreID:            "ST-1",
		StoreLocation:      "Delhi",
		SalespersonID:      "EMP-1",
		EmployeeName:       "Harsh Agarwal",
	}
}

func testSales(count int) []*Sale {
	out := make([]*Sale, count)
	for i := range out {
		out[i] = testSale(i + 1)
	}
	return out
}

func newTestStorage(t *testing.T, sales ...*Sale) *LocalStorage {
	t.Helper()
	st := NewLocalStorage()
	require.NoError(t, st.Insert(context.Background(), sales))
	return st
}
