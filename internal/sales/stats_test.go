package sales

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestComputeStats(t *testing.T) {
	a := testSale(1)
	a.Quantity = 3
	a.TotalAmount = decimal.NewFromInt(300)
	a.FinalAmount = decimal.NewFromInt(270)

	b := testSale(2)
	b.Quantity = 1
	b.TotalAmount = decimal.NewFromInt(100)
	b.FinalAmount = decimal.NewFromInt(100)

	st := ComputeStats([]*Sale{a, b})
	assert.Equal(t, 4, st.TotalUnits)
	assert.True(t, st.TotalAmount.Equal(decimal.NewFromInt(400)), "total amount %s", st.TotalAmount)
	assert.True(t, st.TotalDiscount.Equal(decimal.NewFromInt(30)), "total discount %s", st.TotalDiscount)
}

func TestComputeStats_Empty(t *testing.T) {
	st := ComputeStats(nil)
	assert.Equal(t, 0, st.TotalUnits)
	assert.True(t, st.TotalAmount.IsZero())
	assert.True(t, st.TotalDiscount.IsZero())
}
