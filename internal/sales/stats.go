package sales

import "github.com/shopspring/decimal"

// Stats summarises a set of sales. Computed from one page of a listing it
// describes that page only, not the whole filtered result.
type Stats struct {
	TotalUnits    int             `json:"totalUnits"`
	TotalAmount   decimal.Decimal `json:"totalAmount"`
	TotalDiscount decimal.Decimal `json:"totalDiscount"`
}

// ComputeStats sums quantity, total amount and discount over records.
func ComputeStats(records []*Sale) Stats {
	st := Stats{TotalAmount: decimal.Zero, TotalDiscount: decimal.Zero}
	for _, r := range records {
		st.TotalUnits += r.Quantity
		st.TotalAmount = st.TotalAmount.Add(r.TotalAmount)
		st.TotalDiscount = st.TotalDiscount.Add(r.Discount())
	}
	return st
}
