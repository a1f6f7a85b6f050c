package sales

import (
	"time"

	"github.com/shopspring/decimal"
)

func init() {
	// The client reads amounts as numbers, not strings.
	decimal.MarshalJSONWithoutQuotes = true
}

// Sale represents one imported sales transaction. Records are read-only once
// imported.
type Sale struct {
	ID            string    `json:"id"`
	TransactionID int64     `json:"transactionId"`
	Date          time.Time `json:"date"`

	CustomerID     string `json:"customerId"`
	CustomerName   string `json:"customerName"`
	PhoneNumber    string `json:"phoneNumber"`
	Gender         string `json:"gender"`
	Age            int    `json:"age"`
	CustomerRegion string `json:"customerRegion"`
	CustomerType   string `json:"customerType"`

	ProductID       string   `json:"productId"`
	ProductName     string   `json:"productName"`
	Brand           string   `json:"brand"`
	ProductCategory string   `json:"productCategory"`
	Tags            []string `json:"tags"`

	Quantity           int             `json:"quantity"`
	PricePerUnit       decimal.Decimal `json:"pricePerUnit"`
	DiscountPercentage decimal.Decimal `json:"discountPercentage"`
	TotalAmount        decimal.Decimal `json:"totalAmount"`
	FinalAmount        decimal.Decimal `json:"finalAmount"`

	PaymentMethod string `json:"paymentMethod"`
	OrderStatus   string `json:"orderStatus"`
	DeliveryType  string `json:"deliveryType"`
	StoreID       string `json:"storeId"`
	StoreLocation string `json:"storeLocation"`
	SalespersonID string `json:"salespersonId"`
	EmployeeName  string `json:"employeeName"`
}

// Discount is the amount taken off the total by the discount percentage.
func (s *Sale) Discount() decimal.Decimal {
	return s.TotalAmount.Sub(s.FinalAmount)
}

// Page is the response envelope for a listing request.
type Page struct {
	Data       []*Sale `json:"data"`
	Page       int     `json:"page"`
	Limit      int     `json:"limit"`
	Total      int     `json:"total"`
	TotalPages int     `json:"totalPages"`
}

// TotalPages returns ceil(total/limit), or 0 when limit is not positive.
func TotalPages(total, limit int) int {
	if limit <= 0 {
		return 0
	}
	return (total + limit - 1) / limit
}
