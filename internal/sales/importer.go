package sales

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// importColumns lists the dataset headers ReadCSV requires.
var importColumns = []string{
	"Transaction ID", "Date", "Customer ID", "Customer Name", "Phone Number",
	"Gender", "Age", "Customer Region", "Customer Type", "Product ID",
	"Product Name", "Brand", "Product Category", "Tags", "Quantity",
	"Price per Unit", "Discount Percentage", "Total Amount", "Final Amount",
	"Payment Method", "Order Status", "Delivery Type", "Store ID",
	"Store Location", "Salesperson ID", "Employee Name",
}

var importDateLayouts = []string{
	time.DateOnly,
	time.RFC3339,
	time.DateTime,
	"1/2/2006",
}

// ReadCSV parses a sales dataset with a header row. Columns are matched by
// header name, so their order does not matter. Every record gets a new ID.
func ReadCSV(r io.Reader) ([]*Sale, error) {
	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}
	index := make(map[string]int, len(header))
	for i, h := range header {
		index[strings.TrimSpace(strings.TrimPrefix(h, "\ufeff"))] = i
	}
	for _, col := range importColumns {
		if _, ok := index[col]; !ok {
			return nil, fmt.Errorf("missing column %q", col)
		}
	}

	var out []*Sale
	for line := 2; ; line++ {
		row, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		s, err := rowToSale(row, index)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		out = append(out, s)
	}
	return out, nil
}

func rowToSale(row []string, index map[string]int) (*Sale, error) {
	get := func(col string) string {
		i := index[col]
		if i >= len(row) {
			return ""
		}
		return strings.TrimSpace(row[i])
	}

	s := &Sale{
		ID:              uuid.NewString(),
		CustomerID:      get("Customer ID"),
		CustomerName:    get("Customer Name"),
		PhoneNumber:     get("Phone Number"),
		Gender:          get("Gender"),
		CustomerRegion:  get("Customer Region"),
		CustomerType:    get("Customer Type"),
		ProductID:       get("Product ID"),
		ProductName:     get("Product Name"),
		Brand:           get("Brand"),
		ProductCategory: get("Product Category"),
		Tags:            parseTags(get("Tags")),
		PaymentMethod:   get("Payment Method"),
		OrderStatus:     get("Order Status"),
		DeliveryType:    get("Delivery Type"),
		StoreID:         get("Store ID"),
		StoreLocation:   get("Store Location"),
		SalespersonID:   get("Salesperson ID"),
		EmployeeName:    get("Employee Name"),
	}

	var err error
	if s.TransactionID, err = strconv.ParseInt(get("Transaction ID"), 10, 64); err != nil {
		return nil, fmt.Errorf("invalid Transaction ID: %w", err)
	}
	if s.Date, err = parseImportDate(get("Date")); err != nil {
		return nil, err
	}
	if s.Age, err = parseCount("Age", get("Age")); err != nil {
		return nil, err
	}
	if s.Quantity, err = parseCount("Quantity", get("Quantity")); err != nil {
		return nil, err
	}
	for _, d := range []struct {
		col string
		dst *decimal.Decimal
	}{
		{"Price per Unit", &s.PricePerUnit},
		{"Discount Percentage", &s.DiscountPercentage},
		{"Total Amount", &s.TotalAmount},
		{"Final Amount", &s.FinalAmount},
	} {
		v, err := decimal.NewFromString(get(d.col))
		if err != nil {
			return nil, fmt.Errorf("invalid %s: %w", d.col, err)
		}
		if v.IsNegative() {
			return nil, fmt.Errorf("invalid %s: must not be negative", d.col)
		}
		*d.dst = v
	}
	return s, nil
}

func parseCount(col, raw string) (int, error) {
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", col, err)
	}
	if v < 0 {
		return 0, fmt.Errorf("invalid %s: must not be negative", col)
	}
	return v, nil
}

func parseImportDate(raw string) (time.Time, error) {
	for _, layout := range importDateLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("invalid Date: %q", raw)
}

func parseTags(raw string) []string {
	raw = strings.ReplaceAll(raw, `"`, "")
	tags := []string{}
	for _, t := range strings.Split(raw, ",") {
		if t = strings.TrimSpace(t); t != "" {
			tags = append(tags, t)
		}
	}
	return tags
}
