package sales

import (
	"bufio"
	"io"
	"strconv"
	"strings"
	"time"
)

// exportHeaders returns the CSV column headers of an export.
func exportHeaders() []string {
	return []string{
		"Transaction ID", "Date", "Customer ID", "Customer Name", "Phone Number",
		"Gender", "Age", "Region", "Customer Type", "Product Name", "Brand",
		"Category", "Quantity", "Price/Unit", "Discount %", "Total Amount",
		"Final Amount", "Payment Method", "Order Status", "Store Location",
	}
}

// saleToExportRow converts a sale to an export row (matching exportHeaders order).
func saleToExportRow(s *Sale) []string {
	return []string{
		strconv.FormatInt(s.TransactionID, 10),
		s.Date.UTC().Format(time.DateOnly),
		s.CustomerID,
		s.CustomerName,
		s.PhoneNumber,
		s.Gender,
		strconv.Itoa(s.Age),
		s.CustomerRegion,
		s.CustomerType,
		s.ProductName,
		s.Brand,
		s.ProductCategory,
		strconv.Itoa(s.Quantity),
		s.PricePerUnit.String(),
		s.DiscountPercentage.String(),
		s.TotalAmount.String(),
		s.FinalAmount.String(),
		s.PaymentMethod,
		s.OrderStatus,
		s.StoreLocation,
	}
}

// WriteCSV writes records as CSV: a plain header line, then one line per
// record with every field double-quoted. Lines are separated by "\n" and the
// last line has no terminator.
func WriteCSV(w io.Writer, records []*Sale) error {
	bw := bufio.NewWriter(w)
	bw.WriteString(strings.Join(exportHeaders(), ","))
	for _, r := range records {
		bw.WriteByte('\n')
		for i, cell := range saleToExportRow(r) {
			if i > 0 {
				bw.WriteByte(',')
			}
			bw.WriteByte('"')
			bw.WriteString(strings.ReplaceAll(cell, `"`, `""`))
			bw.WriteByte('"')
		}
	}
	return bw.Flush()
}

// ExportFilename names an export file taken on day now.
func ExportFilename(now time.Time) string {
	return "sales-export-" + now.UTC().Format(time.DateOnly) + ".csv"
}
