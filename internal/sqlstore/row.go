package sqlstore

import "sales_explorer/internal/sales"

// Scanner is satisfied by *sql.Row, *sql.Rows and pgx.Row.
type Scanner interface {
	Scan(dest ...any) error
}

// ScanTargets returns scan destinations for s in column order. Date and tags
// are stored differently per engine, so the caller supplies their holders.
func ScanTargets(s *sales.Sale, date, tags any) []any {
	return []any{
		&s.ID, &s.TransactionID, date,
		&s.CustomerID, &s.CustomerName, &s.PhoneNumber, &s.Gender, &s.Age, &s.CustomerRegion, &s.CustomerType,
		&s.ProductID, &s.ProductName, &s.Brand, &s.ProductCategory, tags,
		&s.Quantity, &s.PricePerUnit, &s.DiscountPercentage, &s.TotalAmount, &s.FinalAmount,
		&s.PaymentMethod, &s.OrderStatus, &s.DeliveryType, &s.StoreID, &s.StoreLocation,
		&s.SalespersonID, &s.EmployeeName,
	}
}

// InsertArgs returns the arguments of InsertQuery for s. Date and tags are
// passed already encoded for the engine; amounts go through d.Arg.
func InsertArgs(d Dialect, s *sales.Sale, date, tags any) []any {
	amount := func(f sales.Field) any { return d.Arg(sales.KindDecimal, s.Value(f)) }
	return []any{
		s.ID, s.TransactionID, date,
		s.CustomerID, s.CustomerName, s.PhoneNumber, s.Gender, s.Age, s.CustomerRegion, s.CustomerType,
		s.ProductID, s.ProductName, s.Brand, s.ProductCategory, tags,
		s.Quantity, amount(sales.FieldPricePerUnit), amount(sales.FieldDiscountPercentage),
		amount(sales.FieldTotalAmount), amount(sales.FieldFinalAmount),
		s.PaymentMethod, s.OrderStatus, s.DeliveryType, s.StoreID, s.StoreLocation,
		s.SalespersonID, s.EmployeeName,
	}
}
