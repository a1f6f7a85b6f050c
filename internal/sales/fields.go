package sales

import (
	"time"

	"github.com/shopspring/decimal"
)

// Field names a filterable or sortable attribute of a Sale. The value is the
// attribute's JSON name.
type Field string

const (
	FieldTransactionID      Field = "transactionId"
	FieldDate               Field = "date"
	FieldCustomerID         Field = "customerId"
	FieldCustomerName       Field = "customerName"
	FieldPhoneNumber        Field = "phoneNumber"
	FieldGender             Field = "gender"
	FieldAge                Field = "age"
	FieldCustomerRegion     Field = "customerRegion"
	FieldCustomerType       Field = "customerType"
	FieldProductID          Field = "productId"
	FieldProductName        Field = "productName"
	FieldBrand              Field = "brand"
	FieldProductCategory    Field = "productCategory"
	FieldTags               Field = "tags"
	FieldQuantity           Field = "quantity"
	FieldPricePerUnit       Field = "pricePerUnit"
	FieldDiscountPercentage Field = "discountPercentage"
	FieldTotalAmount        Field = "totalAmount"
	FieldFinalAmount        Field = "finalAmount"
	FieldPaymentMethod      Field = "paymentMethod"
	FieldOrderStatus        Field = "orderStatus"
	FieldDeliveryType       Field = "deliveryType"
	FieldStoreID            Field = "storeId"
	FieldStoreLocation      Field = "storeLocation"
	FieldSalespersonID      Field = "salespersonId"
	FieldEmployeeName       Field = "employeeName"
)

// Kind is the value type of a Field.
type Kind int

const (
	KindString Kind = iota
	KindInt
	KindDecimal
	KindTime
	KindStringList
)

type fieldInfo struct {
	kind     Kind
	column   string
	sortable bool
}

var fields = map[Field]fieldInfo{
	FieldTransactionID:      {KindInt, "transaction_id", true},
	FieldDate:               {KindTime, "date", true},
	FieldCustomerID:         {KindString, "customer_id", false},
	FieldCustomerName:       {KindString, "customer_name", true},
	FieldPhoneNumber:        {KindString, "phone_number", false},
	FieldGender:             {KindString, "gender", false},
	FieldAge:                {KindInt, "age", true},
	FieldCustomerRegion:     {KindString, "customer_region", true},
	FieldCustomerType:       {KindString, "customer_type", false},
	FieldProductID:          {KindString, "product_id", false},
	FieldProductName:        {KindString, "product_name", true},
	FieldBrand:              {KindString, "brand", false},
	FieldProductCategory:    {KindString, "product_category", false},
	FieldTags:               {KindStringList, "tags", false},
	FieldQuantity:           {KindInt, "quantity", true},
	FieldPricePerUnit:       {KindDecimal, "price_per_unit", true},
	FieldDiscountPercentage: {KindDecimal, "discount_percentage", true},
	FieldTotalAmount:        {KindDecimal, "total_amount", true},
	FieldFinalAmount:        {KindDecimal, "final_amount", true},
	FieldPaymentMethod:      {KindString, "payment_method", false},
	FieldOrderStatus:        {KindString, "order_status", false},
	FieldDeliveryType:       {KindString, "delivery_type", false},
	FieldStoreID:            {KindString, "store_id", false},
	FieldStoreLocation:      {KindString, "store_location", false},
	FieldSalespersonID:      {KindString, "salesperson_id", false},
	FieldEmployeeName:       {KindString, "employee_name", false},
}

// Valid reports whether f names a known Sale attribute.
func (f Field) Valid() bool {
	_, ok := fields[f]
	return ok
}

// Kind returns the value type of f.
func (f Field) Kind() Kind {
	return fields[f].kind
}

// Column returns the snake_case column name SQL stores use for f.
func (f Field) Column() string {
	return fields[f].column
}

// Sortable reports whether listings may be ordered by f.
func (f Field) Sortable() bool {
	return fields[f].sortable
}

// Value returns the attribute f of s: a string, int64, decimal.Decimal,
// time.Time or []string depending on f.Kind().
func (s *Sale) Value(f Field) any {
	switch f {
	case FieldTransactionID:
		return s.TransactionID
	case FieldDate:
		return s.Date
	case FieldCustomerID:
		return s.CustomerID
	case FieldCustomerName:
		return s.CustomerName
	case FieldPhoneNumber:
		return s.PhoneNumber
	case FieldGender:
		return s.Gender
	case FieldAge:
		return int64(s.Age)
	case FieldCustomerRegion:
		return s.CustomerRegion
	case FieldCustomerType:
		return s.CustomerType
	case FieldProductID:
		return s.ProductID
	case FieldProductName:
		return s.ProductName
	case FieldBrand:
		return s.Brand
	case FieldProductCategory:
		return s.ProductCategory
	case FieldTags:
		return s.Tags
	case FieldQuantity:
		return int64(s.Quantity)
	case FieldPricePerUnit:
		return s.PricePerUnit
	case FieldDiscountPercentage:
		return s.DiscountPercentage
	case FieldTotalAmount:
		return s.TotalAmount
	case FieldFinalAmount:
		return s.FinalAmount
	case FieldPaymentMethod:
		return s.PaymentMethod
	case FieldOrderStatus:
		return s.OrderStatus
	case FieldDeliveryType:
		return s.DeliveryType
	case FieldStoreID:
		return s.StoreID
	case FieldStoreLocation:
		return s.StoreLocation
	case FieldSalespersonID:
		return s.SalespersonID
	case FieldEmployeeName:
		return s.EmployeeName
	}
	return nil
}

// compareValues orders two values of the same Kind. It returns a negative
// number when a sorts before b, zero when equal and positive otherwise.
func compareValues(a, b any) int {
	switch av := a.(type) {
	case string:
		bv, _ := b.(string)
		switch {
		case av < bv:
			return -1
		case av > bv:
			return 1
		}
		return 0
	case int64:
		bv, _ := b.(int64)
		switch {
		case av < bv:
			return -1
		case av > bv:
			return 1
		}
		return 0
	case decimal.Decimal:
		bv, _ := b.(decimal.Decimal)
		return av.Cmp(bv)
	case time.Time:
		bv, _ := b.(time.Time)
		return av.Compare(bv)
	}
	return 0
}
