// Package sqlstore translates sales predicates into SQL and holds the table
// layout shared by the relational sales stores.
package sqlstore

import (
	"fmt"
	"sales_explorer/internal/sales"
	"strings"
)

// Table is the name of the sales table.
const Table = "sales"

// columns lists the sales table columns in scan and insert order.
var columns = []string{
	"id", "transaction_id", "date",
	"customer_id", "customer_name", "phone_number", "gender", "age", "customer_region", "customer_type",
	"product_id", "product_name", "brand", "product_category", "tags",
	"quantity", "price_per_unit", "discount_percentage", "total_amount", "final_amount",
	"payment_method", "order_status", "delivery_type", "store_id", "store_location",
	"salesperson_id", "employee_name",
}

// Condition is a SQL WHERE clause fragment with its parameters.
type Condition struct {
	// Clause is the SQL WHERE clause (e.g., "gender IN ($1, $2)").
	Clause string
	// Params are the positional parameters for the clause.
	Params []any
}

// translator accumulates bind parameters while a predicate tree is walked.
type translator struct {
	d      Dialect
	params []any
}

func (t *translator) bind(v any) string {
	t.params = append(t.params, v)
	return t.d.Placeholder(len(t.params))
}

// Where translates p into a condition for dialect d. Parameter numbering
// starts at 1.
func Where(d Dialect, p sales.Predicate) (Condition, error) {
	t := &translator{d: d}
	clause, err := t.translate(p)
	if err != nil {
		return Condition{}, err
	}
	return Condition{Clause: clause, Params: t.params}, nil
}

func (t *translator) translate(p sales.Predicate) (string, error) {
	switch p := p.(type) {
	case sales.And:
		return t.join(p.Predicates, " AND ", "1=1")
	case sales.Or:
		return t.join(p.Predicates, " OR ", "1=0")
	case sales.Equals:
		col, err := column(p.Field)
		if err != nil {
			return "", err
		}
		if p.Field.Kind() == sales.KindStringList {
			s, ok := p.Value.(string)
			if !ok {
				return "", fmt.Errorf("field %s: expected string value, got %T", p.Field, p.Value)
			}
			return t.d.ListContainsAny(col, []string{s}, t.bind), nil
		}
		return fmt.Sprintf("%s = %s", col, t.bind(t.d.Arg(p.Field.Kind(), p.Value))), nil
	case sales.InSet:
		col, err := column(p.Field)
		if err != nil {
			return "", err
		}
		if len(p.Values) == 0 {
			return "1=0", nil
		}
		if p.Field.Kind() == sales.KindStringList {
			return t.d.ListContainsAny(col, p.Values, t.bind), nil
		}
		params := make([]string, len(p.Values))
		for i, v := range p.Values {
			params[i] = t.bind(v)
		}
		return fmt.Sprintf("%s IN (%s)", col, strings.Join(params, ", ")), nil
	case sales.Range:
		col, err := column(p.Field)
		if err != nil {
			return "", err
		}
		var parts []string
		if p.Min != nil {
			parts = append(parts, fmt.Sprintf("%s >= %s", col, t.bind(t.d.Arg(p.Field.Kind(), p.Min))))
		}
		if p.Max != nil {
			parts = append(parts, fmt.Sprintf("%s <= %s", col, t.bind(t.d.Arg(p.Field.Kind(), p.Max))))
		}
		switch len(parts) {
		case 0:
			return "1=1", nil
		case 1:
			return parts[0], nil
		}
		return "(" + strings.Join(parts, " AND ") + ")", nil
	case sales.SubstringMatch:
		col, err := column(p.Field)
		if err != nil {
			return "", err
		}
		return t.d.ContainsFold(col, t.bind("%"+escapeLike(p.Substring)+"%")), nil
	case nil:
		return "1=1", nil
	}
	return "", fmt.Errorf("unsupported predicate %T", p)
}

func (t *translator) join(ps []sales.Predicate, sep, empty string) (string, error) {
	if len(ps) == 0 {
		return empty, nil
	}
	parts := make([]string, 0, len(ps))
	for _, c := range ps {
		clause, err := t.translate(c)
		if err != nil {
			return "", err
		}
		parts = append(parts, clause)
	}
	if len(parts) == 1 {
		return parts[0], nil
	}
	return "(" + strings.Join(parts, sep) + ")", nil
}

func column(f sales.Field) (string, error) {
	if !f.Valid() {
		return "", fmt.Errorf("unknown field: %s", f)
	}
	return f.Column(), nil
}

// CountQuery returns the statement counting rows matching filter.
func CountQuery(d Dialect, filter sales.Predicate) (string, []any, error) {
	cond, err := Where(d, filter)
	if err != nil {
		return "", nil, err
	}
	return fmt.Sprintf("SELECT COUNT(*) FROM %s WHERE %s", Table, cond.Clause), cond.Params, nil
}

// FindQuery returns the statement selecting the window [offset,
// offset+limit) of rows matching filter in the given order. Ties are broken
// by id.
func FindQuery(d Dialect, filter sales.Predicate, order sales.Sort, offset, limit int) (string, []any, error) {
	if !order.Field.Sortable() {
		return "", nil, fmt.Errorf("cannot sort by %q", order.Field)
	}
	if offset < 0 || limit < 0 {
		return "", nil, fmt.Errorf("invalid window offset=%d limit=%d", offset, limit)
	}
	t := &translator{d: d}
	clause, err := t.translate(filter)
	if err != nil {
		return "", nil, err
	}
	dir := "DESC"
	if order.Direction == sales.Asc {
		dir = "ASC"
	}
	query := fmt.Sprintf("SELECT %s FROM %s WHERE %s ORDER BY %s %s, id ASC LIMIT %s OFFSET %s",
		strings.Join(columns, ", "), Table, clause, order.Field.Column(), dir,
		t.bind(limit), t.bind(offset))
	return query, t.params, nil
}

// ReadQuery returns the statement selecting one row by id.
func ReadQuery(d Dialect) string {
	return fmt.Sprintf("SELECT %s FROM %s WHERE id = %s", strings.Join(columns, ", "), Table, d.Placeholder(1))
}

// InsertQuery returns the statement inserting one row; its parameters are
// InsertArgs.
func InsertQuery(d Dialect) string {
	params := make([]string, len(columns))
	for i := range columns {
		params[i] = d.Placeholder(i + 1)
	}
	return fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)", Table, strings.Join(columns, ", "), strings.Join(params, ", "))
}

// DeleteQuery returns the statement deleting the rows with the given ids.
func DeleteQuery(d Dialect, ids []string) (string, []any) {
	t := &translator{d: d}
	params := make([]string, len(ids))
	for i, id := range ids {
		params[i] = t.bind(id)
	}
	return fmt.Sprintf("DELETE FROM %s WHERE id IN (%s)", Table, strings.Join(params, ", ")), t.params
}
