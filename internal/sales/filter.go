package sales

import (
	"fmt"
	"sort"
	"time"

	"github.com/shopspring/decimal"
	"go.einride.tech/aip/filtering"
	expr "google.golang.org/genproto/googleapis/api/expr/v1alpha1"
)

// filterDeclarations declares every scalar Sale field for AIP-160 filter
// expressions. List fields are left out; tags are filtered with the tags
// parameter.
func filterDeclarations() (*filtering.Declarations, error) {
	names := make([]string, 0, len(fields))
	for f := range fields {
		names = append(names, string(f))
	}
	sort.Strings(names)

	opts := []filtering.DeclarationOption{filtering.DeclareStandardFunctions()}
	for _, name := range names {
		var t *expr.Type
		switch Field(name).Kind() {
		case KindString:
			t = filtering.TypeString
		case KindInt:
			t = filtering.TypeInt
		case KindDecimal:
			t = filtering.TypeFloat
		case KindTime:
			t = filtering.TypeTimestamp
		default:
			continue
		}
		opts = append(opts, filtering.DeclareIdent(name, t))
	}
	return filtering.NewDeclarations(opts...)
}

// ParseFilter parses an AIP-160 filter expression such as
//
//	age >= 30 AND gender = "Female"
//
// into a Predicate. Supported operators are =, >=, <=, AND and OR. Amount
// fields are typed as doubles, so they compare against decimal literals
// (totalAmount >= 100.0); an integer literal fails the type check.
func ParseFilter(filterStr string) (Predicate, error) {
	decls, err := filterDeclarations()
	if err != nil {
		return nil, fmt.Errorf("create filter declarations: %w", err)
	}

	filter, err := filtering.ParseFilterString(filterStr, decls)
	if err != nil {
		return nil, invalid("filter", "%v", err)
	}
	if filter.CheckedExpr == nil {
		return And{}, nil
	}
	return translateExpr(filter.CheckedExpr.GetExpr())
}

func translateExpr(e *expr.Expr) (Predicate, error) {
	call, ok := e.GetExprKind().(*expr.Expr_CallExpr)
	if !ok {
		return nil, invalid("filter", "unsupported expression %T", e.GetExprKind())
	}
	args := call.CallExpr.GetArgs()

	switch fn := call.CallExpr.GetFunction(); fn {
	case "AND", "_&&_":
		children, err := translateArgs(args)
		if err != nil {
			return nil, err
		}
		return And{Predicates: children}, nil
	case "OR", "_||_":
		children, err := translateArgs(args)
		if err != nil {
			return nil, err
		}
		return Or{Predicates: children}, nil
	case "=", "_==_", ">=", "_>=_", "<=", "_<=_":
		return translateComparison(fn, args)
	default:
		return nil, invalid("filter", "unsupported operator %q", fn)
	}
}

func translateArgs(args []*expr.Expr) ([]Predicate, error) {
	out := make([]Predicate, 0, len(args))
	for _, a := range args {
		p, err := translateExpr(a)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, nil
}

func translateComparison(fn string, args []*expr.Expr) (Predicate, error) {
	if len(args) != 2 {
		return nil, invalid("filter", "%s requires 2 arguments", fn)
	}
	ident, ok := args[0].GetExprKind().(*expr.Expr_IdentExpr)
	if !ok {
		return nil, invalid("filter", "left side of %s must be a field", fn)
	}
	field := Field(ident.IdentExpr.GetName())
	if !field.Valid() {
		return nil, invalid("filter", "unknown field %q", field)
	}

	value, err := filterValue(field, args[1])
	if err != nil {
		return nil, err
	}

	switch fn {
	case ">=", "_>=_":
		return Range{Field: field, Min: value}, nil
	case "<=", "_<=_":
		return Range{Field: field, Max: value}, nil
	default:
		return Equals{Field: field, Value: value}, nil
	}
}

// filterValue converts a constant (or timestamp("...") call) into the Go type
// used for field's Kind.
func filterValue(field Field, e *expr.Expr) (any, error) {
	if call, ok := e.GetExprKind().(*expr.Expr_CallExpr); ok {
		if call.CallExpr.GetFunction() == "timestamp" && len(call.CallExpr.GetArgs()) == 1 {
			return filterValue(field, call.CallExpr.GetArgs()[0])
		}
		return nil, invalid("filter", "unsupported function %q", call.CallExpr.GetFunction())
	}
	c, ok := e.GetExprKind().(*expr.Expr_ConstExpr)
	if !ok {
		return nil, invalid("filter", "right side of comparison on %s must be a constant", field)
	}

	switch k := c.ConstExpr.GetConstantKind().(type) {
	case *expr.Constant_StringValue:
		switch field.Kind() {
		case KindString:
			return k.StringValue, nil
		case KindTime:
			t, err := time.Parse(time.RFC3339Nano, k.StringValue)
			if err != nil {
				return nil, invalid("filter", "%s: %q is not an RFC 3339 timestamp", field, k.StringValue)
			}
			return t.UTC(), nil
		}
	case *expr.Constant_Int64Value:
		if field.Kind() == KindInt {
			return k.Int64Value, nil
		}
	case *expr.Constant_DoubleValue:
		if field.Kind() == KindDecimal {
			return decimal.NewFromFloat(k.DoubleValue), nil
		}
	}
	return nil, invalid("filter", "value type does not match field %s", field)
}
