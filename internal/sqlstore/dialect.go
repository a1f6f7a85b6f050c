package sqlstore

import (
	"fmt"
	"sales_explorer/internal/sales"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Dialect captures what differs between the SQL engines the stores target.
type Dialect interface {
	// Placeholder returns the n-th (1-based) bind parameter marker.
	Placeholder(n int) string
	// ContainsFold returns a case-insensitive LIKE clause of column against
	// param; the pattern is escaped with a backslash.
	ContainsFold(column, param string) string
	// ListContainsAny returns a clause matching rows whose list column
	// shares at least one element with values.
	ListContainsAny(column string, values []string, bind func(any) string) string
	// Arg converts a predicate value of the given kind into a driver argument.
	Arg(kind sales.Kind, v any) any
}

type postgres struct{}

// Postgres is the dialect for PostgreSQL via pgx. Tags are a text[] column,
// dates a timestamptz and amounts numeric.
var Postgres Dialect = postgres{}

func (postgres) Placeholder(n int) string {
	return fmt.Sprintf("$%d", n)
}

func (postgres) ContainsFold(column, param string) string {
	return fmt.Sprintf(`%s ILIKE %s ESCAPE '\'`, column, param)
}

func (postgres) ListContainsAny(column string, values []string, bind func(any) string) string {
	return fmt.Sprintf("%s && %s::text[]", column, bind(values))
}

func (postgres) Arg(_ sales.Kind, v any) any {
	if d, ok := v.(decimal.Decimal); ok {
		return d.String()
	}
	return v
}

type sqlite struct{}

// SQLite is the dialect for modernc.org/sqlite. Tags are stored as a JSON
// array, dates as Unix milliseconds and amounts as REAL.
var SQLite Dialect = sqlite{}

func (sqlite) Placeholder(int) string {
	return "?"
}

// FoldFunction is the SQL function the SQLite dialect folds case with.
// SQLite's LIKE and lower() fold ASCII only, so the sqlite store registers
// a Unicode-aware implementation under this name.
const FoldFunction = "sales_fold"

func (sqlite) ContainsFold(column, param string) string {
	return fmt.Sprintf(`%s(%s) LIKE %s(%s) ESCAPE '\'`, FoldFunction, column, FoldFunction, param)
}

func (sqlite) ListContainsAny(column string, values []string, bind func(any) string) string {
	params := make([]string, len(values))
	for i, v := range values {
		params[i] = bind(v)
	}
	return fmt.Sprintf("EXISTS (SELECT 1 FROM json_each(%s) WHERE json_each.value IN (%s))",
		column, strings.Join(params, ", "))
}

func (sqlite) Arg(_ sales.Kind, v any) any {
	switch x := v.(type) {
	case time.Time:
		return x.UnixMilli()
	case decimal.Decimal:
		return x.InexactFloat64()
	}
	return v
}

// escapeLike makes s match literally inside a LIKE pattern that uses a
// backslash escape.
func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}
