package sqlite

import (
	"database/sql/driver"
	"fmt"
	"sales_explorer/internal/sqlstore"
	"strings"

	sqlitedriver "modernc.org/sqlite" // Pure-Go SQLite driver
)

func init() {
	if err := sqlitedriver.RegisterDeterministicScalarFunction(sqlstore.FoldFunction, 1, fold); err != nil {
		panic(fmt.Sprintf("register %s: %v", sqlstore.FoldFunction, err))
	}
}

// fold lower-cases its text argument with Unicode rules, matching the
// in-memory store's substring search.
func fold(_ *sqlitedriver.FunctionContext, args []driver.Value) (driver.Value, error) {
	switch v := args[0].(type) {
	case nil:
		return nil, nil
	case string:
		return strings.ToLower(v), nil
	case []byte:
		return strings.ToLower(string(v)), nil
	default:
		return strings.ToLower(fmt.Sprint(v)), nil
	}
}
