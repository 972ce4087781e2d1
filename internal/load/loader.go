// Package load writes conformed rows into a warehouse schema.
//
// Every load is a full reload: the target table is truncated and refilled
// inside one transaction, so readers see either the previous contents or
// the new ones, never an empty or half-written table.
package load

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
)

// Loader is the sink the pipeline writes to. Table names are unqualified;
// each Loader is bound to one schema.
type Loader interface {
	// Truncate empties table.
	Truncate(ctx context.Context, table string) error

	// Replace truncates table and inserts rows in one transaction.
	// Each row holds values in columns order. It returns the number of rows
	// inserted. On error nothing is changed.
	Replace(ctx context.Context, table string, columns []string, rows [][]any) (int64, error)
}

// ErrColumnMismatch is returned when a row does not have one value per column.
var ErrColumnMismatch = errors.New("row width does not match column count")

// checkRows verifies every row has len(columns) values.
func checkRows(columns []string, rows [][]any) error {
	if len(columns) == 0 {
		return errors.New("no columns given")
	}
	for i, r := range rows {
		if len(r) != len(columns) {
			return fmt.Errorf("row %d has %d values for %d columns: %w", i, len(r), len(columns), ErrColumnMismatch)
		}
	}
	return nil
}

// quoteColumns returns the column list as quoted identifiers.
func quoteColumns(columns []string) string {
	quoted := make([]string, len(columns))
	for i, c := range columns {
		quoted[i] = pgx.Identifier{c}.Sanitize()
	}
	return strings.Join(quoted, ", ")
}

// insertSQL builds a single-row INSERT using placeholder(i) for the i-th
// (1-based) parameter.
func insertSQL(target string, columns []string, placeholder func(int) string) string {
	params := make([]string, len(columns))
	for i := range columns {
		params[i] = placeholder(i + 1)
	}
	return fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)", target, quoteColumns(columns), strings.Join(params, ", "))
}
