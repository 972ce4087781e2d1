package load

import (
	"context"
	"database/sql"
	"fmt"
)

// SQLLoader loads tables through database/sql. It is used with the DuckDB
// driver, which accepts "?" placeholders.
type SQLLoader struct {
	db     *sql.DB
	schema string
}

// NewSQLLoader creates a loader writing to schema.
func NewSQLLoader(db *sql.DB, schema string) *SQLLoader {
	return &SQLLoader{db: db, schema: schema}
}

func (l *SQLLoader) target(table string) string {
	return quoteColumns([]string{l.schema}) + "." + quoteColumns([]string{table})
}

// Truncate empties schema.table.
func (l *SQLLoader) Truncate(ctx context.Context, table string) error {
	if _, err := l.db.ExecContext(ctx, "DELETE FROM "+l.target(table)); err != nil {
		return fmt.Errorf("truncate %s.%s: %w", l.schema, table, err)
	}
	return nil
}

// Replace truncates schema.table and inserts rows with a prepared statement,
// all inside one transaction.
func (l *SQLLoader) Replace(ctx context.Context, table string, columns []string, rows [][]any) (int64, error) {
	if err := checkRows(columns, rows); err != nil {
		return 0, fmt.Errorf("replace %s.%s: %w", l.schema, table, err)
	}

	tx, err := l.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	target := l.target(table)
	if _, err := tx.ExecContext(ctx, "DELETE FROM "+target); err != nil {
		return 0, fmt.Errorf("truncate %s.%s: %w", l.schema, table, err)
	}

	stmt, err := tx.PrepareContext(ctx, insertSQL(target, columns, func(int) string { return "?" }))
	if err != nil {
		return 0, fmt.Errorf("prepare insert into %s.%s: %w", l.schema, table, err)
	}
	defer stmt.Close()

	var n int64
	for i, row := range rows {
		if _, err := stmt.ExecContext(ctx, row...); err != nil {
			return 0, fmt.Errorf("insert into %s.%s row %d: %w", l.schema, table, i, err)
		}
		n++
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit: %w", err)
	}
	return n, nil
}
