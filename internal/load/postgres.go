package load

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// DefaultBatchSize is the number of INSERTs queued per pgx.Batch when COPY
// is disabled.
const DefaultBatchSize = 500

// TxBeginner is the subset of pgx used by PostgresLoader.
// Satisfied by *pgxpool.Pool and *pgx.Conn.
type TxBeginner interface {
	Begin(ctx context.Context) (pgx.Tx, error)
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

// PostgresLoader loads tables of one Postgres schema.
type PostgresLoader struct {
	db        TxBeginner
	schema    string
	useCopy   bool
	batchSize int
}

// PostgresOption configures a PostgresLoader.
type PostgresOption func(*PostgresLoader)

// WithCopy selects the COPY protocol (the default) or batched INSERTs.
func WithCopy(enabled bool) PostgresOption {
	return func(l *PostgresLoader) { l.useCopy = enabled }
}

// WithBatchSize sets how many INSERTs are sent per round trip when COPY is
// disabled. Non-positive values keep DefaultBatchSize.
func WithBatchSize(n int) PostgresOption {
	return func(l *PostgresLoader) {
		if n > 0 {
			l.batchSize = n
		}
	}
}

// NewPostgresLoader creates a loader writing to schema.
func NewPostgresLoader(db TxBeginner, schema string, opts ...PostgresOption) *PostgresLoader {
	l := &PostgresLoader{
		db:        db,
		schema:    schema,
		useCopy:   true,
		batchSize: DefaultBatchSize,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

func (l *PostgresLoader) ident(table string) pgx.Identifier {
	return pgx.Identifier{l.schema, table}
}

// Truncate empties schema.table.
func (l *PostgresLoader) Truncate(ctx context.Context, table string) error {
	if _, err := l.db.Exec(ctx, "TRUNCATE TABLE "+l.ident(table).Sanitize()); err != nil {
		return fmt.Errorf("truncate %s.%s: %w", l.schema, table, err)
	}
	return nil
}

// Replace truncates schema.table and inserts rows in one transaction.
func (l *PostgresLoader) Replace(ctx context.Context, table string, columns []string, rows [][]any) (int64, error) {
	if err := checkRows(columns, rows); err != nil {
		return 0, fmt.Errorf("replace %s.%s: %w", l.schema, table, err)
	}

	tx, err := l.db.Begin(ctx)
	if err != nil {
		return 0, fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	ident := l.ident(table)
	if _, err := tx.Exec(ctx, "TRUNCATE TABLE "+ident.Sanitize()); err != nil {
		return 0, fmt.Errorf("truncate %s.%s: %w", l.schema, table, err)
	}

	var n int64
	if l.useCopy {
		n, err = tx.CopyFrom(ctx, ident, columns, pgx.CopyFromRows(rows))
		if err != nil {
			return 0, fmt.Errorf("copy into %s.%s: %w", l.schema, table, err)
		}
	} else {
		n, err = l.insertBatches(ctx, tx, ident, columns, rows)
		if err != nil {
			return 0, fmt.Errorf("insert into %s.%s: %w", l.schema, table, err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return 0, fmt.Errorf("commit: %w", err)
	}
	return n, nil
}

func (l *PostgresLoader) insertBatches(ctx context.Context, tx pgx.Tx, ident pgx.Identifier, columns []string, rows [][]any) (int64, error) {
	query := insertSQL(ident.Sanitize(), columns, func(i int) string { return fmt.Sprintf("$%d", i) })

	var inserted int64
	for start := 0; start < len(rows); start += l.batchSize {
		end := min(start+l.batchSize, len(rows))

		batch := &pgx.Batch{}
		for _, row := range rows[start:end] {
			batch.Queue(query, row...)
		}

		br := tx.SendBatch(ctx, batch)
		for i := start; i < end; i++ {
			tag, err := br.Exec()
			if err != nil {
				_ = br.Close()
				return inserted, fmt.Errorf("row %d: %w", i, err)
			}
			inserted += tag.RowsAffected()
		}
		if err := br.Close(); err != nil {
			return inserted, err
		}
	}
	return inserted, nil
}
