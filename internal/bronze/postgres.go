package bronze

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// DBTX is the subset of pgx used for reading.
// Satisfied by *pgxpool.Pool, *pgx.Conn and pgx.Tx.
type DBTX interface {
	Exec(context.Context, string, ...interface{}) (pgconn.CommandTag, error)
	Query(context.Context, string, ...interface{}) (pgx.Rows, error)
	QueryRow(context.Context, string, ...interface{}) pgx.Row
}

// PostgresSource reads bronze tables from a Postgres schema (default "bronze").
type PostgresSource struct {
	db     DBTX
	schema string
}

// NewPostgresSource creates a source reading from schema.
func NewPostgresSource(db DBTX, schema string) *PostgresSource {
	if schema == "" {
		schema = "bronze"
	}
	return &PostgresSource{db: db, schema: schema}
}

// selectQuery builds the SELECT for a table. Column order matches the
// struct field order so rows can be scanned by position.
func (s *PostgresSource) selectQuery(table string, columns []string) string {
	quoted := make([]string, len(columns))
	for i, c := range columns {
		quoted[i] = pgx.Identifier{c}.Sanitize()
	}
	return fmt.Sprintf("SELECT %s FROM %s",
		strings.Join(quoted, ", "),
		pgx.Identifier{s.schema, table}.Sanitize(),
	)
}

func (s *PostgresSource) Customers(ctx context.Context) ([]Customer, error) {
	return queryAll[Customer](ctx, s, TableCustomers, CustomerColumns)
}

func (s *PostgresSource) Products(ctx context.Context) ([]Product, error) {
	return queryAll[Product](ctx, s, TableProducts, ProductColumns)
}

func (s *PostgresSource) Sales(ctx context.Context) ([]SalesLine, error) {
	return queryAll[SalesLine](ctx, s, TableSales, SalesColumns)
}

func (s *PostgresSource) ErpCustomers(ctx context.Context) ([]ErpCustomer, error) {
	return queryAll[ErpCustomer](ctx, s, TableErpCustomers, ErpCustomerColumns)
}

func (s *PostgresSource) ErpLocations(ctx context.Context) ([]ErpLocation, error) {
	return queryAll[ErpLocation](ctx, s, TableErpLocations, ErpLocationColumns)
}

func (s *PostgresSource) ErpCategories(ctx context.Context) ([]ErpCategory, error) {
	return queryAll[ErpCategory](ctx, s, TableErpCategories, ErpCategoryColumns)
}

func queryAll[T any](ctx context.Context, s *PostgresSource, table string, columns []string) ([]T, error) {
	rows, err := s.db.Query(ctx, s.selectQuery(table, columns))
	if err != nil {
		return nil, fmt.Errorf("query %s.%s: %w", s.schema, table, err)
	}

	out, err := pgx.CollectRows(rows, pgx.RowToStructByPos[T])
	if err != nil {
		return nil, fmt.Errorf("scan %s.%s: %w", s.schema, table, err)
	}
	return out, nil
}
