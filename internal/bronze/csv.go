package bronze

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// MaxHeaderSearchRows is the maximum number of rows to scan for the header.
var MaxHeaderSearchRows = 20

// ContextCheckInterval is how often (in rows) to check for context cancellation.
var ContextCheckInterval = 1000

// DefaultFiles maps table keys to their export paths relative to the data
// directory, following the layout of the CRM and ERP extracts.
var DefaultFiles = map[string]string{
	TableCustomers:     "source_crm/cust_info.csv",
	TableProducts:      "source_crm/prd_info.csv",
	TableSales:         "source_crm/sales_details.csv",
	TableErpCustomers:  "source_erp/CUST_AZ12.csv",
	TableErpLocations:  "source_erp/LOC_A101.csv",
	TableErpCategories: "source_erp/PX_CAT_G1V2.csv",
}

// CSVSource reads the six bronze extracts from CSV files under Dir.
type CSVSource struct {
	Dir   string
	Files map[string]string // table key -> path relative to Dir (or absolute)
}

// NewCSVSource creates a CSVSource using DefaultFiles, with overrides
// applied on top.
func NewCSVSource(dir string, overrides map[string]string) *CSVSource {
	files := make(map[string]string, len(DefaultFiles))
	for k, v := range DefaultFiles {
		files[k] = v
	}
	for k, v := range overrides {
		if v != "" {
			files[k] = v
		}
	}
	return &CSVSource{Dir: dir, Files: files}
}

// Path returns the file path for a table key.
func (s *CSVSource) Path(table string) (string, error) {
	name, ok := s.Files[table]
	if !ok {
		return "", fmt.Errorf("no source file configured for table %s", table)
	}
	if filepath.IsAbs(name) {
		return name, nil
	}
	return filepath.Join(s.Dir, name), nil
}

func (s *CSVSource) Customers(ctx context.Context) ([]Customer, error) {
	return readFile(ctx, s, TableCustomers, CustomerColumns, func(row []string, idx HeaderIndex) Customer {
		return Customer{
			ID:            ToInt4(idx.Cell(row, "cst_id")),
			Key:           ToText(idx.Cell(row, "cst_key")),
			FirstName:     ToText(idx.Cell(row, "cst_firstname")),
			LastName:      ToText(idx.Cell(row, "cst_lastname")),
			MaritalStatus: ToText(idx.Cell(row, "cst_marital_status")),
			Gender:        ToText(idx.Cell(row, "cst_gndr")),
			CreateDate:    ToDate(idx.Cell(row, "cst_create_date")),
		}
	})
}

func (s *CSVSource) Products(ctx context.Context) ([]Product, error) {
	return readFile(ctx, s, TableProducts, ProductColumns, func(row []string, idx HeaderIndex) Product {
		return Product{
			ID:        ToInt4(idx.Cell(row, "prd_id")),
			Key:       ToText(idx.Cell(row, "prd_key")),
			Name:      ToText(idx.Cell(row, "prd_nm")),
			Cost:      ToInt4(idx.Cell(row, "prd_cost")),
			Line:      ToText(idx.Cell(row, "prd_line")),
			StartDate: ToTimestamp(idx.Cell(row, "prd_start_dt")),
			EndDate:   ToTimestamp(idx.Cell(row, "prd_end_dt")),
		}
	})
}

func (s *CSVSource) Sales(ctx context.Context) ([]SalesLine, error) {
	return readFile(ctx, s, TableSales, SalesColumns, func(row []string, idx HeaderIndex) SalesLine {
		return SalesLine{
			OrderNumber: ToText(idx.Cell(row, "sls_ord_num")),
			ProductKey:  ToText(idx.Cell(row, "sls_prd_key")),
			CustomerID:  ToInt4(idx.Cell(row, "sls_cust_id")),
			OrderDate:   ToInt4(idx.Cell(row, "sls_order_dt")),
			ShipDate:    ToInt4(idx.Cell(row, "sls_ship_dt")),
			DueDate:     ToInt4(idx.Cell(row, "sls_due_dt")),
			Sales:       ToInt4(idx.Cell(row, "sls_sales")),
			Quantity:    ToInt4(idx.Cell(row, "sls_quantity")),
			Price:       ToInt4(idx.Cell(row, "sls_price")),
		}
	})
}

func (s *CSVSource) ErpCustomers(ctx context.Context) ([]ErpCustomer, error) {
	return readFile(ctx, s, TableErpCustomers, ErpCustomerColumns, func(row []string, idx HeaderIndex) ErpCustomer {
		return ErpCustomer{
			ID:        ToText(idx.Cell(row, "cid")),
			BirthDate: ToDate(idx.Cell(row, "bdate")),
			Gender:    ToText(idx.Cell(row, "gen")),
		}
	})
}

func (s *CSVSource) ErpLocations(ctx context.Context) ([]ErpLocation, error) {
	return readFile(ctx, s, TableErpLocations, ErpLocationColumns, func(row []string, idx HeaderIndex) ErpLocation {
		return ErpLocation{
			ID:      ToText(idx.Cell(row, "cid")),
			Country: ToText(idx.Cell(row, "cntry")),
		}
	})
}

func (s *CSVSource) ErpCategories(ctx context.Context) ([]ErpCategory, error) {
	return readFile(ctx, s, TableErpCategories, ErpCategoryColumns, func(row []string, idx HeaderIndex) ErpCategory {
		return ErpCategory{
			ID:          ToText(idx.Cell(row, "id")),
			Category:    ToText(idx.Cell(row, "cat")),
			Subcategory: ToText(idx.Cell(row, "subcat")),
			Maintenance: ToText(idx.Cell(row, "maintenance")),
		}
	})
}

func readFile[T any](ctx context.Context, s *CSVSource, table string, columns []string, build func([]string, HeaderIndex) T) ([]T, error) {
	path, err := s.Path(table)
	if err != nil {
		return nil, err
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", table, err)
	}
	defer f.Close()

	rows, err := ReadCSV(ctx, f, columns, build)
	if err != nil {
		return nil, fmt.Errorf("read %s (%s): %w", table, filepath.Base(path), err)
	}
	return rows, nil
}

// ReadCSV parses r into records. The header row must contain every name in
// columns (case-insensitive, any order) and may be preceded by up to
// MaxHeaderSearchRows junk rows. Empty rows are skipped.
//
// Input is decoded as UTF-8: a leading BOM is dropped and invalid byte
// sequences become U+FFFD.
func ReadCSV[T any](ctx context.Context, r io.Reader, columns []string, build func([]string, HeaderIndex) T) ([]T, error) {
	decoded := transform.NewReader(r, unicode.BOMOverride(unicode.UTF8.NewDecoder()))

	cr := csv.NewReader(decoded)
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true

	var idx HeaderIndex
	for i := 0; i < MaxHeaderSearchRows; i++ {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("invalid csv: %w", err)
		}
		candidate := MakeHeaderIndex(rec)
		if candidate.Has(columns) {
			idx = candidate
			break
		}
	}
	if idx == nil {
		return nil, fmt.Errorf("column not found: header with %s", strings.Join(columns, ", "))
	}

	var out []T
	for n := 0; ; n++ {
		if n%ContextCheckInterval == 0 {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
		}

		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("invalid csv: %w", err)
		}
		if isEmptyRow(rec) {
			continue
		}
		out = append(out, build(rec, idx))
	}

	return out, nil
}

func isEmptyRow(row []string) bool {
	for _, v := range row {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}
