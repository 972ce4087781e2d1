package conform

// quality.go detects rows that break a silver table invariant.
//
// Checks never modify rows. Some rules are detected here but not repaired
// by the conformers: pre-1926 birth dates, negative costs, padded category
// text.

import (
	"strings"
	"time"

	"github.com/JonMunkholm/conform/internal/bronze"
	"github.com/JonMunkholm/conform/internal/silver"
	"github.com/jackc/pgx/v5/pgtype"
)

// EarliestBirthDate is the lower bound of plausible ERP birth dates.
var EarliestBirthDate = time.Date(1926, time.January, 1, 0, 0, 0, 0, time.UTC)

// Issue counts the rows of a table that violate one rule.
type Issue struct {
	Table  string `json:"table"`
	Column string `json:"column"`
	Rule   string `json:"rule"`
	Count  int    `json:"count"`
}

// issues accumulates counts per (column, rule) in first-seen order.
type issues struct {
	table string
	list  []Issue
	index map[string]int
}

func newIssues(table string) *issues {
	return &issues{table: table, index: make(map[string]int)}
}

func (is *issues) add(column, rule string) {
	k := column + "\x00" + rule
	if i, ok := is.index[k]; ok {
		is.list[i].Count++
		return
	}
	is.index[k] = len(is.list)
	is.list = append(is.list, Issue{Table: is.table, Column: column, Rule: rule, Count: 1})
}

func (is *issues) padded(column string, t pgtype.Text) {
	if t.Valid && t.String != strings.TrimSpace(t.String) {
		is.add(column, "unwanted whitespace")
	}
}

func (is *issues) enum(column, v string, allowed ...string) {
	if v == silver.NotAvailable {
		return
	}
	for _, a := range allowed {
		if v == a {
			return
		}
	}
	is.add(column, "value outside enumeration")
}

// CheckCustomers reports null or duplicate ids, padded text and
// out-of-enumeration categories.
func CheckCustomers(rows []silver.Customer) []Issue {
	is := newIssues(bronze.TableCustomers)
	seen := make(map[int32]bool, len(rows))
	for _, r := range rows {
		if seen[r.ID] {
			is.add("cst_id", "duplicate key")
		}
		seen[r.ID] = true
		is.padded("cst_key", r.Key)
		is.padded("cst_firstname", r.FirstName)
		is.padded("cst_lastname", r.LastName)
		is.enum("cst_marital_status", r.MaritalStatus, silver.MaritalSingle, silver.MaritalMarried)
		is.enum("cst_gndr", r.Gender, silver.GenderFemale, silver.GenderMale)
	}
	return is.list
}

// CheckProducts reports negative costs, inverted validity intervals and
// out-of-enumeration product lines.
func CheckProducts(rows []silver.Product) []Issue {
	is := newIssues(bronze.TableProducts)
	for _, r := range rows {
		if r.Cost < 0 {
			is.add("prd_cost", "negative cost")
		}
		if r.StartDate.Valid && r.EndDate.Valid && r.EndDate.Time.Before(r.StartDate.Time) {
			is.add("prd_end_dt", "end before start")
		}
		is.padded("prd_nm", r.Name)
		is.enum("prd_line", r.Line, silver.LineMountain, silver.LineRoad, silver.LineOtherSales, silver.LineTouring)
	}
	return is.list
}

// CheckSales reports order dates after ship or due dates and rows where
// sales, quantity and price are not positive and consistent.
func CheckSales(rows []silver.SalesLine) []Issue {
	is := newIssues(bronze.TableSales)
	for _, r := range rows {
		if r.OrderDate.Valid {
			if r.ShipDate.Valid && r.OrderDate.Time.After(r.ShipDate.Time) {
				is.add("sls_order_dt", "order after ship date")
			}
			if r.DueDate.Valid && r.OrderDate.Time.After(r.DueDate.Time) {
				is.add("sls_order_dt", "order after due date")
			}
		}
		if !r.Sales.Valid || !r.Quantity.Valid || !r.Price.Valid {
			is.add("sls_sales", "null amount")
			continue
		}
		if r.Sales.Int32 <= 0 || r.Quantity.Int32 <= 0 || r.Price.Int32 <= 0 {
			is.add("sls_sales", "non-positive amount")
			continue
		}
		if int64(r.Sales.Int32) != int64(r.Quantity.Int32)*int64(r.Price.Int32) {
			is.add("sls_sales", "sales != quantity * price")
		}
	}
	return is.list
}

// CheckSalesDates reports raw 8-digit dates that are not calendar days.
// Sales rolls them forward to a valid date, so this is the only trace.
func CheckSalesDates(rows []bronze.SalesLine) []Issue {
	is := newIssues(bronze.TableSales)
	for _, r := range rows {
		is.calendar("sls_order_dt", r.OrderDate)
		is.calendar("sls_ship_dt", r.ShipDate)
		is.calendar("sls_due_dt", r.DueDate)
	}
	return is.list
}

func (is *issues) calendar(column string, v pgtype.Int4) {
	if ParseDate8(v).Valid && !IsCalendarDate8(v) {
		is.add(column, "not a calendar date")
	}
}

// CheckErpCustomers reports birth dates before EarliestBirthDate or after
// asOf.
func CheckErpCustomers(rows []silver.ErpCustomer, asOf time.Time) []Issue {
	is := newIssues(bronze.TableErpCustomers)
	for _, r := range rows {
		is.padded("cid", r.ID)
		is.enum("gen", r.Gender, silver.GenderFemale, silver.GenderMale)
		if !r.BirthDate.Valid {
			continue
		}
		if r.BirthDate.Time.Before(EarliestBirthDate) {
			is.add("bdate", "before 1926-01-01")
		}
		if r.BirthDate.Time.After(asOf) {
			is.add("bdate", "in the future")
		}
	}
	return is.list
}

// CheckErpLocations reports ids that still contain separators.
func CheckErpLocations(rows []silver.ErpLocation) []Issue {
	is := newIssues(bronze.TableErpLocations)
	for _, r := range rows {
		if r.ID.Valid && strings.IndexFunc(r.ID.String, isSeparator) >= 0 {
			is.add("cid", "separator in id")
		}
		if r.Country != strings.TrimSpace(r.Country) {
			is.add("cntry", "unwanted whitespace")
		}
	}
	return is.list
}

// CheckErpCategories reports padded text. The category table is loaded
// verbatim, so this is the only guard on it.
func CheckErpCategories(rows []silver.ErpCategory) []Issue {
	is := newIssues(bronze.TableErpCategories)
	for _, r := range rows {
		is.padded("id", r.ID)
		is.padded("cat", r.Category)
		is.padded("subcat", r.Subcategory)
		is.padded("maintenance", r.Maintenance)
	}
	return is.list
}
