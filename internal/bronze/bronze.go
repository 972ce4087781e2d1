// Package bronze defines the raw record shapes ingested from the CRM and ERP
// exports and the sources that read them.
//
// Bronze values are kept exactly as delivered: text is not trimmed and codes
// are not validated. Any field may be null. Cleaning is the job of the
// conform package.
package bronze

import (
	"context"

	"github.com/jackc/pgx/v5/pgtype"
)

// Table keys shared by the bronze and silver schemas.
const (
	TableCustomers     = "crm_cust_info"
	TableProducts      = "crm_prd_info"
	TableSales         = "crm_sales_details"
	TableErpCustomers  = "erp_cust_az12"
	TableErpLocations  = "erp_loc_a101"
	TableErpCategories = "erp_px_cat_g1v2"
)

// Source reads a full bronze snapshot, one entity at a time.
type Source interface {
	Customers(ctx context.Context) ([]Customer, error)
	Products(ctx context.Context) ([]Product, error)
	Sales(ctx context.Context) ([]SalesLine, error)
	ErpCustomers(ctx context.Context) ([]ErpCustomer, error)
	ErpLocations(ctx context.Context) ([]ErpLocation, error)
	ErpCategories(ctx context.Context) ([]ErpCategory, error)
}

// Customer is a raw CRM customer row.
type Customer struct {
	ID            pgtype.Int4
	Key           pgtype.Text
	FirstName     pgtype.Text
	LastName      pgtype.Text
	MaritalStatus pgtype.Text
	Gender        pgtype.Text
	CreateDate    pgtype.Date
}

// Product is a raw CRM product revision row.
type Product struct {
	ID        pgtype.Int4
	Key       pgtype.Text
	Name      pgtype.Text
	Cost      pgtype.Int4
	Line      pgtype.Text
	StartDate pgtype.Timestamp
	EndDate   pgtype.Timestamp
}

// SalesLine is a raw CRM sales row. Dates are integers in YYYYMMDD form.
type SalesLine struct {
	OrderNumber pgtype.Text
	ProductKey  pgtype.Text
	CustomerID  pgtype.Int4
	OrderDate   pgtype.Int4
	ShipDate    pgtype.Int4
	DueDate     pgtype.Int4
	Sales       pgtype.Int4
	Quantity    pgtype.Int4
	Price       pgtype.Int4
}

// ErpCustomer is a raw ERP demographics row.
type ErpCustomer struct {
	ID        pgtype.Text
	BirthDate pgtype.Date
	Gender    pgtype.Text
}

// ErpLocation is a raw ERP location row.
type ErpLocation struct {
	ID      pgtype.Text
	Country pgtype.Text
}

// ErpCategory is a raw ERP product category row.
type ErpCategory struct {
	ID          pgtype.Text
	Category    pgtype.Text
	Subcategory pgtype.Text
	Maintenance pgtype.Text
}

// Column lists in source order. They double as CSV headers (matched
// case-insensitively) and as bronze table column names.
var (
	CustomerColumns    = []string{"cst_id", "cst_key", "cst_firstname", "cst_lastname", "cst_marital_status", "cst_gndr", "cst_create_date"}
	ProductColumns     = []string{"prd_id", "prd_key", "prd_nm", "prd_cost", "prd_line", "prd_start_dt", "prd_end_dt"}
	SalesColumns       = []string{"sls_ord_num", "sls_prd_key", "sls_cust_id", "sls_order_dt", "sls_ship_dt", "sls_due_dt", "sls_sales", "sls_quantity", "sls_price"}
	ErpCustomerColumns = []string{"cid", "bdate", "gen"}
	ErpLocationColumns = []string{"cid", "cntry"}
	ErpCategoryColumns = []string{"id", "cat", "subcat", "maintenance"}
)

// Values returns the row in CustomerColumns order.
func (c Customer) Values() []any {
	return []any{c.ID, c.Key, c.FirstName, c.LastName, c.MaritalStatus, c.Gender, c.CreateDate}
}

// Values returns the row in ProductColumns order.
func (p Product) Values() []any {
	return []any{p.ID, p.Key, p.Name, p.Cost, p.Line, p.StartDate, p.EndDate}
}

// Values returns the row in SalesColumns order.
func (s SalesLine) Values() []any {
	return []any{s.OrderNumber, s.ProductKey, s.CustomerID, s.OrderDate, s.ShipDate, s.DueDate, s.Sales, s.Quantity, s.Price}
}

// Values returns the row in ErpCustomerColumns order.
func (e ErpCustomer) Values() []any {
	return []any{e.ID, e.BirthDate, e.Gender}
}

// Values returns the row in ErpLocationColumns order.
func (e ErpLocation) Values() []any {
	return []any{e.ID, e.Country}
}

// Values returns the row in ErpCategoryColumns order.
func (e ErpCategory) Values() []any {
	return []any{e.ID, e.Category, e.Subcategory, e.Maintenance}
}
