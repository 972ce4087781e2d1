// Package silver defines the conformed record shapes written to the silver
// schema. Every categorical field holds a member of its enumeration or
// NotAvailable; text fields carry no surrounding whitespace.
package silver

import "github.com/jackc/pgx/v5/pgtype"

// NotAvailable is the canonical marker for unknown or invalid categorical input.
const NotAvailable = "n/a"

// Marital status values.
const (
	MaritalSingle  = "Single"
	MaritalMarried = "Married"
)

// Gender values.
const (
	GenderFemale = "Female"
	GenderMale   = "Male"
)

// Product line values.
const (
	LineMountain   = "Mountain"
	LineRoad       = "Road"
	LineOtherSales = "Other Sales"
	LineTouring    = "Touring"
)

// Country values produced by the location conformer.
const (
	CountryGermany      = "Germany"
	CountryUnitedStates = "United States"
)

// Customer is one row of silver.crm_cust_info, unique by ID.
type Customer struct {
	ID            int32
	Key           pgtype.Text
	FirstName     pgtype.Text
	LastName      pgtype.Text
	MaritalStatus string
	Gender        string
	CreateDate    pgtype.Date
}

// Product is one revision row of silver.crm_prd_info.
type Product struct {
	ID         pgtype.Int4
	CategoryID pgtype.Text
	Key        pgtype.Text
	Name       pgtype.Text
	Cost       int32
	Line       string
	StartDate  pgtype.Date
	EndDate    pgtype.Date // null for the open-ended latest revision
}

// SalesLine is one row of silver.crm_sales_details.
type SalesLine struct {
	OrderNumber pgtype.Text
	ProductKey  pgtype.Text
	CustomerID  pgtype.Int4
	OrderDate   pgtype.Date
	ShipDate    pgtype.Date
	DueDate     pgtype.Date
	Sales       pgtype.Int4
	Quantity    pgtype.Int4
	Price       pgtype.Int4
}

// ErpCustomer is one row of silver.erp_cust_az12.
type ErpCustomer struct {
	ID        pgtype.Text
	BirthDate pgtype.Date
	Gender    string
}

// ErpLocation is one row of silver.erp_loc_a101.
type ErpLocation struct {
	ID      pgtype.Text
	Country string
}

// ErpCategory is one row of silver.erp_px_cat_g1v2.
type ErpCategory struct {
	ID          pgtype.Text
	Category    pgtype.Text
	Subcategory pgtype.Text
	Maintenance pgtype.Text
}

// Column lists in load order. dwh_create_date is filled by the database.
var (
	CustomerColumns    = []string{"cst_id", "cst_key", "cst_firstname", "cst_lastname", "cst_marital_status", "cst_gndr", "cst_create_date"}
	ProductColumns     = []string{"prd_id", "cat_id", "prd_key", "prd_nm", "prd_cost", "prd_line", "prd_start_dt", "prd_end_dt"}
	SalesColumns       = []string{"sls_ord_num", "sls_prd_key", "sls_cust_id", "sls_order_dt", "sls_ship_dt", "sls_due_dt", "sls_sales", "sls_quantity", "sls_price"}
	ErpCustomerColumns = []string{"cid", "bdate", "gen"}
	ErpLocationColumns = []string{"cid", "cntry"}
	ErpCategoryColumns = []string{"id", "cat", "subcat", "maintenance"}
)

func (c Customer) Values() []any {
	return []any{c.ID, c.Key, c.FirstName, c.LastName, c.MaritalStatus, c.Gender, c.CreateDate}
}

func (p Product) Values() []any {
	return []any{p.ID, p.CategoryID, p.Key, p.Name, p.Cost, p.Line, p.StartDate, p.EndDate}
}

func (s SalesLine) Values() []any {
	return []any{s.OrderNumber, s.ProductKey, s.CustomerID, s.OrderDate, s.ShipDate, s.DueDate, s.Sales, s.Quantity, s.Price}
}

func (e ErpCustomer) Values() []any {
	return []any{e.ID, e.BirthDate, e.Gender}
}

func (e ErpLocation) Values() []any {
	return []any{e.ID, e.Country}
}

func (e ErpCategory) Values() []any {
	return []any{e.ID, e.Category, e.Subcategory, e.Maintenance}
}
