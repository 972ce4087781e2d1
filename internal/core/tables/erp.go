package tables

import (
	"time"

	"github.com/JonMunkholm/conform/internal/bronze"
	"github.com/JonMunkholm/conform/internal/conform"
	"github.com/JonMunkholm/conform/internal/silver"
)

func registerERP() {
	table[bronze.ErpCustomer, silver.ErpCustomer]{
		key:           bronze.TableErpCustomers,
		group:         "ERP",
		label:         "Customer Demographics",
		bronzeColumns: bronze.ErpCustomerColumns,
		columns:       silver.ErpCustomerColumns,
		read:          bronze.Source.ErpCustomers,
		conform:       conform.ErpCustomers,
		check:         conform.CheckErpCustomers,
	}.register()

	table[bronze.ErpLocation, silver.ErpLocation]{
		key:           bronze.TableErpLocations,
		group:         "ERP",
		label:         "Customer Locations",
		bronzeColumns: bronze.ErpLocationColumns,
		columns:       silver.ErpLocationColumns,
		read:          bronze.Source.ErpLocations,
		conform: func(rows []bronze.ErpLocation, _ time.Time) []silver.ErpLocation {
			return conform.ErpLocations(rows)
		},
		check: func(rows []silver.ErpLocation, _ time.Time) []conform.Issue {
			return conform.CheckErpLocations(rows)
		},
	}.register()

	table[bronze.ErpCategory, silver.ErpCategory]{
		key:           bronze.TableErpCategories,
		group:         "ERP",
		label:         "Product Categories",
		bronzeColumns: bronze.ErpCategoryColumns,
		columns:       silver.ErpCategoryColumns,
		read:          bronze.Source.ErpCategories,
		conform: func(rows []bronze.ErpCategory, _ time.Time) []silver.ErpCategory {
			return conform.ErpCategories(rows)
		},
		check: func(rows []silver.ErpCategory, _ time.Time) []conform.Issue {
			return conform.CheckErpCategories(rows)
		},
	}.register()
}
