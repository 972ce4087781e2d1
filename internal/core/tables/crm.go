package tables

import (
	"time"

	"github.com/JonMunkholm/conform/internal/bronze"
	"github.com/JonMunkholm/conform/internal/conform"
	"github.com/JonMunkholm/conform/internal/silver"
)

func registerCRM() {
	table[bronze.Customer, silver.Customer]{
		key:           bronze.TableCustomers,
		group:         "CRM",
		label:         "Customers",
		bronzeColumns: bronze.CustomerColumns,
		columns:       silver.CustomerColumns,
		read:          bronze.Source.Customers,
		conform: func(rows []bronze.Customer, _ time.Time) []silver.Customer {
			return conform.Customers(rows)
		},
		check: func(rows []silver.Customer, _ time.Time) []conform.Issue {
			return conform.CheckCustomers(rows)
		},
	}.register()

	table[bronze.Product, silver.Product]{
		key:           bronze.TableProducts,
		group:         "CRM",
		label:         "Products",
		bronzeColumns: bronze.ProductColumns,
		columns:       silver.ProductColumns,
		read:          bronze.Source.Products,
		conform: func(rows []bronze.Product, _ time.Time) []silver.Product {
			return conform.Products(rows)
		},
		check: func(rows []silver.Product, _ time.Time) []conform.Issue {
			return conform.CheckProducts(rows)
		},
	}.register()

	table[bronze.SalesLine, silver.SalesLine]{
		key:           bronze.TableSales,
		group:         "CRM",
		label:         "Sales Details",
		bronzeColumns: bronze.SalesColumns,
		columns:       silver.SalesColumns,
		read:          bronze.Source.Sales,
		conform: func(rows []bronze.SalesLine, _ time.Time) []silver.SalesLine {
			return conform.Sales(rows)
		},
		check: func(rows []silver.SalesLine, _ time.Time) []conform.Issue {
			return conform.CheckSales(rows)
		},
		checkRaw: conform.CheckSalesDates,
	}.register()
}
