package conform

import (
	"math"
	"time"

	"github.com/JonMunkholm/conform/internal/bronze"
	"github.com/JonMunkholm/conform/internal/silver"
	"github.com/jackc/pgx/v5/pgtype"
)

// Sales conforms sales lines one-for-one: integer dates are parsed and the
// sales amount and unit price are reconciled against the quantity.
func Sales(rows []bronze.SalesLine) []silver.SalesLine {
	out := make([]silver.SalesLine, len(rows))
	for i, r := range rows {
		sales, price := Reconcile(r.Sales, r.Quantity, r.Price)
		out[i] = silver.SalesLine{
			OrderNumber: trimText(r.OrderNumber),
			ProductKey:  trimText(r.ProductKey),
			CustomerID:  r.CustomerID,
			OrderDate:   ParseDate8(r.OrderDate),
			ShipDate:    ParseDate8(r.ShipDate),
			DueDate:     ParseDate8(r.DueDate),
			Sales:       sales,
			Quantity:    r.Quantity,
			Price:       price,
		}
	}
	return out
}

// IsCalendarDate8 reports whether v is an 8-digit YYYYMMDD value naming a
// real calendar day. ParseDate8 accepts values that fail this check.
func IsCalendarDate8(v pgtype.Int4) bool {
	d := ParseDate8(v)
	if !d.Valid {
		return false
	}
	n := int(v.Int32)
	y, m, day := d.Time.Date()
	return y == n/10000 && int(m) == (n/100)%100 && day == n%100
}

// ParseDate8 parses an integer in YYYYMMDD form. Zero, negative and values
// that are not exactly 8 digits are null.
//
// The calendar is not validated: month and day overflow roll forward the way
// time.Date does, so 20240230 becomes 2024-03-01.
func ParseDate8(v pgtype.Int4) pgtype.Date {
	if !v.Valid || v.Int32 < 10000000 || v.Int32 > 99999999 {
		return pgtype.Date{}
	}
	n := int(v.Int32)
	y, m, d := n/10000, (n/100)%100, n%100
	return pgtype.Date{Time: time.Date(y, time.Month(m), d, 0, 0, 0, 0, time.UTC), Valid: true}
}

// Reconcile enforces sales = quantity * price and returns the corrected
// sales and price. The order of the two steps matters:
//
//  1. When price is usable (non-null, non-zero), a null or non-positive
//     sales becomes quantity * |price|. A positive sales is replaced only
//     when quantity * |price| is known and differs from it; a null quantity
//     or an int4 overflow leaves it as given.
//  2. When price is null or non-positive it is derived from the sales value
//     produced by step 1 as sales / quantity (integer division). A null or
//     zero quantity yields a null price.
//
// Quantity is trusted and never changed. Results that do not fit in an
// int4 column are null.
func Reconcile(sales, quantity, price pgtype.Int4) (pgtype.Int4, pgtype.Int4) {
	// A zero price skips step 1 so that (50, 5, 0) keeps its sales and
	// derives price 10. Non-positive sales with a zero price stay as given.
	if price.Valid && price.Int32 != 0 {
		expected := mulInt4(quantity, absInt4(price))
		switch {
		case !sales.Valid || sales.Int32 <= 0:
			sales = expected
		case expected.Valid && sales.Int32 != expected.Int32:
			sales = expected
		}
	}

	if !price.Valid || price.Int32 <= 0 {
		price = divInt4(sales, quantity)
	}

	return sales, price
}

func absInt4(v pgtype.Int4) pgtype.Int4 {
	if !v.Valid {
		return v
	}
	n := int64(v.Int32)
	if n < 0 {
		n = -n
	}
	return int4(n)
}

func mulInt4(a, b pgtype.Int4) pgtype.Int4 {
	if !a.Valid || !b.Valid {
		return pgtype.Int4{}
	}
	return int4(int64(a.Int32) * int64(b.Int32))
}

func divInt4(a, b pgtype.Int4) pgtype.Int4 {
	if !a.Valid || !b.Valid || b.Int32 == 0 {
		return pgtype.Int4{}
	}
	return int4(int64(a.Int32) / int64(b.Int32))
}

func int4(n int64) pgtype.Int4 {
	if n > math.MaxInt32 || n < math.MinInt32 {
		return pgtype.Int4{}
	}
	return pgtype.Int4{Int32: int32(n), Valid: true}
}
