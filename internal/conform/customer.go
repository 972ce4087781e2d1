package conform

import (
	"sort"

	"github.com/JonMunkholm/conform/internal/bronze"
	"github.com/JonMunkholm/conform/internal/silver"
)

// Customers de-duplicates CRM customers by cst_id, keeping the most recently
// created row of each group. Rows without an id are dropped. Output is
// ordered by id.
func Customers(rows []bronze.Customer) []silver.Customer {
	ids, groups := partition(rows, func(c bronze.Customer) (int32, bool) {
		return c.ID.Int32, c.ID.Valid
	})

	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	out := make([]silver.Customer, 0, len(ids))
	for _, id := range ids {
		out = append(out, conformCustomer(latestCustomer(groups[id])))
	}
	return out
}

// latestCustomer returns the row with the newest create date. Null dates
// rank below any date; ties keep the earliest row in input order.
func latestCustomer(group []bronze.Customer) bronze.Customer {
	sorted := make([]bronze.Customer, len(group))
	copy(sorted, group)
	sort.SliceStable(sorted, func(i, j int) bool {
		a, b := sorted[i].CreateDate, sorted[j].CreateDate
		if a.Valid != b.Valid {
			return a.Valid
		}
		return a.Valid && a.Time.After(b.Time)
	})
	return sorted[0]
}

func conformCustomer(c bronze.Customer) silver.Customer {
	return silver.Customer{
		ID:            c.ID.Int32,
		Key:           trimText(c.Key),
		FirstName:     trimText(c.FirstName),
		LastName:      trimText(c.LastName),
		MaritalStatus: MaritalStatus(c.MaritalStatus),
		Gender:        CRMGender(c.Gender),
		CreateDate:    c.CreateDate,
	}
}
