package conform

import (
	"time"

	"github.com/jackc/pgx/v5/pgtype"
)

// partition groups rows by key, keeping keys in order of first appearance
// and rows within a group in input order. Rows for which key reports false
// are dropped.
func partition[K comparable, T any](rows []T, key func(T) (K, bool)) ([]K, map[K][]T) {
	var keys []K
	groups := make(map[K][]T)
	for _, r := range rows {
		k, ok := key(r)
		if !ok {
			continue
		}
		if _, seen := groups[k]; !seen {
			keys = append(keys, k)
		}
		groups[k] = append(groups[k], r)
	}
	return keys, groups
}

// dateOf truncates a timestamp to its calendar day.
func dateOf(ts pgtype.Timestamp) pgtype.Date {
	if !ts.Valid {
		return pgtype.Date{}
	}
	y, m, d := ts.Time.Date()
	return pgtype.Date{Time: time.Date(y, m, d, 0, 0, 0, 0, time.UTC), Valid: true}
}

// dayBefore returns the calendar day preceding d.
func dayBefore(d pgtype.Date) pgtype.Date {
	if !d.Valid {
		return pgtype.Date{}
	}
	return pgtype.Date{Time: d.Time.AddDate(0, 0, -1), Valid: true}
}
