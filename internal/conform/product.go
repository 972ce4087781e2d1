package conform

import (
	"sort"
	"strings"

	"github.com/JonMunkholm/conform/internal/bronze"
	"github.com/JonMunkholm/conform/internal/silver"
	"github.com/jackc/pgx/v5/pgtype"
)

// categoryLen is the width of the category segment at the start of a raw
// product key. The character after it separates category from product.
const categoryLen = 5

// Products derives category and product keys for every revision and
// rebuilds the validity intervals of each product's revision history so
// they neither overlap nor leave gaps.
//
// Revisions are grouped by raw product key. Within a group, ordered by start
// date, each end date is the next revision's start minus one day; the latest
// revision stays open-ended (null end date).
func Products(rows []bronze.Product) []silver.Product {
	keys, groups := partition(rows, func(p bronze.Product) (string, bool) {
		return strings.TrimSpace(p.Key.String), true
	})

	out := make([]silver.Product, 0, len(rows))
	for _, k := range keys {
		revisions := groups[k]
		sort.SliceStable(revisions, func(i, j int) bool {
			a, b := revisions[i].StartDate, revisions[j].StartDate
			if a.Valid != b.Valid {
				return !a.Valid
			}
			return a.Valid && a.Time.Before(b.Time)
		})

		for i, rev := range revisions {
			var end pgtype.Date
			if i+1 < len(revisions) {
				end = dayBefore(dateOf(revisions[i+1].StartDate))
			}
			out = append(out, conformProduct(rev, end))
		}
	}
	return out
}

func conformProduct(p bronze.Product, end pgtype.Date) silver.Product {
	category, key := SplitProductKey(p.Key.String)

	// Only a missing cost is defaulted; negative costs pass through.
	var cost int32
	if p.Cost.Valid {
		cost = p.Cost.Int32
	}

	return silver.Product{
		ID:         p.ID,
		CategoryID: category,
		Key:        key,
		Name:       trimText(p.Name),
		Cost:       cost,
		Line:       ProductLine(p.Line),
		StartDate:  dateOf(p.StartDate),
		EndDate:    end,
	}
}

// SplitProductKey splits a raw key such as "CO-RF-FR-R92B-58" into its
// category ("CO_RF") and product ("FR-R92B-58") parts. Missing parts are null.
func SplitProductKey(raw string) (category, key pgtype.Text) {
	r := []rune(strings.TrimSpace(raw))

	n := categoryLen
	if len(r) < n {
		n = len(r)
	}
	category = trimText(pgtype.Text{
		String: strings.ReplaceAll(string(r[:n]), "-", "_"),
		Valid:  true,
	})

	if len(r) > categoryLen+1 {
		key = trimText(pgtype.Text{String: string(r[categoryLen+1:]), Valid: true})
	}
	return category, key
}
