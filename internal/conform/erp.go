package conform

import (
	"strings"
	"time"
	"unicode"

	"github.com/JonMunkholm/conform/internal/bronze"
	"github.com/JonMunkholm/conform/internal/silver"
	"github.com/jackc/pgx/v5/pgtype"
)

// erpCustomerPrefix is prepended to some ERP customer ids; the CRM key
// space does not carry it.
const erpCustomerPrefix = "NAS"

// ErpCustomers conforms ERP demographics one-for-one. Birth dates after the
// asOf day are nulled; implausibly old dates are kept.
func ErpCustomers(rows []bronze.ErpCustomer, asOf time.Time) []silver.ErpCustomer {
	y, m, d := asOf.Date()
	today := time.Date(y, m, d, 0, 0, 0, 0, time.UTC)

	out := make([]silver.ErpCustomer, len(rows))
	for i, r := range rows {
		birth := r.BirthDate
		if birth.Valid && birth.Time.After(today) {
			birth = pgtype.Date{}
		}
		out[i] = silver.ErpCustomer{
			ID:        ErpCustomerID(r.ID),
			BirthDate: birth,
			Gender:    ERPGender(r.Gender),
		}
	}
	return out
}

// ErpCustomerID trims the id and strips the "NAS" prefix (case-sensitive).
func ErpCustomerID(raw pgtype.Text) pgtype.Text {
	id := trimText(raw)
	if !id.Valid {
		return id
	}
	return trimText(pgtype.Text{String: strings.TrimPrefix(id.String, erpCustomerPrefix), Valid: true})
}

// ErpLocations conforms ERP locations one-for-one.
func ErpLocations(rows []bronze.ErpLocation) []silver.ErpLocation {
	out := make([]silver.ErpLocation, len(rows))
	for i, r := range rows {
		out[i] = silver.ErpLocation{
			ID:      ErpLocationID(r.ID),
			Country: Country(r.Country),
		}
	}
	return out
}

// ErpLocationID removes separator characters ("AW-00011000" -> "AW00011000").
func ErpLocationID(raw pgtype.Text) pgtype.Text {
	if !raw.Valid {
		return raw
	}
	stripped := strings.Map(func(r rune) rune {
		if isSeparator(r) {
			return -1
		}
		return r
	}, raw.String)
	return trimText(pgtype.Text{String: stripped, Valid: true})
}

func isSeparator(r rune) bool {
	switch r {
	case '-', '_', '/', '.':
		return true
	}
	return unicode.IsSpace(r)
}

// ErpCategories passes category reference rows through unchanged.
func ErpCategories(rows []bronze.ErpCategory) []silver.ErpCategory {
	out := make([]silver.ErpCategory, len(rows))
	for i, r := range rows {
		out[i] = silver.ErpCategory(r)
	}
	return out
}
