package conform

import (
	"strings"

	"github.com/JonMunkholm/conform/internal/silver"
	"github.com/jackc/pgx/v5/pgtype"
)

// Rule maps raw codes accepted by Match to a canonical Value.
// Match receives the trimmed, upper-cased raw value.
type Rule struct {
	Match func(code string) bool
	Value string
}

// Lookup is an ordered list of rules evaluated top-to-bottom.
// The first matching rule wins; Default applies when none match.
type Lookup struct {
	Rules   []Rule
	Default string
}

// Codes returns a rule matching any of the given codes exactly
// (after normalization).
func Codes(value string, codes ...string) Rule {
	return Rule{
		Match: func(code string) bool {
			for _, c := range codes {
				if code == c {
					return true
				}
			}
			return false
		},
		Value: value,
	}
}

// Blank returns a rule matching empty input.
func Blank(value string) Rule {
	return Rule{Match: func(code string) bool { return code == "" }, Value: value}
}

// Resolve returns the canonical value for s and whether a rule matched.
func (l Lookup) Resolve(s string) (string, bool) {
	code := strings.ToUpper(strings.TrimSpace(s))
	for _, r := range l.Rules {
		if r.Match(code) {
			return r.Value, true
		}
	}
	return l.Default, false
}

// Map resolves a nullable raw value. Null input resolves like blank input.
func (l Lookup) Map(raw pgtype.Text) string {
	v, _ := l.Resolve(raw.String)
	return v
}

var (
	maritalStatusLookup = Lookup{
		Rules: []Rule{
			Codes(silver.MaritalSingle, "S"),
			Codes(silver.MaritalMarried, "M"),
		},
		Default: silver.NotAvailable,
	}

	crmGenderLookup = Lookup{
		Rules: []Rule{
			Codes(silver.GenderFemale, "F"),
			Codes(silver.GenderMale, "M"),
		},
		Default: silver.NotAvailable,
	}

	erpGenderLookup = Lookup{
		Rules: []Rule{
			Codes(silver.GenderFemale, "F", "FEMALE"),
			Codes(silver.GenderMale, "M", "MALE"),
		},
		Default: silver.NotAvailable,
	}

	productLineLookup = Lookup{
		Rules: []Rule{
			Codes(silver.LineMountain, "M"),
			Codes(silver.LineRoad, "R"),
			Codes(silver.LineOtherSales, "S"),
			Codes(silver.LineTouring, "T"),
		},
		Default: silver.NotAvailable,
	}

	// countryLookup has no default: unrecognized names pass through trimmed.
	countryLookup = Lookup{
		Rules: []Rule{
			Blank(silver.NotAvailable),
			Codes(silver.CountryGermany, "DE"),
			Codes(silver.CountryUnitedStates, "US", "USA"),
		},
	}
)

// MaritalStatus maps a CRM marital status code.
func MaritalStatus(raw pgtype.Text) string { return maritalStatusLookup.Map(raw) }

// CRMGender maps a CRM gender code.
func CRMGender(raw pgtype.Text) string { return crmGenderLookup.Map(raw) }

// ERPGender maps an ERP gender code or word.
func ERPGender(raw pgtype.Text) string { return erpGenderLookup.Map(raw) }

// ProductLine maps a CRM product line code.
func ProductLine(raw pgtype.Text) string { return productLineLookup.Map(raw) }

// Country maps recognized country codes and passes anything else through
// trimmed.
func Country(raw pgtype.Text) string {
	if v, ok := countryLookup.Resolve(raw.String); ok {
		return v
	}
	return strings.TrimSpace(raw.String)
}

// trimText trims surrounding whitespace. Blank input becomes null, matching
// how the CSV source reads an empty cell, so "" and "  " load the same way.
func trimText(t pgtype.Text) pgtype.Text {
	if !t.Valid {
		return t
	}
	s := strings.TrimSpace(t.String)
	if s == "" {
		return pgtype.Text{}
	}
	return pgtype.Text{String: s, Valid: true}
}
