package bronze

// convert.go turns raw CSV cells into nullable pgtype values.
//
// Unlike the silver side, text keeps its padding so the conformers can see
// exactly what the source system delivered. Numbers and dates are parsed
// leniently:
//   - Multiple date formats (ISO, US, EU, compact)
//   - Thousand separators and currency symbols in integers
//   - Excel formula prefixes (="value")
//
// All To* functions return values with Valid=false for empty/unparseable input.

import (
	"strconv"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgtype"
)

// TwoDigitYearPivot defines how 2-digit years are interpreted.
// Years that would result in dates more than this many years in the future
// are assumed to be in the previous century.
var TwoDigitYearPivot = 20

// Date layouts split by year format for proper 2-digit year handling
var (
	twoDigitYearLayouts = []string{
		"1/2/06", "01/02/06", "1-2-06", "1.2.06", "01.02.06",
	}
	fourDigitYearLayouts = []string{
		"2006-01-02", "2006/01/02", "2006.01.02",
		"1/2/2006", "01/02/2006", "1-2-2006", "01-02-2006", "1.2.2006", "01.02.2006",
		"Jan 2, 2006", "2 Jan 2006",
		"20060102",
	}
	timestampLayouts = []string{
		"2006-01-02 15:04:05",
		"2006-01-02T15:04:05",
		"2006-01-02 15:04:05.000",
		time.RFC3339,
	}
)

// ToText converts a raw cell to pgtype.Text without trimming.
// Only a truly empty cell is null.
func ToText(s string) pgtype.Text {
	if s == "" {
		return pgtype.Text{Valid: false}
	}
	return pgtype.Text{String: s, Valid: true}
}

// ToInt4 converts a string to pgtype.Int4.
// Accepts thousands separators, currency symbols and a trailing ".0".
func ToInt4(s string) pgtype.Int4 {
	s = strings.TrimSpace(CleanCell(s))
	if s == "" {
		return pgtype.Int4{Valid: false}
	}

	s = strings.ReplaceAll(s, "$", "")
	s = strings.ReplaceAll(s, ",", "")
	s = strings.TrimSpace(s)

	if i, err := strconv.ParseInt(s, 10, 32); err == nil {
		return pgtype.Int4{Int32: int32(i), Valid: true}
	}

	// Spreadsheet exports sometimes write integers as "12.0"
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || f != float64(int32(f)) {
		return pgtype.Int4{Valid: false}
	}
	return pgtype.Int4{Int32: int32(f), Valid: true}
}

// ToDate converts a string to pgtype.Date.
// Supports multiple date formats and handles 2-digit years with pivot.
func ToDate(s string) pgtype.Date {
	s = strings.TrimSpace(CleanCell(s))
	if s == "" {
		return pgtype.Date{Valid: false}
	}

	// Try 4-digit year layouts first (unambiguous)
	for _, layout := range fourDigitYearLayouts {
		t, err := time.Parse(layout, s)
		if err == nil {
			return pgtype.Date{Time: t, Valid: true}
		}
	}

	// A timestamp in a date column keeps only its calendar day
	if ts := ToTimestamp(s); ts.Valid {
		y, m, d := ts.Time.Date()
		return pgtype.Date{Time: time.Date(y, m, d, 0, 0, 0, 0, time.UTC), Valid: true}
	}

	currentYear := time.Now().Year()
	pivotYear := currentYear + TwoDigitYearPivot

	for _, layout := range twoDigitYearLayouts {
		t, err := time.Parse(layout, s)
		if err == nil {
			if t.Year() > pivotYear {
				t = t.AddDate(-100, 0, 0)
			}
			return pgtype.Date{Time: t, Valid: true}
		}
	}

	return pgtype.Date{Valid: false}
}

// ToTimestamp converts a string to pgtype.Timestamp.
// A bare date is accepted as midnight.
func ToTimestamp(s string) pgtype.Timestamp {
	s = strings.TrimSpace(CleanCell(s))
	if s == "" {
		return pgtype.Timestamp{Valid: false}
	}

	for _, layout := range timestampLayouts {
		t, err := time.Parse(layout, s)
		if err == nil {
			return pgtype.Timestamp{Time: t.UTC(), Valid: true}
		}
	}

	for _, layout := range fourDigitYearLayouts {
		t, err := time.Parse(layout, s)
		if err == nil {
			return pgtype.Timestamp{Time: t, Valid: true}
		}
	}

	return pgtype.Timestamp{Valid: false}
}

// HeaderIndex maps column names (lowercase) to their position in the CSV row.
type HeaderIndex map[string]int

// MakeHeaderIndex creates a HeaderIndex from a CSV header row.
// Keys are lowercased for case-insensitive matching.
func MakeHeaderIndex(header []string) HeaderIndex {
	idx := make(HeaderIndex, len(header))
	for i, h := range header {
		key := strings.ToLower(strings.TrimSpace(CleanCell(h)))
		idx[key] = i
	}
	return idx
}

// Has reports whether every column is present in the index.
func (idx HeaderIndex) Has(columns []string) bool {
	for _, c := range columns {
		if _, ok := idx[strings.ToLower(c)]; !ok {
			return false
		}
	}
	return true
}

// Cell returns the raw value of the named column, or "" if the column is
// missing or the row is short.
func (idx HeaderIndex) Cell(row []string, name string) string {
	pos, ok := idx[strings.ToLower(name)]
	if !ok || pos >= len(row) {
		return ""
	}
	return row[pos]
}

// CleanCell removes spreadsheet artifacts from a cell value:
// - Removes Excel formula prefix (="...")
// - Removes surrounding double quotes
//
// Whitespace is left alone; it is part of the bronze record.
func CleanCell(s string) string {
	trimmed := strings.TrimSpace(s)

	if strings.HasPrefix(trimmed, "=\"") && strings.HasSuffix(trimmed, "\"") && len(trimmed) >= 3 {
		return trimmed[2 : len(trimmed)-1]
	}

	if len(trimmed) >= 2 && strings.HasPrefix(trimmed, `"`) && strings.HasSuffix(trimmed, `"`) {
		return trimmed[1 : len(trimmed)-1]
	}

	return s
}
