package bronze

import (
	"testing"
	"time"
)

// ----------------------------------------------------------------------------
// ToText Tests
// ----------------------------------------------------------------------------

func TestToText(t *testing.T) {
	tests := []struct {
		name      string
		input     string
		wantValid bool
		want      string
	}{
		{name: "plain", input: "Jon", wantValid: true, want: "Jon"},
		{name: "padding kept", input: " Jon  ", wantValid: true, want: " Jon  "},
		{name: "whitespace only is not null", input: "  ", wantValid: true, want: "  "},
		{name: "empty is null", input: "", wantValid: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ToText(tt.input)
			if got.Valid != tt.wantValid {
				t.Fatalf("ToText(%q).Valid = %v, want %v", tt.input, got.Valid, tt.wantValid)
			}
			if got.String != tt.want {
				t.Errorf("ToText(%q) = %q, want %q", tt.input, got.String, tt.want)
			}
		})
	}
}

// ----------------------------------------------------------------------------
// ToInt4 Tests
// ----------------------------------------------------------------------------

func TestToInt4(t *testing.T) {
	tests := []struct {
		name      string
		input     string
		wantValid bool
		want      int32
	}{
		// Valid
		{name: "positive", input: "3578", wantValid: true, want: 3578},
		{name: "negative", input: "-10", wantValid: true, want: -10},
		{name: "zero", input: "0", wantValid: true, want: 0},
		{name: "padded", input: "  42 ", wantValid: true, want: 42},
		{name: "thousands separator", input: "1,234", wantValid: true, want: 1234},
		{name: "currency", input: "$99", wantValid: true, want: 99},
		{name: "trailing .0", input: "12.0", wantValid: true, want: 12},
		{name: "excel formula", input: `="20101229"`, wantValid: true, want: 20101229},

		// Invalid
		{name: "empty", input: "", wantValid: false},
		{name: "fraction", input: "12.5", wantValid: false},
		{name: "text", input: "abc", wantValid: false},
		{name: "overflow", input: "99999999999", wantValid: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ToInt4(tt.input)
			if got.Valid != tt.wantValid {
				t.Fatalf("ToInt4(%q).Valid = %v, want %v", tt.input, got.Valid, tt.wantValid)
			}
			if got.Valid && got.Int32 != tt.want {
				t.Errorf("ToInt4(%q) = %d, want %d", tt.input, got.Int32, tt.want)
			}
		})
	}
}

// ----------------------------------------------------------------------------
// ToDate / ToTimestamp Tests
// ----------------------------------------------------------------------------

func TestToDate(t *testing.T) {
	tests := []struct {
		name      string
		input     string
		wantValid bool
		want      time.Time
	}{
		{name: "ISO", input: "2025-10-06", wantValid: true, want: time.Date(2025, 10, 6, 0, 0, 0, 0, time.UTC)},
		{name: "US", input: "10/6/2025", wantValid: true, want: time.Date(2025, 10, 6, 0, 0, 0, 0, time.UTC)},
		{name: "compact", input: "19711006", wantValid: true, want: time.Date(1971, 10, 6, 0, 0, 0, 0, time.UTC)},
		{name: "timestamp keeps day", input: "2025-10-06 13:45:00", wantValid: true, want: time.Date(2025, 10, 6, 0, 0, 0, 0, time.UTC)},
		{name: "old two digit year", input: "1/2/71", wantValid: true, want: time.Date(1971, 1, 2, 0, 0, 0, 0, time.UTC)},
		{name: "empty", input: "", wantValid: false},
		{name: "garbage", input: "not-a-date", wantValid: false},
		{name: "invalid day", input: "2025-02-30", wantValid: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ToDate(tt.input)
			if got.Valid != tt.wantValid {
				t.Fatalf("ToDate(%q).Valid = %v, want %v", tt.input, got.Valid, tt.wantValid)
			}
			if got.Valid && !got.Time.Equal(tt.want) {
				t.Errorf("ToDate(%q) = %v, want %v", tt.input, got.Time, tt.want)
			}
		})
	}
}

func TestToTimestamp(t *testing.T) {
	tests := []struct {
		input     string
		wantValid bool
		want      time.Time
	}{
		{"2011-07-01 00:00:00", true, time.Date(2011, 7, 1, 0, 0, 0, 0, time.UTC)},
		{"2011-07-01T08:30:00", true, time.Date(2011, 7, 1, 8, 30, 0, 0, time.UTC)},
		{"2011-07-01T08:30:00+02:00", true, time.Date(2011, 7, 1, 6, 30, 0, 0, time.UTC)},
		{"2011-07-01", true, time.Date(2011, 7, 1, 0, 0, 0, 0, time.UTC)},
		{"", false, time.Time{}},
		{"yesterday", false, time.Time{}},
	}

	for _, tt := range tests {
		got := ToTimestamp(tt.input)
		if got.Valid != tt.wantValid {
			t.Errorf("ToTimestamp(%q).Valid = %v, want %v", tt.input, got.Valid, tt.wantValid)
			continue
		}
		if got.Valid && !got.Time.Equal(tt.want) {
			t.Errorf("ToTimestamp(%q) = %v, want %v", tt.input, got.Time, tt.want)
		}
	}
}

// ----------------------------------------------------------------------------
// Header helpers
// ----------------------------------------------------------------------------

func TestCleanCell(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{`="00123"`, "00123"},
		{`"quoted"`, "quoted"},
		{" padded ", " padded "},
		{"", ""},
		{`"`, `"`},
	}

	for _, tt := range tests {
		if got := CleanCell(tt.input); got != tt.want {
			t.Errorf("CleanCell(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}

func TestHeaderIndex(t *testing.T) {
	idx := MakeHeaderIndex([]string{" CID ", "Cntry"})

	if !idx.Has(ErpLocationColumns) {
		t.Fatalf("Has(%v) = false, want true", ErpLocationColumns)
	}
	if idx.Has([]string{"cid", "missing"}) {
		t.Errorf("Has with missing column = true, want false")
	}

	row := []string{"AW-00011000", "DE"}
	if got := idx.Cell(row, "CNTRY"); got != "DE" {
		t.Errorf("Cell(cntry) = %q, want %q", got, "DE")
	}
	if got := idx.Cell(row[:1], "cntry"); got != "" {
		t.Errorf("Cell on short row = %q, want empty", got)
	}
}
