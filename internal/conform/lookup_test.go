package conform

import (
	"testing"

	"github.com/jackc/pgx/v5/pgtype"
)

func TestLookup_Resolve(t *testing.T) {
	l := Lookup{
		Rules: []Rule{
			Blank("empty"),
			Codes("first", "A", "B"),
			Codes("second", "B", "C"),
		},
		Default: "default",
	}

	tests := []struct {
		in        string
		want      string
		wantMatch bool
	}{
		{"a", "first", true},
		{" B ", "first", true}, // first matching rule wins
		{"c", "second", true},
		{"", "empty", true},
		{"\t", "empty", true},
		{"D", "default", false},
	}

	for _, tt := range tests {
		got, ok := l.Resolve(tt.in)
		if got != tt.want || ok != tt.wantMatch {
			t.Errorf("Resolve(%q) = (%q, %v), want (%q, %v)", tt.in, got, ok, tt.want, tt.wantMatch)
		}
	}
}

func TestLookup_MapNull(t *testing.T) {
	l := Lookup{Rules: []Rule{Codes("x", "X")}, Default: "none"}
	if got := l.Map(pgtype.Text{}); got != "none" {
		t.Errorf("Map(null) = %q, want %q", got, "none")
	}
}

func TestERPGender(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"F", "Female"},
		{"Female", "Female"},
		{" female ", "Female"},
		{"M", "Male"},
		{"MALE", "Male"},
		{"", "n/a"},
		{"Other", "n/a"},
	}

	for _, tt := range tests {
		if got := ERPGender(text(tt.in)); got != tt.want {
			t.Errorf("ERPGender(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestCRMGender_RejectsWords(t *testing.T) {
	// CRM only carries single-letter codes
	if got := CRMGender(text("Female")); got != "n/a" {
		t.Errorf("CRMGender(%q) = %q, want n/a", "Female", got)
	}
}

func TestTrimText(t *testing.T) {
	tests := []struct {
		in   pgtype.Text
		want pgtype.Text
	}{
		{text(" a b "), text("a b")},
		{text("ab"), text("ab")},
		{text(" \t\n"), pgtype.Text{}},
		{pgtype.Text{}, pgtype.Text{}},
	}

	for _, tt := range tests {
		if got := trimText(tt.in); got != tt.want {
			t.Errorf("trimText(%q) = %+v, want %+v", tt.in.String, got, tt.want)
		}
	}
}
