package bronze

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func locations(ctx context.Context, input string) ([]ErpLocation, error) {
	return ReadCSV(ctx, strings.NewReader(input), ErpLocationColumns, func(row []string, idx HeaderIndex) ErpLocation {
		return ErpLocation{
			ID:      ToText(idx.Cell(row, "cid")),
			Country: ToText(idx.Cell(row, "cntry")),
		}
	})
}

func TestReadCSV(t *testing.T) {
	tests := []struct {
		name      string
		input     string
		wantRows  int
		wantFirst string
		wantErr   string
	}{
		{
			name:      "simple",
			input:     "CID,CNTRY\nAW-00011000,Australia\nAW-00011001,DE\n",
			wantRows:  2,
			wantFirst: "AW-00011000",
		},
		{
			name:      "BOM stripped",
			input:     "\ufeffcid,cntry\nAW-00011000,Australia\n",
			wantRows:  1,
			wantFirst: "AW-00011000",
		},
		{
			name:      "header after junk rows",
			input:     "Exported 2026-10-14\n\ncid,cntry\nAW-1,US\n",
			wantRows:  1,
			wantFirst: "AW-1",
		},
		{
			name:      "columns in any order",
			input:     "cntry,cid\nUS,AW-1\n",
			wantRows:  1,
			wantFirst: "AW-1",
		},
		{
			name:     "empty rows skipped",
			input:    "cid,cntry\n,\nAW-1,US\n , \n",
			wantRows: 1,
		},
		{
			name:     "short rows tolerated",
			input:    "cid,cntry\nAW-1\n",
			wantRows: 1,
		},
		{
			name:    "missing column",
			input:   "cid,country\nAW-1,US\n",
			wantErr: "column not found",
		},
		{
			name:    "empty input",
			input:   "",
			wantErr: "column not found",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := locations(context.Background(), tt.input)
			if tt.wantErr != "" {
				if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
					t.Fatalf("ReadCSV() error = %v, want containing %q", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("ReadCSV() error = %v", err)
			}
			if len(got) != tt.wantRows {
				t.Fatalf("ReadCSV() returned %d rows, want %d", len(got), tt.wantRows)
			}
			if tt.wantFirst != "" && got[0].ID.String != tt.wantFirst {
				t.Errorf("first id = %q, want %q", got[0].ID.String, tt.wantFirst)
			}
		})
	}
}

func TestReadCSV_HeaderBeyondSearchWindow(t *testing.T) {
	input := strings.Repeat("junk\n", MaxHeaderSearchRows) + "cid,cntry\nAW-1,US\n"
	if _, err := locations(context.Background(), input); err == nil {
		t.Fatal("expected error when header is beyond the search window")
	}
}

func TestReadCSV_KeepsPadding(t *testing.T) {
	got, err := locations(context.Background(), "cid,cntry\n AW-1 ,  DE\n")
	if err != nil {
		t.Fatalf("ReadCSV() error = %v", err)
	}
	if got[0].ID.String != " AW-1 " || got[0].Country.String != "  DE" {
		t.Errorf("row = %+v, want padding preserved", got[0])
	}
}

func TestReadCSV_Canceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := locations(ctx, "cid,cntry\nAW-1,US\n"); err == nil {
		t.Fatal("expected error for canceled context")
	}
}

func TestCSVSource_Files(t *testing.T) {
	dir := t.TempDir()
	erp := filepath.Join(dir, "source_erp")
	if err := os.MkdirAll(erp, 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(erp, "LOC_A101.csv"), []byte("CID,CNTRY\nAW-00011000,Australia\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	custom := filepath.Join(dir, "px.csv")
	if err := os.WriteFile(custom, []byte("ID,CAT,SUBCAT,MAINTENANCE\nAC_BR,Accessories,Bike Racks,Yes\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	src := NewCSVSource(dir, map[string]string{TableErpCategories: custom})
	ctx := context.Background()

	locs, err := src.ErpLocations(ctx)
	if err != nil {
		t.Fatalf("ErpLocations() error = %v", err)
	}
	if len(locs) != 1 || locs[0].Country.String != "Australia" {
		t.Errorf("ErpLocations() = %+v", locs)
	}

	cats, err := src.ErpCategories(ctx)
	if err != nil {
		t.Fatalf("ErpCategories() error = %v", err)
	}
	if len(cats) != 1 || cats[0].Subcategory.String != "Bike Racks" {
		t.Errorf("ErpCategories() = %+v", cats)
	}

	if _, err := src.Customers(ctx); err == nil {
		t.Error("Customers() with no file should fail")
	}

	// Defaults are not mutated by overrides
	if DefaultFiles[TableErpCategories] != "source_erp/PX_CAT_G1V2.csv" {
		t.Errorf("DefaultFiles mutated: %q", DefaultFiles[TableErpCategories])
	}
}

func TestPostgresSource_SelectQuery(t *testing.T) {
	s := NewPostgresSource(nil, "")
	got := s.selectQuery(TableErpLocations, ErpLocationColumns)
	want := `SELECT "cid", "cntry" FROM "bronze"."erp_loc_a101"`
	if got != want {
		t.Errorf("selectQuery() = %s, want %s", got, want)
	}
}
