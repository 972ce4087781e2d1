package metrics

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestObserveTable(t *testing.T) {
	r := NewRegistry()

	r.ObserveTable("crm_cust_info", 10, 8, time.Second, nil)
	r.ObserveTable("crm_cust_info", 5, 0, time.Second, errors.New("boom"))

	if got := testutil.ToFloat64(r.RowsRead.WithLabelValues("crm_cust_info")); got != 15 {
		t.Errorf("rows read = %v, want 15", got)
	}
	if got := testutil.ToFloat64(r.RowsLoaded.WithLabelValues("crm_cust_info")); got != 8 {
		t.Errorf("rows loaded = %v, want 8", got)
	}
	if got := testutil.ToFloat64(r.Failures.WithLabelValues("crm_cust_info")); got != 1 {
		t.Errorf("failures = %v, want 1", got)
	}
	if got := testutil.ToFloat64(r.LastSuccess.WithLabelValues("crm_cust_info")); got == 0 {
		t.Error("last success timestamp not set")
	}
}

func TestHandler(t *testing.T) {
	r := NewRegistry()
	r.ObserveTable("erp_loc_a101", 3, 3, time.Millisecond, nil)

	rec := httptest.NewRecorder()
	r.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), `conform_rows_loaded_total{table="erp_loc_a101"} 3`) {
		t.Errorf("metrics output missing loaded counter:\n%s", rec.Body.String())
	}
}

func TestWriteTextfile(t *testing.T) {
	r := NewRegistry()
	r.ObserveTable("erp_px_cat_g1v2", 37, 37, time.Millisecond, nil)

	path := filepath.Join(t.TempDir(), "conform.prom")
	if err := r.WriteTextfile(path); err != nil {
		t.Fatalf("WriteTextfile() error = %v", err)
	}

	b, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(b), "conform_rows_read_total") {
		t.Errorf("textfile missing counters:\n%s", b)
	}
}
