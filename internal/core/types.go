package core

import (
	"context"
	"time"

	"github.com/JonMunkholm/conform/internal/bronze"
	"github.com/JonMunkholm/conform/internal/conform"
)

// TableInfo contains display information about a table.
type TableInfo struct {
	Key    string `json:"key"`    // Unique identifier and physical table name: "crm_cust_info"
	Group  string `json:"group"`  // Source system: "CRM", "ERP"
	Label  string `json:"label"`  // Display name: "Customers"
	Source string `json:"source"` // Default extract path relative to the data directory

	BronzeColumns []string `json:"bronzeColumns"`
	Columns       []string `json:"columns"` // Silver column names in load order
}

// Batch is the conformed content of one silver table.
type Batch struct {
	Read   int             // bronze rows read
	Rows   [][]any         // silver rows in Info.Columns order
	Issues []conform.Issue // rule violations found in Rows
}

// ConformFunc reads a table's bronze rows from src and conforms them.
// asOf is the reference date for rules that depend on the current day.
type ConformFunc func(ctx context.Context, src bronze.Source, asOf time.Time) (Batch, error)

// ReadBronzeFunc reads a table's raw rows in Info.BronzeColumns order.
type ReadBronzeFunc func(ctx context.Context, src bronze.Source) ([][]any, error)

// TableDefinition contains everything needed to rebuild a table.
type TableDefinition struct {
	Info       TableInfo
	Conform    ConformFunc
	ReadBronze ReadBronzeFunc
}

// TableResult is the outcome of loading one table.
type TableResult struct {
	Table    string          `json:"table"`
	RowsIn   int             `json:"rowsIn"`
	RowsOut  int64           `json:"rowsOut"`
	Issues   []conform.Issue `json:"issues,omitempty"`
	Duration time.Duration   `json:"duration"`
	Err      error           `json:"-"`
	Error    string          `json:"error,omitempty"`
	Code     string          `json:"code,omitempty"`
}

// OK reports whether the table loaded.
func (r TableResult) OK() bool { return r.Err == nil }

// RunResult is the outcome of one pipeline run.
type RunResult struct {
	RunID    string        `json:"runId"`
	Started  time.Time     `json:"started"`
	Duration time.Duration `json:"duration"`
	Tables   []TableResult `json:"tables"`
}

// Failed returns the results of tables that did not load.
func (r RunResult) Failed() []TableResult {
	var failed []TableResult
	for _, t := range r.Tables {
		if !t.OK() {
			failed = append(failed, t)
		}
	}
	return failed
}

// Err returns nil when every table loaded, the table's error when exactly
// one failed, and a *RunError otherwise.
func (r RunResult) Err() error {
	failed := r.Failed()
	if len(failed) == 0 {
		return nil
	}
	if len(failed) == 1 {
		return failed[0].Err
	}
	return &RunError{Failed: failed}
}
