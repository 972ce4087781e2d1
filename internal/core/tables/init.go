// Package tables registers all table definitions with the core registry.
// Import this package to ensure all tables are registered.
package tables

import (
	"context"
	"time"

	"github.com/JonMunkholm/conform/internal/bronze"
	"github.com/JonMunkholm/conform/internal/conform"
	"github.com/JonMunkholm/conform/internal/core"
)

type valuer interface {
	Values() []any
}

// table describes one bronze to silver rebuild.
type table[B, S valuer] struct {
	key, group, label string
	bronzeColumns     []string
	columns           []string

	read    func(bronze.Source, context.Context) ([]B, error)
	conform func(rows []B, asOf time.Time) []S
	check   func(rows []S, asOf time.Time) []conform.Issue

	// checkRaw, when set, inspects the bronze rows before conforming.
	checkRaw func(rows []B) []conform.Issue
}

func (t table[B, S]) definition() core.TableDefinition {
	return core.TableDefinition{
		Info: core.TableInfo{
			Key:           t.key,
			Group:         t.group,
			Label:         t.label,
			Source:        bronze.DefaultFiles[t.key],
			BronzeColumns: t.bronzeColumns,
			Columns:       t.columns,
		},
		Conform: func(ctx context.Context, src bronze.Source, asOf time.Time) (core.Batch, error) {
			raw, err := t.read(src, ctx)
			if err != nil {
				return core.Batch{}, err
			}
			var issues []conform.Issue
			if t.checkRaw != nil {
				issues = t.checkRaw(raw)
			}
			out := t.conform(raw, asOf)
			return core.Batch{
				Read:   len(raw),
				Rows:   values(out),
				Issues: append(issues, t.check(out, asOf)...),
			}, nil
		},
		ReadBronze: func(ctx context.Context, src bronze.Source) ([][]any, error) {
			raw, err := t.read(src, ctx)
			if err != nil {
				return nil, err
			}
			return values(raw), nil
		},
	}
}

func (t table[B, S]) register() {
	core.Register(t.definition())
}

func values[T valuer](rows []T) [][]any {
	out := make([][]any, len(rows))
	for i, r := range rows {
		out[i] = r.Values()
	}
	return out
}

func init() {
	registerCRM()
	registerERP()
}
