package core

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/JonMunkholm/conform/internal/bronze"
	"github.com/JonMunkholm/conform/internal/load"
	"github.com/JonMunkholm/conform/internal/logging"
	"github.com/JonMunkholm/conform/internal/metrics"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

// DefaultTableTimeout bounds the read, conform and load of one table.
var DefaultTableTimeout = 10 * time.Minute

// ResetTimeout is the maximum duration for a reset operation.
var ResetTimeout = 30 * time.Second

// DefaultMaxConcurrentTables is how many tables one run rebuilds at once.
const DefaultMaxConcurrentTables = 3

// Service rebuilds silver tables from a bronze source.
type Service struct {
	source bronze.Source
	silver load.Loader
	bronze load.Loader // optional, for LoadBronze

	metrics *metrics.Registry
	limiter *RunLimiter
	log     *slog.Logger

	maxConcurrent int
	failFast      bool
	tableTimeout  time.Duration
	asOf          time.Time
	now           func() time.Time
}

// Option configures a Service.
type Option func(*Service)

// WithBronzeLoader sets the sink used by LoadBronze.
func WithBronzeLoader(l load.Loader) Option {
	return func(s *Service) { s.bronze = l }
}

// WithMetrics records every table outcome in reg.
func WithMetrics(reg *metrics.Registry) Option {
	return func(s *Service) { s.metrics = reg }
}

// WithLimiter replaces the default single-slot run limiter.
func WithLimiter(l *RunLimiter) Option {
	return func(s *Service) { s.limiter = l }
}

// WithLogger sets the base logger. Defaults to slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(s *Service) { s.log = l }
}

// WithMaxConcurrent sets how many tables run in parallel.
func WithMaxConcurrent(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.maxConcurrent = n
		}
	}
}

// WithFailFast cancels the remaining tables after the first failure.
func WithFailFast(enabled bool) Option {
	return func(s *Service) { s.failFast = enabled }
}

// WithTableTimeout sets the per-table deadline. Zero disables it.
func WithTableTimeout(d time.Duration) Option {
	return func(s *Service) { s.tableTimeout = d }
}

// WithAsOf pins the reference date passed to conformers. When unset the run
// start time is used.
func WithAsOf(t time.Time) Option {
	return func(s *Service) { s.asOf = t }
}

// WithClock overrides time.Now.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// NewService creates a Service reading from source and writing silver
// tables through silver.
func NewService(source bronze.Source, silver load.Loader, opts ...Option) *Service {
	s := &Service{
		source:        source,
		silver:        silver,
		maxConcurrent: DefaultMaxConcurrentTables,
		tableTimeout:  DefaultTableTimeout,
		now:           time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.limiter == nil {
		s.limiter = NewRunLimiter(DefaultMaxConcurrentRuns, 0)
	}
	if s.log == nil {
		s.log = slog.Default()
	}
	return s
}

// ListTables returns information about all registered tables.
func (s *Service) ListTables() []TableInfo {
	defs := All()
	infos := make([]TableInfo, len(defs))
	for i, def := range defs {
		infos[i] = def.Info
	}
	return infos
}

// ListTablesByGroup returns tables organized by group.
func (s *Service) ListTablesByGroup() map[string][]TableInfo {
	result := make(map[string][]TableInfo)
	for _, group := range Groups() {
		for _, def := range ByGroup(group) {
			result[group] = append(result[group], def.Info)
		}
	}
	return result
}

// LimiterStatus reports run slot usage.
func (s *Service) LimiterStatus() RunLimiterStatus {
	return s.limiter.Status()
}

// WaitForRuns blocks until no run is executing or ctx is done.
func (s *Service) WaitForRuns(ctx context.Context) error {
	return s.limiter.WaitForDrain(ctx)
}

// Run rebuilds the silver tables named by keys, or all of them when keys is
// empty. The returned error covers only run setup (unknown keys, no free
// run slot); per-table failures are in the result. Use RunResult.Err to
// collapse them.
func (s *Service) Run(ctx context.Context, keys ...string) (RunResult, error) {
	defs, err := Select(keys...)
	if err != nil {
		return RunResult{}, err
	}
	return s.run(ctx, "silver", defs, s.rebuildSilver)
}

// RunTable rebuilds a single silver table.
func (s *Service) RunTable(ctx context.Context, key string) (TableResult, error) {
	res, err := s.Run(ctx, key)
	if err != nil {
		return TableResult{}, err
	}
	return res.Tables[0], nil
}

// LoadBronze copies the source snapshot into the bronze tables, replacing
// their contents. Requires WithBronzeLoader.
func (s *Service) LoadBronze(ctx context.Context, keys ...string) (RunResult, error) {
	if s.bronze == nil {
		return RunResult{}, ErrNoBronzeLoader
	}
	defs, err := Select(keys...)
	if err != nil {
		return RunResult{}, err
	}
	return s.run(ctx, "bronze", defs, s.reloadBronze)
}

type tableStep func(ctx context.Context, def TableDefinition, asOf time.Time) TableResult

func (s *Service) run(ctx context.Context, layer string, defs []TableDefinition, step tableStep) (RunResult, error) {
	if err := s.limiter.Acquire(ctx); err != nil {
		return RunResult{}, err
	}
	defer s.limiter.Release()

	if s.metrics != nil {
		s.metrics.RunsInFlight.Inc()
		defer s.metrics.RunsInFlight.Dec()
	}

	runID := uuid.NewString()
	ctx = logging.ContextWithRunID(ctx, runID)
	log := logging.With(ctx, s.log).With("layer", layer)

	started := s.now()
	asOf := s.asOf
	if asOf.IsZero() {
		asOf = started
	}

	log.Info("run started", "tables", len(defs), "as_of", asOf.Format(time.DateOnly))

	results := make([]TableResult, len(defs))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.maxConcurrent)

	for i, def := range defs {
		g.Go(func() error {
			res := step(gctx, def, asOf)
			results[i] = res
			s.report(log, res)
			if res.Err != nil && s.failFast {
				return res.Err
			}
			return nil
		})
	}
	_ = g.Wait()

	result := RunResult{
		RunID:    runID,
		Started:  started,
		Duration: s.now().Sub(started),
		Tables:   results,
	}

	failed := len(result.Failed())
	attrs := []any{"tables", len(results), "failed", failed, "duration_ms", result.Duration.Milliseconds()}
	if failed > 0 {
		log.Error("run finished with failures", attrs...)
	} else {
		log.Info("run finished", attrs...)
	}

	return result, nil
}

func (s *Service) rebuildSilver(ctx context.Context, def TableDefinition, asOf time.Time) TableResult {
	ctx, cancel := s.tableContext(ctx)
	defer cancel()

	start := s.now()
	res := TableResult{Table: def.Info.Key}

	batch, err := def.Conform(ctx, s.source, asOf)
	if err != nil {
		return s.finish(res, start, &TableError{Table: def.Info.Key, Op: OpRead, Err: err})
	}
	res.RowsIn = batch.Read
	res.Issues = batch.Issues

	n, err := s.silver.Replace(ctx, def.Info.Key, def.Info.Columns, batch.Rows)
	if err != nil {
		return s.finish(res, start, &TableError{Table: def.Info.Key, Op: OpLoad, Err: err})
	}
	res.RowsOut = n

	return s.finish(res, start, nil)
}

func (s *Service) reloadBronze(ctx context.Context, def TableDefinition, _ time.Time) TableResult {
	ctx, cancel := s.tableContext(ctx)
	defer cancel()

	start := s.now()
	res := TableResult{Table: def.Info.Key}

	if def.ReadBronze == nil {
		return s.finish(res, start, &TableError{Table: def.Info.Key, Op: OpRead, Err: errors.New("table has no bronze reader")})
	}

	rows, err := def.ReadBronze(ctx, s.source)
	if err != nil {
		return s.finish(res, start, &TableError{Table: def.Info.Key, Op: OpRead, Err: err})
	}
	res.RowsIn = len(rows)

	n, err := s.bronze.Replace(ctx, def.Info.Key, def.Info.BronzeColumns, rows)
	if err != nil {
		return s.finish(res, start, &TableError{Table: def.Info.Key, Op: OpLoad, Err: err})
	}
	res.RowsOut = n

	return s.finish(res, start, nil)
}

func (s *Service) tableContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if s.tableTimeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, s.tableTimeout)
}

func (s *Service) finish(res TableResult, start time.Time, err error) TableResult {
	res.Duration = s.now().Sub(start)
	if err != nil {
		res.Err = err
		res.Error = err.Error()
		res.Code = MapError(err).Code
	}
	if s.metrics != nil {
		s.metrics.ObserveTable(res.Table, int64(res.RowsIn), res.RowsOut, res.Duration, err)
	}
	return res
}

func (s *Service) report(log *slog.Logger, res TableResult) {
	log = log.With("table", res.Table)

	if res.Err != nil {
		log.Error("table failed",
			"rows_in", res.RowsIn,
			"duration_ms", res.Duration.Milliseconds(),
			"code", res.Code,
			"error", res.Err,
		)
		return
	}

	for _, is := range res.Issues {
		log.Warn("quality issue", "column", is.Column, "rule", is.Rule, "count", is.Count)
	}
	log.Info("table loaded",
		"rows_in", res.RowsIn,
		"rows_out", res.RowsOut,
		"duration_ms", res.Duration.Milliseconds(),
	)
}

// Reset empties one silver table.
func (s *Service) Reset(ctx context.Context, tableKey string) error {
	if _, ok := Get(tableKey); !ok {
		return unknownTable(tableKey)
	}

	resetCtx, cancel := context.WithTimeout(ctx, ResetTimeout)
	defer cancel()

	if err := s.silver.Truncate(resetCtx, tableKey); err != nil {
		return fmt.Errorf("reset %s: %w", tableKey, err)
	}
	logging.With(ctx, s.log).Info("table reset", "table", tableKey)
	return nil
}

// ResetAll empties every registered silver table, stopping at the first
// failure.
func (s *Service) ResetAll(ctx context.Context) error {
	resetCtx, cancel := context.WithTimeout(ctx, ResetTimeout)
	defer cancel()

	for _, def := range All() {
		if err := s.silver.Truncate(resetCtx, def.Info.Key); err != nil {
			return fmt.Errorf("reset %s: %w", def.Info.Key, err)
		}
	}
	logging.With(ctx, s.log).Info("all tables reset", "tables", TableCount())
	return nil
}
