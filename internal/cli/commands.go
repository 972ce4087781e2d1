package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/JonMunkholm/conform/internal/core"
	"github.com/JonMunkholm/conform/internal/store"
	"github.com/JonMunkholm/conform/internal/web"
	"github.com/spf13/cobra"
)

// withApp opens the configured stores for the duration of fn.
func withApp(cmd *cobra.Command, fn func(*app) error) error {
	a, err := newApp(cmd.Context(), configFrom(cmd))
	if err != nil {
		return err
	}
	defer a.Close()
	return fn(a)
}

func newRunCommand() *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "run [table...]",
		Short: "Rebuild silver tables (all when none given)",
		Example: `  # Rebuild everything from ./datasets into Postgres
  conform run

  # Rebuild two tables into a local DuckDB file
  conform run --sink duckdb crm_cust_info crm_prd_info`,
		ValidArgsFunction: completeTables,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, func(a *app) error {
				res, err := a.service.Run(cmd.Context(), args...)
				if err != nil {
					return err
				}
				a.writeMetrics()
				if err := printRun(cmd, res, asJSON); err != nil {
					return err
				}
				return res.Err()
			})
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the run result as JSON")
	return cmd
}

func newBronzeCommand() *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:               "bronze [table...]",
		Short:             "Reload bronze tables from the CSV extracts",
		ValidArgsFunction: completeTables,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, func(a *app) error {
				res, err := a.service.LoadBronze(cmd.Context(), args...)
				if err != nil {
					return err
				}
				a.writeMetrics()
				if err := printRun(cmd, res, asJSON); err != nil {
					return err
				}
				return res.Err()
			})
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the result as JSON")
	return cmd
}

func newMigrateCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create or upgrade the bronze and silver schemas",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withApp(cmd, func(a *app) error {
				ctx := cmd.Context()
				if a.pool != nil {
					if err := store.Migrate(ctx, a.pool); err != nil {
						return err
					}
					v, err := store.Version(ctx, a.pool)
					if err != nil {
						return err
					}
					fmt.Fprintf(cmd.OutOrStdout(), "postgres schema at version %d\n", v)
				}
				if a.duck != nil {
					// OpenDuckDB already applied the schema.
					fmt.Fprintf(cmd.OutOrStdout(), "duckdb schema ready at %s\n", a.cfg.Load.DuckDBPath)
				}
				return nil
			})
		},
	}
}

func newTablesCommand() *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "tables",
		Short: "List registered tables",
		RunE: func(cmd *cobra.Command, _ []string) error {
			infos := core.NewService(nil, nil).ListTables()
			if asJSON {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(infos)
			}
			renderTables(cmd.OutOrStdout(), infos)
			return nil
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "print as JSON")
	return cmd
}

func newResetCommand() *cobra.Command {
	var all bool

	cmd := &cobra.Command{
		Use:               "reset [table...]",
		Short:             "Empty silver tables",
		ValidArgsFunction: completeTables,
		Args: func(_ *cobra.Command, args []string) error {
			if !all && len(args) == 0 {
				return errors.New("name at least one table or pass --all")
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, func(a *app) error {
				if all {
					return a.service.ResetAll(cmd.Context())
				}
				for _, key := range args {
					if err := a.service.Reset(cmd.Context(), key); err != nil {
						return err
					}
				}
				return nil
			})
		},
	}
	cmd.Flags().BoolVar(&all, "all", false, "empty every registered table")
	return cmd
}

func newServeCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Serve the HTTP API",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withApp(cmd, func(a *app) error {
				cfg := a.cfg
				srv := web.NewServer(a.service, cfg.Server,
					web.WithMetrics(a.metrics),
					web.WithHealthCheck(a.health),
					web.WithSecurity(cfg.Security),
				)

				slog.Info("tables registered", "count", core.TableCount(), "groups", len(core.Groups()))

				errCh := make(chan error, 1)
				go func() { errCh <- srv.Start() }()
				go a.service.StartScheduler(cmd.Context(), cfg.Run.Interval)

				select {
				case err := <-errCh:
					if errors.Is(err, http.ErrServerClosed) {
						return nil
					}
					return err
				case <-cmd.Context().Done():
				}

				slog.Info("shutting down...")
				shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
				defer cancel()

				if status := a.service.LimiterStatus(); status.Active > 0 {
					slog.Info("waiting for runs to complete", "active", status.Active)
					if err := a.service.WaitForRuns(shutdownCtx); err != nil {
						slog.Warn("runs did not complete in time", "error", err)
					}
				}
				return srv.Shutdown(shutdownCtx)
			})
		},
	}
}

func completeTables(_ *cobra.Command, _ []string, _ string) ([]string, cobra.ShellCompDirective) {
	var keys []string
	for _, def := range core.All() {
		keys = append(keys, def.Info.Key)
	}
	return keys, cobra.ShellCompDirectiveNoFileComp
}

func printRun(cmd *cobra.Command, res core.RunResult, asJSON bool) error {
	if asJSON {
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(res)
	}
	renderRun(cmd.OutOrStdout(), res)
	return nil
}

func formatDuration(d time.Duration) string {
	return d.Round(time.Millisecond).String()
}
