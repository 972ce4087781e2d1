// Package cli provides the conform command line.
package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/JonMunkholm/conform/internal/config"
	_ "github.com/JonMunkholm/conform/internal/core/tables" // Register all tables
	"github.com/JonMunkholm/conform/internal/logging"
	"github.com/spf13/cobra"
)

// Version is set at build time.
var Version = "dev"

type configKey struct{}

// globalFlags override the matching environment settings when set.
type globalFlags struct {
	source   string
	sink     string
	dataDir  string
	manifest string
	duckdb   string
	asOf     string
	logLevel string
}

// NewRootCmd creates the root command and its subcommands.
func NewRootCmd() *cobra.Command {
	flags := &globalFlags{}

	root := &cobra.Command{
		Use:   "conform",
		Short: "Rebuild the silver warehouse layer from bronze extracts",
		Long: `conform reads the raw CRM and ERP extracts (bronze), cleans and
standardizes them, and fully reloads the silver tables.

Settings come from the environment (and .env); flags override them.`,
		Version: Version,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if cmd.Name() == "help" || cmd.Name() == "completion" {
				return nil
			}

			cfg, err := config.LoadWith(flags.apply(cmd.Root()))
			if err != nil {
				return err
			}
			logging.Setup(cfg.Logging.Level, cfg.Logging.Format)

			cmd.SetContext(context.WithValue(cmd.Context(), configKey{}, cfg))
			return nil
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	pf := root.PersistentFlags()
	pf.StringVar(&flags.source, "source", "", "bronze source: csv|postgres (env SOURCE_KIND)")
	pf.StringVar(&flags.sink, "sink", "", "silver sink: postgres|duckdb (env LOAD_SINK)")
	pf.StringVar(&flags.dataDir, "data-dir", "", "directory holding source_crm/ and source_erp/ (env SOURCE_DATA_DIR)")
	pf.StringVar(&flags.manifest, "manifest", "", "YAML file relocating extracts (env SOURCE_MANIFEST)")
	pf.StringVar(&flags.duckdb, "duckdb", "", "DuckDB file for the duckdb sink (env DUCKDB_PATH)")
	pf.StringVar(&flags.asOf, "as-of", "", "reference date YYYY-MM-DD (env RUN_AS_OF)")
	pf.StringVar(&flags.logLevel, "log-level", "", "debug|info|warn|error (env LOG_LEVEL)")

	_ = root.RegisterFlagCompletionFunc("source", func(*cobra.Command, []string, string) ([]string, cobra.ShellCompDirective) {
		return []string{config.KindCSV, config.KindPostgres}, cobra.ShellCompDirectiveNoFileComp
	})
	_ = root.RegisterFlagCompletionFunc("sink", func(*cobra.Command, []string, string) ([]string, cobra.ShellCompDirective) {
		return []string{config.KindPostgres, config.KindDuckDB}, cobra.ShellCompDirectiveNoFileComp
	})

	root.AddCommand(
		newRunCommand(),
		newBronzeCommand(),
		newMigrateCommand(),
		newTablesCommand(),
		newResetCommand(),
		newServeCommand(),
	)
	return root
}

// apply returns a config override for every flag set on the command line.
func (f *globalFlags) apply(root *cobra.Command) func(*config.Config) {
	changed := root.PersistentFlags().Changed
	return func(c *config.Config) {
		if changed("source") {
			c.Source.Kind = f.source
		}
		if changed("sink") {
			c.Load.Sink = f.sink
		}
		if changed("data-dir") {
			c.Source.DataDir = f.dataDir
		}
		if changed("manifest") {
			c.Source.Manifest = f.manifest
		}
		if changed("duckdb") {
			c.Load.DuckDBPath = f.duckdb
		}
		if changed("as-of") {
			c.Run.AsOf = f.asOf
		}
		if changed("log-level") {
			c.Logging.Level = f.logLevel
		}
	}
}

// Execute runs the root command.
func Execute(ctx context.Context) error {
	if err := NewRootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return err
	}
	return nil
}

func configFrom(cmd *cobra.Command) *config.Config {
	cfg, _ := cmd.Context().Value(configKey{}).(*config.Config)
	return cfg
}
