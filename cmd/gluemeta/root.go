package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"text/tabwriter"

	"github.com/hashicorp/go-hclog"
	"github.com/spf13/cobra"

	"github.com/arkilian/glue-metastore/internal/app"
	"github.com/arkilian/glue-metastore/internal/config"
	"github.com/arkilian/glue-metastore/internal/metastore"
	"github.com/arkilian/glue-metastore/internal/observability"
)

// factory builds the metastore a command runs against.
type factory func(ctx context.Context, cfg *config.Config, logger hclog.Logger) (metastore.Metastore, *observability.CallStats, error)

func appFactory(ctx context.Context, cfg *config.Config, logger hclog.Logger) (metastore.Metastore, *observability.CallStats, error) {
	a, err := app.New(ctx, cfg, logger)
	if err != nil {
		return nil, nil, err
	}
	return a.Metastore(), a.Stats(), nil
}

// globalOptions holds the persistent flags shared by every command.
type globalOptions struct {
	configFile string
	region     string
	endpoint   string
	catalogID  string
	logLevel   string
	output     string
	showStats  bool
}

// cliContext is resolved once per invocation before a command runs.
type cliContext struct {
	metastore metastore.Metastore
	stats     *observability.CallStats
	out       io.Writer
	output    string
}

func execute(args []string) int {
	rootCmd := newRootCmd(appFactory, os.Stdout, os.Stderr)
	rootCmd.SetArgs(args)

	// Interrupts cancel in-flight Glue calls.
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	return 0
}

func newRootCmd(newMetastore factory, stdout, stderr io.Writer) *cobra.Command {
	opts := &globalOptions{}
	cc := &cliContext{out: stdout}

	rootCmd := &cobra.Command{
		Use:           "gluemeta",
		Short:         "Inspect a Hive metastore backed by the AWS Glue Data Catalog",
		Version:       fmt.Sprintf("%s (commit: %s)", version, commit),
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if opts.output != "table" && opts.output != "json" {
				return fmt.Errorf("unsupported output format %q: use 'table' or 'json'", opts.output)
			}
			cfg, err := loadConfig(opts)
			if err != nil {
				return err
			}
			logger := app.NewLogger(cfg.Log, stderr)
			m, stats, err := newMetastore(cmd.Context(), cfg, logger)
			if err != nil {
				return err
			}
			cc.metastore = m
			cc.stats = stats
			cc.output = opts.output
			return nil
		},
		PersistentPostRunE: func(_ *cobra.Command, _ []string) error {
			if opts.showStats && cc.stats != nil {
				return printStats(stderr, cc.stats)
			}
			return nil
		},
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&opts.configFile, "config", "", "Path to configuration file (YAML or JSON)")
	flags.StringVar(&opts.region, "region", "", "AWS region of the Glue catalog")
	flags.StringVar(&opts.endpoint, "endpoint", "", "Custom Glue endpoint URL")
	flags.StringVar(&opts.catalogID, "catalog-id", "", "Glue catalog id (AWS account id)")
	flags.StringVar(&opts.logLevel, "log-level", "", "Log level (trace, debug, info, warn, error, off)")
	flags.StringVarP(&opts.output, "output", "o", "table", "Output format (table, json)")
	flags.BoolVar(&opts.showStats, "stats", false, "Print remote call statistics to stderr")

	rootCmd.AddCommand(newDatabasesCmd(cc))
	rootCmd.AddCommand(newTablesCmd(cc))
	rootCmd.AddCommand(newTableCmd(cc))
	rootCmd.AddCommand(newPartitionsCmd(cc))

	return rootCmd
}

// loadConfig applies, in increasing priority: defaults or the config file,
// GLUEMETA_* environment variables, then command line flags.
func loadConfig(opts *globalOptions) (*config.Config, error) {
	var cfg *config.Config
	var err error

	if opts.configFile != "" {
		cfg, err = config.LoadFromFile(opts.configFile)
		if err != nil {
			return nil, fmt.Errorf("failed to load config file: %w", err)
		}
	} else {
		cfg = config.DefaultConfig()
	}

	config.LoadFromEnv(cfg)

	if opts.region != "" {
		cfg.Glue.Region = opts.region
	}
	if opts.endpoint != "" {
		cfg.Glue.Endpoint = opts.endpoint
	}
	if opts.catalogID != "" {
		cfg.Glue.CatalogID = opts.catalogID
	}
	if opts.logLevel != "" {
		cfg.Log.Level = opts.logLevel
	}

	// The CLI is read-only; it never deletes data.
	cfg.Storage.DeleteData = false

	return cfg, nil
}

func printJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func printTable(w io.Writer, header []string, rows [][]string) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	for i, h := range header {
		if i > 0 {
			fmt.Fprint(tw, "\t")
		}
		fmt.Fprint(tw, h)
	}
	fmt.Fprintln(tw)
	for _, row := range rows {
		for i, cell := range row {
			if i > 0 {
				fmt.Fprint(tw, "\t")
			}
			fmt.Fprint(tw, cell)
		}
		fmt.Fprintln(tw)
	}
	return tw.Flush()
}

// printStats prints operations seen within the stats window, busiest first.
func printStats(w io.Writer, stats *observability.CallStats) error {
	stats.Prune()
	top := stats.GetTopOperations(100)
	rows := make([][]string, 0, len(top))
	for _, s := range top {
		rows = append(rows, []string{
			s.Operation,
			fmt.Sprint(s.Calls),
			fmt.Sprint(s.Failures),
			s.AverageDuration().String(),
			s.MaxDuration.String(),
		})
	}
	return printTable(w, []string{"OPERATION", "CALLS", "FAILURES", "AVG", "MAX"}, rows)
}
