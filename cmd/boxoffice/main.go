package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"boxoffice-pipeline/internal/config"
	"boxoffice-pipeline/internal/logging"
)

// app carries what every subcommand needs once flags are parsed.
type app struct {
	v        *viper.Viper
	cfgFile  string
	settings *config.Settings
	logger   *slog.Logger
}

func main() {
	if err := rootCommand(&app{v: config.New()}).Execute(); err != nil {
		fmt.Fprintln(os.Stderr, errorStyle.Render("error: "+err.Error()))
		os.Exit(1)
	}
}

// rootCommand creates the boxoffice command tree.
func rootCommand(a *app) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "boxoffice",
		Short:         "Box-office dashboard pipeline",
		Long:          `Loads a box-office table, finds movies competing with a selection and aggregates dashboard metrics.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	setupFlags(rootCmd)

	rootCmd.AddCommand(
		serveCommand(a),
		reportCommand(a),
		moviesCommand(a),
	)

	rootCmd.PersistentPreRunE = func(cmd *cobra.Command, _ []string) error {
		if err := config.BindFlags(a.v, cmd.Flags()); err != nil {
			return err
		}
		settings, err := config.Load(a.v, a.cfgFile)
		if err != nil {
			return err
		}
		a.settings = settings
		a.logger = logging.NewWithWriter(cmd.ErrOrStderr(), settings.Logging.Level, settings.Logging.Format)
		slog.SetDefault(a.logger)
		return nil
	}

	rootCmd.PersistentFlags().StringVar(&a.cfgFile, "config", "", "Config file (default ./boxoffice.yaml)")
	return rootCmd
}

// setupFlags defines flags shared by every subcommand. Defaults live in
// config, so flags only override when set.
func setupFlags(rootCmd *cobra.Command) {
	pf := rootCmd.PersistentFlags()
	pf.String("data", "", "Box-office source: .csv, .tsv, .xlsx, .json file or http(s) URL")
	pf.StringSlice("movies", nil, "Default movie names when a request selects nothing")
	pf.StringSlice("codes", nil, "Default movie codes when a request selects nothing")
	pf.Int("window", 0, "Competing window radius in days")
	pf.String("variant", "", "Default dashboard variant (v1..v5)")
	pf.String("db", "", "SQLite job store path")
	pf.String("out", "", "Export directory")
	pf.StringSlice("formats", nil, "Export formats: csv, json, yaml, parquet, html, database")
	pf.String("log-level", "", "Log level: debug, info, warn, error")
	pf.String("log-format", "", "Log format: text or json")
}
