package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"boxoffice-pipeline/internal/api"
	"boxoffice-pipeline/internal/api/handler"
	"boxoffice-pipeline/internal/observability"
	"boxoffice-pipeline/internal/pipeline"
	"boxoffice-pipeline/internal/store"
	"boxoffice-pipeline/pkg/router"
)

func serveCommand(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the dashboard API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			s := a.settings
			db, err := store.InitDB(s.Store.Path)
			if err != nil {
				return fmt.Errorf("failed to initialize database: %w", err)
			}
			defer db.Close()

			metrics, err := observability.NewMetrics()
			if err != nil {
				return fmt.Errorf("failed to register metrics: %w", err)
			}

			exporter := pipeline.NewExportManager(s.Export.Dir, s.Export.Formats, db, a.logger)
			if err := exporter.Output.EnsureOutputDirExists(); err != nil {
				return fmt.Errorf("failed to create export directory: %w", err)
			}
			runner := pipeline.NewRunner(s.Data.Path, s.PipelineOptions(), db, metrics, exporter, a.logger)
			h := handler.New(db, runner, exporter.Output, s.JobTimeout(), a.logger)

			r := router.New(a.logger)
			api.RegisterRoutes(r, h, metrics)

			a.logger.Info("📂 serving dashboards",
				"source", s.Data.Path,
				"store", s.Store.Path,
				"exports", s.Export.Dir,
				"variant", s.Dashboard.Variant)
			return r.Start(ctx, s.Server.Addr, s.ReadTimeout(), s.WriteTimeout())
		},
	}
	cmd.Flags().String("addr", "", "Listen address (default :8080)")
	return cmd
}
