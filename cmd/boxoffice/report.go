package main

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"boxoffice-pipeline/internal/model"
	"boxoffice-pipeline/internal/pipeline"
	"boxoffice-pipeline/internal/store"
)

func reportCommand(a *app) *cobra.Command {
	var (
		byCode      bool
		noStore     bool
		charts      []string
		aggregation string
	)

	cmd := &cobra.Command{
		Use:   "report [movie...]",
		Short: "Build one dashboard, print its cards and export it",
		Long: `Build one dashboard for the given movies (or the configured defaults when
none are given), print the metric cards and competing windows, and write the
configured export files.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			s := a.settings
			req := model.DashboardRequest{Aggregation: model.Granularity(aggregation)}
			for _, c := range charts {
				req.Charts = append(req.Charts, model.ChartKind(c))
			}
			if len(args) > 0 {
				if byCode {
					req.Codes = args
				} else {
					req.Movies = args
				}
			}

			var db *store.Store
			if !noStore {
				var err error
				if db, err = store.InitDB(s.Store.Path); err != nil {
					return fmt.Errorf("failed to initialize database: %w", err)
				}
				defer db.Close()
			}

			jobID := uuid.New().String()
			runner := pipeline.NewRunner(s.Data.Path, s.PipelineOptions(), nil, nil, nil, a.logger)
			if db != nil {
				if err := db.SaveJob(cmd.Context(), jobID, req); err != nil {
					return fmt.Errorf("save job: %w", err)
				}
				runner.Store = db
				runner.Exporter = pipeline.NewExportManager(s.Export.Dir, s.Export.Formats, db, a.logger)
			} else {
				runner.Exporter = pipeline.NewExportManager(s.Export.Dir, withoutDatabase(s.Export.Formats), nil, a.logger)
			}

			d, err := runner.Run(cmd.Context(), jobID, req)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderDashboard(d))
			return nil
		},
	}

	cmd.Flags().BoolVar(&byCode, "by-code", false, "Treat arguments as movie codes")
	cmd.Flags().BoolVar(&noStore, "no-store", false, "Do not record the run in the job store")
	cmd.Flags().StringSliceVar(&charts, "charts", nil, "Override the variant's charts: line, scatter, boxplot, dumbbell")
	cmd.Flags().StringVar(&aggregation, "aggregation", "", "Override the variant's aggregation: daily, week, month, year")
	return cmd
}

// withoutDatabase drops the database target when no store is open.
func withoutDatabase(formats []string) []string {
	out := make([]string, 0, len(formats))
	for _, f := range formats {
		if f != pipeline.FormatDatabase {
			out = append(out, f)
		}
	}
	return out
}
