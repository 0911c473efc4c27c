package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"boxoffice-pipeline/internal/model"
	"boxoffice-pipeline/internal/pipeline"
)

func moviesCommand(a *app) *cobra.Command {
	var by string

	cmd := &cobra.Command{
		Use:   "movies",
		Short: "List selectable movie names or codes",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			s := a.settings
			loaded, err := pipeline.Load(cmd.Context(), s.Data.Path)
			if err != nil {
				return err
			}

			var values, defaults []string
			switch model.SelectBy(by) {
			case model.SelectByName:
				values = pipeline.DistinctNames(loaded.Records)
				defaults = pipeline.ResolveDefaults(s.Data.DefaultMovies, values)
			case model.SelectByCode:
				values = pipeline.DistinctCodes(loaded.Records)
				defaults = pipeline.ResolveDefaults(s.Data.DefaultCodes, values)
			default:
				return fmt.Errorf("%w: unknown selector %q", pipeline.ErrInvalidRequest, by)
			}

			fmt.Fprintln(cmd.OutOrStdout(), renderSelection(values, defaults))
			return nil
		},
	}
	cmd.Flags().StringVar(&by, "by", string(model.SelectByName), "List names or codes")
	return cmd
}
