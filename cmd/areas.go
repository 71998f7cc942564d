package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/sells-group/bizmapper/internal/demographics"
	"github.com/sells-group/bizmapper/internal/model"
)

var areasCmd = &cobra.Command{
	Use:   "areas",
	Short: "List planning areas with their headline demographics",
	RunE: func(cmd *cobra.Command, _ []string) error {
		env, err := initEnv(cfg, "resolve", envOptions{})
		if err != nil {
			return err
		}

		rows := areaRows(cmd.Context(), env.Demographics)
		if len(rows) == 0 {
			fmt.Fprintln(os.Stderr, "No planning areas found.")
			return nil
		}
		formatAreas(os.Stdout, rows)
		return nil
	},
}

type areaRow struct {
	Name   string
	Lookup demographics.Lookup
	Tier   model.DensityTier
}

func areaRows(ctx context.Context, svc *demographics.Service) []areaRow {
	names := svc.Names()
	rows := make([]areaRow, 0, len(names))
	for _, name := range names {
		look, ok := svc.Get(ctx, name)
		if !ok {
			continue
		}
		rows = append(rows, areaRow{
			Name:   name,
			Lookup: look,
			Tier:   demographics.DensityTierFor(look.Record.Density),
		})
	}
	return rows
}

func formatAreas(out io.Writer, rows []areaRow) {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "AREA\tPOPULATION\tDENSITY\tTIER\tMEDIAN_AGE\tINCOME\tSOURCE")
	for _, r := range rows {
		rec := r.Lookup.Record
		_, _ = fmt.Fprintf(w, "%s\t%d\t%d\t%s\t%d\t%d\t%s\n",
			demographics.DisplayName(r.Name),
			rec.Population,
			rec.Density,
			r.Tier.Label,
			rec.MedianAge,
			rec.MedianHouseholdIncome,
			r.Lookup.Source,
		)
	}
	_ = w.Flush()
}

func init() {
	rootCmd.AddCommand(areasCmd)
}
