package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/sells-group/bizmapper/internal/model"
	"github.com/sells-group/bizmapper/internal/resolve"
)

var resolveCmd = &cobra.Command{
	Use:   "resolve",
	Short: "Resolve a coordinate to a planning area",
	Long:  "Runs one pin-drop interaction: reverse geocode with a wide retry, fall back to the nearest centroid, and attach demographics.",
	RunE: func(cmd *cobra.Command, _ []string) error {
		lat, _ := cmd.Flags().GetFloat64("lat")
		lng, _ := cmd.Flags().GetFloat64("lng")
		asJSON, _ := cmd.Flags().GetBool("json")

		env, err := initEnv(cfg, "resolve", envOptions{})
		if err != nil {
			return err
		}

		res, err := env.Pipeline.ResolvePoint(cmd.Context(), model.GeoPoint{Lat: lat, Lng: lng})
		if err != nil {
			return resolveFailure(err)
		}
		return printResult(os.Stdout, res, asJSON)
	},
}

var searchCmd = &cobra.Command{
	Use:   "search <query>",
	Short: "Resolve a place search to a planning area",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		asJSON, _ := cmd.Flags().GetBool("json")

		env, err := initEnv(cfg, "resolve", envOptions{})
		if err != nil {
			return err
		}

		res, err := env.Pipeline.ResolveQuery(cmd.Context(), strings.Join(args, " "))
		if err != nil {
			return resolveFailure(err)
		}
		return printResult(os.Stdout, res, asJSON)
	},
}

// resolveFailure prints user-facing failures as-is and wraps the rest.
func resolveFailure(err error) error {
	if resolve.IsUserFacing(err) {
		fmt.Fprintln(os.Stderr, err.Error())
		return err
	}
	return eris.Wrap(err, "resolve")
}

func printResult(out io.Writer, res *model.ResolutionResult, asJSON bool) error {
	if asJSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(res)
	}
	formatResult(out, res)
	return nil
}

func formatResult(out io.Writer, res *model.ResolutionResult) {
	_, _ = fmt.Fprintf(out, "Area:        %s (%s)\n", res.DisplayName, res.Area)
	_, _ = fmt.Fprintf(out, "Point:       %s\n", res.Point)
	if res.Query != "" {
		_, _ = fmt.Fprintf(out, "Query:       %s\n", res.Query)
	}
	if res.Address != "" {
		_, _ = fmt.Fprintf(out, "Address:     %s\n", res.Address)
	}
	_, _ = fmt.Fprintf(out, "Provenance:  %s (%s)\n", res.Provenance, res.Tier)
	_, _ = fmt.Fprintf(out, "Data:        %s\n", res.SourceLabel)

	if d := res.Demographics; d != nil {
		_, _ = fmt.Fprintf(out, "Population:  %d\n", d.Population)
		_, _ = fmt.Fprintf(out, "Density:     %d/km² (%s)\n", d.Density, res.DensityTier.Label)
		_, _ = fmt.Fprintf(out, "Median age:  %d\n", d.MedianAge)
		_, _ = fmt.Fprintf(out, "Income:      $%d/month\n", d.MedianHouseholdIncome)
		_, _ = fmt.Fprintf(out, "Dwellings:   HDB %d%%, condo %d%%, landed %d%%, other %d%%\n",
			d.Dwellings.HDB, d.Dwellings.Condo, d.Dwellings.Landed, d.Dwellings.Other)
		_, _ = fmt.Fprintf(out, "Ages:        young %d%%, working %d%%, senior %d%%\n",
			d.AgeGroups.Young, d.AgeGroups.Working, d.AgeGroups.Senior)
	}

	if len(res.Insights) > 0 {
		_, _ = fmt.Fprintln(out, "Insights:")
		for _, in := range res.Insights {
			_, _ = fmt.Fprintf(out, "  - [%s] %s\n", in.Category, in.Message)
		}
	}
}

func init() {
	resolveCmd.Flags().Float64("lat", 0, "latitude (required)")
	resolveCmd.Flags().Float64("lng", 0, "longitude (required)")
	resolveCmd.Flags().Bool("json", false, "print the result as JSON")
	_ = resolveCmd.MarkFlagRequired("lat")
	_ = resolveCmd.MarkFlagRequired("lng")

	searchCmd.Flags().Bool("json", false, "print the result as JSON")

	rootCmd.AddCommand(resolveCmd, searchCmd)
}
