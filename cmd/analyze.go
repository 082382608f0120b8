package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/quartierlabs/rentmap/internal/dataset"
	"github.com/quartierlabs/rentmap/internal/export"
	"github.com/quartierlabs/rentmap/internal/pipeline"
)

var analyzeFormat string

var analyzeCmd = &cobra.Command{
	Use:   "analyze",
	Short: "Run the affordability pipeline and print neighborhood summaries",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		loader := newLoader()
		snap, err := loader.Snapshot(ctx)
		if err != nil {
			return err
		}

		crit := buildAnalyzeCriteria()
		if crit.RentalType == "" && len(snap.RentalTypes) > 0 {
			crit.RentalType = snap.RentalTypes[0]
		}

		res, err := pipeline.Run(snap, cfg.Dataset.Year, crit)
		if warned := printWarning(err); warned {
			return nil
		}
		if err != nil {
			return err
		}

		switch analyzeFormat {
		case "json":
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return eris.Wrap(enc.Encode(res), "encode result")
		case "yaml":
			return eris.Wrap(yaml.NewEncoder(os.Stdout).Encode(res), "encode result")
		case "text":
			printText(res)
			return nil
		default:
			return eris.Errorf("unknown format %q", analyzeFormat)
		}
	},
}

var buildAnalyzeCriteria func() pipeline.EstimationCriteria

// printWarning maps empty-outcome sentinels to user-facing warnings.
// Returns true when the error was consumed.
func printWarning(err error) bool {
	switch {
	case err == nil:
		return false
	case errors.Is(err, dataset.ErrEmptyDataset):
		fmt.Println("warning: no data received at all, the source returned an empty dataset")
	case errors.Is(err, pipeline.ErrEmptyYear):
		fmt.Printf("warning: no data for year %d in the source\n", cfg.Dataset.Year)
	case errors.Is(err, pipeline.ErrNoMatch):
		fmt.Println("warning: no records match the given criteria, relax the filters")
	default:
		return false
	}
	return true
}

func printText(res *pipeline.Result) {
	fmt.Printf("Year %d: %d neighborhoods, %d accessible (budget %.0f €, %.0f m², tier %s)\n\n",
		res.Year, len(res.Summaries), res.Accessible,
		res.Criteria.Budget, res.Criteria.Surface, res.Criteria.Tier)

	for _, s := range res.Summaries {
		marker := export.ColorInaccessible
		if s.Accessible {
			marker = export.ColorAccessible
		}
		geo := ""
		if s.Outline == nil {
			geo = " [no geometry]"
		}
		fmt.Printf("%s (%s)%s\n", s.Name, marker, geo)
		for _, li := range s.LineItems {
			fmt.Printf("  %s\n", li.Label)
		}
	}
}

func init() {
	buildAnalyzeCriteria = criteriaFlags(analyzeCmd)
	analyzeCmd.Flags().StringVar(&analyzeFormat, "format", "text", "output format: text, json, or yaml")
	rootCmd.AddCommand(analyzeCmd)
}
