package main

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/quartierlabs/rentmap/internal/config"
	"github.com/quartierlabs/rentmap/internal/dataset"
	"github.com/quartierlabs/rentmap/internal/fetcher"
	"github.com/quartierlabs/rentmap/internal/pipeline"
)

var cfg *config.Config

var rootCmd = &cobra.Command{
	Use:   "rentmap",
	Short: "Paris rent-reference affordability pipeline",
	Long:  "Fetches the published rent-reference dataset, estimates monthly rents per neighborhood against your budget and surface, and emits renderer-ready summaries.",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		c, err := config.Load()
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		cfg = c

		if err := config.InitLogger(cfg.Log); err != nil {
			return fmt.Errorf("init logger: %w", err)
		}

		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = zap.L().Sync()
	},
}

// newLoader wires the configured HTTP fetcher to the dataset URL.
func newLoader() *dataset.Loader {
	f := fetcher.NewHTTPFetcher(fetcher.HTTPOptions{
		UserAgent:  cfg.Fetch.UserAgent,
		Timeout:    time.Duration(cfg.Fetch.TimeoutSecs) * time.Second,
		MaxRetries: cfg.Fetch.MaxRetries,
	})
	return dataset.NewLoader(f, cfg.Dataset.URL)
}

// criteriaFlags binds the shared criteria flags onto a command and returns
// a builder that overlays them on config defaults.
func criteriaFlags(cmd *cobra.Command) func() pipeline.EstimationCriteria {
	var (
		budget  float64
		surface float64
		rtype   string
		eras    []string
		tier    string
	)
	cmd.Flags().Float64Var(&budget, "budget", 0, "monthly budget in € (default from config)")
	cmd.Flags().Float64Var(&surface, "surface", 0, "desired surface in m²")
	cmd.Flags().StringVar(&rtype, "type", "", "rental type (as published in the dataset)")
	cmd.Flags().StringSliceVar(&eras, "era", nil, "construction eras to allow (repeatable; default all)")
	cmd.Flags().StringVar(&tier, "tier", "", "rent tier: capped, reference, or floor")

	return func() pipeline.EstimationCriteria {
		c := pipeline.EstimationCriteria{
			Budget:     cfg.Criteria.Budget,
			Surface:    cfg.Criteria.Surface,
			RentalType: cfg.Criteria.RentalType,
			Eras:       cfg.Criteria.Eras,
			Tier:       pipeline.RentTier(cfg.Criteria.Tier),
		}
		if budget != 0 {
			c.Budget = budget
		}
		if surface != 0 {
			c.Surface = surface
		}
		if rtype != "" {
			c.RentalType = rtype
		}
		if len(eras) > 0 {
			c.Eras = eras
		}
		if tier != "" {
			c.Tier = pipeline.RentTier(tier)
		}
		return c
	}
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
