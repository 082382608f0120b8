package main

import (
	"os"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/quartierlabs/rentmap/internal/export"
	"github.com/quartierlabs/rentmap/internal/pipeline"
)

var (
	exportFormat string
	exportOut    string
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Run the pipeline and write renderer-ready artifacts",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		loader := newLoader()
		snap, err := loader.Snapshot(ctx)
		if err != nil {
			return err
		}

		crit := buildExportCriteria()
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

		switch exportFormat {
		case "geojson":
			out := os.Stdout
			if exportOut != "" && exportOut != "-" {
				f, err := os.Create(exportOut)
				if err != nil {
					return eris.Wrapf(err, "create %s", exportOut)
				}
				defer f.Close() //nolint:errcheck
				out = f
			}
			return export.WriteGeoJSON(out, res)
		case "shapefile":
			if exportOut == "" {
				return eris.New("shapefile export requires --out")
			}
			return export.WriteShapefile(exportOut, res)
		case "xlsx":
			if exportOut == "" {
				return eris.New("xlsx export requires --out")
			}
			return export.WriteXLSX(exportOut, res)
		default:
			return eris.Errorf("unknown format %q", exportFormat)
		}
	},
}

var buildExportCriteria func() pipeline.EstimationCriteria

func init() {
	buildExportCriteria = criteriaFlags(exportCmd)
	exportCmd.Flags().StringVar(&exportFormat, "format", "geojson", "artifact format: geojson, shapefile, or xlsx")
	exportCmd.Flags().StringVar(&exportOut, "out", "", "output path (default stdout for geojson)")
	rootCmd.AddCommand(exportCmd)
}
