package export

import (
	"os"
	"strings"

	"github.com/jonas-p/go-shp"
	"github.com/rotisserie/eris"
	"github.com/twpayne/go-geom"
	"go.uber.org/zap"

	"github.com/quartierlabs/rentmap/internal/pipeline"
)

// WriteShapefile writes neighborhood polygons with their verdicts to an
// ESRI shapefile at path. Coordinates keep storage axis order (longitude
// first). Neighborhoods without geometry are skipped and counted.
func WriteShapefile(path string, res *pipeline.Result) error {
	w, err := shp.Create(path, shp.POLYGON)
	if err != nil {
		return eris.Wrapf(err, "export: create shapefile %s", path)
	}
	w.SetFields([]shp.Field{
		shp.StringField("NAME", 64),
		shp.StringField("ACCESS", 5),
		shp.NumberField("UNITS", 8),
	})

	var row, skipped int
	for _, s := range res.Summaries {
		poly := toShpPolygon(s.Geometry)
		if poly == nil {
			skipped++
			continue
		}

		w.Write(poly)
		attrs := []any{s.Name, boolAttr(s.Accessible), len(s.LineItems)}
		for field, v := range attrs {
			if err := w.WriteAttribute(row, field, v); err != nil {
				w.Close()
				return eris.Wrapf(err, "export: write attribute row %d field %d", row, field)
			}
		}
		row++
	}
	w.Close()

	if skipped > 0 {
		zap.L().Info("export: shapefile rows skipped for missing geometry",
			zap.Int("skipped", skipped),
			zap.Int("written", row),
		)
	}
	return fixAttributeTableName(path)
}

// fixAttributeTableName works around go-shp building the DBF name without
// the dot separator (<base>dbf instead of <base>.dbf), which leaves the
// attribute table invisible to readers. Moves it to <base>.dbf.
func fixAttributeTableName(path string) error {
	base := strings.TrimSuffix(path, ".shp")
	bare := base + "dbf"
	if _, err := os.Stat(bare); err != nil {
		return nil
	}
	if err := os.Rename(bare, base+".dbf"); err != nil {
		return eris.Wrapf(err, "export: rename attribute table %s", bare)
	}
	return nil
}

func boolAttr(b bool) string {
	if b {
		return "true"
	}
	return "false"
}

// toShpPolygon converts the stored geometry's rings into a go-shp polygon.
// Returns nil for absent or empty shapes.
func toShpPolygon(g geom.T) *shp.Polygon {
	var rings [][]geom.Coord
	switch s := g.(type) {
	case *geom.Polygon:
		rings = s.Coords()
	case *geom.MultiPolygon:
		for _, poly := range s.Coords() {
			rings = append(rings, poly...)
		}
	default:
		return nil
	}

	var parts [][]shp.Point
	for _, ring := range rings {
		if len(ring) == 0 {
			continue
		}
		pts := make([]shp.Point, 0, len(ring))
		for _, c := range ring {
			if len(c) < 2 {
				continue
			}
			pts = append(pts, shp.Point{X: c[0], Y: c[1]})
		}
		if len(pts) > 0 {
			parts = append(parts, pts)
		}
	}
	if len(parts) == 0 {
		return nil
	}

	return (*shp.Polygon)(shp.NewPolyLine(parts))
}
