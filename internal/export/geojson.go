// Package export writes pipeline results as renderer-ready artifacts:
// GeoJSON, ESRI shapefile, and XLSX.
package export

import (
	"encoding/json"
	"io"

	"github.com/rotisserie/eris"
	"github.com/twpayne/go-geom/encoding/geojson"
	"go.uber.org/zap"

	"github.com/quartierlabs/rentmap/internal/pipeline"
)

// Colors assigned to the accessibility verdict in rendered output.
const (
	ColorAccessible   = "green"
	ColorInaccessible = "red"
)

// Color maps a summary's verdict to its renderer color.
func Color(s pipeline.NeighborhoodSummary) string {
	if s.Accessible {
		return ColorAccessible
	}
	return ColorInaccessible
}

// WriteGeoJSON emits a FeatureCollection with one feature per neighborhood
// that has renderable geometry. Neighborhoods without geometry are omitted
// from the features but listed under the collection's "skipped" metadata so
// the textual account stays complete.
func WriteGeoJSON(w io.Writer, res *pipeline.Result) error {
	fc := &geojson.FeatureCollection{}
	var skipped []string

	for _, s := range res.Summaries {
		if s.Geometry == nil {
			skipped = append(skipped, s.Name)
			continue
		}

		labels := make([]string, 0, len(s.LineItems))
		for _, li := range s.LineItems {
			labels = append(labels, li.Label)
		}

		fc.Features = append(fc.Features, &geojson.Feature{
			ID:       s.Name,
			Geometry: s.Geometry,
			Properties: map[string]any{
				"name":       s.Name,
				"accessible": s.Accessible,
				"color":      Color(s),
				"line_items": labels,
			},
		})
	}

	if len(skipped) > 0 {
		zap.L().Info("export: neighborhoods without renderable geometry",
			zap.Strings("skipped", skipped),
		)
	}

	raw, err := fc.MarshalJSON()
	if err != nil {
		return eris.Wrap(err, "export: marshal feature collection")
	}

	// Attach run metadata next to the standard members.
	var doc map[string]json.RawMessage
	if err := json.Unmarshal(raw, &doc); err != nil {
		return eris.Wrap(err, "export: decorate feature collection")
	}
	meta, err := json.Marshal(map[string]any{
		"run_id":  res.RunID,
		"year":    res.Year,
		"skipped": skipped,
	})
	if err != nil {
		return eris.Wrap(err, "export: marshal metadata")
	}
	doc["metadata"] = meta

	enc := json.NewEncoder(w)
	return eris.Wrap(enc.Encode(doc), "export: write geojson")
}
