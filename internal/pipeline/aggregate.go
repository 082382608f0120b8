package pipeline

import (
	"errors"
	"fmt"
	"sort"

	"github.com/twpayne/go-geom"
	"go.uber.org/zap"
	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"github.com/quartierlabs/rentmap/internal/geometry"
)

// LineItem is one human-readable unit summary inside a neighborhood.
type LineItem struct {
	RoomCount       int     `json:"room_count"`
	ConstructionEra string  `json:"construction_era"`
	RentPerM2       float64 `json:"rent_per_m2"`
	EstimatedRent   float64 `json:"estimated_rent"`
	WithinBudget    bool    `json:"within_budget"`
	Label           string  `json:"label"`
}

// NeighborhoodSummary is the per-neighborhood verdict handed to renderers.
//
// Accessible is optimistic on purpose: a single affordable unit type flags
// the whole neighborhood, even when every larger unit is out of budget.
// This mirrors the published product behavior; see DESIGN.md before
// changing it.
type NeighborhoodSummary struct {
	Name       string            `json:"name"`
	Accessible bool              `json:"accessible"`
	Outline    []geometry.LatLng `json:"outline,omitempty"`
	Geometry   geom.T            `json:"-" yaml:"-"`
	LineItems  []LineItem        `json:"line_items"`
}

// aggregate groups eligible estimated records by neighborhood name and
// derives one summary per group. Returned summaries are ordered by French
// collation of the name, giving the "ordered mapping" the renderer expects.
func aggregate(records []EstimatedRecord) []NeighborhoodSummary {
	groups := make(map[string][]EstimatedRecord)
	for _, rec := range records {
		groups[rec.NeighborhoodName] = append(groups[rec.NeighborhoodName], rec)
	}

	summaries := make([]NeighborhoodSummary, 0, len(groups))
	for name, members := range groups {
		summaries = append(summaries, summarize(name, members))
	}

	c := collate.New(language.French)
	sort.Slice(summaries, func(i, j int) bool {
		return c.CompareString(summaries[i].Name, summaries[j].Name) < 0
	})
	return summaries
}

func summarize(name string, members []EstimatedRecord) NeighborhoodSummary {
	// Display contract: ascending room count, ties broken by estimate.
	sort.Slice(members, func(i, j int) bool {
		if members[i].RoomCount != members[j].RoomCount {
			return members[i].RoomCount < members[j].RoomCount
		}
		return members[i].EstimatedRent < members[j].EstimatedRent
	})

	sum := NeighborhoodSummary{Name: name}
	for _, m := range members {
		if m.WithinBudget {
			sum.Accessible = true
		}
		sum.LineItems = append(sum.LineItems, LineItem{
			RoomCount:       m.RoomCount,
			ConstructionEra: m.ConstructionEra,
			RentPerM2:       m.RentPerM2,
			EstimatedRent:   m.EstimatedRent,
			WithinBudget:    m.WithinBudget,
			Label:           lineLabel(m),
		})

		// All rows of one neighborhood share geometry by construction of
		// the source; take the first present shape and flag divergence.
		if m.Geometry == nil {
			continue
		}
		if sum.Geometry == nil {
			sum.Geometry = m.Geometry
		} else if !geometry.Equal(sum.Geometry, m.Geometry) {
			zap.L().Warn("pipeline: geometry mismatch within neighborhood",
				zap.String("neighborhood", name),
			)
		}
	}

	outline, err := geometry.Outline(sum.Geometry)
	switch {
	case err == nil:
		sum.Outline = outline
	case errors.Is(err, geometry.ErrNoGeometry):
		zap.L().Debug("pipeline: neighborhood has no renderable geometry",
			zap.String("neighborhood", name),
		)
	}
	return sum
}

// lineLabel mirrors the renderer tooltip line: rooms, era, per-m² rate,
// monthly estimate, and a budget marker.
func lineLabel(m EstimatedRecord) string {
	marker := "✗"
	if m.WithinBudget {
		marker = "✓"
	}
	noun := "pièce"
	if m.RoomCount > 1 {
		noun = "pièces"
	}
	return fmt.Sprintf("%d %s (%s) : %.2f €/m² | loyer estimé %.0f € %s",
		m.RoomCount, noun, m.ConstructionEra, m.RentPerM2, m.EstimatedRent, marker)
}
