package pipeline

import (
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/twpayne/go-geom"

	"github.com/quartierlabs/rentmap/internal/dataset"
)

func testPolygon(t *testing.T) *geom.Polygon {
	t.Helper()
	p := geom.NewPolygon(geom.XY)
	_, err := p.SetCoords([][]geom.Coord{{
		{2.34, 48.86}, {2.35, 48.86}, {2.35, 48.87}, {2.34, 48.86},
	}})
	require.NoError(t, err)
	return p
}

// testRecord returns a valid 2025 record; callers override fields as needed.
func testRecord(t *testing.T, name string, rooms int, capped float64) dataset.RentRecord {
	t.Helper()
	return dataset.RentRecord{
		Year:             2025,
		NeighborhoodName: name,
		RoomCount:        rooms,
		ConstructionEra:  "Avant 1946",
		RentalType:       "non meublé",
		ReferenceRent:    capped * 0.85,
		RentCapped:       capped,
		RentFloor:        capped * 0.7,
		Geometry:         testPolygon(t),
	}
}

// testSnapshot wraps records with discovered category sets, the way the
// loader would.
func testSnapshot(records ...dataset.RentRecord) *dataset.Snapshot {
	types := map[string]struct{}{}
	eras := map[string]struct{}{}
	var snap dataset.Snapshot
	for _, r := range records {
		types[r.RentalType] = struct{}{}
		eras[r.ConstructionEra] = struct{}{}
	}
	for k := range types {
		snap.RentalTypes = append(snap.RentalTypes, k)
	}
	for k := range eras {
		snap.ConstructionEras = append(snap.ConstructionEras, k)
	}
	snap.Records = records
	return &snap
}

// testCriteria is the default query used across pipeline tests: 1500 €
// budget, 30 m², capped tier.
func testCriteria() EstimationCriteria {
	return EstimationCriteria{
		Budget:     1500,
		Surface:    30,
		RentalType: "non meublé",
		Tier:       TierCapped,
	}
}
