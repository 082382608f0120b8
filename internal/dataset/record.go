// Package dataset parses the raw rent-reference CSV into typed records and
// holds the immutable snapshot the pipeline runs against.
package dataset

import (
	"github.com/twpayne/go-geom"
)

// RentRecord is one row of source data after parsing. Rent fields are €/m²
// and are guaranteed finite and non-negative. Geometry is nil when the
// source row carried no decodable shape.
type RentRecord struct {
	Year             int
	GeoSector        string
	NeighborhoodID   string
	NeighborhoodName string
	RoomCount        int
	ConstructionEra  string
	RentalType       string
	ReferenceRent    float64
	RentCapped       float64
	RentFloor        float64
	INSEECode        string
	Geometry         geom.T
}

// Source column labels, as published. The mapping is fixed: headers are
// matched exactly, never inferred.
const (
	colYear      = "Année"
	colGeoSector = "Secteurs géographiques"
	colID        = "Numéro du quartier"
	colName      = "Nom du quartier"
	colRooms     = "Nombre de pièces principales"
	colEra       = "Epoque de construction"
	colType      = "Type de location"
	colRentRef   = "Loyers de référence"
	colRentCap   = "Loyers de référence majorés"
	colRentFloor = "Loyers de référence minorés"
	colINSEE     = "Numéro INSEE du quartier"
	colGeoShape  = "geo_shape"
)

// requiredColumns must all be present in the header row; a payload missing
// any of them is an unrecognized format and fails the whole batch.
var requiredColumns = []string{
	colYear, colName, colRooms, colEra, colType,
	colRentRef, colRentCap, colRentFloor, colGeoShape,
}

// Skip reasons reported per dropped row.
const (
	SkipShortRow  = "short_row"
	SkipBadNumber = "bad_number"
	SkipMissing   = "missing_field"
	SkipGeometry  = "bad_geometry"
)

// SkipCounts tallies dropped or degraded rows by reason.
type SkipCounts map[string]int

// Total returns the sum over all reasons.
func (s SkipCounts) Total() int {
	var n int
	for _, c := range s {
		n += c
	}
	return n
}
