package dataset

import (
	"context"
	"io"
	"math"
	"strconv"
	"strings"

	"github.com/rotisserie/eris"
	"github.com/twpayne/go-geom"
	"github.com/twpayne/go-geom/encoding/geojson"
	"go.uber.org/zap"

	"github.com/quartierlabs/rentmap/internal/fetcher"
)

// ParseRecords reads the semicolon-delimited payload and returns typed
// records. Per-row failures never abort the batch: rows with missing or
// unparseable required fields are dropped and counted; rows whose geo_shape
// does not decode keep a nil Geometry and are counted under SkipGeometry.
// A payload with a header and zero data rows (or no content at all) yields
// an empty slice, not an error.
func ParseRecords(ctx context.Context, r io.Reader) ([]RentRecord, SkipCounts, error) {
	// Child context so an early return (bad header) unblocks the streaming
	// goroutine instead of leaving it parked on a full row channel.
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	rowCh, errCh := fetcher.StreamCSV(ctx, r, fetcher.CSVOptions{
		Delimiter: ';',
		TrimSpace: true,
	})

	skips := make(SkipCounts)
	var records []RentRecord
	var cols map[string]int

	for row := range rowCh {
		if cols == nil {
			idx, err := mapColumns(row)
			if err != nil {
				return nil, nil, err
			}
			cols = idx
			continue
		}

		rec, reason := parseRow(row, cols)
		if reason != "" && reason != SkipGeometry {
			skips[reason]++
			continue
		}
		if reason == SkipGeometry {
			skips[SkipGeometry]++
		}
		records = append(records, rec)
	}

	for err := range errCh {
		if err != nil {
			return nil, nil, eris.Wrap(err, "dataset: read payload")
		}
	}

	if skips.Total() > 0 {
		zap.L().Info("dataset: rows skipped or degraded during parse",
			zap.Int("parsed", len(records)),
			zap.Any("skips", skips),
		)
	}

	return records, skips, nil
}

// mapColumns resolves header labels to field positions. All required
// columns must be present; unknown columns are ignored.
func mapColumns(header []string) (map[string]int, error) {
	idx := make(map[string]int, len(header))
	for i, name := range header {
		idx[strings.TrimSpace(name)] = i
	}
	for _, name := range requiredColumns {
		if _, ok := idx[name]; !ok {
			return nil, eris.Errorf("dataset: required column %q missing from header", name)
		}
	}
	return idx, nil
}

// parseRow converts one data row. The returned reason is "" for a clean
// record, SkipGeometry for a record kept with absent geometry, and any
// other reason for a dropped row.
func parseRow(row []string, cols map[string]int) (RentRecord, string) {
	field := func(name string) (string, bool) {
		i, ok := cols[name]
		if !ok || i >= len(row) {
			return "", false
		}
		return row[i], true
	}

	for _, name := range requiredColumns {
		v, ok := field(name)
		if !ok {
			return RentRecord{}, SkipShortRow
		}
		if v == "" {
			return RentRecord{}, SkipMissing
		}
	}

	var rec RentRecord
	var err error

	yearStr, _ := field(colYear)
	if rec.Year, err = strconv.Atoi(yearStr); err != nil {
		return RentRecord{}, SkipBadNumber
	}

	roomsStr, _ := field(colRooms)
	rooms, ok := parseLeadingInt(roomsStr)
	if !ok {
		return RentRecord{}, SkipBadNumber
	}
	rec.RoomCount = rooms

	rec.ReferenceRent, err = parseDecimal(mustField(row, cols, colRentRef))
	if err != nil {
		return RentRecord{}, SkipBadNumber
	}
	rec.RentCapped, err = parseDecimal(mustField(row, cols, colRentCap))
	if err != nil {
		return RentRecord{}, SkipBadNumber
	}
	rec.RentFloor, err = parseDecimal(mustField(row, cols, colRentFloor))
	if err != nil {
		return RentRecord{}, SkipBadNumber
	}

	rec.NeighborhoodName = mustField(row, cols, colName)
	rec.ConstructionEra = mustField(row, cols, colEra)
	rec.RentalType = mustField(row, cols, colType)
	rec.GeoSector, _ = field(colGeoSector)
	rec.NeighborhoodID, _ = field(colID)
	rec.INSEECode, _ = field(colINSEE)

	// A present but undecodable shape degrades the record instead of
	// dropping it: the row still counts toward affordability, it just has
	// nothing to render.
	shape, _ := field(colGeoShape)
	g, gerr := decodeGeometry(shape)
	if gerr != nil {
		return rec, SkipGeometry
	}
	rec.Geometry = g

	return rec, ""
}

func mustField(row []string, cols map[string]int, name string) string {
	return row[cols[name]]
}

// parseDecimal normalizes a locale-formatted decimal (comma as decimal
// separator) and rejects non-finite or negative values.
func parseDecimal(s string) (float64, error) {
	s = strings.TrimSpace(strings.ReplaceAll(s, ",", "."))
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, eris.Wrapf(err, "dataset: parse decimal %q", s)
	}
	if math.IsNaN(f) || math.IsInf(f, 0) || f < 0 {
		return 0, eris.Errorf("dataset: decimal %q out of range", s)
	}
	return f, nil
}

// parseLeadingInt extracts the integer prefix of values like "4 et plus".
func parseLeadingInt(s string) (int, bool) {
	s = strings.TrimSpace(s)
	end := 0
	for end < len(s) && s[end] >= '0' && s[end] <= '9' {
		end++
	}
	if end == 0 {
		return 0, false
	}
	n, err := strconv.Atoi(s[:end])
	if err != nil {
		return 0, false
	}
	return n, true
}

// decodeGeometry decodes the geo_shape cell, which holds a GeoJSON geometry
// object. Only polygonal shapes are renderable downstream.
func decodeGeometry(s string) (geom.T, error) {
	if strings.TrimSpace(s) == "" {
		return nil, eris.New("dataset: empty geo_shape")
	}
	var g geom.T
	if err := geojson.Unmarshal([]byte(s), &g); err != nil {
		return nil, eris.Wrap(err, "dataset: decode geo_shape")
	}
	switch g.(type) {
	case *geom.Polygon, *geom.MultiPolygon:
		return g, nil
	default:
		return nil, eris.Errorf("dataset: unsupported geometry type %T", g)
	}
}
