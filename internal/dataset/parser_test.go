package dataset

import (
	"context"
	"runtime"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testHeader = "Année;Secteurs géographiques;Numéro du quartier;Nom du quartier;" +
	"Nombre de pièces principales;Epoque de construction;Type de location;" +
	"Loyers de référence;Loyers de référence majorés;Loyers de référence minorés;" +
	"Numéro INSEE du quartier;geo_shape"

const testShape = `"{""type"": ""Polygon"", ""coordinates"": [[[2.34, 48.86], [2.35, 48.86], [2.35, 48.87], [2.34, 48.86]]]}"`

// testRow builds one CSV line with sensible defaults, overridden per column index.
func testRow(overrides map[int]string) string {
	fields := []string{
		"2025", "1", "4", "Halles", "2", "Avant 1946", "non meublé",
		"30,5", "36,6", "21,4", "7510104", testShape,
	}
	for i, v := range overrides {
		fields[i] = v
	}
	return strings.Join(fields, ";")
}

func parseString(t *testing.T, payload string) ([]RentRecord, SkipCounts) {
	t.Helper()
	records, skips, err := ParseRecords(context.Background(), strings.NewReader(payload))
	require.NoError(t, err)
	return records, skips
}

func TestParseRecords_Basic(t *testing.T) {
	payload := testHeader + "\n" + testRow(nil) + "\n"
	records, skips := parseString(t, payload)

	require.Len(t, records, 1)
	assert.Zero(t, skips.Total())

	rec := records[0]
	assert.Equal(t, 2025, rec.Year)
	assert.Equal(t, "Halles", rec.NeighborhoodName)
	assert.Equal(t, 2, rec.RoomCount)
	assert.Equal(t, "Avant 1946", rec.ConstructionEra)
	assert.Equal(t, "non meublé", rec.RentalType)
	assert.InDelta(t, 30.5, rec.ReferenceRent, 1e-9)
	assert.InDelta(t, 36.6, rec.RentCapped, 1e-9)
	assert.InDelta(t, 21.4, rec.RentFloor, 1e-9)
	assert.Equal(t, "7510104", rec.INSEECode)
	require.NotNil(t, rec.Geometry)
}

func TestParseRecords_DecimalComma(t *testing.T) {
	// Both comma and dot notations must parse to the same value.
	payload := testHeader + "\n" +
		testRow(map[int]string{7: "32,75"}) + "\n" +
		testRow(map[int]string{7: "32.75"}) + "\n"
	records, _ := parseString(t, payload)

	require.Len(t, records, 2)
	assert.InDelta(t, records[0].ReferenceRent, records[1].ReferenceRent, 1e-9)
}

func TestParseRecords_RoomCountWithSuffix(t *testing.T) {
	payload := testHeader + "\n" + testRow(map[int]string{4: "4 et plus"}) + "\n"
	records, _ := parseString(t, payload)

	require.Len(t, records, 1)
	assert.Equal(t, 4, records[0].RoomCount)
}

func TestParseRecords_BadNumberDropped(t *testing.T) {
	payload := testHeader + "\n" +
		testRow(map[int]string{8: "n/a"}) + "\n" +
		testRow(nil) + "\n"
	records, skips := parseString(t, payload)

	require.Len(t, records, 1)
	assert.Equal(t, 1, skips[SkipBadNumber])
}

func TestParseRecords_NegativeRentDropped(t *testing.T) {
	payload := testHeader + "\n" + testRow(map[int]string{9: "-3,0"}) + "\n"
	records, skips := parseString(t, payload)

	assert.Empty(t, records)
	assert.Equal(t, 1, skips[SkipBadNumber])
}

func TestParseRecords_MissingFieldDropped(t *testing.T) {
	payload := testHeader + "\n" + testRow(map[int]string{3: ""}) + "\n"
	records, skips := parseString(t, payload)

	assert.Empty(t, records)
	assert.Equal(t, 1, skips[SkipMissing])
}

func TestParseRecords_MalformedGeometryKeepsRecord(t *testing.T) {
	payload := testHeader + "\n" + testRow(map[int]string{11: `"{not json"`}) + "\n"
	records, skips := parseString(t, payload)

	// The row survives for affordability computation; only its shape is gone.
	require.Len(t, records, 1)
	assert.Nil(t, records[0].Geometry)
	assert.Equal(t, 1, skips[SkipGeometry])
}

func TestParseRecords_NonPolygonGeometryKeepsRecord(t *testing.T) {
	point := `"{""type"": ""Point"", ""coordinates"": [2.34, 48.86]}"`
	payload := testHeader + "\n" + testRow(map[int]string{11: point}) + "\n"
	records, skips := parseString(t, payload)

	require.Len(t, records, 1)
	assert.Nil(t, records[0].Geometry)
	assert.Equal(t, 1, skips[SkipGeometry])
}

func TestParseRecords_HeaderOnly(t *testing.T) {
	records, skips := parseString(t, testHeader+"\n")
	assert.Empty(t, records)
	assert.Zero(t, skips.Total())
}

func TestParseRecords_EmptyPayload(t *testing.T) {
	records, skips := parseString(t, "")
	assert.Empty(t, records)
	assert.Zero(t, skips.Total())
}

func TestParseRecords_MissingRequiredColumn(t *testing.T) {
	header := strings.Replace(testHeader, "Loyers de référence majorés", "Autre chose", 1)
	_, _, err := ParseRecords(context.Background(), strings.NewReader(header+"\n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Loyers de référence majorés")
}

func TestParseRecords_BadHeaderReleasesStreamer(t *testing.T) {
	// A payload far larger than the row channel buffer: the bad-header
	// return must not strand the streaming goroutine mid-send.
	var b strings.Builder
	b.WriteString("colonne inconnue\n")
	for i := 0; i < 500; i++ {
		b.WriteString(testRow(nil) + "\n")
	}

	before := runtime.NumGoroutine()
	_, _, err := ParseRecords(context.Background(), strings.NewReader(b.String()))
	require.Error(t, err)

	assert.Eventually(t, func() bool {
		return runtime.NumGoroutine() <= before
	}, time.Second, 10*time.Millisecond)
}

func TestParseLeadingInt(t *testing.T) {
	cases := []struct {
		in   string
		want int
		ok   bool
	}{
		{"1", 1, true},
		{"4 et plus", 4, true},
		{" 3 ", 3, true},
		{"et plus", 0, false},
		{"", 0, false},
	}
	for _, tc := range cases {
		got, ok := parseLeadingInt(tc.in)
		assert.Equal(t, tc.ok, ok, tc.in)
		assert.Equal(t, tc.want, got, tc.in)
	}
}
