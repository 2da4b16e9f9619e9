package pg

import (
	"math/big"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgtype"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/JonMunkholm/bizcheck/internal/core"
	"github.com/JonMunkholm/bizcheck/internal/reference"
)

func TestDBValue(t *testing.T) {
	tests := []struct {
		name string
		in   any
		want core.Value
	}{
		{"null", nil, core.Missing()},
		{"text", "Acme", core.Text("Acme")},
		{"smallint", int16(7), core.Integer(7)},
		{"integer", int32(601), core.Integer(601)},
		{"bigint", int64(4155551234), core.Integer(4155551234)},
		{"whole double", float64(94105), core.Integer(94105)},
		{"fractional real", float32(2.5), core.Unsupported("2.5")},
		{"whole numeric", pgtype.Numeric{Int: big.NewInt(601), Valid: true}, core.Integer(601)},
		{"scaled numeric", pgtype.Numeric{Int: big.NewInt(94105), Exp: 0, Valid: true}, core.Integer(94105)},
		{"fractional numeric", pgtype.Numeric{Int: big.NewInt(25), Exp: -1, Valid: true}, core.Unsupported("2.5")},
		{"null numeric", pgtype.Numeric{}, core.Missing()},
		{"pgtype text", pgtype.Text{String: "CA", Valid: true}, core.Text("CA")},
		{"null pgtype text", pgtype.Text{}, core.Missing()},
		{"bool", true, core.Unsupported("true")},
		{"bytes", []byte("raw"), core.Unsupported("raw")},
		{"timestamp", time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC), core.Unsupported("2024-03-01T00:00:00Z")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, dbValue(tt.in))
		})
	}
}

func TestGeoRow(t *testing.T) {
	text := func(s string) pgtype.Text { return pgtype.Text{String: s, Valid: true} }

	row, err := geoRow(text("601"), text("Adjuntas"), text("PR"))
	require.NoError(t, err)
	assert.Equal(t, reference.GeoRow{Zip: "00601", City: "Adjuntas", State: "PR"}, row)

	_, err = geoRow(pgtype.Text{}, text("Adjuntas"), text("PR"))
	assert.ErrorIs(t, err, reference.ErrMalformedGeoRow)

	_, err = geoRow(text("9410A"), text("San Francisco"), text("CA"))
	assert.ErrorIs(t, err, reference.ErrMalformedGeoRow)
}

func TestRecordQuery(t *testing.T) {
	got := recordQuery("directory.businesses")
	want := `SELECT "name", "address", "city", "state", "zip", "phone", "time_in_business", ` +
		`"category_code", "headcount", "revenue" FROM "directory"."businesses"`
	assert.Equal(t, want, got)
}

func TestTableIdent(t *testing.T) {
	assert.Equal(t, `"naics_codes"`, tableIdent("naics_codes"))
	assert.Equal(t, `"ref"."geo"`, tableIdent("ref.geo"))
	assert.Equal(t, `"bad""name"`, tableIdent(`bad"name`))
}
