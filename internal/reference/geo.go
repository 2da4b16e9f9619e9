package reference

// geo.go loads the GeoNames postal reference used to check city, state and
// zip values, both one field at a time and as an exact (city, state, zip) row.
//
// GeoNames postal dumps are tab-separated with the layout:
//
//	country  zip  city  state-name  state-abbrev  county ...
//
// Only columns 1-4 are read. The US, PR and VI dumps are disjoint and are
// concatenated into one reference.

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// ZipWidth is the fixed width of a zip code. Zips are kept as text so codes
// like 00601 (Puerto Rico) keep their leading zeros.
const ZipWidth = 5

// ErrMalformedGeoRow is returned when a GeoNames row cannot be parsed.
var ErrMalformedGeoRow = errors.New("malformed geo reference row")

// GeoRow is one (zip, city, state) entry of the postal reference.
type GeoRow struct {
	Zip   string
	City  string
	State string
}

type geoKey struct {
	city  string
	state string
	zip   string
}

// GeoReference is the unified, read-only postal reference.
type GeoReference struct {
	rows    int
	cities  map[string]struct{}
	states  map[string]struct{}
	zips    map[string]struct{}
	triples map[geoKey]struct{}
}

// NewGeoReference concatenates the given tables into one reference.
// Cities are uppercased and zips padded to ZipWidth before indexing.
func NewGeoReference(tables ...[]GeoRow) *GeoReference {
	g := &GeoReference{
		cities:  make(map[string]struct{}),
		states:  make(map[string]struct{}),
		zips:    make(map[string]struct{}),
		triples: make(map[geoKey]struct{}),
	}
	for _, table := range tables {
		for _, row := range table {
			zip, ok := NormalizeZip(row.Zip)
			if !ok {
				// Parsed tables are already normalized; hand-built rows with
				// unusable zips still contribute their city and state.
				zip = row.Zip
			}
			city := FoldCity(row.City)

			g.rows++
			g.cities[city] = struct{}{}
			g.states[row.State] = struct{}{}
			g.zips[zip] = struct{}{}
			g.triples[geoKey{city: city, state: row.State, zip: zip}] = struct{}{}
		}
	}
	return g
}

// Len returns the number of rows the reference was built from.
func (g *GeoReference) Len() int { return g.rows }

// HasCity reports whether city (any case) is a known city.
func (g *GeoReference) HasCity(city string) bool {
	_, ok := g.cities[FoldCity(city)]
	return ok
}

// HasState reports whether state is a known state abbreviation. The match is exact.
func (g *GeoReference) HasState(state string) bool {
	_, ok := g.states[state]
	return ok
}

// HasZip reports whether zip, a ZipWidth-character string, is a known zip.
func (g *GeoReference) HasZip(zip string) bool {
	_, ok := g.zips[zip]
	return ok
}

// Match reports whether a reference row has exactly this city (any case),
// state and zip.
func (g *GeoReference) Match(city, state, zip string) bool {
	_, ok := g.triples[geoKey{city: FoldCity(city), state: state, zip: zip}]
	return ok
}

// FoldCity returns the canonical comparison form of a city name.
func FoldCity(city string) string {
	return strings.ToUpper(city)
}

// NormalizeZip returns zip padded with leading zeros to ZipWidth.
// Sources that stored zips as numbers dropped those zeros; this puts them back.
// Returns false when zip is empty, longer than ZipWidth or not all digits.
func NormalizeZip(zip string) (string, bool) {
	zip = strings.TrimSpace(zip)
	if zip == "" || len(zip) > ZipWidth || !IsDigits(zip) {
		return "", false
	}
	return strings.Repeat("0", ZipWidth-len(zip)) + zip, true
}

// PadZip formats a numeric zip as ZipWidth-character text.
// Returns false for values outside 0..99999.
func PadZip(n int64) (string, bool) {
	if n < 0 || n > 99999 {
		return "", false
	}
	return NormalizeZip(strconv.FormatInt(n, 10))
}

// IsDigits reports whether s is non-empty and made only of ASCII digits.
func IsDigits(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}

// ParseGeoNames reads a GeoNames postal dump. Blank lines are skipped; any
// other row that lacks the state abbreviation column or carries an unusable
// zip fails the whole load.
func ParseGeoNames(r io.Reader) ([]GeoRow, error) {
	var rows []GeoRow

	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	line := 0
	for sc.Scan() {
		line++
		text := strings.TrimRight(sc.Text(), "\r")
		if strings.TrimSpace(text) == "" {
			continue
		}

		cols := strings.Split(text, "\t")
		if len(cols) < 5 {
			return nil, fmt.Errorf("%w: line %d has %d columns, want at least 5", ErrMalformedGeoRow, line, len(cols))
		}

		zip, ok := NormalizeZip(cols[1])
		if !ok {
			return nil, fmt.Errorf("%w: line %d has zip %q", ErrMalformedGeoRow, line, cols[1])
		}

		rows = append(rows, GeoRow{
			Zip:   zip,
			City:  FoldCity(strings.TrimSpace(cols[2])),
			State: strings.TrimSpace(cols[4]),
		})
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("read geo reference: %w", err)
	}

	return rows, nil
}
