// Package reference loads the postal geography and NAICS category-code
// reference tables and exposes them as read-only lookup sets.
//
// A [Dataset] is built once at startup and shared by every validator; nothing
// in it changes after [Load] or [NewDataset] returns, so it is safe for
// concurrent use. Malformed reference data is a startup error.
package reference

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"golang.org/x/sync/errgroup"
)

// Sources names the reference tables to load.
type Sources struct {
	// GeoFiles are GeoNames postal dumps (US, PR, VI), concatenated in order.
	GeoFiles []string

	// NAICSFile is the NAICS code table.
	NAICSFile string
}

// Dataset is the immutable reference context passed to validators.
type Dataset struct {
	Geo   *GeoReference
	Codes *CategoryCodes
}

// NewDataset wraps already-built reference tables.
func NewDataset(geo *GeoReference, codes *CategoryCodes) (*Dataset, error) {
	if geo == nil || codes == nil {
		return nil, errors.New("reference dataset requires geo and category code tables")
	}
	return &Dataset{Geo: geo, Codes: codes}, nil
}

// Load reads every table in src through op and builds the dataset.
func Load(ctx context.Context, op Opener, src Sources) (*Dataset, error) {
	if len(src.GeoFiles) == 0 {
		return nil, errors.New("no geo reference files configured")
	}
	if src.NAICSFile == "" {
		return nil, errors.New("no category code file configured")
	}

	// One goroutine per table; each writes only its own slot.
	tables := make([][]GeoRow, len(src.GeoFiles))
	var tokens []string

	g, gctx := errgroup.WithContext(ctx)
	for i, loc := range src.GeoFiles {
		g.Go(func() error {
			rows, err := loadTable(gctx, op, loc, ParseGeoNames)
			if err != nil {
				return err
			}
			slog.Debug("geo reference table loaded", "location", loc, "rows", len(rows))
			tables[i] = rows
			return nil
		})
	}
	g.Go(func() error {
		var err error
		tokens, err = loadTable(gctx, op, src.NAICSFile, ParseNAICS)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	codes, err := NewCategoryCodes(tokens)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", src.NAICSFile, err)
	}

	geo := NewGeoReference(tables...)
	slog.Info("reference data loaded",
		"geo_rows", geo.Len(),
		"category_codes", codes.Len(),
	)

	return &Dataset{Geo: geo, Codes: codes}, nil
}

func loadTable[T any](ctx context.Context, op Opener, loc string, parse func(io.Reader) (T, error)) (T, error) {
	var zero T
	if err := ctx.Err(); err != nil {
		return zero, err
	}

	rc, err := op.Open(ctx, loc)
	if err != nil {
		return zero, err
	}
	defer rc.Close()

	v, err := parse(rc)
	if err != nil {
		return zero, fmt.Errorf("%s: %w", loc, err)
	}
	return v, nil
}
