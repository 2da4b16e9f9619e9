package core

// processor.go runs the registry over a batch of records.
//
// A batch is processed in three steps:
//  1. Dedup: every record whose name occurs more than once is dropped.
//  2. Geo join: survivors are counted when city, state and zip match one
//     reference row exactly.
//  3. Tally: each field's non-null, valid and unique counts.
//
// Dedup finishes before any validator runs. Fields are tallied in parallel;
// each goroutine owns one slot of the result, so the report does not depend
// on scheduling.

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

// DefaultWorkers is the number of fields tallied at once when none is configured.
const DefaultWorkers = 4

// Processor validates batches of records against a Registry.
type Processor struct {
	registry *Registry
	workers  int
	now      func() time.Time
}

// NewProcessor creates a processor that tallies up to workers fields at once.
func NewProcessor(registry *Registry, workers int) *Processor {
	if workers <= 0 {
		workers = DefaultWorkers
	}
	return &Processor{
		registry: registry,
		workers:  workers,
		now:      time.Now,
	}
}

// Dedup drops every record whose name appears more than once in the batch,
// keeping the order of the rest. Missing names are not compared.
// Returns the surviving records and how many were dropped.
func Dedup(records []Record) ([]Record, int) {
	counts := make(map[Value]int, len(records))
	for _, r := range records {
		if name := r.Get(FieldName); !name.IsMissing() {
			counts[name]++
		}
	}

	kept := make([]Record, 0, len(records))
	for _, r := range records {
		if name := r.Get(FieldName); !name.IsMissing() && counts[name] > 1 {
			continue
		}
		kept = append(kept, r)
	}
	return kept, len(records) - len(kept)
}

// Process deduplicates records, joins them against the geographic reference
// and tallies every field.
func (p *Processor) Process(ctx context.Context, records []Record) (*Report, error) {
	survivors, dropped := Dedup(records)

	report := &Report{
		Records:           len(records),
		DuplicatesDropped: dropped,
		Survivors:         len(survivors),
		GeoMatches:        p.geoMatches(survivors),
		Fields:            make([]FieldStats, fieldCount),
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(p.workers)
	for _, f := range Fields() {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			report.Fields[f] = p.tally(f, survivors)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	slog.Debug("batch processed",
		"records", report.Records,
		"duplicates_dropped", report.DuplicatesDropped,
		"geo_matches", report.GeoMatches,
	)
	return report, nil
}

// Run processes records and stamps the report with a run ID and timing.
func (p *Processor) Run(ctx context.Context, records []Record) (*Run, error) {
	start := p.now()
	report, err := p.Process(ctx, records)
	if err != nil {
		return nil, err
	}
	return &Run{
		ID:         uuid.NewString(),
		StartedAt:  start,
		DurationMS: p.now().Sub(start).Milliseconds(),
		Report:     report,
	}, nil
}

// Offenders returns the distinct invalid raw values of f among the
// deduplicated records, in first-seen order.
func (p *Processor) Offenders(ctx context.Context, records []Record, f Field) ([]Value, error) {
	if !f.Valid() {
		return nil, ErrUnknownField
	}
	survivors, _ := Dedup(records)

	seen := make(map[Value]struct{})
	var out []Value
	for i, r := range survivors {
		if i%1000 == 0 {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
		}
		bad := p.registry.Diagnose(r, f)
		if bad.IsMissing() {
			continue
		}
		if _, dup := seen[bad]; dup {
			continue
		}
		seen[bad] = struct{}{}
		out = append(out, bad)
	}
	return out, nil
}

// geoMatches counts records whose (city, state, zip) is a reference row.
// A record counts once however many rows share its triple.
func (p *Processor) geoMatches(records []Record) int {
	geo := p.registry.Dataset().Geo
	n := 0
	for _, r := range records {
		city, ok := r.Get(FieldCity).AsText()
		if !ok {
			continue
		}
		state, ok := r.Get(FieldState).AsText()
		if !ok {
			continue
		}
		zip, ok := zipText(r.Get(FieldZip))
		if !ok {
			continue
		}
		if geo.Match(strings.ToUpper(city), state, zip) {
			n++
		}
	}
	return n
}

func (p *Processor) tally(f Field, records []Record) FieldStats {
	fs := FieldStats{Field: f}
	distinct := make(map[Value]struct{})
	for _, r := range records {
		v := r.Get(f)
		if v.IsMissing() {
			continue
		}
		fs.NonNull++
		distinct[v] = struct{}{}
		if p.registry.ValidateValue(f, v) {
			fs.Valid++
		}
	}
	fs.Unique = len(distinct)
	return fs
}
