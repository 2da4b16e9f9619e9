// Package core provides the validation engine for business-directory records.
//
// This package holds all domain logic independent of any transport. It is
// used by the HTTP server, the CLI and tests without modification.
//
// # Architecture
//
// The package is organized around a few concepts:
//
//   - Value: a raw field value tagged as Missing, Text, Integer or Unsupported.
//   - Record: one business entry holding a Value per [Field].
//   - Registry: the total mapping from every Field to its validity predicate,
//     built once from a [reference.Dataset].
//   - Processor: deduplicates a batch, joins it against the postal reference
//     and tallies per-field data-quality counts into a [Report].
//
// # Registry
//
// A registry is built from the loaded reference tables:
//
//	ds, err := reference.Load(ctx, reference.NewSourceOpener(""), reference.Sources{
//	    GeoFiles:  []string{"US.txt", "PR.txt", "VI.txt"},
//	    NAICSFile: "NAICS_codes_2-6.csv",
//	})
//	reg, err := core.NewRegistry(ds)
//	ok := reg.ValidateValue(core.FieldPhone, core.Text("(415) 555-1234"))
//
// Construction fails if any field lacks a predicate, so a registry that exists
// can validate every field. Predicates are total: they never panic and treat
// Missing and Unsupported values as invalid.
//
// # Processing
//
// [Processor.Process] runs three steps over a batch:
//
//  1. Dedup: every record whose name occurs more than once is dropped
//  2. Geo join: survivors whose (city, state, zip) match a reference row are counted
//  3. Tally: non-null, valid and unique counts per field, tallied in parallel
//
// [Processor.Offenders] lists the distinct invalid values of one field for
// cleaning the source data.
//
// # Error Handling
//
// Technical errors are mapped to user-friendly messages using [MapError].
// Each error category has a unique code for support reference:
//
//   - REF001-REF003: Reference loading errors (ranges, geo rows, missing files)
//   - VAL001-VAL004: Input errors (unknown field, bad JSON, body size)
//   - RUN001-RUN003: Run errors (busy, cancelled, timeout)
//   - DB001-DB002: Database errors
package core
