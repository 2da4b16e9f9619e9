package core

import (
	"fmt"
	"io"
	"text/tabwriter"
	"time"
)

// FieldStats holds the data-quality counts for one field.
type FieldStats struct {
	Field   Field `json:"field"`
	NonNull int   `json:"non_null"`
	Valid   int   `json:"valid"`
	Unique  int   `json:"unique"`
}

// Report is the result of processing one batch of records.
// Processing the same batch twice yields equal reports.
type Report struct {
	Records           int          `json:"records"`            // records received
	DuplicatesDropped int          `json:"duplicates_dropped"` // records removed for sharing a name
	Survivors         int          `json:"survivors"`          // records tallied
	GeoMatches        int          `json:"geo_matches"`        // survivors whose city, state and zip match one reference row
	Fields            []FieldStats `json:"fields"`             // in Field order
}

// Field returns the stats for f.
func (r *Report) Field(f Field) (FieldStats, bool) {
	for _, fs := range r.Fields {
		if fs.Field == f {
			return fs, true
		}
	}
	return FieldStats{}, false
}

// WriteText renders the report as an aligned table.
func (r *Report) WriteText(w io.Writer) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', tabwriter.AlignRight)
	fmt.Fprintf(tw, "records\t%d\t\n", r.Records)
	fmt.Fprintf(tw, "duplicates dropped\t%d\t\n", r.DuplicatesDropped)
	fmt.Fprintf(tw, "survivors\t%d\t\n", r.Survivors)
	fmt.Fprintf(tw, "city/state/zip matches\t%d\t\n", r.GeoMatches)
	fmt.Fprintln(tw, "\t\t\t\t")
	fmt.Fprintln(tw, "field\tnon-null\tvalid\tunique\t")
	for _, fs := range r.Fields {
		fmt.Fprintf(tw, "%s\t%d\t%d\t%d\t\n", fs.Field, fs.NonNull, fs.Valid, fs.Unique)
	}
	return tw.Flush()
}

// Run wraps a report with the identity and timing of the run that produced it.
type Run struct {
	ID         string    `json:"id"`
	StartedAt  time.Time `json:"started_at"`
	DurationMS int64     `json:"duration_ms"`
	Report     *Report   `json:"report"`
}
