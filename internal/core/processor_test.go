package core

import (
	"context"
	"errors"
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
)

func TestDedup(t *testing.T) {
	records := []Record{
		bakery("Acme"),
		bakery("Blue Bottle"),
		bakery("Acme"),
		NewRecord(map[Field]Value{FieldCity: Text("New York")}),
		NewRecord(map[Field]Value{FieldCity: Text("New York")}),
		bakery("Acme"),
	}

	kept, dropped := Dedup(records)

	if dropped != 3 {
		t.Errorf("dropped = %d, want 3", dropped)
	}
	if len(kept) != 3 {
		t.Fatalf("kept %d records, want 3", len(kept))
	}
	if got := kept[0].Get(FieldName); got != Text("Blue Bottle") {
		t.Errorf("kept[0] name = %#v, want Blue Bottle", got)
	}
	// Records without a name are never treated as duplicates of each other.
	for _, r := range kept[1:] {
		if !r.Get(FieldName).IsMissing() {
			t.Errorf("expected unnamed record, got %#v", r.Get(FieldName))
		}
	}
}

func TestDedup_NameKinds(t *testing.T) {
	records := []Record{
		NewRecord(map[Field]Value{FieldName: Text("7")}),
		NewRecord(map[Field]Value{FieldName: Integer(7)}),
	}
	kept, dropped := Dedup(records)
	if dropped != 0 || len(kept) != 2 {
		t.Errorf("Dedup = %d kept, %d dropped; want 2 kept, 0 dropped", len(kept), dropped)
	}
}

func TestProcess_SharedNameScenario(t *testing.T) {
	p := NewProcessor(testRegistry(t), 2)

	records := []Record{
		bakery("Acme"),
		bakery("Acme"),
		bakery("Blue Bottle"),
	}

	report, err := p.Process(context.Background(), records)
	if err != nil {
		t.Fatalf("Process failed: %v", err)
	}

	if report.Records != 3 {
		t.Errorf("Records = %d, want 3", report.Records)
	}
	if report.DuplicatesDropped != 2 {
		t.Errorf("DuplicatesDropped = %d, want 2", report.DuplicatesDropped)
	}
	if report.Survivors != 1 {
		t.Errorf("Survivors = %d, want 1", report.Survivors)
	}
	if report.GeoMatches != 1 {
		t.Errorf("GeoMatches = %d, want 1", report.GeoMatches)
	}
	if len(report.Fields) != len(Fields()) {
		t.Fatalf("got %d field stats, want %d", len(report.Fields), len(Fields()))
	}
	for i, fs := range report.Fields {
		if fs.Field != Field(i) {
			t.Errorf("Fields[%d].Field = %s, want %s", i, fs.Field, Field(i))
		}
		want := FieldStats{Field: Field(i), NonNull: 1, Valid: 1, Unique: 1}
		if fs != want {
			t.Errorf("%s stats = %+v, want %+v", fs.Field, fs, want)
		}
	}
}

func TestProcess_Tallies(t *testing.T) {
	p := NewProcessor(testRegistry(t), 0)

	records := []Record{
		NewRecord(map[Field]Value{
			FieldName:  Text("A"),
			FieldCity:  Text("ADJUNTAS"),
			FieldState: Text("PR"),
			FieldZip:   Integer(601),
			FieldPhone: Text("555-1234"),
		}),
		NewRecord(map[Field]Value{
			FieldName:  Text("B"),
			FieldCity:  Text("San Francisco"),
			FieldState: Text("NY"),
			FieldZip:   Text("94105"),
			FieldPhone: Text("555-1234"),
		}),
		NewRecord(map[Field]Value{
			FieldName:  Text("C"),
			FieldCity:  Text("adjuntas"),
			FieldState: Text("PR"),
			FieldZip:   Text("00601"),
			FieldPhone: Integer(4155551234),
		}),
		NewRecord(map[Field]Value{
			FieldName:  Text("D"),
			FieldPhone: Unsupported("true"),
		}),
	}

	report, err := p.Process(context.Background(), records)
	if err != nil {
		t.Fatalf("Process failed: %v", err)
	}

	// A and C match Adjuntas/PR/00601; B pairs a California city with NY.
	if report.GeoMatches != 2 {
		t.Errorf("GeoMatches = %d, want 2", report.GeoMatches)
	}

	tests := []struct {
		field Field
		want  FieldStats
	}{
		{FieldName, FieldStats{Field: FieldName, NonNull: 4, Valid: 4, Unique: 4}},
		{FieldCity, FieldStats{Field: FieldCity, NonNull: 3, Valid: 3, Unique: 3}},
		{FieldState, FieldStats{Field: FieldState, NonNull: 3, Valid: 3, Unique: 2}},
		{FieldZip, FieldStats{Field: FieldZip, NonNull: 3, Valid: 3, Unique: 3}},
		{FieldPhone, FieldStats{Field: FieldPhone, NonNull: 4, Valid: 1, Unique: 3}},
		{FieldRevenue, FieldStats{Field: FieldRevenue}},
	}
	for _, tt := range tests {
		got, ok := report.Field(tt.field)
		if !ok {
			t.Errorf("no stats for %s", tt.field)
			continue
		}
		if got != tt.want {
			t.Errorf("%s stats = %+v, want %+v", tt.field, got, tt.want)
		}
	}
}

func TestProcess_Idempotent(t *testing.T) {
	p := NewProcessor(testRegistry(t), 3)
	records := []Record{bakery("Acme"), bakery("Acme"), bakery("Blue Bottle"), bakery("Tartine")}

	first, err := p.Process(context.Background(), records)
	if err != nil {
		t.Fatalf("first Process failed: %v", err)
	}
	second, err := p.Process(context.Background(), records)
	if err != nil {
		t.Fatalf("second Process failed: %v", err)
	}
	if !reflect.DeepEqual(first, second) {
		t.Errorf("reports differ:\n%+v\n%+v", first, second)
	}
}

func TestProcess_Empty(t *testing.T) {
	p := NewProcessor(testRegistry(t), 1)

	report, err := p.Process(context.Background(), nil)
	if err != nil {
		t.Fatalf("Process failed: %v", err)
	}
	if report.Records != 0 || report.Survivors != 0 || report.GeoMatches != 0 {
		t.Errorf("empty batch report = %+v", report)
	}
	for _, fs := range report.Fields {
		if fs.NonNull != 0 || fs.Valid != 0 || fs.Unique != 0 {
			t.Errorf("%s stats = %+v, want zeros", fs.Field, fs)
		}
	}
}

func TestProcess_Cancelled(t *testing.T) {
	p := NewProcessor(testRegistry(t), 1)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := p.Process(ctx, []Record{bakery("Acme")}); !errors.Is(err, context.Canceled) {
		t.Errorf("Process error = %v, want context.Canceled", err)
	}
}

func TestRun(t *testing.T) {
	p := NewProcessor(testRegistry(t), 1)
	start := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	calls := 0
	p.now = func() time.Time {
		calls++
		return start.Add(time.Duration(calls-1) * 250 * time.Millisecond)
	}

	run, err := p.Run(context.Background(), []Record{bakery("Acme")})
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if _, err := uuid.Parse(run.ID); err != nil {
		t.Errorf("run ID %q is not a UUID: %v", run.ID, err)
	}
	if !run.StartedAt.Equal(start) {
		t.Errorf("StartedAt = %v, want %v", run.StartedAt, start)
	}
	if run.DurationMS != 250 {
		t.Errorf("DurationMS = %d, want 250", run.DurationMS)
	}
	if run.Report == nil || run.Report.Survivors != 1 {
		t.Errorf("Report = %+v, want one survivor", run.Report)
	}
}

func TestOffenders(t *testing.T) {
	p := NewProcessor(testRegistry(t), 1)

	records := []Record{
		NewRecord(map[Field]Value{FieldName: Text("A"), FieldPhone: Text("555-1234")}),
		NewRecord(map[Field]Value{FieldName: Text("B"), FieldPhone: Text("4155551234")}),
		NewRecord(map[Field]Value{FieldName: Text("C"), FieldPhone: Integer(5551234)}),
		NewRecord(map[Field]Value{FieldName: Text("D"), FieldPhone: Text("555-1234")}),
		NewRecord(map[Field]Value{FieldName: Text("E")}),
		// Dropped by dedup, so its phone is never reported.
		NewRecord(map[Field]Value{FieldName: Text("F"), FieldPhone: Text("call us")}),
		NewRecord(map[Field]Value{FieldName: Text("F"), FieldPhone: Text("call us")}),
	}

	got, err := p.Offenders(context.Background(), records, FieldPhone)
	if err != nil {
		t.Fatalf("Offenders failed: %v", err)
	}

	want := []Value{Text("555-1234"), Integer(5551234)}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Offenders = %v, want %v", got, want)
	}
}

func TestOffenders_UnknownField(t *testing.T) {
	p := NewProcessor(testRegistry(t), 1)
	if _, err := p.Offenders(context.Background(), nil, Field(42)); !errors.Is(err, ErrUnknownField) {
		t.Errorf("Offenders error = %v, want ErrUnknownField", err)
	}
}

func TestReportWriteText(t *testing.T) {
	p := NewProcessor(testRegistry(t), 1)
	report, err := p.Process(context.Background(), []Record{bakery("Acme")})
	if err != nil {
		t.Fatalf("Process failed: %v", err)
	}

	var sb strings.Builder
	if err := report.WriteText(&sb); err != nil {
		t.Fatalf("WriteText failed: %v", err)
	}
	out := sb.String()
	for _, want := range []string{"survivors", "city/state/zip matches", "category_code", "time_in_business"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}
