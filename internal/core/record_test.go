package core

import (
	"encoding/json"
	"errors"
	"strings"
	"testing"
)

func TestParseField(t *testing.T) {
	for _, f := range Fields() {
		got, err := ParseField(f.Key())
		if err != nil {
			t.Errorf("ParseField(%q) failed: %v", f.Key(), err)
			continue
		}
		if got != f {
			t.Errorf("ParseField(%q) = %v, want %v", f.Key(), got, f)
		}
	}

	if _, err := ParseField("email"); !errors.Is(err, ErrUnknownField) {
		t.Errorf("ParseField(email) error = %v, want ErrUnknownField", err)
	}
}

func TestFieldText(t *testing.T) {
	b, err := FieldCategoryCode.MarshalText()
	if err != nil {
		t.Fatalf("MarshalText failed: %v", err)
	}
	if string(b) != "category_code" {
		t.Errorf("MarshalText = %q, want %q", b, "category_code")
	}

	if _, err := Field(99).MarshalText(); !errors.Is(err, ErrUnknownField) {
		t.Errorf("Field(99).MarshalText error = %v, want ErrUnknownField", err)
	}
	if got := Field(99).String(); got != "field(99)" {
		t.Errorf("Field(99).String() = %q", got)
	}

	var f Field
	if err := f.UnmarshalText([]byte("time_in_business")); err != nil {
		t.Fatalf("UnmarshalText failed: %v", err)
	}
	if f != FieldTimeInBusiness {
		t.Errorf("UnmarshalText = %v, want %v", f, FieldTimeInBusiness)
	}
}

func TestFieldsOrder(t *testing.T) {
	fields := Fields()
	if len(fields) != int(fieldCount) {
		t.Fatalf("len(Fields()) = %d, want %d", len(fields), fieldCount)
	}
	if fields[0] != FieldName || fields[len(fields)-1] != FieldRevenue {
		t.Errorf("Fields() = %v, want name first and revenue last", fields)
	}
}

func TestDecodeRecords(t *testing.T) {
	input := `[
		{"name": "Acme Bakery", "zip": "00601", "phone": 4155551234, "extra": "ignored"},
		{"name": null, "zip": 601, "headcount": 2.5},
		{},
		{"zip": 601.0, "phone": 4155551234.0}
	]`

	records, err := DecodeRecords(strings.NewReader(input))
	if err != nil {
		t.Fatalf("DecodeRecords failed: %v", err)
	}
	if len(records) != 4 {
		t.Fatalf("got %d records, want 4", len(records))
	}

	tests := []struct {
		rec   int
		field Field
		want  Value
	}{
		{0, FieldName, Text("Acme Bakery")},
		{0, FieldZip, Text("00601")},
		{0, FieldPhone, Integer(4155551234)},
		{0, FieldCity, Missing()},
		{1, FieldName, Missing()},
		{1, FieldZip, Integer(601)},
		{1, FieldHeadcount, Unsupported("2.5")},
		{2, FieldRevenue, Missing()},
		{3, FieldZip, Integer(601)},
		{3, FieldPhone, Integer(4155551234)},
	}
	for _, tt := range tests {
		if got := records[tt.rec].Get(tt.field); got != tt.want {
			t.Errorf("records[%d].Get(%s) = %#v, want %#v", tt.rec, tt.field, got, tt.want)
		}
	}
}

func TestDecodeRecords_DecimalPointNumbersValidate(t *testing.T) {
	reg := testRegistry(t)

	records, err := DecodeRecords(strings.NewReader(`[
		{"zip": 601.0, "phone": 4155551234.0},
		{"zip": 601, "phone": 4155551234}
	]`))
	if err != nil {
		t.Fatalf("DecodeRecords failed: %v", err)
	}

	for i, rec := range records {
		for _, f := range []Field{FieldZip, FieldPhone} {
			if !reg.Validate(rec, f) {
				t.Errorf("records[%d] %s = %#v, want valid", i, f, rec.Get(f))
			}
		}
	}
}

func TestDecodeRecords_Invalid(t *testing.T) {
	inputs := []string{
		`{"name": "not an array"}`,
		`[{"name": "unterminated"`,
		`["just a string"]`,
		``,
	}
	for _, in := range inputs {
		if _, err := DecodeRecords(strings.NewReader(in)); !errors.Is(err, ErrInvalidInput) {
			t.Errorf("DecodeRecords(%q) error = %v, want ErrInvalidInput", in, err)
		}
	}
}

func TestRecordJSON(t *testing.T) {
	rec := NewRecord(map[Field]Value{
		FieldName:  Text("Acme"),
		FieldPhone: Integer(4155551234),
		Field(99):  Text("dropped"),
	})

	b, err := json.Marshal(rec)
	if err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}

	var back Record
	if err := json.Unmarshal(b, &back); err != nil {
		t.Fatalf("Unmarshal failed: %v", err)
	}
	if back != rec {
		t.Errorf("decoded record = %+v, want %+v", back, rec)
	}
	if got := rec.Get(Field(99)); !got.IsMissing() {
		t.Errorf("Get(undeclared) = %#v, want Missing", got)
	}
}
