package core

import (
	"testing"

	"github.com/JonMunkholm/bizcheck/internal/reference"
)

func TestNewRegistry_RequiresDataset(t *testing.T) {
	if _, err := NewRegistry(nil); err == nil {
		t.Error("NewRegistry(nil) should fail")
	}
	if _, err := NewRegistry(&reference.Dataset{}); err == nil {
		t.Error("NewRegistry with empty dataset should fail")
	}
}

func TestRegistry_EveryFieldHasPredicate(t *testing.T) {
	reg := testRegistry(t)

	for _, f := range Fields() {
		if reg.Predicate(f) == nil {
			t.Errorf("no predicate for %s", f)
		}
	}
	if reg.Predicate(Field(-1)) != nil {
		t.Error("Predicate(-1) should be nil")
	}
	if reg.ValidateValue(Field(99), Text("anything")) {
		t.Error("undeclared field should never validate")
	}
}

func TestRegistry_Validate(t *testing.T) {
	reg := testRegistry(t)
	rec := bakery("Acme Bakery")

	for _, f := range Fields() {
		if !reg.Validate(rec, f) {
			t.Errorf("Validate(bakery, %s) = false, want true", f)
		}
	}
}

func TestRegistry_ZipFormatOnly(t *testing.T) {
	strict := testRegistry(t)
	lenient := testRegistry(t, WithZipFormatOnly())

	v := Text("30301")
	if strict.ValidateValue(FieldZip, v) {
		t.Error("strict registry accepted a zip outside the reference")
	}
	if !lenient.ValidateValue(FieldZip, v) {
		t.Error("format-only registry rejected a well-formed zip")
	}
	if lenient.ValidateValue(FieldZip, Text("3030")) {
		t.Error("format-only registry accepted a malformed zip")
	}
}

func TestRegistry_Diagnose(t *testing.T) {
	reg := testRegistry(t)

	tests := []struct {
		name  string
		field Field
		v     Value
		want  Value
	}{
		{"valid phone is missing", FieldPhone, Text("4155551234"), Missing()},
		{"invalid phone is returned", FieldPhone, Text("555-1234"), Text("555-1234")},
		{"absent value is missing", FieldPhone, Missing(), Missing()},
		{"invalid integer kept as integer", FieldZip, Integer(99999), Integer(99999)},
		{"unsupported is returned", FieldHeadcount, Unsupported("2.5"), Unsupported("2.5")},
		{"short category code", FieldCategoryCode, Text("12"), Text("12")},
		{"valid category code", FieldCategoryCode, Text("311811"), Missing()},
		{"placeholder name", FieldName, Text("None"), Text("None")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := NewRecord(map[Field]Value{tt.field: tt.v})
			if got := reg.Diagnose(rec, tt.field); got != tt.want {
				t.Errorf("Diagnose(%s, %#v) = %#v, want %#v", tt.field, tt.v, got, tt.want)
			}
			if got := reg.DiagnoseValue(tt.field, tt.v); got != tt.want {
				t.Errorf("DiagnoseValue(%s, %#v) = %#v, want %#v", tt.field, tt.v, got, tt.want)
			}
		})
	}
}

func TestRegistry_DiagnoseAgreesWithValidate(t *testing.T) {
	reg := testRegistry(t)
	values := []Value{
		Text("(415) 555-1234"), Text("555-1234"), Text("94105"), Integer(601),
		Text("CA"), Text("ca"), Text("over $1 billion"), Text("1 to 4"), Missing(),
	}

	for _, f := range Fields() {
		for _, v := range values {
			bad := reg.DiagnoseValue(f, v)
			valid := reg.ValidateValue(f, v)
			switch {
			case v.IsMissing() && !bad.IsMissing():
				t.Errorf("%s: missing value diagnosed as %#v", f, bad)
			case !v.IsMissing() && valid && !bad.IsMissing():
				t.Errorf("%s: valid %#v diagnosed as offender", f, v)
			case !v.IsMissing() && !valid && bad != v:
				t.Errorf("%s: invalid %#v diagnosed as %#v", f, v, bad)
			}
		}
	}
}
