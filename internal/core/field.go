package core

import (
	"errors"
	"fmt"
)

// ErrUnknownField is returned when a field key does not name a record field.
var ErrUnknownField = errors.New("unknown field")

// Field identifies one column of a business-directory record.
type Field int

const (
	FieldName Field = iota
	FieldAddress
	FieldCity
	FieldState
	FieldZip
	FieldPhone
	FieldTimeInBusiness
	FieldCategoryCode
	FieldHeadcount
	FieldRevenue

	fieldCount
)

// fieldKeys are the wire names used by input records and reports.
var fieldKeys = [fieldCount]string{
	FieldName:           "name",
	FieldAddress:        "address",
	FieldCity:           "city",
	FieldState:          "state",
	FieldZip:            "zip",
	FieldPhone:          "phone",
	FieldTimeInBusiness: "time_in_business",
	FieldCategoryCode:   "category_code",
	FieldHeadcount:      "headcount",
	FieldRevenue:        "revenue",
}

var fieldsByKey = func() map[string]Field {
	m := make(map[string]Field, fieldCount)
	for f, key := range fieldKeys {
		m[key] = Field(f)
	}
	return m
}()

// Fields returns every field in declaration order.
func Fields() []Field {
	out := make([]Field, fieldCount)
	for i := range out {
		out[i] = Field(i)
	}
	return out
}

// ParseField resolves a wire key such as "category_code".
func ParseField(key string) (Field, error) {
	f, ok := fieldsByKey[key]
	if !ok {
		return 0, fmt.Errorf("%w %q", ErrUnknownField, key)
	}
	return f, nil
}

// Valid reports whether f is a declared field.
func (f Field) Valid() bool { return f >= 0 && f < fieldCount }

// Key returns the wire name of f.
func (f Field) Key() string {
	if !f.Valid() {
		return fmt.Sprintf("field(%d)", int(f))
	}
	return fieldKeys[f]
}

func (f Field) String() string { return f.Key() }

// MarshalText implements encoding.TextMarshaler.
func (f Field) MarshalText() ([]byte, error) {
	if !f.Valid() {
		return nil, fmt.Errorf("%w %d", ErrUnknownField, int(f))
	}
	return []byte(fieldKeys[f]), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (f *Field) UnmarshalText(b []byte) error {
	parsed, err := ParseField(string(b))
	if err != nil {
		return err
	}
	*f = parsed
	return nil
}
