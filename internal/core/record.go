package core

// record.go defines the business-directory record and decodes batches of
// records from JSON.
//
// Input is a JSON array of objects keyed by field name:
//
//	[{"name": "Acme Bakery", "zip": "94105", "phone": 4155551234, ...}, ...]
//
// Keys that are not record fields are ignored. Absent keys and nulls are Missing.

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
)

// ErrInvalidInput is returned when a record batch cannot be decoded.
var ErrInvalidInput = errors.New("invalid input")

// Record is one business-directory entry. Records are values; nothing that
// receives a Record can change the caller's copy.
type Record struct {
	values [fieldCount]Value
}

// NewRecord builds a record from per-field values. Unset fields are Missing.
func NewRecord(values map[Field]Value) Record {
	var r Record
	for f, v := range values {
		if f.Valid() {
			r.values[f] = v
		}
	}
	return r
}

// RecordFromMap builds a record from a decoded JSON object.
func RecordFromMap(m map[string]any) Record {
	var r Record
	for key, raw := range m {
		f, ok := fieldsByKey[key]
		if !ok {
			continue
		}
		r.values[f] = ValueOf(raw)
	}
	return r
}

// Get returns the value of f, or Missing for an undeclared field.
func (r Record) Get(f Field) Value {
	if !f.Valid() {
		return Missing()
	}
	return r.values[f]
}

// MarshalJSON renders the record as an object keyed by field name.
func (r Record) MarshalJSON() ([]byte, error) {
	m := make(map[string]Value, fieldCount)
	for f, v := range r.values {
		m[fieldKeys[f]] = v
	}
	return json.Marshal(m)
}

// UnmarshalJSON decodes a JSON object into the record.
func (r *Record) UnmarshalJSON(b []byte) error {
	var m map[string]any
	dec := json.NewDecoder(bytes.NewReader(b))
	dec.UseNumber()
	if err := dec.Decode(&m); err != nil {
		return err
	}
	*r = RecordFromMap(m)
	return nil
}

// DecodeRecords reads a JSON array of record objects.
// Numbers are decoded exactly so long phone numbers stay integers.
func DecodeRecords(r io.Reader) ([]Record, error) {
	dec := json.NewDecoder(r)
	dec.UseNumber()

	var raw []map[string]any
	if err := dec.Decode(&raw); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidInput, err)
	}

	records := make([]Record, len(raw))
	for i, m := range raw {
		records[i] = RecordFromMap(m)
	}
	return records, nil
}
