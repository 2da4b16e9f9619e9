package core

import (
	"errors"
	"fmt"

	"github.com/JonMunkholm/bizcheck/internal/reference"
)

// Registry maps every Field to its validity predicate.
// It is built once from a reference dataset and is safe for concurrent use.
type Registry struct {
	dataset    *reference.Dataset
	predicates [fieldCount]Predicate
	diagnose   [fieldCount]func(Value) Value
}

// RegistryOption configures a Registry.
type RegistryOption func(*registryOptions)

type registryOptions struct {
	zipFormatOnly bool
}

// WithZipFormatOnly accepts any well-formed 5-digit zip without checking it
// against the geographic reference.
func WithZipFormatOnly() RegistryOption {
	return func(o *registryOptions) { o.zipFormatOnly = true }
}

// NewRegistry builds the predicate table for ds.
// Returns an error if ds is incomplete or any field is left without a predicate.
func NewRegistry(ds *reference.Dataset, opts ...RegistryOption) (*Registry, error) {
	if ds == nil || ds.Geo == nil || ds.Codes == nil {
		return nil, errors.New("registry requires a complete reference dataset")
	}

	var o registryOptions
	for _, opt := range opts {
		opt(&o)
	}

	r := &Registry{dataset: ds}
	for _, f := range Fields() {
		p := predicateFor(f, ds, o)
		if p == nil {
			return nil, fmt.Errorf("no predicate registered for field %s", f)
		}
		r.predicates[f] = p
		r.diagnose[f] = diagnostic(p)
	}
	return r, nil
}

// predicateFor returns the rule for f; nil means the switch is missing a case.
func predicateFor(f Field, ds *reference.Dataset, o registryOptions) Predicate {
	switch f {
	case FieldName:
		return validName
	case FieldAddress:
		return validAddress
	case FieldCity:
		return cityRule(ds.Geo)
	case FieldState:
		return stateRule(ds.Geo)
	case FieldZip:
		return zipRule(ds.Geo, !o.zipFormatOnly)
	case FieldPhone:
		return validPhone
	case FieldTimeInBusiness:
		return validTimeInBusiness
	case FieldCategoryCode:
		return categoryCodeRule(ds.Codes)
	case FieldHeadcount:
		return validHeadcount
	case FieldRevenue:
		return validRevenue
	default:
		return nil
	}
}

// diagnostic turns a predicate into its corpus-inspection counterpart: the
// raw value comes back when it is present and invalid, Missing otherwise.
func diagnostic(p Predicate) func(Value) Value {
	return func(v Value) Value {
		if v.IsMissing() || p(v) {
			return Missing()
		}
		return v
	}
}

// Dataset returns the reference data the registry was built from.
func (r *Registry) Dataset() *reference.Dataset { return r.dataset }

// Predicate returns the predicate for f, or nil for an undeclared field.
func (r *Registry) Predicate(f Field) Predicate {
	if !f.Valid() {
		return nil
	}
	return r.predicates[f]
}

// Validate reports whether rec's value for f is valid.
func (r *Registry) Validate(rec Record, f Field) bool {
	return r.ValidateValue(f, rec.Get(f))
}

// ValidateValue reports whether v is valid for f. Undeclared fields are never valid.
func (r *Registry) ValidateValue(f Field, v Value) bool {
	if !f.Valid() {
		return false
	}
	return r.predicates[f](v)
}

// Diagnose returns rec's value for f when it is present and invalid, and
// Missing when it is valid or absent.
func (r *Registry) Diagnose(rec Record, f Field) Value {
	return r.DiagnoseValue(f, rec.Get(f))
}

// DiagnoseValue is Diagnose for a single raw value.
func (r *Registry) DiagnoseValue(f Field, v Value) Value {
	if !f.Valid() {
		return v
	}
	return r.diagnose[f](v)
}
