package core

import (
	"testing"

	"github.com/JonMunkholm/bizcheck/internal/reference"
)

// testDataset is a small reference: three postal rows and a handful of codes.
func testDataset(t testing.TB) *reference.Dataset {
	t.Helper()

	geo := reference.NewGeoReference(
		[]reference.GeoRow{
			{Zip: "94105", City: "San Francisco", State: "CA"},
			{Zip: "10001", City: "New York", State: "NY"},
		},
		[]reference.GeoRow{
			{Zip: "601", City: "Adjuntas", State: "PR"},
		},
	)
	codes, err := reference.NewCategoryCodes([]string{"3118", "5412", "722511", "44-45"})
	if err != nil {
		t.Fatalf("NewCategoryCodes failed: %v", err)
	}
	ds, err := reference.NewDataset(geo, codes)
	if err != nil {
		t.Fatalf("NewDataset failed: %v", err)
	}
	return ds
}

func testRegistry(t testing.TB, opts ...RegistryOption) *Registry {
	t.Helper()

	reg, err := NewRegistry(testDataset(t), opts...)
	if err != nil {
		t.Fatalf("NewRegistry failed: %v", err)
	}
	return reg
}

// bakery is a record that passes every field.
func bakery(name string) Record {
	return NewRecord(map[Field]Value{
		FieldName:           Text(name),
		FieldAddress:        Text("123 Main St"),
		FieldCity:           Text("San Francisco"),
		FieldState:          Text("CA"),
		FieldZip:            Text("94105"),
		FieldPhone:          Text("(415) 555-1234"),
		FieldTimeInBusiness: Text("5 years"),
		FieldCategoryCode:   Integer(311811),
		FieldHeadcount:      Text("1 to 4"),
		FieldRevenue:        Text("$1 to $5 million"),
	})
}
