package template

import (
	"reflect"
	"testing"
)

func TestSampleGeneratorDeterministic(t *testing.T) {
	fields := []FieldSpec{
		{Field: "sku", Label: "SKU", Type: FieldTypeString, Required: true},
		{Field: "quantity", Label: "Quantity", Type: FieldTypeInteger, Required: true},
		{Field: "unit_cost", Label: "Unit Cost", Type: FieldTypeCurrency, Required: true},
	}

	a := NewSeededSampleGenerator(42).Rows(fields, 4)
	b := NewSeededSampleGenerator(42).Rows(fields, 4)

	if !reflect.DeepEqual(a, b) {
		t.Error("same seed should produce identical sample rows")
	}
	if len(a) != 4 {
		t.Errorf("expected 4 rows, got %d", len(a))
	}
}

func TestSampleGeneratorFieldNameHints(t *testing.T) {
	gen := NewSeededSampleGenerator(1)
	fields := []FieldSpec{
		{Field: "zone_name", Label: "Zone", Type: FieldTypeString, Required: true},
		{Field: "status", Label: "Status", Type: FieldTypeString, Required: true},
		{Field: "utilization_rate", Label: "Utilization", Type: FieldTypePercentage, Required: true},
	}

	rows := gen.Rows(fields, 2)

	if rows[0]["zone_name"] != "Zone A" || rows[1]["zone_name"] != "Zone B" {
		t.Errorf("name-like fields should cycle zone letters, got %v / %v",
			rows[0]["zone_name"], rows[1]["zone_name"])
	}
	if _, ok := rows[0]["status"].(string); !ok {
		t.Errorf("status should be a string, got %T", rows[0]["status"])
	}
	if _, ok := rows[0]["utilization_rate"].(float64); !ok {
		t.Errorf("rate should be numeric, got %T", rows[0]["utilization_rate"])
	}
}

func TestSampleGeneratorDefaultCount(t *testing.T) {
	gen := NewSeededSampleGenerator(7)
	rows := gen.Rows([]FieldSpec{{Field: "description", Label: "Description", Type: FieldTypeString}}, 0)
	if len(rows) != 5 {
		t.Errorf("expected default of 5 rows, got %d", len(rows))
	}
}
