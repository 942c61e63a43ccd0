package template

import (
	"strings"
	"testing"

	"go-wms/internal/features/datasource"

	"go.mongodb.org/mongo-driver/bson"
)

func strPtr(s string) *string { return &s }
func boolPtr(b bool) *bool    { return &b }

func fieldInput(field, label, typ string) FieldSpecInput {
	return FieldSpecInput{
		Field:    strPtr(field),
		Label:    strPtr(label),
		Type:     strPtr(typ),
		Required: boolPtr(true),
	}
}

func newTestValidator() *Validator {
	return NewValidator(datasource.NewRegistry())
}

func TestValidateDataSources(t *testing.T) {
	v := newTestValidator()

	tests := []struct {
		name    string
		sources []string
		wantErr string
	}{
		{"single valid", []string{"warehouse_zones"}, ""},
		{"all valid", []string{"warehouse_zones", "equipment", "inventory_items"}, ""},
		{"unknown source", []string{"warehouse_zones", "loading_docks"}, "Invalid data source: loading_docks"},
		{"empty", nil, "at least one data source"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := v.ValidateDataSources(tt.sources)
			checkValidation(t, err, tt.wantErr)
		})
	}
}

func TestValidateFieldsConfig(t *testing.T) {
	v := newTestValidator()

	tests := []struct {
		name    string
		fields  []FieldSpecInput
		wantErr string
	}{
		{
			"all allowed types",
			[]FieldSpecInput{
				fieldInput("a", "A", "string"),
				fieldInput("b", "B", "integer"),
				fieldInput("c", "C", "decimal"),
				fieldInput("d", "D", "date"),
				fieldInput("e", "E", "datetime"),
				fieldInput("f", "F", "boolean"),
				fieldInput("g", "G", "percentage"),
				fieldInput("h", "H", "currency"),
			},
			"",
		},
		{
			"missing field key",
			[]FieldSpecInput{{Label: strPtr("A"), Type: strPtr("string"), Required: boolPtr(true)}},
			`fields_config[0]: missing key "field"`,
		},
		{
			"missing label key",
			[]FieldSpecInput{{Field: strPtr("a"), Type: strPtr("string"), Required: boolPtr(true)}},
			`fields_config[0]: missing key "label"`,
		},
		{
			"missing type key",
			[]FieldSpecInput{{Field: strPtr("a"), Label: strPtr("A"), Required: boolPtr(true)}},
			`fields_config[0]: missing key "type"`,
		},
		{
			"missing required key",
			[]FieldSpecInput{{Field: strPtr("a"), Label: strPtr("A"), Type: strPtr("string")}},
			`fields_config[0]: missing key "required"`,
		},
		{
			"missing key reported before bad type",
			[]FieldSpecInput{{Field: strPtr("a"), Type: strPtr("blob"), Required: boolPtr(true)}},
			`fields_config[0]: missing key "label"`,
		},
		{
			"bad type reported before bad name",
			[]FieldSpecInput{fieldInput("9bad", "A", "blob")},
			`fields_config[0]: invalid field type "blob"`,
		},
		{
			"invalid field name",
			[]FieldSpecInput{fieldInput("9bad", "A", "string")},
			`fields_config[0]: invalid field name "9bad"`,
		},
		{
			"underscore prefix allowed",
			[]FieldSpecInput{fieldInput("_internal", "A", "string")},
			"",
		},
		{
			"index reported",
			[]FieldSpecInput{fieldInput("ok", "OK", "string"), fieldInput("also-bad", "B", "string")},
			`fields_config[1]: invalid field name "also-bad"`,
		},
		{"empty", nil, "at least one field"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := v.ValidateFieldsConfig(tt.fields)
			checkValidation(t, err, tt.wantErr)
		})
	}
}

func TestValidateFiltersConfig(t *testing.T) {
	v := newTestValidator()

	tests := []struct {
		name    string
		filters []FilterSpecInput
		wantErr string
	}{
		{
			"valid",
			[]FilterSpecInput{{Field: strPtr("status"), Label: strPtr("Status"), Type: strPtr("dropdown"), Options: []string{"a"}}},
			"",
		},
		{
			"unknown type",
			[]FilterSpecInput{{Field: strPtr("x"), Label: strPtr("X"), Type: strPtr("slider")}},
			`filters_config[0]: invalid filter type "slider"`,
		},
		{
			"missing type",
			[]FilterSpecInput{{Field: strPtr("x"), Label: strPtr("X")}},
			`filters_config[0]: invalid filter type "<missing>"`,
		},
		{
			"missing field",
			[]FilterSpecInput{{Label: strPtr("X"), Type: strPtr("checkbox")}},
			`filters_config[0]: missing key "field"`,
		},
		{
			"missing label",
			[]FilterSpecInput{{Field: strPtr("x"), Type: strPtr("checkbox")}},
			`filters_config[0]: missing key "label"`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := v.ValidateFiltersConfig(tt.filters)
			checkValidation(t, err, tt.wantErr)
		})
	}
}

func TestValidateChartConfig(t *testing.T) {
	v := newTestValidator()

	tests := []struct {
		name    string
		chart   ChartSpecInput
		wantErr string
	}{
		{"valid", ChartSpecInput{DefaultChart: "bar_chart", AvailableCharts: []string{"bar_chart", "pie_chart", "table"}}, ""},
		{"bad default", ChartSpecInput{DefaultChart: "spiral"}, `invalid chart type "spiral"`},
		{"bad available", ChartSpecInput{DefaultChart: "gauge", AvailableCharts: []string{"line_chart", "spiral"}}, `invalid chart type "spiral"`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := v.ValidateChartConfig(&tt.chart)
			checkValidation(t, err, tt.wantErr)
		})
	}
}

func TestValidateFilterValues(t *testing.T) {
	v := newTestValidator()

	specs := []FilterSpec{
		{Field: "date_range", Label: "Created", Type: FilterTypeDateRange},
		{Field: "zone_type", Label: "Zone Type", Type: FilterTypeDropdown, Options: []string{"storage", "picking"}},
		{Field: "tags", Label: "Tags", Type: FilterTypeMultiSelect, Options: []string{"cold", "bulk"}},
		{Field: "capacity", Label: "Capacity", Type: FilterTypeNumberRange},
		{Field: "query", Label: "Search", Type: FilterTypeTextSearch},
	}

	tests := []struct {
		name    string
		values  map[string]any
		wantErr string
	}{
		{
			"all valid",
			map[string]any{
				"date_range": map[string]any{"start_date": "2026-01-01", "end_date": "2026-02-01"},
				"zone_type":  "storage",
				"tags":       []any{"cold"},
				"capacity":   map[string]any{"min": 10, "max": 100},
				"query":      "anything goes",
			},
			"",
		},
		{"unsupplied filters skipped", map[string]any{}, ""},
		{
			"date_range not object",
			map[string]any{"date_range": "2026-01-01"},
			`filter "date_range": date_range value must be an object`,
		},
		{
			"date_range missing end",
			map[string]any{"date_range": map[string]any{"start_date": "2026-01-01"}},
			`filter "date_range": date_range value must contain end_date`,
		},
		{
			"dropdown not in options",
			map[string]any{"zone_type": "shipping"},
			`filter "zone_type": value shipping is not an allowed option`,
		},
		{
			"multi_select not array",
			map[string]any{"tags": "cold"},
			`filter "tags": multi_select value must be an array`,
		},
		{
			"multi_select bad member",
			map[string]any{"tags": []any{"cold", "hot"}},
			`filter "tags": value hot is not an allowed option`,
		},
		{
			"number_range missing min",
			map[string]any{"capacity": map[string]any{"max": 100}},
			`filter "capacity": number_range value must contain min`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := v.ValidateFilterValues(specs, tt.values)
			checkValidation(t, err, tt.wantErr)
		})
	}
}

func checkValidation(t *testing.T, err error, want string) {
	t.Helper()
	if want == "" {
		if err != nil {
			t.Errorf("unexpected error: %v", err)
		}
		return
	}
	if err == nil {
		t.Fatalf("expected error containing %q, got nil", want)
	}
	if !IsValidationError(err) {
		t.Errorf("expected a ValidationError, got %T", err)
	}
	if !strings.Contains(err.Error(), want) {
		t.Errorf("error %q does not contain %q", err.Error(), want)
	}
}

func TestValidateFilterValuesAfterStorageRoundTrip(t *testing.T) {
	v := NewValidator(datasource.NewRegistry())
	specs := []FilterSpec{
		{Field: "status", Label: "Status", Type: FilterTypeMultiSelect, Options: []string{"active", "idle"}},
		{Field: "date_range", Label: "Created", Type: FilterTypeDateRange},
		{Field: "quantity", Label: "Quantity", Type: FilterTypeNumberRange},
	}
	values := map[string]any{
		"status":     []any{"active", "idle"},
		"date_range": map[string]any{"start_date": "2026-01-01", "end_date": "2026-02-01"},
		"quantity":   map[string]any{"min": 1, "max": 100},
	}

	// Filters stored on a report come back from Mongo as primitive.A
	// and primitive.D, not the plain Go types they were saved as.
	raw, err := bson.Marshal(bson.M{"filters": values})
	if err != nil {
		t.Fatal(err)
	}
	var decoded struct {
		Filters map[string]any `bson:"filters"`
	}
	if err := bson.Unmarshal(raw, &decoded); err != nil {
		t.Fatal(err)
	}

	if err := v.ValidateFilterValues(specs, decoded.Filters); err != nil {
		t.Errorf("decoded filter values should validate: %v", err)
	}

	decoded.Filters["status"] = append(decoded.Filters["status"].(bson.A), "broken")
	checkValidation(t, v.ValidateFilterValues(specs, decoded.Filters), "not an allowed option")
}
