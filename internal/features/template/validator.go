package template

import (
	"errors"
	"fmt"
	"regexp"

	"go-wms/internal/features/datasource"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ValidationError marks a configuration or filter-value problem the
// caller must fix. Controllers map it to HTTP 400; it is never recorded
// on a report.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// NewValidationError wraps a message for other packages raising
// caller-correctable failures (filter values, formats, schedules).
func NewValidationError(message string) error {
	return &ValidationError{Message: message}
}

func validationErrorf(format string, args ...any) error {
	return &ValidationError{Message: fmt.Sprintf(format, args...)}
}

// IsValidationError reports whether err is (or wraps) a ValidationError
func IsValidationError(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

var fieldNameRe = regexp.MustCompile(`^[a-zA-Z_][a-zA-Z0-9_]*$`)

// Validator checks template configurations and runtime filter values
// against the data source registry and the allowed type sets.
type Validator struct {
	registry *datasource.Registry
}

func NewValidator(registry *datasource.Registry) *Validator {
	return &Validator{registry: registry}
}

// ValidateConfig runs all configuration checks for a template payload
func (v *Validator) ValidateConfig(in *TemplateInput) error {
	if err := v.ValidateDataSources(in.DataSources); err != nil {
		return err
	}
	if err := v.ValidateFieldsConfig(in.FieldsConfig); err != nil {
		return err
	}
	if len(in.FiltersConfig) > 0 {
		if err := v.ValidateFiltersConfig(in.FiltersConfig); err != nil {
			return err
		}
	}
	if in.ChartConfig != nil {
		if err := v.ValidateChartConfig(in.ChartConfig); err != nil {
			return err
		}
	}
	return nil
}

// ValidateDataSources requires every entry to exist in the registry
func (v *Validator) ValidateDataSources(sources []string) error {
	if len(sources) == 0 {
		return validationErrorf("at least one data source is required")
	}
	for _, name := range sources {
		if !v.registry.Has(name) {
			return validationErrorf("Invalid data source: %s", name)
		}
	}
	return nil
}

// ValidateFieldsConfig checks each field spec: required keys first, then
// the type against the allowed set, then the field name pattern.
func (v *Validator) ValidateFieldsConfig(fields []FieldSpecInput) error {
	if len(fields) == 0 {
		return validationErrorf("at least one field is required")
	}
	for i, f := range fields {
		if f.Field == nil {
			return validationErrorf("fields_config[%d]: missing key %q", i, "field")
		}
		if f.Label == nil {
			return validationErrorf("fields_config[%d]: missing key %q", i, "label")
		}
		if f.Type == nil {
			return validationErrorf("fields_config[%d]: missing key %q", i, "type")
		}
		if f.Required == nil {
			return validationErrorf("fields_config[%d]: missing key %q", i, "required")
		}
		if !isAllowed(*f.Type, FieldTypes()) {
			return validationErrorf("fields_config[%d]: invalid field type %q", i, *f.Type)
		}
		if !fieldNameRe.MatchString(*f.Field) {
			return validationErrorf("fields_config[%d]: invalid field name %q", i, *f.Field)
		}
	}
	return nil
}

// ValidateFiltersConfig checks filter type membership and key presence
func (v *Validator) ValidateFiltersConfig(filters []FilterSpecInput) error {
	for i, f := range filters {
		if f.Type == nil || !isAllowed(*f.Type, FilterTypes()) {
			got := "<missing>"
			if f.Type != nil {
				got = *f.Type
			}
			return validationErrorf("filters_config[%d]: invalid filter type %q", i, got)
		}
		if f.Field == nil {
			return validationErrorf("filters_config[%d]: missing key %q", i, "field")
		}
		if f.Label == nil {
			return validationErrorf("filters_config[%d]: missing key %q", i, "label")
		}
	}
	return nil
}

// ValidateChartConfig checks the default chart and every available chart
func (v *Validator) ValidateChartConfig(chart *ChartSpecInput) error {
	if chart.DefaultChart != "" && !isAllowed(chart.DefaultChart, ChartTypes()) {
		return validationErrorf("invalid chart type %q", chart.DefaultChart)
	}
	for _, c := range chart.AvailableCharts {
		if !isAllowed(c, ChartTypes()) {
			return validationErrorf("invalid chart type %q", c)
		}
	}
	return nil
}

// ValidateFilterValues checks runtime filter values supplied at report
// generation time against the template's filter specs. Values for
// unknown keys fall through to the query assembler's default handling.
func (v *Validator) ValidateFilterValues(specs []FilterSpec, values map[string]any) error {
	for _, spec := range specs {
		value, ok := values[spec.Field]
		if !ok || value == nil {
			continue
		}
		switch spec.Type {
		case FilterTypeDateRange:
			m, ok := asMap(value)
			if !ok {
				return validationErrorf("filter %q: date_range value must be an object with start_date and end_date", spec.Field)
			}
			if _, ok := m["start_date"]; !ok {
				return validationErrorf("filter %q: date_range value must contain start_date", spec.Field)
			}
			if _, ok := m["end_date"]; !ok {
				return validationErrorf("filter %q: date_range value must contain end_date", spec.Field)
			}
		case FilterTypeDropdown:
			s, ok := value.(string)
			if !ok || !isAllowed(s, spec.Options) {
				return validationErrorf("filter %q: value %v is not an allowed option", spec.Field, value)
			}
		case FilterTypeMultiSelect:
			items, ok := asArray(value)
			if !ok {
				return validationErrorf("filter %q: multi_select value must be an array", spec.Field)
			}
			for _, item := range items {
				s, ok := item.(string)
				if !ok || !isAllowed(s, spec.Options) {
					return validationErrorf("filter %q: value %v is not an allowed option", spec.Field, item)
				}
			}
		case FilterTypeNumberRange:
			m, ok := asMap(value)
			if !ok {
				return validationErrorf("filter %q: number_range value must be an object with min and max", spec.Field)
			}
			if _, ok := m["min"]; !ok {
				return validationErrorf("filter %q: number_range value must contain min", spec.Field)
			}
			if _, ok := m["max"]; !ok {
				return validationErrorf("filter %q: number_range value must contain max", spec.Field)
			}
		}
	}
	return nil
}

// asMap accepts plain maps plus the document types the Mongo driver
// decodes stored filter values into.
func asMap(value any) (map[string]any, bool) {
	switch m := value.(type) {
	case map[string]any:
		return m, true
	case primitive.M:
		return m, true
	case primitive.D:
		out := make(map[string]any, len(m))
		for _, e := range m {
			out[e.Key] = e.Value
		}
		return out, true
	}
	return nil, false
}

// asArray accepts plain slices plus the bson array type
func asArray(value any) ([]any, bool) {
	switch items := value.(type) {
	case []any:
		return items, true
	case primitive.A:
		return items, true
	}
	return nil, false
}

func isAllowed(value string, allowed []string) bool {
	for _, a := range allowed {
		if a == value {
			return true
		}
	}
	return false
}
