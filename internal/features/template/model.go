package template

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Template categories
const (
	CategoryOperational = "operational"
	CategoryFinancial   = "financial"
	CategoryPerformance = "performance"
	CategoryCompliance  = "compliance"
	CategoryCustom      = "custom"
)

// Field types a report column can carry
const (
	FieldTypeString     = "string"
	FieldTypeInteger    = "integer"
	FieldTypeDecimal    = "decimal"
	FieldTypeDate       = "date"
	FieldTypeDatetime   = "datetime"
	FieldTypeBoolean    = "boolean"
	FieldTypePercentage = "percentage"
	FieldTypeCurrency   = "currency"
)

// Filter types a template can expose
const (
	FilterTypeDateRange   = "date_range"
	FilterTypeDropdown    = "dropdown"
	FilterTypeMultiSelect = "multi_select"
	FilterTypeNumberRange = "number_range"
	FilterTypeTextSearch  = "text_search"
	FilterTypeCheckbox    = "checkbox"
)

// Chart types
const (
	ChartTypeLine  = "line_chart"
	ChartTypeBar   = "bar_chart"
	ChartTypePie   = "pie_chart"
	ChartTypeGauge = "gauge"
	ChartTypeTable = "table"
)

func Categories() []string {
	return []string{CategoryOperational, CategoryFinancial, CategoryPerformance, CategoryCompliance, CategoryCustom}
}

func FieldTypes() []string {
	return []string{
		FieldTypeString, FieldTypeInteger, FieldTypeDecimal, FieldTypeDate,
		FieldTypeDatetime, FieldTypeBoolean, FieldTypePercentage, FieldTypeCurrency,
	}
}

func FilterTypes() []string {
	return []string{
		FilterTypeDateRange, FilterTypeDropdown, FilterTypeMultiSelect,
		FilterTypeNumberRange, FilterTypeTextSearch, FilterTypeCheckbox,
	}
}

func ChartTypes() []string {
	return []string{ChartTypeLine, ChartTypeBar, ChartTypePie, ChartTypeGauge, ChartTypeTable}
}

// FieldSpec describes one output column of a report
type FieldSpec struct {
	Field    string `json:"field" bson:"field"`
	Label    string `json:"label" bson:"label"`
	Type     string `json:"type" bson:"type"`
	Required bool   `json:"required" bson:"required"`
}

// FilterSpec describes one runtime-adjustable query constraint
type FilterSpec struct {
	Field   string   `json:"field" bson:"field"`
	Label   string   `json:"label" bson:"label"`
	Type    string   `json:"type" bson:"type"`
	Options []string `json:"options,omitempty" bson:"options,omitempty"`
}

// ChartSpec holds the chart rendering options of a template
type ChartSpec struct {
	DefaultChart    string   `json:"default_chart" bson:"default_chart"`
	AvailableCharts []string `json:"available_charts" bson:"available_charts"`
}

// ReportTemplate is a stored, reusable report configuration
type ReportTemplate struct {
	ID            primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	Code          string             `json:"code" bson:"code"`
	Name          string             `json:"name" bson:"name"`
	Description   string             `json:"description" bson:"description"`
	Category      string             `json:"category" bson:"category"`
	DataSources   []string           `json:"data_sources" bson:"data_sources"`
	FieldsConfig  []FieldSpec        `json:"fields_config" bson:"fields_config"`
	FiltersConfig []FilterSpec       `json:"filters_config,omitempty" bson:"filters_config,omitempty"`
	ChartConfig   *ChartSpec         `json:"chart_config,omitempty" bson:"chart_config,omitempty"`
	IsPublic      bool               `json:"is_public" bson:"is_public"`
	IsActive      bool               `json:"is_active" bson:"is_active"`
	CreatedBy     string             `json:"created_by,omitempty" bson:"created_by,omitempty"`
	CreatedAt     time.Time          `json:"created_at" bson:"created_at"`
	UpdatedAt     time.Time          `json:"updated_at" bson:"updated_at"`
}

// FieldSpecInput is the wire shape of a field spec. Pointer members let
// the validator distinguish a missing key from a zero value.
type FieldSpecInput struct {
	Field    *string `json:"field"`
	Label    *string `json:"label"`
	Type     *string `json:"type"`
	Required *bool   `json:"required"`
}

// FilterSpecInput is the wire shape of a filter spec
type FilterSpecInput struct {
	Field   *string  `json:"field"`
	Label   *string  `json:"label"`
	Type    *string  `json:"type"`
	Options []string `json:"options"`
}

// ChartSpecInput is the wire shape of a chart config
type ChartSpecInput struct {
	DefaultChart    string   `json:"default_chart"`
	AvailableCharts []string `json:"available_charts"`
}

// TemplateInput is the create/validate request payload
type TemplateInput struct {
	Code          string            `json:"code"`
	Name          string            `json:"name"`
	Description   string            `json:"description"`
	Category      string            `json:"category"`
	DataSources   []string          `json:"data_sources"`
	FieldsConfig  []FieldSpecInput  `json:"fields_config"`
	FiltersConfig []FilterSpecInput `json:"filters_config"`
	ChartConfig   *ChartSpecInput   `json:"chart_config"`
	IsPublic      *bool             `json:"is_public"`
	IsActive      *bool             `json:"is_active"`
}

// TemplateUpdateInput is the partial update payload; nil members are untouched
type TemplateUpdateInput struct {
	Name          *string           `json:"name"`
	Description   *string           `json:"description"`
	Category      *string           `json:"category"`
	DataSources   []string          `json:"data_sources"`
	FieldsConfig  []FieldSpecInput  `json:"fields_config"`
	FiltersConfig []FilterSpecInput `json:"filters_config"`
	ChartConfig   *ChartSpecInput   `json:"chart_config"`
	IsPublic      *bool             `json:"is_public"`
	IsActive      *bool             `json:"is_active"`
}

// CloneInput names the copy produced by the clone endpoint
type CloneInput struct {
	Name string `json:"name"`
	Code string `json:"code"`
}

func toFieldSpecs(in []FieldSpecInput) []FieldSpec {
	out := make([]FieldSpec, 0, len(in))
	for _, f := range in {
		spec := FieldSpec{}
		if f.Field != nil {
			spec.Field = *f.Field
		}
		if f.Label != nil {
			spec.Label = *f.Label
		}
		if f.Type != nil {
			spec.Type = *f.Type
		}
		if f.Required != nil {
			spec.Required = *f.Required
		}
		out = append(out, spec)
	}
	return out
}

func toFilterSpecs(in []FilterSpecInput) []FilterSpec {
	out := make([]FilterSpec, 0, len(in))
	for _, f := range in {
		spec := FilterSpec{Options: f.Options}
		if f.Field != nil {
			spec.Field = *f.Field
		}
		if f.Label != nil {
			spec.Label = *f.Label
		}
		if f.Type != nil {
			spec.Type = *f.Type
		}
		out = append(out, spec)
	}
	return out
}

func toChartSpec(in *ChartSpecInput) *ChartSpec {
	if in == nil {
		return nil
	}
	return &ChartSpec{
		DefaultChart:    in.DefaultChart,
		AvailableCharts: in.AvailableCharts,
	}
}
