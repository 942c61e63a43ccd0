package report

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Output formats
const (
	FormatJSON  = "json"
	FormatCSV   = "csv"
	FormatExcel = "excel"
	FormatPDF   = "pdf"
)

// Schedule types
const (
	ScheduleOnce    = "once"
	ScheduleDaily   = "daily"
	ScheduleWeekly  = "weekly"
	ScheduleMonthly = "monthly"
)

func OutputFormats() []string {
	return []string{FormatJSON, FormatCSV, FormatExcel, FormatPDF}
}

func ScheduleTypes() []string {
	return []string{ScheduleOnce, ScheduleDaily, ScheduleWeekly, ScheduleMonthly}
}

// TemplateInfo is the template identity embedded in generated data
type TemplateInfo struct {
	Name     string `json:"name" bson:"name"`
	Code     string `json:"code" bson:"code"`
	Category string `json:"category" bson:"category"`
}

// GenerationInfo records how and when the data was produced
type GenerationInfo struct {
	RunID          string         `json:"run_id" bson:"run_id"`
	GeneratedAt    time.Time      `json:"generated_at" bson:"generated_at"`
	FiltersApplied map[string]any `json:"filters_applied" bson:"filters_applied"`
	Parameters     map[string]any `json:"parameters" bson:"parameters"`
}

// Column describes one output column of generated data
type Column struct {
	Field string `json:"field" bson:"field"`
	Label string `json:"label" bson:"label"`
	Type  string `json:"type" bson:"type"`
}

// Summary carries aggregate metadata about a generation run
type Summary struct {
	TotalRows   int      `json:"total_rows" bson:"total_rows"`
	DataSources []string `json:"data_sources" bson:"data_sources"`
}

// ReportData is the logical result of one generation run
type ReportData struct {
	TemplateInfo   TemplateInfo     `json:"template_info" bson:"template_info"`
	GenerationInfo GenerationInfo   `json:"generation_info" bson:"generation_info"`
	Columns        []Column         `json:"columns" bson:"columns"`
	Rows           []map[string]any `json:"rows" bson:"rows"`
	Summary        Summary          `json:"summary" bson:"summary"`
}

// CustomReport is one execution instance of a report template. It owns
// its data and formatted output; the template is referenced, not owned.
type CustomReport struct {
	ID              primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	TemplateID      primitive.ObjectID `json:"template_id" bson:"template_id"`
	Name            string             `json:"name" bson:"name"`
	Parameters      map[string]any     `json:"parameters,omitempty" bson:"parameters,omitempty"`
	Filters         map[string]any     `json:"filters,omitempty" bson:"filters,omitempty"`
	OutputFormat    string             `json:"output_format" bson:"output_format"`
	ScheduleType    string             `json:"schedule_type" bson:"schedule_type"`
	ScheduleConfig  map[string]any     `json:"schedule_config,omitempty" bson:"schedule_config,omitempty"`
	Status          Status             `json:"status" bson:"status"`
	Data            *ReportData        `json:"data,omitempty" bson:"data,omitempty"`
	FormattedOutput any                `json:"formatted_output,omitempty" bson:"formatted_output,omitempty"`
	RowCount        int                `json:"row_count" bson:"row_count"`
	GeneratedAt     *time.Time         `json:"generated_at,omitempty" bson:"generated_at,omitempty"`
	ErrorMessage    string             `json:"error_message,omitempty" bson:"error_message,omitempty"`
	CreatedBy       string             `json:"created_by,omitempty" bson:"created_by,omitempty"`
	CreatedAt       time.Time          `json:"created_at" bson:"created_at"`
	UpdatedAt       time.Time          `json:"updated_at" bson:"updated_at"`
}

// GenerateInput is the create-and-run request payload
type GenerateInput struct {
	TemplateID     string         `json:"template_id"`
	Name           string         `json:"name"`
	Parameters     map[string]any `json:"parameters"`
	Filters        map[string]any `json:"filters"`
	OutputFormat   string         `json:"output_format"`
	ScheduleType   string         `json:"schedule_type"`
	ScheduleConfig map[string]any `json:"schedule_config"`
}

// ReportUpdateInput updates report metadata only; generated data is
// untouched until the next regeneration.
type ReportUpdateInput struct {
	Name           *string        `json:"name"`
	Parameters     map[string]any `json:"parameters"`
	Filters        map[string]any `json:"filters"`
	ScheduleType   *string        `json:"schedule_type"`
	ScheduleConfig map[string]any `json:"schedule_config"`
}

// BatchResult summarizes one scheduled-execution sweep
type BatchResult struct {
	Succeeded      []string `json:"succeeded"`
	Failed         []string `json:"failed"`
	SucceededCount int      `json:"succeeded_count"`
	FailedCount    int      `json:"failed_count"`
}

// ScheduledReport annotates a report with its computed next run time
type ScheduledReport struct {
	CustomReport
	NextRunAt *time.Time `json:"next_run_at"`
}
