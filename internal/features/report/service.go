package report

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"time"

	"go-wms/internal/features/datasource"
	"go-wms/internal/features/template"

	"github.com/google/uuid"
	"github.com/xuri/excelize/v2"
	"go.mongodb.org/mongo-driver/bson"
	"go.uber.org/zap"
)

type ReportService interface {
	Generate(ctx context.Context, in *GenerateInput, userID string) (*CustomReport, error)
	Regenerate(ctx context.Context, id string) (*CustomReport, error)
	Get(ctx context.Context, id string) (*CustomReport, error)
	List(ctx context.Context, opts ListOptions) ([]CustomReport, int64, error)
	Update(ctx context.Context, id string, in *ReportUpdateInput) (*CustomReport, error)
	Delete(ctx context.Context, id string) error
	Download(ctx context.Context, id string, format string) (any, error)
	ExportCSV(ctx context.Context, id string) ([]byte, string, error)
	ExportExcel(ctx context.Context, id string) ([]byte, string, error)
	Statistics(ctx context.Context) (*Statistics, error)
	Scheduled(ctx context.Context) ([]ScheduledReport, error)
	ExecuteScheduled(ctx context.Context) (*BatchResult, error)
}

type ReportServiceImpl struct {
	Repo      ReportRepository
	Templates template.TemplateRepository
	Validator *template.Validator
	Registry  *datasource.Registry
	Executor  PlanExecutor
	Logger    *zap.Logger
}

func NewReportService(
	repo ReportRepository,
	templates template.TemplateRepository,
	validator *template.Validator,
	registry *datasource.Registry,
	executor PlanExecutor,
	logger *zap.Logger,
) ReportService {
	return &ReportServiceImpl{
		Repo:      repo,
		Templates: templates,
		Validator: validator,
		Registry:  registry,
		Executor:  executor,
		Logger:    logger,
	}
}

// Generate creates a report in pending state and immediately attempts
// generation. Filter values are validated before anything is persisted;
// a generation failure is recorded on the report and returned as a
// structured result, never raised past this boundary.
func (s *ReportServiceImpl) Generate(ctx context.Context, in *GenerateInput, userID string) (*CustomReport, error) {
	t, err := s.Templates.GetByID(ctx, in.TemplateID)
	if err != nil {
		return nil, err
	}

	outputFormat := in.OutputFormat
	if outputFormat == "" {
		outputFormat = FormatJSON
	}
	if !contains(OutputFormats(), outputFormat) {
		return nil, template.NewValidationError(fmt.Sprintf("invalid output format %q", in.OutputFormat))
	}
	scheduleType := in.ScheduleType
	if scheduleType == "" {
		scheduleType = ScheduleOnce
	}
	if !contains(ScheduleTypes(), scheduleType) {
		return nil, template.NewValidationError(fmt.Sprintf("invalid schedule type %q", in.ScheduleType))
	}

	if err := s.Validator.ValidateFilterValues(t.FiltersConfig, in.Filters); err != nil {
		return nil, err
	}

	name := in.Name
	if name == "" {
		name = fmt.Sprintf("%s %s", t.Name, time.Now().Format("2006-01-02 15:04"))
	}

	r := &CustomReport{
		TemplateID:     t.ID,
		Name:           name,
		Parameters:     in.Parameters,
		Filters:        in.Filters,
		OutputFormat:   outputFormat,
		ScheduleType:   scheduleType,
		ScheduleConfig: in.ScheduleConfig,
		Status:         StatusPending,
		CreatedBy:      userID,
	}
	if err := s.Repo.Create(ctx, r); err != nil {
		return nil, err
	}

	s.run(ctx, r, t)
	return r, nil
}

// Regenerate resets a report to pending and repeats the generation with
// its stored template, filters and parameters.
func (s *ReportServiceImpl) Regenerate(ctx context.Context, id string) (*CustomReport, error) {
	r, err := s.Repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	next, _ := Transition(r.Status, OutcomeReset)
	r.Status = next
	if err := s.Repo.Update(ctx, id, bson.M{"status": r.Status, "error_message": ""}); err != nil {
		return nil, err
	}

	t, err := s.Templates.GetByID(ctx, r.TemplateID.Hex())
	if err != nil {
		s.fail(ctx, r, fmt.Errorf("template not found: %w", err))
		return r, nil
	}

	s.run(ctx, r, t)
	return r, nil
}

// run performs one generation attempt and persists the resulting state.
// Errors are absorbed into the failed state on the report.
func (s *ReportServiceImpl) run(ctx context.Context, r *CustomReport, t *template.ReportTemplate) {
	data, formatted, err := s.execute(ctx, r, t)
	if err != nil {
		s.fail(ctx, r, err)
		return
	}

	next, terr := Transition(r.Status, OutcomeSucceeded)
	if terr != nil {
		s.fail(ctx, r, terr)
		return
	}

	generatedAt := data.GenerationInfo.GeneratedAt
	r.Status = next
	r.Data = data
	r.FormattedOutput = formatted
	r.RowCount = len(data.Rows)
	r.GeneratedAt = &generatedAt
	r.ErrorMessage = ""

	if err := s.Repo.Update(ctx, r.ID.Hex(), bson.M{
		"status":           r.Status,
		"data":             r.Data,
		"formatted_output": r.FormattedOutput,
		"row_count":        r.RowCount,
		"generated_at":     r.GeneratedAt,
		"error_message":    "",
	}); err != nil {
		s.Logger.Error("failed to persist completed report",
			zap.String("reportId", r.ID.Hex()), zap.Error(err))
	}

	s.Logger.Info("report generated",
		zap.String("reportId", r.ID.Hex()),
		zap.String("templateId", r.TemplateID.Hex()),
		zap.Int("rows", r.RowCount))
}

// execute validates filter values, assembles and runs the query plan,
// then formats the rows and renders the output payload.
func (s *ReportServiceImpl) execute(ctx context.Context, r *CustomReport, t *template.ReportTemplate) (*ReportData, any, error) {
	if err := s.Validator.ValidateFilterValues(t.FiltersConfig, r.Filters); err != nil {
		return nil, nil, err
	}

	plan, err := BuildQuery(s.Registry, t.DataSources, r.Filters, t.FieldsConfig)
	if err != nil {
		return nil, nil, err
	}

	rows, err := s.Executor.Execute(ctx, plan)
	if err != nil {
		return nil, nil, err
	}

	formatted := FormatRows(rows, t.FieldsConfig)

	columns := make([]Column, 0, len(t.FieldsConfig))
	for _, f := range t.FieldsConfig {
		columns = append(columns, Column{Field: f.Field, Label: f.Label, Type: f.Type})
	}

	data := &ReportData{
		TemplateInfo: TemplateInfo{
			Name:     t.Name,
			Code:     t.Code,
			Category: t.Category,
		},
		GenerationInfo: GenerationInfo{
			RunID:          uuid.NewString(),
			GeneratedAt:    time.Now(),
			FiltersApplied: r.Filters,
			Parameters:     r.Parameters,
		},
		Columns: columns,
		Rows:    formatted,
		Summary: Summary{
			TotalRows:   len(formatted),
			DataSources: t.DataSources,
		},
	}

	output, err := RenderOutput(data, r.OutputFormat)
	if err != nil {
		return nil, nil, err
	}
	return data, output, nil
}

// fail records a generation error on the report. Data from a previous
// successful run is left in place for inspection.
func (s *ReportServiceImpl) fail(ctx context.Context, r *CustomReport, cause error) {
	next, terr := Transition(r.Status, OutcomeFailed)
	if terr != nil {
		next = StatusFailed
	}
	r.Status = next
	r.ErrorMessage = cause.Error()

	if err := s.Repo.Update(ctx, r.ID.Hex(), bson.M{
		"status":        r.Status,
		"error_message": r.ErrorMessage,
	}); err != nil {
		s.Logger.Error("failed to persist failed report",
			zap.String("reportId", r.ID.Hex()), zap.Error(err))
	}

	s.Logger.Error("report generation failed",
		zap.String("reportId", r.ID.Hex()), zap.Error(cause))
}

func (s *ReportServiceImpl) Get(ctx context.Context, id string) (*CustomReport, error) {
	return s.Repo.GetByID(ctx, id)
}

func (s *ReportServiceImpl) List(ctx context.Context, opts ListOptions) ([]CustomReport, int64, error) {
	return s.Repo.List(ctx, opts)
}

// Update changes report metadata only. Filter values are re-validated
// against the owning template before they are stored.
func (s *ReportServiceImpl) Update(ctx context.Context, id string, in *ReportUpdateInput) (*CustomReport, error) {
	r, err := s.Repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	set := bson.M{}
	if in.Name != nil {
		set["name"] = *in.Name
	}
	if in.Parameters != nil {
		set["parameters"] = in.Parameters
	}
	if in.Filters != nil {
		t, err := s.Templates.GetByID(ctx, r.TemplateID.Hex())
		if err != nil {
			return nil, err
		}
		if err := s.Validator.ValidateFilterValues(t.FiltersConfig, in.Filters); err != nil {
			return nil, err
		}
		set["filters"] = in.Filters
	}
	if in.ScheduleType != nil {
		if !contains(ScheduleTypes(), *in.ScheduleType) {
			return nil, template.NewValidationError(fmt.Sprintf("invalid schedule type %q", *in.ScheduleType))
		}
		set["schedule_type"] = *in.ScheduleType
	}
	if in.ScheduleConfig != nil {
		set["schedule_config"] = in.ScheduleConfig
	}
	if len(set) == 0 {
		return nil, template.NewValidationError("no fields to update")
	}

	if err := s.Repo.Update(ctx, id, set); err != nil {
		return nil, err
	}
	return s.Repo.GetByID(ctx, id)
}

func (s *ReportServiceImpl) Delete(ctx context.Context, id string) error {
	return s.Repo.Delete(ctx, id)
}

// Download re-renders the stored data in the requested format
func (s *ReportServiceImpl) Download(ctx context.Context, id string, format string) (any, error) {
	r, err := s.Repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if r.Data == nil {
		return nil, template.NewValidationError("report has no generated data")
	}
	if format == "" {
		format = r.OutputFormat
	}
	out, err := RenderOutput(r.Data, format)
	if err != nil {
		return nil, template.NewValidationError(err.Error())
	}
	return out, nil
}

// ExportCSV streams the stored data as a CSV attachment
func (s *ReportServiceImpl) ExportCSV(ctx context.Context, id string) ([]byte, string, error) {
	r, err := s.Repo.GetByID(ctx, id)
	if err != nil {
		return nil, "", err
	}
	if r.Data == nil {
		return nil, "", template.NewValidationError("report has no generated data")
	}

	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)

	if len(r.Data.Columns) > 0 {
		header := make([]string, 0, len(r.Data.Columns))
		for _, c := range r.Data.Columns {
			header = append(header, c.Label)
		}
		if err := writer.Write(header); err != nil {
			return nil, "", err
		}
	}

	for _, row := range r.Data.Rows {
		record := make([]string, 0, len(r.Data.Columns))
		for _, c := range r.Data.Columns {
			record = append(record, cellString(row[c.Field]))
		}
		if err := writer.Write(record); err != nil {
			return nil, "", err
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, "", err
	}

	filename := ExportFilename(r.Data.TemplateInfo.Name, FormatCSV, r.Data.GenerationInfo.GeneratedAt)
	return buf.Bytes(), filename, nil
}

// ExportExcel streams the stored data as a real XLSX workbook
func (s *ReportServiceImpl) ExportExcel(ctx context.Context, id string) ([]byte, string, error) {
	r, err := s.Repo.GetByID(ctx, id)
	if err != nil {
		return nil, "", err
	}
	if r.Data == nil {
		return nil, "", template.NewValidationError("report has no generated data")
	}

	f := excelize.NewFile()
	defer f.Close()

	sheetName := "Report Data"
	index, err := f.NewSheet(sheetName)
	if err != nil {
		return nil, "", err
	}
	f.SetActiveSheet(index)
	f.DeleteSheet("Sheet1")

	headerStyle, _ := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#E0E0E0"}, Pattern: 1},
	})

	for i, c := range r.Data.Columns {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		f.SetCellValue(sheetName, cell, c.Label)
		f.SetCellStyle(sheetName, cell, cell, headerStyle)
	}

	for rowIdx, row := range r.Data.Rows {
		for colIdx, c := range r.Data.Columns {
			cell, _ := excelize.CoordinatesToCellName(colIdx+1, rowIdx+2)
			switch v := row[c.Field].(type) {
			case time.Time:
				f.SetCellValue(sheetName, cell, v.Format("2006-01-02 15:04:05"))
			case nil:
				// leave blank
			default:
				f.SetCellValue(sheetName, cell, v)
			}
		}
	}

	for i := range r.Data.Columns {
		col, _ := excelize.ColumnNumberToName(i + 1)
		f.SetColWidth(sheetName, col, col, 15)
	}

	buffer, err := f.WriteToBuffer()
	if err != nil {
		return nil, "", err
	}

	filename := ExportFilename(r.Data.TemplateInfo.Name, FormatExcel, r.Data.GenerationInfo.GeneratedAt)
	return buffer.Bytes(), filename, nil
}

func (s *ReportServiceImpl) Statistics(ctx context.Context) (*Statistics, error) {
	return s.Repo.Statistics(ctx)
}

// Scheduled lists every recurring report annotated with its next run
// time, including ones currently pending; only the sweep itself skips
// pending reports.
func (s *ReportServiceImpl) Scheduled(ctx context.Context) ([]ScheduledReport, error) {
	reports, err := s.Repo.ListRecurring(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]ScheduledReport, 0, len(reports))
	for _, r := range reports {
		out = append(out, ScheduledReport{
			CustomReport: r,
			NextRunAt:    NextRunTime(&r),
		})
	}
	return out, nil
}

// ExecuteScheduled regenerates every due recurring report. Each report
// is processed in isolation; a failure never aborts the batch.
func (s *ReportServiceImpl) ExecuteScheduled(ctx context.Context) (*BatchResult, error) {
	reports, err := s.Repo.ListScheduled(ctx)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	result := &BatchResult{Succeeded: []string{}, Failed: []string{}}
	for _, r := range reports {
		if !ShouldExecuteNow(&r, now) {
			continue
		}
		id := r.ID.Hex()
		updated, err := s.Regenerate(ctx, id)
		if err != nil || updated.Status != StatusCompleted {
			result.Failed = append(result.Failed, id)
			continue
		}
		result.Succeeded = append(result.Succeeded, id)
	}
	result.SucceededCount = len(result.Succeeded)
	result.FailedCount = len(result.Failed)

	s.Logger.Info("scheduled report sweep finished",
		zap.Int("succeeded", result.SucceededCount),
		zap.Int("failed", result.FailedCount))
	return result, nil
}

func cellString(value any) string {
	if value == nil {
		return ""
	}
	if t, ok := value.(time.Time); ok {
		return t.Format("2006-01-02 15:04:05")
	}
	return fmt.Sprintf("%v", value)
}

func contains(list []string, value string) bool {
	for _, item := range list {
		if item == value {
			return true
		}
	}
	return false
}
