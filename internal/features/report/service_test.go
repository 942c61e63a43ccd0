package report

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"go-wms/internal/features/datasource"
	"go-wms/internal/features/template"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// fakeReportRepo is an in-memory ReportRepository applying update sets
// the way the Mongo implementation would.
type fakeReportRepo struct {
	reports map[string]*CustomReport
	order   []string
}

func newFakeReportRepo() *fakeReportRepo {
	return &fakeReportRepo{reports: map[string]*CustomReport{}}
}

func (f *fakeReportRepo) Create(_ context.Context, r *CustomReport) error {
	if r.ID.IsZero() {
		r.ID = primitive.NewObjectID()
	}
	r.CreatedAt = time.Now()
	r.UpdatedAt = time.Now()
	stored := *r
	f.reports[r.ID.Hex()] = &stored
	f.order = append(f.order, r.ID.Hex())
	return nil
}

func (f *fakeReportRepo) GetByID(_ context.Context, id string) (*CustomReport, error) {
	r, ok := f.reports[id]
	if !ok {
		return nil, mongo.ErrNoDocuments
	}
	copied := *r
	return &copied, nil
}

func (f *fakeReportRepo) List(_ context.Context, _ ListOptions) ([]CustomReport, int64, error) {
	out := make([]CustomReport, 0, len(f.order))
	for _, id := range f.order {
		out = append(out, *f.reports[id])
	}
	return out, int64(len(out)), nil
}

func (f *fakeReportRepo) Update(_ context.Context, id string, set bson.M) error {
	r, ok := f.reports[id]
	if !ok {
		return mongo.ErrNoDocuments
	}
	for key, value := range set {
		switch key {
		case "status":
			r.Status = value.(Status)
		case "data":
			r.Data = value.(*ReportData)
		case "formatted_output":
			r.FormattedOutput = value
		case "row_count":
			r.RowCount = value.(int)
		case "generated_at":
			r.GeneratedAt = value.(*time.Time)
		case "error_message":
			r.ErrorMessage = value.(string)
		case "name":
			r.Name = value.(string)
		case "schedule_type":
			r.ScheduleType = value.(string)
		}
	}
	r.UpdatedAt = time.Now()
	return nil
}

func (f *fakeReportRepo) Delete(_ context.Context, id string) error {
	if _, ok := f.reports[id]; !ok {
		return mongo.ErrNoDocuments
	}
	delete(f.reports, id)
	return nil
}

func (f *fakeReportRepo) ListScheduled(_ context.Context) ([]CustomReport, error) {
	var out []CustomReport
	for _, id := range f.order {
		r, ok := f.reports[id]
		if !ok {
			continue
		}
		if r.ScheduleType != ScheduleOnce && r.Status != StatusPending {
			out = append(out, *r)
		}
	}
	return out, nil
}

func (f *fakeReportRepo) ListRecurring(_ context.Context) ([]CustomReport, error) {
	var out []CustomReport
	for _, id := range f.order {
		r, ok := f.reports[id]
		if !ok {
			continue
		}
		if r.ScheduleType != ScheduleOnce {
			out = append(out, *r)
		}
	}
	return out, nil
}

func (f *fakeReportRepo) Statistics(_ context.Context) (*Statistics, error) {
	return &Statistics{Total: int64(len(f.reports))}, nil
}

// fakeTemplateRepo serves a fixed set of templates by hex id
type fakeTemplateRepo struct {
	templates map[string]*template.ReportTemplate
}

func (f *fakeTemplateRepo) Create(_ context.Context, _ *template.ReportTemplate) error { return nil }

func (f *fakeTemplateRepo) GetByID(_ context.Context, id string) (*template.ReportTemplate, error) {
	t, ok := f.templates[id]
	if !ok {
		return nil, mongo.ErrNoDocuments
	}
	return t, nil
}

func (f *fakeTemplateRepo) GetByCode(_ context.Context, _ string) (*template.ReportTemplate, error) {
	return nil, mongo.ErrNoDocuments
}

func (f *fakeTemplateRepo) List(_ context.Context, _ template.ListOptions) ([]template.ReportTemplate, int64, error) {
	return nil, 0, nil
}

func (f *fakeTemplateRepo) Update(_ context.Context, _ string, _ bson.M) error { return nil }
func (f *fakeTemplateRepo) Delete(_ context.Context, _ string) error           { return nil }

// fakeExecutor returns canned rows or a canned error and records plans
type fakeExecutor struct {
	rows  []map[string]any
	err   error
	plans []*QueryPlan
	calls int
}

func (f *fakeExecutor) Execute(_ context.Context, plan *QueryPlan) ([]map[string]any, error) {
	f.calls++
	f.plans = append(f.plans, plan)
	if f.err != nil {
		return nil, f.err
	}
	return f.rows, nil
}

func zoneTemplate() *template.ReportTemplate {
	return &template.ReportTemplate{
		ID:          primitive.NewObjectID(),
		Code:        "zone_utilization",
		Name:        "Zone Utilization",
		Category:    template.CategoryOperational,
		DataSources: []string{"warehouse_zones"},
		FieldsConfig: []template.FieldSpec{
			{Field: "name", Label: "Name", Type: template.FieldTypeString, Required: true},
		},
		FiltersConfig: []template.FilterSpec{
			{Field: "zone_type", Label: "Zone Type", Type: template.FilterTypeDropdown, Options: []string{"storage", "picking"}},
		},
		IsActive: true,
	}
}

func newTestService(t *testing.T, tmpl *template.ReportTemplate, exec PlanExecutor) (*ReportServiceImpl, *fakeReportRepo) {
	t.Helper()
	registry := datasource.NewRegistry()
	repo := newFakeReportRepo()
	svc := &ReportServiceImpl{
		Repo:      repo,
		Templates: &fakeTemplateRepo{templates: map[string]*template.ReportTemplate{tmpl.ID.Hex(): tmpl}},
		Validator: template.NewValidator(registry),
		Registry:  registry,
		Executor:  exec,
		Logger:    zap.NewNop(),
	}
	return svc, repo
}

func TestGenerateCompletes(t *testing.T) {
	tmpl := zoneTemplate()
	exec := &fakeExecutor{rows: []map[string]any{{"name": "A"}, {"name": "B"}}}
	svc, repo := newTestService(t, tmpl, exec)

	r, err := svc.Generate(context.Background(), &GenerateInput{
		TemplateID:   tmpl.ID.Hex(),
		OutputFormat: FormatCSV,
	}, "user-1")
	if err != nil {
		t.Fatal(err)
	}

	if r.Status != StatusCompleted {
		t.Fatalf("status = %s, error = %q", r.Status, r.ErrorMessage)
	}
	if r.RowCount != 2 {
		t.Errorf("row_count = %d", r.RowCount)
	}
	if r.Data == nil || len(r.Data.Rows) != 2 {
		t.Fatalf("data = %+v", r.Data)
	}
	if r.Data.GenerationInfo.RunID == "" {
		t.Error("run id should be set")
	}
	if r.GeneratedAt == nil {
		t.Error("generated_at should be set")
	}
	if r.CreatedBy != "user-1" {
		t.Errorf("created_by = %q", r.CreatedBy)
	}

	payload, ok := r.FormattedOutput.(map[string]any)
	if !ok {
		t.Fatalf("formatted output type %T", r.FormattedOutput)
	}
	rows := payload["data"].([][]any)
	if len(rows) != 3 || rows[0][0] != "Name" || rows[1][0] != "A" || rows[2][0] != "B" {
		t.Errorf("csv data = %v", rows)
	}

	stored, err := repo.GetByID(context.Background(), r.ID.Hex())
	if err != nil {
		t.Fatal(err)
	}
	if stored.Status != StatusCompleted || stored.RowCount != 2 {
		t.Errorf("persisted report = %+v", stored)
	}
}

func TestGenerateInvalidFilterCreatesNothing(t *testing.T) {
	tmpl := zoneTemplate()
	exec := &fakeExecutor{rows: []map[string]any{{"name": "A"}}}
	svc, repo := newTestService(t, tmpl, exec)

	_, err := svc.Generate(context.Background(), &GenerateInput{
		TemplateID: tmpl.ID.Hex(),
		Filters:    map[string]any{"zone_type": "frozen"},
	}, "user-1")
	if err == nil {
		t.Fatal("expected validation error")
	}
	if !template.IsValidationError(err) {
		t.Errorf("error type: %v", err)
	}
	if len(repo.reports) != 0 {
		t.Errorf("no report should be persisted, got %d", len(repo.reports))
	}
	if exec.calls != 0 {
		t.Errorf("executor should not run, got %d calls", exec.calls)
	}
}

func TestGenerateInvalidEnums(t *testing.T) {
	tmpl := zoneTemplate()
	svc, repo := newTestService(t, tmpl, &fakeExecutor{})

	if _, err := svc.Generate(context.Background(), &GenerateInput{
		TemplateID:   tmpl.ID.Hex(),
		OutputFormat: "parquet",
	}, "u"); err == nil || !template.IsValidationError(err) {
		t.Errorf("output format error = %v", err)
	}
	if _, err := svc.Generate(context.Background(), &GenerateInput{
		TemplateID:   tmpl.ID.Hex(),
		ScheduleType: "hourly",
	}, "u"); err == nil || !template.IsValidationError(err) {
		t.Errorf("schedule type error = %v", err)
	}
	if len(repo.reports) != 0 {
		t.Errorf("no reports should be persisted, got %d", len(repo.reports))
	}
}

func TestGenerateUnknownTemplate(t *testing.T) {
	tmpl := zoneTemplate()
	svc, _ := newTestService(t, tmpl, &fakeExecutor{})

	_, err := svc.Generate(context.Background(), &GenerateInput{
		TemplateID: primitive.NewObjectID().Hex(),
	}, "u")
	if !errors.Is(err, mongo.ErrNoDocuments) {
		t.Errorf("err = %v", err)
	}
}

func TestGenerateExecutorFailureRecorded(t *testing.T) {
	tmpl := zoneTemplate()
	exec := &fakeExecutor{err: errors.New("connection refused")}
	svc, repo := newTestService(t, tmpl, exec)

	r, err := svc.Generate(context.Background(), &GenerateInput{
		TemplateID: tmpl.ID.Hex(),
	}, "u")
	if err != nil {
		t.Fatalf("generation failure must not surface as an error: %v", err)
	}

	if r.Status != StatusFailed {
		t.Errorf("status = %s", r.Status)
	}
	if !strings.Contains(r.ErrorMessage, "connection refused") {
		t.Errorf("error_message = %q", r.ErrorMessage)
	}
	if r.Data != nil {
		t.Error("failed report should carry no data")
	}

	stored, _ := repo.GetByID(context.Background(), r.ID.Hex())
	if stored.Status != StatusFailed || stored.ErrorMessage == "" {
		t.Errorf("persisted report = %+v", stored)
	}
}

func TestGenerateDefaultName(t *testing.T) {
	tmpl := zoneTemplate()
	svc, _ := newTestService(t, tmpl, &fakeExecutor{})

	r, err := svc.Generate(context.Background(), &GenerateInput{TemplateID: tmpl.ID.Hex()}, "u")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(r.Name, "Zone Utilization ") {
		t.Errorf("name = %q", r.Name)
	}
	if r.OutputFormat != FormatJSON || r.ScheduleType != ScheduleOnce {
		t.Errorf("defaults not applied: %+v", r)
	}
}

func TestRegenerateIdempotent(t *testing.T) {
	tmpl := zoneTemplate()
	exec := &fakeExecutor{rows: []map[string]any{{"name": "A"}, {"name": "B"}}}
	svc, repo := newTestService(t, tmpl, exec)

	r, err := svc.Generate(context.Background(), &GenerateInput{TemplateID: tmpl.ID.Hex()}, "u")
	if err != nil {
		t.Fatal(err)
	}
	first, _ := repo.GetByID(context.Background(), r.ID.Hex())

	again, err := svc.Regenerate(context.Background(), r.ID.Hex())
	if err != nil {
		t.Fatal(err)
	}
	if again.Status != StatusCompleted || again.RowCount != first.RowCount {
		t.Errorf("regenerated = %+v", again)
	}
	if again.Data.GenerationInfo.RunID == first.Data.GenerationInfo.RunID {
		t.Error("each run should carry a fresh run id")
	}
	if exec.calls != 2 {
		t.Errorf("executor calls = %d", exec.calls)
	}
}

func TestRegenerateRecoversFailedReport(t *testing.T) {
	tmpl := zoneTemplate()
	exec := &fakeExecutor{err: errors.New("boom")}
	svc, _ := newTestService(t, tmpl, exec)

	r, err := svc.Generate(context.Background(), &GenerateInput{TemplateID: tmpl.ID.Hex()}, "u")
	if err != nil {
		t.Fatal(err)
	}
	if r.Status != StatusFailed {
		t.Fatalf("status = %s", r.Status)
	}

	exec.err = nil
	exec.rows = []map[string]any{{"name": "A"}}

	recovered, err := svc.Regenerate(context.Background(), r.ID.Hex())
	if err != nil {
		t.Fatal(err)
	}
	if recovered.Status != StatusCompleted || recovered.ErrorMessage != "" {
		t.Errorf("recovered = %+v", recovered)
	}
}

func TestRegenerateMissingTemplate(t *testing.T) {
	tmpl := zoneTemplate()
	exec := &fakeExecutor{rows: []map[string]any{{"name": "A"}}}
	svc, repo := newTestService(t, tmpl, exec)

	r, err := svc.Generate(context.Background(), &GenerateInput{TemplateID: tmpl.ID.Hex()}, "u")
	if err != nil {
		t.Fatal(err)
	}

	// Simulate the template disappearing between runs
	svc.Templates = &fakeTemplateRepo{templates: map[string]*template.ReportTemplate{}}

	updated, err := svc.Regenerate(context.Background(), r.ID.Hex())
	if err != nil {
		t.Fatalf("missing template is a report failure, not an error: %v", err)
	}
	if updated.Status != StatusFailed {
		t.Errorf("status = %s", updated.Status)
	}
	if !strings.Contains(updated.ErrorMessage, "template not found") {
		t.Errorf("error_message = %q", updated.ErrorMessage)
	}

	stored, _ := repo.GetByID(context.Background(), r.ID.Hex())
	if stored.Status != StatusFailed {
		t.Errorf("persisted status = %s", stored.Status)
	}
}

func TestUpdateValidatesFilters(t *testing.T) {
	tmpl := zoneTemplate()
	svc, _ := newTestService(t, tmpl, &fakeExecutor{})

	r, err := svc.Generate(context.Background(), &GenerateInput{TemplateID: tmpl.ID.Hex()}, "u")
	if err != nil {
		t.Fatal(err)
	}

	_, err = svc.Update(context.Background(), r.ID.Hex(), &ReportUpdateInput{
		Filters: map[string]any{"zone_type": "frozen"},
	})
	if err == nil || !template.IsValidationError(err) {
		t.Errorf("err = %v", err)
	}

	name := "Renamed"
	updated, err := svc.Update(context.Background(), r.ID.Hex(), &ReportUpdateInput{Name: &name})
	if err != nil {
		t.Fatal(err)
	}
	if updated.Name != "Renamed" {
		t.Errorf("name = %q", updated.Name)
	}

	if _, err := svc.Update(context.Background(), r.ID.Hex(), &ReportUpdateInput{}); err == nil {
		t.Error("empty update should be rejected")
	}
}

func TestExecuteScheduledIsolatesFailures(t *testing.T) {
	tmpl := zoneTemplate()
	exec := &fakeExecutor{rows: []map[string]any{{"name": "A"}}}
	svc, repo := newTestService(t, tmpl, exec)

	// Two recurring reports, both completed long enough ago to be due,
	// plus a once-only one that must never be swept.
	due1, err := svc.Generate(context.Background(), &GenerateInput{TemplateID: tmpl.ID.Hex(), ScheduleType: ScheduleDaily}, "u")
	if err != nil {
		t.Fatal(err)
	}
	due2, err := svc.Generate(context.Background(), &GenerateInput{TemplateID: tmpl.ID.Hex(), ScheduleType: ScheduleDaily}, "u")
	if err != nil {
		t.Fatal(err)
	}
	if _, err := svc.Generate(context.Background(), &GenerateInput{TemplateID: tmpl.ID.Hex(), ScheduleType: ScheduleOnce}, "u"); err != nil {
		t.Fatal(err)
	}

	past := time.Now().AddDate(0, 0, -2)
	for _, id := range []string{due1.ID.Hex(), due2.ID.Hex()} {
		repo.reports[id].GeneratedAt = &past
	}

	// Second report's template vanishes so its regeneration fails
	broken := *repo.reports[due2.ID.Hex()]
	broken.TemplateID = primitive.NewObjectID()
	repo.reports[due2.ID.Hex()] = &broken

	result, err := svc.ExecuteScheduled(context.Background())
	if err != nil {
		t.Fatal(err)
	}

	if result.SucceededCount != 1 || len(result.Succeeded) != 1 || result.Succeeded[0] != due1.ID.Hex() {
		t.Errorf("succeeded = %+v", result)
	}
	if result.FailedCount != 1 || len(result.Failed) != 1 || result.Failed[0] != due2.ID.Hex() {
		t.Errorf("failed = %+v", result)
	}
}

func TestScheduledAnnotatesNextRun(t *testing.T) {
	tmpl := zoneTemplate()
	exec := &fakeExecutor{rows: []map[string]any{{"name": "A"}}}
	svc, _ := newTestService(t, tmpl, exec)

	if _, err := svc.Generate(context.Background(), &GenerateInput{TemplateID: tmpl.ID.Hex(), ScheduleType: ScheduleWeekly}, "u"); err != nil {
		t.Fatal(err)
	}
	if _, err := svc.Generate(context.Background(), &GenerateInput{TemplateID: tmpl.ID.Hex(), ScheduleType: ScheduleOnce}, "u"); err != nil {
		t.Fatal(err)
	}

	scheduled, err := svc.Scheduled(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if len(scheduled) != 1 {
		t.Fatalf("scheduled = %d, want 1", len(scheduled))
	}
	if scheduled[0].NextRunAt == nil {
		t.Error("weekly report should carry a next run time")
	}
}

func TestDownloadAndExport(t *testing.T) {
	tmpl := zoneTemplate()
	exec := &fakeExecutor{rows: []map[string]any{{"name": "A"}, {"name": "B"}}}
	svc, _ := newTestService(t, tmpl, exec)

	r, err := svc.Generate(context.Background(), &GenerateInput{TemplateID: tmpl.ID.Hex()}, "u")
	if err != nil {
		t.Fatal(err)
	}

	out, err := svc.Download(context.Background(), r.ID.Hex(), FormatCSV)
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := out.(map[string]any); !ok {
		t.Errorf("download payload type %T", out)
	}

	if _, err := svc.Download(context.Background(), r.ID.Hex(), "parquet"); err == nil {
		t.Error("unsupported format should be rejected")
	}

	raw, filename, err := svc.ExportCSV(context.Background(), r.ID.Hex())
	if err != nil {
		t.Fatal(err)
	}
	if got := string(raw); got != "Name\nA\nB\n" {
		t.Errorf("csv = %q", got)
	}
	if !strings.HasSuffix(filename, ".csv") {
		t.Errorf("filename = %q", filename)
	}

	workbook, filename, err := svc.ExportExcel(context.Background(), r.ID.Hex())
	if err != nil {
		t.Fatal(err)
	}
	if len(workbook) == 0 {
		t.Error("workbook should not be empty")
	}
	if !strings.HasSuffix(filename, ".xlsx") {
		t.Errorf("filename = %q", filename)
	}
}

func TestDownloadWithoutData(t *testing.T) {
	tmpl := zoneTemplate()
	exec := &fakeExecutor{err: errors.New("down")}
	svc, _ := newTestService(t, tmpl, exec)

	r, err := svc.Generate(context.Background(), &GenerateInput{TemplateID: tmpl.ID.Hex()}, "u")
	if err != nil {
		t.Fatal(err)
	}
	if _, err := svc.Download(context.Background(), r.ID.Hex(), ""); err == nil {
		t.Error("download of a never-completed report should fail")
	}
	if _, _, err := svc.ExportCSV(context.Background(), r.ID.Hex()); err == nil {
		t.Error("export of a never-completed report should fail")
	}
}

func TestRegenerateAfterStorageRoundTrip(t *testing.T) {
	tmpl := zoneTemplate()
	tmpl.FiltersConfig = append(tmpl.FiltersConfig, template.FilterSpec{
		Field: "code", Label: "Zone Code", Type: template.FilterTypeMultiSelect,
		Options: []string{"Z-01", "Z-02"},
	})
	exec := &fakeExecutor{rows: []map[string]any{{"name": "A"}}}
	svc, repo := newTestService(t, tmpl, exec)

	r, err := svc.Generate(context.Background(), &GenerateInput{
		TemplateID: tmpl.ID.Hex(),
		Filters:    map[string]any{"code": []any{"Z-01"}},
	}, "u")
	if err != nil {
		t.Fatal(err)
	}
	if r.Status != StatusCompleted {
		t.Fatalf("status = %s, error = %q", r.Status, r.ErrorMessage)
	}

	// Stored filters come back from Mongo as bson array/document types;
	// regeneration must still validate and build the same plan.
	raw, err := bson.Marshal(bson.M{"filters": r.Filters})
	if err != nil {
		t.Fatal(err)
	}
	var decoded struct {
		Filters map[string]any `bson:"filters"`
	}
	if err := bson.Unmarshal(raw, &decoded); err != nil {
		t.Fatal(err)
	}
	repo.reports[r.ID.Hex()].Filters = decoded.Filters

	again, err := svc.Regenerate(context.Background(), r.ID.Hex())
	if err != nil {
		t.Fatal(err)
	}
	if again.Status != StatusCompleted {
		t.Fatalf("status = %s, error = %q", again.Status, again.ErrorMessage)
	}

	last := exec.plans[len(exec.plans)-1]
	if len(last.Predicates) != 1 || last.Predicates[0].Op != OpIn {
		t.Errorf("predicates = %+v, want membership on code", last.Predicates)
	}
}

func TestScheduledListsPendingRecurring(t *testing.T) {
	tmpl := zoneTemplate()
	exec := &fakeExecutor{rows: []map[string]any{{"name": "A"}}}
	svc, repo := newTestService(t, tmpl, exec)

	r, err := svc.Generate(context.Background(), &GenerateInput{TemplateID: tmpl.ID.Hex(), ScheduleType: ScheduleDaily}, "u")
	if err != nil {
		t.Fatal(err)
	}

	// A recurring report stuck in pending still belongs in the
	// scheduled view; only the sweep skips it.
	past := time.Now().AddDate(0, 0, -2)
	repo.reports[r.ID.Hex()].Status = StatusPending
	repo.reports[r.ID.Hex()].GeneratedAt = &past

	scheduled, err := svc.Scheduled(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if len(scheduled) != 1 || scheduled[0].Status != StatusPending {
		t.Fatalf("scheduled = %+v", scheduled)
	}

	result, err := svc.ExecuteScheduled(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if result.SucceededCount != 0 || result.FailedCount != 0 {
		t.Errorf("pending report must not be swept: %+v", result)
	}
}
