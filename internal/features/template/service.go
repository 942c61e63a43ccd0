package template

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

type TemplateService interface {
	Create(ctx context.Context, in *TemplateInput, userID string) (*ReportTemplate, error)
	Get(ctx context.Context, id string) (*ReportTemplate, error)
	List(ctx context.Context, opts ListOptions) ([]ReportTemplate, int64, error)
	Update(ctx context.Context, id string, in *TemplateUpdateInput) (*ReportTemplate, error)
	Delete(ctx context.Context, id string) error
	Clone(ctx context.Context, id string, in *CloneInput, userID string) (*ReportTemplate, error)
	Validate(in *TemplateInput) error
	Preview(ctx context.Context, id string, rows int) (*PreviewResult, error)
}

// PreviewResult carries the synthetic rows produced for a template
type PreviewResult struct {
	TemplateID string           `json:"template_id"`
	Columns    []FieldSpec      `json:"columns"`
	Rows       []map[string]any `json:"rows"`
	Note       string           `json:"note"`
}

type TemplateServiceImpl struct {
	Repo      TemplateRepository
	Validator *Validator
	Sampler   SamplePreviewGenerator
}

func NewTemplateService(repo TemplateRepository, validator *Validator, sampler SamplePreviewGenerator) TemplateService {
	return &TemplateServiceImpl{
		Repo:      repo,
		Validator: validator,
		Sampler:   sampler,
	}
}

func (s *TemplateServiceImpl) Create(ctx context.Context, in *TemplateInput, userID string) (*ReportTemplate, error) {
	if in.Code == "" || in.Name == "" {
		return nil, validationErrorf("code and name are required")
	}
	if !isAllowed(in.Category, Categories()) {
		return nil, validationErrorf("invalid category %q", in.Category)
	}
	if err := s.Validator.ValidateConfig(in); err != nil {
		return nil, err
	}
	if err := s.ensureCodeFree(ctx, in.Code); err != nil {
		return nil, err
	}

	t := &ReportTemplate{
		Code:          in.Code,
		Name:          in.Name,
		Description:   in.Description,
		Category:      in.Category,
		DataSources:   in.DataSources,
		FieldsConfig:  toFieldSpecs(in.FieldsConfig),
		FiltersConfig: toFilterSpecs(in.FiltersConfig),
		ChartConfig:   toChartSpec(in.ChartConfig),
		IsPublic:      in.IsPublic != nil && *in.IsPublic,
		IsActive:      in.IsActive == nil || *in.IsActive,
		CreatedBy:     userID,
	}
	if err := s.Repo.Create(ctx, t); err != nil {
		return nil, err
	}
	return t, nil
}

func (s *TemplateServiceImpl) Get(ctx context.Context, id string) (*ReportTemplate, error) {
	return s.Repo.GetByID(ctx, id)
}

func (s *TemplateServiceImpl) List(ctx context.Context, opts ListOptions) ([]ReportTemplate, int64, error) {
	return s.Repo.List(ctx, opts)
}

func (s *TemplateServiceImpl) Update(ctx context.Context, id string, in *TemplateUpdateInput) (*ReportTemplate, error) {
	set := bson.M{}
	if in.Name != nil {
		set["name"] = *in.Name
	}
	if in.Description != nil {
		set["description"] = *in.Description
	}
	if in.Category != nil {
		if !isAllowed(*in.Category, Categories()) {
			return nil, validationErrorf("invalid category %q", *in.Category)
		}
		set["category"] = *in.Category
	}
	if in.DataSources != nil {
		if err := s.Validator.ValidateDataSources(in.DataSources); err != nil {
			return nil, err
		}
		set["data_sources"] = in.DataSources
	}
	if in.FieldsConfig != nil {
		if err := s.Validator.ValidateFieldsConfig(in.FieldsConfig); err != nil {
			return nil, err
		}
		set["fields_config"] = toFieldSpecs(in.FieldsConfig)
	}
	if in.FiltersConfig != nil {
		if err := s.Validator.ValidateFiltersConfig(in.FiltersConfig); err != nil {
			return nil, err
		}
		set["filters_config"] = toFilterSpecs(in.FiltersConfig)
	}
	if in.ChartConfig != nil {
		if err := s.Validator.ValidateChartConfig(in.ChartConfig); err != nil {
			return nil, err
		}
		set["chart_config"] = toChartSpec(in.ChartConfig)
	}
	if in.IsPublic != nil {
		set["is_public"] = *in.IsPublic
	}
	if in.IsActive != nil {
		set["is_active"] = *in.IsActive
	}
	if len(set) == 0 {
		return nil, validationErrorf("no fields to update")
	}

	if err := s.Repo.Update(ctx, id, set); err != nil {
		return nil, err
	}
	return s.Repo.GetByID(ctx, id)
}

func (s *TemplateServiceImpl) Delete(ctx context.Context, id string) error {
	return s.Repo.Delete(ctx, id)
}

// Clone copies a template minus identity and timestamps; a fresh name
// and code are mandatory.
func (s *TemplateServiceImpl) Clone(ctx context.Context, id string, in *CloneInput, userID string) (*ReportTemplate, error) {
	if in.Name == "" || in.Code == "" {
		return nil, validationErrorf("clone requires a new name and code")
	}
	src, err := s.Repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.ensureCodeFree(ctx, in.Code); err != nil {
		return nil, err
	}

	clone := *src
	clone.ID = primitive.NilObjectID
	clone.Name = in.Name
	clone.Code = in.Code
	clone.CreatedBy = userID
	if err := s.Repo.Create(ctx, &clone); err != nil {
		return nil, err
	}
	return &clone, nil
}

// Validate is the dry-run configuration check exposed over HTTP
func (s *TemplateServiceImpl) Validate(in *TemplateInput) error {
	if in.Category != "" && !isAllowed(in.Category, Categories()) {
		return validationErrorf("invalid category %q", in.Category)
	}
	return s.Validator.ValidateConfig(in)
}

func (s *TemplateServiceImpl) Preview(ctx context.Context, id string, rows int) (*PreviewResult, error) {
	t, err := s.Repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return &PreviewResult{
		TemplateID: id,
		Columns:    t.FieldsConfig,
		Rows:       s.Sampler.Rows(t.FieldsConfig, rows),
		Note:       "Synthetic sample data; real warehouse data is not queried",
	}, nil
}

func (s *TemplateServiceImpl) ensureCodeFree(ctx context.Context, code string) error {
	_, err := s.Repo.GetByCode(ctx, code)
	if err == nil {
		return validationErrorf("template code %q already exists", code)
	}
	if !errors.Is(err, mongo.ErrNoDocuments) {
		return err
	}
	return nil
}
