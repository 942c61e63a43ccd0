package report

import (
	"errors"
	"fmt"
	"time"

	"go-wms/internal/api"
	"go-wms/internal/features/template"
	"go-wms/internal/middleware"

	"github.com/gofiber/fiber/v2"
	"go.mongodb.org/mongo-driver/mongo"
)

type ReportController struct {
	Service ReportService
}

func NewReportController(service ReportService) *ReportController {
	return &ReportController{Service: service}
}

func errStatus(err error) int {
	switch {
	case template.IsValidationError(err):
		return fiber.StatusBadRequest
	case errors.Is(err, mongo.ErrNoDocuments):
		return fiber.StatusNotFound
	default:
		return fiber.StatusInternalServerError
	}
}

// Generate creates a report and runs it immediately. A generation
// failure still answers 200 with success=false and the failed record.
func (c *ReportController) Generate(ctx *fiber.Ctx) error {
	userID, ok := middleware.UserID(ctx)
	if !ok {
		return api.Error(ctx, fiber.StatusUnauthorized, "User identity required")
	}

	var in GenerateInput
	if err := ctx.BodyParser(&in); err != nil {
		return api.Error(ctx, fiber.StatusBadRequest, "Invalid request body")
	}
	if in.TemplateID == "" {
		return api.Error(ctx, fiber.StatusBadRequest, "template_id is required")
	}

	r, err := c.Service.Generate(ctx.Context(), &in, userID)
	if err != nil {
		return api.Error(ctx, errStatus(err), err.Error())
	}
	if r.Status == StatusFailed {
		return ctx.JSON(api.Response{Success: false, Data: r, Message: r.ErrorMessage})
	}
	return api.Created(ctx, r)
}

func (c *ReportController) List(ctx *fiber.Ctx) error {
	opts := ListOptions{
		TemplateID: ctx.Query("template_id"),
		Status:     ctx.Query("status"),
		Search:     ctx.Query("search"),
		SortBy:     ctx.Query("sort_by"),
		SortOrder:  ctx.Query("sort_order"),
		Page:       ctx.QueryInt("page"),
		Limit:      ctx.QueryInt("limit"),
	}
	if v := ctx.Query("from"); v != "" {
		t, err := time.Parse("2006-01-02", v)
		if err != nil {
			return api.Error(ctx, fiber.StatusBadRequest, "from must be YYYY-MM-DD")
		}
		opts.From = &t
	}
	if v := ctx.Query("to"); v != "" {
		t, err := time.Parse("2006-01-02", v)
		if err != nil {
			return api.Error(ctx, fiber.StatusBadRequest, "to must be YYYY-MM-DD")
		}
		opts.To = &t
	}

	reports, total, err := c.Service.List(ctx.Context(), opts)
	if err != nil {
		return api.Error(ctx, errStatus(err), err.Error())
	}
	return api.Success(ctx, fiber.Map{
		"reports": reports,
		"total":   total,
	})
}

func (c *ReportController) Get(ctx *fiber.Ctx) error {
	r, err := c.Service.Get(ctx.Context(), ctx.Params("id"))
	if err != nil {
		return api.Error(ctx, errStatus(err), "Report not found")
	}
	return api.Success(ctx, r)
}

func (c *ReportController) Update(ctx *fiber.Ctx) error {
	var in ReportUpdateInput
	if err := ctx.BodyParser(&in); err != nil {
		return api.Error(ctx, fiber.StatusBadRequest, "Invalid request body")
	}

	r, err := c.Service.Update(ctx.Context(), ctx.Params("id"), &in)
	if err != nil {
		return api.Error(ctx, errStatus(err), err.Error())
	}
	return api.Success(ctx, r)
}

func (c *ReportController) Delete(ctx *fiber.Ctx) error {
	if err := c.Service.Delete(ctx.Context(), ctx.Params("id")); err != nil {
		return api.Error(ctx, errStatus(err), err.Error())
	}
	return api.SuccessMessage(ctx, nil, "Report deleted")
}

func (c *ReportController) Regenerate(ctx *fiber.Ctx) error {
	r, err := c.Service.Regenerate(ctx.Context(), ctx.Params("id"))
	if err != nil {
		return api.Error(ctx, errStatus(err), err.Error())
	}
	if r.Status == StatusFailed {
		return ctx.JSON(api.Response{Success: false, Data: r, Message: r.ErrorMessage})
	}
	return api.Success(ctx, r)
}

// Download returns the stored data re-rendered in the requested format
func (c *ReportController) Download(ctx *fiber.Ctx) error {
	format := ctx.Query("format")
	out, err := c.Service.Download(ctx.Context(), ctx.Params("id"), format)
	if err != nil {
		return api.Error(ctx, errStatus(err), err.Error())
	}
	return api.Success(ctx, out)
}

// Export streams the stored data as a CSV or XLSX attachment
func (c *ReportController) Export(ctx *fiber.Ctx) error {
	id := ctx.Params("id")
	format := ctx.Query("format", FormatCSV)

	switch format {
	case FormatCSV:
		data, filename, err := c.Service.ExportCSV(ctx.Context(), id)
		if err != nil {
			return api.Error(ctx, errStatus(err), err.Error())
		}
		ctx.Set("Content-Type", "text/csv")
		ctx.Set("Content-Disposition", fmt.Sprintf("attachment; filename=%s", filename))
		return ctx.Send(data)
	case FormatExcel:
		data, filename, err := c.Service.ExportExcel(ctx.Context(), id)
		if err != nil {
			return api.Error(ctx, errStatus(err), err.Error())
		}
		ctx.Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
		ctx.Set("Content-Disposition", fmt.Sprintf("attachment; filename=%s", filename))
		return ctx.Send(data)
	default:
		return api.Error(ctx, fiber.StatusBadRequest, fmt.Sprintf("unsupported export format %q", format))
	}
}

func (c *ReportController) Statistics(ctx *fiber.Ctx) error {
	stats, err := c.Service.Statistics(ctx.Context())
	if err != nil {
		return api.Error(ctx, errStatus(err), err.Error())
	}
	return api.Success(ctx, stats)
}

func (c *ReportController) Scheduled(ctx *fiber.Ctx) error {
	reports, err := c.Service.Scheduled(ctx.Context())
	if err != nil {
		return api.Error(ctx, errStatus(err), err.Error())
	}
	return api.Success(ctx, reports)
}

// ExecuteScheduled triggers the batch sweep over due recurring reports
func (c *ReportController) ExecuteScheduled(ctx *fiber.Ctx) error {
	result, err := c.Service.ExecuteScheduled(ctx.Context())
	if err != nil {
		return api.Error(ctx, errStatus(err), err.Error())
	}
	return api.Success(ctx, result)
}
