package template

import (
	"errors"
	"strconv"

	"go-wms/internal/api"
	"go-wms/internal/middleware"

	"github.com/gofiber/fiber/v2"
	"go.mongodb.org/mongo-driver/mongo"
)

type TemplateController struct {
	Service TemplateService
}

func NewTemplateController(service TemplateService) *TemplateController {
	return &TemplateController{Service: service}
}

func errStatus(err error) int {
	switch {
	case IsValidationError(err):
		return fiber.StatusBadRequest
	case errors.Is(err, mongo.ErrNoDocuments):
		return fiber.StatusNotFound
	default:
		return fiber.StatusInternalServerError
	}
}

// Create stores a new template after full configuration validation
func (c *TemplateController) Create(ctx *fiber.Ctx) error {
	userID, ok := middleware.UserID(ctx)
	if !ok {
		return api.Error(ctx, fiber.StatusUnauthorized, "User identity required")
	}

	var in TemplateInput
	if err := ctx.BodyParser(&in); err != nil {
		return api.Error(ctx, fiber.StatusBadRequest, "Invalid request body")
	}

	t, err := c.Service.Create(ctx.Context(), &in, userID)
	if err != nil {
		return api.Error(ctx, errStatus(err), err.Error())
	}
	return api.Created(ctx, t)
}

// List supports category/is_active/is_public filters, free-text search,
// sorting and optional pagination
func (c *TemplateController) List(ctx *fiber.Ctx) error {
	opts := ListOptions{
		Category:  ctx.Query("category"),
		Search:    ctx.Query("search"),
		SortBy:    ctx.Query("sort_by"),
		SortOrder: ctx.Query("sort_order"),
		Page:      ctx.QueryInt("page"),
		Limit:     ctx.QueryInt("limit"),
	}
	if v := ctx.Query("is_active"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return api.Error(ctx, fiber.StatusBadRequest, "is_active must be a boolean")
		}
		opts.IsActive = &b
	}
	if v := ctx.Query("is_public"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return api.Error(ctx, fiber.StatusBadRequest, "is_public must be a boolean")
		}
		opts.IsPublic = &b
	}

	templates, total, err := c.Service.List(ctx.Context(), opts)
	if err != nil {
		return api.Error(ctx, errStatus(err), err.Error())
	}
	return api.Success(ctx, fiber.Map{
		"templates": templates,
		"total":     total,
	})
}

func (c *TemplateController) Get(ctx *fiber.Ctx) error {
	t, err := c.Service.Get(ctx.Context(), ctx.Params("id"))
	if err != nil {
		return api.Error(ctx, errStatus(err), "Report template not found")
	}
	return api.Success(ctx, t)
}

func (c *TemplateController) Update(ctx *fiber.Ctx) error {
	var in TemplateUpdateInput
	if err := ctx.BodyParser(&in); err != nil {
		return api.Error(ctx, fiber.StatusBadRequest, "Invalid request body")
	}

	t, err := c.Service.Update(ctx.Context(), ctx.Params("id"), &in)
	if err != nil {
		return api.Error(ctx, errStatus(err), err.Error())
	}
	return api.Success(ctx, t)
}

func (c *TemplateController) Delete(ctx *fiber.Ctx) error {
	if err := c.Service.Delete(ctx.Context(), ctx.Params("id")); err != nil {
		return api.Error(ctx, errStatus(err), err.Error())
	}
	return api.SuccessMessage(ctx, nil, "Report template deleted")
}

func (c *TemplateController) Clone(ctx *fiber.Ctx) error {
	userID, ok := middleware.UserID(ctx)
	if !ok {
		return api.Error(ctx, fiber.StatusUnauthorized, "User identity required")
	}

	var in CloneInput
	if err := ctx.BodyParser(&in); err != nil {
		return api.Error(ctx, fiber.StatusBadRequest, "Invalid request body")
	}

	t, err := c.Service.Clone(ctx.Context(), ctx.Params("id"), &in, userID)
	if err != nil {
		return api.Error(ctx, errStatus(err), err.Error())
	}
	return api.Created(ctx, t)
}

// Validate runs the dry-run configuration check without persisting anything
func (c *TemplateController) Validate(ctx *fiber.Ctx) error {
	var in TemplateInput
	if err := ctx.BodyParser(&in); err != nil {
		return api.Error(ctx, fiber.StatusBadRequest, "Invalid request body")
	}
	if err := c.Service.Validate(&in); err != nil {
		return api.Error(ctx, errStatus(err), err.Error())
	}
	return api.SuccessMessage(ctx, nil, "Template configuration is valid")
}

func (c *TemplateController) Preview(ctx *fiber.Ctx) error {
	rows := ctx.QueryInt("rows", 5)
	result, err := c.Service.Preview(ctx.Context(), ctx.Params("id"), rows)
	if err != nil {
		return api.Error(ctx, errStatus(err), err.Error())
	}
	return api.Success(ctx, result)
}

func (c *TemplateController) Categories(ctx *fiber.Ctx) error {
	return api.Success(ctx, Categories())
}

func (c *TemplateController) FieldTypes(ctx *fiber.Ctx) error {
	return api.Success(ctx, FieldTypes())
}

func (c *TemplateController) FilterTypes(ctx *fiber.Ctx) error {
	return api.Success(ctx, FilterTypes())
}
