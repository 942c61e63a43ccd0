package template

import (
	"go-wms/internal/config"
	"go-wms/internal/middleware"

	"github.com/gofiber/fiber/v2"
)

type TemplateApi struct {
	Controller *TemplateController
	Config     *config.Config
}

func NewTemplateApi(controller *TemplateController, config *config.Config) *TemplateApi {
	return &TemplateApi{
		Controller: controller,
		Config:     config,
	}
}

func (api *TemplateApi) Setup(app *fiber.App) {
	group := app.Group("/api/report-templates", middleware.AuthMiddleware(api.Config.SkipAuth))

	group.Get("/", api.Controller.List)
	group.Post("/", api.Controller.Create)
	group.Post("/validate", api.Controller.Validate)
	group.Get("/meta/categories", api.Controller.Categories)
	group.Get("/meta/field-types", api.Controller.FieldTypes)
	group.Get("/meta/filter-types", api.Controller.FilterTypes)
	group.Get("/:id", api.Controller.Get)
	group.Put("/:id", api.Controller.Update)
	group.Delete("/:id", middleware.RequireRole("admin"), api.Controller.Delete)
	group.Post("/:id/clone", api.Controller.Clone)
	group.Get("/:id/preview", api.Controller.Preview)
}
