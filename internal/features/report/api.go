package report

import (
	"go-wms/internal/config"
	"go-wms/internal/middleware"

	"github.com/gofiber/fiber/v2"
)

type ReportApi struct {
	Controller *ReportController
	Config     *config.Config
}

func NewReportApi(controller *ReportController, config *config.Config) *ReportApi {
	return &ReportApi{
		Controller: controller,
		Config:     config,
	}
}

func (api *ReportApi) Setup(app *fiber.App) {
	group := app.Group("/api/custom-reports", middleware.AuthMiddleware(api.Config.SkipAuth))

	group.Get("/", api.Controller.List)
	group.Post("/generate", api.Controller.Generate)
	group.Get("/statistics", api.Controller.Statistics)
	group.Get("/scheduled", api.Controller.Scheduled)
	group.Post("/execute-scheduled", middleware.RequireRole("admin"), api.Controller.ExecuteScheduled)
	group.Get("/:id", api.Controller.Get)
	group.Put("/:id", api.Controller.Update)
	group.Delete("/:id", api.Controller.Delete)
	group.Post("/:id/regenerate", api.Controller.Regenerate)
	group.Get("/:id/download", api.Controller.Download)
	group.Get("/:id/export", api.Controller.Export)
}
