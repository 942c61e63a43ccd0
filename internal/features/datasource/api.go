package datasource

import (
	"go-wms/internal/config"
	"go-wms/internal/middleware"

	"github.com/gofiber/fiber/v2"
)

type DataSourceApi struct {
	Controller *DataSourceController
	Config     *config.Config
}

func NewDataSourceApi(controller *DataSourceController, config *config.Config) *DataSourceApi {
	return &DataSourceApi{
		Controller: controller,
		Config:     config,
	}
}

func (api *DataSourceApi) Setup(app *fiber.App) {
	group := app.Group("/api/data-sources", middleware.AuthMiddleware(api.Config.SkipAuth))

	group.Get("/", api.Controller.List)
	group.Get("/:name", api.Controller.Get)
}
