package datasource

import (
	"go-wms/internal/api"

	"github.com/gofiber/fiber/v2"
)

type DataSourceController struct {
	Registry *Registry
}

func NewDataSourceController(registry *Registry) *DataSourceController {
	return &DataSourceController{Registry: registry}
}

// List returns the full data source catalog
func (c *DataSourceController) List(ctx *fiber.Ctx) error {
	return api.Success(ctx, c.Registry.List())
}

// Get returns one data source by logical name
func (c *DataSourceController) Get(ctx *fiber.Ctx) error {
	name := ctx.Params("name")
	src, ok := c.Registry.Get(name)
	if !ok {
		return api.Error(ctx, fiber.StatusNotFound, "Data source not found")
	}
	return api.Success(ctx, src)
}
