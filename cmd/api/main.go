package main

import (
	"context"
	"fmt"
	"log"

	"go-wms/internal/api"
	"go-wms/internal/config"
	"go-wms/internal/database"
	"go-wms/internal/features/datasource"
	"go-wms/internal/features/report"
	"go-wms/internal/features/scheduler"
	"go-wms/internal/features/template"
	"go-wms/internal/logger"
	"go-wms/internal/middleware"
	"go-wms/pkg/utils"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/fx"
	"go.uber.org/fx/fxevent"
	"go.uber.org/zap"
)

// NewFiberServer creates a new Fiber app instance
func NewFiberServer() *fiber.App {
	app := fiber.New(fiber.Config{
		DisableStartupMessage: true,
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			code := fiber.StatusInternalServerError
			if e, ok := err.(*fiber.Error); ok {
				code = e.Code
			}
			return c.Status(code).JSON(api.Response{
				Success: false,
				Message: err.Error(),
			})
		},
	})

	app.Use(middleware.CORSMiddleware())

	return app
}

// AsRoute tags a constructor so Fx adds its result to the "routes" group
func AsRoute(f any) any {
	return fx.Annotate(
		f,
		fx.As(new(api.Route)),
		fx.ResultTags(`group:"routes"`),
	)
}

// RegisterAllRoutes takes the "routes" group and calls Setup() on each one
func RegisterAllRoutes(app *fiber.App, routes []api.Route) {
	for _, route := range routes {
		route.Setup(app)
	}
	log.Printf("Registered %d route groups\n", len(routes))
}

var RegisterAllRoutesWithAnnotation = fx.Annotate(
	RegisterAllRoutes,
	fx.ParamTags(``, `group:"routes"`),
)

// StartServer starts Fiber in a goroutine and shuts it down on exit
func StartServer(lc fx.Lifecycle, app *fiber.App, cfg *config.Config) {
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			utils.SetSecret(cfg.JWTSecret)
			go func() {
				port := fmt.Sprintf(":%s", cfg.Port)
				if err := app.Listen(port); err != nil {
					log.Fatalf("Server failed to start: %v", err)
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			return app.Shutdown()
		},
	})
}

func main() {
	fx.New(
		fx.Provide(
			config.LoadConfig,
			database.NewDatabase,
			database.NewWarehouseDB,
			logger.NewLogger,
			NewFiberServer,

			datasource.NewRegistry,
			datasource.NewDataSourceController,

			template.NewValidator,
			template.NewSampleGenerator,
			template.NewTemplateRepository,
			template.NewTemplateService,
			template.NewTemplateController,

			report.NewSQLPlanExecutor,
			report.NewReportRepository,
			report.NewReportService,
			report.NewReportController,

			AsRoute(api.NewHealthApi),
			AsRoute(datasource.NewDataSourceApi),
			AsRoute(template.NewTemplateApi),
			AsRoute(report.NewReportApi),
		),
		fx.Invoke(
			RegisterAllRoutesWithAnnotation,
			scheduler.NewScheduler,
			StartServer,
		),
		fx.WithLogger(func(l *zap.Logger) fxevent.Logger {
			return &fxevent.ZapLogger{Logger: l}
		}),
	).Run()
}
