package main

import (
	"context"
	"errors"

	"go-wms/internal/config"
	"go-wms/internal/database"
	"go-wms/internal/features/template"
	"go-wms/internal/logger"

	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/fx"
	"go.uber.org/fx/fxevent"
	"go.uber.org/zap"
)

func demoTemplates() []template.ReportTemplate {
	return []template.ReportTemplate{
		{
			Code:        "zone_utilization",
			Name:        "Zone Utilization",
			Description: "Capacity and utilization per warehouse zone",
			Category:    template.CategoryOperational,
			DataSources: []string{"warehouse_zones"},
			FieldsConfig: []template.FieldSpec{
				{Field: "name", Label: "Zone", Type: template.FieldTypeString, Required: true},
				{Field: "type", Label: "Type", Type: template.FieldTypeString, Required: true},
				{Field: "capacity", Label: "Capacity", Type: template.FieldTypeInteger, Required: true},
				{Field: "utilization_rate", Label: "Utilization", Type: template.FieldTypePercentage, Required: true},
			},
			FiltersConfig: []template.FilterSpec{
				{Field: "date_range", Label: "Created", Type: template.FilterTypeDateRange},
				{Field: "zone_type", Label: "Zone Type", Type: template.FilterTypeDropdown,
					Options: []string{"receiving", "storage", "picking", "shipping"}},
			},
			ChartConfig: &template.ChartSpec{
				DefaultChart:    template.ChartTypeBar,
				AvailableCharts: []string{template.ChartTypeBar, template.ChartTypePie, template.ChartTypeTable},
			},
			IsPublic: true,
			IsActive: true,
		},
		{
			Code:        "inventory_value",
			Name:        "Inventory Value",
			Description: "Stock value by SKU with zone assignment",
			Category:    template.CategoryFinancial,
			DataSources: []string{"inventory_items", "warehouse_zones"},
			FieldsConfig: []template.FieldSpec{
				{Field: "sku", Label: "SKU", Type: template.FieldTypeString, Required: true},
				{Field: "quantity", Label: "Quantity", Type: template.FieldTypeInteger, Required: true},
				{Field: "unit_cost", Label: "Unit Cost", Type: template.FieldTypeCurrency, Required: true},
				{Field: "total_value", Label: "Total Value", Type: template.FieldTypeCurrency, Required: true},
				{Field: "name", Label: "Zone", Type: template.FieldTypeString, Required: false},
			},
			FiltersConfig: []template.FilterSpec{
				{Field: "status", Label: "Status", Type: template.FilterTypeDropdown,
					Options: []string{"available", "reserved", "quarantine"}},
			},
			IsPublic: true,
			IsActive: true,
		},
		{
			Code:        "equipment_maintenance",
			Name:        "Equipment Maintenance",
			Description: "Equipment state and maintenance history",
			Category:    template.CategoryCompliance,
			DataSources: []string{"equipment", "iot_sensors"},
			FieldsConfig: []template.FieldSpec{
				{Field: "name", Label: "Equipment", Type: template.FieldTypeString, Required: true},
				{Field: "type", Label: "Type", Type: template.FieldTypeString, Required: true},
				{Field: "status", Label: "Status", Type: template.FieldTypeString, Required: true},
				{Field: "battery_level", Label: "Battery", Type: template.FieldTypePercentage, Required: false},
				{Field: "last_maintenance_at", Label: "Last Maintenance", Type: template.FieldTypeDate, Required: false},
			},
			FiltersConfig: []template.FilterSpec{
				{Field: "equipment_type", Label: "Equipment Type", Type: template.FilterTypeDropdown,
					Options: []string{"forklift", "conveyor", "scanner", "agv"}},
				{Field: "date_range", Label: "Created", Type: template.FilterTypeDateRange},
			},
			IsPublic: false,
			IsActive: true,
		},
	}
}

// Seed inserts demo report templates, skipping codes that already exist
func Seed(
	lc fx.Lifecycle,
	repo template.TemplateRepository,
	logger *zap.Logger,
	shutdowner fx.Shutdowner,
) {
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			go func() {
				defer func() {
					if err := shutdowner.Shutdown(); err != nil {
						logger.Error("Failed to shutdown", zap.Error(err))
					}
				}()

				logger.Info("Seeding report templates...")
				for _, t := range demoTemplates() {
					if _, err := repo.GetByCode(context.Background(), t.Code); err == nil {
						logger.Info("Template exists, skipping", zap.String("code", t.Code))
						continue
					} else if !errors.Is(err, mongo.ErrNoDocuments) {
						logger.Error("Failed to check template", zap.String("code", t.Code), zap.Error(err))
						continue
					}

					tmpl := t
					tmpl.CreatedBy = "seed"
					if err := repo.Create(context.Background(), &tmpl); err != nil {
						logger.Error("Failed to create template", zap.String("code", t.Code), zap.Error(err))
						continue
					}
					logger.Info("Created template", zap.String("code", t.Code))
				}
				logger.Info("Seeding complete")
			}()
			return nil
		},
	})
}

func main() {
	fx.New(
		fx.Provide(
			config.LoadConfig,
			database.NewDatabase,
			logger.NewLogger,
			template.NewTemplateRepository,
		),
		fx.Invoke(Seed),
		fx.WithLogger(func(l *zap.Logger) fxevent.Logger {
			return &fxevent.ZapLogger{Logger: l}
		}),
	).Run()
}
