package database

import (
	"context"
	"database/sql"
	"log"

	"go-wms/internal/config"

	_ "github.com/lib/pq"
	"go.uber.org/fx"
)

// WarehouseDB wraps the Postgres connection holding the warehouse
// operational tables (zones, equipment, shipments, inventory, sensors).
// Report queries run here; template and report records live in Mongo.
type WarehouseDB struct {
	DB *sql.DB
}

// NewWarehouseDB opens the warehouse Postgres connection with lifecycle management
func NewWarehouseDB(lc fx.Lifecycle, cfg *config.Config) (*WarehouseDB, error) {
	db, err := sql.Open("postgres", cfg.WarehouseDSN)
	if err != nil {
		return nil, err
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			if err := db.PingContext(ctx); err != nil {
				return err
			}
			log.Println("Connected to warehouse Postgres!")
			return nil
		},
		OnStop: func(ctx context.Context) error {
			log.Println("Closing warehouse Postgres connection...")
			return db.Close()
		},
	})

	return &WarehouseDB{DB: db}, nil
}
