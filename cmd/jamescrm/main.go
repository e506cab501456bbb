// @title           JamesCRM API
// @version         1.0
// @description     JamesCRM quote lifecycle and delivery API

// @host      localhost:8080
// @BasePath  /api
// @Schemes   http https

package main

import (
	"github.com/bwmarrin/snowflake"
	"github.com/jperram92/JamesCRM-sub003/internal/audit"
	"github.com/jperram92/JamesCRM-sub003/internal/clock"
	"github.com/jperram92/JamesCRM-sub003/internal/config"
	"github.com/jperram92/JamesCRM-sub003/internal/crm"
	"github.com/jperram92/JamesCRM-sub003/internal/delivery"
	"github.com/jperram92/JamesCRM-sub003/internal/document"
	"github.com/jperram92/JamesCRM-sub003/internal/events"
	"github.com/jperram92/JamesCRM-sub003/internal/migration"
	"github.com/jperram92/JamesCRM-sub003/internal/observability"
	"github.com/jperram92/JamesCRM-sub003/internal/observability/logger"
	"github.com/jperram92/JamesCRM-sub003/internal/observability/metrics"
	"github.com/jperram92/JamesCRM-sub003/internal/quote"
	"github.com/jperram92/JamesCRM-sub003/internal/seed"
	"github.com/jperram92/JamesCRM-sub003/internal/server"
	"github.com/jperram92/JamesCRM-sub003/pkg/db"
	"go.uber.org/fx"
	"gorm.io/gorm"
)

func main() {
	app := fx.New(
		config.Module,
		logger.Module,
		observability.Module,
		fx.Provide(registerSnowflake),
		db.Module,
		clock.Module,

		fx.Provide(events.NewOutbox),
		crm.Module,
		document.Module,
		delivery.Module,
		audit.Module,
		quote.Module,

		fx.Invoke(func(cfg config.Config) {
			metrics.DeliveryWithConfig(metrics.Config{
				ServiceName: "jamescrm",
				Environment: cfg.Environment,
			})
		}),
		fx.Invoke(func(conn *gorm.DB) error {
			sqlDB, err := conn.DB()
			if err != nil {
				return err
			}
			return migration.RunMigrations(sqlDB)
		}),
		seed.Module,

		fx.Provide(server.NewEngine),
		fx.Provide(server.NewServer),
		fx.Invoke(func(s *server.Server) {
			s.RegisterAPIRoutes()
		}),
		fx.Invoke(server.RunHTTP),
	)
	app.Run()
}

func registerSnowflake() *snowflake.Node {
	node, err := snowflake.NewNode(1)
	if err != nil {
		panic(err)
	}
	return node
}
