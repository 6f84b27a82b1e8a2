package fx

import (
	"database/sql"

	"card-battle/internal/catalog"
	"card-battle/internal/config"
	"card-battle/internal/database"
	"card-battle/internal/db"
	"card-battle/internal/logger"
	"card-battle/internal/repository"
	"card-battle/internal/server"
	"card-battle/internal/service"

	"go.uber.org/fx"
)

func ProvideQueries(sqlDB *sql.DB) *db.Queries {
	return db.New(sqlDB)
}

var Module = fx.Options(
	logger.Module,
	config.Module,
	fx.Provide(database.New),
	fx.Provide(ProvideQueries),
	// store
	fx.Provide(repository.NewStore),
	// reference data
	fx.Provide(catalog.NewFetcher),
	fx.Invoke(catalog.Bootstrap),
	// engine
	fx.Provide(service.NewOpponentPolicy),
	fx.Provide(service.NewMatchStateMachine),
	fx.Provide(service.NewPlayResolver),
	// svc
	fx.Provide(service.NewCatalogService),
	fx.Provide(service.NewDeckService),
	fx.Provide(service.NewMatchService),
	// server
	fx.Provide(server.NewBattleServer),
)
