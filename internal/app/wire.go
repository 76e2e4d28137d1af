//go:build wireinject
// +build wireinject

package app

import (
	"github.com/eslsoft/vocabook/internal/infrastructure/config"
	"github.com/eslsoft/vocabook/internal/infrastructure/database"
	"github.com/eslsoft/vocabook/internal/infrastructure/logging"
	"github.com/google/wire"
	"github.com/sirupsen/logrus"
)

var configSet = wire.NewSet(
	config.Load,
	logging.NewLogger,
	wire.Bind(new(logrus.FieldLogger), new(*logrus.Logger)),
)

var databaseSet = wire.NewSet(
	database.NewDB,
)

var storeSet = wire.NewSet(
	provideStore,
	provideBackup,
)

// InitializeBase loads configuration and builds the logger.
func InitializeBase() (*Base, error) {
	wire.Build(
		config.Load,
		logging.NewLogger,
		wire.Struct(new(Base), "Config", "Logger"),
	)
	return nil, nil
}

// Initialize builds the application container using Wire.
func Initialize() (*Container, func(), error) {
	wire.Build(
		configSet,
		databaseSet,
		storeSet,
		wire.Struct(new(Container), "Config", "Logger", "DB", "Store", "Backup"),
	)
	return nil, nil, nil
}
