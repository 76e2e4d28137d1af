package app

import (
	"github.com/eslsoft/vocabook/internal/adapter/sqlstore"
	"github.com/eslsoft/vocabook/internal/infrastructure/config"
	"github.com/eslsoft/vocabook/internal/infrastructure/database"
	"github.com/eslsoft/vocabook/internal/usecase/backup"
	"github.com/sirupsen/logrus"
)

// Base holds the dependencies every command needs, without opening a database.
type Base struct {
	Config *config.Config
	Logger *logrus.Logger
}

// Container aggregates the application dependencies produced by Wire.
type Container struct {
	Config *config.Config
	Logger *logrus.Logger
	DB     *database.DB
	Store  *sqlstore.Store
	Backup *backup.Service
}

func provideStore(db *database.DB, logger *logrus.Logger) *sqlstore.Store {
	return sqlstore.New(db, sqlstore.WithLogger(logger))
}

func provideBackup(db *database.DB) (*backup.Service, error) {
	return backup.NewService(db)
}
