package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"

	"entgo.io/ent/dialect"
	"github.com/eslsoft/vocabook/internal/adapter/csvstore"
	"github.com/eslsoft/vocabook/internal/adapter/sqlstore"
	"github.com/eslsoft/vocabook/internal/app"
	"github.com/eslsoft/vocabook/internal/dataset"
	"github.com/eslsoft/vocabook/internal/infrastructure/config"
	"github.com/eslsoft/vocabook/internal/infrastructure/database"
	"github.com/sirupsen/logrus"
)

// session is the store a command works against: a CSV directory when --dir
// is given, otherwise the configured database.
type session struct {
	store     dataset.Store
	sql       *sqlstore.Store
	container *app.Container
	cfg       *config.Config
	logger    logrus.FieldLogger
	target    string
	cleanup   func()
}

func (s *session) Close() {
	if s.cleanup != nil {
		s.cleanup()
	}
}

// openSession opens the CSV directory dir, or the database when dir is empty.
func openSession(ctx context.Context, dir string) (*session, error) {
	if dir != "" {
		base, err := app.InitializeBase()
		if err != nil {
			return nil, fmt.Errorf("加载配置失败: %w", err)
		}
		return newCSVSession(dir, base.Config, base.Logger), nil
	}
	return openDatabaseSession(ctx)
}

func openDatabaseSession(ctx context.Context) (*session, error) {
	container, cleanup, err := app.Initialize()
	if err != nil {
		return nil, fmt.Errorf("初始化应用失败: %w", err)
	}
	if err := database.Migrate(ctx, container.DB); err != nil {
		cleanup()
		return nil, fmt.Errorf("执行数据库迁移失败: %w", err)
	}
	target := container.Config.Database.Path
	if container.DB.Dialect != dialect.SQLite {
		target = fmt.Sprintf("%s/%s", container.Config.Database.Host, container.Config.Database.Name)
	}
	return &session{
		store:     container.Store,
		sql:       container.Store,
		container: container,
		cfg:       container.Config,
		logger:    container.Logger,
		target:    target,
		cleanup:   cleanup,
	}, nil
}

func newCSVSession(dir string, cfg *config.Config, logger logrus.FieldLogger) *session {
	if logger == nil {
		l := logrus.New()
		l.SetOutput(io.Discard)
		logger = l
	}
	if cfg == nil {
		cfg = &config.Config{}
	}
	return &session{
		store:  csvstore.New(dir, csvstore.WithLogger(logger)),
		cfg:    cfg,
		logger: logger,
		target: dir,
	}
}

// load reads the whole dataset from the session store.
func (s *session) load(ctx context.Context) (*dataset.Dataset, error) {
	ds, err := dataset.Load(ctx, s.store)
	if err != nil {
		return nil, fmt.Errorf("读取数据集失败 (%s): %w", s.target, err)
	}
	return ds, nil
}

// loadOrEmpty is load, except that a CSV directory without files yields an empty dataset.
func (s *session) loadOrEmpty(ctx context.Context) (*dataset.Dataset, error) {
	ds, err := dataset.Load(ctx, s.store)
	if s.sql == nil && errors.Is(err, fs.ErrNotExist) {
		return dataset.New(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("读取数据集失败 (%s): %w", s.target, err)
	}
	return ds, nil
}

func (s *session) save(ctx context.Context, ds *dataset.Dataset) error {
	ds.Sort()
	if err := dataset.Save(ctx, s.store, ds); err != nil {
		return fmt.Errorf("写入数据集失败 (%s): %w", s.target, err)
	}
	return nil
}
