package main

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/microfix/dashboard/internal/config"
	"github.com/microfix/dashboard/internal/infrastructure/db"
	"github.com/microfix/dashboard/internal/infrastructure/logger"
	"github.com/microfix/dashboard/internal/processing/links"
	mongoStorage "github.com/microfix/dashboard/internal/storage/mongo"
	postgresStorage "github.com/microfix/dashboard/internal/storage/postgres"
	sqliteStorage "github.com/microfix/dashboard/internal/storage/sqlite"
)

// initStorage connects the configured backend and returns its repository
// with a matching close func.
func initStorage(ctx context.Context, cfg *config.Config) (links.LinkRepository, func(), error) {
	var (
		repo    links.LinkRepository
		closeFn func()
		err     error
	)

	switch cfg.Storage.Backend {
	case config.StorageBackendPostgres:
		repo, closeFn, err = initPostgres(ctx, cfg)
	case config.StorageBackendSQLite:
		repo, closeFn, err = initSQLite(ctx, cfg)
	case config.StorageBackendMongo:
		repo, closeFn, err = initMongo(ctx, cfg)
	default:
		return nil, nil, fmt.Errorf("unknown storage backend %q", cfg.Storage.Backend)
	}
	if err != nil {
		return nil, nil, err
	}

	logger.Info("Storage backend selected", zap.String("backend", cfg.Storage.Backend))
	return repo, closeFn, nil
}

func initPostgres(ctx context.Context, cfg *config.Config) (links.LinkRepository, func(), error) {
	pgConn, err := db.ConnectPostgres(ctx, cfg.Postgres.DSN)
	if err != nil {
		return nil, nil, fmt.Errorf("connect postgres: %w", err)
	}

	repo, err := postgresStorage.NewLinksRepository(pgConn)
	if err != nil {
		pgConn.Close()
		return nil, nil, fmt.Errorf("init postgres links repository: %w", err)
	}
	return repo, pgConn.Close, nil
}

func initSQLite(ctx context.Context, cfg *config.Config) (links.LinkRepository, func(), error) {
	conn, err := db.OpenSQLite(ctx, cfg.SQLite.Path)
	if err != nil {
		return nil, nil, fmt.Errorf("open sqlite: %w", err)
	}

	repo, err := sqliteStorage.NewLinksRepository(conn)
	if err != nil {
		_ = conn.Close()
		return nil, nil, fmt.Errorf("init sqlite links repository: %w", err)
	}
	return repo, func() { _ = conn.Close() }, nil
}

func initMongo(ctx context.Context, cfg *config.Config) (links.LinkRepository, func(), error) {
	mongoConn, err := db.ConnectMongo(ctx, cfg.MongoDB.URI, cfg.MongoDB.Database)
	if err != nil {
		return nil, nil, fmt.Errorf("connect mongo: %w", err)
	}

	repo, err := mongoStorage.NewLinksRepository(mongoConn)
	if err != nil {
		_ = mongoConn.Disconnect()
		return nil, nil, fmt.Errorf("init mongo links repository: %w", err)
	}
	return repo, func() { _ = mongoConn.Disconnect() }, nil
}
