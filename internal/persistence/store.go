// Package persistence selects and opens the configured record store.
package persistence

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/samthatcode/boilerplate-project-exercisetracker/internal/config"
	"github.com/samthatcode/boilerplate-project-exercisetracker/internal/domain"
	"github.com/samthatcode/boilerplate-project-exercisetracker/internal/persistence/memory"
	"github.com/samthatcode/boilerplate-project-exercisetracker/internal/persistence/mongo"
	"github.com/samthatcode/boilerplate-project-exercisetracker/internal/persistence/postgres"
)

// Store is a record store with an explicit lifecycle.
type Store interface {
	domain.Repository
	Ping(ctx context.Context) error
	Close(ctx context.Context) error
}

var (
	_ Store = (*memory.Repository)(nil)
	_ Store = (*mongo.Repository)(nil)
	_ Store = (*postgres.Repository)(nil)
)

// Open connects the backend named by cfg.StoreBackend and returns once it is ready.
func Open(ctx context.Context, cfg config.Config, logger *zap.Logger) (Store, error) {
	switch cfg.StoreBackend {
	case config.BackendMongo:
		logger.Info("using mongo store", zap.String("database", cfg.MongoDatabase))
		repo, err := mongo.Open(ctx, cfg.MongoURL, cfg.MongoDatabase, cfg.MongoConnectTimeout, cfg.StoreMaxConns, logger)
		if err != nil {
			return nil, fmt.Errorf("connect to mongo: %w", err)
		}
		return repo, nil
	case config.BackendPostgres:
		logger.Info("using postgres store")
		repo, err := postgres.Open(ctx, cfg.PostgresURL, cfg.StoreMaxConns)
		if err != nil {
			return nil, fmt.Errorf("connect to postgres: %w", err)
		}
		return repo, nil
	case config.BackendMemory:
		logger.Warn("using in-memory store; data is lost on restart")
		return memory.NewRepository(), nil
	default:
		return nil, fmt.Errorf("unknown store backend %q", cfg.StoreBackend)
	}
}
