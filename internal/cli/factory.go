package cli

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/aretw0/intake/internal/config"
	"github.com/aretw0/intake/pkg/adapters/dynamodb"
	"github.com/aretw0/intake/pkg/adapters/memory"
	"github.com/aretw0/intake/pkg/adapters/redis"
	"github.com/aretw0/intake/pkg/adapters/sqlserver"
	"github.com/aretw0/intake/pkg/metrics"
	"github.com/aretw0/intake/pkg/ports"
	"github.com/aretw0/intake/pkg/validation"
	backend "github.com/redis/go-redis/v9"
)

// Backend bundles the store, locker, metrics and validator built from a Config.
type Backend struct {
	Store     ports.ResultStore
	Locker    ports.Locker
	Metrics   *metrics.Collector
	Validator *validation.Validator
}

// Close releases the store.
func (b *Backend) Close() error {
	return b.Store.Close()
}

// OpenBackend connects the configured store and builds a validator on top of it.
func OpenBackend(ctx context.Context, cfg config.Config, logger *slog.Logger) (*Backend, error) {
	store, locker, err := openStore(ctx, cfg)
	if err != nil {
		return nil, err
	}
	logger.Debug("Result store ready", "kind", cfg.Store.Kind)

	collector := metrics.New()
	v := validation.New(store,
		validation.WithLocker(locker),
		validation.WithLockTTL(cfg.LockTTL),
		validation.WithObserver(collector),
		validation.WithLogger(logger),
		validation.WithHeaders(cfg.AllowedHeaders),
		validation.WithMaxFileKB(cfg.MaxFileKB),
	)

	return &Backend{
		Store:     store,
		Locker:    locker,
		Metrics:   collector,
		Validator: v,
	}, nil
}

func openStore(ctx context.Context, cfg config.Config) (ports.ResultStore, ports.Locker, error) {
	switch cfg.Store.Kind {
	case config.StoreMemory, "":
		return memory.NewStore(), memory.NewLocker(), nil

	case config.StoreRedis:
		rc := cfg.Store.Redis
		client := backend.NewClient(&backend.Options{
			Addr:     rc.Addr,
			Password: rc.Password,
			DB:       rc.DB,
		})
		if err := client.Ping(ctx).Err(); err != nil {
			client.Close()
			return nil, nil, fmt.Errorf("failed to reach redis at %s: %w", rc.Addr, err)
		}
		store := redis.NewFromClient(client, redis.WithPrefix(rc.Prefix), redis.WithTTL(rc.TTL))
		return store, redis.NewLocker(client, rc.Prefix), nil

	case config.StoreSQLServer:
		sc := cfg.Store.SQLServer
		store, err := sqlserver.Open(ctx, sc.DSN, sqlserver.WithTable(sc.Table))
		if err != nil {
			return nil, nil, err
		}
		if sc.Migrate {
			if err := store.Migrate(ctx); err != nil {
				store.Close()
				return nil, nil, err
			}
		}
		return store, memory.NewLocker(), nil

	case config.StoreDynamoDB:
		dc := cfg.Store.DynamoDB
		store, err := dynamodb.Open(ctx, dynamodb.Config{
			Table:     dc.Table,
			Region:    dc.Region,
			Endpoint:  dc.Endpoint,
			AccessKey: dc.AccessKey,
			SecretKey: dc.SecretKey,
		})
		if err != nil {
			return nil, nil, err
		}
		return store, memory.NewLocker(), nil

	default:
		return nil, nil, fmt.Errorf("unknown store kind %q", cfg.Store.Kind)
	}
}
