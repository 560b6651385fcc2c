package health

import (
	"context"
	"fmt"
	"time"

	"github.com/cloudmart/catalog-service/internal/cache"
	"github.com/cloudmart/catalog-service/internal/config"
	"github.com/hellofresh/health-go/v5"
	"github.com/hellofresh/health-go/v5/checks/postgres"
)

const (
	ComponentName    = "catalog-service"
	ComponentVersion = "1.0.0"
)

// NewHealthHandler reports Postgres as a hard dependency. Redis is only
// checked while the cache is live, and its failure marks the service as
// partially available rather than down.
func NewHealthHandler(cfg *config.Config, store cache.Cache) (*health.Health, error) {

	checks := []health.Config{
		{
			Name:      "database",
			Timeout:   3 * time.Second,
			SkipOnErr: false,
			Check: postgres.New(postgres.Config{
				DSN: cfg.Database.GetDSN(),
			}),
		},
	}

	if store != nil && store.Enabled() {
		checks = append(checks, health.Config{
			Name:      "redis",
			Timeout:   2 * time.Second,
			SkipOnErr: true,
			Check:     CacheCheck(store),
		})
	}

	h, err := health.New(
		health.WithComponent(health.Component{
			Name:    ComponentName,
			Version: ComponentVersion,
		}),
		health.WithSystemInfo(),
		health.WithChecks(checks...),
	)

	if err != nil {
		return nil, fmt.Errorf("failed to create health instance: %w", err)
	}

	return h, nil
}

func CacheCheck(store cache.Cache) func(ctx context.Context) error {
	return func(ctx context.Context) error {
		if err := store.Ping(ctx); err != nil {
			return fmt.Errorf("redis ping failed: %w", err)
		}

		return nil
	}
}
