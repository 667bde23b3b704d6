package bootstrap

import (
	"context"
	"log/slog"
	"strings"

	"go.uber.org/fx"
	"gorm.io/gorm"

	"mcpgate/internal/bootstrap/config"
	"mcpgate/internal/bootstrap/database"
	"mcpgate/internal/bootstrap/logging"
	domainregistry "mcpgate/internal/domain/registry"
	"mcpgate/internal/infrastructure/events"
	sqliterepo "mcpgate/internal/infrastructure/persistence/sqlite/repository"
	sqliteuow "mcpgate/internal/infrastructure/persistence/sqlite/uow"
	"mcpgate/internal/ports"
	"mcpgate/internal/usecase/registry"
)

var Module = fx.Options(
	fx.Provide(provideConfig),
	fx.Provide(provideDatabase),
	fx.Provide(provideApp),
	fx.Provide(provideThresholds),
	fx.Provide(provideEventPublisher),
	fx.Provide(
		fx.Annotate(
			sqliterepo.NewRegistryRepository,
			fx.As(new(ports.RegistryRepository)),
		),
	),
	fx.Provide(
		fx.Annotate(
			sqliteuow.NewUnitOfWork,
			fx.As(new(ports.UnitOfWork)),
		),
	),
	fx.Provide(registry.NewService),
)

type configParams struct {
	fx.In

	Ctx        context.Context
	ConfigFile string `name:"configFile"`
}

func provideConfig(p configParams) (config.Config, error) {
	ctx := logging.WithAttrs(p.Ctx, slog.String("component", "bootstrap.fx"))
	return config.Load(ctx, p.ConfigFile)
}

func provideDatabase(lc fx.Lifecycle, ctx context.Context, cfg config.Config) (*gorm.DB, error) {
	logCtx := logging.WithAttrs(ctx, slog.String("component", "bootstrap.fx"))

	db, err := database.Open(logCtx, cfg.Database)
	if err != nil {
		return nil, err
	}

	lc.Append(fx.Hook{
		OnStop: func(_ context.Context) error {
			sqlDB, err := db.DB()
			if err != nil {
				return err
			}
			return sqlDB.Close()
		},
	})

	return db, nil
}

func provideApp(cfg config.Config, db *gorm.DB) *App {
	return &App{
		Config: cfg,
		DB:     db,
	}
}

func provideThresholds(cfg config.Config) domainregistry.Thresholds {
	return domainregistry.Thresholds{
		AutoApproveBelow: cfg.Policy.AutoApproveBelow,
		MaxRiskScore:     cfg.Policy.MaxRiskScore,
	}
}

// provideEventPublisher connects to NATS when an URL is configured and falls
// back to a no-op publisher otherwise, the gateway works without a broker.
func provideEventPublisher(lc fx.Lifecycle, ctx context.Context, cfg config.Config) (ports.EventPublisher, error) {
	logCtx := logging.WithAttrs(ctx, slog.String("component", "bootstrap.fx"))

	if strings.TrimSpace(cfg.Events.NATSURL) == "" {
		logging.Info(logCtx, "audit event publishing disabled")
		return events.NewNoopPublisher(), nil
	}

	publisher, err := events.NewNATSPublisher(cfg.Events.NATSURL, cfg.Events.SubjectPrefix)
	if err != nil {
		return nil, err
	}

	lc.Append(fx.Hook{
		OnStop: func(_ context.Context) error {
			return publisher.Close()
		},
	})

	logging.Info(logCtx, "audit event publishing enabled", slog.String("nats_url", cfg.Events.NATSURL))
	return publisher, nil
}
