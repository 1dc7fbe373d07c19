package app

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/jafarshop/productvariant/internal/config"
	"github.com/jafarshop/productvariant/internal/metrics"
	"github.com/jafarshop/productvariant/internal/repository"
	"github.com/jafarshop/productvariant/internal/service"
	"github.com/jafarshop/productvariant/internal/shopify"
)

// App holds the services shared by the HTTP server and the operator CLI
type App struct {
	Config       *config.Config
	Metrics      *metrics.Metrics
	Client       *shopify.Client
	Schemas      *service.SchemaResolver
	Reader       *service.ProductReader
	Duplicates   *service.DuplicateChecker
	Writer       *service.MetafieldSetter
	Orchestrator *service.Orchestrator
	Cleaner      *service.ProductCleaner
	Descriptions *service.DescriptionService
	Collections  *service.CollectionLister
	Access       *service.AccessChecker

	cache *service.RedisDefinitionCache
}

// New wires the services. repos may be nil, which disables the audit trail.
// The Redis definition cache is used when REDIS_URL is set; an unreachable Redis is logged and skipped.
func New(ctx context.Context, cfg *config.Config, repos *repository.Repositories, logger *zap.Logger) (*App, error) {
	if err := config.ValidateCollectionRules(cfg.CollectionRules); err != nil {
		return nil, fmt.Errorf("invalid collection rules: %w", err)
	}

	a := &App{Config: cfg, Metrics: metrics.NewMetrics()}
	a.Client = shopify.NewClient(cfg.Shopify, a.Metrics, logger)

	var cache service.DefinitionCache
	if cfg.Redis.URL != "" {
		redisCache, err := service.NewRedisDefinitionCache(ctx, cfg.Redis.URL, cfg.Redis.DefinitionTTL)
		if err != nil {
			logger.Warn("Definition cache disabled", zap.Error(err))
		} else {
			a.cache = redisCache
			cache = redisCache
			logger.Info("Definition cache enabled", zap.Duration("ttl", cfg.Redis.DefinitionTTL))
		}
	}

	var events repository.AssignmentEventRepository
	if repos != nil {
		events = repos.AssignmentEvent
	}

	mf := cfg.Metafields
	a.Schemas = service.NewSchemaResolver(a.Client, cfg.CollectionRules, mf.Namespace, cache, logger)
	a.Reader = service.NewProductReader(a.Client, a.Schemas, mf.Namespace, logger)
	a.Duplicates = service.NewDuplicateChecker(a.Client, mf.Namespace, logger)
	a.Writer = service.NewMetafieldSetter(a.Client, mf.Namespace, mf.Type, logger)
	a.Orchestrator = service.NewOrchestrator(a.Schemas, a.Duplicates, a.Writer, events, a.Metrics, logger)
	a.Cleaner = service.NewProductCleaner(a.Client, mf, cfg.CollectionRules, logger)
	a.Descriptions = service.NewDescriptionService(a.Client, mf, logger)
	a.Collections = service.NewCollectionLister(a.Client, a.Schemas.SupportedHandles(), logger)
	a.Access = service.NewAccessChecker(a.Client, logger)

	return a, nil
}

// Close releases the Redis connection when one was opened
func (a *App) Close() error {
	if a.cache != nil {
		return a.cache.Close()
	}
	return nil
}

// NewLogger builds the production logger in production and the development logger elsewhere, at LOG_LEVEL
func NewLogger(environment, level string) (*zap.Logger, error) {
	var zcfg zap.Config
	if environment == "production" {
		zcfg = zap.NewProductionConfig()
	} else {
		zcfg = zap.NewDevelopmentConfig()
	}
	if level != "" {
		lvl, err := zap.ParseAtomicLevel(level)
		if err != nil {
			return nil, fmt.Errorf("invalid LOG_LEVEL %q: %w", level, err)
		}
		zcfg.Level = lvl
	}
	return zcfg.Build()
}
