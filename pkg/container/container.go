package container

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"magazine-catalog/internal/config"
	"magazine-catalog/internal/domains/catalog"
	catalogHandler "magazine-catalog/internal/domains/catalog/handler"
	catalogService "magazine-catalog/internal/domains/catalog/service"
	infraCache "magazine-catalog/internal/infrastructure/cache"
	"magazine-catalog/internal/infrastructure/database"
	"magazine-catalog/pkg/cache"
	"magazine-catalog/pkg/jwt"
	"magazine-catalog/pkg/logger"
)

// ========================================
// CONTAINER STRUCT
// ========================================

// Container is the root of the dependency graph.
type Container struct {
	// ========================================
	// INFRASTRUCTURE LAYER
	// ========================================
	Config     *config.Config
	Gateway    *database.Gateway // storage gateway over the configured driver
	Cache      cache.Cache       // row cache; nil when redis is disabled or unreachable
	JWTManager *jwt.Manager

	// ========================================
	// SERVICE LAYER
	// ========================================
	CatalogService catalog.Service

	// ========================================
	// HANDLER LAYER (HTTP)
	// ========================================
	CatalogHandler *catalogHandler.CatalogHandler

	log zerolog.Logger
}

// ========================================
// CONSTRUCTOR: BUILD CONTAINER
// ========================================

// NewContainer loads configuration, connects to the store and the
// optional cache, then wires services and handlers.
//
// Order matters:
// 1. Config
// 2. Infrastructure (gateway, cache, jwt)
// 3. Services
// 4. Handlers
func NewContainer(ctx context.Context) (*Container, error) {
	log := logger.With("container")
	log.Info().Msg("initializing container")

	// ========================================
	// STEP 1: LOAD CONFIGURATION
	// ========================================
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	log.Info().Str("environment", cfg.App.Environment).Msg("config loaded")

	// ========================================
	// STEP 2: INITIALIZE DATABASE
	// ========================================
	dbConfig, err := config.LoadDatabaseConfig()
	if err != nil {
		return nil, fmt.Errorf("failed to load database config: %w", err)
	}

	connectCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	gw, err := database.Open(connectCtx, dbConfig, logger.With("gateway"))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	log.Info().Str("driver", gw.Driver()).Msg("database connected")

	// ========================================
	// STEP 3: INITIALIZE CACHE
	// ========================================
	var rows cache.Cache
	if cfg.Redis.Enabled {
		rc := infraCache.NewRedisCache(cfg.Redis.Host, cfg.Redis.Password, cfg.Redis.DB)
		if err := rc.Connect(ctx); err != nil {
			// The row cache is optional; run without it.
			log.Warn().Err(err).Msg("redis connection failed (non-critical)")
			_ = rc.Close()
		} else {
			rows = rc
		}
	}

	return New(cfg, gw, rows), nil
}

// New wires services and handlers around already opened infrastructure.
func New(cfg *config.Config, gw *database.Gateway, rows cache.Cache) *Container {
	c := &Container{
		Config:  cfg,
		Gateway: gw,
		Cache:   rows,
		log:     logger.With("container"),
	}

	c.JWTManager = jwt.NewManager(cfg.JWT.Secret, cfg.JWT.Issuer, cfg.JWT.TTL)
	c.initServices()
	c.initHandlers()

	c.log.Info().Bool("row_cache", rows != nil).Msg("container initialized")
	return c
}

// ========================================
// PRIVATE INITIALIZATION METHODS
// ========================================

func (c *Container) initServices() {
	opts := []catalog.Option{catalog.WithLogger(logger.With("catalog"))}
	if c.Cache != nil {
		opts = append(opts, catalog.WithRowCache(c.Cache, c.Config.Redis.TTL))
	}
	c.CatalogService = catalogService.NewCatalogService(c.Gateway, opts...)
}

func (c *Container) initHandlers() {
	c.CatalogHandler = catalogHandler.NewCatalogHandler(c.CatalogService, c.Gateway)
}

// Cleanup releases the store and the cache. Call on shutdown.
func (c *Container) Cleanup() {
	if c.Gateway != nil {
		if err := c.Gateway.Close(); err != nil {
			c.log.Warn().Err(err).Msg("failed to close database")
		} else {
			c.log.Info().Msg("database connections closed")
		}
	}

	if rc, ok := c.Cache.(*infraCache.RedisCache); ok {
		if err := rc.Close(); err != nil {
			c.log.Warn().Err(err).Msg("failed to close redis")
		} else {
			c.log.Info().Msg("redis connections closed")
		}
	}
}
