package di

import (
	"context"
	"fmt"
	"sync"
	"time"

	"country-cache/internal/countries"
	"country-cache/internal/countries/config"
	"country-cache/internal/shared/logger"

	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/mongo"
)

// Container represents a dependency injection container with proper lifecycle management
type Container struct {
	mu sync.RWMutex

	// Module instances
	CountriesModule *countries.CountriesModule

	// Connections
	MongoDB     *mongo.Database
	RedisClient *redis.Client

	// Configuration
	Config *config.Config

	// Logger
	Logger logger.Logger
}

// NewContainer creates a new DI container
func NewContainer() *Container {
	return &Container{}
}

// InitializeCountries initializes the countries module with its persistence
// and event-stream dependencies. redisClient may be nil.
func (c *Container) InitializeCountries(mongoDB *mongo.Database, redisClient *redis.Client, cfg *config.Config) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if mongoDB == nil {
		return fmt.Errorf("MongoDB must be connected before the countries module")
	}

	c.MongoDB = mongoDB
	c.RedisClient = redisClient
	c.Config = cfg

	if c.Logger == nil {
		c.Logger = logger.NewLogger()
	}

	module, err := countries.NewCountriesModule(mongoDB, redisClient, cfg, c.Logger)
	if err != nil {
		return fmt.Errorf("failed to create countries module: %w", err)
	}

	c.CountriesModule = module
	return nil
}

// GetCountriesModule returns the countries module instance
func (c *Container) GetCountriesModule() *countries.CountriesModule {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.CountriesModule
}

// HealthCheck performs health checks on all registered services
func (c *Container) HealthCheck(ctx context.Context) error {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if c.MongoDB != nil {
		if err := c.MongoDB.Client().Ping(ctx, nil); err != nil {
			return fmt.Errorf("MongoDB health check failed: %w", err)
		}
	}

	if c.RedisClient != nil {
		if err := c.RedisClient.Ping(ctx).Err(); err != nil {
			return fmt.Errorf("Redis health check failed: %w", err)
		}
	}

	if c.CountriesModule != nil {
		if err := c.CountriesModule.HealthCheck(ctx); err != nil {
			return err
		}
	}

	return nil
}

// Cleanup shuts down modules in reverse order of initialization
func (c *Container) Cleanup(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.CountriesModule != nil {
		if err := c.CountriesModule.Stop(); err != nil {
			return fmt.Errorf("failed to stop countries module: %w", err)
		}
		c.CountriesModule = nil
	}

	if c.RedisClient != nil {
		if err := c.RedisClient.Close(); err != nil {
			return fmt.Errorf("failed to close redis client: %w", err)
		}
		c.RedisClient = nil
	}

	return nil
}

// Close gracefully shuts down all services in the container with timeout
func (c *Container) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	return c.Cleanup(ctx)
}
