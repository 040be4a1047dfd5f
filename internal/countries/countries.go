package countries

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	"country-cache/internal/countries/adapter/artifact"
	"country-cache/internal/countries/adapter/external"
	countryhttp "country-cache/internal/countries/adapter/http"
	"country-cache/internal/countries/adapter/persistence"
	"country-cache/internal/countries/adapter/persistence/mongodb"
	"country-cache/internal/countries/config"
	"country-cache/internal/countries/domain/repository"
	"country-cache/internal/countries/usecase"
	"country-cache/internal/shared/logger"

	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/mongo"
)

// CountriesModule wires together the country cache: persistence, external
// feed clients, the reconciler, artifact generation and the HTTP surface.
type CountriesModule struct {
	repository *mongodb.CountryRepository
	refreshUC  usecase.RefreshUsecaseInterface
	countryUC  usecase.CountryUsecaseInterface
	handler    *countryhttp.CountryHTTPHandler
	config     *config.Config
}

// NewCountriesModule creates a new countries module instance. redisClient
// may be nil; refresh events are then skipped.
func NewCountriesModule(db *mongo.Database, redisClient *redis.Client, cfg *config.Config, log logger.Logger) (*CountriesModule, error) {
	repo, err := mongodb.NewCountryRepository(db, log)
	if err != nil {
		return nil, fmt.Errorf("failed to create country repository: %w", err)
	}

	countrySource := external.NewRestCountriesClient(cfg.Sources.CountriesURL, cfg.Sources.FetchTimeout)
	rateSource := external.NewExchangeRateClient(cfg.Sources.RatesURL, cfg.Sources.FetchTimeout)

	renderer := artifact.NewPNGRenderer()
	artifactStore := artifact.NewFileStore(cfg.ArtifactDir)

	var events repository.RefreshEventPublisher
	if redisClient != nil {
		events = persistence.NewRedisRefreshPublisher(redisClient, cfg.Redis.RefreshStream, log)
	}

	rng := rand.New(rand.NewSource(time.Now().UnixNano()))

	refreshUC := usecase.NewRefreshUsecase(repo, countrySource, rateSource, renderer, artifactStore, events, rng, log)
	countryUC := usecase.NewCountryUsecase(repo, log)

	handler := countryhttp.NewCountryHTTPHandler(countryUC, refreshUC, artifactStore, log)

	return &CountriesModule{
		repository: repo,
		refreshUC:  refreshUC,
		countryUC:  countryUC,
		handler:    handler,
		config:     cfg,
	}, nil
}

// RegisterRoutes registers the country cache routes with the provided router.
func (m *CountriesModule) RegisterRoutes(router fiber.Router) {
	m.handler.SetupRoutes(router)
}

// GetRefreshUsecase returns the reconciliation use case for external access.
func (m *CountriesModule) GetRefreshUsecase() usecase.RefreshUsecaseInterface {
	return m.refreshUC
}

// GetCountryUsecase returns the query use case for external access.
func (m *CountriesModule) GetCountryUsecase() usecase.CountryUsecaseInterface {
	return m.countryUC
}

// HealthCheck verifies the module can reach its persistence layer.
func (m *CountriesModule) HealthCheck(ctx context.Context) error {
	if _, err := m.repository.CountAll(ctx); err != nil {
		return fmt.Errorf("country repository unhealthy: %w", err)
	}
	return nil
}

// Stop performs cleanup when the module is shut down.
func (m *CountriesModule) Stop() error {
	return nil
}
