package config

import (
	"errors"
	"time"

	"github.com/caarlos0/env/v6"
)

// SourcesConfig holds the external feed endpoints and the shared fetch timeout.
type SourcesConfig struct {
	// CountriesURL is the public countries directory feed.
	CountriesURL string `env:"COUNTRIES_API_URL" envDefault:"https://restcountries.com/v2/all?fields=name,capital,region,population,flag,currencies"`

	// RatesURL is the USD exchange-rate feed.
	RatesURL string `env:"EXCHANGE_API_URL" envDefault:"https://open.er-api.com/v6/latest/USD"`

	// FetchTimeout bounds each outbound fetch. A timeout is treated the
	// same as any other fetch failure.
	FetchTimeout time.Duration `env:"FETCH_TIMEOUT" envDefault:"10s"`
}

// RedisConfig holds the connection settings for the refresh event stream.
type RedisConfig struct {
	Addr     string `env:"REDIS_ADDR" envDefault:"localhost:6379"`
	Password string `env:"REDIS_PASSWORD" envDefault:""`
	Database int    `env:"REDIS_DB" envDefault:"0"`

	// RefreshStream is the Redis stream refresh outcomes are published to.
	RefreshStream string `env:"REFRESH_EVENT_STREAM" envDefault:"countries.refresh"`
}

// Config holds all configuration for the countries module.
type Config struct {
	MongoDBURI   string `env:"MONGODB_URI"`
	DatabaseName string `env:"MONGODB_DATABASE" envDefault:"country_cache"`

	// ArtifactDir is where the rendered summary image lands. The artifact
	// itself always lives at <ArtifactDir>/summary.png.
	ArtifactDir string `env:"ARTIFACT_DIR" envDefault:"cache"`

	Sources SourcesConfig
	Redis   RedisConfig
}

// LoadConfig loads configuration from environment variables and applies defaults.
func LoadConfig() (*Config, error) {
	cfg := &Config{}

	if err := env.Parse(cfg); err != nil {
		return nil, errors.New("failed to load countries configuration from environment: " + err.Error())
	}
	if err := env.Parse(&cfg.Sources); err != nil {
		return nil, errors.New("failed to load source configuration from environment: " + err.Error())
	}
	if err := env.Parse(&cfg.Redis); err != nil {
		return nil, errors.New("failed to load redis configuration from environment: " + err.Error())
	}

	if cfg.MongoDBURI == "" {
		return nil, errors.New("MONGODB_URI environment variable is not set")
	}
	if cfg.Sources.FetchTimeout <= 0 {
		cfg.Sources.FetchTimeout = 10 * time.Second
	}

	return cfg, nil
}

// DefaultConfig returns a Config with local development defaults.
func DefaultConfig() *Config {
	return &Config{
		MongoDBURI:   "mongodb://localhost:27017",
		DatabaseName: "country_cache",
		ArtifactDir:  "cache",
		Sources: SourcesConfig{
			CountriesURL: "https://restcountries.com/v2/all?fields=name,capital,region,population,flag,currencies",
			RatesURL:     "https://open.er-api.com/v6/latest/USD",
			FetchTimeout: 10 * time.Second,
		},
		Redis: RedisConfig{
			Addr:          "localhost:6379",
			RefreshStream: "countries.refresh",
		},
	}
}
