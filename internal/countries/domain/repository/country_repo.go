package repository

import (
	"context"
	"time"

	"country-cache/internal/countries/domain/model"
)

// CountryRepository defines the persistence contract for the country cache.
type CountryRepository interface {
	// Read side, safe to call concurrently with a running refresh.
	FindByName(ctx context.Context, name string) (*model.Country, error)
	List(ctx context.Context, filter model.ListFilter) ([]*model.Country, error)
	DeleteByName(ctx context.Context, name string) (bool, error)
	CountAll(ctx context.Context) (int64, error)
	GetMeta(ctx context.Context) (*model.RefreshMeta, error)
	TopByGDP(ctx context.Context, limit int) ([]*model.Country, error)

	// RunRefreshBatch executes fn inside one transaction. Every mutation
	// made through the BatchWriter becomes visible together on commit, or
	// not at all if fn returns an error.
	RunRefreshBatch(ctx context.Context, fn func(tx BatchWriter) error) error
}

// BatchWriter is the write handle the reconciler gets inside a refresh
// transaction. It is only valid for the duration of the batch.
type BatchWriter interface {
	// FindByName looks up an existing row inside the transaction.
	FindByName(ctx context.Context, name string) (*model.Country, error)
	// Insert adds a new country row.
	Insert(ctx context.Context, c *model.Country) error
	// Update overwrites all mutable fields of an existing row.
	Update(ctx context.Context, c *model.Country) error
	// CountAll counts rows as seen by the transaction.
	CountAll(ctx context.Context) (int64, error)
	// UpsertMeta creates or updates the RefreshMeta singleton.
	UpsertMeta(ctx context.Context, total int64, refreshedAt time.Time) error
}

// CountrySource fetches the raw country list from the external directory.
type CountrySource interface {
	FetchCountries(ctx context.Context) ([]model.RawCountry, error)
}

// RateSource fetches the USD exchange-rate table keyed by currency code.
type RateSource interface {
	FetchRates(ctx context.Context) (map[string]float64, error)
}

// ArtifactStore persists the rendered summary artifact at its well-known
// location, overwriting any previous artifact.
type ArtifactStore interface {
	Save(data []byte) error
	Load() ([]byte, error)
}

// SummaryRenderer turns the cache totals and top-5 list into the summary
// artifact bytes.
type SummaryRenderer interface {
	Render(total int64, top5 []model.GDPEntry, refreshedAt time.Time) ([]byte, error)
}

// RefreshEventPublisher announces the outcome of a committed
// reconciliation. Publishing is best-effort; failures must not affect the
// refresh result.
type RefreshEventPublisher interface {
	PublishRefreshCompleted(ctx context.Context, result model.RefreshResult) error
}
