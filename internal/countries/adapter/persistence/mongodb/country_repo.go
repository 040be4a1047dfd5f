package mongodb

import (
	"context"
	"fmt"
	"strings"
	"time"

	"country-cache/internal/countries/domain/model"
	"country-cache/internal/countries/domain/repository"
	apperrors "country-cache/internal/shared/errors"
	"country-cache/internal/shared/logger"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	countriesCollection = "countries"
	metaCollection      = "refresh_meta"
)

// CountryRepository implements the country cache persistence contract
// using MongoDB.
type CountryRepository struct {
	db        *mongo.Database
	countries *mongo.Collection
	meta      *mongo.Collection
	logger    logger.Logger
}

// NewCountryRepository creates a new MongoDB country repository and
// ensures the case-insensitive name index exists.
func NewCountryRepository(db *mongo.Database, log logger.Logger) (*CountryRepository, error) {
	repo := &CountryRepository{
		db:        db,
		countries: db.Collection(countriesCollection),
		meta:      db.Collection(metaCollection),
		logger:    log.WithComponent("country_repository"),
	}

	ctx := context.Background()

	// Unique index on the lowercased name; this is what makes lookups and
	// upserts case-insensitive.
	nameIndex := mongo.IndexModel{
		Keys:    bson.D{{Key: "name_lower", Value: 1}},
		Options: options.Index().SetUnique(true),
	}
	if _, err := repo.countries.Indexes().CreateOne(ctx, nameIndex); err != nil {
		return nil, fmt.Errorf("failed to create name index: %w", err)
	}

	// Secondary index for the top-5 query and gdp sorts.
	gdpIndex := mongo.IndexModel{
		Keys: bson.D{{Key: "estimated_gdp", Value: -1}},
	}
	if _, err := repo.countries.Indexes().CreateOne(ctx, gdpIndex); err != nil {
		return nil, fmt.Errorf("failed to create gdp index: %w", err)
	}

	return repo, nil
}

// FindByName retrieves a country by case-insensitive exact name match.
func (r *CountryRepository) FindByName(ctx context.Context, name string) (*model.Country, error) {
	return findByName(ctx, r.countries, name)
}

// List returns countries matching the filter, optionally sorted by
// estimated GDP. BSON orders null below numbers, so a descending sort
// places rows without a GDP figure last.
func (r *CountryRepository) List(ctx context.Context, filter model.ListFilter) ([]*model.Country, error) {
	query := bson.M{}
	if filter.Region != "" {
		query["region"] = filter.Region
	}
	if filter.CurrencyCode != "" {
		query["currency_code"] = filter.CurrencyCode
	}

	opts := options.Find()
	switch filter.Sort {
	case model.SortGDPDesc:
		opts.SetSort(bson.D{{Key: "estimated_gdp", Value: -1}})
	case model.SortGDPAsc:
		opts.SetSort(bson.D{{Key: "estimated_gdp", Value: 1}})
	}

	cursor, err := r.countries.Find(ctx, query, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to list countries: %w", err)
	}
	defer cursor.Close(ctx)

	var results []*model.Country
	if err := cursor.All(ctx, &results); err != nil {
		return nil, fmt.Errorf("failed to decode countries: %w", err)
	}
	return results, nil
}

// DeleteByName removes the named row and reports whether one existed.
// RefreshMeta is never touched here.
func (r *CountryRepository) DeleteByName(ctx context.Context, name string) (bool, error) {
	result, err := r.countries.DeleteOne(ctx, bson.M{"name_lower": strings.ToLower(name)})
	if err != nil {
		return false, fmt.Errorf("failed to delete country: %w", err)
	}
	return result.DeletedCount > 0, nil
}

// CountAll returns the total number of cached rows.
func (r *CountryRepository) CountAll(ctx context.Context) (int64, error) {
	return r.countries.CountDocuments(ctx, bson.M{})
}

// GetMeta returns the RefreshMeta singleton, or nil when no
// reconciliation has run yet.
func (r *CountryRepository) GetMeta(ctx context.Context) (*model.RefreshMeta, error) {
	var meta model.RefreshMeta
	err := r.meta.FindOne(ctx, bson.M{"_id": model.RefreshMetaID}).Decode(&meta)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to load refresh metadata: %w", err)
	}
	return &meta, nil
}

// TopByGDP returns up to limit rows ordered by estimated GDP descending,
// rows without a figure last.
func (r *CountryRepository) TopByGDP(ctx context.Context, limit int) ([]*model.Country, error) {
	opts := options.Find().
		SetSort(bson.D{{Key: "estimated_gdp", Value: -1}}).
		SetLimit(int64(limit))

	cursor, err := r.countries.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to query top countries: %w", err)
	}
	defer cursor.Close(ctx)

	var results []*model.Country
	if err := cursor.All(ctx, &results); err != nil {
		return nil, fmt.Errorf("failed to decode top countries: %w", err)
	}
	return results, nil
}

// RunRefreshBatch executes fn inside one MongoDB transaction. All record
// upserts and the metadata update become visible together on commit;
// concurrent readers observe either the pre- or post-refresh state.
func (r *CountryRepository) RunRefreshBatch(ctx context.Context, fn func(tx repository.BatchWriter) error) error {
	session, err := r.db.Client().StartSession()
	if err != nil {
		return fmt.Errorf("failed to start session: %w", err)
	}
	defer session.EndSession(ctx)

	err = mongo.WithSession(ctx, session, func(sc mongo.SessionContext) error {
		if err := session.StartTransaction(); err != nil {
			return fmt.Errorf("failed to start transaction: %w", err)
		}

		batch := &refreshBatch{repo: r, ctx: sc}
		if err := fn(batch); err != nil {
			if abortErr := session.AbortTransaction(sc); abortErr != nil {
				r.logger.Errorf("failed to abort refresh transaction: %v", abortErr)
			}
			return err
		}

		if err := session.CommitTransaction(sc); err != nil {
			return fmt.Errorf("failed to commit refresh batch: %w", err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	r.logger.Debug("refresh batch committed")
	return nil
}

// refreshBatch implements repository.BatchWriter against the session
// context of one refresh transaction.
type refreshBatch struct {
	repo *CountryRepository
	ctx  mongo.SessionContext
}

// FindByName looks up a row inside the transaction.
func (b *refreshBatch) FindByName(_ context.Context, name string) (*model.Country, error) {
	return findByName(b.ctx, b.repo.countries, name)
}

// Insert adds a new country row inside the transaction.
func (b *refreshBatch) Insert(_ context.Context, c *model.Country) error {
	c.NameLower = strings.ToLower(c.Name)
	_, err := b.repo.countries.InsertOne(b.ctx, c)
	return err
}

// Update replaces an existing row whole inside the transaction.
func (b *refreshBatch) Update(_ context.Context, c *model.Country) error {
	c.NameLower = strings.ToLower(c.Name)
	result, err := b.repo.countries.ReplaceOne(b.ctx, bson.M{"_id": c.ObjectID}, c)
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return apperrors.ErrCountryNotFound
	}
	return nil
}

// CountAll counts rows as seen by the transaction.
func (b *refreshBatch) CountAll(_ context.Context) (int64, error) {
	return b.repo.countries.CountDocuments(b.ctx, bson.M{})
}

// UpsertMeta creates or updates the RefreshMeta singleton inside the
// transaction.
func (b *refreshBatch) UpsertMeta(_ context.Context, total int64, refreshedAt time.Time) error {
	_, err := b.repo.meta.UpdateOne(
		b.ctx,
		bson.M{"_id": model.RefreshMetaID},
		bson.M{"$set": bson.M{
			"total_countries":   total,
			"last_refreshed_at": refreshedAt,
		}},
		options.Update().SetUpsert(true),
	)
	if err != nil {
		return fmt.Errorf("failed to upsert refresh metadata: %w", err)
	}
	return nil
}

// findByName is the shared case-insensitive lookup used both outside and
// inside transactions.
func findByName(ctx context.Context, coll *mongo.Collection, name string) (*model.Country, error) {
	var c model.Country
	err := coll.FindOne(ctx, bson.M{"name_lower": strings.ToLower(name)}).Decode(&c)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, apperrors.ErrCountryNotFound
		}
		return nil, fmt.Errorf("failed to look up country: %w", err)
	}
	return &c, nil
}
