package usecase

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"sync"
	"time"

	"country-cache/internal/countries/domain/model"
	"country-cache/internal/countries/domain/repository"
	apperrors "country-cache/internal/shared/errors"
	"country-cache/internal/shared/logger"

	"github.com/google/uuid"
)

// ErrEmptyCountryName marks a raw record the feed delivered without a name.
// Such records are skipped; they never abort the batch.
var ErrEmptyCountryName = errors.New("raw record has no name")

// RefreshUsecaseInterface defines the contract for the reconciliation use case.
type RefreshUsecaseInterface interface {
	Refresh(ctx context.Context) (*model.RefreshResult, error)
}

// RefreshUsecase reconciles the two external feeds into the country cache:
// fetch both feeds up front, derive per record, upsert by case-insensitive
// name inside one transaction, update the RefreshMeta singleton, then
// regenerate the summary artifact and publish the outcome.
//
// Refreshes are serialized with a mutex; overlapping runs would race on
// the same rows and the metadata singleton. Reads stay concurrent.
type RefreshUsecase struct {
	repo      repository.CountryRepository
	countries repository.CountrySource
	rates     repository.RateSource
	renderer  repository.SummaryRenderer
	artifacts repository.ArtifactStore
	events    repository.RefreshEventPublisher
	rng       *rand.Rand
	log       logger.Logger

	mu sync.Mutex
}

// NewRefreshUsecase creates a new reconciliation use case. events may be
// nil when no publisher is configured.
func NewRefreshUsecase(
	repo repository.CountryRepository,
	countries repository.CountrySource,
	rates repository.RateSource,
	renderer repository.SummaryRenderer,
	artifacts repository.ArtifactStore,
	events repository.RefreshEventPublisher,
	rng *rand.Rand,
	log logger.Logger,
) *RefreshUsecase {
	return &RefreshUsecase{
		repo:      repo,
		countries: countries,
		rates:     rates,
		renderer:  renderer,
		artifacts: artifacts,
		events:    events,
		rng:       rng,
		log:       log.WithComponent("refresh_usecase"),
	}
}

// Refresh runs one reconciliation batch and returns its aggregate counts.
//
// Either feed failing aborts before any store mutation with
// ErrExternalSourceUnavailable. One malformed record only costs that
// record. Artifact rendering and event publishing happen after commit and
// are best-effort: their failures are logged, never returned.
func (uc *RefreshUsecase) Refresh(ctx context.Context) (*model.RefreshResult, error) {
	uc.mu.Lock()
	defer uc.mu.Unlock()

	runID := uuid.NewString()
	log := uc.log.WithFields(map[string]interface{}{"refresh_run_id": runID})

	// Fetch both feeds before touching the store.
	raws, err := uc.countries.FetchCountries(ctx)
	if err != nil {
		log.Errorf("countries feed fetch failed: %v", err)
		return nil, err
	}
	rates, err := uc.rates.FetchRates(ctx)
	if err != nil {
		log.Errorf("exchange rate feed fetch failed: %v", err)
		return nil, err
	}

	now := time.Now().UTC()
	result := &model.RefreshResult{RunID: runID, LastRefreshedAt: now}

	err = uc.repo.RunRefreshBatch(ctx, func(tx repository.BatchWriter) error {
		for _, raw := range raws {
			inserted, err := uc.applyRecord(ctx, tx, raw, rates, now)
			if err != nil {
				// One malformed upstream record must never sink the
				// whole refresh.
				log.WithFields(map[string]interface{}{
					"country": raw.Name,
					"error":   err.Error(),
				}).Warn("skipping unprocessable record")
				continue
			}
			if inserted {
				result.Inserted++
			} else {
				result.Updated++
			}
		}

		total, err := tx.CountAll(ctx)
		if err != nil {
			return fmt.Errorf("failed to count cached countries: %w", err)
		}
		result.Total = total

		if err := tx.UpsertMeta(ctx, total, now); err != nil {
			return fmt.Errorf("failed to update refresh metadata: %w", err)
		}
		return nil
	})
	if err != nil {
		log.Errorf("refresh batch aborted: %v", err)
		return nil, err
	}

	uc.generateArtifact(ctx, log, result)
	uc.publishEvent(ctx, log, result)

	log.WithFields(map[string]interface{}{
		"inserted": result.Inserted,
		"updated":  result.Updated,
		"total":    result.Total,
	}).Info("refresh completed")
	return result, nil
}

// applyRecord derives and upserts one raw record inside the batch. The
// bool reports whether a new row was inserted as opposed to updated.
func (uc *RefreshUsecase) applyRecord(
	ctx context.Context,
	tx repository.BatchWriter,
	raw model.RawCountry,
	rates map[string]float64,
	now time.Time,
) (bool, error) {
	if raw.Name == "" {
		return false, fmt.Errorf("%w: %w", apperrors.ErrRecordProcessing, ErrEmptyCountryName)
	}

	derived := Derive(raw, rates, uc.rng)

	existing, err := tx.FindByName(ctx, raw.Name)
	if err != nil && !errors.Is(err, apperrors.ErrCountryNotFound) {
		return false, fmt.Errorf("%w: lookup %q: %w", apperrors.ErrRecordProcessing, raw.Name, err)
	}

	if existing != nil {
		applyDerived(existing, raw, derived, now)
		if err := tx.Update(ctx, existing); err != nil {
			return false, fmt.Errorf("%w: update %q: %w", apperrors.ErrRecordProcessing, raw.Name, err)
		}
		return false, nil
	}

	c := &model.Country{Name: raw.Name}
	applyDerived(c, raw, derived, now)
	if err := tx.Insert(ctx, c); err != nil {
		return false, fmt.Errorf("%w: insert %q: %w", apperrors.ErrRecordProcessing, raw.Name, err)
	}
	return true, nil
}

// applyDerived overwrites all mutable fields of c from the raw record and
// its derivation. Rows are written whole; there is no partial update.
func applyDerived(c *model.Country, raw model.RawCountry, d Derived, now time.Time) {
	c.Capital = optionalString(raw.Capital)
	c.Region = optionalString(raw.Region)
	c.FlagURL = optionalString(raw.Flag)
	c.Population = d.Population
	c.CurrencyCode = d.CurrencyCode
	c.ExchangeRate = d.ExchangeRate
	c.EstimatedGDP = d.EstimatedGDP
	c.LastRefreshedAt = now
}

func optionalString(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

// generateArtifact renders and stores the summary snapshot from the
// now-current top 5. Failures are surfaced in the logs only.
func (uc *RefreshUsecase) generateArtifact(ctx context.Context, log logger.Logger, result *model.RefreshResult) {
	top, err := uc.repo.TopByGDP(ctx, 5)
	if err != nil {
		log.Errorf("%v: loading top countries: %v", apperrors.ErrArtifactRender, err)
		return
	}

	entries := make([]model.GDPEntry, 0, len(top))
	for _, c := range top {
		entries = append(entries, model.GDPEntry{Name: c.Name, EstimatedGDP: c.EstimatedGDP})
	}

	data, err := uc.renderer.Render(result.Total, entries, result.LastRefreshedAt)
	if err != nil {
		log.Errorf("%v: %v", apperrors.ErrArtifactRender, err)
		return
	}
	if err := uc.artifacts.Save(data); err != nil {
		log.Errorf("%v: persisting artifact: %v", apperrors.ErrArtifactRender, err)
	}
}

// publishEvent announces the committed refresh on the event stream.
func (uc *RefreshUsecase) publishEvent(ctx context.Context, log logger.Logger, result *model.RefreshResult) {
	if uc.events == nil {
		return
	}
	if err := uc.events.PublishRefreshCompleted(ctx, *result); err != nil {
		log.Warnf("failed to publish refresh event: %v", err)
	}
}
