package usecase

import (
	"context"

	"country-cache/internal/countries/domain/model"
	"country-cache/internal/countries/domain/repository"
	apperrors "country-cache/internal/shared/errors"
	"country-cache/internal/shared/logger"
)

// CountryUsecaseInterface defines the read/delete contract served over HTTP.
type CountryUsecaseInterface interface {
	List(ctx context.Context, filter model.ListFilter) ([]*model.Country, error)
	GetByName(ctx context.Context, name string) (*model.Country, error)
	DeleteByName(ctx context.Context, name string) error
	Status(ctx context.Context) (*model.StatusOut, error)
}

// CountryUsecase implements the cache query operations.
type CountryUsecase struct {
	repo repository.CountryRepository
	log  logger.Logger
}

// NewCountryUsecase creates a new country query use case.
func NewCountryUsecase(repo repository.CountryRepository, log logger.Logger) *CountryUsecase {
	return &CountryUsecase{
		repo: repo,
		log:  log.WithComponent("country_usecase"),
	}
}

// List returns cached countries matching the filter. Filters are
// exact-match and AND-combined; without a sort the order is unspecified.
func (uc *CountryUsecase) List(ctx context.Context, filter model.ListFilter) ([]*model.Country, error) {
	switch filter.Sort {
	case "", model.SortGDPAsc, model.SortGDPDesc:
	default:
		return nil, apperrors.ErrInvalidSortParam
	}
	return uc.repo.List(ctx, filter)
}

// GetByName returns the country matching name case-insensitively.
func (uc *CountryUsecase) GetByName(ctx context.Context, name string) (*model.Country, error) {
	return uc.repo.FindByName(ctx, name)
}

// DeleteByName removes the named row. RefreshMeta is deliberately left
// untouched; only a reconciliation recomputes it.
func (uc *CountryUsecase) DeleteByName(ctx context.Context, name string) error {
	deleted, err := uc.repo.DeleteByName(ctx, name)
	if err != nil {
		return err
	}
	if !deleted {
		return apperrors.ErrCountryNotFound
	}
	uc.log.WithFields(map[string]interface{}{"country": name}).Info("country deleted")
	return nil
}

// Status reports the cache totals from RefreshMeta, falling back to a
// live row count when no reconciliation has run yet.
func (uc *CountryUsecase) Status(ctx context.Context) (*model.StatusOut, error) {
	meta, err := uc.repo.GetMeta(ctx)
	if err != nil {
		return nil, err
	}
	if meta != nil {
		refreshedAt := meta.LastRefreshedAt
		return &model.StatusOut{
			TotalCountries:  meta.TotalCountries,
			LastRefreshedAt: &refreshedAt,
		}, nil
	}

	total, err := uc.repo.CountAll(ctx)
	if err != nil {
		return nil, err
	}
	return &model.StatusOut{TotalCountries: total}, nil
}
