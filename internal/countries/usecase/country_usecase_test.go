package usecase_test

import (
	"context"
	"testing"
	"time"

	"country-cache/internal/countries/domain/model"
	"country-cache/internal/countries/domain/repository"
	"country-cache/internal/countries/usecase"
	apperrors "country-cache/internal/shared/errors"
	"country-cache/internal/shared/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// Mock repository
type mockCountryRepository struct {
	mock.Mock
}

func (m *mockCountryRepository) FindByName(ctx context.Context, name string) (*model.Country, error) {
	args := m.Called(ctx, name)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Country), args.Error(1)
}

func (m *mockCountryRepository) List(ctx context.Context, filter model.ListFilter) ([]*model.Country, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*model.Country), args.Error(1)
}

func (m *mockCountryRepository) DeleteByName(ctx context.Context, name string) (bool, error) {
	args := m.Called(ctx, name)
	return args.Bool(0), args.Error(1)
}

func (m *mockCountryRepository) CountAll(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

func (m *mockCountryRepository) GetMeta(ctx context.Context) (*model.RefreshMeta, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.RefreshMeta), args.Error(1)
}

func (m *mockCountryRepository) TopByGDP(ctx context.Context, limit int) ([]*model.Country, error) {
	args := m.Called(ctx, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*model.Country), args.Error(1)
}

func (m *mockCountryRepository) RunRefreshBatch(ctx context.Context, fn func(tx repository.BatchWriter) error) error {
	args := m.Called(ctx, fn)
	return args.Error(0)
}

func newTestCountryUsecase(repo repository.CountryRepository) *usecase.CountryUsecase {
	return usecase.NewCountryUsecase(repo, logger.NewLoggerWithConfig("error", "text"))
}

func TestList_PassesFilterThrough(t *testing.T) {
	ctx := context.Background()
	repo := &mockCountryRepository{}
	filter := model.ListFilter{Region: "Africa", CurrencyCode: "NGN", Sort: model.SortGDPDesc}
	expected := []*model.Country{{Name: "Nigeria"}}
	repo.On("List", ctx, filter).Return(expected, nil)

	uc := newTestCountryUsecase(repo)
	got, err := uc.List(ctx, filter)

	require.NoError(t, err)
	assert.Equal(t, expected, got)
	repo.AssertExpectations(t)
}

func TestList_RejectsUnknownSort(t *testing.T) {
	repo := &mockCountryRepository{}
	uc := newTestCountryUsecase(repo)

	_, err := uc.List(context.Background(), model.ListFilter{Sort: "population_desc"})

	require.Error(t, err)
	assert.True(t, apperrors.IsValidation(err))
	repo.AssertNotCalled(t, "List", mock.Anything, mock.Anything)
}

func TestGetByName_NotFound(t *testing.T) {
	ctx := context.Background()
	repo := &mockCountryRepository{}
	repo.On("FindByName", ctx, "Atlantis").Return(nil, apperrors.ErrCountryNotFound)

	uc := newTestCountryUsecase(repo)
	_, err := uc.GetByName(ctx, "Atlantis")

	assert.True(t, apperrors.IsNotFound(err))
}

func TestDeleteByName_Success(t *testing.T) {
	ctx := context.Background()
	repo := &mockCountryRepository{}
	repo.On("DeleteByName", ctx, "Canada").Return(true, nil)

	uc := newTestCountryUsecase(repo)
	err := uc.DeleteByName(ctx, "Canada")

	require.NoError(t, err)
	repo.AssertExpectations(t)
}

func TestDeleteByName_MissingRowIsNotFound(t *testing.T) {
	ctx := context.Background()
	repo := &mockCountryRepository{}
	repo.On("DeleteByName", ctx, "Atlantis").Return(false, nil)

	uc := newTestCountryUsecase(repo)
	err := uc.DeleteByName(ctx, "Atlantis")

	assert.True(t, apperrors.IsNotFound(err))
	// Deleting never touches the refresh metadata.
	repo.AssertNotCalled(t, "GetMeta", mock.Anything)
}

func TestStatus_UsesMetaWhenPresent(t *testing.T) {
	ctx := context.Background()
	refreshedAt := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	repo := &mockCountryRepository{}
	repo.On("GetMeta", ctx).Return(&model.RefreshMeta{
		ID:              model.RefreshMetaID,
		TotalCountries:  250,
		LastRefreshedAt: refreshedAt,
	}, nil)

	uc := newTestCountryUsecase(repo)
	status, err := uc.Status(ctx)

	require.NoError(t, err)
	assert.Equal(t, int64(250), status.TotalCountries)
	require.NotNil(t, status.LastRefreshedAt)
	assert.Equal(t, refreshedAt, *status.LastRefreshedAt)
	repo.AssertNotCalled(t, "CountAll", mock.Anything)
}

func TestStatus_FallsBackToLiveCount(t *testing.T) {
	ctx := context.Background()
	repo := &mockCountryRepository{}
	repo.On("GetMeta", ctx).Return(nil, nil)
	repo.On("CountAll", ctx).Return(int64(7), nil)

	uc := newTestCountryUsecase(repo)
	status, err := uc.Status(ctx)

	require.NoError(t, err)
	assert.Equal(t, int64(7), status.TotalCountries)
	assert.Nil(t, status.LastRefreshedAt)
}
