package external

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	apperrors "country-cache/internal/shared/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFetchCountries_ParsesFeed(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "application/json", r.Header.Get("Accept"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`[
			{"name":"Canada","capital":"Ottawa","region":"Americas","population":38000000,
			 "currencies":[{"code":"CAD","name":"Canadian dollar","symbol":"$"}],
			 "flag":"https://example.com/ca.png"},
			{"name":"Nowhere","currencies":[]}
		]`))
	}))
	defer srv.Close()

	client := NewRestCountriesClient(srv.URL, 5*time.Second)
	raws, err := client.FetchCountries(context.Background())
	require.NoError(t, err)
	require.Len(t, raws, 2)

	assert.Equal(t, "Canada", raws[0].Name)
	require.NotNil(t, raws[0].Population)
	assert.Equal(t, int64(38000000), *raws[0].Population)
	require.Len(t, raws[0].Currencies, 1)
	assert.Equal(t, "CAD", raws[0].Currencies[0].Code)
	assert.Equal(t, "https://example.com/ca.png", raws[0].Flag)

	assert.Nil(t, raws[1].Population)
	assert.Empty(t, raws[1].Currencies)
}

func TestFetchCountries_ServerErrorIsUnavailable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	client := NewRestCountriesClient(srv.URL, 5*time.Second)
	_, err := client.FetchCountries(context.Background())
	require.Error(t, err)
	assert.True(t, errors.Is(err, apperrors.ErrExternalSourceUnavailable))
}

func TestFetchCountries_MalformedBodyIsUnavailable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"not":"a list"`))
	}))
	defer srv.Close()

	client := NewRestCountriesClient(srv.URL, 5*time.Second)
	_, err := client.FetchCountries(context.Background())
	require.Error(t, err)
	assert.True(t, errors.Is(err, apperrors.ErrExternalSourceUnavailable))
}

func TestFetchCountries_UnreachableHostIsUnavailable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close() // refuse connections

	client := NewRestCountriesClient(srv.URL, time.Second)
	_, err := client.FetchCountries(context.Background())
	require.Error(t, err)
	assert.True(t, errors.Is(err, apperrors.ErrExternalSourceUnavailable))
}

func TestFetchRates_UnwrapsEnvelope(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"result":"success","rates":{"USD":1.0,"CAD":1.36,"NGN":1600.23}}`))
	}))
	defer srv.Close()

	client := NewExchangeRateClient(srv.URL, 5*time.Second)
	rates, err := client.FetchRates(context.Background())
	require.NoError(t, err)
	assert.Len(t, rates, 3)
	assert.Equal(t, 1.36, rates["CAD"])
}

func TestFetchRates_MissingRatesObjectIsEmptyTable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"result":"success"}`))
	}))
	defer srv.Close()

	client := NewExchangeRateClient(srv.URL, 5*time.Second)
	rates, err := client.FetchRates(context.Background())
	require.NoError(t, err)
	require.NotNil(t, rates)
	assert.Empty(t, rates)
}

func TestFetchRates_ServerErrorIsUnavailable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	client := NewExchangeRateClient(srv.URL, 5*time.Second)
	_, err := client.FetchRates(context.Background())
	require.Error(t, err)
	assert.True(t, errors.Is(err, apperrors.ErrExternalSourceUnavailable))
}
