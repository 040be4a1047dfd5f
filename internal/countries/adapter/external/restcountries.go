package external

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"country-cache/internal/countries/domain/model"
	apperrors "country-cache/internal/shared/errors"
)

// RestCountriesClient fetches the raw country list from the public
// countries directory. Pure I/O; all business logic lives in the usecase.
type RestCountriesClient struct {
	url    string
	client *http.Client
}

// NewRestCountriesClient creates a client for the countries feed with a
// bounded request timeout.
func NewRestCountriesClient(url string, timeout time.Duration) *RestCountriesClient {
	return &RestCountriesClient{
		url:    url,
		client: &http.Client{Timeout: timeout},
	}
}

// FetchCountries retrieves the raw country records in feed order. Any
// transport error, timeout or non-2xx response maps to
// ErrExternalSourceUnavailable.
func (c *RestCountriesClient) FetchCountries(ctx context.Context) ([]model.RawCountry, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.url, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: building countries request: %v", apperrors.ErrExternalSourceUnavailable, err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: fetching countries: %v", apperrors.ErrExternalSourceUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("%w: countries feed returned status %d", apperrors.ErrExternalSourceUnavailable, resp.StatusCode)
	}

	var raws []model.RawCountry
	if err := json.NewDecoder(resp.Body).Decode(&raws); err != nil {
		return nil, fmt.Errorf("%w: decoding countries feed: %v", apperrors.ErrExternalSourceUnavailable, err)
	}
	return raws, nil
}
