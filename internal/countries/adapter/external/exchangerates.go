package external

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	apperrors "country-cache/internal/shared/errors"
)

// ExchangeRateClient fetches the USD exchange-rate table.
type ExchangeRateClient struct {
	url    string
	client *http.Client
}

// NewExchangeRateClient creates a client for the exchange-rate feed with a
// bounded request timeout.
func NewExchangeRateClient(url string, timeout time.Duration) *ExchangeRateClient {
	return &ExchangeRateClient{
		url:    url,
		client: &http.Client{Timeout: timeout},
	}
}

// ratesResponse is the feed envelope: {"result":"success","rates":{...}}.
type ratesResponse struct {
	Result string             `json:"result"`
	Rates  map[string]float64 `json:"rates"`
}

// FetchRates retrieves the rate table keyed by currency code. A response
// without a rates object is treated as an empty table, matching the
// derivation policy for unknown currencies.
func (c *ExchangeRateClient) FetchRates(ctx context.Context) (map[string]float64, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.url, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: building rates request: %v", apperrors.ErrExternalSourceUnavailable, err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: fetching exchange rates: %v", apperrors.ErrExternalSourceUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("%w: rates feed returned status %d", apperrors.ErrExternalSourceUnavailable, resp.StatusCode)
	}

	var body ratesResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("%w: decoding rates feed: %v", apperrors.ErrExternalSourceUnavailable, err)
	}
	if body.Rates == nil {
		return map[string]float64{}, nil
	}
	return body.Rates, nil
}
