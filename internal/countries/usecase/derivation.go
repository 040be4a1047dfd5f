package usecase

import (
	"math/rand"

	"country-cache/internal/countries/domain/model"
)

// Multiplier bounds for the synthetic estimated-GDP figure.
const (
	gdpMultiplierMin = 1000.0
	gdpMultiplierMax = 2000.0
)

// Derived holds the computed fields for one raw country record.
type Derived struct {
	CurrencyCode *string
	ExchangeRate *float64
	EstimatedGDP *float64
	Population   int64
}

// pickCurrencyCode returns the code of the first entry in the record's
// currency list, or nil when the list is empty or the entry has no code.
func pickCurrencyCode(raw model.RawCountry) *string {
	if len(raw.Currencies) == 0 {
		return nil
	}
	code := raw.Currencies[0].Code
	if code == "" {
		return nil
	}
	return &code
}

// Derive computes the currency selection and estimated GDP for one raw
// record under the null policies of the cache:
//
//   - no currency at all: exchange rate is nil and estimated GDP is an
//     explicit 0.0, a distinct business rule from "rate unavailable"
//   - currency known but absent from the rate table: both nil
//   - rate of exactly zero: estimated GDP nil (division guard)
//   - otherwise: population * U(1000,2000) / rate
//
// The uniform multiplier makes estimated GDP intentionally non-reproducible
// across refreshes; rng is injected so tests can seed it.
func Derive(raw model.RawCountry, rates map[string]float64, rng *rand.Rand) Derived {
	d := Derived{CurrencyCode: pickCurrencyCode(raw)}
	if raw.Population != nil {
		d.Population = *raw.Population
	}

	if d.CurrencyCode == nil {
		zero := 0.0
		d.EstimatedGDP = &zero
		return d
	}

	rate, ok := rates[*d.CurrencyCode]
	if !ok {
		return d
	}
	d.ExchangeRate = &rate
	if rate == 0 {
		return d
	}

	multiplier := gdpMultiplierMin + rng.Float64()*(gdpMultiplierMax-gdpMultiplierMin)
	gdp := float64(d.Population) * multiplier / rate
	d.EstimatedGDP = &gdp
	return d
}
