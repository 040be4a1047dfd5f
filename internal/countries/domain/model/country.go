package model

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Country represents one cached country row. Identity is the name,
// matched case-insensitively via the stored NameLower field.
//
// Nullable upstream fields are pointers so that "absent" survives the
// round trip to storage and JSON instead of collapsing to a zero value.
type Country struct {
	ObjectID        primitive.ObjectID `json:"-" bson:"_id,omitempty"`
	Name            string             `json:"name" bson:"name"`
	NameLower       string             `json:"-" bson:"name_lower"`
	Capital         *string            `json:"capital" bson:"capital"`
	Region          *string            `json:"region" bson:"region"`
	Population      int64              `json:"population" bson:"population"`
	CurrencyCode    *string            `json:"currency_code" bson:"currency_code"`
	ExchangeRate    *float64           `json:"exchange_rate" bson:"exchange_rate"`
	EstimatedGDP    *float64           `json:"estimated_gdp" bson:"estimated_gdp"`
	FlagURL         *string            `json:"flag_url" bson:"flag_url"`
	LastRefreshedAt time.Time          `json:"last_refreshed_at" bson:"last_refreshed_at"`
}

// RefreshMeta is the singleton aggregate updated by every successful
// reconciliation. Exactly one document ever exists; it is created lazily
// on the first refresh and updated in place afterwards.
type RefreshMeta struct {
	ID              string    `json:"-" bson:"_id"`
	TotalCountries  int64     `json:"total_countries" bson:"total_countries"`
	LastRefreshedAt time.Time `json:"last_refreshed_at" bson:"last_refreshed_at"`
}

// RefreshMetaID is the fixed _id of the RefreshMeta singleton document.
const RefreshMetaID = "refresh_meta"

// RefreshResult aggregates the outcome of one reconciliation batch.
type RefreshResult struct {
	RunID           string    `json:"-"`
	Inserted        int       `json:"inserted"`
	Updated         int       `json:"updated"`
	Total           int64     `json:"total"`
	LastRefreshedAt time.Time `json:"last_refreshed_at"`
}

// RawCurrency is one entry of a raw country record's currency list.
type RawCurrency struct {
	Code   string `json:"code"`
	Name   string `json:"name"`
	Symbol string `json:"symbol"`
}

// RawCountry is one record of the external countries feed, before any
// derivation. Population is a pointer because the feed omits it for some
// territories; it defaults to 0 downstream.
type RawCountry struct {
	Name       string        `json:"name"`
	Capital    string        `json:"capital"`
	Region     string        `json:"region"`
	Population *int64        `json:"population"`
	Flag       string        `json:"flag"`
	Currencies []RawCurrency `json:"currencies"`
}

// GDPEntry is one line of the summary artifact's top-5 list.
type GDPEntry struct {
	Name         string   `json:"name"`
	EstimatedGDP *float64 `json:"estimated_gdp"`
}

// Sort orders accepted by the listing endpoint.
const (
	SortGDPDesc = "gdp_desc"
	SortGDPAsc  = "gdp_asc"
)

// ListFilter narrows a country listing. Empty fields match everything;
// set fields are exact-match and AND-combined.
type ListFilter struct {
	Region       string
	CurrencyCode string
	Sort         string
}

// StatusOut is the body of GET /status.
type StatusOut struct {
	TotalCountries  int64      `json:"total_countries"`
	LastRefreshedAt *time.Time `json:"last_refreshed_at"`
}
