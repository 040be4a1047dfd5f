package http

import (
	"country-cache/internal/countries/domain/model"
	"country-cache/internal/countries/domain/repository"
	"country-cache/internal/countries/usecase"
	apperrors "country-cache/internal/shared/errors"
	"country-cache/internal/shared/logger"

	"github.com/gofiber/fiber/v2"
)

// CountryHTTPHandler handles HTTP requests for the country cache.
type CountryHTTPHandler struct {
	countries usecase.CountryUsecaseInterface
	refresh   usecase.RefreshUsecaseInterface
	artifacts repository.ArtifactStore
	logger    logger.Logger
}

// NewCountryHTTPHandler creates a new country HTTP handler.
func NewCountryHTTPHandler(
	countries usecase.CountryUsecaseInterface,
	refresh usecase.RefreshUsecaseInterface,
	artifacts repository.ArtifactStore,
	log logger.Logger,
) *CountryHTTPHandler {
	return &CountryHTTPHandler{
		countries: countries,
		refresh:   refresh,
		artifacts: artifacts,
		logger:    log.WithComponent("country_router"),
	}
}

// SetupRoutes registers the country cache routes. The image route must be
// registered before the :name route so "image" never resolves as a
// country name.
func (h *CountryHTTPHandler) SetupRoutes(router fiber.Router) {
	router.Get("/countries", h.ListCountries)
	router.Get("/countries/image", h.GetSummaryImage)
	router.Get("/countries/:name", h.GetCountry)
	router.Delete("/countries/:name", h.DeleteCountry)
	router.Post("/countries/refresh", h.RefreshCountries)
	router.Get("/status", h.GetStatus)
}

// ListCountries returns the cached countries with optional filtering and
// GDP sorting.
func (h *CountryHTTPHandler) ListCountries(c *fiber.Ctx) error {
	filter := model.ListFilter{
		Region:       c.Query("region"),
		CurrencyCode: c.Query("currency"),
		Sort:         c.Query("sort"),
	}

	countries, err := h.countries.List(c.Context(), filter)
	if err != nil {
		if apperrors.IsValidation(err) {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "Validation failed",
				"details": fiber.Map{
					"sort": "must be one of gdp_asc, gdp_desc",
				},
			})
		}
		h.logger.Errorf("failed to list countries: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Internal server error",
		})
	}

	if countries == nil {
		countries = []*model.Country{}
	}
	return c.JSON(countries)
}

// GetCountry returns one country by case-insensitive name.
func (h *CountryHTTPHandler) GetCountry(c *fiber.Ctx) error {
	name := c.Params("name")

	country, err := h.countries.GetByName(c.Context(), name)
	if err != nil {
		if apperrors.IsNotFound(err) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"error": "Country not found",
			})
		}
		h.logger.Errorf("failed to get country %q: %v", name, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Internal server error",
		})
	}
	return c.JSON(country)
}

// DeleteCountry removes one country by name. RefreshMeta stays untouched.
func (h *CountryHTTPHandler) DeleteCountry(c *fiber.Ctx) error {
	name := c.Params("name")

	if err := h.countries.DeleteByName(c.Context(), name); err != nil {
		if apperrors.IsNotFound(err) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"error": "Country not found",
			})
		}
		h.logger.Errorf("failed to delete country %q: %v", name, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Internal server error",
		})
	}

	return c.JSON(fiber.Map{"deleted": name})
}

// RefreshCountries runs one reconciliation batch against the external feeds.
func (h *CountryHTTPHandler) RefreshCountries(c *fiber.Ctx) error {
	result, err := h.refresh.Refresh(c.Context())
	if err != nil {
		if apperrors.IsUnavailable(err) {
			return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{
				"error":   "External data source unavailable",
				"details": "Could not fetch data from external API",
			})
		}
		h.logger.Errorf("refresh failed: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Internal server error",
		})
	}
	return c.JSON(result)
}

// GetStatus reports the cache totals from the refresh metadata.
func (h *CountryHTTPHandler) GetStatus(c *fiber.Ctx) error {
	status, err := h.countries.Status(c.Context())
	if err != nil {
		h.logger.Errorf("failed to load status: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Internal server error",
		})
	}
	return c.JSON(status)
}

// GetSummaryImage serves the most recently generated summary artifact.
func (h *CountryHTTPHandler) GetSummaryImage(c *fiber.Ctx) error {
	data, err := h.artifacts.Load()
	if err != nil {
		if err == apperrors.ErrArtifactNotFound {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"error": "Summary image not found",
			})
		}
		h.logger.Errorf("failed to load summary image: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Internal server error",
		})
	}

	c.Set(fiber.HeaderContentType, "image/png")
	return c.Send(data)
}
