package httpapi

import (
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/AJMedia-landers/ads-console/internal/db"
)

type categorizeAdRequest struct {
	LandingPage string `json:"landing_page"`
	Category    string `json:"category"`
	Title       string `json:"title"`
}

type uninterestedRequest struct {
	LandingPage string `json:"landing_page"`
}

func (s *Server) handleListAds(c echo.Context) error {
	country := strings.TrimSpace(c.QueryParam("country"))
	if country == "" {
		return failValidation(c, map[string]string{"country": "is required"})
	}

	date := strings.TrimSpace(c.QueryParam("date"))
	if date == "" {
		return failValidation(c, map[string]string{"date": "is required"})
	}
	if _, err := time.Parse("2006-01-02", date); err != nil {
		return failValidation(c, map[string]string{"date": "must be YYYY-MM-DD"})
	}

	limit, offset, fieldErrors := parsePagination(c)
	if fieldErrors != nil {
		return failValidation(c, fieldErrors)
	}

	opts := db.AdListOptions{
		Country:       country,
		Date:          date,
		UniqueURLs:    parseBoolParam(c.QueryParam("unique_urls")),
		EmptyCategory: parseBoolParam(c.QueryParam("empty_category")),
		SortColumn:    strings.TrimSpace(c.QueryParam("sort")),
		SortAsc:       strings.EqualFold(strings.TrimSpace(c.QueryParam("order")), "asc"),
		Limit:         limit,
		Offset:        offset,
	}

	total, items, err := s.pool.ListAds(c.Request().Context(), opts)
	if err != nil {
		s.logger.Error().Err(err).Str("country", country).Msg("query ads failed")
		return internalError(c, "Failed to load ads")
	}

	return success(c, map[string]any{
		"items":  items,
		"total":  total,
		"limit":  limit,
		"offset": offset,
	})
}

func (s *Server) handleAdDates(c echo.Context) error {
	country := strings.TrimSpace(c.QueryParam("country"))
	if country == "" {
		return failValidation(c, map[string]string{"country": "is required"})
	}

	dates, err := s.pool.DistinctDates(c.Request().Context(), country)
	if err != nil {
		s.logger.Error().Err(err).Str("country", country).Msg("query ad dates failed")
		return internalError(c, "Failed to load dates")
	}

	return success(c, map[string]any{"dates": dates})
}

func (s *Server) handleCategorizeAd(c echo.Context) error {
	var req categorizeAdRequest
	if err := c.Bind(&req); err != nil {
		return failValidation(c, map[string]string{"body": "must be valid JSON"})
	}

	fieldErrors := map[string]string{}
	if strings.TrimSpace(req.LandingPage) == "" {
		fieldErrors["landing_page"] = "is required"
	}
	if strings.TrimSpace(req.Category) == "" {
		fieldErrors["category"] = "is required"
	}
	if len(fieldErrors) > 0 {
		return failValidation(c, fieldErrors)
	}

	result, err := s.store.CategorizeAd(c.Request().Context(), req.LandingPage, req.Category, req.Title)
	if err != nil {
		s.logger.Error().Err(err).Str("landing_page", req.LandingPage).Msg("categorize ad failed")
		return internalError(c, "Failed to categorize ad")
	}

	return success(c, result)
}

func (s *Server) handleUninterested(c echo.Context) error {
	var req uninterestedRequest
	if err := c.Bind(&req); err != nil {
		return failValidation(c, map[string]string{"body": "must be valid JSON"})
	}
	if strings.TrimSpace(req.LandingPage) == "" {
		return failValidation(c, map[string]string{"landing_page": "is required"})
	}

	deleted, err := s.store.MarkUninterested(c.Request().Context(), req.LandingPage)
	if err != nil {
		s.logger.Error().Err(err).Str("landing_page", req.LandingPage).Msg("mark uninterested failed")
		return internalError(c, "Failed to mark uninterested")
	}

	return success(c, map[string]any{"ads_deleted": deleted})
}

func parseBoolParam(raw string) bool {
	switch strings.TrimSpace(strings.ToLower(raw)) {
	case "1", "true", "yes":
		return true
	default:
		return false
	}
}
