package httpapi

import (
	"errors"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/AJMedia-landers/ads-console/internal/mapping"
)

type mergeCategoriesRequest struct {
	Sources []string `json:"sources"`
	Target  string   `json:"target"`
}

func (s *Server) handleListCategories(c echo.Context) error {
	limit, offset, fieldErrors := parsePagination(c)
	if fieldErrors != nil {
		return failValidation(c, fieldErrors)
	}
	search := strings.TrimSpace(c.QueryParam("search"))

	total, items, err := s.pool.ListCategoriesWithCounts(c.Request().Context(), search, limit, offset)
	if err != nil {
		s.logger.Error().Err(err).Msg("query categories failed")
		return internalError(c, "Failed to load categories")
	}

	return success(c, map[string]any{
		"items":  items,
		"total":  total,
		"limit":  limit,
		"offset": offset,
	})
}

func (s *Server) handleAllCategories(c echo.Context) error {
	categories, err := s.pool.DistinctCategories(c.Request().Context())
	if err != nil {
		s.logger.Error().Err(err).Msg("query distinct categories failed")
		return internalError(c, "Failed to load categories")
	}
	return success(c, map[string]any{"categories": categories})
}

func (s *Server) handleMergeCategories(c echo.Context) error {
	var req mergeCategoriesRequest
	if err := c.Bind(&req); err != nil {
		return failValidation(c, map[string]string{"body": "must be valid JSON"})
	}

	fieldErrors := map[string]string{}
	if strings.TrimSpace(req.Target) == "" {
		fieldErrors["target"] = "is required"
	}
	nonEmpty := 0
	for _, source := range req.Sources {
		if strings.TrimSpace(source) != "" {
			nonEmpty++
		}
	}
	if nonEmpty == 0 {
		fieldErrors["sources"] = "at least one source category is required"
	}
	if len(fieldErrors) > 0 {
		return failValidation(c, fieldErrors)
	}

	result, err := s.store.MergeCategories(c.Request().Context(), req.Sources, req.Target)
	if err != nil {
		if errors.Is(err, mapping.ErrMergeTargetInSources) {
			return failValidation(c, map[string]string{"sources": "must not contain the target category"})
		}
		s.logger.Error().Err(err).Str("target", req.Target).Msg("merge categories failed")
		return internalError(c, "Failed to merge categories")
	}

	return success(c, result)
}

// handleStartNormalise triggers the normalization job. A fresh start is
// 202; a poke while a run is in flight returns that run's status with 200.
func (s *Server) handleStartNormalise(c echo.Context) error {
	status, started := s.runner.Start()
	if !started {
		return success(c, status)
	}
	return successWithStatus(c, http.StatusAccepted, status)
}

func (s *Server) handleNormaliseStatus(c echo.Context) error {
	return success(c, s.runner.Status())
}
