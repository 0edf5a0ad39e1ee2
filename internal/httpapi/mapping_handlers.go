package httpapi

import (
	"errors"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/AJMedia-landers/ads-console/internal/mapping"
)

type createMappingRequest struct {
	URL      string `json:"url"`
	Category string `json:"category"`
}

type updateMappingRequest struct {
	Category string `json:"category"`
}

func (s *Server) handleListMappings(c echo.Context) error {
	limit, offset, fieldErrors := parsePagination(c)
	if fieldErrors != nil {
		return failValidation(c, fieldErrors)
	}
	search := strings.TrimSpace(c.QueryParam("search"))

	total, items, err := s.pool.ListURLMappings(c.Request().Context(), search, limit, offset)
	if err != nil {
		s.logger.Error().Err(err).Msg("query url mappings failed")
		return internalError(c, "Failed to load mappings")
	}

	return success(c, map[string]any{
		"items":  items,
		"total":  total,
		"limit":  limit,
		"offset": offset,
	})
}

func (s *Server) handleCreateMapping(c echo.Context) error {
	var req createMappingRequest
	if err := c.Bind(&req); err != nil {
		return failValidation(c, map[string]string{"body": "must be valid JSON"})
	}

	fieldErrors := map[string]string{}
	if strings.TrimSpace(req.URL) == "" {
		fieldErrors["url"] = "is required"
	}
	if strings.TrimSpace(req.Category) == "" {
		fieldErrors["category"] = "is required"
	}
	if len(fieldErrors) > 0 {
		return failValidation(c, fieldErrors)
	}

	result, err := s.store.CreateURLRule(c.Request().Context(), req.URL, req.Category)
	if err != nil {
		if errors.Is(err, mapping.ErrDuplicateRule) {
			return failConflict(c, "A mapping for this URL already exists")
		}
		s.logger.Error().Err(err).Str("url", req.URL).Msg("create url mapping failed")
		return internalError(c, "Failed to create mapping")
	}

	return successWithStatus(c, http.StatusCreated, result)
}

func (s *Server) handleUpdateMapping(c echo.Context) error {
	id, err := parseID(c.Param("id"))
	if err != nil {
		return failValidation(c, map[string]string{"id": err.Error()})
	}

	var req updateMappingRequest
	if err := c.Bind(&req); err != nil {
		return failValidation(c, map[string]string{"body": "must be valid JSON"})
	}
	if strings.TrimSpace(req.Category) == "" {
		return failValidation(c, map[string]string{"category": "is required"})
	}

	result, err := s.store.UpdateURLRule(c.Request().Context(), id, req.Category)
	if err != nil {
		if errors.Is(err, mapping.ErrRuleNotFound) {
			return failNotFound(c, "Mapping not found")
		}
		s.logger.Error().Err(err).Int64("id", id).Msg("update url mapping failed")
		return internalError(c, "Failed to update mapping")
	}

	return success(c, result)
}

func (s *Server) handleDeleteMapping(c echo.Context) error {
	id, err := parseID(c.Param("id"))
	if err != nil {
		return failValidation(c, map[string]string{"id": err.Error()})
	}

	if err := s.store.DeleteURLRule(c.Request().Context(), id); err != nil {
		if errors.Is(err, mapping.ErrRuleNotFound) {
			return failNotFound(c, "Mapping not found")
		}
		s.logger.Error().Err(err).Int64("id", id).Msg("delete url mapping failed")
		return internalError(c, "Failed to delete mapping")
	}

	return success(c, map[string]any{"deleted": true, "id": id})
}
