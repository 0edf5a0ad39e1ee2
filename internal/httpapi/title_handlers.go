package httpapi

import (
	"errors"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/AJMedia-landers/ads-console/internal/mapping"
)

type createTitleMappingRequest struct {
	Title           string `json:"title"`
	Category        string `json:"category"`
	TranslatedTitle string `json:"translated_title"`
}

type updateTitleMappingRequest struct {
	Category string `json:"category"`
}

func (s *Server) handleListTitleMappings(c echo.Context) error {
	limit, offset, fieldErrors := parsePagination(c)
	if fieldErrors != nil {
		return failValidation(c, fieldErrors)
	}
	search := strings.TrimSpace(c.QueryParam("search"))

	total, items, err := s.pool.ListTitleMappings(c.Request().Context(), search, limit, offset)
	if err != nil {
		s.logger.Error().Err(err).Msg("query title mappings failed")
		return internalError(c, "Failed to load title mappings")
	}

	return success(c, map[string]any{
		"items":  items,
		"total":  total,
		"limit":  limit,
		"offset": offset,
	})
}

func (s *Server) handleCreateTitleMapping(c echo.Context) error {
	var req createTitleMappingRequest
	if err := c.Bind(&req); err != nil {
		return failValidation(c, map[string]string{"body": "must be valid JSON"})
	}

	fieldErrors := map[string]string{}
	if strings.TrimSpace(req.Title) == "" {
		fieldErrors["title"] = "is required"
	}
	if strings.TrimSpace(req.Category) == "" {
		fieldErrors["category"] = "is required"
	}
	if len(fieldErrors) > 0 {
		return failValidation(c, fieldErrors)
	}

	result, err := s.store.CreateTitleRule(c.Request().Context(), req.Title, req.Category, req.TranslatedTitle)
	if err != nil {
		if errors.Is(err, mapping.ErrDuplicateRule) {
			return failConflict(c, "A mapping for this title already exists")
		}
		s.logger.Error().Err(err).Msg("create title mapping failed")
		return internalError(c, "Failed to create title mapping")
	}

	return successWithStatus(c, http.StatusCreated, result)
}

func (s *Server) handleUpdateTitleMapping(c echo.Context) error {
	id, err := parseID(c.Param("id"))
	if err != nil {
		return failValidation(c, map[string]string{"id": err.Error()})
	}

	var req updateTitleMappingRequest
	if err := c.Bind(&req); err != nil {
		return failValidation(c, map[string]string{"body": "must be valid JSON"})
	}
	if strings.TrimSpace(req.Category) == "" {
		return failValidation(c, map[string]string{"category": "is required"})
	}

	result, err := s.store.UpdateTitleRule(c.Request().Context(), id, req.Category)
	if err != nil {
		if errors.Is(err, mapping.ErrRuleNotFound) {
			return failNotFound(c, "Title mapping not found")
		}
		s.logger.Error().Err(err).Int64("id", id).Msg("update title mapping failed")
		return internalError(c, "Failed to update title mapping")
	}

	return success(c, result)
}

func (s *Server) handleDeleteTitleMapping(c echo.Context) error {
	id, err := parseID(c.Param("id"))
	if err != nil {
		return failValidation(c, map[string]string{"id": err.Error()})
	}

	if err := s.store.DeleteTitleRule(c.Request().Context(), id); err != nil {
		if errors.Is(err, mapping.ErrRuleNotFound) {
			return failNotFound(c, "Title mapping not found")
		}
		s.logger.Error().Err(err).Int64("id", id).Msg("delete title mapping failed")
		return internalError(c, "Failed to delete title mapping")
	}

	return success(c, map[string]any{"deleted": true, "id": id})
}
