// Package search serves the BGG search endpoint.
package search

import (
	"net/http"

	"github.com/Gobusters/ectoerror/httperror"
	"github.com/Gobusters/ectologger"
	"github.com/labstack/echo/v4"

	"github.com/Ramsey-B/spielplan/pkg/bgg"
)

// Handler handles the search endpoint
type Handler struct {
	log ectologger.Logger
	bgg *bgg.Client
}

// NewHandler creates a new search handler
func NewHandler(log ectologger.Logger, client *bgg.Client) *Handler {
	return &Handler{log: log, bgg: client}
}

// RegisterRoutes registers the search endpoint
func (h *Handler) RegisterRoutes(e *echo.Echo) {
	e.GET("/api/v1/search", h.Search)
}

// SearchResponse wraps the search results
type SearchResponse struct {
	Query   string             `json:"query"`
	Results []bgg.SearchResult `json:"results"`
	Count   int                `json:"count"`
}

// Search proxies a query to BGG's search page
func (h *Handler) Search(c echo.Context) error {
	ctx := c.Request().Context()

	query := c.QueryParam("q")
	if query == "" {
		return httperror.NewHTTPError(http.StatusBadRequest, "'q' parameter is required")
	}

	results, err := h.bgg.Search(ctx, query)
	if err != nil {
		h.log.WithContext(ctx).WithError(err).Error("BGG search failed")
		return httperror.NewHTTPError(http.StatusServiceUnavailable, "failed to search BoardGameGeek")
	}

	if results == nil {
		results = []bgg.SearchResult{}
	}

	return c.JSON(http.StatusOK, SearchResponse{
		Query:   query,
		Results: results,
		Count:   len(results),
	})
}
