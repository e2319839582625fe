// Package plan serves the current route report.
package plan

import (
	"errors"
	"net/http"

	"github.com/Gobusters/ectoerror/httperror"
	"github.com/Gobusters/ectologger"
	"github.com/labstack/echo/v4"

	"github.com/Ramsey-B/spielplan/pkg/pipeline"
)

// Handler handles the plan endpoint
type Handler struct {
	log   ectologger.Logger
	store *pipeline.ArtifactStore
}

// NewHandler creates a new plan handler
func NewHandler(log ectologger.Logger, store *pipeline.ArtifactStore) *Handler {
	return &Handler{log: log, store: store}
}

// RegisterRoutes registers the plan endpoint
func (h *Handler) RegisterRoutes(e *echo.Echo) {
	e.GET("/api/v1/plan", h.Plan)
}

// Plan returns the last generated route report
func (h *Handler) Plan(c echo.Context) error {
	ctx := c.Request().Context()

	report, err := h.store.LoadRouteReport()
	if err != nil {
		if errors.Is(err, pipeline.ErrArtifactMissing) {
			return httperror.NewHTTPError(http.StatusServiceUnavailable, "no route report available, run the route step first")
		}
		h.log.WithContext(ctx).WithError(err).Error("Failed to load route report")
		return httperror.NewHTTPError(http.StatusInternalServerError, "failed to load route report")
	}

	return c.JSON(http.StatusOK, report)
}
