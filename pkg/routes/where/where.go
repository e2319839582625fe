// Package where serves the single-game lookup endpoint.
package where

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/Gobusters/ectoerror/httperror"
	"github.com/Gobusters/ectologger"
	"github.com/labstack/echo/v4"

	"github.com/Ramsey-B/spielplan/pkg/bgg"
	"github.com/Ramsey-B/spielplan/pkg/lookup"
	"github.com/Ramsey-B/spielplan/pkg/models"
)

// Handler handles the where endpoint
type Handler struct {
	log    ectologger.Logger
	lookup *lookup.Service
}

// NewHandler creates a new where handler
func NewHandler(log ectologger.Logger, lookup *lookup.Service) *Handler {
	return &Handler{log: log, lookup: lookup}
}

// RegisterRoutes registers the where endpoint
func (h *Handler) RegisterRoutes(e *echo.Echo) {
	e.GET("/api/v1/where", h.Where)
}

// GameInfo is the game part of the response
type GameInfo struct {
	ObjectID         int      `json:"object_id"`
	Name             string   `json:"name"`
	BGGURL           string   `json:"bgg_url"`
	Publishers       []string `json:"publishers"`
	AverageRating    *float64 `json:"average_rating,omitempty"`
	ComplexityWeight *float64 `json:"complexity_weight,omitempty"`
	MinPlayers       *int     `json:"min_players,omitempty"`
	MaxPlayers       *int     `json:"max_players,omitempty"`
	PlayingTime      *int     `json:"playing_time,omitempty"`
}

// ExhibitorInfo is one matched exhibitor in the response
type ExhibitorInfo struct {
	ID               string  `json:"id"`
	Name             string  `json:"name"`
	Hall             string  `json:"hall,omitempty"`
	Booth            string  `json:"booth,omitempty"`
	Country          string  `json:"country,omitempty"`
	Website          string  `json:"website,omitempty"`
	MatchConfidence  float64 `json:"match_confidence"`
	MatchReason      string  `json:"match_reason"`
	ProductConfirmed bool    `json:"product_confirmed"`
	ProductMatchInfo string  `json:"product_match_info,omitempty"`
}

// WhereResponse is the full response
type WhereResponse struct {
	Game             GameInfo        `json:"game"`
	Exhibitors       []ExhibitorInfo `json:"exhibitors"`
	Matched          bool            `json:"matched"`
	ConfirmedMatches int             `json:"confirmed_matches"`
}

// Where finds Essen exhibitor information for a BGG game. Takes exactly one
// of the id or link query parameters.
func (h *Handler) Where(c echo.Context) error {
	ctx := c.Request().Context()

	idParam := c.QueryParam("id")
	linkParam := c.QueryParam("link")

	if idParam == "" && linkParam == "" {
		return httperror.NewHTTPError(http.StatusBadRequest, "must provide either 'id' or 'link' parameter")
	}
	if idParam != "" && linkParam != "" {
		return httperror.NewHTTPError(http.StatusBadRequest, "provide only one of 'id' or 'link', not both")
	}

	var objectID int
	if idParam != "" {
		id, err := strconv.Atoi(idParam)
		if err != nil || id <= 0 {
			return httperror.NewHTTPError(http.StatusBadRequest, "'id' must be a positive integer")
		}
		objectID = id
	} else {
		id, ok := bgg.ParseURL(linkParam)
		if !ok {
			return httperror.NewHTTPError(http.StatusBadRequest, "invalid BoardGameGeek URL format, expected https://boardgamegeek.com/boardgame/{id}/{slug}")
		}
		objectID = id
	}

	match, err := h.lookup.Lookup(ctx, models.Game{ObjectID: objectID})
	if err != nil {
		if errors.Is(err, lookup.ErrDataUnavailable) {
			return httperror.NewHTTPError(http.StatusServiceUnavailable, "essen data not available")
		}
		h.log.WithContext(ctx).WithError(err).Error("Lookup failed")
		return httperror.NewHTTPError(http.StatusInternalServerError, "lookup failed")
	}

	resp := WhereResponse{
		Game: GameInfo{
			ObjectID:         match.Game.ObjectID,
			Name:             match.Game.Name,
			BGGURL:           match.Game.BGGURL(),
			Publishers:       match.Game.Publishers,
			AverageRating:    match.Game.AverageRating,
			ComplexityWeight: match.Game.ComplexityWeight,
			MinPlayers:       match.Game.MinPlayers,
			MaxPlayers:       match.Game.MaxPlayers,
			PlayingTime:      match.Game.PlayingTime,
		},
		Exhibitors: make([]ExhibitorInfo, 0, len(match.Matches)),
		Matched:    match.IsMatched(),
	}

	for _, em := range match.Matches {
		if em.ProductConfirmed {
			resp.ConfirmedMatches++
		}
		resp.Exhibitors = append(resp.Exhibitors, ExhibitorInfo{
			ID:               em.Exhibitor.ID,
			Name:             em.Exhibitor.Name,
			Hall:             em.Exhibitor.Hall.String(),
			Booth:            em.Exhibitor.Booth,
			Country:          em.Exhibitor.Country,
			Website:          em.Exhibitor.Website,
			MatchConfidence:  em.Confidence,
			MatchReason:      em.Reason,
			ProductConfirmed: em.ProductConfirmed,
			ProductMatchInfo: em.ProductMatchInfo,
		})
	}

	return c.JSON(http.StatusOK, resp)
}
