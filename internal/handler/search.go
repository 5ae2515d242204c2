package handler

import (
	"context"
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/dharmasatrya/flightproxy/internal/cache"
	"github.com/dharmasatrya/flightproxy/internal/filter"
	"github.com/dharmasatrya/flightproxy/internal/models"
	"github.com/dharmasatrya/flightproxy/internal/providers"
	"github.com/dharmasatrya/flightproxy/internal/search"
)

const (
	msgInvalidBody     = "Invalid request body"
	msgMissingSearchID = "Search ID is required"
	msgMissingFlights  = "Flights are required"
	msgNoFlights       = "No flights found for this search"
	msgInvalidStops    = "Invalid stops filter"
	msgSearchFailed    = "Failed to search flights"
	msgAirportsFailed  = "Failed to search airports"
	msgInternal        = "Internal server error"
	msgMissingAPIKey   = "API key not configured"
)

type Searcher interface {
	Search(ctx context.Context, in models.SearchInput) (*search.Result, error)
	Airports(ctx context.Context, query string) ([]models.Airport, error)
}

type SearchHandler struct {
	searcher Searcher
	store    cache.ResultStore
	log      zerolog.Logger
}

func NewSearchHandler(s Searcher, store cache.ResultStore, log zerolog.Logger) *SearchHandler {
	return &SearchHandler{
		searcher: s,
		store:    store,
		log:      log,
	}
}

// Search handles POST /api/flights.
func (h *SearchHandler) Search(c echo.Context) error {
	var in models.SearchInput
	if err := c.Bind(&in); err != nil {
		return c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: msgInvalidBody})
	}

	result, err := h.searcher.Search(c.Request().Context(), in)
	if err != nil {
		return h.upstreamError(c, err, msgSearchFailed)
	}

	return c.JSON(http.StatusOK, models.SearchResponse{
		SearchID: result.SearchID,
		Flights:  result.Flights,
		Message:  result.Message,
	})
}

// StoreResults handles POST /api/flights/results.
func (h *SearchHandler) StoreResults(c echo.Context) error {
	var req models.StoreResultsRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: msgInvalidBody})
	}
	if req.SearchID == "" {
		return c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: msgMissingSearchID})
	}
	if req.Flights == nil {
		return c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: msgMissingFlights})
	}

	if err := h.store.Put(c.Request().Context(), req.SearchID, *req.Flights); err != nil {
		h.log.Error().Err(err).Str("search_id", req.SearchID).Msg("Failed to store flight results")
		return c.JSON(http.StatusInternalServerError, models.ErrorResponse{Error: msgInternal})
	}

	return c.JSON(http.StatusOK, models.StoreResultsResponse{Success: true})
}

// Results handles GET /api/flights/results?id=.
func (h *SearchHandler) Results(c echo.Context) error {
	searchID := c.QueryParam("id")
	if searchID == "" {
		return c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: msgMissingSearchID})
	}

	stops, err := filter.ParseStops(c.QueryParam("stops"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: msgInvalidStops})
	}

	flights, err := h.store.Get(c.Request().Context(), searchID)
	if errors.Is(err, cache.ErrNotFound) {
		return c.JSON(http.StatusNotFound, models.ErrorResponse{Error: msgNoFlights})
	}
	if err != nil {
		h.log.Error().Err(err).Str("search_id", searchID).Msg("Failed to load flight results")
		return c.JSON(http.StatusInternalServerError, models.ErrorResponse{Error: msgInternal})
	}

	opts := filter.Options{
		SortBy:    c.QueryParam("sort"),
		SortOrder: c.QueryParam("order"),
		Stops:     stops,
	}
	if !opts.IsZero() {
		flights = filter.Apply(flights, opts)
	}

	return c.JSON(http.StatusOK, models.ResultsResponse{
		Flights:      flights,
		TotalResults: len(flights),
	})
}

// Airports handles GET /api/airports?query=.
func (h *SearchHandler) Airports(c echo.Context) error {
	airports, err := h.searcher.Airports(c.Request().Context(), c.QueryParam("query"))
	if err != nil {
		return h.upstreamError(c, err, msgAirportsFailed)
	}

	return c.JSON(http.StatusOK, models.AirportsResponse{Airports: airports})
}

func (h *SearchHandler) upstreamError(c echo.Context, err error, generic string) error {
	var validationErr models.ValidationError
	if errors.As(err, &validationErr) {
		return c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: validationErr.Error()})
	}

	if errors.Is(err, providers.ErrMissingCredentials) {
		h.log.Error().Msg("Upstream API key is not configured")
		return c.JSON(http.StatusInternalServerError, models.ErrorResponse{Error: msgMissingAPIKey})
	}

	h.log.Error().Err(err).Str("path", c.Path()).Msg(generic)
	return c.JSON(http.StatusInternalServerError, models.ErrorResponse{Error: generic})
}

func HealthHandler(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{
		"status": "ok",
	})
}
