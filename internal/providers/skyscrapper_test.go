package providers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dharmasatrya/flightproxy/internal/models"
	"github.com/dharmasatrya/flightproxy/internal/ratelimit"
)

func tripQuery(t *testing.T) models.TripQuery {
	t.Helper()
	dep, err := models.ParseLocalDate("2025-03-01")
	require.NoError(t, err)
	ret, err := models.ParseLocalDate("2025-03-08")
	require.NoError(t, err)

	return models.TripQuery{
		TripType:      models.TripRoundTrip,
		Origin:        models.Location{SkyID: "JFK", EntityID: "95565058"},
		Destination:   models.Location{SkyID: "LAX", EntityID: "95673635"},
		DepartureDate: dep,
		ReturnDate:    &ret,
		Passengers:    models.Passengers{Adults: 2, Children: 1, InfantsInSeat: 1, InfantsOnLap: 1},
		CabinClass:    models.CabinPremiumEconomy,
	}
}

func TestSkyScrapper_Search(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v1/flights/searchFlights", r.URL.Path)
		assert.Equal(t, "test-key", r.Header.Get("X-RapidAPI-Key"))
		assert.Equal(t, DefaultHost, r.Header.Get("X-RapidAPI-Host"))

		q := r.URL.Query()
		assert.Equal(t, "JFK", q.Get("originSkyId"))
		assert.Equal(t, "LAX", q.Get("destinationSkyId"))
		assert.Equal(t, "95565058", q.Get("originEntityId"))
		assert.Equal(t, "95673635", q.Get("destinationEntityId"))
		assert.Equal(t, "2025-03-01", q.Get("date"))
		assert.Equal(t, "2025-03-08", q.Get("returnDate"))
		assert.Equal(t, "2", q.Get("adults"))
		assert.Equal(t, "1", q.Get("children"))
		assert.Equal(t, "2", q.Get("infants"))
		assert.Equal(t, "premium_economy", q.Get("cabinClass"))
		assert.Equal(t, "USD", q.Get("currency"))
		assert.Equal(t, "US", q.Get("market"))
		assert.Equal(t, "US", q.Get("countryCode"))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"status":true,"data":{"itineraries":[{"id":"a"}]}}`))
	}))
	defer server.Close()

	p := NewSkyScrapper("test-key", WithBaseURL(server.URL), WithRateLimiter(ratelimit.NewKeyedLimiterWithDefaults()))

	raw, err := p.Search(context.Background(), tripQuery(t))
	require.NoError(t, err)
	assert.Equal(t, true, raw["status"])
}

func TestSkyScrapper_Search_MissingCredentials(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
	}))
	defer server.Close()

	p := NewSkyScrapper("", WithBaseURL(server.URL))

	_, err := p.Search(context.Background(), tripQuery(t))
	assert.ErrorIs(t, err, ErrMissingCredentials)
	assert.Zero(t, calls.Load())
}

func TestSkyScrapper_Search_StatusError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		_, _ = w.Write([]byte(`{"message":"You have exceeded the rate limit per second for your plan"}`))
	}))
	defer server.Close()

	p := NewSkyScrapper("test-key", WithBaseURL(server.URL))

	_, err := p.Search(context.Background(), tripQuery(t))

	var statusErr *StatusError
	require.ErrorAs(t, err, &statusErr)
	assert.Equal(t, http.StatusTooManyRequests, statusErr.StatusCode)
	assert.Contains(t, statusErr.Message, "rate limit")
	assert.False(t, IsTransient(err))
}

func TestSkyScrapper_Search_NetworkFailureIsTransient(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	baseURL := server.URL
	server.Close()

	p := NewSkyScrapper("test-key", WithBaseURL(baseURL))

	_, err := p.Search(context.Background(), tripQuery(t))
	require.Error(t, err)
	assert.True(t, IsTransient(err))
}

func TestSkyScrapper_Search_OneWayReturnDate(t *testing.T) {
	q := tripQuery(t)
	q.ReturnDate = nil

	params := NewSkyScrapper("k").SearchParams(q)
	assert.True(t, params.Has("returnDate"))
	assert.Equal(t, "", params.Get("returnDate"))
}

func TestSkyScrapper_Airports(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v1/flights/searchAirport", r.URL.Path)
		assert.Equal(t, "london", r.URL.Query().Get("query"))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"status":true,"data":[
			{"skyId":"LOND","entityId":"27544008","presentation":{"title":"London","subtitle":"United Kingdom"}},
			{"skyId":"LHR","entityId":"95565050","presentation":{"title":"London Heathrow","subtitle":"United Kingdom"}}
		]}`))
	}))
	defer server.Close()

	p := NewSkyScrapper("test-key", WithBaseURL(server.URL))

	airports, err := p.Airports(context.Background(), " London ")
	require.NoError(t, err)
	require.Len(t, airports, 2)
	assert.Equal(t, models.Airport{
		SkyID:    "LHR",
		EntityID: "95565050",
		IataCode: "LHR",
		Name:     "London Heathrow",
		CityName: "United Kingdom",
	}, airports[1])
}

func TestSkyScrapper_Airports_SharedLookupOutlivesCancelledCaller(t *testing.T) {
	var hits atomic.Int32
	started := make(chan struct{}, 1)
	release := make(chan struct{})

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		select {
		case started <- struct{}{}:
		default:
		}
		<-release

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"data":[{"skyId":"JFK","entityId":"95565058","presentation":{"title":"New York John F. Kennedy"}}]}`))
	}))
	defer server.Close()

	p := NewSkyScrapper("test-key", WithBaseURL(server.URL))

	firstCtx, cancelFirst := context.WithCancel(context.Background())
	firstErr := make(chan error, 1)
	go func() {
		_, err := p.Airports(firstCtx, "jfk")
		firstErr <- err
	}()
	<-started

	type result struct {
		airports []models.Airport
		err      error
	}
	second := make(chan result, 1)
	go func() {
		airports, err := p.Airports(context.Background(), "jfk")
		second <- result{airports, err}
	}()

	cancelFirst()
	assert.ErrorIs(t, <-firstErr, context.Canceled)

	close(release)
	res := <-second
	require.NoError(t, res.err)
	require.Len(t, res.airports, 1)
	assert.Equal(t, "JFK", res.airports[0].SkyID)
	assert.LessOrEqual(t, hits.Load(), int32(2))
}
