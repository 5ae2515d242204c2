package providers

import (
	"cmp"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/singleflight"

	"github.com/dharmasatrya/flightproxy/internal/models"
	"github.com/dharmasatrya/flightproxy/internal/ratelimit"
)

const (
	DefaultBaseURL = "https://sky-scrapper.p.rapidapi.com"
	DefaultHost    = "sky-scrapper.p.rapidapi.com"

	OperationSearch   = "search"
	OperationAirports = "airports"

	maxErrorBody = 64 << 10

	airportLookupTimeout = 10 * time.Second
)

type SkyScrapper struct {
	httpClient  *http.Client
	limiter     *ratelimit.KeyedLimiter
	log         zerolog.Logger
	group       *singleflight.Group
	apiKey      string
	host        string
	baseURL     string
	currency    string
	market      string
	countryCode string
}

type Option func(p *SkyScrapper)

func WithHttpClient(httpClient *http.Client) Option {
	return func(p *SkyScrapper) {
		p.httpClient = httpClient
	}
}

func WithRateLimiter(limiter *ratelimit.KeyedLimiter) Option {
	return func(p *SkyScrapper) {
		p.limiter = limiter
	}
}

func WithBaseURL(baseURL string) Option {
	return func(p *SkyScrapper) {
		p.baseURL = strings.TrimRight(baseURL, "/")
	}
}

func WithHost(host string) Option {
	return func(p *SkyScrapper) {
		p.host = host
	}
}

func WithMarket(currency, market, countryCode string) Option {
	return func(p *SkyScrapper) {
		p.currency = currency
		p.market = market
		p.countryCode = countryCode
	}
}

func WithLogger(log zerolog.Logger) Option {
	return func(p *SkyScrapper) {
		p.log = log
	}
}

func NewSkyScrapper(apiKey string, opts ...Option) *SkyScrapper {
	p := &SkyScrapper{
		apiKey: apiKey,
		log:    zerolog.Nop(),
		group:  new(singleflight.Group),
	}

	for _, opt := range opts {
		opt(p)
	}

	p.httpClient = cmp.Or(p.httpClient, http.DefaultClient)
	p.baseURL = cmp.Or(p.baseURL, DefaultBaseURL)
	p.host = cmp.Or(p.host, DefaultHost)
	p.currency = cmp.Or(p.currency, "USD")
	p.market = cmp.Or(p.market, "US")
	p.countryCode = cmp.Or(p.countryCode, "US")

	return p
}

func (p *SkyScrapper) Name() string {
	return "skyscrapper"
}

func (p *SkyScrapper) Currency() string {
	return p.currency
}

func (p *SkyScrapper) SearchParams(q models.TripQuery) url.Values {
	params := url.Values{}
	params.Set("originSkyId", q.Origin.SkyID)
	params.Set("destinationSkyId", q.Destination.SkyID)
	params.Set("originEntityId", q.Origin.EntityID)
	params.Set("destinationEntityId", q.Destination.EntityID)
	params.Set("date", q.DepartureDate.String())
	if q.ReturnDate != nil {
		params.Set("returnDate", q.ReturnDate.String())
	} else {
		params.Set("returnDate", "")
	}
	params.Set("adults", strconv.Itoa(q.Passengers.Adults))
	params.Set("children", strconv.Itoa(q.Passengers.Children))
	params.Set("infants", strconv.Itoa(q.Passengers.Infants()))
	params.Set("cabinClass", string(q.CabinClass))
	params.Set("currency", p.currency)
	params.Set("market", p.market)
	params.Set("countryCode", p.countryCode)
	return params
}

func (p *SkyScrapper) Search(ctx context.Context, q models.TripQuery) (RawResponse, error) {
	params := p.SearchParams(q)
	p.log.Debug().
		Str("origin", q.Origin.SkyID).
		Str("destination", q.Destination.SkyID).
		Str("date", params.Get("date")).
		Str("return_date", params.Get("returnDate")).
		Str("cabin_class", params.Get("cabinClass")).
		Msg("Searching flights")

	var raw RawResponse
	if err := p.get(ctx, OperationSearch, "/api/v1/flights/searchFlights", params, &raw); err != nil {
		return nil, err
	}
	return raw, nil
}

type airportSearchResponse struct {
	Data []struct {
		SkyID        string `json:"skyId"`
		EntityID     string `json:"entityId"`
		Presentation struct {
			Title    string `json:"title"`
			Subtitle string `json:"subtitle"`
		} `json:"presentation"`
	} `json:"data"`
}

// Airports looks up places matching query. Identical concurrent lookups share one upstream
// request, which is not tied to any single caller's context.
func (p *SkyScrapper) Airports(ctx context.Context, query string) ([]models.Airport, error) {
	key := strings.ToLower(strings.TrimSpace(query))

	ch := p.group.DoChan(key, func() (any, error) {
		lookupCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), airportLookupTimeout)
		defer cancel()

		return p.lookupAirports(lookupCtx, key)
	})

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val.([]models.Airport), nil
	}
}

func (p *SkyScrapper) lookupAirports(ctx context.Context, query string) ([]models.Airport, error) {
	params := url.Values{}
	params.Set("query", query)

	var resp airportSearchResponse
	if err := p.get(ctx, OperationAirports, "/api/v1/flights/searchAirport", params, &resp); err != nil {
		return nil, err
	}

	airports := make([]models.Airport, 0, len(resp.Data))
	for _, a := range resp.Data {
		airports = append(airports, models.Airport{
			SkyID:    a.SkyID,
			EntityID: a.EntityID,
			IataCode: a.SkyID,
			Name:     a.Presentation.Title,
			CityName: a.Presentation.Subtitle,
		})
	}
	return airports, nil
}

func (p *SkyScrapper) get(ctx context.Context, operation, path string, params url.Values, out any) error {
	if p.apiKey == "" {
		return ErrMissingCredentials
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.baseURL+path, nil)
	if err != nil {
		return NewProviderError(p.Name(), err)
	}
	req.URL.RawQuery = params.Encode()
	req.Header.Set("X-RapidAPI-Key", p.apiKey)
	req.Header.Set("X-RapidAPI-Host", p.host)
	req.Header.Set("Accept", "application/json")

	if p.limiter != nil {
		if err := p.limiter.Wait(ctx, operation); err != nil {
			return NewProviderError(p.Name(), err)
		}
	}

	resp, err := p.httpClient.Do(req)
	if err != nil {
		pe := NewProviderError(p.Name(), err)
		pe.Transient = ctx.Err() == nil
		return pe
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &StatusError{
			StatusCode: resp.StatusCode,
			Message:    readErrorMessage(resp.Body),
		}
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		if errors.Is(err, io.EOF) {
			return nil
		}
		return NewProviderError(p.Name(), err)
	}
	return nil
}

func readErrorMessage(r io.Reader) string {
	body, err := io.ReadAll(io.LimitReader(r, maxErrorBody))
	if err != nil {
		return ""
	}

	var payload struct {
		Message string `json:"message"`
	}
	if err := json.Unmarshal(body, &payload); err == nil && payload.Message != "" {
		return payload.Message
	}
	return ""
}
