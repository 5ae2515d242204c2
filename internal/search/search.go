package search

import (
	"context"
	"fmt"
	"math/rand/v2"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/dharmasatrya/flightproxy/internal/cache"
	"github.com/dharmasatrya/flightproxy/internal/models"
	"github.com/dharmasatrya/flightproxy/internal/normalizer"
	"github.com/dharmasatrya/flightproxy/internal/providers"
	"github.com/dharmasatrya/flightproxy/internal/searchid"
)

const SuccessMessage = "Search completed successfully"

// MinAirportQuery is the shortest query forwarded to the airport lookup.
const MinAirportQuery = 2

type Config struct {
	Timeout    time.Duration
	MaxRetries int
	BaseDelay  time.Duration
	MaxDelay   time.Duration
	Currency   string
}

func DefaultConfig() Config {
	return Config{
		Timeout:    10 * time.Second,
		MaxRetries: 2,
		BaseDelay:  200 * time.Millisecond,
		MaxDelay:   2 * time.Second,
		Currency:   "USD",
	}
}

type Service struct {
	provider providers.Provider
	store    cache.ResultStore
	config   Config
	log      zerolog.Logger
	newID    func() (string, error)
}

type Result struct {
	SearchID string
	Flights  []models.Itinerary
	Message  string
}

func NewService(provider providers.Provider, store cache.ResultStore, config Config, log zerolog.Logger) *Service {
	return &Service{
		provider: provider,
		store:    store,
		config:   config,
		log:      log,
		newID:    searchid.New,
	}
}

// Search validates the input, queries the provider and stores the normalized result. The result is
// readable from the store before Search returns.
func (s *Service) Search(ctx context.Context, in models.SearchInput) (*Result, error) {
	query, err := in.Build()
	if err != nil {
		return nil, err
	}

	searchCtx := ctx
	if s.config.Timeout > 0 {
		var cancel context.CancelFunc
		searchCtx, cancel = context.WithTimeout(ctx, s.config.Timeout)
		defer cancel()
	}

	raw, err := s.searchWithRetry(searchCtx, query)
	if err != nil {
		return nil, err
	}

	flights, message := normalizer.Normalize(raw, s.config.Currency)
	if message == "" {
		message = SuccessMessage
	}

	id, err := s.newID()
	if err != nil {
		return nil, fmt.Errorf("generate search id: %w", err)
	}

	if err := s.store.Put(ctx, id, flights); err != nil {
		return nil, fmt.Errorf("store search results: %w", err)
	}

	s.log.Info().
		Str("search_id", id).
		Str("origin", query.Origin.SkyID).
		Str("destination", query.Destination.SkyID).
		Int("results", len(flights)).
		Msg("Search completed")

	return &Result{
		SearchID: id,
		Flights:  flights,
		Message:  message,
	}, nil
}

func (s *Service) Airports(ctx context.Context, query string) ([]models.Airport, error) {
	query = strings.TrimSpace(query)
	if len(query) < MinAirportQuery {
		return []models.Airport{}, nil
	}

	return s.provider.Airports(ctx, query)
}

// searchWithRetry repeats the provider call only for transient network failures.
func (s *Service) searchWithRetry(ctx context.Context, query models.TripQuery) (providers.RawResponse, error) {
	var lastErr error

	for attempt := 0; attempt <= s.config.MaxRetries; attempt++ {
		if attempt > 0 {
			select {
			case <-time.After(s.backoff(attempt)):
			case <-ctx.Done():
				return nil, ctx.Err()
			}
		}

		raw, err := s.provider.Search(ctx, query)
		if err == nil {
			return raw, nil
		}

		lastErr = err
		if !providers.IsTransient(err) {
			return nil, err
		}

		s.log.Warn().
			Err(err).
			Str("provider", s.provider.Name()).
			Int("attempt", attempt+1).
			Msg("Provider attempt failed")
	}

	return nil, lastErr
}

// backoff doubles per attempt up to MaxDelay; the wait is drawn from [d/2, d].
func (s *Service) backoff(attempt int) time.Duration {
	d := s.config.BaseDelay << (attempt - 1)
	if s.config.MaxDelay > 0 && (d > s.config.MaxDelay || d <= 0) {
		d = s.config.MaxDelay
	}
	if d <= 0 {
		return 0
	}

	half := d / 2
	return half + rand.N(d-half+1)
}
