package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/dharmasatrya/flightproxy/internal/models"
)

// ErrNotFound means no result set exists for a search id. An empty result set is not an error.
var ErrNotFound = errors.New("no flights found for this search")

// ResultStore holds normalized itineraries keyed by search id.
type ResultStore interface {
	Put(ctx context.Context, searchID string, itineraries []models.Itinerary) error
	Get(ctx context.Context, searchID string) ([]models.Itinerary, error)
	Close() error
}

type RedisStore struct {
	client *redis.Client
	ttl    time.Duration
	prefix string
}

type RedisConfig struct {
	Host     string
	Port     string
	Password string
	DB       int
	TTL      time.Duration
	Prefix   string
}

func DefaultRedisConfig() RedisConfig {
	return RedisConfig{
		Host:     "localhost",
		Port:     "6379",
		Password: "",
		DB:       0,
		TTL:      30 * time.Minute,
		Prefix:   "flights:search:",
	}
}

func NewRedisStore(cfg RedisConfig) (*RedisStore, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Host + ":" + cfg.Port,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}

	prefix := cfg.Prefix
	if prefix == "" {
		prefix = DefaultRedisConfig().Prefix
	}

	return &RedisStore{
		client: client,
		ttl:    cfg.TTL,
		prefix: prefix,
	}, nil
}

func (s *RedisStore) Get(ctx context.Context, searchID string) ([]models.Itinerary, error) {
	data, err := s.client.Get(ctx, s.prefix+searchID).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("redis get: %w", err)
	}

	itineraries := make([]models.Itinerary, 0)
	if err := json.Unmarshal(data, &itineraries); err != nil {
		return nil, fmt.Errorf("decode cached itineraries: %w", err)
	}

	return itineraries, nil
}

func (s *RedisStore) Put(ctx context.Context, searchID string, itineraries []models.Itinerary) error {
	if itineraries == nil {
		itineraries = []models.Itinerary{}
	}

	data, err := json.Marshal(itineraries)
	if err != nil {
		return err
	}

	return s.client.Set(ctx, s.prefix+searchID, data, s.ttl).Err()
}

func (s *RedisStore) Close() error {
	return s.client.Close()
}
