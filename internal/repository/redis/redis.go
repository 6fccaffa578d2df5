package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/bruzethegreat/url-shortener/internal/domain"
	"github.com/redis/go-redis/v9"
)

const indexKey = "short_urls"

// Store is the Redis backend. SETNX gives the atomic create-if-absent, clicks
// live in a per-code list so RPUSH preserves append order.
type Store struct {
	client *redis.Client
}

func New(client *redis.Client) *Store {
	return &Store{client: client}
}

func urlKey(shortCode string) string {
	return fmt.Sprintf("url:%s", shortCode)
}

func clicksKey(shortCode string) string {
	return fmt.Sprintf("clicks:%s", shortCode)
}

func (s *Store) Create(ctx context.Context, url *domain.ShortURL) error {
	record := *url
	record.Clicks = nil

	data, err := json.Marshal(&record)
	if err != nil {
		return err
	}

	// No TTL: expired records stay queryable through stats.
	set, err := s.client.SetNX(ctx, urlKey(url.ShortCode), data, 0).Result()
	if err != nil {
		return fmt.Errorf("%w: %v", domain.ErrStoreUnavailable, err)
	}
	if !set {
		return domain.ErrShortCodeExists
	}

	if err := s.client.SAdd(ctx, indexKey, url.ShortCode).Err(); err != nil {
		return fmt.Errorf("%w: %v", domain.ErrStoreUnavailable, err)
	}

	return nil
}

func (s *Store) GetByShortCode(ctx context.Context, shortCode string) (*domain.ShortURL, error) {
	data, err := s.client.Get(ctx, urlKey(shortCode)).Result()
	if errors.Is(err, redis.Nil) {
		return nil, domain.ErrShortCodeNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrStoreUnavailable, err)
	}

	var url domain.ShortURL
	if err := json.Unmarshal([]byte(data), &url); err != nil {
		return nil, err
	}

	clicks, err := s.clicksFor(ctx, shortCode)
	if err != nil {
		return nil, err
	}
	url.Clicks = clicks

	return &url, nil
}

func (s *Store) AppendClick(ctx context.Context, shortCode string, click *domain.ClickEvent) error {
	exists, err := s.client.Exists(ctx, urlKey(shortCode)).Result()
	if err != nil {
		return fmt.Errorf("%w: %v", domain.ErrStoreUnavailable, err)
	}
	if exists == 0 {
		return domain.ErrShortCodeNotFound
	}

	data, err := json.Marshal(click)
	if err != nil {
		return err
	}

	if err := s.client.RPush(ctx, clicksKey(shortCode), data).Err(); err != nil {
		return fmt.Errorf("%w: %v", domain.ErrStoreUnavailable, err)
	}

	return nil
}

func (s *Store) List(ctx context.Context) ([]*domain.ShortURL, error) {
	codes, err := s.client.SMembers(ctx, indexKey).Result()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrStoreUnavailable, err)
	}

	urls := make([]*domain.ShortURL, 0, len(codes))
	for _, code := range codes {
		url, err := s.GetByShortCode(ctx, code)
		if errors.Is(err, domain.ErrShortCodeNotFound) {
			continue
		}
		if err != nil {
			return nil, err
		}
		urls = append(urls, url)
	}

	return urls, nil
}

func (s *Store) clicksFor(ctx context.Context, shortCode string) ([]domain.ClickEvent, error) {
	entries, err := s.client.LRange(ctx, clicksKey(shortCode), 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrStoreUnavailable, err)
	}

	clicks := make([]domain.ClickEvent, 0, len(entries))
	for _, entry := range entries {
		var click domain.ClickEvent
		if err := json.Unmarshal([]byte(entry), &click); err != nil {
			return nil, err
		}
		clicks = append(clicks, click)
	}

	return clicks, nil
}

func (s *Store) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

func (s *Store) Close() {
	s.client.Close()
}
