package memory

import (
	"context"
	"sync"

	"github.com/bruzethegreat/url-shortener/internal/domain"
)

// Store is the default in-process backend. A single mutex guards the map, so
// Create is an atomic check-and-insert: concurrent creates racing on one
// shortcode resolve to exactly one winner, the rest observe
// ErrShortCodeExists. All reads return deep copies so callers never alias
// internal state.
type Store struct {
	mu   sync.RWMutex
	urls map[string]*domain.ShortURL
}

func New() *Store {
	return &Store{
		urls: make(map[string]*domain.ShortURL),
	}
}

func (s *Store) Create(ctx context.Context, url *domain.ShortURL) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.urls[url.ShortCode]; exists {
		return domain.ErrShortCodeExists
	}

	s.urls[url.ShortCode] = clone(url)
	return nil
}

func (s *Store) GetByShortCode(ctx context.Context, shortCode string) (*domain.ShortURL, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	url, exists := s.urls[shortCode]
	if !exists {
		return nil, domain.ErrShortCodeNotFound
	}

	return clone(url), nil
}

func (s *Store) AppendClick(ctx context.Context, shortCode string, click *domain.ClickEvent) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	url, exists := s.urls[shortCode]
	if !exists {
		return domain.ErrShortCodeNotFound
	}

	url.Clicks = append(url.Clicks, *click)
	return nil
}

// List returns a snapshot of every record present at call time.
func (s *Store) List(ctx context.Context) ([]*domain.ShortURL, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	urls := make([]*domain.ShortURL, 0, len(s.urls))
	for _, url := range s.urls {
		urls = append(urls, clone(url))
	}

	return urls, nil
}

func (s *Store) Ping(ctx context.Context) error {
	return nil
}

func (s *Store) Close() {}

func clone(url *domain.ShortURL) *domain.ShortURL {
	copied := *url
	copied.Clicks = make([]domain.ClickEvent, len(url.Clicks))
	copy(copied.Clicks, url.Clicks)
	return &copied
}
