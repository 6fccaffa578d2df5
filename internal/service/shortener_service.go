package service

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"time"

	"github.com/bruzethegreat/url-shortener/internal/domain"
	"github.com/bruzethegreat/url-shortener/internal/geo"
	"github.com/bruzethegreat/url-shortener/internal/logger"
	"github.com/bruzethegreat/url-shortener/pkg/generator"
	"github.com/google/uuid"
)

const (
	defaultValidityMinutes = 30

	// maxGenerateAttempts bounds collision retries for auto-generated codes
	// before falling back to a uuid-derived code.
	maxGenerateAttempts = 10

	geoLookupTimeout = 2 * time.Second
)

type URLStore interface {
	Create(ctx context.Context, url *domain.ShortURL) error
	GetByShortCode(ctx context.Context, shortCode string) (*domain.ShortURL, error)
	AppendClick(ctx context.Context, shortCode string, click *domain.ClickEvent) error
	List(ctx context.Context) ([]*domain.ShortURL, error)
}

type ShortenerService struct {
	store   URLStore
	locator geo.Locator
	baseURL string
	now     func() time.Time
}

func NewShortenerService(store URLStore, locator geo.Locator, baseURL string) *ShortenerService {
	if locator == nil {
		locator = geo.NoopLocator{}
	}

	return &ShortenerService{
		store:   store,
		locator: locator,
		baseURL: baseURL,
		now:     time.Now,
	}
}

// Shorten creates a new short URL. A user-supplied shortcode is used as-is or
// rejected, never retried; an auto-generated one retries on collision.
func (s *ShortenerService) Shorten(ctx context.Context, req *domain.CreateShortURLRequest) (*domain.ShortURL, error) {
	log := logger.FromContext(ctx).With("component", "service")

	if !isValidURL(req.URL) {
		log.Warn("Rejected invalid URL", "url", req.URL)
		return nil, domain.ErrInvalidURL
	}

	validity := defaultValidityMinutes
	if req.Validity != nil {
		validity = *req.Validity
	}

	if req.ShortCode != "" {
		if !generator.IsValidShortCode(req.ShortCode) {
			log.Warn("Rejected invalid shortcode", "shortcode", req.ShortCode)
			return nil, domain.ErrInvalidShortCode
		}

		shortURL := s.newShortURL(req.URL, req.ShortCode, validity)
		if err := s.store.Create(ctx, shortURL); err != nil {
			if errors.Is(err, domain.ErrShortCodeExists) {
				log.Warn("Shortcode already taken", "shortcode", req.ShortCode)
			}
			return nil, err
		}

		log.Info("Short URL created", "shortcode", shortURL.ShortCode, "expires_at", shortURL.ExpiresAt)
		return shortURL, nil
	}

	shortURL, err := s.createGenerated(ctx, req.URL, validity)
	if err != nil {
		return nil, err
	}

	log.Info("Short URL created", "shortcode", shortURL.ShortCode, "expires_at", shortURL.ExpiresAt)
	return shortURL, nil
}

func (s *ShortenerService) createGenerated(ctx context.Context, originalURL string, validity int) (*domain.ShortURL, error) {
	for i := 0; i < maxGenerateAttempts; i++ {
		code, err := generator.GenerateShortCode()
		if err != nil {
			return nil, err
		}

		shortURL := s.newShortURL(originalURL, code, validity)
		err = s.store.Create(ctx, shortURL)
		if err == nil {
			return shortURL, nil
		}
		if !errors.Is(err, domain.ErrShortCodeExists) {
			return nil, err
		}
	}

	// Every random candidate collided; the uuid-derived code is unique by
	// construction so this insert is expected to succeed.
	shortURL := s.newShortURL(originalURL, generator.FallbackShortCode(), validity)
	if err := s.store.Create(ctx, shortURL); err != nil {
		return nil, fmt.Errorf("fallback shortcode insert failed: %w", err)
	}

	return shortURL, nil
}

func (s *ShortenerService) newShortURL(originalURL, shortCode string, validity int) *domain.ShortURL {
	createdAt := s.now()

	return &domain.ShortURL{
		ID:              uuid.New().String(),
		OriginalURL:     originalURL,
		ShortCode:       shortCode,
		ShortLink:       fmt.Sprintf("%s/%s", s.baseURL, shortCode),
		CreatedAt:       createdAt,
		ExpiresAt:       createdAt.Add(time.Duration(validity) * time.Minute),
		ValidityMinutes: validity,
		IsActive:        true,
		Clicks:          []domain.ClickEvent{},
	}
}

// Resolve returns the original URL for a shortcode and records the click.
// Click recording is best-effort: once the shortcode itself resolves, neither
// a geolocation failure nor a store failure on the click append may fail the
// redirect.
func (s *ShortenerService) Resolve(ctx context.Context, shortCode string, req *domain.ClickRequest) (string, error) {
	log := logger.FromContext(ctx).With("component", "service")

	shortURL, err := s.store.GetByShortCode(ctx, shortCode)
	if err != nil {
		return "", err
	}

	if shortURL.Expired(s.now()) {
		log.Warn("Expired shortcode accessed", "shortcode", shortCode)
		return "", domain.ErrShortCodeExpired
	}

	if !shortURL.IsActive {
		log.Warn("Inactive shortcode accessed", "shortcode", shortCode)
		return "", domain.ErrShortCodeInactive
	}

	s.recordClick(ctx, shortCode, req)

	log.Info("Redirect resolved", "shortcode", shortCode, "original_url", shortURL.OriginalURL)
	return shortURL.OriginalURL, nil
}

func (s *ShortenerService) recordClick(ctx context.Context, shortCode string, req *domain.ClickRequest) {
	log := logger.FromContext(ctx).With("component", "service")

	referrer := req.Referrer
	if referrer == "" {
		referrer = "direct"
	}

	click := &domain.ClickEvent{
		ID:        uuid.New().String(),
		ShortCode: shortCode,
		Timestamp: s.now(),
		IPAddress: req.IPAddress,
		UserAgent: req.UserAgent,
		Referrer:  referrer,
		Location:  "Unknown",
	}

	geoCtx, cancel := context.WithTimeout(ctx, geoLookupTimeout)
	defer cancel()

	location, err := s.locator.Lookup(geoCtx, req.IPAddress)
	if err != nil {
		log.Warn("Geolocation lookup failed", "ip", req.IPAddress, "error", err)
	} else if location != nil {
		click.Country = location.Country
		click.City = location.City
		click.Location = location.Display()
	}

	if err := s.store.AppendClick(ctx, shortCode, click); err != nil {
		log.Error("Failed to record click", "shortcode", shortCode, "error", err)
	}
}

// Stats projects one record into its public statistics view.
func (s *ShortenerService) Stats(ctx context.Context, shortCode string) (*domain.URLStats, error) {
	shortURL, err := s.store.GetByShortCode(ctx, shortCode)
	if err != nil {
		return nil, err
	}

	return s.statsView(shortURL), nil
}

// StatsAll projects every record in the store. A single record failing to
// load does not abort the whole collection.
func (s *ShortenerService) StatsAll(ctx context.Context) ([]*domain.URLStats, error) {
	log := logger.FromContext(ctx).With("component", "service")

	urls, err := s.store.List(ctx)
	if err != nil {
		return nil, err
	}

	stats := make([]*domain.URLStats, 0, len(urls))
	for _, shortURL := range urls {
		if shortURL == nil {
			log.Warn("Skipping unreadable record in stats listing")
			continue
		}
		stats = append(stats, s.statsView(shortURL))
	}

	return stats, nil
}

func (s *ShortenerService) statsView(shortURL *domain.ShortURL) *domain.URLStats {
	clicks := make([]domain.ClickData, 0, len(shortURL.Clicks))
	for _, click := range shortURL.Clicks {
		location := click.Location
		if location == "" {
			location = "Unknown"
		}
		clicks = append(clicks, domain.ClickData{
			Timestamp: click.Timestamp.Format(time.RFC3339),
			Referrer:  click.Referrer,
			Location:  location,
		})
	}

	return &domain.URLStats{
		ShortLink:   shortURL.ShortLink,
		OriginalURL: shortURL.OriginalURL,
		ShortCode:   shortURL.ShortCode,
		CreatedAt:   shortURL.CreatedAt.Format(time.RFC3339),
		ExpiresAt:   shortURL.ExpiresAt.Format(time.RFC3339),
		TotalClicks: len(shortURL.Clicks),
		IsActive:    shortURL.IsActive && s.now().Before(shortURL.ExpiresAt),
		Clicks:      clicks,
	}
}

func isValidURL(raw string) bool {
	parsed, err := url.Parse(raw)
	if err != nil {
		return false
	}

	return (parsed.Scheme == "http" || parsed.Scheme == "https") && parsed.Host != ""
}
