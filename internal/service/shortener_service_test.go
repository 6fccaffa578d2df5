package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/bruzethegreat/url-shortener/internal/domain"
	"github.com/bruzethegreat/url-shortener/internal/geo"
	"github.com/bruzethegreat/url-shortener/pkg/generator"
	"github.com/bruzethegreat/url-shortener/tests/mocks"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

const testBaseURL = "http://localhost:8080"

func newTestService(store URLStore, locator geo.Locator) *ShortenerService {
	return NewShortenerService(store, locator, testBaseURL)
}

func TestShorten_Success_GeneratedCode(t *testing.T) {
	mockStore := new(mocks.MockURLStore)
	service := newTestService(mockStore, nil)
	ctx := context.Background()

	req := &domain.CreateShortURLRequest{
		URL: "https://example.com",
	}

	mockStore.On("Create", ctx, mock.MatchedBy(func(url *domain.ShortURL) bool {
		return url.OriginalURL == "https://example.com" &&
			len(url.ShortCode) == generator.CodeLength &&
			url.IsActive == true &&
			url.ValidityMinutes == 30
	})).Return(nil).Once()

	result, err := service.Shorten(ctx, req)

	assert.NoError(t, err)
	require.NotNil(t, result)
	assert.Equal(t, "https://example.com", result.OriginalURL)
	assert.Len(t, result.ShortCode, generator.CodeLength)
	assert.Equal(t, testBaseURL+"/"+result.ShortCode, result.ShortLink)
	assert.True(t, result.IsActive)
	assert.Empty(t, result.Clicks)
	mockStore.AssertExpectations(t)
}

func TestShorten_Success_CustomShortCode(t *testing.T) {
	mockStore := new(mocks.MockURLStore)
	service := newTestService(mockStore, nil)
	ctx := context.Background()

	req := &domain.CreateShortURLRequest{
		URL:       "https://example.com",
		ShortCode: "mylink",
	}

	mockStore.On("Create", ctx, mock.MatchedBy(func(url *domain.ShortURL) bool {
		return url.ShortCode == "mylink" &&
			url.OriginalURL == "https://example.com"
	})).Return(nil).Once()

	result, err := service.Shorten(ctx, req)

	assert.NoError(t, err)
	assert.Equal(t, "mylink", result.ShortCode)
	mockStore.AssertExpectations(t)
}

func TestShorten_DefaultValidity(t *testing.T) {
	mockStore := new(mocks.MockURLStore)
	service := newTestService(mockStore, nil)
	ctx := context.Background()

	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	service.now = func() time.Time { return now }

	mockStore.On("Create", ctx, mock.AnythingOfType("*domain.ShortURL")).Return(nil).Once()

	result, err := service.Shorten(ctx, &domain.CreateShortURLRequest{URL: "https://example.com"})

	require.NoError(t, err)
	assert.Equal(t, 30, result.ValidityMinutes)
	assert.Equal(t, now, result.CreatedAt)
	assert.Equal(t, now.Add(30*time.Minute), result.ExpiresAt)
	mockStore.AssertExpectations(t)
}

func TestShorten_CustomValidity(t *testing.T) {
	mockStore := new(mocks.MockURLStore)
	service := newTestService(mockStore, nil)
	ctx := context.Background()

	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	service.now = func() time.Time { return now }

	validity := 5
	mockStore.On("Create", ctx, mock.AnythingOfType("*domain.ShortURL")).Return(nil).Once()

	result, err := service.Shorten(ctx, &domain.CreateShortURLRequest{
		URL:      "https://example.com",
		Validity: &validity,
	})

	require.NoError(t, err)
	assert.Equal(t, 5, result.ValidityMinutes)
	assert.Equal(t, now.Add(5*time.Minute), result.ExpiresAt)
	mockStore.AssertExpectations(t)
}

func TestShorten_InvalidURL(t *testing.T) {
	mockStore := new(mocks.MockURLStore)
	service := newTestService(mockStore, nil)
	ctx := context.Background()

	for _, raw := range []string{"", "not-a-valid-url", "ftp://example.com/file", "http://", "//missing-scheme.com"} {
		result, err := service.Shorten(ctx, &domain.CreateShortURLRequest{URL: raw})

		assert.ErrorIs(t, err, domain.ErrInvalidURL, "url %q should be rejected", raw)
		assert.Nil(t, result)
	}

	mockStore.AssertNotCalled(t, "Create")
}

func TestShorten_InvalidShortCodeFormat(t *testing.T) {
	mockStore := new(mocks.MockURLStore)
	service := newTestService(mockStore, nil)
	ctx := context.Background()

	result, err := service.Shorten(ctx, &domain.CreateShortURLRequest{
		URL:       "https://example.com",
		ShortCode: "ab cd!",
	})

	assert.ErrorIs(t, err, domain.ErrInvalidShortCode)
	assert.Nil(t, result)
	mockStore.AssertNotCalled(t, "Create")
}

func TestShorten_CustomShortCode_Duplicate_NotRetried(t *testing.T) {
	mockStore := new(mocks.MockURLStore)
	service := newTestService(mockStore, nil)
	ctx := context.Background()

	mockStore.On("Create", ctx, mock.MatchedBy(func(url *domain.ShortURL) bool {
		return url.ShortCode == "existing"
	})).Return(domain.ErrShortCodeExists).Once()

	result, err := service.Shorten(ctx, &domain.CreateShortURLRequest{
		URL:       "https://example.com",
		ShortCode: "existing",
	})

	assert.ErrorIs(t, err, domain.ErrShortCodeExists)
	assert.Nil(t, result)
	mockStore.AssertNumberOfCalls(t, "Create", 1)
}

func TestShorten_Generated_RetryAfterCollision(t *testing.T) {
	mockStore := new(mocks.MockURLStore)
	service := newTestService(mockStore, nil)
	ctx := context.Background()

	mockStore.On("Create", ctx, mock.AnythingOfType("*domain.ShortURL")).
		Return(domain.ErrShortCodeExists).Once()
	mockStore.On("Create", ctx, mock.AnythingOfType("*domain.ShortURL")).
		Return(nil).Once()

	result, err := service.Shorten(ctx, &domain.CreateShortURLRequest{URL: "https://example.com"})

	assert.NoError(t, err)
	assert.NotNil(t, result)
	mockStore.AssertNumberOfCalls(t, "Create", 2)
}

func TestShorten_Generated_FallbackAfterMaxCollisions(t *testing.T) {
	mockStore := new(mocks.MockURLStore)
	service := newTestService(mockStore, nil)
	ctx := context.Background()

	// All 10 random candidates collide; the uuid-derived fallback lands.
	mockStore.On("Create", ctx, mock.MatchedBy(func(url *domain.ShortURL) bool {
		return len(url.ShortCode) == generator.CodeLength
	})).Return(domain.ErrShortCodeExists).Times(10)

	mockStore.On("Create", ctx, mock.MatchedBy(func(url *domain.ShortURL) bool {
		return len(url.ShortCode) == generator.FallbackLength
	})).Return(nil).Once()

	result, err := service.Shorten(ctx, &domain.CreateShortURLRequest{URL: "https://example.com"})

	assert.NoError(t, err)
	require.NotNil(t, result)
	assert.Len(t, result.ShortCode, generator.FallbackLength)
	mockStore.AssertNumberOfCalls(t, "Create", 11)
}

func TestResolve_NotFound(t *testing.T) {
	mockStore := new(mocks.MockURLStore)
	service := newTestService(mockStore, nil)
	ctx := context.Background()

	mockStore.On("GetByShortCode", ctx, "missing").
		Return(nil, domain.ErrShortCodeNotFound).Once()

	originalURL, err := service.Resolve(ctx, "missing", &domain.ClickRequest{})

	assert.ErrorIs(t, err, domain.ErrShortCodeNotFound)
	assert.Empty(t, originalURL)
	mockStore.AssertNotCalled(t, "AppendClick")
}

func TestResolve_Expired(t *testing.T) {
	mockStore := new(mocks.MockURLStore)
	service := newTestService(mockStore, nil)
	ctx := context.Background()

	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	service.now = func() time.Time { return now }

	mockStore.On("GetByShortCode", ctx, "old").Return(&domain.ShortURL{
		ShortCode:   "old",
		OriginalURL: "https://example.com",
		IsActive:    true,
		ExpiresAt:   now.Add(-time.Second),
	}, nil).Once()

	_, err := service.Resolve(ctx, "old", &domain.ClickRequest{})

	assert.ErrorIs(t, err, domain.ErrShortCodeExpired)
	mockStore.AssertNotCalled(t, "AppendClick")
}

func TestResolve_ExactlyAtExpiry_NotExpired(t *testing.T) {
	mockStore := new(mocks.MockURLStore)
	service := newTestService(mockStore, nil)
	ctx := context.Background()

	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	service.now = func() time.Time { return now }

	mockStore.On("GetByShortCode", ctx, "edge").Return(&domain.ShortURL{
		ShortCode:   "edge",
		OriginalURL: "https://example.com",
		IsActive:    true,
		ExpiresAt:   now,
	}, nil).Once()
	mockStore.On("AppendClick", ctx, "edge", mock.AnythingOfType("*domain.ClickEvent")).
		Return(nil).Once()

	originalURL, err := service.Resolve(ctx, "edge", &domain.ClickRequest{})

	assert.NoError(t, err)
	assert.Equal(t, "https://example.com", originalURL)
	mockStore.AssertExpectations(t)
}

func TestResolve_Inactive(t *testing.T) {
	mockStore := new(mocks.MockURLStore)
	service := newTestService(mockStore, nil)
	ctx := context.Background()

	mockStore.On("GetByShortCode", ctx, "disabled").Return(&domain.ShortURL{
		ShortCode:   "disabled",
		OriginalURL: "https://example.com",
		IsActive:    false,
		ExpiresAt:   time.Now().Add(time.Hour),
	}, nil).Once()

	_, err := service.Resolve(ctx, "disabled", &domain.ClickRequest{})

	assert.ErrorIs(t, err, domain.ErrShortCodeInactive)
	mockStore.AssertNotCalled(t, "AppendClick")
}

func TestResolve_RecordsClick(t *testing.T) {
	mockStore := new(mocks.MockURLStore)
	mockLocator := new(mocks.MockLocator)
	service := newTestService(mockStore, mockLocator)
	ctx := context.Background()

	mockStore.On("GetByShortCode", ctx, "abc123").Return(&domain.ShortURL{
		ShortCode:   "abc123",
		OriginalURL: "https://example.com",
		IsActive:    true,
		ExpiresAt:   time.Now().Add(time.Hour),
	}, nil).Once()

	mockLocator.On("Lookup", mock.Anything, "198.51.100.7").
		Return(&geo.Location{Country: "Germany", City: "Berlin"}, nil).Once()

	mockStore.On("AppendClick", ctx, "abc123", mock.MatchedBy(func(click *domain.ClickEvent) bool {
		return click.ShortCode == "abc123" &&
			click.IPAddress == "198.51.100.7" &&
			click.UserAgent == "test-agent" &&
			click.Referrer == "https://referrer.example.com" &&
			click.Location == "Berlin, Germany"
	})).Return(nil).Once()

	originalURL, err := service.Resolve(ctx, "abc123", &domain.ClickRequest{
		IPAddress: "198.51.100.7",
		UserAgent: "test-agent",
		Referrer:  "https://referrer.example.com",
	})

	assert.NoError(t, err)
	assert.Equal(t, "https://example.com", originalURL)
	mockStore.AssertExpectations(t)
	mockLocator.AssertExpectations(t)
}

func TestResolve_EmptyReferrer_DefaultsToDirect(t *testing.T) {
	mockStore := new(mocks.MockURLStore)
	service := newTestService(mockStore, nil)
	ctx := context.Background()

	mockStore.On("GetByShortCode", ctx, "abc123").Return(&domain.ShortURL{
		ShortCode:   "abc123",
		OriginalURL: "https://example.com",
		IsActive:    true,
		ExpiresAt:   time.Now().Add(time.Hour),
	}, nil).Once()

	mockStore.On("AppendClick", ctx, "abc123", mock.MatchedBy(func(click *domain.ClickEvent) bool {
		return click.Referrer == "direct" && click.Location == "Unknown"
	})).Return(nil).Once()

	_, err := service.Resolve(ctx, "abc123", &domain.ClickRequest{IPAddress: "203.0.113.9"})

	assert.NoError(t, err)
	mockStore.AssertExpectations(t)
}

func TestResolve_GeoLookupFailure_DoesNotAbortRedirect(t *testing.T) {
	mockStore := new(mocks.MockURLStore)
	mockLocator := new(mocks.MockLocator)
	service := newTestService(mockStore, mockLocator)
	ctx := context.Background()

	mockStore.On("GetByShortCode", ctx, "abc123").Return(&domain.ShortURL{
		ShortCode:   "abc123",
		OriginalURL: "https://example.com",
		IsActive:    true,
		ExpiresAt:   time.Now().Add(time.Hour),
	}, nil).Once()

	mockLocator.On("Lookup", mock.Anything, mock.Anything).
		Return(nil, errors.New("geoip database corrupt")).Once()

	mockStore.On("AppendClick", ctx, "abc123", mock.MatchedBy(func(click *domain.ClickEvent) bool {
		return click.Location == "Unknown"
	})).Return(nil).Once()

	originalURL, err := service.Resolve(ctx, "abc123", &domain.ClickRequest{IPAddress: "203.0.113.9"})

	assert.NoError(t, err)
	assert.Equal(t, "https://example.com", originalURL)
	mockStore.AssertExpectations(t)
}

func TestResolve_ClickAppendFailure_DoesNotAbortRedirect(t *testing.T) {
	mockStore := new(mocks.MockURLStore)
	service := newTestService(mockStore, nil)
	ctx := context.Background()

	mockStore.On("GetByShortCode", ctx, "abc123").Return(&domain.ShortURL{
		ShortCode:   "abc123",
		OriginalURL: "https://example.com",
		IsActive:    true,
		ExpiresAt:   time.Now().Add(time.Hour),
	}, nil).Once()

	mockStore.On("AppendClick", ctx, "abc123", mock.AnythingOfType("*domain.ClickEvent")).
		Return(domain.ErrStoreUnavailable).Once()

	originalURL, err := service.Resolve(ctx, "abc123", &domain.ClickRequest{})

	assert.NoError(t, err, "analytics failure must never fail the redirect")
	assert.Equal(t, "https://example.com", originalURL)
	mockStore.AssertExpectations(t)
}

func TestStats_NotFound(t *testing.T) {
	mockStore := new(mocks.MockURLStore)
	service := newTestService(mockStore, nil)
	ctx := context.Background()

	mockStore.On("GetByShortCode", ctx, "missing").
		Return(nil, domain.ErrShortCodeNotFound).Once()

	stats, err := service.Stats(ctx, "missing")

	assert.ErrorIs(t, err, domain.ErrShortCodeNotFound)
	assert.Nil(t, stats)
}

func TestStats_Projection(t *testing.T) {
	mockStore := new(mocks.MockURLStore)
	service := newTestService(mockStore, nil)
	ctx := context.Background()

	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	service.now = func() time.Time { return now }

	created := now.Add(-10 * time.Minute)
	mockStore.On("GetByShortCode", ctx, "abc123").Return(&domain.ShortURL{
		ShortCode:   "abc123",
		ShortLink:   testBaseURL + "/abc123",
		OriginalURL: "https://example.com",
		CreatedAt:   created,
		ExpiresAt:   created.Add(30 * time.Minute),
		IsActive:    true,
		Clicks: []domain.ClickEvent{
			{Timestamp: created.Add(time.Minute), Referrer: "direct", Location: "Berlin, Germany"},
			{Timestamp: created.Add(2 * time.Minute), Referrer: "https://a.example.com", Location: "Unknown"},
		},
	}, nil).Once()

	stats, err := service.Stats(ctx, "abc123")

	require.NoError(t, err)
	assert.Equal(t, testBaseURL+"/abc123", stats.ShortLink)
	assert.Equal(t, "https://example.com", stats.OriginalURL)
	assert.Equal(t, 2, stats.TotalClicks)
	assert.True(t, stats.IsActive)
	require.Len(t, stats.Clicks, 2)
	assert.Equal(t, "direct", stats.Clicks[0].Referrer)
	assert.Equal(t, "Berlin, Germany", stats.Clicks[0].Location)
}

func TestStats_ExpiredRecordStillQueryable(t *testing.T) {
	mockStore := new(mocks.MockURLStore)
	service := newTestService(mockStore, nil)
	ctx := context.Background()

	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	service.now = func() time.Time { return now }

	created := now.Add(-2 * time.Minute)
	mockStore.On("GetByShortCode", ctx, "old").Return(&domain.ShortURL{
		ShortCode:   "old",
		OriginalURL: "https://example.com",
		CreatedAt:   created,
		ExpiresAt:   created.Add(time.Minute),
		IsActive:    true,
		Clicks:      []domain.ClickEvent{},
	}, nil).Once()

	stats, err := service.Stats(ctx, "old")

	require.NoError(t, err, "expiry does not delete data")
	assert.False(t, stats.IsActive)
	assert.Equal(t, 0, stats.TotalClicks)
}

func TestStatsAll_ComposesAllRecords(t *testing.T) {
	mockStore := new(mocks.MockURLStore)
	service := newTestService(mockStore, nil)
	ctx := context.Background()

	mockStore.On("List", ctx).Return([]*domain.ShortURL{
		{ShortCode: "one", ExpiresAt: time.Now().Add(time.Hour), IsActive: true},
		nil,
		{ShortCode: "two", ExpiresAt: time.Now().Add(time.Hour), IsActive: true},
	}, nil).Once()

	stats, err := service.StatsAll(ctx)

	require.NoError(t, err)
	require.Len(t, stats, 2, "an unreadable record is skipped, not fatal")
	assert.Equal(t, "one", stats[0].ShortCode)
	assert.Equal(t, "two", stats[1].ShortCode)
}

func TestStatsAll_StoreError(t *testing.T) {
	mockStore := new(mocks.MockURLStore)
	service := newTestService(mockStore, nil)
	ctx := context.Background()

	mockStore.On("List", ctx).Return(nil, domain.ErrStoreUnavailable).Once()

	stats, err := service.StatsAll(ctx)

	assert.ErrorIs(t, err, domain.ErrStoreUnavailable)
	assert.Nil(t, stats)
}
