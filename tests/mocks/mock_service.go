package mocks

import (
	"context"

	"github.com/bruzethegreat/url-shortener/internal/domain"
	"github.com/stretchr/testify/mock"
)

type MockShortenerService struct {
	mock.Mock
}

func (m *MockShortenerService) Shorten(ctx context.Context, req *domain.CreateShortURLRequest) (*domain.ShortURL, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ShortURL), args.Error(1)
}

func (m *MockShortenerService) Resolve(ctx context.Context, shortCode string, req *domain.ClickRequest) (string, error) {
	args := m.Called(ctx, shortCode, req)
	return args.String(0), args.Error(1)
}

func (m *MockShortenerService) Stats(ctx context.Context, shortCode string) (*domain.URLStats, error) {
	args := m.Called(ctx, shortCode)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.URLStats), args.Error(1)
}

func (m *MockShortenerService) StatsAll(ctx context.Context) ([]*domain.URLStats, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.URLStats), args.Error(1)
}
