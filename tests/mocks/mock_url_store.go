package mocks

import (
	"context"

	"github.com/bruzethegreat/url-shortener/internal/domain"
	"github.com/stretchr/testify/mock"
)

type MockURLStore struct {
	mock.Mock
}

func (m *MockURLStore) Create(ctx context.Context, url *domain.ShortURL) error {
	args := m.Called(ctx, url)
	return args.Error(0)
}

func (m *MockURLStore) GetByShortCode(ctx context.Context, shortCode string) (*domain.ShortURL, error) {
	args := m.Called(ctx, shortCode)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ShortURL), args.Error(1)
}

func (m *MockURLStore) AppendClick(ctx context.Context, shortCode string, click *domain.ClickEvent) error {
	args := m.Called(ctx, shortCode, click)
	return args.Error(0)
}

func (m *MockURLStore) List(ctx context.Context) ([]*domain.ShortURL, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.ShortURL), args.Error(1)
}
