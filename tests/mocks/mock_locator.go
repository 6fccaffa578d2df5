package mocks

import (
	"context"

	"github.com/bruzethegreat/url-shortener/internal/geo"
	"github.com/stretchr/testify/mock"
)

type MockLocator struct {
	mock.Mock
}

func (m *MockLocator) Lookup(ctx context.Context, ipAddress string) (*geo.Location, error) {
	args := m.Called(ctx, ipAddress)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*geo.Location), args.Error(1)
}
