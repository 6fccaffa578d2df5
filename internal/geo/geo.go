package geo

import (
	"context"
	"fmt"
)

const unknown = "Unknown"

// Location is a resolved approximate location for an IP address. Empty fields
// mean the database had no answer for them.
type Location struct {
	Country string
	City    string
}

// Display composes the public location string, substituting "Unknown" for
// missing parts.
func (l *Location) Display() string {
	if l == nil {
		return unknown
	}

	city := l.City
	if city == "" {
		city = unknown
	}
	country := l.Country
	if country == "" {
		country = unknown
	}

	return fmt.Sprintf("%s, %s", city, country)
}

// Locator resolves an IP address to an approximate location. Implementations
// are side-effect free; a nil Location with a nil error means the address is
// simply not in the database. Callers treat any failure as "Unknown" and
// never let it interrupt their own operation.
type Locator interface {
	Lookup(ctx context.Context, ipAddress string) (*Location, error)
}

// NoopLocator is used when no GeoIP database is configured. Every lookup
// resolves to nothing.
type NoopLocator struct{}

func (NoopLocator) Lookup(_ context.Context, _ string) (*Location, error) {
	return nil, nil
}
