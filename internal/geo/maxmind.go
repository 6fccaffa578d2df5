package geo

import (
	"context"
	"fmt"
	"net"

	"github.com/oschwald/geoip2-golang"
)

// MaxMindLocator resolves IPs against a local MaxMind GeoIP2/GeoLite2 City
// database. Reads are safe for concurrent use.
type MaxMindLocator struct {
	reader *geoip2.Reader
}

func NewMaxMindLocator(dbPath string) (*MaxMindLocator, error) {
	reader, err := geoip2.Open(dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open GeoIP database: %w", err)
	}

	return &MaxMindLocator{reader: reader}, nil
}

func (l *MaxMindLocator) Lookup(ctx context.Context, ipAddress string) (*Location, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	ip := net.ParseIP(ipAddress)
	if ip == nil {
		return nil, fmt.Errorf("invalid IP address: %q", ipAddress)
	}

	record, err := l.reader.City(ip)
	if err != nil {
		return nil, err
	}

	loc := &Location{
		Country: record.Country.Names["en"],
		City:    record.City.Names["en"],
	}
	if loc.Country == "" {
		loc.Country = record.Country.IsoCode
	}

	if loc.Country == "" && loc.City == "" {
		return nil, nil
	}

	return loc, nil
}

func (l *MaxMindLocator) Close() error {
	return l.reader.Close()
}
