package domain

import "errors"

// Closed error set returned by the service and store layers. Handlers map
// these to HTTP statuses in exactly one place; nothing matches on message
// text.
var (
	ErrInvalidURL        = errors.New("invalid URL format")
	ErrInvalidShortCode  = errors.New("invalid shortcode format")
	ErrShortCodeExists   = errors.New("shortcode already exists")
	ErrShortCodeNotFound = errors.New("short URL not found")
	ErrShortCodeExpired  = errors.New("short URL has expired")
	ErrShortCodeInactive = errors.New("short URL is no longer active")
	ErrStoreUnavailable  = errors.New("store unavailable")
)
