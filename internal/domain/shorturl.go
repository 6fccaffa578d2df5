package domain

import "time"

// ShortURL is one shortened URL together with its click log. The record is
// immutable after creation except for IsActive and the append-only Clicks.
type ShortURL struct {
	ID              string       `json:"id"`
	OriginalURL     string       `json:"original_url"`
	ShortCode       string       `json:"short_code"`
	ShortLink       string       `json:"short_link"`
	CreatedAt       time.Time    `json:"created_at"`
	ExpiresAt       time.Time    `json:"expires_at"`
	ValidityMinutes int          `json:"validity_minutes"`
	IsActive        bool         `json:"is_active"`
	Clicks          []ClickEvent `json:"clicks"`
}

// Expired reports whether the record is past its expiry at the given time.
// The boundary itself still resolves: only strictly-after counts as expired.
func (u *ShortURL) Expired(now time.Time) bool {
	return now.After(u.ExpiresAt)
}

// ClickEvent is recorded once per successful redirect.
type ClickEvent struct {
	ID        string    `json:"id"`
	ShortCode string    `json:"short_code"`
	Timestamp time.Time `json:"timestamp"`
	IPAddress string    `json:"ip_address"`
	UserAgent string    `json:"user_agent"`
	Referrer  string    `json:"referrer"`
	Country   string    `json:"country,omitempty"`
	City      string    `json:"city,omitempty"`
	Location  string    `json:"location"`
}

type CreateShortURLRequest struct {
	URL       string `json:"url" validate:"required"`
	Validity  *int   `json:"validity,omitempty" validate:"omitempty,gt=0"`
	ShortCode string `json:"shortcode,omitempty" validate:"omitempty,shortcode"`
}

type CreateShortURLResponse struct {
	ShortLink string `json:"shortLink"`
	Expiry    string `json:"expiry"`
}

// ClickRequest carries the request provenance captured at the redirect
// boundary into the service layer.
type ClickRequest struct {
	IPAddress string
	UserAgent string
	Referrer  string
}
