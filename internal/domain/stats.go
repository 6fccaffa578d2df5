package domain

// URLStats is the public statistics projection of a ShortURL. IsActive is
// recomputed at query time from the stored flag and the expiry, never stored.
type URLStats struct {
	ShortLink   string      `json:"shortUrl"`
	OriginalURL string      `json:"originalUrl"`
	ShortCode   string      `json:"shortCode"`
	CreatedAt   string      `json:"createdAt"`
	ExpiresAt   string      `json:"expiresAt"`
	TotalClicks int         `json:"totalClicks"`
	IsActive    bool        `json:"isActive"`
	Clicks      []ClickData `json:"clicks"`
}

type ClickData struct {
	Timestamp string `json:"timestamp"`
	Referrer  string `json:"referrer"`
	Location  string `json:"location"`
}
