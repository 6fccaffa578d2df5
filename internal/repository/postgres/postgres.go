package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/bruzethegreat/url-shortener/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

const (
	uniqueViolation     = "23505"
	foreignKeyViolation = "23503"
)

// Store is the Postgres backend. Shortcode uniqueness is enforced by the
// UNIQUE constraint, so Create is atomic across processes; clicks keep their
// append order through the seq column.
type Store struct {
	db *pgxpool.Pool
}

func New(db *pgxpool.Pool) *Store {
	return &Store{db: db}
}

// InitSchema creates the tables on startup when they do not exist yet.
func (s *Store) InitSchema(ctx context.Context) error {
	schema := `
		CREATE TABLE IF NOT EXISTS short_urls (
			id UUID PRIMARY KEY,
			short_code TEXT UNIQUE NOT NULL,
			original_url TEXT NOT NULL,
			short_link TEXT NOT NULL,
			created_at TIMESTAMPTZ NOT NULL,
			expires_at TIMESTAMPTZ NOT NULL,
			validity_minutes INT NOT NULL,
			is_active BOOLEAN NOT NULL DEFAULT TRUE
		);

		CREATE TABLE IF NOT EXISTS clicks (
			seq BIGSERIAL PRIMARY KEY,
			id UUID UNIQUE NOT NULL,
			short_code TEXT NOT NULL REFERENCES short_urls(short_code),
			clicked_at TIMESTAMPTZ NOT NULL,
			ip_address TEXT NOT NULL,
			user_agent TEXT NOT NULL,
			referrer TEXT NOT NULL,
			country TEXT NOT NULL DEFAULT '',
			city TEXT NOT NULL DEFAULT '',
			location TEXT NOT NULL
		);

		CREATE INDEX IF NOT EXISTS idx_clicks_short_code ON clicks (short_code, seq);
	`

	if _, err := s.db.Exec(ctx, schema); err != nil {
		return fmt.Errorf("failed to initialize schema: %w", err)
	}

	return nil
}

func (s *Store) Create(ctx context.Context, url *domain.ShortURL) error {
	query := `
		INSERT INTO short_urls (id, short_code, original_url, short_link, created_at, expires_at, validity_minutes, is_active)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`

	_, err := s.db.Exec(ctx, query,
		url.ID,
		url.ShortCode,
		url.OriginalURL,
		url.ShortLink,
		url.CreatedAt,
		url.ExpiresAt,
		url.ValidityMinutes,
		url.IsActive,
	)

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
		return domain.ErrShortCodeExists
	}
	if err != nil {
		return fmt.Errorf("%w: %v", domain.ErrStoreUnavailable, err)
	}

	return nil
}

func (s *Store) GetByShortCode(ctx context.Context, shortCode string) (*domain.ShortURL, error) {
	var url domain.ShortURL

	query := `
		SELECT id, short_code, original_url, short_link, created_at, expires_at, validity_minutes, is_active
		FROM short_urls
		WHERE short_code = $1
	`

	row := s.db.QueryRow(ctx, query, shortCode)

	err := row.Scan(
		&url.ID,
		&url.ShortCode,
		&url.OriginalURL,
		&url.ShortLink,
		&url.CreatedAt,
		&url.ExpiresAt,
		&url.ValidityMinutes,
		&url.IsActive,
	)

	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrShortCodeNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrStoreUnavailable, err)
	}

	clicks, err := s.clicksFor(ctx, shortCode)
	if err != nil {
		return nil, err
	}
	url.Clicks = clicks

	return &url, nil
}

func (s *Store) AppendClick(ctx context.Context, shortCode string, click *domain.ClickEvent) error {
	query := `
		INSERT INTO clicks (id, short_code, clicked_at, ip_address, user_agent, referrer, country, city, location)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`

	_, err := s.db.Exec(ctx, query,
		click.ID,
		shortCode,
		click.Timestamp,
		click.IPAddress,
		click.UserAgent,
		click.Referrer,
		click.Country,
		click.City,
		click.Location,
	)

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == foreignKeyViolation {
		return domain.ErrShortCodeNotFound
	}
	if err != nil {
		return fmt.Errorf("%w: %v", domain.ErrStoreUnavailable, err)
	}

	return nil
}

func (s *Store) List(ctx context.Context) ([]*domain.ShortURL, error) {
	query := `
		SELECT id, short_code, original_url, short_link, created_at, expires_at, validity_minutes, is_active
		FROM short_urls
		ORDER BY created_at
	`

	rows, err := s.db.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrStoreUnavailable, err)
	}
	defer rows.Close()

	var urls []*domain.ShortURL
	for rows.Next() {
		var url domain.ShortURL
		err := rows.Scan(
			&url.ID,
			&url.ShortCode,
			&url.OriginalURL,
			&url.ShortLink,
			&url.CreatedAt,
			&url.ExpiresAt,
			&url.ValidityMinutes,
			&url.IsActive,
		)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", domain.ErrStoreUnavailable, err)
		}
		urls = append(urls, &url)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrStoreUnavailable, err)
	}

	for _, url := range urls {
		clicks, err := s.clicksFor(ctx, url.ShortCode)
		if err != nil {
			return nil, err
		}
		url.Clicks = clicks
	}

	return urls, nil
}

func (s *Store) clicksFor(ctx context.Context, shortCode string) ([]domain.ClickEvent, error) {
	query := `
		SELECT id, short_code, clicked_at, ip_address, user_agent, referrer, country, city, location
		FROM clicks
		WHERE short_code = $1
		ORDER BY seq
	`

	rows, err := s.db.Query(ctx, query, shortCode)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrStoreUnavailable, err)
	}
	defer rows.Close()

	clicks := []domain.ClickEvent{}
	for rows.Next() {
		var click domain.ClickEvent
		err := rows.Scan(
			&click.ID,
			&click.ShortCode,
			&click.Timestamp,
			&click.IPAddress,
			&click.UserAgent,
			&click.Referrer,
			&click.Country,
			&click.City,
			&click.Location,
		)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", domain.ErrStoreUnavailable, err)
		}
		clicks = append(clicks, click)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrStoreUnavailable, err)
	}

	return clicks, nil
}

func (s *Store) Ping(ctx context.Context) error {
	return s.db.Ping(ctx)
}

func (s *Store) Close() {
	s.db.Close()
}
