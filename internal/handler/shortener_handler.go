package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/bruzethegreat/url-shortener/internal/domain"
	"github.com/bruzethegreat/url-shortener/internal/logger"
	"github.com/bruzethegreat/url-shortener/pkg/response"
	"github.com/bruzethegreat/url-shortener/pkg/validator"
	"github.com/gin-gonic/gin"
)

type ShortenerService interface {
	Shorten(ctx context.Context, req *domain.CreateShortURLRequest) (*domain.ShortURL, error)
	Resolve(ctx context.Context, shortCode string, req *domain.ClickRequest) (string, error)
}

type ShortenerHandler struct {
	service ShortenerService
}

func NewShortenerHandler(service ShortenerService) *ShortenerHandler {
	return &ShortenerHandler{service: service}
}

func (h *ShortenerHandler) CreateShortURL(c *gin.Context) {
	ctx := c.Request.Context()
	log := logger.FromContext(ctx).With("component", "handler")

	var req domain.CreateShortURLRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		log.Warn("Malformed create request", "error", err)
		response.BadRequest(c, "Invalid request body")
		return
	}

	if validationErrors := validator.Validate(&req); len(validationErrors) > 0 {
		response.ValidationErrors(c, validationErrors)
		return
	}

	shortURL, err := h.service.Shorten(ctx, &req)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusCreated, domain.CreateShortURLResponse{
		ShortLink: shortURL.ShortLink,
		Expiry:    shortURL.ExpiresAt.Format(time.RFC3339),
	})
}

func (h *ShortenerHandler) Redirect(c *gin.Context) {
	ctx := c.Request.Context()
	shortCode := c.Param("shortCode")

	click := &domain.ClickRequest{
		IPAddress: c.ClientIP(),
		UserAgent: c.Request.UserAgent(),
		Referrer:  c.Request.Referer(),
	}

	originalURL, err := h.service.Resolve(ctx, shortCode, click)
	if err != nil {
		writeError(c, err)
		return
	}

	c.Redirect(http.StatusFound, originalURL)
}
