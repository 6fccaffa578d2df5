package handler

import (
	"errors"

	"github.com/bruzethegreat/url-shortener/internal/domain"
	"github.com/bruzethegreat/url-shortener/pkg/response"
	"github.com/gin-gonic/gin"
)

// writeError is the single mapping from the domain error set to HTTP
// statuses. Handlers never branch on error text.
func writeError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, domain.ErrInvalidURL),
		errors.Is(err, domain.ErrInvalidShortCode):
		response.BadRequest(c, err.Error())
	case errors.Is(err, domain.ErrShortCodeExists):
		response.Conflict(c, err.Error())
	case errors.Is(err, domain.ErrShortCodeNotFound):
		response.NotFound(c, err.Error())
	case errors.Is(err, domain.ErrShortCodeExpired),
		errors.Is(err, domain.ErrShortCodeInactive):
		response.Gone(c, err.Error())
	default:
		response.InternalServerError(c, "An unexpected error occurred")
	}
}
