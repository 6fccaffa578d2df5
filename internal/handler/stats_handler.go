package handler

import (
	"context"
	"net/http"

	"github.com/bruzethegreat/url-shortener/internal/domain"
	"github.com/gin-gonic/gin"
)

type StatsService interface {
	Stats(ctx context.Context, shortCode string) (*domain.URLStats, error)
	StatsAll(ctx context.Context) ([]*domain.URLStats, error)
}

type StatsHandler struct {
	service StatsService
}

func NewStatsHandler(service StatsService) *StatsHandler {
	return &StatsHandler{service: service}
}

func (h *StatsHandler) GetStats(c *gin.Context) {
	stats, err := h.service.Stats(c.Request.Context(), c.Param("shortCode"))
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, stats)
}

func (h *StatsHandler) GetAllStats(c *gin.Context) {
	stats, err := h.service.StatsAll(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, stats)
}
