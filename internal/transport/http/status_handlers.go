package http

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/ollamachat/chathub/internal/ai"
)

// StatusHandlers serves the health and AI-backend status endpoints.
type StatusHandlers struct {
	backend *ai.Client
	log     *zerolog.Logger
}

// NewStatusHandlers creates a new status handlers instance.
func NewStatusHandlers(backend *ai.Client, logger *zerolog.Logger) *StatusHandlers {
	return &StatusHandlers{
		backend: backend,
		log:     logger,
	}
}

// Health reports server liveness.
// GET /health
func (h *StatusHandlers) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":    "healthy",
		"timestamp": time.Now().Format(time.RFC3339),
	})
}

// OllamaStatus checks the AI backend and reports its model list. The
// server keeps running without it; this endpoint is how operators tell
// whether AI answers are live or degraded to fallbacks.
// GET /ollama-status
func (h *StatusHandlers) OllamaStatus(c *gin.Context) {
	models, err := h.backend.Models(c.Request.Context())
	if err != nil {
		h.log.Warn().Err(err).Msg("ai backend unreachable")
		c.JSON(http.StatusOK, gin.H{
			"status": "disconnected",
			"error":  err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status": "connected",
		"models": models,
	})
}
