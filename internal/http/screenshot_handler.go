package http

import (
	"encoding/base64"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"match-coach/internal/domain"
	"match-coach/internal/repository"
	"match-coach/internal/service"
)

// ScreenshotHandler corre el pipeline captura -> conversacion -> parche de contexto.
type ScreenshotHandler struct {
	logger      *zap.Logger
	extractor   *service.ScreenshotExtractor
	connections repository.ConnectionRepository
}

func NewScreenshotHandler(logger *zap.Logger, extractor *service.ScreenshotExtractor, connections repository.ConnectionRepository) *ScreenshotHandler {
	return &ScreenshotHandler{
		logger:      logger,
		extractor:   extractor,
		connections: connections,
	}
}

// Analyze maneja POST /api/screenshots/analyze. La imagen viene en base64;
// si hay connection_id y repositorio, el parche propuesto se aplica al registro.
func (h *ScreenshotHandler) Analyze(c *gin.Context) {
	var req struct {
		Image        string `json:"image" binding:"required"`
		ConnectionID string `json:"connection_id"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("invalid screenshot request", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	image, err := base64.StdEncoding.DecodeString(req.Image)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "image must be base64"})
		return
	}

	analysis, err := h.extractor.ProcessImage(c.Request.Context(), image)
	if err != nil {
		h.logger.Error("screenshot processing failed", zap.Error(err))
		c.JSON(http.StatusBadGateway, gin.H{"error": "vision analysis failed", "retryable": true})
		return
	}

	conversation, err := h.extractor.ExtractConversationData(analysis)
	if errors.Is(err, domain.ErrNoMessagesFound) {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "no messages found in screenshot"})
		return
	}

	updates := h.extractor.ProposeContextUpdates(c.Request.Context(), analysis.Messages)

	applied := false
	if req.ConnectionID != "" && h.connections != nil && !updates.IsEmpty() {
		if err := h.connections.ApplyContextUpdates(c.Request.Context(), req.ConnectionID, updates); err != nil {
			h.logger.Warn("context updates not applied", zap.Error(err), zap.String("connection_id", req.ConnectionID))
		} else {
			applied = true
		}
	}

	c.JSON(http.StatusOK, gin.H{
		"analysis":        analysis,
		"conversation":    conversation,
		"context_updates": updates,
		"applied":         applied,
	})
}
