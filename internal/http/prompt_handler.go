package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"match-coach/internal/domain"
	"match-coach/internal/llm"
	"match-coach/internal/repository"
	"match-coach/internal/service"
)

// PromptHandler mantiene dependencias para generar/ejecutar prompts y feedback.
type PromptHandler struct {
	logger       *zap.Logger
	sessions     *service.SessionContextFactory
	orchestrator *service.PromptOrchestrator
	connections  repository.ConnectionRepository
}

func NewPromptHandler(
	logger *zap.Logger,
	sessions *service.SessionContextFactory,
	orchestrator *service.PromptOrchestrator,
	connections repository.ConnectionRepository,
) *PromptHandler {
	return &PromptHandler{
		logger:       logger,
		sessions:     sessions,
		orchestrator: orchestrator,
		connections:  connections,
	}
}

// GeneratePrompt maneja POST /api/prompts/generate.
func (h *PromptHandler) GeneratePrompt(c *gin.Context) {
	var req struct {
		UserID       string `json:"user_id" binding:"required"`
		Intent       string `json:"intent" binding:"required"`
		ConnectionID string `json:"connection_id"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("invalid generate request", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	var connection *domain.Connection
	if req.ConnectionID != "" && h.connections != nil {
		conn, err := h.connections.GetByID(c.Request.Context(), req.ConnectionID)
		if err != nil && !errors.Is(err, pgx.ErrNoRows) {
			h.logger.Error("connection lookup failed", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "connection lookup failed"})
			return
		}
		if err == nil {
			connection = &conn
		}
	}

	sc, err := h.sessions.Create(req.UserID, req.Intent, req.ConnectionID)
	if err != nil {
		h.logger.Error("session context creation failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not create session context"})
		return
	}

	prompt, err := h.orchestrator.GeneratePrompt(req.UserID, sc, connection)
	if err != nil {
		h.logger.Error("prompt generation failed", zap.Error(err))
		if errors.Is(err, domain.ErrContextUnavailable) {
			c.JSON(http.StatusServiceUnavailable, gin.H{"error": "user context unavailable"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not generate prompt"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"session": sc, "prompt": prompt})
}

// ExecutePrompt maneja POST /api/prompts/execute.
func (h *PromptHandler) ExecutePrompt(c *gin.Context) {
	var req struct {
		Prompt domain.OrchestratedPrompt `json:"prompt" binding:"required"`
		Config llm.GenerationConfig      `json:"config"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("invalid execute request", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	result, err := h.orchestrator.ExecutePrompt(c.Request.Context(), req.Prompt, req.Config)
	if err != nil {
		h.logger.Error("prompt execution failed", zap.Error(err))
		// Ejecucion fallida es reintentable para el caller.
		c.JSON(http.StatusBadGateway, gin.H{"error": "ai execution failed", "retryable": true})
		return
	}

	c.JSON(http.StatusOK, gin.H{"result": result})
}

// RecordFeedback maneja POST /api/results/:id/feedback.
func (h *PromptHandler) RecordFeedback(c *gin.Context) {
	resultID := c.Param("id")

	var req struct {
		UserRating    int    `json:"user_rating"`
		Effectiveness string `json:"effectiveness" binding:"required"`
		Notes         string `json:"notes"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("invalid feedback request", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	err := h.orchestrator.RecordFeedback(resultID, domain.ResultFeedback{
		UserRating:    req.UserRating,
		Effectiveness: req.Effectiveness,
		Notes:         req.Notes,
	})
	switch {
	case errors.Is(err, domain.ErrResultNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "result not found"})
	case errors.Is(err, domain.ErrFeedbackRecorded):
		c.JSON(http.StatusConflict, gin.H{"error": "feedback already recorded"})
	case err != nil:
		h.logger.Error("feedback recording failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not record feedback"})
	default:
		c.JSON(http.StatusNoContent, nil)
	}
}
