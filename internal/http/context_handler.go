package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"match-coach/internal/domain"
	"match-coach/internal/service"
)

// ContextHandler expone inspeccion y actualizacion manual del contexto de usuario.
type ContextHandler struct {
	logger       *zap.Logger
	store        service.UserContextStore
	orchestrator *service.PromptOrchestrator
}

func NewContextHandler(logger *zap.Logger, store service.UserContextStore, orchestrator *service.PromptOrchestrator) *ContextHandler {
	return &ContextHandler{
		logger:       logger,
		store:        store,
		orchestrator: orchestrator,
	}
}

// GetContext maneja GET /api/users/:id/context.
func (h *ContextHandler) GetContext(c *gin.Context) {
	uc, err := h.store.Get(c.Param("id"))
	if err != nil {
		h.logger.Error("context load failed", zap.Error(err))
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "user context unavailable"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"context": uc})
}

// PatchContext maneja PATCH /api/users/:id/context.
func (h *ContextHandler) PatchContext(c *gin.Context) {
	var patch domain.UserContextPatch
	if err := c.ShouldBindJSON(&patch); err != nil {
		h.logger.Warn("invalid context patch", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	if err := h.store.Update(c.Param("id"), patch); err != nil {
		h.logger.Error("context update failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not update context"})
		return
	}
	c.JSON(http.StatusNoContent, nil)
}

// Optimize maneja POST /api/users/:id/optimize.
func (h *ContextHandler) Optimize(c *gin.Context) {
	userID := c.Param("id")
	if err := h.orchestrator.OptimizeForUser(userID); err != nil {
		h.logger.Error("optimization failed", zap.Error(err), zap.String("user_id", userID))
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "could not optimize preferences"})
		return
	}
	c.JSON(http.StatusNoContent, nil)
}
