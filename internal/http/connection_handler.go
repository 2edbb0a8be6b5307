package http

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"match-coach/internal/domain"
	"match-coach/internal/repository"
)

// ConnectionHandler expone el registro de conexiones del usuario.
// Sin base de datos configurada responde 503.
type ConnectionHandler struct {
	logger      *zap.Logger
	connections repository.ConnectionRepository
}

func NewConnectionHandler(logger *zap.Logger, connections repository.ConnectionRepository) *ConnectionHandler {
	return &ConnectionHandler{
		logger:      logger,
		connections: connections,
	}
}

// Create maneja POST /api/connections.
func (h *ConnectionHandler) Create(c *gin.Context) {
	if h.connections == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "connections not available"})
		return
	}

	var req struct {
		UserID       string   `json:"user_id" binding:"required"`
		Name         string   `json:"name" binding:"required"`
		Platform     string   `json:"platform"`
		CurrentStage string   `json:"current_stage"`
		Hobbies      []string `json:"hobbies"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("invalid connection request", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	now := time.Now().UTC()
	conn := domain.Connection{
		ID:           uuid.NewString(),
		UserID:       req.UserID,
		Name:         req.Name,
		Platform:     req.Platform,
		CurrentStage: req.CurrentStage,
		Hobbies:      req.Hobbies,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if conn.CurrentStage == "" {
		conn.CurrentStage = "matched"
	}

	if err := h.connections.Create(c.Request.Context(), conn); err != nil {
		h.logger.Error("connection create failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not create connection"})
		return
	}
	c.JSON(http.StatusCreated, gin.H{"connection": conn})
}

// ListByUser maneja GET /api/users/:id/connections.
func (h *ConnectionHandler) ListByUser(c *gin.Context) {
	if h.connections == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "connections not available"})
		return
	}

	conns, err := h.connections.ListByUserID(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.logger.Error("connection list failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not list connections"})
		return
	}
	if conns == nil {
		conns = []domain.Connection{}
	}
	c.JSON(http.StatusOK, gin.H{"connections": conns})
}
