package http

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"match-coach/internal/service"
)

// NewRouter configura el router de Gin con middlewares y rutas.
// Sin secreto JWT, el grupo /api queda abierto (util en desarrollo).
func NewRouter(
	logger *zap.Logger,
	jwtSvc *service.JWTService,
	promptH *PromptHandler,
	contextH *ContextHandler,
	screenshotH *ScreenshotHandler,
	connectionH *ConnectionHandler,
) *gin.Engine {
	r := gin.New()

	r.Use(zapLoggerMiddleware(logger), gin.Recovery(), jsonContentTypeMiddleware())

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	api := r.Group("/api")
	if jwtSvc != nil {
		api.Use(JWTAuthMiddleware(jwtSvc))
	}

	api.POST("/prompts/generate", promptH.GeneratePrompt)
	api.POST("/prompts/execute", promptH.ExecutePrompt)
	api.POST("/results/:id/feedback", promptH.RecordFeedback)

	api.GET("/users/:id/context", contextH.GetContext)
	api.PATCH("/users/:id/context", contextH.PatchContext)
	api.POST("/users/:id/optimize", contextH.Optimize)
	api.GET("/users/:id/connections", connectionH.ListByUser)

	api.POST("/connections", connectionH.Create)
	api.POST("/screenshots/analyze", screenshotH.Analyze)

	return r
}

// zapLoggerMiddleware crea un middleware simple de logging con zap.
func zapLoggerMiddleware(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		latency := time.Since(start)
		logger.Info("request",
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", latency),
			zap.String("client_ip", c.ClientIP()),
		)
	}
}

// jsonContentTypeMiddleware fuerza Content-Type: application/json en responses.
func jsonContentTypeMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Content-Type", "application/json")
		c.Next()
	}
}
