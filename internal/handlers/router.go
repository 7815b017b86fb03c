package handlers

import (
	"consultgpt-pipeline/internal/pkg/logger"
	"time"

	"github.com/gin-gonic/gin"
)

// Router wires every handler into the HTTP surface.
func Router(
	chat *ChatHandler,
	assist *AssistHandler,
	workstreams *WorkStreamHandler,
	system *SystemHandler,
	log *logger.Logger,
) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery(), requestLogger(log))

	router.GET("/health", system.HandleHealth)

	api := router.Group("/api")
	{
		api.POST("/chat", chat.HandleChat)
		api.GET("/chat", chat.HandleInfo)
		api.GET("/chat/:chatId/messages", chat.HandleHistory)
		api.GET("/chat/:chatId/title", chat.HandleTitle)
		api.DELETE("/chat/:chatId", chat.HandleDelete)

		api.POST("/ai/detect-intent", assist.HandleDetectIntent)
		api.GET("/ai/detect-intent", assist.HandleDetectIntentInfo)
		api.POST("/ai/generate-title", assist.HandleGenerateTitle)
		api.GET("/ai/generate-title", assist.HandleGenerateTitleInfo)

		api.GET("/workstreams", workstreams.HandleList)
		api.GET("/workstreams/:id", workstreams.HandleGet)

		api.GET("/crustdata/selftest", system.HandleCrustDataSelfTest)
	}

	return router
}

func requestLogger(log *logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		startTime := time.Now()
		c.Next()

		log.Info("http request",
			"method", c.Request.Method,
			"path", c.FullPath(),
			"status", c.Writer.Status(),
			"duration_ms", time.Since(startTime).Milliseconds())
	}
}
