package api

import (
	"gate_access/internal/api/handler"
	"gate_access/internal/api/middleware"
	"gate_access/internal/service"

	"github.com/gin-gonic/gin"
)

func SetupRouter(
	authService *service.AuthService,
	state *service.RecognitionState,
	pipeline *service.FramePipeline,
	accessService *service.AccessService,
	analyticsService *service.AnalyticsService,
	authMw *middleware.AuthMiddleware,
	wsManager *handler.WebSocketManager,
) *gin.Engine {
	r := gin.Default()
	r.Use(gin.Recovery())

	r.Use(func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, X-CSRF-Token, Authorization, accept, origin, Cache-Control, X-Requested-With")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS, GET, PUT, DELETE")
		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}
		c.Next()
	})

	// WebSocket endpoint for decision notifications
	wsHandler := handler.NewWebSocketHandler(wsManager)
	r.GET("/ws", wsHandler.HandleWebSocket)

	authHandler := handler.NewAuthHandler(authService)
	r.POST("/auth/login", authHandler.Login)

	systemHandler := handler.NewSystemHandler(state, pipeline, accessService, analyticsService)

	v1 := r.Group("/api/v1")
	v1.Use(authMw.Authenticate())
	{
		systemRoutes := v1.Group("/system")
		systemRoutes.Use(authMw.AuthorizeRole("guard", "supervisor"))
		{
			systemRoutes.POST("/capture/start", systemHandler.StartCapture)
			systemRoutes.POST("/capture/stop", systemHandler.StopCapture)
			systemRoutes.POST("/recognition/start", systemHandler.StartRecognition)
			systemRoutes.POST("/recognition/stop", systemHandler.StopRecognition)
			systemRoutes.GET("/video-feed", systemHandler.VideoFeed)
			systemRoutes.GET("/decision", systemHandler.PendingDecision)
			systemRoutes.GET("/chart-data", systemHandler.ChartData)
		}
	}
	return r
}
