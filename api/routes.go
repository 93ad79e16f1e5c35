package api

import (
	"github.com/gin-gonic/gin"
	"github.com/opentracing/opentracing-go"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/kenji-jpg/bread-myship-worker/api/handlers"
	"github.com/kenji-jpg/bread-myship-worker/api/middleware"
	"github.com/kenji-jpg/bread-myship-worker/internal/logger"
	"github.com/kenji-jpg/bread-myship-worker/internal/tracing"
	"github.com/kenji-jpg/bread-myship-worker/services"
)

// RegisterRoutes sets up all API endpoints
func RegisterRoutes(r *gin.Engine, s *services.Services, log logger.Logger, apikey string) {
	if s == nil {
		panic("Services cannot be nil")
	}

	// Add recovery middlewares
	r.Use(gin.Recovery())                                         // Gin's built-in recovery
	r.Use(tracing.RecoveryWithJaeger(opentracing.GlobalTracer())) // Our custom Jaeger recovery

	// Root path doubles as the manual test surface: POST dispatches directly
	// through the RPC client, anything else answers a liveness line.
	r.POST("/", handlers.Dispatch(s.BreadAPIClient))
	r.GET("/", handlers.Liveness)
	r.NoRoute(handlers.Liveness)

	// Health check and metrics endpoints (no custom context needed)
	r.GET("/health", handlers.HealthCheck)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	apiKeyMiddleware := middleware.APIKeyMiddleware(middleware.APIKeyConfig{
		HeaderName:  "X-BREAD-API-KEY",
		ValidAPIKey: apikey,
	})

	inboundHandler := handlers.NewInboundHandler(s.Processor, log)

	// API group with version and custom context
	api := r.Group("/v1")
	api.Use(apiKeyMiddleware)
	api.Use(middleware.CustomContextMiddleware("myship-email-worker"))
	api.Use(middleware.TracingMiddleware())
	{
		api.POST("/inbound", inboundHandler.Receive())
	}
}
