// Package server configures the HTTP server and routes.
package server

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/fleveque/lastmosaic/internal/config"
	"github.com/fleveque/lastmosaic/internal/handler"
	"github.com/fleveque/lastmosaic/internal/i18n"
	"github.com/fleveque/lastmosaic/internal/middleware"
	"github.com/fleveque/lastmosaic/internal/service"
)

// Deps are the services the handlers need.
type Deps struct {
	Collage *service.CollageService
	Catalog *i18n.Catalog
}

// RegisterRoutes sets up all HTTP routes on the Gin engine.
// In Go, we pass dependencies explicitly. There is no DI container.
func RegisterRoutes(r *gin.Engine, cfg *config.Config, deps Deps, logger *zap.Logger) {
	healthHandler := handler.NewHealthHandler(deps.Collage.ProviderName())
	collageHandler := handler.NewCollageHandler(deps.Collage, deps.Catalog, logger)

	r.GET("/healthz", healthHandler.Healthz)

	// CORS middleware applies to the entire API group.
	api := r.Group("/api/v1")
	api.Use(middleware.CORS(cfg.CORS.AllowedOrigins))
	api.Use(middleware.RateLimit(cfg.RateLimit.RequestsPerSecond, cfg.RateLimit.Burst, func(c *gin.Context) string {
		return deps.Catalog.T(i18n.Negotiate(c.GetHeader("Accept-Language")), "errors.rateLimited", nil)
	}))
	{
		api.GET("/collage", collageHandler.GetCollage)
		api.GET("/fetch-data", collageHandler.FetchData)
		api.GET("/validate-user", collageHandler.ValidateUser)
		api.GET("/stats", collageHandler.Stats)
	}
}
