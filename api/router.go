package api

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/use-agent/brandkit/api/handler"
	"github.com/use-agent/brandkit/api/middleware"
	"github.com/use-agent/brandkit/config"
)

// NewRouter creates a configured Gin engine with all routes and middleware.
//
// Middleware chain:
//
//	Global:  Recovery → RequestID → Logger
func NewRouter(runner handler.BrandRunner, cfg *config.Config, startTime time.Time) *gin.Engine {
	gin.SetMode(cfg.Server.Mode)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger())

	v1 := r.Group("/api/v1")
	v1.GET("/health", handler.Health(cfg.Enhance.Enabled(), startTime))
	v1.POST("/brand", handler.Brand(runner, cfg.Server.RequestTimeout))

	return r
}
