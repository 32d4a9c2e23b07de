package server

import (
	"context"
	"net/http"
	"slices"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/abduss/filevault/internal/config"
	"github.com/abduss/filevault/internal/file"
	"github.com/abduss/filevault/internal/logger"
	"github.com/abduss/filevault/internal/metrics"
)

// multipartMemory caps how much of an upload is buffered in memory before spilling to disk.
const multipartMemory = 8 << 20

// Pinger reports whether a backing store is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Dependencies groups the services required by the HTTP router.
type Dependencies struct {
	Config      config.Config
	Logger      *zap.Logger
	Catalog     Pinger
	Blobs       Pinger
	FileService *file.Service
}

// NewRouter builds a Gin engine with foundational middleware and routes.
func NewRouter(deps Dependencies) *gin.Engine {
	log := deps.Logger
	if log == nil {
		log = zap.NewNop()
	}

	router := gin.New()
	router.MaxMultipartMemory = multipartMemory
	router.Use(gin.Recovery())
	router.Use(logger.Middleware())
	router.Use(logger.AccessLog(log.Named("http")))
	router.Use(metrics.Middleware())
	router.Use(cors.New(corsConfig(deps.Config.HTTP)))

	registerHealthRoutes(router, deps)
	metrics.Register(router, deps.Config.Metrics.PrometheusPath)

	if deps.FileService != nil {
		file.RegisterRoutes(router, deps.FileService)
	}

	return router
}

func corsConfig(cfg config.HTTPConfig) cors.Config {
	c := cors.Config{
		AllowMethods:  []string{http.MethodGet, http.MethodPost, http.MethodDelete, http.MethodOptions},
		AllowHeaders:  []string{"Origin", "Content-Type", "Accept", logger.CorrelationIDHeader},
		ExposeHeaders: []string{"Content-Disposition", logger.CorrelationIDHeader},
	}
	if len(cfg.AllowedOrigins) == 0 || slices.Contains(cfg.AllowedOrigins, "*") {
		c.AllowAllOrigins = true
		return c
	}
	c.AllowOrigins = cfg.AllowedOrigins
	return c
}
