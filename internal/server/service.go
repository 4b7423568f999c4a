// Package server exposes the converter over HTTP.
package server

import (
	"context"
	"net/http"
	"time"

	"github.com/gerunddev/markbridge/internal/cache"
	"github.com/gerunddev/markbridge/internal/convert"
	"github.com/gerunddev/markbridge/internal/logger"
	"github.com/gin-gonic/gin"
)

const (
	// api routes
	PingURL    = "/ping"
	FormatsURL = "/formats"
	ConvertURL = "/convert"
)

// Config configures the service
type Config struct {
	Address string
	// CacheTTL is how long converted output is cached
	CacheTTL time.Duration
}

type Service struct {
	config    Config
	converter *convert.Converter
	cache     cache.Cache
	logger    *logger.Logger
	server    *http.Server
	router    *gin.Engine
}

// Returns new service instance with provided config, converter and cache.
func NewService(config Config, conv *convert.Converter, c cache.Cache, log *logger.Logger) (*Service, error) {
	if c == nil {
		c = cache.Nop{}
	}
	if log == nil {
		log = logger.Discard()
	}

	service := &Service{
		config:    config,
		converter: conv,
		cache:     c,
		logger:    log,
	}

	server := &http.Server{
		Addr: config.Address,
	}

	// caps how long a client can take to send just the headers
	server.ReadHeaderTimeout = 5 * time.Second
	server.ReadTimeout = 10 * time.Second
	server.WriteTimeout = 15 * time.Second
	server.IdleTimeout = 60 * time.Second

	service.setupRouter(server)

	service.server = server

	return service, nil
}

// Establishes HTTP router.
func (service *Service) setupRouter(server *http.Server) {
	router := gin.New()

	router.Use(gin.Recovery())
	router.Use(requestIDMiddleware())
	router.Use(service.logMiddleware())

	router.GET(PingURL, func(ctx *gin.Context) {
		ctx.String(http.StatusOK, "pong")
	})
	router.GET(FormatsURL, service.formats)
	router.POST(ConvertURL, service.convertText)

	server.Handler = router
	service.router = router
}

// Handler returns the router, for tests and embedding
func (service *Service) Handler() http.Handler {
	return service.router
}

// Start runs the HTTP server
func (service *Service) Start() error {
	return service.server.ListenAndServe()
}

func (service *Service) Shutdown(ctx context.Context) error {
	return service.server.Shutdown(ctx)
}
