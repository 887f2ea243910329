package api

import (
	"log/slog"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/deptsite/deptcms/internal/api/handlers"
	"github.com/deptsite/deptcms/internal/api/middleware"
	"github.com/deptsite/deptcms/internal/core/record"
)

type Router struct {
	engine        *gin.Engine
	logger        *slog.Logger
	origins       []string
	healthHandler *handlers.HealthHandler
	resources     map[string]*handlers.ResourceHandler
	names         []string
}

// NewRouter builds one resource handler per registered resource.
func NewRouter(records *record.Service, storage handlers.Pinger, origins []string, logger *slog.Logger) *Router {
	reg := records.Registry()
	r := &Router{
		logger:        logger,
		origins:       origins,
		healthHandler: handlers.NewHealthHandler(reg, storage),
		resources:     make(map[string]*handlers.ResourceHandler),
	}
	for _, def := range reg.All() {
		r.resources[def.Name] = handlers.NewResourceHandler(records, def)
		r.names = append(r.names, def.Name)
	}
	return r
}

func (r *Router) Setup(mode string) *gin.Engine {
	gin.SetMode(mode)
	r.engine = gin.New()
	r.engine.Use(middleware.Recovery())
	r.engine.Use(middleware.RequestContext())
	r.engine.Use(middleware.RequestLogger(r.logger))
	r.engine.Use(middleware.Metrics())
	r.engine.Use(cors.New(cors.Config{
		AllowOrigins:     r.origins,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	r.setupRoutes()
	r.engine.NoRoute(middleware.NoRoute())
	return r.engine
}

func (r *Router) setupRoutes() {
	r.engine.GET("/", r.healthHandler.Root)
	r.engine.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := r.engine.Group("/api")
	api.GET("/health", r.healthHandler.Health)

	for _, name := range r.names {
		r.resources[name].Register(api.Group("/" + name))
	}
}
