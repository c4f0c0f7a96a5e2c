// Package router wires gin route groups for the analytics HTTP surface.
package router

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// RouteRegistrar defines the interface for registering routes
type RouteRegistrar interface {
	RegisterRoutes(rg *gin.RouterGroup)
}

// Router manages HTTP route registration
type Router struct {
	engine    *gin.Engine
	root      []RouteRegistrar
	analytics []RouteRegistrar
	apiPrefix string
}

// NewRouter creates a new Router instance
func NewRouter(engine *gin.Engine) *Router {
	return &Router{
		engine:    engine,
		apiPrefix: "/api/analytics",
	}
}

// RegisterRoot adds a registrar mounted at the engine root (health etc.)
func (r *Router) RegisterRoot(registrar RouteRegistrar) *Router {
	r.root = append(r.root, registrar)
	return r
}

// Register adds a registrar mounted under the analytics API prefix
func (r *Router) Register(registrar RouteRegistrar) *Router {
	r.analytics = append(r.analytics, registrar)
	return r
}

// Setup registers all routes with the engine
func (r *Router) Setup() {
	rootGroup := r.engine.Group("/")
	for _, registrar := range r.root {
		registrar.RegisterRoutes(rootGroup)
	}

	r.engine.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := r.engine.Group(r.apiPrefix)
	for _, registrar := range r.analytics {
		registrar.RegisterRoutes(api)
	}
}
