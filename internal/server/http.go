// Package server assembles the HTTP and gRPC servers.
package server

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	healthhandler "provider-registration/backend/internal/health/handler"
	providerhandler "provider-registration/backend/internal/provider/handler"
	"provider-registration/backend/internal/server/middleware"
)

// HTTPDeps holds what the HTTP router serves.
type HTTPDeps struct {
	Provider *providerhandler.Handler
	// Tokens verifies bearer tokens for protected routes.
	Tokens middleware.ClaimsExtractor
	// Health serves /healthz and /readyz. If nil, those routes are not mounted.
	Health *healthhandler.Checker
	// Registry backs /metrics. If nil, a fresh registry is used.
	Registry *prometheus.Registry
	Log      zerolog.Logger
}

// NewRouter returns a gin engine with recovery, request logging, metrics,
// health and provider routes.
func NewRouter(d HTTPDeps) *gin.Engine {
	reg := d.Registry
	if reg == nil {
		reg = prometheus.NewRegistry()
	}
	metrics := middleware.NewHTTPMetrics(reg)

	r := gin.New()
	r.Use(gin.Recovery(), middleware.RequestLogger(d.Log), metrics.Handler())
	r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg})))
	if d.Health != nil {
		d.Health.Routes(r)
	}
	if d.Provider != nil {
		d.Provider.Routes(r, middleware.RequireBearer(d.Tokens))
	}
	return r
}
