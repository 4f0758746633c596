// Package handler reports liveness and readiness over HTTP and the standard
// grpc.health.v1 service.
package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
)

const defaultTimeout = 2 * time.Second

// Pinger is satisfied by *sql.DB.
type Pinger interface {
	PingContext(ctx context.Context) error
}

// Checker answers readiness from the backing store. If grpc is set, every
// check also updates the overall serving status there.
type Checker struct {
	pinger  Pinger
	grpc    *health.Server
	timeout time.Duration
	log     zerolog.Logger
}

// NewChecker returns a Checker. A nil pinger is always ready.
func NewChecker(pinger Pinger, grpc *health.Server, log zerolog.Logger) *Checker {
	return &Checker{
		pinger:  pinger,
		grpc:    grpc,
		timeout: defaultTimeout,
		log:     log.With().Str("component", "health").Logger(),
	}
}

// Check pings the store and syncs the gRPC status. It returns the ping error, if any.
func (c *Checker) Check(ctx context.Context) error {
	var err error
	if c.pinger != nil {
		ctx, cancel := context.WithTimeout(ctx, c.timeout)
		err = c.pinger.PingContext(ctx)
		cancel()
	}
	if c.grpc != nil {
		st := healthpb.HealthCheckResponse_SERVING
		if err != nil {
			st = healthpb.HealthCheckResponse_NOT_SERVING
		}
		c.grpc.SetServingStatus("", st)
	}
	if err != nil {
		c.log.Warn().Err(err).Msg("readiness check failed")
	}
	return err
}

// Watch runs Check every interval until ctx is done.
func (c *Checker) Watch(ctx context.Context, interval time.Duration) {
	_ = c.Check(ctx)
	t := time.NewTicker(interval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			_ = c.Check(ctx)
		}
	}
}

// Routes mounts GET /healthz and GET /readyz on r.
func (c *Checker) Routes(r gin.IRouter) {
	r.GET("/healthz", c.Live)
	r.GET("/readyz", c.Ready)
}

// Live always reports ok while the process is serving requests.
func (c *Checker) Live(ctx *gin.Context) {
	ctx.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// Ready reports 503 when the store cannot be reached.
func (c *Checker) Ready(ctx *gin.Context) {
	if err := c.Check(ctx.Request.Context()); err != nil {
		ctx.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable"})
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"status": "ready"})
}
