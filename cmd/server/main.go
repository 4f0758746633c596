package main

import (
	"context"
	"errors"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/rs/zerolog"
	"google.golang.org/grpc/health"

	"provider-registration/backend/internal/config"
	healthhandler "provider-registration/backend/internal/health/handler"
	"provider-registration/backend/internal/logging"
	providerhandler "provider-registration/backend/internal/provider/handler"
	"provider-registration/backend/internal/provider/repository"
	"provider-registration/backend/internal/provider/service"
	"provider-registration/backend/internal/security"
	"provider-registration/backend/internal/server"
	"provider-registration/backend/internal/telemetry"
)

const (
	shutdownTimeout = 15 * time.Second
	readyInterval   = 10 * time.Second
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		boot := logging.New("info", "json", "provider-registration")
		boot.Fatal().Err(err).Msg("config")
	}
	log := logging.New(cfg.LogLevel, cfg.LogFormat, cfg.ServiceName)
	if err := run(cfg, log); err != nil {
		log.Fatal().Err(err).Msg("server exited")
	}
}

func run(cfg *config.Config, log zerolog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	providers, err := telemetry.NewProviders(ctx, cfg.OTLPEndpoint, cfg.ServiceName, cfg.OTLPInsecure, log)
	if err != nil {
		return err
	}
	providers.SetGlobal()
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		_ = providers.Shutdown(shutdownCtx)
	}()

	repo, conn, err := repository.OpenStore(ctx, cfg)
	if err != nil {
		return err
	}
	defer conn.Close()
	log.Info().Str("driver", cfg.DatabaseDriver).Msg("provider store ready")

	tokens, err := security.NewTokenCodec(security.TokenConfig{
		Secret:     cfg.JWTSecret,
		Issuer:     cfg.JWTIssuer,
		Expiration: cfg.TokenExpiration(),
	})
	if err != nil {
		return err
	}
	hasher := security.NewHasher(cfg.BcryptCost)

	registrar := service.NewRegistrationService(repo, hasher, log)
	authenticator := service.NewAuthService(repo, hasher, tokens, log)

	grpcHealth := health.NewServer()
	checker := healthhandler.NewChecker(conn, grpcHealth, log)
	go checker.Watch(ctx, readyInterval)

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	httpSrv := &http.Server{
		Addr: cfg.HTTPAddr,
		Handler: server.NewRouter(server.HTTPDeps{
			Provider: providerhandler.New(registrar, authenticator, log),
			Tokens:   tokens,
			Health:   checker,
			Registry: reg,
			Log:      log,
		}),
		ReadHeaderTimeout: 10 * time.Second,
	}

	lis, err := net.Listen("tcp", cfg.GRPCAddr)
	if err != nil {
		return err
	}
	grpcSrv := server.NewGRPCServer(grpcHealth, log)

	errCh := make(chan error, 2)
	go func() {
		log.Info().Str("addr", cfg.HTTPAddr).Msg("http server listening")
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()
	go func() {
		log.Info().Str("addr", cfg.GRPCAddr).Msg("grpc server listening")
		if err := grpcSrv.Serve(lis); err != nil {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
		log.Info().Msg("shutting down")
	case err := <-errCh:
		log.Error().Err(err).Msg("server failed; shutting down")
	}

	grpcHealth.Shutdown()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := httpSrv.Shutdown(shutdownCtx); err != nil {
		log.Warn().Err(err).Msg("http shutdown")
	}
	grpcSrv.GracefulStop()
	log.Info().Msg("stopped")
	return nil
}
