// Package interceptors holds gRPC server interceptors.
package interceptors

import (
	"context"
	"net"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/peer"
	"google.golang.org/grpc/status"
)

// LoggingUnary logs one line per unary RPC. Methods in skipMethods are not logged.
func LoggingUnary(log zerolog.Logger, skipMethods map[string]bool) grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
		start := time.Now()
		resp, err := handler(ctx, req)
		if !skipMethods[info.FullMethod] {
			logRPC(ctx, log, info.FullMethod, start, err)
		}
		return resp, err
	}
}

// LoggingStream logs one line per streaming RPC when the stream ends.
func LoggingStream(log zerolog.Logger, skipMethods map[string]bool) grpc.StreamServerInterceptor {
	return func(srv any, ss grpc.ServerStream, info *grpc.StreamServerInfo, handler grpc.StreamHandler) error {
		start := time.Now()
		err := handler(srv, ss)
		if !skipMethods[info.FullMethod] {
			logRPC(ss.Context(), log, info.FullMethod, start, err)
		}
		return err
	}
}

func logRPC(ctx context.Context, log zerolog.Logger, method string, start time.Time, err error) {
	code := status.Code(err)
	ev := log.Info()
	switch code {
	case codes.OK, codes.Canceled:
	case codes.Internal, codes.Unknown, codes.DataLoss, codes.Unavailable:
		ev = log.Error().Err(err)
	default:
		ev = log.Warn().Err(err)
	}
	ev.Str("method", method).
		Str("code", code.String()).
		Dur("latency", time.Since(start)).
		Str("client_ip", ClientIP(ctx)).
		Msg("grpc request")
}

// ClientIP returns the caller address from x-forwarded-for, x-real-ip or the
// transport peer, in that order.
func ClientIP(ctx context.Context) string {
	if md, ok := metadata.FromIncomingContext(ctx); ok {
		if vals := md.Get("x-forwarded-for"); len(vals) > 0 {
			if s := strings.TrimSpace(vals[0]); s != "" {
				if i := strings.Index(s, ","); i > 0 {
					s = strings.TrimSpace(s[:i])
				}
				return s
			}
		}
		if vals := md.Get("x-real-ip"); len(vals) > 0 {
			if s := strings.TrimSpace(vals[0]); s != "" {
				return s
			}
		}
	}
	if p, ok := peer.FromContext(ctx); ok && p.Addr != nil {
		if host, _, err := net.SplitHostPort(p.Addr.String()); err == nil {
			return host
		}
		return p.Addr.String()
	}
	return "unknown"
}
