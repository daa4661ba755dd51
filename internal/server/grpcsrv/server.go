// Package grpcsrv hosts the gRPC transport: health and reflection services
// only (see DESIGN.md for why no delivery.proto is compiled in), wrapped in
// the same logging/recovery interceptor chain the teacher wires around its
// own stream-auth interceptor (infra/server/grpc/interceptors/stream_auth.go).
package grpcsrv

import (
	"context"
	"log/slog"
	"net"

	recovery "github.com/grpc-ecosystem/go-grpc-middleware/v2/interceptors/recovery"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/reflection"
)

// Server wraps a *grpc.Server with its own listener lifecycle, registering
// the standard health-checking and reflection services on construction.
type Server struct {
	logger   *slog.Logger
	Server   *grpc.Server
	health   *health.Server
	listener net.Listener
}

// New builds a gRPC server bound to addr with recovery + structured-logging
// interceptors installed, matching the teacher's NewStreamAuthInterceptor
// chaining idiom minus the auth hop (ODIN has no production auth surface,
// see DESIGN.md).
func New(logger *slog.Logger, addr string) (*Server, error) {
	lis, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, err
	}

	recoveryOpts := []recovery.Option{
		recovery.WithRecoveryHandlerContext(func(ctx context.Context, p any) error {
			logger.Error("grpc panic recovered", "panic", p)
			return grpc.ErrServerStopped
		}),
	}

	srv := grpc.NewServer(
		grpc.ChainUnaryInterceptor(recovery.UnaryServerInterceptor(recoveryOpts...), loggingUnaryInterceptor(logger)),
		grpc.ChainStreamInterceptor(recovery.StreamServerInterceptor(recoveryOpts...), loggingStreamInterceptor(logger)),
	)

	hs := health.NewServer()
	healthpb.RegisterHealthServer(srv, hs)
	reflection.Register(srv)

	return &Server{logger: logger, Server: srv, health: hs, listener: lis}, nil
}

// Serve blocks, accepting connections until the server is stopped.
func (s *Server) Serve() error {
	s.health.SetServingStatus("", healthpb.HealthCheckResponse_SERVING)
	return s.Server.Serve(s.listener)
}

// Stop gracefully drains in-flight RPCs before returning.
func (s *Server) Stop() {
	s.health.Shutdown()
	s.Server.GracefulStop()
}

func loggingUnaryInterceptor(logger *slog.Logger) grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
		resp, err := handler(ctx, req)
		if err != nil {
			logger.Warn("grpc unary call failed", "method", info.FullMethod, "err", err)
		}
		return resp, err
	}
}

func loggingStreamInterceptor(logger *slog.Logger) grpc.StreamServerInterceptor {
	return func(srv any, ss grpc.ServerStream, info *grpc.StreamServerInfo, handler grpc.StreamHandler) error {
		err := handler(srv, ss)
		if err != nil {
			logger.Warn("grpc stream call failed", "method", info.FullMethod, "err", err)
		}
		return err
	}
}
