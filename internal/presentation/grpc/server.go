package grpc

import (
	"context"
	"crypto/tls"
	"fmt"
	"log/slog"
	"net"
	"time"

	grpclib "google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/reflection"
	"google.golang.org/grpc/status"

	"github.com/bibbank/underwriting/pkg/auth"
	"github.com/bibbank/underwriting/pkg/tlsutil"
)

// ServerOptions configures the gRPC server. A nil JWT disables
// authentication; a nil TLS config serves plaintext.
type ServerOptions struct {
	JWT        *auth.JWTService
	TLS        *tls.Config
	Reflection bool
}

// MethodRoles lists the roles allowed to call each method.
var MethodRoles = map[string][]string{
	FullMethod("Evaluate"):          {auth.RoleLoanOfficer, auth.RoleUnderwriter, auth.RoleAdmin},
	FullMethod("EvaluateBorrower"):  {auth.RoleLoanOfficer, auth.RoleUnderwriter, auth.RoleAdmin},
	FullMethod("SubmitApplication"): {auth.RoleLoanOfficer, auth.RoleAdmin},
	FullMethod("GetApplication"):    {auth.RoleLoanOfficer, auth.RoleUnderwriter, auth.RoleAuditor, auth.RoleAdmin},
	FullMethod("DecideApplication"): {auth.RoleUnderwriter, auth.RoleAdmin},
	FullMethod("DisburseLoan"):      {auth.RoleServicing, auth.RoleAdmin},
	FullMethod("MakePayment"):       {auth.RoleServicing, auth.RoleAdmin},
	FullMethod("GetLoan"):           {auth.RoleServicing, auth.RoleAuditor, auth.RoleAdmin},
	FullMethod("SweepOverdue"):      {auth.RoleServicing, auth.RoleAdmin},
}

// Server wraps a gRPC server with the underwriting handler registered.
type Server struct {
	gs     *grpclib.Server
	health *health.Server
	logger *slog.Logger
}

// NewServer creates and configures the gRPC server.
func NewServer(handler UnderwritingServiceServer, logger *slog.Logger, opts ServerOptions) *Server {
	interceptors := []grpclib.UnaryServerInterceptor{loggingInterceptor(logger)}
	if opts.JWT != nil {
		interceptors = append(interceptors, auth.UnaryAuthInterceptor(opts.JWT, []string{
			"/grpc.health.v1.Health/Check",
			"/grpc.health.v1.Health/Watch",
		}, MethodRoles))
	} else {
		logger.Warn("gRPC authentication disabled")
	}

	serverOpts := []grpclib.ServerOption{grpclib.ChainUnaryInterceptor(interceptors...)}
	if opts.TLS != nil {
		serverOpts = append(serverOpts, grpclib.Creds(tlsutil.GRPCCredentials(opts.TLS)))
		logger.Info("gRPC TLS enabled")
	} else {
		logger.Info("gRPC TLS not configured, running without TLS")
	}

	gs := grpclib.NewServer(serverOpts...)

	healthSrv := health.NewServer()
	healthpb.RegisterHealthServer(gs, healthSrv)
	healthSrv.SetServingStatus(ServiceName, healthpb.HealthCheckResponse_SERVING)

	if opts.Reflection {
		reflection.Register(gs)
	}

	RegisterUnderwritingServiceServer(gs, handler)

	return &Server{gs: gs, health: healthSrv, logger: logger}
}

// Serve listens on addr and blocks until the server stops.
func (s *Server) Serve(addr string) error {
	lis, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("listen %s: %w", addr, err)
	}
	s.logger.Info("gRPC server listening", "addr", addr)
	return s.ServeListener(lis)
}

// ServeListener serves on an existing listener.
func (s *Server) ServeListener(lis net.Listener) error {
	return s.gs.Serve(lis)
}

// GracefulStop marks the service as not serving and drains in-flight calls.
func (s *Server) GracefulStop() {
	s.logger.Info("gRPC server shutting down")
	s.health.Shutdown()
	s.gs.GracefulStop()
}

func loggingInterceptor(logger *slog.Logger) grpclib.UnaryServerInterceptor {
	return func(ctx context.Context, req any, info *grpclib.UnaryServerInfo, handler grpclib.UnaryHandler) (any, error) {
		start := time.Now()
		resp, err := handler(ctx, req)
		code := status.Code(err)

		level := slog.LevelDebug
		if err != nil {
			level = slog.LevelWarn
		}
		logger.Log(ctx, level, "grpc call",
			"method", info.FullMethod,
			"code", code.String(),
			"duration", time.Since(start),
		)
		return resp, err
	}
}
