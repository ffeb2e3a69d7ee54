package grpc_render

import (
	"context"
	"fmt"
	"net"
	"time"

	"cycle-dashboard/src/helpers"
	"cycle-dashboard/src/logger"
	"cycle-dashboard/src/models"
	"cycle-dashboard/src/pipeline"

	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/status"
)

// -----------------------------------------------------------------------------
// Server
// -----------------------------------------------------------------------------

// Server hosts ChartService and the standard health service.
type Server struct {
	Config *models.MConfig
	Logger *logger.Logger

	grpcServer *grpc.Server
	health     *health.Server
}

func NewServer(cfg *models.MConfig, p *pipeline.Pipeline, errs *helpers.ErrorHandler, log *logger.Logger) *Server {
	serviceLogger := log.Named("ChartService")

	s := &Server{
		Config:     cfg,
		Logger:     serviceLogger,
		grpcServer: grpc.NewServer(grpc.ChainUnaryInterceptor(loggingInterceptor(serviceLogger))),
		health:     health.NewServer(),
	}

	RegisterChartServer(s.grpcServer, NewChartService(p, errs, serviceLogger))
	healthpb.RegisterHealthServer(s.grpcServer, s.health)
	s.health.SetServingStatus(ServiceName, healthpb.HealthCheckResponse_SERVING)
	return s
}

// -----------------------------------------------------------------------------

// Start listens on the configured gRPC address and blocks until Stop.
func (s *Server) Start() error {
	addr := fmt.Sprintf("%s:%d", s.Config.GrpcHost, s.Config.GrpcPort)
	lis, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("failed to listen for gRPC on %s: %w", addr, err)
	}
	s.Logger.Info("Starting gRPC Chart Server on %s", addr)
	return s.Serve(lis)
}

// Serve blocks serving on lis.
func (s *Server) Serve(lis net.Listener) error {
	if err := s.grpcServer.Serve(lis); err != nil && err != grpc.ErrServerStopped {
		return err
	}
	return nil
}

// -----------------------------------------------------------------------------

func (s *Server) Stop() {
	s.health.Shutdown()
	s.grpcServer.GracefulStop()
}

// -----------------------------------------------------------------------------

func loggingInterceptor(log *logger.Logger) grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req interface{}, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (interface{}, error) {
		started := time.Now()
		resp, err := handler(ctx, req)
		log.Info("gRPC: %s -> %s in %v", info.FullMethod, status.Code(err), time.Since(started))
		return resp, err
	}
}
