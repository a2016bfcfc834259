// Package server собирает gRPC сервер со стандартной цепочкой интерсепторов,
// health-сервисом и keepalive настройками.
package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	"google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/keepalive"
	"google.golang.org/grpc/reflection"

	"bloodlink/pkg/config"
	"bloodlink/pkg/interceptors"
	"bloodlink/pkg/logger"
	"bloodlink/pkg/metrics"
)

// GRPCServer обёртка над grpc.Server
type GRPCServer struct {
	server      *grpc.Server
	health      *health.Server
	serviceName string
	config      *config.Config
}

// Options дополнительные опции сервера
type Options struct {
	Metrics *metrics.Metrics
	// Reflection включает reflection вне development
	Reflection bool
}

// New создаёт gRPC сервер. Сервисы регистрируются через Engine() до Serve.
func New(cfg *config.Config, opts *Options) *GRPCServer {
	if opts == nil {
		opts = &Options{}
	}

	kaParams := keepalive.ServerParameters{
		MaxConnectionIdle:     cfg.GRPC.KeepAlive.MaxConnectionIdle,
		MaxConnectionAge:      cfg.GRPC.KeepAlive.MaxConnectionAge,
		MaxConnectionAgeGrace: cfg.GRPC.KeepAlive.MaxConnectionAgeGrace,
		Time:                  cfg.GRPC.KeepAlive.Time,
		Timeout:               cfg.GRPC.KeepAlive.Timeout,
	}
	kaPolicy := keepalive.EnforcementPolicy{
		MinTime:             5 * time.Second,
		PermitWithoutStream: true,
	}

	interceptorCfg := &interceptors.ServerConfig{
		ServiceName:   cfg.App.Name,
		EnableTracing: cfg.Tracing.Enabled,
		Metrics:       opts.Metrics,
	}

	serverOpts := []grpc.ServerOption{
		grpc.KeepaliveParams(kaParams),
		grpc.KeepaliveEnforcementPolicy(kaPolicy),
		grpc.UnaryInterceptor(interceptors.UnaryServerInterceptors(interceptorCfg)),
		grpc.StreamInterceptor(interceptors.StreamServerInterceptors(interceptorCfg)),
	}
	if cfg.GRPC.MaxRecvMsgSize > 0 {
		serverOpts = append(serverOpts, grpc.MaxRecvMsgSize(cfg.GRPC.MaxRecvMsgSize))
	}
	if cfg.GRPC.MaxSendMsgSize > 0 {
		serverOpts = append(serverOpts, grpc.MaxSendMsgSize(cfg.GRPC.MaxSendMsgSize))
	}
	if n := cfg.GRPC.MaxConcurrentConn; n > 0 {
		serverOpts = append(serverOpts, grpc.MaxConcurrentStreams(uint32(n)))
	}

	s := grpc.NewServer(serverOpts...)

	h := health.NewServer()
	grpc_health_v1.RegisterHealthServer(s, h)

	if opts.Reflection || cfg.IsDevelopment() {
		reflection.Register(s)
		logger.Log.Debug("gRPC reflection enabled")
	}

	return &GRPCServer{
		server:      s,
		health:      h,
		serviceName: cfg.App.Name,
		config:      cfg,
	}
}

// Engine возвращает *grpc.Server для регистрации сервисов
func (s *GRPCServer) Engine() *grpc.Server {
	return s.server
}

// Listen открывает порт из конфигурации
func (s *GRPCServer) Listen(ctx context.Context) (net.Listener, error) {
	lc := net.ListenConfig{}
	lis, err := lc.Listen(ctx, "tcp", fmt.Sprintf(":%d", s.config.GRPC.Port))
	if err != nil {
		return nil, fmt.Errorf("failed to listen: %w", err)
	}
	return lis, nil
}

// Serve блокируется до остановки сервера. Штатная остановка не ошибка.
func (s *GRPCServer) Serve(lis net.Listener) error {
	s.health.SetServingStatus(s.serviceName, grpc_health_v1.HealthCheckResponse_SERVING)
	s.health.SetServingStatus("", grpc_health_v1.HealthCheckResponse_SERVING)

	logger.Log.Info("Starting gRPC server",
		"service", s.serviceName,
		"addr", lis.Addr().String(),
		"environment", s.config.App.Environment,
		"version", s.config.App.Version,
	)

	if err := s.server.Serve(lis); err != nil && !errors.Is(err, grpc.ErrServerStopped) {
		return err
	}
	return nil
}

// Shutdown переводит health в NOT_SERVING и ждёт завершения вызовов;
// по истечении ctx рвёт соединения.
func (s *GRPCServer) Shutdown(ctx context.Context) {
	s.health.Shutdown()

	done := make(chan struct{})
	go func() {
		s.server.GracefulStop()
		close(done)
	}()

	select {
	case <-done:
		logger.Log.Info("gRPC server stopped gracefully")
	case <-ctx.Done():
		logger.Log.Warn("Forcing gRPC server stop")
		s.server.Stop()
	}
}

// SetServingStatus устанавливает статус сервиса
func (s *GRPCServer) SetServingStatus(status grpc_health_v1.HealthCheckResponse_ServingStatus) {
	s.health.SetServingStatus(s.serviceName, status)
}
