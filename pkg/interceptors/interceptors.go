package interceptors

import (
	"google.golang.org/grpc"

	"bloodlink/pkg/metrics"
	"bloodlink/pkg/telemetry"
)

// ServerConfig конфигурация серверных интерсепторов
type ServerConfig struct {
	ServiceName   string
	EnableTracing bool
	// Metrics по умолчанию metrics.Get()
	Metrics *metrics.Metrics
}

func (c *ServerConfig) metrics() *metrics.Metrics {
	if c.Metrics != nil {
		return c.Metrics
	}
	return metrics.Get()
}

// UnaryServerInterceptors возвращает цепочку unary интерсепторов.
// Порядок: recovery, request id, tracing, metrics, logging, validation.
func UnaryServerInterceptors(cfg *ServerConfig) grpc.UnaryServerInterceptor {
	interceptors := []grpc.UnaryServerInterceptor{
		RecoveryInterceptor(),
		RequestIDInterceptor(),
	}

	if cfg.EnableTracing {
		interceptors = append(interceptors, telemetry.UnaryServerInterceptor())
	}

	interceptors = append(interceptors,
		MetricsInterceptor(cfg.metrics()),
		LoggingInterceptor(),
		ValidationInterceptor(),
	)

	return chainUnaryInterceptors(interceptors...)
}

// StreamServerInterceptors возвращает цепочку stream интерсепторов
func StreamServerInterceptors(cfg *ServerConfig) grpc.StreamServerInterceptor {
	interceptors := []grpc.StreamServerInterceptor{
		StreamRecoveryInterceptor(),
	}

	if cfg.EnableTracing {
		interceptors = append(interceptors, telemetry.StreamServerInterceptor())
	}

	interceptors = append(interceptors,
		StreamMetricsInterceptor(cfg.metrics()),
		StreamLoggingInterceptor(),
	)

	return chainStreamInterceptors(interceptors...)
}
