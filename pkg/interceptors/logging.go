package interceptors

import (
	"context"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"bloodlink/pkg/logger"
)

// clientFault: ошибки клиента логируем как warn, не как error
func clientFault(code codes.Code) bool {
	switch code {
	case codes.InvalidArgument, codes.NotFound, codes.FailedPrecondition, codes.AlreadyExists:
		return true
	}
	return false
}

// LoggingInterceptor логирует gRPC запросы
func LoggingInterceptor() grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
		start := time.Now()

		resp, err := handler(ctx, req)

		st, _ := status.FromError(err)
		log := logger.WithContext(ctx,
			"method", info.FullMethod,
			"duration_ms", time.Since(start).Milliseconds(),
			"code", st.Code().String(),
		)

		switch {
		case err == nil:
			log.Info("gRPC request completed")
		case clientFault(st.Code()):
			log.Warn("gRPC request rejected", "error", st.Message())
		default:
			log.Error("gRPC request failed", "error", err.Error())
		}

		return resp, err
	}
}

// StreamLoggingInterceptor логирует streaming запросы
func StreamLoggingInterceptor() grpc.StreamServerInterceptor {
	return func(srv any, ss grpc.ServerStream, info *grpc.StreamServerInfo, handler grpc.StreamHandler) error {
		start := time.Now()

		err := handler(srv, ss)

		log := logger.WithContext(ss.Context(),
			"method", info.FullMethod,
			"duration_ms", time.Since(start).Milliseconds(),
		)
		if err != nil {
			log.Error("gRPC stream failed", "error", err.Error())
		} else {
			log.Info("gRPC stream completed")
		}

		return err
	}
}
