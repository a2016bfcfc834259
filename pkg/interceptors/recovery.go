package interceptors

import (
	"context"
	"runtime/debug"

	"github.com/grpc-ecosystem/go-grpc-middleware/v2/interceptors/recovery"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"bloodlink/pkg/logger"
)

// panicHandler логирует панику со стеком и отдаёт клиенту Internal
func panicHandler(ctx context.Context, p any) error {
	logger.WithContext(ctx).Error("gRPC handler panic",
		"panic", p,
		"stack", string(debug.Stack()),
	)
	return status.Error(codes.Internal, "internal error")
}

// RecoveryInterceptor превращает панику обработчика в codes.Internal
func RecoveryInterceptor() grpc.UnaryServerInterceptor {
	return recovery.UnaryServerInterceptor(recovery.WithRecoveryHandlerContext(panicHandler))
}

func StreamRecoveryInterceptor() grpc.StreamServerInterceptor {
	return recovery.StreamServerInterceptor(recovery.WithRecoveryHandlerContext(panicHandler))
}
