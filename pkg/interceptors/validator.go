package interceptors

import (
	"context"
	"errors"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"bloodlink/pkg/apperror"
)

// Validator реализуют сообщения API
type Validator interface {
	Validate() error
}

// ValidationInterceptor отклоняет невалидные запросы до обработчика.
// Ошибки apperror сохраняют свой код, остальные становятся InvalidArgument.
func ValidationInterceptor() grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
		if v, ok := req.(Validator); ok {
			if err := v.Validate(); err != nil {
				var appErr *apperror.Error
				if errors.As(err, &appErr) {
					return nil, appErr.GRPCStatus().Err()
				}
				return nil, status.Errorf(codes.InvalidArgument, "validation error: %v", err)
			}
		}
		return handler(ctx, req)
	}
}
