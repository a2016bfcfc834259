package httpapi

import (
	"context"
	"errors"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"

	"connectrpc.com/connect"
	"github.com/google/uuid"
	"google.golang.org/grpc/codes"

	"bloodlink/pkg/apperror"
	"bloodlink/pkg/interceptors"
	"bloodlink/pkg/logger"
	"bloodlink/pkg/metrics"
	"bloodlink/pkg/ratelimit"
)

const requestIDHeader = "X-Request-Id"

type requestIDKey struct{}

// RequestIDFromContext возвращает id запроса, выданный интерсептором
func RequestIDFromContext(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey{}).(string)
	return id
}

// NewRequestIDInterceptor берёт X-Request-Id клиента или создаёт новый
// и возвращает его в заголовке ответа
func NewRequestIDInterceptor() connect.UnaryInterceptorFunc {
	return func(next connect.UnaryFunc) connect.UnaryFunc {
		return func(ctx context.Context, req connect.AnyRequest) (connect.AnyResponse, error) {
			id := req.Header().Get(requestIDHeader)
			if id == "" {
				id = uuid.NewString()
			}
			ctx = context.WithValue(ctx, requestIDKey{}, id)
			ctx = logger.ContextWith(ctx, "request_id", id)

			resp, err := next(ctx, req)
			if err != nil {
				var connectErr *connect.Error
				if errors.As(err, &connectErr) {
					connectErr.Meta().Set(requestIDHeader, id)
				}
				return nil, err
			}
			resp.Header().Set(requestIDHeader, id)
			return resp, nil
		}
	}
}

// NewLoggingInterceptor логирует каждую процедуру; ошибки клиента на warn
func NewLoggingInterceptor() connect.UnaryInterceptorFunc {
	return func(next connect.UnaryFunc) connect.UnaryFunc {
		return func(ctx context.Context, req connect.AnyRequest) (connect.AnyResponse, error) {
			start := time.Now()
			procedure := req.Spec().Procedure

			resp, err := next(ctx, req)

			log := logger.WithContext(ctx)
			duration := time.Since(start)
			switch {
			case err == nil:
				log.Info("Request completed",
					"procedure", procedure,
					"duration_ms", duration.Milliseconds(),
				)
			case clientFault(connect.CodeOf(err)):
				log.Warn("Request rejected",
					"procedure", procedure,
					"code", connect.CodeOf(err).String(),
					"duration_ms", duration.Milliseconds(),
					"error", err,
				)
			default:
				log.Error("Request failed",
					"procedure", procedure,
					"code", connect.CodeOf(err).String(),
					"duration_ms", duration.Milliseconds(),
					"error", err,
				)
			}
			return resp, err
		}
	}
}

func clientFault(code connect.Code) bool {
	switch code {
	case connect.CodeInvalidArgument, connect.CodeNotFound, connect.CodeFailedPrecondition, connect.CodeAlreadyExists,
		connect.CodeResourceExhausted:
		return true
	}
	return false
}

// NewMetricsInterceptor пишет те же метрики, что и gRPC сервер
func NewMetricsInterceptor(m *metrics.Metrics) connect.UnaryInterceptorFunc {
	return func(next connect.UnaryFunc) connect.UnaryFunc {
		return func(ctx context.Context, req connect.AnyRequest) (connect.AnyResponse, error) {
			m.GRPCRequestsInFlight.Inc()
			defer m.GRPCRequestsInFlight.Dec()

			start := time.Now()
			resp, err := next(ctx, req)

			status := "OK"
			if err != nil {
				// имена кодов gRPC, чтобы метки совпадали для обоих транспортов
				status = codes.Code(connect.CodeOf(err)).String()
			}
			m.RecordGRPCRequest(req.Spec().Procedure, status, time.Since(start))
			return resp, err
		}
	}
}

// NewRateLimitInterceptor отклоняет вызовы сверх лимита клиента с
// ResourceExhausted и Retry-After. Ошибка самого лимитера вызов не блокирует.
func NewRateLimitInterceptor(l ratelimit.Limiter, trustForwarded bool) connect.UnaryInterceptorFunc {
	return func(next connect.UnaryFunc) connect.UnaryFunc {
		return func(ctx context.Context, req connect.AnyRequest) (connect.AnyResponse, error) {
			key := clientKey(req, trustForwarded)

			d, err := l.Allow(ctx, key)
			if err != nil {
				logger.WithContext(ctx).Warn("Rate limiter unavailable", "client", key, "error", err)
				return next(ctx, req)
			}
			if !d.Allowed {
				connectErr := connect.NewError(connect.CodeResourceExhausted, errors.New("rate limit exceeded"))
				secs := int((d.RetryAfter + time.Second - 1) / time.Second)
				connectErr.Meta().Set("Retry-After", strconv.Itoa(max(secs, 1)))
				return nil, connectErr
			}
			return next(ctx, req)
		}
	}
}

func clientKey(req connect.AnyRequest, trustForwarded bool) string {
	if trustForwarded {
		if fwd := req.Header().Get("X-Forwarded-For"); fwd != "" {
			first, _, _ := strings.Cut(fwd, ",")
			return strings.TrimSpace(first)
		}
	}
	addr := req.Peer().Addr
	if host, _, err := net.SplitHostPort(addr); err == nil {
		return host
	}
	if addr == "" {
		return "unknown"
	}
	return addr
}

// NewValidationInterceptor вызывает Validate у сообщений до обработчика
func NewValidationInterceptor() connect.UnaryInterceptorFunc {
	return func(next connect.UnaryFunc) connect.UnaryFunc {
		return func(ctx context.Context, req connect.AnyRequest) (connect.AnyResponse, error) {
			if v, ok := req.Any().(interceptors.Validator); ok {
				if err := v.Validate(); err != nil {
					code := connect.CodeInvalidArgument
					var appErr *apperror.Error
					if errors.As(err, &appErr) {
						code = connect.Code(apperror.GRPCCode(appErr.Code))
					}
					return nil, connect.NewError(code, err)
				}
			}
			return next(ctx, req)
		}
	}
}

func recoverHandler(ctx context.Context, spec connect.Spec, _ http.Header, p any) error {
	logger.WithContext(ctx).Error("Panic recovered",
		"procedure", spec.Procedure,
		"panic", p,
	)
	return connect.NewError(connect.CodeInternal, errors.New("internal error"))
}
