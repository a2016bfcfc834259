package interceptors

import (
	"context"
	"errors"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"

	"bloodlink/pkg/apperror"
	"bloodlink/pkg/logger"
	"bloodlink/pkg/metrics"
)

func init() {
	logger.InitWithConfig(logger.Config{Level: "error", Output: "discard"})
}

var info = &grpc.UnaryServerInfo{FullMethod: "/bloodlink.v1.MatchingService/GetRequest"}

func okHandler(_ context.Context, _ any) (any, error) {
	return "response", nil
}

func notFoundHandler(_ context.Context, _ any) (any, error) {
	return nil, status.Error(codes.NotFound, "request not found")
}

func panicking(_ context.Context, _ any) (any, error) {
	panic("boom")
}

func TestRecoveryInterceptor(t *testing.T) {
	interceptor := RecoveryInterceptor()

	resp, err := interceptor(context.Background(), "req", info, okHandler)
	require.NoError(t, err)
	assert.Equal(t, "response", resp)

	_, err = interceptor(context.Background(), "req", info, panicking)
	require.Error(t, err)
	assert.Equal(t, codes.Internal, status.Code(err))
}

func TestLoggingInterceptor(t *testing.T) {
	interceptor := LoggingInterceptor()

	resp, err := interceptor(context.Background(), "req", info, okHandler)
	require.NoError(t, err)
	assert.Equal(t, "response", resp)

	_, err = interceptor(context.Background(), "req", info, notFoundHandler)
	assert.Equal(t, codes.NotFound, status.Code(err))
}

func TestClientFault(t *testing.T) {
	assert.True(t, clientFault(codes.InvalidArgument))
	assert.True(t, clientFault(codes.FailedPrecondition))
	assert.False(t, clientFault(codes.Internal))
	assert.False(t, clientFault(codes.Unavailable))
}

type validatable struct{ err error }

func (v *validatable) Validate() error { return v.err }

func TestValidationInterceptor(t *testing.T) {
	interceptor := ValidationInterceptor()

	tests := []struct {
		name string
		req  any
		code codes.Code
	}{
		{"valid", &validatable{}, codes.OK},
		{"plain error", &validatable{err: errors.New("units must be positive")}, codes.InvalidArgument},
		{"coded error", &validatable{err: apperror.New(apperror.CodeNotFound, "unknown donor")}, codes.NotFound},
		{"not a validator", "string request", codes.OK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := interceptor(context.Background(), tt.req, info, okHandler)
			assert.Equal(t, tt.code, status.Code(err))
		})
	}
}

func TestRequestIDInterceptor(t *testing.T) {
	interceptor := RequestIDInterceptor()

	var seen string
	capture := func(ctx context.Context, _ any) (any, error) {
		seen = RequestIDFromContext(ctx)
		return nil, nil
	}

	ctx := metadata.NewIncomingContext(context.Background(), metadata.Pairs(RequestIDHeader, "req-42"))
	_, err := interceptor(ctx, nil, info, capture)
	require.NoError(t, err)
	assert.Equal(t, "req-42", seen)

	_, err = interceptor(context.Background(), nil, info, capture)
	require.NoError(t, err)
	assert.Len(t, seen, 36)
}

func TestMetricsInterceptor(t *testing.T) {
	m := metrics.NewMetrics(prometheus.NewRegistry(), "test", "interceptors")
	interceptor := MetricsInterceptor(m)

	_, _ = interceptor(context.Background(), nil, info, okHandler)
	_, _ = interceptor(context.Background(), nil, info, notFoundHandler)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.GRPCRequestsTotal.WithLabelValues(info.FullMethod, "OK")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.GRPCRequestsTotal.WithLabelValues(info.FullMethod, "NotFound")))
	assert.Equal(t, 0.0, testutil.ToFloat64(m.GRPCRequestsInFlight))
}

func TestUnaryServerInterceptors_Chain(t *testing.T) {
	m := metrics.NewMetrics(prometheus.NewRegistry(), "test", "chain")
	chain := UnaryServerInterceptors(&ServerConfig{ServiceName: "matching", Metrics: m})

	_, err := chain(context.Background(), &validatable{err: errors.New("bad")}, info, okHandler)
	assert.Equal(t, codes.InvalidArgument, status.Code(err))

	_, err = chain(context.Background(), nil, info, panicking)
	assert.Equal(t, codes.Internal, status.Code(err))

	resp, err := chain(context.Background(), nil, info, okHandler)
	require.NoError(t, err)
	assert.Equal(t, "response", resp)
}

func TestChainUnaryInterceptors(t *testing.T) {
	var order []string

	wrap := func(name string) grpc.UnaryServerInterceptor {
		return func(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
			order = append(order, name+"-before")
			resp, err := handler(ctx, req)
			order = append(order, name+"-after")
			return resp, err
		}
	}

	chain := chainUnaryInterceptors(wrap("1"), wrap("2"))
	_, _ = chain(context.Background(), "req", &grpc.UnaryServerInfo{}, func(_ context.Context, _ any) (any, error) {
		order = append(order, "handler")
		return nil, nil
	})

	assert.Equal(t, []string{"1-before", "2-before", "handler", "2-after", "1-after"}, order)
}
