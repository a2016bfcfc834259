// Package client подключается к matching-svc по gRPC с повторами
// идемпотентных ошибок транспорта.
package client

import (
	"context"
	"fmt"
	"time"

	grpc_retry "github.com/grpc-ecosystem/go-grpc-middleware/v2/interceptors/retry"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"

	"bloodlink/pkg/api/bloodlinkv1"
	"bloodlink/pkg/config"
)

type ClientConfig struct {
	Address      string
	Timeout      time.Duration
	MaxRetries   int
	RetryBackoff time.Duration
	// LoadBalancing round_robin или pick_first (по умолчанию)
	LoadBalancing string
}

// FromEndpoint собирает ClientConfig из секции services
func FromEndpoint(ep config.ServiceEndpoint) ClientConfig {
	return ClientConfig{
		Address:       ep.Address(),
		Timeout:       ep.Timeout,
		MaxRetries:    ep.MaxRetries,
		RetryBackoff:  ep.RetryBackoff,
		LoadBalancing: ep.LoadBalancing,
	}
}

// retryableCodes безопасно повторять: запрос до сервера не дошёл
// или сервер временно недоступен
var retryableCodes = []codes.Code{codes.Unavailable, codes.Aborted, codes.ResourceExhausted}

// NewGRPCClient создает соединение с Retry и Timeout
func NewGRPCClient(_ context.Context, cfg ClientConfig, extra ...grpc.DialOption) (*grpc.ClientConn, error) {
	if cfg.RetryBackoff <= 0 {
		cfg.RetryBackoff = 100 * time.Millisecond
	}
	if cfg.MaxRetries < 0 {
		cfg.MaxRetries = 0
	}

	opts := []grpc_retry.CallOption{
		grpc_retry.WithBackoff(grpc_retry.BackoffExponentialWithJitter(cfg.RetryBackoff, 0.2)),
		grpc_retry.WithCodes(retryableCodes...),
		grpc_retry.WithMax(uint(cfg.MaxRetries)),
	}
	if cfg.Timeout > 0 {
		opts = append(opts, grpc_retry.WithPerRetryTimeout(cfg.Timeout))
	}

	dialOpts := []grpc.DialOption{
		grpc.WithTransportCredentials(insecure.NewCredentials()),
		grpc.WithDefaultCallOptions(grpc.CallContentSubtype(bloodlinkv1.CodecName)),
		grpc.WithChainUnaryInterceptor(grpc_retry.UnaryClientInterceptor(opts...)),
	}
	if cfg.LoadBalancing == "round_robin" {
		dialOpts = append(dialOpts, grpc.WithDefaultServiceConfig(`{"loadBalancingConfig":[{"round_robin":{}}]}`))
	}
	dialOpts = append(dialOpts, extra...)

	conn, err := grpc.NewClient(cfg.Address, dialOpts...)
	if err != nil {
		return nil, fmt.Errorf("dial %s: %w", cfg.Address, err)
	}
	return conn, nil
}

// MatchingClient клиент matching-svc, владеющий соединением
type MatchingClient struct {
	bloodlinkv1.MatchingServiceClient
	conn *grpc.ClientConn
}

// NewMatchingClient открывает соединение к matching-svc
func NewMatchingClient(ctx context.Context, cfg ClientConfig, extra ...grpc.DialOption) (*MatchingClient, error) {
	conn, err := NewGRPCClient(ctx, cfg, extra...)
	if err != nil {
		return nil, err
	}
	return &MatchingClient{
		MatchingServiceClient: bloodlinkv1.NewMatchingServiceClient(conn),
		conn:                  conn,
	}, nil
}

func (c *MatchingClient) Close() error {
	return c.conn.Close()
}
