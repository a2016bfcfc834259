package client

import (
	"context"
	"net"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/grpc/test/bufconn"

	"bloodlink/pkg/api/bloodlinkv1"
	"bloodlink/pkg/config"
	"bloodlink/pkg/domain"
)

func TestFromEndpoint(t *testing.T) {
	cfg := FromEndpoint(config.ServiceEndpoint{
		Host:         "matching",
		Port:         50051,
		Timeout:      2 * time.Second,
		MaxRetries:   3,
		RetryBackoff: 50 * time.Millisecond,
	})

	assert.Equal(t, "matching:50051", cfg.Address)
	assert.Equal(t, 3, cfg.MaxRetries)
	assert.Equal(t, 2*time.Second, cfg.Timeout)
}

// flakyServer отвечает Unavailable первые failures вызовов
type flakyServer struct {
	bloodlinkv1.UnimplementedMatchingServiceServer
	failures int32
	calls    atomic.Int32
}

func (s *flakyServer) GetInventory(context.Context, *bloodlinkv1.GetInventoryRequest) (*bloodlinkv1.GetInventoryResponse, error) {
	if s.calls.Add(1) <= s.failures {
		return nil, status.Error(codes.Unavailable, "warming up")
	}
	return &bloodlinkv1.GetInventoryResponse{Entries: []domain.InventoryEntry{{BloodType: domain.ONegative, Total: 5, Reserved: 3}}}, nil
}

func (s *flakyServer) ProcessRequest(context.Context, *bloodlinkv1.RequestRef) (*bloodlinkv1.RequestResponse, error) {
	s.calls.Add(1)
	return nil, status.Error(codes.NotFound, "request not found")
}

func newClient(t *testing.T, srv bloodlinkv1.MatchingServiceServer, retries int) *MatchingClient {
	t.Helper()

	lis := bufconn.Listen(1 << 20)
	s := grpc.NewServer()
	bloodlinkv1.RegisterMatchingServiceServer(s, srv)
	go func() { _ = s.Serve(lis) }()
	t.Cleanup(s.Stop)

	c, err := NewMatchingClient(context.Background(),
		ClientConfig{Address: "passthrough:///bufnet", MaxRetries: retries, RetryBackoff: time.Millisecond},
		grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) {
			return lis.DialContext(ctx)
		}),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = c.Close() })
	return c
}

func TestMatchingClient_RetriesUnavailable(t *testing.T) {
	srv := &flakyServer{failures: 2}
	c := newClient(t, srv, 3)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	resp, err := c.GetInventory(ctx, &bloodlinkv1.GetInventoryRequest{})
	require.NoError(t, err)
	require.Len(t, resp.Entries, 1)
	assert.Equal(t, 2, resp.Entries[0].Available())
	assert.Equal(t, int32(3), srv.calls.Load())
}

func TestMatchingClient_DoesNotRetryCallerErrors(t *testing.T) {
	srv := &flakyServer{}
	c := newClient(t, srv, 3)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	_, err := c.ProcessRequest(ctx, &bloodlinkv1.RequestRef{RequestID: "missing"})
	assert.Equal(t, codes.NotFound, status.Code(err))
	assert.Equal(t, int32(1), srv.calls.Load())
}
