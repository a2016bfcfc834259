package bloodlinkv1

import (
	"context"
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/status"
	"google.golang.org/grpc/test/bufconn"

	"bloodlink/pkg/apperror"
	"bloodlink/pkg/domain"
)

func TestCodec_EnumsAsText(t *testing.T) {
	var c Codec

	in := &CreateRequestRequest{
		BloodType:  domain.ONegative,
		Units:      2,
		LocationID: "gulberg",
		Priority:   domain.PriorityEmergency,
	}
	data, err := c.Marshal(in)
	require.NoError(t, err)
	assert.JSONEq(t, `{"blood_type":"O-","units":2,"location_id":"gulberg","priority":"Emergency","requester":{}}`, string(data))

	var out CreateRequestRequest
	require.NoError(t, c.Unmarshal(data, &out))
	assert.Equal(t, *in, out)

	assert.Error(t, c.Unmarshal([]byte(`{"blood_type":"Z+"}`), &out))
	assert.NoError(t, c.Unmarshal(nil, &out))
}

func TestValidate(t *testing.T) {
	yes := true
	tests := []struct {
		name string
		msg  interface{ Validate() error }
		code apperror.ErrorCode
	}{
		{"ref ok", &RequestRef{RequestID: "r1"}, ""},
		{"ref blank", &RequestRef{RequestID: "  "}, apperror.CodeInvalidArgument},
		{"create ok", &CreateRequestRequest{BloodType: domain.APositive, Units: 1, LocationID: "dha", Priority: domain.PriorityUrgent}, ""},
		{"create no type", &CreateRequestRequest{Units: 1, LocationID: "dha", Priority: domain.PriorityUrgent}, apperror.CodeUnknownBloodType},
		{"create zero units", &CreateRequestRequest{BloodType: domain.APositive, LocationID: "dha", Priority: domain.PriorityUrgent}, apperror.CodeInvalidQuantity},
		{"create no priority", &CreateRequestRequest{BloodType: domain.APositive, Units: 1, LocationID: "dha"}, apperror.CodeInvalidArgument},
		{"rank ok", &RankDonorsRequest{BloodType: domain.BNegative, LocationID: "dha"}, ""},
		{"rank no location", &RankDonorsRequest{BloodType: domain.BNegative}, apperror.CodeInvalidArgument},
		{"route missing to", &RouteRequest{From: "dha"}, apperror.CodeInvalidArgument},
		{"adjust ok", &AdjustInventoryRequest{BloodType: domain.OPositive, Op: OpAdd, Units: 3}, ""},
		{"adjust negative", &AdjustInventoryRequest{BloodType: domain.OPositive, Op: OpRemove, Units: -1}, apperror.CodeInvalidQuantity},
		{"adjust reserve negative allowed", &AdjustInventoryRequest{BloodType: domain.OPositive, Op: OpReserve, Units: -1}, ""},
		{"adjust bad op", &AdjustInventoryRequest{BloodType: domain.OPositive, Op: "drain"}, apperror.CodeInvalidArgument},
		{"donor ok", &RegisterDonorRequest{Name: "Sara", BloodType: domain.ABNegative, LocationID: "dha", Available: &yes}, ""},
		{"donor no name", &RegisterDonorRequest{BloodType: domain.ABNegative, LocationID: "dha"}, apperror.CodeInvalidArgument},
		{"availability no id", &SetDonorAvailabilityRequest{}, apperror.CodeInvalidArgument},
		{"donations negative", &ListDonationsRequest{Limit: -1}, apperror.CodeInvalidArgument},
		{"list requests all", &ListRequestsRequest{}, ""},
		{"list donors by type", &ListDonorsRequest{BloodType: domain.ANegative}, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.msg.Validate()
			if tt.code == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Equal(t, tt.code, apperror.Code(err))
		})
	}
}

func TestFullMethod(t *testing.T) {
	assert.Equal(t, "/bloodlink.v1.MatchingService/ProcessRequest", FullMethod(MethodProcessRequest))
	assert.Len(t, ServiceDesc.Methods, 19)
}

type stubServer struct {
	UnimplementedMatchingServiceServer
}

func (stubServer) ProcessRequest(_ context.Context, in *RequestRef) (*RequestResponse, error) {
	return &RequestResponse{Request: &domain.BloodRequest{
		ID:        in.RequestID,
		BloodType: domain.ONegative,
		Status:    domain.StatusMatched,
		Route:     []string{"Model Town", "Township"},
	}}, nil
}

func dial(t *testing.T, srv MatchingServiceServer) MatchingServiceClient {
	t.Helper()

	lis := bufconn.Listen(1 << 20)
	s := grpc.NewServer()
	RegisterMatchingServiceServer(s, srv)
	go func() { _ = s.Serve(lis) }()
	t.Cleanup(s.Stop)

	conn, err := grpc.NewClient("passthrough:///bufnet",
		grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) {
			return lis.DialContext(ctx)
		}),
		grpc.WithTransportCredentials(insecure.NewCredentials()),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })

	return NewMatchingServiceClient(conn)
}

func TestClientServer_RoundTrip(t *testing.T) {
	client := dial(t, stubServer{})
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	resp, err := client.ProcessRequest(ctx, &RequestRef{RequestID: "r7"})
	require.NoError(t, err)
	assert.Equal(t, "r7", resp.Request.ID)
	assert.Equal(t, domain.StatusMatched, resp.Request.Status)
	assert.Equal(t, []string{"Model Town", "Township"}, resp.Request.Route)

	_, err = client.ConfirmMatch(ctx, &RequestRef{RequestID: "r7"})
	assert.Equal(t, codes.Unimplemented, status.Code(err))
}
