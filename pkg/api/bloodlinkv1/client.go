package bloodlinkv1

import (
	"context"

	"google.golang.org/grpc"
)

// MatchingServiceClient is the client API for bloodlink.v1.MatchingService.
type MatchingServiceClient interface {
	CreateRequest(ctx context.Context, in *CreateRequestRequest, opts ...grpc.CallOption) (*RequestResponse, error)
	ProcessRequest(ctx context.Context, in *RequestRef, opts ...grpc.CallOption) (*RequestResponse, error)
	ConfirmMatch(ctx context.Context, in *RequestRef, opts ...grpc.CallOption) (*RequestResponse, error)
	CancelRequest(ctx context.Context, in *RequestRef, opts ...grpc.CallOption) (*RequestResponse, error)
	CompleteRequest(ctx context.Context, in *RequestRef, opts ...grpc.CallOption) (*RequestResponse, error)
	GetRequest(ctx context.Context, in *RequestRef, opts ...grpc.CallOption) (*RequestResponse, error)
	ListRequests(ctx context.Context, in *ListRequestsRequest, opts ...grpc.CallOption) (*ListRequestsResponse, error)
	RankDonors(ctx context.Context, in *RankDonorsRequest, opts ...grpc.CallOption) (*RankDonorsResponse, error)
	CompatibleDonors(ctx context.Context, in *RankDonorsRequest, opts ...grpc.CallOption) (*RankDonorsResponse, error)
	Route(ctx context.Context, in *RouteRequest, opts ...grpc.CallOption) (*RouteResponse, error)
	AdjustInventory(ctx context.Context, in *AdjustInventoryRequest, opts ...grpc.CallOption) (*InventoryEntryResponse, error)
	GetInventory(ctx context.Context, in *GetInventoryRequest, opts ...grpc.CallOption) (*GetInventoryResponse, error)
	RegisterDonor(ctx context.Context, in *RegisterDonorRequest, opts ...grpc.CallOption) (*DonorResponse, error)
	RemoveDonor(ctx context.Context, in *DonorRef, opts ...grpc.CallOption) (*Empty, error)
	SetDonorAvailability(ctx context.Context, in *SetDonorAvailabilityRequest, opts ...grpc.CallOption) (*DonorResponse, error)
	ListDonors(ctx context.Context, in *ListDonorsRequest, opts ...grpc.CallOption) (*ListDonorsResponse, error)
	ListDonations(ctx context.Context, in *ListDonationsRequest, opts ...grpc.CallOption) (*ListDonationsResponse, error)
	ListTransitions(ctx context.Context, in *RequestRef, opts ...grpc.CallOption) (*ListTransitionsResponse, error)
	ExportWorkbook(ctx context.Context, in *ExportWorkbookRequest, opts ...grpc.CallOption) (*ExportWorkbookResponse, error)
}

type matchingServiceClient struct {
	cc grpc.ClientConnInterface
}

// NewMatchingServiceClient wraps cc. Every call is sent with the JSON
// content-subtype.
func NewMatchingServiceClient(cc grpc.ClientConnInterface) MatchingServiceClient {
	return &matchingServiceClient{cc: cc}
}

func invoke[Resp any](ctx context.Context, cc grpc.ClientConnInterface, method string, in any, opts []grpc.CallOption) (*Resp, error) {
	out := new(Resp)
	opts = append([]grpc.CallOption{grpc.CallContentSubtype(CodecName)}, opts...)
	if err := cc.Invoke(ctx, FullMethod(method), in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *matchingServiceClient) CreateRequest(ctx context.Context, in *CreateRequestRequest, opts ...grpc.CallOption) (*RequestResponse, error) {
	return invoke[RequestResponse](ctx, c.cc, MethodCreateRequest, in, opts)
}

func (c *matchingServiceClient) ProcessRequest(ctx context.Context, in *RequestRef, opts ...grpc.CallOption) (*RequestResponse, error) {
	return invoke[RequestResponse](ctx, c.cc, MethodProcessRequest, in, opts)
}

func (c *matchingServiceClient) ConfirmMatch(ctx context.Context, in *RequestRef, opts ...grpc.CallOption) (*RequestResponse, error) {
	return invoke[RequestResponse](ctx, c.cc, MethodConfirmMatch, in, opts)
}

func (c *matchingServiceClient) CancelRequest(ctx context.Context, in *RequestRef, opts ...grpc.CallOption) (*RequestResponse, error) {
	return invoke[RequestResponse](ctx, c.cc, MethodCancelRequest, in, opts)
}

func (c *matchingServiceClient) CompleteRequest(ctx context.Context, in *RequestRef, opts ...grpc.CallOption) (*RequestResponse, error) {
	return invoke[RequestResponse](ctx, c.cc, MethodCompleteRequest, in, opts)
}

func (c *matchingServiceClient) GetRequest(ctx context.Context, in *RequestRef, opts ...grpc.CallOption) (*RequestResponse, error) {
	return invoke[RequestResponse](ctx, c.cc, MethodGetRequest, in, opts)
}

func (c *matchingServiceClient) ListRequests(ctx context.Context, in *ListRequestsRequest, opts ...grpc.CallOption) (*ListRequestsResponse, error) {
	return invoke[ListRequestsResponse](ctx, c.cc, MethodListRequests, in, opts)
}

func (c *matchingServiceClient) RankDonors(ctx context.Context, in *RankDonorsRequest, opts ...grpc.CallOption) (*RankDonorsResponse, error) {
	return invoke[RankDonorsResponse](ctx, c.cc, MethodRankDonors, in, opts)
}

func (c *matchingServiceClient) CompatibleDonors(ctx context.Context, in *RankDonorsRequest, opts ...grpc.CallOption) (*RankDonorsResponse, error) {
	return invoke[RankDonorsResponse](ctx, c.cc, MethodCompatibleDonors, in, opts)
}

func (c *matchingServiceClient) Route(ctx context.Context, in *RouteRequest, opts ...grpc.CallOption) (*RouteResponse, error) {
	return invoke[RouteResponse](ctx, c.cc, MethodRoute, in, opts)
}

func (c *matchingServiceClient) AdjustInventory(ctx context.Context, in *AdjustInventoryRequest, opts ...grpc.CallOption) (*InventoryEntryResponse, error) {
	return invoke[InventoryEntryResponse](ctx, c.cc, MethodAdjustInventory, in, opts)
}

func (c *matchingServiceClient) GetInventory(ctx context.Context, in *GetInventoryRequest, opts ...grpc.CallOption) (*GetInventoryResponse, error) {
	return invoke[GetInventoryResponse](ctx, c.cc, MethodGetInventory, in, opts)
}

func (c *matchingServiceClient) RegisterDonor(ctx context.Context, in *RegisterDonorRequest, opts ...grpc.CallOption) (*DonorResponse, error) {
	return invoke[DonorResponse](ctx, c.cc, MethodRegisterDonor, in, opts)
}

func (c *matchingServiceClient) RemoveDonor(ctx context.Context, in *DonorRef, opts ...grpc.CallOption) (*Empty, error) {
	return invoke[Empty](ctx, c.cc, MethodRemoveDonor, in, opts)
}

func (c *matchingServiceClient) SetDonorAvailability(ctx context.Context, in *SetDonorAvailabilityRequest, opts ...grpc.CallOption) (*DonorResponse, error) {
	return invoke[DonorResponse](ctx, c.cc, MethodSetDonorAvailability, in, opts)
}

func (c *matchingServiceClient) ListDonors(ctx context.Context, in *ListDonorsRequest, opts ...grpc.CallOption) (*ListDonorsResponse, error) {
	return invoke[ListDonorsResponse](ctx, c.cc, MethodListDonors, in, opts)
}

func (c *matchingServiceClient) ListDonations(ctx context.Context, in *ListDonationsRequest, opts ...grpc.CallOption) (*ListDonationsResponse, error) {
	return invoke[ListDonationsResponse](ctx, c.cc, MethodListDonations, in, opts)
}

func (c *matchingServiceClient) ListTransitions(ctx context.Context, in *RequestRef, opts ...grpc.CallOption) (*ListTransitionsResponse, error) {
	return invoke[ListTransitionsResponse](ctx, c.cc, MethodListTransitions, in, opts)
}

func (c *matchingServiceClient) ExportWorkbook(ctx context.Context, in *ExportWorkbookRequest, opts ...grpc.CallOption) (*ExportWorkbookResponse, error) {
	return invoke[ExportWorkbookResponse](ctx, c.cc, MethodExportWorkbook, in, opts)
}
