package bloodlinkv1

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

const ServiceName = "bloodlink.v1.MatchingService"

// Procedure names.
const (
	MethodCreateRequest        = "CreateRequest"
	MethodProcessRequest       = "ProcessRequest"
	MethodConfirmMatch         = "ConfirmMatch"
	MethodCancelRequest        = "CancelRequest"
	MethodCompleteRequest      = "CompleteRequest"
	MethodGetRequest           = "GetRequest"
	MethodListRequests         = "ListRequests"
	MethodRankDonors           = "RankDonors"
	MethodCompatibleDonors     = "CompatibleDonors"
	MethodRoute                = "Route"
	MethodAdjustInventory      = "AdjustInventory"
	MethodGetInventory         = "GetInventory"
	MethodRegisterDonor        = "RegisterDonor"
	MethodRemoveDonor          = "RemoveDonor"
	MethodSetDonorAvailability = "SetDonorAvailability"
	MethodListDonors           = "ListDonors"
	MethodListDonations        = "ListDonations"
	MethodListTransitions      = "ListTransitions"
	MethodExportWorkbook       = "ExportWorkbook"
)

// FullMethod returns "/bloodlink.v1.MatchingService/<method>", which is also
// the Connect HTTP path.
func FullMethod(method string) string {
	return "/" + ServiceName + "/" + method
}

// MatchingServiceServer is implemented by the matching service.
type MatchingServiceServer interface {
	CreateRequest(context.Context, *CreateRequestRequest) (*RequestResponse, error)
	ProcessRequest(context.Context, *RequestRef) (*RequestResponse, error)
	ConfirmMatch(context.Context, *RequestRef) (*RequestResponse, error)
	CancelRequest(context.Context, *RequestRef) (*RequestResponse, error)
	CompleteRequest(context.Context, *RequestRef) (*RequestResponse, error)
	GetRequest(context.Context, *RequestRef) (*RequestResponse, error)
	ListRequests(context.Context, *ListRequestsRequest) (*ListRequestsResponse, error)
	RankDonors(context.Context, *RankDonorsRequest) (*RankDonorsResponse, error)
	CompatibleDonors(context.Context, *RankDonorsRequest) (*RankDonorsResponse, error)
	Route(context.Context, *RouteRequest) (*RouteResponse, error)
	AdjustInventory(context.Context, *AdjustInventoryRequest) (*InventoryEntryResponse, error)
	GetInventory(context.Context, *GetInventoryRequest) (*GetInventoryResponse, error)
	RegisterDonor(context.Context, *RegisterDonorRequest) (*DonorResponse, error)
	RemoveDonor(context.Context, *DonorRef) (*Empty, error)
	SetDonorAvailability(context.Context, *SetDonorAvailabilityRequest) (*DonorResponse, error)
	ListDonors(context.Context, *ListDonorsRequest) (*ListDonorsResponse, error)
	ListDonations(context.Context, *ListDonationsRequest) (*ListDonationsResponse, error)
	ListTransitions(context.Context, *RequestRef) (*ListTransitionsResponse, error)
	ExportWorkbook(context.Context, *ExportWorkbookRequest) (*ExportWorkbookResponse, error)
}

// unaryHandler adapts a typed server method to grpc.MethodHandler.
func unaryHandler[Req, Resp any](method string, call func(MatchingServiceServer, context.Context, *Req) (*Resp, error)) grpc.MethodHandler {
	return func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
		in := new(Req)
		if err := dec(in); err != nil {
			return nil, err
		}
		s, ok := srv.(MatchingServiceServer)
		if !ok {
			return nil, status.Errorf(codes.Internal, "%T does not implement %s", srv, ServiceName)
		}
		if interceptor == nil {
			return call(s, ctx, in)
		}
		info := &grpc.UnaryServerInfo{Server: srv, FullMethod: FullMethod(method)}
		return interceptor(ctx, in, info, func(ctx context.Context, req any) (any, error) {
			return call(s, ctx, req.(*Req))
		})
	}
}

func method[Req, Resp any](name string, call func(MatchingServiceServer, context.Context, *Req) (*Resp, error)) grpc.MethodDesc {
	return grpc.MethodDesc{MethodName: name, Handler: unaryHandler(name, call)}
}

// ServiceDesc describes bloodlink.v1.MatchingService for grpc.Server.
var ServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*MatchingServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		method(MethodCreateRequest, MatchingServiceServer.CreateRequest),
		method(MethodProcessRequest, MatchingServiceServer.ProcessRequest),
		method(MethodConfirmMatch, MatchingServiceServer.ConfirmMatch),
		method(MethodCancelRequest, MatchingServiceServer.CancelRequest),
		method(MethodCompleteRequest, MatchingServiceServer.CompleteRequest),
		method(MethodGetRequest, MatchingServiceServer.GetRequest),
		method(MethodListRequests, MatchingServiceServer.ListRequests),
		method(MethodRankDonors, MatchingServiceServer.RankDonors),
		method(MethodCompatibleDonors, MatchingServiceServer.CompatibleDonors),
		method(MethodRoute, MatchingServiceServer.Route),
		method(MethodAdjustInventory, MatchingServiceServer.AdjustInventory),
		method(MethodGetInventory, MatchingServiceServer.GetInventory),
		method(MethodRegisterDonor, MatchingServiceServer.RegisterDonor),
		method(MethodRemoveDonor, MatchingServiceServer.RemoveDonor),
		method(MethodSetDonorAvailability, MatchingServiceServer.SetDonorAvailability),
		method(MethodListDonors, MatchingServiceServer.ListDonors),
		method(MethodListDonations, MatchingServiceServer.ListDonations),
		method(MethodListTransitions, MatchingServiceServer.ListTransitions),
		method(MethodExportWorkbook, MatchingServiceServer.ExportWorkbook),
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "bloodlink/v1/matching.api",
}

// RegisterMatchingServiceServer registers srv on s.
func RegisterMatchingServiceServer(s grpc.ServiceRegistrar, srv MatchingServiceServer) {
	s.RegisterService(&ServiceDesc, srv)
}
