package bloodlinkv1

import (
	"context"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// UnimplementedMatchingServiceServer answers Unimplemented for every
// procedure. Embed it to stay forward compatible.
type UnimplementedMatchingServiceServer struct{}

func unimplemented(method string) error {
	return status.Errorf(codes.Unimplemented, "method %s not implemented", method)
}

func (UnimplementedMatchingServiceServer) CreateRequest(context.Context, *CreateRequestRequest) (*RequestResponse, error) {
	return nil, unimplemented(MethodCreateRequest)
}
func (UnimplementedMatchingServiceServer) ProcessRequest(context.Context, *RequestRef) (*RequestResponse, error) {
	return nil, unimplemented(MethodProcessRequest)
}
func (UnimplementedMatchingServiceServer) ConfirmMatch(context.Context, *RequestRef) (*RequestResponse, error) {
	return nil, unimplemented(MethodConfirmMatch)
}
func (UnimplementedMatchingServiceServer) CancelRequest(context.Context, *RequestRef) (*RequestResponse, error) {
	return nil, unimplemented(MethodCancelRequest)
}
func (UnimplementedMatchingServiceServer) CompleteRequest(context.Context, *RequestRef) (*RequestResponse, error) {
	return nil, unimplemented(MethodCompleteRequest)
}
func (UnimplementedMatchingServiceServer) GetRequest(context.Context, *RequestRef) (*RequestResponse, error) {
	return nil, unimplemented(MethodGetRequest)
}
func (UnimplementedMatchingServiceServer) ListRequests(context.Context, *ListRequestsRequest) (*ListRequestsResponse, error) {
	return nil, unimplemented(MethodListRequests)
}
func (UnimplementedMatchingServiceServer) RankDonors(context.Context, *RankDonorsRequest) (*RankDonorsResponse, error) {
	return nil, unimplemented(MethodRankDonors)
}
func (UnimplementedMatchingServiceServer) CompatibleDonors(context.Context, *RankDonorsRequest) (*RankDonorsResponse, error) {
	return nil, unimplemented(MethodCompatibleDonors)
}
func (UnimplementedMatchingServiceServer) Route(context.Context, *RouteRequest) (*RouteResponse, error) {
	return nil, unimplemented(MethodRoute)
}
func (UnimplementedMatchingServiceServer) AdjustInventory(context.Context, *AdjustInventoryRequest) (*InventoryEntryResponse, error) {
	return nil, unimplemented(MethodAdjustInventory)
}
func (UnimplementedMatchingServiceServer) GetInventory(context.Context, *GetInventoryRequest) (*GetInventoryResponse, error) {
	return nil, unimplemented(MethodGetInventory)
}
func (UnimplementedMatchingServiceServer) RegisterDonor(context.Context, *RegisterDonorRequest) (*DonorResponse, error) {
	return nil, unimplemented(MethodRegisterDonor)
}
func (UnimplementedMatchingServiceServer) RemoveDonor(context.Context, *DonorRef) (*Empty, error) {
	return nil, unimplemented(MethodRemoveDonor)
}
func (UnimplementedMatchingServiceServer) SetDonorAvailability(context.Context, *SetDonorAvailabilityRequest) (*DonorResponse, error) {
	return nil, unimplemented(MethodSetDonorAvailability)
}
func (UnimplementedMatchingServiceServer) ListDonors(context.Context, *ListDonorsRequest) (*ListDonorsResponse, error) {
	return nil, unimplemented(MethodListDonors)
}
func (UnimplementedMatchingServiceServer) ListDonations(context.Context, *ListDonationsRequest) (*ListDonationsResponse, error) {
	return nil, unimplemented(MethodListDonations)
}
func (UnimplementedMatchingServiceServer) ListTransitions(context.Context, *RequestRef) (*ListTransitionsResponse, error) {
	return nil, unimplemented(MethodListTransitions)
}
func (UnimplementedMatchingServiceServer) ExportWorkbook(context.Context, *ExportWorkbookRequest) (*ExportWorkbookResponse, error) {
	return nil, unimplemented(MethodExportWorkbook)
}
