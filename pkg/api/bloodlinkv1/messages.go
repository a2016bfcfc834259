// Package bloodlinkv1 is the wire API of the matching service
// (bloodlink.v1.MatchingService). Messages are plain structs carried by the
// JSON codec over gRPC and Connect; enum fields use their text form
// ("O-", "Emergency", "Matched").
package bloodlinkv1

import (
	"time"

	"bloodlink/pkg/domain"
)

// RequestRef addresses one blood request. Used by ProcessRequest,
// ConfirmMatch, CancelRequest and GetRequest.
type RequestRef struct {
	RequestID string `json:"request_id"`
}

type RequestResponse struct {
	Request *domain.BloodRequest `json:"request"`
}

type CreateRequestRequest struct {
	BloodType   domain.BloodType `json:"blood_type"`
	Units       int              `json:"units"`
	LocationID  string           `json:"location_id"`
	Priority    domain.Priority  `json:"priority"`
	PatientName string           `json:"patient_name,omitempty"`
	Hospital    string           `json:"hospital,omitempty"`
	Requester   domain.Requester `json:"requester"`
}

type ListRequestsRequest struct {
	// Status filters by status; empty means all.
	Status domain.RequestStatus `json:"status,omitempty"`
}

type ListRequestsResponse struct {
	Requests []*domain.BloodRequest `json:"requests"`
}

// RankDonorsRequest serves both RankDonors and CompatibleDonors.
type RankDonorsRequest struct {
	BloodType  domain.BloodType `json:"blood_type"`
	LocationID string           `json:"location_id"`
}

type RankDonorsResponse struct {
	Candidates []domain.Candidate `json:"candidates"`
	// Version of the donor registry the preview was computed against.
	Version uint64 `json:"version"`
	Cached  bool   `json:"cached"`
}

type RouteRequest struct {
	From string `json:"from"`
	To   string `json:"to"`
}

type RouteResponse struct {
	Found    bool     `json:"found"`
	Path     []string `json:"path,omitempty"`
	Names    []string `json:"names,omitempty"`
	Distance int      `json:"distance"`
}

// Inventory operations accepted by AdjustInventory.
const (
	OpAdd     = "add"
	OpRemove  = "remove"
	OpReserve = "reserve"
)

type AdjustInventoryRequest struct {
	BloodType domain.BloodType `json:"blood_type"`
	Op        string           `json:"op"`
	Units     int              `json:"units"`
}

type InventoryEntryResponse struct {
	Entry domain.InventoryEntry `json:"entry"`
}

type GetInventoryRequest struct{}

type GetInventoryResponse struct {
	Entries []domain.InventoryEntry `json:"entries"`
}

type RegisterDonorRequest struct {
	Name       string           `json:"name"`
	BloodType  domain.BloodType `json:"blood_type"`
	LocationID string           `json:"location_id"`
	Phone      string           `json:"phone,omitempty"`
	Email      string           `json:"email,omitempty"`
	// Available defaults to true when omitted.
	Available *bool `json:"available,omitempty"`
}

type DonorRef struct {
	DonorID string `json:"donor_id"`
}

type SetDonorAvailabilityRequest struct {
	DonorID   string `json:"donor_id"`
	Available bool   `json:"available"`
}

type DonorResponse struct {
	Donor domain.Donor `json:"donor"`
}

type Empty struct{}

type ListDonorsRequest struct {
	BloodType     domain.BloodType `json:"blood_type,omitempty"`
	LocationID    string           `json:"location_id,omitempty"`
	AvailableOnly bool             `json:"available_only,omitempty"`
}

type ListDonorsResponse struct {
	Donors []domain.Donor `json:"donors"`
}

type ListDonationsRequest struct {
	// Limit defaults to 50.
	Limit int `json:"limit,omitempty"`
}

type ListDonationsResponse struct {
	Donations []domain.Donation `json:"donations"`
}

// Transition is one recorded status change of a request.
type Transition struct {
	Event      string                   `json:"event"`
	From       domain.RequestStatus     `json:"from,omitempty"`
	To         domain.RequestStatus     `json:"to"`
	Source     domain.FulfillmentSource `json:"source,omitempty"`
	DonorID    string                   `json:"donor_id,omitempty"`
	Distance   int                      `json:"distance,omitempty"`
	OccurredAt time.Time                `json:"occurred_at"`
}

type ListTransitionsResponse struct {
	Transitions []Transition `json:"transitions"`
}

type ExportWorkbookRequest struct{}

// ExportWorkbookResponse carries an .xlsx file; JSON encodes it as base64.
type ExportWorkbookResponse struct {
	Filename string `json:"filename"`
	Content  []byte `json:"content"`
}
