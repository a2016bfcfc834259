package bloodlinkv1

import (
	"strings"

	"bloodlink/pkg/apperror"
)

// Validate methods check message shape only. Lookups against the location
// graph and the registry happen in the service.

func blank(s string) bool { return strings.TrimSpace(s) == "" }

func (r *RequestRef) Validate() error {
	if blank(r.RequestID) {
		return apperror.NewWithField(apperror.CodeInvalidArgument, "request_id is required", "request_id")
	}
	return nil
}

func (r *CreateRequestRequest) Validate() error {
	verrs := apperror.NewValidationErrors()
	if !r.BloodType.Valid() {
		verrs.AddErrorWithField(apperror.CodeUnknownBloodType, "blood_type is required", "blood_type")
	}
	if r.Units <= 0 {
		verrs.AddErrorWithField(apperror.CodeInvalidQuantity, "units must be positive", "units")
	}
	if blank(r.LocationID) {
		verrs.AddErrorWithField(apperror.CodeInvalidArgument, "location_id is required", "location_id")
	}
	if !r.Priority.Valid() {
		verrs.AddErrorWithField(apperror.CodeInvalidArgument, "priority is required", "priority")
	}
	return verrs.Err()
}

func (r *ListRequestsRequest) Validate() error {
	if r.Status != 0 && !r.Status.Valid() {
		return apperror.NewWithField(apperror.CodeInvalidArgument, "unknown status", "status")
	}
	return nil
}

func (r *RankDonorsRequest) Validate() error {
	verrs := apperror.NewValidationErrors()
	if !r.BloodType.Valid() {
		verrs.AddErrorWithField(apperror.CodeUnknownBloodType, "blood_type is required", "blood_type")
	}
	if blank(r.LocationID) {
		verrs.AddErrorWithField(apperror.CodeInvalidArgument, "location_id is required", "location_id")
	}
	return verrs.Err()
}

func (r *RouteRequest) Validate() error {
	verrs := apperror.NewValidationErrors()
	if blank(r.From) {
		verrs.AddErrorWithField(apperror.CodeInvalidArgument, "from is required", "from")
	}
	if blank(r.To) {
		verrs.AddErrorWithField(apperror.CodeInvalidArgument, "to is required", "to")
	}
	return verrs.Err()
}

func (r *AdjustInventoryRequest) Validate() error {
	verrs := apperror.NewValidationErrors()
	if !r.BloodType.Valid() {
		verrs.AddErrorWithField(apperror.CodeUnknownBloodType, "blood_type is required", "blood_type")
	}
	switch r.Op {
	case OpAdd, OpRemove:
		if r.Units < 0 {
			verrs.AddErrorWithField(apperror.CodeInvalidQuantity, "units must not be negative", "units")
		}
	case OpReserve:
	default:
		verrs.AddErrorWithField(apperror.CodeInvalidArgument, "op must be one of add, remove, reserve", "op")
	}
	return verrs.Err()
}

func (r *RegisterDonorRequest) Validate() error {
	verrs := apperror.NewValidationErrors()
	if blank(r.Name) {
		verrs.AddErrorWithField(apperror.CodeInvalidArgument, "name is required", "name")
	}
	if !r.BloodType.Valid() {
		verrs.AddErrorWithField(apperror.CodeUnknownBloodType, "blood_type is required", "blood_type")
	}
	if blank(r.LocationID) {
		verrs.AddErrorWithField(apperror.CodeInvalidArgument, "location_id is required", "location_id")
	}
	return verrs.Err()
}

func (r *DonorRef) Validate() error {
	if blank(r.DonorID) {
		return apperror.NewWithField(apperror.CodeInvalidArgument, "donor_id is required", "donor_id")
	}
	return nil
}

func (r *SetDonorAvailabilityRequest) Validate() error {
	if blank(r.DonorID) {
		return apperror.NewWithField(apperror.CodeInvalidArgument, "donor_id is required", "donor_id")
	}
	return nil
}

func (r *ListDonorsRequest) Validate() error {
	if r.BloodType != 0 && !r.BloodType.Valid() {
		return apperror.NewWithField(apperror.CodeUnknownBloodType, "unknown blood type", "blood_type")
	}
	return nil
}

func (r *ListDonationsRequest) Validate() error {
	if r.Limit < 0 {
		return apperror.NewWithField(apperror.CodeInvalidArgument, "limit must not be negative", "limit")
	}
	return nil
}
