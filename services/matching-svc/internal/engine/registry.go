package engine

import (
	"strings"

	"bloodlink/pkg/apperror"
	"bloodlink/pkg/domain"
)

// NewDonor is the registration payload.
type NewDonor struct {
	Name       string
	BloodType  domain.BloodType
	LocationID string
	Phone      string
	Email      string
	Available  bool
}

// RegisterDonor adds a donor with a fresh id.
func (e *Engine) RegisterDonor(in NewDonor) (domain.Donor, error) {
	verrs := apperror.NewValidationErrors()
	if strings.TrimSpace(in.Name) == "" {
		verrs.AddErrorWithField(apperror.CodeInvalidArgument, "name is required", "name")
	}
	if !in.BloodType.Valid() {
		verrs.AddErrorWithField(apperror.CodeUnknownBloodType, "blood type is required", "blood_type")
	}
	if !e.router.Graph().Has(in.LocationID) {
		verrs.AddErrorWithField(apperror.CodeUnknownLocation, "unknown location "+quote(in.LocationID), "location_id")
	}
	if err := verrs.Err(); err != nil {
		return domain.Donor{}, err
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	donor := domain.Donor{
		ID:         e.opts.NewID(),
		Name:       strings.TrimSpace(in.Name),
		BloodType:  in.BloodType,
		LocationID: in.LocationID,
		Available:  in.Available,
		Phone:      strings.TrimSpace(in.Phone),
		Email:      strings.TrimSpace(in.Email),
	}
	e.store.addDonor(donor)
	e.bump()
	return donor, nil
}

// RemoveDonor deletes a donor from the registry. Requests already matched to
// the donor keep their snapshot.
func (e *Engine) RemoveDonor(id string) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if !e.store.removeDonor(id) {
		return apperror.Newf(apperror.CodeNotFound, "donor %s not found", quote(id)).WithField("donor_id")
	}
	e.bump()
	return nil
}

// SetDonorAvailability flips the availability flag from the registry side.
func (e *Engine) SetDonorAvailability(id string, available bool) (domain.Donor, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	donor, ok := e.store.donor(id)
	if !ok {
		return domain.Donor{}, apperror.Newf(apperror.CodeNotFound, "donor %s not found", quote(id)).WithField("donor_id")
	}
	if donor.Available != available {
		donor.Available = available
		e.bump()
	}
	return *donor, nil
}

// Donor returns a copy of one donor.
func (e *Engine) Donor(id string) (domain.Donor, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	donor, ok := e.store.donor(id)
	if !ok {
		return domain.Donor{}, apperror.Newf(apperror.CodeNotFound, "donor %s not found", quote(id)).WithField("donor_id")
	}
	return *donor, nil
}

// Donors returns the registry in registration order.
func (e *Engine) Donors() []domain.Donor {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.store.donorSnapshot()
}
