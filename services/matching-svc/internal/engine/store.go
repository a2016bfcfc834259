package engine

import (
	"sort"

	"bloodlink/pkg/apperror"
	"bloodlink/pkg/domain"
)

// Store is the in-memory snapshot the engine decides against: the donor
// registry, the request table and the bank inventory. It is not safe for
// concurrent use; the Engine serializes every access.
type Store struct {
	donors     []*domain.Donor
	donorIndex map[string]int
	requests   map[string]*domain.BloodRequest
	inventory  [domain.ONegative + 1]domain.InventoryEntry
}

// NewStore validates and loads initial data. Every blood type gets an
// inventory entry; types missing from inventory start empty.
func NewStore(donors []domain.Donor, inventory []domain.InventoryEntry) (*Store, error) {
	s := &Store{
		donorIndex: make(map[string]int, len(donors)),
		requests:   make(map[string]*domain.BloodRequest),
	}
	for _, bt := range domain.AllBloodTypes {
		s.inventory[bt] = domain.InventoryEntry{BloodType: bt}
	}

	verrs := apperror.NewValidationErrors()
	for _, d := range donors {
		if d.ID == "" {
			verrs.AddErrorWithField(apperror.CodeInvalidArgument, "donor id is empty", "donor")
			continue
		}
		if !d.BloodType.Valid() {
			verrs.AddErrorWithField(apperror.CodeUnknownBloodType, "donor has no valid blood type", d.ID)
			continue
		}
		if _, dup := s.donorIndex[d.ID]; dup {
			verrs.AddErrorWithField(apperror.CodeConflict, "duplicate donor", d.ID)
			continue
		}
		s.addDonor(d)
	}

	for _, entry := range inventory {
		if !entry.BloodType.Valid() {
			verrs.AddErrorWithField(apperror.CodeUnknownBloodType, "inventory entry has no valid blood type", "inventory")
			continue
		}
		if entry.Total < 0 || entry.Reserved < 0 {
			verrs.AddErrorWithField(apperror.CodeInvalidQuantity, "inventory units must not be negative", entry.BloodType.String())
			continue
		}
		e := &s.inventory[entry.BloodType]
		e.Total = entry.Total
		e.SetReserved(entry.Reserved)
	}

	if err := verrs.Err(); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *Store) addDonor(d domain.Donor) {
	donor := d
	s.donorIndex[d.ID] = len(s.donors)
	s.donors = append(s.donors, &donor)
}

func (s *Store) donor(id string) (*domain.Donor, bool) {
	idx, ok := s.donorIndex[id]
	if !ok {
		return nil, false
	}
	return s.donors[idx], true
}

func (s *Store) removeDonor(id string) bool {
	idx, ok := s.donorIndex[id]
	if !ok {
		return false
	}
	s.donors = append(s.donors[:idx], s.donors[idx+1:]...)
	delete(s.donorIndex, id)
	for i := idx; i < len(s.donors); i++ {
		s.donorIndex[s.donors[i].ID] = i
	}
	return true
}

// donorSnapshot copies the registry in registration order.
func (s *Store) donorSnapshot() []domain.Donor {
	out := make([]domain.Donor, len(s.donors))
	for i, d := range s.donors {
		out[i] = *d
	}
	return out
}

func (s *Store) request(id string) (*domain.BloodRequest, bool) {
	r, ok := s.requests[id]
	return r, ok
}

func (s *Store) putRequest(r *domain.BloodRequest) {
	s.requests[r.ID] = r
}

// matchedTo reports whether a Matched request holds the donor.
func (s *Store) matchedTo(donorID string) bool {
	for _, r := range s.requests {
		if r.Status == domain.StatusMatched && r.MatchedDonor != nil && r.MatchedDonor.ID == donorID {
			return true
		}
	}
	return false
}

// requestSnapshot returns copies ordered by creation time, then id.
func (s *Store) requestSnapshot(status domain.RequestStatus) []*domain.BloodRequest {
	out := make([]*domain.BloodRequest, 0, len(s.requests))
	for _, r := range s.requests {
		if status != domain.StatusUnspecified && r.Status != status {
			continue
		}
		out = append(out, r.Clone())
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.Before(out[j].CreatedAt)
		}
		return out[i].ID < out[j].ID
	})
	return out
}

func (s *Store) entry(bt domain.BloodType) *domain.InventoryEntry {
	return &s.inventory[bt]
}

func (s *Store) inventorySnapshot() []domain.InventoryEntry {
	out := make([]domain.InventoryEntry, 0, len(domain.AllBloodTypes))
	for _, bt := range domain.AllBloodTypes {
		out = append(out, s.inventory[bt])
	}
	return out
}
