package engine

import (
	"bloodlink/pkg/apperror"
	"bloodlink/pkg/domain"
)

// AdjustOp selects an administrative inventory operation.
type AdjustOp int

const (
	AdjustUnspecified AdjustOp = iota
	AdjustAdd
	AdjustRemove
	AdjustReserve
)

func (o AdjustOp) String() string {
	switch o {
	case AdjustAdd:
		return "add"
	case AdjustRemove:
		return "remove"
	case AdjustReserve:
		return "reserve"
	default:
		return "unspecified"
	}
}

// ParseAdjustOp accepts add, remove and reserve.
func ParseAdjustOp(s string) (AdjustOp, error) {
	switch s {
	case "add":
		return AdjustAdd, nil
	case "remove":
		return AdjustRemove, nil
	case "reserve":
		return AdjustReserve, nil
	}
	return AdjustUnspecified, apperror.Newf(apperror.CodeInvalidArgument, "unknown inventory operation %q", s).WithField("op")
}

// AdjustInventory applies op with quantity n to one blood type and returns
// the resulting entry.
//
// add and remove reject negative quantities, and add rejects quantities the
// total cannot hold. remove clamps the total at zero
// instead of failing when stock is short. reserve clamps to [0, total].
func (e *Engine) AdjustInventory(bt domain.BloodType, op AdjustOp, n int) (domain.InventoryEntry, error) {
	if !bt.Valid() {
		return domain.InventoryEntry{}, apperror.NewWithField(apperror.CodeUnknownBloodType, "unknown blood type", "blood_type")
	}
	if (op == AdjustAdd || op == AdjustRemove) && n < 0 {
		return domain.InventoryEntry{}, apperror.Newf(apperror.CodeInvalidQuantity, "%s quantity must not be negative, got %d", op, n).
			WithField("units")
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	entry := e.store.entry(bt)
	switch op {
	case AdjustAdd:
		if !entry.CanAdd(n) {
			return domain.InventoryEntry{}, apperror.Newf(apperror.CodeInvalidQuantity, "adding %d units to %d overflows the stock counter", n, entry.Total).
				WithField("units")
		}
		entry.AddUnits(n)
	case AdjustRemove:
		entry.RemoveUnits(n)
	case AdjustReserve:
		entry.SetReserved(n)
	default:
		return domain.InventoryEntry{}, apperror.NewWithField(apperror.CodeInvalidArgument, "unknown inventory operation", "op")
	}
	return *entry, nil
}

// AddUnits increases stock for bt.
func (e *Engine) AddUnits(bt domain.BloodType, n int) (domain.InventoryEntry, error) {
	return e.AdjustInventory(bt, AdjustAdd, n)
}

// RemoveUnits decreases stock for bt, never below zero.
func (e *Engine) RemoveUnits(bt domain.BloodType, n int) (domain.InventoryEntry, error) {
	return e.AdjustInventory(bt, AdjustRemove, n)
}

// SetReserved sets the emergency floor for bt.
func (e *Engine) SetReserved(bt domain.BloodType, n int) (domain.InventoryEntry, error) {
	return e.AdjustInventory(bt, AdjustReserve, n)
}

// Inventory returns every entry in canonical blood type order.
func (e *Engine) Inventory() []domain.InventoryEntry {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.store.inventorySnapshot()
}

// Snapshot is a consistent copy of the whole store.
type Snapshot struct {
	Donors    []domain.Donor
	Requests  []*domain.BloodRequest
	Inventory []domain.InventoryEntry
}

// Snapshot copies donors, requests and inventory under one lock.
func (e *Engine) Snapshot() Snapshot {
	e.mu.Lock()
	defer e.mu.Unlock()
	return Snapshot{
		Donors:    e.store.donorSnapshot(),
		Requests:  e.store.requestSnapshot(domain.StatusUnspecified),
		Inventory: e.store.inventorySnapshot(),
	}
}
