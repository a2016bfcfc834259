package domain

import "math"

// InventoryEntry остаток банка крови по одной группе.
// Инвариант: 0 <= Reserved <= Total.
type InventoryEntry struct {
	BloodType BloodType `json:"blood_type"`
	Total     int       `json:"total"`
	Reserved  int       `json:"reserved"`
}

// Available единицы, которые можно выдать обычному запросу
func (e InventoryEntry) Available() int {
	return e.Total - e.Reserved
}

// CanAdd сообщает, поместятся ли n единиц без переполнения int
func (e InventoryEntry) CanAdd(n int) bool {
	return n <= math.MaxInt-e.Total
}

// AddUnits увеличивает запас; при переполнении остаток насыщается
// на math.MaxInt и никогда не уменьшается
func (e *InventoryEntry) AddUnits(n int) {
	if n < 0 {
		return
	}
	if !e.CanAdd(n) {
		e.Total = math.MaxInt
	} else {
		e.Total += n
	}
	e.normalize()
}

// RemoveUnits списывает n единиц. Остаток не уходит ниже нуля,
// резерв при необходимости урезается до остатка.
func (e *InventoryEntry) RemoveUnits(n int) {
	e.Total -= n
	e.normalize()
}

// SetReserved устанавливает резерв в пределах [0, Total]
func (e *InventoryEntry) SetReserved(n int) {
	e.Reserved = n
	e.normalize()
}

// Draw выдаёт units единиц, если хватает доступного запаса.
// С includeReserve резерв тоже считается доступным.
func (e *InventoryEntry) Draw(units int, includeReserve bool) bool {
	available := e.Available()
	if includeReserve {
		available = e.Total
	}
	if units <= 0 || available < units {
		return false
	}
	e.Total -= units
	e.normalize()
	return true
}

func (e *InventoryEntry) normalize() {
	if e.Total < 0 {
		e.Total = 0
	}
	if e.Reserved < 0 {
		e.Reserved = 0
	}
	if e.Reserved > e.Total {
		e.Reserved = e.Total
	}
}
