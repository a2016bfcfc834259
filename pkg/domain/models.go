package domain

import (
	"math"
	"time"
)

// Unreachable tentative distance for nodes the router has not reached.
const Unreachable = math.MaxInt

// Location район города. Координаты нужны только для отображения.
type Location struct {
	ID   string  `json:"id"`
	Name string  `json:"name"`
	Lat  float64 `json:"lat"`
	Lng  float64 `json:"lng"`
}

// RoadEdge неориентированная дорога между двумя районами, км
type RoadEdge struct {
	From     string `json:"from"`
	To       string `json:"to"`
	Distance int    `json:"distance"`
}

// Donor зарегистрированный донор
type Donor struct {
	ID         string    `json:"id"`
	Name       string    `json:"name"`
	BloodType  BloodType `json:"blood_type"`
	LocationID string    `json:"location_id"`
	Available  bool      `json:"available"`
	Phone      string    `json:"phone,omitempty"`
	Email      string    `json:"email,omitempty"`
}

// Requester контакт человека, оформившего запрос
type Requester struct {
	Name     string `json:"name,omitempty"`
	Phone    string `json:"phone,omitempty"`
	Relation string `json:"relation,omitempty"`
}

// BloodRequest запрос на переливание
type BloodRequest struct {
	ID          string            `json:"id"`
	PatientName string            `json:"patient_name,omitempty"`
	Hospital    string            `json:"hospital,omitempty"`
	BloodType   BloodType         `json:"blood_type"`
	Units       int               `json:"units"`
	LocationID  string            `json:"location_id"`
	Priority    Priority          `json:"priority"`
	Status      RequestStatus     `json:"status"`
	Source      FulfillmentSource `json:"source,omitempty"`
	// MatchedDonor snapshot at match time.
	MatchedDonor *Donor    `json:"matched_donor,omitempty"`
	Route        []string  `json:"route,omitempty"`
	Distance     int       `json:"distance,omitempty"`
	Requester    Requester `json:"requester"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// Clone создаёт глубокую копию запроса
func (r *BloodRequest) Clone() *BloodRequest {
	if r == nil {
		return nil
	}
	clone := *r
	if r.MatchedDonor != nil {
		donor := *r.MatchedDonor
		clone.MatchedDonor = &donor
	}
	if r.Route != nil {
		clone.Route = append([]string(nil), r.Route...)
	}
	return &clone
}

// Route путь между двумя районами. Нулевое значение означает "маршрута нет".
type Route struct {
	Path     []string `json:"path"`
	Distance int      `json:"distance"`
}

// NoRoute результат поиска, когда пути нет
var NoRoute = Route{}

// Found: путь содержит минимум две различные остановки
func (r Route) Found() bool {
	return len(r.Path) >= 2
}

// Candidate донор-кандидат с маршрутом от места запроса
type Candidate struct {
	Donor    Donor    `json:"donor"`
	Path     []string `json:"path"`
	Distance int      `json:"distance"`
}

// Donation подтверждённая сдача крови
type Donation struct {
	ID          string    `json:"id"`
	DonorID     string    `json:"donor_id"`
	DonorName   string    `json:"donor_name"`
	RequestID   string    `json:"request_id"`
	PatientName string    `json:"patient_name,omitempty"`
	Hospital    string    `json:"hospital,omitempty"`
	BloodType   BloodType `json:"blood_type"`
	Units       int       `json:"units"`
	DonatedAt   time.Time `json:"donated_at"`
}
