package domain

import (
	"fmt"
	"strings"
)

// BloodType группа крови с резус-фактором
type BloodType int

const (
	BloodTypeUnspecified BloodType = iota
	APositive
	ANegative
	BPositive
	BNegative
	ABPositive
	ABNegative
	OPositive
	ONegative
)

// AllBloodTypes перечисляет все группы в каноническом порядке
var AllBloodTypes = []BloodType{
	APositive, ANegative, BPositive, BNegative,
	ABPositive, ABNegative, OPositive, ONegative,
}

var bloodTypeNames = map[BloodType]string{
	APositive:  "A+",
	ANegative:  "A-",
	BPositive:  "B+",
	BNegative:  "B-",
	ABPositive: "AB+",
	ABNegative: "AB-",
	OPositive:  "O+",
	ONegative:  "O-",
}

// String возвращает запись вида "AB-"
func (b BloodType) String() string {
	if name, ok := bloodTypeNames[b]; ok {
		return name
	}
	return "unspecified"
}

// Valid проверяет, что значение входит в перечисление
func (b BloodType) Valid() bool {
	return b >= APositive && b <= ONegative
}

// ParseBloodType разбирает "A+", "ab-", " O+ " и т.п.
func ParseBloodType(s string) (BloodType, error) {
	normalized := strings.ToUpper(strings.TrimSpace(s))
	for bt, name := range bloodTypeNames {
		if name == normalized {
			return bt, nil
		}
	}
	return BloodTypeUnspecified, fmt.Errorf("unknown blood type %q", s)
}

func (b BloodType) MarshalText() ([]byte, error) {
	if b == BloodTypeUnspecified {
		return []byte{}, nil
	}
	if !b.Valid() {
		return nil, fmt.Errorf("invalid blood type %d", int(b))
	}
	return []byte(b.String()), nil
}

func (b *BloodType) UnmarshalText(text []byte) error {
	if len(text) == 0 {
		*b = BloodTypeUnspecified
		return nil
	}
	parsed, err := ParseBloodType(string(text))
	if err != nil {
		return err
	}
	*b = parsed
	return nil
}

// Priority срочность запроса
type Priority int

const (
	PriorityUnspecified Priority = iota
	PriorityEmergency
	PriorityUrgent
	PriorityScheduled
)

func (p Priority) String() string {
	switch p {
	case PriorityEmergency:
		return "Emergency"
	case PriorityUrgent:
		return "Urgent"
	case PriorityScheduled:
		return "Scheduled"
	default:
		return "unspecified"
	}
}

func (p Priority) Valid() bool {
	return p >= PriorityEmergency && p <= PriorityScheduled
}

// ParsePriority is case-insensitive.
func ParsePriority(s string) (Priority, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "emergency":
		return PriorityEmergency, nil
	case "urgent":
		return PriorityUrgent, nil
	case "scheduled":
		return PriorityScheduled, nil
	}
	return PriorityUnspecified, fmt.Errorf("unknown priority %q", s)
}

func (p Priority) MarshalText() ([]byte, error) {
	if p == PriorityUnspecified {
		return []byte{}, nil
	}
	if !p.Valid() {
		return nil, fmt.Errorf("invalid priority %d", int(p))
	}
	return []byte(p.String()), nil
}

func (p *Priority) UnmarshalText(text []byte) error {
	if len(text) == 0 {
		*p = PriorityUnspecified
		return nil
	}
	parsed, err := ParsePriority(string(text))
	if err != nil {
		return err
	}
	*p = parsed
	return nil
}

// RequestStatus состояние запроса крови
type RequestStatus int

const (
	StatusUnspecified RequestStatus = iota
	StatusPending
	StatusMatched
	StatusFulfilled
	StatusCancelled
)

func (s RequestStatus) String() string {
	switch s {
	case StatusPending:
		return "Pending"
	case StatusMatched:
		return "Matched"
	case StatusFulfilled:
		return "Fulfilled"
	case StatusCancelled:
		return "Cancelled"
	default:
		return "unspecified"
	}
}

func (s RequestStatus) Valid() bool {
	return s >= StatusPending && s <= StatusCancelled
}

// Terminal сообщает, что из состояния нет переходов
func (s RequestStatus) Terminal() bool {
	return s == StatusFulfilled || s == StatusCancelled
}

func ParseRequestStatus(s string) (RequestStatus, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "pending":
		return StatusPending, nil
	case "matched":
		return StatusMatched, nil
	case "fulfilled":
		return StatusFulfilled, nil
	case "cancelled", "canceled":
		return StatusCancelled, nil
	}
	return StatusUnspecified, fmt.Errorf("unknown request status %q", s)
}

func (s RequestStatus) MarshalText() ([]byte, error) {
	if s == StatusUnspecified {
		return []byte{}, nil
	}
	if !s.Valid() {
		return nil, fmt.Errorf("invalid request status %d", int(s))
	}
	return []byte(s.String()), nil
}

func (s *RequestStatus) UnmarshalText(text []byte) error {
	if len(text) == 0 {
		*s = StatusUnspecified
		return nil
	}
	parsed, err := ParseRequestStatus(string(text))
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}

// FulfillmentSource откуда пришла кровь
type FulfillmentSource int

const (
	SourceNone FulfillmentSource = iota
	SourceDonorMatch
	SourceBankInventory
)

func (f FulfillmentSource) String() string {
	switch f {
	case SourceDonorMatch:
		return "DonorMatch"
	case SourceBankInventory:
		return "BankInventory"
	default:
		return "none"
	}
}

func ParseFulfillmentSource(s string) (FulfillmentSource, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "none":
		return SourceNone, nil
	case "donormatch", "donor":
		return SourceDonorMatch, nil
	case "bankinventory", "bank":
		return SourceBankInventory, nil
	}
	return SourceNone, fmt.Errorf("unknown fulfillment source %q", s)
}

func (f FulfillmentSource) MarshalText() ([]byte, error) {
	if f == SourceNone {
		return []byte{}, nil
	}
	if f != SourceDonorMatch && f != SourceBankInventory {
		return nil, fmt.Errorf("invalid fulfillment source %d", int(f))
	}
	return []byte(f.String()), nil
}

func (f *FulfillmentSource) UnmarshalText(text []byte) error {
	parsed, err := ParseFulfillmentSource(string(text))
	if err != nil {
		return err
	}
	*f = parsed
	return nil
}
