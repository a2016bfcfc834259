// Package events carries committed engine decisions to the collaborators
// that persist them and notify people about them.
package events

import (
	"context"
	"time"

	"bloodlink/pkg/domain"
)

// Type identifies what happened to a request.
type Type string

const (
	RequestCreated   Type = "request.created"
	RequestMatched   Type = "request.matched"
	RequestFulfilled Type = "request.fulfilled"
	RequestDeferred  Type = "request.deferred"
	MatchConfirmed   Type = "request.confirmed"
	RequestCancelled Type = "request.cancelled"
	RequestCompleted Type = "request.completed"
)

// Event is a snapshot taken at commit time. Handlers must treat it as
// read-only; it is shared by every handler.
type Event struct {
	Type       Type                 `json:"type"`
	Request    *domain.BloodRequest `json:"request"`
	From       domain.RequestStatus `json:"from,omitempty"`
	Donor      *domain.Donor        `json:"donor,omitempty"`
	Donation   *domain.Donation     `json:"donation,omitempty"`
	OccurredAt time.Time            `json:"occurred_at"`
}

// Key routes events of one request to the same worker so that handlers see
// them in commit order.
func (e Event) Key() string {
	if e.Request == nil {
		return ""
	}
	return e.Request.ID
}

// Handler consumes events. Errors are logged by the dispatcher.
type Handler interface {
	Handle(ctx context.Context, evt Event) error
}

// HandlerFunc adapts a function to Handler.
type HandlerFunc func(ctx context.Context, evt Event) error

func (f HandlerFunc) Handle(ctx context.Context, evt Event) error {
	return f(ctx, evt)
}
