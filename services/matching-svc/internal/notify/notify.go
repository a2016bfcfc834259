// Package notify tells donors that they were picked and thanks them once the
// donation is confirmed.
package notify

import (
	"context"
	"fmt"
	"strings"
	"time"

	"bloodlink/pkg/domain"
	"bloodlink/pkg/logger"
)

type Kind string

const (
	KindMatch    Kind = "match"
	KindThankYou Kind = "thank_you"
)

// Alert is what a donor receives.
type Alert struct {
	Kind       Kind             `json:"kind"`
	RequestID  string           `json:"request_id"`
	DonorID    string           `json:"donor_id"`
	DonorName  string           `json:"donor_name"`
	Phone      string           `json:"phone,omitempty"`
	Email      string           `json:"email,omitempty"`
	BloodType  domain.BloodType `json:"blood_type"`
	Units      int              `json:"units"`
	Hospital   string           `json:"hospital,omitempty"`
	LocationID string           `json:"location_id"`
	Distance   int              `json:"distance,omitempty"`
	Route      []string         `json:"route,omitempty"`
	Message    string           `json:"message"`
	At         time.Time        `json:"at"`
}

type Notifier interface {
	// Channel names the delivery channel for logs and metrics.
	Channel() string
	Notify(ctx context.Context, alert Alert) error
}

// LogNotifier writes alerts to the service log. Used in development and
// whenever no external channel is configured.
type LogNotifier struct{}

func (LogNotifier) Channel() string { return "log" }

func (LogNotifier) Notify(ctx context.Context, a Alert) error {
	logger.WithContext(ctx).Info("Donor alert",
		"kind", string(a.Kind),
		"request_id", a.RequestID,
		"donor_id", a.DonorID,
		"donor_name", a.DonorName,
		"blood_type", a.BloodType.String(),
		"message", a.Message,
	)
	return nil
}

func matchMessage(a Alert, place string) string {
	where := place
	if a.Hospital != "" {
		where = a.Hospital + ", " + place
	}
	return fmt.Sprintf("%s, a patient at %s needs %d unit(s) of %s blood. You are %d km away.",
		a.DonorName, where, a.Units, a.BloodType, a.Distance)
}

func thankYouMessage(a Alert) string {
	return fmt.Sprintf("Thank you %s! Your %s donation for request %s has been recorded.",
		a.DonorName, a.BloodType, a.RequestID)
}

func routeText(names []string) string {
	return strings.Join(names, " -> ")
}
