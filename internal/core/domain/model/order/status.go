package order

import (
	"fmt"
	"slices"

	"orderflow/internal/pkg/errs"
)

// Status represents the lifecycle state of an order.
//
// State transitions:
//
//	testing ──promote──> pending
//	queue ──finalize──> pending
//	pending ──confirm──> confirmed
//	pending ──schedule──> scheduled ──confirm──> confirmed
//	pending ──hold──> hold ──unhold──> holdFromStatus
//	pending ──sync failure──> sync_error ──resync──> pending
//	any ──cancel──> cancelled ──uncancel──> cancelledFromStatus
//
// The set is closed: every status read from storage or a request goes through
// ParseStatus or Validate, and every move goes through CanTransitionTo.
type Status int

const (
	// Unknown represents an invalid or undefined status.
	// This value (0) helps catch uninitialized Status values.
	Unknown Status = iota

	// Testing orders are placed in test mode. They never reach the fulfillment
	// system until promoted.
	Testing

	// Queue orders are inside the post-purchase upsell window.
	Queue

	// Pending orders are finalized and waiting for operator confirmation.
	Pending

	// Scheduled orders are confirmed automatically on their scheduled date.
	Scheduled

	// Confirmed orders are ready to ship.
	Confirmed

	// Hold orders are paused locally and in the fulfillment system.
	Hold

	// Cancelled orders are archived. The cancellation can be undone once.
	Cancelled

	// SyncError orders failed to be created in the fulfillment system.
	SyncError
)

func getStatusStrings() map[Status]string {
	return map[Status]string{
		Unknown:   "unknown",
		Testing:   "testing",
		Queue:     "queue",
		Pending:   "pending",
		Scheduled: "scheduled",
		Confirmed: "confirmed",
		Hold:      "hold",
		Cancelled: "cancelled",
		SyncError: "sync_error",
	}
}

// allowedTransitions is the complete transition table. A move that is not listed here
// is rejected with an InvalidTransitionError, whatever operation requested it.
//
//nolint:exhaustive // Unknown has no outgoing transitions
var allowedTransitions = map[Status][]Status{
	Testing:   {Pending, Cancelled},
	Queue:     {Pending, Cancelled},
	Pending:   {Pending, Scheduled, Confirmed, Hold, Cancelled, SyncError},
	Scheduled: {Confirmed, Cancelled},
	Confirmed: {Cancelled},
	Hold:      {Pending, Cancelled},
	Cancelled: {Testing, Queue, Pending, Scheduled, Confirmed, Hold, SyncError},
	SyncError: {Pending, Cancelled},
}

// ParseStatus maps the persisted or wire representation back to a Status.
func ParseStatus(s string) (Status, error) {
	for status, str := range getStatusStrings() {
		if status != Unknown && str == s {
			return status, nil
		}
	}
	return Unknown, errs.NewValueIsInvalidErrorWithCause("status is invalid", fmt.Errorf("%q is not a valid status", s))
}

// Validate checks if the Status value is one of the known statuses.
// Unknown (0) and any other values are invalid.
func (s Status) Validate() error {
	if _, ok := allowedTransitions[s]; !ok {
		return errs.NewValueIsInvalidErrorWithCause("status is invalid", fmt.Errorf("%d is not a valid status", s))
	}
	return nil
}

// String returns the persisted name of the status, "unknown" for invalid values.
func (s Status) String() string {
	if str, ok := getStatusStrings()[s]; ok {
		return str
	}
	return "unknown"
}

// CanTransitionTo reports whether the transition table allows moving from s to target.
func (s Status) CanTransitionTo(target Status) bool {
	return slices.Contains(allowedTransitions[s], target)
}

// AllStatuses returns every valid status in declaration order.
func AllStatuses() []Status {
	return []Status{Testing, Queue, Pending, Scheduled, Confirmed, Hold, Cancelled, SyncError}
}

func statusNames(statuses []Status) []string {
	names := make([]string, 0, len(statuses))
	for _, s := range statuses {
		names = append(names, s.String())
	}
	return names
}
