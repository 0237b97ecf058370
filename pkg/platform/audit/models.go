// Package audit captures the domain actions the ledger alone cannot explain:
// who acted, what was decided, and why. Events are emitted from services and
// drained by a background worker into a store.
package audit

import "time"

// EventCategory classifies audit events by their primary purpose.
type EventCategory string

const (
	// CategoryCompliance covers events with regulatory significance:
	// donations entering the supply and requests leaving it.
	CategoryCompliance EventCategory = "compliance"

	// CategoryOperations covers events useful for debugging and
	// operational visibility, such as rejected or ineligible attempts.
	CategoryOperations EventCategory = "operations"
)

// Event is emitted from domain logic to capture key actions. Keep it
// transport-agnostic so stores and sinks can fan out.
type Event struct {
	Category   EventCategory
	Timestamp  time.Time
	ActorID    string
	Action     Action
	BloodType  string
	QuantityML int
	Status     string
	RequestID  string
}

// Action names the domain operations worth auditing.
type Action string

const (
	ActionDonationRecorded  Action = "donation_recorded"
	ActionDonationDeferred  Action = "donation_deferred"
	ActionRequestFulfilled  Action = "request_fulfilled"
	ActionRequestPending    Action = "request_pending"
	ActionRequestDeferred   Action = "request_deferred"
)
