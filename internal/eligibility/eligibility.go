// Package eligibility decides whether a user may register for an event.
package eligibility

import (
	"time"

	"github.com/Shivanand-hulikatti/campus-connect/internal/model"
)

// Outcome is the result of an eligibility check.
type Outcome int

const (
	Eligible Outcome = iota
	NotAuthenticated
	AlreadyRegistered
	EventFull
	DeadlinePassed
)

func (o Outcome) String() string {
	switch o {
	case Eligible:
		return "Eligible"
	case NotAuthenticated:
		return "NotAuthenticated"
	case AlreadyRegistered:
		return "AlreadyRegistered"
	case EventFull:
		return "EventFull"
	case DeadlinePassed:
		return "DeadlinePassed"
	}
	return "Unknown"
}

// Code is the stable machine-readable form used in API responses.
func (o Outcome) Code() string {
	switch o {
	case Eligible:
		return "eligible"
	case NotAuthenticated:
		return "not_authenticated"
	case AlreadyRegistered:
		return "already_registered"
	case EventFull:
		return "event_full"
	case DeadlinePassed:
		return "deadline_passed"
	}
	return "unknown"
}

// Message is the user-facing title and description of an outcome.
type Message struct {
	Title       string `json:"title"`
	Description string `json:"description"`
}

// Message returns the text shown to the user for o.
func (o Outcome) Message() Message {
	switch o {
	case Eligible:
		return Message{"Registration open", "You can register for this event."}
	case NotAuthenticated:
		return Message{"Authentication required", "Please log in to register for this event."}
	case AlreadyRegistered:
		return Message{"Already registered", "You have already registered for this event."}
	case EventFull:
		return Message{"Event is full", "Sorry, this event has reached its maximum capacity."}
	case DeadlinePassed:
		return Message{"Registration closed", "The registration deadline for this event has passed."}
	}
	return Message{}
}

// Evaluate checks, in order, authentication, duplicate registration,
// capacity and deadline, and reports only the first condition that fails.
// An empty userID means no user is signed in. registrations may hold any
// set of registrations; only those matching (userID, event.ID) count.
func Evaluate(event model.Event, userID string, registrations []model.Registration, now time.Time) Outcome {
	if userID == "" {
		return NotAuthenticated
	}
	for _, r := range registrations {
		if r.UserID == userID && r.EventID == event.ID {
			return AlreadyRegistered
		}
	}
	if event.IsFull() {
		return EventFull
	}
	if event.DeadlinePassed(now) {
		return DeadlinePassed
	}
	return Eligible
}
