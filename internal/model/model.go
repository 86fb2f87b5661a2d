// Package model defines the core domain types for the campus events system.
package model

import "time"

// Event represents a campus event listed in the catalog.
type Event struct {
	ID                   string     `json:"id"`
	Title                string     `json:"title"`
	Description          string     `json:"description"`
	Date                 time.Time  `json:"date"`
	EndDate              *time.Time `json:"endDate,omitempty"`
	Location             string     `json:"location"`
	Category             Category   `json:"category"`
	Organizer            string     `json:"organizer"`
	Image                string     `json:"image,omitempty"`
	RegistrationDeadline *time.Time `json:"registrationDeadline,omitempty"`
	MaxAttendees         *int       `json:"maxAttendees,omitempty"`
	CurrentAttendees     int        `json:"currentAttendees"`
	IsFeatured           bool       `json:"isFeatured"`
}

// LastDay returns the instant whose calendar day ends the event: EndDate
// for multi-day events, Date otherwise.
func (e *Event) LastDay() time.Time {
	if e.EndDate != nil {
		return *e.EndDate
	}
	return e.Date
}

// HasCapacityLimit reports whether MaxAttendees is set.
func (e *Event) HasCapacityLimit() bool {
	return e.MaxAttendees != nil
}

// Remaining returns the number of available seats, or -1 when the event
// has no capacity limit.
func (e *Event) Remaining() int {
	if e.MaxAttendees == nil {
		return -1
	}
	return *e.MaxAttendees - e.CurrentAttendees
}

// IsFull returns true when a capacity limit is set and no seats remain.
func (e *Event) IsFull() bool {
	return e.MaxAttendees != nil && e.CurrentAttendees >= *e.MaxAttendees
}

// DeadlinePassed reports whether the registration deadline is set and lies
// strictly before now.
func (e *Event) DeadlinePassed(now time.Time) bool {
	return e.RegistrationDeadline != nil && e.RegistrationDeadline.Before(now)
}

// Clone returns a deep copy so callers never alias catalog state.
func (e Event) Clone() Event {
	if e.EndDate != nil {
		t := *e.EndDate
		e.EndDate = &t
	}
	if e.RegistrationDeadline != nil {
		t := *e.RegistrationDeadline
		e.RegistrationDeadline = &t
	}
	if e.MaxAttendees != nil {
		n := *e.MaxAttendees
		e.MaxAttendees = &n
	}
	return e
}

// EventInput carries the admin-supplied fields of a new event.
type EventInput struct {
	Title                string
	Description          string
	Date                 time.Time
	EndDate              *time.Time
	Location             string
	Category             Category
	Organizer            string
	Image                string
	RegistrationDeadline *time.Time
	MaxAttendees         *int
	IsFeatured           bool
}

// EventPatch carries a partial update; nil fields are left unchanged. The
// Clear flags unset the matching optional field and win over a value.
type EventPatch struct {
	Title                *string
	Description          *string
	Date                 *time.Time
	EndDate              *time.Time
	Location             *string
	Category             *Category
	Organizer            *string
	Image                *string
	RegistrationDeadline *time.Time
	MaxAttendees         *int
	IsFeatured           *bool

	ClearEndDate              bool
	ClearRegistrationDeadline bool
	ClearMaxAttendees         bool
}

// AttendeeInfo is the contact information captured at registration time.
type AttendeeInfo struct {
	Name       string `json:"name"`
	Email      string `json:"email"`
	StudentID  string `json:"studentId,omitempty"`
	Department string `json:"department,omitempty"`
	Notes      string `json:"notes,omitempty"`
}

// Registration represents a user's registration for an event.
type Registration struct {
	ID               string       `json:"id"`
	EventID          string       `json:"eventId"`
	UserID           string       `json:"userId"`
	RegistrationDate time.Time    `json:"registrationDate"`
	AttendeeInfo     AttendeeInfo `json:"attendeeInfo"`
}

// Announcement is a campus-wide notice shown newest-first.
type Announcement struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Content   string    `json:"content"`
	Date      time.Time `json:"date"`
	Author    string    `json:"author"`
	Important bool      `json:"important"`
}

// AnnouncementInput carries the admin-supplied fields of a new announcement.
type AnnouncementInput struct {
	Title     string
	Content   string
	Author    string
	Important bool
}

// NotificationType classifies derived notifications.
type NotificationType string

const (
	NotificationReminder NotificationType = "reminder"
	NotificationSystem   NotificationType = "system"
	NotificationEvent    NotificationType = "event"
)

// Notification is derived from the catalog and a user's registrations.
// It is never persisted.
type Notification struct {
	ID      string           `json:"id"`
	Title   string           `json:"title"`
	Message string           `json:"message"`
	Date    time.Time        `json:"date"`
	Read    bool             `json:"read"`
	EventID string           `json:"eventId,omitempty"`
	Type    NotificationType `json:"type"`
}

// EventRegistrationCount pairs an event with its durable registration count.
type EventRegistrationCount struct {
	Event
	RegistrationCount int `json:"registrationCount"`
}

// RegistrationWithEvent joins a registration with the event it references.
type RegistrationWithEvent struct {
	Registration Registration `json:"registration"`
	Event        Event        `json:"event"`
}

// ErrorResponse is a standard JSON error envelope.
type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code,omitempty"`
}
