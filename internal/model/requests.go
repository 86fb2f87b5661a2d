package model

import (
	"bytes"
	"encoding/json"
)

// ─── Request bodies ───────────────────────────────────────────────────────────

// CreateEventRequest is the JSON body for POST /admin/events. Dates are
// RFC 3339 timestamps or YYYY-MM-DD calendar dates.
type CreateEventRequest struct {
	Title                string `json:"title"`
	Description          string `json:"description"`
	Date                 string `json:"date"`
	EndDate              string `json:"endDate,omitempty"`
	Location             string `json:"location"`
	Category             string `json:"category"`
	Organizer            string `json:"organizer"`
	Image                string `json:"image,omitempty"`
	RegistrationDeadline string `json:"registrationDeadline,omitempty"`
	MaxAttendees         *int   `json:"maxAttendees,omitempty"`
	IsFeatured           bool   `json:"isFeatured"`
}

// UpdateEventRequest is the JSON body for PATCH /admin/events/{id}. Absent
// fields are left unchanged. endDate, registrationDeadline and maxAttendees
// are cleared by null; the two dates are also cleared by "".
type UpdateEventRequest struct {
	Title                *string          `json:"title,omitempty"`
	Description          *string          `json:"description,omitempty"`
	Date                 *string          `json:"date,omitempty"`
	EndDate              Nullable[string] `json:"endDate"`
	Location             *string          `json:"location,omitempty"`
	Category             *string          `json:"category,omitempty"`
	Organizer            *string          `json:"organizer,omitempty"`
	Image                *string          `json:"image,omitempty"`
	RegistrationDeadline Nullable[string] `json:"registrationDeadline"`
	MaxAttendees         Nullable[int]    `json:"maxAttendees"`
	IsFeatured           *bool            `json:"isFeatured,omitempty"`
}

// Nullable tells an absent JSON field apart from an explicit null.
type Nullable[T any] struct {
	Set   bool // the field was present
	Valid bool // the field was present and not null
	Value T
}

// NullableOf returns a set, non-null Nullable holding v.
func NullableOf[T any](v T) Nullable[T] {
	return Nullable[T]{Set: true, Valid: true, Value: v}
}

// Null returns a set Nullable holding null.
func Null[T any]() Nullable[T] {
	return Nullable[T]{Set: true}
}

// IsNull reports whether the field was present as null.
func (n Nullable[T]) IsNull() bool { return n.Set && !n.Valid }

func (n *Nullable[T]) UnmarshalJSON(data []byte) error {
	n.Set = true
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		var zero T
		n.Valid, n.Value = false, zero
		return nil
	}
	if err := json.Unmarshal(data, &n.Value); err != nil {
		return err
	}
	n.Valid = true
	return nil
}

func (n Nullable[T]) MarshalJSON() ([]byte, error) {
	if !n.Valid {
		return []byte("null"), nil
	}
	return json.Marshal(n.Value)
}

// CreateAnnouncementRequest is the JSON body for POST /admin/announcements.
type CreateAnnouncementRequest struct {
	Title     string `json:"title"`
	Content   string `json:"content"`
	Author    string `json:"author"`
	Important bool   `json:"important"`
}

// ─── Responses ────────────────────────────────────────────────────────────────

// CategoryInfo pairs a category with its display label.
type CategoryInfo struct {
	Value Category `json:"value"`
	Label string   `json:"label"`
}

// EligibilityResponse tells the caller whether registration is offered.
type EligibilityResponse struct {
	EventID     string `json:"eventId"`
	Outcome     string `json:"outcome"`
	Eligible    bool   `json:"eligible"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Remaining   *int   `json:"remaining,omitempty"`
}

// MyRegistrations splits a user's registrations by event date.
type MyRegistrations struct {
	Upcoming []RegistrationWithEvent `json:"upcoming"`
	Past     []RegistrationWithEvent `json:"past"`
}

// NotificationList is a user's notifications with the unread total.
type NotificationList struct {
	Notifications []Notification `json:"notifications"`
	UnreadCount   int            `json:"unreadCount"`
}
