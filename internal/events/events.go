// Package events announces domain changes to interested subscribers.
package events

import (
	"context"
	"time"

	"github.com/Shivanand-hulikatti/campus-connect/internal/model"
)

// Event topic constants. Publishers prefix them with the configured
// subject prefix.
const (
	TopicRegistrationCreated = "registration.created"
	TopicEventCreated        = "catalog.event.created"
	TopicEventUpdated        = "catalog.event.updated"
	TopicEventDeleted        = "catalog.event.deleted"
	TopicAnnouncementPosted  = "catalog.announcement.posted"
)

// Event types

type RegistrationCreated struct {
	RegistrationID string    `json:"registration_id"`
	EventID        string    `json:"event_id"`
	UserID         string    `json:"user_id"`
	RegisteredAt   time.Time `json:"registered_at"`
	Attendees      int       `json:"current_attendees"`
}

type EventCreated struct {
	Event model.Event `json:"event"`
}

type EventUpdated struct {
	Event model.Event `json:"event"`
}

type EventDeleted struct {
	EventID string `json:"event_id"`
}

type AnnouncementPosted struct {
	Announcement model.Announcement `json:"announcement"`
}

// Publisher is the interface for emitting events.
type Publisher interface {
	Publish(ctx context.Context, topic string, event any) error
	Close() error
}
