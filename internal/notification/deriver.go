// Package notification derives a user's notification list from the catalog
// and their durable registrations, and keeps per-user read state until the
// next regeneration.
package notification

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/Shivanand-hulikatti/campus-connect/internal/durable"
	"github.com/Shivanand-hulikatti/campus-connect/internal/logger"
	"github.com/Shivanand-hulikatti/campus-connect/internal/metrics"
	"github.com/Shivanand-hulikatti/campus-connect/internal/model"
)

// ReminderWindow is how far ahead an event triggers a reminder.
const ReminderWindow = 3 * 24 * time.Hour

// WelcomeID is the id of the system welcome notification.
const WelcomeID = "welcome"

const dateLayout = "January 2, 2006"

// Source supplies catalog events and the catalog version.
type Source interface {
	Events() []model.Event
	Version() uint64
}

// Deriver computes notification lists.
type Deriver struct {
	src     Source
	store   durable.Store
	log     *logger.Logger
	metrics *metrics.Metrics
	now     func() time.Time
	loc     *time.Location
}

// Option configures a Deriver.
type Option func(*Deriver)

func WithClock(now func() time.Time) Option { return func(d *Deriver) { d.now = now } }

// WithLocation sets the zone used to print event dates in messages.
func WithLocation(loc *time.Location) Option { return func(d *Deriver) { d.loc = loc } }

func WithLogger(l *logger.Logger) Option { return func(d *Deriver) { d.log = l } }

func WithMetrics(m *metrics.Metrics) Option { return func(d *Deriver) { d.metrics = m } }

// NewDeriver constructs a Deriver.
func NewDeriver(src Source, store durable.Store, opts ...Option) *Deriver {
	d := &Deriver{
		src:   src,
		store: store,
		log:   logger.Nop(),
		now:   time.Now,
		loc:   time.Local,
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Derive returns userID's notifications: the welcome message, one
// confirmation per registered event still in the catalog, then one reminder
// per event starting within ReminderWindow. All are unread. An empty userID
// yields an empty list.
//
// A durable store failure is logged and only the confirmations are
// dropped; Derive never fails.
func (d *Deriver) Derive(ctx context.Context, userID string) []model.Notification {
	if userID == "" {
		return []model.Notification{}
	}

	now := d.now()
	events := d.src.Events()

	out := []model.Notification{welcome(now)}

	confirmations, err := d.confirmations(ctx, userID, events, now)
	if err != nil {
		d.log.WithContext(ctx).Warn("registrations unavailable, deriving notifications without confirmations",
			zap.String("user_id", userID),
			zap.Error(err),
		)
	}
	d.metrics.NotificationsDerived(err != nil)
	out = append(out, confirmations...)

	return append(out, d.reminders(events, now)...)
}

func welcome(now time.Time) model.Notification {
	return model.Notification{
		ID:      WelcomeID,
		Title:   "Welcome to CampusConnect",
		Message: "Thanks for joining our platform. Start exploring campus events!",
		Date:    now,
		Type:    model.NotificationSystem,
	}
}

// reminders covers events with now < date <= now+ReminderWindow, in catalog
// order.
func (d *Deriver) reminders(events []model.Event, now time.Time) []model.Notification {
	horizon := now.Add(ReminderWindow)

	var out []model.Notification
	for _, e := range events {
		if !e.Date.After(now) || e.Date.After(horizon) {
			continue
		}
		out = append(out, model.Notification{
			ID:      ReminderID(e.ID),
			Title:   "Event Reminder",
			Message: fmt.Sprintf("%s is happening soon on %s", e.Title, d.formatDate(e.Date)),
			Date:    now,
			EventID: e.ID,
			Type:    model.NotificationReminder,
		})
	}
	return out
}

// confirmations covers catalog events the user holds a durable registration
// for, in catalog order. Registrations for events no longer in the catalog
// are skipped.
func (d *Deriver) confirmations(ctx context.Context, userID string, events []model.Event, now time.Time) ([]model.Notification, error) {
	recs, err := d.store.ListRegistrationsForUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	registered := make(map[string]struct{}, len(recs))
	for _, r := range recs {
		registered[r.EventID] = struct{}{}
	}

	var out []model.Notification
	for _, e := range events {
		if _, ok := registered[e.ID]; !ok {
			continue
		}
		out = append(out, model.Notification{
			ID:      ConfirmationID(e.ID),
			Title:   "Registration Confirmation",
			Message: fmt.Sprintf("You are registered for %s on %s", e.Title, d.formatDate(e.Date)),
			Date:    now,
			EventID: e.ID,
			Type:    model.NotificationEvent,
		})
	}
	return out, nil
}

func (d *Deriver) formatDate(t time.Time) string {
	return t.In(d.loc).Format(dateLayout)
}

// ReminderID is the notification id of eventID's reminder.
func ReminderID(eventID string) string { return "event-reminder-" + eventID }

// ConfirmationID is the notification id of eventID's registration
// confirmation.
func ConfirmationID(eventID string) string { return "registration-" + eventID }
