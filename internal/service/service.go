// Package service implements business logic, validation, and orchestration
// between HTTP handlers and the catalog, query, eligibility, registration
// and notification components.
package service

import (
	"context"
	"errors"
	"slices"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/Shivanand-hulikatti/campus-connect/internal/apperror"
	"github.com/Shivanand-hulikatti/campus-connect/internal/catalog"
	"github.com/Shivanand-hulikatti/campus-connect/internal/durable"
	"github.com/Shivanand-hulikatti/campus-connect/internal/eligibility"
	"github.com/Shivanand-hulikatti/campus-connect/internal/events"
	"github.com/Shivanand-hulikatti/campus-connect/internal/logger"
	"github.com/Shivanand-hulikatti/campus-connect/internal/metrics"
	"github.com/Shivanand-hulikatti/campus-connect/internal/model"
	"github.com/Shivanand-hulikatti/campus-connect/internal/notification"
	"github.com/Shivanand-hulikatti/campus-connect/internal/query"
	"github.com/Shivanand-hulikatti/campus-connect/internal/registration"
)

// Deps are the collaborators of an EventService. Catalog, Engine, Writer,
// Store and Feed are required.
type Deps struct {
	Catalog   *catalog.Store
	Engine    *query.Engine
	Writer    *registration.Writer
	Store     durable.Store
	Feed      *notification.Feed
	Publisher events.Publisher
	Logger    *logger.Logger
	Metrics   *metrics.Metrics
	Clock     func() time.Time
	Location  *time.Location
}

// EventService orchestrates event-related business operations.
type EventService struct {
	catalog *catalog.Store
	engine  *query.Engine
	writer  *registration.Writer
	store   durable.Store
	feed    *notification.Feed
	pub     events.Publisher
	log     *logger.Logger
	metrics *metrics.Metrics
	now     func() time.Time
	loc     *time.Location
}

// NewEventService constructs an EventService with its dependencies.
func NewEventService(d Deps) *EventService {
	s := &EventService{
		catalog: d.Catalog,
		engine:  d.Engine,
		writer:  d.Writer,
		store:   d.Store,
		feed:    d.Feed,
		pub:     d.Publisher,
		log:     d.Logger,
		metrics: d.Metrics,
		now:     d.Clock,
		loc:     d.Location,
	}
	if s.pub == nil {
		s.pub = &events.NoopPublisher{}
	}
	if s.log == nil {
		s.log = logger.Nop()
	}
	if s.now == nil {
		s.now = time.Now
	}
	if s.loc == nil {
		s.loc = time.Local
	}
	return s
}

// ─── Browsing ─────────────────────────────────────────────────────────────────

// ListParams are the raw query-string inputs of an event listing.
type ListParams struct {
	View       string
	Search     string
	Categories []string
	Sort       string
}

// ListEvents parses p and runs the composed query.
func (s *EventService) ListEvents(ctx context.Context, p ListParams) ([]model.Event, error) {
	view, err := query.ParseView(strings.TrimSpace(p.View))
	if err != nil {
		return nil, apperror.Invalid("view", "%v", err)
	}

	q := query.Query{View: view, Search: strings.TrimSpace(p.Search)}

	if raw := strings.TrimSpace(p.Sort); raw != "" {
		key, err := query.ParseSortKey(raw)
		if err != nil {
			return nil, apperror.Invalid("sort", "%v", err)
		}
		q.Sort = key
	}

	for _, raw := range p.Categories {
		raw = strings.TrimSpace(raw)
		if raw == "" {
			continue
		}
		c, err := model.ParseCategory(raw)
		if err != nil {
			return nil, apperror.Invalid("category", "%v", err)
		}
		if !slices.Contains(q.Categories, c) {
			q.Categories = append(q.Categories, c)
		}
	}

	return s.engine.Run(q), nil
}

// Categories lists every category with its label, in display order.
func (s *EventService) Categories() []model.CategoryInfo {
	all := model.AllCategories()
	out := make([]model.CategoryInfo, len(all))
	for i, c := range all {
		out[i] = model.CategoryInfo{Value: c, Label: c.Label()}
	}
	return out
}

// EventsByCategory lists the events of one category in catalog order.
func (s *EventService) EventsByCategory(ctx context.Context, raw string) ([]model.Event, error) {
	c, err := parseCategory(raw)
	if err != nil {
		return nil, err
	}
	return s.engine.ListByCategory(c), nil
}

// GetEvent returns a single event by ID.
func (s *EventService) GetEvent(ctx context.Context, id string) (model.Event, error) {
	if id == "" {
		return model.Event{}, apperror.Invalid("id", "event id is required")
	}
	e, ok := s.catalog.Event(id)
	if !ok {
		return model.Event{}, apperror.NotFound("event", id)
	}
	return e, nil
}

// ListAnnouncements returns announcements newest first.
func (s *EventService) ListAnnouncements(ctx context.Context) []model.Announcement {
	return s.catalog.Announcements()
}

// ─── Registration ─────────────────────────────────────────────────────────────

// Eligibility evaluates whether userID may register for eventID. An empty
// userID is an anonymous caller.
func (s *EventService) Eligibility(ctx context.Context, eventID, userID string) (model.EligibilityResponse, error) {
	e, err := s.GetEvent(ctx, eventID)
	if err != nil {
		return model.EligibilityResponse{}, err
	}

	outcome := eligibility.Evaluate(e, userID, s.userRegistrations(ctx, userID), s.now())
	msg := outcome.Message()
	resp := model.EligibilityResponse{
		EventID:     e.ID,
		Outcome:     outcome.Code(),
		Eligible:    outcome == eligibility.Eligible,
		Title:       msg.Title,
		Description: msg.Description,
	}
	if e.HasCapacityLimit() {
		n := max(e.Remaining(), 0)
		resp.Remaining = &n
	}
	return resp, nil
}

// Register validates the attendee details, checks eligibility and hands the
// write to the registration writer.
func (s *EventService) Register(ctx context.Context, eventID, userID string, info model.AttendeeInfo) (model.Registration, error) {
	e, err := s.GetEvent(ctx, eventID)
	if err != nil {
		return model.Registration{}, err
	}

	info, err = validateAttendee(info)
	if err != nil {
		s.metrics.RegistrationAttempt("invalid")
		return model.Registration{}, err
	}

	outcome := eligibility.Evaluate(e, userID, s.userRegistrations(ctx, userID), s.now())
	if outcome != eligibility.Eligible {
		s.metrics.RegistrationAttempt(outcome.Code())
		return model.Registration{}, &apperror.IneligibleError{Outcome: outcome}
	}

	reg, err := s.writer.Register(ctx, eventID, userID, info)
	if err != nil {
		s.metrics.RegistrationAttempt(attemptLabel(err))
		return model.Registration{}, err
	}

	s.metrics.RegistrationAttempt("registered")
	s.log.WithContext(ctx).Info("registration created",
		zap.String("event_id", eventID),
		zap.String("registration_id", reg.ID),
	)
	return reg, nil
}

func attemptLabel(err error) string {
	var inel *apperror.IneligibleError
	switch {
	case errors.As(err, &inel):
		if o, ok := inel.Outcome.(eligibility.Outcome); ok {
			return o.Code()
		}
		return "ineligible"
	case errors.Is(err, apperror.ErrRemote):
		return "remote_failure"
	case errors.Is(err, apperror.ErrNotFound):
		return "not_found"
	}
	return "error"
}

// MyRegistrations joins the user's registrations with catalog events and
// splits them into upcoming (date ≥ now) and past. Registrations whose
// event has been deleted are omitted.
func (s *EventService) MyRegistrations(ctx context.Context, userID string) (model.MyRegistrations, error) {
	out := model.MyRegistrations{
		Upcoming: []model.RegistrationWithEvent{},
		Past:     []model.RegistrationWithEvent{},
	}
	if userID == "" {
		return out, &apperror.IneligibleError{Outcome: eligibility.NotAuthenticated}
	}

	now := s.now()
	for _, r := range s.userRegistrations(ctx, userID) {
		e, ok := s.catalog.Event(r.EventID)
		if !ok {
			continue
		}
		item := model.RegistrationWithEvent{Registration: r, Event: e}
		if e.Date.Before(now) {
			out.Past = append(out.Past, item)
		} else {
			out.Upcoming = append(out.Upcoming, item)
		}
	}
	return out, nil
}

// userRegistrations merges the catalog's local registrations for userID
// with those in the durable store, so duplicates are caught across
// restarts. A store failure falls back to the local set.
func (s *EventService) userRegistrations(ctx context.Context, userID string) []model.Registration {
	if userID == "" {
		return nil
	}
	local := s.catalog.RegistrationsByUser(userID)

	recs, err := s.store.ListRegistrationsForUser(ctx, userID)
	if err != nil {
		s.metrics.RemoteFailure("list registrations")
		s.log.WithContext(ctx).Warn("durable registrations unavailable, using local registrations",
			zap.Error(err),
		)
		return local
	}

	seen := make(map[string]struct{}, len(local))
	for _, r := range local {
		seen[r.ID] = struct{}{}
	}
	for _, rec := range recs {
		if _, ok := seen[rec.ID]; ok {
			continue
		}
		local = append(local, model.Registration{
			ID:               rec.ID,
			EventID:          rec.EventID,
			UserID:           rec.UserID,
			RegistrationDate: rec.CreatedAt,
			AttendeeInfo:     rec.AttendeeInfo,
		})
	}
	return local
}

// ─── Notifications ────────────────────────────────────────────────────────────

// Notifications returns the user's current list.
func (s *EventService) Notifications(ctx context.Context, userID string) model.NotificationList {
	return notificationList(s.feed.Notifications(ctx, userID))
}

// RefreshNotifications regenerates the user's list, as on login.
func (s *EventService) RefreshNotifications(ctx context.Context, userID string) model.NotificationList {
	return notificationList(s.feed.Refresh(ctx, userID))
}

// MarkNotificationRead flags one notification as read.
func (s *EventService) MarkNotificationRead(ctx context.Context, userID, id string) error {
	if !s.feed.MarkAsRead(ctx, userID, id) {
		return apperror.NotFound("notification", id)
	}
	return nil
}

// MarkAllNotificationsRead flags every notification of the user as read.
func (s *EventService) MarkAllNotificationsRead(ctx context.Context, userID string) model.NotificationList {
	s.feed.MarkAllAsRead(ctx, userID)
	return s.Notifications(ctx, userID)
}

// UnreadNotifications counts the user's unread notifications.
func (s *EventService) UnreadNotifications(ctx context.Context, userID string) int {
	return s.feed.UnreadCount(ctx, userID)
}

// ForgetNotifications drops the user's cached list, as on sign-out. The next
// read derives a fresh one.
func (s *EventService) ForgetNotifications(ctx context.Context, userID string) {
	s.feed.Forget(userID)
}

func notificationList(items []model.Notification) model.NotificationList {
	unread := 0
	for _, n := range items {
		if !n.Read {
			unread++
		}
	}
	return model.NotificationList{Notifications: items, UnreadCount: unread}
}

// publish emits a domain event; failures are logged only.
func (s *EventService) publish(ctx context.Context, topic string, event any) {
	if err := s.pub.Publish(ctx, topic, event); err != nil {
		s.log.WithContext(ctx).Warn("publish event failed",
			zap.String("topic", topic),
			zap.Error(err),
		)
	}
}
