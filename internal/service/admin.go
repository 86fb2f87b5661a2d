package service

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/Shivanand-hulikatti/campus-connect/internal/apperror"
	"github.com/Shivanand-hulikatti/campus-connect/internal/events"
	"github.com/Shivanand-hulikatti/campus-connect/internal/model"
)

// CreateEvent validates the request and adds the event to the catalog.
func (s *EventService) CreateEvent(ctx context.Context, req model.CreateEventRequest) (model.Event, error) {
	in, err := s.eventInput(req)
	if err != nil {
		return model.Event{}, err
	}

	e, err := s.catalog.AddEvent(in)
	if err != nil {
		return model.Event{}, fmt.Errorf("add event: %w", err)
	}
	s.log.WithContext(ctx).Info("event created", zap.String("event_id", e.ID))
	s.publish(ctx, events.TopicEventCreated, events.EventCreated{Event: e})
	return e, nil
}

func (s *EventService) eventInput(req model.CreateEventRequest) (model.EventInput, error) {
	var (
		in  model.EventInput
		err error
	)
	if in.Title, err = minLength("title", req.Title, 2, "title"); err != nil {
		return in, err
	}
	if in.Description, err = minLength("description", req.Description, 10, "description"); err != nil {
		return in, err
	}
	if in.Date, err = parseDate("date", req.Date, s.loc); err != nil {
		return in, err
	}
	if in.EndDate, err = optionalDate("endDate", req.EndDate, s.loc); err != nil {
		return in, err
	}
	if in.EndDate != nil && in.EndDate.Before(in.Date) {
		return in, apperror.Invalid("endDate", "end date must not be before the start date")
	}
	if in.Location, err = minLength("location", req.Location, 2, "location"); err != nil {
		return in, err
	}
	if in.Category, err = parseCategory(req.Category); err != nil {
		return in, err
	}
	if in.Organizer, err = minLength("organizer", req.Organizer, 2, "organizer"); err != nil {
		return in, err
	}
	if in.RegistrationDeadline, err = optionalDate("registrationDeadline", req.RegistrationDeadline, s.loc); err != nil {
		return in, err
	}
	if err = validateCapacity(req.MaxAttendees); err != nil {
		return in, err
	}
	in.MaxAttendees = req.MaxAttendees
	in.Image = strings.TrimSpace(req.Image)
	in.IsFeatured = req.IsFeatured
	return in, nil
}

// UpdateEvent validates the provided fields against the current event and
// applies them.
func (s *EventService) UpdateEvent(ctx context.Context, id string, req model.UpdateEventRequest) (model.Event, error) {
	current, err := s.GetEvent(ctx, id)
	if err != nil {
		return model.Event{}, err
	}

	p, err := s.eventPatch(req)
	if err != nil {
		return model.Event{}, err
	}

	start := current.Date
	if p.Date != nil {
		start = *p.Date
	}
	end := current.EndDate
	switch {
	case p.ClearEndDate:
		end = nil
	case p.EndDate != nil:
		end = p.EndDate
	}
	if end != nil && end.Before(start) {
		return model.Event{}, apperror.Invalid("endDate", "end date must not be before the start date")
	}
	if p.MaxAttendees != nil && *p.MaxAttendees < current.CurrentAttendees {
		return model.Event{}, apperror.Invalid("maxAttendees",
			"must not be below the %d attendees already registered", current.CurrentAttendees)
	}

	e, ok := s.catalog.UpdateEvent(id, p)
	if !ok {
		return model.Event{}, apperror.NotFound("event", id)
	}
	s.log.WithContext(ctx).Info("event updated", zap.String("event_id", id))
	s.publish(ctx, events.TopicEventUpdated, events.EventUpdated{Event: e})
	return e, nil
}

func (s *EventService) eventPatch(req model.UpdateEventRequest) (model.EventPatch, error) {
	var p model.EventPatch

	text := func(field string, v *string, n int) (*string, error) {
		if v == nil {
			return nil, nil
		}
		out, err := minLength(field, *v, n, field)
		if err != nil {
			return nil, err
		}
		return &out, nil
	}

	var err error
	if p.Title, err = text("title", req.Title, 2); err != nil {
		return p, err
	}
	if p.Description, err = text("description", req.Description, 10); err != nil {
		return p, err
	}
	if p.Location, err = text("location", req.Location, 2); err != nil {
		return p, err
	}
	if p.Organizer, err = text("organizer", req.Organizer, 2); err != nil {
		return p, err
	}
	if req.Date != nil {
		t, err := parseDate("date", *req.Date, s.loc)
		if err != nil {
			return p, err
		}
		p.Date = &t
	}
	if p.EndDate, p.ClearEndDate, err = patchDate("endDate", req.EndDate, s.loc); err != nil {
		return p, err
	}
	if p.RegistrationDeadline, p.ClearRegistrationDeadline, err = patchDate("registrationDeadline", req.RegistrationDeadline, s.loc); err != nil {
		return p, err
	}
	if req.Category != nil {
		c, err := parseCategory(*req.Category)
		if err != nil {
			return p, err
		}
		p.Category = &c
	}
	switch {
	case req.MaxAttendees.IsNull():
		p.ClearMaxAttendees = true
	case req.MaxAttendees.Valid:
		n := req.MaxAttendees.Value
		if err = validateCapacity(&n); err != nil {
			return p, err
		}
		p.MaxAttendees = &n
	}
	if req.Image != nil {
		img := strings.TrimSpace(*req.Image)
		p.Image = &img
	}
	p.IsFeatured = req.IsFeatured
	return p, nil
}

// DeleteEvent removes an event from the catalog.
func (s *EventService) DeleteEvent(ctx context.Context, id string) error {
	if !s.catalog.DeleteEvent(id) {
		return apperror.NotFound("event", id)
	}
	s.log.WithContext(ctx).Info("event deleted", zap.String("event_id", id))
	s.publish(ctx, events.TopicEventDeleted, events.EventDeleted{EventID: id})
	return nil
}

// RegistrationsForEvent returns the registrations recorded locally for an
// event.
func (s *EventService) RegistrationsForEvent(ctx context.Context, eventID string) ([]model.Registration, error) {
	if _, err := s.GetEvent(ctx, eventID); err != nil {
		return nil, err
	}
	regs := s.catalog.RegistrationsByEvent(eventID)
	if regs == nil {
		regs = []model.Registration{}
	}
	return regs, nil
}

// Dashboard lists every event with its durable registration count. A count
// that cannot be fetched reads as 0.
func (s *EventService) Dashboard(ctx context.Context) []model.EventRegistrationCount {
	evs := s.catalog.Events()
	out := make([]model.EventRegistrationCount, len(evs))
	for i, e := range evs {
		n, err := s.store.CountRegistrationsForEvent(ctx, e.ID)
		if err != nil {
			s.metrics.RemoteFailure("count registrations")
			s.log.WithContext(ctx).Warn("registration count unavailable",
				zap.String("event_id", e.ID),
				zap.Error(err),
			)
			n = 0
		}
		out[i] = model.EventRegistrationCount{Event: e, RegistrationCount: n}
	}
	return out
}

// CreateAnnouncement validates and posts an announcement dated now. An
// empty author falls back to defaultAuthor.
func (s *EventService) CreateAnnouncement(ctx context.Context, req model.CreateAnnouncementRequest, defaultAuthor string) (model.Announcement, error) {
	var (
		in  model.AnnouncementInput
		err error
	)
	if in.Title, err = minLength("title", req.Title, 2, "title"); err != nil {
		return model.Announcement{}, err
	}
	if in.Content, err = minLength("content", req.Content, 10, "content"); err != nil {
		return model.Announcement{}, err
	}
	in.Author = strings.TrimSpace(req.Author)
	if in.Author == "" {
		in.Author = defaultAuthor
	}
	in.Important = req.Important

	a, err := s.catalog.AddAnnouncement(in)
	if err != nil {
		return model.Announcement{}, fmt.Errorf("add announcement: %w", err)
	}
	s.publish(ctx, events.TopicAnnouncementPosted, events.AnnouncementPosted{Announcement: a})
	return a, nil
}
