// Package catalog owns the in-process collections of events, announcements
// and registrations.
//
// A Store is constructed once per process and passed by reference to every
// consumer. Reads always return copies, so no consumer can mutate catalog
// state except through the methods below. The mutex only keeps concurrent
// HTTP handlers memory-safe; it does not resolve conflicting writes.
package catalog

import (
	"errors"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/Shivanand-hulikatti/campus-connect/internal/idgen"
	"github.com/Shivanand-hulikatti/campus-connect/internal/model"
)

// ErrEventFull is returned by ApplyRegistration when the event has reached
// its capacity limit.
var ErrEventFull = errors.New("event is at capacity")

// ErrEventNotFound is returned when a registration references an unknown event.
var ErrEventNotFound = errors.New("event not found")

// Store is the authoritative in-memory catalog.
type Store struct {
	mu            sync.RWMutex
	events        []model.Event
	announcements []model.Announcement
	registrations []model.Registration
	version       uint64

	newID idgen.Func
	now   func() time.Time
}

// Option configures a Store.
type Option func(*Store)

// WithIDFunc overrides the id generator for new events and announcements.
func WithIDFunc(fn idgen.Func) Option {
	return func(s *Store) { s.newID = fn }
}

// WithClock overrides the clock used to stamp announcements.
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// WithSeed preloads the store with the given data. Events keep their ids
// and attendee counts.
func WithSeed(seed Seed) Option {
	return func(s *Store) {
		for _, e := range seed.Events {
			s.events = append(s.events, e.Clone())
		}
		s.announcements = append(s.announcements, seed.Announcements...)
	}
}

// New constructs a Store.
func New(opts ...Option) *Store {
	s := &Store{
		newID: idgen.Generate,
		now:   time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Version increases by one on every catalog mutation. Consumers that cache
// derived views compare versions to know when to recompute.
func (s *Store) Version() uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.version
}

// ─── Events ───────────────────────────────────────────────────────────────────

// Events returns all events in insertion order.
func (s *Store) Events() []model.Event {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]model.Event, len(s.events))
	for i, e := range s.events {
		out[i] = e.Clone()
	}
	return out
}

// Event returns a single event by id.
func (s *Store) Event(id string) (model.Event, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	i := s.indexOf(id)
	if i < 0 {
		return model.Event{}, false
	}
	return s.events[i].Clone(), true
}

// AddEvent appends a new event with a fresh id and zero attendees.
func (s *Store) AddEvent(in model.EventInput) (model.Event, error) {
	id, err := s.newID()
	if err != nil {
		return model.Event{}, fmt.Errorf("generate event id: %w", err)
	}

	e := model.Event{
		ID:                   id,
		Title:                in.Title,
		Description:          in.Description,
		Date:                 in.Date,
		EndDate:              in.EndDate,
		Location:             in.Location,
		Category:             in.Category,
		Organizer:            in.Organizer,
		Image:                in.Image,
		RegistrationDeadline: in.RegistrationDeadline,
		MaxAttendees:         in.MaxAttendees,
		CurrentAttendees:     0,
		IsFeatured:           in.IsFeatured,
	}.Clone()

	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, e)
	s.version++
	return e.Clone(), nil
}

// UpdateEvent merges the non-nil patch fields into the event and applies the
// Clear flags. It reports
// false when no event has the given id.
func (s *Store) UpdateEvent(id string, p model.EventPatch) (model.Event, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexOf(id)
	if i < 0 {
		return model.Event{}, false
	}

	e := &s.events[i]
	if p.Title != nil {
		e.Title = *p.Title
	}
	if p.Description != nil {
		e.Description = *p.Description
	}
	if p.Date != nil {
		e.Date = *p.Date
	}
	if p.EndDate != nil {
		t := *p.EndDate
		e.EndDate = &t
	}
	if p.ClearEndDate {
		e.EndDate = nil
	}
	if p.Location != nil {
		e.Location = *p.Location
	}
	if p.Category != nil {
		e.Category = *p.Category
	}
	if p.Organizer != nil {
		e.Organizer = *p.Organizer
	}
	if p.Image != nil {
		e.Image = *p.Image
	}
	if p.RegistrationDeadline != nil {
		t := *p.RegistrationDeadline
		e.RegistrationDeadline = &t
	}
	if p.ClearRegistrationDeadline {
		e.RegistrationDeadline = nil
	}
	if p.MaxAttendees != nil {
		n := *p.MaxAttendees
		e.MaxAttendees = &n
	}
	if p.ClearMaxAttendees {
		e.MaxAttendees = nil
	}
	if p.IsFeatured != nil {
		e.IsFeatured = *p.IsFeatured
	}
	s.version++
	return e.Clone(), true
}

// DeleteEvent removes an event. Registrations referencing it are kept.
func (s *Store) DeleteEvent(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexOf(id)
	if i < 0 {
		return false
	}
	s.events = slices.Delete(s.events, i, i+1)
	s.version++
	return true
}

func (s *Store) indexOf(id string) int {
	return slices.IndexFunc(s.events, func(e model.Event) bool { return e.ID == id })
}

// ─── Announcements ────────────────────────────────────────────────────────────

// Announcements returns all announcements, newest first.
func (s *Store) Announcements() []model.Announcement {
	s.mu.RLock()
	out := slices.Clone(s.announcements)
	s.mu.RUnlock()

	slices.SortStableFunc(out, func(a, b model.Announcement) int {
		return b.Date.Compare(a.Date)
	})
	return out
}

// AddAnnouncement appends an announcement dated now.
func (s *Store) AddAnnouncement(in model.AnnouncementInput) (model.Announcement, error) {
	id, err := s.newID()
	if err != nil {
		return model.Announcement{}, fmt.Errorf("generate announcement id: %w", err)
	}
	a := model.Announcement{
		ID:        id,
		Title:     in.Title,
		Content:   in.Content,
		Date:      s.now(),
		Author:    in.Author,
		Important: in.Important,
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.announcements = append(s.announcements, a)
	s.version++
	return a, nil
}

// ─── Registrations ────────────────────────────────────────────────────────────

// ApplyRegistration records reg and increments the referenced event's
// attendee count by exactly one, as a single step. It refuses to push the
// count past MaxAttendees. Duplicate (user, event) pairs are not checked
// here; that is the eligibility evaluator's job.
func (s *Store) ApplyRegistration(reg model.Registration) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexOf(reg.EventID)
	if i < 0 {
		return ErrEventNotFound
	}
	if s.events[i].IsFull() {
		return ErrEventFull
	}
	s.events[i].CurrentAttendees++
	s.registrations = append(s.registrations, reg)
	s.version++
	return nil
}

// RevertRegistration undoes ApplyRegistration: it removes the registration
// and decrements the attendee count, never below zero. It reports false
// when the registration is unknown.
func (s *Store) RevertRegistration(regID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	ri := slices.IndexFunc(s.registrations, func(r model.Registration) bool { return r.ID == regID })
	if ri < 0 {
		return false
	}
	reg := s.registrations[ri]
	s.registrations = slices.Delete(s.registrations, ri, ri+1)

	if ei := s.indexOf(reg.EventID); ei >= 0 && s.events[ei].CurrentAttendees > 0 {
		s.events[ei].CurrentAttendees--
	}
	s.version++
	return true
}

// RegistrationsByUser returns the user's registrations in creation order.
func (s *Store) RegistrationsByUser(userID string) []model.Registration {
	return s.filterRegistrations(func(r model.Registration) bool { return r.UserID == userID })
}

// RegistrationsByEvent returns the event's registrations in creation order.
func (s *Store) RegistrationsByEvent(eventID string) []model.Registration {
	return s.filterRegistrations(func(r model.Registration) bool { return r.EventID == eventID })
}

func (s *Store) filterRegistrations(keep func(model.Registration) bool) []model.Registration {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []model.Registration
	for _, r := range s.registrations {
		if keep(r) {
			out = append(out, r)
		}
	}
	return out
}
