package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Shivanand-hulikatti/campus-connect/internal/apperror"
	"github.com/Shivanand-hulikatti/campus-connect/internal/catalog"
	"github.com/Shivanand-hulikatti/campus-connect/internal/durable"
	"github.com/Shivanand-hulikatti/campus-connect/internal/eligibility"
	"github.com/Shivanand-hulikatti/campus-connect/internal/events"
	"github.com/Shivanand-hulikatti/campus-connect/internal/idgen"
	"github.com/Shivanand-hulikatti/campus-connect/internal/metrics"
	"github.com/Shivanand-hulikatti/campus-connect/internal/model"
	"github.com/Shivanand-hulikatti/campus-connect/internal/notification"
	"github.com/Shivanand-hulikatti/campus-connect/internal/query"
	"github.com/Shivanand-hulikatti/campus-connect/internal/registration"
)

var fixedNow = time.Date(2026, 5, 4, 10, 0, 0, 0, time.UTC)

func clock() time.Time { return fixedNow }

func intPtr(n int) *int { return &n }

func strPtr(s string) *string { return &s }

func timePtr(t time.Time) *time.Time { return &t }

var ada = model.AttendeeInfo{Name: "Ada Lovelace", Email: "ada@campus.edu", StudentID: "S12345", Department: "Maths"}

type fixture struct {
	cat   *catalog.Store
	store *durable.MemoryStore
	pub   *events.Recorder
	svc   *EventService
}

func newFixture(t *testing.T, evs ...model.Event) fixture {
	t.Helper()
	cat := catalog.New(
		catalog.WithSeed(catalog.Seed{Events: evs}),
		catalog.WithIDFunc(idgen.Sequence("new-")),
		catalog.WithClock(clock),
	)
	return newFixtureWith(t, cat, durable.NewMemoryStore())
}

func newFixtureWith(t *testing.T, cat *catalog.Store, store *durable.MemoryStore) fixture {
	t.Helper()
	pub := &events.Recorder{}
	m := metrics.New()
	writer := registration.NewWriter(cat, store,
		registration.WithClock(clock),
		registration.WithPublisher(pub),
		registration.WithMetrics(m),
	)
	deriver := notification.NewDeriver(cat, store,
		notification.WithClock(clock),
		notification.WithLocation(time.UTC),
	)
	svc := NewEventService(Deps{
		Catalog:   cat,
		Engine:    query.NewEngine(cat, query.WithClock(clock), query.WithLocation(time.UTC)),
		Writer:    writer,
		Store:     store,
		Feed:      notification.NewFeed(deriver),
		Publisher: pub,
		Metrics:   m,
		Clock:     clock,
		Location:  time.UTC,
	})
	return fixture{cat: cat, store: store, pub: pub, svc: svc}
}

func workshop(id string, in time.Duration) model.Event {
	return model.Event{
		ID:          id,
		Title:       "Workshop " + id,
		Description: "A hands-on workshop",
		Date:        fixedNow.Add(in),
		Location:    "Lab",
		Category:    model.CategoryWorkshop,
		Organizer:   "CS",
	}
}

func outcomeOf(t *testing.T, err error) eligibility.Outcome {
	t.Helper()
	var inel *apperror.IneligibleError
	require.ErrorAs(t, err, &inel)
	o, ok := inel.Outcome.(eligibility.Outcome)
	require.True(t, ok)
	return o
}

// ─── Browsing ─────────────────────────────────────────────────────────────────

func TestListEvents(t *testing.T) {
	fair := workshop("fair", 48*time.Hour)
	fair.Category = model.CategoryFair
	fair.Title = "Career Fair"
	f := newFixture(t, workshop("b", 72*time.Hour), fair, workshop("a", 24*time.Hour), workshop("old", -72*time.Hour))
	ctx := context.Background()

	got, err := f.svc.ListEvents(ctx, ListParams{})
	require.NoError(t, err)
	assert.Len(t, got, 4)

	got, err = f.svc.ListEvents(ctx, ListParams{View: "upcoming", Categories: []string{"workshop", " ", "workshop"}})
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "a", got[0].ID)
	assert.Equal(t, "b", got[1].ID)

	got, err = f.svc.ListEvents(ctx, ListParams{Search: "career", Sort: "title-asc"})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "fair", got[0].ID)
}

func TestListEvents_InvalidParams(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	tests := map[string]ListParams{
		"view":     {View: "tomorrow"},
		"sort":     {Sort: "random"},
		"category": {Categories: []string{"workshop", "karaoke"}},
	}
	for field, p := range tests {
		t.Run(field, func(t *testing.T) {
			_, err := f.svc.ListEvents(ctx, p)
			require.ErrorIs(t, err, apperror.ErrValidation)
			var ve *apperror.ValidationError
			require.ErrorAs(t, err, &ve)
			assert.Equal(t, field, ve.Field)
		})
	}
}

func TestCategories(t *testing.T) {
	f := newFixture(t)
	cats := f.svc.Categories()
	require.Len(t, cats, 8)
	assert.Equal(t, model.CategoryInfo{Value: model.CategoryHackathon, Label: "Hackathons"}, cats[0])
}

func TestEventsByCategory(t *testing.T) {
	fair := workshop("fair", 48*time.Hour)
	fair.Category = model.CategoryFair
	f := newFixture(t, workshop("a", 24*time.Hour), fair, workshop("b", 72*time.Hour))
	ctx := context.Background()

	got, err := f.svc.EventsByCategory(ctx, "workshop")
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "a", got[0].ID)
	assert.Equal(t, "b", got[1].ID)

	got, err = f.svc.EventsByCategory(ctx, "sports")
	require.NoError(t, err)
	assert.Empty(t, got)

	_, err = f.svc.EventsByCategory(ctx, "party")
	var ve *apperror.ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, "category", ve.Field)
}

func TestGetEvent(t *testing.T) {
	f := newFixture(t, workshop("a", time.Hour))
	_, err := f.svc.GetEvent(context.Background(), "zzz")
	assert.ErrorIs(t, err, apperror.ErrNotFound)
	_, err = f.svc.GetEvent(context.Background(), "")
	assert.ErrorIs(t, err, apperror.ErrValidation)
}

// ─── Registration ─────────────────────────────────────────────────────────────

func TestRegister_FiveToSix(t *testing.T) {
	e := workshop("w", 72*time.Hour)
	e.MaxAttendees = intPtr(10)
	e.CurrentAttendees = 5
	f := newFixture(t, e)
	ctx := context.Background()

	reg, err := f.svc.Register(ctx, "w", "u1", ada)
	require.NoError(t, err)
	assert.Equal(t, "w", reg.EventID)

	got, _ := f.svc.GetEvent(ctx, "w")
	assert.Equal(t, 6, got.CurrentAttendees)
	assert.Len(t, f.cat.RegistrationsByEvent("w"), 1)
	assert.Contains(t, f.pub.Topics(), events.TopicRegistrationCreated)

	// Second attempt by the same user is a duplicate.
	_, err = f.svc.Register(ctx, "w", "u1", ada)
	assert.Equal(t, eligibility.AlreadyRegistered, outcomeOf(t, err))
	got, _ = f.svc.GetEvent(ctx, "w")
	assert.Equal(t, 6, got.CurrentAttendees)
}

func TestRegister_Ineligible(t *testing.T) {
	full := workshop("full", 72*time.Hour)
	full.MaxAttendees = intPtr(3)
	full.CurrentAttendees = 3
	closed := workshop("closed", 72*time.Hour)
	closed.RegistrationDeadline = timePtr(fixedNow.Add(-time.Minute))
	f := newFixture(t, full, closed, workshop("open", time.Hour))
	ctx := context.Background()

	_, err := f.svc.Register(ctx, "open", "", ada)
	assert.Equal(t, eligibility.NotAuthenticated, outcomeOf(t, err))

	_, err = f.svc.Register(ctx, "full", "u1", ada)
	assert.Equal(t, eligibility.EventFull, outcomeOf(t, err))

	_, err = f.svc.Register(ctx, "closed", "u1", ada)
	assert.Equal(t, eligibility.DeadlinePassed, outcomeOf(t, err))

	_, err = f.svc.Register(ctx, "missing", "u1", ada)
	assert.ErrorIs(t, err, apperror.ErrNotFound)

	assert.Empty(t, f.store.Records())
}

func TestRegister_InvalidAttendee(t *testing.T) {
	f := newFixture(t, workshop("open", time.Hour))
	ctx := context.Background()

	tests := map[string]model.AttendeeInfo{
		"name":       {Name: "A", Email: "a@campus.edu"},
		"email":      {Name: "Ada", Email: "not-an-email"},
		"studentId":  {Name: "Ada", Email: "a@campus.edu", StudentID: "S1"},
		"department": {Name: "Ada", Email: "a@campus.edu", Department: "X"},
	}
	for field, info := range tests {
		t.Run(field, func(t *testing.T) {
			_, err := f.svc.Register(ctx, "open", "u1", info)
			var ve *apperror.ValidationError
			require.ErrorAs(t, err, &ve)
			assert.Equal(t, field, ve.Field)
		})
	}

	// Optional fields may be omitted.
	_, err := f.svc.Register(ctx, "open", "u1", model.AttendeeInfo{Name: " Ada ", Email: "ada@campus.edu"})
	require.NoError(t, err)
	assert.Equal(t, "Ada", f.store.Records()[0].AttendeeInfo.Name)
}

func TestRegister_RemoteFailureRollsBack(t *testing.T) {
	e := workshop("w", 72*time.Hour)
	e.CurrentAttendees = 5
	e.MaxAttendees = intPtr(10)
	f := newFixture(t, e)
	f.store.FailWith(errors.New("db down"))

	_, err := f.svc.Register(context.Background(), "w", "u1", ada)
	require.ErrorIs(t, err, apperror.ErrRemote)

	got, _ := f.svc.GetEvent(context.Background(), "w")
	assert.Equal(t, 5, got.CurrentAttendees)
	assert.Empty(t, f.cat.RegistrationsByEvent("w"))
}

func TestRegister_DuplicateAcrossRestart(t *testing.T) {
	store := durable.NewMemoryStore()
	require.NoError(t, store.InsertRegistration(context.Background(), durable.Record{
		ID: "old", UserID: "u1", EventID: "w", CreatedAt: fixedNow.Add(-time.Hour),
	}))
	cat := catalog.New(catalog.WithSeed(catalog.Seed{Events: []model.Event{workshop("w", time.Hour)}}))
	f := newFixtureWith(t, cat, store)

	_, err := f.svc.Register(context.Background(), "w", "u1", ada)
	assert.Equal(t, eligibility.AlreadyRegistered, outcomeOf(t, err))
}

func TestEligibility(t *testing.T) {
	e := workshop("w", 72*time.Hour)
	e.MaxAttendees = intPtr(10)
	e.CurrentAttendees = 4
	f := newFixture(t, e)
	ctx := context.Background()

	resp, err := f.svc.Eligibility(ctx, "w", "")
	require.NoError(t, err)
	assert.Equal(t, "not_authenticated", resp.Outcome)
	assert.False(t, resp.Eligible)
	assert.Equal(t, "Authentication required", resp.Title)

	resp, err = f.svc.Eligibility(ctx, "w", "u1")
	require.NoError(t, err)
	assert.True(t, resp.Eligible)
	require.NotNil(t, resp.Remaining)
	assert.Equal(t, 6, *resp.Remaining)

	// A durable store outage falls back to local registrations.
	_, err = f.svc.Register(ctx, "w", "u1", ada)
	require.NoError(t, err)
	f.store.FailWith(errors.New("down"))
	resp, err = f.svc.Eligibility(ctx, "w", "u1")
	require.NoError(t, err)
	assert.Equal(t, "already_registered", resp.Outcome)

	_, err = f.svc.Eligibility(ctx, "nope", "u1")
	assert.ErrorIs(t, err, apperror.ErrNotFound)
}

func TestMyRegistrations(t *testing.T) {
	f := newFixture(t, workshop("soon", time.Hour), workshop("past", -time.Hour), workshop("gone", 2*time.Hour))
	ctx := context.Background()

	// Past events can only be registered for through the catalog directly.
	require.NoError(t, f.cat.ApplyRegistration(model.Registration{ID: "r-past", EventID: "past", UserID: "u1"}))
	_, err := f.svc.Register(ctx, "soon", "u1", ada)
	require.NoError(t, err)
	_, err = f.svc.Register(ctx, "gone", "u1", ada)
	require.NoError(t, err)
	require.NoError(t, f.svc.DeleteEvent(ctx, "gone"))

	mine, err := f.svc.MyRegistrations(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, mine.Upcoming, 1)
	assert.Equal(t, "soon", mine.Upcoming[0].Event.ID)
	require.Len(t, mine.Past, 1)
	assert.Equal(t, "past", mine.Past[0].Event.ID)

	_, err = f.svc.MyRegistrations(ctx, "")
	assert.ErrorIs(t, err, apperror.ErrIneligible)
}

// ─── Admin ────────────────────────────────────────────────────────────────────

func validCreate() model.CreateEventRequest {
	return model.CreateEventRequest{
		Title:                "Robotics Expo",
		Description:          "Student robotics projects on display",
		Date:                 "2026-06-01T09:00:00Z",
		EndDate:              "2026-06-02",
		Location:             "Main Hall",
		Category:             "fair",
		Organizer:            "Robotics Club",
		RegistrationDeadline: "2026-05-30",
		MaxAttendees:         intPtr(200),
	}
}

func TestCreateEvent(t *testing.T) {
	f := newFixture(t)

	e, err := f.svc.CreateEvent(context.Background(), validCreate())
	require.NoError(t, err)
	assert.Equal(t, "new-1", e.ID)
	assert.Equal(t, model.CategoryFair, e.Category)
	assert.Zero(t, e.CurrentAttendees)
	require.NotNil(t, e.EndDate)
	assert.Equal(t, time.Date(2026, 6, 2, 0, 0, 0, 0, time.UTC), *e.EndDate)
	assert.Equal(t, []string{events.TopicEventCreated}, f.pub.Topics())
}

func TestCreateEvent_Validation(t *testing.T) {
	f := newFixture(t)

	tests := map[string]func(*model.CreateEventRequest){
		"title":                func(r *model.CreateEventRequest) { r.Title = "X" },
		"description":          func(r *model.CreateEventRequest) { r.Description = "short" },
		"date":                 func(r *model.CreateEventRequest) { r.Date = "next tuesday" },
		"endDate":              func(r *model.CreateEventRequest) { r.EndDate = "2026-05-01" },
		"location":             func(r *model.CreateEventRequest) { r.Location = "" },
		"category":             func(r *model.CreateEventRequest) { r.Category = "party" },
		"organizer":            func(r *model.CreateEventRequest) { r.Organizer = "A" },
		"registrationDeadline": func(r *model.CreateEventRequest) { r.RegistrationDeadline = "soon" },
		"maxAttendees":         func(r *model.CreateEventRequest) { r.MaxAttendees = intPtr(-1) },
	}
	for field, mutate := range tests {
		t.Run(field, func(t *testing.T) {
			req := validCreate()
			mutate(&req)
			_, err := f.svc.CreateEvent(context.Background(), req)
			var ve *apperror.ValidationError
			require.ErrorAs(t, err, &ve)
			assert.Equal(t, field, ve.Field)
		})
	}
	assert.Empty(t, f.cat.Events())
}

func TestUpdateEvent(t *testing.T) {
	e := workshop("w", 72*time.Hour)
	e.MaxAttendees = intPtr(10)
	e.CurrentAttendees = 4
	f := newFixture(t, e)
	ctx := context.Background()

	got, err := f.svc.UpdateEvent(ctx, "w", model.UpdateEventRequest{Title: strPtr("Renamed"), MaxAttendees: model.NullableOf(4)})
	require.NoError(t, err)
	assert.Equal(t, "Renamed", got.Title)
	assert.Equal(t, 4, *got.MaxAttendees)
	assert.Equal(t, []string{events.TopicEventUpdated}, f.pub.Topics())

	_, err = f.svc.UpdateEvent(ctx, "w", model.UpdateEventRequest{MaxAttendees: model.NullableOf(3)})
	assert.ErrorIs(t, err, apperror.ErrValidation)

	_, err = f.svc.UpdateEvent(ctx, "w", model.UpdateEventRequest{EndDate: model.NullableOf("2026-01-01")})
	assert.ErrorIs(t, err, apperror.ErrValidation)

	_, err = f.svc.UpdateEvent(ctx, "w", model.UpdateEventRequest{Category: strPtr("nope")})
	assert.ErrorIs(t, err, apperror.ErrValidation)

	_, err = f.svc.UpdateEvent(ctx, "missing", model.UpdateEventRequest{Title: strPtr("Renamed")})
	assert.ErrorIs(t, err, apperror.ErrNotFound)
}

func TestUpdateEvent_ClearsOptionalFields(t *testing.T) {
	e := workshop("w", 72*time.Hour)
	e.EndDate = timePtr(e.Date.Add(48 * time.Hour))
	e.RegistrationDeadline = timePtr(e.Date.Add(-time.Hour))
	e.MaxAttendees = intPtr(10)
	f := newFixture(t, e)
	ctx := context.Background()

	// Absent fields stay as they are.
	got, err := f.svc.UpdateEvent(ctx, "w", model.UpdateEventRequest{Title: strPtr("Renamed")})
	require.NoError(t, err)
	require.NotNil(t, got.EndDate)
	require.NotNil(t, got.RegistrationDeadline)
	require.NotNil(t, got.MaxAttendees)

	got, err = f.svc.UpdateEvent(ctx, "w", model.UpdateEventRequest{
		EndDate:              model.NullableOf(""),
		RegistrationDeadline: model.Null[string](),
		MaxAttendees:         model.Null[int](),
	})
	require.NoError(t, err)
	assert.Nil(t, got.EndDate)
	assert.Nil(t, got.RegistrationDeadline)
	assert.Nil(t, got.MaxAttendees)
	assert.False(t, got.HasCapacityLimit())

	stored, ok := f.cat.Event("w")
	require.True(t, ok)
	assert.Nil(t, stored.EndDate)
	assert.Nil(t, stored.MaxAttendees)
}

func TestDeleteEvent(t *testing.T) {
	f := newFixture(t, workshop("w", time.Hour))
	ctx := context.Background()

	require.NoError(t, f.svc.DeleteEvent(ctx, "w"))
	assert.ErrorIs(t, f.svc.DeleteEvent(ctx, "w"), apperror.ErrNotFound)
	assert.Equal(t, []string{events.TopicEventDeleted}, f.pub.Topics())
}

func TestDashboard(t *testing.T) {
	f := newFixture(t, workshop("a", time.Hour), workshop("b", time.Hour))
	ctx := context.Background()

	_, err := f.svc.Register(ctx, "a", "u1", ada)
	require.NoError(t, err)
	_, err = f.svc.Register(ctx, "a", "u2", ada)
	require.NoError(t, err)

	dash := f.svc.Dashboard(ctx)
	require.Len(t, dash, 2)
	assert.Equal(t, 2, dash[0].RegistrationCount)
	assert.Zero(t, dash[1].RegistrationCount)

	f.store.FailWith(errors.New("down"))
	dash = f.svc.Dashboard(ctx)
	assert.Zero(t, dash[0].RegistrationCount)
}

func TestRegistrationsForEvent(t *testing.T) {
	f := newFixture(t, workshop("a", time.Hour))
	ctx := context.Background()

	regs, err := f.svc.RegistrationsForEvent(ctx, "a")
	require.NoError(t, err)
	assert.NotNil(t, regs)
	assert.Empty(t, regs)

	_, err = f.svc.Register(ctx, "a", "u1", ada)
	require.NoError(t, err)
	regs, err = f.svc.RegistrationsForEvent(ctx, "a")
	require.NoError(t, err)
	assert.Len(t, regs, 1)

	_, err = f.svc.RegistrationsForEvent(ctx, "zzz")
	assert.ErrorIs(t, err, apperror.ErrNotFound)
}

func TestCreateAnnouncement(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	a, err := f.svc.CreateAnnouncement(ctx, model.CreateAnnouncementRequest{
		Title:   "Library hours",
		Content: "The library stays open until midnight during finals.",
	}, "dean@admin.com")
	require.NoError(t, err)
	assert.Equal(t, "dean@admin.com", a.Author)
	assert.Equal(t, fixedNow, a.Date)
	assert.Equal(t, []model.Announcement{a}, f.svc.ListAnnouncements(ctx))

	_, err = f.svc.CreateAnnouncement(ctx, model.CreateAnnouncementRequest{Title: "Hi", Content: "short"}, "x")
	assert.ErrorIs(t, err, apperror.ErrValidation)
}

// ─── Notifications ────────────────────────────────────────────────────────────

func TestNotifications(t *testing.T) {
	f := newFixture(t, workshop("soon", 24*time.Hour))
	ctx := context.Background()

	list := f.svc.RefreshNotifications(ctx, "u1")
	assert.Equal(t, 2, list.UnreadCount)

	_, err := f.svc.Register(ctx, "soon", "u1", ada)
	require.NoError(t, err)
	list = f.svc.Notifications(ctx, "u1")
	require.Len(t, list.Notifications, 3)
	assert.Equal(t, notification.ConfirmationID("soon"), list.Notifications[1].ID)

	require.NoError(t, f.svc.MarkNotificationRead(ctx, "u1", notification.WelcomeID))
	assert.ErrorIs(t, f.svc.MarkNotificationRead(ctx, "u1", "nope"), apperror.ErrNotFound)
	assert.Equal(t, 2, f.svc.Notifications(ctx, "u1").UnreadCount)

	assert.Zero(t, f.svc.MarkAllNotificationsRead(ctx, "u1").UnreadCount)
	assert.Empty(t, f.svc.Notifications(ctx, "").Notifications)
}

func TestUnreadAndForgetNotifications(t *testing.T) {
	f := newFixture(t, workshop("soon", 24*time.Hour))
	ctx := context.Background()

	assert.Equal(t, 2, f.svc.UnreadNotifications(ctx, "u1"))
	f.svc.MarkAllNotificationsRead(ctx, "u1")
	assert.Zero(t, f.svc.UnreadNotifications(ctx, "u1"))

	// A forgotten list is derived again with fresh read state.
	f.svc.ForgetNotifications(ctx, "u1")
	assert.Equal(t, 2, f.svc.UnreadNotifications(ctx, "u1"))
	assert.Zero(t, f.svc.UnreadNotifications(ctx, ""))
}
