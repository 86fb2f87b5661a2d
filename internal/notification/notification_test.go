package notification

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Shivanand-hulikatti/campus-connect/internal/catalog"
	"github.com/Shivanand-hulikatti/campus-connect/internal/durable"
	"github.com/Shivanand-hulikatti/campus-connect/internal/metrics"
	"github.com/Shivanand-hulikatti/campus-connect/internal/model"
)

var fixedNow = time.Date(2026, 5, 4, 10, 0, 0, 0, time.UTC)

func ev(id string, in time.Duration) model.Event {
	return model.Event{
		ID:       id,
		Title:    "Event " + id,
		Date:     fixedNow.Add(in),
		Category: model.CategoryOther,
	}
}

type fixture struct {
	cat     *catalog.Store
	store   *durable.MemoryStore
	deriver *Deriver
}

func newFixture(t *testing.T, evs ...model.Event) fixture {
	t.Helper()
	cat := catalog.New(catalog.WithSeed(catalog.Seed{Events: evs}))
	store := durable.NewMemoryStore()
	d := NewDeriver(cat, store,
		WithClock(func() time.Time { return fixedNow }),
		WithLocation(time.UTC),
		WithMetrics(metrics.New()),
	)
	return fixture{cat: cat, store: store, deriver: d}
}

func (f fixture) register(t *testing.T, userID, eventID string) {
	t.Helper()
	require.NoError(t, f.store.InsertRegistration(context.Background(), durable.Record{
		ID: userID + "-" + eventID, UserID: userID, EventID: eventID, CreatedAt: fixedNow,
	}))
}

func ids(ns []model.Notification) []string {
	out := make([]string, len(ns))
	for i, n := range ns {
		out[i] = n.ID
	}
	return out
}

func TestDerive_ReminderWindow(t *testing.T) {
	f := newFixture(t,
		ev("soon", 2*24*time.Hour),
		ev("later", 4*24*time.Hour),
		ev("edge", ReminderWindow),
		ev("past", -time.Hour),
		ev("now", 0),
	)

	got := f.deriver.Derive(context.Background(), "u1")
	assert.Equal(t, []string{WelcomeID, "event-reminder-soon", "event-reminder-edge"}, ids(got))

	r := got[1]
	assert.Equal(t, model.NotificationReminder, r.Type)
	assert.Equal(t, "soon", r.EventID)
	assert.Equal(t, "Event Reminder", r.Title)
	assert.Equal(t, "Event soon is happening soon on May 6, 2026", r.Message)
	assert.False(t, r.Read)
}

func TestDerive_OrderWelcomeConfirmationsReminders(t *testing.T) {
	f := newFixture(t,
		ev("a", 10*24*time.Hour),
		ev("b", 24*time.Hour),
		ev("c", 30*24*time.Hour),
	)
	f.register(t, "u1", "c")
	f.register(t, "u1", "a")
	f.register(t, "u1", "gone") // not in the catalog
	f.register(t, "u2", "b")    // someone else

	got := f.deriver.Derive(context.Background(), "u1")
	assert.Equal(t, []string{
		WelcomeID,
		"registration-a",
		"registration-c",
		"event-reminder-b",
	}, ids(got))

	assert.Equal(t, model.NotificationSystem, got[0].Type)
	assert.Equal(t, model.NotificationEvent, got[1].Type)
	assert.Equal(t, "You are registered for Event a on May 14, 2026", got[1].Message)
}

func TestDerive_NoUser(t *testing.T) {
	f := newFixture(t, ev("soon", time.Hour))
	got := f.deriver.Derive(context.Background(), "")
	assert.NotNil(t, got)
	assert.Empty(t, got)
}

func TestDerive_StoreFailureDegrades(t *testing.T) {
	f := newFixture(t, ev("soon", time.Hour), ev("mine", 20*24*time.Hour))
	f.register(t, "u1", "mine")
	f.store.FailWith(errors.New("timeout"))

	got := f.deriver.Derive(context.Background(), "u1")
	assert.Equal(t, []string{WelcomeID, "event-reminder-soon"}, ids(got))
}

func TestFeed_ReadStateAndRegeneration(t *testing.T) {
	f := newFixture(t, ev("soon", time.Hour), ev("mine", 20*24*time.Hour))
	f.register(t, "u1", "mine")
	feed := NewFeed(f.deriver)
	ctx := context.Background()

	assert.Equal(t, 3, feed.UnreadCount(ctx, "u1"))

	assert.True(t, feed.MarkAsRead(ctx, "u1", WelcomeID))
	assert.False(t, feed.MarkAsRead(ctx, "u1", "missing"))
	assert.Equal(t, 2, feed.UnreadCount(ctx, "u1"))

	// Reads do not regenerate while the catalog is unchanged.
	got := feed.Notifications(ctx, "u1")
	assert.True(t, got[0].Read)

	feed.MarkAllAsRead(ctx, "u1")
	assert.Zero(t, feed.UnreadCount(ctx, "u1"))

	// A catalog change regenerates and read flags are lost.
	_, err := f.cat.AddEvent(model.EventInput{Title: "New", Date: fixedNow.Add(48 * time.Hour), Category: model.CategoryFair})
	require.NoError(t, err)
	got = feed.Notifications(ctx, "u1")
	assert.Len(t, got, 4)
	assert.Equal(t, 4, feed.UnreadCount(ctx, "u1"))
}

func TestFeed_RefreshResetsReadState(t *testing.T) {
	f := newFixture(t, ev("soon", time.Hour))
	feed := NewFeed(f.deriver)
	ctx := context.Background()

	feed.MarkAllAsRead(ctx, "u1")
	assert.Zero(t, feed.UnreadCount(ctx, "u1"))

	got := feed.Refresh(ctx, "u1")
	assert.Len(t, got, 2)
	assert.Equal(t, 2, feed.UnreadCount(ctx, "u1"))
}

func TestFeed_ReturnsCopies(t *testing.T) {
	f := newFixture(t, ev("soon", time.Hour))
	feed := NewFeed(f.deriver)
	ctx := context.Background()

	got := feed.Notifications(ctx, "u1")
	got[0].Read = true
	assert.Equal(t, 2, feed.UnreadCount(ctx, "u1"))
}

func TestFeed_AnonymousAndForget(t *testing.T) {
	f := newFixture(t, ev("soon", time.Hour))
	feed := NewFeed(f.deriver)
	ctx := context.Background()

	assert.Empty(t, feed.Notifications(ctx, ""))
	assert.False(t, feed.MarkAsRead(ctx, "", WelcomeID))
	assert.Zero(t, feed.UnreadCount(ctx, ""))

	feed.MarkAllAsRead(ctx, "u1")
	feed.Forget("u1")
	assert.Equal(t, 2, feed.UnreadCount(ctx, "u1"))
}
