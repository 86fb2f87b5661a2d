package notification

import (
	"context"
	"slices"
	"sync"

	"github.com/Shivanand-hulikatti/campus-connect/internal/model"
)

// Feed caches each user's derived list together with its read flags.
//
// A list is regenerated when the catalog version differs from the one it
// was derived at, or on Refresh. Regeneration discards read flags. When two
// regenerations for the same user overlap, the one that completes last is
// kept.
type Feed struct {
	deriver *Deriver

	mu    sync.Mutex
	users map[string]*userFeed
}

type userFeed struct {
	version uint64
	items   []model.Notification
}

// NewFeed constructs a Feed over d.
func NewFeed(d *Deriver) *Feed {
	return &Feed{deriver: d, users: make(map[string]*userFeed)}
}

// Notifications returns userID's list, regenerating it if stale.
func (f *Feed) Notifications(ctx context.Context, userID string) []model.Notification {
	if userID == "" {
		return []model.Notification{}
	}
	f.mu.Lock()
	uf, ok := f.users[userID]
	fresh := ok && uf.version == f.deriver.src.Version()
	var items []model.Notification
	if fresh {
		items = slices.Clone(uf.items)
	}
	f.mu.Unlock()

	if fresh {
		return items
	}
	return f.Refresh(ctx, userID)
}

// Refresh regenerates userID's list unconditionally. Login calls it.
func (f *Feed) Refresh(ctx context.Context, userID string) []model.Notification {
	if userID == "" {
		return []model.Notification{}
	}
	version := f.deriver.src.Version()
	items := f.deriver.Derive(ctx, userID)

	f.mu.Lock()
	f.users[userID] = &userFeed{version: version, items: items}
	f.mu.Unlock()

	return slices.Clone(items)
}

// UnreadCount is the number of unread notifications for userID.
func (f *Feed) UnreadCount(ctx context.Context, userID string) int {
	n := 0
	for _, item := range f.Notifications(ctx, userID) {
		if !item.Read {
			n++
		}
	}
	return n
}

// MarkAsRead flags one notification as read. It reports false when the
// user has no notification with that id.
func (f *Feed) MarkAsRead(ctx context.Context, userID, id string) bool {
	if userID == "" {
		return false
	}
	f.Notifications(ctx, userID)

	f.mu.Lock()
	defer f.mu.Unlock()
	uf, ok := f.users[userID]
	if !ok {
		return false
	}
	i := slices.IndexFunc(uf.items, func(n model.Notification) bool { return n.ID == id })
	if i < 0 {
		return false
	}
	uf.items[i].Read = true
	return true
}

// MarkAllAsRead flags every notification of userID as read.
func (f *Feed) MarkAllAsRead(ctx context.Context, userID string) {
	if userID == "" {
		return
	}
	f.Notifications(ctx, userID)

	f.mu.Lock()
	defer f.mu.Unlock()
	if uf, ok := f.users[userID]; ok {
		for i := range uf.items {
			uf.items[i].Read = true
		}
	}
}

// Forget drops userID's cached list, as on logout.
func (f *Feed) Forget(userID string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.users, userID)
}
