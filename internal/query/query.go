// Package query derives filtered, searched and sorted views of the catalog.
//
// Every function is a pure read over a snapshot and never fails. List
// functions read from the Source; Search, FilterByCategories and Sort work
// on any slice and can be chained in that order.
package query

import (
	"cmp"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/Shivanand-hulikatti/campus-connect/internal/model"
)

// Source supplies the current event catalog in insertion order.
type Source interface {
	Events() []model.Event
}

// Engine answers list queries against a Source at the engine's clock.
type Engine struct {
	src Source
	now func() time.Time
	loc *time.Location
}

// Option configures an Engine.
type Option func(*Engine)

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) { e.now = now }
}

// WithLocation sets the time zone whose calendar days bound ListCurrent.
func WithLocation(loc *time.Location) Option {
	return func(e *Engine) {
		if loc != nil {
			e.loc = loc
		}
	}
}

// NewEngine constructs an Engine over src.
func NewEngine(src Source, opts ...Option) *Engine {
	e := &Engine{src: src, now: time.Now, loc: time.Local}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// ListAll returns every event in insertion order.
func (e *Engine) ListAll() []model.Event {
	return e.src.Events()
}

// ListFeatured returns featured events in insertion order.
func (e *Engine) ListFeatured() []model.Event {
	return keep(e.src.Events(), func(ev model.Event) bool { return ev.IsFeatured })
}

// ListUpcoming returns events starting strictly after now, earliest first.
func (e *Engine) ListUpcoming() []model.Event {
	now := e.now()
	out := keep(e.src.Events(), func(ev model.Event) bool { return ev.Date.After(now) })
	return Sort(out, SortDateAsc)
}

// ListCurrent returns events that have started and whose last day has not
// yet ended. The last day runs through 23:59:59.999 in the engine's
// location, regardless of the event's time of day.
func (e *Engine) ListCurrent() []model.Event {
	now := e.now()
	return keep(e.src.Events(), func(ev model.Event) bool { return e.isCurrent(ev, now) })
}

// ListByCategory returns the events of a single category.
func (e *Engine) ListByCategory(c model.Category) []model.Event {
	return keep(e.src.Events(), func(ev model.Event) bool { return ev.Category == c })
}

func (e *Engine) isCurrent(ev model.Event, now time.Time) bool {
	return !ev.Date.After(now) && !EndOfDay(ev.LastDay(), e.loc).Before(now)
}

// EndOfDay returns the last millisecond of t's calendar day in loc.
func EndOfDay(t time.Time, loc *time.Location) time.Time {
	t = t.In(loc)
	y, m, d := t.Date()
	return time.Date(y, m, d, 23, 59, 59, int(999*time.Millisecond), loc)
}

// Search keeps events whose title, description, organizer or location
// contains q, ignoring case. An empty q matches every event.
func Search(events []model.Event, q string) []model.Event {
	needle := strings.ToLower(q)
	return keep(events, func(ev model.Event) bool {
		return strings.Contains(strings.ToLower(ev.Title), needle) ||
			strings.Contains(strings.ToLower(ev.Description), needle) ||
			strings.Contains(strings.ToLower(ev.Organizer), needle) ||
			strings.Contains(strings.ToLower(ev.Location), needle)
	})
}

// FilterByCategories keeps events whose category is in cats. An empty set
// applies no constraint and returns the input unchanged.
func FilterByCategories(events []model.Event, cats []model.Category) []model.Event {
	if len(cats) == 0 {
		return events
	}
	return keep(events, func(ev model.Event) bool { return slices.Contains(cats, ev.Category) })
}

// SortKey selects the ordering applied by Sort.
type SortKey string

const (
	SortDateAsc    SortKey = "date-asc"
	SortDateDesc   SortKey = "date-desc"
	SortTitleAsc   SortKey = "title-asc"
	SortTitleDesc  SortKey = "title-desc"
	SortPopularity SortKey = "popularity"
)

// SortKeys lists the supported keys.
func SortKeys() []SortKey {
	return []SortKey{SortDateAsc, SortDateDesc, SortTitleAsc, SortTitleDesc, SortPopularity}
}

// ParseSortKey converts a raw key. The empty string selects SortDateAsc.
func ParseSortKey(s string) (SortKey, error) {
	if s == "" {
		return SortDateAsc, nil
	}
	k := SortKey(s)
	if !slices.Contains(SortKeys(), k) {
		return "", fmt.Errorf("unknown sort key %q", s)
	}
	return k, nil
}

// Sort returns a stably sorted copy of events. Ties keep their original
// relative order. An unrecognised key returns an unchanged copy.
func Sort(events []model.Event, key SortKey) []model.Event {
	out := slices.Clone(events)

	var less func(a, b model.Event) int
	switch key {
	case SortDateAsc:
		less = func(a, b model.Event) int { return a.Date.Compare(b.Date) }
	case SortDateDesc:
		less = func(a, b model.Event) int { return b.Date.Compare(a.Date) }
	case SortTitleAsc:
		less = func(a, b model.Event) int { return cmp.Compare(a.Title, b.Title) }
	case SortTitleDesc:
		less = func(a, b model.Event) int { return cmp.Compare(b.Title, a.Title) }
	case SortPopularity:
		less = func(a, b model.Event) int { return cmp.Compare(b.CurrentAttendees, a.CurrentAttendees) }
	default:
		return out
	}
	slices.SortStableFunc(out, less)
	return out
}

func keep(events []model.Event, pred func(model.Event) bool) []model.Event {
	out := make([]model.Event, 0, len(events))
	for _, ev := range events {
		if pred(ev) {
			out = append(out, ev)
		}
	}
	return out
}
