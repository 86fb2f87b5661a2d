package query

import (
	"fmt"

	"github.com/Shivanand-hulikatti/campus-connect/internal/model"
)

// View names the base list a Query starts from.
type View string

const (
	ViewAll      View = "all"
	ViewFeatured View = "featured"
	ViewUpcoming View = "upcoming"
	ViewCurrent  View = "current"
)

// ParseView converts a raw view name. The empty string selects ViewAll.
func ParseView(s string) (View, error) {
	switch View(s) {
	case "", ViewAll:
		return ViewAll, nil
	case ViewFeatured, ViewUpcoming, ViewCurrent:
		return View(s), nil
	}
	return "", fmt.Errorf("unknown view %q", s)
}

// Query is a composed request: the view is narrowed by Search, then by
// Categories, then ordered by Sort.
type Query struct {
	View       View
	Search     string
	Categories []model.Category
	Sort       SortKey
}

// Run evaluates q. An empty Search applies no text constraint, and an
// empty Sort keeps the view's own order.
func (e *Engine) Run(q Query) []model.Event {
	var events []model.Event
	switch q.View {
	case ViewFeatured:
		events = e.ListFeatured()
	case ViewUpcoming:
		events = e.ListUpcoming()
	case ViewCurrent:
		events = e.ListCurrent()
	default:
		events = e.ListAll()
	}

	if q.Search != "" {
		events = Search(events, q.Search)
	}
	events = FilterByCategories(events, q.Categories)
	if q.Sort != "" {
		events = Sort(events, q.Sort)
	}
	return events
}
