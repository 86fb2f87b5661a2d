package model

import "fmt"

// Category is the closed set of event categories.
type Category string

const (
	CategoryHackathon  Category = "hackathon"
	CategoryWorkshop   Category = "workshop"
	CategoryFair       Category = "fair"
	CategorySeminar    Category = "seminar"
	CategoryConference Category = "conference"
	CategoryCultural   Category = "cultural"
	CategorySports     Category = "sports"
	CategoryOther      Category = "other"
)

// AllCategories lists every category in display order.
func AllCategories() []Category {
	return []Category{
		CategoryHackathon,
		CategoryWorkshop,
		CategoryFair,
		CategorySeminar,
		CategoryConference,
		CategoryCultural,
		CategorySports,
		CategoryOther,
	}
}

// Label returns the plural display label used by category filters.
func (c Category) Label() string {
	switch c {
	case CategoryHackathon:
		return "Hackathons"
	case CategoryWorkshop:
		return "Workshops"
	case CategoryFair:
		return "Fairs"
	case CategorySeminar:
		return "Seminars"
	case CategoryConference:
		return "Conferences"
	case CategoryCultural:
		return "Cultural Events"
	case CategorySports:
		return "Sports Events"
	case CategoryOther:
		return "Other Events"
	}
	return ""
}

// Valid reports whether c is one of the known categories.
func (c Category) Valid() bool {
	return c.Label() != ""
}

// ParseCategory converts a raw string into a Category.
func ParseCategory(s string) (Category, error) {
	c := Category(s)
	if !c.Valid() {
		return "", fmt.Errorf("unknown category %q", s)
	}
	return c, nil
}
