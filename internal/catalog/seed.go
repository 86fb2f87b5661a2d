package catalog

import (
	"fmt"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/Shivanand-hulikatti/campus-connect/internal/model"
)

// Seed is the initial content of a Store.
type Seed struct {
	Events        []model.Event
	Announcements []model.Announcement
}

const day = 24 * time.Hour

// DefaultSeed returns the sample campus catalog with dates relative to now.
func DefaultSeed(now time.Time) Seed {
	at := func(d time.Duration) *time.Time {
		t := now.Add(d)
		return &t
	}
	limit := func(n int) *int { return &n }

	return Seed{
		Events: []model.Event{
			{
				ID:                   "1",
				Title:                "Annual Tech Hackathon",
				Description:          "Join us for a 24-hour coding challenge to build innovative solutions for campus problems.",
				Date:                 now.Add(7 * day),
				Location:             "Engineering Building, Room 301",
				Category:             model.CategoryHackathon,
				Organizer:            "Computer Science Department",
				Image:                "https://images.unsplash.com/photo-1515187029135-18ee286d815b",
				RegistrationDeadline: at(5 * day),
				MaxAttendees:         limit(100),
				CurrentAttendees:     42,
				IsFeatured:           true,
			},
			{
				ID:                   "2",
				Title:                "Spring Career Fair",
				Description:          "Connect with over 50 employers looking to hire interns and graduates.",
				Date:                 now.Add(14 * day),
				Location:             "Student Union Hall",
				Category:             model.CategoryFair,
				Organizer:            "Career Services",
				Image:                "https://images.unsplash.com/photo-1521737604893-d14cc237f11d",
				RegistrationDeadline: at(10 * day),
				MaxAttendees:         limit(500),
				CurrentAttendees:     123,
				IsFeatured:           true,
			},
			{
				ID:                   "3",
				Title:                "AI Workshop Series",
				Description:          "Learn the fundamentals of artificial intelligence in this hands-on workshop series.",
				Date:                 now.Add(3 * day),
				EndDate:              at(10 * day),
				Location:             "Virtual",
				Category:             model.CategoryWorkshop,
				Organizer:            "AI Research Lab",
				Image:                "https://images.unsplash.com/photo-1531482615713-2afd69097998",
				RegistrationDeadline: at(2 * day),
				MaxAttendees:         limit(200),
				CurrentAttendees:     98,
			},
			{
				ID:                   "4",
				Title:                "Campus Music Festival",
				Description:          "A celebration of student musical talent featuring live performances across genres.",
				Date:                 now.Add(21 * day),
				Location:             "Campus Amphitheater",
				Category:             model.CategoryCultural,
				Organizer:            "Student Activities Board",
				Image:                "https://images.unsplash.com/photo-1501386761578-eac5c94b800a",
				RegistrationDeadline: at(18 * day),
				MaxAttendees:         limit(1000),
				CurrentAttendees:     210,
				IsFeatured:           true,
			},
			{
				ID:               "5",
				Title:            "Research Symposium",
				Description:      "Undergraduate and graduate students present their research projects.",
				Date:             now,
				Location:         "Science Center, Main Hall",
				Category:         model.CategoryConference,
				Organizer:        "Office of Research",
				Image:            "https://images.unsplash.com/photo-1523580494863-6f3031224c94",
				MaxAttendees:     limit(300),
				CurrentAttendees: 275,
			},
		},
		Announcements: []model.Announcement{
			{
				ID:        "1",
				Title:     "Campus Wi-Fi Upgrade",
				Content:   "The campus Wi-Fi network will be upgraded this weekend. Expect intermittent connectivity.",
				Date:      now.Add(-day),
				Author:    "IT Services",
				Important: true,
			},
			{
				ID:      "2",
				Title:   "Library Extended Hours",
				Content: "The library will be open 24/7 during finals week to accommodate student study needs.",
				Date:    now.Add(-2 * day),
				Author:  "University Library",
			},
			{
				ID:        "3",
				Title:     "New Course Registration",
				Content:   "Course registration for the Fall semester opens next Monday at 8 AM.",
				Date:      now.Add(-3 * day),
				Author:    "Registrar's Office",
				Important: true,
			},
		},
	}
}

// seedFile mirrors the TOML layout of a catalog seed file.
type seedFile struct {
	Events []struct {
		ID                   string     `toml:"id"`
		Title                string     `toml:"title"`
		Description          string     `toml:"description"`
		Date                 time.Time  `toml:"date"`
		EndDate              *time.Time `toml:"end_date"`
		Location             string     `toml:"location"`
		Category             string     `toml:"category"`
		Organizer            string     `toml:"organizer"`
		Image                string     `toml:"image"`
		RegistrationDeadline *time.Time `toml:"registration_deadline"`
		MaxAttendees         *int       `toml:"max_attendees"`
		CurrentAttendees     int        `toml:"current_attendees"`
		Featured             bool       `toml:"featured"`
	} `toml:"events"`
	Announcements []struct {
		ID        string    `toml:"id"`
		Title     string    `toml:"title"`
		Content   string    `toml:"content"`
		Date      time.Time `toml:"date"`
		Author    string    `toml:"author"`
		Important bool      `toml:"important"`
	} `toml:"announcements"`
}

// LoadSeedFile reads a TOML seed file.
func LoadSeedFile(path string) (Seed, error) {
	var f seedFile
	if _, err := toml.DecodeFile(path, &f); err != nil {
		return Seed{}, fmt.Errorf("decode seed file %s: %w", path, err)
	}
	return f.toSeed()
}

// ParseSeed decodes TOML seed content from memory.
func ParseSeed(data string) (Seed, error) {
	var f seedFile
	if _, err := toml.Decode(data, &f); err != nil {
		return Seed{}, fmt.Errorf("decode seed: %w", err)
	}
	return f.toSeed()
}

func (f seedFile) toSeed() (Seed, error) {
	var seed Seed
	seen := make(map[string]bool, len(f.Events))

	for i, e := range f.Events {
		if e.ID == "" {
			return Seed{}, fmt.Errorf("event #%d: id is required", i+1)
		}
		if seen[e.ID] {
			return Seed{}, fmt.Errorf("event %s: duplicate id", e.ID)
		}
		seen[e.ID] = true

		cat, err := model.ParseCategory(e.Category)
		if err != nil {
			return Seed{}, fmt.Errorf("event %s: %w", e.ID, err)
		}
		if e.EndDate != nil && e.EndDate.Before(e.Date) {
			return Seed{}, fmt.Errorf("event %s: end_date is before date", e.ID)
		}
		if e.MaxAttendees != nil && (*e.MaxAttendees < 0 || e.CurrentAttendees > *e.MaxAttendees) {
			return Seed{}, fmt.Errorf("event %s: current_attendees exceeds max_attendees", e.ID)
		}
		if e.CurrentAttendees < 0 {
			return Seed{}, fmt.Errorf("event %s: current_attendees is negative", e.ID)
		}

		seed.Events = append(seed.Events, model.Event{
			ID:                   e.ID,
			Title:                e.Title,
			Description:          e.Description,
			Date:                 e.Date,
			EndDate:              e.EndDate,
			Location:             e.Location,
			Category:             cat,
			Organizer:            e.Organizer,
			Image:                e.Image,
			RegistrationDeadline: e.RegistrationDeadline,
			MaxAttendees:         e.MaxAttendees,
			CurrentAttendees:     e.CurrentAttendees,
			IsFeatured:           e.Featured,
		})
	}

	for _, a := range f.Announcements {
		seed.Announcements = append(seed.Announcements, model.Announcement{
			ID:        a.ID,
			Title:     a.Title,
			Content:   a.Content,
			Date:      a.Date,
			Author:    a.Author,
			Important: a.Important,
		})
	}
	return seed, nil
}
