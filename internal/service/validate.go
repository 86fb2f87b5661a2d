package service

import (
	"net/mail"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/Shivanand-hulikatti/campus-connect/internal/apperror"
	"github.com/Shivanand-hulikatti/campus-connect/internal/model"
)

const calendarDate = "2006-01-02"

// minLength trims v and requires at least n characters.
func minLength(field, v string, n int, label string) (string, error) {
	v = strings.TrimSpace(v)
	if utf8.RuneCountInString(v) < n {
		return "", apperror.Invalid(field, "%s must be at least %d characters", label, n)
	}
	return v, nil
}

// parseDate accepts an RFC 3339 timestamp or a YYYY-MM-DD date, the latter
// taken as midnight in loc.
func parseDate(field, v string, loc *time.Location) (time.Time, error) {
	v = strings.TrimSpace(v)
	if v == "" {
		return time.Time{}, apperror.Invalid(field, "date is required")
	}
	if t, err := time.Parse(time.RFC3339, v); err == nil {
		return t, nil
	}
	if t, err := time.ParseInLocation(calendarDate, v, loc); err == nil {
		return t, nil
	}
	return time.Time{}, apperror.Invalid(field, "invalid date %q, use RFC 3339 or YYYY-MM-DD", v)
}

// optionalDate parses v unless it is blank.
func optionalDate(field, v string, loc *time.Location) (*time.Time, error) {
	if strings.TrimSpace(v) == "" {
		return nil, nil
	}
	t, err := parseDate(field, v, loc)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// patchDate interprets an optional date in an update: absent leaves it
// alone, null or blank clears it.
func patchDate(field string, v model.Nullable[string], loc *time.Location) (*time.Time, bool, error) {
	switch {
	case !v.Set:
		return nil, false, nil
	case !v.Valid || strings.TrimSpace(v.Value) == "":
		return nil, true, nil
	}
	t, err := parseDate(field, v.Value, loc)
	if err != nil {
		return nil, false, err
	}
	return &t, false, nil
}

func parseCategory(v string) (model.Category, error) {
	c, err := model.ParseCategory(strings.TrimSpace(v))
	if err != nil {
		return "", apperror.Invalid("category", "%v", err)
	}
	return c, nil
}

func validateCapacity(n *int) error {
	if n != nil && *n < 0 {
		return apperror.Invalid("maxAttendees", "must not be negative")
	}
	return nil
}

func validateEmail(v string) (string, error) {
	v = strings.TrimSpace(v)
	addr, err := mail.ParseAddress(v)
	if err != nil || addr.Address != v || !strings.Contains(v[strings.LastIndex(v, "@")+1:], ".") {
		return "", apperror.Invalid("email", "please enter a valid email address")
	}
	return v, nil
}

// validateAttendee normalises and checks the registration form.
func validateAttendee(in model.AttendeeInfo) (model.AttendeeInfo, error) {
	var err error
	out := model.AttendeeInfo{Notes: strings.TrimSpace(in.Notes)}

	if out.Name, err = minLength("name", in.Name, 2, "name"); err != nil {
		return model.AttendeeInfo{}, err
	}
	if out.Email, err = validateEmail(in.Email); err != nil {
		return model.AttendeeInfo{}, err
	}
	if strings.TrimSpace(in.StudentID) != "" {
		if out.StudentID, err = minLength("studentId", in.StudentID, 5, "student ID"); err != nil {
			return model.AttendeeInfo{}, err
		}
	}
	if strings.TrimSpace(in.Department) != "" {
		if out.Department, err = minLength("department", in.Department, 2, "department"); err != nil {
			return model.AttendeeInfo{}, err
		}
	}
	return out, nil
}
