package domain

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

const (
	maxTitleLen       = 120
	maxDescriptionLen = 5000
	maxPostLen        = 2000
)

// Validate checks a job submitted from the listing form.
func (j *Job) Validate() error {
	v := &ValidationError{}
	checkTitle(v, j.Title)
	if utf8.RuneCountInString(j.Description) > maxDescriptionLen {
		v.add(fmt.Sprintf("description must be at most %d characters", maxDescriptionLen))
	}
	if j.Rate < 0 {
		v.add("rate must not be negative")
	}
	if j.StartsAt != nil && j.ClosesAt != nil && !j.ClosesAt.After(*j.StartsAt) {
		v.add("closes_at must be after starts_at")
	}
	return v.orNil()
}

// Validate checks an event submitted from the event form.
func (e *Event) Validate() error {
	v := &ValidationError{}
	checkTitle(v, e.Title)
	if utf8.RuneCountInString(e.Description) > maxDescriptionLen {
		v.add(fmt.Sprintf("description must be at most %d characters", maxDescriptionLen))
	}
	if e.StartsAt.IsZero() {
		v.add("starts_at is required")
	}
	if e.EndsAt != nil && !e.EndsAt.After(e.StartsAt) {
		v.add("ends_at must be after starts_at")
	}
	return v.orNil()
}

// Validate checks a feed post.
func (p *Post) Validate() error {
	v := &ValidationError{}
	n := utf8.RuneCountInString(strings.TrimSpace(p.Body))
	if n == 0 {
		v.add("body is required")
	} else if n > maxPostLen {
		v.add(fmt.Sprintf("body must be at most %d characters", maxPostLen))
	}
	return v.orNil()
}

func checkTitle(v *ValidationError, title string) {
	n := utf8.RuneCountInString(strings.TrimSpace(title))
	switch {
	case n == 0:
		v.add("title is required")
	case n > maxTitleLen:
		v.add(fmt.Sprintf("title must be at most %d characters", maxTitleLen))
	}
}

// Validate checks a location. Missing coordinates are allowed; present ones must be in range.
func (l *Location) Validate() error {
	v := &ValidationError{}
	if strings.TrimSpace(l.Name) == "" {
		v.add("name is required")
	}
	if (l.Longitude == nil) != (l.Latitude == nil) {
		v.add("longitude and latitude must be given together")
	} else if l.Longitude != nil {
		if _, ok := l.Point(); !ok {
			v.add("coordinates are out of range")
		}
	}
	return v.orNil()
}
