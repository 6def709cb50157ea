package validation

import (
	"strings"
	"time"
)

type Violations map[string]string

func (v Violations) Empty() bool { return len(v) == 0 }

// Basic validators
func Required(field, value string, v Violations) {
	if strings.TrimSpace(value) == "" {
		v[field] = "required"
	}
}

func Email(field, value string, v Violations) {
	s := strings.TrimSpace(value)
	at := strings.Index(s, "@")
	if at <= 0 || at == len(s)-1 || !strings.Contains(s[at:], ".") {
		v[field] = "invalid_email"
	}
}

// DateOrder flags the field when end falls before start.
func DateOrder(field string, start, end time.Time, v Violations) {
	if end.Before(start) {
		v[field] = "end_before_start"
	}
}

// DateNotPast flags the field when the date falls strictly before today.
func DateNotPast(field string, d, today time.Time, v Violations) {
	if d.Before(today) {
		v[field] = "in_the_past"
	}
}

// OneOf flags the field when value is not among allowed.
func OneOf(field, value string, allowed []string, v Violations) {
	for _, a := range allowed {
		if value == a {
			return
		}
	}
	v[field] = "invalid_value"
}
