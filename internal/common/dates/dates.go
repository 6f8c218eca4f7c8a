// Package dates converts the calendar dates used by project and task
// payloads. Dates travel as "2006-01-02"; full RFC 3339 timestamps are
// accepted on input and truncated to their UTC date.
package dates

import (
	"time"

	"github.com/samatacc/buildtrack-pro-emer-test-sub004/internal/common/apperr"
)

const Layout = "2006-01-02"

// Parse reads s as a date. Empty input yields nil.
func Parse(field, s string) (*time.Time, error) {
	if s == "" {
		return nil, nil
	}
	if t, err := time.Parse(Layout, s); err == nil {
		return &t, nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return nil, apperr.Validation(field, "expected a date like 2024-03-15")
	}
	t = t.UTC().Truncate(24 * time.Hour)
	return &t, nil
}

// Format renders t as a date, or nil.
func Format(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := t.UTC().Format(Layout)
	return &s
}

// Before reports whether end is strictly before start. Missing ends never are.
func Before(end, start *time.Time) bool {
	return end != nil && start != nil && end.Before(*start)
}
