package domain

import (
	"fmt"
	"strings"
	"time"
	"unicode/utf8"
)

// MaxTitleLength is the maximum number of characters in a task title.
const MaxTitleLength = 255

// Title is a validated title value object (1-255 characters).
type Title struct {
	value string
}

// NewTitle creates a new Title, validating the input.
func NewTitle(s string) (Title, error) {
	s = strings.TrimSpace(s)

	if s == "" {
		return Title{}, ErrTitleRequired
	}

	if utf8.RuneCountInString(s) > MaxTitleLength {
		return Title{}, ErrTitleTooLong
	}

	return Title{value: s}, nil
}

// String returns the title value.
func (t Title) String() string {
	return t.value
}

// NewPriority validates and creates a Priority.
// Empty input yields the default (medium).
func NewPriority(s string) (Priority, error) {
	if strings.TrimSpace(s) == "" {
		return PriorityMedium, nil
	}

	p := Priority(strings.ToLower(strings.TrimSpace(s)))

	switch p {
	case PriorityHigh, PriorityMedium, PriorityLow:
		return p, nil
	default:
		return "", fmt.Errorf("%w: %s", ErrInvalidPriority, s)
	}
}

// NewSuggestionStatus validates and creates a SuggestionStatus.
func NewSuggestionStatus(s string) (SuggestionStatus, error) {
	status := SuggestionStatus(strings.ToLower(strings.TrimSpace(s)))

	switch status {
	case SuggestionSuggested, SuggestionApproved, SuggestionDenied,
		SuggestionChatNow, SuggestionCompleted:
		return status, nil
	default:
		return "", fmt.Errorf("%w: %s", ErrInvalidSuggestionStatus, s)
	}
}

// NewDate validates an ISO 8601 calendar date (YYYY-MM-DD).
// Date ordering throughout the system is lexicographic, which is only
// correct for this exact layout.
func NewDate(s string) (string, error) {
	s = strings.TrimSpace(s)
	t, err := time.Parse(DateLayout, s)
	if err != nil || t.Format(DateLayout) != s {
		return "", fmt.Errorf("%w: %q", ErrInvalidDate, s)
	}
	return s, nil
}

// FormatDate renders t as an ISO 8601 calendar date in t's location.
func FormatDate(t time.Time) string {
	return t.Format(DateLayout)
}

// FormatDateTime renders t as an ISO 8601 local datetime without offset.
func FormatDateTime(t time.Time) string {
	return t.Format(DateTimeLayout)
}
