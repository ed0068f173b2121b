package suggestion

import (
	"cmp"
	"fmt"
	"slices"
	"time"

	"github.com/rezkam/gtf/internal/domain"
	"github.com/rezkam/gtf/internal/ptr"
)

// ReminderHour is the local hour at which day-based reminders fire.
const ReminderHour = 9

// ReminderTitlePrefix is prepended to the origin title.
const ReminderTitlePrefix = "Reminder: "

type whenKind int

const (
	whenInTwoHours whenKind = iota + 1
	whenTomorrowMorning
	whenOnDate
)

// When selects the time a reminder fires.
type When struct {
	kind whenKind
	date string
}

// InTwoHours fires two hours from now.
func InTwoHours() When { return When{kind: whenInTwoHours} }

// TomorrowMorning fires at ReminderHour on the next calendar day.
func TomorrowMorning() When { return When{kind: whenTomorrowMorning} }

// OnDate fires at ReminderHour on date (YYYY-MM-DD).
func OnDate(date string) When { return When{kind: whenOnDate, date: date} }

// ParseWhen maps the wire names "in_two_hours", "tomorrow_morning" and
// "on_date" to a When.
func ParseWhen(kind, date string) (When, error) {
	switch kind {
	case "in_two_hours":
		return InTwoHours(), nil
	case "tomorrow_morning":
		return TomorrowMorning(), nil
	case "on_date":
		return OnDate(date), nil
	default:
		return When{}, fmt.Errorf("%w: unknown schedule %q", domain.ErrInvalidReminder, kind)
	}
}

// At resolves the fire time relative to now, in now's location.
func (w When) At(now time.Time) (time.Time, error) {
	switch w.kind {
	case whenInTwoHours:
		return now.Add(2 * time.Hour), nil
	case whenTomorrowMorning:
		y, m, d := now.AddDate(0, 0, 1).Date()
		return time.Date(y, m, d, ReminderHour, 0, 0, 0, now.Location()), nil
	case whenOnDate:
		date, err := domain.NewDate(w.date)
		if err != nil {
			return time.Time{}, fmt.Errorf("%w: %w", domain.ErrInvalidReminder, err)
		}
		if date < domain.FormatDate(now) {
			return time.Time{}, fmt.Errorf("%w: %s is before today", domain.ErrInvalidReminder, date)
		}
		day, _ := time.Parse(domain.DateLayout, date)
		y, m, d := day.Date()
		return time.Date(y, m, d, ReminderHour, 0, 0, 0, now.Location()), nil
	default:
		return time.Time{}, fmt.Errorf("%w: no schedule", domain.ErrInvalidReminder)
	}
}

// NewReminder synthesizes the reminder task for origin. The result has no
// ID; the caller assigns one before inserting it.
func NewReminder(origin domain.Task, when When, now time.Time) (domain.Task, error) {
	if origin.ID == "" {
		return domain.Task{}, domain.ErrTaskIDRequired
	}
	at, err := when.At(now)
	if err != nil {
		return domain.Task{}, err
	}

	return domain.Task{
		Title:          ReminderTitlePrefix + origin.Title,
		Department:     origin.Department,
		Priority:       domain.PriorityHigh,
		DueDate:        domain.FormatDate(at),
		Notes:          origin.ZoyaSuggestion,
		CreatedAt:      domain.FormatDateTime(now),
		IsZoyaReminder: true,
		OriginalTaskID: origin.ID,
		RemindAt:       domain.FormatDateTime(at),
		RemindSent:     ptr.To(false),
	}, nil
}

// Schedule builds the reminder for origin and stamps origin's
// reminder_scheduled time. Origin's workflow status is unchanged.
func Schedule(origin *domain.Task, when When, now time.Time) (domain.Task, error) {
	reminder, err := NewReminder(*origin, when, now)
	if err != nil {
		return domain.Task{}, err
	}
	origin.ReminderScheduled = domain.FormatDateTime(now)
	return reminder, nil
}

// Reminders returns undelivered reminder tasks ordered by fire time.
func Reminders(tasks []domain.Task) []domain.Task {
	out := make([]domain.Task, 0)
	for _, t := range tasks {
		if t.IsPendingReminder() {
			out = append(out, t)
		}
	}
	slices.SortStableFunc(out, func(a, b domain.Task) int {
		return cmp.Compare(a.RemindAt, b.RemindAt)
	})
	return out
}

// DueReminders returns undelivered reminders whose fire time is not after now.
func DueReminders(tasks []domain.Task, now time.Time) []domain.Task {
	cutoff := domain.FormatDateTime(now)
	out := make([]domain.Task, 0)
	for _, t := range Reminders(tasks) {
		if t.RemindAt != "" && t.RemindAt <= cutoff {
			out = append(out, t)
		}
	}
	return out
}

// MarkReminderSent records delivery of a reminder.
func MarkReminderSent(t *domain.Task) error {
	if !t.IsZoyaReminder {
		return fmt.Errorf("%w: %s", domain.ErrNotReminder, t.ID)
	}
	t.RemindSent = ptr.To(true)
	return nil
}
