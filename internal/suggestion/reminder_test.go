package suggestion

import (
	"errors"
	"testing"
	"time"

	"github.com/rezkam/gtf/internal/domain"
	"github.com/rezkam/gtf/internal/ptr"
	"github.com/rezkam/gtf/internal/query"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWhen_At(t *testing.T) {
	late := time.Date(2024, 1, 5, 23, 15, 0, 0, time.UTC)

	tests := []struct {
		name string
		when When
		now  time.Time
		want time.Time
	}{
		{"in two hours", InTwoHours(), now, time.Date(2024, 1, 5, 16, 30, 0, 0, time.UTC)},
		{"in two hours crosses midnight", InTwoHours(), late, time.Date(2024, 1, 6, 1, 15, 0, 0, time.UTC)},
		{"tomorrow morning", TomorrowMorning(), now, time.Date(2024, 1, 6, 9, 0, 0, 0, time.UTC)},
		{"tomorrow morning at month end", TomorrowMorning(), time.Date(2024, 1, 31, 8, 0, 0, 0, time.UTC), time.Date(2024, 2, 1, 9, 0, 0, 0, time.UTC)},
		{"custom date", OnDate("2024-03-10"), now, time.Date(2024, 3, 10, 9, 0, 0, 0, time.UTC)},
		{"custom date today after nine", OnDate("2024-01-05"), now, time.Date(2024, 1, 5, 9, 0, 0, 0, time.UTC)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := tt.when.At(tt.now)
			require.NoError(t, err)
			assert.True(t, tt.want.Equal(got), "want %s, got %s", tt.want, got)
		})
	}
}

func TestWhen_AtUsesLocation(t *testing.T) {
	loc := time.FixedZone("UTC+3", 3*60*60)
	got, err := TomorrowMorning().At(time.Date(2024, 1, 5, 22, 0, 0, 0, loc))
	require.NoError(t, err)
	assert.Equal(t, "2024-01-06T09:00:00", domain.FormatDateTime(got))
}

func TestWhen_AtRejectsInvalid(t *testing.T) {
	for _, w := range []When{OnDate("not-a-date"), OnDate("2024-01-04"), OnDate("2023-12-31"), {}} {
		_, err := w.At(now)
		assert.True(t, errors.Is(err, domain.ErrInvalidReminder), "%+v: %v", w, err)
	}
}

func TestParseWhen(t *testing.T) {
	w, err := ParseWhen("tomorrow_morning", "")
	require.NoError(t, err)
	assert.Equal(t, TomorrowMorning(), w)

	w, err = ParseWhen("on_date", "2024-02-01")
	require.NoError(t, err)
	assert.Equal(t, OnDate("2024-02-01"), w)

	_, err = ParseWhen("next_week", "")
	assert.True(t, errors.Is(err, domain.ErrInvalidReminder))
}

func TestNewReminder(t *testing.T) {
	origin := domain.Task{
		ID:             "42",
		Title:          "Draft newsletter",
		Department:     "content",
		Priority:       domain.PriorityLow,
		ZoyaCanHelp:    ptr.To(true),
		ZoyaSuggestion: "I can write the first draft",
	}

	reminder, err := NewReminder(origin, TomorrowMorning(), now)
	require.NoError(t, err)

	assert.Empty(t, reminder.ID)
	assert.Equal(t, "Reminder: Draft newsletter", reminder.Title)
	assert.Equal(t, "content", reminder.Department)
	assert.Equal(t, domain.PriorityHigh, reminder.Priority)
	assert.Equal(t, "2024-01-06", reminder.DueDate)
	assert.Equal(t, "I can write the first draft", reminder.Notes)
	assert.True(t, reminder.IsZoyaReminder)
	assert.Equal(t, "42", reminder.OriginalTaskID)
	assert.Equal(t, "2024-01-06T09:00:00", reminder.RemindAt)
	require.NotNil(t, reminder.RemindSent)
	assert.False(t, *reminder.RemindSent)
	assert.False(t, reminder.Done)
	assert.False(t, reminder.CanHelp(), "reminders do not re-enter the workflow")
}

func TestSchedule_KeepsOriginInViews(t *testing.T) {
	origin := eligible("42")
	tasks := []domain.Task{origin}

	reminder, err := Schedule(&tasks[0], TomorrowMorning(), now)
	require.NoError(t, err)
	reminder.ID = "43"
	tasks = append(tasks, reminder)

	assert.Equal(t, "2024-01-05T14:30:00", tasks[0].ReminderScheduled)
	assert.Equal(t, domain.SuggestionSuggested, tasks[0].EffectiveSuggestionStatus())
	assert.Equal(t, []string{"42", "43"}, taskIDs(query.Open(tasks)))
	assert.Equal(t, []string{"42"}, taskIDs(Suggestions(tasks)))

	var reminders []domain.Task
	for _, task := range tasks {
		if task.IsZoyaReminder {
			reminders = append(reminders, task)
		}
	}
	require.Len(t, reminders, 1)
	assert.Equal(t, "42", reminders[0].OriginalTaskID)
}

func TestSchedule_FailureLeavesOriginUntouched(t *testing.T) {
	origin := eligible("42")
	_, err := Schedule(&origin, OnDate("bad"), now)
	require.Error(t, err)
	assert.Empty(t, origin.ReminderScheduled)
}

func TestRemindersAndDelivery(t *testing.T) {
	tasks := []domain.Task{
		{ID: "later", IsZoyaReminder: true, RemindAt: "2024-01-06T09:00:00", RemindSent: ptr.To(false)},
		{ID: "sooner", IsZoyaReminder: true, RemindAt: "2024-01-05T10:00:00", RemindSent: ptr.To(false)},
		{ID: "sent", IsZoyaReminder: true, RemindAt: "2024-01-04T10:00:00", RemindSent: ptr.To(true)},
		{ID: "plain"},
	}

	assert.Equal(t, []string{"sooner", "later"}, taskIDs(Reminders(tasks)))
	assert.Equal(t, []string{"sooner"}, taskIDs(DueReminders(tasks, now)))

	require.NoError(t, MarkReminderSent(&tasks[1]))
	assert.Equal(t, []string{"later"}, taskIDs(Reminders(tasks)))

	assert.True(t, errors.Is(MarkReminderSent(&tasks[3]), domain.ErrNotReminder))
}
