package domain

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/rezkam/gtf/internal/ptr"
)

// Task is a single to-do record.
//
// Optional fields use their zero value (or nil pointer) for "absent"; the
// accessor methods below apply the documented defaults. Any JSON member the
// encoded struct would not carry is preserved in Extra and written back
// unchanged: unknown keys, explicit zero values and members of the wrong type.
type Task struct {
	ID         string   `json:"id"`
	Title      string   `json:"title"`
	Department string   `json:"department,omitempty"`
	Priority   Priority `json:"priority,omitempty"`
	DueDate    string   `json:"due_date,omitempty"` // YYYY-MM-DD
	Notes      string   `json:"notes,omitempty"`
	CreatedAt  string   `json:"created_at,omitempty"`

	Done          bool   `json:"done"`
	CompletedDate string `json:"completed_date,omitempty"` // YYYY-MM-DD; kept when Done reverts

	// Order is a manual position relative to other tasks in the same view.
	Order *int `json:"order,omitempty"`

	// Suggestion workflow
	ZoyaCanHelp         *bool            `json:"zoya_can_help,omitempty"`
	ZoyaStatus          SuggestionStatus `json:"zoya_status,omitempty"`
	ZoyaSuggestion      string           `json:"zoya_suggestion,omitempty"`
	ZoyaApprovedAt      string           `json:"zoya_approved_at,omitempty"`
	ZoyaChatRequestedAt string           `json:"zoya_chat_requested_at,omitempty"`
	ZoyaCompletedAt     string           `json:"zoya_completed_at,omitempty"`
	ReminderScheduled   string           `json:"reminder_scheduled,omitempty"`

	// Reminder records
	IsZoyaReminder bool   `json:"is_zoya_reminder,omitempty"`
	OriginalTaskID string `json:"original_task_id,omitempty"`
	RemindAt       string `json:"remind_at,omitempty"` // YYYY-MM-DDTHH:MM:SS local
	RemindSent     *bool  `json:"remind_sent,omitempty"`

	Extra map[string]json.RawMessage `json:"-"`

	decodeErr error
}

// taskFields has Task's layout without its JSON methods.
type taskFields Task

// MarshalJSON encodes the modelled fields and re-attaches Extra members the
// encoding does not already carry.
func (t Task) MarshalJSON() ([]byte, error) {
	encoded, err := json.Marshal(taskFields(t))
	if err != nil {
		return nil, err
	}
	return mergeExtra(encoded, t.Extra, t.heldKeys()...)
}

// heldKeys returns the always-encoded members whose raw value was kept in
// Extra and whose field has not been set since, so the raw value is written
// back instead of the zero value.
func (t Task) heldKeys() []string {
	var keys []string
	for key, unset := range map[string]bool{"id": t.ID == "", "title": t.Title == "", "done": !t.Done} {
		if _, held := t.Extra[key]; held && unset {
			keys = append(keys, key)
		}
	}
	return keys
}

// mistypedKeys returns the always-encoded members of raw whose JSON type
// does not fit the field.
func mistypedKeys(raw map[string]json.RawMessage) []string {
	var keys []string
	var str string
	var flag bool
	for key, target := range map[string]any{"id": &str, "title": &str, "done": &flag} {
		if v, ok := raw[key]; ok && json.Unmarshal(v, target) != nil {
			keys = append(keys, key)
		}
	}
	return keys
}

// UnmarshalJSON decodes the modelled fields and keeps every other member in
// Extra. A member of the wrong type does not fail the decode: the field is
// left at its zero value, the raw member stays in Extra (and is written back
// until the field is set) and the error is reported by DecodeError.
func (t *Task) UnmarshalJSON(data []byte) error {
	var fields taskFields
	var typeErr *json.UnmarshalTypeError
	if err := json.Unmarshal(data, &fields); err != nil {
		if !errors.As(err, &typeErr) {
			return err
		}
	}

	emitted, err := encodedKeys(fields)
	if err != nil {
		return err
	}
	if typeErr != nil {
		var raw map[string]json.RawMessage
		if err := json.Unmarshal(data, &raw); err != nil {
			return err
		}
		for _, key := range mistypedKeys(raw) {
			delete(emitted, key)
		}
	}
	extra, err := splitExtra(data, emitted)
	if err != nil {
		return err
	}
	fields.Extra = extra
	if typeErr != nil {
		fields.decodeErr = fmt.Errorf("%w: %w", ErrInvalidTaskField, typeErr)
	}
	*t = Task(fields)
	return nil
}

// DecodeError returns the first field type mismatch met while decoding the
// task, or nil.
func (t Task) DecodeError() error {
	return t.decodeErr
}

// ClearExtra forgets a preserved member so an edit to the modelled field wins
// on the next encode.
func (t *Task) ClearExtra(key string) {
	delete(t.Extra, key)
	if len(t.Extra) == 0 {
		t.Extra = nil
	}
}

// DepartmentKey returns the department, falling back to DefaultDepartment.
func (t Task) DepartmentKey() string {
	if t.Department == "" {
		return DefaultDepartment
	}
	return t.Department
}

// EffectivePriority returns the stored priority or PriorityMedium when absent.
func (t Task) EffectivePriority() Priority {
	if t.Priority == "" {
		return PriorityMedium
	}
	return t.Priority
}

// IsHighPriority reports whether the task sorts into the high-priority bucket.
func (t Task) IsHighPriority() bool {
	return t.EffectivePriority() == PriorityHigh
}

// OrderOrDefault returns the manual position, DefaultOrder when unset.
func (t Task) OrderOrDefault() int {
	return ptr.Deref(t.Order, DefaultOrder)
}

// HasDueDate reports whether a due date is set.
func (t Task) HasDueDate() bool {
	return t.DueDate != ""
}

// DueDateOrSentinel returns the due date, NoDueDateSentinel when unset.
func (t Task) DueDateOrSentinel() string {
	if t.DueDate == "" {
		return NoDueDateSentinel
	}
	return t.DueDate
}

// CanHelp reports whether the task is marked eligible for the suggestion workflow.
func (t Task) CanHelp() bool {
	return ptr.Deref(t.ZoyaCanHelp, false)
}

// EffectiveSuggestionStatus returns the stored workflow status.
// An eligible task without a status is SuggestionSuggested; an ineligible
// task without a status has none ("").
func (t Task) EffectiveSuggestionStatus() SuggestionStatus {
	if t.ZoyaStatus != "" {
		return t.ZoyaStatus
	}
	if t.CanHelp() {
		return SuggestionSuggested
	}
	return ""
}

// IsPendingReminder reports whether the task is a reminder that has not been delivered.
func (t Task) IsPendingReminder() bool {
	return t.IsZoyaReminder && !t.Done && !ptr.Deref(t.RemindSent, false)
}

// Clone returns a deep copy of the task.
func (t Task) Clone() Task {
	out := t
	out.Order = ptr.Clone(t.Order)
	out.ZoyaCanHelp = ptr.Clone(t.ZoyaCanHelp)
	out.RemindSent = ptr.Clone(t.RemindSent)
	out.Extra = cloneExtra(t.Extra)
	return out
}
