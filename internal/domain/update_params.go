package domain

import (
	"fmt"
	"slices"

	"github.com/rezkam/gtf/internal/ptr"
)

// Field names accepted in UpdateTaskParams.UpdateMask.
// Title is not editable.
const (
	FieldDueDate        = "due_date"
	FieldPriority       = "priority"
	FieldNotes          = "notes"
	FieldDepartment     = "department"
	FieldOrder          = "order"
	FieldZoyaCanHelp    = "zoya_can_help"
	FieldZoyaSuggestion = "zoya_suggestion"
)

var updateTaskValidFields = map[string]struct{}{
	FieldDueDate:        {},
	FieldPriority:       {},
	FieldNotes:          {},
	FieldDepartment:     {},
	FieldOrder:          {},
	FieldZoyaCanHelp:    {},
	FieldZoyaSuggestion: {},
}

// UpdateTaskParams contains parameters for editing a task with field mask support.
//
// Only fields listed in UpdateMask are modified. For optional fields, a nil
// value (or empty string for DueDate/Notes) with the field in the mask clears it.
type UpdateTaskParams struct {
	TaskID     string
	UpdateMask []string

	DueDate        *string
	Priority       *Priority
	Notes          *string
	Department     *string
	Order          *int
	ZoyaCanHelp    *bool
	ZoyaSuggestion *string
}

// Has reports whether field is in the update mask.
func (p UpdateTaskParams) Has(field string) bool {
	return slices.Contains(p.UpdateMask, field)
}

// Validate checks that UpdateMask contains only known fields and that
// required fields have valid values when included in the mask.
func (p UpdateTaskParams) Validate() error {
	if len(p.UpdateMask) == 0 {
		return ErrEmptyUpdateMask
	}

	for _, field := range p.UpdateMask {
		if _, ok := updateTaskValidFields[field]; !ok {
			return fmt.Errorf("%w: %s", ErrUnknownUpdateField, field)
		}
	}

	if p.Has(FieldPriority) {
		if p.Priority == nil {
			return fmt.Errorf("%w: priority cannot be cleared", ErrInvalidPriority)
		}
		if _, err := NewPriority(string(*p.Priority)); err != nil || *p.Priority == "" {
			return fmt.Errorf("%w: %q", ErrInvalidPriority, *p.Priority)
		}
	}
	if p.Has(FieldDepartment) && (p.Department == nil || *p.Department == "") {
		return ErrInvalidDepartment
	}
	if p.Has(FieldOrder) && p.Order != nil && *p.Order < 0 {
		return ErrInvalidOrder
	}
	if p.Has(FieldDueDate) && p.DueDate != nil && *p.DueDate != "" {
		if _, err := NewDate(*p.DueDate); err != nil {
			return err
		}
	}

	return nil
}

// Apply writes the masked fields onto t. Call Validate first.
func (p UpdateTaskParams) Apply(t *Task) {
	for _, field := range p.UpdateMask {
		t.ClearExtra(field)
		switch field {
		case FieldDueDate:
			t.DueDate = ""
			if p.DueDate != nil {
				t.DueDate = *p.DueDate
			}
		case FieldPriority:
			t.Priority = *p.Priority
		case FieldNotes:
			t.Notes = ""
			if p.Notes != nil {
				t.Notes = *p.Notes
			}
		case FieldDepartment:
			t.Department = *p.Department
		case FieldOrder:
			t.Order = ptr.Clone(p.Order)
		case FieldZoyaCanHelp:
			t.ZoyaCanHelp = ptr.Clone(p.ZoyaCanHelp)
		case FieldZoyaSuggestion:
			t.ZoyaSuggestion = ""
			if p.ZoyaSuggestion != nil {
				t.ZoyaSuggestion = *p.ZoyaSuggestion
			}
		}
	}
}
