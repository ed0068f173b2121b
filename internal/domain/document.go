package domain

import (
	"encoding/json"
	"fmt"
	"reflect"

	"github.com/google/uuid"
)

// Document is the whole persisted unit: department labels plus every task.
// It is always read and written as one piece.
type Document struct {
	// Departments is a legacy key list. When present it fixes the display
	// order of department groups; otherwise it is carried through untouched.
	Departments      []string          `json:"departments"`
	DepartmentLabels map[string]string `json:"department_labels"`
	Tasks            []Task            `json:"tasks"`

	Extra map[string]json.RawMessage `json:"-"`
}

type documentFields Document

var documentKeys = jsonKeys(reflect.TypeOf(documentFields{}))

// NewDocument returns an empty document with non-nil collections.
func NewDocument() *Document {
	return &Document{
		Departments:      []string{},
		DepartmentLabels: map[string]string{},
		Tasks:            []Task{},
	}
}

// MarshalJSON encodes the document, always emitting the three collections.
func (d Document) MarshalJSON() ([]byte, error) {
	d.normalize()
	encoded, err := json.Marshal(documentFields(d))
	if err != nil {
		return nil, err
	}
	return mergeExtra(encoded, d.Extra)
}

// UnmarshalJSON decodes the document and keeps unknown top-level members in Extra.
func (d *Document) UnmarshalJSON(data []byte) error {
	var fields documentFields
	if err := json.Unmarshal(data, &fields); err != nil {
		return err
	}
	extra, err := splitExtra(data, documentKeys)
	if err != nil {
		return err
	}
	fields.Extra = extra
	*d = Document(fields)
	d.normalize()
	return nil
}

func (d *Document) normalize() {
	if d.Departments == nil {
		d.Departments = []string{}
	}
	if d.DepartmentLabels == nil {
		d.DepartmentLabels = map[string]string{}
	}
	if d.Tasks == nil {
		d.Tasks = []Task{}
	}
}

// Clone returns a deep copy of the document.
func (d *Document) Clone() *Document {
	out := &Document{
		Departments:      append([]string{}, d.Departments...),
		DepartmentLabels: make(map[string]string, len(d.DepartmentLabels)),
		Tasks:            make([]Task, len(d.Tasks)),
		Extra:            cloneExtra(d.Extra),
	}
	for k, v := range d.DepartmentLabels {
		out.DepartmentLabels[k] = v
	}
	for i, t := range d.Tasks {
		out.Tasks[i] = t.Clone()
	}
	return out
}

// FindTask returns a pointer to the task with the given id, for in-place mutation.
func (d *Document) FindTask(id string) (*Task, error) {
	for i := range d.Tasks {
		if d.Tasks[i].ID == id {
			return &d.Tasks[i], nil
		}
	}
	return nil, fmt.Errorf("%w: %s", ErrTaskNotFound, id)
}

// AddTask appends a task, rejecting an id already present.
func (d *Document) AddTask(t Task) error {
	for i := range d.Tasks {
		if d.Tasks[i].ID == t.ID {
			return fmt.Errorf("%w: %s", ErrDuplicateTaskID, t.ID)
		}
	}
	d.Tasks = append(d.Tasks, t)
	return nil
}

// Validate checks document invariants: every task id is non-empty and unique.
// Loading repairs rather than rejects; see RepairIDs.
func (d *Document) Validate() error {
	seen := make(map[string]struct{}, len(d.Tasks))
	for _, t := range d.Tasks {
		if t.ID == "" {
			return fmt.Errorf("%w: %q", ErrTaskIDRequired, t.Title)
		}
		if _, dup := seen[t.ID]; dup {
			return fmt.Errorf("%w: %s", ErrDuplicateTaskID, t.ID)
		}
		seen[t.ID] = struct{}{}
	}
	return nil
}

// RepairIDs gives every task without an id a name-based id derived from its
// position and content, so the same file yields the same ids until it is
// saved. Tasks sharing an id are kept; FindTask resolves to the first.
// It returns the ids it assigned and the ids held by more than one task.
func (d *Document) RepairIDs() (assigned, duplicates []string) {
	for i := range d.Tasks {
		t := &d.Tasks[i]
		if t.ID != "" {
			continue
		}
		name := fmt.Sprintf("%d\x00%s\x00%s\x00%s", i, t.Title, t.CreatedAt, t.DueDate)
		t.ID = uuid.NewSHA1(uuid.NameSpaceOID, []byte(name)).String()
		assigned = append(assigned, t.ID)
	}

	counts := make(map[string]int, len(d.Tasks))
	for _, t := range d.Tasks {
		counts[t.ID]++
		if counts[t.ID] == 2 {
			duplicates = append(duplicates, t.ID)
		}
	}
	return assigned, duplicates
}
