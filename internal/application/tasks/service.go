// Package tasks exposes the mutation entry points of the dashboard.
// Every operation loads the document, applies one change and saves it back.
package tasks

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rezkam/gtf/internal/domain"
	"github.com/rezkam/gtf/internal/ptr"
	"github.com/rezkam/gtf/internal/suggestion"
)

// Config holds configuration for the Service.
type Config struct {
	// Now returns the current time. Defaults to time.Now.
	Now func() time.Time

	// Location is the zone that decides what "today" is. Defaults to time.Local.
	Location *time.Location
}

// Service provides the task mutations. Operations are serialized so that
// concurrent callers never interleave a load and a save.
type Service struct {
	store DocumentStore
	now   func() time.Time
	loc   *time.Location
	mu    sync.Mutex
}

// Mutation is the result of a write. Task is the affected task, nil for
// document-level changes. Saved mirrors the boolean save outcome: true when
// the local write succeeded. RemoteSaved is only meaningful when
// RemoteAttempted is set.
type Mutation struct {
	Task            *domain.Task
	Saved           bool
	RemoteAttempted bool
	RemoteSaved     bool
}

// CreateTaskParams describes a new task. Empty optional fields take the
// document defaults.
type CreateTaskParams struct {
	Title          string
	Department     string
	Priority       string
	DueDate        string
	Notes          string
	ZoyaCanHelp    *bool
	ZoyaSuggestion string
}

// NewService creates a new task service over store.
func NewService(store DocumentStore, config Config) *Service {
	if config.Now == nil {
		config.Now = time.Now
	}
	if config.Location == nil {
		config.Location = time.Local
	}
	return &Service{
		store: store,
		now:   config.Now,
		loc:   config.Location,
	}
}

// Now returns the current time in the service's location.
func (s *Service) Now() time.Time {
	return s.now().In(s.loc)
}

// Today returns the current date as YYYY-MM-DD in the service's location.
func (s *Service) Today() string {
	return domain.FormatDate(s.Now())
}

// Document returns a snapshot of the current document. The caller owns it.
func (s *Service) Document(ctx context.Context) *domain.Document {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.store.Load(ctx)
}

// GetTask retrieves a single task by id.
func (s *Service) GetTask(ctx context.Context, id string) (domain.Task, error) {
	if id == "" {
		return domain.Task{}, domain.ErrTaskNotFound
	}
	doc := s.Document(ctx)
	task, err := doc.FindTask(id)
	if err != nil {
		return domain.Task{}, err
	}
	return task.Clone(), nil
}

// mutate runs fn against a freshly loaded document and saves the result.
// Nothing is saved when fn fails.
func (s *Service) mutate(ctx context.Context, fn func(doc *domain.Document) (*domain.Task, string, error)) (Mutation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc := s.store.Load(ctx)
	task, message, err := fn(doc)
	if err != nil {
		return Mutation{}, err
	}

	res := s.store.Save(ctx, doc, message)
	m := Mutation{Saved: res.OK(), RemoteAttempted: res.RemoteAttempted, RemoteSaved: res.RemoteSaved()}
	if task != nil {
		clone := task.Clone()
		m.Task = &clone
	}
	return m, nil
}

// mutateTask is mutate for operations on the task with the given id.
func (s *Service) mutateTask(ctx context.Context, id string, fn func(t *domain.Task) (string, error)) (Mutation, error) {
	return s.mutate(ctx, func(doc *domain.Document) (*domain.Task, string, error) {
		task, err := doc.FindTask(id)
		if err != nil {
			return nil, "", err
		}
		message, err := fn(task)
		if err != nil {
			return nil, "", err
		}
		return task, message, nil
	})
}

func newID() (string, error) {
	id, err := uuid.NewV7()
	if err != nil {
		return "", fmt.Errorf("failed to generate id: %w", err)
	}
	return id.String(), nil
}

// CreateTask appends a new open task.
func (s *Service) CreateTask(ctx context.Context, params CreateTaskParams) (Mutation, error) {
	title, err := domain.NewTitle(params.Title)
	if err != nil {
		return Mutation{}, err
	}
	priority, err := domain.NewPriority(params.Priority)
	if err != nil {
		return Mutation{}, err
	}
	if params.DueDate != "" {
		if _, err := domain.NewDate(params.DueDate); err != nil {
			return Mutation{}, err
		}
	}
	department := strings.TrimSpace(params.Department)
	if department == "" {
		department = domain.DefaultDepartment
	}

	id, err := newID()
	if err != nil {
		return Mutation{}, err
	}

	task := domain.Task{
		ID:             id,
		Title:          title.String(),
		Department:     department,
		Priority:       priority,
		DueDate:        params.DueDate,
		Notes:          params.Notes,
		CreatedAt:      domain.FormatDateTime(s.Now()),
		ZoyaCanHelp:    ptr.Clone(params.ZoyaCanHelp),
		ZoyaSuggestion: params.ZoyaSuggestion,
	}

	return s.mutate(ctx, func(doc *domain.Document) (*domain.Task, string, error) {
		if err := doc.AddTask(task); err != nil {
			return nil, "", err
		}
		return &doc.Tasks[len(doc.Tasks)-1], "Add task: " + task.Title, nil
	})
}

// UpdateTask edits the fields named in params.UpdateMask.
func (s *Service) UpdateTask(ctx context.Context, params domain.UpdateTaskParams) (Mutation, error) {
	if params.TaskID == "" {
		return Mutation{}, domain.ErrTaskNotFound
	}
	if err := params.Validate(); err != nil {
		return Mutation{}, err
	}
	return s.mutateTask(ctx, params.TaskID, func(t *domain.Task) (string, error) {
		params.Apply(t)
		return "Edit task: " + t.Title, nil
	})
}

// SetDone marks a task done or open.
//
// Marking an open task done stamps completed_date with today. Marking an
// already-done task done again changes nothing. Reopening keeps
// completed_date.
func (s *Service) SetDone(ctx context.Context, id string, done bool) (Mutation, error) {
	return s.mutateTask(ctx, id, func(t *domain.Task) (string, error) {
		if !done {
			t.Done = false
			return "Reopen task: " + t.Title, nil
		}
		if !t.Done {
			t.Done = true
			t.CompletedDate = s.Today()
		}
		return "Complete task: " + t.Title, nil
	})
}

// Reschedule moves a task's due date. An empty date clears it.
func (s *Service) Reschedule(ctx context.Context, id, date string) (Mutation, error) {
	if date != "" {
		if _, err := domain.NewDate(date); err != nil {
			return Mutation{}, err
		}
	}
	return s.mutateTask(ctx, id, func(t *domain.Task) (string, error) {
		t.DueDate = date
		t.ClearExtra(domain.FieldDueDate)
		if date == "" {
			return "Unschedule task: " + t.Title, nil
		}
		return fmt.Sprintf("Reschedule task: %s to %s", t.Title, date), nil
	})
}

// Reorder assigns manual positions 0..n-1 to the tasks in ids, in that
// order. Tasks not listed keep their position.
func (s *Service) Reorder(ctx context.Context, ids []string) (Mutation, error) {
	seen := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		if _, dup := seen[id]; dup {
			return Mutation{}, fmt.Errorf("%w: %s", domain.ErrDuplicateTaskID, id)
		}
		seen[id] = struct{}{}
	}

	return s.mutate(ctx, func(doc *domain.Document) (*domain.Task, string, error) {
		targets := make([]*domain.Task, 0, len(ids))
		for _, id := range ids {
			task, err := doc.FindTask(id)
			if err != nil {
				return nil, "", err
			}
			targets = append(targets, task)
		}
		for i, task := range targets {
			task.Order = ptr.To(i)
		}
		return nil, fmt.Sprintf("Reorder %d tasks", len(ids)), nil
	})
}

// SetDepartmentLabel sets the display name of a department. An empty label
// removes the mapping, after which the department renders with its raw key.
func (s *Service) SetDepartmentLabel(ctx context.Context, key, label string) (Mutation, error) {
	key = strings.TrimSpace(key)
	if key == "" {
		return Mutation{}, domain.ErrInvalidDepartment
	}
	label = strings.TrimSpace(label)

	return s.mutate(ctx, func(doc *domain.Document) (*domain.Task, string, error) {
		if label == "" {
			delete(doc.DepartmentLabels, key)
			return nil, "Remove department label: " + key, nil
		}
		doc.DepartmentLabels[key] = label
		return nil, fmt.Sprintf("Label department: %s as %s", key, label), nil
	})
}

func (s *Service) transition(ctx context.Context, id, verb string, fn func(*domain.Task, time.Time) error) (Mutation, error) {
	return s.mutateTask(ctx, id, func(t *domain.Task) (string, error) {
		if err := fn(t, s.Now()); err != nil {
			return "", err
		}
		return verb + " suggestion: " + t.Title, nil
	})
}

// Approve hands a suggested task to the assistant.
func (s *Service) Approve(ctx context.Context, id string) (Mutation, error) {
	return s.transition(ctx, id, "Approve", suggestion.Approve)
}

// Deny rejects a suggestion.
func (s *Service) Deny(ctx context.Context, id string) (Mutation, error) {
	return s.transition(ctx, id, "Deny", suggestion.Deny)
}

// ChatNow records a request to discuss a suggested task now.
func (s *Service) ChatNow(ctx context.Context, id string) (Mutation, error) {
	return s.transition(ctx, id, "Chat about", suggestion.ChatNow)
}

// CompleteSuggestion marks the assistant's work on a task finished.
func (s *Service) CompleteSuggestion(ctx context.Context, id string) (Mutation, error) {
	return s.transition(ctx, id, "Complete", suggestion.Complete)
}

// ScheduleReminder appends a reminder task for the task with the given id.
// The returned Mutation carries the new reminder task.
func (s *Service) ScheduleReminder(ctx context.Context, id string, when suggestion.When) (Mutation, error) {
	reminderID, err := newID()
	if err != nil {
		return Mutation{}, err
	}

	return s.mutate(ctx, func(doc *domain.Document) (*domain.Task, string, error) {
		origin, err := doc.FindTask(id)
		if err != nil {
			return nil, "", err
		}
		reminder, err := suggestion.Schedule(origin, when, s.Now())
		if err != nil {
			return nil, "", err
		}
		reminder.ID = reminderID
		// origin points into doc.Tasks; it is not used after the append.
		if err := doc.AddTask(reminder); err != nil {
			return nil, "", err
		}
		return &doc.Tasks[len(doc.Tasks)-1], fmt.Sprintf("Schedule reminder: %s at %s", reminder.Title, reminder.RemindAt), nil
	})
}

// MarkReminderSent records that a reminder was delivered.
func (s *Service) MarkReminderSent(ctx context.Context, id string) (Mutation, error) {
	return s.mutateTask(ctx, id, func(t *domain.Task) (string, error) {
		if err := suggestion.MarkReminderSent(t); err != nil {
			return "", err
		}
		return "Reminder sent: " + t.Title, nil
	})
}
