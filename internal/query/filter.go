// Package query derives views from a task list. Every function is pure: it
// never mutates its input and returns a fresh slice. The current date is
// always passed in explicitly as an ISO 8601 string.
package query

import "github.com/rezkam/gtf/internal/domain"

func filter(tasks []domain.Task, keep func(domain.Task) bool) []domain.Task {
	out := make([]domain.Task, 0, len(tasks))
	for _, t := range tasks {
		if keep(t) {
			out = append(out, t)
		}
	}
	return out
}

// Open returns the tasks that are not done.
func Open(tasks []domain.Task) []domain.Task {
	return filter(tasks, func(t domain.Task) bool { return !t.Done })
}

// Done returns the tasks that are done.
func Done(tasks []domain.Task) []domain.Task {
	return filter(tasks, func(t domain.Task) bool { return t.Done })
}

// DueToday returns open tasks due on today.
func DueToday(tasks []domain.Task, today string) []domain.Task {
	return filter(tasks, func(t domain.Task) bool {
		return !t.Done && t.HasDueDate() && t.DueDate == today
	})
}

// Overdue returns open tasks with a due date before today.
// Dates compare as strings, which orders ISO 8601 dates correctly.
func Overdue(tasks []domain.Task, today string) []domain.Task {
	return filter(tasks, func(t domain.Task) bool {
		return !t.Done && t.HasDueDate() && t.DueDate < today
	})
}

// ByPriority returns open tasks with priority p. A task without a stored
// priority counts as medium.
func ByPriority(tasks []domain.Task, p domain.Priority) []domain.Task {
	return filter(tasks, func(t domain.Task) bool {
		return !t.Done && t.EffectivePriority() == p
	})
}

// ByDepartment returns tasks filed under key, open or done. Tasks without a
// department belong to the default department.
func ByDepartment(tasks []domain.Task, key string) []domain.Task {
	if key == "" {
		key = domain.DefaultDepartment
	}
	return filter(tasks, func(t domain.Task) bool { return t.DepartmentKey() == key })
}
