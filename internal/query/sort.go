package query

import (
	"cmp"
	"slices"

	"github.com/rezkam/gtf/internal/domain"
)

// CompletedLimit caps the completed view.
const CompletedLimit = 30

// notHigh sorts high priority tasks first when compared ascending.
func notHigh(t domain.Task) int {
	if t.IsHighPriority() {
		return 0
	}
	return 1
}

func sorted(tasks []domain.Task, less func(a, b domain.Task) int) []domain.Task {
	out := make([]domain.Task, len(tasks))
	copy(out, tasks)
	slices.SortStableFunc(out, less)
	return out
}

// SortToday orders by manual position, unpositioned tasks last, then high
// priority first.
func SortToday(tasks []domain.Task) []domain.Task {
	return sorted(tasks, func(a, b domain.Task) int {
		return cmp.Or(
			cmp.Compare(a.OrderOrDefault(), b.OrderOrDefault()),
			cmp.Compare(notHigh(a), notHigh(b)),
		)
	})
}

// SortAll orders by due date, undated tasks last, then high priority first.
func SortAll(tasks []domain.Task) []domain.Task {
	return sorted(tasks, func(a, b domain.Task) int {
		return cmp.Or(
			cmp.Compare(a.DueDateOrSentinel(), b.DueDateOrSentinel()),
			cmp.Compare(notHigh(a), notHigh(b)),
		)
	})
}

// SortCompleted orders by completion date, newest first, and keeps at most
// CompletedLimit tasks. Tasks without a completion date go last.
func SortCompleted(tasks []domain.Task) []domain.Task {
	out := sorted(tasks, func(a, b domain.Task) int {
		return cmp.Compare(b.CompletedDate, a.CompletedDate)
	})
	if len(out) > CompletedLimit {
		out = out[:CompletedLimit]
	}
	return out
}

// SortByDepartment orders by department key, then due date.
func SortByDepartment(tasks []domain.Task) []domain.Task {
	return sorted(tasks, func(a, b domain.Task) int {
		return cmp.Or(
			cmp.Compare(a.DepartmentKey(), b.DepartmentKey()),
			cmp.Compare(a.DueDateOrSentinel(), b.DueDateOrSentinel()),
		)
	})
}

// sortWithinDepartment is the order used inside a department group:
// high priority first, then due date.
func sortWithinDepartment(tasks []domain.Task) []domain.Task {
	return sorted(tasks, func(a, b domain.Task) int {
		return cmp.Or(
			cmp.Compare(notHigh(a), notHigh(b)),
			cmp.Compare(a.DueDateOrSentinel(), b.DueDateOrSentinel()),
		)
	})
}
