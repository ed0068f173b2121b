package query

import (
	"errors"
	"fmt"

	"github.com/rezkam/gtf/internal/domain"
)

// View names accepted by Select.
const (
	ViewAll          = "all"
	ViewOpen         = "open"
	ViewDone         = "done"
	ViewToday        = "today"
	ViewOverdue      = "overdue"
	ViewCompleted    = "completed"
	ViewByDepartment = "by_department"
)

// ErrUnknownView is returned by Select for a view name it does not know.
var ErrUnknownView = errors.New("unknown view")

// Select applies a named view. An empty name means ViewAll: open tasks in
// the "All tasks" order.
func Select(view string, tasks []domain.Task, today string) ([]domain.Task, error) {
	switch view {
	case "", ViewAll:
		return SortAll(Open(tasks)), nil
	case ViewOpen:
		return Open(tasks), nil
	case ViewDone:
		return Done(tasks), nil
	case ViewToday:
		v := TodayView(tasks, today)
		return append(v.Overdue, v.DueToday...), nil
	case ViewOverdue:
		return SortToday(Overdue(tasks, today)), nil
	case ViewCompleted:
		return SortCompleted(Done(tasks)), nil
	case ViewByDepartment:
		return SortByDepartment(Open(tasks)), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownView, view)
	}
}

// WithPriority returns tasks with priority p, open or done.
func WithPriority(tasks []domain.Task, p domain.Priority) []domain.Task {
	return filter(tasks, func(t domain.Task) bool { return t.EffectivePriority() == p })
}
