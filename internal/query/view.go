package query

import "github.com/rezkam/gtf/internal/domain"

// Summary is the dashboard stat row.
type Summary struct {
	Open         int `json:"open"`
	DueToday     int `json:"due_today"`
	Overdue      int `json:"overdue"`
	HighPriority int `json:"high_priority"`
}

// Summarize counts open, due-today, overdue and high priority open tasks.
func Summarize(tasks []domain.Task, today string) Summary {
	return Summary{
		Open:         len(Open(tasks)),
		DueToday:     len(DueToday(tasks, today)),
		Overdue:      len(Overdue(tasks, today)),
		HighPriority: len(ByPriority(tasks, domain.PriorityHigh)),
	}
}

// Today is the "today" screen: overdue work first, then what is due today.
type Today struct {
	Overdue  []domain.Task `json:"overdue"`
	DueToday []domain.Task `json:"due_today"`
}

// TodayView builds both sections in today ordering.
func TodayView(tasks []domain.Task, today string) Today {
	return Today{
		Overdue:  SortToday(Overdue(tasks, today)),
		DueToday: SortToday(DueToday(tasks, today)),
	}
}

// Due labels.
const (
	DueLabelOverdue = "Overdue"
	DueLabelToday   = "Today"
)

// DueLabel describes a task's due date relative to today: DueLabelOverdue,
// DueLabelToday, the date itself when later, or "" when undated.
func DueLabel(t domain.Task, today string) string {
	switch {
	case !t.HasDueDate():
		return ""
	case t.DueDate < today:
		return DueLabelOverdue
	case t.DueDate == today:
		return DueLabelToday
	default:
		return t.DueDate
	}
}
