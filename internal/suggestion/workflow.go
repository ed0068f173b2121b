// Package suggestion implements the assistant-suggestion workflow on tasks
// and the synthesis of reminder tasks.
package suggestion

import (
	"fmt"
	"slices"
	"time"

	"github.com/rezkam/gtf/internal/domain"
	"github.com/rezkam/gtf/internal/ptr"
)

// transitions lists, per target status, the statuses it may be reached from.
var transitions = map[domain.SuggestionStatus][]domain.SuggestionStatus{
	domain.SuggestionApproved:  {domain.SuggestionSuggested, domain.SuggestionChatNow},
	domain.SuggestionDenied:    {domain.SuggestionSuggested, domain.SuggestionChatNow},
	domain.SuggestionChatNow:   {domain.SuggestionSuggested},
	domain.SuggestionCompleted: {domain.SuggestionSuggested, domain.SuggestionApproved, domain.SuggestionChatNow},
}

// transition moves an eligible task to status to. A task whose
// zoya_can_help flag is unset or cleared is not in the workflow, whatever
// status it still stores.
func transition(t *domain.Task, to domain.SuggestionStatus) error {
	from := t.EffectiveSuggestionStatus()
	if !t.CanHelp() || from == "" {
		return fmt.Errorf("%w: %s", domain.ErrNotSuggestible, t.ID)
	}
	if !slices.Contains(transitions[to], from) {
		return fmt.Errorf("%w: %s -> %s", domain.ErrInvalidTransition, from, to)
	}
	t.ZoyaStatus = to
	return nil
}

// Approve hands the task to the assistant and stamps the approval time.
func Approve(t *domain.Task, now time.Time) error {
	if err := transition(t, domain.SuggestionApproved); err != nil {
		return err
	}
	t.ZoyaApprovedAt = domain.FormatDateTime(now)
	return nil
}

// Deny rejects the suggestion and clears the eligibility flag, so the task
// never resurfaces.
func Deny(t *domain.Task, _ time.Time) error {
	if err := transition(t, domain.SuggestionDenied); err != nil {
		return err
	}
	t.ZoyaCanHelp = ptr.To(false)
	return nil
}

// ChatNow records a request to discuss the task right away.
// The task stays in the suggestion list.
func ChatNow(t *domain.Task, now time.Time) error {
	if err := transition(t, domain.SuggestionChatNow); err != nil {
		return err
	}
	t.ZoyaChatRequestedAt = domain.FormatDateTime(now)
	return nil
}

// Complete marks the assistant's work on the task as finished.
func Complete(t *domain.Task, now time.Time) error {
	if err := transition(t, domain.SuggestionCompleted); err != nil {
		return err
	}
	t.ZoyaCompletedAt = domain.FormatDateTime(now)
	return nil
}

// withStatus returns the open, eligible tasks whose status satisfies keep.
func withStatus(tasks []domain.Task, keep func(domain.SuggestionStatus) bool) []domain.Task {
	out := make([]domain.Task, 0)
	for _, t := range tasks {
		if t.Done || !t.CanHelp() {
			continue
		}
		if s := t.EffectiveSuggestionStatus(); s != "" && keep(s) {
			out = append(out, t)
		}
	}
	return out
}

// Suggestions returns open tasks still awaiting a decision, including those
// with a pending chat request.
func Suggestions(tasks []domain.Task) []domain.Task {
	return withStatus(tasks, func(s domain.SuggestionStatus) bool {
		return s == domain.SuggestionSuggested || s == domain.SuggestionChatNow
	})
}

// InProgress returns open tasks the assistant has been approved to work on.
func InProgress(tasks []domain.Task) []domain.Task {
	return withStatus(tasks, func(s domain.SuggestionStatus) bool {
		return s == domain.SuggestionApproved
	})
}

// ChatRequests returns open tasks the user asked to discuss now.
func ChatRequests(tasks []domain.Task) []domain.Task {
	return withStatus(tasks, func(s domain.SuggestionStatus) bool {
		return s == domain.SuggestionChatNow
	})
}
