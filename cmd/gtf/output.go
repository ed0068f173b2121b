package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/rezkam/gtf/internal/application/tasks"
	"github.com/rezkam/gtf/internal/domain"
	"github.com/rezkam/gtf/internal/query"
)

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// mutationOutput is the --json form of a write.
type mutationOutput struct {
	Task        *domain.Task `json:"task,omitempty"`
	Saved       bool         `json:"saved"`
	RemoteSaved *bool        `json:"remote_saved,omitempty"`
}

// reportMutation prints the outcome of a write. A failed local write is an
// error; a failed remote commit is only a warning.
func (a *app) reportMutation(cmd *cobra.Command, verb string, m tasks.Mutation) error {
	if a.jsonOutput() {
		out := mutationOutput{Task: m.Task, Saved: m.Saved}
		if m.RemoteAttempted {
			out.RemoteSaved = &m.RemoteSaved
		}
		if err := printJSON(cmd.OutOrStdout(), out); err != nil {
			return err
		}
	} else {
		line := verb
		if m.Task != nil {
			line = fmt.Sprintf("%s %s  %s", verb, m.Task.ID, m.Task.Title)
		}
		fmt.Fprintln(cmd.OutOrStdout(), line)
	}

	if m.RemoteAttempted && !m.RemoteSaved {
		fmt.Fprintln(cmd.ErrOrStderr(), "warning: remote commit failed, change kept in the local file")
	}
	if !m.Saved {
		return errNotSaved
	}
	return nil
}

func status(t domain.Task) string {
	switch {
	case t.Done:
		return "done"
	case t.IsZoyaReminder:
		return "reminder"
	}
	if s := t.EffectiveSuggestionStatus(); s != "" {
		return string(s)
	}
	return "open"
}

func renderTasks(w io.Writer, doc *domain.Document, list []domain.Task, today string) {
	tw := table.NewWriter()
	tw.SetOutputMirror(w)
	tw.AppendHeader(table.Row{"ID", "Title", "Department", "Priority", "Due", "Status"})
	for _, t := range list {
		label := query.DepartmentLabel(doc.DepartmentLabels, t.DepartmentKey())
		tw.AppendRow(table.Row{
			t.ID,
			t.Title,
			query.BadgeLabel(label),
			string(t.EffectivePriority()),
			query.DueLabel(t, today),
			status(t),
		})
	}
	tw.AppendFooter(table.Row{"", fmt.Sprintf("%d tasks", len(list))})
	tw.Render()
}

func renderDepartments(w io.Writer, groups []query.DepartmentGroup) {
	tw := table.NewWriter()
	tw.SetOutputMirror(w)
	tw.AppendHeader(table.Row{"Key", "Label", "Color", "Open"})
	for _, g := range groups {
		tw.AppendRow(table.Row{g.Key, g.Label, g.Color, len(g.Tasks)})
	}
	tw.Render()
}

func renderReminders(w io.Writer, list []domain.Task) {
	tw := table.NewWriter()
	tw.SetOutputMirror(w)
	tw.AppendHeader(table.Row{"ID", "Title", "Remind at", "For task"})
	for _, t := range list {
		tw.AppendRow(table.Row{t.ID, t.Title, t.RemindAt, t.OriginalTaskID})
	}
	tw.Render()
}

func renderSummary(w io.Writer, s query.Summary) {
	tw := table.NewWriter()
	tw.SetOutputMirror(w)
	tw.AppendHeader(table.Row{"Open", "Due today", "Overdue", "High priority"})
	tw.AppendRow(table.Row{s.Open, s.DueToday, s.Overdue, s.HighPriority})
	tw.Render()
}

func renderKeyValues(w io.Writer, rows [][2]string) {
	tw := table.NewWriter()
	tw.SetOutputMirror(w)
	for _, r := range rows {
		tw.AppendRow(table.Row{r[0], r[1]})
	}
	tw.Render()
}

// oneLine flattens a commit message for table output.
func oneLine(s string) string {
	first, _, _ := strings.Cut(s, "\n")
	return first
}
