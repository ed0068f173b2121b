package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/rezkam/gtf/internal/application/tasks"
	"github.com/rezkam/gtf/internal/domain"
	"github.com/rezkam/gtf/internal/query"
	"github.com/rezkam/gtf/internal/storage/postgres"
	"github.com/rezkam/gtf/internal/suggestion"
)

func (a *app) listCmd() *cobra.Command {
	var view, department, priority string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List tasks",
		Long: `List tasks in one of the views: all (default), open, done, today,
overdue, completed or by_department.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withSession(cmd, func(ctx context.Context, s *session) error {
				doc := s.service.Document(ctx)
				today := s.service.Today()
				list := doc.Tasks

				if department != "" {
					list = query.ByDepartment(list, department)
				}
				if priority != "" {
					p, err := domain.NewPriority(priority)
					if err != nil {
						return err
					}
					list = query.WithPriority(list, p)
				}
				list, err := query.Select(view, list, today)
				if err != nil {
					return err
				}

				if a.jsonOutput() {
					return printJSON(cmd.OutOrStdout(), list)
				}
				renderTasks(cmd.OutOrStdout(), doc, list, today)
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&view, "view", query.ViewAll, "view to show")
	cmd.Flags().StringVarP(&department, "department", "d", "", "only this department")
	cmd.Flags().StringVarP(&priority, "priority", "p", "", "only this priority")
	return cmd
}

func (a *app) addCmd() *cobra.Command {
	var p tasks.CreateTaskParams
	var assist bool

	cmd := &cobra.Command{
		Use:   "add TITLE",
		Short: "Add a task",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p.Title = args[0]
			if cmd.Flags().Changed("assist") {
				p.ZoyaCanHelp = &assist
			}
			return a.withSession(cmd, func(ctx context.Context, s *session) error {
				m, err := s.service.CreateTask(ctx, p)
				if err != nil {
					return err
				}
				return a.reportMutation(cmd, "Added", m)
			})
		},
	}

	cmd.Flags().StringVarP(&p.Department, "department", "d", "", "department key (default quick)")
	cmd.Flags().StringVarP(&p.Priority, "priority", "p", "", "low, medium or high")
	cmd.Flags().StringVar(&p.DueDate, "due", "", "due date YYYY-MM-DD")
	cmd.Flags().StringVar(&p.Notes, "notes", "", "free text notes")
	cmd.Flags().BoolVar(&assist, "assist", false, "offer the task to the assistant")
	cmd.Flags().StringVar(&p.ZoyaSuggestion, "suggestion", "", "how the assistant could help")
	return cmd
}

func (a *app) doneCmd(done bool) *cobra.Command {
	use, short, verb := "done ID", "Mark a task done", "Completed"
	if !done {
		use, short, verb = "reopen ID", "Mark a task not done", "Reopened"
	}
	return &cobra.Command{
		Use:   use,
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withSession(cmd, func(ctx context.Context, s *session) error {
				m, err := s.service.SetDone(ctx, args[0], done)
				if err != nil {
					return err
				}
				return a.reportMutation(cmd, verb, m)
			})
		},
	}
}

func (a *app) rescheduleCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "reschedule ID [DATE]",
		Short: "Set or clear a task's due date",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			date := ""
			if len(args) == 2 {
				date = args[1]
			}
			return a.withSession(cmd, func(ctx context.Context, s *session) error {
				m, err := s.service.Reschedule(ctx, args[0], date)
				if err != nil {
					return err
				}
				return a.reportMutation(cmd, "Rescheduled", m)
			})
		},
	}
}

func (a *app) editCmd() *cobra.Command {
	var (
		due, priority, notes, department, hint string
		order                                  int
		assist                                 bool
	)

	cmd := &cobra.Command{
		Use:   "edit ID",
		Short: "Edit task fields",
		Long: `Edit the fields given as flags. An empty value clears the field,
for example --due "".`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			params := domain.UpdateTaskParams{TaskID: args[0]}
			set := func(flag, field string, apply func()) {
				if cmd.Flags().Changed(flag) {
					params.UpdateMask = append(params.UpdateMask, field)
					apply()
				}
			}
			set("due", domain.FieldDueDate, func() { params.DueDate = &due })
			set("priority", domain.FieldPriority, func() {
				if priority != "" {
					p := domain.Priority(priority)
					params.Priority = &p
				}
			})
			set("notes", domain.FieldNotes, func() { params.Notes = &notes })
			set("department", domain.FieldDepartment, func() {
				if department != "" {
					params.Department = &department
				}
			})
			set("order", domain.FieldOrder, func() { params.Order = &order })
			set("assist", domain.FieldZoyaCanHelp, func() { params.ZoyaCanHelp = &assist })
			set("suggestion", domain.FieldZoyaSuggestion, func() { params.ZoyaSuggestion = &hint })

			return a.withSession(cmd, func(ctx context.Context, s *session) error {
				m, err := s.service.UpdateTask(ctx, params)
				if err != nil {
					return err
				}
				return a.reportMutation(cmd, "Updated", m)
			})
		},
	}

	cmd.Flags().StringVar(&due, "due", "", "due date YYYY-MM-DD")
	cmd.Flags().StringVarP(&priority, "priority", "p", "", "low, medium or high")
	cmd.Flags().StringVar(&notes, "notes", "", "free text notes")
	cmd.Flags().StringVarP(&department, "department", "d", "", "department key")
	cmd.Flags().IntVar(&order, "order", 0, "manual position")
	cmd.Flags().BoolVar(&assist, "assist", false, "offer the task to the assistant")
	cmd.Flags().StringVar(&hint, "suggestion", "", "how the assistant could help")
	return cmd
}

func (a *app) reorderCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "reorder ID...",
		Short: "Set the manual order of tasks",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withSession(cmd, func(ctx context.Context, s *session) error {
				m, err := s.service.Reorder(ctx, args)
				if err != nil {
					return err
				}
				return a.reportMutation(cmd, fmt.Sprintf("Reordered %d tasks", len(args)), m)
			})
		},
	}
}

func (a *app) departmentsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "departments",
		Short: "List departments with their open tasks",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withSession(cmd, func(ctx context.Context, s *session) error {
				groups := query.GroupByDepartment(s.service.Document(ctx), s.palette)
				if a.jsonOutput() {
					return printJSON(cmd.OutOrStdout(), groups)
				}
				renderDepartments(cmd.OutOrStdout(), groups)
				return nil
			})
		},
	}
}

func (a *app) labelCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "label KEY [LABEL]",
		Short: "Set or remove a department's display name",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			label := ""
			if len(args) == 2 {
				label = args[1]
			}
			return a.withSession(cmd, func(ctx context.Context, s *session) error {
				m, err := s.service.SetDepartmentLabel(ctx, args[0], label)
				if err != nil {
					return err
				}
				return a.reportMutation(cmd, "Labelled "+args[0], m)
			})
		},
	}
}

func (a *app) suggestCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "suggest",
		Short: "Work with assistant suggestions",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withSession(cmd, func(ctx context.Context, s *session) error {
				doc := s.service.Document(ctx)
				sections := map[string][]domain.Task{
					"suggestions":   suggestion.Suggestions(doc.Tasks),
					"in_progress":   suggestion.InProgress(doc.Tasks),
					"chat_requests": suggestion.ChatRequests(doc.Tasks),
				}
				if a.jsonOutput() {
					return printJSON(cmd.OutOrStdout(), sections)
				}
				today := s.service.Today()
				for _, name := range []string{"suggestions", "in_progress", "chat_requests"} {
					fmt.Fprintln(cmd.OutOrStdout(), name)
					renderTasks(cmd.OutOrStdout(), doc, sections[name], today)
				}
				return nil
			})
		},
	}

	actions := []struct {
		use, short, verb string
		run              func(s *tasks.Service) func(context.Context, string) (tasks.Mutation, error)
	}{
		{"approve", "Approve a suggestion", "Approved", func(s *tasks.Service) func(context.Context, string) (tasks.Mutation, error) { return s.Approve }},
		{"deny", "Deny a suggestion", "Denied", func(s *tasks.Service) func(context.Context, string) (tasks.Mutation, error) { return s.Deny }},
		{"chat", "Ask to talk a suggestion through", "Chat requested", func(s *tasks.Service) func(context.Context, string) (tasks.Mutation, error) { return s.ChatNow }},
		{"complete", "Mark a suggestion handled", "Completed", func(s *tasks.Service) func(context.Context, string) (tasks.Mutation, error) { return s.CompleteSuggestion }},
	}
	for _, act := range actions {
		cmd.AddCommand(&cobra.Command{
			Use:   act.use + " ID",
			Short: act.short,
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				return a.withSession(cmd, func(ctx context.Context, s *session) error {
					m, err := act.run(s.service)(ctx, args[0])
					if err != nil {
						return err
					}
					return a.reportMutation(cmd, act.verb, m)
				})
			},
		})
	}
	return cmd
}

func (a *app) remindCmd() *cobra.Command {
	var when, date string

	cmd := &cobra.Command{
		Use:   "remind ID",
		Short: "Schedule a reminder for a task",
		Long: `Schedule a reminder. --when is in_two_hours, tomorrow_morning (09:00
tomorrow) or on_date, which fires at 09:00 on --date.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			w, err := suggestion.ParseWhen(when, date)
			if err != nil {
				return err
			}
			return a.withSession(cmd, func(ctx context.Context, s *session) error {
				m, err := s.service.ScheduleReminder(ctx, args[0], w)
				if err != nil {
					return err
				}
				return a.reportMutation(cmd, "Scheduled "+m.Task.RemindAt, m)
			})
		},
	}

	cmd.Flags().StringVar(&when, "when", "tomorrow_morning", "in_two_hours, tomorrow_morning or on_date")
	cmd.Flags().StringVar(&date, "date", "", "date for on_date, YYYY-MM-DD")
	return cmd
}

func (a *app) remindersCmd() *cobra.Command {
	var dueOnly bool

	cmd := &cobra.Command{
		Use:   "reminders",
		Short: "List undelivered reminders",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withSession(cmd, func(ctx context.Context, s *session) error {
				doc := s.service.Document(ctx)
				list := suggestion.Reminders(doc.Tasks)
				if dueOnly {
					list = suggestion.DueReminders(doc.Tasks, s.service.Now())
				}
				if a.jsonOutput() {
					return printJSON(cmd.OutOrStdout(), list)
				}
				renderReminders(cmd.OutOrStdout(), list)
				return nil
			})
		},
	}

	cmd.Flags().BoolVar(&dueOnly, "due", false, "only reminders whose time has passed")
	cmd.AddCommand(&cobra.Command{
		Use:   "sent ID",
		Short: "Record that a reminder was delivered",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withSession(cmd, func(ctx context.Context, s *session) error {
				m, err := s.service.MarkReminderSent(ctx, args[0])
				if err != nil {
					return err
				}
				return a.reportMutation(cmd, "Sent", m)
			})
		},
	})
	return cmd
}

func (a *app) statsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Show the dashboard counts",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withSession(cmd, func(ctx context.Context, s *session) error {
				summary := query.Summarize(s.service.Document(ctx).Tasks, s.service.Today())
				if a.jsonOutput() {
					return printJSON(cmd.OutOrStdout(), summary)
				}
				renderSummary(cmd.OutOrStdout(), summary)
				return nil
			})
		},
	}
}

func (a *app) statusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show where the document was loaded from",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withSession(cmd, func(ctx context.Context, s *session) error {
				s.backend.Store.Load(ctx)
				st := s.backend.Store.Status()
				if a.jsonOutput() {
					return printJSON(cmd.OutOrStdout(), st)
				}
				renderKeyValues(cmd.OutOrStdout(), [][2]string{
					{"mode", string(st.Mode)},
					{"source", string(st.LastSource)},
					{"version", st.Version},
					{"local", s.cfg.Storage.LocalPath},
					{"remote", s.cfg.Storage.Remote.Backend},
					{"last error", st.LastError},
				})
				return nil
			})
		},
	}
}

var errNoHistory = errors.New("history needs the postgres remote backend")

func (a *app) historyCmd() *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show recent commits of the document",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withSession(cmd, func(ctx context.Context, s *session) error {
				pg, ok := s.backend.Remote.(*postgres.Store)
				if !ok {
					return errNoHistory
				}
				entries, err := pg.History(ctx, limit)
				if err != nil {
					return err
				}
				if a.jsonOutput() {
					return printJSON(cmd.OutOrStdout(), entries)
				}
				rows := make([][2]string, 0, len(entries))
				for _, e := range entries {
					rows = append(rows, [2]string{e.Version, oneLine(e.Message)})
				}
				renderKeyValues(cmd.OutOrStdout(), rows)
				return nil
			})
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "number of commits")
	return cmd
}
