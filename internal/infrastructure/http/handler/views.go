package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/rezkam/gtf/internal/domain"
	"github.com/rezkam/gtf/internal/infrastructure/http/response"
	"github.com/rezkam/gtf/internal/query"
	"github.com/rezkam/gtf/internal/storage"
	"github.com/rezkam/gtf/internal/suggestion"
)

type dashboardResponse struct {
	Today    string         `json:"today"`
	Summary  query.Summary  `json:"summary"`
	Overdue  []domain.Task  `json:"overdue"`
	DueToday []domain.Task  `json:"due_today"`
	Storage  storage.Status `json:"storage"`
}

type taskListResponse struct {
	View  string        `json:"view"`
	Today string        `json:"today"`
	Tasks []domain.Task `json:"tasks"`
	Count int           `json:"count"`
}

type departmentsResponse struct {
	Departments []departmentGroup `json:"departments"`
}

type departmentGroup struct {
	query.DepartmentGroup
	Badge string `json:"badge"`
}

type suggestionsResponse struct {
	Suggestions  []domain.Task `json:"suggestions"`
	InProgress   []domain.Task `json:"in_progress"`
	ChatRequests []domain.Task `json:"chat_requests"`
}

type remindersResponse struct {
	Pending []domain.Task `json:"pending"`
	Due     []domain.Task `json:"due"`
}

type labelRequest struct {
	Label string `json:"label"`
}

// Dashboard handles GET /v1/dashboard: the stat row and the today screen.
func (h *TaskHandler) Dashboard(w http.ResponseWriter, r *http.Request) {
	doc := h.service.Document(r.Context())
	today := h.service.Today()
	view := query.TodayView(doc.Tasks, today)

	resp := dashboardResponse{
		Today:    today,
		Summary:  query.Summarize(doc.Tasks, today),
		Overdue:  view.Overdue,
		DueToday: view.DueToday,
	}
	if h.status != nil {
		resp.Storage = h.status.Status()
	}
	response.OK(w, resp)
}

// Status handles GET /v1/status.
func (h *TaskHandler) Status(w http.ResponseWriter, r *http.Request) {
	if h.status == nil {
		response.OK(w, storage.Status{Mode: storage.ModeLocalOnly})
		return
	}
	response.OK(w, h.status.Status())
}

// ListTasks handles GET /v1/tasks. priority and department narrow the task
// set before the view is applied.
func (h *TaskHandler) ListTasks(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	doc := h.service.Document(r.Context())
	today := h.service.Today()
	list := doc.Tasks

	if key := q.Get("department"); key != "" {
		list = query.ByDepartment(list, key)
	}
	if raw := q.Get("priority"); raw != "" {
		p, err := domain.NewPriority(raw)
		if err != nil {
			response.FromDomainError(w, r, err)
			return
		}
		list = query.WithPriority(list, p)
	}

	view := q.Get("view")
	if view == "" {
		view = query.ViewAll
	}
	list, err := query.Select(view, list, today)
	if err != nil {
		response.ValidationError(w, "view", err.Error())
		return
	}

	response.OK(w, taskListResponse{View: view, Today: today, Tasks: list, Count: len(list)})
}

// ListDepartments handles GET /v1/departments: open tasks grouped by department.
func (h *TaskHandler) ListDepartments(w http.ResponseWriter, r *http.Request) {
	doc := h.service.Document(r.Context())
	groups := query.GroupByDepartment(doc, h.palette)

	out := make([]departmentGroup, 0, len(groups))
	for _, g := range groups {
		out = append(out, departmentGroup{DepartmentGroup: g, Badge: query.BadgeLabel(g.Label)})
	}
	response.OK(w, departmentsResponse{Departments: out})
}

// SetDepartmentLabel handles PUT /v1/departments/{key}.
func (h *TaskHandler) SetDepartmentLabel(w http.ResponseWriter, r *http.Request) {
	var req labelRequest
	if !decode(w, r, &req) {
		return
	}
	m, err := h.service.SetDepartmentLabel(r.Context(), chi.URLParam(r, "key"), req.Label)
	if err != nil {
		response.FromDomainError(w, r, err)
		return
	}
	writeMutation(w, r, m, http.StatusOK)
}

// ListSuggestions handles GET /v1/suggestions.
func (h *TaskHandler) ListSuggestions(w http.ResponseWriter, r *http.Request) {
	doc := h.service.Document(r.Context())
	response.OK(w, suggestionsResponse{
		Suggestions:  suggestion.Suggestions(doc.Tasks),
		InProgress:   suggestion.InProgress(doc.Tasks),
		ChatRequests: suggestion.ChatRequests(doc.Tasks),
	})
}

// ListReminders handles GET /v1/reminders: every undelivered reminder and
// the subset whose fire time has passed.
func (h *TaskHandler) ListReminders(w http.ResponseWriter, r *http.Request) {
	doc := h.service.Document(r.Context())
	response.OK(w, remindersResponse{
		Pending: suggestion.Reminders(doc.Tasks),
		Due:     suggestion.DueReminders(doc.Tasks, h.service.Now()),
	})
}
