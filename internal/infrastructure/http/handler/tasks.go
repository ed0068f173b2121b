package handler

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"maps"
	"net/http"
	"slices"

	"github.com/go-chi/chi/v5"

	"github.com/rezkam/gtf/internal/application/tasks"
	"github.com/rezkam/gtf/internal/domain"
	"github.com/rezkam/gtf/internal/infrastructure/http/response"
	"github.com/rezkam/gtf/internal/suggestion"
)

type createTaskRequest struct {
	Title          string `json:"title"`
	Department     string `json:"department"`
	Priority       string `json:"priority"`
	DueDate        string `json:"due_date"`
	Notes          string `json:"notes"`
	ZoyaCanHelp    *bool  `json:"zoya_can_help"`
	ZoyaSuggestion string `json:"zoya_suggestion"`
}

// updateTaskRequest is a partial task. Without update_mask, every member
// present in the body is updated; a null value clears the field.
type updateTaskRequest struct {
	UpdateMask     []string         `json:"update_mask"`
	DueDate        *string          `json:"due_date"`
	Priority       *domain.Priority `json:"priority"`
	Notes          *string          `json:"notes"`
	Department     *string          `json:"department"`
	Order          *int             `json:"order"`
	ZoyaCanHelp    *bool            `json:"zoya_can_help"`
	ZoyaSuggestion *string          `json:"zoya_suggestion"`
}

type rescheduleRequest struct {
	DueDate string `json:"due_date"`
}

type reorderRequest struct {
	IDs []string `json:"ids"`
}

type reminderRequest struct {
	When string `json:"when"`
	Date string `json:"date"`
}

// CreateTask handles POST /v1/tasks.
func (h *TaskHandler) CreateTask(w http.ResponseWriter, r *http.Request) {
	var req createTaskRequest
	if !decode(w, r, &req) {
		return
	}

	m, err := h.service.CreateTask(r.Context(), tasks.CreateTaskParams{
		Title:          req.Title,
		Department:     req.Department,
		Priority:       req.Priority,
		DueDate:        req.DueDate,
		Notes:          req.Notes,
		ZoyaCanHelp:    req.ZoyaCanHelp,
		ZoyaSuggestion: req.ZoyaSuggestion,
	})
	if err != nil {
		response.FromDomainError(w, r, err)
		return
	}

	slog.InfoContext(r.Context(), "task created via HTTP", "task_id", m.Task.ID, "saved", m.Saved)
	writeMutation(w, r, m, http.StatusCreated)
}

// GetTask handles GET /v1/tasks/{id}.
func (h *TaskHandler) GetTask(w http.ResponseWriter, r *http.Request) {
	task, err := h.service.GetTask(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		response.FromDomainError(w, r, err)
		return
	}
	response.OK(w, task)
}

// UpdateTask handles PATCH /v1/tasks/{id}.
func (h *TaskHandler) UpdateTask(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		response.BadRequest(w, "failed to read body")
		return
	}

	var present map[string]json.RawMessage
	var req updateTaskRequest
	if err := json.Unmarshal(body, &present); err != nil {
		response.BadRequest(w, "invalid JSON: "+err.Error())
		return
	}
	if err := json.Unmarshal(body, &req); err != nil {
		response.BadRequest(w, "invalid JSON: "+err.Error())
		return
	}

	mask := req.UpdateMask
	if _, explicit := present["update_mask"]; !explicit {
		mask = slices.Sorted(maps.Keys(present))
	}

	m, err := h.service.UpdateTask(r.Context(), domain.UpdateTaskParams{
		TaskID:         chi.URLParam(r, "id"),
		UpdateMask:     mask,
		DueDate:        req.DueDate,
		Priority:       req.Priority,
		Notes:          req.Notes,
		Department:     req.Department,
		Order:          req.Order,
		ZoyaCanHelp:    req.ZoyaCanHelp,
		ZoyaSuggestion: req.ZoyaSuggestion,
	})
	if err != nil {
		response.FromDomainError(w, r, err)
		return
	}
	writeMutation(w, r, m, http.StatusOK)
}

func (h *TaskHandler) setDone(w http.ResponseWriter, r *http.Request, done bool) {
	m, err := h.service.SetDone(r.Context(), chi.URLParam(r, "id"), done)
	if err != nil {
		response.FromDomainError(w, r, err)
		return
	}
	writeMutation(w, r, m, http.StatusOK)
}

// CompleteTask handles POST /v1/tasks/{id}/done.
func (h *TaskHandler) CompleteTask(w http.ResponseWriter, r *http.Request) {
	h.setDone(w, r, true)
}

// ReopenTask handles POST /v1/tasks/{id}/reopen.
func (h *TaskHandler) ReopenTask(w http.ResponseWriter, r *http.Request) {
	h.setDone(w, r, false)
}

// RescheduleTask handles POST /v1/tasks/{id}/reschedule.
func (h *TaskHandler) RescheduleTask(w http.ResponseWriter, r *http.Request) {
	var req rescheduleRequest
	if !decode(w, r, &req) {
		return
	}
	m, err := h.service.Reschedule(r.Context(), chi.URLParam(r, "id"), req.DueDate)
	if err != nil {
		response.FromDomainError(w, r, err)
		return
	}
	writeMutation(w, r, m, http.StatusOK)
}

// ReorderTasks handles POST /v1/tasks/reorder.
func (h *TaskHandler) ReorderTasks(w http.ResponseWriter, r *http.Request) {
	var req reorderRequest
	if !decode(w, r, &req) {
		return
	}
	if len(req.IDs) == 0 {
		response.ValidationError(w, "ids", "at least one id is required")
		return
	}
	m, err := h.service.Reorder(r.Context(), req.IDs)
	if err != nil {
		response.FromDomainError(w, r, err)
		return
	}
	writeMutation(w, r, m, http.StatusOK)
}

// SuggestionAction handles POST /v1/tasks/{id}/suggestion/{action}.
func (h *TaskHandler) SuggestionAction(w http.ResponseWriter, r *http.Request) {
	var action func(ctx context.Context, id string) (tasks.Mutation, error)
	switch chi.URLParam(r, "action") {
	case "approve":
		action = h.service.Approve
	case "deny":
		action = h.service.Deny
	case "chat":
		action = h.service.ChatNow
	case "complete":
		action = h.service.CompleteSuggestion
	default:
		response.NotFound(w, "suggestion action")
		return
	}

	m, err := action(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		response.FromDomainError(w, r, err)
		return
	}
	writeMutation(w, r, m, http.StatusOK)
}

// ScheduleReminder handles POST /v1/tasks/{id}/reminders.
func (h *TaskHandler) ScheduleReminder(w http.ResponseWriter, r *http.Request) {
	var req reminderRequest
	if !decode(w, r, &req) {
		return
	}
	when, err := suggestion.ParseWhen(req.When, req.Date)
	if err != nil {
		response.FromDomainError(w, r, err)
		return
	}

	m, err := h.service.ScheduleReminder(r.Context(), chi.URLParam(r, "id"), when)
	if err != nil {
		response.FromDomainError(w, r, err)
		return
	}

	slog.InfoContext(r.Context(), "reminder scheduled via HTTP",
		"task_id", chi.URLParam(r, "id"),
		"reminder_id", m.Task.ID,
		"remind_at", m.Task.RemindAt)
	writeMutation(w, r, m, http.StatusCreated)
}

// MarkReminderSent handles POST /v1/reminders/{id}/sent.
func (h *TaskHandler) MarkReminderSent(w http.ResponseWriter, r *http.Request) {
	m, err := h.service.MarkReminderSent(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		response.FromDomainError(w, r, err)
		return
	}
	writeMutation(w, r, m, http.StatusOK)
}
