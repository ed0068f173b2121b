// Package handler adapts HTTP requests to the task service and query views.
package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/rezkam/gtf/internal/application/tasks"
	"github.com/rezkam/gtf/internal/domain"
	"github.com/rezkam/gtf/internal/infrastructure/http/response"
	"github.com/rezkam/gtf/internal/query"
	"github.com/rezkam/gtf/internal/storage"
)

// Response headers describing the save outcome of a write.
const (
	HeaderSaved       = "X-GTF-Saved"
	HeaderRemoteSaved = "X-GTF-Remote-Saved"
)

// StatusReporter reports the storage mode and last load source.
type StatusReporter interface {
	Status() storage.Status
}

// TaskHandler serves the /v1 API.
type TaskHandler struct {
	service *tasks.Service
	palette *query.Palette
	status  StatusReporter
}

// NewTaskHandler creates a new HTTP API handler. A nil palette uses the
// built-in colors.
func NewTaskHandler(service *tasks.Service, palette *query.Palette, status StatusReporter) *TaskHandler {
	if palette == nil {
		palette = query.DefaultPalette()
	}
	return &TaskHandler{
		service: service,
		palette: palette,
		status:  status,
	}
}

// NewRouter returns the API routes, to be mounted under /v1.
func NewRouter(service *tasks.Service, palette *query.Palette, status StatusReporter) http.Handler {
	h := NewTaskHandler(service, palette, status)

	r := chi.NewRouter()
	r.Get("/dashboard", h.Dashboard)
	r.Get("/status", h.Status)

	r.Route("/tasks", func(r chi.Router) {
		r.Get("/", h.ListTasks)
		r.Post("/", h.CreateTask)
		r.Post("/reorder", h.ReorderTasks)

		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", h.GetTask)
			r.Patch("/", h.UpdateTask)
			r.Post("/done", h.CompleteTask)
			r.Post("/reopen", h.ReopenTask)
			r.Post("/reschedule", h.RescheduleTask)
			r.Post("/suggestion/{action}", h.SuggestionAction)
			r.Post("/reminders", h.ScheduleReminder)
		})
	})

	r.Get("/departments", h.ListDepartments)
	r.Put("/departments/{key}", h.SetDepartmentLabel)

	r.Get("/suggestions", h.ListSuggestions)
	r.Get("/reminders", h.ListReminders)
	r.Post("/reminders/{id}/sent", h.MarkReminderSent)

	return r
}

// mutationResponse is the body of every write.
type mutationResponse struct {
	Task        *domain.Task `json:"task,omitempty"`
	Saved       bool         `json:"saved"`
	RemoteSaved *bool        `json:"remote_saved,omitempty"`
}

// writeMutation sends m with its save outcome in both headers and body.
// remote_saved is omitted when no remote commit was attempted.
func writeMutation(w http.ResponseWriter, r *http.Request, m tasks.Mutation, status int) {
	body := mutationResponse{Task: m.Task, Saved: m.Saved}

	w.Header().Set(HeaderSaved, strconv.FormatBool(m.Saved))
	if m.RemoteAttempted {
		w.Header().Set(HeaderRemoteSaved, strconv.FormatBool(m.RemoteSaved))
		body.RemoteSaved = &m.RemoteSaved
	}
	if !m.Saved {
		slog.WarnContext(r.Context(), "Change was not saved locally", "path", r.URL.Path)
	}

	if status == http.StatusCreated {
		response.Created(w, body)
		return
	}
	response.OK(w, body)
}

// decode reads a JSON request body into v, rejecting unknown fields.
func decode(w http.ResponseWriter, r *http.Request, v any) bool {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		response.BadRequest(w, "invalid JSON: "+err.Error())
		return false
	}
	return true
}
