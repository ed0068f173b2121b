package handler_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rezkam/gtf/internal/application/tasks"
	"github.com/rezkam/gtf/internal/domain"
	"github.com/rezkam/gtf/internal/infrastructure/http/handler"
	"github.com/rezkam/gtf/internal/ptr"
	"github.com/rezkam/gtf/internal/storage"
)

type docStore struct {
	mu     sync.Mutex
	doc    *domain.Document
	result storage.SaveResult
}

func (s *docStore) Load(context.Context) *domain.Document {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.doc.Clone()
}

func (s *docStore) Save(_ context.Context, doc *domain.Document, _ string) storage.SaveResult {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.doc = doc.Clone()
	return s.result
}

func (s *docStore) Status() storage.Status {
	return storage.Status{Mode: storage.ModeLocalOnly, LastSource: storage.SourceLocal}
}

func seed() *domain.Document {
	doc := domain.NewDocument()
	doc.DepartmentLabels["content"] = "📝 Content"
	doc.Tasks = []domain.Task{
		{ID: "1", Title: "Write post", Department: "content", Priority: domain.PriorityHigh, DueDate: "2024-01-01"},
		{ID: "2", Title: "Call supplier", Department: "ops", DueDate: "2024-01-05"},
		{ID: "3", Title: "Plan week", ZoyaCanHelp: ptr.To(true), ZoyaSuggestion: "Draft agenda"},
		{ID: "4", Title: "Old", Done: true, CompletedDate: "2024-01-02"},
	}
	return doc
}

func newServer(t *testing.T) (*httptest.Server, *docStore) {
	t.Helper()
	store := &docStore{doc: seed()}
	svc := tasks.NewService(store, tasks.Config{
		Now:      func() time.Time { return time.Date(2024, 1, 5, 10, 0, 0, 0, time.UTC) },
		Location: time.UTC,
	})
	server := httptest.NewServer(handler.NewRouter(svc, nil, store))
	t.Cleanup(server.Close)
	return server, store
}

func do(t *testing.T, method, url string, body any) *http.Response {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req, err := http.NewRequest(method, url, &buf)
	require.NoError(t, err)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func decodeBody[T any](t *testing.T, resp *http.Response) T {
	t.Helper()
	var v T
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&v))
	return v
}

type taskList struct {
	View  string        `json:"view"`
	Tasks []domain.Task `json:"tasks"`
	Count int           `json:"count"`
}

type mutation struct {
	Task        *domain.Task `json:"task"`
	Saved       bool         `json:"saved"`
	RemoteSaved *bool        `json:"remote_saved"`
}

type errorBody struct {
	Error struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

func ids(tasks []domain.Task) []string {
	out := make([]string, 0, len(tasks))
	for _, t := range tasks {
		out = append(out, t.ID)
	}
	return out
}

func TestDashboard(t *testing.T) {
	server, _ := newServer(t)

	resp := do(t, http.MethodGet, server.URL+"/dashboard", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var body struct {
		Today   string `json:"today"`
		Summary struct {
			Open         int `json:"open"`
			DueToday     int `json:"due_today"`
			Overdue      int `json:"overdue"`
			HighPriority int `json:"high_priority"`
		} `json:"summary"`
		Overdue  []domain.Task  `json:"overdue"`
		DueToday []domain.Task  `json:"due_today"`
		Storage  storage.Status `json:"storage"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))

	assert.Equal(t, "2024-01-05", body.Today)
	assert.Equal(t, 3, body.Summary.Open)
	assert.Equal(t, 1, body.Summary.DueToday)
	assert.Equal(t, 1, body.Summary.Overdue)
	assert.Equal(t, 1, body.Summary.HighPriority)
	assert.Equal(t, []string{"1"}, ids(body.Overdue))
	assert.Equal(t, []string{"2"}, ids(body.DueToday))
	assert.Equal(t, storage.ModeLocalOnly, body.Storage.Mode)
}

func TestListTasks_Views(t *testing.T) {
	server, _ := newServer(t)

	testCases := []struct {
		query string
		want  []string
	}{
		{"", []string{"1", "2", "3"}},
		{"?view=open", []string{"1", "2", "3"}},
		{"?view=done", []string{"4"}},
		{"?view=today", []string{"1", "2"}},
		{"?view=overdue", []string{"1"}},
		{"?view=completed", []string{"4"}},
		{"?view=by_department", []string{"1", "2", "3"}},
		{"?priority=high", []string{"1"}},
		{"?department=ops", []string{"2"}},
		{"?department=quick", []string{"3"}},
		{"?view=done&department=content", []string{}},
	}

	for _, tc := range testCases {
		t.Run(tc.query, func(t *testing.T) {
			resp := do(t, http.MethodGet, server.URL+"/tasks"+tc.query, nil)
			require.Equal(t, http.StatusOK, resp.StatusCode)
			body := decodeBody[taskList](t, resp)
			assert.Equal(t, tc.want, ids(body.Tasks))
			assert.Equal(t, len(tc.want), body.Count)
		})
	}
}

func TestListTasks_InvalidParams(t *testing.T) {
	server, _ := newServer(t)

	resp := do(t, http.MethodGet, server.URL+"/tasks?view=weekly", nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp = do(t, http.MethodGet, server.URL+"/tasks?priority=urgent", nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestCreateTask(t *testing.T) {
	server, store := newServer(t)

	resp := do(t, http.MethodPost, server.URL+"/tasks", map[string]any{
		"title":      "Ship release",
		"department": "ops",
		"priority":   "high",
		"due_date":   "2024-01-08",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	assert.Equal(t, "true", resp.Header.Get(handler.HeaderSaved))
	assert.Empty(t, resp.Header.Get(handler.HeaderRemoteSaved), "no remote attempted")

	body := decodeBody[mutation](t, resp)
	require.NotNil(t, body.Task)
	assert.True(t, body.Saved)
	assert.Nil(t, body.RemoteSaved)
	assert.Equal(t, "Ship release", body.Task.Title)
	assert.Len(t, store.doc.Tasks, 5)
}

func TestCreateTask_Errors(t *testing.T) {
	server, _ := newServer(t)

	resp := do(t, http.MethodPost, server.URL+"/tasks", map[string]any{"title": ""})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "VALIDATION_ERROR", decodeBody[errorBody](t, resp).Error.Code)

	resp = do(t, http.MethodPost, server.URL+"/tasks", map[string]any{"title": "A", "colour": "red"})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode, "unknown fields are rejected")
}

func TestGetTask(t *testing.T) {
	server, _ := newServer(t)

	resp := do(t, http.MethodGet, server.URL+"/tasks/1", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "Write post", decodeBody[domain.Task](t, resp).Title)

	resp = do(t, http.MethodGet, server.URL+"/tasks/nope", nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Equal(t, "NOT_FOUND", decodeBody[errorBody](t, resp).Error.Code)
}

func TestUpdateTask(t *testing.T) {
	server, store := newServer(t)

	resp := do(t, http.MethodPatch, server.URL+"/tasks/1", map[string]any{
		"notes":    "Outline first",
		"due_date": nil,
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	task, err := store.doc.FindTask("1")
	require.NoError(t, err)
	assert.Equal(t, "Outline first", task.Notes)
	assert.False(t, task.HasDueDate(), "null clears the due date")
	assert.Equal(t, domain.PriorityHigh, task.Priority)

	resp = do(t, http.MethodPatch, server.URL+"/tasks/1", map[string]any{"title": "Renamed"})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode, "title is not editable")

	resp = do(t, http.MethodPatch, server.URL+"/tasks/1", map[string]any{
		"update_mask": []string{"priority"},
		"priority":    "low",
		"notes":       "ignored",
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	task, err = store.doc.FindTask("1")
	require.NoError(t, err)
	assert.Equal(t, domain.PriorityLow, task.Priority)
	assert.Equal(t, "Outline first", task.Notes)
}

func TestDoneAndReopen(t *testing.T) {
	server, _ := newServer(t)

	resp := do(t, http.MethodPost, server.URL+"/tasks/1/done", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	body := decodeBody[mutation](t, resp)
	assert.True(t, body.Task.Done)
	assert.Equal(t, "2024-01-05", body.Task.CompletedDate)

	resp = do(t, http.MethodPost, server.URL+"/tasks/1/reopen", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	body = decodeBody[mutation](t, resp)
	assert.False(t, body.Task.Done)
	assert.Equal(t, "2024-01-05", body.Task.CompletedDate)
}

func TestReschedule(t *testing.T) {
	server, _ := newServer(t)

	resp := do(t, http.MethodPost, server.URL+"/tasks/2/reschedule", map[string]string{"due_date": "2024-02-01"})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "2024-02-01", decodeBody[mutation](t, resp).Task.DueDate)

	resp = do(t, http.MethodPost, server.URL+"/tasks/2/reschedule", map[string]string{"due_date": "soon"})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestReorder(t *testing.T) {
	server, store := newServer(t)

	resp := do(t, http.MethodPost, server.URL+"/tasks/reorder", map[string]any{"ids": []string{"2", "1"}})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	body := decodeBody[mutation](t, resp)
	assert.Nil(t, body.Task)
	assert.True(t, body.Saved)

	two, _ := store.doc.FindTask("2")
	assert.Equal(t, 0, two.OrderOrDefault())

	resp = do(t, http.MethodPost, server.URL+"/tasks/reorder", map[string]any{"ids": []string{}})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp = do(t, http.MethodPost, server.URL+"/tasks/reorder", map[string]any{"ids": []string{"9"}})
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestSuggestionActions(t *testing.T) {
	server, _ := newServer(t)

	resp := do(t, http.MethodGet, server.URL+"/suggestions", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var lists struct {
		Suggestions []domain.Task `json:"suggestions"`
		InProgress  []domain.Task `json:"in_progress"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&lists))
	assert.Equal(t, []string{"3"}, ids(lists.Suggestions))
	assert.Empty(t, lists.InProgress)

	resp = do(t, http.MethodPost, server.URL+"/tasks/3/suggestion/approve", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, domain.SuggestionApproved, decodeBody[mutation](t, resp).Task.ZoyaStatus)

	resp = do(t, http.MethodPost, server.URL+"/tasks/3/suggestion/chat", nil)
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	assert.Equal(t, "INVALID_TRANSITION", decodeBody[errorBody](t, resp).Error.Code)

	resp = do(t, http.MethodPost, server.URL+"/tasks/1/suggestion/approve", nil)
	assert.Equal(t, http.StatusConflict, resp.StatusCode)

	resp = do(t, http.MethodPost, server.URL+"/tasks/3/suggestion/snooze", nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestReminders(t *testing.T) {
	server, store := newServer(t)

	resp := do(t, http.MethodPost, server.URL+"/tasks/3/reminders", map[string]string{"when": "tomorrow_morning"})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	reminder := decodeBody[mutation](t, resp).Task
	require.NotNil(t, reminder)
	assert.True(t, reminder.IsZoyaReminder)
	assert.Equal(t, "3", reminder.OriginalTaskID)
	assert.Equal(t, "2024-01-06", reminder.DueDate)
	assert.Len(t, store.doc.Tasks, 5)

	resp = do(t, http.MethodGet, server.URL+"/reminders", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var lists struct {
		Pending []domain.Task `json:"pending"`
		Due     []domain.Task `json:"due"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&lists))
	assert.Equal(t, []string{reminder.ID}, ids(lists.Pending))
	assert.Empty(t, lists.Due, "fires tomorrow")

	resp = do(t, http.MethodPost, server.URL+"/reminders/"+reminder.ID+"/sent", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp = do(t, http.MethodPost, server.URL+"/reminders/1/sent", nil)
	assert.Equal(t, http.StatusConflict, resp.StatusCode)

	resp = do(t, http.MethodPost, server.URL+"/tasks/3/reminders", map[string]string{"when": "next_year"})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestDepartments(t *testing.T) {
	server, store := newServer(t)

	resp := do(t, http.MethodGet, server.URL+"/departments", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var body struct {
		Departments []struct {
			Key   string        `json:"key"`
			Label string        `json:"label"`
			Badge string        `json:"badge"`
			Color string        `json:"color"`
			Tasks []domain.Task `json:"tasks"`
		} `json:"departments"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))

	require.Len(t, body.Departments, 3)
	assert.Equal(t, "content", body.Departments[0].Key)
	assert.Equal(t, "📝 Content", body.Departments[0].Label)
	assert.Equal(t, "Content", body.Departments[0].Badge)
	assert.Equal(t, "ops", body.Departments[1].Key)
	assert.Equal(t, "ops", body.Departments[1].Label, "unlabeled key renders raw")
	assert.Equal(t, "quick", body.Departments[2].Key)
	assert.Equal(t, "Quick", body.Departments[2].Label)
	assert.NotEmpty(t, body.Departments[0].Color)

	resp = do(t, http.MethodPut, server.URL+"/departments/ops", map[string]string{"label": "Operations"})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "Operations", store.doc.DepartmentLabels["ops"])
}

func TestRemoteSavedHeader(t *testing.T) {
	server, store := newServer(t)
	store.result = storage.SaveResult{RemoteAttempted: true, RemoteErr: storage.ErrVersionConflict}

	resp := do(t, http.MethodPost, server.URL+"/tasks/2/done", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "true", resp.Header.Get(handler.HeaderSaved))
	assert.Equal(t, "false", resp.Header.Get(handler.HeaderRemoteSaved))

	body := decodeBody[mutation](t, resp)
	require.NotNil(t, body.RemoteSaved)
	assert.False(t, *body.RemoteSaved)
}

func TestStatus(t *testing.T) {
	server, _ := newServer(t)

	resp := do(t, http.MethodGet, server.URL+"/status", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, storage.ModeLocalOnly, decodeBody[storage.Status](t, resp).Mode)
}
