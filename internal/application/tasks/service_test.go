package tasks

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/rezkam/gtf/internal/domain"
	"github.com/rezkam/gtf/internal/ptr"
	"github.com/rezkam/gtf/internal/query"
	"github.com/rezkam/gtf/internal/storage"
	"github.com/rezkam/gtf/internal/suggestion"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// memStore is an in-memory DocumentStore that records save messages.
type memStore struct {
	mu       sync.Mutex
	doc      *domain.Document
	messages []string
	result   storage.SaveResult
}

func newMemStore(tasks ...domain.Task) *memStore {
	doc := domain.NewDocument()
	doc.DepartmentLabels["content"] = "Content"
	doc.Tasks = append(doc.Tasks, tasks...)
	return &memStore{doc: doc}
}

func (m *memStore) Load(context.Context) *domain.Document {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.doc.Clone()
}

func (m *memStore) Save(_ context.Context, doc *domain.Document, message string) storage.SaveResult {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.messages = append(m.messages, message)
	if m.result.LocalErr == nil {
		m.doc = doc.Clone()
	}
	return m.result
}

func (m *memStore) task(t *testing.T, id string) domain.Task {
	t.Helper()
	task, err := m.doc.FindTask(id)
	require.NoError(t, err)
	return *task
}

var fixedNow = time.Date(2024, 1, 5, 10, 30, 0, 0, time.UTC)

func newTestService(store *memStore) *Service {
	return NewService(store, Config{
		Now:      func() time.Time { return fixedNow },
		Location: time.UTC,
	})
}

func writePost() domain.Task {
	return domain.Task{
		ID:         "1",
		Title:      "Write post",
		Department: "content",
		Priority:   domain.PriorityHigh,
		DueDate:    "2024-01-01",
	}
}

func TestNewService_Defaults(t *testing.T) {
	svc := NewService(newMemStore(), Config{})
	assert.Equal(t, time.Local, svc.loc)
	assert.NotNil(t, svc.now)
}

func TestCreateTask(t *testing.T) {
	store := newMemStore()
	svc := newTestService(store)

	m, err := svc.CreateTask(context.Background(), CreateTaskParams{Title: "  Call supplier  ", DueDate: "2024-01-09"})
	require.NoError(t, err)
	require.NotNil(t, m.Task)
	assert.True(t, m.Saved)

	assert.NotEmpty(t, m.Task.ID)
	assert.Equal(t, "Call supplier", m.Task.Title)
	assert.Equal(t, domain.DefaultDepartment, m.Task.Department)
	assert.Equal(t, domain.PriorityMedium, m.Task.Priority)
	assert.Equal(t, "2024-01-05T10:30:00", m.Task.CreatedAt)
	assert.False(t, m.Task.Done)

	stored := store.task(t, m.Task.ID)
	assert.Equal(t, *m.Task, stored)
	assert.Equal(t, []string{"Add task: Call supplier"}, store.messages)
}

func TestCreateTask_Validation(t *testing.T) {
	testCases := []struct {
		name    string
		params  CreateTaskParams
		wantErr error
	}{
		{name: "empty title", params: CreateTaskParams{Title: " "}, wantErr: domain.ErrTitleRequired},
		{name: "bad priority", params: CreateTaskParams{Title: "A", Priority: "urgent"}, wantErr: domain.ErrInvalidPriority},
		{name: "bad date", params: CreateTaskParams{Title: "A", DueDate: "tomorrow"}, wantErr: domain.ErrInvalidDate},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			store := newMemStore()
			_, err := newTestService(store).CreateTask(context.Background(), tc.params)
			require.Error(t, err)
			assert.True(t, errors.Is(err, tc.wantErr), "got %v", err)
			assert.Empty(t, store.messages, "nothing is saved on validation failure")
		})
	}
}

func TestCreateTask_IDsAreUnique(t *testing.T) {
	store := newMemStore()
	svc := newTestService(store)

	a, err := svc.CreateTask(context.Background(), CreateTaskParams{Title: "A"})
	require.NoError(t, err)
	b, err := svc.CreateTask(context.Background(), CreateTaskParams{Title: "B"})
	require.NoError(t, err)

	assert.NotEqual(t, a.Task.ID, b.Task.ID)
	assert.Len(t, store.doc.Tasks, 2)
}

func TestGetTask(t *testing.T) {
	svc := newTestService(newMemStore(writePost()))

	task, err := svc.GetTask(context.Background(), "1")
	require.NoError(t, err)
	assert.Equal(t, "Write post", task.Title)

	_, err = svc.GetTask(context.Background(), "missing")
	assert.True(t, errors.Is(err, domain.ErrTaskNotFound))

	_, err = svc.GetTask(context.Background(), "")
	assert.True(t, errors.Is(err, domain.ErrTaskNotFound))
}

func TestSetDone_ExampleScenario(t *testing.T) {
	store := newMemStore(writePost())
	svc := newTestService(store)
	today := svc.Today()

	doc := svc.Document(context.Background())
	assert.Equal(t, []string{"1"}, taskIDs(query.Overdue(doc.Tasks, today)))
	assert.Empty(t, query.DueToday(doc.Tasks, today))

	m, err := svc.SetDone(context.Background(), "1", true)
	require.NoError(t, err)
	assert.True(t, m.Task.Done)
	assert.Equal(t, "2024-01-05", m.Task.CompletedDate)

	doc = svc.Document(context.Background())
	assert.Empty(t, query.Open(doc.Tasks))
	assert.Equal(t, []string{"Complete task: Write post"}, store.messages)
}

func TestSetDone_Idempotent(t *testing.T) {
	task := writePost()
	task.Done = true
	task.CompletedDate = "2024-01-02"
	store := newMemStore(task)
	svc := newTestService(store)

	m, err := svc.SetDone(context.Background(), "1", true)
	require.NoError(t, err)
	assert.Equal(t, "2024-01-02", m.Task.CompletedDate, "re-marking done keeps the original date")

	m, err = svc.SetDone(context.Background(), "1", false)
	require.NoError(t, err)
	assert.False(t, m.Task.Done)
	assert.Equal(t, "2024-01-02", m.Task.CompletedDate, "reopening keeps completed_date")
	assert.Equal(t, "Reopen task: Write post", store.messages[1])
}

func TestSetDone_UnknownTask(t *testing.T) {
	store := newMemStore()
	_, err := newTestService(store).SetDone(context.Background(), "nope", true)
	assert.True(t, errors.Is(err, domain.ErrTaskNotFound))
	assert.Empty(t, store.messages)
}

func TestMutation_ReportsSaveOutcome(t *testing.T) {
	store := newMemStore(writePost())
	store.result = storage.SaveResult{RemoteAttempted: true, RemoteErr: storage.ErrRemoteUnavailable}
	svc := newTestService(store)

	m, err := svc.Reschedule(context.Background(), "1", "2024-01-10")
	require.NoError(t, err)
	assert.True(t, m.Saved)
	assert.True(t, m.RemoteAttempted)
	assert.False(t, m.RemoteSaved)

	store.result = storage.SaveResult{LocalErr: errors.New("disk full")}
	m, err = svc.Reschedule(context.Background(), "1", "2024-01-11")
	require.NoError(t, err, "save failures are reported through Saved, not as errors")
	assert.False(t, m.Saved)
}

func TestUpdateTask(t *testing.T) {
	store := newMemStore(writePost())
	svc := newTestService(store)

	m, err := svc.UpdateTask(context.Background(), domain.UpdateTaskParams{
		TaskID:     "1",
		UpdateMask: []string{domain.FieldNotes, domain.FieldPriority},
		Notes:      ptr.To("Outline first"),
		Priority:   ptr.To(domain.PriorityLow),
	})
	require.NoError(t, err)
	assert.Equal(t, "Outline first", m.Task.Notes)
	assert.Equal(t, domain.PriorityLow, m.Task.Priority)
	assert.Equal(t, "2024-01-01", m.Task.DueDate)
	assert.Equal(t, "Edit task: Write post", store.messages[0])

	_, err = svc.UpdateTask(context.Background(), domain.UpdateTaskParams{TaskID: "1"})
	assert.True(t, errors.Is(err, domain.ErrEmptyUpdateMask))

	_, err = svc.UpdateTask(context.Background(), domain.UpdateTaskParams{TaskID: "", UpdateMask: []string{domain.FieldNotes}})
	assert.True(t, errors.Is(err, domain.ErrTaskNotFound))
}

func TestReschedule(t *testing.T) {
	store := newMemStore(writePost())
	svc := newTestService(store)

	m, err := svc.Reschedule(context.Background(), "1", "2024-01-10")
	require.NoError(t, err)
	assert.Equal(t, "2024-01-10", m.Task.DueDate)

	m, err = svc.Reschedule(context.Background(), "1", "")
	require.NoError(t, err)
	assert.False(t, m.Task.HasDueDate())

	_, err = svc.Reschedule(context.Background(), "1", "10/01/2024")
	assert.True(t, errors.Is(err, domain.ErrInvalidDate))
	assert.Len(t, store.messages, 2)
}

func TestReorder(t *testing.T) {
	store := newMemStore(
		domain.Task{ID: "a", Title: "A"},
		domain.Task{ID: "b", Title: "B"},
		domain.Task{ID: "c", Title: "C", Order: ptr.To(7)},
	)
	svc := newTestService(store)

	m, err := svc.Reorder(context.Background(), []string{"b", "a"})
	require.NoError(t, err)
	assert.Nil(t, m.Task)
	assert.True(t, m.Saved)

	assert.Equal(t, 0, store.task(t, "b").OrderOrDefault())
	assert.Equal(t, 1, store.task(t, "a").OrderOrDefault())
	assert.Equal(t, 7, store.task(t, "c").OrderOrDefault())
}

func TestReorder_RejectsUnknownAndDuplicateIDs(t *testing.T) {
	store := newMemStore(domain.Task{ID: "a", Title: "A"})
	svc := newTestService(store)

	_, err := svc.Reorder(context.Background(), []string{"a", "missing"})
	assert.True(t, errors.Is(err, domain.ErrTaskNotFound))
	assert.Nil(t, store.task(t, "a").Order, "partial reorder is not saved")

	_, err = svc.Reorder(context.Background(), []string{"a", "a"})
	assert.True(t, errors.Is(err, domain.ErrDuplicateTaskID))
	assert.Empty(t, store.messages)
}

func TestSetDepartmentLabel(t *testing.T) {
	store := newMemStore()
	svc := newTestService(store)

	_, err := svc.SetDepartmentLabel(context.Background(), "sales", " 💰 Sales ")
	require.NoError(t, err)
	assert.Equal(t, "💰 Sales", store.doc.DepartmentLabels["sales"])

	_, err = svc.SetDepartmentLabel(context.Background(), "sales", "")
	require.NoError(t, err)
	_, ok := store.doc.DepartmentLabels["sales"]
	assert.False(t, ok)

	_, err = svc.SetDepartmentLabel(context.Background(), " ", "x")
	assert.True(t, errors.Is(err, domain.ErrInvalidDepartment))
}

func TestSuggestionWorkflow(t *testing.T) {
	task := writePost()
	task.ZoyaCanHelp = ptr.To(true)
	task.ZoyaSuggestion = "Draft an outline"
	store := newMemStore(task)
	svc := newTestService(store)
	ctx := context.Background()

	m, err := svc.ChatNow(ctx, "1")
	require.NoError(t, err)
	assert.Equal(t, domain.SuggestionChatNow, m.Task.ZoyaStatus)
	assert.Equal(t, "2024-01-05T10:30:00", m.Task.ZoyaChatRequestedAt)

	m, err = svc.Approve(ctx, "1")
	require.NoError(t, err)
	assert.Equal(t, domain.SuggestionApproved, m.Task.ZoyaStatus)

	_, err = svc.Deny(ctx, "1")
	assert.True(t, errors.Is(err, domain.ErrInvalidTransition))

	m, err = svc.CompleteSuggestion(ctx, "1")
	require.NoError(t, err)
	assert.Equal(t, domain.SuggestionCompleted, m.Task.ZoyaStatus)

	assert.Equal(t, []string{
		"Chat about suggestion: Write post",
		"Approve suggestion: Write post",
		"Complete suggestion: Write post",
	}, store.messages)
}

func TestSuggestionWorkflow_RevokedByUpdate(t *testing.T) {
	task := writePost()
	task.ZoyaCanHelp = ptr.To(true)
	svc := newTestService(newMemStore(task))
	ctx := context.Background()

	_, err := svc.ChatNow(ctx, "1")
	require.NoError(t, err)
	_, err = svc.UpdateTask(ctx, domain.UpdateTaskParams{
		TaskID:      "1",
		UpdateMask:  []string{domain.FieldZoyaCanHelp},
		ZoyaCanHelp: ptr.To(false),
	})
	require.NoError(t, err)

	_, err = svc.Approve(ctx, "1")
	assert.True(t, errors.Is(err, domain.ErrNotSuggestible))
	assert.Empty(t, suggestion.Suggestions(svc.Document(ctx).Tasks))
}

func TestDeny_IneligibleTask(t *testing.T) {
	store := newMemStore(writePost())
	_, err := newTestService(store).Deny(context.Background(), "1")
	assert.True(t, errors.Is(err, domain.ErrNotSuggestible))
	assert.Empty(t, store.messages)
}

func TestScheduleReminder(t *testing.T) {
	task := writePost()
	task.ZoyaCanHelp = ptr.To(true)
	task.ZoyaSuggestion = "Draft an outline"
	store := newMemStore(task)
	svc := newTestService(store)

	m, err := svc.ScheduleReminder(context.Background(), "1", suggestion.TomorrowMorning())
	require.NoError(t, err)
	require.NotNil(t, m.Task)

	require.Len(t, store.doc.Tasks, 2, "exactly one task is appended")
	reminder := store.task(t, m.Task.ID)
	assert.True(t, reminder.IsZoyaReminder)
	assert.Equal(t, "1", reminder.OriginalTaskID)
	assert.Equal(t, "2024-01-06", reminder.DueDate)
	assert.Equal(t, "2024-01-06T09:00:00", reminder.RemindAt)
	assert.Equal(t, "Reminder: Write post", reminder.Title)

	origin := store.task(t, "1")
	assert.Equal(t, "2024-01-05T10:30:00", origin.ReminderScheduled)
	assert.Contains(t, taskIDs(query.Open(store.doc.Tasks)), "1", "origin stays open")

	_, err = svc.ScheduleReminder(context.Background(), "missing", suggestion.InTwoHours())
	assert.True(t, errors.Is(err, domain.ErrTaskNotFound))
}

func TestMarkReminderSent(t *testing.T) {
	store := newMemStore(
		writePost(),
		domain.Task{ID: "r", Title: "Reminder: Write post", IsZoyaReminder: true, RemindSent: ptr.To(false)},
	)
	svc := newTestService(store)

	m, err := svc.MarkReminderSent(context.Background(), "r")
	require.NoError(t, err)
	assert.False(t, m.Task.IsPendingReminder())

	_, err = svc.MarkReminderSent(context.Background(), "1")
	assert.True(t, errors.Is(err, domain.ErrNotReminder))
}

func TestConcurrentMutationsAreSerialized(t *testing.T) {
	store := newMemStore()
	svc := newTestService(store)

	var wg sync.WaitGroup
	for range 20 {
		wg.Go(func() {
			_, err := svc.CreateTask(context.Background(), CreateTaskParams{Title: "T"})
			assert.NoError(t, err)
		})
	}
	wg.Wait()

	assert.Len(t, store.doc.Tasks, 20, "no load/save pair interleaved")
}

func taskIDs(tasks []domain.Task) []string {
	out := make([]string, 0, len(tasks))
	for _, t := range tasks {
		out = append(out, t.ID)
	}
	return out
}
