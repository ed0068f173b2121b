package domain

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewDocument_EncodesEmptyCollections(t *testing.T) {
	out, err := json.Marshal(NewDocument())
	require.NoError(t, err)
	assert.JSONEq(t, `{"departments":[],"department_labels":{},"tasks":[]}`, string(out))
}

func TestDocument_UnmarshalNormalizesMissingCollections(t *testing.T) {
	var doc Document
	require.NoError(t, json.Unmarshal([]byte(`{"tasks":null}`), &doc))

	assert.NotNil(t, doc.Departments)
	assert.NotNil(t, doc.DepartmentLabels)
	assert.NotNil(t, doc.Tasks)
	assert.Empty(t, doc.Tasks)
}

func TestDocument_RoundTripKeepsTopLevelExtras(t *testing.T) {
	input := `{
		"departments": ["content"],
		"department_labels": {"content": "📝 Content"},
		"tasks": [{"id": "1", "title": "Write post", "done": true, "completed_date": "2024-01-05", "source": "chat"}],
		"last_sync": "2024-01-05T10:00:00"
	}`

	var doc Document
	require.NoError(t, json.Unmarshal([]byte(input), &doc))
	assert.JSONEq(t, `"2024-01-05T10:00:00"`, string(doc.Extra["last_sync"]))
	assert.JSONEq(t, `"chat"`, string(doc.Tasks[0].Extra["source"]))

	out, err := json.Marshal(doc)
	require.NoError(t, err)
	assert.JSONEq(t, input, string(out))
}

func TestDocument_FindTaskReturnsMutablePointer(t *testing.T) {
	doc := NewDocument()
	require.NoError(t, doc.AddTask(Task{ID: "1", Title: "A"}))

	task, err := doc.FindTask("1")
	require.NoError(t, err)
	task.Done = true

	assert.True(t, doc.Tasks[0].Done)

	_, err = doc.FindTask("missing")
	assert.True(t, errors.Is(err, ErrTaskNotFound))
}

func TestDocument_AddTaskRejectsDuplicateID(t *testing.T) {
	doc := NewDocument()
	require.NoError(t, doc.AddTask(Task{ID: "1", Title: "A"}))

	err := doc.AddTask(Task{ID: "1", Title: "B"})
	assert.True(t, errors.Is(err, ErrDuplicateTaskID))
	assert.Len(t, doc.Tasks, 1)
}

func TestDocument_Validate(t *testing.T) {
	doc := &Document{Tasks: []Task{{ID: "1"}, {ID: "2"}}}
	assert.NoError(t, doc.Validate())

	doc.Tasks = append(doc.Tasks, Task{ID: "1"})
	assert.True(t, errors.Is(doc.Validate(), ErrDuplicateTaskID))

	doc.Tasks = []Task{{Title: "no id"}}
	assert.True(t, errors.Is(doc.Validate(), ErrTaskIDRequired))
}

func TestDocument_RepairIDs(t *testing.T) {
	doc := &Document{Tasks: []Task{{ID: "1"}, {Title: "no id"}, {ID: "1"}, {Title: "no id"}}}

	assigned, duplicates := doc.RepairIDs()
	require.Len(t, assigned, 2)
	assert.NotEqual(t, assigned[0], assigned[1], "position makes ids distinct")
	assert.Equal(t, []string{"1"}, duplicates)
	assert.Len(t, doc.Tasks, 4)
	assert.Equal(t, assigned[0], doc.Tasks[1].ID)

	again := &Document{Tasks: []Task{{ID: "1"}, {Title: "no id"}, {ID: "1"}, {Title: "no id"}}}
	reassigned, _ := again.RepairIDs()
	assert.Equal(t, assigned, reassigned, "same input yields same ids")
}

func TestDocument_CloneIsIndependent(t *testing.T) {
	doc := NewDocument()
	doc.DepartmentLabels["content"] = "Content"
	require.NoError(t, doc.AddTask(Task{ID: "1", Title: "A"}))

	clone := doc.Clone()
	clone.DepartmentLabels["content"] = "Changed"
	clone.Tasks[0].Title = "Changed"
	clone.Departments = append(clone.Departments, "ops")

	assert.Equal(t, "Content", doc.DepartmentLabels["content"])
	assert.Equal(t, "A", doc.Tasks[0].Title)
	assert.Empty(t, doc.Departments)
}
