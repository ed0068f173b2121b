package domain

import "errors"

// Validation errors returned by value object constructors and update params.
var (
	// ErrTitleRequired indicates an empty or whitespace-only title.
	ErrTitleRequired = errors.New("title is required")

	// ErrTitleTooLong indicates a title exceeding MaxTitleLength characters.
	ErrTitleTooLong = errors.New("title must be 255 characters or less")

	// ErrInvalidPriority indicates a priority outside {high, medium, low}.
	ErrInvalidPriority = errors.New("invalid priority")

	// ErrInvalidDate indicates a date that is not in YYYY-MM-DD form.
	ErrInvalidDate = errors.New("invalid date, expected YYYY-MM-DD")

	// ErrInvalidSuggestionStatus indicates an unknown suggestion workflow state.
	ErrInvalidSuggestionStatus = errors.New("invalid suggestion status")

	// ErrEmptyUpdateMask indicates an update request without any fields.
	ErrEmptyUpdateMask = errors.New("update mask is empty")

	// ErrUnknownUpdateField indicates an update mask entry outside the mutable surface.
	ErrUnknownUpdateField = errors.New("unknown field in update mask")

	// ErrInvalidOrder indicates a negative manual sort position.
	ErrInvalidOrder = errors.New("order must be >= 0")

	// ErrInvalidTaskField indicates a stored task member whose JSON type does
	// not match its field.
	ErrInvalidTaskField = errors.New("invalid task field")

	// ErrInvalidDepartment indicates an empty department key.
	ErrInvalidDepartment = errors.New("department key is required")
)

// Lookup and state errors.
var (
	// ErrTaskNotFound indicates no task with the given id exists in the document.
	ErrTaskNotFound = errors.New("task not found")

	// ErrTaskIDRequired indicates a stored task without an id.
	ErrTaskIDRequired = errors.New("task id is required")

	// ErrDuplicateTaskID indicates two tasks in one document share an id.
	ErrDuplicateTaskID = errors.New("duplicate task id")

	// ErrNotSuggestible indicates a workflow action on a task not marked zoya_can_help.
	ErrNotSuggestible = errors.New("task is not eligible for suggestions")

	// ErrInvalidTransition indicates a workflow action not allowed from the current state.
	ErrInvalidTransition = errors.New("invalid suggestion transition")

	// ErrInvalidReminder indicates an unusable reminder schedule.
	ErrInvalidReminder = errors.New("invalid reminder schedule")

	// ErrNotReminder indicates a reminder-only operation on a regular task.
	ErrNotReminder = errors.New("task is not a reminder")
)
