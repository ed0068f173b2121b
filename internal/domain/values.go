package domain

// Priority represents the priority level of a task.
// Value object - immutable string enum.
type Priority string

const (
	PriorityHigh   Priority = "high"
	PriorityMedium Priority = "medium"
	PriorityLow    Priority = "low"
)

// SuggestionStatus is the state of the assistant-suggestion workflow on a task.
// An eligible task without a stored status is implicitly SuggestionSuggested.
type SuggestionStatus string

const (
	SuggestionSuggested SuggestionStatus = "suggested"
	SuggestionApproved  SuggestionStatus = "approved"
	SuggestionDenied    SuggestionStatus = "denied"
	SuggestionChatNow   SuggestionStatus = "chat_now"
	SuggestionCompleted SuggestionStatus = "completed"
)

// Defaults applied when a task record omits a field.
const (
	// DefaultDepartment is the sentinel department for tasks without one.
	DefaultDepartment = "quick"

	// DefaultOrder places tasks without a manual position after ordered ones.
	DefaultOrder = 999

	// NoDueDateSentinel sorts after every ISO 8601 date.
	NoDueDateSentinel = "9999"
)

// Layouts used for every persisted date and datetime string.
const (
	DateLayout     = "2006-01-02"
	DateTimeLayout = "2006-01-02T15:04:05"
)
