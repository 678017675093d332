package sse

// EventKind discriminates between normalized event kinds.
type EventKind int

const (
	// KindText fires for assistant text, whole or incremental.
	KindText EventKind = iota
	// KindStepStart fires when the agent begins a new reasoning step.
	KindStepStart
	// KindToolCall fires on every tool-call lifecycle transition.
	KindToolCall
	// KindToolOutputError fires when a tool's server-side execution failed.
	KindToolOutputError
	// KindToolApprovalRequest fires when the backend mints an approval ticket.
	KindToolApprovalRequest
	// KindUsage fires for out-of-band token usage records.
	KindUsage
	// KindFinish fires when a response (or step) completes.
	KindFinish
	// KindError fires for application-level errors inside a well-formed stream.
	KindError
	// KindUnknown is the fallback for wire types without a table entry.
	KindUnknown
)

// Event is the interface for all normalized stream events.
type Event interface {
	Kind() EventKind
}

// Phase is a tool-call lifecycle phase. Values are opaque wire strings
// preserved verbatim; the constants below cover the known lifecycle.
type Phase string

const (
	PhaseStarted         Phase = "started"
	PhaseInputAvailable  Phase = "input-available"
	PhaseOutputAvailable Phase = "output-available"
)

// UsageInfo holds token counts for one step.
type UsageInfo struct {
	PromptTokens     int `json:"promptTokens"`
	CompletionTokens int `json:"completionTokens"`
}

// ToolApproval is the approval sub-record attached to a tool call under
// the ticket-based protocol generation. Approved is tri-state: nil means
// no decision has been made yet.
type ToolApproval struct {
	ID       string
	Approved *bool
	Reason   string
}

// TextEvent contains assistant text. The local dialect delivers whole
// chunks, the production dialect incremental deltas; both normalize here.
type TextEvent struct {
	Text  string
	State string
}

// Kind returns the event kind.
func (e TextEvent) Kind() EventKind { return KindText }

// StepStartEvent marks the start of a reasoning step.
type StepStartEvent struct{}

// Kind returns the event kind.
func (e StepStartEvent) Kind() EventKind { return KindStepStart }

// ToolCallEvent describes one lifecycle transition of a tool call.
type ToolCallEvent struct {
	ToolCallID string
	ToolName   string
	Phase      Phase
	Input      map[string]any
	Output     any
	Approval   *ToolApproval
}

// Kind returns the event kind.
func (e ToolCallEvent) Kind() EventKind { return KindToolCall }

// ToolOutputErrorEvent reports a server-side tool execution failure.
// It is terminal for that tool call only, not for the stream.
type ToolOutputErrorEvent struct {
	ToolCallID string
	ErrorText  string
}

// Kind returns the event kind.
func (e ToolOutputErrorEvent) Kind() EventKind { return KindToolOutputError }

// ToolApprovalRequestEvent announces a pending approval ticket.
type ToolApprovalRequestEvent struct {
	ApprovalID string
	ToolCallID string
}

// Kind returns the event kind.
func (e ToolApprovalRequestEvent) Kind() EventKind { return KindToolApprovalRequest }

// UsageEvent carries an out-of-band token usage record.
type UsageEvent struct {
	Usage UsageInfo
}

// Kind returns the event kind.
func (e UsageEvent) Kind() EventKind { return KindUsage }

// FinishEvent marks completion of a response or step. Usage is present
// only when the wire record embeds one.
type FinishEvent struct {
	FinishReason string
	Usage        *UsageInfo
}

// Kind returns the event kind.
func (e FinishEvent) Kind() EventKind { return KindFinish }

// ErrorEvent is an application-level error delivered inside the stream.
type ErrorEvent struct {
	Message string
	Code    string
}

// Kind returns the event kind.
func (e ErrorEvent) Kind() EventKind { return KindError }

// UnknownEvent preserves wire records whose type has no table entry.
type UnknownEvent struct {
	RawType string
	Data    map[string]any
}

// Kind returns the event kind.
func (e UnknownEvent) Kind() EventKind { return KindUnknown }
