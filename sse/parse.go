package sse

// The backend speaks two wire dialects: the local development server
// emits whole records ("text", "tool-call"), while production runs an
// upstream SDK that emits incremental ones ("text-delta",
// "tool-input-available", ...). Both normalize into the same Event
// union here so consumers never branch on dialect.

// parserFunc normalizes one raw wire record into an Event.
type parserFunc func(data map[string]any) Event

// eventParsers is the dispatch table keyed by wire event type. Adding a
// wire type is a table insertion, not a new conditional.
var eventParsers = map[string]parserFunc{
	"text":                  parseText,
	"text-delta":            parseTextDelta,
	"step-start":            parseStepStart,
	"start-step":            parseStepStart,
	"tool-call":             parseToolCall,
	"tool-input-start":      parseToolInputStart,
	"tool-input-available":  parseToolInputAvailable,
	"tool-output-available": parseToolOutputAvailable,
	"tool-output-error":     parseToolOutputError,
	"tool-approval-request": parseToolApprovalRequest,
	"data-usage":            parseUsage,
	"finish":                parseFinish,
	"finish-step":           parseFinish,
	"error":                 parseError,
}

// ParseEvent normalizes a raw wire record into a typed Event. It never
// fails: records whose type has no table entry come back as UnknownEvent
// with the payload preserved, keeping the client forward compatible with
// new server-side event kinds.
func ParseEvent(data map[string]any) Event {
	eventType := stringField(data, "type")
	if parser, ok := eventParsers[eventType]; ok {
		return parser(data)
	}

	// Known-but-ignorable production record types also land here:
	// "start" (message start), "text-start", "text-end", "step-end".
	return UnknownEvent{RawType: eventType, Data: data}
}

func parseText(data map[string]any) Event {
	return TextEvent{
		Text:  stringField(data, "text"),
		State: stringField(data, "state"),
	}
}

// parseTextDelta reads the production dialect, which carries the text
// fragment in "delta" instead of "text".
func parseTextDelta(data map[string]any) Event {
	return TextEvent{
		Text:  stringField(data, "delta"),
		State: stringField(data, "state"),
	}
}

func parseStepStart(data map[string]any) Event {
	return StepStartEvent{}
}

func parseToolCall(data map[string]any) Event {
	return ToolCallEvent{
		ToolCallID: stringField(data, "toolCallId"),
		ToolName:   stringField(data, "toolName"),
		Phase:      Phase(stringField(data, "state")),
		Input:      mapField(data, "input"),
		Output:     data["output"],
		Approval:   parseApproval(data),
	}
}

func parseToolInputStart(data map[string]any) Event {
	return ToolCallEvent{
		ToolCallID: stringField(data, "toolCallId"),
		ToolName:   stringField(data, "toolName"),
		Phase:      PhaseStarted,
	}
}

func parseToolInputAvailable(data map[string]any) Event {
	return ToolCallEvent{
		ToolCallID: stringField(data, "toolCallId"),
		ToolName:   stringField(data, "toolName"),
		Phase:      PhaseInputAvailable,
		Input:      mapField(data, "input"),
		Approval:   parseApproval(data),
	}
}

func parseToolOutputAvailable(data map[string]any) Event {
	return ToolCallEvent{
		ToolCallID: stringField(data, "toolCallId"),
		ToolName:   stringField(data, "toolName"),
		Phase:      PhaseOutputAvailable,
		Output:     data["output"],
	}
}

func parseToolOutputError(data map[string]any) Event {
	errorText := stringField(data, "errorText")
	if errorText == "" {
		errorText = "Unknown error"
	}
	return ToolOutputErrorEvent{
		ToolCallID: stringField(data, "toolCallId"),
		ErrorText:  errorText,
	}
}

func parseToolApprovalRequest(data map[string]any) Event {
	return ToolApprovalRequestEvent{
		ApprovalID: stringField(data, "approvalId"),
		ToolCallID: stringField(data, "toolCallId"),
	}
}

// parseUsage unwraps a data-usage record. The upstream SDK prefixes
// custom data channels with "data-", so the record arrives as
// {type: "data-usage", data: {promptTokens, completionTokens}}.
func parseUsage(data map[string]any) Event {
	usageData := mapField(data, "data")
	return UsageEvent{
		Usage: UsageInfo{
			PromptTokens:     intField(usageData, "promptTokens"),
			CompletionTokens: intField(usageData, "completionTokens"),
		},
	}
}

func parseFinish(data map[string]any) Event {
	reason := stringField(data, "finishReason")
	if reason == "" {
		reason = "stop"
	}

	evt := FinishEvent{FinishReason: reason}
	if usageData := mapField(data, "usage"); usageData != nil {
		evt.Usage = &UsageInfo{
			PromptTokens:     intField(usageData, "promptTokens"),
			CompletionTokens: intField(usageData, "completionTokens"),
		}
	}
	return evt
}

func parseError(data map[string]any) Event {
	message := stringField(data, "message")
	if message == "" {
		message = "Unknown error"
	}
	return ErrorEvent{
		Message: message,
		Code:    stringField(data, "code"),
	}
}

// parseApproval extracts the approval sub-record from a tool-call record.
// It returns non-nil only for a structurally valid mapping carrying a
// non-empty id; anything else means the call is governed by the legacy
// protocol generation and the field stays absent.
func parseApproval(data map[string]any) *ToolApproval {
	approvalData := mapField(data, "approval")
	if approvalData == nil {
		return nil
	}
	id := stringField(approvalData, "id")
	if id == "" {
		return nil
	}

	approval := &ToolApproval{
		ID:     id,
		Reason: stringField(approvalData, "reason"),
	}
	if approved, ok := approvalData["approved"].(bool); ok {
		approval.Approved = &approved
	}
	return approval
}

func stringField(data map[string]any, key string) string {
	s, _ := data[key].(string)
	return s
}

func mapField(data map[string]any, key string) map[string]any {
	m, _ := data[key].(map[string]any)
	return m
}

// intField reads a numeric field. JSON numbers decode as float64.
func intField(data map[string]any, key string) int {
	switch n := data[key].(type) {
	case float64:
		return int(n)
	case int:
		return n
	default:
		return 0
	}
}
