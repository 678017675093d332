package sse

import "strings"

// Accumulator folds a stream's event sequence into aggregate state:
// running text, per-id tool calls, token totals, and terminal status.
//
// An Accumulator is owned by the caller that initiated the stream. It is
// not safe for concurrent use and must not be shared across concurrent
// streams; give each stream its own instance. Reuse for a new stream
// requires an explicit Reset first.
type Accumulator struct {
	fragments        []string
	toolCalls        map[string]ToolCallEvent
	finishReason     string
	promptTokens     int
	completionTokens int
	finished         bool
}

// NewAccumulator creates an empty Accumulator.
func NewAccumulator() *Accumulator {
	return &Accumulator{toolCalls: make(map[string]ToolCallEvent)}
}

// ProcessEvent folds one event into the accumulated state. Text
// fragments append in arrival order; tool calls upsert last-write-wins;
// usage adds both counters. Finish marks the stream done, records the
// reason, and adds any embedded usage. Each step reports its own usage,
// so totals are additive across steps rather than a running server-side
// total. No event ever decrements a counter or removes an entry.
func (a *Accumulator) ProcessEvent(evt Event) {
	switch e := evt.(type) {
	case TextEvent:
		a.fragments = append(a.fragments, e.Text)
	case ToolCallEvent:
		a.toolCalls[e.ToolCallID] = e
	case UsageEvent:
		a.promptTokens += e.Usage.PromptTokens
		a.completionTokens += e.Usage.CompletionTokens
	case FinishEvent:
		a.finished = true
		a.finishReason = e.FinishReason
		if e.Usage != nil {
			a.promptTokens += e.Usage.PromptTokens
			a.completionTokens += e.Usage.CompletionTokens
		}
	}
}

// Text returns the accumulated text, fragments joined in arrival order.
func (a *Accumulator) Text() string {
	return strings.Join(a.fragments, "")
}

// ToolCalls returns a copy of the per-id tool call map.
func (a *Accumulator) ToolCalls() map[string]ToolCallEvent {
	calls := make(map[string]ToolCallEvent, len(a.toolCalls))
	for id, evt := range a.toolCalls {
		calls[id] = evt
	}
	return calls
}

// Finished reports whether a finish event has been seen.
func (a *Accumulator) Finished() bool {
	return a.finished
}

// FinishReason returns the recorded finish reason, empty until finished.
func (a *Accumulator) FinishReason() string {
	return a.finishReason
}

// PromptTokens returns total prompt tokens across all steps.
func (a *Accumulator) PromptTokens() int {
	return a.promptTokens
}

// CompletionTokens returns total completion tokens across all steps.
func (a *Accumulator) CompletionTokens() int {
	return a.completionTokens
}

// TotalTokens returns prompt plus completion tokens across all steps.
func (a *Accumulator) TotalTokens() int {
	return a.promptTokens + a.completionTokens
}

// Reset clears all state. It is the only supported way to reuse an
// Accumulator for a new stream.
func (a *Accumulator) Reset() {
	a.fragments = nil
	a.toolCalls = make(map[string]ToolCallEvent)
	a.finished = false
	a.finishReason = ""
	a.promptTokens = 0
	a.completionTokens = 0
}
