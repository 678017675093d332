package sse

import (
	"io"
	"strings"
	"testing"
)

func TestAccumulator_TextArrivalOrder(t *testing.T) {
	acc := NewAccumulator()
	acc.ProcessEvent(TextEvent{Text: "The answer "})
	acc.ProcessEvent(TextEvent{Text: "is 42."})

	if got := acc.Text(); got != "The answer is 42." {
		t.Errorf("expected 'The answer is 42.', got %q", got)
	}
}

func TestAccumulator_UsageStrictlyAdditive(t *testing.T) {
	acc := NewAccumulator()
	acc.ProcessEvent(UsageEvent{Usage: UsageInfo{PromptTokens: 10, CompletionTokens: 5}})
	acc.ProcessEvent(UsageEvent{Usage: UsageInfo{PromptTokens: 3, CompletionTokens: 2}})
	acc.ProcessEvent(FinishEvent{
		FinishReason: "stop",
		Usage:        &UsageInfo{PromptTokens: 1, CompletionTokens: 1},
	})

	if acc.PromptTokens() != 14 {
		t.Errorf("expected 14 prompt tokens, got %d", acc.PromptTokens())
	}
	if acc.CompletionTokens() != 8 {
		t.Errorf("expected 8 completion tokens, got %d", acc.CompletionTokens())
	}
	if acc.TotalTokens() != 22 {
		t.Errorf("expected 22 total tokens, got %d", acc.TotalTokens())
	}
}

func TestAccumulator_FinishWithoutUsage(t *testing.T) {
	acc := NewAccumulator()
	acc.ProcessEvent(FinishEvent{FinishReason: "tool-calls"})

	if !acc.Finished() {
		t.Error("expected finished")
	}
	if acc.FinishReason() != "tool-calls" {
		t.Errorf("expected reason 'tool-calls', got %q", acc.FinishReason())
	}
	if acc.TotalTokens() != 0 {
		t.Errorf("expected no tokens, got %d", acc.TotalTokens())
	}
}

func TestAccumulator_ToolCallsLastWriteWins(t *testing.T) {
	acc := NewAccumulator()
	acc.ProcessEvent(ToolCallEvent{ToolCallID: "t1", Phase: PhaseStarted})
	acc.ProcessEvent(ToolCallEvent{ToolCallID: "t1", Phase: PhaseInputAvailable})
	acc.ProcessEvent(ToolCallEvent{ToolCallID: "t2", Phase: PhaseStarted})

	calls := acc.ToolCalls()
	if len(calls) != 2 {
		t.Fatalf("expected 2 tool calls, got %d", len(calls))
	}
	if calls["t1"].Phase != PhaseInputAvailable {
		t.Errorf("expected latest phase for t1, got %q", calls["t1"].Phase)
	}
}

func TestAccumulator_ToolCallsReturnsCopy(t *testing.T) {
	acc := NewAccumulator()
	acc.ProcessEvent(ToolCallEvent{ToolCallID: "t1", Phase: PhaseStarted})

	calls := acc.ToolCalls()
	delete(calls, "t1")

	if len(acc.ToolCalls()) != 1 {
		t.Error("mutating the returned map must not affect internal state")
	}
}

func TestAccumulator_IgnoresNonAggregateEvents(t *testing.T) {
	acc := NewAccumulator()
	acc.ProcessEvent(StepStartEvent{})
	acc.ProcessEvent(ErrorEvent{Message: "oops"})
	acc.ProcessEvent(ToolOutputErrorEvent{ToolCallID: "t1"})
	acc.ProcessEvent(UnknownEvent{RawType: "mystery"})

	if acc.Text() != "" || acc.Finished() || acc.TotalTokens() != 0 {
		t.Error("non-aggregate events must not change state")
	}
	if len(acc.ToolCalls()) != 0 {
		t.Error("tool output errors are not tool-call upserts")
	}
}

func TestAccumulator_Reset(t *testing.T) {
	acc := NewAccumulator()
	acc.ProcessEvent(TextEvent{Text: "hello"})
	acc.ProcessEvent(ToolCallEvent{ToolCallID: "t1", Phase: PhaseStarted})
	acc.ProcessEvent(UsageEvent{Usage: UsageInfo{PromptTokens: 5, CompletionTokens: 5}})
	acc.ProcessEvent(FinishEvent{FinishReason: "stop"})

	acc.Reset()

	if acc.Text() != "" {
		t.Errorf("expected empty text, got %q", acc.Text())
	}
	if len(acc.ToolCalls()) != 0 {
		t.Error("expected no tool calls")
	}
	if acc.Finished() {
		t.Error("expected not finished")
	}
	if acc.FinishReason() != "" {
		t.Errorf("expected empty reason, got %q", acc.FinishReason())
	}
	if acc.TotalTokens() != 0 {
		t.Errorf("expected zero tokens, got %d", acc.TotalTokens())
	}
}

// End-to-end fold of a decoded stream, both dialects contributing text.
func TestAccumulator_FoldsDecodedStream(t *testing.T) {
	stream := "data: {\"type\":\"step-start\"}\n" +
		"data: {\"type\":\"text\",\"text\":\"Hello \"}\n" +
		"data: {\"type\":\"text-delta\",\"delta\":\"world!\"}\n" +
		"data: {\"type\":\"data-usage\",\"data\":{\"promptTokens\":12,\"completionTokens\":4}}\n" +
		"data: {\"type\":\"finish\",\"finishReason\":\"stop\"}\n"

	dec := NewDecoder(strings.NewReader(stream))
	acc := NewAccumulator()
	for {
		evt, err := dec.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		acc.ProcessEvent(evt)
	}

	if acc.Text() != "Hello world!" {
		t.Errorf("expected 'Hello world!', got %q", acc.Text())
	}
	if !acc.Finished() {
		t.Error("expected finished")
	}
	if acc.FinishReason() != "stop" {
		t.Errorf("expected reason 'stop', got %q", acc.FinishReason())
	}
	if acc.PromptTokens() != 12 || acc.CompletionTokens() != 4 {
		t.Errorf("unexpected usage: %d/%d", acc.PromptTokens(), acc.CompletionTokens())
	}
}
