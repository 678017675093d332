package kai

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/keboola/kai-go/sse"
)

func lastRequestPart(t *testing.T, handler *sseHandler) map[string]any {
	t.Helper()
	var body map[string]any
	require.NoError(t, json.Unmarshal(handler.lastBody, &body))
	parts := body["message"].(map[string]any)["parts"].([]any)
	require.Len(t, parts, 1)
	return parts[0].(map[string]any)
}

func finishOnly() []string {
	return []string{`data: {"type":"finish","finishReason":"stop"}`}
}

func TestApproveTool_TicketBody(t *testing.T) {
	handler := &sseHandler{lines: finishOnly()}
	client, _ := newTestClient(t, handler)

	events, errCh, err := client.ApproveTool(context.Background(), "chat-123", "appr-42", "looks safe")
	require.NoError(t, err)
	collectEvents(t, events, errCh)

	part := lastRequestPart(t, handler)
	assert.Equal(t, "tool-approval-response", part["type"])
	assert.Equal(t, "appr-42", part["approvalId"])
	assert.Equal(t, true, part["approved"])
	assert.Equal(t, "looks safe", part["reason"])
	assert.NotContains(t, part, "toolCallId")
	assert.NotContains(t, part, "toolName")
}

func TestRejectTool_TicketBody(t *testing.T) {
	handler := &sseHandler{lines: finishOnly()}
	client, _ := newTestClient(t, handler)

	events, errCh, err := client.RejectTool(context.Background(), "chat-123", "appr-42", "too risky")
	require.NoError(t, err)
	collectEvents(t, events, errCh)

	part := lastRequestPart(t, handler)
	assert.Equal(t, "tool-approval-response", part["type"])
	assert.Equal(t, false, part["approved"])
	assert.Equal(t, "too risky", part["reason"])
}

func TestConfirmTool_LegacyBody(t *testing.T) {
	handler := &sseHandler{lines: finishOnly()}
	client, _ := newTestClient(t, handler)

	events, errCh, err := client.ConfirmTool(context.Background(), "chat-123", "call-7", "create_bucket")
	require.NoError(t, err)
	collectEvents(t, events, errCh)

	part := lastRequestPart(t, handler)
	assert.Equal(t, "tool-confirmation", part["type"])
	assert.Equal(t, "call-7", part["toolCallId"])
	assert.Equal(t, "create_bucket", part["toolName"])
	assert.Equal(t, true, part["confirmed"])
	assert.NotContains(t, part, "approvalId")
}

func TestDenyTool_LegacyBody(t *testing.T) {
	handler := &sseHandler{lines: finishOnly()}
	client, _ := newTestClient(t, handler)

	events, errCh, err := client.DenyTool(context.Background(), "chat-123", "call-7", "drop_table")
	require.NoError(t, err)
	collectEvents(t, events, errCh)

	part := lastRequestPart(t, handler)
	assert.Equal(t, "tool-confirmation", part["type"])
	assert.Equal(t, false, part["confirmed"])
}

func TestConfirmTool_NameFallback(t *testing.T) {
	handler := &sseHandler{lines: finishOnly()}
	client, _ := newTestClient(t, handler)

	events, errCh, err := client.ConfirmTool(context.Background(), "chat-123", "call-7", "")
	require.NoError(t, err)
	collectEvents(t, events, errCh)

	part := lastRequestPart(t, handler)
	assert.Equal(t, "unknown", part["toolName"])
}

func TestResolvePending_TicketGeneration(t *testing.T) {
	handler := &sseHandler{lines: finishOnly()}
	client, _ := newTestClient(t, handler)

	call := sse.PendingCall{ToolCallEvent: sse.ToolCallEvent{
		ToolCallID: "call-7",
		ToolName:   "create_bucket",
		Phase:      sse.PhaseInputAvailable,
		Approval:   &sse.ToolApproval{ID: "appr-42"},
	}}
	require.Equal(t, sse.GenerationTicket, call.Generation())

	events, errCh, err := client.ResolvePending(context.Background(), "chat-123", call, true, "ok")
	require.NoError(t, err)
	collectEvents(t, events, errCh)

	part := lastRequestPart(t, handler)
	assert.Equal(t, "tool-approval-response", part["type"])
	assert.Equal(t, "appr-42", part["approvalId"])
}

func TestResolvePending_LegacyGeneration(t *testing.T) {
	handler := &sseHandler{lines: finishOnly()}
	client, _ := newTestClient(t, handler)

	call := sse.PendingCall{ToolCallEvent: sse.ToolCallEvent{
		ToolCallID: "call-7",
		ToolName:   "create_bucket",
		Phase:      sse.PhaseInputAvailable,
	}}
	require.Equal(t, sse.GenerationLegacy, call.Generation())

	events, errCh, err := client.ResolvePending(context.Background(), "chat-123", call, false, "no")
	require.NoError(t, err)
	collectEvents(t, events, errCh)

	part := lastRequestPart(t, handler)
	assert.Equal(t, "tool-confirmation", part["type"])
	assert.Equal(t, "call-7", part["toolCallId"])
	assert.Equal(t, false, part["confirmed"])
}

// A turn can pause for approval more than once. Every continuation
// stream feeds the same tracker and accumulator, so earlier calls stay
// resolved while new ones become pending.
func TestApprovalCycle_MultiplePauses(t *testing.T) {
	handler := &sseHandler{lines: []string{
		`data: {"type":"tool-input-available","toolCallId":"call-1","toolName":"create_bucket","input":{},"approval":{"id":"appr-1"}}`,
	}}
	client, _ := newTestClient(t, handler)

	acc := sse.NewAccumulator()
	tracker := sse.NewTracker()

	events, errCh, err := client.SendMessage(context.Background(), "chat-123", "set up storage")
	require.NoError(t, err)
	require.NoError(t, Consume(events, errCh, acc, tracker))
	require.Len(t, tracker.Pending(), 1)
	first := tracker.Pending()[0]

	// First approval resolves call-1 but the resumed turn pauses again.
	handler.lines = []string{
		`data: {"type":"tool-output-available","toolCallId":"call-1","output":{"bucket":"in.c-main"}}`,
		`data: {"type":"tool-input-available","toolCallId":"call-2","toolName":"create_table","input":{},"approval":{"id":"appr-2"}}`,
	}
	events, errCh, err = client.ResolvePending(context.Background(), "chat-123", first, true, "")
	require.NoError(t, err)
	require.NoError(t, Consume(events, errCh, acc, tracker))
	require.Len(t, tracker.Pending(), 1)
	second := tracker.Pending()[0]
	assert.Equal(t, "call-2", second.ToolCallID)

	handler.lines = []string{
		`data: {"type":"tool-output-available","toolCallId":"call-2","output":{}}`,
		`data: {"type":"text-delta","delta":"All set."}`,
		`data: {"type":"finish","finishReason":"stop","usage":{"promptTokens":12,"completionTokens":4}}`,
	}
	events, errCh, err = client.ResolvePending(context.Background(), "chat-123", second, true, "")
	require.NoError(t, err)
	require.NoError(t, Consume(events, errCh, acc, tracker))

	assert.Empty(t, tracker.Pending())
	assert.Equal(t, "All set.", acc.Text())
	assert.True(t, acc.Finished())
	assert.Equal(t, 16, acc.TotalTokens())
}
