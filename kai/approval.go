package kai

import (
	"context"

	"github.com/keboola/kai-go/sse"
)

// Tool approval continuations. Two protocol generations coexist on the
// wire and the backend decides which one governs a given call:
//
//   - Ticket generation: the pending tool call carries an approval
//     sub-record; the continuation is keyed by that ticket id.
//   - Legacy generation: no approval record; the continuation is keyed
//     by the tool-call id and must resend the tool name because the
//     endpoint does not look it up server-side.
//
// Each continuation re-enters the same streaming pipeline as a message
// send: the backend resumes the paused turn and streams further events
// (tool output, text, finish). These methods perform no local lifecycle
// bookkeeping; feed the returned stream through the same Tracker and
// Accumulator as the original stream.

// unknownToolName is the compatibility fallback when a pending legacy
// call never announced its name.
const unknownToolName = "unknown"

func (c *Client) sendApprovalResponse(ctx context.Context, chatID, approvalID string, approved bool, reason string) (<-chan sse.Event, <-chan error, error) {
	part := messagePart{
		Type:       "tool-approval-response",
		ApprovalID: approvalID,
		Approved:   &approved,
		Reason:     reason,
	}
	body := c.newChatRequest(chatID, []messagePart{part})
	return c.stream(ctx, "/api/chat", body)
}

func (c *Client) sendToolConfirmation(ctx context.Context, chatID, toolCallID, toolName string, confirmed bool) (<-chan sse.Event, <-chan error, error) {
	if toolName == "" {
		toolName = unknownToolName
	}
	part := messagePart{
		Type:       "tool-confirmation",
		ToolCallID: toolCallID,
		ToolName:   toolName,
		Confirmed:  &confirmed,
	}
	body := c.newChatRequest(chatID, []messagePart{part})
	return c.stream(ctx, "/api/chat", body)
}

// ApproveTool approves a pending call under the ticket generation and
// streams the continuation. The reason is optional, human readable.
func (c *Client) ApproveTool(ctx context.Context, chatID, approvalID, reason string) (<-chan sse.Event, <-chan error, error) {
	return c.sendApprovalResponse(ctx, chatID, approvalID, true, reason)
}

// RejectTool denies a pending call under the ticket generation and
// streams the continuation.
func (c *Client) RejectTool(ctx context.Context, chatID, approvalID, reason string) (<-chan sse.Event, <-chan error, error) {
	return c.sendApprovalResponse(ctx, chatID, approvalID, false, reason)
}

// ConfirmTool approves a pending call under the legacy generation and
// streams the continuation.
func (c *Client) ConfirmTool(ctx context.Context, chatID, toolCallID, toolName string) (<-chan sse.Event, <-chan error, error) {
	return c.sendToolConfirmation(ctx, chatID, toolCallID, toolName, true)
}

// DenyTool denies a pending call under the legacy generation and
// streams the continuation.
func (c *Client) DenyTool(ctx context.Context, chatID, toolCallID, toolName string) (<-chan sse.Event, <-chan error, error) {
	return c.sendToolConfirmation(ctx, chatID, toolCallID, toolName, false)
}

// ResolvePending resolves one pending call with the continuation shape
// its protocol generation requires. The two paths are never mixed for
// the same call: a ticketed call always resolves by ticket id, a legacy
// call by tool-call id and name.
func (c *Client) ResolvePending(ctx context.Context, chatID string, call sse.PendingCall, approve bool, reason string) (<-chan sse.Event, <-chan error, error) {
	if call.Generation() == sse.GenerationTicket {
		return c.sendApprovalResponse(ctx, chatID, call.Approval.ID, approve, reason)
	}
	return c.sendToolConfirmation(ctx, chatID, call.ToolCallID, call.ToolName, approve)
}
