package kai

import (
	"context"
	"io"

	"github.com/keboola/kai-go/sse"
)

// messagePart is one part of an outgoing user message. Text sends use a
// single text part; approval continuations use the decision part shapes
// in approval.go.
type messagePart struct {
	Type string `json:"type"`
	Text string `json:"text,omitempty"`

	// Legacy tool-confirmation fields.
	ToolCallID string `json:"toolCallId,omitempty"`
	ToolName   string `json:"toolName,omitempty"`
	Confirmed  *bool  `json:"confirmed,omitempty"`

	// Ticket-generation approval-response fields.
	ApprovalID string `json:"approvalId,omitempty"`
	Approved   *bool  `json:"approved,omitempty"`
	Reason     string `json:"reason,omitempty"`
}

type chatMessage struct {
	ID    string        `json:"id"`
	Role  string        `json:"role"`
	Parts []messagePart `json:"parts"`
}

// chatRequest is the POST /api/chat body for sends and continuations.
type chatRequest struct {
	ID                     string      `json:"id"`
	Message                chatMessage `json:"message"`
	SelectedChatModel      string      `json:"selectedChatModel"`
	SelectedVisibilityType string      `json:"selectedVisibilityType"`
}

func (c *Client) newChatRequest(chatID string, parts []messagePart) chatRequest {
	return chatRequest{
		ID: chatID,
		Message: chatMessage{
			ID:    NewMessageID(),
			Role:  "user",
			Parts: parts,
		},
		SelectedChatModel:      c.model,
		SelectedVisibilityType: c.visibility,
	}
}

// SendMessage sends a user message and streams the normalized response
// events. The channels close when the stream ends; see Client.stream
// for the error contract. The caller owns event consumption and is
// responsible for feeding a Tracker/Accumulator if aggregate state is
// wanted.
func (c *Client) SendMessage(ctx context.Context, chatID, text string) (<-chan sse.Event, <-chan error, error) {
	body := c.newChatRequest(chatID, []messagePart{{Type: "text", Text: text}})
	return c.stream(ctx, "/api/chat", body)
}

// Chat sends a message and blocks until the stream finishes, returning
// the conversation id and the accumulated response text. An empty
// chatID starts a new conversation. Application-level error events
// inside the stream do not fail the call; stream faults do.
func (c *Client) Chat(ctx context.Context, chatID, text string) (string, string, error) {
	if chatID == "" {
		chatID = NewChatID()
	}

	events, errCh, err := c.SendMessage(ctx, chatID, text)
	if err != nil {
		return chatID, "", err
	}

	acc := sse.NewAccumulator()
	if err := Consume(events, errCh, acc, nil); err != nil {
		return chatID, acc.Text(), err
	}
	return chatID, acc.Text(), nil
}

// Consume drains a stream's channels, feeding every event through the
// given Accumulator and Tracker (either may be nil). It returns the
// stream fault, if any, once both channels are exhausted. Repeated
// approve/resume cycles feed their continuation streams through the
// same instances to keep lifecycle state consistent.
func Consume(events <-chan sse.Event, errCh <-chan error, acc *sse.Accumulator, tracker *sse.Tracker) error {
	for evt := range events {
		if acc != nil {
			acc.ProcessEvent(evt)
		}
		if tracker != nil {
			tracker.Observe(evt)
		}
	}

	if err := <-errCh; err != nil && err != io.EOF {
		return err
	}
	return nil
}
