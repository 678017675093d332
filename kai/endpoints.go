package kai

import (
	"context"
	"net/http"
	"net/url"
	"strconv"
)

// Ping checks backend liveness. It is unauthenticated by design so it
// can verify reachability before credentials are configured.
func (c *Client) Ping(ctx context.Context) (*PingResponse, error) {
	var result PingResponse
	if err := c.doRequest(ctx, http.MethodGet, "/ping", nil, nil, &result, false); err != nil {
		return nil, err
	}
	return &result, nil
}

// Info returns backend metadata including connected MCP servers.
func (c *Client) Info(ctx context.Context) (*InfoResponse, error) {
	var result InfoResponse
	if err := c.doRequest(ctx, http.MethodGet, "/api", nil, nil, &result, true); err != nil {
		return nil, err
	}
	return &result, nil
}

// GetChat retrieves a conversation with its stored messages.
func (c *Client) GetChat(ctx context.Context, chatID string) (*ChatDetail, error) {
	var result ChatDetail
	if err := c.doRequest(ctx, http.MethodGet, "/api/chat/"+chatID, nil, nil, &result, true); err != nil {
		return nil, err
	}
	return &result, nil
}

// DeleteChat removes a conversation.
func (c *Client) DeleteChat(ctx context.Context, chatID string) error {
	query := url.Values{"id": {chatID}}
	return c.doRequest(ctx, http.MethodDelete, "/api/chat", query, nil, nil, true)
}

// GetHistory returns a page of conversation summaries. startingAfter
// paginates past a known chat id; pass empty for the first page.
func (c *Client) GetHistory(ctx context.Context, limit int, startingAfter string) (*HistoryResponse, error) {
	query := url.Values{"limit": {strconv.Itoa(limit)}}
	if startingAfter != "" {
		query.Set("starting_after", startingAfter)
	}

	var result HistoryResponse
	if err := c.doRequest(ctx, http.MethodGet, "/api/history", query, nil, &result, true); err != nil {
		return nil, err
	}
	return &result, nil
}

// GetVotes lists votes recorded for a conversation.
func (c *Client) GetVotes(ctx context.Context, chatID string) ([]Vote, error) {
	query := url.Values{"chatId": {chatID}}
	var result []Vote
	if err := c.doRequest(ctx, http.MethodGet, "/api/vote", query, nil, &result, true); err != nil {
		return nil, err
	}
	return result, nil
}

// Vote records an up or down vote on one message.
func (c *Client) Vote(ctx context.Context, chatID, messageID, voteType string) (*Vote, error) {
	body := Vote{ChatID: chatID, MessageID: messageID, Type: voteType}
	var result Vote
	if err := c.doRequest(ctx, http.MethodPatch, "/api/vote", nil, body, &result, true); err != nil {
		return nil, err
	}
	return &result, nil
}

// Upvote records an up vote on one message.
func (c *Client) Upvote(ctx context.Context, chatID, messageID string) (*Vote, error) {
	return c.Vote(ctx, chatID, messageID, "up")
}

// Downvote records a down vote on one message.
func (c *Client) Downvote(ctx context.Context, chatID, messageID string) (*Vote, error) {
	return c.Vote(ctx, chatID, messageID, "down")
}
