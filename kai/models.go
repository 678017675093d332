package kai

import "time"

// PingResponse is the /ping health check payload.
type PingResponse struct {
	Timestamp time.Time `json:"timestamp"`
}

// MCPServer describes one MCP connection reported by the backend.
type MCPServer struct {
	Name   string `json:"name"`
	Status string `json:"status"`
}

// InfoResponse is the /api server metadata payload.
type InfoResponse struct {
	Timestamp     time.Time   `json:"timestamp"`
	Uptime        float64     `json:"uptime"`
	AppName       string      `json:"appName"`
	AppVersion    string      `json:"appVersion"`
	ServerVersion string      `json:"serverVersion"`
	ConnectedMCP  []MCPServer `json:"connectedMcp"`
}

// Chat is a conversation summary as listed in history.
type Chat struct {
	ID         string `json:"id"`
	Title      string `json:"title"`
	Visibility string `json:"visibility,omitempty"`
}

// Message is one stored conversation message. Parts are kept as raw
// mappings: the backend stores a superset of part shapes (text, tool
// invocations, step markers) and the client does not re-normalize
// history.
type Message struct {
	ID    string           `json:"id"`
	Role  string           `json:"role"`
	Parts []map[string]any `json:"parts"`
}

// ChatDetail is a full conversation with messages.
type ChatDetail struct {
	ID       string    `json:"id"`
	Title    string    `json:"title"`
	Messages []Message `json:"messages"`
}

// HistoryResponse is a page of conversation summaries.
type HistoryResponse struct {
	Chats   []Chat `json:"chats"`
	HasMore bool   `json:"hasMore"`
}

// Vote is an up/down vote on one message.
type Vote struct {
	ChatID    string `json:"chatId"`
	MessageID string `json:"messageId"`
	Type      string `json:"type"`
}
