package kai

import "github.com/google/uuid"

// NewChatID mints a fresh conversation id. The backend treats the first
// message for an unknown id as conversation creation, so ids are minted
// client-side.
func NewChatID() string {
	return uuid.NewString()
}

// NewMessageID mints a fresh message id.
func NewMessageID() string {
	return uuid.NewString()
}
