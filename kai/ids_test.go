package kai

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewChatID(t *testing.T) {
	id := NewChatID()
	_, err := uuid.Parse(id)
	require.NoError(t, err)
	assert.NotEqual(t, id, NewChatID())
}

func TestNewMessageID(t *testing.T) {
	_, err := uuid.Parse(NewMessageID())
	require.NoError(t, err)
}
