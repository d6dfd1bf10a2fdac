package notify

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConsole_ReplacesPerID(t *testing.T) {
	var buf bytes.Buffer
	c := NewConsole(&buf)

	c.Loading("Please sign the transaction", "deposit")
	c.Loading("Waiting for transaction confirmation", "deposit")
	c.Success("Deposit successful. Funds have been added to your will.", "deposit")
	c.Error("failed to fetch user data", "deposit-refresh")

	live := c.Live()
	require.Len(t, live, 2)
	assert.Equal(t, Notification{ID: "deposit", Level: LevelSuccess, Message: "Deposit successful. Funds have been added to your will."}, live[0])
	assert.Equal(t, "deposit-refresh", live[1].ID)
	assert.Equal(t, LevelError, live[1].Level)

	out := buf.String()
	assert.Contains(t, out, "[...] Please sign the transaction\n")
	assert.Contains(t, out, "[ok] Deposit successful.")
	assert.Contains(t, out, "[error] failed to fetch user data\n")
}

func TestConsole_Dismiss(t *testing.T) {
	c := NewConsole(&bytes.Buffer{})
	c.Error("boom", "x")
	c.Dismiss("x")

	_, ok := c.Get("x")
	assert.False(t, ok)
	assert.Empty(t, c.Live())
}
