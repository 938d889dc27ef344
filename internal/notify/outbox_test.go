package notify_test

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/makt28/kumamail/internal/notify"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOutboxSender_Send(t *testing.T) {
	t.Parallel()

	dir := filepath.Join(t.TempDir(), "outbox")
	sender := notify.NewOutboxSender(dir)
	require.NoError(t, sender.Validate())
	assert.Equal(t, "outbox", sender.Type())

	msg := baseMessage
	msg.To = "ops@example.com"
	require.NoError(t, sender.Send(context.Background(), msg))
	require.NoError(t, sender.Send(context.Background(), msg))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 4)

	var jsonFile string
	for _, e := range entries {
		assert.Contains(t, e.Name(), "ops_at_example.com")
		if strings.HasSuffix(e.Name(), ".json") {
			jsonFile = filepath.Join(dir, e.Name())
		}
	}
	require.NotEmpty(t, jsonFile)

	raw, err := os.ReadFile(jsonFile)
	require.NoError(t, err)

	var meta map[string]string
	require.NoError(t, json.Unmarshal(raw, &meta))
	assert.Equal(t, "ops@example.com", meta["to"])
	assert.Equal(t, baseMessage.Subject, meta["subject"])
	assert.Equal(t, baseMessage.Text, meta["text"])
}

func TestOutboxSender_Validate(t *testing.T) {
	t.Parallel()

	assert.Error(t, notify.NewOutboxSender("").Validate())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := notify.NewOutboxSender(t.TempDir()).Send(ctx, baseMessage)
	assert.ErrorIs(t, err, notify.ErrSendFailed)
}
