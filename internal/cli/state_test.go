package cli

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tapwake/tapwake/internal/launch"
)

func TestStateCommand_NonDestructive(t *testing.T) {
	path := seedStore(t, launch.Event{
		ID:      "ev-1",
		Source:  launch.SourceNotification,
		Payload: `{"id":5}`,
	})

	out, err := execute(t, "state", "--db", path)
	require.NoError(t, err)
	assert.Contains(t, out, "Source:  notification")
	assert.Contains(t, out, `{"id":5}`)

	// The event is still there afterwards.
	out, err = execute(t, "consume", "--db", path)
	require.NoError(t, err)
	assert.Contains(t, out, "From notification: true")
}

func TestStateCommand_Empty(t *testing.T) {
	path := t.TempDir() + "/empty.db"

	out, err := execute(t, "state", "--db", path)
	require.NoError(t, err)
	assert.Contains(t, out, "No stored launch trigger.")
}

func TestStateCommand_JSON(t *testing.T) {
	path := seedStore(t, launch.Event{
		ID:     "ev-2",
		Source: launch.SourceDeepLink,
		RawURL: "myapp://settings",
	})

	out, err := execute(t, "--format", "json", "state", "--db", path)
	require.NoError(t, err)
	assert.Contains(t, out, `"has_event": true`)
	assert.Contains(t, out, `"source": "deep_link"`)
	assert.Contains(t, out, `"url": "myapp://settings"`)
}
