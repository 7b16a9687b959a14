package notify

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iudanet/draftkeeper/internal/autosave"
	"github.com/iudanet/draftkeeper/internal/client/iocli"
)

func newTestNotifier() (*Notifier, *[]string) {
	var lines []string
	io := &iocli.IOMock{
		PrintfFunc: func(format string, a ...any) {
			lines = append(lines, fmt.Sprintf(format, a...))
		},
	}
	return New(io), &lines
}

func TestNotify_SeverityPrefixes(t *testing.T) {
	tests := []struct {
		name     string
		severity autosave.Severity
		prefix   string
	}{
		{name: "success", severity: autosave.SeveritySuccess, prefix: "[ok]"},
		{name: "error", severity: autosave.SeverityError, prefix: "[error]"},
		{name: "info", severity: autosave.SeverityInfo, prefix: "[info]"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			n, lines := newTestNotifier()
			n.Notify("message text", tt.severity, nil)

			require.Len(t, *lines, 1)
			assert.True(t, strings.HasPrefix((*lines)[0], tt.prefix), (*lines)[0])
			assert.Contains(t, (*lines)[0], "message text")
		})
	}
}

func TestNotify_ActionStored(t *testing.T) {
	n, lines := newTestNotifier()

	invoked := false
	n.Notify("Previous session found", autosave.SeverityInfo, &autosave.NotifyOptions{
		Action: &autosave.Action{
			Label:  "Restore",
			Invoke: func() { invoked = true },
		},
	})

	require.Len(t, *lines, 1)
	assert.Contains(t, (*lines)[0], ":apply")

	assert.True(t, n.HasAction())
	assert.Equal(t, "Restore", n.ActionLabel())

	assert.True(t, n.InvokeAction())
	assert.True(t, invoked)

	// Действие одноразовое
	assert.False(t, n.HasAction())
	assert.False(t, n.InvokeAction())
}

func TestNotify_ActionReplaced(t *testing.T) {
	n, _ := newTestNotifier()

	first := 0
	second := 0
	action := func(counter *int) *autosave.NotifyOptions {
		return &autosave.NotifyOptions{
			Action: &autosave.Action{Label: "Restore", Invoke: func() { *counter++ }},
		}
	}

	n.Notify("first", autosave.SeverityInfo, action(&first))
	n.Notify("second", autosave.SeverityInfo, action(&second))

	require.True(t, n.InvokeAction())
	assert.Zero(t, first, "replaced action must not fire")
	assert.Equal(t, 1, second)
}

func TestClearAction(t *testing.T) {
	n, _ := newTestNotifier()

	invoked := false
	n.Notify("offer", autosave.SeverityInfo, &autosave.NotifyOptions{
		Action: &autosave.Action{Label: "Restore", Invoke: func() { invoked = true }},
	})

	n.ClearAction()
	assert.False(t, n.HasAction())
	assert.False(t, n.InvokeAction())
	assert.False(t, invoked)
}
