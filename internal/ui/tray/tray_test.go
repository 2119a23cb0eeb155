package tray

import (
	"testing"

	"breathpacer/internal/core/pacer"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMenuFollowsSessionState(t *testing.T) {
	manager := New(nil, Callbacks{})
	assert.False(t, manager.startItem.Disabled)
	assert.True(t, manager.stopItem.Disabled)

	manager.SetStatus(statusText(pacer.Event{Mode: pacer.ModeRunning, Phase: pacer.PhaseInhale, Cycle: 3}))
	manager.SetActive(true)
	assert.Equal(t, "Status: inhale, cycle 3", manager.statusItem.Label)
	assert.True(t, manager.startItem.Disabled)
	assert.False(t, manager.stopItem.Disabled)

	menu := manager.Menu()
	require.Len(t, menu.Items, 9)
	assert.True(t, menu.Items[8].IsQuit)
}

func TestMenuCallbacks(t *testing.T) {
	var calls []string
	manager := New(nil, Callbacks{
		OnStart:   func() { calls = append(calls, "start") },
		OnRestart: func() { calls = append(calls, "restart") },
		OnQuit:    func() { calls = append(calls, "quit") },
	})

	manager.startItem.Action()
	manager.restartItem.Action()
	manager.stopItem.Action()
	manager.quitItem.Action()
	assert.Equal(t, []string{"start", "restart", "quit"}, calls)
}

func TestStatusText(t *testing.T) {
	assert.Equal(t, "starting in 2", statusText(pacer.Event{Mode: pacer.ModeCountdown, Countdown: 2}))
	assert.Equal(t, "ready", statusText(pacer.Event{Mode: pacer.ModeIdle}))
}
