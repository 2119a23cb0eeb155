package tray

import (
	"fmt"

	"breathpacer/internal/core/pacer"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/driver/desktop"
)

// Callbacks defines tray action handlers.
type Callbacks struct {
	OnStart      func()
	OnStop       func()
	OnRestart    func()
	OnPacer      func()
	OnCalculator func()
	OnQuit       func()
}

// Manager handles system tray state.
type Manager struct {
	app         desktop.App
	statusItem  *fyne.MenuItem
	startItem   *fyne.MenuItem
	stopItem    *fyne.MenuItem
	restartItem *fyne.MenuItem
	pacerItem   *fyne.MenuItem
	calcItem    *fyne.MenuItem
	quitItem    *fyne.MenuItem
	callbacks   Callbacks
	active      bool
}

// New creates a tray manager with the provided callbacks.
func New(app desktop.App, callbacks Callbacks) *Manager {
	manager := &Manager{
		app:       app,
		callbacks: callbacks,
	}

	manager.statusItem = fyne.NewMenuItem("Status: ready", nil)
	manager.statusItem.Disabled = true
	manager.startItem = fyne.NewMenuItem("Start", func() { call(manager.callbacks.OnStart) })
	manager.stopItem = fyne.NewMenuItem("Stop", func() { call(manager.callbacks.OnStop) })
	manager.restartItem = fyne.NewMenuItem("Restart", func() { call(manager.callbacks.OnRestart) })
	manager.pacerItem = fyne.NewMenuItem("Pacer window", func() { call(manager.callbacks.OnPacer) })
	manager.calcItem = fyne.NewMenuItem("Calculator", func() { call(manager.callbacks.OnCalculator) })
	manager.quitItem = fyne.NewMenuItem("Quit", func() { call(manager.callbacks.OnQuit) })
	manager.quitItem.IsQuit = true

	manager.SetActive(false)
	return manager
}

// HandleEvent mirrors engine state in the tray menu.
func (manager *Manager) HandleEvent(event pacer.Event) {
	switch event.Type {
	case pacer.EventStateChange, pacer.EventPhaseChange, pacer.EventCountdown:
	default:
		return
	}
	active := event.Mode == pacer.ModeCountdown || event.Mode == pacer.ModeRunning
	fyne.Do(func() {
		manager.SetStatus(statusText(event))
		manager.SetActive(active)
	})
}

// SetStatus updates the status label.
func (manager *Manager) SetStatus(status string) {
	manager.statusItem.Label = fmt.Sprintf("Status: %s", status)
	manager.refreshMenu()
}

// SetActive toggles session-related menu items.
func (manager *Manager) SetActive(active bool) {
	manager.active = active
	manager.startItem.Disabled = active
	manager.stopItem.Disabled = !active
	manager.refreshMenu()
}

// Menu returns the current tray menu.
func (manager *Manager) Menu() *fyne.Menu {
	return fyne.NewMenu("BreathPacer",
		manager.statusItem,
		fyne.NewMenuItemSeparator(),
		manager.startItem,
		manager.stopItem,
		manager.restartItem,
		fyne.NewMenuItemSeparator(),
		manager.pacerItem,
		manager.calcItem,
		manager.quitItem,
	)
}

func (manager *Manager) refreshMenu() {
	if manager.app != nil {
		manager.app.SetSystemTrayMenu(manager.Menu())
	}
}

func statusText(event pacer.Event) string {
	switch event.Mode {
	case pacer.ModeCountdown:
		return fmt.Sprintf("starting in %d", event.Countdown)
	case pacer.ModeRunning:
		return fmt.Sprintf("%s, cycle %d", event.Phase, event.Cycle)
	default:
		return "ready"
	}
}

func call(handler func()) {
	if handler != nil {
		handler()
	}
}
