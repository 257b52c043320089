// Package session routes controller and keyboard input to the scheduler and
// renders clip state back to the Launchpad.
package session

import (
	"sync"
	"time"

	"go-padlaunch/clip"
	"go-padlaunch/debug"
	"go-padlaunch/midi"
	"go-padlaunch/scheduler"
	"go-padlaunch/store"
)

// Transport is the beat clock as seen by the session (clock.BeatClock)
type Transport interface {
	Start()
	Stop()
	Running() bool
	Bar() int64
	Progress() float64
}

// Manager orchestrates input routing, transport and LED feedback
type Manager struct {
	sched  *scheduler.Scheduler
	store  *store.Store
	clock  Transport
	colors Colors

	mu         sync.RWMutex
	padIdx     int
	controller midi.Controller

	// LED rendering at fixed FPS
	ledDirty bool
	prevLEDs map[[2]int]LEDState

	stopChan chan struct{}
	stopOnce sync.Once

	// Notify TUI of updates
	UpdateChan chan struct{}
}

// LED refresh rate
const ledFPS = 30

// NewManager creates a session manager over a scheduler and its clock
func NewManager(sched *scheduler.Scheduler, clk Transport, colors Colors) *Manager {
	m := &Manager{
		sched:      sched,
		store:      sched.Store(),
		clock:      clk,
		colors:     colors,
		prevLEDs:   make(map[[2]int]LEDState),
		stopChan:   make(chan struct{}),
		UpdateChan: make(chan struct{}, 1),
	}
	sched.OnChange(m.notifyUpdate)
	return m
}

// StartRuntime starts the LED and UI refresh loops (called once at startup)
func (m *Manager) StartRuntime() {
	go m.ledLoop()
	go m.uiLoop()
}

// Close stops the runtime loops and the transport
func (m *Manager) Close() {
	m.stopOnce.Do(func() {
		close(m.stopChan)
	})
	m.Stop()
}

// SetController sets the grid controller for LED feedback and pad input
func (m *Manager) SetController(c midi.Controller) {
	debug.Log("ctrl", "SetController %v, resetting diff state", c != nil)
	m.mu.Lock()
	m.controller = c
	m.prevLEDs = make(map[[2]int]LEDState)
	m.ledDirty = true
	m.mu.Unlock()

	if c == nil {
		return
	}
	go func() {
		for ev := range c.PadEvents() {
			m.HandlePad(ev.Row, ev.Col)
		}
	}()
}

// Controller returns the current grid controller (may be nil)
func (m *Manager) Controller() midi.Controller {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.controller
}

// AddKeyboard routes a keyboard's notes to pad cells starting at baseNote
func (m *Manager) AddKeyboard(c midi.Controller, baseNote int) {
	go func() {
		for ev := range c.NoteEvents() {
			m.HandleNote(int(ev.Note), baseNote)
		}
	}()
}

// Pads

// Pads returns every pad of the project
func (m *Manager) Pads() []*clip.Pad {
	return m.store.Registry().Pads()
}

// Clip looks up a clip configuration
func (m *Manager) Clip(id string) (clip.Clip, bool) {
	return m.store.Registry().Clip(id)
}

// Pad returns the selected pad (nil for a project without pads)
func (m *Manager) Pad() *clip.Pad {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.store.Registry().PadAt(m.padIdx)
}

// PadIndex returns the selected pad index
func (m *Manager) PadIndex() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.padIdx
}

// SelectPad focuses pad i; out of range is ignored
func (m *Manager) SelectPad(i int) {
	if i < 0 || i >= len(m.Pads()) {
		return
	}
	m.mu.Lock()
	m.padIdx = i
	m.mu.Unlock()
	debug.Log("ctrl", "select pad %d", i)
	m.notifyUpdate()
}

// NextPad cycles the pad selection
func (m *Manager) NextPad() {
	n := len(m.Pads())
	if n == 0 {
		return
	}
	m.SelectPad((m.PadIndex() + 1) % n)
}

// Input routing

// HandleCell handles a press on a cell of the selected pad (row 0 = top).
// A cell with a clip triggers it; an empty cell stops its column.
func (m *Manager) HandleCell(row, col int) {
	pad := m.Pad()
	if pad == nil || row < 0 || row >= pad.Rows() || col < 0 || col >= pad.Cols() {
		return
	}
	if id := pad.Cell(row, col); id != "" {
		m.sched.Trigger(id)
		return
	}
	m.sched.TriggerColumn(pad, col)
}

// HandleColumn queues a stop for everything playing in a column
func (m *Manager) HandleColumn(col int) {
	if pad := m.Pad(); pad != nil {
		m.sched.TriggerColumn(pad, col)
	}
}

// HandleRow launches a row of the selected pad
func (m *Manager) HandleRow(row int) {
	if pad := m.Pad(); pad != nil {
		m.sched.TriggerRow(pad, row)
	}
}

// HandlePad handles a Launchpad press in controller coordinates: the 8x8
// grid maps to cells (bottom row = pad row 7), the scene column launches
// rows and the top row selects pads
func (m *Manager) HandlePad(row, col int) {
	debug.Log("ctrl", "pad %d,%d", row, col)
	switch {
	case row == midi.TopRow:
		m.SelectPad(col)
	case col == midi.SceneCol:
		m.HandleRow(midi.GridSize - 1 - row)
	case row >= 0 && row < midi.GridSize && col >= 0 && col < midi.GridSize:
		m.HandleCell(midi.GridSize-1-row, col)
	}
}

// HandleNote maps a keyboard note onto the selected pad, row by row
func (m *Manager) HandleNote(note, baseNote int) {
	pad := m.Pad()
	if pad == nil || pad.Cols() == 0 {
		return
	}
	idx := note - baseNote
	if idx < 0 {
		return
	}
	row, col := idx/pad.Cols(), idx%pad.Cols()
	if row >= pad.Rows() {
		return
	}
	m.HandleCell(row, col)
}

// Transport

// Play starts the beat clock
func (m *Manager) Play() {
	if m.clock.Running() {
		return
	}
	m.clock.Start()
	debug.Log("ctrl", "play")
	m.notifyUpdate()
}

// Stop stops the beat clock and every clip
func (m *Manager) Stop() {
	if m.clock.Running() {
		m.clock.Stop()
		debug.Log("ctrl", "stop")
	}
	m.sched.StopAll()
}

// TogglePlay starts or stops the transport
func (m *Manager) TogglePlay() {
	if m.clock.Running() {
		m.Stop()
	} else {
		m.Play()
	}
}

// SetTempo sets the BPM (clamped by the store)
func (m *Manager) SetTempo(bpm int) {
	m.store.SetTempo(bpm)
	m.notifyUpdate()
}

// NudgeTempo changes the BPM by delta
func (m *Manager) NudgeTempo(delta int) {
	m.SetTempo(m.store.Settings().BPM + delta)
}

// GetState returns the transport state
func (m *Manager) GetState() (bar int64, playing bool, tempo int) {
	return m.clock.Bar(), m.clock.Running(), m.store.Settings().BPM
}

// Progress returns the position inside the current bar (0-1)
func (m *Manager) Progress() float64 {
	return m.clock.Progress()
}

// Snapshot returns the clip states for renderers
func (m *Manager) Snapshot() store.Snapshot {
	return m.store.Snapshot()
}

// notifyUpdate refreshes LEDs and notifies TUI
func (m *Manager) notifyUpdate() {
	m.markLEDsDirty()
	select {
	case m.UpdateChan <- struct{}{}:
	default:
	}
}

// uiLoop keeps the TUI bar display moving while the transport runs
func (m *Manager) uiLoop() {
	ticker := time.NewTicker(time.Second / 30)
	defer ticker.Stop()
	for {
		select {
		case <-m.stopChan:
			return
		case <-ticker.C:
			if !m.clock.Running() {
				continue
			}
			select {
			case m.UpdateChan <- struct{}{}:
			default:
			}
		}
	}
}
