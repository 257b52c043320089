package session

import (
	"time"

	"go-padlaunch/debug"
	"go-padlaunch/midi"
	"go-padlaunch/store"
	"go-padlaunch/theme"
	"go-padlaunch/widgets"
)

// LEDState describes the state of a single LED
type LEDState struct {
	Row, Col int
	Color    [3]uint8 // RGB color - controller maps to its palette
	Channel  uint8    // midi.ChannelStatic, ChannelFlash or ChannelPulse
}

// Colors maps clip states and control buttons to RGB
type Colors struct {
	Idle      [3]uint8
	Scheduled [3]uint8
	Playing   [3]uint8
	Stopping  [3]uint8
	Scene     [3]uint8
	Pad       [3]uint8
	PadActive [3]uint8
}

// DefaultColors are tuned to land on distinct Launchpad X palette entries
func DefaultColors() Colors {
	return Colors{
		Idle:      [3]uint8{40, 60, 120},
		Scheduled: [3]uint8{255, 200, 0},
		Playing:   [3]uint8{0, 255, 0},
		Stopping:  [3]uint8{255, 100, 0},
		Scene:     [3]uint8{150, 0, 200},
		Pad:       [3]uint8{40, 60, 120},
		PadActive: [3]uint8{255, 255, 255},
	}
}

// ColorsFromTheme takes clip colors from the theme's roles
func ColorsFromTheme(th *theme.Theme) Colors {
	c := DefaultColors()
	c.Idle = th.RGB(theme.RoleSurface)
	c.Scheduled = th.RGB(theme.RoleSuccess)
	c.Playing = th.RGB(theme.RoleActive)
	c.Stopping = th.RGB(theme.RoleWarning)
	c.Scene = th.RGB(theme.RoleAccent)
	c.Pad = th.RGB(theme.RoleMuted)
	c.PadActive = th.RGB(theme.RoleCursor)
	return c
}

// State returns the color and LED channel for a clip state
func (c Colors) State(s store.ClipState) ([3]uint8, uint8) {
	switch s {
	case store.StateScheduled:
		return c.Scheduled, midi.ChannelFlash
	case store.StatePlaying:
		return c.Playing, midi.ChannelPulse
	case store.StateStopping:
		return c.Stopping, midi.ChannelFlash
	}
	return c.Idle, midi.ChannelStatic
}

// Colors returns the LED colors in use
func (m *Manager) Colors() Colors {
	return m.colors
}

// RenderLEDs renders the selected pad onto the Launchpad surface
func (m *Manager) RenderLEDs() []LEDState {
	var leds []LEDState
	snap := m.store.Snapshot()
	pad := m.Pad()

	if pad != nil {
		for row := 0; row < pad.Rows() && row < midi.GridSize; row++ {
			lpRow := midi.GridSize - 1 - row
			hasClip := false
			for col := 0; col < pad.Cols() && col < midi.GridSize; col++ {
				id := pad.Cell(row, col)
				if id == "" {
					continue
				}
				hasClip = true
				color, channel := m.colors.State(snap.Get(id))
				leds = append(leds, LEDState{Row: lpRow, Col: col, Color: color, Channel: channel})
			}
			if hasClip {
				leds = append(leds, LEDState{Row: lpRow, Col: midi.SceneCol, Color: m.colors.Scene})
			}
		}
	}

	selected := m.PadIndex()
	for i := range m.Pads() {
		if i >= midi.GridSize {
			break
		}
		color := m.colors.Pad
		if i == selected {
			color = m.colors.PadActive
		}
		leds = append(leds, LEDState{Row: midi.TopRow, Col: i, Color: color})
	}
	return leds
}

// Layout renders the same surface for the TUI Launchpad mirror
func (m *Manager) Layout() widgets.LaunchpadLayout {
	var layout widgets.LaunchpadLayout
	reg := m.store.Registry()
	pads := m.Pads()
	pad := m.Pad()

	for _, led := range m.RenderLEDs() {
		switch {
		case led.Row == midi.TopRow:
			layout.TopRow[led.Col] = widgets.PadConfig{Color: led.Color, Tooltip: "Pad: " + pads[led.Col].Label()}
		case led.Col == midi.SceneCol:
			layout.RightCol[led.Row] = widgets.PadConfig{Color: led.Color, Tooltip: "Launch row"}
		default:
			tip := ""
			if pad != nil {
				if c, ok := reg.Clip(pad.Cell(midi.GridSize-1-led.Row, led.Col)); ok {
					tip = c.Label()
				}
			}
			layout.Grid[led.Row][led.Col] = widgets.PadConfig{Color: led.Color, Tooltip: tip}
		}
	}
	return layout
}

// markLEDsDirty flags that LEDs need refresh
func (m *Manager) markLEDsDirty() {
	m.mu.Lock()
	m.ledDirty = true
	m.mu.Unlock()
}

// ledLoop runs at fixed FPS and flushes LED updates
func (m *Manager) ledLoop() {
	ticker := time.NewTicker(time.Second / ledFPS)
	defer ticker.Stop()

	for {
		select {
		case <-m.stopChan:
			return
		case <-ticker.C:
			m.mu.Lock()
			dirty := m.ledDirty
			m.ledDirty = false
			m.mu.Unlock()

			if dirty {
				m.flushLEDs()
			}
		}
	}
}

// flushLEDs sends only changed LEDs to the controller (diffing + batching)
func (m *Manager) flushLEDs() {
	m.mu.RLock()
	ctrl := m.controller
	m.mu.RUnlock()
	if ctrl == nil {
		return
	}

	newLEDs := m.RenderLEDs()
	newMap := make(map[[2]int]LEDState, len(newLEDs))

	m.mu.Lock()
	prev := m.prevLEDs
	var updates []midi.LEDUpdate
	for _, led := range newLEDs {
		key := [2]int{led.Row, led.Col}
		newMap[key] = led
		if p, ok := prev[key]; !ok || p != led {
			updates = append(updates, midi.LEDUpdate{
				Row:     led.Row,
				Col:     led.Col,
				Color:   led.Color,
				Channel: led.Channel,
			})
		}
	}

	// Clear LEDs that are no longer present
	for key := range prev {
		if _, ok := newMap[key]; !ok {
			updates = append(updates, midi.LEDUpdate{Row: key[0], Col: key[1]})
		}
	}
	m.prevLEDs = newMap
	m.mu.Unlock()

	if len(updates) > 0 {
		debug.Log("led", "flushLEDs: batch=%d prev=%d", len(updates), len(prev))
		if err := ctrl.SetLEDBatch(updates); err != nil {
			debug.Log("led", "send: %v", err)
		}
	}
}
