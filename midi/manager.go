package midi

import (
	"context"
	"strings"
	"sync"
	"time"

	"go-padlaunch/debug"

	gomidi "gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/drivers"
	_ "gitlab.com/gomidi/midi/v2/drivers/rtmididrv" // Register MIDI driver
)

// DeviceEvent is emitted when controllers connect/disconnect
type DeviceEvent struct {
	Type       DeviceEventType
	Controller Controller
	ID         string
}

type DeviceEventType int

const (
	DeviceConnected DeviceEventType = iota
	DeviceDisconnected
)

// Ports lists the MIDI ports currently visible
type Ports struct {
	In  []drivers.In
	Out []drivers.Out
}

// ListPorts asks the driver for ports, giving up after timeout (CoreMIDI can hang)
func ListPorts(timeout time.Duration) (Ports, bool) {
	ch := make(chan Ports, 1)
	go func() {
		ch <- Ports{In: gomidi.GetInPorts(), Out: gomidi.GetOutPorts()}
	}()
	select {
	case p := <-ch:
		return p, true
	case <-time.After(timeout):
		return Ports{}, false
	}
}

// DeviceManager handles hot-plug detection of MIDI controllers
type DeviceManager struct {
	controllers map[string]Controller
	keyboards   map[string]bool // lower-cased input port names to open as keyboards
	mu          sync.RWMutex
	events      chan DeviceEvent
	pollRate    time.Duration
}

// NewDeviceManager creates a device manager. Launchpads are detected by name;
// keyboardPorts names extra inputs to open as note keyboards.
func NewDeviceManager(keyboardPorts ...string) *DeviceManager {
	kb := make(map[string]bool, len(keyboardPorts))
	for _, p := range keyboardPorts {
		kb[strings.ToLower(p)] = true
	}
	return &DeviceManager{
		controllers: make(map[string]Controller),
		keyboards:   kb,
		events:      make(chan DeviceEvent, 16),
		pollRate:    time.Second,
	}
}

// Events returns a channel of device connect/disconnect events
func (dm *DeviceManager) Events() <-chan DeviceEvent {
	return dm.events
}

// Controllers returns a snapshot of connected controllers
func (dm *DeviceManager) Controllers() map[string]Controller {
	dm.mu.RLock()
	defer dm.mu.RUnlock()
	out := make(map[string]Controller, len(dm.controllers))
	for k, v := range dm.controllers {
		out[k] = v
	}
	return out
}

// GetLaunchpad returns the first connected Launchpad (or nil)
func (dm *DeviceManager) GetLaunchpad() Controller {
	dm.mu.RLock()
	defer dm.mu.RUnlock()
	for _, c := range dm.controllers {
		if c.Type() == ControllerLaunchpad {
			return c
		}
	}
	return nil
}

// Run starts the polling loop (blocking - run in goroutine)
func (dm *DeviceManager) Run(ctx context.Context) {
	ticker := time.NewTicker(dm.pollRate)
	defer ticker.Stop()

	dm.scan()

	for {
		select {
		case <-ctx.Done():
			dm.closeAll()
			close(dm.events)
			return
		case <-ticker.C:
			dm.scan()
		}
	}
}

func (dm *DeviceManager) scan() {
	ports, ok := ListPorts(3 * time.Second)
	if !ok {
		// CoreMIDI is hung - skip this scan
		debug.Log("ctrl", "port scan timed out")
		return
	}

	seenIDs := make(map[string]bool)
	for i, inPort := range ports.In {
		id := inPort.String()
		name := strings.ToLower(id)
		kind := dm.classify(name)
		if kind == ControllerUnknown {
			continue
		}
		seenIDs[id] = true

		dm.mu.RLock()
		_, exists := dm.controllers[id]
		dm.mu.RUnlock()
		if exists {
			continue
		}

		var ctrl Controller
		var err error
		switch kind {
		case ControllerLaunchpad:
			var outPort drivers.Out
			for j, op := range ports.Out {
				if strings.ToLower(op.String()) == name {
					outPort = ports.Out[j]
					break
				}
			}
			ctrl, err = NewLaunchpadController(id, ports.In[i], outPort)
		case ControllerKeyboard:
			ctrl, err = NewKeyboardController(id, ports.In[i])
		}
		if err != nil {
			debug.Log("ctrl", "open %s: %v", id, err)
			continue
		}

		dm.mu.Lock()
		dm.controllers[id] = ctrl
		dm.mu.Unlock()
		debug.Log("ctrl", "connected %s (%s)", id, kind)

		dm.events <- DeviceEvent{Type: DeviceConnected, Controller: ctrl, ID: id}
	}

	// Check for disconnects
	dm.mu.Lock()
	var toRemove []string
	for id := range dm.controllers {
		if !seenIDs[id] {
			toRemove = append(toRemove, id)
		}
	}
	for _, id := range toRemove {
		dm.controllers[id].Close()
		delete(dm.controllers, id)
		debug.Log("ctrl", "disconnected %s", id)
	}
	dm.mu.Unlock()

	for _, id := range toRemove {
		dm.events <- DeviceEvent{Type: DeviceDisconnected, ID: id}
	}
}

func (dm *DeviceManager) classify(name string) ControllerType {
	if IsLaunchpad(name) {
		return ControllerLaunchpad
	}
	if dm.keyboards[name] {
		return ControllerKeyboard
	}
	return ControllerUnknown
}

func (dm *DeviceManager) closeAll() {
	dm.mu.Lock()
	defer dm.mu.Unlock()
	for _, c := range dm.controllers {
		c.Close()
	}
	dm.controllers = make(map[string]Controller)
}

// IsLaunchpad reports whether a port name is a Launchpad's MIDI (not DAW) port
func IsLaunchpad(name string) bool {
	name = strings.ToLower(name)
	return strings.Contains(name, "launchpad") && strings.Contains(name, "midi")
}
