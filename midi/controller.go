package midi

// ControllerType identifies the kind of controller
type ControllerType int

const (
	ControllerUnknown ControllerType = iota
	ControllerLaunchpad
	ControllerKeyboard
)

func (t ControllerType) String() string {
	switch t {
	case ControllerLaunchpad:
		return "launchpad"
	case ControllerKeyboard:
		return "keyboard"
	}
	return "unknown"
}

// PadEvent is sent when a pad/button is pressed on a grid controller.
// Row 0 is the bottom row, row 8 the top control row, col 8 the scene column.
type PadEvent struct {
	Row, Col int
	Velocity uint8
}

// NoteEvent is sent when a note is played on a keyboard
type NoteEvent struct {
	Note     uint8
	Velocity uint8
	Channel  uint8
}

// LEDUpdate is one LED change in a batch
type LEDUpdate struct {
	Row, Col int
	Color    [3]uint8 // RGB, mapped to the controller palette
	Channel  uint8    // ChannelStatic, ChannelFlash or ChannelPulse
}

// Controller is the interface for MIDI input devices
type Controller interface {
	ID() string
	Type() ControllerType

	// Input events from the controller
	PadEvents() <-chan PadEvent   // grid controllers (Launchpad)
	NoteEvents() <-chan NoteEvent // keyboards

	// Output to the controller
	SetLEDBatch(updates []LEDUpdate) error
	ClearLEDs() error

	Close() error
}

// Launchpad X LED channel modes
const (
	ChannelStatic uint8 = 0 // solid color
	ChannelFlash  uint8 = 1 // flashing A/B alternating
	ChannelPulse  uint8 = 2 // pulsing (fades)
)

// Grid geometry of a Launchpad X in programmer mode
const (
	GridSize = 8
	SceneCol = 8 // right-hand scene launch column
	TopRow   = 8 // top control row
)
