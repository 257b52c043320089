package clip

import (
	"fmt"
	"time"
)

// Kind identifies what sort of media a clip plays
type Kind string

const (
	KindAudio Kind = "audio"
	KindVideo Kind = "video"
)

// Behavior controls how a pad press is applied to an audio clip
type Behavior string

const (
	// BehaviorSingle plays/stops immediately, ignoring the bar grid
	BehaviorSingle Behavior = "single"
	// BehaviorSchedulable starts/stops on the next bar pulse
	BehaviorSchedulable Behavior = "schedulable"
)

// MasterTrack is the output track used when a clip names no track or an unknown one
const MasterTrack = "master"

// Clip is an immutable clip configuration
type Clip struct {
	ID       string
	Name     string
	Kind     Kind
	File     string
	Behavior Behavior
	Loop     bool
	Gain     float64
	Track    string
	Length   time.Duration // video only; audio length comes from the decoded buffer
}

// Label returns the display name, falling back to the id
func (c Clip) Label() string {
	if c.Name != "" {
		return c.Name
	}
	return c.ID
}

// IsVideo reports whether the clip plays a video handle
func (c Clip) IsVideo() bool {
	return c.Kind == KindVideo
}

// Quantized reports whether triggers are deferred to the next bar pulse
func (c Clip) Quantized() bool {
	return c.Kind == KindAudio && c.Behavior == BehaviorSchedulable
}

func parseKind(s string) (Kind, error) {
	switch Kind(s) {
	case KindAudio, "":
		return KindAudio, nil
	case KindVideo:
		return KindVideo, nil
	}
	return "", fmt.Errorf("unknown clip kind %q", s)
}

func parseBehavior(s string) (Behavior, error) {
	switch Behavior(s) {
	case BehaviorSchedulable, "":
		return BehaviorSchedulable, nil
	case BehaviorSingle:
		return BehaviorSingle, nil
	}
	return "", fmt.Errorf("unknown clip behavior %q", s)
}

// Pad is a rows x columns grid of clip ids ("" = empty cell).
// A column index across all rows is a vertical group.
type Pad struct {
	ID    string
	Name  string
	Cells [][]string
}

// Label returns the display name, falling back to the id
func (p *Pad) Label() string {
	if p.Name != "" {
		return p.Name
	}
	return p.ID
}

// Rows returns the number of rows
func (p *Pad) Rows() int {
	return len(p.Cells)
}

// Cols returns the widest row length
func (p *Pad) Cols() int {
	max := 0
	for _, row := range p.Cells {
		if len(row) > max {
			max = len(row)
		}
	}
	return max
}

// Cell returns the clip id at row/col, or "" when empty or out of range
func (p *Pad) Cell(row, col int) string {
	if row < 0 || row >= len(p.Cells) {
		return ""
	}
	if col < 0 || col >= len(p.Cells[row]) {
		return ""
	}
	return p.Cells[row][col]
}

// Row returns a copy of a row padded to Cols()
func (p *Pad) Row(row int) []string {
	out := make([]string, p.Cols())
	if row >= 0 && row < len(p.Cells) {
		copy(out, p.Cells[row])
	}
	return out
}

// Position locates a cell on a pad
type Position struct {
	Pad *Pad
	Row int
	Col int
}

// Valid reports whether the position refers to a pad
func (p Position) Valid() bool {
	return p.Pad != nil
}
