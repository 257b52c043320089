package clip

import (
	"errors"
	"fmt"
)

var (
	// ErrUnknownClip is returned when a pad references a clip that was never defined
	ErrUnknownClip = errors.New("unknown clip")
	// ErrInvalidProject wraps every validation failure of a project file
	ErrInvalidProject = errors.New("invalid project")
)

// Registry is a read-only view of clip configurations and pad geometry
type Registry struct {
	clips map[string]*Clip
	order []string
	pads  []*Pad
	byPad map[string]*Pad
}

// NewRegistry validates clips and pads and builds the lookup tables
func NewRegistry(clips []Clip, pads []Pad) (*Registry, error) {
	r := &Registry{
		clips: make(map[string]*Clip, len(clips)),
		byPad: make(map[string]*Pad, len(pads)),
	}

	for i := range clips {
		c := clips[i]
		if c.ID == "" {
			return nil, fmt.Errorf("%w: clip #%d has no id", ErrInvalidProject, i)
		}
		if _, dup := r.clips[c.ID]; dup {
			return nil, fmt.Errorf("%w: duplicate clip id %q", ErrInvalidProject, c.ID)
		}
		if c.File == "" {
			return nil, fmt.Errorf("%w: clip %q has no file", ErrInvalidProject, c.ID)
		}
		r.clips[c.ID] = &c
		r.order = append(r.order, c.ID)
	}

	for i := range pads {
		p := pads[i]
		if p.ID == "" {
			p.ID = fmt.Sprintf("pad%d", i+1)
		}
		if _, dup := r.byPad[p.ID]; dup {
			return nil, fmt.Errorf("%w: duplicate pad id %q", ErrInvalidProject, p.ID)
		}
		cells := make([][]string, len(p.Cells))
		for row, ids := range p.Cells {
			cells[row] = append([]string(nil), ids...)
			for col, id := range ids {
				if id == "" {
					continue
				}
				if _, ok := r.clips[id]; !ok {
					return nil, fmt.Errorf("%w: pad %q cell %d,%d: %w", ErrInvalidProject, p.ID, row, col, unknownClip(id))
				}
			}
		}
		p.Cells = cells
		r.pads = append(r.pads, &p)
		r.byPad[p.ID] = &p
	}

	return r, nil
}

func unknownClip(id string) error {
	return fmt.Errorf("%w %q", ErrUnknownClip, id)
}

// Clip returns a clip by id
func (r *Registry) Clip(id string) (Clip, bool) {
	c, ok := r.clips[id]
	if !ok {
		return Clip{}, false
	}
	return *c, true
}

// Clips returns all clips in definition order
func (r *Registry) Clips() []Clip {
	out := make([]Clip, 0, len(r.order))
	for _, id := range r.order {
		out = append(out, *r.clips[id])
	}
	return out
}

// Files returns the distinct media files referenced by clips, in definition order
func (r *Registry) Files() []string {
	seen := make(map[string]bool)
	var files []string
	for _, id := range r.order {
		f := r.clips[id].File
		if !seen[f] {
			seen[f] = true
			files = append(files, f)
		}
	}
	return files
}

// Pads returns the pads in definition order
func (r *Registry) Pads() []*Pad {
	return r.pads
}

// Pad returns a pad by id
func (r *Registry) Pad(id string) (*Pad, bool) {
	p, ok := r.byPad[id]
	return p, ok
}

// PadAt returns the pad at index i (nil when out of range)
func (r *Registry) PadAt(i int) *Pad {
	if i < 0 || i >= len(r.pads) {
		return nil
	}
	return r.pads[i]
}

// Positions returns every cell holding clipID, pads in order, rows top to bottom
func (r *Registry) Positions(clipID string) []Position {
	var out []Position
	for _, p := range r.pads {
		for row, ids := range p.Cells {
			for col, id := range ids {
				if id == clipID {
					out = append(out, Position{Pad: p, Row: row, Col: col})
				}
			}
		}
	}
	return out
}

// Position finds the first cell holding clipID, scanning pads in order and rows top to bottom
func (r *Registry) Position(clipID string) (Position, bool) {
	for _, p := range r.pads {
		for row, ids := range p.Cells {
			for col, id := range ids {
				if id == clipID {
					return Position{Pad: p, Row: row, Col: col}, true
				}
			}
		}
	}
	return Position{}, false
}
