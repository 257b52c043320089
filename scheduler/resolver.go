package scheduler

import "go-padlaunch/clip"

// Resolver finds the clips sharing a vertical group (pad column)
type Resolver struct {
	registry *clip.Registry
}

func NewResolver(reg *clip.Registry) *Resolver {
	return &Resolver{registry: reg}
}

// PositionOf returns the first cell holding clipID
func (r *Resolver) PositionOf(clipID string) (clip.Position, bool) {
	return r.registry.Position(clipID)
}

// Conflicts returns the clips sharing a column with any cell holding clipID.
// A clip placed in several columns or on several pads conflicts with all of them.
func (r *Resolver) Conflicts(clipID string) []string {
	seen := make(map[string]bool)
	var ids []string
	for _, pos := range r.registry.Positions(clipID) {
		for _, id := range r.Resolve(pos, clipID) {
			if !seen[id] {
				seen[id] = true
				ids = append(ids, id)
			}
		}
	}
	return ids
}

// Resolve returns, top row first, the clip ids in pos's column other than
// excluding. A clip never conflicts with itself.
func (r *Resolver) Resolve(pos clip.Position, excluding string) []string {
	if !pos.Valid() {
		return nil
	}
	var ids []string
	for row := 0; row < pos.Pad.Rows(); row++ {
		id := pos.Pad.Cell(row, pos.Col)
		if id == "" || id == excluding {
			continue
		}
		ids = append(ids, id)
	}
	return ids
}
