package scheduler

import (
	"go-padlaunch/clip"
	"go-padlaunch/debug"
	"go-padlaunch/store"
)

// Engine turns pad presses into immediate starts/stops or pending intents.
// All methods run under the scheduler lock.
type Engine struct {
	store    *store.Store
	adapter  *Adapter
	resolver *Resolver
}

func NewEngine(st *store.Store, adapter *Adapter, resolver *Resolver) *Engine {
	return &Engine{store: st, adapter: adapter, resolver: resolver}
}

// Trigger handles a press on a cell holding clipID
func (e *Engine) Trigger(clipID string) {
	c, ok := e.store.Registry().Clip(clipID)
	if !ok {
		debug.Log("sched", "trigger %s: unknown clip (ignored)", clipID)
		return
	}
	playing := e.store.IsPlaying(c.ID)

	switch {
	case c.IsVideo():
		if playing {
			e.adapter.Stop(c.ID)
		}
		e.start(c)

	case c.Behavior == clip.BehaviorSingle:
		switch {
		case !playing:
			e.start(c)
		case c.Loop:
			e.adapter.Stop(c.ID)
			debug.Log("sched", "trigger %s: stopped", c.ID)
		default:
			e.adapter.Stop(c.ID)
			e.start(c)
		}

	default:
		if playing {
			if e.store.ScheduleStop(c.ID) {
				debug.Log("sched", "trigger %s: stop on next bar", c.ID)
			}
			return
		}
		if e.store.AddScheduled(c.ID) {
			n := e.stopConflicts(c.ID)
			debug.Log("sched", "trigger %s: start on next bar, %d vertical stop(s) queued", c.ID, n)
		}
	}
}

// TriggerColumn handles a press on an empty cell: every playing clip in the
// column gets a quantized stop
func (e *Engine) TriggerColumn(pad *clip.Pad, col int) {
	pos := clip.Position{Pad: pad, Row: 0, Col: col}
	if !pos.Valid() {
		debug.Log("sched", "trigger column %d: outside pad (ignored)", col)
		return
	}
	n := e.stopColumn(pos, "")
	debug.Log("sched", "trigger column %s/%d: %d stop(s) queued", pad.ID, col, n)
}

// TriggerRow launches a whole row. Each column is silenced (quantized) apart
// from the row's own clip, then that clip is triggered.
func (e *Engine) TriggerRow(pad *clip.Pad, row int) {
	if pad == nil || row < 0 || row >= pad.Rows() {
		debug.Log("sched", "trigger row %d: outside pad (ignored)", row)
		return
	}
	debug.Log("sched", "trigger row %s/%d", pad.ID, row)
	for col, id := range pad.Row(row) {
		e.stopColumn(clip.Position{Pad: pad, Row: row, Col: col}, id)
		if id != "" {
			e.Trigger(id)
		}
	}
}

func (e *Engine) stopColumn(pos clip.Position, excluding string) int {
	n := 0
	for _, id := range e.resolver.Resolve(pos, excluding) {
		if e.store.ScheduleStop(id) {
			n++
		}
	}
	return n
}

// stopConflicts queues a stop for every playing clip sharing a column with clipID
func (e *Engine) stopConflicts(clipID string) int {
	n := 0
	for _, id := range e.resolver.Conflicts(clipID) {
		if e.store.ScheduleStop(id) {
			n++
		}
	}
	return n
}

func (e *Engine) start(c clip.Clip) {
	if !e.adapter.Start(c) {
		debug.Log("sched", "trigger %s: media not ready (ignored)", c.ID)
	}
}
