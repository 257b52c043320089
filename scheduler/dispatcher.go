package scheduler

import (
	"go-padlaunch/debug"
	"go-padlaunch/store"
)

// DefaultMaxPendingBars is how many pulses a scheduled clip may wait for its
// media before it is dropped
const DefaultMaxPendingBars = 16

// Dispatcher flushes pending intents on every bar pulse: stops first, then
// starts. Runs under the scheduler lock.
type Dispatcher struct {
	store   *store.Store
	adapter *Adapter

	maxPending int
	waits      map[string]int // clip id -> pulses spent unresolved
}

func NewDispatcher(st *store.Store, adapter *Adapter, maxPending int) *Dispatcher {
	if maxPending < 0 {
		maxPending = 0
	}
	return &Dispatcher{
		store:      st,
		adapter:    adapter,
		maxPending: maxPending,
		waits:      make(map[string]int),
	}
}

// Flush processes one pulse and returns the ids it started and stopped
func (d *Dispatcher) Flush(bar int64) (started, stopped []string) {
	for _, id := range d.store.ToStop() {
		d.adapter.Stop(id)
		stopped = append(stopped, id)
	}

	reg := d.store.Registry()
	for _, id := range d.store.Scheduled() {
		c, ok := reg.Clip(id)
		if !ok {
			d.store.DropScheduled(id)
			delete(d.waits, id)
			continue
		}
		if !d.adapter.Ready(c) {
			d.waits[id]++
			if d.maxPending > 0 && d.waits[id] >= d.maxPending {
				debug.Log("bar", "bar %d: %s dropped after %d bars without media", bar, id, d.waits[id])
				d.store.DropScheduled(id)
				delete(d.waits, id)
			}
			continue
		}
		delete(d.waits, id)
		if !d.adapter.Start(c) {
			debug.Log("bar", "bar %d: %s could not start, dropped", bar, id)
			d.store.DropScheduled(id)
			continue
		}
		started = append(started, id)
	}

	d.store.FlushScheduled(started, stopped)

	// forget waits for clips no longer pending
	for id := range d.waits {
		if !d.store.IsScheduled(id) {
			delete(d.waits, id)
		}
	}

	if len(started) > 0 || len(stopped) > 0 {
		debug.Log("bar", "bar %d: stopped=%v started=%v", bar, stopped, started)
	}
	return started, stopped
}

// Waiting returns how many pulses a scheduled clip has waited for media
func (d *Dispatcher) Waiting(clipID string) int {
	return d.waits[clipID]
}
