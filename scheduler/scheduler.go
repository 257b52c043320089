// Package scheduler turns bar pulses and pad presses into clip state
// transitions and drives playback through the media pipeline.
package scheduler

import (
	"sync"

	"go-padlaunch/clip"
	"go-padlaunch/debug"
	"go-padlaunch/store"
)

// Clock is the beat clock as seen by the scheduler (clock.BeatClock)
type Clock interface {
	SetTempo(bpm float64)
	OnBar(fn func(bar int64))
}

// Options tunes the scheduler
type Options struct {
	// MaxPendingBars drops a scheduled clip whose media is still unresolved
	// after this many pulses. 0 retries forever.
	MaxPendingBars int
}

// DefaultOptions returns the options used when none are configured
func DefaultOptions() Options {
	return Options{MaxPendingBars: DefaultMaxPendingBars}
}

// Scheduler serialises triggers, bar pulses and natural-end notices behind one
// lock and fans out change notifications to the UI
type Scheduler struct {
	mu sync.Mutex

	store      *store.Store
	resolver   *Resolver
	adapter    *Adapter
	engine     *Engine
	dispatcher *Dispatcher

	lastBar int64

	listenersMu sync.Mutex
	listeners   []func()
}

// New wires a scheduler. When clk is non-nil the scheduler subscribes to its
// bar pulses and forwards tempo changes from the store to it.
func New(st *store.Store, mr MediaResolver, graph OutputGraph, clk Clock, opts Options) *Scheduler {
	resolver := NewResolver(st.Registry())
	adapter := NewAdapter(st, mr, graph, resolver)
	s := &Scheduler{
		store:      st,
		resolver:   resolver,
		adapter:    adapter,
		engine:     NewEngine(st, adapter, resolver),
		dispatcher: NewDispatcher(st, adapter, opts.MaxPendingBars),
		lastBar:    -1,
	}
	adapter.watch = s.watch

	if clk != nil {
		clk.SetTempo(float64(st.Settings().BPM))
		st.OnSettingsChange(func(set store.Settings) {
			debug.Log("sched", "tempo -> %d bpm", set.BPM)
			clk.SetTempo(float64(set.BPM))
		})
		clk.OnBar(s.OnBar)
	}
	return s
}

// Store returns the state container
func (s *Scheduler) Store() *store.Store { return s.store }

// Resolver returns the vertical exclusivity resolver
func (s *Scheduler) Resolver() *Resolver { return s.resolver }

// Trigger handles a press on a cell holding clipID
func (s *Scheduler) Trigger(clipID string) {
	s.mu.Lock()
	s.engine.Trigger(clipID)
	s.mu.Unlock()
	s.changed()
}

// TriggerColumn handles a press on an empty cell of pad's column col
func (s *Scheduler) TriggerColumn(pad *clip.Pad, col int) {
	s.mu.Lock()
	s.engine.TriggerColumn(pad, col)
	s.mu.Unlock()
	s.changed()
}

// TriggerRow launches row of pad
func (s *Scheduler) TriggerRow(pad *clip.Pad, row int) {
	s.mu.Lock()
	s.engine.TriggerRow(pad, row)
	s.mu.Unlock()
	s.changed()
}

// OnBar is the bar pulse handler
func (s *Scheduler) OnBar(bar int64) {
	s.mu.Lock()
	s.lastBar = bar
	started, stopped := s.dispatcher.Flush(bar)
	s.mu.Unlock()
	if len(started) > 0 || len(stopped) > 0 {
		s.changed()
	}
}

// LastBar returns the last pulse handled, -1 before the first
func (s *Scheduler) LastBar() int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastBar
}

// StopAll stops every playing clip immediately and abandons pending starts
func (s *Scheduler) StopAll() {
	s.mu.Lock()
	for _, id := range s.store.Scheduled() {
		s.store.DropScheduled(id)
	}
	for _, id := range s.store.Playing() {
		s.adapter.Stop(id)
	}
	s.mu.Unlock()
	debug.Log("sched", "stop all")
	s.changed()
}

// OnChange registers fn, called after any transition (from any goroutine)
func (s *Scheduler) OnChange(fn func()) {
	s.listenersMu.Lock()
	defer s.listenersMu.Unlock()
	s.listeners = append(s.listeners, fn)
}

func (s *Scheduler) changed() {
	s.listenersMu.Lock()
	listeners := append([]func(){}, s.listeners...)
	s.listenersMu.Unlock()
	for _, fn := range listeners {
		fn()
	}
}

// watch waits for h to finish and runs the release path
func (s *Scheduler) watch(clipID string, h store.Handle) {
	go func() {
		<-h.Done()
		s.mu.Lock()
		released := s.adapter.release(clipID, h)
		s.mu.Unlock()
		if released {
			s.changed()
		}
	}()
}
