package store

import (
	"sort"
	"sync"

	"go-padlaunch/clip"
)

// Tempo bounds, matching what the beat clock accepts
const (
	MinBPM = 20
	MaxBPM = 300
)

// Handle is a running playback instance (audio voice or video session) for one clip
type Handle interface {
	ID() string
	// Stop halts playback. Stopping twice, or after a natural end, is a no-op.
	Stop() error
	// Done is closed when playback ends, naturally or by Stop.
	Done() <-chan struct{}
}

// ClipState is the scheduler-facing state of a clip
type ClipState int

const (
	StateIdle ClipState = iota
	StateScheduled
	StatePlaying
	StateStopping // playing, stop pending on the next bar
)

func (s ClipState) String() string {
	switch s {
	case StateScheduled:
		return "scheduled"
	case StatePlaying:
		return "playing"
	case StateStopping:
		return "stopping"
	}
	return "idle"
}

// Settings holds transport settings
type Settings struct {
	BPM         int
	BeatsPerBar int
}

// Store is the state container: clip registry, settings and the three scheduler sets.
// Every command is an atomic transition; compound decisions are serialised by the caller.
type Store struct {
	mu        sync.RWMutex
	registry  *clip.Registry
	settings  Settings
	scheduled map[string]struct{}
	playing   map[string]Handle
	toStop    map[string]struct{}

	listenersMu sync.Mutex
	listeners   []func(Settings)
}

// New creates a store over a registry
func New(reg *clip.Registry, settings Settings) *Store {
	if settings.BeatsPerBar <= 0 {
		settings.BeatsPerBar = clip.DefaultBeatsPerBar
	}
	settings.BPM = clampBPM(settings.BPM)
	return &Store{
		registry:  reg,
		settings:  settings,
		scheduled: make(map[string]struct{}),
		playing:   make(map[string]Handle),
		toStop:    make(map[string]struct{}),
	}
}

func clampBPM(bpm int) int {
	if bpm < MinBPM {
		return MinBPM
	}
	if bpm > MaxBPM {
		return MaxBPM
	}
	return bpm
}

// Registry returns the read-only clip registry
func (s *Store) Registry() *clip.Registry {
	return s.registry
}

// Commands

// AddScheduled marks a clip to start on the next pulse. Returns false (no-op)
// when the clip is already scheduled or playing.
func (s *Store) AddScheduled(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.scheduled[id]; ok {
		return false
	}
	if _, ok := s.playing[id]; ok {
		return false
	}
	s.scheduled[id] = struct{}{}
	return true
}

// AddPlaying records a live handle, moving the clip out of scheduled
func (s *Store) AddPlaying(id string, h Handle) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.scheduled, id)
	s.playing[id] = h
}

// ScheduleStop marks a playing clip to stop on the next pulse. Returns false
// when the clip is not playing or a stop is already pending.
func (s *Store) ScheduleStop(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.playing[id]; !ok {
		return false
	}
	if _, ok := s.toStop[id]; ok {
		return false
	}
	s.toStop[id] = struct{}{}
	return true
}

// MediaEnded clears every scheduler membership of a clip and returns the handle
// that was playing (nil if none)
func (s *Store) MediaEnded(id string) Handle {
	s.mu.Lock()
	defer s.mu.Unlock()
	h := s.playing[id]
	delete(s.playing, id)
	delete(s.toStop, id)
	delete(s.scheduled, id)
	return h
}

// FlushScheduled removes processed entries after a pulse
func (s *Store) FlushScheduled(started, stopped []string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, id := range started {
		delete(s.scheduled, id)
	}
	for _, id := range stopped {
		delete(s.toStop, id)
	}
}

// DropScheduled abandons a pending start
func (s *Store) DropScheduled(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.scheduled, id)
}

// Reads

// IsScheduled reports whether a start is pending
func (s *Store) IsScheduled(id string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.scheduled[id]
	return ok
}

// IsPlaying reports whether the clip has a live handle
func (s *Store) IsPlaying(id string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.playing[id]
	return ok
}

// IsStopping reports whether a stop is pending
func (s *Store) IsStopping(id string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.toStop[id]
	return ok
}

// Handle returns the live handle of a clip
func (s *Store) Handle(id string) (Handle, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	h, ok := s.playing[id]
	return h, ok
}

// State returns the combined state of a clip
func (s *Store) State(id string) ClipState {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.stateLocked(id)
}

func (s *Store) stateLocked(id string) ClipState {
	if _, ok := s.playing[id]; ok {
		if _, stopping := s.toStop[id]; stopping {
			return StateStopping
		}
		return StatePlaying
	}
	if _, ok := s.scheduled[id]; ok {
		return StateScheduled
	}
	return StateIdle
}

// Scheduled returns pending starts, sorted
func (s *Store) Scheduled() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return sortedKeys(s.scheduled)
}

// ToStop returns pending stops, sorted
func (s *Store) ToStop() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return sortedKeys(s.toStop)
}

// Playing returns playing clip ids, sorted
func (s *Store) Playing() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	ids := make([]string, 0, len(s.playing))
	for id := range s.playing {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Snapshot is a consistent copy of clip states for renderers
type Snapshot map[string]ClipState

// Snapshot returns the state of every non-idle clip
func (s *Store) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	snap := make(Snapshot, len(s.playing)+len(s.scheduled))
	for id := range s.playing {
		snap[id] = s.stateLocked(id)
	}
	for id := range s.scheduled {
		snap[id] = StateScheduled
	}
	return snap
}

// Get returns the state of a clip (idle when absent)
func (snap Snapshot) Get(id string) ClipState {
	return snap[id]
}

func sortedKeys(m map[string]struct{}) []string {
	ids := make([]string, 0, len(m))
	for id := range m {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Settings

// Settings returns the current settings
func (s *Store) Settings() Settings {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.settings
}

// SetTempo sets the BPM (clamped) and notifies subscribers when it changed
func (s *Store) SetTempo(bpm int) {
	bpm = clampBPM(bpm)
	s.mu.Lock()
	if s.settings.BPM == bpm {
		s.mu.Unlock()
		return
	}
	s.settings.BPM = bpm
	settings := s.settings
	s.mu.Unlock()

	s.notify(settings)
}

// OnSettingsChange registers a subscriber called after every settings change
func (s *Store) OnSettingsChange(fn func(Settings)) {
	s.listenersMu.Lock()
	defer s.listenersMu.Unlock()
	s.listeners = append(s.listeners, fn)
}

func (s *Store) notify(settings Settings) {
	s.listenersMu.Lock()
	listeners := append([]func(Settings){}, s.listeners...)
	s.listenersMu.Unlock()
	for _, fn := range listeners {
		fn(settings)
	}
}
