package audio

import (
	"sync"

	"github.com/google/uuid"

	"go-padlaunch/clip"
)

// Track is a mixing node. Voices play on a track; non-master tracks feed master.
type Track struct {
	name   string
	gain   *atomicGain
	voices []*Voice
	graph  *Graph
}

// Name returns the track name
func (t *Track) Name() string { return t.name }

// Gain returns the track gain
func (t *Track) Gain() float64 { return float64(t.gain.Load()) }

// SetGain changes the track gain live
func (t *Track) SetGain(gain float64) { t.gain.Store(float32(gain)) }

// Play starts a new voice of buf on this track
func (t *Track) Play(buf *Buffer, loop bool, gain float64) *Voice {
	v := newVoice(uuid.NewString(), buf, loop, gain)
	g := t.graph
	g.mu.Lock()
	t.voices = append(t.voices, v)
	g.mu.Unlock()
	return v
}

// Graph is the audio output graph: a master track plus named tracks.
// Process is called from the audio thread; everything else from anywhere.
type Graph struct {
	mu         sync.Mutex
	sampleRate int
	master     *Track
	tracks     map[string]*Track
	order      []*Track
	scratch    []float32
}

// NewGraph creates a graph with only the master track
func NewGraph(sampleRate int) *Graph {
	g := &Graph{
		sampleRate: sampleRate,
		tracks:     make(map[string]*Track),
	}
	g.master = &Track{name: clip.MasterTrack, gain: newAtomicGain(1), graph: g}
	g.tracks[clip.MasterTrack] = g.master
	return g
}

// SampleRate returns the output rate buffers must match
func (g *Graph) SampleRate() int { return g.sampleRate }

// Master returns the master track
func (g *Graph) Master() *Track { return g.master }

// AddTrack adds (or re-gains) a named track
func (g *Graph) AddTrack(name string, gain float64) *Track {
	g.mu.Lock()
	defer g.mu.Unlock()
	if t, ok := g.tracks[name]; ok {
		t.SetGain(gain)
		return t
	}
	t := &Track{name: name, gain: newAtomicGain(float32(gain)), graph: g}
	g.tracks[name] = t
	g.order = append(g.order, t)
	return t
}

// Track looks up a track by name. Unknown names fall back to master with ok=false.
func (g *Graph) Track(name string) (*Track, bool) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if t, ok := g.tracks[name]; ok {
		return t, true
	}
	return g.master, false
}

// Tracks returns track names, master first
func (g *Graph) Tracks() []string {
	g.mu.Lock()
	defer g.mu.Unlock()
	names := []string{g.master.name}
	for _, t := range g.order {
		names = append(names, t.name)
	}
	return names
}

// ActiveVoices returns the number of voices not yet ended
func (g *Graph) ActiveVoices() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	n := liveCount(g.master.voices)
	for _, t := range g.order {
		n += liveCount(t.voices)
	}
	return n
}

// Process renders interleaved stereo into dst. Finished voices are dropped and
// their Done channels closed here.
func (g *Graph) Process(dst []float32) {
	for i := range dst {
		dst[i] = 0
	}

	g.mu.Lock()
	defer g.mu.Unlock()

	if cap(g.scratch) < len(dst) {
		g.scratch = make([]float32, len(dst))
	}
	scratch := g.scratch[:len(dst)]

	for _, t := range g.order {
		for i := range scratch {
			scratch[i] = 0
		}
		t.voices = mixVoices(t.voices, scratch)
		tg := t.gain.Load()
		for i := range dst {
			dst[i] += scratch[i] * tg
		}
	}
	g.master.voices = mixVoices(g.master.voices, dst)

	mg := g.master.gain.Load()
	for i := range dst {
		s := dst[i] * mg
		if s > 1 {
			s = 1
		} else if s < -1 {
			s = -1
		}
		dst[i] = s
	}
}

func liveCount(voices []*Voice) int {
	n := 0
	for _, v := range voices {
		if !v.Ended() {
			n++
		}
	}
	return n
}

func mixVoices(voices []*Voice, dst []float32) []*Voice {
	live := voices[:0]
	for _, v := range voices {
		if v.mix(dst) {
			live = append(live, v)
		}
	}
	for i := len(live); i < len(voices); i++ {
		voices[i] = nil
	}
	return live
}
