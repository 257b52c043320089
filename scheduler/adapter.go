package scheduler

import (
	"go-padlaunch/audio"
	"go-padlaunch/clip"
	"go-padlaunch/debug"
	"go-padlaunch/media"
	"go-padlaunch/store"
)

// MediaResolver resolves file ids without blocking (media.Loader)
type MediaResolver interface {
	Resolve(file string) (media.Resource, bool)
}

// OutputGraph hands out mixing tracks, falling back to master (audio.Graph)
type OutputGraph interface {
	Track(name string) (*audio.Track, bool)
}

// Adapter starts and stops playback handles. It knows nothing about bars.
// All methods run under the scheduler lock.
type Adapter struct {
	store    *store.Store
	media    MediaResolver
	graph    OutputGraph
	resolver *Resolver

	// watch is installed by the Scheduler to observe natural ends
	watch func(clipID string, h store.Handle)
}

func NewAdapter(st *store.Store, mr MediaResolver, graph OutputGraph, resolver *Resolver) *Adapter {
	return &Adapter{store: st, media: mr, graph: graph, resolver: resolver}
}

// Ready reports whether the clip's media is resolved
func (a *Adapter) Ready(c clip.Clip) bool {
	_, ok := a.media.Resolve(c.File)
	return ok
}

// Start begins playback of c. Returns false, doing nothing, when the media is
// not resolved or does not match the clip kind. Playing clips in the same
// column are stopped immediately first.
func (a *Adapter) Start(c clip.Clip) bool {
	res, ok := a.media.Resolve(c.File)
	if !ok {
		debug.Log("voice", "start %s: media %s not ready", c.ID, c.File)
		return false
	}
	if c.IsVideo() && res.Video == nil || !c.IsVideo() && res.Audio == nil {
		debug.Log("voice", "start %s: %s is not %s media", c.ID, c.File, c.Kind)
		return false
	}

	for _, id := range a.resolver.Conflicts(c.ID) {
		if a.store.IsPlaying(id) {
			debug.Log("voice", "start %s: stopping vertical %s", c.ID, id)
			a.Stop(id)
		}
	}
	if a.store.IsPlaying(c.ID) {
		a.Stop(c.ID)
	}

	var h store.Handle
	if c.IsVideo() {
		h = res.Video.Play(c.Length, c.Loop)
	} else {
		track, found := a.graph.Track(c.Track)
		if !found {
			debug.Log("voice", "start %s: track %q unknown, using %s", c.ID, c.Track, track.Name())
		}
		h = track.Play(res.Audio, c.Loop, c.Gain)
	}

	a.store.AddPlaying(c.ID, h)
	debug.Log("voice", "start %s handle=%s loop=%v", c.ID, h.ID(), c.Loop)
	if a.watch != nil {
		a.watch(c.ID, h)
	}
	return true
}

// Stop halts the clip's handle if any. Failures from a handle that already
// ended are swallowed; the clip's scheduler membership is always cleared.
func (a *Adapter) Stop(clipID string) {
	h := a.store.MediaEnded(clipID)
	if h == nil {
		debug.Log("voice", "stop %s: no live handle", clipID)
		return
	}
	if err := h.Stop(); err != nil {
		debug.Log("voice", "stop %s handle=%s: %v (ignored)", clipID, h.ID(), err)
		return
	}
	debug.Log("voice", "stop %s handle=%s", clipID, h.ID())
}

// release is the shared cleanup for a handle that reported Done. It only acts
// when h is still the clip's live handle, so a late notice for a handle that
// was already stopped or replaced is a no-op.
func (a *Adapter) release(clipID string, h store.Handle) bool {
	cur, ok := a.store.Handle(clipID)
	if !ok || cur != h {
		return false
	}
	a.store.MediaEnded(clipID)
	debug.Log("voice", "ended %s handle=%s", clipID, h.ID())
	return true
}
