package audio

import (
	"errors"
	"sync"
	"sync/atomic"
)

// ErrVoiceEnded is returned by Stop when the voice already finished or was stopped
var ErrVoiceEnded = errors.New("audio: voice already ended")

// Voice is one playing instance of a buffer on a track
type Voice struct {
	id    string
	buf   *Buffer
	loop  bool
	gain  *atomicGain
	pos   int // frame, touched only by the mixer under the graph lock
	ended atomic.Bool
	once  sync.Once
	done  chan struct{}
}

func newVoice(id string, buf *Buffer, loop bool, gain float64) *Voice {
	return &Voice{
		id:   id,
		buf:  buf,
		loop: loop,
		gain: newAtomicGain(float32(gain)),
		done: make(chan struct{}),
	}
}

// ID returns the voice id
func (v *Voice) ID() string { return v.id }

// Done is closed when the voice ends naturally or is stopped
func (v *Voice) Done() <-chan struct{} { return v.done }

// Ended reports whether the voice finished
func (v *Voice) Ended() bool { return v.ended.Load() }

// SetGain changes the voice gain live
func (v *Voice) SetGain(gain float64) { v.gain.Store(float32(gain)) }

// Stop halts the voice. The mixer drops it on the next Process call.
func (v *Voice) Stop() error {
	if !v.finish() {
		return ErrVoiceEnded
	}
	return nil
}

// finish marks the voice ended exactly once; reports whether this call did it
func (v *Voice) finish() bool {
	first := false
	v.once.Do(func() {
		first = true
		v.ended.Store(true)
		close(v.done)
	})
	return first
}

// mix adds the next len(dst)/2 frames into dst. Returns false once the voice is over.
func (v *Voice) mix(dst []float32) bool {
	if v.ended.Load() {
		return false
	}
	frames := v.buf.Frames()
	if frames == 0 {
		v.finish()
		return false
	}
	g := v.gain.Load()
	src := v.buf.Samples
	for i := 0; i+1 < len(dst); i += Channels {
		if v.pos >= frames {
			if !v.loop {
				v.finish()
				return false
			}
			v.pos = 0
		}
		dst[i] += src[v.pos*Channels] * g
		dst[i+1] += src[v.pos*Channels+1] * g
		v.pos++
	}
	if !v.loop && v.pos >= frames {
		v.finish()
		return false
	}
	return true
}
