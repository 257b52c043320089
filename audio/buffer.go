package audio

import (
	"math"
	"sync/atomic"
	"time"
)

// Channels is the channel count of every buffer and of the graph output
const Channels = 2

// Buffer is decoded audio: interleaved stereo float32 at SampleRate
type Buffer struct {
	Samples    []float32
	SampleRate int
}

// Frames returns the number of stereo frames
func (b *Buffer) Frames() int {
	return len(b.Samples) / Channels
}

// Duration returns the playback length
func (b *Buffer) Duration() time.Duration {
	if b.SampleRate <= 0 {
		return 0
	}
	return time.Duration(float64(b.Frames()) / float64(b.SampleRate) * float64(time.Second))
}

// Resample returns a copy of b at the target rate using linear interpolation.
// The buffer is returned as-is when the rates already match.
func Resample(b *Buffer, rate int) *Buffer {
	if b.SampleRate == rate || rate <= 0 || b.SampleRate <= 0 || b.Frames() == 0 {
		return b
	}
	in := b.Frames()
	out := int(math.Round(float64(in) * float64(rate) / float64(b.SampleRate)))
	if out < 1 {
		out = 1
	}
	step := float64(b.SampleRate) / float64(rate)
	res := make([]float32, out*Channels)
	for i := 0; i < out; i++ {
		pos := float64(i) * step
		j := int(pos)
		frac := float32(pos - float64(j))
		k := j + 1
		if k >= in {
			k = in - 1
		}
		if j >= in {
			j = in - 1
		}
		for ch := 0; ch < Channels; ch++ {
			a := b.Samples[j*Channels+ch]
			c := b.Samples[k*Channels+ch]
			res[i*Channels+ch] = a + (c-a)*frac
		}
	}
	return &Buffer{Samples: res, SampleRate: rate}
}

// atomicGain stores a float32 gain lock-free for the audio thread
type atomicGain struct {
	bits atomic.Uint32
}

func newAtomicGain(v float32) *atomicGain {
	g := &atomicGain{}
	g.Store(v)
	return g
}

func (g *atomicGain) Load() float32 {
	return math.Float32frombits(g.bits.Load())
}

func (g *atomicGain) Store(v float32) {
	if v < 0 {
		v = 0
	}
	g.bits.Store(math.Float32bits(v))
}
