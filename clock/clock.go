package clock

import (
	"sync"
	"time"

	"go-padlaunch/debug"
)

// BarDuration returns the length of one bar
func BarDuration(bpm float64, beatsPerBar int) time.Duration {
	if bpm <= 0 {
		bpm = 120
	}
	if beatsPerBar <= 0 {
		beatsPerBar = 4
	}
	return time.Duration(float64(beatsPerBar) * 60 / bpm * float64(time.Second))
}

// BeatClock emits a pulse at every bar boundary. Bar callbacks run on the
// clock goroutine, one at a time, in subscription order.
type BeatClock struct {
	mu          sync.Mutex
	bpm         float64
	beatsPerBar int
	bar         int64
	anchor      time.Time // time of the most recent bar
	running     bool
	subs        []func(bar int64)

	stopCh   chan struct{}
	retimeCh chan struct{}
	wg       sync.WaitGroup
}

// New creates a stopped clock
func New(bpm float64, beatsPerBar int) *BeatClock {
	if beatsPerBar <= 0 {
		beatsPerBar = 4
	}
	if bpm <= 0 {
		bpm = 120
	}
	return &BeatClock{bpm: bpm, beatsPerBar: beatsPerBar}
}

// OnBar subscribes to bar pulses
func (c *BeatClock) OnBar(fn func(bar int64)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.subs = append(c.subs, fn)
}

// Tempo returns the current BPM
func (c *BeatClock) Tempo() float64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.bpm
}

// Bar returns the number of pulses emitted since the first Start
func (c *BeatClock) Bar() int64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.bar
}

// Running reports whether the transport is started
func (c *BeatClock) Running() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.running
}

// Progress returns how far into the current bar the clock is (0..1)
func (c *BeatClock) Progress() float64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.running {
		return 0
	}
	p := float64(time.Since(c.anchor)) / float64(c.barLocked())
	if p < 0 {
		return 0
	}
	if p > 1 {
		return 1
	}
	return p
}

func (c *BeatClock) barLocked() time.Duration {
	return BarDuration(c.bpm, c.beatsPerBar)
}

// SetTempo changes the BPM. A running clock keeps its position within the
// current bar, so the next pulse moves rather than restarting the bar.
func (c *BeatClock) SetTempo(bpm float64) {
	if bpm <= 0 {
		return
	}
	c.mu.Lock()
	if bpm == c.bpm {
		c.mu.Unlock()
		return
	}
	if c.running {
		frac := float64(time.Since(c.anchor)) / float64(c.barLocked())
		c.bpm = bpm
		c.anchor = time.Now().Add(-time.Duration(frac * float64(c.barLocked())))
	} else {
		c.bpm = bpm
	}
	retime := c.retimeCh
	c.mu.Unlock()

	debug.Log("clock", "tempo=%.1f", bpm)
	if retime != nil {
		select {
		case retime <- struct{}{}:
		default:
		}
	}
}

// Start starts the transport. The first pulse fires immediately (downbeat).
func (c *BeatClock) Start() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.running {
		return
	}
	c.running = true
	c.anchor = time.Now().Add(-c.barLocked())
	c.stopCh = make(chan struct{})
	c.retimeCh = make(chan struct{}, 1)
	c.wg.Add(1)
	go c.run(c.stopCh, c.retimeCh)
	debug.Log("clock", "start bpm=%.1f beats=%d", c.bpm, c.beatsPerBar)
}

// Stop halts the transport and waits for the clock goroutine to exit.
// It must not be called from a bar callback.
func (c *BeatClock) Stop() {
	c.mu.Lock()
	if !c.running {
		c.mu.Unlock()
		return
	}
	c.running = false
	close(c.stopCh)
	c.mu.Unlock()

	c.wg.Wait()
	debug.Log("clock", "stop at bar=%d", c.Bar())
}

func (c *BeatClock) run(stop <-chan struct{}, retime <-chan struct{}) {
	defer c.wg.Done()
	for {
		c.mu.Lock()
		next := c.anchor.Add(c.barLocked())
		c.mu.Unlock()

		timer := time.NewTimer(time.Until(next))
		select {
		case <-stop:
			timer.Stop()
			return
		case <-retime:
			timer.Stop()
			continue
		case <-timer.C:
		}

		c.mu.Lock()
		select {
		case <-stop:
			c.mu.Unlock()
			return
		default:
		}
		c.anchor = next
		// Fell behind (suspended process, huge tempo drop): re-anchor instead of bursting.
		if time.Since(next) > c.barLocked() {
			c.anchor = time.Now()
		}
		c.bar++
		bar := c.bar
		subs := append([]func(int64){}, c.subs...)
		c.mu.Unlock()

		debug.LogEvery(16, "clock", "bar=%d", bar)
		for _, fn := range subs {
			fn(bar)
		}
	}
}
