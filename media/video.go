package media

import (
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
)

// ErrVideoEnded is returned by Stop when the session already ended
var ErrVideoEnded = errors.New("media: video session already ended")

// Video is a playable video handle. One handle exists per file; starting it
// again pauses and rewinds the previous session first.
type Video struct {
	path string

	mu      sync.Mutex
	session *VideoSession
	plays   int
}

// NewVideo wraps a video file
func NewVideo(path string) *Video {
	return &Video{path: path}
}

// Path returns the file path
func (v *Video) Path() string { return v.path }

// Plays returns how many sessions were started
func (v *Video) Plays() int {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.plays
}

// Playing reports whether the current session is running
func (v *Video) Playing() bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.session != nil && !v.session.ended.Load()
}

// Play rewinds and starts the video. A session with a positive length and no
// loop ends naturally after length; otherwise it runs until stopped.
func (v *Video) Play(length time.Duration, loop bool) *VideoSession {
	v.mu.Lock()
	prev := v.session
	v.mu.Unlock()
	if prev != nil {
		_ = prev.Stop()
	}

	s := &VideoSession{
		id:      uuid.NewString(),
		video:   v,
		started: time.Now(),
		length:  length,
		loop:    loop,
		done:    make(chan struct{}),
	}
	if length > 0 && !loop {
		s.timer = time.AfterFunc(length, func() { s.finish() })
	}

	v.mu.Lock()
	v.session = s
	v.plays++
	v.mu.Unlock()
	return s
}

// VideoSession is one run of a Video
type VideoSession struct {
	id      string
	video   *Video
	started time.Time
	length  time.Duration
	loop    bool
	timer   *time.Timer

	once  sync.Once
	ended atomic.Bool
	done  chan struct{}
}

func (s *VideoSession) ID() string            { return s.id }
func (s *VideoSession) Done() <-chan struct{} { return s.done }

// Video returns the handle this session plays
func (s *VideoSession) Video() *Video { return s.video }

// Position returns the playback position
func (s *VideoSession) Position() time.Duration {
	if s.ended.Load() {
		return 0 // rewound
	}
	p := time.Since(s.started)
	if s.length > 0 {
		if s.loop {
			p %= s.length
		} else if p > s.length {
			p = s.length
		}
	}
	return p
}

// Stop pauses and rewinds; the end hook is cleared so no natural end follows
func (s *VideoSession) Stop() error {
	if s.timer != nil {
		s.timer.Stop()
	}
	if !s.finish() {
		return ErrVideoEnded
	}
	return nil
}

func (s *VideoSession) finish() bool {
	first := false
	s.once.Do(func() {
		first = true
		s.ended.Store(true)
		close(s.done)
	})
	return first
}
