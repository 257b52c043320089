package media

import (
	"bytes"
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/hajimehoshi/ebiten/v2/audio/mp3"
	"github.com/hajimehoshi/ebiten/v2/audio/vorbis"
	"github.com/hajimehoshi/ebiten/v2/audio/wav"
	"golang.org/x/sync/errgroup"

	"go-padlaunch/audio"
	"go-padlaunch/debug"
)

// ErrUnsupportedFormat is returned for files no decoder handles
var ErrUnsupportedFormat = errors.New("media: unsupported format")

// Status is the load state of a file
type Status int

const (
	StatusUnknown Status = iota
	StatusLoading
	StatusReady
	StatusFailed
)

func (s Status) String() string {
	switch s {
	case StatusLoading:
		return "loading"
	case StatusReady:
		return "ready"
	case StatusFailed:
		return "failed"
	}
	return "unknown"
}

// Resource is a resolved media file: a decoded audio buffer or a video handle
type Resource struct {
	Audio *audio.Buffer
	Video *Video
}

// decodedStream is what ebiten's DecodeF32 functions return
type decodedStream interface {
	io.Reader
	SampleRate() int
}

type decodeFunc func(r io.Reader) (decodedStream, error)

var audioDecoders = map[string]decodeFunc{
	".wav": func(r io.Reader) (decodedStream, error) { return wav.DecodeF32(r) },
	".mp3": func(r io.Reader) (decodedStream, error) { return mp3.DecodeF32(r) },
	".ogg": func(r io.Reader) (decodedStream, error) { return vorbis.DecodeF32(r) },
}

var videoExts = map[string]bool{
	".mp4": true, ".mov": true, ".webm": true, ".mkv": true, ".m4v": true,
}

type entry struct {
	status Status
	res    Resource
	err    error
}

// Loader resolves file ids to resources. Resolve never blocks: a file that is
// still decoding is simply unresolved.
type Loader struct {
	dir        string
	sampleRate int
	parallel   int

	mu      sync.RWMutex
	entries map[string]*entry
}

// NewLoader creates a loader for files under dir, decoding audio to sampleRate
func NewLoader(dir string, sampleRate int) *Loader {
	return &Loader{
		dir:        dir,
		sampleRate: sampleRate,
		parallel:   4,
		entries:    make(map[string]*entry),
	}
}

// Resolve returns the resource for file if it finished loading
func (l *Loader) Resolve(file string) (Resource, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	e, ok := l.entries[file]
	if !ok || e.status != StatusReady {
		return Resource{}, false
	}
	return e.res, true
}

// Status returns the load state and, for failures, the error
func (l *Loader) Status(file string) (Status, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	e, ok := l.entries[file]
	if !ok {
		return StatusUnknown, nil
	}
	return e.status, e.err
}

// Put registers an already resolved resource
func (l *Loader) Put(file string, res Resource) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.entries[file] = &entry{status: StatusReady, res: res}
}

// Preload starts loading files in the background and returns immediately
func (l *Loader) Preload(ctx context.Context, files []string) {
	go func() {
		if err := l.Load(ctx, files); err != nil {
			debug.Log("media", "preload: %v", err)
		}
	}()
}

// Load decodes files with bounded parallelism. Per-file failures are recorded
// in Status and do not stop the other files; the first one is also returned.
func (l *Loader) Load(ctx context.Context, files []string) error {
	var g errgroup.Group
	g.SetLimit(l.parallel)
	for _, f := range files {
		if !l.begin(f) {
			continue
		}
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				l.finish(f, Resource{}, err)
				return err
			}
			res, err := l.load(f)
			l.finish(f, res, err)
			if err != nil {
				return fmt.Errorf("load %s: %w", f, err)
			}
			return nil
		})
	}
	return g.Wait()
}

// begin marks a file loading; false if it is already loading or loaded
func (l *Loader) begin(file string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	if e, ok := l.entries[file]; ok && (e.status == StatusLoading || e.status == StatusReady) {
		return false
	}
	l.entries[file] = &entry{status: StatusLoading}
	return true
}

func (l *Loader) finish(file string, res Resource, err error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if err != nil {
		l.entries[file] = &entry{status: StatusFailed, err: err}
		debug.Log("media", "failed %s: %v", file, err)
		return
	}
	l.entries[file] = &entry{status: StatusReady, res: res}
	if res.Audio != nil {
		debug.Log("media", "ready %s frames=%d", file, res.Audio.Frames())
	} else {
		debug.Log("media", "ready %s (video)", file)
	}
}

func (l *Loader) path(file string) string {
	if filepath.IsAbs(file) {
		return file
	}
	return filepath.Join(l.dir, file)
}

func (l *Loader) load(file string) (Resource, error) {
	path := l.path(file)
	ext := strings.ToLower(filepath.Ext(file))

	if videoExts[ext] {
		if _, err := os.Stat(path); err != nil {
			return Resource{}, err
		}
		return Resource{Video: NewVideo(path)}, nil
	}

	decode, ok := audioDecoders[ext]
	if !ok {
		return Resource{}, fmt.Errorf("%w: %q", ErrUnsupportedFormat, ext)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return Resource{}, err
	}
	buf, err := decodeAudio(decode, data)
	if err != nil {
		return Resource{}, err
	}
	return Resource{Audio: audio.Resample(buf, l.sampleRate)}, nil
}

func decodeAudio(decode decodeFunc, data []byte) (*audio.Buffer, error) {
	stream, err := decode(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	raw, err := io.ReadAll(stream)
	if err != nil {
		return nil, err
	}
	return &audio.Buffer{
		Samples:    bytesToFloat32(raw),
		SampleRate: stream.SampleRate(),
	}, nil
}

// bytesToFloat32 converts 32-bit little-endian float PCM
func bytesToFloat32(raw []byte) []float32 {
	n := len(raw) / 4
	n -= n % audio.Channels
	out := make([]float32, n)
	for i := range out {
		out[i] = math.Float32frombits(binary.LittleEndian.Uint32(raw[i*4:]))
	}
	return out
}
