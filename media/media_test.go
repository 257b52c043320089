package media

import (
	"context"
	"encoding/binary"
	"errors"
	"math"
	"os"
	"path/filepath"
	"testing"
	"time"

	"go-padlaunch/audio"
)

// writePCM16WAV writes a stereo 16-bit PCM WAV holding frames copies of value
func writePCM16WAV(t *testing.T, path string, rate, frames int, value int16) {
	t.Helper()
	dataSize := frames * 2 * 2
	b := make([]byte, 44+dataSize)
	copy(b[0:], "RIFF")
	binary.LittleEndian.PutUint32(b[4:], uint32(36+dataSize))
	copy(b[8:], "WAVE")
	copy(b[12:], "fmt ")
	binary.LittleEndian.PutUint32(b[16:], 16)
	binary.LittleEndian.PutUint16(b[20:], 1) // PCM
	binary.LittleEndian.PutUint16(b[22:], 2)
	binary.LittleEndian.PutUint32(b[24:], uint32(rate))
	binary.LittleEndian.PutUint32(b[28:], uint32(rate*4))
	binary.LittleEndian.PutUint16(b[32:], 4)
	binary.LittleEndian.PutUint16(b[34:], 16)
	copy(b[36:], "data")
	binary.LittleEndian.PutUint32(b[40:], uint32(dataSize))
	for i := 0; i < frames*2; i++ {
		binary.LittleEndian.PutUint16(b[44+i*2:], uint16(value))
	}
	if err := os.WriteFile(path, b, 0644); err != nil {
		t.Fatalf("write wav: %v", err)
	}
}

func TestLoadDecodesAndResamplesWAV(t *testing.T) {
	dir := t.TempDir()
	writePCM16WAV(t, filepath.Join(dir, "kick.wav"), 24000, 240, 16384)

	l := NewLoader(dir, 48000)
	if _, ok := l.Resolve("kick.wav"); ok {
		t.Fatalf("file resolved before loading")
	}
	if err := l.Load(context.Background(), []string{"kick.wav"}); err != nil {
		t.Fatalf("load: %v", err)
	}

	res, ok := l.Resolve("kick.wav")
	if !ok || res.Audio == nil {
		t.Fatalf("kick.wav not resolved")
	}
	if res.Audio.SampleRate != 48000 || res.Audio.Frames() != 480 {
		t.Fatalf("buffer rate=%d frames=%d", res.Audio.SampleRate, res.Audio.Frames())
	}
	if math.Abs(float64(res.Audio.Samples[0])-0.5) > 0.01 {
		t.Fatalf("first sample = %v, want ~0.5", res.Audio.Samples[0])
	}
	if st, err := l.Status("kick.wav"); st != StatusReady || err != nil {
		t.Fatalf("status = %v %v", st, err)
	}
}

func TestLoadRecordsFailures(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("x"), 0644); err != nil {
		t.Fatalf("write: %v", err)
	}
	l := NewLoader(dir, 48000)

	err := l.Load(context.Background(), []string{"notes.txt"})
	if !errors.Is(err, ErrUnsupportedFormat) {
		t.Fatalf("err = %v, want ErrUnsupportedFormat", err)
	}
	if st, _ := l.Status("notes.txt"); st != StatusFailed {
		t.Fatalf("status = %v, want failed", st)
	}

	if err := l.Load(context.Background(), []string{"missing.wav"}); err == nil {
		t.Fatalf("expected error for missing file")
	}
	if _, ok := l.Resolve("missing.wav"); ok {
		t.Fatalf("missing file must stay unresolved")
	}
	if st, _ := l.Status("never.wav"); st != StatusUnknown {
		t.Fatalf("status of untouched file = %v", st)
	}
}

func TestLoadVideoAndPut(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "intro.mp4"), []byte{0}, 0644); err != nil {
		t.Fatalf("write: %v", err)
	}
	l := NewLoader(dir, 48000)
	if err := l.Load(context.Background(), []string{"intro.mp4"}); err != nil {
		t.Fatalf("load: %v", err)
	}
	res, ok := l.Resolve("intro.mp4")
	if !ok || res.Video == nil || res.Video.Path() != filepath.Join(dir, "intro.mp4") {
		t.Fatalf("video not resolved: %+v", res)
	}

	buf := &audio.Buffer{Samples: make([]float32, 4), SampleRate: 48000}
	l.Put("gen", Resource{Audio: buf})
	if got, ok := l.Resolve("gen"); !ok || got.Audio != buf {
		t.Fatalf("Put resource not resolved")
	}
}

func TestPreloadRunsInBackground(t *testing.T) {
	dir := t.TempDir()
	writePCM16WAV(t, filepath.Join(dir, "a.wav"), 48000, 10, 100)
	l := NewLoader(dir, 48000)
	l.Preload(context.Background(), []string{"a.wav"})

	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if _, ok := l.Resolve("a.wav"); ok {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("a.wav never resolved")
}

func TestVideoSessionNaturalEndAndStop(t *testing.T) {
	v := NewVideo("clip.mp4")

	s := v.Play(20*time.Millisecond, false)
	if !v.Playing() {
		t.Fatalf("video should be playing")
	}
	select {
	case <-s.Done():
	case <-time.After(time.Second):
		t.Fatalf("session did not end naturally")
	}
	if err := s.Stop(); !errors.Is(err, ErrVideoEnded) {
		t.Fatalf("stop after end = %v", err)
	}
	if s.Position() != 0 {
		t.Fatalf("ended session should be rewound")
	}

	looped := v.Play(10*time.Millisecond, true)
	restarted := v.Play(0, false)
	select {
	case <-looped.Done():
	default:
		t.Fatalf("replaying must stop the previous session")
	}
	if v.Plays() != 3 {
		t.Fatalf("plays = %d", v.Plays())
	}
	if err := restarted.Stop(); err != nil {
		t.Fatalf("stop: %v", err)
	}
	if v.Playing() {
		t.Fatalf("video still playing after stop")
	}
}

func TestLoadFailureDoesNotCancelOthers(t *testing.T) {
	dir := t.TempDir()
	writePCM16WAV(t, filepath.Join(dir, "a.wav"), 48000, 10, 100)
	l := NewLoader(dir, 48000)

	if err := l.Load(context.Background(), []string{"broken.xyz", "a.wav"}); err == nil {
		t.Fatalf("expected error for broken.xyz")
	}
	if st, err := l.Status("a.wav"); st != StatusReady || err != nil {
		t.Fatalf("a.wav status = %v %v", st, err)
	}
}
