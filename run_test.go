package main

import (
	"testing"

	"go-padlaunch/audio"
	"go-padlaunch/clip"
	"go-padlaunch/media"
	"go-padlaunch/scheduler"
	"go-padlaunch/session"
	"go-padlaunch/store"
)

type idleClock struct{ running bool }

func (c *idleClock) Start()            { c.running = true }
func (c *idleClock) Stop()             { c.running = false }
func (c *idleClock) Running() bool     { return c.running }
func (c *idleClock) Bar() int64        { return 0 }
func (c *idleClock) Progress() float64 { return 0 }

func newTestScheduler(t *testing.T) *scheduler.Scheduler {
	t.Helper()
	reg, err := clip.NewRegistry(
		[]clip.Clip{{ID: "k1", Kind: clip.KindAudio, File: "kick.wav", Behavior: clip.BehaviorSchedulable, Gain: 1}},
		[]clip.Pad{{ID: "main", Cells: [][]string{{"k1"}}}},
	)
	if err != nil {
		t.Fatalf("registry: %v", err)
	}
	st := store.New(reg, store.Settings{BPM: 120})
	return scheduler.New(st, media.NewLoader(t.TempDir(), 48000), audio.NewGraph(48000), nil, scheduler.DefaultOptions())
}

func TestStartSessionRunsClock(t *testing.T) {
	clk := &idleClock{}
	m := startSession(newTestScheduler(t), clk, session.DefaultColors(), false)
	defer m.Close()
	if !clk.running {
		t.Fatalf("clock not started at launch")
	}
	if _, playing, _ := m.GetState(); !playing {
		t.Fatalf("session reports stopped transport")
	}
}

func TestStartSessionPaused(t *testing.T) {
	clk := &idleClock{}
	m := startSession(newTestScheduler(t), clk, session.DefaultColors(), true)
	defer m.Close()
	if clk.running {
		t.Fatalf("--paused started the clock")
	}
}
