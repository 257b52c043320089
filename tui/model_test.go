package tui

import (
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"go-padlaunch/audio"
	"go-padlaunch/clip"
	"go-padlaunch/media"
	"go-padlaunch/scheduler"
	"go-padlaunch/session"
	"go-padlaunch/store"
	"go-padlaunch/theme"
)

type stoppedClock struct{ running bool }

func (c *stoppedClock) Start()            { c.running = true }
func (c *stoppedClock) Stop()             { c.running = false }
func (c *stoppedClock) Running() bool     { return c.running }
func (c *stoppedClock) Bar() int64        { return 0 }
func (c *stoppedClock) Progress() float64 { return 0.5 }

type statusMap map[string]media.Status

func (s statusMap) Status(file string) (media.Status, error) { return s[file], nil }

func newTestModel(t *testing.T) (Model, *store.Store, *stoppedClock) {
	t.Helper()
	clips := []clip.Clip{
		{ID: "kick", Kind: clip.KindAudio, File: "kick.wav", Behavior: clip.BehaviorSchedulable, Loop: true, Gain: 1},
		{ID: "hat", Kind: clip.KindAudio, File: "hat.wav", Behavior: clip.BehaviorSingle, Gain: 1},
		{ID: "bass", Kind: clip.KindAudio, File: "bass.wav", Behavior: clip.BehaviorSchedulable, Loop: true, Gain: 1},
	}
	pads := []clip.Pad{
		{ID: "a", Cells: [][]string{{"kick", "hat"}, {"bass", ""}}},
		{ID: "b", Cells: [][]string{{"hat"}}},
	}
	reg, err := clip.NewRegistry(clips, pads)
	if err != nil {
		t.Fatalf("registry: %v", err)
	}
	st := store.New(reg, store.Settings{BPM: 120})
	loader := media.NewLoader(t.TempDir(), 48000)
	buf := &audio.Buffer{Samples: make([]float32, 9600), SampleRate: 48000}
	for _, f := range []string{"kick.wav", "hat.wav", "bass.wav"} {
		loader.Put(f, media.Resource{Audio: buf})
	}
	sched := scheduler.New(st, loader, audio.NewGraph(48000), nil, scheduler.DefaultOptions())
	clk := &stoppedClock{}
	th, _ := theme.Load("")
	m := NewModel("demo", session.NewManager(sched, clk, session.DefaultColors()), nil, th)
	return m, st, clk
}

func press(m Model, keys ...tea.KeyMsg) Model {
	for _, k := range keys {
		next, _ := m.Update(k)
		m = next.(Model)
	}
	return m
}

func runes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func TestKeysTriggerCells(t *testing.T) {
	m, st, _ := newTestModel(t)

	m = press(m, runes(" "))
	if st.State("kick") != store.StateScheduled {
		t.Fatalf("kick = %v", st.State("kick"))
	}

	m = press(m, runes("l"), runes("l"), runes(" "))
	if m.cursorCol != 1 {
		t.Fatalf("cursor col = %d, want clamp at 1", m.cursorCol)
	}
	if st.State("hat") != store.StatePlaying {
		t.Fatalf("hat = %v", st.State("hat"))
	}

	m = press(m, runes("x"))
	if st.State("hat") != store.StateStopping {
		t.Fatalf("hat = %v after column stop", st.State("hat"))
	}

	m = press(m, runes("j"), runes("j"), tea.KeyMsg{Type: tea.KeyEnter})
	if m.cursorRow != 1 {
		t.Fatalf("cursor row = %d", m.cursorRow)
	}
	if st.State("bass") != store.StateScheduled {
		t.Fatalf("row launch did not schedule bass: %v", st.State("bass"))
	}
}

func TestKeysTransportAndPads(t *testing.T) {
	m, st, clk := newTestModel(t)

	m = press(m, runes("p"))
	if !clk.running {
		t.Fatalf("p did not start the clock")
	}
	m = press(m, runes("+"), runes("+"), runes("-"))
	if st.Settings().BPM != 125 {
		t.Fatalf("bpm = %d", st.Settings().BPM)
	}

	m = press(m, runes("l"), tea.KeyMsg{Type: tea.KeyTab})
	if m.Manager.PadIndex() != 1 || m.cursorCol != 0 {
		t.Fatalf("tab: pad=%d cursor=%d", m.Manager.PadIndex(), m.cursorCol)
	}

	next, cmd := m.Update(runes("q"))
	if cmd == nil || !next.(Model).quitting {
		t.Fatalf("q did not quit")
	}
	if clk.running {
		t.Fatalf("quit left the clock running")
	}
}

func TestViewShowsGrid(t *testing.T) {
	m, _, _ := newTestModel(t)
	m.Media = statusMap{"bass.wav": media.StatusFailed}
	m = press(m, runes(" "))

	out := m.View()
	for _, want := range []string{"demo", "120bpm", "kick", "hat", "bass", "[a]", "◆"} {
		if !strings.Contains(out, want) {
			t.Errorf("view missing %q", want)
		}
	}
}

func TestProgressBar(t *testing.T) {
	if got := progressBar(0.5, 4); got != "▮▮▯▯" {
		t.Fatalf("progressBar = %q", got)
	}
	if got := progressBar(2, 2); got != "▮▮" {
		t.Fatalf("progressBar overflow = %q", got)
	}
}

func TestHelpToggle(t *testing.T) {
	m, _, _ := newTestModel(t)
	if strings.Contains(m.View(), "Transport") {
		t.Fatalf("help shown before toggle")
	}
	m = press(m, runes("?"))
	out := m.View()
	if !strings.Contains(out, "Transport") || !strings.Contains(out, "Queued") {
		t.Fatalf("help missing:\n%s", out)
	}
}
