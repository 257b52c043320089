package clip

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"
)

const sampleProject = `
bpm: 128
media_dir: media
tracks:
  - name: drums
    gain: 0.8
clips:
  - id: k1
    name: Kick loop
    file: kick.wav
    loop: true
    track: drums
  - id: k2
    file: bass.wav
    behavior: single
    gain: 0.5
  - id: v1
    kind: video
    file: intro.mp4
    length: 2.5
pads:
  - id: main
    cells:
      - [k1, "", v1]
      - [k2, "", ""]
`

func TestParseProjectDefaults(t *testing.T) {
	p, err := ParseProject([]byte(sampleProject), "/show")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if p.BPM != 128 || p.BeatsPerBar != DefaultBeatsPerBar {
		t.Fatalf("bpm/meter = %d/%d", p.BPM, p.BeatsPerBar)
	}
	if p.MediaDir != filepath.Join("/show", "media") {
		t.Fatalf("media dir = %q", p.MediaDir)
	}
	if len(p.Tracks) != 1 || p.Tracks[0].Gain != 0.8 {
		t.Fatalf("tracks = %+v", p.Tracks)
	}

	k1, ok := p.Registry.Clip("k1")
	if !ok {
		t.Fatalf("k1 missing")
	}
	if k1.Behavior != BehaviorSchedulable || k1.Kind != KindAudio || k1.Gain != 1 || !k1.Loop {
		t.Fatalf("k1 = %+v", k1)
	}
	if !k1.Quantized() {
		t.Fatalf("schedulable audio clip should be quantized")
	}
	if k1.Label() != "Kick loop" {
		t.Fatalf("label = %q", k1.Label())
	}

	k2, _ := p.Registry.Clip("k2")
	if k2.Track != MasterTrack || k2.Gain != 0.5 || k2.Quantized() {
		t.Fatalf("k2 = %+v", k2)
	}

	v1, _ := p.Registry.Clip("v1")
	if !v1.IsVideo() || v1.Length != 2500*time.Millisecond || v1.Quantized() {
		t.Fatalf("v1 = %+v", v1)
	}
}

func TestParseProjectRejectsInvalid(t *testing.T) {
	cases := []struct {
		name string
		doc  string
	}{
		{"unknown kind", "clips:\n  - {id: a, file: a.wav, kind: midi}\n"},
		{"unknown behavior", "clips:\n  - {id: a, file: a.wav, behavior: toggle}\n"},
		{"duplicate clip", "clips:\n  - {id: a, file: a.wav}\n  - {id: a, file: b.wav}\n"},
		{"missing file", "clips:\n  - {id: a}\n"},
		{"unknown cell", "clips:\n  - {id: a, file: a.wav}\npads:\n  - cells: [[a, b]]\n"},
		{"duplicate track", "tracks:\n  - {name: x}\n  - {name: x}\n"},
		{"bad yaml", "clips: [\n"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := ParseProject([]byte(tc.doc), "/")
			if !errors.Is(err, ErrInvalidProject) {
				t.Fatalf("err = %v, want ErrInvalidProject", err)
			}
		})
	}
}

func TestUnknownCellWrapsErrUnknownClip(t *testing.T) {
	_, err := ParseProject([]byte("clips:\n  - {id: a, file: a.wav}\npads:\n  - cells: [[a, ghost]]\n"), "/")
	if !errors.Is(err, ErrUnknownClip) {
		t.Fatalf("err = %v, want ErrUnknownClip", err)
	}
}

func TestRegistryPositionAndGeometry(t *testing.T) {
	p, err := ParseProject([]byte(sampleProject), "/")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	reg := p.Registry

	pos, ok := reg.Position("k2")
	if !ok || pos.Row != 1 || pos.Col != 0 || pos.Pad.ID != "main" {
		t.Fatalf("position k2 = %+v ok=%v", pos, ok)
	}
	if _, ok := reg.Position("nope"); ok {
		t.Fatalf("unexpected position for unknown clip")
	}

	pad := reg.PadAt(0)
	if pad.Rows() != 2 || pad.Cols() != 3 {
		t.Fatalf("pad geometry %dx%d", pad.Rows(), pad.Cols())
	}
	if pad.Cell(0, 2) != "v1" || pad.Cell(5, 5) != "" {
		t.Fatalf("cell lookup wrong")
	}
	if row := pad.Row(1); len(row) != 3 || row[0] != "k2" || row[2] != "" {
		t.Fatalf("row = %v", row)
	}
	if reg.PadAt(3) != nil {
		t.Fatalf("PadAt out of range should be nil")
	}

	files := reg.Files()
	if len(files) != 3 || files[0] != "kick.wav" {
		t.Fatalf("files = %v", files)
	}
}

func TestRegistryPositionsAcrossPads(t *testing.T) {
	clips := []Clip{{ID: "a", File: "a.wav"}, {ID: "b", File: "b.wav"}}
	pads := []Pad{
		{ID: "one", Cells: [][]string{{"a", ""}, {"b", "a"}}},
		{ID: "two", Cells: [][]string{{"", "a"}}},
	}
	reg, err := NewRegistry(clips, pads)
	if err != nil {
		t.Fatalf("registry: %v", err)
	}
	got := reg.Positions("a")
	want := []struct {
		pad      string
		row, col int
	}{{"one", 0, 0}, {"one", 1, 1}, {"two", 0, 1}}
	if len(got) != len(want) {
		t.Fatalf("positions = %+v", got)
	}
	for i, w := range want {
		if got[i].Pad.ID != w.pad || got[i].Row != w.row || got[i].Col != w.col {
			t.Fatalf("position %d = %s/%d,%d, want %s/%d,%d", i, got[i].Pad.ID, got[i].Row, got[i].Col, w.pad, w.row, w.col)
		}
	}
	if len(reg.Positions("missing")) != 0 {
		t.Fatalf("unknown clip has positions")
	}
}

func TestRegistryNamesUnnamedPads(t *testing.T) {
	reg, err := NewRegistry([]Clip{{ID: "a", File: "a.wav"}}, []Pad{{Cells: [][]string{{"a"}}}})
	if err != nil {
		t.Fatalf("registry: %v", err)
	}
	if _, ok := reg.Pad("pad1"); !ok {
		t.Fatalf("expected generated pad id pad1")
	}
}

func TestLoadProjectFromDisk(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "show.yaml")
	if err := os.WriteFile(path, []byte(sampleProject), 0644); err != nil {
		t.Fatalf("write: %v", err)
	}
	p, err := LoadProject(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if p.MediaDir != filepath.Join(dir, "media") {
		t.Fatalf("media dir = %q", p.MediaDir)
	}
	if _, err := LoadProject(filepath.Join(dir, "missing.yaml")); err == nil {
		t.Fatalf("expected error for missing file")
	}
}
