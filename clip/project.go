package clip

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/goccy/go-yaml"
)

// DefaultBPM is used when a project file does not set a tempo
const DefaultBPM = 120

// DefaultBeatsPerBar is used when a project file does not set a meter
const DefaultBeatsPerBar = 4

// TrackConfig declares an output track (mixing node)
type TrackConfig struct {
	Name string
	Gain float64
}

// Project is a loaded project file: settings, tracks and the clip registry
type Project struct {
	Path        string
	BPM         int
	BeatsPerBar int
	MediaDir    string // absolute
	Tracks      []TrackConfig
	Registry    *Registry
}

type projectFile struct {
	BPM         int          `yaml:"bpm,omitempty"`
	BeatsPerBar int          `yaml:"beats_per_bar,omitempty"`
	MediaDir    string       `yaml:"media_dir,omitempty"`
	Tracks      []trackEntry `yaml:"tracks,omitempty"`
	Clips       []clipEntry  `yaml:"clips"`
	Pads        []padEntry   `yaml:"pads"`
}

type trackEntry struct {
	Name string   `yaml:"name"`
	Gain *float64 `yaml:"gain,omitempty"`
}

type clipEntry struct {
	ID       string   `yaml:"id"`
	Name     string   `yaml:"name,omitempty"`
	Kind     string   `yaml:"kind,omitempty"`
	File     string   `yaml:"file"`
	Behavior string   `yaml:"behavior,omitempty"`
	Loop     bool     `yaml:"loop,omitempty"`
	Gain     *float64 `yaml:"gain,omitempty"`
	Track    string   `yaml:"track,omitempty"`
	Length   float64  `yaml:"length,omitempty"` // seconds
}

type padEntry struct {
	ID    string     `yaml:"id,omitempty"`
	Name  string     `yaml:"name,omitempty"`
	Cells [][]string `yaml:"cells"`
}

// LoadProject reads and validates a YAML project file
func LoadProject(path string) (*Project, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read project: %w", err)
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		abs = path
	}
	p, err := ParseProject(data, filepath.Dir(abs))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	p.Path = abs
	return p, nil
}

// ParseProject decodes a project document. Relative media_dir values resolve against baseDir.
func ParseProject(data []byte, baseDir string) (*Project, error) {
	var pf projectFile
	if err := yaml.Unmarshal(data, &pf); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidProject, err)
	}

	p := &Project{
		BPM:         pf.BPM,
		BeatsPerBar: pf.BeatsPerBar,
		MediaDir:    pf.MediaDir,
	}
	if p.BPM == 0 {
		p.BPM = DefaultBPM
	}
	if p.BeatsPerBar <= 0 {
		p.BeatsPerBar = DefaultBeatsPerBar
	}
	if !filepath.IsAbs(p.MediaDir) {
		p.MediaDir = filepath.Join(baseDir, p.MediaDir)
	}

	seenTracks := make(map[string]bool)
	for _, t := range pf.Tracks {
		if t.Name == "" {
			return nil, fmt.Errorf("%w: track without name", ErrInvalidProject)
		}
		if seenTracks[t.Name] {
			return nil, fmt.Errorf("%w: duplicate track %q", ErrInvalidProject, t.Name)
		}
		seenTracks[t.Name] = true
		p.Tracks = append(p.Tracks, TrackConfig{Name: t.Name, Gain: gainOr(t.Gain, 1)})
	}

	clips := make([]Clip, 0, len(pf.Clips))
	for _, e := range pf.Clips {
		kind, err := parseKind(e.Kind)
		if err != nil {
			return nil, fmt.Errorf("%w: clip %q: %w", ErrInvalidProject, e.ID, err)
		}
		behavior, err := parseBehavior(e.Behavior)
		if err != nil {
			return nil, fmt.Errorf("%w: clip %q: %w", ErrInvalidProject, e.ID, err)
		}
		if e.Length < 0 {
			return nil, fmt.Errorf("%w: clip %q: negative length", ErrInvalidProject, e.ID)
		}
		track := e.Track
		if track == "" {
			track = MasterTrack
		}
		clips = append(clips, Clip{
			ID:       e.ID,
			Name:     e.Name,
			Kind:     kind,
			File:     e.File,
			Behavior: behavior,
			Loop:     e.Loop,
			Gain:     gainOr(e.Gain, 1),
			Track:    track,
			Length:   time.Duration(e.Length * float64(time.Second)),
		})
	}

	pads := make([]Pad, 0, len(pf.Pads))
	for _, e := range pf.Pads {
		pads = append(pads, Pad{ID: e.ID, Name: e.Name, Cells: e.Cells})
	}

	reg, err := NewRegistry(clips, pads)
	if err != nil {
		return nil, err
	}
	p.Registry = reg
	return p, nil
}

func gainOr(g *float64, def float64) float64 {
	if g == nil {
		return def
	}
	if *g < 0 {
		return 0
	}
	return *g
}
