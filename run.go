package main

import (
	"context"
	"fmt"
	"path/filepath"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"go-padlaunch/audio"
	"go-padlaunch/audio/device"
	"go-padlaunch/clip"
	"go-padlaunch/clock"
	"go-padlaunch/debug"
	"go-padlaunch/media"
	"go-padlaunch/midi"
	"go-padlaunch/scheduler"
	"go-padlaunch/session"
	"go-padlaunch/store"
	"go-padlaunch/theme"
	"go-padlaunch/tui"
)

var (
	tempoFlag     int
	lastTempoFlag bool
	noAudioFlag   bool
	pausedFlag    bool
)

var runCmd = &cobra.Command{
	Use:   "run <project.yaml>",
	Short: "Load a project and launch clips",
	Long: `Load a project, open the sound device and start the terminal UI.

The beat clock starts running at launch (use --paused to start it stopped;
p toggles it). Launchpads are picked up automatically when plugged in. Keyboards are
connected when their port is listed in the config with type "keyboard".`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runProject(args[0])
	},
}

func init() {
	runCmd.Flags().IntVar(&tempoFlag, "bpm", 0, "override the project tempo")
	runCmd.Flags().BoolVar(&lastTempoFlag, "last-tempo", false, "start at the tempo of the previous session")
	runCmd.Flags().BoolVar(&noAudioFlag, "no-audio", false, "do not open the sound device")
	runCmd.Flags().BoolVar(&pausedFlag, "paused", false, "start with the beat clock stopped")
}

func runProject(path string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	project, err := clip.LoadProject(path)
	if err != nil {
		return err
	}
	th, err := theme.Load(cfg.UI.Palette)
	if err != nil {
		return err
	}

	bpm := project.BPM
	switch {
	case tempoFlag > 0:
		bpm = tempoFlag
	case lastTempoFlag && cfg.UI.LastTempo > 0:
		bpm = cfg.UI.LastTempo
	}
	st := store.New(project.Registry, store.Settings{BPM: bpm, BeatsPerBar: project.BeatsPerBar})
	clk := clock.New(float64(st.Settings().BPM), project.BeatsPerBar)

	rate := cfg.Audio.SampleRate
	graph := audio.NewGraph(rate)
	for _, t := range project.Tracks {
		graph.AddTrack(t.Name, t.Gain)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	loader := media.NewLoader(project.MediaDir, rate)
	loader.Preload(ctx, project.Registry.Files())

	sched := scheduler.New(st, loader, graph, clk, scheduler.Options{
		MaxPendingBars: cfg.Scheduler.MaxPendingBars,
	})

	if !noAudioFlag {
		out, err := device.Open(rate, graph)
		if err != nil {
			return fmt.Errorf("open sound device: %w", err)
		}
		defer out.Close()
		out.Play()
	}

	manager := startSession(sched, clk, session.ColorsFromTheme(th), pausedFlag)
	defer manager.Close()

	deviceMgr := midi.NewDeviceManager(cfg.KeyboardPorts()...)
	go deviceMgr.Run(ctx)

	debug.Log("main", "project %s: %d clips, %d pads, %d bpm",
		path, len(project.Registry.Clips()), len(project.Registry.Pads()), bpm)

	m := tui.NewModel(filepath.Base(path), manager, deviceMgr, th)
	m.Media = loader
	m.KeyboardBase = cfg.KeyboardBaseNote

	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithMouseCellMotion())
	if _, err := p.Run(); err != nil {
		return err
	}

	cfg.UI.LastTempo = st.Settings().BPM
	if err := saveConfig(cfg); err != nil {
		return fmt.Errorf("save config: %w", err)
	}
	return nil
}

// startSession starts the session runtime and, unless paused, the beat clock
func startSession(sched *scheduler.Scheduler, clk session.Transport, colors session.Colors, paused bool) *session.Manager {
	manager := session.NewManager(sched, clk, colors)
	manager.StartRuntime()
	if !paused {
		manager.Play()
	}
	return manager
}
