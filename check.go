package main

import (
	"context"
	"fmt"
	"os"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"go-padlaunch/clip"
	"go-padlaunch/media"
)

var checkCmd = &cobra.Command{
	Use:   "check <project.yaml>",
	Short: "Validate a project and decode its media",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		project, err := clip.LoadProject(args[0])
		if err != nil {
			return err
		}
		reg := project.Registry

		fmt.Printf("%s: %d bpm, %d/4, media in %s\n", args[0], project.BPM, project.BeatsPerBar, project.MediaDir)
		for _, pad := range reg.Pads() {
			printPad(pad)
		}

		loader := media.NewLoader(project.MediaDir, cfg.Audio.SampleRate)
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
		defer cancel()
		loadErr := loader.Load(ctx, reg.Files())

		w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "\nCLIP\tKIND\tBEHAVIOR\tFILE\tSTATUS")
		for _, c := range reg.Clips() {
			status, err := loader.Status(c.File)
			line := status.String()
			if err != nil {
				line += ": " + err.Error()
			}
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n", c.ID, c.Kind, c.Behavior, c.File, line)
		}
		w.Flush()

		if loadErr != nil {
			return fmt.Errorf("media: %w", loadErr)
		}
		return nil
	},
}

func printPad(pad *clip.Pad) {
	fmt.Printf("\n[%s]\n", pad.Label())
	for row := 0; row < pad.Rows(); row++ {
		cells := make([]string, pad.Cols())
		for col := range cells {
			id := pad.Cell(row, col)
			if id == "" {
				id = "."
			}
			cells[col] = fmt.Sprintf("%-10s", id)
		}
		fmt.Println("  " + strings.TrimRight(strings.Join(cells, " "), " "))
	}
}
