package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"go-padlaunch/midi"
)

var portsCmd = &cobra.Command{
	Use:   "ports",
	Short: "List MIDI ports",
	Long: `List MIDI input and output ports. Use an input name as the "port" of a
keyboard controller in the config.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ports, ok := midi.ListPorts(3 * time.Second)
		if !ok {
			return fmt.Errorf("MIDI driver did not answer (on macOS: sudo killall coreaudiod midiserver)")
		}
		fmt.Println("Inputs:")
		for i, p := range ports.In {
			mark := ""
			if midi.IsLaunchpad(p.String()) {
				mark = "  (launchpad)"
			}
			fmt.Printf("  %d: %s%s\n", i, p.String(), mark)
		}
		fmt.Println("Outputs:")
		for i, p := range ports.Out {
			fmt.Printf("  %d: %s\n", i, p.String())
		}
		return nil
	},
}
