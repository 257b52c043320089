// Command miditest exercises MIDI hardware without starting the launcher.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"time"

	"gitlab.com/gomidi/midi/v2/drivers"

	"go-padlaunch/midi"
	"go-padlaunch/session"
	"go-padlaunch/store"
)

func main() {
	if len(os.Args) < 2 {
		usage()
		return
	}

	var err error
	switch os.Args[1] {
	case "list":
		err = listPorts()
	case "detect":
		err = detectLaunchpad()
	case "leds":
		err = testLEDs()
	case "pads":
		err = watchPads()
	case "poll":
		pollDevices(os.Args[2:])
	default:
		usage()
	}
	if err != nil {
		fmt.Println("Error:", err)
		os.Exit(1)
	}
}

func usage() {
	fmt.Println("MIDI Test Scripts")
	fmt.Println("")
	fmt.Println("Commands:")
	fmt.Println("  list           - List all MIDI ports")
	fmt.Println("  detect         - Find Launchpad X")
	fmt.Println("  leds           - Show clip state colors on the Launchpad")
	fmt.Println("  pads           - Print Launchpad presses")
	fmt.Println("  poll [kbd...]  - Watch controllers connect and disconnect")
}

func ports() (midi.Ports, error) {
	fmt.Println("(waiting up to 3 seconds...)")
	p, ok := midi.ListPorts(3 * time.Second)
	if !ok {
		return p, fmt.Errorf("TIMEOUT! CoreMIDI is hung. Fix: sudo killall coreaudiod midiserver")
	}
	return p, nil
}

func listPorts() error {
	p, err := ports()
	if err != nil {
		return err
	}
	fmt.Println("=== MIDI Input Ports ===")
	for i, in := range p.In {
		fmt.Printf("  %d: %s\n", i, in.String())
	}
	fmt.Println("\n=== MIDI Output Ports ===")
	for i, out := range p.Out {
		fmt.Printf("  %d: %s\n", i, out.String())
	}
	return nil
}

func findLaunchpad() (drivers.In, drivers.Out, error) {
	p, err := ports()
	if err != nil {
		return nil, nil, err
	}
	var in drivers.In
	var out drivers.Out
	for _, port := range p.In {
		if midi.IsLaunchpad(port.String()) {
			fmt.Printf("Found input: %s\n", port.String())
			in = port
			break
		}
	}
	for _, port := range p.Out {
		if midi.IsLaunchpad(port.String()) {
			fmt.Printf("Found output: %s\n", port.String())
			out = port
			break
		}
	}
	if in == nil || out == nil {
		return nil, nil, fmt.Errorf("Launchpad X not found")
	}
	return in, out, nil
}

func detectLaunchpad() error {
	fmt.Println("Looking for Launchpad X...")
	if _, _, err := findLaunchpad(); err != nil {
		return err
	}
	fmt.Println("\nLaunchpad X detected!")
	return nil
}

func openLaunchpad() (*midi.LaunchpadController, error) {
	in, out, err := findLaunchpad()
	if err != nil {
		return nil, err
	}
	return midi.NewLaunchpadController(in.String(), in, out)
}

// testLEDs lights one row per clip state, bottom row first
func testLEDs() error {
	lp, err := openLaunchpad()
	if err != nil {
		return err
	}
	defer lp.Close()

	colors := session.DefaultColors()
	states := []store.ClipState{store.StateIdle, store.StateScheduled, store.StatePlaying, store.StateStopping}
	for row, st := range states {
		color, channel := colors.State(st)
		var batch []midi.LEDUpdate
		for col := 0; col < midi.GridSize; col++ {
			batch = append(batch, midi.LEDUpdate{Row: row, Col: col, Color: color, Channel: channel})
		}
		batch = append(batch, midi.LEDUpdate{Row: row, Col: midi.SceneCol, Color: colors.Scene})
		if err := lp.SetLEDBatch(batch); err != nil {
			return err
		}
		fmt.Printf("row %d: %s (palette %d)\n", row, st, midi.MapRGBToLaunchpad(color))
		time.Sleep(100 * time.Millisecond)
	}

	fmt.Println("Press Enter to clear...")
	fmt.Scanln()
	if err := lp.ClearLEDs(); err != nil {
		return err
	}
	fmt.Println("Done!")
	return nil
}

func watchPads() error {
	lp, err := openLaunchpad()
	if err != nil {
		return err
	}
	defer lp.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	fmt.Println("Press pads. Ctrl+C to exit.")
	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-lp.PadEvents():
			if !ok {
				return nil
			}
			fmt.Printf("row=%d col=%d velocity=%d\n", ev.Row, ev.Col, ev.Velocity)
		}
	}
}

func pollDevices(keyboards []string) {
	fmt.Println("Polling for device changes...")
	fmt.Println("Connect/disconnect Launchpad to test. Ctrl+C to exit.")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	dm := midi.NewDeviceManager(keyboards...)
	go dm.Run(ctx)

	for ev := range dm.Events() {
		now := time.Now().Format("15:04:05")
		switch ev.Type {
		case midi.DeviceConnected:
			fmt.Printf("[%s] connected %s (%s)\n", now, ev.ID, ev.Controller.Type())
		case midi.DeviceDisconnected:
			fmt.Printf("[%s] disconnected %s\n", now, ev.ID)
		}
		fmt.Printf("  %d controller(s) connected\n", len(dm.Controllers()))
	}
}
