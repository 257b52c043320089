// Command go-padlaunch is a bar-quantized clip launcher driven by a Launchpad,
// MIDI keyboards and a terminal UI.
//
// Usage:
//
//	go-padlaunch run <project.yaml>    launch clips
//	go-padlaunch check <project.yaml>  validate a project and decode its media
//	go-padlaunch ports                 list MIDI ports
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"go-padlaunch/config"
	"go-padlaunch/debug"
)

var (
	debugFlag  bool
	configFlag string
)

var rootCmd = &cobra.Command{
	Use:           "go-padlaunch",
	Short:         "Bar-quantized clip launcher",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if !debugFlag {
			return nil
		}
		if err := debug.Enable(); err != nil {
			return fmt.Errorf("enable debug log: %w", err)
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		debug.Disable()
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVar(&debugFlag, "debug", false, "write a debug log to ~/.config/go-padlaunch/debug.log")
	rootCmd.PersistentFlags().StringVar(&configFlag, "config", "", "config file (default ~/.config/go-padlaunch/config.yaml)")
	rootCmd.AddCommand(runCmd, checkCmd, portsCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

// loadConfig reads --config or the default config file
func loadConfig() (*config.Config, error) {
	if configFlag != "" {
		return config.LoadFrom(configFlag)
	}
	return config.Load()
}

func saveConfig(cfg *config.Config) error {
	if configFlag != "" {
		return cfg.SaveTo(configFlag)
	}
	return cfg.Save()
}
