package main

import (
	"fmt"

	"github.com/spf13/cobra"
	gomidi "gitlab.com/gomidi/midi/v2"

	"nonomi/midi"
)

// midiPortsNone is the empty scan used when MIDI is not needed
var midiPortsNone midi.Ports

func runPorts(cmd *cobra.Command, args []string) error {
	ports, err := midi.Scan(midi.PortTimeout)
	if err != nil {
		return err
	}
	defer gomidi.CloseDriver()

	fmt.Println("Inputs:")
	printNames(ports.InNames())
	fmt.Println("Outputs:")
	printNames(ports.OutNames())
	return nil
}

func printNames(names []string) {
	if len(names) == 0 {
		fmt.Println("  (none)")
		return
	}
	for i, n := range names {
		fmt.Printf("  %d: %s\n", i, n)
	}
}
