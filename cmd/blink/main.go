// cmd/blink/main.go
//
// LED blink demo on the simulated board: configures a pin as output,
// toggles it on a fixed interval, and shows the deterministic clock
// advancing. An optional YAML board profile changes the simulated part.
package main

import (
	"flag"
	"fmt"
	"os"

	"vmhal-go/hal"
	"vmhal-go/simhal"
	"vmhal-go/types"
)

const (
	ledPin          = 13
	blinkIntervalMS = 1000
	blinkCount      = 10
)

func main() {
	profilePath := flag.String("profile", "", "YAML board profile for the simulated part")
	flag.Parse()

	board, err := buildBoard(*profilePath)
	if err != nil {
		fmt.Fprintln(os.Stderr, "blink:", err)
		os.Exit(1)
	}
	h := hal.New(board.HALConfig())

	if err := h.Init(); err != nil {
		fmt.Fprintln(os.Stderr, "blink: init:", err)
		os.Exit(1)
	}
	defer h.Deinit()

	caps := h.Capabilities()
	fmt.Printf("board: %d gpio, %d uart, features %s\n\n", caps.GPIOCount, caps.UARTCount, caps.Features)

	if err := h.GPIOConfigure(ledPin, types.ModeOutput); err != nil {
		fmt.Fprintf(os.Stderr, "blink: configure pin %d: %v\n", ledPin, err)
		os.Exit(1)
	}

	for i := 0; i < blinkCount; i++ {
		if err := h.GPIOToggle(ledPin); err != nil {
			fmt.Fprintf(os.Stderr, "blink: toggle pin %d: %v\n", ledPin, err)
			os.Exit(1)
		}
		v, _ := h.GPIORead(ledPin)
		state := "OFF"
		if v == types.High {
			state = "ON "
		}
		fmt.Printf("[%6d ms] LED %s\n", h.Millis(), state)
		h.DelayMS(blinkIntervalMS)
	}

	fmt.Println("\nblink complete")
}

func buildBoard(profilePath string) (*simhal.Backend, error) {
	if profilePath == "" {
		return simhal.New()
	}
	data, err := os.ReadFile(profilePath)
	if err != nil {
		return nil, err
	}
	prof, err := simhal.LoadProfile(data)
	if err != nil {
		return nil, err
	}
	opts, err := prof.Options()
	if err != nil {
		return nil, err
	}
	return simhal.New(opts...)
}
