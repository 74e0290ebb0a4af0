// cmd/boardinfo/main.go
//
// Prints the capability report for the default platform backend and
// runs a short peripheral self-test: GPIO round-trip on pin 0 and a
// UART open/write/close cycle on port 0.
package main

import (
	"flag"
	"fmt"
	"os"

	"vmhal-go/errcode"
	"vmhal-go/hal"
	"vmhal-go/platform"
	"vmhal-go/simhal"
	"vmhal-go/types"
)

func main() {
	profilePath := flag.String("profile", "", "YAML board profile; forces the simulated backend")
	flag.Parse()

	cfg, err := buildConfig(*profilePath)
	if err != nil {
		fmt.Fprintln(os.Stderr, "boardinfo:", err)
		os.Exit(1)
	}
	h := hal.New(cfg)
	if err := h.Init(); err != nil {
		fmt.Fprintln(os.Stderr, "boardinfo: init:", err)
		os.Exit(1)
	}
	defer h.Deinit()

	fmt.Printf("backend: %s\n", h.Info())
	caps := h.Capabilities()
	fmt.Println("capabilities:")
	fmt.Printf("  gpio pins:  %d\n", caps.GPIOCount)
	fmt.Printf("  uart ports: %d\n", caps.UARTCount)
	fmt.Printf("  spi buses:  %d\n", caps.SPICount)
	fmt.Printf("  i2c buses:  %d\n", caps.I2CCount)
	fmt.Printf("  features:   %s\n", caps.Features)
	fmt.Println()

	fail := 0
	report("gpio round-trip", gpioSelfTest(h), &fail)
	report("uart open/write", uartSelfTest(h), &fail)

	if fail > 0 {
		fmt.Printf("\n%d check(s) failed\n", fail)
		os.Exit(1)
	}
	fmt.Println("\nall checks passed")
}

func buildConfig(profilePath string) (hal.Config, error) {
	if profilePath == "" {
		return platform.DefaultConfig()
	}
	data, err := os.ReadFile(profilePath)
	if err != nil {
		return hal.Config{}, err
	}
	prof, err := simhal.LoadProfile(data)
	if err != nil {
		return hal.Config{}, err
	}
	opts, err := prof.Options()
	if err != nil {
		return hal.Config{}, err
	}
	b, err := simhal.New(opts...)
	if err != nil {
		return hal.Config{}, err
	}
	return b.HALConfig(), nil
}

func report(name string, err error, fail *int) {
	switch {
	case err == nil:
		fmt.Printf("ok    %s\n", name)
	case errcode.Of(err) == errcode.NotSupported:
		fmt.Printf("skip  %-18s %v\n", name, err)
	default:
		fmt.Printf("FAIL  %-18s %v\n", name, err)
		*fail++
	}
}

func gpioSelfTest(h *hal.HAL) error {
	if h.Capabilities().GPIOCount == 0 {
		return errcode.NotSupported
	}
	if err := h.GPIOConfigure(0, types.ModeOutput); err != nil {
		return err
	}
	if err := h.GPIOWrite(0, types.High); err != nil {
		return err
	}
	v, err := h.GPIORead(0)
	if err != nil {
		return err
	}
	if v != types.High {
		return &errcode.E{C: errcode.IOError, Op: "selftest.gpio", Msg: "read back Low after writing High"}
	}
	return h.GPIOWrite(0, types.Low)
}

func uartSelfTest(h *hal.HAL) error {
	if h.Capabilities().UARTCount == 0 {
		return errcode.NotSupported
	}
	port, err := h.OpenPort(0, types.DefaultUARTConfig())
	if err != nil {
		return err
	}
	defer port.Close()
	n, err := port.Write([]byte("boardinfo self-test\r\n"))
	if err != nil {
		return err
	}
	if n == 0 {
		return &errcode.E{C: errcode.IOError, Op: "selftest.uart", Msg: "wrote 0 bytes"}
	}
	return nil
}
