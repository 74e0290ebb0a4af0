//go:build !rp2040 && !rp2350

package platform

import (
	"vmhal-go/hal"
	"vmhal-go/simhal"
)

// DefaultConfig assembles the backend for host builds: the simulated
// board. Binaries targeting real hardware get their assembly from the
// tag-selected variants instead.
func DefaultConfig() (hal.Config, error) {
	b, err := simhal.New()
	if err != nil {
		return hal.Config{}, err
	}
	return b.HALConfig(), nil
}
