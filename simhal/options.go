package simhal

import (
	"vmhal-go/errcode"
	"vmhal-go/types"
)

type builder struct {
	gpioCount int
	uartCount int
	bufSize   int
	features  types.Features
}

func (b *builder) validate() error {
	if b.gpioCount < 0 || b.gpioCount > 255 {
		return &errcode.E{C: errcode.InvalidArg, Op: "simhal.New", Msg: "gpio count must fit 0..255"}
	}
	if b.uartCount < 0 || b.uartCount > 255 {
		return &errcode.E{C: errcode.InvalidArg, Op: "simhal.New", Msg: "uart count must fit 0..255"}
	}
	if b.bufSize < 2 || b.bufSize&(b.bufSize-1) != 0 {
		return &errcode.E{C: errcode.InvalidArg, Op: "simhal.New", Msg: "buffer size must be power of two >= 2"}
	}
	return nil
}

// Option configures a simulated backend at construction.
type Option interface {
	applyOption(*builder)
}

// GPIOCountOption sets the number of simulated pins.
type GPIOCountOption int

// WithGPIOCount returns an option setting the simulated pin count.
func WithGPIOCount(n int) GPIOCountOption { return GPIOCountOption(n) }

func (o GPIOCountOption) applyOption(b *builder) { b.gpioCount = int(o) }

// UARTCountOption sets the number of simulated ports.
type UARTCountOption int

// WithUARTCount returns an option setting the simulated port count.
func WithUARTCount(n int) UARTCountOption { return UARTCountOption(n) }

func (o UARTCountOption) applyOption(b *builder) { b.uartCount = int(o) }

// BufferSizeOption sets the TX/RX buffer capacity per port.
type BufferSizeOption int

// WithBufferSize returns an option setting the per-port buffer capacity
// (power of two, bytes).
func WithBufferSize(n int) BufferSizeOption { return BufferSizeOption(n) }

func (o BufferSizeOption) applyOption(b *builder) { b.bufSize = int(o) }

// FeaturesOption sets the advertised feature flags.
type FeaturesOption types.Features

// WithFeatures returns an option setting the capability feature bits the
// simulated board advertises.
func WithFeatures(f types.Features) FeaturesOption { return FeaturesOption(f) }

func (o FeaturesOption) applyOption(b *builder) { b.features = types.Features(o) }
