// Package simhal is the software-simulated backend ("mock hardware"): a
// deterministic, fully stateful implementation of the GPIO, UART, timer
// and critical-section contracts, usable without real silicon.
//
// Buffers are bounded FIFOs that fail busy instead of dropping or
// growing, uninitialized resources fail not_initialized, and the clock
// only moves when a delay or the control surface advances it, so tests
// are reproducible byte for byte.
package simhal

import (
	"sync"

	"vmhal-go/errcode"
	"vmhal-go/hal"
	"vmhal-go/types"
	"vmhal-go/x/bytering"
)

// Defaults mirror a small MCU-class part.
const (
	DefaultGPIOCount  = 32
	DefaultUARTCount  = 4
	DefaultBufferSize = 256
)

type pinState struct {
	initialized bool
	mode        types.GPIOMode
	value       types.GPIOValue
}

type portState struct {
	initialized bool
	baudrate    int
	tx          *bytering.Ring
	rx          *bytering.Ring
}

// Backend holds all simulated hardware state.
type Backend struct {
	mu sync.Mutex // guards pins, ports, clock and console

	pins  []pinState
	ports []portState

	millis uint32
	micros uint64

	consoleIn  *bytering.Ring
	consoleOut []byte

	// The critical section is a distinct lock: the dispatch layer holds
	// it across toggle while the bracketed read and write take mu.
	crit sync.Mutex

	bufSize int
	caps    types.Capabilities
}

var (
	_ hal.GPIOBackend     = (*Backend)(nil)
	_ hal.UARTBackend     = uartView{}
	_ hal.TimerBackend    = (*Backend)(nil)
	_ hal.CriticalSection = (*Backend)(nil)
	_ hal.ConsoleBackend  = (*Backend)(nil)
	_ hal.Resetter        = (*Backend)(nil)
)

// New builds a simulated backend. Without options it models 32 GPIO
// pins, 4 UART ports and 256-byte TX/RX buffers.
func New(opts ...Option) (*Backend, error) {
	cfg := builder{
		gpioCount: DefaultGPIOCount,
		uartCount: DefaultUARTCount,
		bufSize:   DefaultBufferSize,
	}
	for _, o := range opts {
		o.applyOption(&cfg)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}

	b := &Backend{
		pins:      make([]pinState, cfg.gpioCount),
		ports:     make([]portState, cfg.uartCount),
		consoleIn: bytering.New(cfg.bufSize),
		bufSize:   cfg.bufSize,
		caps: types.Capabilities{
			GPIOCount: uint8(cfg.gpioCount),
			UARTCount: uint8(cfg.uartCount),
			Features:  cfg.features,
		},
	}
	for i := range b.ports {
		b.ports[i].tx = bytering.New(cfg.bufSize)
		b.ports[i].rx = bytering.New(cfg.bufSize)
	}
	return b, nil
}

// Capabilities returns the simulated board's static descriptor.
func (b *Backend) Capabilities() types.Capabilities { return b.caps }

// UART returns the backend's UART contract. GPIO and UART share the
// Write/Read method names, so the UART side lives on a view type.
func (b *Backend) UART() hal.UARTBackend { return uartView{b} }

// HALConfig assembles the backend into a dispatch-layer configuration.
func (b *Backend) HALConfig() hal.Config {
	return hal.Config{
		GPIO:         b,
		UART:         b.UART(),
		Timer:        b,
		Critical:     b,
		Console:      b,
		Capabilities: b.caps,
		Info:         "Simulated HAL v1.0",
	}
}

// -----------------------------------------------------------------------------
// GPIO
// -----------------------------------------------------------------------------

func (b *Backend) Configure(pin int, mode types.GPIOMode) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if pin < 0 || pin >= len(b.pins) {
		return errcode.OutOfBounds
	}
	if !mode.Valid() {
		return errcode.InvalidArg
	}
	b.pins[pin] = pinState{initialized: true, mode: mode, value: types.Low}
	return nil
}

func (b *Backend) Write(pin int, value types.GPIOValue) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if pin < 0 || pin >= len(b.pins) {
		return errcode.OutOfBounds
	}
	p := &b.pins[pin]
	if !p.initialized {
		return errcode.NotInitialized
	}
	if !p.mode.IsOutput() {
		return errcode.InvalidArg
	}
	p.value = value
	return nil
}

func (b *Backend) Read(pin int) (types.GPIOValue, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if pin < 0 || pin >= len(b.pins) {
		return types.Low, errcode.OutOfBounds
	}
	p := &b.pins[pin]
	if !p.initialized {
		return types.Low, errcode.NotInitialized
	}
	return p.value, nil
}

// -----------------------------------------------------------------------------
// UART
// -----------------------------------------------------------------------------

func (b *Backend) port(port int) (*portState, error) {
	if port < 0 || port >= len(b.ports) {
		return nil, errcode.OutOfBounds
	}
	return &b.ports[port], nil
}

// uartView carries the UART contract over the shared backend state.
type uartView struct{ b *Backend }

func (v uartView) Open(port int, cfg types.UARTConfig) error {
	b := v.b
	b.mu.Lock()
	defer b.mu.Unlock()
	p, err := b.port(port)
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	p.initialized = true
	p.baudrate = cfg.Baudrate
	p.tx.Reset()
	p.rx.Reset()
	return nil
}

// Close marks the port torn down. Buffer contents are kept so the
// control surface can still read back what was transmitted.
func (v uartView) Close(port int) error {
	b := v.b
	b.mu.Lock()
	defer b.mu.Unlock()
	p, err := b.port(port)
	if err != nil {
		return err
	}
	if !p.initialized {
		return errcode.InvalidArg
	}
	p.initialized = false
	return nil
}

func (v uartView) Write(port int, data []byte) (int, error) {
	b := v.b
	b.mu.Lock()
	defer b.mu.Unlock()
	p, err := b.port(port)
	if err != nil {
		return 0, err
	}
	if !p.initialized {
		return 0, errcode.NotInitialized
	}
	n := p.tx.Write(data)
	if n < len(data) {
		return n, errcode.Busy
	}
	return n, nil
}

func (v uartView) Read(port int, data []byte) (int, error) {
	b := v.b
	b.mu.Lock()
	defer b.mu.Unlock()
	p, err := b.port(port)
	if err != nil {
		return 0, err
	}
	if !p.initialized {
		return 0, errcode.NotInitialized
	}
	return p.rx.Read(data), nil
}

func (v uartView) Buffered(port int) (int, error) {
	b := v.b
	b.mu.Lock()
	defer b.mu.Unlock()
	p, err := b.port(port)
	if err != nil {
		return 0, err
	}
	if !p.initialized {
		return 0, errcode.NotInitialized
	}
	return p.rx.Len(), nil
}

// -----------------------------------------------------------------------------
// Timer
// -----------------------------------------------------------------------------

func (b *Backend) Millis() uint32 {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.millis
}

func (b *Backend) Micros() uint64 {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.micros
}

// DelayMS advances the clock by exactly ms; it never sleeps.
func (b *Backend) DelayMS(ms uint32) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.millis += ms
	b.micros += uint64(ms) * 1000
}

// DelayUS advances the clock by exactly us. Sub-millisecond remainders
// truncate on the millisecond counter, as the microsecond counter is the
// source of truth at this resolution.
func (b *Backend) DelayUS(us uint32) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.micros += uint64(us)
	b.millis += us / 1000
}

// -----------------------------------------------------------------------------
// Critical section
// -----------------------------------------------------------------------------

func (b *Backend) Enter() { b.crit.Lock() }
func (b *Backend) Exit()  { b.crit.Unlock() }

// -----------------------------------------------------------------------------
// Console
// -----------------------------------------------------------------------------

func (b *Backend) ConsoleWrite(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.consoleOut = append(b.consoleOut, p...)
	return len(p), nil
}

// ConsoleRead pops injected console input; empty input reads as (0, nil).
func (b *Backend) ConsoleRead(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.consoleIn.Read(p), nil
}

// -----------------------------------------------------------------------------
// Reset
// -----------------------------------------------------------------------------

// ResetState returns every pin, port, the clock and the console to
// power-on defaults.
func (b *Backend) ResetState() {
	b.mu.Lock()
	defer b.mu.Unlock()
	for i := range b.pins {
		b.pins[i] = pinState{}
	}
	for i := range b.ports {
		b.ports[i].initialized = false
		b.ports[i].baudrate = 0
		b.ports[i].tx.Reset()
		b.ports[i].rx.Reset()
	}
	b.millis = 0
	b.micros = 0
	b.consoleIn.Reset()
	b.consoleOut = nil
}
