package hal

import "vmhal-go/types"

// -----------------------------------------------------------------------------
// Backend contracts
// -----------------------------------------------------------------------------
//
// A backend is one concrete implementation of these interfaces for one
// target (real silicon or simulated). Exactly one backend assembly is
// selected per build by the platform package; the dispatch layer never
// switches backends at runtime.
//
// The dispatch layer owns index bounds checks; backends own per-resource
// state checks (initialization, mode, buffer occupancy).

// GPIOBackend implements per-pin state for an already range-checked pin.
type GPIOBackend interface {
	Configure(pin int, mode types.GPIOMode) error
	Write(pin int, value types.GPIOValue) error
	Read(pin int) (types.GPIOValue, error)
}

// GPIOInterrupter is optionally implemented by backends with edge
// interrupt support. Backends without it make the IRQ surface report
// not_supported. Enable/Disable mask delivery of an attached handler
// without discarding its registration.
type GPIOInterrupter interface {
	AttachInterrupt(pin int, edge types.GPIOEdge, handler func(pin int)) error
	DetachInterrupt(pin int) error
	EnableInterrupt(pin int) error
	DisableInterrupt(pin int) error
}

// UARTBackend implements buffered per-port state. Ports are addressed by
// index; handle bookkeeping lives in the dispatch layer.
type UARTBackend interface {
	Open(port int, cfg types.UARTConfig) error
	Close(port int) error
	// Write enqueues as much of p as fits and returns the count; it
	// returns errcode.Busy alongside the count when the TX buffer fills
	// mid-write.
	Write(port int, p []byte) (int, error)
	// Read pops up to len(p) buffered RX bytes. An empty buffer is
	// (0, nil), not an error.
	Read(port int, p []byte) (int, error)
	// Buffered reports pending RX bytes without consuming them.
	Buffered(port int) (int, error)
}

// TimerBackend is a monotonic clock plus blocking delays. After a delay
// returns, elapsed time observed via Millis/Micros is >= the request.
type TimerBackend interface {
	Millis() uint32
	Micros() uint64
	DelayMS(ms uint32)
	DelayUS(us uint32)
}

// CriticalSection guards shared mutable state. Enter/Exit must pair; the
// dispatch layer holds it across GPIO toggle so the read and write halves
// cannot interleave with a concurrent write.
type CriticalSection interface {
	Enter()
	Exit()
}

// ConsoleBackend is the optional standard console (typically stdout or
// UART0 on real targets).
type ConsoleBackend interface {
	ConsoleWrite(p []byte) (int, error)
	ConsoleRead(p []byte) (int, error)
}

// Resetter is optionally implemented by backends whose state can be
// returned to power-on defaults (the simulated backend does).
type Resetter interface {
	ResetState()
}
