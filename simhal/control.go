package simhal

import (
	"vmhal-go/errcode"
	"vmhal-go/types"
)

// Test control surface. These entry points exist only on the simulated
// backend and are used by test suites to stand in for the outside world
// (an external transmitter, the passage of time, a probe on a pin). They
// are not part of the runtime contract.

// Reset returns the whole board to power-on state.
func (b *Backend) Reset() { b.ResetState() }

// SetMillis pins the millisecond counter to an exact value.
func (b *Backend) SetMillis(ms uint32) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.millis = ms
}

// SetMicros pins the microsecond counter to an exact value.
func (b *Backend) SetMicros(us uint64) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.micros = us
}

// InjectRX appends bytes to a port's receive buffer, as an external
// transmitter would. Injection works whether or not the port is open;
// bytes beyond the buffer capacity are refused with busy.
func (b *Backend) InjectRX(port int, data []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	p, err := b.port(port)
	if err != nil {
		return 0, err
	}
	n := p.rx.Write(data)
	if n < len(data) {
		return n, errcode.Busy
	}
	return n, nil
}

// TXBytes returns a copy of everything currently in a port's transmit
// buffer, oldest first, without consuming it.
func (b *Backend) TXBytes(port int) ([]byte, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	p, err := b.port(port)
	if err != nil {
		return nil, err
	}
	return p.tx.Bytes(), nil
}

// DrainTX pops and returns everything in a port's transmit buffer,
// making room for further writes.
func (b *Backend) DrainTX(port int) ([]byte, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	p, err := b.port(port)
	if err != nil {
		return nil, err
	}
	out := make([]byte, p.tx.Len())
	p.tx.Read(out)
	return out, nil
}

// PinValue reads a pin level directly, bypassing mode checks.
func (b *Backend) PinValue(pin int) (types.GPIOValue, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if pin < 0 || pin >= len(b.pins) {
		return types.Low, errcode.OutOfBounds
	}
	return b.pins[pin].value, nil
}

// PinMode reads a pin's configured mode directly.
func (b *Backend) PinMode(pin int) (types.GPIOMode, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if pin < 0 || pin >= len(b.pins) {
		return types.ModeInput, errcode.OutOfBounds
	}
	return b.pins[pin].mode, nil
}

// ConsoleOutput returns a copy of everything written to the console.
func (b *Backend) ConsoleOutput() []byte {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]byte(nil), b.consoleOut...)
}

// InjectConsole queues bytes for ConsoleRead and reports how many fit.
func (b *Backend) InjectConsole(data []byte) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.consoleIn.Write(data)
}
