// Package hal is the peripheral dispatch core: it validates arguments,
// maps generic GPIO/UART/Timer/critical-section operations onto the
// backend bound at build time, and manages UART handle lifetime.
//
// Every operation returns its outcome synchronously. The core never
// retries and never logs; recovery policy belongs to the caller.
package hal

import (
	"vmhal-go/errcode"
	"vmhal-go/types"
)

// Hooks are optional platform lifecycle callbacks. Absent hooks default
// to no-ops.
type Hooks struct {
	Init   func() error
	Reset  func() error
	Deinit func()
}

// Config binds a backend assembly to a HAL instance. Nil fields are
// legal: the affected operations report not_supported and Capabilities
// stays at its zero value, so callers can always query before acting.
type Config struct {
	GPIO         GPIOBackend
	UART         UARTBackend
	Timer        TimerBackend
	Critical     CriticalSection
	Console      ConsoleBackend
	Capabilities types.Capabilities
	Hooks        Hooks
	// Info identifies the backend assembly for diagnostics, e.g.
	// "Simulated HAL v1.0".
	Info string
}

// HAL dispatches peripheral operations to one backend.
type HAL struct {
	cfg   Config
	ports []portSlot
}

// New builds a HAL over cfg. A zero Config yields a HAL that answers
// capability queries with all-zero counts and fails operations with
// not_supported.
func New(cfg Config) *HAL {
	return &HAL{
		cfg:   cfg,
		ports: make([]portSlot, cfg.Capabilities.UARTCount),
	}
}

// Capabilities returns the backend's static descriptor. It never fails.
func (h *HAL) Capabilities() types.Capabilities { return h.cfg.Capabilities }

// Info returns the backend's identification string, "unknown" when the
// assembly did not set one.
func (h *HAL) Info() string {
	if h.cfg.Info == "" {
		return "unknown"
	}
	return h.cfg.Info
}

// Init runs the platform init hook. Call before issuing operations on
// real targets; the simulated backend is usable without it.
func (h *HAL) Init() error {
	if h.cfg.Hooks.Init != nil {
		return h.cfg.Hooks.Init()
	}
	return nil
}

// Reset returns all peripherals to their initial state. Open handles are
// invalidated; the HAL remains usable without another Init.
func (h *HAL) Reset() error {
	if h.cfg.Hooks.Reset != nil {
		if err := h.cfg.Hooks.Reset(); err != nil {
			return err
		}
	}
	h.dropAllPorts()
	// One backend object commonly implements several contracts; reset
	// each distinct Resetter once.
	seen := make(map[Resetter]bool, 3)
	for _, b := range []any{h.cfg.GPIO, h.cfg.UART, h.cfg.Timer} {
		if r, ok := b.(Resetter); ok && !seen[r] {
			seen[r] = true
			r.ResetState()
		}
	}
	return nil
}

// Deinit releases HAL resources. Only Init may follow.
func (h *HAL) Deinit() {
	for port, slot := range h.ports {
		if slot.open {
			_ = h.cfg.UART.Close(port)
		}
	}
	h.dropAllPorts()
	if h.cfg.Hooks.Deinit != nil {
		h.cfg.Hooks.Deinit()
	}
}

func (h *HAL) dropAllPorts() {
	for i := range h.ports {
		if h.ports[i].open {
			h.ports[i].open = false
			h.ports[i].gen++
		}
	}
}

// checkPin applies the shared GPIO preconditions.
func (h *HAL) checkPin(pin int) error {
	if h.cfg.GPIO == nil {
		return errcode.NotSupported
	}
	if pin < 0 || pin >= int(h.cfg.Capabilities.GPIOCount) {
		return errcode.OutOfBounds
	}
	return nil
}
