package hal

import (
	"vmhal-go/errcode"
	"vmhal-go/types"
)

// -----------------------------------------------------------------------------
// GPIO operations
// -----------------------------------------------------------------------------

// GPIOConfigure sets the mode of a pin. The backend resets the pin value
// to Low and marks it initialized.
func (h *HAL) GPIOConfigure(pin int, mode types.GPIOMode) error {
	if err := h.checkPin(pin); err != nil {
		return err
	}
	if !mode.Valid() {
		return errcode.InvalidArg
	}
	return h.cfg.GPIO.Configure(pin, mode)
}

// GPIOWrite drives an output pin. The backend rejects pins that were
// never configured (not_initialized) or are not in an output mode
// (invalid_arg).
func (h *HAL) GPIOWrite(pin int, value types.GPIOValue) error {
	if err := h.checkPin(pin); err != nil {
		return err
	}
	if value != types.Low && value != types.High {
		return errcode.InvalidArg
	}
	return h.cfg.GPIO.Write(pin, value)
}

// GPIORead returns the current pin level. Valid for any configured mode;
// for outputs it reads back the last written value.
func (h *HAL) GPIORead(pin int) (types.GPIOValue, error) {
	if err := h.checkPin(pin); err != nil {
		return types.Low, err
	}
	return h.cfg.GPIO.Read(pin)
}

// GPIOToggle reads a pin and writes the opposite level. The read/write
// pair runs inside the critical section so a concurrent write cannot
// interleave between the two halves.
func (h *HAL) GPIOToggle(pin int) error {
	h.CriticalEnter()
	defer h.CriticalExit()

	cur, err := h.GPIORead(pin)
	if err != nil {
		return err
	}
	return h.GPIOWrite(pin, cur.Invert())
}

// -----------------------------------------------------------------------------
// GPIO interrupts (optional backend feature)
// -----------------------------------------------------------------------------

// GPIOAttachInterrupt registers an edge handler on a pin. Backends
// without interrupt support report not_supported.
func (h *HAL) GPIOAttachInterrupt(pin int, edge types.GPIOEdge, handler func(pin int)) error {
	if err := h.checkPin(pin); err != nil {
		return err
	}
	if handler == nil || edge == 0 || edge&^types.EdgeBoth != 0 {
		return errcode.InvalidArg
	}
	gi, ok := h.cfg.GPIO.(GPIOInterrupter)
	if !ok {
		return errcode.NotSupported
	}
	return gi.AttachInterrupt(pin, edge, handler)
}

// GPIODetachInterrupt removes a previously attached edge handler.
func (h *HAL) GPIODetachInterrupt(pin int) error {
	if err := h.checkPin(pin); err != nil {
		return err
	}
	gi, ok := h.cfg.GPIO.(GPIOInterrupter)
	if !ok {
		return errcode.NotSupported
	}
	return gi.DetachInterrupt(pin)
}

// GPIOEnableInterrupt unmasks delivery for a pin's attached handler.
func (h *HAL) GPIOEnableInterrupt(pin int) error {
	if err := h.checkPin(pin); err != nil {
		return err
	}
	gi, ok := h.cfg.GPIO.(GPIOInterrupter)
	if !ok {
		return errcode.NotSupported
	}
	return gi.EnableInterrupt(pin)
}

// GPIODisableInterrupt masks delivery for a pin, keeping the handler
// registered for a later enable.
func (h *HAL) GPIODisableInterrupt(pin int) error {
	if err := h.checkPin(pin); err != nil {
		return err
	}
	gi, ok := h.cfg.GPIO.(GPIOInterrupter)
	if !ok {
		return errcode.NotSupported
	}
	return gi.DisableInterrupt(pin)
}
