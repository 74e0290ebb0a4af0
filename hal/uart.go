package hal

import (
	"vmhal-go/errcode"
	"vmhal-go/types"
)

// -----------------------------------------------------------------------------
// UART operations
// -----------------------------------------------------------------------------

// Handle identifies an open UART port. It packs the port slot in the low
// 16 bits (stored +1 so the zero Handle is never valid) and a generation
// counter in the high 16 bits; the generation is bumped on close so a
// stale handle is caught instead of silently aliasing a reopened port.
type Handle uint32

// NoHandle is returned by failed opens.
const NoHandle Handle = 0

type portSlot struct {
	open bool
	gen  uint16
}

func encodeHandle(port int, gen uint16) Handle {
	return Handle(uint32(gen)<<16 | uint32(port+1))
}

// resolve maps a handle back to its port index, rejecting closed, stale
// and malformed handles uniformly with invalid_arg.
func (h *HAL) resolve(hd Handle) (int, error) {
	port := int(hd&0xFFFF) - 1
	if port < 0 || port >= len(h.ports) {
		return 0, errcode.InvalidArg
	}
	slot := h.ports[port]
	if !slot.open || slot.gen != uint16(hd>>16) {
		return 0, errcode.InvalidArg
	}
	return port, nil
}

// UARTOpen opens a port with the given line settings and returns a handle
// exclusively owned by the caller. Both buffers start empty. Opening a
// port that is already open fails busy.
func (h *HAL) UARTOpen(port int, cfg types.UARTConfig) (Handle, error) {
	if h.cfg.UART == nil {
		return NoHandle, errcode.NotSupported
	}
	if port < 0 || port >= len(h.ports) {
		return NoHandle, errcode.OutOfBounds
	}
	if err := cfg.Validate(); err != nil {
		return NoHandle, err
	}
	if h.ports[port].open {
		return NoHandle, errcode.Busy
	}
	if err := h.cfg.UART.Open(port, cfg); err != nil {
		return NoHandle, err
	}
	h.ports[port].open = true
	return encodeHandle(port, h.ports[port].gen), nil
}

// UARTClose releases a handle. The handle is invalid afterwards; closing
// it again fails invalid_arg.
func (h *HAL) UARTClose(hd Handle) error {
	port, err := h.resolve(hd)
	if err != nil {
		return err
	}
	if err := h.cfg.UART.Close(port); err != nil {
		return err
	}
	h.ports[port].open = false
	h.ports[port].gen++
	return nil
}

// UARTWrite enqueues p onto the port's TX buffer. When the buffer fills
// mid-write it returns the bytes actually enqueued together with busy;
// bytes beyond that point are left unconsumed.
func (h *HAL) UARTWrite(hd Handle, p []byte) (int, error) {
	port, err := h.resolve(hd)
	if err != nil {
		return 0, err
	}
	return h.cfg.UART.Write(port, p)
}

// UARTRead pops up to len(p) bytes from the RX buffer in FIFO order. It
// never blocks; an empty buffer reads as (0, nil).
func (h *HAL) UARTRead(hd Handle, p []byte) (int, error) {
	port, err := h.resolve(hd)
	if err != nil {
		return 0, err
	}
	return h.cfg.UART.Read(port, p)
}

// UARTAvailable reports pending RX bytes without consuming them.
func (h *HAL) UARTAvailable(hd Handle) (int, error) {
	port, err := h.resolve(hd)
	if err != nil {
		return 0, err
	}
	return h.cfg.UART.Buffered(port)
}
