package hal

import (
	"tinygo.org/x/drivers"

	"vmhal-go/errcode"
	"vmhal-go/types"
)

// Port is a scoped wrapper around a UART handle: opening is bound to
// construction and Close releases the handle exactly once, on every exit
// path the caller routes through it.
//
// Port also satisfies drivers.UART, so TinyGo driver libraries that speak
// to a serial peripheral can run over an opened HAL port unchanged.
type Port struct {
	h      *HAL
	port   int
	cfg    types.UARTConfig
	handle Handle
}

var _ drivers.UART = (*Port)(nil)

// OpenPort opens a UART port and wraps the resulting handle.
func (h *HAL) OpenPort(port int, cfg types.UARTConfig) (*Port, error) {
	hd, err := h.UARTOpen(port, cfg)
	if err != nil {
		return nil, err
	}
	return &Port{h: h, port: port, cfg: cfg, handle: hd}, nil
}

// Handle exposes the raw handle for callers that need it.
func (p *Port) Handle() Handle { return p.handle }

// Configure retunes the line by reopening the port, keeping the current
// settings except for the baud rate when a non-zero one is given. Driver
// libraries call this to change the baud rate mid-session.
func (p *Port) Configure(baud uint32) error {
	if p.handle != NoHandle {
		if err := p.h.UARTClose(p.handle); err != nil {
			return err
		}
		p.handle = NoHandle
	}
	cfg := p.cfg
	if baud != 0 {
		cfg.Baudrate = int(baud)
	}
	hd, err := p.h.UARTOpen(p.port, cfg)
	if err != nil {
		return err
	}
	p.cfg = cfg
	p.handle = hd
	return nil
}

// Close releases the port. A second Close fails invalid_arg, the same as
// any other stale-handle use.
func (p *Port) Close() error {
	err := p.h.UARTClose(p.handle)
	p.handle = NoHandle
	return err
}

func (p *Port) Write(data []byte) (int, error) {
	return p.h.UARTWrite(p.handle, data)
}

func (p *Port) WriteByte(c byte) error {
	_, err := p.h.UARTWrite(p.handle, []byte{c})
	return err
}

func (p *Port) Read(data []byte) (int, error) {
	return p.h.UARTRead(p.handle, data)
}

// ReadByte pops one RX byte, failing timeout when none is pending.
func (p *Port) ReadByte() (byte, error) {
	var b [1]byte
	n, err := p.h.UARTRead(p.handle, b[:])
	if err != nil {
		return 0, err
	}
	if n == 0 {
		return 0, errcode.Timeout
	}
	return b[0], nil
}

// Buffered reports pending RX bytes, 0 when the handle is invalid.
func (p *Port) Buffered() int {
	n, err := p.h.UARTAvailable(p.handle)
	if err != nil {
		return 0
	}
	return n
}
