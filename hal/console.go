package hal

import "vmhal-go/errcode"

// -----------------------------------------------------------------------------
// Console I/O
// -----------------------------------------------------------------------------

// ConsoleWrite writes to the standard console output (stdout or UART0 on
// real targets). Backends without a console report not_supported.
func (h *HAL) ConsoleWrite(p []byte) (int, error) {
	if h.cfg.Console == nil {
		return 0, errcode.NotSupported
	}
	return h.cfg.Console.ConsoleWrite(p)
}

// ConsoleRead reads up to len(p) bytes from the console input.
func (h *HAL) ConsoleRead(p []byte) (int, error) {
	if h.cfg.Console == nil {
		return 0, errcode.NotSupported
	}
	return h.cfg.Console.ConsoleRead(p)
}
