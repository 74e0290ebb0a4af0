package hal

// -----------------------------------------------------------------------------
// Timer operations
// -----------------------------------------------------------------------------

// Millis returns milliseconds since startup. The 32-bit counter wraps
// after roughly 49 days; use ElapsedMS for wrap-safe intervals. Reads
// return 0 when no timer backend is bound.
func (h *HAL) Millis() uint32 {
	if h.cfg.Timer == nil {
		return 0
	}
	return h.cfg.Timer.Millis()
}

// Micros returns microseconds since startup (64-bit, effectively
// wrap-free).
func (h *HAL) Micros() uint64 {
	if h.cfg.Timer == nil {
		return 0
	}
	return h.cfg.Timer.Micros()
}

// DelayMS blocks for at least ms milliseconds. The simulated backend
// advances its clock by exactly the request instead of sleeping.
func (h *HAL) DelayMS(ms uint32) {
	if h.cfg.Timer != nil {
		h.cfg.Timer.DelayMS(ms)
	}
}

// DelayUS blocks for at least us microseconds.
func (h *HAL) DelayUS(us uint32) {
	if h.cfg.Timer != nil {
		h.cfg.Timer.DelayUS(us)
	}
}

// ElapsedMS computes now-start across the 32-bit wrap: a start near
// 0xFFFFFFFF with now near 0 yields the small positive difference.
func (h *HAL) ElapsedMS(start uint32) uint32 {
	now := h.Millis()
	if now >= start {
		return now - start
	}
	return (0xFFFFFFFF - start) + now + 1
}

// ElapsedUS computes now-start. The 64-bit counter needs no wrap
// handling within any realistic run duration.
func (h *HAL) ElapsedUS(start uint64) uint64 {
	return h.Micros() - start
}
