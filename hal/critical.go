package hal

// -----------------------------------------------------------------------------
// Critical section
// -----------------------------------------------------------------------------

// CriticalEnter begins a mutually-exclusive region. Each call must be
// paired with exactly one CriticalExit. Reentry semantics are
// backend-defined; the dispatch layer itself never nests.
func (h *HAL) CriticalEnter() {
	if h.cfg.Critical != nil {
		h.cfg.Critical.Enter()
	}
}

// CriticalExit ends the region begun by the matching CriticalEnter.
func (h *HAL) CriticalExit() {
	if h.cfg.Critical != nil {
		h.cfg.Critical.Exit()
	}
}
