package types

// ------------------------
// GPIO
// ------------------------

// GPIOMode selects the electrical configuration of a pin.
type GPIOMode uint8

const (
	ModeInput GPIOMode = iota // high impedance input
	ModeInputPullup
	ModeInputPulldown
	ModeOutput // push-pull output
	ModeOutputOpenDrain
)

func (m GPIOMode) Valid() bool { return m <= ModeOutputOpenDrain }

// IsOutput reports whether writes are legal for the mode.
func (m GPIOMode) IsOutput() bool {
	return m == ModeOutput || m == ModeOutputOpenDrain
}

func (m GPIOMode) String() string {
	switch m {
	case ModeInput:
		return "input"
	case ModeInputPullup:
		return "input_pullup"
	case ModeInputPulldown:
		return "input_pulldown"
	case ModeOutput:
		return "output"
	case ModeOutputOpenDrain:
		return "output_od"
	default:
		return "invalid"
	}
}

// GPIOValue is a pin level.
type GPIOValue uint8

const (
	Low  GPIOValue = 0
	High GPIOValue = 1
)

func (v GPIOValue) String() string {
	if v == High {
		return "high"
	}
	return "low"
}

// Invert returns the opposite level.
func (v GPIOValue) Invert() GPIOValue {
	if v == High {
		return Low
	}
	return High
}

// GPIOEdge selects interrupt trigger edges.
type GPIOEdge uint8

const (
	EdgeRising GPIOEdge = 1 << iota
	EdgeFalling
)

const EdgeBoth = EdgeRising | EdgeFalling

func (e GPIOEdge) String() string {
	switch e {
	case EdgeRising:
		return "rising"
	case EdgeFalling:
		return "falling"
	case EdgeBoth:
		return "both"
	default:
		return "none"
	}
}
