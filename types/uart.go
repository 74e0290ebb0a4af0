package types

import "vmhal-go/errcode"

// ------------------------
// UART
// ------------------------

type Parity uint8

// Parity values follow the wire convention the interpreter uses
// (0=none, 1=odd, 2=even).
const (
	ParityNone Parity = iota
	ParityOdd
	ParityEven
)

func (p Parity) String() string {
	switch p {
	case ParityOdd:
		return "odd"
	case ParityEven:
		return "even"
	default:
		return "none"
	}
}

// MarshalJSON renders the parity by name, so a serialized UARTConfig
// reads "even" rather than a bare wire integer.
func (p Parity) MarshalJSON() ([]byte, error) { return []byte(`"` + p.String() + `"`), nil }

// UARTConfig carries the line settings for opening a port.
type UARTConfig struct {
	Baudrate int    `json:"baudrate"`
	DataBits uint8  `json:"data_bits"` // 5..8
	StopBits uint8  `json:"stop_bits"` // 1..2
	Parity   Parity `json:"parity"`
}

// DefaultUARTConfig is the usual 115200 8N1.
func DefaultUARTConfig() UARTConfig {
	return UARTConfig{Baudrate: 115200, DataBits: 8, StopBits: 1, Parity: ParityNone}
}

// Validate checks the settings against the ranges every backend must accept.
func (c UARTConfig) Validate() error {
	if c.Baudrate <= 0 {
		return errcode.InvalidArg
	}
	if c.DataBits < 5 || c.DataBits > 8 {
		return errcode.InvalidArg
	}
	if c.StopBits < 1 || c.StopBits > 2 {
		return errcode.InvalidArg
	}
	if c.Parity > ParityEven {
		return errcode.InvalidArg
	}
	return nil
}
