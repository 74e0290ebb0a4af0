//go:build rp2040 || rp2350

package platform

import (
	"machine"
	"sync"
	"time"

	uartx "github.com/jangala-dev/tinygo-uartx/uartx"

	"vmhal-go/errcode"
	"vmhal-go/hal"
	"vmhal-go/types"
)

// RP2 pin muxing for the two hardware UARTs (Pico defaults).
var rp2UARTPins = [2]struct{ tx, rx machine.Pin }{
	{tx: machine.Pin(0), rx: machine.Pin(1)},
	{tx: machine.Pin(8), rx: machine.Pin(9)},
}

// DefaultConfig assembles the backend for RP2040/RP2350 targets.
func DefaultConfig() (hal.Config, error) {
	return hal.Config{
		GPIO:     &rp2GPIO{pins: make([]rp2PinState, 30)},
		UART:     &rp2UART{hw: [2]*uartx.UART{uartx.UART0, uartx.UART1}},
		Timer:    &rp2Clock{start: time.Now()},
		Critical: &rp2Section{},
		Console:  rp2Console{},
		Capabilities: types.Capabilities{
			GPIOCount: 30,
			UARTCount: 2,
			SPICount:  2,
			I2CCount:  2,
			Features:  types.FeatureADC | types.FeaturePWM | types.FeatureRTC | types.FeatureDMA,
		},
		Info: "RP2 HAL",
	}, nil
}

// -----------------------------------------------------------------------------
// GPIO
// -----------------------------------------------------------------------------

type rp2PinState struct {
	initialized bool
	mode        types.GPIOMode
}

type rp2GPIO struct {
	mu   sync.Mutex
	pins []rp2PinState
}

func (g *rp2GPIO) Configure(pin int, mode types.GPIOMode) error {
	var mcfg machine.PinConfig
	switch mode {
	case types.ModeInput:
		mcfg.Mode = machine.PinInput
	case types.ModeInputPullup:
		mcfg.Mode = machine.PinInputPullup
	case types.ModeInputPulldown:
		mcfg.Mode = machine.PinInputPulldown
	case types.ModeOutput:
		mcfg.Mode = machine.PinOutput
	default:
		// No open-drain mode on RP2 pads.
		return errcode.NotSupported
	}
	machine.Pin(pin).Configure(mcfg)
	g.mu.Lock()
	g.pins[pin] = rp2PinState{initialized: true, mode: mode}
	g.mu.Unlock()
	return nil
}

func (g *rp2GPIO) Write(pin int, value types.GPIOValue) error {
	g.mu.Lock()
	st := g.pins[pin]
	g.mu.Unlock()
	if !st.initialized {
		return errcode.NotInitialized
	}
	if !st.mode.IsOutput() {
		return errcode.InvalidArg
	}
	machine.Pin(pin).Set(value == types.High)
	return nil
}

func (g *rp2GPIO) Read(pin int) (types.GPIOValue, error) {
	g.mu.Lock()
	st := g.pins[pin]
	g.mu.Unlock()
	if !st.initialized {
		return types.Low, errcode.NotInitialized
	}
	if machine.Pin(pin).Get() {
		return types.High, nil
	}
	return types.Low, nil
}

// -----------------------------------------------------------------------------
// UART
// -----------------------------------------------------------------------------

type rp2UART struct {
	mu   sync.Mutex
	hw   [2]*uartx.UART
	open [2]bool
}

func (u *rp2UART) Open(port int, cfg types.UARTConfig) error {
	hw := u.hw[port]
	err := hw.Configure(uartx.UARTConfig{
		BaudRate: uint32(cfg.Baudrate),
		TX:       rp2UARTPins[port].tx,
		RX:       rp2UARTPins[port].rx,
	})
	if err != nil {
		return &errcode.E{C: errcode.IOError, Op: "uart.open", Err: err}
	}
	var par uartx.UARTParity
	switch cfg.Parity {
	case types.ParityEven:
		par = uartx.ParityEven
	case types.ParityOdd:
		par = uartx.ParityOdd
	default:
		par = uartx.ParityNone
	}
	if err := hw.SetFormat(cfg.DataBits, cfg.StopBits, par); err != nil {
		return &errcode.E{C: errcode.IOError, Op: "uart.open", Err: err}
	}
	u.mu.Lock()
	u.open[port] = true
	u.mu.Unlock()
	return nil
}

// Close releases the port for reopening; the hardware FIFO keeps running.
func (u *rp2UART) Close(port int) error {
	u.mu.Lock()
	defer u.mu.Unlock()
	if !u.open[port] {
		return errcode.InvalidArg
	}
	u.open[port] = false
	return nil
}

func (u *rp2UART) isOpen(port int) bool {
	u.mu.Lock()
	defer u.mu.Unlock()
	return u.open[port]
}

func (u *rp2UART) Write(port int, data []byte) (int, error) {
	if !u.isOpen(port) {
		return 0, errcode.NotInitialized
	}
	n, err := u.hw[port].Write(data)
	if err != nil {
		return n, &errcode.E{C: errcode.IOError, Op: "uart.write", Err: err}
	}
	return n, nil
}

func (u *rp2UART) Read(port int, data []byte) (int, error) {
	if !u.isOpen(port) {
		return 0, errcode.NotInitialized
	}
	hw := u.hw[port]
	n := 0
	for n < len(data) && hw.Buffered() > 0 {
		b, err := hw.ReadByte()
		if err != nil {
			break
		}
		data[n] = b
		n++
	}
	return n, nil
}

func (u *rp2UART) Buffered(port int) (int, error) {
	if !u.isOpen(port) {
		return 0, errcode.NotInitialized
	}
	return u.hw[port].Buffered(), nil
}

// -----------------------------------------------------------------------------
// Timer, critical section, console
// -----------------------------------------------------------------------------

type rp2Clock struct{ start time.Time }

func (c *rp2Clock) Millis() uint32    { return uint32(time.Since(c.start).Milliseconds()) }
func (c *rp2Clock) Micros() uint64    { return uint64(time.Since(c.start).Microseconds()) }
func (c *rp2Clock) DelayMS(ms uint32) { time.Sleep(time.Duration(ms) * time.Millisecond) }
func (c *rp2Clock) DelayUS(us uint32) { time.Sleep(time.Duration(us) * time.Microsecond) }

type rp2Section struct{ mu sync.Mutex }

func (s *rp2Section) Enter() { s.mu.Lock() }
func (s *rp2Section) Exit()  { s.mu.Unlock() }

// rp2Console routes console I/O over USB CDC.
type rp2Console struct{}

func (rp2Console) ConsoleWrite(p []byte) (int, error) {
	for i, b := range p {
		if err := machine.Serial.WriteByte(b); err != nil {
			return i, &errcode.E{C: errcode.IOError, Op: "console.write", Err: err}
		}
	}
	return len(p), nil
}

func (rp2Console) ConsoleRead(p []byte) (int, error) {
	n := 0
	for n < len(p) && machine.Serial.Buffered() > 0 {
		b, err := machine.Serial.ReadByte()
		if err != nil {
			break
		}
		p[n] = b
		n++
	}
	return n, nil
}
