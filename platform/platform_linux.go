//go:build linux && !rp2040 && !rp2350

package platform

import (
	"io"
	"os"
	"sync"
	"time"

	"github.com/pkg/errors"
	"github.com/tarm/serial"
	"github.com/warthog618/go-gpiocdev"

	"vmhal-go/errcode"
	"vmhal-go/hal"
	"vmhal-go/types"
)

// LinuxOptions locates the host devices backing the peripheral contracts.
type LinuxOptions struct {
	// Chip is the GPIO character device name, e.g. "gpiochip0".
	Chip string
	// Consumer is the label requested lines carry in /sys and gpioinfo.
	Consumer string
	// UARTDevices maps port index to a serial device path, e.g.
	// {"/dev/ttyUSB0", "/dev/ttyS0"}.
	UARTDevices []string
}

// NewLinuxConfig assembles a backend over the Linux GPIO character
// device and host serial ports. It is an explicit constructor rather
// than the build default so host test runs stay on the simulated board.
func NewLinuxConfig(opts LinuxOptions) (hal.Config, error) {
	if opts.Chip == "" {
		opts.Chip = "gpiochip0"
	}
	if opts.Consumer == "" {
		opts.Consumer = "vmhal"
	}
	chip, err := gpiocdev.NewChip(opts.Chip, gpiocdev.WithConsumer(opts.Consumer))
	if err != nil {
		return hal.Config{}, &errcode.E{C: errcode.IOError, Op: "platform.linux", Err: errors.Wrap(err, "open gpio chip")}
	}

	pinCount := chip.Lines()
	if pinCount > 255 {
		pinCount = 255
	}
	g := &linuxGPIO{chip: chip, lines: make(map[int]*linuxLine)}
	u := &linuxUART{devices: opts.UARTDevices, ports: make(map[int]*serial.Port)}

	return hal.Config{
		GPIO:     g,
		UART:     u,
		Timer:    &wallClock{start: time.Now()},
		Critical: &mutexSection{},
		Console:  stdioConsole{},
		Capabilities: types.Capabilities{
			GPIOCount: uint8(pinCount),
			UARTCount: uint8(len(opts.UARTDevices)),
		},
		Hooks: hal.Hooks{
			Deinit: func() {
				g.release()
				u.release()
				_ = chip.Close()
			},
		},
		Info: "Linux HAL (" + opts.Chip + ")",
	}, nil
}

// -----------------------------------------------------------------------------
// GPIO over the gpio character device
// -----------------------------------------------------------------------------

type linuxLine struct {
	line *gpiocdev.Line
	mode types.GPIOMode
}

type linuxGPIO struct {
	mu    sync.Mutex
	chip  *gpiocdev.Chip
	lines map[int]*linuxLine
}

func (g *linuxGPIO) Configure(pin int, mode types.GPIOMode) error {
	var reqOpts []gpiocdev.LineReqOption
	switch mode {
	case types.ModeInput:
		reqOpts = append(reqOpts, gpiocdev.AsInput)
	case types.ModeInputPullup:
		reqOpts = append(reqOpts, gpiocdev.AsInput, gpiocdev.WithPullUp)
	case types.ModeInputPulldown:
		reqOpts = append(reqOpts, gpiocdev.AsInput, gpiocdev.WithPullDown)
	case types.ModeOutput:
		reqOpts = append(reqOpts, gpiocdev.AsOutput(0))
	case types.ModeOutputOpenDrain:
		reqOpts = append(reqOpts, gpiocdev.AsOutput(0), gpiocdev.AsOpenDrain)
	default:
		return errcode.InvalidArg
	}

	g.mu.Lock()
	defer g.mu.Unlock()
	if prev, ok := g.lines[pin]; ok {
		_ = prev.line.Close()
		delete(g.lines, pin)
	}
	line, err := g.chip.RequestLine(pin, reqOpts...)
	if err != nil {
		return &errcode.E{C: errcode.IOError, Op: "gpio.configure", Err: errors.Wrapf(err, "request line %d", pin)}
	}
	g.lines[pin] = &linuxLine{line: line, mode: mode}
	return nil
}

func (g *linuxGPIO) Write(pin int, value types.GPIOValue) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	l, ok := g.lines[pin]
	if !ok {
		return errcode.NotInitialized
	}
	if !l.mode.IsOutput() {
		return errcode.InvalidArg
	}
	if err := l.line.SetValue(int(value)); err != nil {
		return &errcode.E{C: errcode.IOError, Op: "gpio.write", Err: errors.Wrapf(err, "set line %d", pin)}
	}
	return nil
}

func (g *linuxGPIO) Read(pin int) (types.GPIOValue, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	l, ok := g.lines[pin]
	if !ok {
		return types.Low, errcode.NotInitialized
	}
	v, err := l.line.Value()
	if err != nil {
		return types.Low, &errcode.E{C: errcode.IOError, Op: "gpio.read", Err: errors.Wrapf(err, "get line %d", pin)}
	}
	if v != 0 {
		return types.High, nil
	}
	return types.Low, nil
}

func (g *linuxGPIO) release() {
	g.mu.Lock()
	defer g.mu.Unlock()
	for pin, l := range g.lines {
		_ = l.line.Close()
		delete(g.lines, pin)
	}
}

// -----------------------------------------------------------------------------
// UART over host serial devices
// -----------------------------------------------------------------------------

type linuxUART struct {
	mu      sync.Mutex
	devices []string
	ports   map[int]*serial.Port
}

func (u *linuxUART) Open(port int, cfg types.UARTConfig) error {
	u.mu.Lock()
	defer u.mu.Unlock()
	if port >= len(u.devices) || u.devices[port] == "" {
		return errcode.NotSupported
	}
	sc := &serial.Config{
		Name: u.devices[port],
		Baud: cfg.Baudrate,
		Size: byte(cfg.DataBits),
		// Short timeout keeps Read non-blocking, per the contract.
		ReadTimeout: time.Millisecond,
	}
	switch cfg.Parity {
	case types.ParityOdd:
		sc.Parity = serial.ParityOdd
	case types.ParityEven:
		sc.Parity = serial.ParityEven
	default:
		sc.Parity = serial.ParityNone
	}
	if cfg.StopBits == 2 {
		sc.StopBits = serial.Stop2
	} else {
		sc.StopBits = serial.Stop1
	}
	p, err := serial.OpenPort(sc)
	if err != nil {
		return &errcode.E{C: errcode.IOError, Op: "uart.open", Err: errors.Wrap(err, sc.Name)}
	}
	u.ports[port] = p
	return nil
}

func (u *linuxUART) Close(port int) error {
	u.mu.Lock()
	defer u.mu.Unlock()
	p, ok := u.ports[port]
	if !ok {
		return errcode.InvalidArg
	}
	delete(u.ports, port)
	if err := p.Close(); err != nil {
		return &errcode.E{C: errcode.IOError, Op: "uart.close", Err: err}
	}
	return nil
}

func (u *linuxUART) Write(port int, data []byte) (int, error) {
	u.mu.Lock()
	p, ok := u.ports[port]
	u.mu.Unlock()
	if !ok {
		return 0, errcode.NotInitialized
	}
	n, err := p.Write(data)
	if err != nil {
		return n, &errcode.E{C: errcode.IOError, Op: "uart.write", Err: err}
	}
	return n, nil
}

func (u *linuxUART) Read(port int, data []byte) (int, error) {
	u.mu.Lock()
	p, ok := u.ports[port]
	u.mu.Unlock()
	if !ok {
		return 0, errcode.NotInitialized
	}
	n, err := p.Read(data)
	if err == io.EOF {
		// Read timeout with nothing pending; not an error here.
		return 0, nil
	}
	if err != nil {
		return n, &errcode.E{C: errcode.IOError, Op: "uart.read", Err: err}
	}
	return n, nil
}

// Buffered is not observable through the host serial layer.
func (u *linuxUART) Buffered(port int) (int, error) {
	u.mu.Lock()
	_, ok := u.ports[port]
	u.mu.Unlock()
	if !ok {
		return 0, errcode.NotInitialized
	}
	return 0, errcode.NotSupported
}

func (u *linuxUART) release() {
	u.mu.Lock()
	defer u.mu.Unlock()
	for port, p := range u.ports {
		_ = p.Close()
		delete(u.ports, port)
	}
}

// -----------------------------------------------------------------------------
// Timer, critical section, console
// -----------------------------------------------------------------------------

type wallClock struct{ start time.Time }

func (c *wallClock) Millis() uint32    { return uint32(time.Since(c.start).Milliseconds()) }
func (c *wallClock) Micros() uint64    { return uint64(time.Since(c.start).Microseconds()) }
func (c *wallClock) DelayMS(ms uint32) { time.Sleep(time.Duration(ms) * time.Millisecond) }
func (c *wallClock) DelayUS(us uint32) { time.Sleep(time.Duration(us) * time.Microsecond) }

type mutexSection struct{ mu sync.Mutex }

func (m *mutexSection) Enter() { m.mu.Lock() }
func (m *mutexSection) Exit()  { m.mu.Unlock() }

type stdioConsole struct{}

func (stdioConsole) ConsoleWrite(p []byte) (int, error) {
	n, err := os.Stdout.Write(p)
	if err != nil {
		return n, &errcode.E{C: errcode.IOError, Op: "console.write", Err: err}
	}
	return n, nil
}

func (stdioConsole) ConsoleRead(p []byte) (int, error) {
	n, err := os.Stdin.Read(p)
	if err != nil && err != io.EOF {
		return n, &errcode.E{C: errcode.IOError, Op: "console.read", Err: err}
	}
	return n, nil
}
