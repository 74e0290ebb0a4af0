package hal_test

import (
	"bytes"
	"testing"

	"vmhal-go/errcode"
	"vmhal-go/hal"
	"vmhal-go/simhal"
	"vmhal-go/types"
)

func newTestHAL(t *testing.T, opts ...simhal.Option) (*hal.HAL, *simhal.Backend) {
	t.Helper()
	b, err := simhal.New(opts...)
	if err != nil {
		t.Fatalf("simhal.New: %v", err)
	}
	return hal.New(b.HALConfig()), b
}

func wantCode(t *testing.T, err error, want errcode.Code) {
	t.Helper()
	if got := errcode.Of(err); got != want {
		t.Fatalf("error code = %v (%v), want %v", got, err, want)
	}
}

// -----------------------------------------------------------------------------
// Zero configuration
// -----------------------------------------------------------------------------

func TestZeroConfig(t *testing.T) {
	h := hal.New(hal.Config{})

	if caps := h.Capabilities(); caps != (types.Capabilities{}) {
		t.Fatalf("zero config capabilities = %+v, want all zero", caps)
	}
	wantCode(t, h.GPIOConfigure(0, types.ModeOutput), errcode.NotSupported)
	if _, err := h.UARTOpen(0, types.DefaultUARTConfig()); errcode.Of(err) != errcode.NotSupported {
		t.Fatalf("UARTOpen on zero config = %v, want not_supported", err)
	}
	if _, err := h.ConsoleWrite([]byte("x")); errcode.Of(err) != errcode.NotSupported {
		t.Fatalf("ConsoleWrite on zero config = %v, want not_supported", err)
	}
	if h.Millis() != 0 || h.Micros() != 0 {
		t.Fatal("timerless HAL should read zero")
	}
	// Delays and critical sections degrade to no-ops.
	h.DelayMS(10)
	h.CriticalEnter()
	h.CriticalExit()
	if err := h.Init(); err != nil {
		t.Fatalf("Init: %v", err)
	}
	h.Deinit()
}

// -----------------------------------------------------------------------------
// GPIO
// -----------------------------------------------------------------------------

func TestGPIORoundTrip(t *testing.T) {
	h, _ := newTestHAL(t)
	max := int(h.Capabilities().GPIOCount)

	for pin := 0; pin < max; pin++ {
		if err := h.GPIOConfigure(pin, types.ModeOutput); err != nil {
			t.Fatalf("configure pin %d: %v", pin, err)
		}
		if err := h.GPIOWrite(pin, types.High); err != nil {
			t.Fatalf("write pin %d: %v", pin, err)
		}
		v, err := h.GPIORead(pin)
		if err != nil {
			t.Fatalf("read pin %d: %v", pin, err)
		}
		if v != types.High {
			t.Fatalf("pin %d = %v, want High", pin, v)
		}
	}
}

func TestGPIOConfigureResetsToLow(t *testing.T) {
	h, _ := newTestHAL(t)

	if err := h.GPIOConfigure(3, types.ModeOutput); err != nil {
		t.Fatal(err)
	}
	if err := h.GPIOWrite(3, types.High); err != nil {
		t.Fatal(err)
	}
	if err := h.GPIOConfigure(3, types.ModeOutput); err != nil {
		t.Fatal(err)
	}
	v, err := h.GPIORead(3)
	if err != nil {
		t.Fatal(err)
	}
	if v != types.Low {
		t.Fatalf("reconfigured pin = %v, want Low", v)
	}
}

func TestGPIOUnconfigured(t *testing.T) {
	h, _ := newTestHAL(t)

	wantCode(t, h.GPIOWrite(5, types.High), errcode.NotInitialized)
	_, err := h.GPIORead(5)
	wantCode(t, err, errcode.NotInitialized)
}

func TestGPIOOutOfBounds(t *testing.T) {
	h, _ := newTestHAL(t)
	max := int(h.Capabilities().GPIOCount)

	for _, pin := range []int{-1, max, max + 100} {
		wantCode(t, h.GPIOConfigure(pin, types.ModeOutput), errcode.OutOfBounds)
		wantCode(t, h.GPIOWrite(pin, types.Low), errcode.OutOfBounds)
		if _, err := h.GPIORead(pin); errcode.Of(err) != errcode.OutOfBounds {
			t.Fatalf("read pin %d = %v, want out_of_bounds", pin, err)
		}
	}
}

func TestGPIOWriteRequiresOutputMode(t *testing.T) {
	h, _ := newTestHAL(t)

	for _, mode := range []types.GPIOMode{types.ModeInput, types.ModeInputPullup, types.ModeInputPulldown} {
		if err := h.GPIOConfigure(7, mode); err != nil {
			t.Fatalf("configure %v: %v", mode, err)
		}
		wantCode(t, h.GPIOWrite(7, types.High), errcode.InvalidArg)
	}
	// Reads stay legal on inputs.
	if _, err := h.GPIORead(7); err != nil {
		t.Fatalf("read input pin: %v", err)
	}
}

func TestGPIOInvalidArgs(t *testing.T) {
	h, _ := newTestHAL(t)

	wantCode(t, h.GPIOConfigure(0, types.GPIOMode(99)), errcode.InvalidArg)
	if err := h.GPIOConfigure(0, types.ModeOutput); err != nil {
		t.Fatal(err)
	}
	wantCode(t, h.GPIOWrite(0, types.GPIOValue(2)), errcode.InvalidArg)
}

func TestGPIOToggle(t *testing.T) {
	h, b := newTestHAL(t)

	if err := h.GPIOConfigure(2, types.ModeOutput); err != nil {
		t.Fatal(err)
	}
	want := types.Low
	for i := 0; i < 5; i++ {
		if err := h.GPIOToggle(2); err != nil {
			t.Fatalf("toggle %d: %v", i, err)
		}
		want = want.Invert()
		v, err := b.PinValue(2)
		if err != nil {
			t.Fatal(err)
		}
		if v != want {
			t.Fatalf("after toggle %d pin = %v, want %v", i, v, want)
		}
	}

	wantCode(t, h.GPIOToggle(9), errcode.NotInitialized)
}

// tracingGPIO is a minimal backend that records call order into a shared
// event log, so tests can observe interleaving with the critical section.
type tracingGPIO struct {
	events  *[]string
	value   types.GPIOValue
	readErr error
}

func (g *tracingGPIO) Configure(pin int, mode types.GPIOMode) error { return nil }

func (g *tracingGPIO) Write(pin int, value types.GPIOValue) error {
	*g.events = append(*g.events, "write")
	g.value = value
	return nil
}

func (g *tracingGPIO) Read(pin int) (types.GPIOValue, error) {
	*g.events = append(*g.events, "read")
	return g.value, g.readErr
}

type tracingSection struct{ events *[]string }

func (s tracingSection) Enter() { *s.events = append(*s.events, "enter") }
func (s tracingSection) Exit()  { *s.events = append(*s.events, "exit") }

func TestGPIOToggleRunsInsideCriticalSection(t *testing.T) {
	var events []string
	g := &tracingGPIO{events: &events}
	h := hal.New(hal.Config{
		GPIO:         g,
		Critical:     tracingSection{events: &events},
		Capabilities: types.Capabilities{GPIOCount: 1},
	})

	if err := h.GPIOToggle(0); err != nil {
		t.Fatalf("toggle: %v", err)
	}
	want := []string{"enter", "read", "write", "exit"}
	if len(events) != len(want) {
		t.Fatalf("events = %v, want %v", events, want)
	}
	for i := range want {
		if events[i] != want[i] {
			t.Fatalf("events = %v, want %v", events, want)
		}
	}

	// A failing read must still release the section.
	events = events[:0]
	g.readErr = errcode.NotInitialized
	wantCode(t, h.GPIOToggle(0), errcode.NotInitialized)
	if len(events) != 3 || events[0] != "enter" || events[1] != "read" || events[2] != "exit" {
		t.Fatalf("events on failed toggle = %v, want [enter read exit]", events)
	}
}

func TestGPIOInterruptsNotSupported(t *testing.T) {
	h, _ := newTestHAL(t)

	if err := h.GPIOConfigure(1, types.ModeInput); err != nil {
		t.Fatal(err)
	}
	err := h.GPIOAttachInterrupt(1, types.EdgeRising, func(int) {})
	wantCode(t, err, errcode.NotSupported)
	wantCode(t, h.GPIODetachInterrupt(1), errcode.NotSupported)
	wantCode(t, h.GPIOEnableInterrupt(1), errcode.NotSupported)
	wantCode(t, h.GPIODisableInterrupt(1), errcode.NotSupported)

	// Argument validation still runs before the capability check.
	wantCode(t, h.GPIOAttachInterrupt(1, types.EdgeRising, nil), errcode.InvalidArg)
	wantCode(t, h.GPIOAttachInterrupt(1, 0, func(int) {}), errcode.InvalidArg)
	max := int(h.Capabilities().GPIOCount)
	wantCode(t, h.GPIOEnableInterrupt(max), errcode.OutOfBounds)
	wantCode(t, h.GPIODisableInterrupt(-1), errcode.OutOfBounds)
}

// -----------------------------------------------------------------------------
// UART
// -----------------------------------------------------------------------------

func TestUARTWriteReachesTX(t *testing.T) {
	h, b := newTestHAL(t)

	cfg := types.UARTConfig{Baudrate: 9600, DataBits: 8, StopBits: 1, Parity: types.ParityNone}
	hd, err := h.UARTOpen(0, cfg)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	n, err := h.UARTWrite(hd, []byte("Hello"))
	if err != nil {
		t.Fatalf("write: %v", err)
	}
	if n != 5 {
		t.Fatalf("write = %d, want 5", n)
	}
	tx, err := b.TXBytes(0)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(tx, []byte("Hello")) {
		t.Fatalf("tx buffer = %q, want %q", tx, "Hello")
	}
}

func TestUARTReadInjected(t *testing.T) {
	h, b := newTestHAL(t)

	hd, err := h.UARTOpen(0, types.DefaultUARTConfig())
	if err != nil {
		t.Fatal(err)
	}
	if _, err := b.InjectRX(0, []byte("Hi")); err != nil {
		t.Fatal(err)
	}

	if n, err := h.UARTAvailable(hd); err != nil || n != 2 {
		t.Fatalf("available = %d, %v, want 2, nil", n, err)
	}

	buf := make([]byte, 1)
	for i, want := range []byte("Hi") {
		n, err := h.UARTRead(hd, buf)
		if err != nil || n != 1 {
			t.Fatalf("read %d = %d, %v", i, n, err)
		}
		if buf[0] != want {
			t.Fatalf("read %d = %q, want %q", i, buf[0], want)
		}
	}
	// Drained: further reads return zero bytes, not an error.
	n, err := h.UARTRead(hd, buf)
	if err != nil || n != 0 {
		t.Fatalf("read on empty = %d, %v, want 0, nil", n, err)
	}
}

func TestUARTWriteOverflow(t *testing.T) {
	h, b := newTestHAL(t, simhal.WithBufferSize(8))

	hd, err := h.UARTOpen(0, types.DefaultUARTConfig())
	if err != nil {
		t.Fatal(err)
	}
	n, err := h.UARTWrite(hd, []byte("0123456789"))
	wantCode(t, err, errcode.Busy)
	if n != 8 {
		t.Fatalf("overflow write = %d, want 8", n)
	}
	tx, err := b.TXBytes(0)
	if err != nil {
		t.Fatal(err)
	}
	if string(tx) != "01234567" {
		t.Fatalf("tx buffer = %q, want first 8 bytes", tx)
	}

	// Draining frees space for the remainder.
	if _, err := b.DrainTX(0); err != nil {
		t.Fatal(err)
	}
	n, err = h.UARTWrite(hd, []byte("89"))
	if err != nil || n != 2 {
		t.Fatalf("write after drain = %d, %v", n, err)
	}
}

func TestUARTOpenValidation(t *testing.T) {
	h, _ := newTestHAL(t)
	ports := int(h.Capabilities().UARTCount)

	if _, err := h.UARTOpen(ports, types.DefaultUARTConfig()); errcode.Of(err) != errcode.OutOfBounds {
		t.Fatalf("open port %d = %v, want out_of_bounds", ports, err)
	}
	if _, err := h.UARTOpen(-1, types.DefaultUARTConfig()); errcode.Of(err) != errcode.OutOfBounds {
		t.Fatalf("open port -1 = %v, want out_of_bounds", err)
	}

	bad := []types.UARTConfig{
		{Baudrate: 0, DataBits: 8, StopBits: 1},
		{Baudrate: 9600, DataBits: 9, StopBits: 1},
		{Baudrate: 9600, DataBits: 8, StopBits: 3},
		{Baudrate: 9600, DataBits: 8, StopBits: 1, Parity: types.Parity(7)},
	}
	for i, cfg := range bad {
		if _, err := h.UARTOpen(0, cfg); errcode.Of(err) != errcode.InvalidArg {
			t.Fatalf("bad config %d: open = %v, want invalid_arg", i, err)
		}
	}
}

func TestUARTDoubleOpenBusy(t *testing.T) {
	h, _ := newTestHAL(t)

	if _, err := h.UARTOpen(1, types.DefaultUARTConfig()); err != nil {
		t.Fatal(err)
	}
	if _, err := h.UARTOpen(1, types.DefaultUARTConfig()); errcode.Of(err) != errcode.Busy {
		t.Fatalf("second open = %v, want busy", err)
	}
}

func TestUARTHandleLifecycle(t *testing.T) {
	h, _ := newTestHAL(t)

	hd, err := h.UARTOpen(0, types.DefaultUARTConfig())
	if err != nil {
		t.Fatal(err)
	}
	if hd == hal.NoHandle {
		t.Fatal("open returned NoHandle")
	}
	if err := h.UARTClose(hd); err != nil {
		t.Fatalf("close: %v", err)
	}
	wantCode(t, h.UARTClose(hd), errcode.InvalidArg)
	if _, err := h.UARTWrite(hd, []byte("x")); errcode.Of(err) != errcode.InvalidArg {
		t.Fatalf("write on closed handle = %v, want invalid_arg", err)
	}

	// Reopening issues a fresh handle; the stale one stays dead.
	hd2, err := h.UARTOpen(0, types.DefaultUARTConfig())
	if err != nil {
		t.Fatal(err)
	}
	if hd2 == hd {
		t.Fatalf("reopen reissued handle %#x", hd)
	}
	if _, err := h.UARTRead(hd, make([]byte, 1)); errcode.Of(err) != errcode.InvalidArg {
		t.Fatalf("read on stale handle = %v, want invalid_arg", err)
	}
	if _, err := h.UARTWrite(hd2, []byte("ok")); err != nil {
		t.Fatalf("write on fresh handle: %v", err)
	}
}

func TestUARTGarbageHandles(t *testing.T) {
	h, _ := newTestHAL(t)

	for _, hd := range []hal.Handle{hal.NoHandle, 0xFFFF, 0xDEADBEEF} {
		if _, err := h.UARTWrite(hd, []byte("x")); errcode.Of(err) != errcode.InvalidArg {
			t.Fatalf("write on handle %#x = %v, want invalid_arg", hd, err)
		}
	}
}

// -----------------------------------------------------------------------------
// Port wrapper
// -----------------------------------------------------------------------------

func TestPortWrapper(t *testing.T) {
	h, b := newTestHAL(t)

	p, err := h.OpenPort(0, types.DefaultUARTConfig())
	if err != nil {
		t.Fatal(err)
	}
	if err := p.WriteByte('A'); err != nil {
		t.Fatal(err)
	}
	if n, err := p.Write([]byte("BC")); err != nil || n != 2 {
		t.Fatalf("Write = %d, %v", n, err)
	}
	tx, _ := b.TXBytes(0)
	if string(tx) != "ABC" {
		t.Fatalf("tx = %q, want ABC", tx)
	}

	if _, err := p.ReadByte(); errcode.Of(err) != errcode.Timeout {
		t.Fatalf("ReadByte on empty = %v, want timeout", err)
	}
	b.InjectRX(0, []byte("z"))
	if p.Buffered() != 1 {
		t.Fatalf("Buffered = %d, want 1", p.Buffered())
	}
	c, err := p.ReadByte()
	if err != nil || c != 'z' {
		t.Fatalf("ReadByte = %q, %v", c, err)
	}

	if err := p.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
	wantCode(t, p.Close(), errcode.InvalidArg)
	if p.Buffered() != 0 {
		t.Fatal("Buffered after close should be 0")
	}
}

func TestPortConfigureRetunes(t *testing.T) {
	h, b := newTestHAL(t)

	p, err := h.OpenPort(0, types.DefaultUARTConfig())
	if err != nil {
		t.Fatal(err)
	}
	old := p.Handle()
	if err := p.Configure(9600); err != nil {
		t.Fatalf("configure: %v", err)
	}
	if p.Handle() == old {
		t.Fatal("retune should reissue the handle")
	}
	// The reopened port is live.
	if _, err := p.Write([]byte("ok")); err != nil {
		t.Fatalf("write after retune: %v", err)
	}
	tx, _ := b.TXBytes(0)
	if string(tx) != "ok" {
		t.Fatalf("tx = %q", tx)
	}
}

// -----------------------------------------------------------------------------
// Timer
// -----------------------------------------------------------------------------

func TestTimerDelayAdvancesExactly(t *testing.T) {
	h, _ := newTestHAL(t)

	if h.Millis() != 0 || h.Micros() != 0 {
		t.Fatal("clock should start at zero")
	}
	h.DelayMS(100)
	if h.Millis() != 100 {
		t.Fatalf("Millis = %d, want 100", h.Millis())
	}
	if h.Micros() != 100_000 {
		t.Fatalf("Micros = %d, want 100000", h.Micros())
	}

	h.DelayUS(1500)
	if h.Micros() != 101_500 {
		t.Fatalf("Micros = %d, want 101500", h.Micros())
	}
	if h.Millis() != 101 {
		t.Fatalf("Millis = %d, want 101", h.Millis())
	}
}

func TestElapsedMS(t *testing.T) {
	h, b := newTestHAL(t)

	b.SetMillis(500)
	start := h.Millis()
	h.DelayMS(250)
	if got := h.ElapsedMS(start); got != 250 {
		t.Fatalf("ElapsedMS = %d, want 250", got)
	}
}

func TestElapsedMSWraparound(t *testing.T) {
	h, b := newTestHAL(t)

	b.SetMillis(0xFFFFFFF0)
	start := h.Millis()
	h.DelayMS(0x20) // counter wraps to 0x10
	if now := h.Millis(); now != 0x10 {
		t.Fatalf("Millis after wrap = %#x, want 0x10", now)
	}
	if got := h.ElapsedMS(start); got != 0x20 {
		t.Fatalf("ElapsedMS across wrap = %#x, want 0x20", got)
	}
}

func TestElapsedUS(t *testing.T) {
	h, b := newTestHAL(t)

	b.SetMicros(1_000_000)
	start := h.Micros()
	h.DelayUS(42)
	if got := h.ElapsedUS(start); got != 42 {
		t.Fatalf("ElapsedUS = %d, want 42", got)
	}
}

// -----------------------------------------------------------------------------
// Lifecycle
// -----------------------------------------------------------------------------

func TestResetInvalidatesEverything(t *testing.T) {
	h, _ := newTestHAL(t)

	if err := h.GPIOConfigure(4, types.ModeOutput); err != nil {
		t.Fatal(err)
	}
	if err := h.GPIOWrite(4, types.High); err != nil {
		t.Fatal(err)
	}
	hd, err := h.UARTOpen(0, types.DefaultUARTConfig())
	if err != nil {
		t.Fatal(err)
	}
	h.DelayMS(123)

	if err := h.Reset(); err != nil {
		t.Fatalf("reset: %v", err)
	}

	wantCode(t, h.GPIOWrite(4, types.High), errcode.NotInitialized)
	if _, err := h.UARTWrite(hd, []byte("x")); errcode.Of(err) != errcode.InvalidArg {
		t.Fatalf("write after reset = %v, want invalid_arg", err)
	}
	if h.Millis() != 0 {
		t.Fatalf("Millis after reset = %d, want 0", h.Millis())
	}

	// The HAL stays usable: the port can be reopened.
	if _, err := h.UARTOpen(0, types.DefaultUARTConfig()); err != nil {
		t.Fatalf("reopen after reset: %v", err)
	}
}

func TestDeinitClosesOpenPorts(t *testing.T) {
	h, _ := newTestHAL(t)

	hd, err := h.UARTOpen(2, types.DefaultUARTConfig())
	if err != nil {
		t.Fatal(err)
	}
	h.Deinit()
	if _, err := h.UARTWrite(hd, []byte("x")); errcode.Of(err) != errcode.InvalidArg {
		t.Fatalf("write after deinit = %v, want invalid_arg", err)
	}
}

func TestLifecycleHooks(t *testing.T) {
	var inits, resets, deinits int
	b, err := simhal.New()
	if err != nil {
		t.Fatal(err)
	}
	cfg := b.HALConfig()
	cfg.Hooks = hal.Hooks{
		Init:   func() error { inits++; return nil },
		Reset:  func() error { resets++; return nil },
		Deinit: func() { deinits++ },
	}
	h := hal.New(cfg)

	if err := h.Init(); err != nil {
		t.Fatal(err)
	}
	if err := h.Reset(); err != nil {
		t.Fatal(err)
	}
	h.Deinit()
	if inits != 1 || resets != 1 || deinits != 1 {
		t.Fatalf("hook counts = %d/%d/%d, want 1/1/1", inits, resets, deinits)
	}
}

func TestInfo(t *testing.T) {
	if got := hal.New(hal.Config{}).Info(); got != "unknown" {
		t.Fatalf("zero config Info = %q, want unknown", got)
	}
	h, _ := newTestHAL(t)
	if got := h.Info(); got != "Simulated HAL v1.0" {
		t.Fatalf("Info = %q", got)
	}
}

// -----------------------------------------------------------------------------
// Console
// -----------------------------------------------------------------------------

func TestConsoleRoundTrip(t *testing.T) {
	h, b := newTestHAL(t)

	n, err := h.ConsoleWrite([]byte("hello\n"))
	if err != nil || n != 6 {
		t.Fatalf("ConsoleWrite = %d, %v", n, err)
	}
	if got := b.ConsoleOutput(); string(got) != "hello\n" {
		t.Fatalf("console output = %q", got)
	}

	b.InjectConsole([]byte("in"))
	buf := make([]byte, 8)
	n, err = h.ConsoleRead(buf)
	if err != nil || n != 2 || string(buf[:n]) != "in" {
		t.Fatalf("ConsoleRead = %d, %q, %v", n, buf[:n], err)
	}
	// Empty input reads as zero bytes.
	n, err = h.ConsoleRead(buf)
	if err != nil || n != 0 {
		t.Fatalf("ConsoleRead on empty = %d, %v", n, err)
	}
}
