package errcode

import (
	"errors"
	"fmt"
	"testing"
)

func TestIntMapping(t *testing.T) {
	cases := []struct {
		c    Code
		want int
	}{
		{OK, 0},
		{InvalidArg, -1},
		{NotInitialized, -2},
		{Timeout, -3},
		{Busy, -4},
		{NotSupported, -5},
		{IOError, -6},
		{OutOfBounds, -13},
		{Code("bogus"), -6},
	}
	for _, tc := range cases {
		if got := tc.c.Int(); got != tc.want {
			t.Fatalf("Int(%s)=%d want %d", tc.c, got, tc.want)
		}
	}
}

func TestOf(t *testing.T) {
	if Of(nil) != OK {
		t.Fatalf("Of(nil) != OK")
	}
	if Of(Busy) != Busy {
		t.Fatalf("Of(Busy) != Busy")
	}
	e := &E{C: OutOfBounds, Op: "gpio.write", Err: fmt.Errorf("pin 99")}
	if Of(e) != OutOfBounds {
		t.Fatalf("Of(E) != OutOfBounds")
	}
	if Of(errors.New("raw")) != IOError {
		t.Fatalf("Of(raw) != IOError")
	}
}

func TestEWrapping(t *testing.T) {
	cause := errors.New("device gone")
	e := &E{C: IOError, Op: "uart.write", Msg: "port 1", Err: cause}
	if !errors.Is(e, cause) {
		t.Fatalf("E does not unwrap to cause")
	}
	if e.Error() != "io_error: port 1" {
		t.Fatalf("E.Error()=%q", e.Error())
	}
}
