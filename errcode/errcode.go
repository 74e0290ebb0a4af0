package errcode

// Code is a stable, VM-facing error identifier.
// It is a string newtype, comparable, allocation-free, and implements error.
type Code string

func (c Code) Error() string { return string(c) }

// Canonical codes (closed set, one code per failure kind).
const (
	OK             Code = "ok"
	InvalidArg     Code = "invalid_arg"     // malformed parameter, non-output write target, stale handle
	OutOfBounds    Code = "out_of_bounds"   // resource index outside declared capacity
	NotInitialized Code = "not_initialized" // resource used before configure/open
	Busy           Code = "busy"            // buffer full, resource temporarily unavailable
	Timeout        Code = "timeout"         // no data within the operation's window
	NotSupported   Code = "not_supported"   // feature absent on the current backend
	IOError        Code = "io_error"        // underlying platform I/O failed
)

// Int maps a Code onto the numeric outcome convention consumed by the
// bytecode interpreter (0 = success, negative = error).
func (c Code) Int() int {
	switch c {
	case OK:
		return 0
	case InvalidArg:
		return -1
	case NotInitialized:
		return -2
	case Timeout:
		return -3
	case Busy:
		return -4
	case NotSupported:
		return -5
	case IOError:
		return -6
	case OutOfBounds:
		return -13
	default:
		return -6
	}
}

// Optional wrapper when we want to keep context and a cause.
type E struct {
	C   Code
	Op  string
	Msg string
	Err error
}

func (e *E) Error() string {
	if e.Msg != "" {
		return string(e.C) + ": " + e.Msg
	}
	return string(e.C)
}
func (e *E) Unwrap() error { return e.Err }
func (e *E) Code() Code    { return e.C }

// Of extracts a Code from an error, defaulting to IOError.
func Of(err error) Code {
	if err == nil {
		return OK
	}
	if c, ok := err.(Code); ok {
		return c
	}
	type coder interface{ Code() Code }
	if x, ok := err.(coder); ok {
		return x.Code()
	}
	return IOError
}
