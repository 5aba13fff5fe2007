package input

import "errors"

var (
	// ErrNotTerminal is returned when stdin is not an interactive terminal.
	ErrNotTerminal = errors.New("stdin is not a terminal")

	// ErrTerminalUnsupported is returned on platforms without raw stdin reads.
	ErrTerminalUnsupported = errors.New("terminal input is not supported on this platform")
)
