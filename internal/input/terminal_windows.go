//go:build windows

package input

import "golang.org/x/term"

// TerminalSource is a no-op on Windows, where stdin cannot be switched to
// non-blocking reads.
type TerminalSource struct {
	keypad      *Keypad
	interrupted chan struct{}
}

func NewTerminalSource(keypad *Keypad) *TerminalSource {
	return &TerminalSource{keypad: keypad, interrupted: make(chan struct{})}
}

func (s *TerminalSource) Start() error {
	if !term.IsTerminal(0) {
		return ErrNotTerminal
	}
	return ErrTerminalUnsupported
}

func (s *TerminalSource) Poll()                        {}
func (s *TerminalSource) Interrupted() <-chan struct{} { return s.interrupted }
func (s *TerminalSource) Stop()                        {}
