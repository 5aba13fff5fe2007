//go:build !windows

package input

import (
	"fmt"
	"os"
	"sync"
	"syscall"
	"time"

	"golang.org/x/term"
)

const (
	keyQueueSize = 64
	ctrlC        = 0x03
	pollInterval = 5 * time.Millisecond
)

// TerminalSource reads raw stdin and taps keypad buttons through KeyMap.
// Keys are queued by a reader goroutine and applied by Poll on the
// emulation goroutine.
type TerminalSource struct {
	keypad      *Keypad
	keys        chan byte
	interrupted chan struct{}
	stopCh      chan struct{}
	done        chan struct{}
	stopped     sync.Once
	interrupt   sync.Once
	fd          int
	nonblockSet bool
	oldState    *term.State
}

// NewTerminalSource creates a source that feeds the given keypad.
func NewTerminalSource(keypad *Keypad) *TerminalSource {
	return &TerminalSource{
		keypad:      keypad,
		keys:        make(chan byte, keyQueueSize),
		interrupted: make(chan struct{}),
		stopCh:      make(chan struct{}),
		done:        make(chan struct{}),
	}
}

// Start puts stdin in raw non-blocking mode and begins reading keys. Call
// Stop to restore the terminal.
func (s *TerminalSource) Start() error {
	s.fd = int(os.Stdin.Fd())
	if !term.IsTerminal(s.fd) {
		close(s.done)
		return ErrNotTerminal
	}

	oldState, err := term.MakeRaw(s.fd)
	if err != nil {
		close(s.done)
		return fmt.Errorf("set raw mode: %w", err)
	}
	s.oldState = oldState

	if err := syscall.SetNonblock(s.fd, true); err != nil {
		_ = term.Restore(s.fd, s.oldState)
		s.oldState = nil
		close(s.done)
		return fmt.Errorf("set nonblocking stdin: %w", err)
	}
	s.nonblockSet = true

	go s.readLoop()
	return nil
}

func (s *TerminalSource) readLoop() {
	defer close(s.done)
	buf := make([]byte, 1)

	for {
		select {
		case <-s.stopCh:
			return
		default:
		}

		n, err := syscall.Read(s.fd, buf)
		if n > 0 {
			s.route(buf[0])
		}
		if err == syscall.EAGAIN || err == syscall.EWOULDBLOCK {
			time.Sleep(pollInterval)
			continue
		}
		if err != nil {
			return
		}
		if n == 0 {
			time.Sleep(pollInterval)
		}
	}
}

func (s *TerminalSource) route(b byte) {
	// Raw mode swallows SIGINT, so Ctrl-C arrives as a byte.
	if b == ctrlC {
		s.interrupt.Do(func() { close(s.interrupted) })
		return
	}
	select {
	case s.keys <- b:
	default:
		// Queue full; the emulator is not polling fast enough.
	}
}

// Poll applies every queued key to the keypad.
func (s *TerminalSource) Poll() {
	for {
		select {
		case b := <-s.keys:
			s.keypad.PressKey(b)
		default:
			return
		}
	}
}

// Interrupted is closed when Ctrl-C is read from the terminal.
func (s *TerminalSource) Interrupted() <-chan struct{} {
	return s.interrupted
}

// Stop terminates the reader goroutine and restores stdin.
func (s *TerminalSource) Stop() {
	s.stopped.Do(func() {
		close(s.stopCh)
	})
	<-s.done
	if s.nonblockSet {
		_ = syscall.SetNonblock(s.fd, false)
		s.nonblockSet = false
	}
	if s.oldState != nil {
		_ = term.Restore(s.fd, s.oldState)
		s.oldState = nil
	}
}
