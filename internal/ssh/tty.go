// Package ssh adapts gliderlabs/ssh sessions to tcell screens.
package ssh

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"sync"

	"github.com/gdamore/tcell/v2"
	gossh "github.com/gliderlabs/ssh"
)

// ErrNoPTY is returned for sessions opened without a pseudo-terminal.
var ErrNoPTY = errors.New("session has no PTY")

// DefaultTerm is assumed when the client does not announce a terminal.
const DefaultTerm = "xterm-256color"

// Tty implements tcell.Tty on top of one SSH session.
type Tty struct {
	session gossh.Session
	term    string

	mu     sync.Mutex
	window gossh.Window
	winCh  <-chan gossh.Window
	cb     func()
	once   sync.Once
}

// NewTty wraps s, which must have requested a PTY.
func NewTty(s gossh.Session) (*Tty, error) {
	pty, winCh, ok := s.Pty()
	if !ok {
		return nil, ErrNoPTY
	}
	return &Tty{
		session: s,
		term:    sessionTerm(pty, s.Environ()),
		window:  pty.Window,
		winCh:   winCh,
	}, nil
}

// sessionTerm prefers the PTY request's terminal, then TERM from the
// session environment.
func sessionTerm(pty gossh.Pty, environ []string) string {
	if pty.Term != "" {
		return pty.Term
	}
	for _, env := range environ {
		if term, ok := strings.CutPrefix(env, "TERM="); ok && term != "" {
			return term
		}
	}
	return DefaultTerm
}

// Term is the client's terminal type.
func (t *Tty) Term() string { return t.term }

func (t *Tty) Read(b []byte) (int, error)  { return t.session.Read(b) }
func (t *Tty) Write(b []byte) (int, error) { return t.session.Write(b) }
func (t *Tty) Close() error                { return t.session.Close() }

// Start, Stop and Drain are no-ops: the server handler owns the channel.
func (t *Tty) Start() error { return nil }
func (t *Tty) Stop() error  { return nil }
func (t *Tty) Drain() error { return nil }

// WindowSize returns the latest terminal dimensions.
func (t *Tty) WindowSize() (tcell.WindowSize, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	return tcell.WindowSize{Width: t.window.Width, Height: t.window.Height}, nil
}

// NotifyResize registers cb for window changes. The first call starts
// draining the session's window channel; later calls only swap cb.
func (t *Tty) NotifyResize(cb func()) {
	t.mu.Lock()
	t.cb = cb
	t.mu.Unlock()

	t.once.Do(func() {
		go func() {
			for win := range t.winCh {
				t.mu.Lock()
				t.window = win
				localCb := t.cb
				t.mu.Unlock()
				if localCb != nil {
					localCb()
				}
			}
		}()
	})
}

// termMu serializes the TERM environment swap that terminfo lookup needs.
var termMu sync.Mutex

// NewScreen creates an initialized tcell screen drawing to tty.
func NewScreen(tty *Tty) (tcell.Screen, error) {
	termMu.Lock()
	prev, had := os.LookupEnv("TERM")
	_ = os.Setenv("TERM", tty.Term())
	screen, err := tcell.NewTerminfoScreenFromTty(tty)
	if had {
		_ = os.Setenv("TERM", prev)
	} else {
		_ = os.Unsetenv("TERM")
	}
	termMu.Unlock()
	if err != nil {
		return nil, fmt.Errorf("terminal %q: %w", tty.Term(), err)
	}
	if err := screen.Init(); err != nil {
		return nil, fmt.Errorf("screen init: %w", err)
	}
	return screen, nil
}
