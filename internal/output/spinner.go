package output

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"golang.org/x/term"
)

var spinnerFrames = []rune("⠋⠙⠹⠸⠼⠴⠦⠧⠇⠏")

// Spinner displays an animated braille spinner on a writer (typically
// stderr). Update and Progress may be called from any goroutine. A nil
// *Spinner is valid and does nothing.
type Spinner struct {
	mu      sync.Mutex
	w       io.Writer
	message string
	width   int
	done    chan struct{}
	stopped bool
}

// NewSpinner creates a spinner that writes to w.
func NewSpinner(w io.Writer) *Spinner {
	return &Spinner{w: w}
}

// IsTerminal reports whether f is attached to a terminal.
func IsTerminal(f *os.File) bool {
	return f != nil && term.IsTerminal(int(f.Fd()))
}

// NewTerminalSpinner returns a spinner on f, or nil when f is not a
// terminal so redirected output stays free of control characters.
func NewTerminalSpinner(f *os.File) *Spinner {
	if !IsTerminal(f) {
		return nil
	}
	return NewSpinner(f)
}

// Start begins the spinner animation with the given message.
func (s *Spinner) Start(message string) {
	if s == nil {
		return
	}
	s.mu.Lock()
	s.message = message
	s.width = len(message)
	s.done = make(chan struct{})
	s.stopped = false
	s.mu.Unlock()

	go s.loop()
}

// Update changes the displayed message while the spinner is running.
func (s *Spinner) Update(message string) {
	if s == nil {
		return
	}
	s.mu.Lock()
	s.message = message
	s.width = max(s.width, len(message))
	s.mu.Unlock()
}

// Progress shows how many of total files have been checked. Its
// signature matches scanner.ProgressFunc.
func (s *Spinner) Progress(done, total int) {
	s.Update(fmt.Sprintf("Checking files... %d/%d", done, total))
}

// Stop halts the spinner and clears its line. It is idempotent.
func (s *Spinner) Stop() {
	if s == nil {
		return
	}
	s.mu.Lock()
	if s.stopped || s.done == nil {
		s.mu.Unlock()
		return
	}
	s.stopped = true
	s.mu.Unlock()

	close(s.done)

	s.mu.Lock()
	fmt.Fprintf(s.w, "\r%s\r", strings.Repeat(" ", s.width+4))
	s.mu.Unlock()
}

func (s *Spinner) loop() {
	tick := time.NewTicker(80 * time.Millisecond)
	defer tick.Stop()

	for i := 0; ; i++ {
		select {
		case <-s.done:
			return
		case <-tick.C:
			s.mu.Lock()
			if s.stopped {
				s.mu.Unlock()
				return
			}
			// pad to overwrite leftovers of a longer previous message
			fmt.Fprintf(s.w, "\r%c %-*s", spinnerFrames[i%len(spinnerFrames)], s.width, s.message)
			s.mu.Unlock()
		}
	}
}
