package relay

import (
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/fatih/color"
	"github.com/mattn/go-isatty"
)

// Surface displays lines, newest last.
type Surface interface {
	Append(line string)
}

// Writer renders lines to a terminal with a colored label.
type Writer struct {
	mu    sync.Mutex
	out   io.Writer
	label string
}

// NewWriter creates a Writer. attr picks the label color; the label is
// colored only when out is a terminal and NO_COLOR is unset.
func NewWriter(out io.Writer, label string, attr color.Attribute) *Writer {
	c := color.New(attr, color.Bold)
	if isTerminal(out) && os.Getenv("NO_COLOR") == "" {
		c.EnableColor()
	} else {
		c.DisableColor()
	}
	return &Writer{out: out, label: c.Sprint(label)}
}

// isTerminal reports whether w writes to a terminal. Wrappers can expose
// the underlying descriptor through an Fd method.
func isTerminal(w io.Writer) bool {
	f, ok := w.(interface{ Fd() uintptr })
	if !ok {
		return false
	}
	fd := f.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

// Append writes one labeled line.
func (w *Writer) Append(line string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	fmt.Fprintf(w.out, "%s %s\n", w.label, line)
}

// Scrollback keeps the most recent lines in memory.
type Scrollback struct {
	mu    sync.Mutex
	max   int
	lines []string
}

// NewScrollback keeps up to max lines; older ones fall off the top.
func NewScrollback(max int) *Scrollback {
	if max < 1 {
		max = 1
	}
	return &Scrollback{max: max}
}

// Append adds a line at the bottom.
func (s *Scrollback) Append(line string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lines = append(s.lines, line)
	if over := len(s.lines) - s.max; over > 0 {
		s.lines = append(s.lines[:0:0], s.lines[over:]...)
	}
}

// Tail returns up to n most recent lines, oldest first. n <= 0 returns all.
func (s *Scrollback) Tail(n int) []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	start := 0
	if n > 0 && n < len(s.lines) {
		start = len(s.lines) - n
	}
	return append([]string(nil), s.lines[start:]...)
}

// Len returns the number of retained lines.
func (s *Scrollback) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.lines)
}

// Clear empties the scrollback.
func (s *Scrollback) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lines = nil
}

type tee []Surface

func (t tee) Append(line string) {
	for _, s := range t {
		s.Append(line)
	}
}

// Tee returns a Surface appending to every non-nil surface in order.
func Tee(surfaces ...Surface) Surface {
	var t tee
	for _, s := range surfaces {
		if s != nil {
			t = append(t, s)
		}
	}
	if len(t) == 1 {
		return t[0]
	}
	return t
}
