// Package relay moves log lines from producer goroutines to display
// surfaces. Each stream is its own channel; a single Loop drains them on a
// fixed tick.
package relay

// Stream is an ordered message channel for one kind of log line. Any number
// of goroutines may Publish; exactly one Loop should consume.
type Stream struct {
	name string
	ch   chan string
}

// NewStream creates a stream buffering up to capacity lines.
func NewStream(name string, capacity int) *Stream {
	if capacity < 1 {
		capacity = 1
	}
	return &Stream{name: name, ch: make(chan string, capacity)}
}

// Name identifies the stream in diagnostics.
func (s *Stream) Name() string {
	return s.name
}

// Publish enqueues line. Lines are never dropped: when the buffer is full
// the producer waits for the consumer.
func (s *Stream) Publish(line string) {
	s.ch <- line
}

// Message makes a Stream usable as a runner.Sink.
func (s *Stream) Message(msg string) {
	s.Publish(msg)
}

// TryTake returns the oldest pending line without blocking.
func (s *Stream) TryTake() (string, bool) {
	select {
	case line := <-s.ch:
		return line, true
	default:
		return "", false
	}
}

// Pending returns the number of buffered lines.
func (s *Stream) Pending() int {
	return len(s.ch)
}
