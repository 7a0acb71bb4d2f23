package relay

import (
	"context"
	"fmt"
	"time"
)

// Policy decides how much of each stream one tick delivers.
type Policy string

const (
	// OnePerTick delivers at most one line per stream per tick. Under heavy
	// output the display lags behind production and catches up over later
	// ticks.
	OnePerTick Policy = "one"
	// DrainAll delivers every line buffered at the time of the tick.
	DrainAll Policy = "drain"
)

// ParsePolicy converts a configuration value into a Policy.
func ParsePolicy(s string) (Policy, error) {
	switch Policy(s) {
	case OnePerTick, DrainAll:
		return Policy(s), nil
	case "":
		return OnePerTick, nil
	}
	return "", fmt.Errorf("unknown relay policy %q", s)
}

type binding struct {
	stream  *Stream
	surface Surface
}

// Loop is the single consumer of its bound streams. Bind everything before
// calling Run; Tick and Flush must not be called concurrently with Run.
type Loop struct {
	Interval time.Duration
	Policy   Policy

	bindings []binding
}

// NewLoop creates a loop ticking every interval.
func NewLoop(interval time.Duration, policy Policy) *Loop {
	return &Loop{Interval: interval, Policy: policy}
}

// Bind routes s to surface.
func (l *Loop) Bind(s *Stream, surface Surface) {
	l.bindings = append(l.bindings, binding{stream: s, surface: surface})
}

// Tick delivers pending lines according to the policy, never blocking.
// It returns the number of lines delivered.
func (l *Loop) Tick() int {
	n := 0
	for _, b := range l.bindings {
		if l.Policy == DrainAll {
			n += drain(b, b.stream.Pending())
			continue
		}
		n += drain(b, 1)
	}
	return n
}

// Flush delivers everything currently buffered on every stream.
func (l *Loop) Flush() int {
	n := 0
	for _, b := range l.bindings {
		n += drain(b, b.stream.Pending())
	}
	return n
}

// Run ticks until ctx is done, then flushes what is left.
func (l *Loop) Run(ctx context.Context) {
	interval := l.Interval
	if interval <= 0 {
		interval = 100 * time.Millisecond
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			l.Flush()
			return
		case <-ticker.C:
			l.Tick()
		}
	}
}

func drain(b binding, max int) int {
	n := 0
	for n < max {
		line, ok := b.stream.TryTake()
		if !ok {
			break
		}
		b.surface.Append(line)
		n++
	}
	return n
}
