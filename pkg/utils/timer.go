package utils

import (
	"fmt"
	"strings"
	"sync"
	"time"
)

// phase is a single named timing span within a Timer.
type phase struct {
	name     string
	start    time.Time
	duration time.Duration
	done     bool
}

// Timer records named phases of a run (the runner times enumerate and
// persist) and renders a summary. Safe for concurrent use.
type Timer struct {
	mu     sync.Mutex
	name   string
	start  time.Time
	phases []*phase
	byName map[string]*phase
	clock  Clock
}

// NewTimer creates a Timer. A nil clock uses the real clock.
func NewTimer(name string, clock Clock) *Timer {
	if clock == nil {
		clock = NewRealClock()
	}
	return &Timer{
		name:   name,
		start:  clock.Now(),
		byName: make(map[string]*phase),
		clock:  clock,
	}
}

// StartPhase begins timing a named phase. Starting an already running phase
// restarts it.
func (t *Timer) StartPhase(name string) {
	t.mu.Lock()
	defer t.mu.Unlock()

	p, ok := t.byName[name]
	if !ok {
		p = &phase{name: name}
		t.byName[name] = p
		t.phases = append(t.phases, p)
	}
	p.start = t.clock.Now()
	p.done = false
}

// StopPhase stops a named phase and returns its duration. Stopping a phase
// that never started or already stopped returns its recorded duration.
func (t *Timer) StopPhase(name string) time.Duration {
	t.mu.Lock()
	defer t.mu.Unlock()

	p, ok := t.byName[name]
	if !ok {
		return 0
	}
	if !p.done {
		p.duration = t.clock.Since(p.start)
		p.done = true
	}
	return p.duration
}

// PhaseDuration returns the recorded duration of a phase, or 0 if unknown.
func (t *Timer) PhaseDuration(name string) time.Duration {
	t.mu.Lock()
	defer t.mu.Unlock()

	if p, ok := t.byName[name]; ok {
		return p.duration
	}
	return 0
}

// Total returns the time elapsed since the Timer was created.
func (t *Timer) Total() time.Duration {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.clock.Since(t.start)
}

// Summary renders the phases in insertion order, one line per phase.
func (t *Timer) Summary() string {
	t.mu.Lock()
	defer t.mu.Unlock()

	var sb strings.Builder
	fmt.Fprintf(&sb, "%s: total %v\n", t.name, t.clock.Since(t.start))
	for _, p := range t.phases {
		d := p.duration
		if !p.done {
			d = t.clock.Since(p.start)
		}
		fmt.Fprintf(&sb, "  %-12s %v\n", p.name, d)
	}
	return sb.String()
}

// LogSummary writes the summary through a Logger at info level.
func (t *Timer) LogSummary(logger Logger) {
	if logger == nil {
		return
	}
	for _, line := range strings.Split(strings.TrimRight(t.Summary(), "\n"), "\n") {
		logger.Info("%s", line)
	}
}
