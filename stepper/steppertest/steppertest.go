// Package steppertest has fake lines and a virtual clock for testing code that drives a stepper.
package steppertest

import (
	"sync"
	"time"
)

// Event is a single write to a Line
type Event struct {
	Line  string
	Value bool
	At    time.Duration
}

// Recorder is a virtual Clock shared by the Lines it creates. Writes are recorded with the
// virtual time they happened at, and Sleep advances virtual time without blocking
type Recorder struct {
	mtx    sync.Mutex
	now    time.Duration
	events []Event
	sleeps []time.Duration
}

func NewRecorder() *Recorder {
	return &Recorder{}
}

// Line creates a new Line that records to this Recorder
func (r *Recorder) Line(name string) *Line {
	return &Line{name: name, r: r}
}

// Sleep implements stepper.Clock. Non-positive durations are recorded but don't advance time
func (r *Recorder) Sleep(d time.Duration) {
	r.mtx.Lock()
	defer r.mtx.Unlock()

	r.sleeps = append(r.sleeps, d)
	if d > 0 {
		r.now += d
	}
}

// Elapsed is the total virtual time slept
func (r *Recorder) Elapsed() time.Duration {
	r.mtx.Lock()
	defer r.mtx.Unlock()
	return r.now
}

// Sleeps returns every duration passed to Sleep
func (r *Recorder) Sleeps() []time.Duration {
	r.mtx.Lock()
	defer r.mtx.Unlock()
	return append([]time.Duration(nil), r.sleeps...)
}

// Events returns all writes in order
func (r *Recorder) Events() []Event {
	r.mtx.Lock()
	defer r.mtx.Unlock()
	return append([]Event(nil), r.events...)
}

// Values returns the values written to the named line in order
func (r *Recorder) Values(line string) []bool {
	r.mtx.Lock()
	defer r.mtx.Unlock()

	var values []bool
	for _, e := range r.events {
		if e.Line == line {
			values = append(values, e.Value)
		}
	}
	return values
}

// Reset clears recorded events and sleeps and rewinds the clock. Line levels are kept
func (r *Recorder) Reset() {
	r.mtx.Lock()
	defer r.mtx.Unlock()

	r.now = 0
	r.events = nil
	r.sleeps = nil
}

func (r *Recorder) record(line string, value bool) {
	r.mtx.Lock()
	defer r.mtx.Unlock()
	r.events = append(r.events, Event{Line: line, Value: value, At: r.now})
}

// Line implements stepper.DigitalLine
type Line struct {
	name  string
	r     *Recorder
	level bool

	// Err is returned by Set when it is not nil. Nothing is recorded in that case
	Err error
}

func (l *Line) Set(value bool) error {
	if l.Err != nil {
		return l.Err
	}
	l.level = value
	l.r.record(l.name, value)
	return nil
}

func (l *Line) Get() bool {
	return l.level
}
