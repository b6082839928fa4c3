// Package progress implements a step progressor: a position that advances in
// weighted units toward a fixed maximum, with a human-readable label.
package progress

import "fieldnorm/internal/logger"

// Step weights. Calculating a field touches every row and typically takes
// far longer than adding the column.
const (
	UnitsCreate    = 1
	UnitsCalculate = 5
)

// Observer is notified whenever the label or position changes.
type Observer func(label string, position, max int)

// Tracker is a single-goroutine step progressor.
type Tracker struct {
	max   int
	pos   int
	label string
	obs   []Observer
}

// New returns a Tracker with the given maximum.
func New(max int, obs ...Observer) *Tracker {
	if max < 0 {
		max = 0
	}
	return &Tracker{max: max, obs: obs}
}

// ForFields sizes a Tracker for n fields that are each created and then
// calculated.
func ForFields(n int, obs ...Observer) *Tracker {
	return New(n*UnitsCreate+n*UnitsCalculate, obs...)
}

// SetLabel changes the label and notifies observers.
func (t *Tracker) SetLabel(label string) {
	t.label = label
	t.notify()
}

// Advance moves the position forward by units, clamped to max.
func (t *Tracker) Advance(units int) {
	t.pos += units
	if t.pos > t.max {
		t.pos = t.max
	}
	t.notify()
}

// Percent returns the completed fraction in [0, 100].
func (t *Tracker) Percent() float64 {
	if t.max == 0 {
		return 100
	}
	return float64(t.pos) * 100 / float64(t.max)
}

func (t *Tracker) notify() {
	for _, o := range t.obs {
		o(t.label, t.pos, t.max)
	}
}

// LogObserver logs every change at debug level.
func LogObserver(l logger.Logger) Observer {
	return func(label string, position, max int) {
		l.Debug("progress", "label", label, "position", position, "max", max)
	}
}
