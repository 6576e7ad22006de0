// Package gesture turns a continuous drag into a discrete swipe decision.
package gesture

import (
	"math"

	"github.com/humanbelnik/watchlist/internal/model"
)

const DefaultThreshold = 120.0

type PointerID = int64

// Offset is the card displacement from center.
type Offset struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Tracker follows one drag at a time. It is not safe for concurrent use;
// the owner of the input stream drives it.
type Tracker struct {
	threshold float64
	enabled   bool

	active  bool
	pointer PointerID
	originX float64
	originY float64
	offset  Offset
}

func NewTracker(threshold float64) *Tracker {
	if threshold <= 0 {
		threshold = DefaultThreshold
	}
	return &Tracker{
		threshold: threshold,
		enabled:   true,
	}
}

func (t *Tracker) Threshold() float64 {
	return t.threshold
}

// SetEnabled gates new drags. Disabling drops a drag in progress back to
// center: nothing may be committed while a previous swipe is settling.
func (t *Tracker) SetEnabled(enabled bool) {
	t.enabled = enabled
	if !enabled {
		t.reset()
	}
}

func (t *Tracker) Enabled() bool {
	return t.enabled
}

func (t *Tracker) Active() bool {
	return t.active
}

func (t *Tracker) Offset() Offset {
	return t.offset
}

// Begin claims the drag for pointer. A second pointer is ignored until the
// owner ends.
func (t *Tracker) Begin(pointer PointerID, x, y float64) bool {
	if !t.enabled || t.active {
		return false
	}
	t.active = true
	t.pointer = pointer
	t.originX = x
	t.originY = y
	t.offset = Offset{}
	return true
}

func (t *Tracker) Move(pointer PointerID, x, y float64) (Offset, bool) {
	if !t.owns(pointer) {
		return t.offset, false
	}
	t.offset = Offset{X: x - t.originX, Y: y - t.originY}
	return t.offset, true
}

// Release ends the drag. Past the threshold to the right is a like, to the
// left a nope; anything shorter snaps back with no decision.
func (t *Tracker) Release(pointer PointerID) (model.Decision, bool) {
	if !t.owns(pointer) {
		return model.DecisionNone, false
	}
	d := t.classify(t.offset.X)
	t.reset()
	return d, d != model.DecisionNone
}

// Cancel handles a lost pointer: back to center, nothing committed.
func (t *Tracker) Cancel(pointer PointerID) {
	if t.owns(pointer) {
		t.reset()
	}
}

func (t *Tracker) classify(dx float64) model.Decision {
	if math.Abs(dx) <= t.threshold {
		return model.DecisionNone
	}
	if dx > 0 {
		return model.DecisionLike
	}
	return model.DecisionNope
}

func (t *Tracker) owns(pointer PointerID) bool {
	return t.active && t.pointer == pointer
}

func (t *Tracker) reset() {
	t.active = false
	t.pointer = 0
	t.offset = Offset{}
}
