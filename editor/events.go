package editor

import (
	"image"

	"github.com/mzterwalexzyy/bandana-editor/placement"
)

// Target is the element a pointer went down on.
type Target int

const (
	TargetNone Target = iota
	TargetOverlay
	TargetHandle
)

// Control identifies a transform slider.
type Control int

const (
	ControlRotation Control = iota
	ControlSkewX
	ControlSkewY
)

// Event is an input delivered to Reduce.
type Event interface {
	event()
}

// Load supplies the base picture.
type Load struct {
	Base image.Image
}

// PointerDown starts a drag on the overlay or a resize on the handle.
type PointerDown struct {
	At     placement.Point
	Target Target
}

// PointerMove continues the active gesture.
type PointerMove struct {
	At placement.Point
}

// PointerUp ends the active gesture.
type PointerUp struct{}

// Frame is one animation tick carrying the arrow keys currently held.
type Frame struct {
	Keys Keys
}

// Adjust sets one transform control to Value degrees.
type Adjust struct {
	Control Control
	Value   float64
}

// Focus reports whether the file input holds keyboard focus.
type Focus struct {
	FileInput bool
}

// ResizeContainer updates the rendered container size.
type ResizeContainer struct {
	Size placement.Size
}

func (Load) event()            {}
func (PointerDown) event()     {}
func (PointerMove) event()     {}
func (PointerUp) event()       {}
func (Frame) event()           {}
func (Adjust) event()          {}
func (Focus) event()           {}
func (ResizeContainer) event() {}

// Keys is the set of arrow keys held down.
type Keys uint8

const (
	KeyLeft Keys = 1 << iota
	KeyRight
	KeyUp
	KeyDown
)

// ParseKey maps a DOM key name to its Keys bit; unknown names map to 0.
func ParseKey(name string) Keys {
	switch name {
	case "ArrowLeft":
		return KeyLeft
	case "ArrowRight":
		return KeyRight
	case "ArrowUp":
		return KeyUp
	case "ArrowDown":
		return KeyDown
	default:
		return 0
	}
}

// Has reports whether every bit of k is set.
func (ks Keys) Has(k Keys) bool {
	return k != 0 && ks&k == k
}

// Delta returns the per-frame offset for the held keys.
func (ks Keys) Delta(step float64) (dx, dy float64) {
	if ks.Has(KeyRight) {
		dx += step
	}
	if ks.Has(KeyLeft) {
		dx -= step
	}
	if ks.Has(KeyDown) {
		dy += step
	}
	if ks.Has(KeyUp) {
		dy -= step
	}
	return dx, dy
}
