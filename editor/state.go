// Package editor models the interactive bandana editor as explicit state and
// pure reducers. A Session serializes events, runs the per-frame keyboard
// poll and invokes a Renderer after every visible change.
package editor

import (
	"errors"
	"fmt"
	"image"
	"math"

	"github.com/mzterwalexzyy/bandana-editor/compositor"
	"github.com/mzterwalexzyy/bandana-editor/placement"
)

// ErrNotLoaded is returned by Export before a base image is supplied.
var ErrNotLoaded = errors.New("editor: no base image loaded")

// Mode is the gesture state of the editor.
type Mode int

const (
	ModeEmpty Mode = iota
	ModeIdle
	ModeDragging
	ModeResizing
)

func (m Mode) String() string {
	switch m {
	case ModeEmpty:
		return "empty"
	case ModeIdle:
		return "idle"
	case ModeDragging:
		return "dragging"
	case ModeResizing:
		return "resizing"
	default:
		return "unknown"
	}
}

// State is the whole editor. It is a value; reducers return modified copies.
type State struct {
	Container placement.Size
	Overlay   placement.Size
	Base      image.Image
	Loaded    bool
	Mode      Mode
	Box       placement.Box
	Transform placement.Transform

	// DragOffset is the pointer position relative to the box top-left
	// recorded when a drag begins.
	DragOffset placement.Point
	// FileInputFocused suppresses keyboard nudging while the file picker
	// has focus.
	FileInputFocused bool
}

// New returns an empty editor for a container and an overlay of the given
// intrinsic size.
func New(container, overlay placement.Size) State {
	return State{
		Container: container,
		Overlay:   overlay,
		Mode:      ModeEmpty,
	}
}

// Aspect returns the overlay's locked H/W ratio.
func (s State) Aspect() float64 {
	return s.Overlay.Aspect()
}

// Corners returns the preview polygon of the overlay.
func (s State) Corners() [4]placement.Point {
	return placement.Corners(s.Box, s.Transform)
}

// HitTest reports what a pointer at p is over. The resize handle wins over
// the overlay body.
func (s State) HitTest(p placement.Point) Target {
	if !s.Loaded {
		return TargetNone
	}
	switch {
	case s.Box.OnHandle(p):
		return TargetHandle
	case s.Box.Contains(p):
		return TargetOverlay
	default:
		return TargetNone
	}
}

// Status formats the position readout shown under the editor.
func (s State) Status() string {
	return fmt.Sprintf("X:%d, Y:%d, W:%d, H:%d, R:%g°, SX:%g°, SY:%g°",
		round(s.Box.X), round(s.Box.Y), round(s.Box.W), round(s.Box.H),
		s.Transform.Rotation, s.Transform.SkewX, s.Transform.SkewY)
}

func round(v float64) int {
	return int(math.Round(v))
}

// Export rasterizes the current state onto a container-sized image.
func Export(s State, overlay image.Image) (*image.RGBA, error) {
	if !s.Loaded || s.Base == nil {
		return nil, ErrNotLoaded
	}
	return compositor.Interactive(s.Base, overlay, s.Container, s.Box, s.Transform), nil
}
