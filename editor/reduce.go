package editor

import (
	"github.com/mzterwalexzyy/bandana-editor/placement"
)

// Reduce applies ev to s and returns the new state. Events that are not
// valid in the current mode leave the state unchanged.
func Reduce(s State, ev Event) State {
	switch ev := ev.(type) {
	case Load:
		return load(s, ev)
	case PointerDown:
		return pointerDown(s, ev)
	case PointerMove:
		return pointerMove(s, ev)
	case PointerUp:
		if s.Mode == ModeDragging || s.Mode == ModeResizing {
			s.Mode = ModeIdle
		}
		return s
	case Frame:
		return frame(s, ev)
	case Adjust:
		return adjust(s, ev)
	case Focus:
		s.FileInputFocused = ev.FileInput
		return s
	case ResizeContainer:
		s.Container = ev.Size
		if s.Loaded {
			s.Box = placement.Clamp(s.Box, s.Container)
		}
		return s
	default:
		return s
	}
}

func load(s State, ev Load) State {
	if ev.Base == nil {
		return s
	}
	s.Base = ev.Base
	s.Loaded = true
	s.Mode = ModeIdle
	s.Box = placement.Initial(s.Container, s.Overlay)
	s.Transform = placement.Transform{}
	s.DragOffset = placement.Point{}
	return s
}

func pointerDown(s State, ev PointerDown) State {
	if !s.Loaded || s.Mode != ModeIdle {
		return s
	}
	switch ev.Target {
	case TargetHandle:
		s.Mode = ModeResizing
	case TargetOverlay:
		// The handle sits on top of the body; a press there never drags.
		if s.Box.OnHandle(ev.At) {
			return s
		}
		s.Mode = ModeDragging
		s.DragOffset = placement.Point{X: ev.At.X - s.Box.X, Y: ev.At.Y - s.Box.Y}
	}
	return s
}

func pointerMove(s State, ev PointerMove) State {
	switch s.Mode {
	case ModeDragging:
		s.Box.X = ev.At.X - s.DragOffset.X
		s.Box.Y = ev.At.Y - s.DragOffset.Y
		s.Box = placement.Clamp(s.Box, s.Container)
	case ModeResizing:
		s.Box = placement.Resize(s.Box, ev.At.X, s.Container, s.Aspect())
	}
	return s
}

func frame(s State, ev Frame) State {
	if !s.Loaded || s.FileInputFocused {
		return s
	}
	dx, dy := ev.Keys.Delta(placement.NudgeStep)
	if dx == 0 && dy == 0 {
		return s
	}
	s.Box = placement.Nudge(s.Box, dx, dy, s.Container)
	return s
}

func adjust(s State, ev Adjust) State {
	switch ev.Control {
	case ControlRotation:
		s.Transform.Rotation = ev.Value
	case ControlSkewX:
		s.Transform.SkewX = ev.Value
	case ControlSkewY:
		s.Transform.SkewY = ev.Value
	}
	return s
}

// changed reports whether b differs from a in anything a preview shows.
func changed(a, b State) bool {
	return a.Loaded != b.Loaded ||
		a.Box != b.Box ||
		a.Transform != b.Transform ||
		a.Container != b.Container
}
