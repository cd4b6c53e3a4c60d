// Package placement holds the geometry shared by the interactive editor and
// the fixed-layout compositor: the overlay box, its clamp against the
// container, and the affine mapping used to draw the overlay.
package placement

import (
	"image"
	"math"
)

const (
	// InitialWidthRatio is the overlay width, relative to the container
	// width, used when a base image is first loaded.
	InitialWidthRatio = 0.8
	// InitialTopRatio is the initial top offset relative to container height.
	InitialTopRatio = 0.075

	// MinWidth is the smallest overlay width a resize gesture can produce.
	MinWidth = 50.0
	// NudgeStep is the distance moved per frame per held arrow key.
	NudgeStep = 10.0
	// HandleSize is the side of the square resize handle at the box's
	// bottom-right corner.
	HandleSize = 16.0

	// FixedWidthRatio is the overlay width relative to the fixed canvas side.
	FixedWidthRatio = 0.55
	// FixedTopRatio is the overlay top offset relative to the fixed canvas
	// side. It differs from InitialTopRatio on purpose; the two paths were
	// tuned separately.
	FixedTopRatio = 0.05
	// DefaultCanvasSize is the side of the fixed-layout output.
	DefaultCanvasSize = 512
)

// Point is a position in container space.
type Point struct {
	X, Y float64
}

// Size is a width and height in container space or in pixels.
type Size struct {
	W, H float64
}

// SizeOf returns the pixel dimensions of r.
func SizeOf(r image.Rectangle) Size {
	return Size{W: float64(r.Dx()), H: float64(r.Dy())}
}

// Aspect returns H/W, or 1 for a degenerate size.
func (s Size) Aspect() float64 {
	if s.W <= 0 || s.H <= 0 {
		return 1
	}
	return s.H / s.W
}

// Box is the overlay's axis-aligned bounding box before rotation and skew.
type Box struct {
	X, Y, W, H float64
}

// Center returns the box center.
func (b Box) Center() Point {
	return Point{X: b.X + b.W/2, Y: b.Y + b.H/2}
}

// Contains reports whether p lies inside the box, edges included.
func (b Box) Contains(p Point) bool {
	return p.X >= b.X && p.X <= b.X+b.W && p.Y >= b.Y && p.Y <= b.Y+b.H
}

// OnHandle reports whether p lies on the resize handle.
func (b Box) OnHandle(p Point) bool {
	right, bottom := b.X+b.W, b.Y+b.H
	return p.X >= right-HandleSize && p.X <= right &&
		p.Y >= bottom-HandleSize && p.Y <= bottom
}

// Transform is the rotation and skew applied around the box center, all in
// degrees. Values are not range-restricted.
type Transform struct {
	Rotation float64 `json:"rotation" form:"rotation"`
	SkewX    float64 `json:"skew_x" form:"skew_x"`
	SkewY    float64 `json:"skew_y" form:"skew_y"`
}

// IsZero reports whether t leaves the box untouched.
func (t Transform) IsZero() bool {
	return t.Rotation == 0 && t.SkewX == 0 && t.SkewY == 0
}

// Clamp restricts the box's top-left corner to the container. When the box
// is larger than the container along an axis, that coordinate becomes 0, as
// does a NaN coordinate.
func Clamp(b Box, container Size) Box {
	b.X = clampAxis(b.X, container.W-b.W)
	b.Y = clampAxis(b.Y, container.H-b.H)
	return b
}

func clampAxis(v, limit float64) float64 {
	if math.IsNaN(v) || math.IsNaN(limit) {
		return 0
	}
	return math.Max(0, math.Min(v, limit))
}

// Initial returns the box used right after a base image is loaded: 80% of
// the container width, aspect locked to the overlay, centered horizontally
// and 7.5% down from the top.
func Initial(container, overlay Size) Box {
	w := container.W * InitialWidthRatio
	h := w * overlay.Aspect()
	return Box{
		X: (container.W - w) / 2,
		Y: container.H * InitialTopRatio,
		W: w,
		H: h,
	}
}

// Resize drags the box's right edge to pointerX while keeping the top-left
// fixed and the height locked to aspect (H/W). The result is re-clamped.
func Resize(b Box, pointerX float64, container Size, aspect float64) Box {
	w := pointerX - b.X
	h := w * aspect

	w = math.Max(MinWidth, math.Min(w, container.W-b.X))
	h = math.Max(MinWidth*aspect, math.Min(h, container.H-b.Y))

	// Height follows width; the container bound above may only shrink it,
	// in which case width is derived back so the aspect stays exact.
	if h < w*aspect {
		w = h / aspect
	} else {
		h = w * aspect
	}

	b.W, b.H = w, h
	return Clamp(b, container)
}

// Nudge offsets the box by (dx, dy) and clamps it.
func Nudge(b Box, dx, dy float64, container Size) Box {
	b.X += dx
	b.Y += dy
	return Clamp(b, container)
}

func radians(deg float64) float64 {
	return deg * math.Pi / 180
}

// OverlayMatrix maps the box's centered local space to container space:
// translate to the center, then shear, then rotate, in that call order.
func OverlayMatrix(b Box, t Transform) Matrix {
	c := b.Center()
	return Translate(c.X, c.Y).
		Multiply(Shear(math.Tan(radians(t.SkewX)), math.Tan(radians(t.SkewY)))).
		Multiply(Rotate(radians(t.Rotation)))
}

// DrawMatrix maps overlay source pixels (of size src) to container space so
// the overlay fills the box before the transform is applied.
func DrawMatrix(b Box, t Transform, src Size) Matrix {
	sx, sy := 1.0, 1.0
	if src.W > 0 {
		sx = b.W / src.W
	}
	if src.H > 0 {
		sy = b.H / src.H
	}
	return OverlayMatrix(b, t).
		Multiply(Translate(-b.W/2, -b.H/2)).
		Multiply(Scale(sx, sy))
}

// Corners returns the transformed box corners in the order top-left,
// top-right, bottom-right, bottom-left.
func Corners(b Box, t Transform) [4]Point {
	return cornersWith(b, OverlayMatrix(b, t))
}

func cornersWith(b Box, m Matrix) [4]Point {
	hw, hh := b.W/2, b.H/2
	return [4]Point{
		m.Apply(Point{X: -hw, Y: -hh}),
		m.Apply(Point{X: hw, Y: -hh}),
		m.Apply(Point{X: hw, Y: hh}),
		m.Apply(Point{X: -hw, Y: hh}),
	}
}

// Bounds returns the smallest integer rectangle covering the transformed box.
func Bounds(b Box, t Transform) image.Rectangle {
	pts := Corners(b, t)
	minX, minY := pts[0].X, pts[0].Y
	maxX, maxY := minX, minY
	for _, p := range pts[1:] {
		minX, maxX = math.Min(minX, p.X), math.Max(maxX, p.X)
		minY, maxY = math.Min(minY, p.Y), math.Max(maxY, p.Y)
	}
	return image.Rect(
		int(math.Floor(minX)), int(math.Floor(minY)),
		int(math.Ceil(maxX)), int(math.Ceil(maxY)),
	)
}

// CoverCrop returns the centered region of src that, scaled uniformly, fills
// a dst-sized target with no letterboxing.
func CoverCrop(src image.Rectangle, dst Size) image.Rectangle {
	sw, sh := float64(src.Dx()), float64(src.Dy())
	if sw <= 0 || sh <= 0 || dst.W <= 0 || dst.H <= 0 {
		return src
	}
	scale := math.Max(dst.W/sw, dst.H/sh)
	cw := min(src.Dx(), max(1, int(math.Round(dst.W/scale))))
	ch := min(src.Dy(), max(1, int(math.Round(dst.H/scale))))
	x0 := src.Min.X + (src.Dx()-cw)/2
	y0 := src.Min.Y + (src.Dy()-ch)/2
	return image.Rect(x0, y0, x0+cw, y0+ch)
}

// FixedLayout returns where the overlay lands on a size x size canvas: width
// floor(0.55*size) without enlarging past the overlay's own width, aspect
// preserved, capped to the canvas, centered horizontally and
// floor(0.05*size) from the top.
func FixedLayout(size int, overlay Size) image.Rectangle {
	if size <= 0 || overlay.W <= 0 || overlay.H <= 0 {
		return image.Rectangle{}
	}
	aspect := overlay.Aspect()

	w := int(math.Floor(float64(size) * FixedWidthRatio))
	if float64(w) > overlay.W {
		w = int(overlay.W)
	}
	h := int(math.Round(float64(w) * aspect))
	if h > size {
		h = size
		w = int(math.Round(float64(size) / aspect))
	}
	w = min(max(w, 1), size)
	h = max(h, 1)

	left := max(0, (size-w)/2)
	top := int(math.Floor(float64(size) * FixedTopRatio))
	return image.Rect(left, top, left+w, top+h)
}
