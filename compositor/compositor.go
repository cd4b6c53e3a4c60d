// Package compositor flattens a base picture and the bandana overlay into a
// single raster. Interactive draws the overlay with a user transform on a
// container-sized target; Fixed produces the canonical square layout.
package compositor

import (
	"image"
	"image/draw"
	"math"

	"github.com/mzterwalexzyy/bandana-editor/placement"
	xdraw "golang.org/x/image/draw"
)

// Interactive renders base stretched over a container-sized target with the
// overlay drawn through the placement affine mapping for box and t.
func Interactive(base, overlay image.Image, container placement.Size, box placement.Box, t placement.Transform) *image.RGBA {
	w := max(1, int(math.Round(container.W)))
	h := max(1, int(math.Round(container.H)))
	dst := image.NewRGBA(image.Rect(0, 0, w, h))

	if base != nil {
		xdraw.BiLinear.Scale(dst, dst.Bounds(), base, base.Bounds(), draw.Src, nil)
	}
	if overlay == nil || box.W <= 0 || box.H <= 0 {
		return dst
	}

	ob := overlay.Bounds()
	m := placement.DrawMatrix(box, t, placement.SizeOf(ob)).
		Multiply(placement.Translate(-float64(ob.Min.X), -float64(ob.Min.Y)))
	inv, ok := m.Invert()
	if !ok || !withinLimit(m) || !withinLimit(inv) {
		// Degenerate or near-degenerate skew: the overlay has no visible area.
		return dst
	}
	clip, ok := visibleRect(box, t, dst.Bounds())
	if !ok {
		return dst
	}

	interp := xdraw.Interpolator(xdraw.BiLinear)
	if shrink(inv) > maxKernelShrink {
		interp = xdraw.ApproxBiLinear
	}
	interp.Transform(dst.SubImage(clip).(*image.RGBA), m.Aff3(), overlay, ob, draw.Over, nil)
	return dst
}

const (
	// maxMatrixEntry bounds every coefficient of the draw mapping and its
	// inverse. Past it the overlay is a sub-pixel sliver and coordinates
	// overflow the rasterizer.
	maxMatrixEntry = 1e6
	// maxKernelShrink is the largest minification drawn with the BiLinear
	// kernel; its support widens with the shrink factor.
	maxKernelShrink = 32
)

func withinLimit(m placement.Matrix) bool {
	for _, v := range m.Aff3() {
		if math.IsNaN(v) || math.Abs(v) > maxMatrixEntry {
			return false
		}
	}
	return true
}

func shrink(inv placement.Matrix) float64 {
	return math.Max(
		math.Max(math.Abs(inv.A), math.Abs(inv.B)),
		math.Max(math.Abs(inv.D), math.Abs(inv.E)),
	)
}

// visibleRect intersects the transformed box with r in float space so huge
// corners never reach integer conversion.
func visibleRect(box placement.Box, t placement.Transform, r image.Rectangle) (image.Rectangle, bool) {
	pts := placement.Corners(box, t)
	minX, minY := math.Inf(1), math.Inf(1)
	maxX, maxY := math.Inf(-1), math.Inf(-1)
	for _, p := range pts {
		if math.IsNaN(p.X) || math.IsNaN(p.Y) || math.IsInf(p.X, 0) || math.IsInf(p.Y, 0) {
			return image.Rectangle{}, false
		}
		minX, maxX = math.Min(minX, p.X), math.Max(maxX, p.X)
		minY, maxY = math.Min(minY, p.Y), math.Max(maxY, p.Y)
	}
	minX = math.Max(minX, float64(r.Min.X))
	minY = math.Max(minY, float64(r.Min.Y))
	maxX = math.Min(maxX, float64(r.Max.X))
	maxY = math.Min(maxY, float64(r.Max.Y))
	if minX >= maxX || minY >= maxY {
		return image.Rectangle{}, false
	}
	clip := image.Rect(
		int(math.Floor(minX)), int(math.Floor(minY)),
		int(math.Ceil(maxX)), int(math.Ceil(maxY)),
	).Intersect(r)
	return clip, !clip.Empty()
}

// Fixed renders the size x size layout: base cover-fit and center-cropped
// full-bleed, overlay scaled to the fixed width ratio and placed without any
// rotation or skew.
func Fixed(base, overlay image.Image, size int) *image.RGBA {
	if size <= 0 {
		size = placement.DefaultCanvasSize
	}
	canvas := placement.Size{W: float64(size), H: float64(size)}
	dst := image.NewRGBA(image.Rect(0, 0, size, size))

	if base != nil {
		crop := placement.CoverCrop(base.Bounds(), canvas)
		xdraw.CatmullRom.Scale(dst, dst.Bounds(), base, crop, draw.Src, nil)
	}
	if overlay != nil {
		ob := overlay.Bounds()
		r := placement.FixedLayout(size, placement.SizeOf(ob))
		if !r.Empty() {
			xdraw.CatmullRom.Scale(dst, r, overlay, ob, draw.Over, nil)
		}
	}
	return dst
}
