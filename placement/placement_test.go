package placement

import (
	"image"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const eps = 1e-9

func TestClamp(t *testing.T) {
	container := Size{W: 400, H: 300}

	tests := []struct {
		name  string
		box   Box
		wantX float64
		wantY float64
	}{
		{"inside", Box{X: 10, Y: 20, W: 100, H: 50}, 10, 20},
		{"negative", Box{X: -30, Y: -1, W: 100, H: 50}, 0, 0},
		{"past right and bottom", Box{X: 390, Y: 290, W: 100, H: 50}, 300, 250},
		{"exact fit", Box{X: 0, Y: 0, W: 400, H: 300}, 0, 0},
		{"wider than container", Box{X: 50, Y: 10, W: 500, H: 50}, 0, 10},
		{"taller than container", Box{X: 50, Y: 10, W: 100, H: 900}, 50, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Clamp(tt.box, container)
			assert.Equal(t, tt.wantX, got.X)
			assert.Equal(t, tt.wantY, got.Y)
			assert.Equal(t, tt.box.W, got.W)
			assert.Equal(t, tt.box.H, got.H)
		})
	}
}

func TestClampNaN(t *testing.T) {
	c := Size{W: 100, H: 100}

	b := Clamp(Box{X: math.NaN(), Y: math.NaN(), W: 10, H: 10}, c)
	assert.Equal(t, 0.0, b.X)
	assert.Equal(t, 0.0, b.Y)

	b = Clamp(Box{X: 30, Y: 40, W: math.NaN(), H: 10}, c)
	assert.Equal(t, 0.0, b.X)
	assert.Equal(t, 40.0, b.Y)
}

func TestClampContainment(t *testing.T) {
	container := Size{W: 320, H: 240}
	for x := -500.0; x <= 500; x += 37 {
		for w := 10.0; w <= 600; w += 53 {
			got := Clamp(Box{X: x, Y: x, W: w, H: w}, container)
			if w > container.W {
				assert.Zero(t, got.X)
			} else {
				assert.GreaterOrEqual(t, got.X, 0.0)
				assert.LessOrEqual(t, got.X, container.W-w)
			}
			if w > container.H {
				assert.Zero(t, got.Y)
			} else {
				assert.GreaterOrEqual(t, got.Y, 0.0)
				assert.LessOrEqual(t, got.Y, container.H-w)
			}
		}
	}
}

func TestInitial(t *testing.T) {
	box := Initial(Size{W: 500, H: 400}, Size{W: 1000, H: 250})

	assert.InDelta(t, 400, box.W, eps)
	assert.InDelta(t, 100, box.H, eps)
	assert.InDelta(t, 50, box.X, eps)
	assert.InDelta(t, 30, box.Y, eps)
}

func TestResizeKeepsAspect(t *testing.T) {
	container := Size{W: 500, H: 500}
	aspect := 0.4
	start := Box{X: 100, Y: 100, W: 200, H: 80}

	for _, px := range []float64{-100, 0, 120, 149, 150, 260, 400, 600, 1e6} {
		got := Resize(start, px, container, aspect)
		require.Greater(t, got.W, 0.0)
		assert.InDelta(t, aspect, got.H/got.W, 1e-9, "pointer %v", px)
		assert.LessOrEqual(t, got.X+got.W, container.W+eps)
		assert.LessOrEqual(t, got.Y+got.H, container.H+eps)
	}
}

func TestResizeBounds(t *testing.T) {
	container := Size{W: 500, H: 500}
	start := Box{X: 100, Y: 100, W: 200, H: 100}

	small := Resize(start, 110, container, 0.5)
	assert.InDelta(t, MinWidth, small.W, eps)
	assert.InDelta(t, MinWidth*0.5, small.H, eps)
	assert.Equal(t, start.X, small.X)

	wide := Resize(start, 9000, container, 0.5)
	assert.InDelta(t, 400, wide.W, eps)
	assert.InDelta(t, 200, wide.H, eps)

	// Tall overlay: the bottom edge bounds the resize before the right edge.
	tall := Resize(start, 9000, container, 2)
	assert.InDelta(t, 400, tall.H, eps)
	assert.InDelta(t, 200, tall.W, eps)
}

func TestNudge(t *testing.T) {
	container := Size{W: 100, H: 100}
	box := Box{X: 10, Y: 10, W: 50, H: 50}

	box = Nudge(box, NudgeStep, 0, container)
	assert.Equal(t, 20.0, box.X)

	box = Nudge(box, 100, -100, container)
	assert.Equal(t, 50.0, box.X)
	assert.Equal(t, 0.0, box.Y)
}

func TestHitTest(t *testing.T) {
	box := Box{X: 100, Y: 100, W: 200, H: 100}

	assert.True(t, box.Contains(Point{X: 150, Y: 150}))
	assert.False(t, box.OnHandle(Point{X: 150, Y: 150}))
	assert.True(t, box.OnHandle(Point{X: 295, Y: 195}))
	assert.True(t, box.Contains(Point{X: 295, Y: 195}))
	assert.False(t, box.Contains(Point{X: 99, Y: 150}))
}

func TestCornersIdentity(t *testing.T) {
	box := Box{X: 10, Y: 20, W: 100, H: 40}
	got := Corners(box, Transform{})

	want := [4]Point{{10, 20}, {110, 20}, {110, 60}, {10, 60}}
	for i := range want {
		assert.InDelta(t, want[i].X, got[i].X, eps)
		assert.InDelta(t, want[i].Y, got[i].Y, eps)
	}
	assert.Equal(t, image.Rect(10, 20, 110, 60), Bounds(box, Transform{}))
}

func TestCornersRotation(t *testing.T) {
	box := Box{X: 0, Y: 0, W: 100, H: 40}
	got := Corners(box, Transform{Rotation: 90})

	// 90 degrees clockwise on a y-down surface around (50, 20).
	assert.InDelta(t, 70, got[0].X, 1e-9)
	assert.InDelta(t, -30, got[0].Y, 1e-9)
	assert.InDelta(t, 30, got[2].X, 1e-9)
	assert.InDelta(t, 70, got[2].Y, 1e-9)

	// A full turn lands on the identity polygon.
	full := Corners(box, Transform{Rotation: 360})
	id := Corners(box, Transform{})
	for i := range id {
		assert.InDelta(t, id[i].X, full[i].X, 1e-9)
		assert.InDelta(t, id[i].Y, full[i].Y, 1e-9)
	}
}

func TestShearThenRotateOrder(t *testing.T) {
	box := Box{X: 50, Y: 50, W: 120, H: 60}
	tr := Transform{Rotation: 30, SkewX: 20, SkewY: -10}

	got := Corners(box, tr)

	// Reconstruct by hand: local corner -> rotate -> shear -> translate.
	c := box.Center()
	r := tr.Rotation * math.Pi / 180
	kx, ky := math.Tan(tr.SkewX*math.Pi/180), math.Tan(tr.SkewY*math.Pi/180)
	local := [4]Point{{-60, -30}, {60, -30}, {60, 30}, {-60, 30}}
	for i, p := range local {
		rx := p.X*math.Cos(r) - p.Y*math.Sin(r)
		ry := p.X*math.Sin(r) + p.Y*math.Cos(r)
		sx := rx + kx*ry
		sy := ky*rx + ry
		assert.InDelta(t, c.X+sx, got[i].X, 1e-9)
		assert.InDelta(t, c.Y+sy, got[i].Y, 1e-9)
	}

	swapped := cornersWith(box, Translate(c.X, c.Y).
		Multiply(Rotate(r)).
		Multiply(Shear(kx, ky)))
	differs := false
	for i := range got {
		if math.Abs(got[i].X-swapped[i].X) > 1e-6 || math.Abs(got[i].Y-swapped[i].Y) > 1e-6 {
			differs = true
		}
	}
	assert.True(t, differs, "rotate-then-shear must not match shear-then-rotate")
}

func TestDrawMatrix(t *testing.T) {
	box := Box{X: 10, Y: 20, W: 100, H: 50}
	m := DrawMatrix(box, Transform{}, Size{W: 200, H: 100})

	tl := m.Apply(Point{})
	br := m.Apply(Point{X: 200, Y: 100})
	assert.InDelta(t, 10, tl.X, eps)
	assert.InDelta(t, 20, tl.Y, eps)
	assert.InDelta(t, 110, br.X, eps)
	assert.InDelta(t, 70, br.Y, eps)
}

func TestMatrixInvert(t *testing.T) {
	m := DrawMatrix(Box{X: 5, Y: 7, W: 80, H: 30}, Transform{Rotation: 33, SkewX: 12}, Size{W: 40, H: 15})
	inv, ok := m.Invert()
	require.True(t, ok)

	p := Point{X: 13, Y: -4}
	back := inv.Apply(m.Apply(p))
	assert.InDelta(t, p.X, back.X, 1e-9)
	assert.InDelta(t, p.Y, back.Y, 1e-9)

	_, ok = Scale(0, 1).Invert()
	assert.False(t, ok)
}

func TestCoverCrop(t *testing.T) {
	crop := CoverCrop(image.Rect(0, 0, 1000, 400), Size{W: 512, H: 512})
	assert.Equal(t, image.Rect(300, 0, 700, 400), crop)

	crop = CoverCrop(image.Rect(0, 0, 300, 900), Size{W: 512, H: 512})
	assert.Equal(t, image.Rect(0, 300, 300, 600), crop)

	crop = CoverCrop(image.Rect(0, 0, 64, 64), Size{W: 512, H: 512})
	assert.Equal(t, image.Rect(0, 0, 64, 64), crop)
}

func TestFixedLayout(t *testing.T) {
	r := FixedLayout(512, Size{W: 600, H: 200})
	assert.Equal(t, 281, r.Dx())
	assert.Equal(t, 94, r.Dy())
	assert.Equal(t, 115, r.Min.X)
	assert.Equal(t, 25, r.Min.Y)
}

func TestFixedLayoutNoEnlarge(t *testing.T) {
	r := FixedLayout(512, Size{W: 100, H: 50})
	assert.Equal(t, image.Rect(206, 25, 306, 75), r)
}

func TestFixedLayoutTallOverlay(t *testing.T) {
	r := FixedLayout(512, Size{W: 400, H: 1600})
	assert.Equal(t, 512, r.Dy())
	assert.Equal(t, 128, r.Dx())
	assert.Equal(t, 192, r.Min.X)
}
