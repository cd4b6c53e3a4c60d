package compositor

import (
	"bytes"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"testing"

	"github.com/mzterwalexzyy/bandana-editor/placement"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	red   = color.RGBA{R: 255, A: 255}
	green = color.RGBA{G: 255, A: 255}
	blue  = color.RGBA{B: 255, A: 255}
	white = color.RGBA{R: 255, G: 255, B: 255, A: 255}
)

func solid(w, h int, c color.Color) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.Draw(img, img.Bounds(), &image.Uniform{C: c}, image.Point{}, draw.Src)
	return img
}

// stripes fills x in [0, a) with c0, [a, b) with c1 and the rest with c2.
func stripes(w, h, a, b int, c0, c1, c2 color.Color) *image.RGBA {
	img := solid(w, h, c2)
	draw.Draw(img, image.Rect(0, 0, b, h), &image.Uniform{C: c1}, image.Point{}, draw.Src)
	draw.Draw(img, image.Rect(0, 0, a, h), &image.Uniform{C: c0}, image.Point{}, draw.Src)
	return img
}

func assertNear(t *testing.T, want color.RGBA, got color.Color, msgAndArgs ...interface{}) {
	t.Helper()
	c := color.RGBAModel.Convert(got).(color.RGBA)
	diff := func(a, b uint8) int {
		if a > b {
			return int(a - b)
		}
		return int(b - a)
	}
	ok := diff(want.R, c.R) <= 2 && diff(want.G, c.G) <= 2 && diff(want.B, c.B) <= 2 && diff(want.A, c.A) <= 2
	assert.True(t, ok, append([]interface{}{"want %v got %v", want, c}, msgAndArgs...)...)
}

func TestInteractiveIdentity(t *testing.T) {
	base := solid(200, 100, blue)
	overlay := solid(40, 20, red)
	box := placement.Box{X: 30, Y: 10, W: 40, H: 20}

	out := Interactive(base, overlay, placement.Size{W: 200, H: 100}, box, placement.Transform{})
	require.Equal(t, image.Rect(0, 0, 200, 100), out.Bounds())

	assert.Equal(t, red, out.RGBAAt(30, 10))
	assert.Equal(t, red, out.RGBAAt(69, 29))
	assert.Equal(t, red, out.RGBAAt(50, 20))
	assert.Equal(t, blue, out.RGBAAt(29, 10))
	assert.Equal(t, blue, out.RGBAAt(70, 10))
	assert.Equal(t, blue, out.RGBAAt(30, 9))
	assert.Equal(t, blue, out.RGBAAt(30, 30))
}

func TestInteractiveStretchesBaseToContainer(t *testing.T) {
	out := Interactive(solid(100, 50, green), nil, placement.Size{W: 300, H: 150}, placement.Box{}, placement.Transform{})

	assert.Equal(t, image.Rect(0, 0, 300, 150), out.Bounds())
	assert.Equal(t, green, out.RGBAAt(0, 0))
	assert.Equal(t, green, out.RGBAAt(299, 149))
}

func TestInteractiveScalesOverlayIntoBox(t *testing.T) {
	base := solid(100, 100, blue)
	overlay := solid(400, 400, red)
	box := placement.Box{X: 10, Y: 10, W: 20, H: 20}

	out := Interactive(base, overlay, placement.Size{W: 100, H: 100}, box, placement.Transform{})

	assertNear(t, red, out.At(20, 20))
	assertNear(t, blue, out.At(35, 20))
}

func TestInteractiveRotation(t *testing.T) {
	base := solid(200, 100, blue)
	overlay := stripes(40, 20, 20, 40, red, green, green)
	box := placement.Box{X: 30, Y: 10, W: 40, H: 20}

	plain := Interactive(base, overlay, placement.Size{W: 200, H: 100}, box, placement.Transform{})
	assertNear(t, red, plain.At(35, 20))
	assertNear(t, green, plain.At(65, 20))

	turned := Interactive(base, overlay, placement.Size{W: 200, H: 100}, box, placement.Transform{Rotation: 180})
	assertNear(t, green, turned.At(35, 20))
	assertNear(t, red, turned.At(65, 20))
}

func TestInteractiveExtremeTransforms(t *testing.T) {
	base := solid(200, 200, blue)
	overlay := solid(40, 20, red)
	box := placement.Box{X: 60, Y: 60, W: 80, H: 40}

	tests := []struct {
		name string
		t    placement.Transform
	}{
		{"skew x 90", placement.Transform{SkewX: 90}},
		{"skew x -90", placement.Transform{SkewX: -90}},
		{"skew y 90", placement.Transform{SkewY: 90}},
		{"skew y -90", placement.Transform{SkewY: -90}},
		{"singular skew", placement.Transform{SkewX: 45, SkewY: 45}},
		{"near vertical skew", placement.Transform{SkewX: 89.9999}},
		{"huge rotation", placement.Transform{Rotation: 1e300}},
		{"huge rotation with skew", placement.Transform{Rotation: 1e300, SkewX: 90, SkewY: 30}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var out *image.RGBA
			require.NotPanics(t, func() {
				out = Interactive(base, overlay, placement.Size{W: 200, H: 200}, box, tt.t)
			})
			assert.Equal(t, image.Rect(0, 0, 200, 200), out.Bounds())
			assert.Equal(t, blue, out.RGBAAt(0, 0))
		})
	}
}

func TestInteractiveSingularSkewLeavesBase(t *testing.T) {
	base := solid(100, 100, blue)
	out := Interactive(base, solid(10, 10, red), placement.Size{W: 100, H: 100},
		placement.Box{X: 20, Y: 20, W: 60, H: 60}, placement.Transform{SkewX: 45, SkewY: 45})

	assert.Equal(t, base.Pix, out.Pix)
}

func TestInteractiveOverlayOutsideContainer(t *testing.T) {
	base := solid(50, 50, blue)
	out := Interactive(base, solid(10, 10, red), placement.Size{W: 50, H: 50},
		placement.Box{X: 500, Y: 500, W: 10, H: 10}, placement.Transform{})

	assert.Equal(t, base.Pix, out.Pix)
}

func TestInteractiveTransparentWithoutBase(t *testing.T) {
	out := Interactive(nil, solid(10, 10, red), placement.Size{W: 50, H: 50}, placement.Box{X: 0, Y: 0, W: 10, H: 10}, placement.Transform{})

	assert.Equal(t, red, out.RGBAAt(5, 5))
	assert.Equal(t, color.RGBA{}, out.RGBAAt(40, 40))
}

func TestFixedLayout(t *testing.T) {
	base := stripes(1000, 400, 300, 700, red, green, blue)
	overlay := solid(600, 200, white)

	out := Fixed(base, overlay, 512)
	require.Equal(t, image.Rect(0, 0, 512, 512), out.Bounds())

	// Only the center 400x400 of the base survives the cover crop.
	assertNear(t, green, out.At(20, 400))
	assertNear(t, green, out.At(491, 400))
	assertNear(t, green, out.At(256, 500))

	// Overlay occupies [115, 396) x [25, 119).
	assertNear(t, white, out.At(116, 26))
	assertNear(t, white, out.At(394, 117))
	assertNear(t, white, out.At(256, 70))
	assertNear(t, green, out.At(113, 70))
	assertNear(t, green, out.At(398, 70))
	assertNear(t, green, out.At(256, 23))
	assertNear(t, green, out.At(256, 121))
}

func TestFixedDefaultsSize(t *testing.T) {
	out := Fixed(solid(10, 10, red), solid(10, 10, white), 0)
	assert.Equal(t, placement.DefaultCanvasSize, out.Bounds().Dx())
}

func TestFixedTransparentCanvasWithoutBase(t *testing.T) {
	out := Fixed(nil, solid(100, 50, white), 64)
	assert.Equal(t, color.RGBA{}, out.RGBAAt(0, 63))
}

func TestDecode(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, solid(7, 3, red)))

	img, format, err := Decode(buf.Bytes())
	require.NoError(t, err)
	assert.Equal(t, "png", format)
	assert.Equal(t, image.Rect(0, 0, 7, 3), img.Bounds())
}

func TestDecodeErrors(t *testing.T) {
	_, _, err := Decode(nil)
	assert.ErrorIs(t, err, ErrDecode)

	_, _, err = Decode([]byte("definitely not an image"))
	assert.ErrorIs(t, err, ErrDecode)
	assert.NotEmpty(t, err.Error())
}

func TestEncodeBytes(t *testing.T) {
	img := Fixed(solid(20, 20, red), solid(10, 5, white), 32)

	data, err := EncodeBytes(img, FormatPNG)
	require.NoError(t, err)
	decoded, format, err := Decode(data)
	require.NoError(t, err)
	assert.Equal(t, "png", format)
	assert.Equal(t, img.Bounds(), decoded.Bounds())

	data, err = EncodeBytes(img, FormatWebP)
	require.NoError(t, err)
	require.Greater(t, len(data), 12)
	assert.Equal(t, "RIFF", string(data[:4]))
	assert.Equal(t, "WEBP", string(data[8:12]))
}

func TestParseFormat(t *testing.T) {
	assert.Equal(t, FormatWebP, ParseFormat(" WebP "))
	assert.Equal(t, FormatPNG, ParseFormat(""))
	assert.Equal(t, FormatPNG, ParseFormat("gif"))
	assert.Equal(t, "image/webp", FormatWebP.ContentType())
	assert.Equal(t, "png", FormatPNG.Ext())
}
