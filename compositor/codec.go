package compositor

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	"image/png"
	"io"
	"strings"

	"github.com/HugoSmits86/nativewebp"
	_ "github.com/ftrvxmtrx/tga"
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

var (
	// ErrDecode wraps any failure to turn input bytes into an image.
	ErrDecode = errors.New("decode image")
	// ErrEncode wraps any failure to encode an output raster.
	ErrEncode = errors.New("encode image")
)

// Format is an output encoding. Both are lossless and keep alpha.
type Format string

const (
	FormatPNG  Format = "png"
	FormatWebP Format = "webp"
)

// ParseFormat maps a user-supplied name to a Format, defaulting to PNG.
func ParseFormat(name string) Format {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "webp":
		return FormatWebP
	default:
		return FormatPNG
	}
}

// ContentType returns the MIME type for f.
func (f Format) ContentType() string {
	if f == FormatWebP {
		return "image/webp"
	}
	return "image/png"
}

// Ext returns the file extension for f, without the dot.
func (f Format) Ext() string {
	if f == FormatWebP {
		return "webp"
	}
	return "png"
}

// Decode reads any registered raster format: PNG, JPEG, GIF, WebP, BMP,
// TIFF and TGA.
func Decode(data []byte) (image.Image, string, error) {
	if len(data) == 0 {
		return nil, "", fmt.Errorf("%w: empty input", ErrDecode)
	}

	img, format, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, "", fmt.Errorf("%w: %v", ErrDecode, err)
	}
	return img, format, nil
}

// Encode writes img to w in the given format.
func Encode(w io.Writer, img image.Image, f Format) error {
	var err error
	switch f {
	case FormatWebP:
		err = nativewebp.Encode(w, img, nil)
	default:
		err = png.Encode(w, img)
	}
	if err != nil {
		return fmt.Errorf("%w: %s: %v", ErrEncode, f, err)
	}
	return nil
}

// EncodeBytes encodes img fully into memory so callers never emit a partial
// image.
func EncodeBytes(img image.Image, f Format) ([]byte, error) {
	var buf bytes.Buffer
	if err := Encode(&buf, img, f); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
