package model

import (
	"math"

	"github.com/mzterwalexzyy/bandana-editor/placement"
)

// CompositeResult is one flattened output.
type CompositeResult struct {
	MD5       string `json:"md5"`
	Width     int    `json:"width"`
	Height    int    `json:"height"`
	Format    string `json:"format"`
	Cached    bool   `json:"cached"`
	Timestamp int64  `json:"timestamp"`
	Data      []byte `json:"-"`
}

// ExportRequest carries the live editor placement for a server-side export.
// All values are in the container's coordinate space.
type ExportRequest struct {
	ContainerWidth  float64 `form:"container_width" binding:"required,gt=0"`
	ContainerHeight float64 `form:"container_height" binding:"required,gt=0"`
	X               float64 `form:"x"`
	Y               float64 `form:"y"`
	Width           float64 `form:"width" binding:"required,gt=0"`
	Height          float64 `form:"height" binding:"required,gt=0"`

	placement.Transform
}

// Container returns the requested container size.
func (r ExportRequest) Container() placement.Size {
	return placement.Size{W: r.ContainerWidth, H: r.ContainerHeight}
}

// Finite reports whether every numeric field is a finite number.
func (r ExportRequest) Finite() bool {
	for _, v := range []float64{
		r.ContainerWidth, r.ContainerHeight, r.X, r.Y, r.Width, r.Height,
		r.Rotation, r.SkewX, r.SkewY,
	} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}

// Box returns the requested overlay box.
func (r ExportRequest) Box() placement.Box {
	return placement.Box{X: r.X, Y: r.Y, W: r.Width, H: r.Height}
}

// OverlayInfo describes the bandana asset.
type OverlayInfo struct {
	Width  int     `json:"width"`
	Height int     `json:"height"`
	Aspect float64 `json:"aspect"`
}

// ErrorResponse is the JSON body of every failed request.
type ErrorResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}
