package service

import (
	"context"
	"errors"
	"fmt"
	"image"
	"os"
	"strconv"
	"time"

	"github.com/mzterwalexzyy/bandana-editor/compositor"
	"github.com/mzterwalexzyy/bandana-editor/config"
	"github.com/mzterwalexzyy/bandana-editor/model"
	"github.com/mzterwalexzyy/bandana-editor/placement"
	"github.com/mzterwalexzyy/bandana-editor/utils"
	"go.uber.org/zap"
)

// ErrQueueFull is returned when no render slot frees up within the queue
// timeout.
var ErrQueueFull = errors.New("render queue is full, try again later")

// ErrInvalidPlacement is returned for export parameters that cannot be
// rendered.
var ErrInvalidPlacement = errors.New("invalid placement")

// CompositeService renders both output paths against the process-wide
// overlay. It holds no per-request state.
type CompositeService struct {
	overlay      image.Image
	canvasSize   int
	semaphore    chan struct{}
	queueTimeout time.Duration
	cache        ResultCache
	cacheResults bool
	maxSide      int
}

// NewCompositeService builds the service. cache may be nil.
func NewCompositeService(cfg *config.CompositorConfig, overlay image.Image, cache ResultCache) *CompositeService {
	size := cfg.CanvasSize
	if size <= 0 {
		size = placement.DefaultCanvasSize
	}
	slots := cfg.MaxConcurrent
	if slots <= 0 {
		slots = 1
	}
	return &CompositeService{
		overlay:      overlay,
		canvasSize:   size,
		semaphore:    make(chan struct{}, slots),
		queueTimeout: time.Duration(cfg.QueueTimeout) * time.Second,
		cache:        cache,
		cacheResults: cfg.CacheResults && cache != nil,
		maxSide:      cfg.MaxExportSide,
	}
}

// LoadOverlay reads and decodes the bandana asset.
func LoadOverlay(path string) (image.Image, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read overlay %s: %w", path, err)
	}
	img, format, err := compositor.Decode(data)
	if err != nil {
		return nil, fmt.Errorf("overlay %s: %w", path, err)
	}
	utils.Logger.Info("overlay loaded",
		zap.String("path", path),
		zap.String("format", format),
		zap.Int("width", img.Bounds().Dx()),
		zap.Int("height", img.Bounds().Dy()))
	return img, nil
}

// OverlayInfo describes the overlay so clients can lock aspect.
func (s *CompositeService) OverlayInfo() model.OverlayInfo {
	b := s.overlay.Bounds()
	return model.OverlayInfo{
		Width:  b.Dx(),
		Height: b.Dy(),
		Aspect: placement.SizeOf(b).Aspect(),
	}
}

// CanvasSize returns the side of the fixed-layout output.
func (s *CompositeService) CanvasSize() int {
	return s.canvasSize
}

func (s *CompositeService) cacheKey(md5 string, format compositor.Format) string {
	return utils.CacheKey(md5, string(format), strconv.Itoa(s.canvasSize))
}

// acquire waits for a render slot.
func (s *CompositeService) acquire(ctx context.Context) (func(), error) {
	if s.queueTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.queueTimeout)
		defer cancel()
	}

	select {
	case s.semaphore <- struct{}{}:
		return func() { <-s.semaphore }, nil
	case <-ctx.Done():
		return nil, ErrQueueFull
	}
}

// Generate renders the fixed square layout for the uploaded picture.
func (s *CompositeService) Generate(ctx context.Context, data []byte, format compositor.Format) (*model.CompositeResult, error) {
	md5 := utils.BytesMD5(data)
	key := s.cacheKey(md5, format)

	if s.cacheResults {
		cached, err := s.cache.GetComposite(ctx, key)
		if err != nil {
			utils.Logger.Warn("failed to get cache", zap.Error(err))
		}
		if cached != nil {
			utils.Logger.Info("cache hit", zap.String("cache_key", key))
			return &model.CompositeResult{
				MD5:       md5,
				Width:     s.canvasSize,
				Height:    s.canvasSize,
				Format:    string(format),
				Cached:    true,
				Timestamp: time.Now().Unix(),
				Data:      cached,
			}, nil
		}
	}

	base, inFormat, err := compositor.Decode(data)
	if err != nil {
		return nil, err
	}

	release, err := s.acquire(ctx)
	if err != nil {
		return nil, err
	}
	defer release()

	start := time.Now()
	out := compositor.Fixed(base, s.overlay, s.canvasSize)
	encoded, err := compositor.EncodeBytes(out, format)
	if err != nil {
		return nil, err
	}

	utils.Logger.Info("composite generated",
		zap.String("md5", md5),
		zap.String("input_format", inFormat),
		zap.Int("input_width", base.Bounds().Dx()),
		zap.Int("input_height", base.Bounds().Dy()),
		zap.String("format", string(format)),
		zap.Int("bytes", len(encoded)),
		zap.Duration("cost", time.Since(start)))

	if s.cacheResults {
		if err := s.cache.SetComposite(ctx, key, encoded); err != nil {
			utils.Logger.Warn("failed to set cache", zap.Error(err))
		}
	}

	return &model.CompositeResult{
		MD5:       md5,
		Width:     out.Bounds().Dx(),
		Height:    out.Bounds().Dy(),
		Format:    string(format),
		Timestamp: time.Now().Unix(),
		Data:      encoded,
	}, nil
}

// Cached returns a previously generated composite for an input md5, or nil.
func (s *CompositeService) Cached(ctx context.Context, md5 string, format compositor.Format) ([]byte, error) {
	if !s.cacheResults {
		return nil, nil
	}
	return s.cache.GetComposite(ctx, s.cacheKey(md5, format))
}

// Export renders the interactive layout: base stretched to the container and
// the overlay drawn with the editor transform. The box position is clamped
// into the container first.
func (s *CompositeService) Export(ctx context.Context, data []byte, req model.ExportRequest, format compositor.Format) (*model.CompositeResult, error) {
	if err := s.validate(req); err != nil {
		return nil, err
	}

	base, _, err := compositor.Decode(data)
	if err != nil {
		return nil, err
	}

	release, err := s.acquire(ctx)
	if err != nil {
		return nil, err
	}
	defer release()

	container := req.Container()
	box := placement.Clamp(req.Box(), container)

	out := compositor.Interactive(base, s.overlay, container, box, req.Transform)
	encoded, err := compositor.EncodeBytes(out, format)
	if err != nil {
		return nil, err
	}

	utils.Logger.Info("export rendered",
		zap.Float64("x", box.X),
		zap.Float64("y", box.Y),
		zap.Float64("width", box.W),
		zap.Float64("height", box.H),
		zap.Float64("rotation", req.Rotation),
		zap.Float64("skew_x", req.SkewX),
		zap.Float64("skew_y", req.SkewY),
		zap.Int("bytes", len(encoded)))

	return &model.CompositeResult{
		MD5:       utils.BytesMD5(data),
		Width:     out.Bounds().Dx(),
		Height:    out.Bounds().Dy(),
		Format:    string(format),
		Timestamp: time.Now().Unix(),
		Data:      encoded,
	}, nil
}

func (s *CompositeService) validate(req model.ExportRequest) error {
	if !req.Finite() {
		return fmt.Errorf("%w: values must be finite numbers", ErrInvalidPlacement)
	}
	if req.ContainerWidth <= 0 || req.ContainerHeight <= 0 || req.Width <= 0 || req.Height <= 0 {
		return fmt.Errorf("%w: sizes must be positive", ErrInvalidPlacement)
	}
	if s.maxSide > 0 {
		limit := float64(s.maxSide)
		if req.ContainerWidth > limit || req.ContainerHeight > limit {
			return fmt.Errorf("%w: container %gx%g exceeds %d", ErrInvalidPlacement,
				req.ContainerWidth, req.ContainerHeight, s.maxSide)
		}
	}
	return nil
}
