package handler

import (
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/mzterwalexzyy/bandana-editor/compositor"
	"github.com/mzterwalexzyy/bandana-editor/model"
	"github.com/mzterwalexzyy/bandana-editor/service"
	"github.com/mzterwalexzyy/bandana-editor/utils"
	"go.uber.org/zap"
)

const (
	generateName = "bandana-pfp"
	exportName   = "custom-bandana-pfp"
)

// imageFields are the multipart field names accepted for the picture, in
// lookup order.
var imageFields = []string{"pfp", "file"}

var errNoFile = errors.New("no file uploaded")

type CompositeHandler struct {
	compositeService *service.CompositeService
}

func NewCompositeHandler(composite *service.CompositeService) *CompositeHandler {
	return &CompositeHandler{
		compositeService: composite,
	}
}

// Register mounts the compositing routes.
func (h *CompositeHandler) Register(r gin.IRouter) {
	r.POST("/api/generate", h.Generate)

	api := r.Group("/api/v1")
	{
		api.POST("/generate", h.Generate)
		api.POST("/export", h.Export)
		api.GET("/overlay", h.Overlay)
		api.GET("/result/:md5", h.GetByMD5)
	}
}

// Generate composites the upload onto the fixed square layout.
func (h *CompositeHandler) Generate(c *gin.Context) {
	data, err := readImage(c)
	if err != nil {
		h.badRequest(c, err)
		return
	}

	format := requestFormat(c)
	result, err := h.compositeService.Generate(c.Request.Context(), data, format)
	if err != nil {
		h.processingFailed(c, err)
		return
	}

	if result.Cached {
		c.Header("X-Cache", "HIT")
	} else {
		c.Header("X-Cache", "MISS")
	}
	c.Header("X-Image-MD5", result.MD5)
	writeImage(c, result.Data, format, "inline", generateName)
}

// Export renders the editor placement server-side and returns it as a
// download.
func (h *CompositeHandler) Export(c *gin.Context) {
	data, err := readImage(c)
	if err != nil {
		h.badRequest(c, err)
		return
	}

	var req model.ExportRequest
	if err := c.ShouldBind(&req); err != nil {
		h.badRequest(c, fmt.Errorf("invalid placement: %w", err))
		return
	}

	format := requestFormat(c)
	result, err := h.compositeService.Export(c.Request.Context(), data, req, format)
	if errors.Is(err, service.ErrInvalidPlacement) {
		h.badRequest(c, err)
		return
	}
	if err != nil {
		h.processingFailed(c, err)
		return
	}

	writeImage(c, result.Data, format, "attachment", exportName)
}

// Overlay describes the bandana asset.
func (h *CompositeHandler) Overlay(c *gin.Context) {
	c.JSON(http.StatusOK, h.compositeService.OverlayInfo())
}

// GetByMD5 returns a cached fixed-layout result for an input md5.
func (h *CompositeHandler) GetByMD5(c *gin.Context) {
	md5 := c.Param("md5")
	format := requestFormat(c)

	data, err := h.compositeService.Cached(c.Request.Context(), md5, format)
	if err != nil {
		utils.Logger.Error("failed to get cached composite", zap.String("md5", md5), zap.Error(err))
		c.JSON(http.StatusInternalServerError, model.ErrorResponse{
			Success: false,
			Error:   "Lookup failed",
			Details: err.Error(),
		})
		return
	}

	if data == nil {
		c.JSON(http.StatusNotFound, model.ErrorResponse{
			Success: false,
			Error:   "No result for this image",
		})
		return
	}

	c.Header("X-Cache", "HIT")
	writeImage(c, data, format, "inline", generateName)
}

func (h *CompositeHandler) badRequest(c *gin.Context, err error) {
	utils.Logger.Warn("rejected request", zap.Error(err))
	resp := model.ErrorResponse{Success: false, Error: "No file uploaded"}
	if !errors.Is(err, errNoFile) {
		resp.Error = "Invalid request"
		resp.Details = err.Error()
	}
	c.JSON(http.StatusBadRequest, resp)
}

func (h *CompositeHandler) processingFailed(c *gin.Context, err error) {
	utils.Logger.Error("image processing failed", zap.Error(err))
	c.JSON(http.StatusInternalServerError, model.ErrorResponse{
		Success: false,
		Error:   "Image processing failed",
		Details: err.Error(),
	})
}

// readImage loads the first present image field fully into memory.
func readImage(c *gin.Context) ([]byte, error) {
	for _, field := range imageFields {
		file, err := c.FormFile(field)
		if err != nil {
			continue
		}

		f, err := file.Open()
		if err != nil {
			return nil, fmt.Errorf("open upload: %w", err)
		}
		defer f.Close()

		data, err := io.ReadAll(f)
		if err != nil {
			return nil, fmt.Errorf("read upload: %w", err)
		}

		utils.Logger.Debug("file uploaded",
			zap.String("field", field),
			zap.String("filename", file.Filename),
			zap.Int64("size", file.Size))
		return data, nil
	}
	return nil, errNoFile
}

func requestFormat(c *gin.Context) compositor.Format {
	if f := c.Query("format"); f != "" {
		return compositor.ParseFormat(f)
	}
	return compositor.ParseFormat(c.PostForm("format"))
}

func writeImage(c *gin.Context, data []byte, format compositor.Format, disposition, name string) {
	c.Header("Content-Disposition", fmt.Sprintf(`%s; filename="%s.%s"`, disposition, name, format.Ext()))
	c.Data(http.StatusOK, format.ContentType(), data)
}
