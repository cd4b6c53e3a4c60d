package handler

import (
	"net/http"
	"path/filepath"

	"github.com/gin-gonic/gin"
	"github.com/mzterwalexzyy/bandana-editor/config"
	"github.com/mzterwalexzyy/bandana-editor/middleware"
)

// BuildInfo is reported by /version.
type BuildInfo struct {
	Version   string `json:"version"`
	BuildTime string `json:"build_time"`
	BuildID   string `json:"build_id"`
	GitCommit string `json:"git_commit"`
	GitBranch string `json:"git_branch"`
}

// NewRouter wires middleware, static files and API routes.
func NewRouter(cfg *config.Config, build BuildInfo, composite *CompositeHandler) *gin.Engine {
	gin.SetMode(cfg.Server.Mode)

	r := gin.New()
	r.MaxMultipartMemory = cfg.Upload.MaxMemory
	r.Use(gin.Recovery())
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger())
	r.Use(middleware.CORS())

	if dir := cfg.Server.StaticDir; dir != "" {
		r.Static("/static", dir)
		r.StaticFile("/", filepath.Join(dir, "index.html"))
	}

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "ok",
			"version": build.Version,
		})
	})

	r.GET("/version", func(c *gin.Context) {
		c.JSON(http.StatusOK, build)
	})

	composite.Register(r)
	return r
}
