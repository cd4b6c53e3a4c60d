package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/mzterwalexzyy/bandana-editor/config"
	"github.com/mzterwalexzyy/bandana-editor/handler"
	"github.com/mzterwalexzyy/bandana-editor/service"
	"github.com/mzterwalexzyy/bandana-editor/utils"
	"go.uber.org/zap"
)

var (
	Version   = "dev"
	BuildTime = "unknown"
	BuildID   = "unknown"
	GitCommit = "unknown"
	GitBranch = "unknown"
)

func main() {
	cfg := config.New()

	if err := utils.InitLogger(cfg.Server.Mode, cfg.Server.LogLevel); err != nil {
		fmt.Printf("Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer utils.Sync()

	utils.Logger.Info("starting bandana editor server",
		zap.String("version", Version),
		zap.String("build_time", BuildTime),
		zap.String("git_commit", GitCommit),
		zap.String("git_branch", GitBranch))

	overlay, err := service.LoadOverlay(cfg.Compositor.OverlayPath)
	if err != nil {
		utils.Logger.Fatal("failed to load overlay", zap.Error(err))
	}

	var cache service.ResultCache
	redisService := service.NewRedisService(&cfg.Redis)
	ctx := context.Background()
	if err := redisService.Ping(ctx); err != nil {
		utils.Logger.Warn("redis connection failed, cache disabled", zap.Error(err))
		cfg.Compositor.CacheResults = false
	} else {
		utils.Logger.Info("redis connected successfully")
		cache = redisService
	}
	defer redisService.Close()

	compositeService := service.NewCompositeService(&cfg.Compositor, overlay, cache)
	compositeHandler := handler.NewCompositeHandler(compositeService)

	r := handler.NewRouter(cfg, handler.BuildInfo{
		Version:   Version,
		BuildTime: BuildTime,
		BuildID:   BuildID,
		GitCommit: GitCommit,
		GitBranch: GitBranch,
	}, compositeHandler)

	srv := &http.Server{
		Addr:         cfg.Server.Port,
		Handler:      r,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	killed := make(chan os.Signal, 1)
	signal.Notify(killed, os.Interrupt, syscall.SIGTERM)

	shutdown := make(chan struct{})
	go func() {
		sig := <-killed
		utils.Logger.Info("received signal to shutdown", zap.String("signal", sig.String()))

		ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(ctx); err != nil {
			utils.Logger.Error("failed to shutdown server", zap.Error(err))
		}
		close(shutdown)
	}()

	utils.Logger.Info("server starting", zap.String("port", cfg.Server.Port))
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		utils.Logger.Fatal("failed to start server", zap.Error(err))
	}

	<-shutdown
	utils.Logger.Info("server has shut down")
}
