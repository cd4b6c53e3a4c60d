package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Server     ServerConfig     `mapstructure:"server"`
	Redis      RedisConfig      `mapstructure:"redis"`
	Upload     UploadConfig     `mapstructure:"upload"`
	Compositor CompositorConfig `mapstructure:"compositor"`
}

type ServerConfig struct {
	Port            string        `mapstructure:"port"`
	Mode            string        `mapstructure:"mode"`
	LogLevel        string        `mapstructure:"log_level"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
	StaticDir       string        `mapstructure:"static_dir"`
}

type RedisConfig struct {
	Addr     string        `mapstructure:"addr"`
	Password string        `mapstructure:"password"`
	DB       int           `mapstructure:"db"`
	TTL      time.Duration `mapstructure:"ttl"`
}

type UploadConfig struct {
	// MaxMemory is the multipart parse threshold; larger parts spill to
	// temporary files but are still read fully before decoding.
	MaxMemory int64 `mapstructure:"max_memory"`
}

type CompositorConfig struct {
	CanvasSize    int    `mapstructure:"canvas_size"`
	OverlayPath   string `mapstructure:"overlay_path"`
	MaxConcurrent int    `mapstructure:"max_concurrent"`
	QueueTimeout  int    `mapstructure:"queue_timeout"`
	CacheResults  bool   `mapstructure:"cache_results"`
	// MaxExportSide caps each side of an interactive export, in pixels.
	MaxExportSide int    `mapstructure:"max_export_side"`
}

// Load reads configuration from a YAML file, with BANDANA_* env overrides.
func Load(configPath string) (*Config, error) {
	v := viper.New()
	v.SetConfigFile(configPath)
	v.SetConfigType("yaml")

	v.SetEnvPrefix("BANDANA")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return &cfg, nil
}

// New loads config.yaml from the working directory.
func New() *Config {
	cfg, err := Load("config.yaml")
	if err != nil {
		// fall back to built-in defaults
		return Default()
	}
	return cfg
}

func setDefaults(v *viper.Viper) {
	d := Default()

	v.SetDefault("server.port", d.Server.Port)
	v.SetDefault("server.mode", d.Server.Mode)
	v.SetDefault("server.log_level", d.Server.LogLevel)
	v.SetDefault("server.read_timeout", d.Server.ReadTimeout)
	v.SetDefault("server.write_timeout", d.Server.WriteTimeout)
	v.SetDefault("server.shutdown_timeout", d.Server.ShutdownTimeout)
	v.SetDefault("server.static_dir", d.Server.StaticDir)

	v.SetDefault("redis.addr", d.Redis.Addr)
	v.SetDefault("redis.password", d.Redis.Password)
	v.SetDefault("redis.db", d.Redis.DB)
	v.SetDefault("redis.ttl", d.Redis.TTL)

	v.SetDefault("upload.max_memory", d.Upload.MaxMemory)

	v.SetDefault("compositor.canvas_size", d.Compositor.CanvasSize)
	v.SetDefault("compositor.overlay_path", d.Compositor.OverlayPath)
	v.SetDefault("compositor.max_concurrent", d.Compositor.MaxConcurrent)
	v.SetDefault("compositor.queue_timeout", d.Compositor.QueueTimeout)
	v.SetDefault("compositor.cache_results", d.Compositor.CacheResults)
	v.SetDefault("compositor.max_export_side", d.Compositor.MaxExportSide)
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Port:            ":8080",
			Mode:            "debug",
			LogLevel:        "info",
			ReadTimeout:     10 * time.Second,
			WriteTimeout:    10 * time.Second,
			ShutdownTimeout: 30 * time.Second,
			StaticDir:       "./static",
		},
		Redis: RedisConfig{
			Addr:     "localhost:6379",
			Password: "",
			DB:       0,
			TTL:      24 * time.Hour,
		},
		Upload: UploadConfig{
			MaxMemory: 32 << 20,
		},
		Compositor: CompositorConfig{
			CanvasSize:    512,
			OverlayPath:   "./static/bandana.png",
			MaxConcurrent: 4,
			QueueTimeout:  30,
			CacheResults:  true,
			MaxExportSide: 4096,
		},
	}
}
