package main

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	slogmulti "github.com/samber/slog-multi"
	"github.com/spf13/viper"
)

// Transports accepted by server.transport.
const (
	TransportStdio = "stdio"
	TransportHTTP  = "http"
)

// =============================================================================
// Config Types
// =============================================================================

// Config holds all application configuration.
type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Docker   DockerConfig   `mapstructure:"docker"`
	Projects ProjectsConfig `mapstructure:"projects"`
	Backup   BackupConfig   `mapstructure:"backup"`
	History  HistoryConfig  `mapstructure:"history"`
	Log      LogConfig      `mapstructure:"log"`
}

// ServerConfig holds transport configuration. Host and port only apply to
// the http transport.
type ServerConfig struct {
	Transport       string        `mapstructure:"transport"`
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

// Address returns the server address in host:port format.
func (c ServerConfig) Address() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// DockerConfig holds docker CLI configuration.
type DockerConfig struct {
	Binary         string        `mapstructure:"binary"`
	Host           string        `mapstructure:"host"` // Initial host override
	CommandTimeout time.Duration `mapstructure:"command_timeout"`
	ProbeTimeout   time.Duration `mapstructure:"probe_timeout"`
}

// ProjectsConfig holds project configuration.
type ProjectsConfig struct {
	Dir string `mapstructure:"dir"` // Applied compose files live in Dir/<project>/
}

// BackupConfig holds volume backup configuration.
type BackupConfig struct {
	HelperImage string `mapstructure:"helper_image"`
}

// HistoryConfig holds command history configuration.
type HistoryConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	DSN     string `mapstructure:"dsn"`
	Limit   int    `mapstructure:"limit"`
}

// LogConfig holds logging configuration.
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
	File   string `mapstructure:"file"` // Optional JSON log file alongside stderr
}

// =============================================================================
// Config Loading
// =============================================================================

// LoadConfig loads configuration from file and environment.
func LoadConfig(configPath string) (*Config, error) {
	v := viper.New()

	v.SetDefault("server.transport", TransportStdio)
	v.SetDefault("server.host", "127.0.0.1")
	v.SetDefault("server.port", 8090)
	v.SetDefault("server.shutdown_timeout", "10s")
	v.SetDefault("docker.binary", "docker")
	v.SetDefault("docker.host", "")
	v.SetDefault("docker.command_timeout", "0s") // No limit
	v.SetDefault("docker.probe_timeout", "10s")
	v.SetDefault("projects.dir", "./data/projects")
	v.SetDefault("backup.helper_image", "alpine:3.20")
	v.SetDefault("history.enabled", false)
	v.SetDefault("history.dsn", "./data/dockrelay.db")
	v.SetDefault("history.limit", 20)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")
	v.SetDefault("log.file", "")

	if configPath != "" {
		v.SetConfigFile(configPath)
		if err := v.ReadInConfig(); err != nil {
			// A missing file falls back to defaults
			var parseErr viper.ConfigParseError
			if errors.As(err, &parseErr) {
				return nil, fmt.Errorf("failed to parse config file: %w", err)
			}
		}
	}

	v.SetEnvPrefix("DOCKRELAY")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks values viper cannot type-check.
func (c *Config) Validate() error {
	c.Server.Transport = strings.ToLower(strings.TrimSpace(c.Server.Transport))
	switch c.Server.Transport {
	case TransportStdio, TransportHTTP:
	default:
		return fmt.Errorf("server.transport must be %q or %q, got %q", TransportStdio, TransportHTTP, c.Server.Transport)
	}
	if c.Server.Transport == TransportHTTP && (c.Server.Port <= 0 || c.Server.Port > 65535) {
		return fmt.Errorf("server.port must be between 1 and 65535, got %d", c.Server.Port)
	}
	if strings.TrimSpace(c.Docker.Binary) == "" {
		return errors.New("docker.binary must not be empty")
	}
	if c.Docker.CommandTimeout < 0 {
		return fmt.Errorf("docker.command_timeout must not be negative, got %s", c.Docker.CommandTimeout)
	}
	if c.History.Enabled && strings.TrimSpace(c.History.DSN) == "" {
		return errors.New("history.dsn is required when history.enabled is set")
	}
	return nil
}

// =============================================================================
// Logger Setup
// =============================================================================

// SetupLogger creates a logger writing to w with the configured level and
// format. When log.file is set, records are also appended to that file as
// JSON. The returned func closes the file.
func SetupLogger(cfg *Config, w io.Writer) (*slog.Logger, func(), error) {
	opts := &slog.HandlerOptions{
		Level: parseLevel(cfg.Log.Level),
	}

	var handler slog.Handler
	if strings.ToLower(cfg.Log.Format) == "json" {
		handler = slog.NewJSONHandler(w, opts)
	} else {
		handler = slog.NewTextHandler(w, opts)
	}

	if cfg.Log.File == "" {
		return slog.New(handler), func() {}, nil
	}

	if err := os.MkdirAll(filepath.Dir(cfg.Log.File), 0o755); err != nil {
		return nil, nil, fmt.Errorf("create log directory: %w", err)
	}
	f, err := os.OpenFile(cfg.Log.File, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, nil, fmt.Errorf("open log file: %w", err)
	}

	logger := slog.New(slogmulti.Fanout(handler, slog.NewJSONHandler(f, opts)))
	return logger, func() { f.Close() }, nil
}

func parseLevel(s string) slog.Level {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
