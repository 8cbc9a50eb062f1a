package config

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"

	"pixbatch/internal/common"
	"pixbatch/internal/operations"
)

// Duration is a time.Duration written as "30s" in config files
type Duration time.Duration

func (d Duration) MarshalText() ([]byte, error) {
	return []byte(time.Duration(d).String()), nil
}

func (d *Duration) UnmarshalText(text []byte) error {
	parsed, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	*d = Duration(parsed)
	return nil
}

// LogConfig selects the slog handler
type LogConfig struct {
	Level  string `yaml:"level" toml:"level"`
	Format string `yaml:"format" toml:"format"`
}

// ServerConfig configures the headless HTTP API
type ServerConfig struct {
	Addr string `yaml:"addr" toml:"addr"`
}

// Schedule runs an operation over a folder on a cron expression
type Schedule struct {
	Cron      string            `yaml:"cron" toml:"cron"`
	Dir       string            `yaml:"dir" toml:"dir"`
	Operation string            `yaml:"operation" toml:"operation"`
	OutputDir string            `yaml:"output_dir" toml:"output_dir"`
	Params    operations.Params `yaml:"params" toml:"params"`
}

// WatchConfig configures watch folders and scheduled sweeps
type WatchConfig struct {
	Debounce  Duration   `yaml:"debounce" toml:"debounce"`
	Schedules []Schedule `yaml:"schedules" toml:"schedules"`
}

// Config holds application configuration
type Config struct {
	AppDataDir      string       `yaml:"app_data_dir" toml:"app_data_dir"`
	DatabasePath    string       `yaml:"database_path" toml:"database_path"`
	WorkspaceDir    string       `yaml:"workspace_dir" toml:"workspace_dir"`
	AllowedRoot     string       `yaml:"allowed_root" toml:"allowed_root"`
	GhostscriptPath string       `yaml:"ghostscript_path" toml:"ghostscript_path"`
	MaxParallelism  int          `yaml:"max_parallelism" toml:"max_parallelism"`
	ItemTimeout     Duration     `yaml:"item_timeout" toml:"item_timeout"`
	ProgressBuffer  int          `yaml:"progress_buffer" toml:"progress_buffer"`
	HistoryKeep     Duration     `yaml:"history_keep" toml:"history_keep"`
	Log             LogConfig    `yaml:"log" toml:"log"`
	Server          ServerConfig `yaml:"server" toml:"server"`
	Watch           WatchConfig  `yaml:"watch" toml:"watch"`

	Logger *slog.Logger `yaml:"-" toml:"-"`
}

// Default returns the built-in configuration
func Default() *Config {
	appData := getAppDataDir()
	return &Config{
		AppDataDir:     appData,
		DatabasePath:   filepath.Join(appData, "database.sqlite3"),
		WorkspaceDir:   defaultWorkspaceDir(),
		ProgressBuffer: 1,
		HistoryKeep:    Duration(30 * 24 * time.Hour),
		Log:            LogConfig{Level: "info", Format: "text"},
		Server:         ServerConfig{Addr: "127.0.0.1:8585"},
		Watch:          WatchConfig{Debounce: Duration(500 * time.Millisecond)},
		Logger:         slog.Default(),
	}
}

// Load reads a YAML or TOML file over the defaults. An empty path returns
// the defaults.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(ExpandPath(path))
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, cfg)
	case ".toml":
		err = toml.Unmarshal(data, cfg)
	default:
		return nil, fmt.Errorf("unsupported config format: %s", filepath.Ext(path))
	}
	if err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}

	cfg.expandPaths()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks value ranges
func (c *Config) Validate() error {
	if c.MaxParallelism < 0 {
		return fmt.Errorf("max_parallelism cannot be negative")
	}
	if c.ProgressBuffer < 1 {
		return fmt.Errorf("progress_buffer must be at least 1")
	}
	if c.ItemTimeout < 0 {
		return fmt.Errorf("item_timeout cannot be negative")
	}
	if c.AllowedRoot != "" && !filepath.IsAbs(c.AllowedRoot) {
		return fmt.Errorf("allowed_root must be absolute")
	}
	for i, s := range c.Watch.Schedules {
		if s.Cron == "" || s.Dir == "" || s.Operation == "" {
			return fmt.Errorf("schedule %d needs cron, dir and operation", i)
		}
	}
	switch strings.ToLower(c.Log.Format) {
	case "", "text", "json":
	default:
		return fmt.Errorf("unknown log format %q", c.Log.Format)
	}
	return nil
}

// Prepare creates the app data directory, discovers Ghostscript when no path
// is configured and builds the logger writing to w
func (c *Config) Prepare(w io.Writer) error {
	c.Logger = NewLogger(w, c.Log)

	if err := common.EnsureDir(c.AppDataDir); err != nil {
		return err
	}
	if c.GhostscriptPath == "" {
		c.GhostscriptPath = findGhostscript()
	}
	if c.GhostscriptPath != "" {
		c.Logger.Info("Using Ghostscript", "path", c.GhostscriptPath)
	} else {
		c.Logger.Info("Ghostscript not found, PDF compression uses pdfcpu")
	}
	return nil
}

// NewLogger builds a slog logger from the log section
func NewLogger(w io.Writer, lc LogConfig) *slog.Logger {
	var level slog.Level
	if err := level.UnmarshalText([]byte(lc.Level)); err != nil {
		level = slog.LevelInfo
	}
	opts := &slog.HandlerOptions{Level: level}

	if strings.EqualFold(lc.Format, "json") {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}

// ExpandPath replaces a leading ~ with the home directory
func ExpandPath(path string) string {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, strings.TrimPrefix(path, "~"))
}

func (c *Config) expandPaths() {
	c.AppDataDir = ExpandPath(c.AppDataDir)
	c.DatabasePath = ExpandPath(c.DatabasePath)
	c.WorkspaceDir = ExpandPath(c.WorkspaceDir)
	c.AllowedRoot = ExpandPath(c.AllowedRoot)
	c.GhostscriptPath = ExpandPath(c.GhostscriptPath)
	for i := range c.Watch.Schedules {
		c.Watch.Schedules[i].Dir = ExpandPath(c.Watch.Schedules[i].Dir)
		c.Watch.Schedules[i].OutputDir = ExpandPath(c.Watch.Schedules[i].OutputDir)
	}
}

func findGhostscript() string {
	names := []string{"gs"}
	if runtime.GOOS == "windows" {
		names = []string{"gswin64c", "gswin32c"}
	}
	for _, name := range names {
		if path, err := exec.LookPath(name); err == nil {
			return path
		}
	}
	return ""
}

func getAppDataDir() string {
	if dir, err := os.UserConfigDir(); err == nil {
		return filepath.Join(dir, common.DefaultWorkspaceName)
	}
	return filepath.Join(os.TempDir(), common.DefaultWorkspaceName)
}

func defaultWorkspaceDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(os.TempDir(), common.DefaultWorkspaceName)
	}
	return filepath.Join(home, "Pictures", common.DefaultWorkspaceName)
}
