package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/menta2k/adaptvideo/internal/utils"
)

// EnvPrefix prefixes every environment override.
const EnvPrefix = "ADAPTVIDEO_"

// Config holds the application configuration
type Config struct {
	Server  ServerConfig  `json:"server"`
	Upload  UploadConfig  `json:"upload"`
	Display DisplayConfig `json:"display"`
	Preview PreviewConfig `json:"preview"`
	Output  OutputConfig  `json:"output"`
	Log     LogConfig     `json:"log"`
}

// ServerConfig locates the conversion service
type ServerConfig struct {
	BaseURL        string `json:"base_url"`
	TimeoutSeconds int    `json:"timeout_seconds"`
}

// UploadConfig holds the checks made before a file is uploaded
type UploadConfig struct {
	MaxFileSizeMB     int      `json:"max_file_size_mb"`
	AllowedExtensions []string `json:"allowed_extensions"`
	Probe             bool     `json:"probe"`
}

// DisplayConfig is the size the thumbnail is shown at when picking a crop
// position
type DisplayConfig struct {
	Width  int `json:"width"`
	Height int `json:"height"`
}

// PreviewConfig holds preview playback settings
type PreviewConfig struct {
	FrameIntervalMS  int `json:"frame_interval_ms"`
	ComparisonWidth  int `json:"comparison_width"`
	ComparisonHeight int `json:"comparison_height"`
}

// OutputConfig holds configuration for saved previews and downloads
type OutputConfig struct {
	Dir      string `json:"dir"`
	Format   string `json:"format"`
	Quality  int    `json:"quality"`
	Lossless bool   `json:"lossless"`
}

// LogConfig holds logging settings
type LogConfig struct {
	Level string `json:"level"`
	File  string `json:"file"`
}

// Default returns a configuration with default values
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			BaseURL:        "http://127.0.0.1:5001",
			TimeoutSeconds: 300,
		},
		Upload: UploadConfig{
			MaxFileSizeMB:     500,
			AllowedExtensions: []string{"mp4", "avi", "mov", "mkv", "webm"},
			Probe:             true,
		},
		Display: DisplayConfig{
			Width:  640,
			Height: 360,
		},
		Preview: PreviewConfig{
			FrameIntervalMS:  200,
			ComparisonWidth:  400,
			ComparisonHeight: 300,
		},
		Output: OutputConfig{
			Dir:     "./output",
			Format:  "jpg",
			Quality: 85,
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}

// Load reads .env, the config file at path and ADAPTVIDEO_* variables, in
// that order of precedence from lowest to highest. An empty path means the
// default location, which may be missing.
func Load(path string) (*Config, error) {
	// .env is optional
	_ = godotenv.Load()

	cfg := Default()
	explicit := path != ""
	if !explicit {
		path = GetConfigPath()
	}
	if explicit || utils.FileExists(path) {
		loaded, err := LoadFromFile(path)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}

	if err := cfg.ApplyEnv(os.LookupEnv); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadFromFile loads configuration from a JSON file. Missing keys keep their
// default values.
func LoadFromFile(filename string) (*Config, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	config := Default()
	if err := json.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	return config, nil
}

// SaveToFile saves configuration to a JSON file
func (c *Config) SaveToFile(filename string) error {
	if err := os.MkdirAll(filepath.Dir(filename), 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(filename, data, 0o644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// ApplyEnv overrides values from environment variables found by lookup.
func (c *Config) ApplyEnv(lookup func(string) (string, bool)) error {
	str := func(key string, dst *string) {
		if v, ok := lookup(EnvPrefix + key); ok && v != "" {
			*dst = v
		}
	}
	num := func(key string, dst *int) error {
		v, ok := lookup(EnvPrefix + key)
		if !ok || v == "" {
			return nil
		}
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%s%s: %w", EnvPrefix, key, err)
		}
		*dst = n
		return nil
	}

	str("BASE_URL", &c.Server.BaseURL)
	str("LOG_LEVEL", &c.Log.Level)
	str("LOG_FILE", &c.Log.File)
	str("OUTPUT_DIR", &c.Output.Dir)
	str("OUTPUT_FORMAT", &c.Output.Format)
	if v, ok := lookup(EnvPrefix + "ALLOWED_EXTENSIONS"); ok && v != "" {
		c.Upload.AllowedExtensions = splitList(v)
	}

	return errors.Join(
		num("TIMEOUT", &c.Server.TimeoutSeconds),
		num("MAX_FILE_SIZE_MB", &c.Upload.MaxFileSizeMB),
		num("DISPLAY_WIDTH", &c.Display.Width),
		num("DISPLAY_HEIGHT", &c.Display.Height),
	)
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	u, err := url.Parse(c.Server.BaseURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("server.base_url must be an http(s) URL, got %q", c.Server.BaseURL)
	}

	if c.Server.TimeoutSeconds < 1 {
		return fmt.Errorf("server.timeout_seconds must be positive")
	}

	if c.Upload.MaxFileSizeMB < 1 {
		return fmt.Errorf("upload.max_file_size_mb must be positive")
	}

	if len(c.Upload.AllowedExtensions) == 0 {
		return fmt.Errorf("upload.allowed_extensions cannot be empty")
	}

	if c.Display.Width < 1 || c.Display.Height < 1 {
		return fmt.Errorf("display size must be positive")
	}

	if c.Preview.FrameIntervalMS < 1 {
		return fmt.Errorf("preview.frame_interval_ms must be positive")
	}

	if c.Preview.ComparisonWidth < 1 || c.Preview.ComparisonHeight < 1 {
		return fmt.Errorf("preview comparison size must be positive")
	}

	switch strings.ToLower(c.Output.Format) {
	case "jpg", "jpeg", "png", "webp":
	default:
		return fmt.Errorf("output.format must be jpg, png or webp")
	}

	if c.Output.Quality < 1 || c.Output.Quality > 100 {
		return fmt.Errorf("output.quality must be between 1 and 100")
	}

	return nil
}

// Timeout returns the request timeout.
func (c *Config) Timeout() time.Duration {
	return time.Duration(c.Server.TimeoutSeconds) * time.Second
}

// FrameInterval returns the delay between preview frames.
func (c *Config) FrameInterval() time.Duration {
	return time.Duration(c.Preview.FrameIntervalMS) * time.Millisecond
}

// MaxUploadBytes returns the upload limit in bytes.
func (c *Config) MaxUploadBytes() int64 {
	return int64(c.Upload.MaxFileSizeMB) * 1024 * 1024
}

// GetConfigPath returns the default configuration file path
func GetConfigPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "./config.json"
	}
	return filepath.Join(home, ".config", "adaptvideo", "config.json")
}

// DefaultLogFile returns where the interactive UI writes its log.
func DefaultLogFile() string {
	dir, err := os.UserCacheDir()
	if err != nil {
		return "adaptvideo.log"
	}
	return filepath.Join(dir, "adaptvideo", "adaptvideo.log")
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, strings.TrimPrefix(part, "."))
		}
	}
	return out
}
