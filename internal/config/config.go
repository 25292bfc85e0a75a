package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// Default values for the server configuration.
const (
	DefaultHTTPPort    = 8080
	DefaultMaxRequests = 5
	DefaultWindow      = 60 * time.Second
	DefaultArtifactDir = "data"
	DefaultBlobDirName = "blob_storage"
	DefaultLogFileName = "pipeline.log"
)

// Config holds the server configuration parsed from the `server:` section
// of config.yaml.
type Config struct {
	Server ServerConfig `yaml:"server"`
}

// ServerConfig holds all server-side settings.
type ServerConfig struct {
	// HTTPPort is the port the HTTP API listens on (default 8080).
	HTTPPort int `yaml:"http_port"`

	// Auth configures how the server authenticates incoming requests.
	Auth AuthConfig `yaml:"auth"`

	// RateLimit configures per-client sliding-window admission control.
	RateLimit RateLimitConfig `yaml:"rate_limit"`

	// Artifacts configures where pipeline artifacts are written.
	Artifacts ArtifactsConfig `yaml:"artifacts"`
}

// AuthConfig controls client authentication.
type AuthConfig struct {
	// Mode is one of: apikey | none.
	Mode string `yaml:"mode"`

	// KeyEnv is the name of the environment variable that holds the expected
	// API key. Used when Mode == "apikey".
	KeyEnv string `yaml:"key_env"`

	// Header is the HTTP header name to read the key from.
	// Defaults to "x-api-key" if empty.
	Header string `yaml:"header"`
}

// Key returns the expected API key resolved from the environment.
func (a AuthConfig) Key() string {
	if a.KeyEnv == "" {
		return ""
	}
	return os.Getenv(a.KeyEnv)
}

// EffectiveHeader returns the configured header name, or the default "x-api-key".
func (a AuthConfig) EffectiveHeader() string {
	if a.Header != "" {
		return a.Header
	}
	return "x-api-key"
}

// RateLimitConfig controls the sliding-window rate limiter.
type RateLimitConfig struct {
	// MaxRequests is the maximum number of admissions per client within the
	// window (default 5).
	MaxRequests int `yaml:"max_requests"`

	// Window is the length of the sliding window (default 60s).
	Window time.Duration `yaml:"window"`
}

// ArtifactsConfig controls where pipeline artifacts are persisted.
type ArtifactsConfig struct {
	// Dir is the directory holding the named artifact slots (default "data").
	Dir string `yaml:"dir"`

	// BlobDir is the directory for timestamped blob copies of the final
	// artifact. Defaults to <Dir>/blob_storage.
	BlobDir string `yaml:"blob_dir"`

	// LogFile is the path of the line-oriented per-record run log.
	// Defaults to <Dir>/pipeline.log.
	LogFile string `yaml:"log_file"`
}

// Load reads and parses the config file at path, returning the server
// configuration. Missing fields are filled with sensible defaults before
// validation.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("server config: read %q: %w", path, err)
	}

	cfg := defaults()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("server config: parse yaml: %w", err)
	}
	applyDerived(cfg)

	if err := validate(cfg); err != nil {
		return nil, fmt.Errorf("server config: %w", err)
	}

	return cfg, nil
}

// defaults returns a Config pre-populated with default values.
func defaults() *Config {
	return &Config{
		Server: ServerConfig{
			HTTPPort: DefaultHTTPPort,
			RateLimit: RateLimitConfig{
				MaxRequests: DefaultMaxRequests,
				Window:      DefaultWindow,
			},
			Artifacts: ArtifactsConfig{
				Dir: DefaultArtifactDir,
			},
		},
	}
}

// applyDerived fills artifact paths that default relative to the artifact dir.
func applyDerived(cfg *Config) {
	art := &cfg.Server.Artifacts
	if art.BlobDir == "" {
		art.BlobDir = filepath.Join(art.Dir, DefaultBlobDirName)
	}
	if art.LogFile == "" {
		art.LogFile = filepath.Join(art.Dir, DefaultLogFileName)
	}
}

// validate checks structural constraints on the parsed configuration.
func validate(cfg *Config) error {
	if cfg.Server.HTTPPort <= 0 || cfg.Server.HTTPPort > 65535 {
		return fmt.Errorf("server.http_port %d is out of range [1, 65535]", cfg.Server.HTTPPort)
	}
	switch cfg.Server.Auth.Mode {
	case "apikey", "none", "":
	default:
		return fmt.Errorf("server.auth.mode %q unknown: want apikey|none", cfg.Server.Auth.Mode)
	}
	if cfg.Server.RateLimit.MaxRequests <= 0 {
		return fmt.Errorf("server.rate_limit.max_requests must be positive")
	}
	if cfg.Server.RateLimit.Window <= 0 {
		return fmt.Errorf("server.rate_limit.window must be positive")
	}
	if cfg.Server.Artifacts.Dir == "" {
		return fmt.Errorf("server.artifacts.dir is required")
	}
	return nil
}
