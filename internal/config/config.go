// Package config provides configuration management for the room-detection
// service: defaults, environment variable overrides, and optional
// file-based loading, following the same Default/Load/LoadFromEnv/Validate
// shape used across the wider floor-plan toolchain.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the complete runtime configuration for the server and CLI.
type Config struct {
	Port           string   `json:"port" yaml:"port"`
	AllowedOrigins []string `json:"allowed_origins" yaml:"allowed_origins"`

	Detection DetectionConfig `json:"detection" yaml:"detection"`
	Vision    VisionConfig    `json:"vision" yaml:"vision"`
	Cache     CacheConfig     `json:"cache" yaml:"cache"`
	Security  SecurityConfig  `json:"security" yaml:"security"`
	Timeouts  TimeoutConfig   `json:"timeouts" yaml:"timeouts"`
}

// DetectionConfig holds the tuning values for the geometric engines. They are
// loaded and validated here, but the engines do not read them: detection
// uses the package constants (cycledetect.MaxCycles,
// cycledetect.MaxCycleLength, wallgraph.MaxLines, raster.CanonicalSize) and
// the per-request area threshold, so overriding these values does not change
// detection.
type DetectionConfig struct {
	MaxCycles          int     `json:"max_cycles" yaml:"max_cycles"`
	MaxCycleLength     int     `json:"max_cycle_length" yaml:"max_cycle_length"`
	MaxLines           int     `json:"max_lines" yaml:"max_lines"`
	AreaThreshold      float64 `json:"area_threshold" yaml:"area_threshold"`
	OuterBoundaryRatio float64 `json:"outer_boundary_ratio" yaml:"outer_boundary_ratio"`
	CanonicalImageSize int     `json:"canonical_image_size" yaml:"canonical_image_size"`
}

// VisionConfig carries the credentials and model selection for the external
// LM/vision wall extractors. APIKey is deliberately excluded from JSON/YAML
// marshaling.
type VisionConfig struct {
	Model  string `json:"model" yaml:"model"`
	APIKey string `json:"-" yaml:"-"`
}

// CacheConfig configures the in-process memoization cache and the optional
// cross-request Redis cache.
type CacheConfig struct {
	LMResponseTTL time.Duration `json:"lm_response_ttl" yaml:"lm_response_ttl"`
	RedisURL      string        `json:"-" yaml:"-"`
}

// SecurityConfig gates the paid-strategy routes behind bearer auth.
type SecurityConfig struct {
	JWTSecret  string `json:"-" yaml:"-"`
	EnableAuth bool   `json:"enable_auth" yaml:"enable_auth"`
}

// TimeoutConfig names a time limit per request class. Only Multimodal is
// used: cmd/roomdetect-server sets it as the HTTP server's read and write
// timeout. Geometric and Text are loaded but not read, and no per-call
// deadline is placed on engine or external-collaborator calls.
type TimeoutConfig struct {
	Geometric  time.Duration `json:"geometric" yaml:"geometric"`
	Text       time.Duration `json:"text" yaml:"text"`
	Multimodal time.Duration `json:"multimodal" yaml:"multimodal"`
}

// Default returns the baseline configuration before any env or file
// overrides are applied.
func Default() *Config {
	return &Config{
		Port:           "8080",
		AllowedOrigins: []string{"http://localhost:3000"},
		Detection: DetectionConfig{
			MaxCycles:          1000,
			MaxCycleLength:     100,
			MaxLines:           10_000,
			AreaThreshold:      100,
			OuterBoundaryRatio: 1.5,
			CanonicalImageSize: 1000,
		},
		Vision: VisionConfig{Model: "gpt-4o-mini"},
		Cache: CacheConfig{
			LMResponseTTL: 1 * time.Hour,
		},
		Security: SecurityConfig{EnableAuth: false},
		Timeouts: TimeoutConfig{
			Geometric:  30 * time.Second,
			Text:       180 * time.Second,
			Multimodal: 300 * time.Second,
		},
	}
}

// Load builds a Config by starting from Default, optionally merging a YAML
// file at configPath, and finally applying environment variable overrides
// (which always win, matching the precedence used across the toolchain).
func Load(configPath string) (*Config, error) {
	cfg := Default()

	if configPath != "" {
		data, err := os.ReadFile(configPath)
		if err != nil {
			return nil, fmt.Errorf("read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config file: %w", err)
		}
	}

	cfg.LoadFromEnv()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadFromEnv overlays environment variable overrides onto cfg in place.
func (c *Config) LoadFromEnv() {
	if port := os.Getenv("PORT"); port != "" {
		c.Port = port
	}
	if origins := os.Getenv("ALLOWED_ORIGINS"); origins != "" {
		c.AllowedOrigins = strings.Split(origins, ",")
	}
	if v := os.Getenv("MAX_CYCLES"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.Detection.MaxCycles = n
		}
	}
	if v := os.Getenv("MAX_CYCLE_LENGTH"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.Detection.MaxCycleLength = n
		}
	}
	if v := os.Getenv("MAX_LINES"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.Detection.MaxLines = n
		}
	}
	if v := os.Getenv("CANONICAL_IMAGE_SIZE"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.Detection.CanonicalImageSize = n
		}
	}
	if model := os.Getenv("VISION_MODEL"); model != "" {
		c.Vision.Model = model
	}
	if key := os.Getenv("OPENAI_API_KEY"); key != "" {
		c.Vision.APIKey = key
	}
	if url := os.Getenv("REDIS_URL"); url != "" {
		c.Cache.RedisURL = url
	}
	if ttl := os.Getenv("LM_CACHE_TTL"); ttl != "" {
		if d, err := time.ParseDuration(ttl); err == nil {
			c.Cache.LMResponseTTL = d
		}
	}
	if secret := os.Getenv("JWT_SECRET"); secret != "" {
		c.Security.JWTSecret = secret
		c.Security.EnableAuth = true
	}
	if v := os.Getenv("REQUEST_TIMEOUT_GEOMETRIC"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			c.Timeouts.Geometric = d
		}
	}
	if v := os.Getenv("REQUEST_TIMEOUT_TEXT"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			c.Timeouts.Text = d
		}
	}
	if v := os.Getenv("REQUEST_TIMEOUT_MULTIMODAL"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			c.Timeouts.Multimodal = d
		}
	}
}

// Validate checks that cfg describes a runnable server.
func (c *Config) Validate() error {
	if c.Port == "" {
		return fmt.Errorf("port must not be empty")
	}
	if c.Detection.MaxCycles <= 0 {
		return fmt.Errorf("detection.max_cycles must be positive")
	}
	if c.Detection.MaxCycleLength <= 0 {
		return fmt.Errorf("detection.max_cycle_length must be positive")
	}
	if c.Security.EnableAuth && c.Security.JWTSecret == "" {
		return fmt.Errorf("security.enable_auth requires a JWT secret")
	}
	return nil
}
