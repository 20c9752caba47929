// Package config loads Broilr settings from defaults, an optional YAML file
// and BROILR_* environment variables, in increasing order of precedence.
// Command-line flags are applied on top by the CLI.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/mitchellh/mapstructure"
	"gopkg.in/yaml.v3"
)

// DefaultFile is looked up in the working directory when no path is given.
const DefaultFile = "broilr.yaml"

// Identity store kinds.
const (
	StoreFile   = "file"
	StoreRedis  = "redis"
	StoreMemory = "memory"
)

// Config is the complete runtime configuration.
type Config struct {
	Backend  BackendConfig  `mapstructure:"backend"`
	Identity IdentityConfig `mapstructure:"identity"`
	Redis    RedisConfig    `mapstructure:"redis"`
	Server   ServerConfig   `mapstructure:"server"`
	Log      LogConfig      `mapstructure:"log"`
	Speech   SpeechConfig   `mapstructure:"speech"`
	Input    InputConfig    `mapstructure:"input"`
}

type BackendConfig struct {
	URL     string        `mapstructure:"url"`
	Timeout time.Duration `mapstructure:"timeout"`
	Retries uint          `mapstructure:"retries"`
	// Offline uses the in-memory backend instead of URL.
	Offline bool `mapstructure:"offline"`
}

type IdentityConfig struct {
	Store string `mapstructure:"store"`
	Path  string `mapstructure:"path"`
}

type RedisConfig struct {
	Addr     string        `mapstructure:"addr"`
	Password string        `mapstructure:"password"`
	DB       int           `mapstructure:"db"`
	Prefix   string        `mapstructure:"prefix"`
	TTL      time.Duration `mapstructure:"ttl"`
}

type ServerConfig struct {
	Addr    string        `mapstructure:"addr"`
	Metrics bool          `mapstructure:"metrics"`
	IdleTTL time.Duration `mapstructure:"idle_ttl"`
}

type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

type SpeechConfig struct {
	RestartDelay time.Duration `mapstructure:"restart_delay"`
}

type InputConfig struct {
	MaxSize int `mapstructure:"max_size"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Backend: BackendConfig{
			URL:     "http://localhost:5000",
			Timeout: 60 * time.Second,
			Retries: 3,
		},
		Identity: IdentityConfig{Store: StoreFile},
		Redis: RedisConfig{
			Addr:   "localhost:6379",
			Prefix: "broilr:identity:",
		},
		Server: ServerConfig{
			Addr:    ":8080",
			Metrics: true,
			IdleTTL: 30 * time.Minute,
		},
		Log:    LogConfig{Level: "info", Format: "text"},
		Speech: SpeechConfig{RestartDelay: time.Second},
		Input:  InputConfig{MaxSize: 4096},
	}
}

// envKeys maps environment variables onto configuration keys.
var envKeys = map[string]string{
	"BROILR_BACKEND_URL":          "backend.url",
	"BROILR_BACKEND_TIMEOUT":      "backend.timeout",
	"BROILR_BACKEND_RETRIES":      "backend.retries",
	"BROILR_OFFLINE":              "backend.offline",
	"BROILR_IDENTITY_STORE":       "identity.store",
	"BROILR_IDENTITY_PATH":        "identity.path",
	"BROILR_REDIS_ADDR":           "redis.addr",
	"BROILR_REDIS_PASSWORD":       "redis.password",
	"BROILR_REDIS_DB":             "redis.db",
	"BROILR_REDIS_PREFIX":         "redis.prefix",
	"BROILR_REDIS_TTL":            "redis.ttl",
	"BROILR_LISTEN_ADDR":          "server.addr",
	"BROILR_METRICS":              "server.metrics",
	"BROILR_IDLE_TTL":             "server.idle_ttl",
	"BROILR_LOG_LEVEL":            "log.level",
	"BROILR_LOG_FORMAT":           "log.format",
	"BROILR_SPEECH_RESTART_DELAY": "speech.restart_delay",
	"BROILR_MAX_INPUT_SIZE":       "input.max_size",
}

// Load builds the configuration. An empty path looks for DefaultFile and
// silently skips it when absent; an explicit path must exist.
func Load(path string) (*Config, error) {
	return load(path, os.LookupEnv)
}

func load(path string, lookup func(string) (string, bool)) (*Config, error) {
	cfg := Default()

	explicit := path != ""
	if !explicit {
		path = DefaultFile
	}
	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		var raw map[string]any
		if err := yaml.Unmarshal(data, &raw); err != nil {
			return nil, fmt.Errorf("failed to parse %s: %w", path, err)
		}
		if err := decode(raw, cfg); err != nil {
			return nil, fmt.Errorf("invalid config %s: %w", path, err)
		}
	case explicit || !errors.Is(err, os.ErrNotExist):
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	if env := fromEnv(lookup); len(env) > 0 {
		if err := decode(env, cfg); err != nil {
			return nil, fmt.Errorf("invalid environment: %w", err)
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func fromEnv(lookup func(string) (string, bool)) map[string]any {
	out := make(map[string]any)
	for env, key := range envKeys {
		val, ok := lookup(env)
		if !ok {
			continue
		}
		section, field, _ := strings.Cut(key, ".")
		m, _ := out[section].(map[string]any)
		if m == nil {
			m = make(map[string]any)
			out[section] = m
		}
		m[field] = val
	}
	return out
}

// decode overlays raw onto cfg. Fields absent from raw keep their values.
func decode(raw map[string]any, cfg *Config) error {
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		DecodeHook:       mapstructure.StringToTimeDurationHookFunc(),
		WeaklyTypedInput: true,
		ErrorUnused:      true,
		Result:           cfg,
	})
	if err != nil {
		return err
	}
	return dec.Decode(raw)
}

// Validate checks values that cannot be caught by decoding.
func (c *Config) Validate() error {
	switch c.Identity.Store {
	case StoreFile, StoreRedis, StoreMemory:
	default:
		return fmt.Errorf("unknown identity store %q (want file, redis or memory)", c.Identity.Store)
	}
	switch strings.ToLower(c.Log.Format) {
	case "text", "json":
	default:
		return fmt.Errorf("unknown log format %q", c.Log.Format)
	}
	if !c.Backend.Offline && c.Backend.URL == "" {
		return errors.New("backend url is required unless offline")
	}
	if c.Backend.Timeout < 0 || c.Speech.RestartDelay < 0 || c.Server.IdleTTL < 0 {
		return errors.New("durations must not be negative")
	}
	if c.Input.MaxSize < 0 {
		return errors.New("input max_size must not be negative")
	}
	return nil
}
