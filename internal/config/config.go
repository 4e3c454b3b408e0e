// Package config holds the driver's runtime configuration: cache
// location, SSH connection defaults, scheduler chunking, gate pool TTLs,
// and logging format. Values load from a JSON file and may be overridden
// by FTL_-prefixed environment variables, in that order.
package config

import (
	"encoding/json"
	"os"
	"os/user"
	"strconv"
	"time"
)

// GateConfig holds gate build and SSH transport defaults.
type GateConfig struct {
	CacheDir          string        `json:"cache_dir"`          // Default: ~/.ftl
	RemoteDir         string        `json:"remote_dir"`         // Default: /tmp
	DefaultInterp     string        `json:"default_interpreter"` // Default: /usr/bin/python3
	LocalInterp       string        `json:"local_interpreter"`   // Default: /usr/bin/python3
	ConnectTimeout    time.Duration `json:"connect_timeout"`     // Default: 1h
	GOARCH            string        `json:"goarch"`              // Default: amd64
}

// PoolConfig holds gate pool settings.
type PoolConfig struct {
	IdleTTL time.Duration `json:"idle_ttl"` // Default: 0 (no idle eviction beyond explicit evict_one)
}

// SchedulerConfig holds fan-out scheduler settings.
type SchedulerConfig struct {
	ChunkSize int `json:"chunk_size"` // Default: 10, per spec.md §4.9
}

// LoggingConfig holds structured logging settings.
type LoggingConfig struct {
	Level  string `json:"level"`  // debug, info, warn, error
	Format string `json:"format"` // text, json
}

// SSHConfig holds default SSH connection parameters.
type SSHConfig struct {
	DefaultPort int    `json:"default_port"` // Default: 22
	DefaultUser string `json:"default_user"` // Default: current OS user
}

// Config is the central configuration struct.
type Config struct {
	Gate      GateConfig      `json:"gate"`
	Pool      PoolConfig      `json:"pool"`
	Scheduler SchedulerConfig `json:"scheduler"`
	Logging   LoggingConfig   `json:"logging"`
	SSH       SSHConfig       `json:"ssh"`
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() *Config {
	home, _ := os.UserHomeDir()
	username := ""
	if u, err := user.Current(); err == nil {
		username = u.Username
	}
	return &Config{
		Gate: GateConfig{
			CacheDir:       home + "/.ftl",
			RemoteDir:      "/tmp",
			DefaultInterp:  "/usr/bin/python3",
			LocalInterp:    "/usr/bin/python3",
			ConnectTimeout: time.Hour,
			GOARCH:         "amd64",
		},
		Pool: PoolConfig{
			IdleTTL: 0,
		},
		Scheduler: SchedulerConfig{
			ChunkSize: 10,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
		},
		SSH: SSHConfig{
			DefaultPort: 22,
			DefaultUser: username,
		},
	}
}

// LoadFromFile loads configuration from a JSON file, starting from
// DefaultConfig so a partial file still yields usable values. A file
// that cannot be read is an error.
func LoadFromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	cfg := DefaultConfig()
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadFromEnv applies FTL_-prefixed environment variable overrides.
func LoadFromEnv(cfg *Config) {
	if v := os.Getenv("FTL_CACHE_DIR"); v != "" {
		cfg.Gate.CacheDir = v
	}
	if v := os.Getenv("FTL_REMOTE_DIR"); v != "" {
		cfg.Gate.RemoteDir = v
	}
	if v := os.Getenv("FTL_DEFAULT_INTERPRETER"); v != "" {
		cfg.Gate.DefaultInterp = v
	}
	if v := os.Getenv("FTL_LOCAL_INTERPRETER"); v != "" {
		cfg.Gate.LocalInterp = v
	}
	if v := os.Getenv("FTL_CONNECT_TIMEOUT"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			cfg.Gate.ConnectTimeout = d
		}
	}
	if v := os.Getenv("FTL_GOARCH"); v != "" {
		cfg.Gate.GOARCH = v
	}
	if v := os.Getenv("FTL_POOL_IDLE_TTL"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			cfg.Pool.IdleTTL = d
		}
	}
	if v := os.Getenv("FTL_CHUNK_SIZE"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.Scheduler.ChunkSize = n
		}
	}
	if v := os.Getenv("FTL_LOG_LEVEL"); v != "" {
		cfg.Logging.Level = v
	}
	if v := os.Getenv("FTL_LOG_FORMAT"); v != "" {
		cfg.Logging.Format = v
	}
	if v := os.Getenv("FTL_SSH_PORT"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.SSH.DefaultPort = n
		}
	}
	if v := os.Getenv("FTL_SSH_USER"); v != "" {
		cfg.SSH.DefaultUser = v
	}
}
