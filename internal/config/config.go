package config

import (
	"os"
	"path/filepath"
	"time"

	"github.com/BurntSushi/toml"
)

// Config represents the global ~/.tvoizakaz/config.toml.
type Config struct {
	DefaultProfile string       `toml:"default_profile"`
	Server         ServerConfig `toml:"server"`
	Chat           ChatConfig   `toml:"chat"`
}

// ServerConfig locates the marketplace backend and the credential used
// to authenticate the realtime connection.
type ServerConfig struct {
	// WSURL is the websocket base, e.g. "ws://localhost:8000". The
	// chat endpoint path is appended by the connection manager.
	WSURL string `toml:"ws_url"`
	// APIURL is the REST base, e.g. "http://localhost:8000/api/v1".
	APIURL string `toml:"api_url"`
	// Token is an inline access token. Prefer TokenFile for anything
	// beyond local experiments.
	Token string `toml:"token"`
	// TokenFile points at a file whose trimmed contents are the token.
	TokenFile string `toml:"token_file"`
}

// ChatConfig tunes the realtime layer.
type ChatConfig struct {
	// HeartbeatSeconds enables the ping/pong liveness monitor when
	// positive. Zero disables it; the backend's own close signal is
	// then the only dead-connection detection.
	HeartbeatSeconds int `toml:"heartbeat_seconds"`
	// SendRatePerMinute caps outbound chat messages. Zero disables
	// the limiter.
	SendRatePerMinute int `toml:"send_rate_per_minute"`
	// DialTimeoutSeconds bounds the websocket dial.
	DialTimeoutSeconds int `toml:"dial_timeout_seconds"`
	// WriteTimeoutSeconds bounds each outbound frame write.
	WriteTimeoutSeconds int `toml:"write_timeout_seconds"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			WSURL:  "ws://localhost:8000",
			APIURL: "http://localhost:8000/api/v1",
		},
		Chat: ChatConfig{
			SendRatePerMinute:   30,
			DialTimeoutSeconds:  10,
			WriteTimeoutSeconds: 10,
		},
	}
}

// Load reads config from the given path. Returns an error if the file
// is missing; use LoadOrDefault when absence is acceptable.
func Load(path string) (*Config, error) {
	cfg := Default()
	if _, err := toml.DecodeFile(path, cfg); err != nil {
		return nil, err
	}
	cfg.applyEnv()
	return cfg, nil
}

// LoadOrDefault reads config from path, falling back to defaults (plus
// env overrides) when the file does not exist.
func LoadOrDefault(path string) *Config {
	cfg, err := Load(path)
	if err != nil {
		cfg = Default()
		cfg.applyEnv()
	}
	return cfg
}

// Save writes config to the given path, creating parent dirs as needed.
func Save(path string, cfg *Config) error {
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return err
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600)
	if err != nil {
		return err
	}
	encErr := toml.NewEncoder(f).Encode(cfg)
	if closeErr := f.Close(); closeErr != nil && encErr == nil {
		return closeErr
	}
	return encErr
}

// applyEnv lets the environment override file-level settings; .env
// files loaded by the mains land here too.
func (c *Config) applyEnv() {
	if v := os.Getenv("TVZ_WS_URL"); v != "" {
		c.Server.WSURL = v
	}
	if v := os.Getenv("TVZ_API_URL"); v != "" {
		c.Server.APIURL = v
	}
	if v := os.Getenv("TVZ_TOKEN"); v != "" {
		c.Server.Token = v
	}
}

// DialTimeout returns the dial timeout as a duration.
func (c *ChatConfig) DialTimeout() time.Duration {
	if c.DialTimeoutSeconds <= 0 {
		return 10 * time.Second
	}
	return time.Duration(c.DialTimeoutSeconds) * time.Second
}

// WriteTimeout returns the per-frame write timeout as a duration.
func (c *ChatConfig) WriteTimeout() time.Duration {
	if c.WriteTimeoutSeconds <= 0 {
		return 10 * time.Second
	}
	return time.Duration(c.WriteTimeoutSeconds) * time.Second
}

// HeartbeatInterval returns the heartbeat period, or zero when the
// monitor is disabled.
func (c *ChatConfig) HeartbeatInterval() time.Duration {
	if c.HeartbeatSeconds <= 0 {
		return 0
	}
	return time.Duration(c.HeartbeatSeconds) * time.Second
}
