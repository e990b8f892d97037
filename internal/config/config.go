// Package config loads YAML configuration shared by the proxy and
// world daemons.
package config

import (
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds settings for both daemons. Each daemon reads the same
// file and picks the sections it cares about.
type Config struct {
	Game     GameConfig     `yaml:"game"`
	Proxy    ProxyConfig    `yaml:"proxy"`
	Link     LinkConfig     `yaml:"link"`
	Database DatabaseConfig `yaml:"database"`
}

// GameConfig holds world-simulation settings.
type GameConfig struct {
	// Name is the display name of the game, shown on the connect banner.
	Name string `yaml:"name"`

	// NewPlayerRoom is the object id newly created player objects are
	// placed in.
	NewPlayerRoom int64 `yaml:"new_player_room"`
}

// ProxyConfig holds the client-facing proxy settings.
type ProxyConfig struct {
	// ListenAddr is the telnet listen address, e.g. ":4000".
	ListenAddr string `yaml:"listen_addr"`

	// IdleTimeoutSeconds disconnects clients idle for longer than this.
	// 0 disables the idle reaper.
	IdleTimeoutSeconds int `yaml:"idle_timeout_seconds"`
}

// LinkConfig holds settings for the private proxy<->world link.
type LinkConfig struct {
	// ListenAddr is where the world daemon accepts the proxy connection,
	// e.g. "localhost:4001".
	ListenAddr string `yaml:"listen_addr"`

	// DialAddr is where the proxy daemon connects, usually the same
	// host:port as ListenAddr.
	DialAddr string `yaml:"dial_addr"`

	// CallTimeoutSeconds bounds every request/response round-trip.
	CallTimeoutSeconds int `yaml:"call_timeout_seconds"`
}

// DatabaseConfig selects and parameterizes the persistence backend.
type DatabaseConfig struct {
	// Driver is "sqlite" or "postgres".
	Driver string `yaml:"driver"`

	// Path is the sqlite database file path (sqlite driver only).
	Path string `yaml:"path"`

	// DSN is the postgres connection string (postgres driver only).
	DSN string `yaml:"dsn"`
}

// DefaultConfig returns a Config with defaults suitable for local use.
func DefaultConfig() *Config {
	return &Config{
		Game: GameConfig{
			Name:          "Titandawn",
			NewPlayerRoom: 1,
		},
		Proxy: ProxyConfig{
			ListenAddr:         ":4000",
			IdleTimeoutSeconds: 0,
		},
		Link: LinkConfig{
			ListenAddr:         "localhost:4001",
			DialAddr:           "localhost:4001",
			CallTimeoutSeconds: 30,
		},
		Database: DatabaseConfig{
			Driver: "sqlite",
			Path:   "data/titandawn.db",
		},
	}
}

// LoadConfig loads configuration from a YAML file. A missing file yields
// the defaults; a malformed file is an error.
func LoadConfig(path string) (*Config, error) {
	config := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return config, nil
		}
		return config, err
	}

	if err := yaml.Unmarshal(data, config); err != nil {
		return DefaultConfig(), err
	}

	return config, nil
}

// IdleTimeout returns the proxy idle timeout as a Duration, or 0 when
// the reaper is disabled.
func (c *Config) IdleTimeout() time.Duration {
	return time.Duration(c.Proxy.IdleTimeoutSeconds) * time.Second
}

// CallTimeout returns the link call timeout as a Duration.
func (c *Config) CallTimeout() time.Duration {
	if c.Link.CallTimeoutSeconds <= 0 {
		return 30 * time.Second
	}
	return time.Duration(c.Link.CallTimeoutSeconds) * time.Second
}
