package shared

import (
	_ "embed"
	"fmt"
	"os"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/creasty/defaults"
	"github.com/go-playground/validator/v10"
)

//go:embed config.example.toml
var exampleConf []byte

// Config represents the application configuration loaded from a TOML file.
type Config struct {
	Credentials CredentialsConfig `toml:"credentials"`
	Auth        AuthConfig        `toml:"auth"`
	Storage     StorageConfig     `toml:"storage"`
	Database    DatabaseConfig    `toml:"database"`
	Server      ServerConfig      `toml:"server"`
	Log         LogConfig         `toml:"log"`
}

// CredentialsConfig contains provider credentials.
type CredentialsConfig struct {
	Spotify SpotifyConfig `toml:"spotify"`
}

// SpotifyConfig contains Spotify application credentials.
//
// ClientSecret is optional and only used by the client credentials (guest) grant.
type SpotifyConfig struct {
	ClientID     string   `toml:"client_id" validate:"required"`
	ClientSecret string   `toml:"client_secret"`
	RedirectURI  string   `toml:"redirect_uri" default:"http://127.0.0.1:3000/callback" validate:"required,url"`
	Scopes       []string `toml:"scopes" default:"[\"user-top-read\"]" validate:"min=1"`
}

// AuthConfig contains identity provider endpoints and PKCE settings.
type AuthConfig struct {
	AuthorizeURL    string        `toml:"authorize_url" default:"https://accounts.spotify.com/authorize" validate:"required,url"`
	TokenURL        string        `toml:"token_url" default:"https://accounts.spotify.com/api/token" validate:"required,url"`
	APIBaseURL      string        `toml:"api_base_url" default:"https://api.spotify.com" validate:"required,url"`
	VerifierLength  int           `toml:"verifier_length" default:"64" validate:"gte=43,lte=128"`
	PKCEMaxAge      time.Duration `toml:"pkce_max_age" default:"10m" validate:"gt=0"`
	CallbackTimeout time.Duration `toml:"callback_timeout" default:"2m" validate:"gt=0"`
	RateLimit       float64       `toml:"rate_limit" default:"10" validate:"gt=0"`
}

// StorageConfig selects the durable key/value backend.
type StorageConfig struct {
	Backend   string `toml:"backend" default:"sqlite" validate:"oneof=sqlite redis memory"`
	RedisAddr string `toml:"redis_addr" default:"127.0.0.1:6379" validate:"required_if=Backend redis"`
	RedisDB   int    `toml:"redis_db" validate:"gte=0"`
	KeyPrefix string `toml:"key_prefix" default:"spotdash:"`
}

// DatabaseConfig contains database connection settings.
type DatabaseConfig struct {
	Path         string `toml:"path" default:"./spotdash.db" validate:"required"`
	MaxOpenConns int    `toml:"max_open_conns" default:"1" validate:"gte=1"`
	MaxIdleConns int    `toml:"max_idle_conns" default:"1" validate:"gte=0"`
}

// ServerConfig contains settings for the loopback callback listener.
type ServerConfig struct {
	Host string `toml:"host" default:"127.0.0.1" validate:"required"`
	Port int    `toml:"port" default:"3000" validate:"gte=1,lte=65535"`
}

// LogConfig contains logger settings.
type LogConfig struct {
	Level string `toml:"level" default:"info" validate:"oneof=debug info warn error"`
}

// LoadConfig reads and parses a TOML configuration file from the specified path.
//
// Fields left empty in the file are filled from struct defaults.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var config Config
	if err := toml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	if err := defaults.Set(&config); err != nil {
		return nil, fmt.Errorf("failed to apply config defaults: %w", err)
	}

	return &config, nil
}

// DefaultConfig returns a Config with sensible defaults loaded from the embedded example config.
func DefaultConfig() *Config {
	var config Config
	if err := toml.Unmarshal(exampleConf, &config); err != nil {
		panic(fmt.Sprintf("failed to parse embedded default config: %v", err))
	}
	if err := defaults.Set(&config); err != nil {
		panic(fmt.Sprintf("failed to apply default config values: %v", err))
	}
	return &config
}

// CreateConfigFile creates a config.toml file at the specified path using the embedded example config.
func CreateConfigFile(path string) error {
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("config file already exists at %s", path)
	}

	if err := os.WriteFile(path, exampleConf, 0600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// SaveConfig writes the configuration to path as TOML, replacing any existing file.
func SaveConfig(path string, config *Config) error {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600)
	if err != nil {
		return fmt.Errorf("failed to open config file: %w", err)
	}
	defer f.Close()

	if err := toml.NewEncoder(f).Encode(config); err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}
	return nil
}

// Validate checks the configuration against its struct tags.
func (c *Config) Validate() error {
	v := validator.New(validator.WithRequiredStructEnabled())
	if err := v.Struct(c); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	return nil
}

// HasGuestCredentials reports whether the client credentials grant can be used.
func (s SpotifyConfig) HasGuestCredentials() bool {
	return s.ClientID != "" && s.ClientSecret != ""
}

// Addr returns the host:port the callback listener binds to.
func (s ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}
