// Package config provides Viper-based configuration loading for the fightbook services.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Store backends.
const (
	StorePostgres = "postgres"
	StoreMemory   = "memory"
)

// DatabaseConfig holds PostgreSQL connection settings.
type DatabaseConfig struct {
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	User            string        `mapstructure:"user"`
	Password        string        `mapstructure:"password"`
	Name            string        `mapstructure:"name"`
	SSLMode         string        `mapstructure:"sslmode"`
	MaxConns        int32         `mapstructure:"max_conns"`
	MinConns        int32         `mapstructure:"min_conns"`
	MaxConnLifetime time.Duration `mapstructure:"max_conn_lifetime"`
}

// DSN returns the PostgreSQL connection string.
//
// Precondition: Host, Port, User, and Name must be non-empty.
// Postcondition: Returns a valid PostgreSQL DSN string.
func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		d.User, d.Password, d.Host, d.Port, d.Name, d.SSLMode,
	)
}

// HTTPConfig holds the JSON API listener settings.
type HTTPConfig struct {
	Host         string        `mapstructure:"host"`
	Port         int           `mapstructure:"port"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
	// AllowedOrigin is sent as Access-Control-Allow-Origin.
	AllowedOrigin string `mapstructure:"allowed_origin"`
}

// Addr returns the "host:port" listen address.
func (h HTTPConfig) Addr() string {
	return fmt.Sprintf("%s:%d", h.Host, h.Port)
}

// TelnetConfig holds Telnet acceptor settings.
type TelnetConfig struct {
	// Enabled turns the terminal arena on. The HTTP API always runs.
	Enabled bool `mapstructure:"enabled"`
	// Host is the bind address for the Telnet listener.
	Host string `mapstructure:"host"`
	// Port is the TCP port for the Telnet listener.
	Port int `mapstructure:"port"`
	// ReadTimeout is the per-read timeout for Telnet connections.
	ReadTimeout time.Duration `mapstructure:"read_timeout"`
	// WriteTimeout is the per-write timeout for Telnet connections.
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
	// LineDelay paces fight playback; zero prints the whole log at once.
	LineDelay time.Duration `mapstructure:"line_delay"`
}

// Addr returns the "host:port" listen address.
//
// Postcondition: Returns a non-empty string in "host:port" format.
func (t TelnetConfig) Addr() string {
	return fmt.Sprintf("%s:%d", t.Host, t.Port)
}

// LoggingConfig holds structured logging settings.
type LoggingConfig struct {
	// Level is the minimum log level: "debug", "info", "warn", "error".
	Level string `mapstructure:"level"`
	// Format is the log output format: "json" or "console".
	Format string `mapstructure:"format"`
}

// ArenaConfig holds roster and match service settings.
type ArenaConfig struct {
	// Store selects the fighter/fight persistence backend: "postgres" or "memory".
	Store string `mapstructure:"store"`
	// FightLimit fights may be started per requester in each FightWindow.
	FightLimit  int           `mapstructure:"fight_limit"`
	FightWindow time.Duration `mapstructure:"fight_window"`
	// RegisterLimit registrations are allowed per requester in each RegisterWindow.
	RegisterLimit  int           `mapstructure:"register_limit"`
	RegisterWindow time.Duration `mapstructure:"register_window"`
	HistoryDefault int           `mapstructure:"history_default"`
	HistoryMax     int           `mapstructure:"history_max"`
	LeaderboardMax int           `mapstructure:"leaderboard_max"`
	// AdminTokenHash is a bcrypt hash of the bearer token that may delete fighters.
	// Empty disables deletion.
	AdminTokenHash string `mapstructure:"admin_token_hash"`
}

// EngineConfig holds fight engine settings.
type EngineConfig struct {
	// Seed selects a reproducible random sequence; 0 means unseeded.
	Seed uint64 `mapstructure:"seed"`
}

// GenesisConfig holds settings for LLM fighter generation.
type GenesisConfig struct {
	APIKey    string `mapstructure:"api_key"`
	Model     string `mapstructure:"model"`
	MaxTokens int64  `mapstructure:"max_tokens"`
}

// Enabled reports whether an API key is configured.
func (g GenesisConfig) Enabled() bool { return g.APIKey != "" }

// Config is the top-level application configuration.
type Config struct {
	Database DatabaseConfig `mapstructure:"database"`
	HTTP     HTTPConfig     `mapstructure:"http"`
	Telnet   TelnetConfig   `mapstructure:"telnet"`
	Logging  LoggingConfig  `mapstructure:"logging"`
	Arena    ArenaConfig    `mapstructure:"arena"`
	Engine   EngineConfig   `mapstructure:"engine"`
	Genesis  GenesisConfig  `mapstructure:"genesis"`
}

// Validate checks all configuration invariants.
//
// Postcondition: Returns nil if configuration is valid, or an error describing all violations.
func (c Config) Validate() error {
	var errs []string

	if c.Arena.Store == StorePostgres {
		if err := validateDatabase(c.Database); err != nil {
			errs = append(errs, err.Error())
		}
	}
	if err := validateHTTP(c.HTTP); err != nil {
		errs = append(errs, err.Error())
	}
	if c.Telnet.Enabled {
		if err := validateTelnet(c.Telnet); err != nil {
			errs = append(errs, err.Error())
		}
	}
	if err := validateLogging(c.Logging); err != nil {
		errs = append(errs, err.Error())
	}
	if err := validateArena(c.Arena); err != nil {
		errs = append(errs, err.Error())
	}
	if err := validateGenesis(c.Genesis); err != nil {
		errs = append(errs, err.Error())
	}

	if len(errs) > 0 {
		return fmt.Errorf("configuration validation failed: %s", strings.Join(errs, "; "))
	}
	return nil
}

func validateDatabase(d DatabaseConfig) error {
	var errs []string
	if d.Host == "" {
		errs = append(errs, "database.host must not be empty")
	}
	if d.Port < 1 || d.Port > 65535 {
		errs = append(errs, fmt.Sprintf("database.port must be 1-65535, got %d", d.Port))
	}
	if d.User == "" {
		errs = append(errs, "database.user must not be empty")
	}
	if d.Name == "" {
		errs = append(errs, "database.name must not be empty")
	}
	validSSL := map[string]bool{"disable": true, "require": true, "verify-ca": true, "verify-full": true}
	if !validSSL[d.SSLMode] {
		errs = append(errs, fmt.Sprintf("database.sslmode must be one of [disable, require, verify-ca, verify-full], got %q", d.SSLMode))
	}
	if d.MaxConns < 1 {
		errs = append(errs, fmt.Sprintf("database.max_conns must be >= 1, got %d", d.MaxConns))
	}
	if d.MinConns < 0 {
		errs = append(errs, fmt.Sprintf("database.min_conns must be >= 0, got %d", d.MinConns))
	}
	if d.MinConns > d.MaxConns {
		errs = append(errs, "database.min_conns must not exceed database.max_conns")
	}
	if len(errs) > 0 {
		return fmt.Errorf("%s", strings.Join(errs, "; "))
	}
	return nil
}

func validateHTTP(h HTTPConfig) error {
	var errs []string
	if h.Port < 1 || h.Port > 65535 {
		errs = append(errs, fmt.Sprintf("http.port must be 1-65535, got %d", h.Port))
	}
	if h.ReadTimeout < 0 {
		errs = append(errs, "http.read_timeout must not be negative")
	}
	if h.WriteTimeout < 0 {
		errs = append(errs, "http.write_timeout must not be negative")
	}
	if len(errs) > 0 {
		return fmt.Errorf("%s", strings.Join(errs, "; "))
	}
	return nil
}

func validateTelnet(t TelnetConfig) error {
	var errs []string
	if t.Port < 1 || t.Port > 65535 {
		errs = append(errs, fmt.Sprintf("telnet.port must be 1-65535, got %d", t.Port))
	}
	if t.ReadTimeout < 0 {
		errs = append(errs, "telnet.read_timeout must not be negative")
	}
	if t.WriteTimeout < 0 {
		errs = append(errs, "telnet.write_timeout must not be negative")
	}
	if t.LineDelay < 0 {
		errs = append(errs, "telnet.line_delay must not be negative")
	}
	if len(errs) > 0 {
		return fmt.Errorf("%s", strings.Join(errs, "; "))
	}
	return nil
}

func validateLogging(l LoggingConfig) error {
	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[l.Level] {
		return fmt.Errorf("logging.level must be one of [debug, info, warn, error], got %q", l.Level)
	}
	validFormats := map[string]bool{"json": true, "console": true}
	if !validFormats[l.Format] {
		return fmt.Errorf("logging.format must be one of [json, console], got %q", l.Format)
	}
	return nil
}

func validateArena(a ArenaConfig) error {
	var errs []string
	if a.Store != StorePostgres && a.Store != StoreMemory {
		errs = append(errs, fmt.Sprintf("arena.store must be one of [postgres, memory], got %q", a.Store))
	}
	if a.FightLimit < 1 {
		errs = append(errs, fmt.Sprintf("arena.fight_limit must be >= 1, got %d", a.FightLimit))
	}
	if a.FightWindow <= 0 {
		errs = append(errs, "arena.fight_window must be positive")
	}
	if a.RegisterLimit < 1 {
		errs = append(errs, fmt.Sprintf("arena.register_limit must be >= 1, got %d", a.RegisterLimit))
	}
	if a.RegisterWindow <= 0 {
		errs = append(errs, "arena.register_window must be positive")
	}
	if a.HistoryDefault < 1 || a.HistoryDefault > a.HistoryMax {
		errs = append(errs, fmt.Sprintf("arena.history_default must be in [1, history_max], got %d", a.HistoryDefault))
	}
	if a.LeaderboardMax < 1 {
		errs = append(errs, fmt.Sprintf("arena.leaderboard_max must be >= 1, got %d", a.LeaderboardMax))
	}
	if a.AdminTokenHash != "" && !strings.HasPrefix(a.AdminTokenHash, "$2") {
		errs = append(errs, "arena.admin_token_hash must be a bcrypt hash")
	}
	if len(errs) > 0 {
		return fmt.Errorf("%s", strings.Join(errs, "; "))
	}
	return nil
}

func validateGenesis(g GenesisConfig) error {
	if !g.Enabled() {
		return nil
	}
	if g.Model == "" {
		return errors.New("genesis.model must not be empty when genesis.api_key is set")
	}
	if g.MaxTokens < 1 {
		return fmt.Errorf("genesis.max_tokens must be >= 1, got %d", g.MaxTokens)
	}
	return nil
}

// Load reads configuration from the given file path, applies environment variable
// overrides, and validates the result.
//
// Precondition: path must be a valid file path to a YAML configuration file.
// Postcondition: Returns a valid Config or a non-nil error.
func Load(path string) (Config, error) {
	v := NewViper()
	v.SetConfigFile(path)

	if err := v.ReadInConfig(); err != nil {
		return Config{}, fmt.Errorf("reading config file: %w", err)
	}
	return LoadFromViper(v)
}

// NewViper returns a Viper instance with defaults and FIGHTBOOK_ environment
// overrides applied but no config file.
func NewViper() *viper.Viper {
	v := viper.New()
	v.SetEnvPrefix("FIGHTBOOK")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	setDefaults(v)
	return v
}

// LoadFromViper builds a Config from an already-configured Viper instance.
//
// Precondition: v must be non-nil and have configuration values set.
// Postcondition: Returns a valid Config or a non-nil error.
func LoadFromViper(v *viper.Viper) (Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("unmarshalling config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.user", "fightbook")
	v.SetDefault("database.password", "fightbook")
	v.SetDefault("database.name", "fightbook")
	v.SetDefault("database.sslmode", "disable")
	v.SetDefault("database.max_conns", 10)
	v.SetDefault("database.min_conns", 2)
	v.SetDefault("database.max_conn_lifetime", "1h")

	v.SetDefault("http.host", "0.0.0.0")
	v.SetDefault("http.port", 8080)
	v.SetDefault("http.read_timeout", "10s")
	v.SetDefault("http.write_timeout", "30s")
	v.SetDefault("http.allowed_origin", "*")

	v.SetDefault("telnet.enabled", true)
	v.SetDefault("telnet.host", "0.0.0.0")
	v.SetDefault("telnet.port", 4000)
	v.SetDefault("telnet.read_timeout", "5m")
	v.SetDefault("telnet.write_timeout", "30s")
	v.SetDefault("telnet.line_delay", "150ms")

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")

	v.SetDefault("arena.store", StorePostgres)
	v.SetDefault("arena.fight_limit", 20)
	v.SetDefault("arena.fight_window", "1h")
	v.SetDefault("arena.register_limit", 5)
	v.SetDefault("arena.register_window", "1m")
	v.SetDefault("arena.history_default", 50)
	v.SetDefault("arena.history_max", 100)
	v.SetDefault("arena.leaderboard_max", 100)
	v.SetDefault("arena.admin_token_hash", "")

	v.SetDefault("engine.seed", 0)

	v.SetDefault("genesis.api_key", "")
	v.SetDefault("genesis.model", "claude-sonnet-4-5")
	v.SetDefault("genesis.max_tokens", 1024)
}
