// Package config provides Viper-based configuration loading for the battle simulator.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
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

// LoggingConfig holds structured logging settings.
type LoggingConfig struct {
	// Level is the minimum log level: "debug", "info", "warn", "error".
	Level string `mapstructure:"level"`
	// Format is the log output format: "json" or "console".
	Format string `mapstructure:"format"`
}

// BattleConfig holds the tunables of the combat core.
type BattleConfig struct {
	// Seed drives the deterministic random source. Zero selects the crypto source.
	Seed uint64 `mapstructure:"seed"`
	// Debug turns invariant violations into panics.
	Debug bool `mapstructure:"debug"`
	// DefaultSpellDuration is the power used for spells cast without a hero.
	DefaultSpellDuration int `mapstructure:"default_spell_duration"`
	// MoatDefensePenalty is subtracted from the defense of units standing in a moat.
	MoatDefensePenalty int `mapstructure:"moat_defense_penalty"`
	// MaxRounds bounds an automated battle.
	MaxRounds int `mapstructure:"max_rounds"`
}

// ContentConfig points at creature and spell definition directories.
// Empty directories select the embedded defaults.
type ContentConfig struct {
	CreaturesDir string `mapstructure:"creatures_dir"`
	SpellsDir    string `mapstructure:"spells_dir"`
}

// StorageConfig selects the snapshot store backend.
type StorageConfig struct {
	// Driver is one of "postgres", "sqlite", "memory" or "none".
	Driver     string         `mapstructure:"driver"`
	Database   DatabaseConfig `mapstructure:"database"`
	SQLitePath string         `mapstructure:"sqlite_path"`
}

// ScriptingConfig holds Lua hook settings.
type ScriptingConfig struct {
	// ScriptDir is scanned for *.lua files. Empty selects the embedded hooks.
	ScriptDir string `mapstructure:"script_dir"`
	// InstructionLimit bounds a single hook invocation. Zero selects the default.
	InstructionLimit int `mapstructure:"instruction_limit"`
}

// TelemetryConfig toggles OpenTelemetry instruments.
type TelemetryConfig struct {
	MetricsEnabled bool   `mapstructure:"metrics_enabled"`
	ServiceName    string `mapstructure:"service_name"`
}

// Config is the top-level application configuration.
type Config struct {
	Logging   LoggingConfig   `mapstructure:"logging"`
	Battle    BattleConfig    `mapstructure:"battle"`
	Content   ContentConfig   `mapstructure:"content"`
	Storage   StorageConfig   `mapstructure:"storage"`
	Scripting ScriptingConfig `mapstructure:"scripting"`
	Telemetry TelemetryConfig `mapstructure:"telemetry"`
}

// Validate checks all configuration invariants.
//
// Postcondition: Returns nil if configuration is valid, or an error describing all violations.
func (c Config) Validate() error {
	var errs []string

	if err := validateLogging(c.Logging); err != nil {
		errs = append(errs, err.Error())
	}
	if err := validateBattle(c.Battle); err != nil {
		errs = append(errs, err.Error())
	}
	if err := validateStorage(c.Storage); err != nil {
		errs = append(errs, err.Error())
	}
	if err := validateScripting(c.Scripting); err != nil {
		errs = append(errs, err.Error())
	}
	if c.Telemetry.MetricsEnabled && c.Telemetry.ServiceName == "" {
		errs = append(errs, "telemetry.service_name must not be empty when metrics are enabled")
	}

	if len(errs) > 0 {
		return fmt.Errorf("configuration validation failed: %s", strings.Join(errs, "; "))
	}
	return nil
}

func validateBattle(b BattleConfig) error {
	var errs []string
	if b.DefaultSpellDuration < 1 {
		errs = append(errs, fmt.Sprintf("battle.default_spell_duration must be >= 1, got %d", b.DefaultSpellDuration))
	}
	if b.MoatDefensePenalty < 0 {
		errs = append(errs, fmt.Sprintf("battle.moat_defense_penalty must be >= 0, got %d", b.MoatDefensePenalty))
	}
	if b.MaxRounds < 1 {
		errs = append(errs, fmt.Sprintf("battle.max_rounds must be >= 1, got %d", b.MaxRounds))
	}
	if len(errs) > 0 {
		return fmt.Errorf("%s", strings.Join(errs, "; "))
	}
	return nil
}

func validateStorage(s StorageConfig) error {
	switch s.Driver {
	case "none", "memory":
		return nil
	case "sqlite":
		if s.SQLitePath == "" {
			return errors.New("storage.sqlite_path must not be empty for the sqlite driver")
		}
		return nil
	case "postgres":
		return validateDatabase(s.Database)
	default:
		return fmt.Errorf("storage.driver must be one of [postgres, sqlite, memory, none], got %q", s.Driver)
	}
}

func validateDatabase(d DatabaseConfig) error {
	var errs []string
	if d.Host == "" {
		errs = append(errs, "storage.database.host must not be empty")
	}
	if d.Port < 1 || d.Port > 65535 {
		errs = append(errs, fmt.Sprintf("storage.database.port must be 1-65535, got %d", d.Port))
	}
	if d.User == "" {
		errs = append(errs, "storage.database.user must not be empty")
	}
	if d.Name == "" {
		errs = append(errs, "storage.database.name must not be empty")
	}
	validSSL := map[string]bool{"disable": true, "require": true, "verify-ca": true, "verify-full": true}
	if !validSSL[d.SSLMode] {
		errs = append(errs, fmt.Sprintf("storage.database.sslmode must be one of [disable, require, verify-ca, verify-full], got %q", d.SSLMode))
	}
	if d.MaxConns < 1 {
		errs = append(errs, fmt.Sprintf("storage.database.max_conns must be >= 1, got %d", d.MaxConns))
	}
	if d.MinConns < 0 {
		errs = append(errs, fmt.Sprintf("storage.database.min_conns must be >= 0, got %d", d.MinConns))
	}
	if d.MinConns > d.MaxConns {
		errs = append(errs, "storage.database.min_conns must not exceed storage.database.max_conns")
	}
	if len(errs) > 0 {
		return fmt.Errorf("%s", strings.Join(errs, "; "))
	}
	return nil
}

func validateScripting(s ScriptingConfig) error {
	if s.ScriptDir != "" && s.InstructionLimit < 1 {
		return fmt.Errorf("scripting.instruction_limit must be >= 1 when scripting is enabled, got %d", s.InstructionLimit)
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

// NewViper returns a Viper instance with defaults and WARBAND_ environment
// overrides installed.
func NewViper() *viper.Viper {
	v := viper.New()

	// Environment variable overrides with WARBAND_ prefix
	v.SetEnvPrefix("WARBAND")
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
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")

	v.SetDefault("battle.seed", 0)
	v.SetDefault("battle.debug", false)
	v.SetDefault("battle.default_spell_duration", 3)
	v.SetDefault("battle.moat_defense_penalty", 3)
	v.SetDefault("battle.max_rounds", 50)

	v.SetDefault("content.creatures_dir", "")
	v.SetDefault("content.spells_dir", "")

	v.SetDefault("storage.driver", "none")
	v.SetDefault("storage.sqlite_path", "warband.db")
	v.SetDefault("storage.database.host", "localhost")
	v.SetDefault("storage.database.port", 5432)
	v.SetDefault("storage.database.user", "warband")
	v.SetDefault("storage.database.password", "warband")
	v.SetDefault("storage.database.name", "warband")
	v.SetDefault("storage.database.sslmode", "disable")
	v.SetDefault("storage.database.max_conns", 10)
	v.SetDefault("storage.database.min_conns", 2)
	v.SetDefault("storage.database.max_conn_lifetime", "1h")

	v.SetDefault("scripting.script_dir", "")
	v.SetDefault("scripting.instruction_limit", 100000)

	v.SetDefault("telemetry.metrics_enabled", false)
	v.SetDefault("telemetry.service_name", "warband")
}
