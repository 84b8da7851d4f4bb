// Package config loads the formbuilder service configuration from YAML with
// environment overrides.
package config

import (
	"errors"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/goliatone/go-formbuilder/components/lookups"
	"github.com/goliatone/go-formbuilder/pkg/layout"
	"github.com/goliatone/go-formbuilder/pkg/model"
	"github.com/goliatone/go-formbuilder/pkg/naming"
)

// Environment variables that override file values.
const (
	EnvAddr     = "FORMBUILDER_ADDR"
	EnvDSN      = "FORMBUILDER_DSN"
	EnvLogLevel = "FORMBUILDER_LOG_LEVEL"
)

// Config is the root configuration.
type Config struct {
	Server  ServerConfig  `yaml:"server"`
	Store   StoreConfig   `yaml:"store"`
	Logging LoggingConfig `yaml:"logging"`
	Builder BuilderConfig `yaml:"builder"`
	Lookups LookupsConfig `yaml:"lookups"`
}

// ServerConfig configures the HTTP listener.
type ServerConfig struct {
	Addr            string        `yaml:"addr"`
	ReadTimeout     time.Duration `yaml:"read_timeout"`
	WriteTimeout    time.Duration `yaml:"write_timeout"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
	// AllowedOrigins are host patterns (path.Match syntax) that may open the
	// editing socket from another origin.
	AllowedOrigins []string `yaml:"allowed_origins,omitempty"`
}

// StoreConfig configures template persistence.
type StoreConfig struct {
	DSN string `yaml:"dsn"`
}

// LoggingConfig configures zap.
type LoggingConfig struct {
	Level       string `yaml:"level"`
	Development bool   `yaml:"development"`
}

// BuilderConfig tunes the editor. An empty SystemFields list keeps the
// built-in catalog.
type BuilderConfig struct {
	StarterTitle string              `yaml:"starter_title"`
	SystemFields []SystemFieldConfig `yaml:"system_fields"`
}

// SystemFieldConfig is the YAML form of naming.SystemField.
type SystemFieldConfig struct {
	Name           string        `yaml:"name"`
	Label          string        `yaml:"label"`
	Type           string        `yaml:"type"`
	ColumnSpan     int           `yaml:"column_span"`
	Required       bool          `yaml:"required"`
	Critical       bool          `yaml:"critical"`
	LabelFragments []string      `yaml:"label_fragments"`
	Source         *SourceConfig `yaml:"source"`
}

// SourceConfig binds a system field to a lookup table.
type SourceConfig struct {
	Table        string `yaml:"table"`
	DisplayField string `yaml:"display_field"`
	ValueField   string `yaml:"value_field"`
}

// LookupsConfig configures the lookup component. Tables are seeded into the
// store on startup.
type LookupsConfig struct {
	DefaultLimit int                         `yaml:"default_limit"`
	MaxLimit     int                         `yaml:"max_limit"`
	Tables       map[string][]lookups.Option `yaml:"tables"`
}

// DefaultConfig returns the configuration used when no file is present.
func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Addr:            ":8080",
			ReadTimeout:     15 * time.Second,
			WriteTimeout:    30 * time.Second,
			ShutdownTimeout: 10 * time.Second,
		},
		Store: StoreConfig{
			DSN: "file:formbuilder.db?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)",
		},
		Logging: LoggingConfig{
			Level: "info",
		},
		Lookups: LookupsConfig{
			DefaultLimit: 20,
			MaxLimit:     100,
		},
	}
}

// Load reads path on top of the defaults. A missing file is not an error.
// Environment overrides apply either way.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	if strings.TrimSpace(path) != "" {
		data, err := os.ReadFile(path)
		switch {
		case errors.Is(err, os.ErrNotExist):
		case err != nil:
			return nil, fmt.Errorf("config: read %s: %w", path, err)
		default:
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("config: parse %s: %w", path, err)
			}
		}
	}

	cfg.applyEnvOverrides()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Save writes the configuration as YAML.
func (c *Config) Save(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("config: create directory: %w", err)
	}
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("config: marshal: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("config: write %s: %w", path, err)
	}
	return nil
}

func (c *Config) applyEnvOverrides() {
	if addr := os.Getenv(EnvAddr); addr != "" {
		c.Server.Addr = addr
	}
	if dsn := os.Getenv(EnvDSN); dsn != "" {
		c.Store.DSN = dsn
	}
	if level := os.Getenv(EnvLogLevel); level != "" {
		c.Logging.Level = level
	}
}

var validLevels = []string{"debug", "info", "warn", "error"}

// Validate checks values the service cannot start without.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.Server.Addr) == "" {
		return errors.New("config: server.addr is required")
	}
	for _, pattern := range c.Server.AllowedOrigins {
		if _, err := path.Match(pattern, ""); err != nil {
			return fmt.Errorf("config: server.allowed_origins %q: %w", pattern, err)
		}
	}
	level := strings.ToLower(strings.TrimSpace(c.Logging.Level))
	valid := false
	for _, candidate := range validLevels {
		if level == candidate {
			valid = true
			break
		}
	}
	if !valid {
		return fmt.Errorf("config: invalid logging.level %q (valid: %v)", c.Logging.Level, validLevels)
	}
	for i, field := range c.Builder.SystemFields {
		if strings.TrimSpace(field.Name) == "" {
			return fmt.Errorf("config: builder.system_fields[%d]: name is required", i)
		}
		if _, ok := model.ParseFieldType(field.Type); !ok {
			return fmt.Errorf("config: builder.system_fields[%d]: unknown type %q", i, field.Type)
		}
		if field.ColumnSpan < 0 || field.ColumnSpan > layout.DefaultColumns {
			return fmt.Errorf("config: builder.system_fields[%d]: column_span must be within 0..%d", i, layout.DefaultColumns)
		}
		if field.Source != nil && strings.TrimSpace(field.Source.Table) == "" {
			return fmt.Errorf("config: builder.system_fields[%d]: source.table is required", i)
		}
	}
	return nil
}

// Catalog returns the system field catalog the editor classifies with.
func (c *Config) Catalog() naming.Catalog {
	if len(c.Builder.SystemFields) == 0 {
		return naming.DefaultCatalog()
	}
	fields := make([]naming.SystemField, 0, len(c.Builder.SystemFields))
	for _, raw := range c.Builder.SystemFields {
		fieldType, _ := model.ParseFieldType(raw.Type)
		span := raw.ColumnSpan
		if span == 0 {
			span = layout.DefaultColumns
		}
		field := naming.SystemField{
			Name:           strings.TrimSpace(raw.Name),
			Label:          raw.Label,
			Type:           fieldType,
			ColumnSpan:     span,
			Required:       raw.Required || raw.Critical,
			Critical:       raw.Critical,
			LabelFragments: append([]string(nil), raw.LabelFragments...),
		}
		if raw.Source != nil {
			field.Source = &model.DynamicSource{
				Table:        raw.Source.Table,
				DisplayField: raw.Source.DisplayField,
				ValueField:   raw.Source.ValueField,
			}
		}
		fields = append(fields, field)
	}
	return naming.NewCatalog(fields...)
}
