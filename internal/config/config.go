package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/pelletier/go-toml/v2"

	"recpick/internal/eventbus"
)

// FileName is the name of the configuration file in the config directory
const FileName = "recpick.toml"

// Config represents the application configuration
type Config struct {
	Version int            `toml:"version"`
	Search  SearchSettings `toml:"search"`
	Remote  RemoteSettings `toml:"remote"`
	Fields  []FieldConfig  `toml:"fields"`
	Server  ServerSettings `toml:"server"`
	UI      UISettings     `toml:"ui"`
}

// SearchSettings tunes the incremental search of every picker
type SearchSettings struct {
	MinLength int  `toml:"min_length"`
	DelayMS   int  `toml:"delay_ms"`
	PageSize  int  `toml:"page_size"`
	TimeoutMS int  `toml:"timeout_ms"`
	Spinner   bool `toml:"spinner"`
}

// Delay returns the settle delay
func (s SearchSettings) Delay() time.Duration {
	return time.Duration(s.DelayMS) * time.Millisecond
}

// Timeout returns the per-fetch timeout
func (s SearchSettings) Timeout() time.Duration {
	return time.Duration(s.TimeoutMS) * time.Millisecond
}

// RemoteSettings describes the record service
type RemoteSettings struct {
	BaseURL     string `toml:"base_url"`
	RecordsPath string `toml:"records_path"`
	ResultsPath string `toml:"results_path"`
	IDField     string `toml:"id_field"`
	LimitParam  string `toml:"limit_param"`
	OffsetParam string `toml:"offset_param"`
	HTTP2       bool   `toml:"http2"`
}

// FieldConfig declares one picker field of the form
type FieldConfig struct {
	Name        string         `toml:"name"`
	Title       string         `toml:"title"`
	SearchParam string         `toml:"search_param"`
	LabelField  string         `toml:"label_field,omitempty"`
	InitialID   string         `toml:"initial_id,omitempty"`
	Placeholder string         `toml:"placeholder,omitempty"`
	Params      map[string]any `toml:"params,omitempty"`
}

// ServerSettings configures the record service binary
type ServerSettings struct {
	Addr     string `toml:"addr"`
	DBPath   string `toml:"db_path"`
	SeedPath string `toml:"seed_path,omitempty"`
	H2C      bool   `toml:"h2c"`
}

// UISettings represents UI-related configuration
type UISettings struct {
	RememberSelection bool `toml:"remember_selection"`
}

// ConfigService handles configuration management
type ConfigService interface {
	Load() (*Config, error)
	Save(config *Config) error
	LoadFromPath(path string) (*Config, error)
	SaveToPath(config *Config, path string) error
}

// configService is the concrete implementation
type configService struct {
	bus      eventbus.EventBus
	filePath string
}

// NewConfigService creates a new config service
func NewConfigService() ConfigService {
	configDir, err := os.UserConfigDir()
	if err != nil {
		// Fallback to home directory
		configDir, err = os.UserHomeDir()
		if err != nil {
			configDir = "."
		}
		configDir = filepath.Join(configDir, ".config")
	}

	return &configService{
		filePath: filepath.Join(configDir, "recpick", FileName),
	}
}

// NewConfigServiceWithBus creates a config service with event bus support
func NewConfigServiceWithBus(bus eventbus.EventBus) ConfigService {
	cs := NewConfigService().(*configService)
	cs.bus = bus
	return cs
}

// Path returns the default config file location
func (cs *configService) Path() string {
	return cs.filePath
}

// Load loads the configuration from the default location, falling back to
// the defaults when no file exists
func (cs *configService) Load() (*Config, error) {
	if _, err := os.Stat(cs.filePath); errors.Is(err, os.ErrNotExist) {
		cfg := DefaultConfig()
		cs.publishLoaded(cs.filePath, cfg)
		return cfg, nil
	}

	cfg, err := readFile(cs.filePath)
	if err != nil {
		return nil, err
	}
	cs.publishLoaded(cs.filePath, cfg)
	return cfg, nil
}

// Save saves the configuration to the default location
func (cs *configService) Save(config *Config) error {
	if err := writeFile(config, cs.filePath); err != nil {
		return err
	}
	if cs.bus != nil {
		cs.bus.Publish(eventbus.ConfigSavedEvent{Path: cs.filePath})
	}
	return nil
}

// LoadFromPath loads configuration from a specific path
func (cs *configService) LoadFromPath(path string) (*Config, error) {
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("config file not found: %s", path)
	}
	cfg, err := readFile(path)
	if err != nil {
		return nil, err
	}
	cs.publishLoaded(path, cfg)
	return cfg, nil
}

// SaveToPath saves configuration to a specific path
func (cs *configService) SaveToPath(config *Config, path string) error {
	if err := writeFile(config, path); err != nil {
		return err
	}
	if cs.bus != nil {
		cs.bus.Publish(eventbus.ConfigSavedEvent{Path: path})
	}
	return nil
}

func (cs *configService) publishLoaded(path string, cfg *Config) {
	if cs.bus == nil {
		return
	}
	cs.bus.Publish(eventbus.ConfigLoadedEvent{
		Path:   path,
		Fields: len(cfg.Fields),
	})
}

func readFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	cfg, err := Parse(data)
	if err != nil {
		return nil, err
	}
	return cfg, nil
}

func writeFile(config *Config, path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := toml.Marshal(config)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// Parse decodes TOML on top of the defaults and validates the result
func Parse(data []byte) (*Config, error) {
	cfg := DefaultConfig()
	cfg.Fields = nil
	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	if len(cfg.Fields) == 0 {
		cfg.Fields = DefaultConfig().Fields
	}
	cfg.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// applyDefaults fills zero values a partial file leaves behind
func (c *Config) applyDefaults() {
	d := DefaultConfig()
	if c.Search.MinLength <= 0 {
		c.Search.MinLength = d.Search.MinLength
	}
	if c.Search.DelayMS <= 0 {
		c.Search.DelayMS = d.Search.DelayMS
	}
	if c.Search.PageSize <= 0 {
		c.Search.PageSize = d.Search.PageSize
	}
	if c.Search.TimeoutMS <= 0 {
		c.Search.TimeoutMS = d.Search.TimeoutMS
	}
	for i := range c.Fields {
		if c.Fields[i].Title == "" {
			c.Fields[i].Title = c.Fields[i].Name
		}
		if c.Fields[i].LabelField == "" {
			c.Fields[i].LabelField = "name"
		}
	}
}

// Validate reports the first missing required value
func (c *Config) Validate() error {
	seen := make(map[string]bool, len(c.Fields))
	for i, f := range c.Fields {
		if f.Name == "" {
			return fmt.Errorf("invalid config: fields[%d]: name is required", i)
		}
		if f.SearchParam == "" {
			return fmt.Errorf("invalid config: field %s: search_param is required", f.Name)
		}
		if seen[f.Name] {
			return fmt.Errorf("invalid config: duplicate field %s", f.Name)
		}
		seen[f.Name] = true
	}
	return nil
}

// DefaultConfig returns the default configuration
func DefaultConfig() *Config {
	return &Config{
		Version: 1,
		Search: SearchSettings{
			MinLength: 3,
			DelayMS:   500,
			PageSize:  10,
			TimeoutMS: 10000,
		},
		Remote: RemoteSettings{
			BaseURL:     "http://127.0.0.1:8085",
			RecordsPath: "/api/records",
			ResultsPath: "results",
			IDField:     "id",
		},
		Fields: []FieldConfig{
			{
				Name:        "owner",
				Title:       "Owner",
				SearchParam: "q",
				LabelField:  "name",
				Placeholder: "type 3+ letters to search people",
				Params:      map[string]any{"kind": "person"},
			},
			{
				Name:        "vendor",
				Title:       "Vendor",
				SearchParam: "q",
				LabelField:  "name",
				Placeholder: "type 3+ letters to search companies",
				Params:      map[string]any{"kind": "company"},
			},
		},
		Server: ServerSettings{
			Addr:   "127.0.0.1:8085",
			DBPath: "records.db",
		},
	}
}
