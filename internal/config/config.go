package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-viper/mapstructure/v2"
	"github.com/pelletier/go-toml/v2"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"geosearch/internal/eventbus"
)

const (
	appName        = "geosearch"
	configFileName = "config.toml"
	envPrefix      = "GEOSEARCH"
)

// Config represents the application configuration
type Config struct {
	Search  SearchConfig           `mapstructure:"search" toml:"search"`
	UI      UIConfig               `mapstructure:"ui" toml:"ui"`
	Styles  map[string]StyleConfig `mapstructure:"styles" toml:"styles,omitempty" validate:"dive,keys,region,endkeys"`
	Logging LoggingConfig          `mapstructure:"logging" toml:"logging"`
}

// SearchConfig controls how the geocoder is queried
type SearchConfig struct {
	Endpoint  string   `mapstructure:"endpoint" toml:"endpoint" validate:"required,url"`
	Language  string   `mapstructure:"language" toml:"language" validate:"required"`
	Debounce  Duration `mapstructure:"debounce" toml:"debounce" validate:"gte=0"`
	UserAgent string   `mapstructure:"user_agent" toml:"user_agent" validate:"required"`
	Timeout   Duration `mapstructure:"timeout" toml:"timeout" validate:"gt=0"`
	// StaleResults decides what happens to a response that arrives after a
	// newer request was sent: "accept" keeps the last one to complete,
	// "drop" discards responses to superseded requests.
	StaleResults string `mapstructure:"stale_results" toml:"stale_results" validate:"oneof=accept drop"`
	// RateLimit is the maximum number of requests per second sent by this
	// client; 0 disables throttling.
	RateLimit float64 `mapstructure:"rate_limit" toml:"rate_limit" validate:"gte=0"`
}

// UIConfig holds the text and behaviour of the search field
type UIConfig struct {
	Placeholder    string   `mapstructure:"placeholder" toml:"placeholder"`
	NoResultsText  string   `mapstructure:"no_results_text" toml:"no_results_text"`
	LoadingText    string   `mapstructure:"loading_text" toml:"loading_text"`
	Icon           string   `mapstructure:"icon" toml:"icon"`
	DropdownHeight int      `mapstructure:"dropdown_height" toml:"dropdown_height" validate:"gte=1,lte=50"`
	BlurGrace      Duration `mapstructure:"blur_grace" toml:"blur_grace" validate:"gte=0"`
	Mouse          bool     `mapstructure:"mouse" toml:"mouse"`
	CursorBlink    bool     `mapstructure:"cursor_blink" toml:"cursor_blink"`
}

// StyleConfig overrides the style of one named UI region. Unset fields keep
// the built-in style.
type StyleConfig struct {
	Foreground       string `mapstructure:"foreground" toml:"foreground,omitempty"`
	Background       string `mapstructure:"background" toml:"background,omitempty"`
	Bold             *bool  `mapstructure:"bold" toml:"bold,omitempty"`
	Italic           *bool  `mapstructure:"italic" toml:"italic,omitempty"`
	Faint            *bool  `mapstructure:"faint" toml:"faint,omitempty"`
	Underline        *bool  `mapstructure:"underline" toml:"underline,omitempty"`
	Border           string `mapstructure:"border" toml:"border,omitempty" validate:"omitempty,oneof=none normal rounded thick double hidden"`
	BorderForeground string `mapstructure:"border_foreground" toml:"border_foreground,omitempty"`
	Padding          []int  `mapstructure:"padding" toml:"padding,omitempty" validate:"omitempty,max=4,dive,gte=0"`
	Margin           []int  `mapstructure:"margin" toml:"margin,omitempty" validate:"omitempty,max=4,dive,gte=0"`
	Width            int    `mapstructure:"width" toml:"width,omitempty" validate:"gte=0"`
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level  string `mapstructure:"level" toml:"level" validate:"oneof=trace debug info warn error disabled"`
	Format string `mapstructure:"format" toml:"format" validate:"oneof=console json"`
	File   string `mapstructure:"file" toml:"file"`
}

// StyleRegions lists the region names accepted under [styles].
var StyleRegions = []string{
	"root",
	"form",
	"input-wrapper",
	"input",
	"divider",
	"button",
	"dropdown",
	"options-list",
	"option",
	"option-highlighted",
	"empty-state",
	"loading-indicator",
}

// flagKeys maps command line flags onto configuration keys
var flagKeys = map[string]string{
	"endpoint":  "search.endpoint",
	"lang":      "search.language",
	"debounce":  "search.debounce",
	"log-level": "logging.level",
	"log-file":  "logging.file",
	"no-mouse":  "ui.no_mouse",
}

// ConfigService handles configuration management
type ConfigService interface {
	Load() (*Config, error)
	Save(config *Config) error
	LoadFromPath(path string) (*Config, error)
	SaveToPath(config *Config, path string) error
	Path() string
}

// configService is the concrete implementation
type configService struct {
	bus      eventbus.EventBus
	filePath string
	flags    *pflag.FlagSet
}

// Option configures a config service
type Option func(*configService)

// WithBus publishes ConfigLoaded events on the bus
func WithBus(bus eventbus.EventBus) Option {
	return func(cs *configService) { cs.bus = bus }
}

// WithFlags lets changed command line flags override file and environment values
func WithFlags(fs *pflag.FlagSet) Option {
	return func(cs *configService) { cs.flags = fs }
}

// WithPath uses an explicit config file instead of the default location
func WithPath(path string) Option {
	return func(cs *configService) {
		if path != "" {
			cs.filePath = path
		}
	}
}

// NewConfigService creates a new config service
func NewConfigService(opts ...Option) ConfigService {
	cs := &configService{filePath: DefaultPath()}
	for _, opt := range opts {
		opt(cs)
	}
	return cs
}

// Dir returns the directory holding the configuration file
func Dir() string {
	configDir, err := os.UserConfigDir()
	if err != nil {
		configDir, err = os.UserHomeDir()
		if err != nil {
			configDir = "."
		}
		configDir = filepath.Join(configDir, ".config")
	}
	return filepath.Join(configDir, appName)
}

// DefaultPath returns the default configuration file path
func DefaultPath() string {
	return filepath.Join(Dir(), configFileName)
}

// DefaultLogFile returns the default log file path
func DefaultLogFile() string {
	cacheDir, err := os.UserCacheDir()
	if err != nil {
		cacheDir = os.TempDir()
	}
	return filepath.Join(cacheDir, appName, appName+".log")
}

func (cs *configService) Path() string {
	return cs.filePath
}

// Load loads the configuration from the service's file. A missing file is
// not an error: defaults, environment and flags still apply.
func (cs *configService) Load() (*Config, error) {
	cfg, err := cs.load(cs.filePath, true)
	if err != nil {
		return nil, err
	}
	if cs.bus != nil {
		cs.bus.Publish(eventbus.ConfigLoadedEvent{Path: cs.filePath})
	}
	return cfg, nil
}

// LoadFromPath loads configuration from a specific path, which must exist
func (cs *configService) LoadFromPath(path string) (*Config, error) {
	return cs.load(path, false)
}

func (cs *configService) load(path string, allowMissing bool) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetConfigFile(path)
	v.SetConfigType("toml")
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if cs.flags != nil {
		for name, key := range flagKeys {
			if f := cs.flags.Lookup(name); f != nil && f.Changed {
				if err := v.BindPFlag(key, f); err != nil {
					return nil, fmt.Errorf("failed to bind flag %s: %w", name, err)
				}
			}
		}
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		missing := errors.As(err, &notFound) || errors.Is(err, os.ErrNotExist)
		if !missing || !allowMissing {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	// --no-mouse is a negative flag over ui.mouse
	if v.IsSet("ui.no_mouse") && v.GetBool("ui.no_mouse") {
		v.Set("ui.mouse", false)
	}

	var cfg Config
	hook := viper.DecodeHook(mapstructure.ComposeDecodeHookFunc(
		mapstructure.TextUnmarshallerHookFunc(),
		mapstructure.StringToSliceHookFunc(","),
	))
	if err := v.Unmarshal(&cfg, hook); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	if cfg.Styles == nil {
		cfg.Styles = make(map[string]StyleConfig)
	}

	if err := Validate(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Save saves the configuration to the service's file
func (cs *configService) Save(config *Config) error {
	return cs.SaveToPath(config, cs.filePath)
}

// SaveToPath saves configuration to a specific path
func (cs *configService) SaveToPath(config *Config, path string) error {
	if err := Validate(config); err != nil {
		return err
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := toml.Marshal(config)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// DefaultConfig returns the default configuration
func DefaultConfig() *Config {
	return &Config{
		Search: SearchConfig{
			Endpoint:     "https://nominatim.openstreetmap.org/search",
			Language:     "en",
			Debounce:     Duration(300 * time.Millisecond),
			UserAgent:    appName + "/1.0",
			Timeout:      Duration(10 * time.Second),
			StaleResults: "accept",
			RateLimit:    1,
		},
		UI: UIConfig{
			Placeholder:    "Search for a location...",
			NoResultsText:  "No locations found",
			LoadingText:    "Searching...",
			Icon:           "⌕",
			DropdownHeight: 6,
			BlurGrace:      Duration(100 * time.Millisecond),
			Mouse:          true,
			CursorBlink:    true,
		},
		Styles: make(map[string]StyleConfig),
		Logging: LoggingConfig{
			Level:  "info",
			Format: "console",
			File:   DefaultLogFile(),
		},
	}
}

func setDefaults(v *viper.Viper) {
	d := DefaultConfig()
	v.SetDefault("search.endpoint", d.Search.Endpoint)
	v.SetDefault("search.language", d.Search.Language)
	v.SetDefault("search.debounce", d.Search.Debounce.String())
	v.SetDefault("search.user_agent", d.Search.UserAgent)
	v.SetDefault("search.timeout", d.Search.Timeout.String())
	v.SetDefault("search.stale_results", d.Search.StaleResults)
	v.SetDefault("search.rate_limit", d.Search.RateLimit)
	v.SetDefault("ui.placeholder", d.UI.Placeholder)
	v.SetDefault("ui.no_results_text", d.UI.NoResultsText)
	v.SetDefault("ui.loading_text", d.UI.LoadingText)
	v.SetDefault("ui.icon", d.UI.Icon)
	v.SetDefault("ui.dropdown_height", d.UI.DropdownHeight)
	v.SetDefault("ui.blur_grace", d.UI.BlurGrace.String())
	v.SetDefault("ui.mouse", d.UI.Mouse)
	v.SetDefault("ui.cursor_blink", d.UI.CursorBlink)
	v.SetDefault("logging.level", d.Logging.Level)
	v.SetDefault("logging.format", d.Logging.Format)
	v.SetDefault("logging.file", d.Logging.File)
}
