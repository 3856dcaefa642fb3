package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

// Config holds application configuration.
type Config struct {
	Log     LogConfig
	Journal JournalConfig
	Metrics MetricsConfig
	UI      UIConfig
}

// LogConfig controls the zap file logger. An empty path disables logging.
type LogConfig struct {
	Path  string
	Level string
}

// JournalConfig holds the sqlite action journal settings.
type JournalConfig struct {
	Enabled bool
	Path    string
}

// MetricsConfig holds the prometheus endpoint. Empty Addr disables it.
type MetricsConfig struct {
	Addr string
}

// UIConfig holds presentation settings.
type UIConfig struct {
	Placeholder     string
	OrderExpr       string `mapstructure:"order_expr"`
	Suggestions     []string
	SuggestDistance int `mapstructure:"suggest_distance"`
	SuggestLimit    int `mapstructure:"suggest_limit"`
}

// DefaultOrderExpr reproduces the "<name> x<count>" order line.
const DefaultOrderExpr = `name + " x" + string(count)`

func home() string {
	if h, err := os.UserHomeDir(); err == nil {
		return h
	}
	return os.Getenv("HOME")
}

// Path returns the config file location: $STATEBOX_CONFIG or
// ~/.config/statebox/config.toml.
func Path() string {
	if p := os.Getenv("STATEBOX_CONFIG"); p != "" {
		return p
	}
	return filepath.Join(home(), ".config", "statebox", "config.toml")
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("log.path", filepath.Join(home(), ".local", "state", "statebox", "statebox.log"))
	v.SetDefault("log.level", "info")
	v.SetDefault("journal.enabled", true)
	v.SetDefault("journal.path", filepath.Join(home(), ".local", "share", "statebox", "journal.db"))
	v.SetDefault("metrics.addr", "")
	v.SetDefault("ui.placeholder", "Enter some fun content")
	v.SetDefault("ui.order_expr", DefaultOrderExpr)
	v.SetDefault("ui.suggestions", []string{"fishing huts", "fishing rods", "boat hire", "bait shop", "tackle box"})
	v.SetDefault("ui.suggest_distance", 3)
	v.SetDefault("ui.suggest_limit", 3)
}

// Default returns the configuration used when no file or env override exists.
func Default() Config {
	v := viper.New()
	setDefaults(v)
	var c Config
	_ = v.Unmarshal(&c)
	return c
}

// Load reads configuration from file and env. Env var overrides use prefix STATEBOX_.
// A path argument takes precedence over STATEBOX_CONFIG.
func Load(path string) (Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetConfigType("toml")
	if path == "" {
		path = Path()
	}
	v.SetConfigFile(path)

	v.SetEnvPrefix("STATEBOX")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if err := v.ReadInConfig(); err != nil {
		if _, statErr := os.Stat(path); statErr == nil {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
	}

	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return Config{}, fmt.Errorf("unmarshal config: %w", err)
	}
	return normalize(c), nil
}

func normalize(c Config) Config {
	d := Default()
	c.Log.Level = strings.ToLower(strings.TrimSpace(c.Log.Level))
	if c.Log.Level == "" {
		c.Log.Level = d.Log.Level
	}
	if strings.TrimSpace(c.UI.OrderExpr) == "" {
		c.UI.OrderExpr = d.UI.OrderExpr
	}
	if c.UI.SuggestDistance < 0 {
		c.UI.SuggestDistance = 0
	}
	if c.UI.SuggestLimit <= 0 {
		c.UI.SuggestLimit = d.UI.SuggestLimit
	}
	return c
}

// Save writes cfg to path (Path() when empty), creating the directory if needed.
func Save(path string, cfg Config) error {
	if path == "" {
		path = Path()
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("mkdir config dir: %w", err)
	}

	v := viper.New()
	v.SetConfigType("toml")
	v.Set("log.path", cfg.Log.Path)
	v.Set("log.level", cfg.Log.Level)
	v.Set("journal.enabled", cfg.Journal.Enabled)
	v.Set("journal.path", cfg.Journal.Path)
	v.Set("metrics.addr", cfg.Metrics.Addr)
	v.Set("ui.placeholder", cfg.UI.Placeholder)
	v.Set("ui.order_expr", cfg.UI.OrderExpr)
	v.Set("ui.suggestions", cfg.UI.Suggestions)
	v.Set("ui.suggest_distance", cfg.UI.SuggestDistance)
	v.Set("ui.suggest_limit", cfg.UI.SuggestLimit)

	if err := v.WriteConfigAs(path); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}
