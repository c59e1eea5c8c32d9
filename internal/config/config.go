package config

import (
	"os"
	"regexp"
	"time"

	"gopkg.in/yaml.v3"
)

// Config represents the daemon configuration
type Config struct {
	Source      EndpointConfig    `yaml:"source"`
	Target      EndpointConfig    `yaml:"target"`
	Poll        PollConfig        `yaml:"poll"`
	Log         LogConfig         `yaml:"log"`
	History     HistoryConfig     `yaml:"history"`
	Healthcheck HealthcheckConfig `yaml:"healthcheck"`
	EventBus    EventBusConfig    `yaml:"eventbus"`

	ShutdownTimeout Duration `yaml:"shutdown_timeout"` // General shutdown timeout for graceful stops
}

// GetShutdownTimeout returns the shutdown timeout with default
func (c *Config) GetShutdownTimeout() time.Duration {
	if c.ShutdownTimeout == 0 {
		return 5 * time.Second
	}
	return c.ShutdownTimeout.Duration()
}

// EndpointConfig describes one backlight device's sysfs file pair
type EndpointConfig struct {
	Brightness string `yaml:"brightness"`
	Max        string `yaml:"max"`
}

// PollConfig contains poll loop settings
type PollConfig struct {
	Interval Duration `yaml:"interval"`
}

// LogConfig contains logging settings
type LogConfig struct {
	Level  string `yaml:"level"`
	Colors bool   `yaml:"colors"`
}

// HistoryConfig contains sync history settings
type HistoryConfig struct {
	Enabled         bool     `yaml:"enabled"`
	Path            string   `yaml:"path"`
	RetentionDays   int      `yaml:"retention_days"`
	CleanupInterval Duration `yaml:"cleanup_interval"`
}

// HealthcheckConfig contains health check server settings
type HealthcheckConfig struct {
	Enabled bool   `yaml:"enabled"`
	Host    string `yaml:"host"`
	Port    int    `yaml:"port"`
}

// EventBusConfig contains event bus settings
type EventBusConfig struct {
	Workers   int `yaml:"workers"`    // Number of worker goroutines (default: 2)
	QueueSize int `yaml:"queue_size"` // Event queue size (default: 64)
}

// GetWorkers returns worker count with default
func (c *EventBusConfig) GetWorkers() int {
	if c.Workers <= 0 {
		return 2
	}
	return c.Workers
}

// GetQueueSize returns queue size with default
func (c *EventBusConfig) GetQueueSize() int {
	if c.QueueSize <= 0 {
		return 64
	}
	return c.QueueSize
}

// Duration is a wrapper around time.Duration for YAML unmarshalling
type Duration time.Duration

// UnmarshalYAML implements yaml.Unmarshaler for Duration
func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var s string
	if err := value.Decode(&s); err != nil {
		return err
	}
	parsed, err := time.ParseDuration(s)
	if err != nil {
		return err
	}
	*d = Duration(parsed)
	return nil
}

// Duration returns the underlying time.Duration
func (d Duration) Duration() time.Duration {
	return time.Duration(d)
}

// Default returns the built-in configuration matching the stock
// intel_backlight -> asus_screenpad setup. Used when no config file exists.
func Default() *Config {
	cfg := &Config{}
	applyDefaults(cfg)
	return cfg
}

// Load reads and parses the configuration file
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	// Expand environment variables
	expanded := expandEnvVars(string(data))

	var cfg Config
	if err := yaml.Unmarshal([]byte(expanded), &cfg); err != nil {
		return nil, err
	}

	applyDefaults(&cfg)
	return &cfg, nil
}

func applyDefaults(cfg *Config) {
	if cfg.Source.Brightness == "" {
		cfg.Source.Brightness = "/sys/class/backlight/intel_backlight/brightness"
	}
	if cfg.Source.Max == "" {
		cfg.Source.Max = "/sys/class/backlight/intel_backlight/max_brightness"
	}
	if cfg.Target.Brightness == "" {
		cfg.Target.Brightness = "/sys/class/backlight/asus_screenpad/brightness"
	}
	if cfg.Target.Max == "" {
		cfg.Target.Max = "/sys/class/backlight/asus_screenpad/max_brightness"
	}

	if cfg.Poll.Interval == 0 {
		cfg.Poll.Interval = Duration(100 * time.Millisecond)
	}

	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}

	// History defaults - recording is off unless enabled explicitly
	if cfg.History.Path == "" {
		cfg.History.Path = "/var/lib/backlightd/history.sqlite"
	}
	if cfg.History.RetentionDays == 0 {
		cfg.History.RetentionDays = 7
	}
	if cfg.History.CleanupInterval == 0 {
		cfg.History.CleanupInterval = Duration(24 * time.Hour)
	}

	// Healthcheck defaults
	if cfg.Healthcheck.Port == 0 {
		cfg.Healthcheck.Port = 9377
	}
	if cfg.Healthcheck.Host == "" {
		cfg.Healthcheck.Host = "127.0.0.1"
	}
}

// expandEnvVars expands environment variables in the format ${VAR} or ${VAR:default}
func expandEnvVars(input string) string {
	re := regexp.MustCompile(`\$\{([^}:]+)(?::([^}]*))?\}`)

	return re.ReplaceAllStringFunc(input, func(match string) string {
		parts := re.FindStringSubmatch(match)
		if len(parts) < 2 {
			return match
		}

		varName := parts[1]
		defaultVal := ""
		if len(parts) >= 3 {
			defaultVal = parts[2]
		}

		if val := os.Getenv(varName); val != "" {
			return val
		}
		return defaultVal
	})
}
