// Package config loads daemon settings from an optional YAML file with
// UPLINK_* environment overrides on top.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/rs/zerolog"
	"gopkg.in/yaml.v3"

	"uplink/internal/domain"
)

// Duration wraps time.Duration so YAML values read like "15m" or "30s".
type Duration time.Duration

func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var raw string
	if err := value.Decode(&raw); err != nil {
		return err
	}
	parsed, err := time.ParseDuration(raw)
	if err != nil {
		return fmt.Errorf("config: parse duration %q: %w", raw, err)
	}
	*d = Duration(parsed)
	return nil
}

// Std returns the wrapped time.Duration.
func (d Duration) Std() time.Duration { return time.Duration(d) }

// Queue is the declarative slice of a queue registration. Code-level parts
// of a registration (serializers, hooks) cannot be expressed here; IDField
// covers the common extractor case of picking one response key.
type Queue struct {
	Name            string            `yaml:"name"`
	Endpoint        string            `yaml:"endpoint"`
	Method          string            `yaml:"method"`
	SuccessStatuses []int             `yaml:"success_statuses"`
	MaxRetries      int               `yaml:"max_retries"`
	Headers         map[string]string `yaml:"headers"`
	IDField         string            `yaml:"id_field"`
}

// ToDomain converts the declarative queue into a registration config.
func (q Queue) ToDomain() domain.QueueConfig {
	cfg := domain.QueueConfig{
		Name:            q.Name,
		Endpoint:        q.Endpoint,
		Method:          q.Method,
		SuccessStatuses: q.SuccessStatuses,
		MaxRetries:      q.MaxRetries,
		Headers:         q.Headers,
	}
	if q.IDField != "" {
		field := q.IDField
		cfg.ExtractID = func(body map[string]any) string {
			switch v := body[field].(type) {
			case string:
				return v
			case float64:
				return strconv.FormatFloat(v, 'f', -1, 64)
			default:
				return ""
			}
		}
	}
	return cfg
}

// Config is the full daemon configuration.
type Config struct {
	Addr   string `yaml:"addr"`
	DBPath string `yaml:"db_path"`

	BaseURL        string            `yaml:"base_url"`
	RequestTimeout Duration          `yaml:"request_timeout"`
	Headers        map[string]string `yaml:"headers"`
	AuthToken      string            `yaml:"auth_token"`

	SyncInterval Duration `yaml:"sync_interval"`
	SyncSpec     string   `yaml:"sync_spec"`

	BatteryThreshold int    `yaml:"battery_threshold"`
	ProbeURL         string `yaml:"probe_url"`
	OfflineNotice    bool   `yaml:"offline_notice"`
	BackgroundOnly   bool   `yaml:"background_only"`

	Queues []Queue `yaml:"queues"`

	LogLevel string `yaml:"log_level"`
	Pretty   bool   `yaml:"pretty"`
}

// Default returns the configuration used when no file and no environment
// overrides are present.
func Default() Config {
	return Config{
		Addr:           ":8080",
		DBPath:         "uplink.db",
		RequestTimeout: Duration(30 * time.Second),
		SyncInterval:   Duration(15 * time.Minute),
		LogLevel:       "info",
	}
}

// Load reads the YAML file at path (skipped when path is empty), layers
// environment overrides on top of the defaults, and validates the result.
func Load(path string) (Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("config: read %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("config: parse %s: %w", path, err)
		}
	}

	if err := cfg.applyEnv(); err != nil {
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c *Config) applyEnv() error {
	if v := os.Getenv("UPLINK_ADDR"); v != "" {
		c.Addr = v
	}
	if v := os.Getenv("UPLINK_DB"); v != "" {
		c.DBPath = v
	}
	if v := os.Getenv("UPLINK_BASE_URL"); v != "" {
		c.BaseURL = v
	}
	if v := os.Getenv("UPLINK_AUTH_TOKEN"); v != "" {
		c.AuthToken = v
	}
	if v := os.Getenv("UPLINK_LOG_LEVEL"); v != "" {
		c.LogLevel = v
	}
	if v := os.Getenv("UPLINK_PROBE_URL"); v != "" {
		c.ProbeURL = v
	}
	if v := os.Getenv("UPLINK_SYNC_INTERVAL"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("config: parse UPLINK_SYNC_INTERVAL %q: %w", v, err)
		}
		c.SyncInterval = Duration(d)
	}
	return nil
}

// Validate rejects configurations the daemon could not start with. Full
// queue validation happens again at registration.
func (c Config) Validate() error {
	if _, err := zerolog.ParseLevel(c.LogLevel); err != nil {
		return fmt.Errorf("config: log level %q: %w", c.LogLevel, err)
	}
	if len(c.Queues) > 0 && c.BaseURL == "" {
		return errors.New("config: base_url is required when queues are configured")
	}
	for _, q := range c.Queues {
		if q.Name == "" {
			return errors.New("config: every queue needs a name")
		}
		if q.Endpoint == "" {
			return fmt.Errorf("config: queue %q needs an endpoint", q.Name)
		}
	}
	return nil
}

// QueueConfigs maps every declarative queue to its registration form.
func (c Config) QueueConfigs() []domain.QueueConfig {
	out := make([]domain.QueueConfig, 0, len(c.Queues))
	for _, q := range c.Queues {
		out = append(out, q.ToDomain())
	}
	return out
}
