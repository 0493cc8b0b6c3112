package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	FHIR      FHIRConfig      `mapstructure:"fhir"`
	Search    SearchConfig    `mapstructure:"search"`
	Cache     CacheConfig     `mapstructure:"cache"`
	RateLimit RateLimitConfig `mapstructure:"rate_limit"`
	CORS      CORSConfig      `mapstructure:"cors"`
	Log       LogConfig       `mapstructure:"log"`
	Dashboard DashboardConfig `mapstructure:"dashboard"`
	Metrics   MetricsConfig   `mapstructure:"metrics"`
}

type ServerConfig struct {
	Port            int           `mapstructure:"port"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	RequestTimeout  time.Duration `mapstructure:"request_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

type FHIRConfig struct {
	BaseURL         string        `mapstructure:"base_url"`
	AppointmentsURL string        `mapstructure:"appointments_url"`
	Timeout         time.Duration `mapstructure:"timeout"`
}

type SearchConfig struct {
	Debounce time.Duration `mapstructure:"debounce"`
	Remote   bool          `mapstructure:"remote"`
}

type CacheConfig struct {
	CollectionTTL   time.Duration `mapstructure:"collection_ttl"`
	CleanupInterval time.Duration `mapstructure:"cleanup_interval"`
}

type RateLimitConfig struct {
	Enabled           bool    `mapstructure:"enabled"`
	RequestsPerSecond float64 `mapstructure:"rps"`
	Burst             int     `mapstructure:"burst"`
}

type CORSConfig struct {
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

type DashboardConfig struct {
	Timezone string `mapstructure:"timezone"`
	Clock24h bool   `mapstructure:"clock_24h"`
}

type MetricsConfig struct {
	Enabled   bool   `mapstructure:"enabled"`
	Path      string `mapstructure:"path"`
	Namespace string `mapstructure:"namespace"`
}

// Location resolves the dashboard timezone, defaulting to the local zone.
func (c DashboardConfig) Location() (*time.Location, error) {
	if c.Timezone == "" || strings.EqualFold(c.Timezone, "local") {
		return time.Local, nil
	}
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return nil, fmt.Errorf("failed to load timezone %q: %w", c.Timezone, err)
	}
	return loc, nil
}

// AppointmentsEndpoint returns the appointments URL, derived from the base
// URL when not configured.
func (c FHIRConfig) AppointmentsEndpoint() string {
	if c.AppointmentsURL != "" {
		return c.AppointmentsURL
	}
	return strings.TrimRight(c.BaseURL, "/") + "/Appointment"
}

// SetDefaults registers the default value of every key on v.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.read_timeout", 15*time.Second)
	v.SetDefault("server.write_timeout", 15*time.Second)
	v.SetDefault("server.request_timeout", 30*time.Second)
	v.SetDefault("server.shutdown_timeout", 10*time.Second)

	v.SetDefault("fhir.base_url", "http://localhost:3001/fhir")
	v.SetDefault("fhir.appointments_url", "")
	v.SetDefault("fhir.timeout", 10*time.Second)

	v.SetDefault("search.debounce", 800*time.Millisecond)
	v.SetDefault("search.remote", false)

	v.SetDefault("cache.collection_ttl", 30*time.Second)
	v.SetDefault("cache.cleanup_interval", 5*time.Minute)

	v.SetDefault("rate_limit.enabled", true)
	v.SetDefault("rate_limit.rps", 20.0)
	v.SetDefault("rate_limit.burst", 40)

	v.SetDefault("cors.allowed_origins", []string{"*"})

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "console")

	v.SetDefault("dashboard.timezone", "Local")
	v.SetDefault("dashboard.clock_24h", false)

	v.SetDefault("metrics.enabled", true)
	v.SetDefault("metrics.path", "/metrics")
	v.SetDefault("metrics.namespace", "clinic_dashboard")
}

// New returns a viper instance with defaults, env overrides and config
// search paths registered.
func New() *viper.Viper {
	v := viper.New()
	SetDefaults(v)

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	v.AddConfigPath("/etc/clinic-dashboard")

	v.SetEnvPrefix("DASHBOARD")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	return v
}

// Load reads the config file (optional unless file is set explicitly) and
// unmarshals v into a Config.
func Load(v *viper.Viper, file string) (*Config, error) {
	if file != "" {
		v.SetConfigFile(file)
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if file != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Validate checks the values the server cannot start without.
func (c *Config) Validate() error {
	if c.FHIR.BaseURL == "" {
		return errors.New("fhir.base_url is required")
	}
	if c.FHIR.Timeout <= 0 {
		return errors.New("fhir.timeout must be positive")
	}
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port %d is out of range", c.Server.Port)
	}
	if _, err := c.Dashboard.Location(); err != nil {
		return err
	}
	return nil
}
