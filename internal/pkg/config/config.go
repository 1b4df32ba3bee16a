package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// Config holds all application configuration.
type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Database  DatabaseConfig  `mapstructure:"database"`
	NATS      NATSConfig      `mapstructure:"nats"`
	Valkey    ValkeyConfig    `mapstructure:"valkey"`
	Geocoder  GeocoderConfig  `mapstructure:"geocoder"`
	Search    SearchConfig    `mapstructure:"search"`
	Telemetry TelemetryConfig `mapstructure:"telemetry"`
}

type ServerConfig struct {
	Port         int `mapstructure:"port"`
	ReadTimeout  int `mapstructure:"read_timeout"`
	WriteTimeout int `mapstructure:"write_timeout"`
}

type DatabaseConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	DBName   string `mapstructure:"dbname"`
	SSLMode  string `mapstructure:"sslmode"`
	MaxConns int32  `mapstructure:"max_conns"`
}

func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		d.User, d.Password, d.Host, d.Port, d.DBName, d.SSLMode,
	)
}

type NATSConfig struct {
	URL string `mapstructure:"url"`
}

type ValkeyConfig struct {
	Addr       string `mapstructure:"addr"`
	SessionTTL int    `mapstructure:"session_ttl"` // seconds
}

type GeocoderConfig struct {
	ZipBaseURL     string `mapstructure:"zip_base_url"`
	IPBaseURL      string `mapstructure:"ip_base_url"`
	TimeoutSeconds int    `mapstructure:"timeout_seconds"`
}

type SearchConfig struct {
	MaxBboxSpanDeg float64 `mapstructure:"max_bbox_span_deg"`
	ResultLimit    int     `mapstructure:"result_limit"`
	DefaultZoom    float64 `mapstructure:"default_zoom"`
	FallbackZoom   float64 `mapstructure:"fallback_zoom"`
	SessionIdleMin int     `mapstructure:"session_idle_min"`
}

type TelemetryConfig struct {
	ServiceName string `mapstructure:"service_name"`
	TempoAddr   string `mapstructure:"tempo_addr"`
	Enabled     bool   `mapstructure:"enabled"`
}

// Load reads configuration from file and environment variables.
func Load(service string) (*Config, error) {
	v := viper.New()

	// Defaults
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.read_timeout", 10)
	v.SetDefault("server.write_timeout", 10)
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.user", "lootaura")
	v.SetDefault("database.password", "")
	v.SetDefault("database.dbname", "lootaura")
	v.SetDefault("database.sslmode", "disable")
	v.SetDefault("database.max_conns", 25)
	v.SetDefault("nats.url", "nats://localhost:4222")
	v.SetDefault("valkey.addr", "localhost:6379")
	v.SetDefault("valkey.session_ttl", 86400)
	v.SetDefault("geocoder.zip_base_url", "https://api.zippopotam.us/us")
	v.SetDefault("geocoder.ip_base_url", "http://ip-api.com/json")
	v.SetDefault("geocoder.timeout_seconds", 5)
	v.SetDefault("search.max_bbox_span_deg", 10.0)
	v.SetDefault("search.result_limit", 200)
	v.SetDefault("search.default_zoom", 11.0)
	v.SetDefault("search.fallback_zoom", 4.0)
	v.SetDefault("search.session_idle_min", 120)
	v.SetDefault("telemetry.service_name", service)
	v.SetDefault("telemetry.tempo_addr", "tempo:4317")
	v.SetDefault("telemetry.enabled", true)

	// Config file (optional)
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./configs")
	_ = v.ReadInConfig() // OK if missing

	// Environment variables: LOOTAURA_DATABASE_HOST → database.host
	v.SetEnvPrefix("LOOTAURA")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Validate checks that required configuration fields are present and sane.
func (c *Config) Validate() error {
	var errs []string

	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		errs = append(errs, fmt.Sprintf("server.port must be 1-65535, got %d", c.Server.Port))
	}
	if c.Database.Host == "" {
		errs = append(errs, "database.host is required")
	}
	if c.Database.Port <= 0 || c.Database.Port > 65535 {
		errs = append(errs, fmt.Sprintf("database.port must be 1-65535, got %d", c.Database.Port))
	}
	if c.Database.User == "" {
		errs = append(errs, "database.user is required")
	}
	if c.Database.DBName == "" {
		errs = append(errs, "database.dbname is required")
	}
	if c.Database.MaxConns < 0 {
		errs = append(errs, "database.max_conns must not be negative")
	}
	if c.NATS.URL == "" {
		errs = append(errs, "nats.url is required")
	}
	if c.Valkey.Addr == "" {
		errs = append(errs, "valkey.addr is required")
	}
	if c.Server.ReadTimeout <= 0 {
		errs = append(errs, "server.read_timeout must be positive")
	}
	if c.Server.WriteTimeout <= 0 {
		errs = append(errs, "server.write_timeout must be positive")
	}
	if c.Search.MaxBboxSpanDeg <= 0 || c.Search.MaxBboxSpanDeg > 360 {
		errs = append(errs, fmt.Sprintf("search.max_bbox_span_deg must be in (0,360], got %g", c.Search.MaxBboxSpanDeg))
	}
	if c.Geocoder.TimeoutSeconds <= 0 {
		errs = append(errs, "geocoder.timeout_seconds must be positive")
	}

	if len(errs) > 0 {
		return fmt.Errorf("config validation failed:\n  - %s", strings.Join(errs, "\n  - "))
	}
	return nil
}
