package config

import (
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"
	_ "time/tzdata"

	"github.com/spf13/viper"
)

// EnvPrefix prefixes every environment override, e.g. PROGRAM_HTTP_PORT.
const EnvPrefix = "PROGRAM"

// ErrWhatsAppNotConfigured reports missing Green API credentials.
var ErrWhatsAppNotConfigured = errors.New("whatsapp instance id and api token are required to send reminders")

// Config captures the settings shared by every programd command.
type Config struct {
	HTTPPort  int
	SQLiteDSN string
	LogLevel  slog.Level
	Reminders RemindersConfig
	Conflicts ConflictsConfig
	WhatsApp  WhatsAppConfig
}

// RemindersConfig controls reminder delivery and the live feed.
type RemindersConfig struct {
	SendDelay       time.Duration
	RefreshInterval time.Duration
	TimeZone        string
	Location        *time.Location
}

// ConflictsConfig controls the conflict warning cache.
type ConflictsConfig struct {
	CacheTTL time.Duration
}

// WhatsAppConfig holds the Green API credentials.
type WhatsAppConfig struct {
	BaseURL     string
	InstanceID  string
	APIToken    string
	CountryCode string
}

// Configured reports whether reminders can be delivered.
func (w WhatsAppConfig) Configured() bool {
	return w.InstanceID != "" && w.APIToken != ""
}

// RequireWhatsApp fails unless the Green API credentials are present.
// Only commands that send reminders call it.
func (c Config) RequireWhatsApp() error {
	if !c.WhatsApp.Configured() {
		return ErrWhatsAppNotConfigured
	}
	return nil
}

// New returns a viper instance with defaults and PROGRAM_ environment
// overrides registered.
func New() *viper.Viper {
	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("http_port", 8080)
	v.SetDefault("sqlite_dsn", "program.db")
	v.SetDefault("log_level", "info")
	v.SetDefault("reminders.send_delay", "500ms")
	v.SetDefault("reminders.refresh_interval", "1m")
	v.SetDefault("reminders.time_zone", "Asia/Jerusalem")
	v.SetDefault("conflicts.cache_ttl", "30s")
	v.SetDefault("whatsapp.base_url", "https://api.green-api.com")
	v.SetDefault("whatsapp.instance_id", "")
	v.SetDefault("whatsapp.api_token", "")
	v.SetDefault("whatsapp.country_code", "972")
	return v
}

// Load reads configuration from defaults, an optional YAML file and the
// environment. An explicit configFile must exist; otherwise program.yaml in
// the working directory is used when present.
func Load(configFile string) (Config, error) {
	v := New()
	if configFile != "" {
		v.SetConfigFile(configFile)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("read config %s: %w", configFile, err)
		}
	} else {
		v.AddConfigPath(".")
		v.SetConfigName("program")
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return Config{}, fmt.Errorf("read config: %w", err)
			}
		}
	}
	return FromViper(v)
}

// FromViper decodes and validates the settings held by v. Every invalid key
// is reported in a single error.
func FromViper(v *viper.Viper) (Config, error) {
	var invalid []string
	cfg := Config{
		SQLiteDSN: strings.TrimSpace(v.GetString("sqlite_dsn")),
		WhatsApp: WhatsAppConfig{
			BaseURL:     strings.TrimRight(strings.TrimSpace(v.GetString("whatsapp.base_url")), "/"),
			InstanceID:  strings.TrimSpace(v.GetString("whatsapp.instance_id")),
			APIToken:    strings.TrimSpace(v.GetString("whatsapp.api_token")),
			CountryCode: strings.TrimSpace(v.GetString("whatsapp.country_code")),
		},
	}

	port, err := strconv.Atoi(strings.TrimSpace(v.GetString("http_port")))
	if err != nil || port <= 0 || port > 65535 {
		invalid = append(invalid, "http_port")
	}
	cfg.HTTPPort = port

	if cfg.SQLiteDSN == "" {
		invalid = append(invalid, "sqlite_dsn")
	}

	if err := cfg.LogLevel.UnmarshalText([]byte(strings.TrimSpace(v.GetString("log_level")))); err != nil {
		invalid = append(invalid, "log_level")
	}

	durations := []struct {
		key      string
		dst      *time.Duration
		positive bool
	}{
		{key: "reminders.send_delay", dst: &cfg.Reminders.SendDelay},
		{key: "reminders.refresh_interval", dst: &cfg.Reminders.RefreshInterval, positive: true},
		{key: "conflicts.cache_ttl", dst: &cfg.Conflicts.CacheTTL},
	}
	for _, d := range durations {
		parsed, err := time.ParseDuration(strings.TrimSpace(v.GetString(d.key)))
		if err != nil || parsed < 0 || (d.positive && parsed == 0) {
			invalid = append(invalid, d.key)
			continue
		}
		*d.dst = parsed
	}

	cfg.Reminders.TimeZone = strings.TrimSpace(v.GetString("reminders.time_zone"))
	loc, err := time.LoadLocation(cfg.Reminders.TimeZone)
	if err != nil || cfg.Reminders.TimeZone == "" {
		invalid = append(invalid, "reminders.time_zone")
	} else {
		cfg.Reminders.Location = loc
	}

	if cfg.WhatsApp.BaseURL == "" {
		invalid = append(invalid, "whatsapp.base_url")
	}
	if _, err := strconv.Atoi(cfg.WhatsApp.CountryCode); err != nil {
		invalid = append(invalid, "whatsapp.country_code")
	}

	if len(invalid) > 0 {
		return Config{}, fmt.Errorf("invalid configuration values: %s", strings.Join(invalid, ", "))
	}
	return cfg, nil
}
