package config

import (
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/viper"
)

// Defaults for the external IP-geolocation services. Both are consumed as
// plain request/response lookups; the fallback is only used when the primary
// fails or returns an error field.
const (
	DefaultGeoPrimaryURL  = "https://ipapi.co"
	DefaultGeoFallbackURL = "https://ipinfo.io"
	DefaultFetchTimeout   = 10 * time.Second
)

// Config holds application configuration
type Config struct {
	DatabaseURL    string
	Port           string
	GeoPrimaryURL  string
	GeoFallbackURL string
	FetchTimeout   time.Duration // client-side data fetch budget
}

// Load loads configuration from multiple sources with priority:
// 1. Command flags (passed as overrides)
// 2. Config file (~/.config/wageni/wageni.toml or ./wageni.toml)
// 3. Environment variables
func Load() (*Config, error) {
	return LoadWithOverrides("", "")
}

// LoadWithOverrides loads config and applies flag overrides
func LoadWithOverrides(databaseURL, port string) (*Config, error) {
	v := newBaseViper()
	_ = v.ReadInConfig()
	return buildConfig(v, databaseURL, port), nil
}

func newBaseViper() *viper.Viper {
	v := viper.New()
	v.SetConfigName("wageni")
	v.SetConfigType("toml")
	v.AddConfigPath(".")

	// XDG Base Directory; resolved manually so tests can rewire HOME
	configHome := os.Getenv("XDG_CONFIG_HOME")
	if configHome == "" {
		if home, err := os.UserHomeDir(); err == nil {
			configHome = filepath.Join(home, ".config")
		}
	}
	if configHome != "" {
		v.AddConfigPath(filepath.Join(configHome, "wageni"))
	}

	return v
}

func buildConfig(v *viper.Viper, overrideDatabaseURL, overridePort string) *Config {
	cfg := &Config{
		Port:           "3000",
		GeoPrimaryURL:  DefaultGeoPrimaryURL,
		GeoFallbackURL: DefaultGeoFallbackURL,
		FetchTimeout:   DefaultFetchTimeout,
	}

	// Config file values
	if v.IsSet("database_url") {
		cfg.DatabaseURL = v.GetString("database_url")
	}
	if v.IsSet("port") {
		cfg.Port = v.GetString("port")
	}
	if v.IsSet("geo.primary_url") {
		cfg.GeoPrimaryURL = v.GetString("geo.primary_url")
	}
	if v.IsSet("geo.fallback_url") {
		cfg.GeoFallbackURL = v.GetString("geo.fallback_url")
	}
	if v.IsSet("client.fetch_timeout") {
		cfg.FetchTimeout = v.GetDuration("client.fetch_timeout")
	}

	// Environment fallback (only if not configured)
	if cfg.DatabaseURL == "" {
		cfg.DatabaseURL = os.Getenv("DATABASE_URL")
	}
	if !v.IsSet("port") {
		if envPort := os.Getenv("PORT"); envPort != "" {
			cfg.Port = envPort
		}
	}
	if !v.IsSet("geo.primary_url") {
		if envPrimary := os.Getenv("GEO_PRIMARY_URL"); envPrimary != "" {
			cfg.GeoPrimaryURL = envPrimary
		}
	}
	if !v.IsSet("geo.fallback_url") {
		if envFallback := os.Getenv("GEO_FALLBACK_URL"); envFallback != "" {
			cfg.GeoFallbackURL = envFallback
		}
	}
	if !v.IsSet("client.fetch_timeout") {
		if envTimeout := os.Getenv("FETCH_TIMEOUT"); envTimeout != "" {
			if d, err := time.ParseDuration(envTimeout); err == nil {
				cfg.FetchTimeout = d
			}
		}
	}

	// Flag overrides win
	if overrideDatabaseURL != "" {
		cfg.DatabaseURL = overrideDatabaseURL
	}
	if overridePort != "" {
		cfg.Port = overridePort
	}

	return cfg
}
