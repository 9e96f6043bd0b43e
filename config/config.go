// Package config loads loansim settings from a TOML file, a .env file and
// LOANSIM_* environment variables, in that order of precedence (lowest first).
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
)

// Config holds all loansim configuration.
type Config struct {
	Server  ServerConfig  `toml:"server"`
	Storage StorageConfig `toml:"storage"`
	Cache   CacheConfig   `toml:"cache"`
	Scraper ScraperConfig `toml:"scraper"`
	Limits  LimitsConfig  `toml:"limits"`
	Log     LogConfig     `toml:"log"`
	Display DisplayConfig `toml:"display"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Addr            string   `toml:"addr"`
	ReadTimeout     Duration `toml:"read_timeout"`
	WriteTimeout    Duration `toml:"write_timeout"`
	IdleTimeout     Duration `toml:"idle_timeout"`
	ShutdownTimeout Duration `toml:"shutdown_timeout"`
	RateLimit       int      `toml:"rate_limit"`
	RateWindow      Duration `toml:"rate_window"`
	Metrics         bool     `toml:"metrics"`
}

// StorageConfig selects where simulation history, rate snapshots and
// sessions are kept. Driver is one of "sqlite", "postgres" or "memory".
type StorageConfig struct {
	Driver string `toml:"driver"`
	DSN    string `toml:"dsn,omitempty"`
}

// CacheConfig selects the result cache. Backend is "memory", "redis" or "none".
type CacheConfig struct {
	Backend       string   `toml:"backend"`
	RedisAddr     string   `toml:"redis_addr,omitempty"`
	RedisPassword string   `toml:"redis_password,omitempty"`
	RedisDB       int      `toml:"redis_db"`
	TTL           Duration `toml:"ttl"`
	RateTTL       Duration `toml:"rate_ttl"`
}

// ScraperConfig holds settings for the published-rate scrapers.
type ScraperConfig struct {
	Timeout         Duration `toml:"timeout"`
	UserAgent       string   `toml:"user_agent"`
	MeilleurtauxURL string   `toml:"meilleurtaux_url"`
	EmpruntisURL    string   `toml:"empruntis_url"`
	RefreshCron     string   `toml:"refresh_cron,omitempty"`
}

// LimitsConfig bounds the inputs accepted from users.
type LimitsConfig struct {
	MinPrincipal     float64 `toml:"min_principal"`
	MaxPrincipal     float64 `toml:"max_principal"`
	MaxAnnualRate    float64 `toml:"max_annual_rate"`
	MinDurationYears int     `toml:"min_duration_years"`
	MaxDurationYears int     `toml:"max_duration_years"`
}

// LogConfig holds logger settings.
type LogConfig struct {
	Level       string `toml:"level"`
	Development bool   `toml:"development"`
}

// DisplayConfig holds terminal rendering preferences.
type DisplayConfig struct {
	CurrencySymbol string `toml:"currency_symbol"`
	ChartWidth     int    `toml:"chart_width"`
	ChartHeight    int    `toml:"chart_height"`
}

// Duration wraps time.Duration so it can be written as "15s" in TOML.
type Duration struct {
	time.Duration
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	d.Duration = v
	return nil
}

// MarshalText implements encoding.TextMarshaler.
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.Duration.String()), nil
}

// DefaultConfig returns the default configuration.
func DefaultConfig() Config {
	return Config{
		Server: ServerConfig{
			Addr:            ":8080",
			ReadTimeout:     Duration{15 * time.Second},
			WriteTimeout:    Duration{15 * time.Second},
			IdleTimeout:     Duration{60 * time.Second},
			ShutdownTimeout: Duration{10 * time.Second},
			RateLimit:       30,
			RateWindow:      Duration{time.Minute},
			Metrics:         true,
		},
		Storage: StorageConfig{
			Driver: "sqlite",
			DSN:    filepath.Join(DataDir(), "loansim.db"),
		},
		Cache: CacheConfig{
			Backend:   "memory",
			RedisAddr: "localhost:6379",
			TTL:       Duration{time.Hour},
			RateTTL:   Duration{6 * time.Hour},
		},
		Scraper: ScraperConfig{
			Timeout:         Duration{15 * time.Second},
			UserAgent:       "Mozilla/5.0 (X11; Linux x86_64) loansim/1.0",
			MeilleurtauxURL: "https://www.meilleurtaux.com/",
			EmpruntisURL:    "https://www.empruntis.com/financement/actualites/barometres_regionaux.php",
			RefreshCron:     "0 */6 * * *",
		},
		Limits: LimitsConfig{
			MinPrincipal:     10_000,
			MaxPrincipal:     10_000_000,
			MaxAnnualRate:    10,
			MinDurationYears: 1,
			MaxDurationYears: 30,
		},
		Log: LogConfig{
			Level: "info",
		},
		Display: DisplayConfig{
			CurrencySymbol: "€",
			ChartWidth:     60,
			ChartHeight:    12,
		},
	}
}

// ConfigDir returns the XDG-compliant config directory.
func ConfigDir() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "loansim")
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".config", "loansim")
}

// DataDir returns the XDG-compliant data directory.
func DataDir() string {
	if xdg := os.Getenv("XDG_DATA_HOME"); xdg != "" {
		return filepath.Join(xdg, "loansim")
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".local", "share", "loansim")
}

// ConfigPath returns the full path to the default config file.
func ConfigPath() string {
	return filepath.Join(ConfigDir(), "config.toml")
}

// Load reads the config file at path (the default path when empty), after
// loading a .env file from the working directory if there is one. A missing
// config file yields the defaults.
func Load(path string) (Config, error) {
	cfg := DefaultConfig()

	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return cfg, fmt.Errorf("reading .env: %w", err)
	}

	if path == "" {
		path = ConfigPath()
	}
	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := toml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("parsing config: %w", err)
		}
	case errors.Is(err, fs.ErrNotExist):
	default:
		return cfg, fmt.Errorf("reading config: %w", err)
	}

	if err := overrideWithEnv(&cfg); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// Save writes the config to path (the default path when empty).
func Save(cfg Config, path string) error {
	if path == "" {
		path = ConfigPath()
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating config dir: %w", err)
	}

	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o600)
	if err != nil {
		return fmt.Errorf("creating config file: %w", err)
	}
	defer f.Close()

	return toml.NewEncoder(f).Encode(cfg)
}

func overrideWithEnv(cfg *Config) error {
	if v := os.Getenv("LOANSIM_ADDR"); v != "" {
		cfg.Server.Addr = v
	}
	if v := os.Getenv("LOANSIM_STORAGE_DRIVER"); v != "" {
		cfg.Storage.Driver = v
	}
	if v := os.Getenv("LOANSIM_STORAGE_DSN"); v != "" {
		cfg.Storage.DSN = v
	}
	if v := os.Getenv("LOANSIM_CACHE_BACKEND"); v != "" {
		cfg.Cache.Backend = v
	}
	if v := os.Getenv("LOANSIM_REDIS_ADDR"); v != "" {
		cfg.Cache.RedisAddr = v
	}
	if v := os.Getenv("LOANSIM_REDIS_PASSWORD"); v != "" {
		cfg.Cache.RedisPassword = v
	}
	if v := os.Getenv("LOANSIM_REDIS_DB"); v != "" {
		db, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("LOANSIM_REDIS_DB: %w", err)
		}
		cfg.Cache.RedisDB = db
	}
	if v := os.Getenv("LOANSIM_LOG_LEVEL"); v != "" {
		cfg.Log.Level = v
	}
	if v := os.Getenv("LOANSIM_LOG_DEVELOPMENT"); v != "" {
		dev, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("LOANSIM_LOG_DEVELOPMENT: %w", err)
		}
		cfg.Log.Development = dev
	}
	if v := os.Getenv("LOANSIM_REFRESH_CRON"); v != "" {
		cfg.Scraper.RefreshCron = v
	}
	return nil
}
