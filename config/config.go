// config/config.go
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/gewnthar/visabulletin/logger"
)

// DefaultSourceURL is the visa bulletin page fetched on every sync.
const DefaultSourceURL = "https://travel.state.gov/content/travel/en/legal/visa-law0/visa-bulletin.html"

type ServerConfig struct {
	Port string `yaml:"port"`
}

type DatabaseConfig struct {
	Driver      string `yaml:"driver"` // mysql, pgx or sqlite
	DSN         string `yaml:"dsn"`    // used as-is when set
	Host        string `yaml:"host"`
	Port        string `yaml:"port"`
	User        string `yaml:"user"`
	Password    string `yaml:"password"`
	DBName      string `yaml:"dbname"`
	AutoMigrate bool   `yaml:"auto_migrate"`
}

type ScraperConfig struct {
	SourceURL     string        `yaml:"source_url"`
	TimeoutStr    string        `yaml:"timeout"`
	UserAgent     string        `yaml:"user_agent"`
	Extractor     string        `yaml:"extractor"`      // regex or goquery
	TableStrategy string        `yaml:"table_strategy"` // offset or index
	FilingMarkers []string      `yaml:"filing_markers"`
	FilingIndex   int           `yaml:"filing_table_index"`
	Timeout       time.Duration `yaml:"-"`
}

type SyncConfig struct {
	Schedule   string `yaml:"schedule"` // cron expression, empty disables scheduling
	RunOnStart bool   `yaml:"run_on_start"`
}

// AuthConfig holds the credentials accepted by the sync trigger.
// Values are only read from the environment.
type AuthConfig struct {
	ServiceRoleKey string `yaml:"-"`
	AnonKey        string `yaml:"-"`
	SyncSecret     string `yaml:"-"`
}

type RedisConfig struct {
	URL    string        `yaml:"url"` // empty disables the snapshot cache
	TTLStr string        `yaml:"ttl"`
	TTL    time.Duration `yaml:"-"`
}

type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Database DatabaseConfig `yaml:"database"`
	Scraper  ScraperConfig  `yaml:"scraper"`
	Sync     SyncConfig     `yaml:"sync"`
	Redis    RedisConfig    `yaml:"redis"`
	Logging  logger.Config  `yaml:"logging"`
	Auth     AuthConfig     `yaml:"-"`
}

// Default returns a configuration usable without any file.
func Default() Config {
	return Config{
		Server: ServerConfig{Port: "8080"},
		Database: DatabaseConfig{
			Driver: "mysql",
			Host:   "localhost",
			Port:   "3306",
			DBName: "visa_bulletin",
		},
		Scraper: ScraperConfig{
			SourceURL:     DefaultSourceURL,
			TimeoutStr:    "30s",
			UserAgent:     "visa-bulletin-sync/1.0",
			Extractor:     "regex",
			TableStrategy: "offset",
			FilingMarkers: []string{"递交申请日期", "DATES FOR FILING"},
			FilingIndex:   1,
		},
		Redis:   RedisConfig{TTLStr: "1h"},
		Logging: logger.Config{Level: "info"},
	}
}

// Load reads the YAML file at path (optional when empty), then a .env file if
// present, then environment overrides.
func Load(path string) (Config, error) {
	cfg := Default()

	if path != "" {
		file, err := os.ReadFile(path)
		if err != nil {
			return cfg, fmt.Errorf("failed to read config file: %w", err)
		}
		if err := yaml.Unmarshal(file, &cfg); err != nil {
			return cfg, fmt.Errorf("failed to unmarshal config: %w", err)
		}
	}

	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return cfg, fmt.Errorf("failed to load .env: %w", err)
	}
	applyEnv(&cfg)

	if err := cfg.parseDurations(); err != nil {
		return cfg, err
	}
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func applyEnv(cfg *Config) {
	setIf := func(dst *string, key string) {
		if v, ok := os.LookupEnv(key); ok && v != "" {
			*dst = v
		}
	}
	setIf(&cfg.Server.Port, "VISA_SERVER_PORT")
	setIf(&cfg.Database.Driver, "VISA_DATABASE_DRIVER")
	setIf(&cfg.Database.DSN, "VISA_DATABASE_DSN")
	setIf(&cfg.Database.Password, "VISA_DATABASE_PASSWORD")
	setIf(&cfg.Scraper.SourceURL, "VISA_SOURCE_URL")
	setIf(&cfg.Sync.Schedule, "VISA_SYNC_SCHEDULE")
	setIf(&cfg.Redis.URL, "VISA_REDIS_URL")
	setIf(&cfg.Logging.Level, "VISA_LOG_LEVEL")
	setIf(&cfg.Auth.ServiceRoleKey, "VISA_SERVICE_ROLE_KEY")
	setIf(&cfg.Auth.AnonKey, "VISA_ANON_KEY")
	setIf(&cfg.Auth.SyncSecret, "VISA_SYNC_SECRET")
}

func (c *Config) parseDurations() error {
	var err error
	c.Scraper.Timeout = 30 * time.Second
	if c.Scraper.TimeoutStr != "" {
		c.Scraper.Timeout, err = time.ParseDuration(c.Scraper.TimeoutStr)
		if err != nil {
			return fmt.Errorf("failed to parse scraper timeout: %w", err)
		}
	}
	c.Redis.TTL = time.Hour
	if c.Redis.TTLStr != "" {
		c.Redis.TTL, err = time.ParseDuration(c.Redis.TTLStr)
		if err != nil {
			return fmt.Errorf("failed to parse redis ttl: %w", err)
		}
	}
	return nil
}

// Validate reports the first invalid setting.
func (c Config) Validate() error {
	switch c.Database.Driver {
	case "mysql", "pgx", "sqlite":
	default:
		return fmt.Errorf("unsupported database driver %q (use mysql, pgx or sqlite)", c.Database.Driver)
	}
	if strings.TrimSpace(c.Scraper.SourceURL) == "" {
		return errors.New("scraper source_url is required")
	}
	switch c.Scraper.Extractor {
	case "regex", "goquery":
	default:
		return fmt.Errorf("unsupported extractor %q (use regex or goquery)", c.Scraper.Extractor)
	}
	switch c.Scraper.TableStrategy {
	case "offset":
		if len(c.Scraper.FilingMarkers) == 0 {
			return errors.New("table_strategy offset needs at least one filing marker")
		}
	case "index":
		if c.Scraper.FilingIndex < 0 {
			return errors.New("filing_table_index must not be negative")
		}
	default:
		return fmt.Errorf("unsupported table strategy %q (use offset or index)", c.Scraper.TableStrategy)
	}
	return nil
}

// HasTriggerCredentials reports whether any credential is configured for the sync trigger.
func (a AuthConfig) HasTriggerCredentials() bool {
	return a.ServiceRoleKey != "" || a.AnonKey != "" || a.SyncSecret != ""
}
