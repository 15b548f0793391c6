package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	configLoader "github.com/andiksetyawan/config"
	"github.com/robfig/cron/v3"
)

type AppConfig struct {
	Database DatabaseConfig `envPrefix:"DB_"`
	Loader   LoaderConfig   `envPrefix:"LOADER_"`
	Server   ServerConfig   `envPrefix:"SERVER_"`
	Logging  LoggingConfig  `envPrefix:"LOG_"`
}

type DatabaseConfig struct {
	Host     string        `env:"HOST" envDefault:"localhost"`
	Port     string        `env:"PORT" envDefault:"3306"`
	User     string        `env:"USER" envDefault:"root"`
	Password string        `env:"PASSWORD"`
	Name     string        `env:"NAME" envDefault:"library"`
	Timeout  time.Duration `env:"TIMEOUT" envDefault:"10s"`
}

type LoaderConfig struct {
	// DataDir holds Prices.csv, Books.csv and Rentals.csv.
	DataDir string `env:"DATA_DIR" envDefault:"."`

	// Schedule is a cron expression. Empty means run once and exit.
	Schedule string `env:"SCHEDULE"`

	// RentalBookID is the book whose rentals the last report lists.
	RentalBookID int `env:"RENTAL_BOOK_ID" envDefault:"53"`
}

type ServerConfig struct {
	Port string `env:"PORT" envDefault:"3000"`
}

type LoggingConfig struct {
	Level  string `env:"LEVEL" envDefault:"info"`
	Format string `env:"FORMAT" envDefault:"text"`
}

// Load reads envPath (when it exists) and the process environment into an
// AppConfig and validates it.
func Load(envPath string) (*AppConfig, error) {
	cfg := &AppConfig{}

	loader := configLoader.New()
	if _, err := os.Stat(envPath); err == nil {
		loader = configLoader.New(configLoader.WithEnvPath(envPath))
	}

	if err := loader.Load(cfg); err != nil {
		return nil, fmt.Errorf("config load: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation: %w", err)
	}

	return cfg, nil
}

// Scheduled reports whether the loader should run on a cron schedule.
func (c *AppConfig) Scheduled() bool {
	return strings.TrimSpace(c.Loader.Schedule) != ""
}

// Validate checks every setting and reports all failures at once.
func (c *AppConfig) Validate() error {
	var errs []string

	if c.Database.Host == "" {
		errs = append(errs, "DB_HOST is required")
	}
	if c.Database.Name == "" {
		errs = append(errs, "DB_NAME is required")
	}
	if c.Database.User == "" {
		errs = append(errs, "DB_USER is required")
	}
	if !validPort(c.Database.Port) {
		errs = append(errs, fmt.Sprintf("DB_PORT (%q) must be 1-65535", c.Database.Port))
	}
	if c.Database.Timeout <= 0 {
		errs = append(errs, "DB_TIMEOUT must be positive")
	}

	if c.Loader.DataDir == "" {
		errs = append(errs, "LOADER_DATA_DIR is required")
	}
	if c.Loader.RentalBookID <= 0 {
		errs = append(errs, "LOADER_RENTAL_BOOK_ID must be positive")
	}
	if c.Scheduled() {
		if _, err := cron.ParseStandard(c.Loader.Schedule); err != nil {
			errs = append(errs, fmt.Sprintf("LOADER_SCHEDULE (%q) is not a valid cron expression: %v", c.Loader.Schedule, err))
		}
		if !validPort(c.Server.Port) {
			errs = append(errs, fmt.Sprintf("SERVER_PORT (%q) must be 1-65535", c.Server.Port))
		}
	}

	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[strings.ToLower(c.Logging.Level)] {
		errs = append(errs, fmt.Sprintf("LOG_LEVEL (%q) must be one of: debug, info, warn, error", c.Logging.Level))
	}

	validFormats := map[string]bool{"text": true, "json": true}
	if !validFormats[strings.ToLower(c.Logging.Format)] {
		errs = append(errs, fmt.Sprintf("LOG_FORMAT (%q) must be one of: text, json", c.Logging.Format))
	}

	if len(errs) > 0 {
		return fmt.Errorf("validation failed:\n  - %s", strings.Join(errs, "\n  - "))
	}

	return nil
}

// String returns a representation safe for logging; the password is masked.
func (c *AppConfig) String() string {
	password := ""
	if c.Database.Password != "" {
		password = "****"
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Database: %s@%s:%s/%s (password=%q, timeout=%s)\n",
		c.Database.User, c.Database.Host, c.Database.Port, c.Database.Name, password, c.Database.Timeout)
	fmt.Fprintf(&b, "Loader: data_dir=%s schedule=%q rental_book_id=%d\n",
		c.Loader.DataDir, c.Loader.Schedule, c.Loader.RentalBookID)
	fmt.Fprintf(&b, "Server: port=%s\n", c.Server.Port)
	fmt.Fprintf(&b, "Logging: level=%s format=%s", c.Logging.Level, c.Logging.Format)
	return b.String()
}

func validPort(port string) bool {
	n, err := strconv.Atoi(port)
	return err == nil && n > 0 && n <= 65535
}
