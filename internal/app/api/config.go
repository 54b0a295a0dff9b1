package api

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"

	"github.com/Apurer/go-gin-supply-api/internal/platform/database"
)

// Config carries environment-driven settings for the API process.
type Config struct {
	Port        string `envconfig:"PORT" default:"8080"`
	ServiceName string `envconfig:"SERVICE_NAME" default:"supply-api"`
	Environment string `envconfig:"ENVIRONMENT" default:"local"`
	LogLevel    string `envconfig:"LOG_LEVEL" default:"info"`
	Database    DatabaseConfig
	// Version is stamped at build time, not read from the environment.
	Version string `ignored:"true"`
}

// DatabaseConfig is read from the DATABASE_* keys.
type DatabaseConfig struct {
	Driver          string        `envconfig:"DRIVER" default:"sqlite"`
	DSN             string        `envconfig:"DSN"`
	AutoMigrate     bool          `envconfig:"AUTO_MIGRATE" default:"true"`
	MaxOpenConns    int           `envconfig:"MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"CONN_MAX_LIFETIME" default:"1h"`
}

const defaultSQLiteDSN = "file:supply.db?cache=shared"

// LoadConfig loads the optional env files (".env" when none are named), then
// reads the environment. Variables already set win over file entries.
func LoadConfig(envFiles ...string) (Config, error) {
	if len(envFiles) == 0 {
		envFiles = []string{".env"}
	}
	for _, file := range envFiles {
		if err := godotenv.Load(file); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return Config{}, fmt.Errorf("loading %s: %w", file, err)
		}
	}
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return Config{}, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.Database.validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (d *DatabaseConfig) validate() error {
	d.Driver = strings.ToLower(strings.TrimSpace(d.Driver))
	switch d.Driver {
	case database.DriverSQLite:
		if strings.TrimSpace(d.DSN) == "" {
			d.DSN = defaultSQLiteDSN
		}
	case database.DriverPostgres, database.DriverPQ:
		if strings.TrimSpace(d.DSN) == "" {
			return fmt.Errorf("DATABASE_DSN is required for driver %q", d.Driver)
		}
	default:
		return fmt.Errorf("DATABASE_DRIVER must be one of sqlite, postgres or pq, got %q", d.Driver)
	}
	if d.MaxOpenConns < 0 || d.MaxIdleConns < 0 {
		return fmt.Errorf("database pool sizes must not be negative")
	}
	return nil
}

func (d DatabaseConfig) options() database.Config {
	return database.Config{
		Driver:          d.Driver,
		DSN:             d.DSN,
		MaxOpenConns:    d.MaxOpenConns,
		MaxIdleConns:    d.MaxIdleConns,
		ConnMaxLifetime: d.ConnMaxLifetime,
	}
}
