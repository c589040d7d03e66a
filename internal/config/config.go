package config

import (
	"errors"
	"fmt"
	"os"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"

	"github.com/udisondev/waypoint/internal/world"
)

const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

// Server holds all configuration for waypoint.
type Server struct {
	LogLevel string `yaml:"log_level"` // debug, info, warn, error

	// Database
	Database DatabaseConfig `yaml:"database"`

	// Worlds known to the server. DefaultWorld must be one of them or empty.
	Worlds       []WorldEntry `yaml:"worlds"`
	DefaultWorld string       `yaml:"default_world"`

	// Warps seeded on startup, name → "world:x:y:z[:yaw:pitch]"
	Warps         map[string]string `yaml:"warps"`
	ImportWorkers int               `yaml:"import_workers"`
}

// DatabaseConfig holds storage parameters.
type DatabaseConfig struct {
	Driver     string `yaml:"driver"` // postgres | sqlite
	Host       string `yaml:"host"`
	Port       int    `yaml:"port"`
	User       string `yaml:"user"`
	Password   string `yaml:"password"`
	DBName     string `yaml:"dbname"`
	SSLMode    string `yaml:"sslmode"`
	SQLitePath string `yaml:"sqlite_path"`
}

// DSN returns the PostgreSQL connection string.
func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		d.User, d.Password, d.Host, d.Port, d.DBName, d.SSLMode,
	)
}

// WorldEntry represents a world in the config.
type WorldEntry struct {
	Name string `yaml:"name"`
	UID  string `yaml:"uid"` // optional
}

// DefaultServer returns Server config with sensible defaults.
func DefaultServer() Server {
	return Server{
		LogLevel:      "info",
		ImportWorkers: 4,
		Database: DatabaseConfig{
			Driver:     DriverSQLite,
			Host:       "127.0.0.1",
			Port:       5432,
			User:       "waypoint",
			Password:   "waypoint",
			DBName:     "waypoint",
			SSLMode:    "disable",
			SQLitePath: "data/waypoint.db",
		},
	}
}

// LoadServer loads config from a YAML file.
// If the file doesn't exist, returns defaults.
func LoadServer(path string) (Server, error) {
	cfg := DefaultServer()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("reading config %s: %w", path, err)
	}

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parsing config %s: %w", path, err)
	}

	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("validating config %s: %w", path, err)
	}
	return cfg, nil
}

// Validate checks cross-field constraints.
func (s Server) Validate() error {
	var errs []error

	switch s.Database.Driver {
	case DriverPostgres, DriverSQLite:
	default:
		errs = append(errs, fmt.Errorf("unknown database driver %q", s.Database.Driver))
	}

	seen := make(map[string]bool, len(s.Worlds))
	for _, w := range s.Worlds {
		if w.Name == "" {
			errs = append(errs, errors.New("world with empty name"))
			continue
		}
		if err := world.ValidateName(w.Name); err != nil {
			errs = append(errs, fmt.Errorf("world %q: %w", w.Name, err))
		}
		if seen[w.Name] {
			errs = append(errs, fmt.Errorf("duplicate world %q", w.Name))
		}
		seen[w.Name] = true
		if w.UID != "" {
			if _, err := uuid.Parse(w.UID); err != nil {
				errs = append(errs, fmt.Errorf("world %q: invalid uid: %w", w.Name, err))
			}
		}
	}

	if s.DefaultWorld != "" && !seen[s.DefaultWorld] {
		errs = append(errs, fmt.Errorf("default world %q is not configured", s.DefaultWorld))
	}
	if s.ImportWorkers < 0 {
		errs = append(errs, fmt.Errorf("import_workers must be >= 0, got %d", s.ImportWorkers))
	}

	return errors.Join(errs...)
}

// WorldEntries converts configured worlds for world.Bootstrap.
func (s Server) WorldEntries() []world.Entry {
	entries := make([]world.Entry, 0, len(s.Worlds))
	for _, w := range s.Worlds {
		entries = append(entries, world.Entry{Name: w.Name, UID: w.UID})
	}
	return entries
}
