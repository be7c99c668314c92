package config

import (
	"bytes"
	"io"
	"os"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

const (
	DriverMemory   = "memory"
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

// Where downloaded feeds are kept.
type Storage struct {
	Driver string `yaml:"driver" validate:"oneof=memory sqlite postgres"`
	DSN    string `yaml:"dsn" validate:"required_if=Driver postgres"`

	// SQLite database directory. In memory if blank.
	Directory string `yaml:"directory"`
}

// A named feed. Source is a directory, a zip archive or an http(s)
// URL.
type Feed struct {
	Name    string            `yaml:"name" validate:"required"`
	Source  string            `yaml:"source" validate:"required"`
	Headers map[string]string `yaml:"headers"`
}

type Config struct {
	LogLevel        string        `yaml:"log_level" validate:"oneof=debug info warn error"`
	StrictCalendar  bool          `yaml:"strict_calendar"`
	Workers         int           `yaml:"workers" validate:"gte=0"`
	RefreshInterval time.Duration `yaml:"refresh_interval" validate:"gte=0"`
	Storage         Storage       `yaml:"storage"`
	Feeds           []Feed        `yaml:"feeds" validate:"dive"`

	// Downloaded archives are kept here for RefreshInterval, which
	// lets them be re-imported without network access.
	CacheDir string `yaml:"cache_dir"`
}

func Default() *Config {
	return &Config{
		LogLevel:        "info",
		RefreshInterval: 12 * time.Hour,
		Storage:         Storage{Driver: DriverMemory},
	}
}

// Load reads a YAML configuration file. Settings missing from the
// file keep their defaults.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "reading config")
	}
	cfg, err := Parse(data)
	if err != nil {
		return nil, errors.Wrapf(err, "%s", path)
	}
	return cfg, nil
}

func Parse(data []byte) (*Config, error) {
	cfg := Default()

	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, errors.Wrap(err, "parsing config")
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return errors.Wrap(err, "invalid config")
	}

	names := map[string]bool{}
	for _, f := range c.Feeds {
		if names[f.Name] {
			return errors.Errorf("invalid config: feed '%s' defined twice", f.Name)
		}
		names[f.Name] = true
	}

	return nil
}

// Feed returns the feed configured under name.
func (c *Config) Feed(name string) (Feed, bool) {
	for _, f := range c.Feeds {
		if f.Name == name {
			return f, true
		}
	}
	return Feed{}, false
}
