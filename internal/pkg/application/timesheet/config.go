package timesheet

import (
	"fmt"
	"io"
	"time"

	yaml "gopkg.in/yaml.v2"
)

type Databases struct {
	Timetrack string `yaml:"timetrack"`
	Rollup    string `yaml:"rollup"`
	Options   string `yaml:"options"`
}

type Config struct {
	Databases Databases `yaml:"databases"`
	Timezone  string    `yaml:"timezone"`
}

func LoadConfiguration(data io.Reader) (*Config, error) {

	buf, err := io.ReadAll(data)
	if err != nil {
		return nil, err
	}

	cfg := &Config{}
	err = yaml.Unmarshal(buf, &cfg)
	if err != nil {
		return nil, err
	}

	if cfg.Databases.Timetrack == "" || cfg.Databases.Rollup == "" || cfg.Databases.Options == "" {
		return nil, fmt.Errorf("configuration must name the timetrack, rollup and options databases")
	}

	if cfg.Timezone == "" {
		cfg.Timezone = "UTC"
	}

	return cfg, nil
}

func (cfg *Config) Location() (*time.Location, error) {
	location, err := time.LoadLocation(cfg.Timezone)
	if err != nil {
		return nil, fmt.Errorf("unknown timezone %q: %w", cfg.Timezone, err)
	}

	return location, nil
}
