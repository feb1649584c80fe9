package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"
)

type Config struct {
	App      AppConfig      `toml:"app" yaml:"app"`
	Dispatch DispatchConfig `toml:"dispatch" yaml:"dispatch"`
	Window   WindowConfig   `toml:"window" yaml:"window"`
	Logging  LoggingConfig  `toml:"logging" yaml:"logging"`
}

type AppConfig struct {
	Name string `toml:"name" yaml:"name"`
}

type DispatchConfig struct {
	TickRate        time.Duration `toml:"tick_rate" yaml:"tick_rate"`
	QueueSize       int           `toml:"queue_size" yaml:"queue_size"`                 // max pending main-thread tasks
	MaxTasksPerTick int           `toml:"max_tasks_per_tick" yaml:"max_tasks_per_tick"` // 0 = unlimited
}

type WindowConfig struct {
	Title  string `toml:"title" yaml:"title"`
	Width  int    `toml:"width" yaml:"width"`
	Height int    `toml:"height" yaml:"height"`
}

type LoggingConfig struct {
	Level  string `toml:"level" yaml:"level"`
	Format string `toml:"format" yaml:"format"` // "json" or "console"
}

// Load reads a .toml or .yaml/.yml file over the defaults. A missing file
// yields the defaults.
func Load(path string) (*Config, error) {
	cfg := Defaults()
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return cfg, nil
		}
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}
	switch filepath.Ext(path) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, cfg)
	default:
		err = toml.Unmarshal(data, cfg)
	}
	if err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

func (c *Config) validate() error {
	if c.Dispatch.TickRate <= 0 {
		return fmt.Errorf("dispatch.tick_rate must be positive, got %s", c.Dispatch.TickRate)
	}
	if c.Dispatch.QueueSize <= 0 {
		return fmt.Errorf("dispatch.queue_size must be positive, got %d", c.Dispatch.QueueSize)
	}
	if c.Dispatch.MaxTasksPerTick < 0 {
		return fmt.Errorf("dispatch.max_tasks_per_tick must not be negative, got %d", c.Dispatch.MaxTasksPerTick)
	}
	return nil
}

func Defaults() *Config {
	return &Config{
		App: AppConfig{
			Name: "statecore",
		},
		Dispatch: DispatchConfig{
			TickRate:        16 * time.Millisecond,
			QueueSize:       1024,
			MaxTasksPerTick: 64,
		},
		Window: WindowConfig{
			Title:  "statecore",
			Width:  800,
			Height: 600,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "console",
		},
	}
}
