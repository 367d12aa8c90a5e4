package config

import (
	"fmt"
	"os"
	"time"

	"github.com/BurntSushi/toml"
)

type Config struct {
	Runtime   RuntimeConfig   `toml:"runtime"`
	Host      HostConfig      `toml:"host"`
	Scripting ScriptingConfig `toml:"scripting"`
	Logging   LoggingConfig   `toml:"logging"`
}

type RuntimeConfig struct {
	MaxFlushCommands int `toml:"max_flush_commands"` // 0 disables the bound
}

type HostConfig struct {
	TickRate         time.Duration `toml:"tick_rate"`
	MaxEventsPerTick int           `toml:"max_events_per_tick"`
	Scene            string        `toml:"scene"`
	SceneEncoding    string        `toml:"scene_encoding"` // "utf-8" or "big5"
}

type ScriptingConfig struct {
	Dir string `toml:"dir"` // empty disables scripting
}

type LoggingConfig struct {
	Level  string `toml:"level"`
	Format string `toml:"format"` // "json" or "console"
	File   string `toml:"file"`   // the terminal host owns stdout, so run mode logs here
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}
	cfg := defaults()
	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

// Default returns the built-in configuration used when no file is given.
func Default() *Config { return defaults() }

func (c *Config) validate() error {
	if c.Runtime.MaxFlushCommands < 0 {
		return fmt.Errorf("runtime.max_flush_commands must not be negative")
	}
	if c.Host.TickRate <= 0 {
		return fmt.Errorf("host.tick_rate must be positive")
	}
	if c.Host.MaxEventsPerTick <= 0 {
		return fmt.Errorf("host.max_events_per_tick must be positive")
	}
	switch c.Host.SceneEncoding {
	case "", "utf-8", "big5":
	default:
		return fmt.Errorf("host.scene_encoding %q unsupported", c.Host.SceneEncoding)
	}
	return nil
}

func defaults() *Config {
	return &Config{
		Runtime: RuntimeConfig{
			MaxFlushCommands: 1 << 16,
		},
		Host: HostConfig{
			TickRate:         50 * time.Millisecond,
			MaxEventsPerTick: 64,
			Scene:            "scenes/demo.yaml",
			SceneEncoding:    "utf-8",
		},
		Scripting: ScriptingConfig{
			Dir: "scripts",
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "console",
			File:   "elemrt.log",
		},
	}
}
