// File: internal/logging/logging.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Component loggers on zap. Levels come from the environment:
//
//	HIOLOAD_LOG_LEVEL  = component=level,...,default   e.g. "loop=debug,warn"
//	HIOLOAD_LOG_FORMAT = console | json

package logging

import (
	"os"
	"strings"
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

const (
	envLevel  = "HIOLOAD_LOG_LEVEL"
	envFormat = "HIOLOAD_LOG_FORMAT"
)

// Config is the parsed logging environment.
type Config struct {
	DefaultLevel    zapcore.Level
	ComponentLevels map[string]zapcore.Level
	JSON            bool
}

// LevelFor returns the level configured for component.
func (c *Config) LevelFor(component string) zapcore.Level {
	if lvl, ok := c.ComponentLevels[component]; ok {
		return lvl
	}
	return c.DefaultLevel
}

var (
	configCache *Config
	configOnce  sync.Once
)

// ConfigFromEnv parses the environment once.
func ConfigFromEnv() *Config {
	configOnce.Do(func() {
		configCache = ParseConfig(os.Getenv(envLevel), os.Getenv(envFormat))
	})
	return configCache
}

// ParseConfig parses a level spec and a format name. Unknown entries are ignored.
func ParseConfig(levelSpec, format string) *Config {
	cfg := &Config{
		DefaultLevel:    zapcore.InfoLevel,
		ComponentLevels: make(map[string]zapcore.Level),
		JSON:            strings.EqualFold(strings.TrimSpace(format), "json"),
	}
	for _, part := range strings.Split(levelSpec, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		name, lvl, found := strings.Cut(part, "=")
		if !found {
			if l, err := zapcore.ParseLevel(name); err == nil {
				cfg.DefaultLevel = l
			}
			continue
		}
		if l, err := zapcore.ParseLevel(strings.TrimSpace(lvl)); err == nil {
			cfg.ComponentLevels[strings.TrimSpace(name)] = l
		}
	}
	return cfg
}

// New returns a logger named after component, writing to stderr.
func New(component string) *zap.Logger {
	return NewWithConfig(component, ConfigFromEnv())
}

// NewWithConfig is New with an explicit configuration.
func NewWithConfig(component string, cfg *Config) *zap.Logger {
	encCfg := zap.NewProductionEncoderConfig()
	encCfg.TimeKey = "ts"
	encCfg.EncodeTime = zapcore.ISO8601TimeEncoder

	var enc zapcore.Encoder
	if cfg.JSON {
		enc = zapcore.NewJSONEncoder(encCfg)
	} else {
		encCfg.EncodeLevel = zapcore.CapitalLevelEncoder
		enc = zapcore.NewConsoleEncoder(encCfg)
	}
	core := zapcore.NewCore(enc, zapcore.Lock(os.Stderr), zap.NewAtomicLevelAt(cfg.LevelFor(component)))
	return zap.New(core, zap.AddCaller()).Named(component)
}
