// File: core/concurrency/options.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

package concurrency

import (
	"go.uber.org/zap"

	"github.com/momentics/hioload-evio/control"
	"github.com/momentics/hioload-evio/reactor"
)

// Config holds loop thread tuning.
type Config struct {
	Logger     *zap.Logger          // nil = logging.New("loop")
	Metrics    *control.LoopMetrics // nil = no metrics
	CPU        int                  // pin the loop thread to this CPU (-1 = no pin)
	BatchLimit int                  // closures run per wake-up before polling again (0 = all)
	PollEvents int                  // readiness events fetched per poll
}

// DefaultConfig returns sensible defaults.
func DefaultConfig() Config {
	return Config{
		CPU:        -1,
		BatchLimit: 256,
		PollEvents: reactor.DefaultMaxEvents,
	}
}

// Option customizes loop thread initialization.
type Option func(*Config)

// WithLogger sets the logger. Tests install zap.WithFatalHook to observe AssertInLoop.
func WithLogger(log *zap.Logger) Option {
	return func(c *Config) { c.Logger = log }
}

// WithMetrics attaches Prometheus collectors.
func WithMetrics(m *control.LoopMetrics) Option {
	return func(c *Config) { c.Metrics = m }
}

// WithCPU pins the loop's OS thread.
func WithCPU(cpu int) Option {
	return func(c *Config) { c.CPU = cpu }
}

// WithBatchLimit bounds how many queued closures run between polls.
func WithBatchLimit(n int) Option {
	return func(c *Config) {
		if n >= 0 {
			c.BatchLimit = n
		}
	}
}

// WithPollEvents overrides the readiness batch size.
func WithPollEvents(n int) Option {
	return func(c *Config) {
		if n > 0 {
			c.PollEvents = n
		}
	}
}
