// File: reactor/reactor.go
// Author: momentics <momentics@gmail.com>
//
// Platform-neutral reactor factory and shared types.

package reactor

import (
	"go.uber.org/zap"

	"github.com/momentics/hioload-evio/api"
	"github.com/momentics/hioload-evio/internal/logging"
)

// Re-exported readiness flags.
const (
	EventRead   = api.EventRead
	EventWrite  = api.EventWrite
	EventError  = api.EventError
	EventHangup = api.EventHangup
)

// DefaultMaxEvents bounds the readiness batch returned by one Poll.
const DefaultMaxEvents = 128

// Option customizes a reactor.
type Option func(*options)

type options struct {
	log       *zap.Logger
	maxEvents int
}

// WithLogger routes reactor diagnostics to log.
func WithLogger(log *zap.Logger) Option {
	return func(o *options) { o.log = log }
}

// WithMaxEvents overrides the readiness batch size.
func WithMaxEvents(n int) Option {
	return func(o *options) {
		if n > 0 {
			o.maxEvents = n
		}
	}
}

// NewReactor constructs the platform reactor.
func NewReactor(opts ...Option) (api.Reactor, error) {
	o := options{maxEvents: DefaultMaxEvents}
	for _, opt := range opts {
		opt(&o)
	}
	if o.log == nil {
		o.log = logging.New("reactor")
	}
	return newPlatformReactor(o)
}
