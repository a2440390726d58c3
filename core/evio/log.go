// File: core/evio/log.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

package evio

import (
	"go.uber.org/zap"

	"github.com/momentics/hioload-evio/api"
	"github.com/momentics/hioload-evio/internal/logging"
)

// loggedLoop is implemented by loops that share their logger with bound
// resources (concurrency.LoopThread does).
type loggedLoop interface {
	Logger() *zap.Logger
}

// loopLogger derives a resource logger from the loop's, falling back to the
// environment-configured "evio" logger.
func loopLogger(loop api.Loop, kind string) *zap.Logger {
	if ll, ok := loop.(loggedLoop); ok {
		if log := ll.Logger(); log != nil {
			return log.Named("evio").With(zap.String("kind", kind))
		}
	}
	return logging.New("evio").With(zap.String("kind", kind))
}
