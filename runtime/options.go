package runtime

import (
	"go.uber.org/zap"

	"github.com/wippyai/tangara/registry"
)

// Option configures a Runtime.
type Option func(*Runtime)

// WithLogger sets the logger. The default is a no-op logger.
func WithLogger(l *zap.Logger) Option {
	return func(r *Runtime) {
		if l != nil {
			r.logger = l
		}
	}
}

// WithRegistry makes the runtime populate ctx instead of a fresh context.
func WithRegistry(ctx *registry.Context) Option {
	return func(r *Runtime) {
		if ctx != nil {
			r.ctx = ctx
		}
	}
}
