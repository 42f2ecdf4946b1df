package worker

import (
	"github.com/okian/escala/pkg/logger"
)

// Option applies a configuration option to a Worker.
type Option func(*Worker)

// WithName sets the worker name used in its logger.
func WithName(name string) Option {
	return func(w *Worker) {
		if name != "" {
			w.name = name
		}
	}
}

// WithLogger sets a custom logger for the worker.
func WithLogger(l logger.Logger) Option {
	return func(w *Worker) {
		if l != nil {
			w.logger = l
		}
	}
}

type poolConfig struct {
	capacity int
	logger   logger.Logger
}

// PoolOption applies a configuration option to a Pool.
type PoolOption func(*poolConfig)

// WithQueueCapacity bounds how many scenarios may wait for a worker.
func WithQueueCapacity(n int) PoolOption {
	return func(c *poolConfig) {
		if n > 0 {
			c.capacity = n
		}
	}
}

// WithPoolLogger sets the logger shared by the pool and its workers.
func WithPoolLogger(l logger.Logger) PoolOption {
	return func(c *poolConfig) {
		if l != nil {
			c.logger = l
		}
	}
}
