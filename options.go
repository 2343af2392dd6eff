package quill

import (
	"log/slog"
	"os"
	"strconv"

	"github.com/soyart/quill/metrics"
)

const (
	WorkersEnvKey      = "QUILL_WORKERS"
	WorkersDefault int = 20
)

type (
	Option func(*Builder)

	// Hook takes in an output path relative to the output root and the rendered data,
	// returning modified output to be written at destination
	Hook func(target string, data []byte) (output []byte, err error)

	options struct {
		force     bool
		workers   int
		overrides map[string]any
		hooks     []Hook
		logger    *slog.Logger
		recorder  metrics.Recorder
	}
)

// Force makes the build clear the cache store along with the output directory.
func Force(force bool) Option {
	return func(b *Builder) {
		b.options.force = force
	}
}

// Workers sets the number of concurrent render workers.
func Workers(u uint) Option {
	return func(b *Builder) {
		if u != 0 {
			b.options.workers = int(u)
		}
	}
}

// WorkersFromEnv returns an option that sets the render workers
// to whatever [GetEnvWorkers] returns
func WorkersFromEnv() Option {
	return Workers(uint(GetEnvWorkers()))
}

// GetEnvWorkers returns ENV value for render workers,
// or default value if illegal or undefined
func GetEnvWorkers() int {
	workersEnv := os.Getenv(WorkersEnvKey)
	workers, err := strconv.ParseUint(workersEnv, 10, 32)
	if err == nil && workers != 0 {
		return int(workers)
	}

	return WorkersDefault
}

// WithOverrides sets config values that take precedence over config files.
func WithOverrides(overrides map[string]any) Option {
	return func(b *Builder) {
		b.options.overrides = overrides
	}
}

// WithHooks appends hooks, called in order on every output before it is written.
func WithHooks(hooks ...Hook) Option {
	return func(b *Builder) {
		for i := range hooks {
			if hooks[i] != nil {
				b.options.hooks = append(b.options.hooks, hooks[i])
			}
		}
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(b *Builder) {
		if logger != nil {
			b.options.logger = logger
		}
	}
}

func WithRecorder(r metrics.Recorder) Option {
	return func(b *Builder) {
		if r != nil {
			b.options.recorder = r
		}
	}
}
