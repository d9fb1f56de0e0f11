// Package gen4ids searches the 32-bit seed space on a GPU for values matching
// a packed pair of 16-bit identifiers.
//
// Call Initialize once, then Search:
//
//	gen4ids.Initialize()
//	seeds, err := gen4ids.Search(ctx, tid, sid)
//
// The matching predicate lives in the WGSL kernel (see package kernel); this
// package only runs it and reads the results back.
package gen4ids

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"runtime/debug"
	"sync"

	"github.com/openfluke/gen4ids/config"
	_ "github.com/openfluke/gen4ids/gpu" // registers the "wgpu" backend
	"github.com/openfluke/gen4ids/kernel"
	"github.com/openfluke/gen4ids/search"
)

var (
	initOnce sync.Once
	logger   = search.NoopLogger()

	defaultMu       sync.Mutex
	defaultConfig   = config.Default()
	defaultSearcher *search.Searcher
)

type initOptions struct {
	logger *search.Logger
	cfg    *config.Config
}

// InitOption configures Initialize.
type InitOption func(*initOptions)

// WithLogger replaces the logger built from configuration.
func WithLogger(l *search.Logger) InitOption {
	return func(o *initOptions) { o.logger = l }
}

// WithConfig replaces the configuration read from the environment.
func WithConfig(cfg config.Config) InitOption {
	return func(o *initOptions) { o.cfg = &cfg }
}

// Initialize installs the process logger and panic reporting. Only the first
// call has any effect.
func Initialize(opts ...InitOption) {
	initOnce.Do(func() {
		o := initOptions{}
		for _, fn := range opts {
			fn(&o)
		}
		if o.cfg == nil {
			cfg, err := config.FromEnv()
			if err != nil {
				fmt.Fprintf(os.Stderr, "gen4ids: %v; using defaults\n", err)
				cfg = config.Default()
			}
			o.cfg = &cfg
		}
		if o.logger == nil {
			o.logger = NewLogger(*o.cfg)
		}
		logger = o.logger
		slog.SetDefault(logger.Logger)
		debug.SetTraceback("all")

		defaultMu.Lock()
		defaultConfig = *o.cfg
		defaultMu.Unlock()
		logger.Debug("gen4ids initialized", "backend", o.cfg.Backend)
	})
}

// NewLogger builds the logger described by cfg.
func NewLogger(cfg config.Config) *search.Logger {
	level := search.ParseLevel(cfg.LogLevel)
	if cfg.LogFormat == "json" {
		return search.NewJSONLogger(os.Stderr, level)
	}
	return search.NewTextLogger(os.Stderr, level)
}

// LogPanic logs a recovered panic value with the current stack.
func LogPanic(r any) {
	logger.Error("panic", "value", fmt.Sprint(r), "stack", string(debug.Stack()))
}

// ReportPanic logs a panic with its stack and re-panics. Host bindings defer
// it at their entry points.
func ReportPanic() {
	if r := recover(); r != nil {
		LogPanic(r)
		panic(r)
	}
}

// Recover is ReportPanic for entry points that must not unwind into their
// host: the panic is logged and turned into a "search failure" error in *err.
//
//	defer gen4ids.Recover(&err)
func Recover(err *error) {
	if r := recover(); r != nil {
		LogPanic(r)
		*err = fmt.Errorf("search failure: %v", r)
	}
}
