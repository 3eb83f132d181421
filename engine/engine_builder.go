package engine

import (
	"time"

	"github.com/kestrel3d/kestrel/engine/renderer"
	"github.com/kestrel3d/kestrel/engine/window"
)

type engineConfig struct {
	window          window.Window
	backend         renderer.Backend
	rendererOptions []renderer.RendererBuilderOption
	sampleCount     renderer.MSAASampleCount
	tickRate        time.Duration
	profiling       bool
}

// EngineBuilderOption is a functional option for configuring an Engine.
// Use the With* functions to create options.
type EngineBuilderOption func(*engineConfig)

// WithWindow sets a custom configured window for the engine to use rather
// than allowing the engine to create and manage one internally.
//
// Parameters:
//   - w: a pre-configured Window instance
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithWindow(w window.Window) EngineBuilderOption {
	return func(cfg *engineConfig) {
		cfg.window = w
	}
}

// WithBackend supplies a pre-built device backend, bypassing window-based
// WGPU backend creation. Used for host-driven engines and tests.
//
// Parameters:
//   - b: the backend to render through
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithBackend(b renderer.Backend) EngineBuilderOption {
	return func(cfg *engineConfig) {
		cfg.backend = b
	}
}

// WithPipeline registers a rendering pipeline at the given priority. Lower
// priorities prep and render first.
//
// Parameters:
//   - priority: ordering key; lower runs first
//   - p: the pipeline to register
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithPipeline(priority int, p renderer.Pipeline) EngineBuilderOption {
	return func(cfg *engineConfig) {
		cfg.rendererOptions = append(cfg.rendererOptions, renderer.WithPipeline(priority, p))
	}
}

// WithClearColor overrides the default dark-grey clear color.
//
// Parameters:
//   - r, g, b, a: clear color channels in [0, 1]
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithClearColor(r, g, b, a float64) EngineBuilderOption {
	return func(cfg *engineConfig) {
		cfg.rendererOptions = append(cfg.rendererOptions, renderer.WithClearColor(r, g, b, a))
	}
}

// WithMSAA sets the multisample count for the WGPU backend the engine
// creates. Ignored when a backend is supplied via WithBackend.
//
// Parameters:
//   - samples: the sample count (off, 4x, 8x)
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithMSAA(samples renderer.MSAASampleCount) EngineBuilderOption {
	return func(cfg *engineConfig) {
		cfg.sampleCount = samples
	}
}

// WithTickRate sets the frame rate target in frames per second. Values <= 0
// keep the default (75Hz).
//
// Parameters:
//   - fps: target frames per second
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithTickRate(fps float64) EngineBuilderOption {
	return func(cfg *engineConfig) {
		if fps <= 0 {
			return
		}
		cfg.tickRate = time.Duration(float64(time.Second) / fps)
	}
}

// WithProfiling enables performance profiling output to the log.
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithProfiling() EngineBuilderOption {
	return func(cfg *engineConfig) {
		cfg.profiling = true
	}
}
