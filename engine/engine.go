// package engine is the frame driver: it owns the entity registry, the input
// state, the window, and the renderer, and runs the per-frame sequence (time
// tick, application update, spatial resolution, renderer tick, input reset)
// until the window closes.
package engine

import (
	"fmt"
	"log"
	"time"

	"github.com/kestrel3d/kestrel/engine/ecs"
	"github.com/kestrel3d/kestrel/engine/input"
	"github.com/kestrel3d/kestrel/engine/profiler"
	"github.com/kestrel3d/kestrel/engine/renderer"
	"github.com/kestrel3d/kestrel/engine/spatial"
	"github.com/kestrel3d/kestrel/engine/window"
)

// State is the per-frame view handed to the application's Update callback.
type State struct {
	// World is the shared entity registry.
	World *ecs.World
	// Input is the queryable input state for this frame.
	Input *input.State
	// Delta is the seconds elapsed since the previous frame.
	Delta float32
}

// App is the host application's capability set. Init runs once before the
// first frame; Update runs every frame between the time tick and spatial
// resolution; Resize runs on every non-degenerate window resize.
type App interface {
	// Init populates the initial entity set.
	//
	// Parameters:
	//   - w: the entity registry
	//
	// Returns:
	//   - error: an error to abort startup
	Init(w *ecs.World) error

	// Update advances application state for one frame.
	//
	// Parameters:
	//   - state: the frame's world, input, and timing
	Update(state *State)

	// Resize reacts to a window size change.
	//
	// Parameters:
	//   - width: new surface width in pixels
	//   - height: new surface height in pixels
	Resize(width, height uint32)
}

// Engine drives the whole frame loop. One frame fully resolves (input,
// update, spatial, prep, draw, present) before the next begins.
type Engine interface {
	// World returns the shared entity registry.
	World() *ecs.World

	// Input returns the queryable input state.
	Input() *input.State

	// Renderer returns the renderer orchestrator.
	Renderer() renderer.Renderer

	// Window returns the window, or nil for host-driven engines.
	Window() window.Window

	// Start runs the application's Init and wires input and resize events,
	// without entering the window loop. Use with Step for host-driven frames.
	//
	// Parameters:
	//   - app: the application to drive
	//
	// Returns:
	//   - error: the error from app.Init, if any
	Start(app App) error

	// Step runs exactly one frame cycle. Start must have been called.
	Step()

	// Run starts the application and blocks in the window message loop until
	// the window closes, stepping one frame per tick interval.
	//
	// Parameters:
	//   - app: the application to drive
	//
	// Returns:
	//   - error: the error from app.Init, or a configuration error
	Run(app App) error
}

type engine struct {
	world    *ecs.World
	input    *input.State
	time     *input.Time
	window   window.Window
	renderer renderer.Renderer

	app      App
	tickRate time.Duration
	lastStep time.Time

	profiler         *profiler.Profiler
	profilingEnabled bool
}

var _ Engine = &engine{}

// NewEngine creates the engine: a fresh entity registry, input state, and a
// renderer over the configured backend. When no backend is supplied, a window
// (created if not provided) backs a WGPU backend configured to its size.
// Panics if renderer construction fails, since there is nothing to recover.
//
// Parameters:
//   - options: builder options to apply
//
// Returns:
//   - Engine: the ready engine
func NewEngine(options ...EngineBuilderOption) Engine {
	cfg := engineConfig{
		tickRate:    time.Second / 75,
		sampleCount: renderer.MSAAOff,
	}
	for _, opt := range options {
		opt(&cfg)
	}

	e := &engine{
		world:            ecs.NewWorld(),
		input:            input.NewState(),
		time:             input.NewTime(),
		window:           cfg.window,
		tickRate:         cfg.tickRate,
		profiler:         profiler.NewProfiler(),
		profilingEnabled: cfg.profiling,
	}

	backend := cfg.backend
	if backend == nil {
		if e.window == nil {
			e.window = window.NewWindow()
		}
		backend = renderer.NewWGPUBackend(e.window.SurfaceDescriptor(), false, cfg.sampleCount)
		backend.Configure(uint32(e.window.Width()), uint32(e.window.Height()))
	}

	r, err := renderer.NewRenderer(backend, cfg.rendererOptions...)
	if err != nil {
		panic(fmt.Sprintf("engine: failed to create renderer: %v", err))
	}
	e.renderer = r
	return e
}

func (e *engine) World() *ecs.World {
	return e.world
}

func (e *engine) Input() *input.State {
	return e.input
}

func (e *engine) Renderer() renderer.Renderer {
	return e.renderer
}

func (e *engine) Window() window.Window {
	return e.window
}

func (e *engine) Start(app App) error {
	if err := app.Init(e.world); err != nil {
		return fmt.Errorf("engine: app init failed: %w", err)
	}
	e.app = app

	if e.window != nil {
		e.wireWindow()
	}
	e.lastStep = time.Now()
	return nil
}

func (e *engine) Step() {
	e.time.Tick()

	e.app.Update(&State{
		World: e.world,
		Input: e.input,
		Delta: float32(e.time.Delta()),
	})

	spatial.ApplyTransforms(e.world)
	spatial.ResolveHierarchy(e.world)

	e.renderer.Tick(e.world)

	if e.profilingEnabled {
		e.profiler.Tick()
	}

	// Transient input (edges, scroll, motion) lives for exactly one frame.
	e.input.Reset()
}

func (e *engine) Run(app App) error {
	if e.window == nil {
		return fmt.Errorf("engine: Run requires a window; use Start/Step for host-driven frames")
	}
	if err := e.Start(app); err != nil {
		return err
	}

	e.window.SetUpdateCallback(func() {
		// Pace frames to the configured tick interval; the message loop polls
		// faster than we want to render.
		now := time.Now()
		if now.Sub(e.lastStep) < e.tickRate {
			return
		}
		e.lastStep = now
		e.Step()
	})

	e.window.ProcessMessages()
	return nil
}

// wireWindow routes window events into the input state and resize handling.
func (e *engine) wireWindow() {
	e.window.SetKeyDownCallback(func(keyCode uint32) {
		e.input.Keyboard.Press(int(keyCode))
	})
	e.window.SetKeyUpCallback(func(keyCode uint32) {
		e.input.Keyboard.Release(int(keyCode))
	})
	e.window.SetScrollCallback(func(delta float32) {
		e.input.Mouse.AddScroll(0, delta)
	})
	e.window.SetMouseMoveCallback(func(x, y int32) {
		e.input.Mouse.Move(float32(x), float32(y))
	})
	e.window.SetMouseDownCallback(func(button int, x, y int32) {
		e.input.Mouse.Buttons.Press(button)
	})
	e.window.SetMouseUpCallback(func(button int, x, y int32) {
		e.input.Mouse.Buttons.Release(button)
	})
	e.window.SetResizeCallback(func(width, height int) {
		if width <= 0 || height <= 0 {
			log.Printf("ignoring zero-sized resize %dx%d", width, height)
			return
		}
		e.renderer.Resize(uint32(width), uint32(height))
		e.app.Resize(uint32(width), uint32(height))
	})
}
