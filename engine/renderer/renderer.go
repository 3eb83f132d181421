// package renderer owns the per-frame GPU orchestration: camera uniform sync,
// priority-ordered pipeline prep and render, and the single render pass per
// frame. The actual device work goes through the Backend abstraction so the
// whole layer is testable against a fake.
package renderer

import (
	"fmt"
	"log"
	"sort"

	"github.com/kestrel3d/kestrel/common"
	"github.com/kestrel3d/kestrel/engine/camera"
	"github.com/kestrel3d/kestrel/engine/ecs"
	"github.com/kestrel3d/kestrel/engine/spatial"
)

// FrameContext is handed to every pipeline during prep and render. It carries
// the entity registry, the device backend, and the shared GPU resources.
type FrameContext struct {
	World   *ecs.World
	Backend Backend
	Shared  *Shared
}

// Pipeline is one renderable category's encapsulated GPU pipeline plus its
// batching and draw logic. Pipelines are registered with a priority; prep and
// render both run in ascending priority order.
type Pipeline interface {
	// Key returns the pipeline's unique identifier.
	Key() string

	// Init registers the pipeline's GPU pipeline objects and creates its
	// static resources. Called once when the pipeline is registered.
	//
	// Parameters:
	//   - b: the device backend
	//   - shared: the renderer's shared resources
	//
	// Returns:
	//   - error: an error if GPU pipeline creation fails
	Init(b Backend, shared *Shared) error

	// Prep reconciles the current entity set into GPU-ready instance batches.
	// Runs before any pipeline renders.
	//
	// Parameters:
	//   - ctx: the frame context
	Prep(ctx *FrameContext)

	// Render records the pipeline's draw calls into the open render pass.
	//
	// Parameters:
	//   - pass: the open render pass
	//   - ctx: the frame context
	Render(pass RenderPass, ctx *FrameContext)
}

type cameraGPU struct {
	buf  Buffer
	bind BindGroup
}

// Shared holds the GPU resources owned by the renderer and read by every
// pipeline: the default texture for untextured renderables and the per-camera
// uniform bind groups refreshed at the start of each frame. All fields are
// immutable from a pipeline's point of view.
type Shared struct {
	defaultTexture     Texture
	defaultTextureBind BindGroup

	cameras map[ecs.Entity]*cameraGPU
	active  ecs.Entity
}

// DefaultTextureBind returns the bind group for the built-in 1x1 white
// texture, used by renderables that carry no texture of their own.
func (s *Shared) DefaultTextureBind() BindGroup {
	return s.defaultTextureBind
}

// ActiveCamera returns the entity of the first active camera found during
// this frame's camera sync, or ecs.NilEntity if no camera is active.
func (s *Shared) ActiveCamera() ecs.Entity {
	return s.active
}

// CameraBind returns the uniform bind group for a camera entity.
//
// Parameters:
//   - e: the camera entity
//
// Returns:
//   - BindGroup: the camera's uniform bind group
//   - bool: false if the entity had no camera synced this frame
func (s *Shared) CameraBind(e ecs.Entity) (BindGroup, bool) {
	c, ok := s.cameras[e]
	if !ok {
		return nil, false
	}
	return c.bind, true
}

// ActiveCameraBind returns the uniform bind group of the active camera, or
// nil if no camera is active this frame.
func (s *Shared) ActiveCameraBind() BindGroup {
	if bind, ok := s.CameraBind(s.active); ok {
		return bind
	}
	return nil
}

// Renderer drives the per-frame GPU sequence: camera sync, pipeline prep in
// ascending priority order, surface acquisition, one render pass, pipeline
// render in the same order, submit and present.
type Renderer interface {
	// RegisterPipeline initializes a pipeline and inserts it at the given
	// priority. Registration order breaks priority ties.
	//
	// Parameters:
	//   - priority: ordering key; lower runs first
	//   - p: the pipeline to register
	//
	// Returns:
	//   - error: an error if the pipeline's Init fails
	RegisterPipeline(priority int, p Pipeline) error

	// Tick runs one full frame cycle against the current entity set. A
	// momentarily unavailable surface drops the frame's draw submission; prep
	// results stay valid for the next cycle.
	//
	// Parameters:
	//   - w: the entity registry
	Tick(w *ecs.World)

	// Resize reconfigures the surface and depth attachment.
	//
	// Parameters:
	//   - width: new surface width in pixels
	//   - height: new surface height in pixels
	Resize(width, height uint32)

	// Backend returns the device backend.
	Backend() Backend

	// Shared returns the renderer's shared resources.
	Shared() *Shared
}

type registeredPipeline struct {
	priority int
	p        Pipeline
}

type renderer struct {
	backend   Backend
	shared    *Shared
	pipelines []registeredPipeline
}

var _ Renderer = &renderer{}

// NewRenderer creates a renderer over the given backend, allocating the
// shared default texture.
//
// Parameters:
//   - backend: the device backend to draw through
//   - options: builder options to apply
//
// Returns:
//   - Renderer: the ready renderer
//   - error: an error if a pipeline registered via options fails to initialize
func NewRenderer(backend Backend, options ...RendererBuilderOption) (Renderer, error) {
	white := backend.CreateTexture("Default Texture", common.TextureData{
		Pixels: []byte{255, 255, 255, 255},
		Width:  1,
		Height: 1,
	})
	shared := &Shared{
		defaultTexture:     white,
		defaultTextureBind: backend.CreateBindGroup("Default Texture Bind Group", LayoutTexture, white),
		cameras:            make(map[ecs.Entity]*cameraGPU),
	}

	r := &renderer{
		backend: backend,
		shared:  shared,
	}
	cfg := rendererConfig{}
	for _, opt := range options {
		opt(&cfg)
	}
	if cfg.clearColor != nil {
		backend.SetClearColor(cfg.clearColor[0], cfg.clearColor[1], cfg.clearColor[2], cfg.clearColor[3])
	}
	for _, rp := range cfg.pipelines {
		if err := r.RegisterPipeline(rp.priority, rp.p); err != nil {
			return nil, err
		}
	}
	return r, nil
}

func (r *renderer) RegisterPipeline(priority int, p Pipeline) error {
	if err := p.Init(r.backend, r.shared); err != nil {
		return fmt.Errorf("failed to initialize pipeline %s: %w", p.Key(), err)
	}
	r.pipelines = append(r.pipelines, registeredPipeline{priority: priority, p: p})
	sort.SliceStable(r.pipelines, func(i, j int) bool {
		return r.pipelines[i].priority < r.pipelines[j].priority
	})
	return nil
}

func (r *renderer) Tick(w *ecs.World) {
	r.syncCameras(w)

	ctx := &FrameContext{World: w, Backend: r.backend, Shared: r.shared}
	for _, rp := range r.pipelines {
		rp.p.Prep(ctx)
	}

	pass, err := r.backend.BeginFrame()
	if err != nil {
		log.Printf("surface unavailable, skipping frame: %v", err)
		return
	}

	for _, rp := range r.pipelines {
		rp.p.Render(pass, ctx)
	}

	r.backend.EndFrame()
	r.backend.Present()
}

func (r *renderer) Resize(width, height uint32) {
	r.backend.Configure(width, height)
}

func (r *renderer) Backend() Backend {
	return r.backend
}

func (r *renderer) Shared() *Shared {
	return r.shared
}

// syncCameras uploads the uniform record for every camera entity before any
// pipeline prep runs, so all pipelines observe a consistent camera set for
// the frame. Cameras whose entities vanished are released; the first active
// camera (perspective store first, then orthographic) becomes the frame's
// draw camera.
func (r *renderer) syncCameras(w *ecs.World) {
	seen := make(map[ecs.Entity]bool, len(r.shared.cameras))
	active := ecs.NilEntity

	ecs.Each2(w, func(e ecs.Entity, c *camera.Perspective, g *spatial.GlobalTransform) bool {
		u := camera.Uniform(c.Projection(), g.Transform)
		r.uploadCamera(e, &u)
		seen[e] = true
		if active == ecs.NilEntity && c.Active {
			active = e
		}
		return true
	})
	ecs.Each2(w, func(e ecs.Entity, c *camera.Orthographic, g *spatial.GlobalTransform) bool {
		u := camera.Uniform(c.Projection(), g.Transform)
		r.uploadCamera(e, &u)
		seen[e] = true
		if active == ecs.NilEntity && c.Active {
			active = e
		}
		return true
	})

	for e, c := range r.shared.cameras {
		if !seen[e] {
			c.bind.Release()
			c.buf.Release()
			delete(r.shared.cameras, e)
		}
	}
	r.shared.active = active
}

func (r *renderer) uploadCamera(e ecs.Entity, u *camera.GPUCameraUniform) {
	c, ok := r.shared.cameras[e]
	if !ok {
		buf := r.backend.CreateBufferInit("Camera Uniform", u.Marshal(), BufferUsageUniform)
		c = &cameraGPU{
			buf:  buf,
			bind: r.backend.CreateBindGroup("Camera Bind Group", LayoutUniform, buf),
		}
		r.shared.cameras[e] = c
		return
	}
	r.backend.WriteBuffer(c.buf, 0, u.Marshal())
}
