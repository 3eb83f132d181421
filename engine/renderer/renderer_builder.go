package renderer

type rendererConfig struct {
	clearColor *[4]float64
	pipelines  []registeredPipeline
}

// RendererBuilderOption is a functional option for configuring a Renderer.
type RendererBuilderOption func(*rendererConfig)

// WithPipeline registers a pipeline at the given priority during renderer
// construction. Lower priorities prep and render first; registration order
// breaks ties.
//
// Parameters:
//   - priority: ordering key; lower runs first
//   - p: the pipeline to register
//
// Returns:
//   - RendererBuilderOption: option function to apply
func WithPipeline(priority int, p Pipeline) RendererBuilderOption {
	return func(cfg *rendererConfig) {
		cfg.pipelines = append(cfg.pipelines, registeredPipeline{priority: priority, p: p})
	}
}

// WithClearColor overrides the default dark-grey clear color.
//
// Parameters:
//   - r, g, b, a: clear color channels in [0, 1]
//
// Returns:
//   - RendererBuilderOption: option function to apply
func WithClearColor(r, g, b, a float64) RendererBuilderOption {
	return func(cfg *rendererConfig) {
		cfg.clearColor = &[4]float64{r, g, b, a}
	}
}
