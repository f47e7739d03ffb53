package engine

import (
	"time"

	"github.com/Carmen-Shannon/oxy-rendergraph/engine/renderer"
	"github.com/Carmen-Shannon/oxy-rendergraph/engine/scene"
	"github.com/Carmen-Shannon/oxy-rendergraph/engine/window"
)

// EngineBuilderOption is a functional option for configuring an Engine.
// Use the With* functions to create options that are applied directly to the engine instance.
type EngineBuilderOption func(*engine)

// WithProfiling enables or disables performance profiling output.
//
// Parameters:
//   - enabled: if true, enables performance profiling
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithProfiling(enabled bool) EngineBuilderOption {
	return func(e *engine) {
		e.profilingEnabled.Store(enabled)
	}
}

// WithTickRate sets the engine tick rate in frames per second.
// Values <= 0 will be treated as the default (60Hz).
//
// Parameters:
//   - fps: target ticks per second
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithTickRate(fps float64) EngineBuilderOption {
	return func(e *engine) {
		if fps <= 0 {
			fps = 60
		}
		e.engineTickRate = time.Duration(float64(time.Second) / fps)
	}
}

// WithWindow sets the window the engine presents to and polls for events.
// Without a window the engine runs headless.
//
// Parameters:
//   - w: the window
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithWindow(w window.Window) EngineBuilderOption {
	return func(e *engine) {
		e.window = w
	}
}

// WithScene registers a scene at the given z-index key during engine construction.
//
// Parameters:
//   - key: the z-index determining render order (lower renders first)
//   - s: the Scene to register
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithScene(key int, s scene.Scene) EngineBuilderOption {
	return func(e *engine) {
		e.scenes[key] = s
	}
}

// WithRenderFrameLimit sets an optional render frame rate cap.
// Pass 0 to leave the render loop uncapped (default).
//
// Parameters:
//   - fps: maximum render frames per second
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithRenderFrameLimit(fps float64) EngineBuilderOption {
	return func(e *engine) {
		if fps > 0 {
			e.renderFrameLimit = time.Duration(float64(time.Second) / fps)
		}
	}
}

// WithRenderer replaces the renderer the engine creates by default. The engine does
// not install its frame callback on a supplied renderer, so profiling and the render
// callback are driven by the caller.
//
// Parameters:
//   - r: the renderer
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithRenderer(r renderer.Renderer) EngineBuilderOption {
	return func(e *engine) {
		e.renderer = r
	}
}

// WithCompileWorkers sets the number of goroutines compiling render lists.
//
// Parameters:
//   - n: worker count, ignored when < 1
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithCompileWorkers(n int) EngineBuilderOption {
	return func(e *engine) {
		if n >= 1 {
			e.compileWorkers = n
		}
	}
}

// WithTimeScale scales the delta time passed to scene updates. The tick callback
// still receives real time.
//
// Parameters:
//   - scale: the multiplier, 1 for real time
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithTimeScale(scale float32) EngineBuilderOption {
	return func(e *engine) {
		e.timeScale = scale
	}
}
