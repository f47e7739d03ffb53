package renderer

import "github.com/Carmen-Shannon/oxy-rendergraph/engine/device"

// RendererBuilderOption is a functional option applied to a renderer during construction via NewRenderer.
type RendererBuilderOption func(*renderer)

// WithHwOpCapacity preallocates the hardware operation queue.
//
// Parameters:
//   - n: expected number of operations per frame
//
// Returns:
//   - RendererBuilderOption: a function that applies the capacity option to a renderer
func WithHwOpCapacity(n int) RendererBuilderOption {
	return func(r *renderer) {
		r.hwOps = make([]device.HwOp, 0, n)
	}
}

// WithFrameCallback registers a function called on the device thread after every
// rendered frame with the updated counters.
//
// Parameters:
//   - fn: the callback
//
// Returns:
//   - RendererBuilderOption: a function that applies the callback option to a renderer
func WithFrameCallback(fn func(Stats)) RendererBuilderOption {
	return func(r *renderer) {
		r.onFrame = fn
	}
}
