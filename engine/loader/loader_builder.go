package loader

import (
	"github.com/Carmen-Shannon/oxy-rendergraph/engine/device"
)

// LoaderBuilderOption is a functional option for configuring a Loader via NewLoader.
type LoaderBuilderOption func(*loader)

// WithScheduler uploads every loaded model through sched.
//
// Parameters:
//   - sched: the scheduler that runs uploads on the device thread
//
// Returns:
//   - LoaderBuilderOption: a function that applies the scheduler option to a loader
func WithScheduler(sched device.Scheduler) LoaderBuilderOption {
	return func(l *loader) {
		l.sched = sched
	}
}

// WithGenerateNormals controls whether triangle primitives without a NORMAL attribute
// get smooth normals. Enabled by default.
//
// Parameters:
//   - enabled: true to generate normals
//
// Returns:
//   - LoaderBuilderOption: a function that applies the option to a loader
func WithGenerateNormals(enabled bool) LoaderBuilderOption {
	return func(l *loader) {
		l.generateNormals = enabled
	}
}

// WithMeshes pre-populates the cache.
//
// Parameters:
//   - key: the cache key
//   - meshes: the meshes to cache
//
// Returns:
//   - LoaderBuilderOption: a function that applies the option to a loader
func WithMeshes(key string, meshes ...Mesh) LoaderBuilderOption {
	return func(l *loader) {
		l.cache[key] = meshes
	}
}
