// Package engine drives the frame loop: a producer turns active scenes into compiled
// render graphs and hands them to the renderer, and a consumer applies them on the device
// thread.
package engine

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/Carmen-Shannon/automation/tools/worker"
	"github.com/Carmen-Shannon/oxy-rendergraph/common"
	"github.com/Carmen-Shannon/oxy-rendergraph/engine/device"
	"github.com/Carmen-Shannon/oxy-rendergraph/engine/logger"
	"github.com/Carmen-Shannon/oxy-rendergraph/engine/profiler"
	"github.com/Carmen-Shannon/oxy-rendergraph/engine/renderer"
	"github.com/Carmen-Shannon/oxy-rendergraph/engine/renderer/rendernode"
	"github.com/Carmen-Shannon/oxy-rendergraph/engine/renderer/renderlist"
	"github.com/Carmen-Shannon/oxy-rendergraph/engine/scene"
	"github.com/Carmen-Shannon/oxy-rendergraph/engine/window"
)

var (
	// ErrCompileFailed is returned by Tick when compiling a render list panicked.
	ErrCompileFailed = errors.New("render list compile failed")
	// ErrAlreadyRunning is returned by Run while another Run is active.
	ErrAlreadyRunning = errors.New("engine already running")
)

// engine implements the Engine interface.
// Coordinates the producer (tick) and consumer (render) loops.
type engine struct {
	mu *sync.Mutex

	tickRateChannel chan time.Duration // Channel for dynamic tick rate updates

	running atomic.Bool

	quitChannel chan struct{}
	quitOnce    sync.Once // Ensures quitChannel is only closed once

	window   window.Window
	renderer renderer.Renderer

	compilePool    worker.DynamicWorkerPool
	compileWorkers int

	profiler         *profiler.Profiler
	profilingEnabled atomic.Bool

	engineTickRate time.Duration
	timeScale      float32
	tickCallback   func(deltaTime float32)
	renderCallback func(stats renderer.Stats)

	scenes map[int]scene.Scene

	renderFrameLimit time.Duration // minimum frame duration; 0 = uncapped
}

// Engine is the main entry point for the engine.
// It orchestrates the producer loop, the render loop and window management.
type Engine interface {
	// Window returns the window, or nil for a headless engine.
	//
	// Returns:
	//   - window.Window: the window instance
	Window() window.Window

	// Renderer returns the renderer the engine swaps plans into. Environments of the
	// engine's scenes should schedule hardware operations on it.
	//
	// Returns:
	//   - renderer.Renderer: the renderer
	Renderer() renderer.Renderer

	// EnableProfiler enables performance profiling output to the log.
	EnableProfiler()

	// DisableProfiler disables performance profiling output.
	DisableProfiler()

	// SetTickRate sets the engine tick rate in frames per second.
	//
	// Parameters:
	//   - fps: target frames per second (defaults to 60 if <= 0)
	SetTickRate(fps float64)

	// SetTickCallback registers the function called at the start of each tick on the
	// producer goroutine. Use this for game logic and scene mutation.
	//
	// Parameters:
	//   - callback: function receiving the delta time in seconds
	SetTickCallback(callback func(deltaTime float32))

	// SetRenderCallback registers the function called on the device thread after each
	// rendered frame.
	//
	// Parameters:
	//   - callback: function receiving the renderer counters
	SetRenderCallback(callback func(stats renderer.Stats))

	// SetRenderFrameLimit sets an optional render frame rate cap in frames per second.
	// Pass 0 to uncap the render loop (default).
	//
	// Parameters:
	//   - fps: maximum render frames per second (0 = uncapped)
	SetRenderFrameLimit(fps float64)

	// AddScene registers a scene at the given z-index key.
	// Scenes are compiled and rendered in ascending key order.
	//
	// Parameters:
	//   - key: the z-index determining render order (lower renders first)
	//   - s: the Scene to register
	AddScene(key int, s scene.Scene)

	// RemoveScene removes the scene at the given z-index key.
	//
	// Parameters:
	//   - key: the z-index of the scene to remove
	RemoveScene(key int)

	// Scene retrieves the scene registered at the given z-index key.
	// Returns nil if no scene exists at that key.
	//
	// Parameters:
	//   - key: the z-index of the scene to retrieve
	//
	// Returns:
	//   - scene.Scene: the scene at the key, or nil if not found
	Scene(key int) scene.Scene

	// Scenes returns a copy of all registered scenes keyed by z-index.
	//
	// Returns:
	//   - map[int]scene.Scene: a copy of the scenes map
	Scenes() map[int]scene.Scene

	// Tick runs one producer step: the tick callback, scene updates, render list
	// traversal, parallel compilation and the swap into the renderer. It blocks while the
	// previous plan has not been rendered.
	//
	// Parameters:
	//   - ctx: bounds the swap wait
	//   - dt: the frame delta in seconds
	//
	// Returns:
	//   - error: the swap error, or ErrCompileFailed
	Tick(ctx context.Context, dt float32) error

	// RenderFrame runs one consumer step on the device thread and presents the window.
	//
	// Parameters:
	//   - ctx: bounds the wait for a plan
	//   - dev: the device
	//
	// Returns:
	//   - bool: true if a plan was applied
	//   - error: the render error
	RenderFrame(ctx context.Context, dev device.Device) (bool, error)

	// Run starts the producer goroutine and runs the render loop on the calling
	// goroutine, which must own the device. It returns when ctx is done, the window
	// closes or Quit is called.
	//
	// Parameters:
	//   - ctx: stops both loops when done
	//   - dev: the device
	//
	// Returns:
	//   - error: the first loop error, nil on a normal shutdown
	Run(ctx context.Context, dev device.Device) error

	// Quit signals both loops to stop.
	// Safe to call multiple times; subsequent calls are no-ops.
	Quit()
}

// NewEngine creates a new Engine instance with the provided options.
// Options are applied directly to the engine struct via the option-builder pattern.
//
// Parameters:
//   - options: functional options for engine configuration (profiling, tick rate, etc.)
//
// Returns:
//   - Engine: the newly created engine
func NewEngine(options ...EngineBuilderOption) Engine {
	e := &engine{
		mu:              &sync.Mutex{},
		tickRateChannel: make(chan time.Duration, 1),
		quitChannel:     make(chan struct{}),
		scenes:          make(map[int]scene.Scene),
		profiler:        profiler.NewProfiler(),
		engineTickRate:  time.Second / 60,
		timeScale:       1,
		compileWorkers:  max(runtime.NumCPU()-1, 1),
	}

	for _, opt := range options {
		opt(e)
	}

	if e.renderer == nil {
		e.renderer = renderer.NewRenderer(renderer.WithFrameCallback(e.onFrame))
	}
	// Queue size of 256 accommodates typical camera counts with headroom.
	e.compilePool = worker.NewDynamicWorkerPool(e.compileWorkers, 256, time.Second)

	if e.window != nil {
		e.window.SetResizeCallback(e.handleResize)
	}

	return e
}

// handleResize fits the viewport of every camera drawing to the window.
func (e *engine) handleResize(width, height int) {
	vp := common.Viewport{Width: int32(width), Height: int32(height)}
	for _, s := range e.Scenes() {
		for _, cam := range s.Cameras() {
			if cam.RenderTarget() == nil {
				cam.SetViewport(vp)
			}
		}
	}
	logger.For("Engine").Debug("window resized", "width", width, "height", height)
}

func (e *engine) Window() window.Window {
	return e.window
}

func (e *engine) Renderer() renderer.Renderer {
	return e.renderer
}

// onFrame runs on the device thread after every rendered frame.
func (e *engine) onFrame(stats renderer.Stats) {
	if e.profilingEnabled.Load() {
		e.profiler.Tick(stats)
	}
	e.mu.Lock()
	cb := e.renderCallback
	e.mu.Unlock()
	if cb != nil {
		cb(stats)
	}
}

// activeScenes returns the active scenes in ascending key order.
func (e *engine) activeScenes() []scene.Scene {
	e.mu.Lock()
	defer e.mu.Unlock()
	keys := make([]int, 0, len(e.scenes))
	for k := range e.scenes {
		keys = append(keys, k)
	}
	sort.Ints(keys)

	var active []scene.Scene
	for _, k := range keys {
		if s := e.scenes[k]; s.Active() {
			active = append(active, s)
		}
	}
	return active
}

func (e *engine) Tick(ctx context.Context, dt float32) error {
	e.mu.Lock()
	tick, scale := e.tickCallback, e.timeScale
	e.mu.Unlock()

	if tick != nil {
		tick(dt)
	}

	scenes := e.activeScenes()
	var lists []renderlist.RenderList
	for _, s := range scenes {
		s.Update(dt*scale, dt)
		lists = append(lists, s.BuildLists()...)
	}

	roots, err := e.compile(lists)
	if err != nil {
		return err
	}

	for _, s := range scenes {
		s.Environment().PreSwap()
	}
	if err := e.renderer.Swap(ctx, roots); err != nil {
		return err
	}
	for _, s := range scenes {
		s.EndFrame()
	}
	return nil
}

// compile compiles every list on the compile pool. Roots keep the order of lists.
func (e *engine) compile(lists []renderlist.RenderList) ([]*rendernode.Node, error) {
	roots := make([]*rendernode.Node, len(lists))
	errs := make([]error, len(lists))

	// A WaitGroup provides the per-frame barrier since pool.Wait() waits for the whole
	// pool to drain.
	var wg sync.WaitGroup
	for i, list := range lists {
		wg.Add(1)
		e.compilePool.SubmitTask(worker.Task{
			ID:      i,
			Payload: list,
			Do: func() (any, error) {
				defer wg.Done()
				defer func() {
					if r := recover(); r != nil {
						errs[i] = fmt.Errorf("%w: camera %d: %v", ErrCompileFailed, i, r)
					}
				}()
				roots[i] = list.Compile()
				return roots[i], nil
			},
		})
	}
	wg.Wait()

	if err := errors.Join(errs...); err != nil {
		logger.For("Engine").Warn("frame dropped", "error", err)
		return nil, err
	}
	return roots, nil
}

func (e *engine) RenderFrame(ctx context.Context, dev device.Device) (bool, error) {
	ok, err := e.renderer.Render(ctx, dev)
	if ok && e.window != nil {
		e.window.SwapBuffers()
	}
	return ok, err
}

func (e *engine) Run(ctx context.Context, dev device.Device) error {
	if !e.running.CompareAndSwap(false, true) {
		return ErrAlreadyRunning
	}
	defer e.running.Store(false)

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	go func() {
		select {
		case <-e.quitChannel:
			cancel()
		case <-ctx.Done():
		}
	}()

	logger.For("Engine").Info("engine started", "tick_rate", e.engineTickRate)

	var wg sync.WaitGroup
	var produceErr error
	wg.Add(1)
	go func() {
		defer wg.Done()
		// a failing producer stops the consumer too
		defer cancel()
		produceErr = e.handleEngine(ctx)
	}()

	renderErr := e.handleRender(ctx, dev)

	cancel()
	e.renderer.CancelSwap(dev)
	wg.Wait()
	e.renderer.CancelRender()
	e.renderer.Reset()

	logger.For("Engine").Info("engine stopped")
	return errors.Join(renderErr, produceErr)
}

// handleEngine runs the fixed-rate producer loop. Listens for dynamic rate changes via
// tickRateChannel and exits when ctx is done.
func (e *engine) handleEngine(ctx context.Context) error {
	e.mu.Lock()
	rate := e.engineTickRate
	e.mu.Unlock()
	ticker := time.NewTicker(rate)
	defer ticker.Stop()

	lastTick := time.Now()
	for {
		select {
		case <-ctx.Done():
			return nil
		case newRate := <-e.tickRateChannel:
			ticker.Reset(newRate)
		case <-ticker.C:
			now := time.Now()
			dt := float32(now.Sub(lastTick).Seconds())
			lastTick = now

			if err := e.Tick(ctx, dt); err != nil {
				if ctx.Err() != nil || errors.Is(err, renderer.ErrSwapCancelled) {
					return nil
				}
				if errors.Is(err, ErrCompileFailed) {
					continue
				}
				return err
			}
		}
	}
}

// handleRender runs the render loop on the device thread until ctx is done or the
// window closes.
func (e *engine) handleRender(ctx context.Context, dev device.Device) error {
	for {
		frameStart := time.Now()
		if ctx.Err() != nil {
			return nil
		}
		if e.window != nil && !e.window.ProcessMessages() {
			return nil
		}

		if _, err := e.RenderFrame(ctx, dev); err != nil {
			if ctx.Err() != nil || errors.Is(err, renderer.ErrRenderCancelled) {
				return nil
			}
			return err
		}

		e.mu.Lock()
		limit := e.renderFrameLimit
		e.mu.Unlock()
		if limit > 0 {
			if remaining := limit - time.Since(frameStart); remaining > 0 {
				time.Sleep(remaining)
			}
		}
	}
}

// Quit signals both loops to stop.
// Safe to call multiple times; subsequent calls are no-ops due to sync.Once.
func (e *engine) Quit() {
	e.quitOnce.Do(func() {
		close(e.quitChannel)
	})
}

// EnableProfiler enables performance profiling output to the log.
func (e *engine) EnableProfiler() {
	e.profilingEnabled.Store(true)
}

// DisableProfiler disables performance profiling output.
func (e *engine) DisableProfiler() {
	e.profilingEnabled.Store(false)
}

// SetTickRate sets the engine tick rate in frames per second.
// If the engine is running, the change takes effect immediately.
func (e *engine) SetTickRate(fps float64) {
	if fps <= 0 {
		fps = 60
	}
	newRate := time.Duration(float64(time.Second) / fps)

	e.mu.Lock()
	e.engineTickRate = newRate
	e.mu.Unlock()
	if !e.running.Load() {
		return
	}
	// replace a pending update that was not picked up yet
	select {
	case e.tickRateChannel <- newRate:
	default:
		select {
		case <-e.tickRateChannel:
		default:
		}
		e.tickRateChannel <- newRate
	}
}

// SetTickCallback registers the function called each engine tick.
func (e *engine) SetTickCallback(callback func(deltaTime float32)) {
	e.mu.Lock()
	e.tickCallback = callback
	e.mu.Unlock()
}

// SetRenderCallback registers the function called after each rendered frame.
func (e *engine) SetRenderCallback(callback func(stats renderer.Stats)) {
	e.mu.Lock()
	e.renderCallback = callback
	e.mu.Unlock()
}

// SetRenderFrameLimit sets an optional render frame rate cap.
// Pass 0 to uncap the render loop.
func (e *engine) SetRenderFrameLimit(fps float64) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if fps <= 0 {
		e.renderFrameLimit = 0
		return
	}
	e.renderFrameLimit = time.Duration(float64(time.Second) / fps)
}

func (e *engine) AddScene(key int, s scene.Scene) {
	e.mu.Lock()
	e.scenes[key] = s
	e.mu.Unlock()
}

func (e *engine) RemoveScene(key int) {
	e.mu.Lock()
	delete(e.scenes, key)
	e.mu.Unlock()
}

func (e *engine) Scene(key int) scene.Scene {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.scenes[key]
}

func (e *engine) Scenes() map[int]scene.Scene {
	e.mu.Lock()
	defer e.mu.Unlock()
	cp := make(map[int]scene.Scene, len(e.scenes))
	for k, v := range e.scenes {
		cp[k] = v
	}
	return cp
}
