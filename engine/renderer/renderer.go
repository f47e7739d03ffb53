// Package renderer hands compiled render graphs from the producer stage to the device
// thread. It keeps one plan in flight and a queue of hardware operations that must run
// between frames.
package renderer

import (
	"context"
	"errors"
	"sync"

	"github.com/Carmen-Shannon/oxy-rendergraph/engine/device"
	"github.com/Carmen-Shannon/oxy-rendergraph/engine/logger"
	"github.com/Carmen-Shannon/oxy-rendergraph/engine/renderer/rendernode"
)

var (
	// ErrSwapCancelled is returned by a Swap that was waiting when CancelSwap ran.
	ErrSwapCancelled = errors.New("renderer: swap cancelled")
	// ErrRenderCancelled is returned by a Render or ScheduleHwOpSync that was waiting
	// when CancelRender ran.
	ErrRenderCancelled = errors.New("renderer: render cancelled")
)

// Stats counts the work done by Render.
type Stats struct {
	// Frames is the number of plans applied.
	Frames uint64
	// Roots is the number of root nodes applied.
	Roots uint64
	// Draws is the number of draws and dispatches in the applied roots.
	Draws uint64
	// HwOps is the number of hardware operations executed.
	HwOps uint64
	// Discarded is the number of plans dropped by CancelSwap, CancelRender or Reset.
	Discarded uint64
}

// renderer is the implementation of the Renderer interface.
type renderer struct {
	mu   *sync.Mutex
	cond *sync.Cond

	hwOps []device.HwOp

	plan      []*rendernode.Node
	ready     bool
	rendering bool

	// swapGen and renderGen count cancellations. A waiter that sees its generation
	// change was cancelled; calls made afterwards start on the new generation.
	swapGen   uint64
	renderGen uint64
	// cancelled is closed and replaced by CancelRender.
	cancelled chan struct{}

	stats   Stats
	onFrame func(Stats)
}

// Renderer is the double buffer between the producer, which compiles render lists and
// calls Swap, and the consumer, which owns the device and calls Render.
//
// One plan is in flight at a time: Swap blocks until the consumer finished the previous
// plan, or CancelRender dropped it. Hardware operations scheduled before a Swap run
// before the roots of that Swap are applied.
//
// Cancellation releases the calls waiting when it happens. Calls made afterwards
// proceed normally, so no Reset is needed to resume.
type Renderer interface {
	device.Scheduler

	// ScheduleHwOpSync queues op and waits until the consumer ran it.
	// If the wait ends early, op stays queued and still runs later.
	//
	// Parameters:
	//   - ctx: bounds the wait
	//   - op: the operation
	//
	// Returns:
	//   - error: ctx.Err(), or ErrRenderCancelled if CancelRender ran while waiting
	ScheduleHwOpSync(ctx context.Context, op device.HwOp) error

	// Swap hands a compiled plan to the consumer. It blocks while the previous plan has
	// not been rendered or dropped.
	//
	// Parameters:
	//   - ctx: bounds the wait
	//   - roots: the roots to apply, in order
	//
	// Returns:
	//   - error: ErrSwapCancelled if CancelSwap ran while waiting, or ctx.Err()
	Swap(ctx context.Context, roots []*rendernode.Node) error

	// Render waits for a plan, runs the queued hardware operations and applies every root
	// on dev. Hardware operations scheduled while waiting are run right away.
	//
	// Parameters:
	//   - ctx: bounds the wait
	//   - dev: the device, used only from the calling goroutine
	//
	// Returns:
	//   - bool: true if a plan was applied
	//   - error: ErrRenderCancelled if CancelRender ran while waiting, or ctx.Err()
	Render(ctx context.Context, dev device.Device) (bool, error)

	// CancelSwap unblocks a producer waiting in Swap. The queued hardware operations are
	// run on dev and a plan that was not yet rendered is discarded.
	//
	// Parameters:
	//   - dev: the device to drain hardware operations on
	CancelSwap(dev device.Device)

	// CancelRender unblocks a consumer waiting in Render and callers waiting in
	// ScheduleHwOpSync. A plan that was not yet rendered is discarded, which releases a
	// producer waiting in Swap with its plan accepted.
	CancelRender()

	// Reset drops an unrendered plan. Queued hardware operations are kept.
	Reset()

	// Stats returns the counters.
	//
	// Returns:
	//   - Stats: a copy of the counters
	Stats() Stats
}

var _ Renderer = &renderer{}

// NewRenderer creates an idle renderer.
//
// Parameters:
//   - options: functional options to configure the renderer
//
// Returns:
//   - Renderer: the renderer
func NewRenderer(options ...RendererBuilderOption) Renderer {
	r := &renderer{
		mu:        &sync.Mutex{},
		cancelled: make(chan struct{}),
	}
	r.cond = sync.NewCond(r.mu)
	for _, option := range options {
		option(r)
	}
	return r
}

func (r *renderer) ScheduleHwOp(op device.HwOp) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.hwOps = append(r.hwOps, op)
	r.cond.Broadcast()
}

func (r *renderer) ScheduleHwOpSync(ctx context.Context, op device.HwOp) error {
	done := make(chan struct{})

	r.mu.Lock()
	r.hwOps = append(r.hwOps, func(dev device.Device) {
		op(dev)
		close(done)
	})
	cancelled := r.cancelled
	r.cond.Broadcast()
	r.mu.Unlock()

	select {
	case <-done:
		return nil
	case <-cancelled:
		return ErrRenderCancelled
	case <-ctx.Done():
		return ctx.Err()
	}
}

// wakeOnDone broadcasts the condition when ctx ends so waiters can observe ctx.Err().
func (r *renderer) wakeOnDone(ctx context.Context) (stop func() bool) {
	return context.AfterFunc(ctx, func() {
		r.mu.Lock()
		defer r.mu.Unlock()
		r.cond.Broadcast()
	})
}

func (r *renderer) Swap(ctx context.Context, roots []*rendernode.Node) error {
	stop := r.wakeOnDone(ctx)
	defer stop()

	r.mu.Lock()
	defer r.mu.Unlock()
	gen := r.swapGen
	for r.ready && gen == r.swapGen && ctx.Err() == nil {
		r.cond.Wait()
	}
	if gen != r.swapGen {
		return ErrSwapCancelled
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	r.plan = roots
	r.ready = true
	r.cond.Broadcast()
	return nil
}

// takeHwOps empties the queue. Caller must hold the mutex.
func (r *renderer) takeHwOps() []device.HwOp {
	ops := r.hwOps
	r.hwOps = nil
	return ops
}

// runHwOps runs ops with the mutex released and counts them.
// Caller must hold the mutex.
func (r *renderer) runHwOps(dev device.Device, ops []device.HwOp) {
	if len(ops) == 0 {
		return
	}
	r.mu.Unlock()
	for _, op := range ops {
		op(dev)
	}
	r.mu.Lock()
	r.stats.HwOps += uint64(len(ops))
}

func (r *renderer) Render(ctx context.Context, dev device.Device) (bool, error) {
	stop := r.wakeOnDone(ctx)
	defer stop()

	r.mu.Lock()
	defer r.mu.Unlock()
	gen := r.renderGen
	for {
		r.runHwOps(dev, r.takeHwOps())
		if gen != r.renderGen {
			return false, ErrRenderCancelled
		}
		if r.ready && !r.rendering {
			break
		}
		if err := ctx.Err(); err != nil {
			return false, err
		}
		if len(r.hwOps) == 0 {
			r.cond.Wait()
		}
	}

	plan := r.plan
	r.rendering = true
	r.mu.Unlock()

	draws := 0
	for _, root := range plan {
		root.Apply(dev)
		draws += root.NumDraws()
	}

	r.mu.Lock()
	r.rendering = false
	r.stats.Frames++
	r.stats.Roots += uint64(len(plan))
	r.stats.Draws += uint64(draws)
	// a cancel or Reset during the walk cannot drop the plan being rendered
	if r.ready {
		r.plan = nil
		r.ready = false
	}
	stats := r.stats
	r.cond.Broadcast()

	logger.For("Renderer").Debug("frame rendered", "roots", len(plan), "draws", draws)
	if r.onFrame != nil {
		r.mu.Unlock()
		r.onFrame(stats)
		r.mu.Lock()
	}
	return true, nil
}

func (r *renderer) CancelSwap(dev device.Device) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.swapGen++
	if r.ready && !r.rendering {
		r.dropPlan()
	}
	r.runHwOps(dev, r.takeHwOps())
	r.cond.Broadcast()
}

func (r *renderer) CancelRender() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.renderGen++
	close(r.cancelled)
	r.cancelled = make(chan struct{})
	if r.ready && !r.rendering {
		r.dropPlan()
	}
	r.cond.Broadcast()
}

func (r *renderer) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.ready && !r.rendering {
		r.dropPlan()
	}
	r.cond.Broadcast()
}

// dropPlan discards the unrendered plan. Caller must hold the mutex.
func (r *renderer) dropPlan() {
	r.plan = nil
	r.ready = false
	r.stats.Discarded++
	logger.For("Renderer").Debug("plan discarded")
}

func (r *renderer) Stats() Stats {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.stats
}
