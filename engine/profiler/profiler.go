// Package profiler reports frame rate, plan sizes and memory statistics.
package profiler

import (
	"log/slog"
	"runtime"
	"sync"
	"time"

	"github.com/Carmen-Shannon/oxy-rendergraph/engine/logger"
	"github.com/Carmen-Shannon/oxy-rendergraph/engine/renderer"
)

// Report is one interval's worth of statistics.
type Report struct {
	FPS           float64
	DrawsPerFrame float64
	HwOps         uint64
	Discarded     uint64
	HeapMB        float64
	AllocRateMB   float64
	GCCount       uint32
	LastPauseUs   uint64
	MaxPauseUs    uint64
	SysMB         float64
}

// Profiler tracks frame rate, renderer statistics and memory for performance monitoring.
// Outputs a report to the engine logger at a configurable interval.
type Profiler struct {
	mu *sync.Mutex

	frameCount     int
	lastTime       time.Time
	updateInterval time.Duration
	memStats       runtime.MemStats
	lastGCCount    uint32
	lastTotalAlloc uint64
	lastStats      renderer.Stats
	last           Report

	now func() time.Time
	log *slog.Logger
}

// NewProfiler creates a new Profiler with default settings.
// Update interval defaults to 1 second.
//
// Returns:
//   - *Profiler: the newly created profiler instance
func NewProfiler() *Profiler {
	return &Profiler{
		mu:             &sync.Mutex{},
		lastTime:       time.Now(),
		updateInterval: time.Second,
		now:            time.Now,
		log:            logger.For("Profiler"),
	}
}

// SetInterval changes how often a report is produced.
//
// Parameters:
//   - d: the reporting interval
func (p *Profiler) SetInterval(d time.Duration) {
	p.mu.Lock()
	p.updateInterval = d
	p.mu.Unlock()
}

// Last returns the most recent report.
func (p *Profiler) Last() Report {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.last
}

// Tick should be called once per rendered frame with the renderer's cumulative stats.
// Logs a report at Info level when the update interval has elapsed.
//
// Parameters:
//   - stats: the renderer statistics after the frame
//
// Returns:
//   - bool: true if a report was produced this tick, false otherwise
func (p *Profiler) Tick(stats renderer.Stats) bool {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.frameCount++
	currentTime := p.now()
	elapsed := currentTime.Sub(p.lastTime)
	if elapsed < p.updateInterval || elapsed <= 0 {
		return false
	}

	runtime.ReadMemStats(&p.memStats)
	r := Report{
		FPS:         float64(p.frameCount) / elapsed.Seconds(),
		HwOps:       stats.HwOps - p.lastStats.HwOps,
		Discarded:   stats.Discarded - p.lastStats.Discarded,
		HeapMB:      float64(p.memStats.Alloc) / 1024 / 1024,
		SysMB:       float64(p.memStats.Sys) / 1024 / 1024,
		AllocRateMB: float64(p.memStats.TotalAlloc-p.lastTotalAlloc) / 1024 / 1024 / elapsed.Seconds(),
		GCCount:     p.memStats.NumGC,
	}
	if frames := stats.Frames - p.lastStats.Frames; frames > 0 {
		r.DrawsPerFrame = float64(stats.Draws-p.lastStats.Draws) / float64(frames)
	}

	if gcCount := p.memStats.NumGC; gcCount > 0 {
		// PauseNs is a circular buffer of the last 256 pauses
		r.LastPauseUs = p.memStats.PauseNs[(gcCount-1)%256] / 1000
		startIdx := p.lastGCCount
		if gcCount-startIdx > 256 {
			startIdx = gcCount - 256
		}
		for i := startIdx; i < gcCount; i++ {
			r.MaxPauseUs = max(r.MaxPauseUs, p.memStats.PauseNs[i%256]/1000)
		}
	}

	p.log.Info("frame stats",
		slog.Float64("fps", r.FPS),
		slog.Float64("draws_per_frame", r.DrawsPerFrame),
		slog.Uint64("hw_ops", r.HwOps),
		slog.Uint64("discarded", r.Discarded),
		slog.Float64("heap_mb", r.HeapMB),
		slog.Float64("alloc_rate_mb", r.AllocRateMB),
		slog.Any("gc", r.GCCount),
		slog.Uint64("gc_last_us", r.LastPauseUs),
		slog.Uint64("gc_max_us", r.MaxPauseUs),
		slog.Float64("sys_mb", r.SysMB),
	)

	p.last = r
	p.frameCount = 0
	p.lastTime = currentTime
	p.lastGCCount = p.memStats.NumGC
	p.lastTotalAlloc = p.memStats.TotalAlloc
	p.lastStats = stats
	return true
}
