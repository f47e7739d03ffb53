package camera

import (
	"sync"

	"github.com/Carmen-Shannon/oxy-rendergraph/common"
	"github.com/Carmen-Shannon/oxy-rendergraph/engine/config"
	"github.com/Carmen-Shannon/oxy-rendergraph/engine/device"
)

const indexSize = 4

// ClusterData is the per-camera GPU state of light clustering: tile bounds, per-tile
// index ranges and the light/probe index lists. Buffers are created on first use and
// resized when the cluster capacity changes. The projection matrix of the last
// cluster build is cached so tiles are only rebuilt when it changes.
type ClusterData struct {
	mu sync.Mutex

	Tiles        *device.Buffer
	TileData     *device.Buffer
	LightIndices *device.Buffer
	ProbeIndices *device.Buffer

	capacity  config.Cluster
	allocated bool
	projMat   common.Mat4
	hasProj   bool
}

// Sizes returns the byte sizes of the tile, tile data, light index and probe index
// buffers for a capacity.
//
// Parameters:
//   - c: cluster capacity
//
// Returns:
//   - tiles, tileData, lightIndices, probeIndices: buffer sizes in bytes
func Sizes(c config.Cluster) (tiles, tileData, lightIndices, probeIndices int) {
	n := int(c.NumTiles())
	tiles = n * (&GPUClusterTile{}).Size()
	tileData = n * (&GPUClusterTileData{}).Size()
	lightIndices = n * int(c.MaxLightsPerTile) * indexSize
	probeIndices = n * int(c.MaxProbesPerTile) * indexSize
	return
}

// Ensure makes sure the four buffers exist with the given capacity. Allocation runs as
// hardware operations on sched. A (re)allocation drops the cached projection so the
// next frame rebuilds the tiles.
//
// Parameters:
//   - c: required cluster capacity
//   - sched: scheduler for the device-side allocation
//
// Returns:
//   - bool: true if buffers were allocated or resized
func (cd *ClusterData) Ensure(c config.Cluster, sched device.Scheduler) bool {
	cd.mu.Lock()
	defer cd.mu.Unlock()
	if cd.allocated && cd.capacity == c {
		return false
	}
	if !cd.allocated {
		cd.Tiles = device.NewBuffer()
		cd.TileData = device.NewBuffer()
		cd.LightIndices = device.NewBuffer()
		cd.ProbeIndices = device.NewBuffer()
	}
	cd.allocated = true
	cd.capacity = c
	cd.hasProj = false

	tiles, tileData, lightIdx, probeIdx := Sizes(c)
	bufs := [4]*device.Buffer{cd.Tiles, cd.TileData, cd.LightIndices, cd.ProbeIndices}
	sizes := [4]int{tiles, tileData, lightIdx, probeIdx}
	sched.ScheduleHwOp(func(dev device.Device) {
		for i, b := range bufs {
			dev.AllocBuffer(b, sizes[i])
		}
	})
	return true
}

// Allocated reports whether the buffers exist.
func (cd *ClusterData) Allocated() bool {
	cd.mu.Lock()
	defer cd.mu.Unlock()
	return cd.allocated
}

// Capacity returns the capacity the buffers were allocated with.
func (cd *ClusterData) Capacity() config.Cluster {
	cd.mu.Lock()
	defer cd.mu.Unlock()
	return cd.capacity
}

// UpdateProjection records proj as the projection the tiles are built for.
//
// Parameters:
//   - proj: the current stable projection matrix
//
// Returns:
//   - bool: true if proj differs from the cached one and tiles must be rebuilt
func (cd *ClusterData) UpdateProjection(proj common.Mat4) bool {
	cd.mu.Lock()
	defer cd.mu.Unlock()
	if cd.hasProj && cd.projMat == proj {
		return false
	}
	cd.projMat = proj
	cd.hasProj = true
	return true
}
