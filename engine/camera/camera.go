package camera

import (
	"sync"

	"github.com/Carmen-Shannon/oxy-rendergraph/common"
	"github.com/Carmen-Shannon/oxy-rendergraph/engine/device"
	"github.com/chewxy/math32"
)

type cameraImpl struct {
	mu *sync.Mutex

	position [3]float32
	target   [3]float32
	up       [3]float32

	fov  float32
	near float32
	far  float32

	viewport     common.Viewport
	clearMask    common.AttachmentPoints
	clearColors  common.AttachmentColors
	renderTarget *device.RenderTarget
	drawBuffers  common.AttachmentPoints
	ambientColor common.Color
	prepass      bool
	jitter       [2]float32
	immCameraIdx int

	stableView         common.Mat4
	stableProj         common.Mat4
	stableViewProj     common.Mat4
	proj               common.Mat4
	viewProj           common.Mat4
	prevStableViewProj common.Mat4

	controller  CameraController
	clusterData *ClusterData
}

// Camera defines the interface for the camera system.
//
// A camera owns everything a RenderList needs to render one view: the viewport and
// render target, clear state, the draw-buffer set, matrices, and the per-camera
// cluster data cache. "Stable" matrices carry no sub-pixel jitter; the plain
// projection and view-projection include the jitter offset.
type Camera interface {
	// Viewport returns the viewport rectangle in pixels.
	//
	// Returns:
	//   - common.Viewport: the viewport
	Viewport() common.Viewport

	// SetViewport sets the viewport; the aspect ratio follows it.
	//
	// Parameters:
	//   - vp: the viewport rectangle
	SetViewport(vp common.Viewport)

	// ClearMask returns the attachments cleared at the start of the camera's pass.
	//
	// Returns:
	//   - common.AttachmentPoints: the clear mask
	ClearMask() common.AttachmentPoints

	// SetClearMask sets the attachments cleared at the start of the camera's pass.
	SetClearMask(mask common.AttachmentPoints)

	// ClearColors returns the clear color per attachment.
	ClearColors() common.AttachmentColors

	// SetClearColor sets the clear color of a color attachment.
	//
	// Parameters:
	//   - point: the attachment
	//   - color: the clear color
	SetClearColor(point common.AttachmentPoint, color common.Color)

	// RenderTarget returns the target rendered into; nil is the default framebuffer.
	RenderTarget() *device.RenderTarget

	// SetRenderTarget sets the target rendered into.
	SetRenderTarget(rt *device.RenderTarget)

	// DrawBuffers returns the attachments fragment outputs are routed to.
	// An empty set leaves the device draw buffers untouched.
	DrawBuffers() common.AttachmentPoints

	// SetDrawBuffers sets the attachments fragment outputs are routed to.
	SetDrawBuffers(points common.AttachmentPoints)

	// AmbientColor returns the ambient light color.
	AmbientColor() common.Color

	// SetAmbientColor sets the ambient light color.
	SetAmbientColor(c common.Color)

	// Prepass reports whether a depth/normal pre-pass is rendered before the main passes.
	Prepass() bool

	// SetPrepass enables or disables the pre-pass.
	SetPrepass(enabled bool)

	// Jitter returns the sub-pixel projection offset in pixels.
	Jitter() [2]float32

	// SetJitter sets the sub-pixel projection offset in pixels. It takes effect on
	// the next Update.
	SetJitter(x, y float32)

	// ImmCameraIdx returns the immediate-geometry camera slot, 0 for the default slot.
	ImmCameraIdx() int

	// SetImmCameraIdx sets the immediate-geometry camera slot.
	SetImmCameraIdx(idx int)

	// Fov returns the vertical field of view in radians.
	Fov() float32

	// Near returns the near clipping plane distance.
	//
	// Returns:
	//   - float32: near plane distance
	Near() float32

	// Far returns the far clipping plane distance.
	//
	// Returns:
	//   - float32: far plane distance
	Far() float32

	// SetFov sets the vertical field of view in radians.
	SetFov(fov float32)

	// SetNearFar sets the clipping plane distances.
	SetNearFar(near, far float32)

	// Position returns the world-space eye position.
	Position() [3]float32

	// LookAt places the camera without a controller.
	//
	// Parameters:
	//   - eye: world-space position
	//   - target: world-space look-at point
	LookAt(eye, target [3]float32)

	// ViewMatrix returns the view matrix. Jitter only affects projection, so this
	// equals StableViewMatrix.
	ViewMatrix() common.Mat4

	// ProjectionMatrix returns the jittered projection matrix.
	ProjectionMatrix() common.Mat4

	// ViewProjectionMatrix returns the jittered view-projection matrix.
	ViewProjectionMatrix() common.Mat4

	// StableViewMatrix returns the view matrix.
	StableViewMatrix() common.Mat4

	// StableProjectionMatrix returns the projection matrix without jitter.
	StableProjectionMatrix() common.Mat4

	// StableViewProjectionMatrix returns the view-projection matrix without jitter.
	StableViewProjectionMatrix() common.Mat4

	// PrevStableViewProjectionMatrix returns last frame's stable view-projection matrix.
	PrevStableViewProjectionMatrix() common.Mat4

	// Frustum returns the frustum of the stable view-projection matrix.
	Frustum() common.Frustum

	// Controller returns the attached CameraController, or nil.
	Controller() CameraController

	// SetController attaches a CameraController to the camera.
	SetController(ctrl CameraController)

	// ClusterData returns the camera's cluster data cache.
	//
	// Returns:
	//   - *ClusterData: the cache, never nil
	ClusterData() *ClusterData

	// Update shifts the current stable view-projection into the previous slot and
	// recomputes every matrix. Call once per frame before building render lists.
	Update()
}

var _ Camera = &cameraImpl{}

// NewCamera creates a new Camera with default perspective settings.
//
// Parameters:
//   - options: functional options to configure the camera
//
// Returns:
//   - Camera: the newly created camera
func NewCamera(options ...CameraBuilderOption) Camera {
	c := &cameraImpl{
		mu:           &sync.Mutex{},
		position:     [3]float32{0, 0, 5},
		up:           [3]float32{0, 1, 0},
		fov:          45.0 * (math32.Pi / 180.0),
		near:         0.1,
		far:          100.0,
		viewport:     common.Viewport{Width: 800, Height: 600},
		clearMask:    common.NewAttachmentPoints(common.AttachmentColor0, common.AttachmentDepth),
		ambientColor: common.Color{0.1, 0.1, 0.1, 1},
		clusterData:  &ClusterData{},
	}
	for _, option := range options {
		option(c)
	}
	c.updateMatrices()
	c.prevStableViewProj = c.stableViewProj
	return c
}

func (c *cameraImpl) Viewport() common.Viewport {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.viewport
}

func (c *cameraImpl) SetViewport(vp common.Viewport) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.viewport = vp
	c.updateMatrices()
}

func (c *cameraImpl) ClearMask() common.AttachmentPoints {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.clearMask
}

func (c *cameraImpl) SetClearMask(mask common.AttachmentPoints) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.clearMask = mask
}

func (c *cameraImpl) ClearColors() common.AttachmentColors {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.clearColors
}

func (c *cameraImpl) SetClearColor(point common.AttachmentPoint, color common.Color) {
	if point >= common.AttachmentMax {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.clearColors[point] = color
}

func (c *cameraImpl) RenderTarget() *device.RenderTarget {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.renderTarget
}

func (c *cameraImpl) SetRenderTarget(rt *device.RenderTarget) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.renderTarget = rt
}

func (c *cameraImpl) DrawBuffers() common.AttachmentPoints {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.drawBuffers
}

func (c *cameraImpl) SetDrawBuffers(points common.AttachmentPoints) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.drawBuffers = points
}

func (c *cameraImpl) AmbientColor() common.Color {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.ambientColor
}

func (c *cameraImpl) SetAmbientColor(color common.Color) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.ambientColor = color
}

func (c *cameraImpl) Prepass() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.prepass
}

func (c *cameraImpl) SetPrepass(enabled bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.prepass = enabled
}

func (c *cameraImpl) Jitter() [2]float32 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.jitter
}

func (c *cameraImpl) SetJitter(x, y float32) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.jitter = [2]float32{x, y}
}

func (c *cameraImpl) ImmCameraIdx() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.immCameraIdx
}

func (c *cameraImpl) SetImmCameraIdx(idx int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.immCameraIdx = idx
}

func (c *cameraImpl) Fov() float32 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.fov
}

func (c *cameraImpl) Near() float32 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.near
}

func (c *cameraImpl) Far() float32 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.far
}

func (c *cameraImpl) SetFov(fov float32) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.fov = fov
	c.updateMatrices()
}

func (c *cameraImpl) SetNearFar(near, far float32) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.near = near
	c.far = far
	c.updateMatrices()
}

func (c *cameraImpl) Position() [3]float32 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.position
}

func (c *cameraImpl) LookAt(eye, target [3]float32) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.position = eye
	c.target = target
	c.updateMatrices()
}

func (c *cameraImpl) ViewMatrix() common.Mat4 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.stableView
}

func (c *cameraImpl) ProjectionMatrix() common.Mat4 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.proj
}

func (c *cameraImpl) ViewProjectionMatrix() common.Mat4 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.viewProj
}

func (c *cameraImpl) StableViewMatrix() common.Mat4 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.stableView
}

func (c *cameraImpl) StableProjectionMatrix() common.Mat4 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.stableProj
}

func (c *cameraImpl) StableViewProjectionMatrix() common.Mat4 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.stableViewProj
}

func (c *cameraImpl) PrevStableViewProjectionMatrix() common.Mat4 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.prevStableViewProj
}

func (c *cameraImpl) Frustum() common.Frustum {
	c.mu.Lock()
	defer c.mu.Unlock()
	return common.ExtractFrustum(c.stableViewProj)
}

func (c *cameraImpl) Controller() CameraController {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.controller
}

func (c *cameraImpl) SetController(ctrl CameraController) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.controller = ctrl
}

func (c *cameraImpl) ClusterData() *ClusterData {
	return c.clusterData
}

func (c *cameraImpl) Update() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.prevStableViewProj = c.stableViewProj
	if c.controller != nil {
		c.position = c.controller.Position()
		c.target = c.controller.Target()
	}
	c.updateMatrices()
}

// updateMatrices recalculates the stable and jittered matrices.
// Caller must hold the mutex.
func (c *cameraImpl) updateMatrices() {
	c.stableView = common.LookAt(c.position, c.target, c.up)
	c.stableProj = common.Perspective(c.fov, c.viewport.Aspect(), c.near, c.far)
	c.stableViewProj = common.Mul4(c.stableProj, c.stableView)

	c.proj = c.stableProj
	if c.viewport.Width > 0 && c.viewport.Height > 0 {
		// pixel offset to NDC offset in the third column
		c.proj[8] += 2 * c.jitter[0] / float32(c.viewport.Width)
		c.proj[9] += 2 * c.jitter[1] / float32(c.viewport.Height)
	}
	c.viewProj = common.Mul4(c.proj, c.stableView)
}
