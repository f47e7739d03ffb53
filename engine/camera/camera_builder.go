package camera

import (
	"github.com/Carmen-Shannon/oxy-rendergraph/common"
	"github.com/Carmen-Shannon/oxy-rendergraph/engine/device"
)

type CameraBuilderOption func(*cameraImpl)

// WithUp sets the camera's up vector.
//
// Parameters:
//   - up: up vector
//
// Returns:
//   - CameraBuilderOption: a function that sets the camera's up vector
func WithUp(up [3]float32) CameraBuilderOption {
	return func(c *cameraImpl) {
		c.up = up
	}
}

// WithFov sets the camera's field of view in radians.
//
// Parameters:
//   - fov: field of view in radians
//
// Returns:
//   - CameraBuilderOption: a function that sets the camera's field of view
func WithFov(fov float32) CameraBuilderOption {
	return func(c *cameraImpl) {
		c.fov = fov
	}
}

// WithNearFar sets the clipping plane distances.
//
// Parameters:
//   - near: near plane distance
//   - far: far plane distance
//
// Returns:
//   - CameraBuilderOption: a function that sets the clipping planes
func WithNearFar(near, far float32) CameraBuilderOption {
	return func(c *cameraImpl) {
		c.near = near
		c.far = far
	}
}

// WithLookAt places the camera.
//
// Parameters:
//   - eye: world-space position
//   - target: world-space look-at point
//
// Returns:
//   - CameraBuilderOption: a function that sets position and target
func WithLookAt(eye, target [3]float32) CameraBuilderOption {
	return func(c *cameraImpl) {
		c.position = eye
		c.target = target
	}
}

// WithViewport sets the viewport rectangle.
func WithViewport(vp common.Viewport) CameraBuilderOption {
	return func(c *cameraImpl) {
		c.viewport = vp
	}
}

// WithClear sets the clear mask and the clear color used for every color attachment in it.
//
// Parameters:
//   - mask: attachments to clear
//   - color: clear color for color attachments
//
// Returns:
//   - CameraBuilderOption: a function that sets the clear state
func WithClear(mask common.AttachmentPoints, color common.Color) CameraBuilderOption {
	return func(c *cameraImpl) {
		c.clearMask = mask
		for _, p := range mask.Points() {
			if p.IsColor() {
				c.clearColors[p] = color
			}
		}
	}
}

// WithRenderTarget renders the camera into rt instead of the default framebuffer.
func WithRenderTarget(rt *device.RenderTarget) CameraBuilderOption {
	return func(c *cameraImpl) {
		c.renderTarget = rt
	}
}

// WithDrawBuffers routes fragment outputs to the given attachments.
func WithDrawBuffers(points common.AttachmentPoints) CameraBuilderOption {
	return func(c *cameraImpl) {
		c.drawBuffers = points
	}
}

// WithAmbientColor sets the ambient light color.
func WithAmbientColor(color common.Color) CameraBuilderOption {
	return func(c *cameraImpl) {
		c.ambientColor = color
	}
}

// WithPrepass enables the depth/normal pre-pass.
func WithPrepass(enabled bool) CameraBuilderOption {
	return func(c *cameraImpl) {
		c.prepass = enabled
	}
}

// WithController attaches a controller to the camera.
// The camera takes its position and target from the controller after all options are applied.
//
// Parameters:
//   - ctrl: the controller to attach
//
// Returns:
//   - CameraBuilderOption: functional option to set the controller
func WithController(ctrl CameraController) CameraBuilderOption {
	return func(c *cameraImpl) {
		c.controller = ctrl
		c.position = ctrl.Position()
		c.target = ctrl.Target()
	}
}
