// Package window opens a GLFW window with an OpenGL 4.3 core context and forwards its
// input to engine callbacks.
package window

import (
	"fmt"
	"runtime"

	"github.com/go-gl/glfw/v3.3/glfw"
)

// MouseButton identifies a mouse button.
type MouseButton int

const (
	MouseButtonLeft MouseButton = iota
	MouseButtonRight
	MouseButtonMiddle
)

// Input holds the input callbacks of a window. Nil fields are ignored. Callbacks run on
// the window's thread inside ProcessMessages.
type Input struct {
	// KeyDown receives GLFW key codes for presses and repeats.
	KeyDown func(key int)
	KeyUp   func(key int)
	// Scroll receives the vertical wheel offset, positive away from the user.
	Scroll      func(dy float32)
	MouseButton func(button MouseButton, pressed bool, x, y float32)
	MouseMove   func(x, y float32)
}

// Window provides an OpenGL context and input event handling.
// Every method except the callback setters must be called on the thread that created
// the window.
type Window interface {
	// SetUpdateCallback sets the function called by each ProcessMessages call.
	//
	// Parameters:
	//   - callback: function to call (or nil to disable)
	SetUpdateCallback(callback func())

	// SetResizeCallback sets the function called when the framebuffer is resized.
	//
	// Parameters:
	//   - callback: function receiving the new framebuffer width and height in pixels
	SetResizeCallback(callback func(width, height int))

	// SetInput replaces the input callbacks.
	//
	// Parameters:
	//   - in: the callbacks
	SetInput(in Input)

	// SetTitle changes the title bar text.
	SetTitle(title string)

	// MakeCurrent binds the window's OpenGL context to the calling thread.
	MakeCurrent()

	// SwapBuffers presents the back buffer.
	SwapBuffers()

	// IsRunning returns true until the window is asked to close.
	IsRunning() bool

	// Close destroys the window and terminates GLFW.
	//
	// Returns:
	//   - error: error if the window was already closed
	Close() error

	// ProcessMessages polls pending window events without blocking and calls the update
	// callback.
	//
	// Returns:
	//   - bool: false once the window should close
	ProcessMessages() bool

	// Width returns the framebuffer width in pixels.
	Width() int

	// Height returns the framebuffer height in pixels.
	Height() int
}

// config is the creation-time configuration set by WindowBuilderOptions.
type config struct {
	title               string
	width, height       int
	minWidth, minHeight int
	maxWidth, maxHeight int
	vsync               bool
	closeOnEscape       bool
	samples             int
}

// glfwWindow implements Window.
type glfwWindow struct {
	win *glfw.Window

	width, height int
	closed        bool
	closeOnEscape bool

	onUpdate func()
	onResize func(width, height int)
	input    Input
}

var _ Window = &glfwWindow{}

// NewWindow creates a window with an OpenGL 4.3 core context current on the calling
// thread, which it locks. Applies default values first, then each option in order.
//
// Parameters:
//   - options: functional options to configure the window
//
// Returns:
//   - Window: the window
//   - error: error if GLFW or the context could not be initialized
func NewWindow(options ...WindowBuilderOption) (Window, error) {
	cfg := config{
		title:         "oxy",
		width:         1280,
		height:        720,
		minWidth:      320,
		minHeight:     200,
		maxWidth:      glfw.DontCare,
		maxHeight:     glfw.DontCare,
		vsync:         true,
		closeOnEscape: true,
	}
	for _, opt := range options {
		opt(&cfg)
	}

	runtime.LockOSThread()
	if err := glfw.Init(); err != nil {
		return nil, fmt.Errorf("initialize GLFW: %w", err)
	}

	// Compute shaders and shader storage blocks need 4.3.
	// Reference: https://www.glfw.org/docs/latest/window_guide.html#window_hints_ctx
	glfw.WindowHint(glfw.ClientAPI, glfw.OpenGLAPI)
	glfw.WindowHint(glfw.ContextVersionMajor, 4)
	glfw.WindowHint(glfw.ContextVersionMinor, 3)
	glfw.WindowHint(glfw.OpenGLProfile, glfw.OpenGLCoreProfile)
	glfw.WindowHint(glfw.OpenGLForwardCompatible, glfw.True)
	glfw.WindowHint(glfw.Samples, cfg.samples)

	win, err := glfw.CreateWindow(cfg.width, cfg.height, cfg.title, nil, nil)
	if err != nil {
		glfw.Terminate()
		return nil, fmt.Errorf("create GLFW window: %w", err)
	}
	win.MakeContextCurrent()
	if cfg.vsync {
		glfw.SwapInterval(1)
	} else {
		glfw.SwapInterval(0)
	}
	win.SetSizeLimits(cfg.minWidth, cfg.minHeight, cfg.maxWidth, cfg.maxHeight)

	w := &glfwWindow{win: win, closeOnEscape: cfg.closeOnEscape}
	// framebuffer size differs from the window size on high-DPI displays
	w.width, w.height = win.GetFramebufferSize()
	w.installCallbacks()
	return w, nil
}

// installCallbacks forwards GLFW events to the current callbacks.
// Reference: https://pkg.go.dev/github.com/go-gl/glfw/v3.3/glfw#Window.SetKeyCallback
func (w *glfwWindow) installCallbacks() {
	w.win.SetKeyCallback(func(_ *glfw.Window, key glfw.Key, _ int, action glfw.Action, _ glfw.ModifierKey) {
		if w.closeOnEscape && key == glfw.KeyEscape && action == glfw.Press {
			w.win.SetShouldClose(true)
			return
		}
		switch {
		case action == glfw.Release && w.input.KeyUp != nil:
			w.input.KeyUp(int(key))
		case action != glfw.Release && w.input.KeyDown != nil:
			w.input.KeyDown(int(key))
		}
	})
	w.win.SetScrollCallback(func(_ *glfw.Window, _, yoff float64) {
		if w.input.Scroll != nil {
			w.input.Scroll(float32(yoff))
		}
	})
	w.win.SetMouseButtonCallback(func(_ *glfw.Window, button glfw.MouseButton, action glfw.Action, _ glfw.ModifierKey) {
		if w.input.MouseButton == nil {
			return
		}
		var b MouseButton
		switch button {
		case glfw.MouseButtonLeft:
			b = MouseButtonLeft
		case glfw.MouseButtonRight:
			b = MouseButtonRight
		case glfw.MouseButtonMiddle:
			b = MouseButtonMiddle
		default:
			return
		}
		x, y := w.win.GetCursorPos()
		w.input.MouseButton(b, action == glfw.Press, float32(x), float32(y))
	})
	w.win.SetCursorPosCallback(func(_ *glfw.Window, x, y float64) {
		if w.input.MouseMove != nil {
			w.input.MouseMove(float32(x), float32(y))
		}
	})
	w.win.SetFramebufferSizeCallback(func(_ *glfw.Window, width, height int) {
		w.width, w.height = width, height
		if w.onResize != nil {
			w.onResize(width, height)
		}
	})
}

func (w *glfwWindow) SetUpdateCallback(callback func()) {
	w.onUpdate = callback
}

func (w *glfwWindow) SetResizeCallback(callback func(width, height int)) {
	w.onResize = callback
}

func (w *glfwWindow) SetInput(in Input) {
	w.input = in
}

func (w *glfwWindow) SetTitle(title string) {
	if !w.closed {
		w.win.SetTitle(title)
	}
}

func (w *glfwWindow) MakeCurrent() {
	if !w.closed {
		w.win.MakeContextCurrent()
	}
}

func (w *glfwWindow) SwapBuffers() {
	if !w.closed {
		w.win.SwapBuffers()
	}
}

func (w *glfwWindow) IsRunning() bool {
	return !w.closed && !w.win.ShouldClose()
}

func (w *glfwWindow) Close() error {
	if w.closed {
		return fmt.Errorf("window already closed")
	}
	w.closed = true
	w.win.Destroy()
	glfw.Terminate()
	return nil
}

func (w *glfwWindow) ProcessMessages() bool {
	if w.closed {
		return false
	}
	glfw.PollEvents()
	if !w.IsRunning() {
		return false
	}
	if w.onUpdate != nil {
		w.onUpdate()
	}
	return true
}

func (w *glfwWindow) Width() int {
	return w.width
}

func (w *glfwWindow) Height() int {
	return w.height
}
