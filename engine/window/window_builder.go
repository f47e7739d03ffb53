package window

// WindowBuilderOption is a functional option for configuring a window before creation.
type WindowBuilderOption func(cfg *config)

// WithTitle sets the window title displayed in the title bar.
//
// Parameters:
//   - title: the window title text
//
// Returns:
//   - WindowBuilderOption: option function to apply
func WithTitle(title string) WindowBuilderOption {
	return func(cfg *config) {
		cfg.title = title
	}
}

// WithSize sets the requested client area size in screen coordinates.
//
// Parameters:
//   - width: width of the client area
//   - height: height of the client area
//
// Returns:
//   - WindowBuilderOption: option function to apply
func WithSize(width, height int) WindowBuilderOption {
	return func(cfg *config) {
		cfg.width, cfg.height = width, height
	}
}

// WithSizeLimits bounds interactive resizing. Pass a negative value to leave a bound
// unset.
//
// Parameters:
//   - minWidth, minHeight: smallest size
//   - maxWidth, maxHeight: largest size
//
// Returns:
//   - WindowBuilderOption: option function to apply
func WithSizeLimits(minWidth, minHeight, maxWidth, maxHeight int) WindowBuilderOption {
	return func(cfg *config) {
		cfg.minWidth, cfg.minHeight = minWidth, minHeight
		cfg.maxWidth, cfg.maxHeight = maxWidth, maxHeight
	}
}

// WithVSync sets whether buffer swaps wait for the vertical blank. Enabled by default.
//
// Parameters:
//   - enabled: true for a swap interval of one
//
// Returns:
//   - WindowBuilderOption: option function to apply
func WithVSync(enabled bool) WindowBuilderOption {
	return func(cfg *config) {
		cfg.vsync = enabled
	}
}

// WithCloseOnEscape sets whether pressing Escape closes the window. Enabled by default.
func WithCloseOnEscape(enabled bool) WindowBuilderOption {
	return func(cfg *config) {
		cfg.closeOnEscape = enabled
	}
}

// WithSamples requests a multisampled default framebuffer.
//
// Parameters:
//   - samples: samples per pixel, 0 to disable
//
// Returns:
//   - WindowBuilderOption: option function to apply
func WithSamples(samples int) WindowBuilderOption {
	return func(cfg *config) {
		cfg.samples = samples
	}
}
