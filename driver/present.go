package driver

import "errors"

var (
	// ErrCannotPresent means the driver/device does not support
	// presentation.
	ErrCannotPresent = errors.New("driver: presentation not supported")
	// ErrSwapchain means the swapchain is out of date and must be
	// recreated.
	ErrSwapchain = errors.New("driver: swapchain out of date")
	// ErrNoBackbuffer means every backbuffer is currently acquired.
	ErrNoBackbuffer = errors.New("driver: all backbuffers in use")
)

// SurfaceProvider is the external window/surface collaborator:
// out of scope for this module, referenced only by this interface.
type SurfaceProvider interface {
	// Extent returns the current surface size in pixels.
	Extent() (width, height int)
}

// Presenter is implemented by a GPU capable of presentation.
type Presenter interface {
	// NewSwapchain creates a Swapchain for the given surface. Only one
	// swapchain may be associated with a SurfaceProvider at a time.
	NewSwapchain(surf SurfaceProvider, imageCount int) (Swapchain, error)
}

// Swapchain is an n-buffered presentation target: Next to acquire,
// render, Present to queue presentation, both only taking effect on
// the next GPU.Commit; Recreate in response to ErrSwapchain.
type Swapchain interface {
	Destroyer

	// Views returns the current image views; stable until Destroy or
	// Recreate.
	Views() []ImageView

	// Next returns the index of the next writable image. cb must be
	// the first command buffer to access it.
	Next(cb CmdBuffer) (int, error)

	// Present queues image index for presentation. cb must be the
	// last command buffer to write it.
	Present(index int, cb CmdBuffer) error

	// Recreate rebuilds the swapchain in response to ErrSwapchain.
	Recreate() error

	// Format returns the swapchain's selected pixel format.
	Format() PixelFmt
}
