// Package swapchain is a thin collaborator over driver.Presenter and
// driver.Swapchain: it owns the acquire/present cycle for one on-screen
// surface and transparently recreates the swapchain when the driver
// reports it out of date (window resize, surface loss).
package swapchain

import (
	"errors"

	"github.com/vexrender/core/driver"
)

const chainPrefix = "swapchain: "

func newChainErr(reason string) error { return errors.New(chainPrefix + reason) }

// Chain wraps one driver.Swapchain bound to a surface. Format and
// present-mode selection happen inside the driver implementation;
// Chain only drives the Next/Present/Recreate protocol the way
// engine.Onscreen does in the renderer it's modeled on, and exposes
// whatever the driver picked.
type Chain struct {
	pres driver.Presenter
	surf driver.SurfaceProvider
	sc   driver.Swapchain

	imageCount int
}

// New creates a Chain over surf. imageCount should be framesInFlight+1
// so the presentation engine always has one backbuffer beyond what the
// CPU/GPU currently have in flight.
func New(gpu driver.GPU, surf driver.SurfaceProvider, framesInFlight int) (*Chain, error) {
	pres, ok := gpu.(driver.Presenter)
	if !ok {
		return nil, newChainErr("GPU does not implement driver.Presenter")
	}
	if framesInFlight <= 0 {
		framesInFlight = 1
	}
	imageCount := framesInFlight + 1
	sc, err := pres.NewSwapchain(surf, imageCount)
	if err != nil {
		return nil, err
	}
	return &Chain{pres: pres, surf: surf, sc: sc, imageCount: imageCount}, nil
}

// Format returns the swapchain's selected pixel format.
func (c *Chain) Format() driver.PixelFmt { return c.sc.Format() }

// Views returns the current backbuffer image views. Stable until the
// next successful Recreate.
func (c *Chain) Views() []driver.ImageView { return c.sc.Views() }

// Acquire returns the index and view of the next writable backbuffer.
// cb must be the first command buffer to touch it. On ErrSwapchain it
// recreates the chain once and retries before giving up.
func (c *Chain) Acquire(cb driver.CmdBuffer) (index int, view driver.ImageView, err error) {
	index, err = c.sc.Next(cb)
	if errors.Is(err, driver.ErrSwapchain) {
		if rerr := c.Recreate(); rerr != nil {
			return 0, nil, rerr
		}
		index, err = c.sc.Next(cb)
	}
	if err != nil {
		return 0, nil, err
	}
	views := c.sc.Views()
	if index < 0 || index >= len(views) {
		return 0, nil, newChainErr("acquired index out of range")
	}
	return index, views[index], nil
}

// Present queues backbuffer index for presentation. cb must be the
// last command buffer to write it. On ErrSwapchain the frame is dropped:
// Present recreates the chain right away and returns Recreate's result.
func (c *Chain) Present(index int, cb driver.CmdBuffer) error {
	err := c.sc.Present(index, cb)
	if errors.Is(err, driver.ErrSwapchain) {
		return c.Recreate()
	}
	return err
}

// Recreate rebuilds the swapchain in place, e.g. after a window resize
// or an ErrSwapchain from Acquire/Present.
func (c *Chain) Recreate() error {
	return c.sc.Recreate()
}

// Destroy releases the underlying driver.Swapchain.
func (c *Chain) Destroy() {
	if c == nil || c.sc == nil {
		return
	}
	c.sc.Destroy()
}
