// Package driver defines the explicit, Vulkan-class graphics API that the
// render core is built on. It is a thin abstraction over command buffers,
// pipelines and GPU-resident resources; no concrete backend lives in this
// module (see DESIGN.md) — client code registers a Driver from an init
// function, the same way platform backends register themselves against
// this interface.
package driver

import (
	"errors"
	"log"
	"sync"
)

// Driver loads and unloads an underlying GPU implementation.
type Driver interface {
	// Open initializes the driver. Further calls with the same receiver
	// must return the same GPU instance. Not safe for parallel use.
	Open() (GPU, error)

	// Name returns the driver's name. Must not cause it to be opened.
	Name() string

	// Close deinitializes the driver. A no-op if not open.
	Close()
}

var (
	ErrNotInstalled   = errors.New("driver: missing required library")
	ErrNoDevice       = errors.New("driver: no suitable device found")
	ErrNoHostMemory   = errors.New("driver: out of host memory")
	ErrNoDeviceMemory = errors.New("driver: out of device memory")
	ErrFatal          = errors.New("driver: fatal error")
	ErrDeviceLost     = errors.New("driver: device lost")
)

// Drivers returns the registered Drivers.
func Drivers() []Driver {
	mu.Lock()
	defer mu.Unlock()
	drv := make([]Driver, len(drivers))
	copy(drv, drivers)
	return drv
}

// Register registers a Driver. Implementations call this exactly once
// from an init function.
func Register(drv Driver) {
	mu.Lock()
	defer mu.Unlock()
	for i := range drivers {
		if drivers[i].Name() == drv.Name() {
			drivers[i] = drv
			log.Printf("[!] driver %q replaced", drv.Name())
			return
		}
	}
	drivers = append(drivers, drv)
	log.Printf("driver %q registered", drv.Name())
}

var (
	mu      sync.Mutex
	drivers = make([]Driver, 0, 1)
)
