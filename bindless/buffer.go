// Package bindless implements the Bindless Resource Manager: the
// owner of every GPU-visible resource addressable from shaders via a
// stable 32-bit index, plus the four buffer variants the render core
// needs depending on access pattern.
package bindless

import (
	"errors"
	"fmt"

	"github.com/vexrender/core/driver"
)

const bufPrefix = "bindless: "

func newBufErr(reason string) error { return errors.New(bufPrefix + reason) }

// ErrOutOfDeviceMemory is returned by allocations that fail on the GPU.
var ErrOutOfDeviceMemory = newBufErr("out of device memory")

// gpu is the package-level driver access point: one GPU per process,
// set once at renderer construction.
var gpu driver.GPU

// Bind sets the driver.GPU this package allocates resources from. It
// must be called before any other function in this package.
func Bind(g driver.GPU) { gpu = g }

// ImmutableBuffer is staged once via a transient staging buffer and a
// one-shot copy command; device-local and read-only after upload.
type ImmutableBuffer struct {
	buf driver.Buffer
}

// NewImmutableBuffer stages data into a new device-local buffer.
func NewImmutableBuffer(data []byte, usg driver.Usage) (*ImmutableBuffer, error) {
	staging, err := gpu.NewBuffer(int64(len(data)), true, driver.UCopySrc)
	if err != nil {
		return nil, fmt.Errorf("%sstaging buffer: %w", bufPrefix, err)
	}
	defer staging.Destroy()
	copy(staging.Bytes(), data)

	dst, err := gpu.NewBuffer(int64(len(data)), false, usg|driver.UCopyDst)
	if err != nil {
		return nil, fmt.Errorf("%sdevice buffer: %w", bufPrefix, err)
	}

	cb, err := gpu.NewCmdBuffer()
	if err != nil {
		dst.Destroy()
		return nil, err
	}
	defer cb.Destroy()
	if err := cb.Begin(); err != nil {
		dst.Destroy()
		return nil, err
	}
	cb.BeginBlit(false)
	cb.CopyBuffer(&driver.BufferCopy{From: staging, To: dst, Size: int64(len(data))})
	cb.EndBlit()
	if err := cb.End(); err != nil {
		dst.Destroy()
		return nil, err
	}
	done := make(chan error, 1)
	gpu.Commit([]driver.CmdBuffer{cb}, done)
	if err := <-done; err != nil {
		dst.Destroy()
		return nil, err
	}
	return &ImmutableBuffer{buf: dst}, nil
}

func (b *ImmutableBuffer) Buffer() driver.Buffer { return b.buf }
func (b *ImmutableBuffer) Destroy() {
	if b == nil {
		return
	}
	b.buf.Destroy()
}

// MutableBuffer is host-visible coherent and written directly each
// frame: small control buffers such as a single frame's indirect draws
// and draw counts.
type MutableBuffer struct {
	buf driver.Buffer
}

func NewMutableBuffer(size int64, usg driver.Usage) (*MutableBuffer, error) {
	buf, err := gpu.NewBuffer(size, true, usg)
	if err != nil {
		return nil, fmt.Errorf("%s%w", bufPrefix, ErrOutOfDeviceMemory)
	}
	return &MutableBuffer{buf: buf}, nil
}

func (b *MutableBuffer) Buffer() driver.Buffer { return b.buf }
func (b *MutableBuffer) Bytes() []byte         { return b.buf.Bytes() }
func (b *MutableBuffer) Destroy() {
	if b == nil {
		return
	}
	b.buf.Destroy()
}

// PerFrameBuffer holds FIF copies of a MutableBuffer, one per
// frame-in-flight, so frame N writes copy N without racing frame N-1's
// read of copy N-1.
type PerFrameBuffer struct {
	copies []*MutableBuffer
}

func NewPerFrameBuffer(fif int, size int64, usg driver.Usage) (*PerFrameBuffer, error) {
	p := &PerFrameBuffer{copies: make([]*MutableBuffer, fif)}
	for i := range p.copies {
		b, err := NewMutableBuffer(size, usg)
		if err != nil {
			p.Destroy()
			return nil, err
		}
		p.copies[i] = b
	}
	return p, nil
}

// At returns the physical copy for frameIndex, resolving
// (frameIndex+offset) mod FIF.
func (p *PerFrameBuffer) At(frameIndex, offset int) *MutableBuffer {
	n := len(p.copies)
	i := ((frameIndex+offset)%n + n) % n
	return p.copies[i]
}

func (p *PerFrameBuffer) Destroy() {
	if p == nil {
		return
	}
	for _, b := range p.copies {
		if b != nil {
			b.Destroy()
		}
	}
}

// BindlessBuffer is a single device-local buffer of fixed capacity, with
// a persistent host mirror the CPU writes through and a staging upload
// flushed each frame: nodes, meshes, materials, lights, world
// matrices, bones, sprites all use this variant.
type BindlessBuffer struct {
	buf    driver.Buffer
	mirror []byte
	stride int
}

// NewBindlessBuffer creates a bindless storage buffer able to hold
// capacity elements of the given stride.
func NewBindlessBuffer(capacity, stride int, usg driver.Usage) (*BindlessBuffer, error) {
	buf, err := gpu.NewBuffer(int64(capacity*stride), false, usg|driver.UCopyDst)
	if err != nil {
		return nil, fmt.Errorf("%s%w", bufPrefix, ErrOutOfDeviceMemory)
	}
	return &BindlessBuffer{buf: buf, mirror: make([]byte, capacity*stride), stride: stride}, nil
}

// Write stores element bytes at the given element offset in the host
// mirror; Flush later stages the whole mirror to the device buffer.
func (b *BindlessBuffer) Write(elem int, data []byte) error {
	off := elem * b.stride
	if off+len(data) > len(b.mirror) {
		return newBufErr("write out of range")
	}
	copy(b.mirror[off:], data)
	return nil
}

// Flush uploads the host mirror to the device buffer via a one-shot
// staging command, mirroring ImmutableBuffer's upload path. Called once
// per frame before command buffers referencing this data are submitted.
func (b *BindlessBuffer) Flush() error {
	staging, err := gpu.NewBuffer(int64(len(b.mirror)), true, driver.UCopySrc)
	if err != nil {
		return err
	}
	defer staging.Destroy()
	copy(staging.Bytes(), b.mirror)

	cb, err := gpu.NewCmdBuffer()
	if err != nil {
		return err
	}
	defer cb.Destroy()
	if err := cb.Begin(); err != nil {
		return err
	}
	cb.BeginBlit(false)
	cb.CopyBuffer(&driver.BufferCopy{From: staging, To: b.buf, Size: int64(len(b.mirror))})
	cb.EndBlit()
	if err := cb.End(); err != nil {
		return err
	}
	done := make(chan error, 1)
	gpu.Commit([]driver.CmdBuffer{cb}, done)
	return <-done
}

func (b *BindlessBuffer) Buffer() driver.Buffer { return b.buf }
func (b *BindlessBuffer) Destroy() {
	if b == nil {
		return
	}
	b.buf.Destroy()
}
