package bindless

import (
	"fmt"

	"github.com/vexrender/core/driver"
	"github.com/vexrender/core/internal/bitm"
	"github.com/vexrender/core/internal/pool"
)

// indexSentinel is the reserved "absent" bindless index.
const indexSentinel = 0

type textureEntry struct {
	img    driver.Image
	view   driver.ImageView
	extent driver.Dim3D
	format driver.PixelFmt
	levels int
	index  uint32
}

// TexturePool manages one kind of bindless texture (2D or Cube): it
// allocates the driver.Image/View pair and recycles a stable 32-bit
// bindless index on free.
type TexturePool struct {
	viewType driver.ViewType
	cube     bool
	handles  *pool.Pool[textureEntry]
	indices  bitm.Bitmap[uint32]
}

func newTexturePool(vt driver.ViewType, cube bool) *TexturePool {
	p := &TexturePool{viewType: vt, cube: cube, handles: pool.New[textureEntry]()}
	p.indices.Grow(1)
	p.indices.Set(indexSentinel) // index 0 reserved
	return p
}

// NewImage2DPool creates the bindless pool for 2D images (render
// targets, material textures, shadow 2D maps, depth pyramid mips).
func NewImage2DPool() *TexturePool { return newTexturePool(driver.IView2D, false) }

// NewImageCubePool creates the bindless pool for cube images
// (environment map, point-light cube shadow maps).
func NewImageCubePool() *TexturePool { return newTexturePool(driver.IViewCube, true) }

func (p *TexturePool) allocIndex() uint32 {
	idx, ok := p.indices.Search()
	if !ok {
		idx = p.indices.Grow(1)
	}
	p.indices.Set(idx)
	return uint32(idx)
}

// Allocate creates a new image of the given extent/format/usage and
// returns both its generation-checked Handle and its bindless index.
// genMips controls whether levels > 1 are requested.
func (p *TexturePool) Allocate(extent driver.Dim3D, format driver.PixelFmt, usg driver.Usage, genMips bool) (pool.Handle, uint32, error) {
	levels := 1
	if genMips {
		levels = mipLevelsFor(extent)
	}
	layers := 1
	if p.cube {
		layers = 6
	}
	img, err := gpu.NewImage(format, extent, layers, levels, 1, usg)
	if err != nil {
		return pool.Nil, 0, fmt.Errorf("%s%w", bufPrefix, ErrOutOfDeviceMemory)
	}
	view, err := img.NewView(p.viewType, 0, layers, 0, levels)
	if err != nil {
		img.Destroy()
		return pool.Nil, 0, err
	}
	idx := p.allocIndex()
	h := p.handles.Alloc(textureEntry{img: img, view: view, extent: extent, format: format, levels: levels, index: idx})
	return h, idx, nil
}

// Free destroys the GPU image/view and recycles its bindless index.
// The caller is responsible for ensuring no frame-in-flight still
// references the resource.
func (p *TexturePool) Free(h pool.Handle) {
	e, ok := p.handles.Get(h)
	if !ok {
		return
	}
	e.view.Destroy()
	e.img.Destroy()
	p.indices.Unset(int(e.index))
	p.handles.Free(h)
}

// View returns the sampled view for h, used to populate the variable-
// count descriptor array.
func (p *TexturePool) View(h pool.Handle) (driver.ImageView, bool) {
	e, ok := p.handles.Get(h)
	if !ok {
		return nil, false
	}
	return e.view, true
}

// Index returns h's current bindless index, or indexSentinel if h is
// stale.
func (p *TexturePool) Index(h pool.Handle) uint32 {
	e, ok := p.handles.Get(h)
	if !ok {
		return indexSentinel
	}
	return e.index
}

// Destroy frees every image still allocated in the pool.
func (p *TexturePool) Destroy() {
	if p == nil {
		return
	}
	var live []pool.Handle
	p.handles.Each(func(h pool.Handle, _ *textureEntry) { live = append(live, h) })
	for _, h := range live {
		p.Free(h)
	}
}

func mipLevelsFor(e driver.Dim3D) int {
	m := e.Width
	if e.Height > m {
		m = e.Height
	}
	n := 1
	for m > 1 {
		m /= 2
		n++
	}
	return n
}
