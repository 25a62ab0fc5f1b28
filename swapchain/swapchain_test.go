package swapchain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vexrender/core/driver"
	"github.com/vexrender/core/internal/drivermock"
)

type fakeSurface struct{ w, h int }

func (f fakeSurface) Extent() (int, int) { return f.w, f.h }

func TestNewRequiresPresenter(t *testing.T) {
	gpu := drivermock.New()
	c, err := New(gpu, fakeSurface{800, 600}, 2)
	require.NoError(t, err)
	require.NotNil(t, c)
	assert.Equal(t, driver.BGRA8sRGB, c.Format())
	assert.Len(t, c.Views(), 3) // framesInFlight + 1
}

func TestAcquirePresentRoundTrip(t *testing.T) {
	gpu := drivermock.New()
	c, err := New(gpu, fakeSurface{800, 600}, 2)
	require.NoError(t, err)

	cmd, err := gpu.NewCmdBuffer()
	require.NoError(t, err)

	idx, view, err := c.Acquire(cmd)
	require.NoError(t, err)
	assert.GreaterOrEqual(t, idx, 0)
	assert.NotNil(t, view)

	require.NoError(t, c.Present(idx, cmd))
}

func TestAcquireRecreatesOnOutOfDate(t *testing.T) {
	gpu := drivermock.New()
	c, err := New(gpu, fakeSurface{800, 600}, 2)
	require.NoError(t, err)

	mocked, ok := c.sc.(interface{ SetOutOfDate() })
	require.True(t, ok)
	mocked.SetOutOfDate()

	cmd, err := gpu.NewCmdBuffer()
	require.NoError(t, err)

	idx, view, err := c.Acquire(cmd)
	require.NoError(t, err, "Acquire must transparently recreate and retry")
	assert.GreaterOrEqual(t, idx, 0)
	assert.NotNil(t, view)
}

func TestNewDefaultsNonPositiveFramesInFlight(t *testing.T) {
	gpu := drivermock.New()
	c, err := New(gpu, fakeSurface{800, 600}, 0)
	require.NoError(t, err)
	assert.Len(t, c.Views(), 2) // clamped to 1 + 1
}
