package gbm

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/helixml/scanout/api/pkg/drm"
)

func newTestDevice(t *testing.T, modifiers bool) (*Device, *MockGEM) {
	ctrl := gomock.NewController(t)
	gem := NewMockGEM(ctrl)

	var modCap uint64
	if modifiers {
		modCap = 1
	}
	gem.EXPECT().GetCap(uint64(drm.CapDumbBuffer)).Return(uint64(1), nil)
	gem.EXPECT().GetCap(uint64(drm.CapAddFB2Modifiers)).Return(modCap, nil)

	dev, err := New(gem)
	require.NoError(t, err)
	assert.Equal(t, modifiers, dev.SupportsModifiers())
	return dev, gem
}

func TestNewRequiresDumbBuffers(t *testing.T) {
	ctrl := gomock.NewController(t)
	gem := NewMockGEM(ctrl)
	gem.EXPECT().GetCap(uint64(drm.CapDumbBuffer)).Return(uint64(0), nil)

	_, err := New(gem)
	require.ErrorIs(t, err, ErrNoDumbBuffers)
}

func TestImportFDModifierMultiPlane(t *testing.T) {
	dev, gem := newTestDevice(t, true)

	gem.EXPECT().PrimeFDToHandle(10).Return(uint32(100), nil).Times(1)
	gem.EXPECT().PrimeFDToHandle(11).Return(uint32(100), nil).Times(1)

	bo, err := dev.ImportFDModifier(DMABufImport{
		Width:    1920,
		Height:   1080,
		Format:   drm.FormatNV12,
		Modifier: 0x0100000000000001,
		Planes: []DMABufPlane{
			{FD: 10, Stride: 1920},
			{FD: 11, Stride: 1920, Offset: 1920 * 1080},
		},
	})
	require.NoError(t, err)
	assert.Equal(t, 2, bo.PlaneCount())
	assert.Equal(t, uint64(0x0100000000000001), bo.Modifier())
	assert.Equal(t, uint32(1920*1080), bo.Offset(1))

	// Both planes share one GEM handle, which must be closed exactly once.
	gem.EXPECT().GemClose(uint32(100)).Return(nil).Times(1)
	require.NoError(t, bo.Destroy())
	require.NoError(t, bo.Destroy())
}

func TestImportFDModifierUnsupported(t *testing.T) {
	dev, _ := newTestDevice(t, false)

	_, err := dev.ImportFDModifier(DMABufImport{
		Width: 64, Height: 64, Format: drm.FormatXRGB8888, Modifier: 0x0100000000000002,
		Planes: []DMABufPlane{{FD: 3, Stride: 256}},
	})
	require.ErrorIs(t, err, ErrModifiersUnsupported)
}

func TestImportFDModifierPartialFailureReleasesHandles(t *testing.T) {
	dev, gem := newTestDevice(t, true)

	gem.EXPECT().PrimeFDToHandle(10).Return(uint32(7), nil)
	gem.EXPECT().PrimeFDToHandle(11).Return(uint32(0), errors.New("EINVAL"))
	gem.EXPECT().GemClose(uint32(7)).Return(nil).Times(1)

	_, err := dev.ImportFDModifier(DMABufImport{
		Width: 64, Height: 64, Format: drm.FormatXRGB8888, Modifier: drm.ModifierLinear,
		Planes: []DMABufPlane{{FD: 10}, {FD: 11}},
	})
	require.Error(t, err)
}

func TestImportFDUsesFirstPlane(t *testing.T) {
	dev, gem := newTestDevice(t, false)

	gem.EXPECT().PrimeFDToHandle(10).Return(uint32(8), nil).Times(1)

	bo, err := dev.ImportFD(DMABufImport{
		Width: 64, Height: 64, Format: drm.FormatXRGB8888, Modifier: drm.ModifierLinear,
		Planes: []DMABufPlane{{FD: 10, Stride: 256}, {FD: 11}},
	})
	require.NoError(t, err)
	assert.Equal(t, 1, bo.PlaneCount())
	assert.Equal(t, drm.ModifierInvalid, bo.Modifier())

	_, err = dev.ImportFD(DMABufImport{})
	require.ErrorIs(t, err, ErrInvalidPlanes)
}

func TestImportOpaque(t *testing.T) {
	dev, gem := newTestDevice(t, false)

	gem.EXPECT().GemOpen(uint32(5)).Return(uint32(9), uint64(4096), nil)

	bo, err := dev.ImportOpaque(OpaqueBuffer{Name: 5, Width: 32, Height: 32, Stride: 128, Format: drm.FormatARGB8888})
	require.NoError(t, err)
	assert.Equal(t, uint32(9), bo.Handle(0))
	assert.Equal(t, uint32(128), bo.Stride(0))

	_, err = bo.Map()
	require.ErrorIs(t, err, ErrNotMappable)
}

func TestCreateScanoutMapAndDestroy(t *testing.T) {
	dev, gem := newTestDevice(t, false)

	mem := make([]byte, 64*4*64)
	gem.EXPECT().CreateDumb(uint32(64), uint32(64), uint32(32)).Return(drm.DumbBuffer{Handle: 3, Pitch: 256, Size: uint64(len(mem))}, nil)
	gem.EXPECT().MapDumb(uint32(3)).Return(uint64(0x1000), nil).Times(1)
	gem.EXPECT().Mmap(uint64(0x1000), len(mem)).Return(mem, nil).Times(1)

	bo, err := dev.CreateScanout(64, 64, drm.FormatARGB8888)
	require.NoError(t, err)
	assert.Equal(t, uint32(256), bo.Stride(0))
	assert.Equal(t, drm.ModifierLinear, bo.Modifier())

	data, err := bo.Map()
	require.NoError(t, err)
	assert.Len(t, data, len(mem))
	_, err = bo.Map()
	require.NoError(t, err)

	gem.EXPECT().Munmap(mem).Return(nil).Times(1)
	gem.EXPECT().DestroyDumb(uint32(3)).Return(nil).Times(1)
	require.NoError(t, bo.Destroy())
	require.NoError(t, bo.Destroy())

	_, err = bo.Map()
	require.ErrorIs(t, err, ErrDestroyed)
}

func TestCreateScanoutRejectsPlanarFormat(t *testing.T) {
	dev, _ := newTestDevice(t, false)

	_, err := dev.CreateScanout(64, 64, drm.FormatNV12)
	require.ErrorIs(t, err, ErrUnsupportedFormat)
}

func TestExportFD(t *testing.T) {
	dev, gem := newTestDevice(t, false)

	gem.EXPECT().CreateDumb(uint32(16), uint32(16), uint32(32)).Return(drm.DumbBuffer{Handle: 4, Pitch: 64, Size: 1024}, nil)
	gem.EXPECT().PrimeHandleToFD(uint32(4)).Return(42, nil)

	bo, err := dev.CreateScanout(16, 16, drm.FormatXRGB8888)
	require.NoError(t, err)
	fd, err := dev.ExportFD(bo)
	require.NoError(t, err)
	assert.Equal(t, 42, fd)
}
