// Package gbm is a generic buffer manager built directly on the DRM GEM, PRIME and
// dumb-buffer ioctls. It covers what a scan-out pipeline needs from libgbm: importing
// producer buffers as buffer objects and allocating CPU-writable scan-out buffers.
package gbm

import (
	"errors"
	"fmt"

	"github.com/rs/zerolog/log"

	"github.com/helixml/scanout/api/pkg/drm"
)

//go:generate mockgen -source $GOFILE -destination gbm_mocks.go -package $GOPACKAGE

var (
	ErrNoDumbBuffers        = errors.New("device does not support dumb buffers")
	ErrModifiersUnsupported = errors.New("device does not support framebuffer modifiers")
	ErrInvalidPlanes        = errors.New("invalid plane count")
	ErrUnsupportedFormat    = errors.New("unsupported pixel format")
	ErrNotMappable          = errors.New("buffer object is not CPU-mappable")
	ErrDestroyed            = errors.New("buffer object destroyed")
)

const maxPlanes = 4

// GEM is the subset of the kernel interface the buffer manager drives.
type GEM interface {
	GetCap(capability uint64) (uint64, error)
	CreateDumb(width, height, bpp uint32) (drm.DumbBuffer, error)
	MapDumb(handle uint32) (uint64, error)
	Mmap(offset uint64, size int) ([]byte, error)
	Munmap(data []byte) error
	DestroyDumb(handle uint32) error
	PrimeFDToHandle(fd int) (uint32, error)
	PrimeHandleToFD(handle uint32) (int, error)
	GemOpen(name uint32) (handle uint32, size uint64, err error)
	GemClose(handle uint32) error
}

// BO is a GPU buffer object.
type BO interface {
	Width() uint32
	Height() uint32
	Format() uint32
	Modifier() uint64
	PlaneCount() int
	Handle(plane int) uint32
	Stride(plane int) uint32
	Offset(plane int) uint32
	// Map returns a writable view of a scan-out buffer created by CreateScanout.
	Map() ([]byte, error)
	// Destroy releases the kernel handles. Calling it more than once is a no-op.
	Destroy() error
}

// OpaqueBuffer identifies a buffer by its GEM global name plus the metadata the
// producer advertised with it.
type OpaqueBuffer struct {
	Name     uint32
	Width    uint32
	Height   uint32
	Stride   uint32
	Format   uint32
	Modifier uint64
}

type DMABufPlane struct {
	FD     int
	Stride uint32
	Offset uint32
}

// DMABufImport describes a dma-buf backed image of up to four planes sharing one modifier.
type DMABufImport struct {
	Width    uint32
	Height   uint32
	Format   uint32
	Modifier uint64
	Planes   []DMABufPlane
}

// Device allocates and imports buffer objects on one DRM device.
type Device struct {
	gem       GEM
	modifiers bool
}

// New creates a buffer manager. The device must support dumb buffers, which back
// every scan-out allocation.
func New(gem GEM) (*Device, error) {
	dumb, err := gem.GetCap(drm.CapDumbBuffer)
	if err != nil {
		return nil, fmt.Errorf("query dumb buffer support: %w", err)
	}
	if dumb == 0 {
		return nil, ErrNoDumbBuffers
	}

	modifiers, err := gem.GetCap(drm.CapAddFB2Modifiers)
	if err != nil {
		log.Debug().Err(err).Msg("ADDFB2 modifier capability unavailable")
		modifiers = 0
	}

	return &Device{gem: gem, modifiers: modifiers != 0}, nil
}

// SupportsModifiers reports whether the kernel accepts explicit format modifiers.
func (d *Device) SupportsModifiers() bool {
	return d.modifiers
}

func (d *Device) ImportOpaque(buf OpaqueBuffer) (BO, error) {
	handle, _, err := d.gem.GemOpen(buf.Name)
	if err != nil {
		return nil, fmt.Errorf("import opaque buffer %d: %w", buf.Name, err)
	}
	return &bo{
		gem:      d.gem,
		width:    buf.Width,
		height:   buf.Height,
		format:   buf.Format,
		modifier: buf.Modifier,
		planes:   []plane{{handle: handle, stride: buf.Stride}},
	}, nil
}

// ImportFDModifier imports every plane of a dma-buf and keeps the explicit modifier.
func (d *Device) ImportFDModifier(imp DMABufImport) (BO, error) {
	if !d.modifiers && imp.Modifier != drm.ModifierLinear && imp.Modifier != drm.ModifierInvalid {
		return nil, ErrModifiersUnsupported
	}
	return d.importPlanes(imp, imp.Planes, imp.Modifier)
}

// ImportFD imports the first plane only and leaves the layout to the driver.
func (d *Device) ImportFD(imp DMABufImport) (BO, error) {
	if len(imp.Planes) == 0 {
		return nil, ErrInvalidPlanes
	}
	return d.importPlanes(imp, imp.Planes[:1], drm.ModifierInvalid)
}

func (d *Device) importPlanes(imp DMABufImport, planes []DMABufPlane, modifier uint64) (BO, error) {
	if len(planes) == 0 || len(planes) > maxPlanes {
		return nil, fmt.Errorf("%w: %d", ErrInvalidPlanes, len(planes))
	}

	b := &bo{
		gem:      d.gem,
		width:    imp.Width,
		height:   imp.Height,
		format:   imp.Format,
		modifier: modifier,
	}
	for i, p := range planes {
		handle, err := d.gem.PrimeFDToHandle(p.FD)
		if err != nil {
			_ = b.Destroy()
			return nil, fmt.Errorf("import dma-buf plane %d: %w", i, err)
		}
		b.planes = append(b.planes, plane{handle: handle, stride: p.Stride, offset: p.Offset})
	}
	return b, nil
}

// CreateScanout allocates a linear, CPU-writable buffer usable as a framebuffer.
func (d *Device) CreateScanout(width, height, format uint32) (BO, error) {
	bpp := drm.BytesPerPixel(format)
	if bpp == 0 {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, drm.FormatName(format))
	}
	dumb, err := d.gem.CreateDumb(width, height, uint32(bpp*8))
	if err != nil {
		return nil, fmt.Errorf("allocate scan-out buffer: %w", err)
	}
	return &bo{
		gem:      d.gem,
		width:    width,
		height:   height,
		format:   format,
		modifier: drm.ModifierLinear,
		planes:   []plane{{handle: dumb.Handle, stride: dumb.Pitch}},
		dumb:     true,
		size:     dumb.Size,
	}, nil
}

// ExportFD exports the first plane of a buffer object as a dma-buf fd owned by the caller.
func (d *Device) ExportFD(b BO) (int, error) {
	fd, err := d.gem.PrimeHandleToFD(b.Handle(0))
	if err != nil {
		return -1, fmt.Errorf("export buffer object: %w", err)
	}
	return fd, nil
}
