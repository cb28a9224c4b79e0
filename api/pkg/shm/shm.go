// Package shm provides memfd-backed shared-memory pools and the buffer descriptors
// producers hand to the presentation pipeline.
package shm

import (
	"fmt"

	"golang.org/x/sys/unix"

	"github.com/helixml/scanout/api/pkg/drm"
)

// Shared-memory pixel formats use the wl_shm numbering: the two mandatory
// formats have small enum values, every other format is its DRM fourcc.
const (
	FormatARGB8888 uint32 = 0
	FormatXRGB8888 uint32 = 1
)

// DRMFormat translates a shared-memory format code to a DRM fourcc.
func DRMFormat(format uint32) uint32 {
	switch format {
	case FormatARGB8888:
		return drm.FormatARGB8888
	case FormatXRGB8888:
		return drm.FormatXRGB8888
	default:
		return format
	}
}

// Descriptor is a read-only view of a shared-memory image.
type Descriptor interface {
	Width() int
	Height() int
	Stride() int
	Format() uint32
	Data() []byte
}

// Pool is a memfd mapping that buffers are carved out of.
type Pool struct {
	fd     int
	size   int
	data   []byte
	offset int
}

func NewPool(name string, size int) (*Pool, error) {
	fd, err := unix.MemfdCreate(name, unix.MFD_CLOEXEC|unix.MFD_ALLOW_SEALING)
	if err != nil {
		return nil, fmt.Errorf("memfd_create: %w", err)
	}
	if err := unix.Ftruncate(fd, int64(size)); err != nil {
		unix.Close(fd)
		return nil, fmt.Errorf("ftruncate shm pool to %d: %w", size, err)
	}
	data, err := unix.Mmap(fd, 0, size, unix.PROT_READ|unix.PROT_WRITE, unix.MAP_SHARED)
	if err != nil {
		unix.Close(fd)
		return nil, fmt.Errorf("mmap shm pool: %w", err)
	}
	return &Pool{fd: fd, size: size, data: data}, nil
}

func (p *Pool) FD() int   { return p.fd }
func (p *Pool) Size() int { return p.size }

// Allocate reserves height*stride bytes, 64-byte aligned.
func (p *Pool) Allocate(width, height, stride int, format uint32) (*Buffer, error) {
	if p.data == nil {
		return nil, fmt.Errorf("shm pool closed")
	}
	if stride < width*4 {
		return nil, fmt.Errorf("stride %d too small for width %d", stride, width)
	}
	size := height * stride
	if p.offset+size > p.size {
		return nil, fmt.Errorf("insufficient space in pool: need %d, have %d", size, p.size-p.offset)
	}

	b := &Buffer{pool: p, offset: p.offset, width: width, height: height, stride: stride, format: format}
	p.offset += size
	p.offset += (64 - p.offset%64) % 64
	return b, nil
}

func (p *Pool) Close() error {
	if p.data != nil {
		if err := unix.Munmap(p.data); err != nil {
			return err
		}
		p.data = nil
	}
	if p.fd >= 0 {
		if err := unix.Close(p.fd); err != nil {
			return err
		}
		p.fd = -1
	}
	return nil
}

// Buffer is one image inside a Pool.
type Buffer struct {
	pool   *Pool
	offset int
	width  int
	height int
	stride int
	format uint32
}

func (b *Buffer) Width() int     { return b.width }
func (b *Buffer) Height() int    { return b.height }
func (b *Buffer) Stride() int    { return b.stride }
func (b *Buffer) Format() uint32 { return b.format }
func (b *Buffer) Offset() int    { return b.offset }

func (b *Buffer) Data() []byte {
	return b.pool.data[b.offset : b.offset+b.height*b.stride]
}

// Memory is a Descriptor over a plain byte slice, for producers that already
// hold their pixels in process memory.
type Memory struct {
	W, H, Pitch int
	Fmt         uint32
	Pixels      []byte
}

func (m *Memory) Width() int     { return m.W }
func (m *Memory) Height() int    { return m.H }
func (m *Memory) Stride() int    { return m.Pitch }
func (m *Memory) Format() uint32 { return m.Fmt }
func (m *Memory) Data() []byte   { return m.Pixels }
