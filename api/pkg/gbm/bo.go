package gbm

import (
	"errors"
	"fmt"
)

type plane struct {
	handle uint32
	stride uint32
	offset uint32
}

type bo struct {
	gem      GEM
	width    uint32
	height   uint32
	format   uint32
	modifier uint64
	planes   []plane

	// dumb buffers are created by us and destroyed with DESTROY_DUMB; imported
	// buffers only hold GEM handles.
	dumb bool
	size uint64

	mapping   []byte
	destroyed bool
}

func (b *bo) Width() uint32    { return b.width }
func (b *bo) Height() uint32   { return b.height }
func (b *bo) Format() uint32   { return b.format }
func (b *bo) Modifier() uint64 { return b.modifier }
func (b *bo) PlaneCount() int  { return len(b.planes) }

func (b *bo) Handle(i int) uint32 {
	if i < 0 || i >= len(b.planes) {
		return 0
	}
	return b.planes[i].handle
}

func (b *bo) Stride(i int) uint32 {
	if i < 0 || i >= len(b.planes) {
		return 0
	}
	return b.planes[i].stride
}

func (b *bo) Offset(i int) uint32 {
	if i < 0 || i >= len(b.planes) {
		return 0
	}
	return b.planes[i].offset
}

func (b *bo) Map() ([]byte, error) {
	if b.destroyed {
		return nil, ErrDestroyed
	}
	if !b.dumb {
		return nil, ErrNotMappable
	}
	if b.mapping != nil {
		return b.mapping, nil
	}
	offset, err := b.gem.MapDumb(b.planes[0].handle)
	if err != nil {
		return nil, err
	}
	data, err := b.gem.Mmap(offset, int(b.size))
	if err != nil {
		return nil, err
	}
	b.mapping = data
	return data, nil
}

func (b *bo) Destroy() error {
	if b.destroyed {
		return nil
	}
	b.destroyed = true

	var errs []error
	if b.mapping != nil {
		errs = append(errs, b.gem.Munmap(b.mapping))
		b.mapping = nil
	}

	if b.dumb {
		errs = append(errs, b.gem.DestroyDumb(b.planes[0].handle))
		return errors.Join(errs...)
	}

	// Planes of one dma-buf resolve to the same GEM handle; close each once.
	closed := make(map[uint32]struct{}, len(b.planes))
	for _, p := range b.planes {
		if _, ok := closed[p.handle]; ok {
			continue
		}
		closed[p.handle] = struct{}{}
		if err := b.gem.GemClose(p.handle); err != nil {
			errs = append(errs, fmt.Errorf("close handle %d: %w", p.handle, err))
		}
	}
	return errors.Join(errs...)
}
