// Package producer renders a test pattern and feeds it to a renderer through its
// Exportable, the way a compositor client would.
package producer

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/sys/unix"

	"github.com/helixml/scanout/api/pkg/drm"
	"github.com/helixml/scanout/api/pkg/gbm"
	"github.com/helixml/scanout/api/pkg/renderer"
	"github.com/helixml/scanout/api/pkg/shm"
)

//go:generate mockgen -source $GOFILE -destination producer_mocks.go -package $GOPACKAGE

type Kind string

const (
	KindSHM    Kind = "shm"
	KindDMABuf Kind = "dmabuf"
)

func ParseKind(s string) (Kind, error) {
	switch Kind(s) {
	case KindSHM, "":
		return KindSHM, nil
	case KindDMABuf:
		return KindDMABuf, nil
	default:
		return "", fmt.Errorf("unknown producer kind %q", s)
	}
}

const (
	DefaultBuffers      = 3
	DefaultFrameTimeout = time.Second
)

// Sink is where frames go, normally a *renderer.Exportable.
type Sink interface {
	SetProducer(p renderer.Producer) error
	ExportDMABuf(buf *renderer.DMABufBuffer) error
	ExportSHM(buf *renderer.SHMExportedBuffer) error
	DestroyResource(id renderer.ResourceID) error
}

// Allocator provides exportable scan-out buffers for the dma-buf producer. It
// must not share GEM handles with the renderer's buffer manager.
type Allocator interface {
	CreateScanout(width, height, format uint32) (gbm.BO, error)
	ExportFD(bo gbm.BO) (int, error)
}

type Options struct {
	Kind    Kind
	Buffers int
	// Frames stops Run after this many frames; zero runs until the context ends.
	Frames       int
	FrameTimeout time.Duration
}

type slot struct {
	id     renderer.ResourceID
	pixels []byte
	stride int
	submit func() error
	close  func() error
}

// Producer keeps one frame in flight: the next frame is rendered after the
// previous one completed, into a buffer the renderer has released.
type Producer struct {
	sink    Sink
	opts    Options
	pattern *Pattern
	slots   []*slot
	index   map[renderer.ResourceID]int
	pool    *shm.Pool

	free   chan int
	frames chan struct{}

	submitted int
	completed int
}

func New(sink Sink, width, height uint32, opts Options, alloc Allocator) (*Producer, error) {
	if opts.Buffers <= 0 {
		opts.Buffers = DefaultBuffers
	}
	if opts.FrameTimeout <= 0 {
		opts.FrameTimeout = DefaultFrameTimeout
	}
	if opts.Kind == "" {
		opts.Kind = KindSHM
	}

	p := &Producer{
		sink:    sink,
		opts:    opts,
		pattern: NewPattern(int(width), int(height)),
		index:   make(map[renderer.ResourceID]int, opts.Buffers),
		free:    make(chan int, opts.Buffers),
		frames:  make(chan struct{}, 1),
	}

	var err error
	switch opts.Kind {
	case KindSHM:
		err = p.allocateSHM(width, height)
	case KindDMABuf:
		if alloc == nil {
			return nil, fmt.Errorf("dma-buf producer needs an allocator")
		}
		err = p.allocateDMABuf(alloc, width, height)
	default:
		return nil, fmt.Errorf("unknown producer kind %q", opts.Kind)
	}
	if err != nil {
		p.closeSlots()
		return nil, err
	}

	for i, s := range p.slots {
		p.index[s.id] = i
		p.free <- i
	}
	log.Info().
		Str("kind", string(opts.Kind)).
		Int("buffers", len(p.slots)).
		Uint32("width", width).
		Uint32("height", height).
		Msg("test pattern producer ready")
	return p, nil
}

func (p *Producer) allocateSHM(width, height uint32) error {
	stride := int(width) * 4
	size := (stride*int(height) + 63) &^ 63
	pool, err := shm.NewPool("drm-presenter-pattern", size*p.opts.Buffers)
	if err != nil {
		return err
	}
	p.pool = pool

	for i := 0; i < p.opts.Buffers; i++ {
		buf, err := pool.Allocate(int(width), int(height), stride, shm.FormatXRGB8888)
		if err != nil {
			return err
		}
		id := renderer.ResourceID(i + 1)
		p.slots = append(p.slots, &slot{
			id:     id,
			pixels: buf.Data(),
			stride: stride,
			submit: func() error {
				// Each export is a new handle, released on its own.
				return p.sink.ExportSHM(&renderer.SHMExportedBuffer{Resource: id, Buffer: buf})
			},
			close: func() error { return nil },
		})
	}
	return nil
}

func (p *Producer) allocateDMABuf(alloc Allocator, width, height uint32) error {
	for i := 0; i < p.opts.Buffers; i++ {
		bo, err := alloc.CreateScanout(width, height, drm.FormatXRGB8888)
		if err != nil {
			return err
		}
		pixels, err := bo.Map()
		if err != nil {
			_ = bo.Destroy()
			return err
		}
		fd, err := alloc.ExportFD(bo)
		if err != nil {
			_ = bo.Destroy()
			return err
		}

		buf := &renderer.DMABufBuffer{
			Resource: renderer.ResourceID(i + 1),
			Width:    width,
			Height:   height,
			Format:   drm.FormatXRGB8888,
			Modifier: drm.ModifierLinear,
			Planes:   []gbm.DMABufPlane{{FD: fd, Stride: bo.Stride(0), Offset: bo.Offset(0)}},
		}
		p.slots = append(p.slots, &slot{
			id:     buf.Resource,
			pixels: pixels,
			stride: int(bo.Stride(0)),
			submit: func() error { return p.sink.ExportDMABuf(buf) },
			close: func() error {
				return errors.Join(unix.Close(fd), bo.Destroy())
			},
		})
	}
	return nil
}

// Run submits frames until the context ends or the configured frame count is
// reached.
func (p *Producer) Run(ctx context.Context) error {
	if err := p.sink.SetProducer(p); err != nil {
		return err
	}

	for n := 0; p.opts.Frames == 0 || n < p.opts.Frames; n++ {
		var s *slot
		select {
		case <-ctx.Done():
			return nil
		case i := <-p.free:
			s = p.slots[i]
		}

		p.pattern.Render(n)
		if err := CopyXRGB(s.pixels, s.stride, p.pattern.Image()); err != nil {
			return fmt.Errorf("render frame %d: %w", n, err)
		}
		if err := s.submit(); err != nil {
			return fmt.Errorf("submit frame %d: %w", n, err)
		}
		p.submitted++

		timer := time.NewTimer(p.opts.FrameTimeout)
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil
		case <-p.frames:
			p.completed++
		case <-timer.C:
			// A dropped frame is released without completing.
			log.Warn().Int("frame", n).Stringer("resource", s.id).Msg("frame did not complete in time")
		}
		timer.Stop()
	}
	return nil
}

// Submitted and Completed must only be read after Run has returned.
func (p *Producer) Submitted() int { return p.submitted }
func (p *Producer) Completed() int { return p.completed }

func (p *Producer) ReleaseBuffer(id renderer.ResourceID) {
	p.release(id)
}

func (p *Producer) ReleaseSHMExportedBuffer(buf *renderer.SHMExportedBuffer) {
	p.release(buf.Resource)
}

func (p *Producer) release(id renderer.ResourceID) {
	i, ok := p.index[id]
	if !ok {
		log.Debug().Stringer("resource", id).Msg("release for unknown resource")
		return
	}
	select {
	case p.free <- i:
	default:
		log.Debug().Stringer("resource", id).Msg("duplicate release")
	}
}

func (p *Producer) FrameComplete() {
	select {
	case p.frames <- struct{}{}:
	default:
	}
}

// DestroyResources tells the renderer every buffer is gone. The memory stays
// mapped until Close, which must wait until the sink has processed the calls.
func (p *Producer) DestroyResources() error {
	var errs []error
	for _, s := range p.slots {
		if err := p.sink.DestroyResource(s.id); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Close frees the buffers.
func (p *Producer) Close() error {
	return p.closeSlots()
}

func (p *Producer) closeSlots() error {
	var errs []error
	for _, s := range p.slots {
		errs = append(errs, s.close())
	}
	p.slots = nil
	if p.pool != nil {
		errs = append(errs, p.pool.Close())
		p.pool = nil
	}
	return errors.Join(errs...)
}
