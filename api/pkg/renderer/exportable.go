package renderer

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
)

var ErrExportableExists = errors.New("exportable already created")

// exportSink is the renderer side of an Exportable. Its methods run on the loop.
type exportSink interface {
	setProducer(p Producer)
	present(buf ExportedBuffer)
	destroyResource(id ResourceID)
}

// Exportable is the producer's handle on a renderer. Its methods may be called
// from any goroutine; the work is carried out on the event loop.
type Exportable struct {
	id     uuid.UUID
	width  uint32
	height uint32
	loop   Loop
	sink   exportSink
}

func newExportable(loop Loop, sink exportSink, width, height uint32) *Exportable {
	return &Exportable{
		id:     uuid.New(),
		width:  width,
		height: height,
		loop:   loop,
		sink:   sink,
	}
}

func (e *Exportable) ID() uuid.UUID { return e.id }

// Size is the frame size the producer should render at.
func (e *Exportable) Size() (width, height uint32) {
	return e.width, e.height
}

func (e *Exportable) post(what string, fn func()) error {
	if err := e.loop.Post(fn); err != nil {
		return fmt.Errorf("%s on exportable %s: %w", what, e.id, err)
	}
	return nil
}

// SetProducer registers the receiver of release and frame-complete notifications.
func (e *Exportable) SetProducer(p Producer) error {
	return e.post("set producer", func() { e.sink.setProducer(p) })
}

// ExportBuffer submits a frame backed by an opaque compositor buffer.
func (e *Exportable) ExportBuffer(buf *OpaqueBuffer) error {
	return e.post("export buffer", func() { e.sink.present(buf) })
}

// ExportDMABuf submits a frame backed by dma-buf planes. The fds stay owned by
// the producer.
func (e *Exportable) ExportDMABuf(buf *DMABufBuffer) error {
	return e.post("export dma-buf", func() { e.sink.present(buf) })
}

// ExportSHM submits a frame in shared memory.
func (e *Exportable) ExportSHM(buf *SHMExportedBuffer) error {
	return e.post("export shm buffer", func() { e.sink.present(buf) })
}

// DestroyResource tells the renderer the producer has destroyed a resource. Its
// framebuffer is freed as soon as the kernel no longer scans it out.
func (e *Exportable) DestroyResource(id ResourceID) error {
	return e.post("destroy resource", func() { e.sink.destroyResource(id) })
}
