package renderer

import (
	"fmt"

	"github.com/helixml/scanout/api/pkg/drm"
	"github.com/helixml/scanout/api/pkg/eventloop"
	"github.com/helixml/scanout/api/pkg/gbm"
	"github.com/helixml/scanout/api/pkg/shm"
)

//go:generate mockgen -source $GOFILE -destination renderer_mocks.go -package $GOPACKAGE

// ResourceID is the producer's identity for an exported buffer. Frames that carry
// the same id refer to the same underlying memory.
type ResourceID uint64

func (id ResourceID) String() string {
	return fmt.Sprintf("res-%d", uint64(id))
}

// KMS is the kernel modesetting surface the pipeline drives. *drm.Device
// implements it.
type KMS interface {
	Fd() int
	ObjectProperties(objectID, objectType uint32) ([]drm.Property, error)
	AddFB2(cmd drm.FramebufferCmd) (uint32, error)
	RmFB(fbID uint32) error
	SetCrtc(crtcID, fbID uint32, connectors []uint32, mode *drm.ModeInfo) error
	PageFlip(crtcID, fbID, flags uint32, userData uint64) error
	AtomicCommit(req *drm.AtomicRequest, flags uint32, userData uint64) error
	CreatePropertyBlob(data []byte) (uint32, error)
	DestroyPropertyBlob(id uint32) error
	ReadEvents() ([]drm.Event, error)
}

// BufferManager imports producer memory as buffer objects. *gbm.Device implements it.
type BufferManager interface {
	SupportsModifiers() bool
	ImportOpaque(buf gbm.OpaqueBuffer) (gbm.BO, error)
	ImportFDModifier(imp gbm.DMABufImport) (gbm.BO, error)
	ImportFD(imp gbm.DMABufImport) (gbm.BO, error)
	CreateScanout(width, height, format uint32) (gbm.BO, error)
}

// Producer receives the pipeline's feedback. Calls are made on the event loop
// goroutine.
type Producer interface {
	// ReleaseBuffer hands an opaque or dma-buf resource back for reuse.
	ReleaseBuffer(id ResourceID)
	ReleaseSHMExportedBuffer(buf *SHMExportedBuffer)
	// FrameComplete is sent once per displayed frame.
	FrameComplete()
}

// Loop is the event loop the renderer attaches the device fd to. *eventloop.Loop
// implements it.
type Loop interface {
	AddFD(fd int, name string, handler eventloop.Handler) (*eventloop.Source, error)
	RemoveSource(s *eventloop.Source) error
	Post(fn func()) error
}

// ExportedBuffer is a frame handed over by the producer: one of *OpaqueBuffer,
// *DMABufBuffer or *SHMExportedBuffer.
type ExportedBuffer interface {
	ResourceID() ResourceID
}

// OpaqueBuffer is a compositor buffer identified by a GEM name.
type OpaqueBuffer struct {
	Resource ResourceID
	Buffer   gbm.OpaqueBuffer
}

func (b *OpaqueBuffer) ResourceID() ResourceID { return b.Resource }

// DMABufBuffer is a set of up to four dma-buf planes sharing one modifier.
type DMABufBuffer struct {
	Resource ResourceID
	Width    uint32
	Height   uint32
	Format   uint32
	Modifier uint64
	Planes   []gbm.DMABufPlane
}

func (b *DMABufBuffer) ResourceID() ResourceID { return b.Resource }

func (b *DMABufBuffer) importDesc() gbm.DMABufImport {
	return gbm.DMABufImport{
		Width:    b.Width,
		Height:   b.Height,
		Format:   b.Format,
		Modifier: b.Modifier,
		Planes:   b.Planes,
	}
}

// SHMExportedBuffer is one export of a shared-memory resource. Every export is a
// distinct handle that is released on its own.
type SHMExportedBuffer struct {
	Resource ResourceID
	Buffer   shm.Descriptor
}

func (b *SHMExportedBuffer) ResourceID() ResourceID { return b.Resource }
