package renderer

import (
	"errors"
	"fmt"

	"github.com/rs/zerolog/log"

	"github.com/helixml/scanout/api/pkg/drm"
	"github.com/helixml/scanout/api/pkg/gbm"
)

// scanout owns a kernel framebuffer and the buffer object behind it. Close frees
// both exactly once.
type scanout struct {
	dev    KMS
	fbID   uint32
	bo     gbm.BO
	closed bool
}

func (s *scanout) Close() error {
	if s.closed {
		return nil
	}
	s.closed = true

	var errs []error
	if err := s.dev.RmFB(s.fbID); err != nil {
		errs = append(errs, err)
	}
	if err := s.bo.Destroy(); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

// BufferObject is an imported producer resource wrapped as a kernel framebuffer.
// It lives until the producer destroys the resource, not until a newer frame
// supersedes it.
type BufferObject struct {
	Resource ResourceID
	FbID     uint32

	fb *scanout

	// Producer handles still owed a release notification.
	owesRelease bool
	shm         *SHMExportedBuffer

	// retired is set when the producer destroyed the resource while the kernel
	// still referenced the framebuffer.
	retired bool
}

func (b *BufferObject) BO() gbm.BO { return b.fb.bo }

func (b *BufferObject) Width() uint32  { return b.fb.bo.Width() }
func (b *BufferObject) Height() uint32 { return b.fb.bo.Height() }

// HasOwedRelease reports whether a release notification is outstanding.
func (b *BufferObject) HasOwedRelease() bool {
	return b.owesRelease || b.shm != nil
}

func (b *BufferObject) Retired() bool { return b.retired }

func (b *BufferObject) close() {
	if err := b.fb.Close(); err != nil {
		log.Warn().Err(err).Stringer("resource", b.Resource).Uint32("fb_id", b.FbID).Msg("failed to free framebuffer")
	}
}

// FramebufferTable indexes buffer objects by producer resource so repeated exports
// of one resource reuse its framebuffer.
type FramebufferTable struct {
	dev       KMS
	importer  *BufferImporter
	modifiers bool
	buffers   map[ResourceID]*BufferObject
}

func NewFramebufferTable(dev KMS, importer *BufferImporter, modifiers bool) *FramebufferTable {
	return &FramebufferTable{
		dev:       dev,
		importer:  importer,
		modifiers: modifiers,
		buffers:   make(map[ResourceID]*BufferObject),
	}
}

// GetOrCreate returns the buffer object of buf's resource, importing it on first
// sight. Shared-memory exports are copied again on every call since the producer
// may have redrawn the memory. Nothing is registered on failure.
func (t *FramebufferTable) GetOrCreate(buf ExportedBuffer) (*BufferObject, error) {
	id := buf.ResourceID()
	if bo, ok := t.buffers[id]; ok {
		if s, isSHM := buf.(*SHMExportedBuffer); isSHM {
			// The scanout buffer has a single copy. If it is on screen the
			// new pixels land mid-scanout and the frame may tear.
			if err := t.importer.CopyInto(bo.fb.bo, s.Buffer); err != nil {
				return nil, fmt.Errorf("%w: %s: %w", ErrImportFailed, id, err)
			}
		}
		return bo, nil
	}

	gb, err := t.importer.Import(buf)
	if err != nil {
		return nil, err
	}
	fbID, err := t.addFramebuffer(gb)
	if err != nil {
		_ = gb.Destroy()
		return nil, fmt.Errorf("%w: %s: %w", ErrFramebufferAdd, id, err)
	}

	bo := &BufferObject{
		Resource: id,
		FbID:     fbID,
		fb:       &scanout{dev: t.dev, fbID: fbID, bo: gb},
	}
	t.buffers[id] = bo

	log.Debug().
		Stringer("resource", id).
		Uint32("fb_id", fbID).
		Uint32("width", gb.Width()).
		Uint32("height", gb.Height()).
		Str("format", drm.FormatName(gb.Format())).
		Msg("created framebuffer")
	return bo, nil
}

// addFramebuffer tries the multi-plane modifier-aware call first when the device
// supports it and the buffer carries an explicit modifier, then the single-plane
// call.
func (t *FramebufferTable) addFramebuffer(bo gbm.BO) (uint32, error) {
	if t.modifiers && bo.Modifier() != drm.ModifierInvalid {
		cmd := drm.FramebufferCmd{
			Width:  bo.Width(),
			Height: bo.Height(),
			Format: bo.Format(),
			Flags:  drm.FBModifiers,
		}
		for i := 0; i < bo.PlaneCount() && i < len(cmd.Handles); i++ {
			cmd.Handles[i] = bo.Handle(i)
			cmd.Pitches[i] = bo.Stride(i)
			cmd.Offsets[i] = bo.Offset(i)
			cmd.Modifiers[i] = bo.Modifier()
		}
		fbID, err := t.dev.AddFB2(cmd)
		if err == nil {
			return fbID, nil
		}
		log.Debug().Err(err).Msg("ADDFB2 with modifiers failed, retrying without")
	}

	cmd := drm.FramebufferCmd{Width: bo.Width(), Height: bo.Height(), Format: bo.Format()}
	cmd.Handles[0] = bo.Handle(0)
	cmd.Pitches[0] = bo.Stride(0)
	return t.dev.AddFB2(cmd)
}

func (t *FramebufferTable) Lookup(id ResourceID) (*BufferObject, bool) {
	bo, ok := t.buffers[id]
	return bo, ok
}

// Remove drops the entry for id and hands the buffer object to the caller, which
// decides when its framebuffer can be freed.
func (t *FramebufferTable) Remove(id ResourceID) (*BufferObject, bool) {
	bo, ok := t.buffers[id]
	if ok {
		delete(t.buffers, id)
	}
	return bo, ok
}

// Drain empties the table and returns everything it held.
func (t *FramebufferTable) Drain() []*BufferObject {
	out := make([]*BufferObject, 0, len(t.buffers))
	for _, bo := range t.buffers {
		out = append(out, bo)
	}
	clear(t.buffers)
	return out
}

func (t *FramebufferTable) Len() int {
	return len(t.buffers)
}
