package renderer

import (
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/sys/unix"

	"github.com/helixml/scanout/api/pkg/eventloop"
	"github.com/helixml/scanout/api/pkg/kms"
)

// ModesetRenderer scans producer buffers out directly: every frame becomes a
// kernel framebuffer that is flipped onto the target's plane. All state is owned
// by the event loop goroutine.
type ModesetRenderer struct {
	dev    KMS
	loop   Loop
	target kms.DisplayTarget
	opts   Options

	props        *PropertyTable
	importer     *BufferImporter
	framebuffers *FramebufferTable
	tracker      *PageFlipTracker
	scheduler    *CommitScheduler

	source     *eventloop.Source
	exportable *Exportable
	producer   Producer
	stats      *Stats

	initialized bool
	destroyed   bool
}

func NewModesetRenderer(deps Deps, opts Options) (*ModesetRenderer, error) {
	if deps.KMS == nil || deps.Loop == nil || deps.Target == nil {
		return nil, errors.New("modeset renderer needs a device, an event loop and a display target")
	}
	if deps.Buffers == nil {
		return nil, ErrBufferManager
	}
	if opts.FlipDrainTimeout <= 0 {
		opts.FlipDrainTimeout = DefaultFlipDrainTimeout
	}

	r := &ModesetRenderer{
		dev:    deps.KMS,
		loop:   deps.Loop,
		target: *deps.Target,
		opts:   opts,
		stats:  newStats(),
	}
	r.props = NewPropertyTable(r.dev)
	r.importer = NewBufferImporter(deps.Buffers)
	r.framebuffers = NewFramebufferTable(r.dev, r.importer, deps.Buffers.SupportsModifiers())
	r.tracker = newPageFlipTracker(r.target.CrtcID, r)

	log.Debug().
		Uint32("plane_id", r.target.PlaneID).
		Uint32("crtc_id", r.target.CrtcID).
		Uint32("connector_id", r.target.ConnectorID).
		Bool("atomic", r.target.Atomic).
		Bool("modifiers", deps.Buffers.SupportsModifiers()).
		Msg("created modeset renderer")
	return r, nil
}

func (r *ModesetRenderer) Name() string { return string(KindModeset) }

// Initialize validates the atomic properties of the target, falling back to
// legacy modesetting when some are missing, and attaches the device fd to the
// event loop.
func (r *ModesetRenderer) Initialize() error {
	if r.initialized {
		return nil
	}

	if r.target.Atomic {
		if err := r.props.Validate(&r.target); err != nil {
			if !errors.Is(err, ErrUnknownProperty) {
				return fmt.Errorf("validate atomic properties: %w", err)
			}
			log.Warn().Err(err).Msg("atomic properties missing, falling back to legacy modesetting")
			r.target.Atomic = false
		}
	}
	strategy := newCommitStrategy(r.dev, r.props, &r.target)
	r.scheduler = NewCommitScheduler(strategy, r.tracker)

	src, err := r.loop.AddFD(r.dev.Fd(), "drm", r.handleDevice)
	if err != nil {
		return fmt.Errorf("attach DRM device to event loop: %w", err)
	}
	r.source = src
	r.initialized = true

	log.Info().
		Str("renderer", r.Name()).
		Str("commit", strategy.Name()).
		Stringer("target", &r.target).
		Msg("renderer initialized")
	return nil
}

func (r *ModesetRenderer) CreateExportable(width, height uint32) (*Exportable, error) {
	if r.exportable != nil {
		return nil, ErrExportableExists
	}
	r.exportable = newExportable(r.loop, r, width, height)
	log.Debug().Stringer("exportable", r.exportable.ID()).Uint32("width", width).Uint32("height", height).Msg("created exportable")
	return r.exportable, nil
}

// SetRotation accepts only Rotate0: the plane is scanned out as-is.
func (r *ModesetRenderer) SetRotation(rot Rotation) bool {
	if rot == Rotate0 {
		return true
	}
	log.Warn().Err(ErrUnsupportedRotation).Int("rotation", int(rot)).Str("renderer", r.Name()).Msg("rotation not supported")
	return false
}

func (r *ModesetRenderer) Rotation() Rotation { return Rotate0 }

func (r *ModesetRenderer) Stats() StatsSnapshot { return r.stats.Snapshot() }

// Target is the display target in use. Atomic may have been cleared by Initialize.
func (r *ModesetRenderer) Target() kms.DisplayTarget { return r.target }

func (r *ModesetRenderer) FlipState() FlipState { return r.tracker.State() }

func (r *ModesetRenderer) setProducer(p Producer) {
	r.producer = p
}

// present imports buf if needed and commits it. Any failure drops the frame: the
// producer gets its buffer back but no frame-complete.
func (r *ModesetRenderer) present(buf ExportedBuffer) {
	id := buf.ResourceID()
	switch {
	case r.producer == nil:
		r.stats.dropped.Inc()
		log.Warn().Err(ErrNoProducer).Stringer("resource", id).Msg("dropping frame")
		return
	case !r.initialized || r.destroyed:
		r.drop(buf, ErrNotInitialized)
		return
	case r.tracker.State() == FlipPending:
		r.drop(buf, rejected(ErrFlipPending))
		return
	}

	_, known := r.framebuffers.Lookup(id)
	bo, err := r.framebuffers.GetOrCreate(buf)
	if err != nil {
		r.drop(buf, err)
		return
	}
	if !known {
		r.stats.imported.Inc()
	}
	r.attach(bo, buf)

	if err := r.scheduler.Commit(bo); err != nil {
		r.stats.dropped.Inc()
		log.Warn().Err(err).Stringer("resource", id).Uint32("fb_id", bo.FbID).Msg("failed to schedule a page flip")
		if bo != r.tracker.Committed() {
			r.releaseOwed(bo)
		}
	}
}

// attach records the producer handle the buffer object now owes a release for.
func (r *ModesetRenderer) attach(bo *BufferObject, buf ExportedBuffer) {
	s, ok := buf.(*SHMExportedBuffer)
	if !ok {
		bo.owesRelease = true
		return
	}
	if bo.shm != nil && bo.shm != s {
		// The older export was copied already and is not scanned out.
		r.releaseSHM(bo.shm)
	}
	bo.shm = s
}

// drop hands a rejected export back to the producer unless the kernel may
// still read the resource, in which case the release is deferred to the buffer
// object.
func (r *ModesetRenderer) drop(buf ExportedBuffer, err error) {
	id := buf.ResourceID()
	r.stats.dropped.Inc()
	log.Warn().Err(err).Stringer("resource", id).Msg("dropping frame")

	bo, known := r.framebuffers.Lookup(id)
	switch b := buf.(type) {
	case *SHMExportedBuffer:
		if known && bo.shm == b {
			return
		}
		r.releaseSHM(b)
	default:
		if known && (bo == r.tracker.Committed() || r.tracker.Busy(bo)) {
			bo.owesRelease = true
			return
		}
		r.producer.ReleaseBuffer(id)
		r.stats.released.Inc()
	}
}

func (r *ModesetRenderer) releaseSHM(s *SHMExportedBuffer) {
	r.producer.ReleaseSHMExportedBuffer(s)
	r.stats.released.Inc()
}

// releaseOwed sends every outstanding release of bo exactly once.
func (r *ModesetRenderer) releaseOwed(bo *BufferObject) {
	if r.producer == nil {
		bo.owesRelease, bo.shm = false, nil
		return
	}
	if bo.owesRelease {
		bo.owesRelease = false
		r.producer.ReleaseBuffer(bo.Resource)
		r.stats.released.Inc()
	}
	if bo.shm != nil {
		s := bo.shm
		bo.shm = nil
		r.releaseSHM(s)
	}
}

// destroyResource handles the producer destroying a resource. A framebuffer the
// kernel may still read is retired and freed when it leaves the screen.
func (r *ModesetRenderer) destroyResource(id ResourceID) {
	bo, ok := r.framebuffers.Remove(id)
	if !ok {
		log.Debug().Stringer("resource", id).Msg("destroyed resource has no framebuffer")
		return
	}

	if r.tracker.Busy(bo) {
		bo.retired = true
		log.Debug().Stringer("resource", id).Uint32("fb_id", bo.FbID).Msg("framebuffer in use, deferring removal")
		return
	}

	bo.close()
	if r.tracker.Committed() == bo {
		r.tracker.ClearCommitted()
		// Removing the displayed framebuffer switches the CRTC off.
		r.scheduler.Strategy().Release()
		log.Info().Stringer("resource", id).Msg("displayed buffer destroyed, mode will be set again on the next frame")
	}
	r.releaseOwed(bo)
}

func (r *ModesetRenderer) handleDevice(fd int, ev eventloop.Events) {
	if ev&eventloop.Hangup != 0 {
		log.Error().Int("fd", fd).Msg("DRM device hung up, no further page flips will complete")
		r.source = nil
		return
	}
	r.dispatchEvents()
}

func (r *ModesetRenderer) dispatchEvents() {
	events, err := r.dev.ReadEvents()
	if err != nil {
		log.Debug().Err(err).Msg("failed to read DRM events")
	}
	for _, ev := range events {
		if !r.tracker.Complete(ev) {
			r.stats.ignored.Inc()
		}
	}
}

func (r *ModesetRenderer) superseded(bo *BufferObject) {
	if bo.retired {
		bo.close()
	}
	r.releaseOwed(bo)
}

func (r *ModesetRenderer) frameComplete() {
	r.stats.presented.Inc()
	if r.producer != nil {
		r.producer.FrameComplete()
	}
}

// Destroy waits a bounded time for an outstanding flip, then frees every
// framebuffer and sends the releases still owed. Framebuffers freed while a flip
// is still outstanding stay alive in the kernel until the flip retires them.
func (r *ModesetRenderer) Destroy() {
	if r.destroyed {
		return
	}
	r.destroyed = true

	if r.tracker.State() == FlipPending {
		r.awaitFlip()
	}

	buffers := r.framebuffers.Drain()
	if p := r.tracker.Pending(); p != nil && p.Buffer.retired {
		buffers = append(buffers, p.Buffer)
	}
	if c := r.tracker.Committed(); c != nil && c.retired {
		buffers = append(buffers, c)
	}
	r.tracker.Reset()

	for _, bo := range buffers {
		bo.close()
		r.releaseOwed(bo)
	}

	if r.scheduler != nil {
		r.scheduler.Strategy().Release()
	}
	r.props.Clear()

	if r.source != nil {
		if err := r.loop.RemoveSource(r.source); err != nil {
			log.Warn().Err(err).Msg("failed to detach DRM device from event loop")
		}
		r.source = nil
	}

	log.Info().Object("stats", r.stats.Snapshot()).Int("buffers", len(buffers)).Msg("renderer destroyed")
}

// awaitFlip polls the device fd directly until the pending flip completes or
// FlipDrainTimeout expires.
func (r *ModesetRenderer) awaitFlip() {
	deadline := time.Now().Add(r.opts.FlipDrainTimeout)
	for r.tracker.State() == FlipPending {
		remaining := time.Until(deadline)
		if remaining <= 0 {
			log.Warn().Dur("timeout", r.opts.FlipDrainTimeout).Msg("timed out waiting for the pending page flip")
			return
		}

		fds := []unix.PollFd{{Fd: int32(r.dev.Fd()), Events: unix.POLLIN}}
		n, err := unix.Poll(fds, int(remaining/time.Millisecond)+1)
		if err != nil {
			if errors.Is(err, unix.EINTR) {
				continue
			}
			log.Warn().Err(err).Msg("failed to poll DRM device")
			return
		}
		if n == 0 {
			continue
		}
		if fds[0].Revents&(unix.POLLERR|unix.POLLHUP|unix.POLLNVAL) != 0 {
			log.Warn().Int16("revents", fds[0].Revents).Msg("DRM device closed while waiting for the pending page flip")
			return
		}
		r.dispatchEvents()
	}
}
