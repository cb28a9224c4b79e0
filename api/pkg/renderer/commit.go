package renderer

import (
	"errors"
	"fmt"

	"github.com/rs/zerolog/log"

	"github.com/helixml/scanout/api/pkg/drm"
	"github.com/helixml/scanout/api/pkg/kms"
)

// CommitStrategy puts a framebuffer on the target's plane and asks the kernel for a
// completion event carrying token. A failed commit leaves no state behind.
type CommitStrategy interface {
	Name() string
	Commit(fbID uint32, token uint64) error
	// Release frees kernel objects held across commits. The next commit sets the
	// mode again.
	Release()
}

func newCommitStrategy(dev KMS, props *PropertyTable, target *kms.DisplayTarget) CommitStrategy {
	if target.Atomic {
		return &atomicCommit{dev: dev, props: props, target: target}
	}
	return &legacyCommit{dev: dev, target: target}
}

func rejected(err error) error {
	return fmt.Errorf("%w: %w", ErrCommitRejected, err)
}

type legacyCommit struct {
	dev     KMS
	target  *kms.DisplayTarget
	modeSet bool
}

func (c *legacyCommit) Name() string { return "legacy" }

// Commit lights the CRTC with a blocking SETCRTC the first time, then schedules a
// page flip. If the flip fails right after a mode set, fbID is on screen anyway
// and the error wraps errShownWithoutFlip.
func (c *legacyCommit) Commit(fbID uint32, token uint64) error {
	modeSet := false
	if !c.modeSet {
		mode := c.target.Mode
		if err := c.dev.SetCrtc(c.target.CrtcID, fbID, []uint32{c.target.ConnectorID}, &mode); err != nil {
			return rejected(err)
		}
		c.modeSet = true
		modeSet = true
		log.Info().Uint32("crtc_id", c.target.CrtcID).Stringer("mode", mode).Msg("mode set")
	}

	if err := c.dev.PageFlip(c.target.CrtcID, fbID, drm.PageFlipEvent, token); err != nil {
		if modeSet {
			return fmt.Errorf("%w: %w", errShownWithoutFlip, rejected(err))
		}
		return rejected(err)
	}
	return nil
}

func (c *legacyCommit) Release() {
	c.modeSet = false
}

type atomicCommit struct {
	dev     KMS
	props   *PropertyTable
	target  *kms.DisplayTarget
	modeSet bool
	blobID  uint32
}

func (c *atomicCommit) Name() string { return "atomic" }

// Commit submits one non-blocking atomic request. The first one also routes the
// connector to the CRTC, sets the mode and activates the CRTC.
func (c *atomicCommit) Commit(fbID uint32, token uint64) error {
	t := c.target
	req := drm.NewAtomicRequest()
	flags := uint32(drm.AtomicNonblock | drm.PageFlipEvent)

	var errs []error
	add := func(objectID, objectType uint32, name string, value uint64) {
		if err := c.props.Add(req, objectID, objectType, name, value); err != nil {
			errs = append(errs, err)
		}
	}

	var blob uint32
	if !c.modeSet {
		id, err := c.dev.CreatePropertyBlob(t.Mode.Bytes())
		if err != nil {
			return rejected(fmt.Errorf("create mode blob: %w", err))
		}
		blob = id
		flags |= drm.AtomicAllowModeset

		add(t.ConnectorID, drm.ObjectConnector, "CRTC_ID", uint64(t.CrtcID))
		add(t.CrtcID, drm.ObjectCRTC, "MODE_ID", uint64(blob))
		add(t.CrtcID, drm.ObjectCRTC, "ACTIVE", 1)
	}

	w, h := uint64(t.Width()), uint64(t.Height())
	add(t.PlaneID, drm.ObjectPlane, "FB_ID", uint64(fbID))
	add(t.PlaneID, drm.ObjectPlane, "CRTC_ID", uint64(t.CrtcID))
	add(t.PlaneID, drm.ObjectPlane, "SRC_X", 0)
	add(t.PlaneID, drm.ObjectPlane, "SRC_Y", 0)
	add(t.PlaneID, drm.ObjectPlane, "SRC_W", w<<16)
	add(t.PlaneID, drm.ObjectPlane, "SRC_H", h<<16)
	add(t.PlaneID, drm.ObjectPlane, "CRTC_X", 0)
	add(t.PlaneID, drm.ObjectPlane, "CRTC_Y", 0)
	add(t.PlaneID, drm.ObjectPlane, "CRTC_W", w)
	add(t.PlaneID, drm.ObjectPlane, "CRTC_H", h)

	if len(errs) > 0 {
		c.discardBlob(blob)
		return rejected(errors.Join(errs...))
	}
	if err := c.dev.AtomicCommit(req, flags, token); err != nil {
		c.discardBlob(blob)
		return rejected(err)
	}

	if blob != 0 {
		c.blobID = blob
		c.modeSet = true
		log.Info().Uint32("crtc_id", t.CrtcID).Stringer("mode", t.Mode).Uint32("blob_id", blob).Msg("mode set")
	}
	return nil
}

func (c *atomicCommit) discardBlob(id uint32) {
	if id == 0 {
		return
	}
	if err := c.dev.DestroyPropertyBlob(id); err != nil {
		log.Warn().Err(err).Uint32("blob_id", id).Msg("failed to destroy mode blob")
	}
}

func (c *atomicCommit) Release() {
	c.discardBlob(c.blobID)
	c.blobID = 0
	c.modeSet = false
}

// CommitScheduler issues commits through a strategy while enforcing a single
// outstanding flip.
type CommitScheduler struct {
	strategy CommitStrategy
	tracker  *PageFlipTracker
}

func NewCommitScheduler(strategy CommitStrategy, tracker *PageFlipTracker) *CommitScheduler {
	return &CommitScheduler{strategy: strategy, tracker: tracker}
}

// Commit puts bo on screen at the next vblank. While a flip is pending it fails
// with ErrFlipPending and changes nothing. The flip is recorded as pending only
// once the kernel accepted it. A buffer a failed commit left on screen becomes
// the committed one.
func (s *CommitScheduler) Commit(bo *BufferObject) error {
	if s.tracker.State() == FlipPending {
		return rejected(ErrFlipPending)
	}
	token := s.tracker.NextToken()
	if err := s.strategy.Commit(bo.FbID, token); err != nil {
		if errors.Is(err, errShownWithoutFlip) {
			s.tracker.Show(bo)
		}
		return err
	}
	s.tracker.Begin(token, bo)
	return nil
}

func (s *CommitScheduler) Strategy() CommitStrategy {
	return s.strategy
}
