package renderer

import (
	"github.com/rs/zerolog/log"

	"github.com/helixml/scanout/api/pkg/drm"
)

type FlipState int

const (
	FlipIdle FlipState = iota
	FlipPending
)

func (s FlipState) String() string {
	if s == FlipPending {
		return "FLIP_PENDING"
	}
	return "IDLE"
}

// PendingFlip is the commit the kernel has accepted but not completed. Token is
// the user data the completion event echoes back.
type PendingFlip struct {
	Token  uint64
	Buffer *BufferObject
}

// flipHooks receives the tracker's transitions.
type flipHooks interface {
	// superseded is called with the buffer that left the screen.
	superseded(bo *BufferObject)
	frameComplete()
}

// PageFlipTracker holds the IDLE/FLIP_PENDING state of one CRTC and the buffer
// currently on screen.
type PageFlipTracker struct {
	crtcID    uint32
	hooks     flipHooks
	pending   *PendingFlip
	committed *BufferObject
	lastToken uint64
}

func newPageFlipTracker(crtcID uint32, hooks flipHooks) *PageFlipTracker {
	return &PageFlipTracker{crtcID: crtcID, hooks: hooks}
}

func (t *PageFlipTracker) State() FlipState {
	if t.pending != nil {
		return FlipPending
	}
	return FlipIdle
}

func (t *PageFlipTracker) Pending() *PendingFlip {
	return t.pending
}

func (t *PageFlipTracker) Committed() *BufferObject {
	return t.committed
}

func (t *PageFlipTracker) ClearCommitted() {
	t.committed = nil
}

// NextToken returns a fresh completion token. Zero is never used.
func (t *PageFlipTracker) NextToken() uint64 {
	t.lastToken++
	return t.lastToken
}

// Begin records a commit the kernel accepted.
func (t *PageFlipTracker) Begin(token uint64, bo *BufferObject) {
	t.pending = &PendingFlip{Token: token, Buffer: bo}
}

// Show records bo as on screen without a completion event, as after a mode set
// whose flip failed. The previous buffer is superseded; no frame completes.
func (t *PageFlipTracker) Show(bo *BufferObject) {
	prev := t.committed
	t.committed = bo
	if prev != nil && prev != bo {
		t.hooks.superseded(prev)
	}
}

// Busy reports whether the kernel may still read from bo: it is the pending
// buffer, or it is on screen while another flip is outstanding.
func (t *PageFlipTracker) Busy(bo *BufferObject) bool {
	if t.pending == nil {
		return false
	}
	return t.pending.Buffer == bo || t.committed == bo
}

// Complete handles one decoded device event. Events that do not finish the
// pending flip are ignored.
func (t *PageFlipTracker) Complete(ev drm.Event) bool {
	ignore := func(reason string) bool {
		log.Debug().
			Uint32("type", ev.Type).
			Uint64("token", ev.UserData).
			Uint32("crtc_id", ev.CrtcID).
			Msg(reason)
		return false
	}

	switch {
	case ev.Type != drm.EventFlipComplete:
		return ignore("ignoring non flip-complete event")
	case t.pending == nil:
		return ignore("ignoring flip-complete event with no flip pending")
	case ev.UserData != t.pending.Token:
		return ignore("ignoring flip-complete event for another commit")
	case ev.CrtcID != 0 && ev.CrtcID != t.crtcID:
		return ignore("ignoring flip-complete event for another CRTC")
	}

	done := t.pending.Buffer
	t.pending = nil

	prev := t.committed
	t.committed = done
	if prev != nil && prev != done {
		t.hooks.superseded(prev)
	}
	t.hooks.frameComplete()
	return true
}

// Reset forgets the pending flip and the committed buffer.
func (t *PageFlipTracker) Reset() {
	t.pending = nil
	t.committed = nil
}
