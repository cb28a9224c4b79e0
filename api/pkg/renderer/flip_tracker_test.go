package renderer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/helixml/scanout/api/pkg/drm"
)

type recordingHooks struct {
	released       []*BufferObject
	frameCompletes int
}

func (h *recordingHooks) superseded(bo *BufferObject) { h.released = append(h.released, bo) }
func (h *recordingHooks) frameComplete()              { h.frameCompletes++ }

func flipComplete(token uint64) drm.Event {
	return drm.Event{Type: drm.EventFlipComplete, UserData: token, CrtcID: testCrtc}
}

func TestPageFlipTrackerLifecycle(t *testing.T) {
	hooks := &recordingHooks{}
	tracker := newPageFlipTracker(testCrtc, hooks)
	a := &BufferObject{Resource: 1}
	b := &BufferObject{Resource: 2}

	assert.Equal(t, FlipIdle, tracker.State())

	tokenA := tracker.NextToken()
	tracker.Begin(tokenA, a)
	assert.Equal(t, FlipPending, tracker.State())
	assert.True(t, tracker.Busy(a))

	require.True(t, tracker.Complete(flipComplete(tokenA)))
	assert.Equal(t, FlipIdle, tracker.State())
	assert.Same(t, a, tracker.Committed())
	assert.Empty(t, hooks.released, "nothing superseded by the first frame")
	assert.Equal(t, 1, hooks.frameCompletes)
	assert.False(t, tracker.Busy(a), "idle tracker keeps nothing busy")

	// Same buffer flipped again is not superseded by itself.
	tokenA2 := tracker.NextToken()
	tracker.Begin(tokenA2, a)
	require.True(t, tracker.Complete(flipComplete(tokenA2)))
	assert.Empty(t, hooks.released)

	tokenB := tracker.NextToken()
	tracker.Begin(tokenB, b)
	assert.True(t, tracker.Busy(a), "on-screen buffer stays busy until the flip lands")
	require.True(t, tracker.Complete(flipComplete(tokenB)))
	assert.Equal(t, []*BufferObject{a}, hooks.released)
	assert.Same(t, b, tracker.Committed())
	assert.Equal(t, 3, hooks.frameCompletes)
}

func TestPageFlipTrackerIgnoresSpuriousEvents(t *testing.T) {
	hooks := &recordingHooks{}
	tracker := newPageFlipTracker(testCrtc, hooks)

	assert.False(t, tracker.Complete(flipComplete(1)), "nothing pending")

	a := &BufferObject{Resource: 1}
	token := tracker.NextToken()
	tracker.Begin(token, a)

	tests := []struct {
		name string
		ev   drm.Event
	}{
		{name: "vblank", ev: drm.Event{Type: drm.EventVblank, UserData: token, CrtcID: testCrtc}},
		{name: "stale token", ev: flipComplete(token + 7)},
		{name: "other crtc", ev: drm.Event{Type: drm.EventFlipComplete, UserData: token, CrtcID: testCrtc + 1}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.False(t, tracker.Complete(tt.ev))
			assert.Equal(t, FlipPending, tracker.State())
			assert.Same(t, a, tracker.Pending().Buffer)
			assert.Zero(t, hooks.frameCompletes)
		})
	}

	// Older kernels leave crtc_id zero.
	assert.True(t, tracker.Complete(drm.Event{Type: drm.EventFlipComplete, UserData: token}))
}

func TestPageFlipTrackerTokens(t *testing.T) {
	tracker := newPageFlipTracker(testCrtc, &recordingHooks{})
	first := tracker.NextToken()
	assert.NotZero(t, first)
	assert.Equal(t, first+1, tracker.NextToken())
}

func TestPageFlipTrackerShow(t *testing.T) {
	hooks := &recordingHooks{}
	tracker := newPageFlipTracker(testCrtc, hooks)
	a := &BufferObject{Resource: 1}
	b := &BufferObject{Resource: 2}

	tracker.Show(a)
	assert.Same(t, a, tracker.Committed())
	assert.Empty(t, hooks.released)

	tracker.Show(a)
	assert.Empty(t, hooks.released, "same buffer is not superseded")

	tracker.Show(b)
	assert.Equal(t, []*BufferObject{a}, hooks.released)
	assert.Zero(t, hooks.frameCompletes)
	assert.Equal(t, FlipIdle, tracker.State())
}
