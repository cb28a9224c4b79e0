package renderer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sys/unix"

	"github.com/helixml/scanout/api/pkg/drm"
)

// propertyValues indexes an atomic request by "object.property" name.
func propertyValues(k *fakeKernel, props []drm.AtomicProperty) map[string]uint64 {
	names := map[uint32]string{testConnector: "connector", testCrtc: "crtc", testPlane: "plane"}
	types := map[uint32]uint32{testConnector: drm.ObjectConnector, testCrtc: drm.ObjectCRTC, testPlane: drm.ObjectPlane}

	out := map[string]uint64{}
	for _, p := range props {
		for _, known := range k.props[objectKey{p.ObjectID, types[p.ObjectID]}] {
			if known.ID == p.PropertyID {
				out[names[p.ObjectID]+"."+known.Name] = p.Value
			}
		}
	}
	return out
}

func TestLegacyCommit(t *testing.T) {
	k := newFakeKernel(t)
	c := newCommitStrategy(k, NewPropertyTable(k), testTarget(false))
	assert.Equal(t, "legacy", c.Name())

	require.NoError(t, c.Commit(101, 1))
	require.Len(t, k.setCrtcs, 1)
	assert.Equal(t, setCrtcCall{crtcID: testCrtc, fbID: 101, connectors: []uint32{testConnector}, mode: testMode()}, k.setCrtcs[0])
	assert.Equal(t, []flipCall{{crtcID: testCrtc, fbID: 101, flags: drm.PageFlipEvent, token: 1}}, k.flips)

	require.NoError(t, c.Commit(102, 2))
	assert.Len(t, k.setCrtcs, 1, "mode is set once")
	assert.Equal(t, flipCall{crtcID: testCrtc, fbID: 102, flags: drm.PageFlipEvent, token: 2}, k.flips[1])

	c.Release()
	require.NoError(t, c.Commit(103, 3))
	assert.Len(t, k.setCrtcs, 2, "released strategy sets the mode again")
}

func TestLegacyCommitRejected(t *testing.T) {
	k := newFakeKernel(t)
	k.commitErr = unix.EBUSY
	c := newCommitStrategy(k, NewPropertyTable(k), testTarget(false))

	err := c.Commit(101, 1)
	require.ErrorIs(t, err, ErrCommitRejected)
	assert.ErrorIs(t, err, unix.EBUSY)
	assert.Empty(t, k.flips)
}

func TestAtomicCommitFirstSetsMode(t *testing.T) {
	k := newFakeKernel(t)
	c := newCommitStrategy(k, NewPropertyTable(k), testTarget(true))
	assert.Equal(t, "atomic", c.Name())

	require.NoError(t, c.Commit(101, 1))
	require.Len(t, k.atomics, 1)
	first := k.atomics[0]

	assert.Equal(t, uint32(drm.AtomicNonblock|drm.PageFlipEvent|drm.AtomicAllowModeset), first.flags)
	assert.Equal(t, uint64(1), first.token)
	require.Len(t, k.blobs, 1)

	var blobID uint32
	for id, data := range k.blobs {
		blobID = id
		mode := testMode()
		assert.Equal(t, mode.Bytes(), data)
	}

	assert.Equal(t, map[string]uint64{
		"connector.CRTC_ID": testCrtc,
		"crtc.MODE_ID":      uint64(blobID),
		"crtc.ACTIVE":       1,
		"plane.FB_ID":       101,
		"plane.CRTC_ID":     testCrtc,
		"plane.SRC_X":       0,
		"plane.SRC_Y":       0,
		"plane.SRC_W":       1920 << 16,
		"plane.SRC_H":       1080 << 16,
		"plane.CRTC_X":      0,
		"plane.CRTC_Y":      0,
		"plane.CRTC_W":      1920,
		"plane.CRTC_H":      1080,
	}, propertyValues(k, first.props))

	require.NoError(t, c.Commit(102, 2))
	second := k.atomics[1]
	assert.Equal(t, uint32(drm.AtomicNonblock|drm.PageFlipEvent), second.flags)
	values := propertyValues(k, second.props)
	assert.Len(t, values, 10)
	assert.NotContains(t, values, "crtc.MODE_ID")
	assert.Equal(t, uint64(102), values["plane.FB_ID"])
	assert.Len(t, k.blobs, 1, "mode blob is created once")

	c.Release()
	assert.Empty(t, k.blobs)
	assert.Equal(t, []uint32{blobID}, k.destroyedBlobs)
}

func TestAtomicCommitRejectedDiscardsBlob(t *testing.T) {
	k := newFakeKernel(t)
	k.commitErr = unix.EINVAL
	c := newCommitStrategy(k, NewPropertyTable(k), testTarget(true))

	err := c.Commit(101, 1)
	require.ErrorIs(t, err, ErrCommitRejected)
	assert.Empty(t, k.blobs)
	assert.Len(t, k.destroyedBlobs, 1)

	// Nothing was remembered: the next commit sets the mode again.
	k.commitErr = nil
	require.NoError(t, c.Commit(101, 2))
	assert.NotZero(t, k.atomics[0].flags&drm.AtomicAllowModeset)
}

func TestAtomicCommitUnknownPlaneProperty(t *testing.T) {
	k := newFakeKernel(t)
	k.dropProperty(testPlane, drm.ObjectPlane, "CRTC_X")
	c := newCommitStrategy(k, NewPropertyTable(k), testTarget(true))

	err := c.Commit(101, 1)
	require.ErrorIs(t, err, ErrCommitRejected)
	assert.ErrorIs(t, err, ErrUnknownProperty)
	assert.Empty(t, k.atomics, "request is not submitted")
	assert.Empty(t, k.blobs)
}

func TestCommitSchedulerSingleFlip(t *testing.T) {
	k := newFakeKernel(t)
	hooks := &recordingHooks{}
	tracker := newPageFlipTracker(testCrtc, hooks)
	s := NewCommitScheduler(newCommitStrategy(k, NewPropertyTable(k), testTarget(true)), tracker)

	a := &BufferObject{Resource: 1, FbID: 101}
	b := &BufferObject{Resource: 2, FbID: 102}

	require.NoError(t, s.Commit(a))
	require.Equal(t, FlipPending, tracker.State())
	pending := *tracker.Pending()

	err := s.Commit(b)
	require.ErrorIs(t, err, ErrCommitRejected)
	assert.ErrorIs(t, err, ErrFlipPending)
	assert.Equal(t, pending, *tracker.Pending(), "pending flip untouched")
	assert.Nil(t, tracker.Committed())
	assert.Len(t, k.atomics, 1, "kernel not asked twice")
}

func TestCommitSchedulerFailureStaysIdle(t *testing.T) {
	k := newFakeKernel(t)
	k.commitErr = unix.EBUSY
	tracker := newPageFlipTracker(testCrtc, &recordingHooks{})
	s := NewCommitScheduler(newCommitStrategy(k, NewPropertyTable(k), testTarget(false)), tracker)

	require.ErrorIs(t, s.Commit(&BufferObject{Resource: 1, FbID: 101}), ErrCommitRejected)
	assert.Equal(t, FlipIdle, tracker.State())
	assert.Nil(t, tracker.Pending())
}

func TestCommitSchedulerModeSetWithoutFlip(t *testing.T) {
	k := newFakeKernel(t)
	k.flipErr = unix.EINVAL
	hooks := &recordingHooks{}
	tracker := newPageFlipTracker(testCrtc, hooks)
	s := NewCommitScheduler(newCommitStrategy(k, NewPropertyTable(k), testTarget(false)), tracker)
	a := &BufferObject{Resource: 1, FbID: 101}

	err := s.Commit(a)
	require.ErrorIs(t, err, ErrCommitRejected)
	assert.ErrorIs(t, err, unix.EINVAL)
	assert.Equal(t, FlipIdle, tracker.State())
	assert.Same(t, a, tracker.Committed(), "SETCRTC put the framebuffer on screen")
	assert.Len(t, k.setCrtcs, 1)
	assert.Empty(t, k.flips)
	assert.Zero(t, hooks.frameCompletes)

	// Once the mode is set a failed flip changes nothing on screen.
	err = s.Commit(&BufferObject{Resource: 2, FbID: 102})
	require.ErrorIs(t, err, ErrCommitRejected)
	assert.Same(t, a, tracker.Committed())
	assert.Len(t, k.setCrtcs, 1)
}
