package renderer

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
	"golang.org/x/sys/unix"

	"github.com/helixml/scanout/api/pkg/drm"
	"github.com/helixml/scanout/api/pkg/eventloop"
	"github.com/helixml/scanout/api/pkg/gbm"
	"github.com/helixml/scanout/api/pkg/kms"
	"github.com/helixml/scanout/api/pkg/shm"
)

const (
	testConnector = 11
	testCrtc      = 31
	testPlane     = 42
)

func testMode() drm.ModeInfo {
	m := drm.ModeInfo{Hdisplay: 1920, Vdisplay: 1080, Vrefresh: 60, Type: drm.ModeTypePreferred}
	copy(m.NameBytes[:], "1920x1080")
	return m
}

func testTarget(atomic bool) *kms.DisplayTarget {
	return &kms.DisplayTarget{
		ConnectorID:   testConnector,
		ConnectorName: "HDMI-A-1",
		CrtcID:        testCrtc,
		CrtcIndex:     1,
		PlaneID:       testPlane,
		Mode:          testMode(),
		Atomic:        atomic,
	}
}

type atomicCall struct {
	props []drm.AtomicProperty
	flags uint32
	token uint64
}

type flipCall struct {
	crtcID uint32
	fbID   uint32
	flags  uint32
	token  uint64
}

type setCrtcCall struct {
	crtcID     uint32
	fbID       uint32
	connectors []uint32
	mode       drm.ModeInfo
}

// fakeKernel is a stateful KMS device. Completion events travel through a real
// pipe and are decoded by drm.ParseEvents, so ReadEvents behaves like the device.
type fakeKernel struct {
	t       *testing.T
	readFD  int
	writeFD int

	props     map[objectKey][]drm.Property
	propCalls int

	nextFB          uint32
	fbs             map[uint32]drm.FramebufferCmd
	removedFBs      []uint32
	rejectModifiers bool
	addFBErr        error

	nextBlob       uint32
	blobs          map[uint32][]byte
	destroyedBlobs []uint32

	commitErr error
	flipErr   error
	setCrtcs  []setCrtcCall
	flips     []flipCall
	atomics   []atomicCall
}

func newFakeKernel(t *testing.T) *fakeKernel {
	t.Helper()
	var p [2]int
	require.NoError(t, unix.Pipe2(p[:], unix.O_NONBLOCK|unix.O_CLOEXEC))
	k := &fakeKernel{
		t:        t,
		readFD:   p[0],
		writeFD:  p[1],
		props:    defaultProperties(),
		nextFB:   100,
		fbs:      map[uint32]drm.FramebufferCmd{},
		nextBlob: 500,
		blobs:    map[uint32][]byte{},
	}
	t.Cleanup(func() {
		unix.Close(k.readFD)
		unix.Close(k.writeFD)
	})
	return k
}

func defaultProperties() map[objectKey][]drm.Property {
	list := func(names ...string) []drm.Property {
		props := make([]drm.Property, len(names))
		for i, n := range names {
			props[i] = drm.Property{ID: uint32(200 + i), Name: n}
		}
		return props
	}
	return map[objectKey][]drm.Property{
		{testConnector, drm.ObjectConnector}: list("EDID", "DPMS", "CRTC_ID"),
		{testCrtc, drm.ObjectCRTC}:           list("ACTIVE", "MODE_ID", "OUT_FENCE_PTR"),
		{testPlane, drm.ObjectPlane}: list("type", "FB_ID", "CRTC_ID",
			"SRC_X", "SRC_Y", "SRC_W", "SRC_H",
			"CRTC_X", "CRTC_Y", "CRTC_W", "CRTC_H"),
	}
}

// dropProperty removes a property from an object, as some drivers do.
func (k *fakeKernel) dropProperty(objectID, objectType uint32, name string) {
	key := objectKey{objectID, objectType}
	var kept []drm.Property
	for _, p := range k.props[key] {
		if p.Name != name {
			kept = append(kept, p)
		}
	}
	k.props[key] = kept
}

func (k *fakeKernel) propertyID(objectID, objectType uint32, name string) uint32 {
	for _, p := range k.props[objectKey{objectID, objectType}] {
		if p.Name == name {
			return p.ID
		}
	}
	k.t.Fatalf("no property %s on object %d", name, objectID)
	return 0
}

func (k *fakeKernel) Fd() int { return k.readFD }

func (k *fakeKernel) ObjectProperties(objectID, objectType uint32) ([]drm.Property, error) {
	k.propCalls++
	props, ok := k.props[objectKey{objectID, objectType}]
	if !ok {
		return nil, unix.ENOENT
	}
	return props, nil
}

func (k *fakeKernel) AddFB2(cmd drm.FramebufferCmd) (uint32, error) {
	if k.addFBErr != nil {
		return 0, k.addFBErr
	}
	if cmd.Flags&drm.FBModifiers != 0 && k.rejectModifiers {
		return 0, unix.EINVAL
	}
	k.nextFB++
	k.fbs[k.nextFB] = cmd
	return k.nextFB, nil
}

func (k *fakeKernel) RmFB(fbID uint32) error {
	if _, ok := k.fbs[fbID]; !ok {
		k.t.Errorf("RmFB of unknown or already removed framebuffer %d", fbID)
		return unix.ENOENT
	}
	delete(k.fbs, fbID)
	k.removedFBs = append(k.removedFBs, fbID)
	return nil
}

func (k *fakeKernel) SetCrtc(crtcID, fbID uint32, connectors []uint32, mode *drm.ModeInfo) error {
	if k.commitErr != nil {
		return k.commitErr
	}
	k.setCrtcs = append(k.setCrtcs, setCrtcCall{crtcID, fbID, connectors, *mode})
	return nil
}

func (k *fakeKernel) PageFlip(crtcID, fbID, flags uint32, userData uint64) error {
	if k.commitErr != nil {
		return k.commitErr
	}
	if k.flipErr != nil {
		return k.flipErr
	}
	k.flips = append(k.flips, flipCall{crtcID, fbID, flags, userData})
	return nil
}

func (k *fakeKernel) AtomicCommit(req *drm.AtomicRequest, flags uint32, userData uint64) error {
	if k.commitErr != nil {
		return k.commitErr
	}
	k.atomics = append(k.atomics, atomicCall{req.Properties(), flags, userData})
	return nil
}

func (k *fakeKernel) CreatePropertyBlob(data []byte) (uint32, error) {
	k.nextBlob++
	k.blobs[k.nextBlob] = append([]byte(nil), data...)
	return k.nextBlob, nil
}

func (k *fakeKernel) DestroyPropertyBlob(id uint32) error {
	if _, ok := k.blobs[id]; !ok {
		k.t.Errorf("destroy of unknown blob %d", id)
		return unix.ENOENT
	}
	delete(k.blobs, id)
	k.destroyedBlobs = append(k.destroyedBlobs, id)
	return nil
}

func (k *fakeKernel) ReadEvents() ([]drm.Event, error) {
	buf := make([]byte, 1024)
	n, err := unix.Read(k.readFD, buf)
	if err != nil {
		if errors.Is(err, unix.EAGAIN) {
			return nil, nil
		}
		return nil, err
	}
	return drm.ParseEvents(buf[:n])
}

// lastToken is the user data of the most recent flip request.
func (k *fakeKernel) lastToken() uint64 {
	switch {
	case len(k.atomics) > 0 && (len(k.flips) == 0 || k.atomics[len(k.atomics)-1].token > k.flips[len(k.flips)-1].token):
		return k.atomics[len(k.atomics)-1].token
	case len(k.flips) > 0:
		return k.flips[len(k.flips)-1].token
	}
	k.t.Fatal("no flip was requested")
	return 0
}

// send queues a raw event record on the device fd.
func (k *fakeKernel) send(raw []byte) {
	k.t.Helper()
	_, err := unix.Write(k.writeFD, raw)
	require.NoError(k.t, err)
}

// completeFlip delivers the completion event of the latest flip request.
func (k *fakeKernel) completeFlip() {
	k.t.Helper()
	k.send(drm.MarshalEvent(drm.Event{
		Type:     drm.EventFlipComplete,
		UserData: k.lastToken(),
		Sec:      1,
		CrtcID:   testCrtc,
	}))
}

// fakeBO is a buffer object with optional CPU-visible memory.
type fakeBO struct {
	width, height, format uint32
	modifier              uint64
	handles               []uint32
	strides               []uint32
	data                  []byte
	destroyed             int
}

func newFakeBO(width, height, format uint32) *fakeBO {
	return &fakeBO{
		width:    width,
		height:   height,
		format:   format,
		modifier: drm.ModifierLinear,
		handles:  []uint32{7},
		strides:  []uint32{width * 4},
	}
}

// newMappableBO is a scan-out buffer whose rows are stride bytes apart.
func newMappableBO(width, height, stride uint32) *fakeBO {
	bo := newFakeBO(width, height, drm.FormatXRGB8888)
	bo.strides = []uint32{stride}
	bo.data = make([]byte, stride*height)
	return bo
}

func (b *fakeBO) Width() uint32       { return b.width }
func (b *fakeBO) Height() uint32      { return b.height }
func (b *fakeBO) Format() uint32      { return b.format }
func (b *fakeBO) Modifier() uint64    { return b.modifier }
func (b *fakeBO) PlaneCount() int     { return len(b.handles) }
func (b *fakeBO) Handle(i int) uint32 { return b.handles[i] }
func (b *fakeBO) Stride(i int) uint32 { return b.strides[i] }
func (b *fakeBO) Offset(int) uint32   { return 0 }

func (b *fakeBO) Map() ([]byte, error) {
	if b.data == nil {
		return nil, gbm.ErrNotMappable
	}
	return b.data, nil
}

func (b *fakeBO) Destroy() error {
	b.destroyed++
	return nil
}

var _ gbm.BO = (*fakeBO)(nil)

// syncLoop runs posted work immediately and lets the test fire the device fd.
type syncLoop struct {
	handler eventloop.Handler
	fd      int
	removed int
	closed  bool
}

func (l *syncLoop) AddFD(fd int, name string, handler eventloop.Handler) (*eventloop.Source, error) {
	l.fd = fd
	l.handler = handler
	return &eventloop.Source{}, nil
}

func (l *syncLoop) RemoveSource(*eventloop.Source) error {
	l.removed++
	l.handler = nil
	return nil
}

func (l *syncLoop) Post(fn func()) error {
	if l.closed {
		return eventloop.ErrClosed
	}
	fn()
	return nil
}

// readable dispatches the device fd as if it had become readable.
func (l *syncLoop) readable() {
	l.handler(l.fd, eventloop.Readable)
}

// memory is a shared-memory image filled with a deterministic pattern.
func memory(width, height, stride int, format uint32) *shm.Memory {
	data := make([]byte, stride*height)
	row := min(width*4, stride)
	for y := 0; y < height; y++ {
		for x := 0; x < row; x++ {
			data[y*stride+x] = byte(x*7 + y*13)
		}
	}
	return &shm.Memory{W: width, H: height, Pitch: stride, Fmt: format, Pixels: data}
}
