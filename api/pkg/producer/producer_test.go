package producer

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
	"golang.org/x/sys/unix"

	"github.com/helixml/scanout/api/pkg/drm"
	"github.com/helixml/scanout/api/pkg/gbm"
	"github.com/helixml/scanout/api/pkg/renderer"
)

func TestParseKind(t *testing.T) {
	k, err := ParseKind("")
	require.NoError(t, err)
	assert.Equal(t, KindSHM, k)

	k, err = ParseKind("dmabuf")
	require.NoError(t, err)
	assert.Equal(t, KindDMABuf, k)

	_, err = ParseKind("opaque")
	assert.Error(t, err)
}

func TestProducerSHM(t *testing.T) {
	ctrl := gomock.NewController(t)
	sink := NewMockSink(ctrl)

	p, err := New(sink, 8, 4, Options{Kind: KindSHM, Buffers: 2, Frames: 5}, nil)
	require.NoError(t, err)
	t.Cleanup(func() { assert.NoError(t, p.Close()) })

	seen := map[renderer.ResourceID]int{}
	sink.EXPECT().SetProducer(p)
	sink.EXPECT().ExportSHM(gomock.Any()).DoAndReturn(func(buf *renderer.SHMExportedBuffer) error {
		seen[buf.Resource]++
		assert.Equal(t, 8, buf.Buffer.Width())
		assert.Equal(t, 32, buf.Buffer.Stride())
		assert.Equal(t, byte(0xff), buf.Buffer.Data()[3], "X channel is opaque")
		p.ReleaseSHMExportedBuffer(buf)
		p.FrameComplete()
		return nil
	}).Times(5)

	require.NoError(t, p.Run(context.Background()))
	assert.Equal(t, 5, p.Submitted())
	assert.Equal(t, 5, p.Completed())
	assert.Len(t, seen, 2, "both buffers of the ring are used")

	sink.EXPECT().DestroyResource(renderer.ResourceID(1))
	sink.EXPECT().DestroyResource(renderer.ResourceID(2))
	require.NoError(t, p.DestroyResources())
}

func TestProducerWaitsForRelease(t *testing.T) {
	ctrl := gomock.NewController(t)
	sink := NewMockSink(ctrl)

	p, err := New(sink, 4, 4, Options{Buffers: 1, Frames: 2}, nil)
	require.NoError(t, err)
	t.Cleanup(func() { p.Close() })

	var (
		exports atomic.Int32
		held    atomic.Pointer[renderer.SHMExportedBuffer]
	)
	sink.EXPECT().SetProducer(p)
	sink.EXPECT().ExportSHM(gomock.Any()).DoAndReturn(func(buf *renderer.SHMExportedBuffer) error {
		exports.Add(1)
		held.Store(buf)
		p.FrameComplete()
		return nil
	}).Times(2)

	done := make(chan error, 1)
	go func() { done <- p.Run(context.Background()) }()

	require.Eventually(t, func() bool { return exports.Load() == 1 }, time.Second, time.Millisecond)
	assert.Never(t, func() bool { return exports.Load() > 1 }, 50*time.Millisecond, 5*time.Millisecond,
		"the only buffer is still held by the renderer")

	p.ReleaseSHMExportedBuffer(held.Load())
	require.NoError(t, <-done)
	assert.Equal(t, int32(2), exports.Load())
}

func TestProducerDroppedFrameTimesOut(t *testing.T) {
	ctrl := gomock.NewController(t)
	sink := NewMockSink(ctrl)

	p, err := New(sink, 4, 4, Options{Buffers: 2, Frames: 2, FrameTimeout: 10 * time.Millisecond}, nil)
	require.NoError(t, err)
	t.Cleanup(func() { p.Close() })

	sink.EXPECT().SetProducer(p)
	sink.EXPECT().ExportSHM(gomock.Any()).DoAndReturn(func(buf *renderer.SHMExportedBuffer) error {
		p.ReleaseSHMExportedBuffer(buf)
		return nil
	}).Times(2)

	require.NoError(t, p.Run(context.Background()))
	assert.Equal(t, 2, p.Submitted())
	assert.Equal(t, 0, p.Completed())
}

func TestProducerStopsOnCancel(t *testing.T) {
	ctrl := gomock.NewController(t)
	sink := NewMockSink(ctrl)

	p, err := New(sink, 4, 4, Options{Buffers: 1}, nil)
	require.NoError(t, err)
	t.Cleanup(func() { p.Close() })

	ctx, cancel := context.WithCancel(context.Background())
	sink.EXPECT().SetProducer(p)
	sink.EXPECT().ExportSHM(gomock.Any()).DoAndReturn(func(*renderer.SHMExportedBuffer) error {
		cancel()
		return nil
	})

	require.NoError(t, p.Run(ctx))
	assert.Equal(t, 1, p.Submitted())
}

func TestProducerDMABuf(t *testing.T) {
	ctrl := gomock.NewController(t)
	sink := NewMockSink(ctrl)
	alloc := NewMockAllocator(ctrl)

	var fds []int
	for i := 0; i < 2; i++ {
		var pipe [2]int
		require.NoError(t, unix.Pipe2(pipe[:], unix.O_CLOEXEC))
		t.Cleanup(func() { unix.Close(pipe[1]) })
		fds = append(fds, pipe[0])

		bo := gbm.NewMockBO(ctrl)
		bo.EXPECT().Map().Return(make([]byte, 16*4), nil)
		bo.EXPECT().Stride(0).Return(uint32(16)).AnyTimes()
		bo.EXPECT().Offset(0).Return(uint32(0)).AnyTimes()
		bo.EXPECT().Destroy().Return(nil)
		alloc.EXPECT().CreateScanout(uint32(4), uint32(4), uint32(drm.FormatXRGB8888)).Return(bo, nil)
		alloc.EXPECT().ExportFD(bo).Return(pipe[0], nil)
	}

	p, err := New(sink, 4, 4, Options{Kind: KindDMABuf, Buffers: 2, Frames: 3}, alloc)
	require.NoError(t, err)

	var planes []int
	sink.EXPECT().SetProducer(p)
	sink.EXPECT().ExportDMABuf(gomock.Any()).DoAndReturn(func(buf *renderer.DMABufBuffer) error {
		require.Len(t, buf.Planes, 1)
		assert.Equal(t, drm.ModifierLinear, buf.Modifier)
		assert.Equal(t, uint32(16), buf.Planes[0].Stride)
		planes = append(planes, buf.Planes[0].FD)
		p.ReleaseBuffer(buf.Resource)
		p.FrameComplete()
		return nil
	}).Times(3)

	require.NoError(t, p.Run(context.Background()))
	assert.Equal(t, []int{fds[0], fds[1], fds[0]}, planes)

	sink.EXPECT().DestroyResource(gomock.Any()).Times(2)
	require.NoError(t, p.DestroyResources())
	require.NoError(t, p.Close())
}

func TestProducerDMABufNeedsAllocator(t *testing.T) {
	ctrl := gomock.NewController(t)
	_, err := New(NewMockSink(ctrl), 4, 4, Options{Kind: KindDMABuf}, nil)
	assert.Error(t, err)
}

func TestProducerIgnoresUnknownRelease(t *testing.T) {
	ctrl := gomock.NewController(t)
	p, err := New(NewMockSink(ctrl), 4, 4, Options{Buffers: 1}, nil)
	require.NoError(t, err)
	t.Cleanup(func() { p.Close() })

	assert.NotPanics(t, func() {
		p.ReleaseBuffer(99)
		p.ReleaseBuffer(1)
		p.FrameComplete()
		p.FrameComplete()
	})
}
