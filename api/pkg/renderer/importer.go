package renderer

import (
	"errors"
	"fmt"

	"github.com/rs/zerolog/log"

	"github.com/helixml/scanout/api/pkg/drm"
	"github.com/helixml/scanout/api/pkg/gbm"
	"github.com/helixml/scanout/api/pkg/shm"
)

// BufferImporter turns exported producer buffers into buffer objects. Opaque and
// dma-buf buffers are imported zero-copy; shared memory cannot be scanned out, so
// it is copied into a freshly allocated scan-out buffer.
type BufferImporter struct {
	bm BufferManager
}

func NewBufferImporter(bm BufferManager) *BufferImporter {
	return &BufferImporter{bm: bm}
}

// Import dispatches on the buffer representation.
func (i *BufferImporter) Import(buf ExportedBuffer) (gbm.BO, error) {
	switch b := buf.(type) {
	case *OpaqueBuffer:
		return i.ImportOpaque(b)
	case *DMABufBuffer:
		return i.ImportDMABuf(b)
	case *SHMExportedBuffer:
		return i.ImportSHM(b)
	default:
		return nil, fmt.Errorf("%w: unsupported buffer type %T", ErrImportFailed, buf)
	}
}

func (i *BufferImporter) ImportOpaque(buf *OpaqueBuffer) (gbm.BO, error) {
	bo, err := i.bm.ImportOpaque(buf.Buffer)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrImportFailed, buf.Resource, err)
	}
	return bo, nil
}

// ImportDMABuf imports every plane with the explicit modifier and falls back to a
// single-plane import with an implicit layout when that is refused.
func (i *BufferImporter) ImportDMABuf(buf *DMABufBuffer) (gbm.BO, error) {
	imp := buf.importDesc()
	bo, err := i.bm.ImportFDModifier(imp)
	if err == nil {
		return bo, nil
	}
	log.Debug().Err(err).
		Stringer("resource", buf.Resource).
		Str("modifier", fmt.Sprintf("0x%016x", buf.Modifier)).
		Msg("dma-buf import with modifier failed, retrying without")

	bo, fallbackErr := i.bm.ImportFD(imp)
	if fallbackErr != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrImportFailed, buf.Resource, errors.Join(err, fallbackErr))
	}
	return bo, nil
}

// ImportSHM allocates a scan-out buffer matching the descriptor and copies the
// pixels into it.
func (i *BufferImporter) ImportSHM(buf *SHMExportedBuffer) (gbm.BO, error) {
	src := buf.Buffer
	if err := checkSHMFormat(src.Format()); err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrImportFailed, buf.Resource, err)
	}

	// Both 32-bit formats share a byte layout; the primary plane ignores alpha.
	bo, err := i.bm.CreateScanout(uint32(src.Width()), uint32(src.Height()), drm.FormatXRGB8888)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrImportFailed, buf.Resource, err)
	}
	if err := i.CopyInto(bo, src); err != nil {
		_ = bo.Destroy()
		return nil, fmt.Errorf("%w: %s: %w", ErrImportFailed, buf.Resource, err)
	}
	return bo, nil
}

// CopyInto refreshes a scan-out buffer from shared memory.
func (i *BufferImporter) CopyInto(bo gbm.BO, src shm.Descriptor) error {
	if err := checkSHMFormat(src.Format()); err != nil {
		return err
	}
	if uint32(src.Width()) != bo.Width() || uint32(src.Height()) != bo.Height() {
		return fmt.Errorf("shm buffer is %dx%d, scan-out buffer is %dx%d",
			src.Width(), src.Height(), bo.Width(), bo.Height())
	}
	dst, err := bo.Map()
	if err != nil {
		return fmt.Errorf("map scan-out buffer: %w", err)
	}
	return CopySHM(dst, int(bo.Stride(0)), src)
}

func checkSHMFormat(format uint32) error {
	switch shm.DRMFormat(format) {
	case drm.FormatARGB8888, drm.FormatXRGB8888:
		return nil
	default:
		return fmt.Errorf("%w: %s", ErrUnsupportedFormat, drm.FormatName(shm.DRMFormat(format)))
	}
}

const shmBytesPerPixel = 4

// CopySHM copies a 32-bit shared-memory image into dst, whose rows are dstStride
// bytes apart. Matching strides copy the image in one block; otherwise every pixel
// is copied channel by channel.
func CopySHM(dst []byte, dstStride int, src shm.Descriptor) error {
	width, height, stride := src.Width(), src.Height(), src.Stride()
	data := src.Data()
	row := width * shmBytesPerPixel

	if width <= 0 || height <= 0 {
		return fmt.Errorf("invalid shm buffer size %dx%d", width, height)
	}
	if stride < row || dstStride < row {
		return fmt.Errorf("stride too small for width %d: src %d, dst %d", width, stride, dstStride)
	}
	if need := (height-1)*stride + row; len(data) < need {
		return fmt.Errorf("shm buffer holds %d bytes, need %d", len(data), need)
	}
	if need := (height-1)*dstStride + row; len(dst) < need {
		return fmt.Errorf("scan-out buffer holds %d bytes, need %d", len(dst), need)
	}

	if stride == dstStride {
		copy(dst, data[:min(len(data), height*stride)])
		return nil
	}

	for y := 0; y < height; y++ {
		s := data[y*stride : y*stride+row]
		d := dst[y*dstStride : y*dstStride+row]
		for x := 0; x < row; x += shmBytesPerPixel {
			d[x] = s[x]
			d[x+1] = s[x+1]
			d[x+2] = s[x+2]
			d[x+3] = s[x+3]
		}
	}
	return nil
}
