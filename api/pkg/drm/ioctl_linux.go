package drm

import (
	"unsafe"

	"golang.org/x/sys/unix"
)

// DRM ioctl numbers use the generic Linux ioctl encoding (x86, arm, arm64, riscv):
//
//	_IO(type, nr)          = (type << 8) | nr
//	_IOW(type, nr, size)   = 0x40000000 | (size << 16) | (type << 8) | nr
//	_IOWR(type, nr, size)  = 0xC0000000 | (size << 16) | (type << 8) | nr
//
// Sizes are taken from the Go mirrors of the kernel structs below, which share the
// kernel layout on every 64-bit and 32-bit ABI because all pointers are carried as u64.
const (
	iocNone  = 0
	iocWrite = 1
	iocRead  = 2

	ioctlBase = 'd'
)

func ioc(dir, nr, size uintptr) uintptr {
	return dir<<30 | size<<16 | ioctlBase<<8 | nr
}

func io(nr uintptr) uintptr { return ioc(iocNone, nr, 0) }

func iow(nr, size uintptr) uintptr { return ioc(iocWrite, nr, size) }

func iowr(nr, size uintptr) uintptr { return ioc(iocRead|iocWrite, nr, size) }

var (
	ioctlGemClose        = iow(0x09, unsafe.Sizeof(drmGemClose{}))
	ioctlGemOpen         = iowr(0x0b, unsafe.Sizeof(drmGemOpen{}))
	ioctlGetCap          = iowr(0x0c, unsafe.Sizeof(drmGetCap{}))
	ioctlSetClientCap    = iow(0x0d, unsafe.Sizeof(drmSetClientCap{}))
	ioctlSetMaster       = io(0x1e)
	ioctlDropMaster      = io(0x1f)
	ioctlPrimeHandleToFD = iowr(0x2d, unsafe.Sizeof(drmPrimeHandle{}))
	ioctlPrimeFDToHandle = iowr(0x2e, unsafe.Sizeof(drmPrimeHandle{}))

	ioctlModeGetResources      = iowr(0xa0, unsafe.Sizeof(drmModeCardRes{}))
	ioctlModeGetCrtc           = iowr(0xa1, unsafe.Sizeof(drmModeCrtc{}))
	ioctlModeSetCrtc           = iowr(0xa2, unsafe.Sizeof(drmModeCrtc{}))
	ioctlModeGetEncoder        = iowr(0xa6, unsafe.Sizeof(drmModeGetEncoder{}))
	ioctlModeGetConnector      = iowr(0xa7, unsafe.Sizeof(drmModeGetConnector{}))
	ioctlModeGetProperty       = iowr(0xaa, unsafe.Sizeof(drmModeGetProperty{}))
	ioctlModeRmFB              = iowr(0xaf, unsafe.Sizeof(uint32(0)))
	ioctlModePageFlip          = iowr(0xb0, unsafe.Sizeof(drmModeCrtcPageFlip{}))
	ioctlModeCreateDumb        = iowr(0xb2, unsafe.Sizeof(drmModeCreateDumb{}))
	ioctlModeMapDumb           = iowr(0xb3, unsafe.Sizeof(drmModeMapDumb{}))
	ioctlModeDestroyDumb       = iowr(0xb4, unsafe.Sizeof(drmModeDestroyDumb{}))
	ioctlModeGetPlaneResources = iowr(0xb5, unsafe.Sizeof(drmModeGetPlaneRes{}))
	ioctlModeGetPlane          = iowr(0xb6, unsafe.Sizeof(drmModeGetPlane{}))
	ioctlModeAddFB2            = iowr(0xb8, unsafe.Sizeof(drmModeFBCmd2{}))
	ioctlModeObjGetProperties  = iowr(0xb9, unsafe.Sizeof(drmModeObjGetProperties{}))
	ioctlModeAtomic            = iowr(0xbc, unsafe.Sizeof(drmModeAtomic{}))
	ioctlModeCreatePropBlob    = iowr(0xbd, unsafe.Sizeof(drmModeCreateBlob{}))
	ioctlModeDestroyPropBlob   = iowr(0xbe, unsafe.Sizeof(drmModeDestroyBlob{}))
)

// drmGetCap corresponds to struct drm_get_cap.
type drmGetCap struct {
	Capability uint64
	Value      uint64
}

// drmSetClientCap corresponds to struct drm_set_client_cap.
type drmSetClientCap struct {
	Capability uint64
	Value      uint64
}

type drmGemClose struct {
	Handle uint32
	Pad    uint32
}

type drmGemOpen struct {
	Name   uint32
	Handle uint32
	Size   uint64
}

type drmPrimeHandle struct {
	Handle uint32
	Flags  uint32
	FD     int32
}

// drmModeCardRes corresponds to struct drm_mode_card_res.
type drmModeCardRes struct {
	FbIDPtr         uint64
	CrtcIDPtr       uint64
	ConnectorIDPtr  uint64
	EncoderIDPtr    uint64
	CountFbs        uint32
	CountCrtcs      uint32
	CountConnectors uint32
	CountEncoders   uint32
	MinWidth        uint32
	MaxWidth        uint32
	MinHeight       uint32
	MaxHeight       uint32
}

// drmModeGetConnector corresponds to struct drm_mode_get_connector.
type drmModeGetConnector struct {
	EncodersPtr     uint64
	ModesPtr        uint64
	PropsPtr        uint64
	PropValuesPtr   uint64
	CountModes      uint32
	CountProps      uint32
	CountEncoders   uint32
	EncoderID       uint32
	ConnectorID     uint32
	ConnectorType   uint32
	ConnectorTypeID uint32
	Connection      uint32
	MmWidth         uint32
	MmHeight        uint32
	Subpixel        uint32
	Pad             uint32
}

type drmModeGetEncoder struct {
	EncoderID      uint32
	EncoderType    uint32
	CrtcID         uint32
	PossibleCrtcs  uint32
	PossibleClones uint32
}

// drmModeCrtc corresponds to struct drm_mode_crtc (104 bytes).
type drmModeCrtc struct {
	SetConnectorsPtr uint64
	CountConnectors  uint32
	CrtcID           uint32
	FbID             uint32
	X                uint32
	Y                uint32
	GammaSize        uint32
	ModeValid        uint32
	Mode             ModeInfo
}

type drmModeGetPlaneRes struct {
	PlaneIDPtr  uint64
	CountPlanes uint32
}

type drmModeGetPlane struct {
	PlaneID          uint32
	CrtcID           uint32
	FbID             uint32
	PossibleCrtcs    uint32
	GammaSize        uint32
	CountFormatTypes uint32
	FormatTypePtr    uint64
}

type drmModeGetProperty struct {
	ValuesPtr      uint64
	EnumBlobPtr    uint64
	PropID         uint32
	Flags          uint32
	Name           [propNameLen]byte
	CountValues    uint32
	CountEnumBlobs uint32
}

type drmModeObjGetProperties struct {
	PropsPtr      uint64
	PropValuesPtr uint64
	CountProps    uint32
	ObjID         uint32
	ObjType       uint32
}

// drmModeFBCmd2 corresponds to struct drm_mode_fb_cmd2.
type drmModeFBCmd2 struct {
	FbID        uint32
	Width       uint32
	Height      uint32
	PixelFormat uint32
	Flags       uint32
	Handles     [4]uint32
	Pitches     [4]uint32
	Offsets     [4]uint32
	Modifier    [4]uint64
}

type drmModeCrtcPageFlip struct {
	CrtcID   uint32
	FbID     uint32
	Flags    uint32
	Reserved uint32
	UserData uint64
}

type drmModeAtomic struct {
	Flags         uint32
	CountObjs     uint32
	ObjsPtr       uint64
	CountPropsPtr uint64
	PropsPtr      uint64
	PropValuesPtr uint64
	Reserved      uint64
	UserData      uint64
}

type drmModeCreateBlob struct {
	Data   uint64
	Length uint32
	BlobID uint32
}

type drmModeDestroyBlob struct {
	BlobID uint32
}

type drmModeCreateDumb struct {
	Height uint32
	Width  uint32
	Bpp    uint32
	Flags  uint32
	Handle uint32
	Pitch  uint32
	Size   uint64
}

type drmModeMapDumb struct {
	Handle uint32
	Pad    uint32
	Offset uint64
}

type drmModeDestroyDumb struct {
	Handle uint32
}

// ioctl issues a DRM ioctl, restarting on EINTR/EAGAIN the way drmIoctl does.
func ioctl(fd uintptr, req uintptr, arg unsafe.Pointer) error {
	for {
		_, _, errno := unix.Syscall(unix.SYS_IOCTL, fd, req, uintptr(arg))
		switch errno {
		case 0:
			return nil
		case unix.EINTR, unix.EAGAIN:
			continue
		default:
			return errno
		}
	}
}

func ptr[T any](s []T) uint64 {
	if len(s) == 0 {
		return 0
	}
	return uint64(uintptr(unsafe.Pointer(&s[0])))
}
