package drm

import (
	"errors"
	"fmt"
	"os"
	"runtime"
	"unsafe"

	"github.com/rs/zerolog/log"
	"golang.org/x/sys/unix"
)

// Device is an open DRM card node (or a lease fd received from a lease manager).
type Device struct {
	file *os.File
	path string
}

// Open opens a DRM device node read-write and tries to become DRM master.
// Failing to acquire master is not fatal: logind or a lease manager may
// already have arranged it, and enumeration works without it.
func Open(path string) (*Device, error) {
	f, err := os.OpenFile(path, os.O_RDWR|unix.O_CLOEXEC, 0)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	d := &Device{file: f, path: path}
	if err := d.SetMaster(); err != nil {
		log.Debug().Err(err).Str("path", path).Msg("could not acquire DRM master")
	}
	return d, nil
}

// NewDevice wraps an already-open DRM fd, typically a lease.
func NewDevice(f *os.File) *Device {
	return &Device{file: f, path: f.Name()}
}

func (d *Device) Fd() int {
	return int(d.file.Fd())
}

func (d *Device) Path() string {
	return d.path
}

func (d *Device) Close() error {
	return d.file.Close()
}

func (d *Device) ioctl(req uintptr, arg unsafe.Pointer) error {
	return ioctl(d.file.Fd(), req, arg)
}

func (d *Device) SetMaster() error {
	if err := d.ioctl(ioctlSetMaster, nil); err != nil {
		return fmt.Errorf("SET_MASTER: %w", err)
	}
	return nil
}

func (d *Device) DropMaster() error {
	if err := d.ioctl(ioctlDropMaster, nil); err != nil {
		return fmt.Errorf("DROP_MASTER: %w", err)
	}
	return nil
}

func (d *Device) GetCap(capability uint64) (uint64, error) {
	c := drmGetCap{Capability: capability}
	if err := d.ioctl(ioctlGetCap, unsafe.Pointer(&c)); err != nil {
		return 0, fmt.Errorf("GET_CAP(0x%x): %w", capability, err)
	}
	return c.Value, nil
}

func (d *Device) SetClientCap(capability, value uint64) error {
	c := drmSetClientCap{Capability: capability, Value: value}
	if err := d.ioctl(ioctlSetClientCap, unsafe.Pointer(&c)); err != nil {
		return fmt.Errorf("SET_CLIENT_CAP(%d): %w", capability, err)
	}
	return nil
}

// GetResources enumerates framebuffers, CRTCs, connectors and encoders. The
// two-pass query is repeated if a hotplug changes the counts in between.
func (d *Device) GetResources() (*Resources, error) {
	for {
		var counts drmModeCardRes
		if err := d.ioctl(ioctlModeGetResources, unsafe.Pointer(&counts)); err != nil {
			return nil, fmt.Errorf("MODE_GETRESOURCES (count): %w", err)
		}

		res := &Resources{
			Framebuffers: make([]uint32, counts.CountFbs),
			Crtcs:        make([]uint32, counts.CountCrtcs),
			Connectors:   make([]uint32, counts.CountConnectors),
			Encoders:     make([]uint32, counts.CountEncoders),
		}
		cr := counts
		cr.FbIDPtr = ptr(res.Framebuffers)
		cr.CrtcIDPtr = ptr(res.Crtcs)
		cr.ConnectorIDPtr = ptr(res.Connectors)
		cr.EncoderIDPtr = ptr(res.Encoders)
		err := d.ioctl(ioctlModeGetResources, unsafe.Pointer(&cr))
		runtime.KeepAlive(res)
		if err != nil {
			return nil, fmt.Errorf("MODE_GETRESOURCES: %w", err)
		}
		if cr.CountFbs > counts.CountFbs || cr.CountCrtcs > counts.CountCrtcs ||
			cr.CountConnectors > counts.CountConnectors || cr.CountEncoders > counts.CountEncoders {
			continue
		}

		res.Framebuffers = res.Framebuffers[:cr.CountFbs]
		res.Crtcs = res.Crtcs[:cr.CountCrtcs]
		res.Connectors = res.Connectors[:cr.CountConnectors]
		res.Encoders = res.Encoders[:cr.CountEncoders]
		res.MinWidth, res.MaxWidth = cr.MinWidth, cr.MaxWidth
		res.MinHeight, res.MaxHeight = cr.MinHeight, cr.MaxHeight
		return res, nil
	}
}

func (d *Device) GetConnector(id uint32) (*Connector, error) {
	for {
		counts := drmModeGetConnector{ConnectorID: id}
		if err := d.ioctl(ioctlModeGetConnector, unsafe.Pointer(&counts)); err != nil {
			return nil, fmt.Errorf("MODE_GETCONNECTOR (count) %d: %w", id, err)
		}

		modes := make([]ModeInfo, counts.CountModes)
		encoders := make([]uint32, counts.CountEncoders)
		props := make([]uint32, counts.CountProps)
		values := make([]uint64, counts.CountProps)

		c := drmModeGetConnector{
			ConnectorID:   id,
			CountModes:    counts.CountModes,
			CountEncoders: counts.CountEncoders,
			CountProps:    counts.CountProps,
			ModesPtr:      ptr(modes),
			EncodersPtr:   ptr(encoders),
			PropsPtr:      ptr(props),
			PropValuesPtr: ptr(values),
		}
		err := d.ioctl(ioctlModeGetConnector, unsafe.Pointer(&c))
		runtime.KeepAlive(modes)
		runtime.KeepAlive(encoders)
		runtime.KeepAlive(props)
		runtime.KeepAlive(values)
		if err != nil {
			return nil, fmt.Errorf("MODE_GETCONNECTOR %d: %w", id, err)
		}
		if c.CountModes > counts.CountModes || c.CountEncoders > counts.CountEncoders || c.CountProps > counts.CountProps {
			continue
		}

		return &Connector{
			ID:         c.ConnectorID,
			EncoderID:  c.EncoderID,
			Type:       c.ConnectorType,
			TypeID:     c.ConnectorTypeID,
			Connection: c.Connection,
			MmWidth:    c.MmWidth,
			MmHeight:   c.MmHeight,
			Subpixel:   c.Subpixel,
			Modes:      modes[:c.CountModes],
			Encoders:   encoders[:c.CountEncoders],
		}, nil
	}
}

func (d *Device) GetEncoder(id uint32) (*Encoder, error) {
	e := drmModeGetEncoder{EncoderID: id}
	if err := d.ioctl(ioctlModeGetEncoder, unsafe.Pointer(&e)); err != nil {
		return nil, fmt.Errorf("MODE_GETENCODER %d: %w", id, err)
	}
	return &Encoder{
		ID:             e.EncoderID,
		Type:           e.EncoderType,
		CrtcID:         e.CrtcID,
		PossibleCrtcs:  e.PossibleCrtcs,
		PossibleClones: e.PossibleClones,
	}, nil
}

func (d *Device) GetCrtc(id uint32) (*Crtc, error) {
	c := drmModeCrtc{CrtcID: id}
	if err := d.ioctl(ioctlModeGetCrtc, unsafe.Pointer(&c)); err != nil {
		return nil, fmt.Errorf("MODE_GETCRTC %d: %w", id, err)
	}
	return &Crtc{
		ID:        c.CrtcID,
		FbID:      c.FbID,
		X:         c.X,
		Y:         c.Y,
		GammaSize: c.GammaSize,
		ModeValid: c.ModeValid != 0,
		Mode:      c.Mode,
	}, nil
}

func (d *Device) GetPlaneResources() ([]uint32, error) {
	for {
		var counts drmModeGetPlaneRes
		if err := d.ioctl(ioctlModeGetPlaneResources, unsafe.Pointer(&counts)); err != nil {
			return nil, fmt.Errorf("MODE_GETPLANERESOURCES (count): %w", err)
		}
		ids := make([]uint32, counts.CountPlanes)
		r := drmModeGetPlaneRes{CountPlanes: counts.CountPlanes, PlaneIDPtr: ptr(ids)}
		err := d.ioctl(ioctlModeGetPlaneResources, unsafe.Pointer(&r))
		runtime.KeepAlive(ids)
		if err != nil {
			return nil, fmt.Errorf("MODE_GETPLANERESOURCES: %w", err)
		}
		if r.CountPlanes > counts.CountPlanes {
			continue
		}
		return ids[:r.CountPlanes], nil
	}
}

func (d *Device) GetPlane(id uint32) (*Plane, error) {
	counts := drmModeGetPlane{PlaneID: id}
	if err := d.ioctl(ioctlModeGetPlane, unsafe.Pointer(&counts)); err != nil {
		return nil, fmt.Errorf("MODE_GETPLANE (count) %d: %w", id, err)
	}
	formats := make([]uint32, counts.CountFormatTypes)
	p := drmModeGetPlane{PlaneID: id, CountFormatTypes: counts.CountFormatTypes, FormatTypePtr: ptr(formats)}
	err := d.ioctl(ioctlModeGetPlane, unsafe.Pointer(&p))
	runtime.KeepAlive(formats)
	if err != nil {
		return nil, fmt.Errorf("MODE_GETPLANE %d: %w", id, err)
	}
	if p.CountFormatTypes < counts.CountFormatTypes {
		formats = formats[:p.CountFormatTypes]
	}
	return &Plane{
		ID:            p.PlaneID,
		CrtcID:        p.CrtcID,
		FbID:          p.FbID,
		PossibleCrtcs: p.PossibleCrtcs,
		GammaSize:     p.GammaSize,
		Formats:       formats,
	}, nil
}

// GetProperty returns the name and flags of a property. Enum values and blob ids
// are not fetched.
func (d *Device) GetProperty(id uint32) (Property, error) {
	p := drmModeGetProperty{PropID: id}
	if err := d.ioctl(ioctlModeGetProperty, unsafe.Pointer(&p)); err != nil {
		return Property{}, fmt.Errorf("MODE_GETPROPERTY %d: %w", id, err)
	}
	return Property{ID: p.PropID, Name: cString(p.Name[:]), Flags: p.Flags}, nil
}

// ObjectProperties lists the properties attached to a KMS object together with
// their current values.
func (d *Device) ObjectProperties(objectID, objectType uint32) ([]Property, error) {
	var ids []uint32
	var values []uint64
	for {
		counts := drmModeObjGetProperties{ObjID: objectID, ObjType: objectType}
		if err := d.ioctl(ioctlModeObjGetProperties, unsafe.Pointer(&counts)); err != nil {
			return nil, fmt.Errorf("MODE_OBJ_GETPROPERTIES (count) 0x%x/%d: %w", objectType, objectID, err)
		}
		ids = make([]uint32, counts.CountProps)
		values = make([]uint64, counts.CountProps)
		op := drmModeObjGetProperties{
			ObjID:         objectID,
			ObjType:       objectType,
			CountProps:    counts.CountProps,
			PropsPtr:      ptr(ids),
			PropValuesPtr: ptr(values),
		}
		err := d.ioctl(ioctlModeObjGetProperties, unsafe.Pointer(&op))
		runtime.KeepAlive(ids)
		runtime.KeepAlive(values)
		if err != nil {
			return nil, fmt.Errorf("MODE_OBJ_GETPROPERTIES 0x%x/%d: %w", objectType, objectID, err)
		}
		if op.CountProps > counts.CountProps {
			continue
		}
		ids, values = ids[:op.CountProps], values[:op.CountProps]
		break
	}

	props := make([]Property, 0, len(ids))
	for i, id := range ids {
		p, err := d.GetProperty(id)
		if err != nil {
			return nil, err
		}
		p.Value = values[i]
		props = append(props, p)
	}
	return props, nil
}

func (d *Device) AddFB2(cmd FramebufferCmd) (uint32, error) {
	fb := drmModeFBCmd2{
		Width:       cmd.Width,
		Height:      cmd.Height,
		PixelFormat: cmd.Format,
		Flags:       cmd.Flags,
		Handles:     cmd.Handles,
		Pitches:     cmd.Pitches,
		Offsets:     cmd.Offsets,
		Modifier:    cmd.Modifiers,
	}
	if err := d.ioctl(ioctlModeAddFB2, unsafe.Pointer(&fb)); err != nil {
		return 0, fmt.Errorf("MODE_ADDFB2 %dx%d %s: %w", cmd.Width, cmd.Height, FormatName(cmd.Format), err)
	}
	return fb.FbID, nil
}

func (d *Device) RmFB(fbID uint32) error {
	id := fbID
	if err := d.ioctl(ioctlModeRmFB, unsafe.Pointer(&id)); err != nil {
		return fmt.Errorf("MODE_RMFB %d: %w", fbID, err)
	}
	return nil
}

// SetCrtc performs a blocking legacy mode-set.
func (d *Device) SetCrtc(crtcID, fbID uint32, connectors []uint32, mode *ModeInfo) error {
	c := drmModeCrtc{
		SetConnectorsPtr: ptr(connectors),
		CountConnectors:  uint32(len(connectors)),
		CrtcID:           crtcID,
		FbID:             fbID,
	}
	if mode != nil {
		c.Mode = *mode
		c.ModeValid = 1
	}
	err := d.ioctl(ioctlModeSetCrtc, unsafe.Pointer(&c))
	runtime.KeepAlive(connectors)
	if err != nil {
		return fmt.Errorf("MODE_SETCRTC %d: %w", crtcID, err)
	}
	return nil
}

func (d *Device) PageFlip(crtcID, fbID, flags uint32, userData uint64) error {
	f := drmModeCrtcPageFlip{CrtcID: crtcID, FbID: fbID, Flags: flags, UserData: userData}
	if err := d.ioctl(ioctlModePageFlip, unsafe.Pointer(&f)); err != nil {
		return fmt.Errorf("MODE_PAGE_FLIP %d: %w", crtcID, err)
	}
	return nil
}

func (d *Device) AtomicCommit(req *AtomicRequest, flags uint32, userData uint64) error {
	objs, counts, props, values := req.flatten()
	a := drmModeAtomic{
		Flags:         flags,
		CountObjs:     uint32(len(objs)),
		ObjsPtr:       ptr(objs),
		CountPropsPtr: ptr(counts),
		PropsPtr:      ptr(props),
		PropValuesPtr: ptr(values),
		UserData:      userData,
	}
	err := d.ioctl(ioctlModeAtomic, unsafe.Pointer(&a))
	runtime.KeepAlive(objs)
	runtime.KeepAlive(counts)
	runtime.KeepAlive(props)
	runtime.KeepAlive(values)
	if err != nil {
		return fmt.Errorf("MODE_ATOMIC: %w", err)
	}
	return nil
}

func (d *Device) CreatePropertyBlob(data []byte) (uint32, error) {
	b := drmModeCreateBlob{Data: ptr(data), Length: uint32(len(data))}
	err := d.ioctl(ioctlModeCreatePropBlob, unsafe.Pointer(&b))
	runtime.KeepAlive(data)
	if err != nil {
		return 0, fmt.Errorf("MODE_CREATEPROPBLOB: %w", err)
	}
	return b.BlobID, nil
}

func (d *Device) DestroyPropertyBlob(id uint32) error {
	b := drmModeDestroyBlob{BlobID: id}
	if err := d.ioctl(ioctlModeDestroyPropBlob, unsafe.Pointer(&b)); err != nil {
		return fmt.Errorf("MODE_DESTROYPROPBLOB %d: %w", id, err)
	}
	return nil
}

func (d *Device) CreateDumb(width, height, bpp uint32) (DumbBuffer, error) {
	c := drmModeCreateDumb{Width: width, Height: height, Bpp: bpp}
	if err := d.ioctl(ioctlModeCreateDumb, unsafe.Pointer(&c)); err != nil {
		return DumbBuffer{}, fmt.Errorf("MODE_CREATE_DUMB %dx%d: %w", width, height, err)
	}
	return DumbBuffer{Handle: c.Handle, Pitch: c.Pitch, Size: c.Size}, nil
}

// MapDumb returns the fake offset to pass to mmap(2) on the device fd.
func (d *Device) MapDumb(handle uint32) (uint64, error) {
	m := drmModeMapDumb{Handle: handle}
	if err := d.ioctl(ioctlModeMapDumb, unsafe.Pointer(&m)); err != nil {
		return 0, fmt.Errorf("MODE_MAP_DUMB %d: %w", handle, err)
	}
	return m.Offset, nil
}

func (d *Device) DestroyDumb(handle uint32) error {
	m := drmModeDestroyDumb{Handle: handle}
	if err := d.ioctl(ioctlModeDestroyDumb, unsafe.Pointer(&m)); err != nil {
		return fmt.Errorf("MODE_DESTROY_DUMB %d: %w", handle, err)
	}
	return nil
}

// Mmap maps size bytes of a dumb buffer into the process.
func (d *Device) Mmap(offset uint64, size int) ([]byte, error) {
	data, err := unix.Mmap(d.Fd(), int64(offset), size, unix.PROT_READ|unix.PROT_WRITE, unix.MAP_SHARED)
	if err != nil {
		return nil, fmt.Errorf("mmap dumb buffer: %w", err)
	}
	return data, nil
}

func (d *Device) PrimeFDToHandle(fd int) (uint32, error) {
	p := drmPrimeHandle{FD: int32(fd)}
	if err := d.ioctl(ioctlPrimeFDToHandle, unsafe.Pointer(&p)); err != nil {
		return 0, fmt.Errorf("PRIME_FD_TO_HANDLE %d: %w", fd, err)
	}
	return p.Handle, nil
}

// PrimeHandleToFD exports a GEM handle as a close-on-exec, read-write dma-buf fd.
func (d *Device) PrimeHandleToFD(handle uint32) (int, error) {
	p := drmPrimeHandle{Handle: handle, Flags: primeCloexec | primeRdwr}
	if err := d.ioctl(ioctlPrimeHandleToFD, unsafe.Pointer(&p)); err != nil {
		return -1, fmt.Errorf("PRIME_HANDLE_TO_FD %d: %w", handle, err)
	}
	return int(p.FD), nil
}

// GemOpen opens a GEM object by its global (flink) name.
func (d *Device) GemOpen(name uint32) (handle uint32, size uint64, err error) {
	g := drmGemOpen{Name: name}
	if err := d.ioctl(ioctlGemOpen, unsafe.Pointer(&g)); err != nil {
		return 0, 0, fmt.Errorf("GEM_OPEN %d: %w", name, err)
	}
	return g.Handle, g.Size, nil
}

func (d *Device) GemClose(handle uint32) error {
	g := drmGemClose{Handle: handle}
	if err := d.ioctl(ioctlGemClose, unsafe.Pointer(&g)); err != nil {
		return fmt.Errorf("GEM_CLOSE %d: %w", handle, err)
	}
	return nil
}

// ReadEvents reads and decodes pending events. It returns no events and no error
// when the fd is non-blocking and nothing is queued.
func (d *Device) ReadEvents() ([]Event, error) {
	buf := make([]byte, 1024)
	n, err := unix.Read(d.Fd(), buf)
	if err != nil {
		if errors.Is(err, unix.EAGAIN) {
			return nil, nil
		}
		return nil, fmt.Errorf("read drm events: %w", err)
	}
	return ParseEvents(buf[:n])
}

func (d *Device) Munmap(data []byte) error {
	if err := unix.Munmap(data); err != nil {
		return fmt.Errorf("munmap dumb buffer: %w", err)
	}
	return nil
}
