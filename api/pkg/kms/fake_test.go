package kms

import (
	"errors"
	"fmt"

	"github.com/helixml/scanout/api/pkg/drm"
)

// fakeDevice is an in-memory modesetting device.
type fakeDevice struct {
	caps        map[uint64]uint64
	clientCaps  map[uint64]uint64
	refuseCaps  map[uint64]bool
	resources   drm.Resources
	connectors  map[uint32]*drm.Connector
	encoders    map[uint32]*drm.Encoder
	planes      map[uint32]*drm.Plane
	planeOrder  []uint32
	planeTypes  map[uint32]uint64
	closed      bool
	resourceErr error
}

func mode(name string, w, h uint16, preferred bool) drm.ModeInfo {
	m := drm.ModeInfo{Hdisplay: w, Vdisplay: h, Vrefresh: 60}
	if preferred {
		m.Type = drm.ModeTypePreferred
	}
	copy(m.NameBytes[:], name)
	return m
}

// newFakeDevice models a single-GPU machine: one disconnected VGA port, one
// connected HDMI port driven by encoder 20 on CRTC 31 (index 1), and planes
// 40 (overlay on CRTC 31), 41 (primary on CRTC 30) and 42 (primary on CRTC 31).
func newFakeDevice() *fakeDevice {
	return &fakeDevice{
		caps:       map[uint64]uint64{drm.CapDumbBuffer: 1, drm.CapPrime: 3, drm.CapAddFB2Modifiers: 1},
		clientCaps: map[uint64]uint64{},
		refuseCaps: map[uint64]bool{},
		resources: drm.Resources{
			Crtcs:      []uint32{30, 31},
			Connectors: []uint32{10, 11},
			Encoders:   []uint32{20},
			MaxWidth:   4096,
			MaxHeight:  4096,
		},
		connectors: map[uint32]*drm.Connector{
			10: {ID: 10, Type: 1, TypeID: 1, Connection: drm.Disconnected},
			11: {
				ID: 11, Type: 11, TypeID: 1, Connection: drm.Connected, EncoderID: 20,
				Encoders: []uint32{20},
				Modes: []drm.ModeInfo{
					mode("3840x2160", 3840, 2160, false),
					mode("1920x1080", 1920, 1080, true),
					mode("1280x720", 1280, 720, false),
				},
			},
		},
		encoders: map[uint32]*drm.Encoder{
			20: {ID: 20, CrtcID: 31, PossibleCrtcs: 0b11},
		},
		planes: map[uint32]*drm.Plane{
			40: {ID: 40, PossibleCrtcs: 0b10, Formats: []uint32{drm.FormatARGB8888}},
			41: {ID: 41, PossibleCrtcs: 0b01, Formats: []uint32{drm.FormatXRGB8888}},
			42: {ID: 42, PossibleCrtcs: 0b10, Formats: []uint32{drm.FormatXRGB8888, drm.FormatARGB8888}},
		},
		planeOrder: []uint32{40, 41, 42},
		planeTypes: map[uint32]uint64{40: drm.PlaneTypeOverlay, 41: drm.PlaneTypePrimary, 42: drm.PlaneTypePrimary},
	}
}

func (f *fakeDevice) GetCap(capability uint64) (uint64, error) {
	v, ok := f.caps[capability]
	if !ok {
		return 0, errors.New("EINVAL")
	}
	return v, nil
}

func (f *fakeDevice) SetClientCap(capability, value uint64) error {
	if f.refuseCaps[capability] {
		return errors.New("EOPNOTSUPP")
	}
	f.clientCaps[capability] = value
	return nil
}

func (f *fakeDevice) GetResources() (*drm.Resources, error) {
	if f.resourceErr != nil {
		return nil, f.resourceErr
	}
	r := f.resources
	return &r, nil
}

func (f *fakeDevice) GetConnector(id uint32) (*drm.Connector, error) {
	c, ok := f.connectors[id]
	if !ok {
		return nil, fmt.Errorf("connector %d: ENOENT", id)
	}
	return c, nil
}

func (f *fakeDevice) GetEncoder(id uint32) (*drm.Encoder, error) {
	e, ok := f.encoders[id]
	if !ok {
		return nil, fmt.Errorf("encoder %d: ENOENT", id)
	}
	return e, nil
}

func (f *fakeDevice) GetCrtc(id uint32) (*drm.Crtc, error) {
	return &drm.Crtc{ID: id}, nil
}

func (f *fakeDevice) GetPlaneResources() ([]uint32, error) {
	return f.planeOrder, nil
}

func (f *fakeDevice) GetPlane(id uint32) (*drm.Plane, error) {
	p, ok := f.planes[id]
	if !ok {
		return nil, fmt.Errorf("plane %d: ENOENT", id)
	}
	return p, nil
}

func (f *fakeDevice) ObjectProperties(objectID, objectType uint32) ([]drm.Property, error) {
	if objectType != drm.ObjectPlane {
		return nil, nil
	}
	typ, ok := f.planeTypes[objectID]
	if !ok {
		return nil, nil
	}
	return []drm.Property{{ID: 100, Name: "type", Value: typ}, {ID: 101, Name: "FB_ID"}}, nil
}

func (f *fakeDevice) Close() error {
	f.closed = true
	return nil
}
